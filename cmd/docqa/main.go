package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/serisow/docqa/client"
	"github.com/serisow/docqa/config"
	"github.com/serisow/docqa/pipeline_type"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:  "docqa",
		Usage: "Summarize documents and ask questions about them through the docqa API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "api-url",
				Usage:   "Base URL of the docqa server",
				Value:   config.APIBaseURL(),
				EnvVars: []string{"API_BASE_URL"},
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Request timeout",
				Value: client.DefaultTimeout,
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "health",
				Usage: "Check that the server is up",
				Action: func(c *cli.Context) error {
					resp, err := newClient(c).Health(c.Context)
					if err != nil {
						return err
					}
					return printJSON(out, resp)
				},
			},
			{
				Name:  "info",
				Usage: "Show server name, version and endpoints",
				Action: func(c *cli.Context) error {
					resp, err := newClient(c).Info(c.Context)
					if err != nil {
						return err
					}
					return printJSON(out, resp)
				},
			},
			{
				Name:  "summarize",
				Usage: "Summarize text, a text file or a PDF",
				Flags: append(sourceFlags("text", "Text to summarize"),
					&cli.StringFlag{
						Name:  "style",
						Usage: "Summary style: concise, detailed or bullet_points",
						Value: "concise",
					},
					&cli.IntFlag{
						Name:  "max-length",
						Usage: "Approximate maximum summary length in words (10-1000)",
					},
				),
				Action: func(c *cli.Context) error {
					var maxLength *int
					if c.IsSet("max-length") {
						v := c.Int("max-length")
						maxLength = &v
					}

					text, pdfPath, err := readSource(c, "text")
					if err != nil {
						return err
					}

					api := newClient(c)
					if pdfPath != "" {
						data, err := os.ReadFile(pdfPath)
						if err != nil {
							return err
						}
						resp, err := api.SummarizePDF(c.Context, filepath.Base(pdfPath), data, maxLength, c.String("style"))
						if err != nil {
							return err
						}
						return printJSON(out, resp)
					}

					resp, err := api.SummarizeText(c.Context, pipeline_type.SummarizeRequest{
						Text:      text,
						MaxLength: maxLength,
						Style:     c.String("style"),
					})
					if err != nil {
						return err
					}
					return printJSON(out, resp)
				},
			},
			{
				Name:  "query",
				Usage: "Ask a question about text, a text file or a PDF",
				Flags: append(sourceFlags("context", "Context text the answer must be based on"),
					&cli.StringFlag{
						Name:     "question",
						Aliases:  []string{"q"},
						Usage:    "Question to ask",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "include-sources",
						Usage: "Ask the model to reference the supporting context",
					},
				),
				Action: func(c *cli.Context) error {
					contextText, pdfPath, err := readSource(c, "context")
					if err != nil {
						return err
					}

					api := newClient(c)
					if pdfPath != "" {
						data, err := os.ReadFile(pdfPath)
						if err != nil {
							return err
						}
						resp, err := api.QueryPDF(c.Context, filepath.Base(pdfPath), data, c.String("question"), c.Bool("include-sources"))
						if err != nil {
							return err
						}
						return printJSON(out, resp)
					}

					resp, err := api.QueryDocument(c.Context, pipeline_type.QueryRequest{
						Question:       c.String("question"),
						Context:        contextText,
						IncludeSources: c.Bool("include-sources"),
					})
					if err != nil {
						return err
					}
					return printJSON(out, resp)
				},
			},
		},
	}
}

// sourceFlags are the mutually exclusive inputs of summarize and query.
func sourceFlags(inline, usage string) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: inline, Usage: usage},
		&cli.StringFlag{Name: "file", Usage: "Read the " + inline + " from a text file"},
		&cli.StringFlag{Name: "pdf", Usage: "Upload a PDF file"},
	}
}

// readSource returns either the inline or file text, or the path of the PDF to upload.
func readSource(c *cli.Context, inline string) (text, pdfPath string, err error) {
	set := 0
	for _, name := range []string{inline, "file", "pdf"} {
		if c.String(name) != "" {
			set++
		}
	}
	if set != 1 {
		return "", "", fmt.Errorf("exactly one of --%s, --file or --pdf is required", inline)
	}

	switch {
	case c.String("pdf") != "":
		return "", c.String("pdf"), nil
	case c.String("file") != "":
		data, err := os.ReadFile(c.String("file"))
		if err != nil {
			return "", "", err
		}
		return string(data), "", nil
	default:
		return c.String(inline), "", nil
	}
}

func newClient(c *cli.Context) *client.Client {
	api := client.NewClient(c.String("api-url"))
	api.Client.Timeout = c.Duration("timeout")
	return api
}

func printJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

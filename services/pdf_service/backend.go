package pdf_service

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Backend opens raw bytes as a paged document.
type Backend interface {
	Open(data []byte) (Document, error)
}

// Document is an opened PDF. Page indexes are zero-based.
type Document interface {
	PageCount() int
	PageText(i int) (string, error)
	Metadata() (map[string]string, error)
}

// Metadata keys returned by Document.Metadata.
const (
	MetaTitle            = "title"
	MetaAuthor           = "author"
	MetaSubject          = "subject"
	MetaCreator          = "creator"
	MetaProducer         = "producer"
	MetaCreationDate     = "creation_date"
	MetaModificationDate = "modification_date"
)

// LedongthucBackend reads page text with github.com/ledongthuc/pdf and the document
// information dictionary with pdfcpu, falling back to the trailer's Info entry when
// pdfcpu rejects the file.
type LedongthucBackend struct{}

func NewLedongthucBackend() *LedongthucBackend {
	api.DisableConfigDir()
	return &LedongthucBackend{}
}

func (b *LedongthucBackend) Open(data []byte) (doc Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = fmt.Errorf("pdf reader panicked: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF reader: %w", err)
	}
	return &ledongthucDocument{reader: reader, data: data}, nil
}

type ledongthucDocument struct {
	mu     sync.Mutex
	reader *pdf.Reader
	data   []byte
}

func (d *ledongthucDocument) PageCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.reader.NumPage()
}

func (d *ledongthucDocument) PageText(i int) (text string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("page %d: pdf reader panicked: %v", i+1, r)
		}
	}()

	page := d.reader.Page(i + 1)
	if page.V.IsNull() {
		return "", fmt.Errorf("page %d: null page object", i+1)
	}
	return page.GetPlainText(nil)
}

func (d *ledongthucDocument) Metadata() (map[string]string, error) {
	meta, err := readInfoWithPDFCPU(d.data)
	if err == nil {
		return meta, nil
	}

	fallback, fbErr := d.readTrailerInfo()
	if fbErr != nil {
		return nil, fmt.Errorf("pdfcpu: %v; trailer: %w", err, fbErr)
	}
	return fallback, nil
}

func readInfoWithPDFCPU(data []byte) (meta map[string]string, err error) {
	defer func() {
		if r := recover(); r != nil {
			meta = nil
			err = fmt.Errorf("pdfcpu panicked: %v", r)
		}
	}()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadAndValidate(bytes.NewReader(data), conf)
	if err != nil {
		return nil, err
	}

	// Document dates come from the xref table. Configuration.CreationDate is the write time.
	return compact(map[string]string{
		MetaTitle:            ctx.Title,
		MetaAuthor:           ctx.Author,
		MetaSubject:          ctx.Subject,
		MetaCreator:          ctx.Creator,
		MetaProducer:         ctx.Producer,
		MetaCreationDate:     ctx.XRefTable.CreationDate,
		MetaModificationDate: ctx.XRefTable.ModDate,
	}), nil
}

func (d *ledongthucDocument) readTrailerInfo() (meta map[string]string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			meta = nil
			err = fmt.Errorf("pdf reader panicked: %v", r)
		}
	}()

	info := d.reader.Trailer().Key("Info")
	if info.IsNull() {
		return map[string]string{}, nil
	}

	keys := map[string]string{
		MetaTitle:            "Title",
		MetaAuthor:           "Author",
		MetaSubject:          "Subject",
		MetaCreator:          "Creator",
		MetaProducer:         "Producer",
		MetaCreationDate:     "CreationDate",
		MetaModificationDate: "ModDate",
	}
	out := make(map[string]string, len(keys))
	for key, pdfKey := range keys {
		out[key] = info.Key(pdfKey).Text()
	}
	return compact(out), nil
}

func compact(m map[string]string) map[string]string {
	for k, v := range m {
		if strings.TrimSpace(v) == "" {
			delete(m, k)
		}
	}
	return m
}

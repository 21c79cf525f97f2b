package pdf_service

import (
	"bytes"
	"fmt"
	"strings"
)

// buildPDF assembles a minimal single-font PDF with one text line per page.
// An empty page string produces a page with an empty content stream.
func buildPDF(pages []string, info map[string]string) []byte {
	var objects []string

	// 1: catalog, 2: pages, 3: font, then page/content pairs, then info.
	objects = append(objects, "<< /Type /Catalog /Pages 2 0 R >>")

	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	objects = append(objects, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)))
	objects = append(objects, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")

	for i, text := range pages {
		contentRef := 5 + 2*i
		objects = append(objects, fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>",
			contentRef))

		stream := ""
		if text != "" {
			stream = fmt.Sprintf("BT /F1 12 Tf 72 712 Td (%s) Tj ET", text)
		}
		objects = append(objects, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream))
	}

	infoRef := 0
	if len(info) > 0 {
		var entries []string
		for _, key := range []string{"Title", "Author", "Subject", "Creator", "Producer", "CreationDate", "ModDate"} {
			if v, ok := info[key]; ok {
				entries = append(entries, fmt.Sprintf("/%s (%s)", key, v))
			}
		}
		objects = append(objects, "<< "+strings.Join(entries, " ")+" >>")
		infoRef = len(objects)
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}

	trailer := fmt.Sprintf("<< /Size %d /Root 1 0 R", len(objects)+1)
	if infoRef > 0 {
		trailer += fmt.Sprintf(" /Info %d 0 R", infoRef)
	}
	trailer += " >>"
	fmt.Fprintf(&buf, "trailer\n%s\nstartxref\n%d\n%%%%EOF\n", trailer, xref)

	return buf.Bytes()
}

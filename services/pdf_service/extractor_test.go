package pdf_service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/serisow/docqa/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePage struct {
	text  string
	err   error
	panic bool
}

type fakeDocument struct {
	pages   []fakePage
	meta    map[string]string
	metaErr error
}

func (d *fakeDocument) PageCount() int { return len(d.pages) }

func (d *fakeDocument) PageText(i int) (string, error) {
	p := d.pages[i]
	if p.panic {
		panic("corrupt content stream")
	}
	return p.text, p.err
}

func (d *fakeDocument) Metadata() (map[string]string, error) {
	return d.meta, d.metaErr
}

type fakeBackend struct {
	doc     *fakeDocument
	openErr error
}

func (b *fakeBackend) Open(data []byte) (Document, error) {
	if b.openErr != nil {
		return nil, b.openErr
	}
	return b.doc, nil
}

// recoveringDocument mirrors the production backend, which turns page panics into errors.
type recoveringDocument struct{ *fakeDocument }

func (d recoveringDocument) PageText(i int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.New("panic")
		}
	}()
	return d.fakeDocument.PageText(i)
}

type recoveringBackend struct{ doc *fakeDocument }

func (b recoveringBackend) Open(data []byte) (Document, error) {
	return recoveringDocument{b.doc}, nil
}

func newTestExtractor(t *testing.T, b Backend) *Extractor {
	t.Helper()
	e, err := NewExtractor(b, logging.Discard())
	require.NoError(t, err)
	return e
}

func TestNewExtractor_NoBackend(t *testing.T) {
	_, err := NewExtractor(nil, logging.Discard())
	assert.ErrorIs(t, err, ErrLibraryUnavailable)
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name           string
		backend        Backend
		wantKind       ExtractionKind
		wantText       string
		wantTotal      int
		wantProcessed  int
		wantTitle      string
		wantNoMetadata bool
	}{
		{
			name: "single page with metadata",
			backend: &fakeBackend{doc: &fakeDocument{
				pages: []fakePage{{text: "  Sample PDF text content \n"}},
				meta:  map[string]string{MetaTitle: "Test Document", MetaAuthor: "Test Author", MetaSubject: "  "},
			}},
			wantText:      "--- Page 1 ---\nSample PDF text content",
			wantTotal:     1,
			wantProcessed: 1,
			wantTitle:     "Test Document",
		},
		{
			name: "middle page fails",
			backend: &fakeBackend{doc: &fakeDocument{
				pages: []fakePage{{text: "first"}, {err: errors.New("bad stream")}, {text: "third"}},
			}},
			wantText:       "--- Page 1 ---\nfirst\n\n--- Page 3 ---\nthird",
			wantTotal:      3,
			wantProcessed:  2,
			wantNoMetadata: true,
		},
		{
			name: "middle page panics inside the library",
			backend: recoveringBackend{doc: &fakeDocument{
				pages: []fakePage{{text: "first"}, {panic: true}, {text: "third"}},
			}},
			wantText:       "--- Page 1 ---\nfirst\n\n--- Page 3 ---\nthird",
			wantTotal:      3,
			wantProcessed:  2,
			wantNoMetadata: true,
		},
		{
			name: "blank pages are not counted",
			backend: &fakeBackend{doc: &fakeDocument{
				pages: []fakePage{{text: "  \n"}, {text: "content"}},
			}},
			wantText:       "--- Page 2 ---\ncontent",
			wantTotal:      2,
			wantProcessed:  1,
			wantNoMetadata: true,
		},
		{
			name: "metadata failure is swallowed",
			backend: &fakeBackend{doc: &fakeDocument{
				pages:   []fakePage{{text: "content"}},
				metaErr: errors.New("broken info dict"),
			}},
			wantText:       "--- Page 1 ---\ncontent",
			wantTotal:      1,
			wantProcessed:  1,
			wantNoMetadata: true,
		},
		{
			name: "every page empty",
			backend: &fakeBackend{doc: &fakeDocument{
				pages: []fakePage{{text: ""}, {text: "   "}},
			}},
			wantKind: NoText,
		},
		{
			name: "every page fails",
			backend: &fakeBackend{doc: &fakeDocument{
				pages: []fakePage{{err: errors.New("x")}, {err: errors.New("y")}},
			}},
			wantKind: NoText,
		},
		{
			name:     "zero pages",
			backend:  &fakeBackend{doc: &fakeDocument{}},
			wantKind: NoText,
		},
		{
			name:     "unreadable bytes",
			backend:  &fakeBackend{openErr: errors.New("not a PDF file")},
			wantKind: OpenFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestExtractor(t, tt.backend)

			doc, err := e.Extract(context.Background(), []byte("%PDF-1.4"))
			if tt.wantKind != 0 {
				require.Error(t, err)
				assert.True(t, IsExtractionKind(err, tt.wantKind), "got %v", err)
				assert.Nil(t, doc)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantText, doc.Text)
			assert.Equal(t, tt.wantTotal, doc.Metadata.TotalPages)
			assert.Equal(t, tt.wantProcessed, doc.Metadata.PagesProcessed)
			assert.LessOrEqual(t, doc.Metadata.PagesProcessed, doc.Metadata.TotalPages)
			assert.Equal(t, len([]rune(doc.Text)), doc.Metadata.TextLength)
			if tt.wantTitle != "" {
				require.NotNil(t, doc.Metadata.Title)
				assert.Equal(t, tt.wantTitle, *doc.Metadata.Title)
				assert.Nil(t, doc.Metadata.Subject, "blank values are absent")
			}
			if tt.wantNoMetadata {
				assert.Nil(t, doc.Metadata.Title)
				assert.Nil(t, doc.Metadata.Author)
			}
		})
	}
}

func TestExtract_PagesProcessedMatchesNonEmptyPages(t *testing.T) {
	texts := []string{"a", "", "b", "  ", "c", "", "", "d"}
	pages := make([]fakePage, len(texts))
	want := 0
	for i, s := range texts {
		pages[i] = fakePage{text: s}
		if strings.TrimSpace(s) != "" {
			want++
		}
	}

	e := newTestExtractor(t, &fakeBackend{doc: &fakeDocument{pages: pages}})
	doc, err := e.Extract(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, want, doc.Metadata.PagesProcessed)
	assert.Equal(t, len(texts), doc.Metadata.TotalPages)
}

func TestExtract_CancelledContext(t *testing.T) {
	e := newTestExtractor(t, &fakeBackend{doc: &fakeDocument{pages: []fakePage{{text: "a"}}}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Extract(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestValidate(t *testing.T) {
	good := newTestExtractor(t, &fakeBackend{doc: &fakeDocument{pages: []fakePage{{text: "a"}}}})
	assert.True(t, good.Validate([]byte("%PDF")))

	bad := newTestExtractor(t, &fakeBackend{openErr: errors.New("Invalid PDF")})
	assert.False(t, bad.Validate([]byte("garbage")))
}

func TestLedongthucBackend(t *testing.T) {
	e := newTestExtractor(t, NewLedongthucBackend())

	data := buildPDF([]string{"Hello page one", "", "Hello page three"},
		map[string]string{"Title": "Test Document", "Author": "Test Author"})

	require.True(t, e.Validate(data))

	doc, err := e.Extract(context.Background(), data)
	require.NoError(t, err)

	assert.Equal(t, 3, doc.Metadata.TotalPages)
	assert.Equal(t, 2, doc.Metadata.PagesProcessed)
	assert.Contains(t, doc.Text, "--- Page 1 ---\n")
	assert.Contains(t, doc.Text, "Hello page one")
	assert.Contains(t, doc.Text, "--- Page 3 ---\n")
	assert.Contains(t, doc.Text, "Hello page three")
	assert.NotContains(t, doc.Text, "--- Page 2 ---")

	require.NotNil(t, doc.Metadata.Title)
	assert.Equal(t, "Test Document", *doc.Metadata.Title)
	require.NotNil(t, doc.Metadata.Author)
	assert.Equal(t, "Test Author", *doc.Metadata.Author)
}

func TestReadInfoWithPDFCPU_Dates(t *testing.T) {
	data := buildPDF([]string{"Dated page"}, map[string]string{
		"Title":        "Dated",
		"CreationDate": "D:20240115103000+00'00'",
		"ModDate":      "D:20240220091500+00'00'",
	})

	meta, err := readInfoWithPDFCPU(data)
	require.NoError(t, err)
	assert.Equal(t, "Dated", meta[MetaTitle])
	assert.Equal(t, "D:20240115103000+00'00'", meta[MetaCreationDate])
	assert.Equal(t, "D:20240220091500+00'00'", meta[MetaModificationDate])

	doc, err := newTestExtractor(t, NewLedongthucBackend()).Extract(context.Background(), data)
	require.NoError(t, err)
	require.NotNil(t, doc.Metadata.CreationDate)
	assert.Equal(t, "D:20240115103000+00'00'", *doc.Metadata.CreationDate)
	require.NotNil(t, doc.Metadata.ModificationDate)
	assert.Equal(t, "D:20240220091500+00'00'", *doc.Metadata.ModificationDate)
}

func TestLedongthucBackend_RejectsGarbage(t *testing.T) {
	e := newTestExtractor(t, NewLedongthucBackend())

	assert.False(t, e.Validate([]byte("fake pdf content")))

	_, err := e.Extract(context.Background(), []byte("fake pdf content"))
	assert.True(t, IsExtractionKind(err, OpenFailed), "got %v", err)
}

func TestLedongthucBackend_NoText(t *testing.T) {
	e := newTestExtractor(t, NewLedongthucBackend())

	_, err := e.Extract(context.Background(), buildPDF([]string{"", ""}, nil))
	assert.True(t, IsExtractionKind(err, NoText), "got %v", err)
}

package document

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	darerrors "github.com/willfineberg/chi-tif-parser/internal/dar/errors"
)

// Letter-size height, used when a page carries no media box.
const defaultPageHeight = 792.0

// Loader reads report PDFs from disk into Documents.
type Loader struct {
	maxFileSize int64
}

// NewLoader creates a loader with the given file size limit.
func NewLoader(maxFileSize int64) *Loader {
	return &Loader{maxFileSize: maxFileSize}
}

// Load validates and extracts one report PDF.
func (l *Loader) Load(path string) (*Document, error) {
	if err := l.validate(path); err != nil {
		return nil, darerrors.Wrap(darerrors.KindDocumentUnreadable, "validation failed", err).
			WithDocument(filepath.Base(path))
	}

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, darerrors.Wrap(darerrors.KindDocumentUnreadable, "cannot open PDF", err).
			WithDocument(filepath.Base(path))
	}
	defer f.Close()

	doc := &Document{
		ID:   filepath.Base(path),
		Path: path,
	}
	for num := 1; num <= reader.NumPage(); num++ {
		page := reader.Page(num)
		if page.V.IsNull() {
			doc.Pages = append(doc.Pages, Page{Number: num, Height: defaultPageHeight})
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// A page that fails plain-text extraction can still carry
			// usable positioned runs; keep going.
			text = ""
		}

		width, height := pageSize(page)
		content := page.Content()
		doc.Pages = append(doc.Pages, Page{
			Number: num,
			Text:   text,
			Words:  assembleWords(content.Text, height),
			Width:  width,
			Height: height,
		})
	}
	return doc, nil
}

// validate performs the cheap checks before parsing: a regular .pdf file
// under the size limit that pdfcpu accepts as structurally sound.
func (l *Loader) validate(path string) error {
	if path == "" {
		return fmt.Errorf("path cannot be empty")
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("file does not exist: %s", path)
	}
	if err != nil {
		return fmt.Errorf("cannot access file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", path)
	}
	if !strings.HasSuffix(strings.ToLower(path), ".pdf") {
		return fmt.Errorf("file is not a PDF: %s", path)
	}
	if info.Size() > l.maxFileSize {
		return fmt.Errorf("file too large: %d bytes (max: %d bytes)", info.Size(), l.maxFileSize)
	}

	if err := api.ValidateFile(path, nil); err != nil {
		return fmt.Errorf("structural validation failed: %w", err)
	}
	return nil
}

// pageSize reads the media box, walking up to the page tree root when the
// box is inherited. Falls back to US Letter.
func pageSize(page pdf.Page) (width, height float64) {
	node := page.V
	for !node.IsNull() {
		if box := node.Key("MediaBox"); !box.IsNull() && box.Len() == 4 {
			w := box.Index(2).Float64() - box.Index(0).Float64()
			h := box.Index(3).Float64() - box.Index(1).Float64()
			if w > 0 && h > 0 {
				return w, h
			}
		}
		node = node.Key("Parent")
	}
	return 612.0, defaultPageHeight
}

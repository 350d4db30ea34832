// Package ocr extracts text from uploaded PDFs and images.
package ocr

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/otiai10/gosseract/v2"

	"github.com/n0b0dy-ai/assistant-backend/pkg/metrics"
)

// Processor extracts text from document uploads. PDFs are read directly;
// images go through Tesseract with the configured language set.
type Processor struct {
	languages string
}

// NewProcessor creates a processor recognizing the given Tesseract languages,
// e.g. "vie+eng".
func NewProcessor(languages string) *Processor {
	return &Processor{languages: languages}
}

// IsPDF reports whether the upload is a PDF, by filename or magic bytes.
func IsPDF(filename string, data []byte) bool {
	if strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		return true
	}
	return bytes.HasPrefix(data, []byte("%PDF"))
}

// ExtractFromBytes returns the text content of the upload, dispatching on
// the detected file kind.
func (p *Processor) ExtractFromBytes(filename string, data []byte) (string, error) {
	if IsPDF(filename, data) {
		text, err := p.extractPDF(data)
		p.record("pdf", err)
		return text, err
	}
	text, err := p.extractImage(data)
	p.record("image", err)
	return text, err
}

func (p *Processor) record(kind string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.OCRRequestsTotal.WithLabelValues(kind, status).Inc()
}

func (p *Processor) extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("failed to read pdf page %d: %w", i, err)
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String()), nil
}

func (p *Processor) extractImage(data []byte) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if p.languages != "" {
		if err := client.SetLanguage(strings.Split(p.languages, "+")...); err != nil {
			return "", fmt.Errorf("failed to set ocr languages: %w", err)
		}
	}
	if err := client.SetImageFromBytes(data); err != nil {
		return "", fmt.Errorf("failed to load image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("failed to recognize text: %w", err)
	}
	return strings.TrimSpace(text), nil
}

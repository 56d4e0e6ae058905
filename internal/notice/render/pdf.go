package render

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/jung-kurt/gofpdf"

	"rentnotice-cloud/internal/notice/layout"
)

const pdfFont = "Helvetica"

// PDFMetrics measures text with gofpdf's Helvetica core font metrics in points.
type PDFMetrics struct {
	mu        sync.Mutex
	pdf       *gofpdf.Fpdf
	translate func(string) string
}

// NewPDFMetrics builds a measuring document that is never output.
func NewPDFMetrics() *PDFMetrics {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{UnitStr: "pt", Size: gofpdf.SizeType{Wd: 612, Ht: 792}})
	pdf.SetFont(pdfFont, "", 12)
	return &PDFMetrics{pdf: pdf, translate: pdf.UnicodeTranslatorFromDescriptor("")}
}

// WidthOfText implements layout.FontMetrics.
func (m *PDFMetrics) WidthOfText(text string, fontSize float64) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pdf.SetFontSize(fontSize)
	return m.pdf.GetStringWidth(m.translate(text))
}

// PDFRenderer draws every run with Helvetica at its own size.
// Run.Y is the top of the line box; the baseline sits one font size below it.
type PDFRenderer struct{}

// ContentType implements Renderer.
func (PDFRenderer) ContentType() string { return "application/pdf" }

// Render implements Renderer.
func (PDFRenderer) Render(pages []layout.Page) ([]byte, error) {
	if len(pages) == 0 {
		return nil, ErrNoPages
	}
	first := pages[0]
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: first.Width, Ht: first.Height},
	})
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pdf.SetCreator("rentnotice-cloud", true)
	translate := pdf.UnicodeTranslatorFromDescriptor("")

	for _, page := range pages {
		pdf.AddPageFormat("P", gofpdf.SizeType{Wd: page.Width, Ht: page.Height})
		for _, run := range page.Runs {
			pdf.SetFont(pdfFont, "", run.FontSize)
			pdf.Text(run.X, run.Y+run.FontSize, translate(run.Text))
		}
		if pdf.Err() {
			return nil, fmt.Errorf("render: page %d: %w", page.Number, pdf.Error())
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render: pdf output: %w", err)
	}
	return buf.Bytes(), nil
}

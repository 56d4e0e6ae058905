// Package render turns laid-out pages into document bytes.
package render

import (
	"errors"

	"rentnotice-cloud/internal/notice/layout"
)

const (
	FormatPDF  = "pdf"
	FormatText = "txt"
)

var (
	// ErrNoPages is returned when a renderer is handed an empty page list.
	ErrNoPages = errors.New("render: no pages")
	// ErrUnknownFormat is returned by ForFormat.
	ErrUnknownFormat = errors.New("render: unknown format")
)

// Renderer writes pages into a single document.
type Renderer interface {
	Render(pages []layout.Page) ([]byte, error)
	ContentType() string
}

// ForFormat returns the renderer and the metrics it lays out against.
func ForFormat(format string) (Renderer, layout.FontMetrics, error) {
	switch format {
	case "", FormatPDF:
		return PDFRenderer{}, NewPDFMetrics(), nil
	case FormatText:
		return TextRenderer{}, layout.CourierMetrics(), nil
	default:
		return nil, nil, ErrUnknownFormat
	}
}

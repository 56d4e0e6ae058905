package render

import (
	"strings"

	"rentnotice-cloud/internal/notice/layout"
)

// TextRenderer writes one line per run and separates pages with a form feed.
type TextRenderer struct{}

// ContentType implements Renderer.
func (TextRenderer) ContentType() string { return "text/plain; charset=utf-8" }

// Render implements Renderer.
func (TextRenderer) Render(pages []layout.Page) ([]byte, error) {
	if len(pages) == 0 {
		return nil, ErrNoPages
	}
	var b strings.Builder
	for i, page := range pages {
		if i > 0 {
			b.WriteString("\f")
		}
		for _, run := range page.Runs {
			b.WriteString(run.Text)
			b.WriteByte('\n')
		}
	}
	return []byte(b.String()), nil
}

// Package layout places notice text on fixed-size pages.
//
// Text is split on explicit line breaks, word-wrapped greedily against the
// content width reported by a FontMetrics provider, and paginated whenever the
// next line would cross the bottom margin. Coordinates use a top-left origin;
// a run's Y is the top of its line box.
package layout

import (
	"errors"
	"fmt"
	"strings"
)

// LineHeightFactor converts a font size into the vertical advance per line.
const LineHeightFactor = 1.4

var (
	// ErrContentTooNarrow is returned when not even one character fits the content width.
	ErrContentTooNarrow = errors.New("layout: content width too narrow")
	// ErrPageTooShort is returned when no line fits between the top and bottom margins.
	ErrPageTooShort = errors.New("layout: page too short")
	// ErrInvalidConfig is returned for non-positive sizes.
	ErrInvalidConfig = errors.New("layout: invalid config")
)

// FontMetrics measures rendered text. Implementations must be deterministic:
// the same text and size always yield the same width.
type FontMetrics interface {
	WidthOfText(text string, fontSize float64) float64
}

// Config describes the page geometry and font sizes.
type Config struct {
	PageWidth     float64 `yaml:"page_width"`
	PageHeight    float64 `yaml:"page_height"`
	Margin        float64 `yaml:"margin"`
	FontSize      float64 `yaml:"font_size"`
	TitleFontSize float64 `yaml:"title_font_size"`
}

// LetterConfig is US Letter in points with one-inch margins.
func LetterConfig() Config {
	return Config{PageWidth: 612, PageHeight: 792, Margin: 72, FontSize: 11, TitleFontSize: 16}
}

// ContentWidth is the usable width between the side margins.
func (c Config) ContentWidth() float64 { return c.PageWidth - 2*c.Margin }

// LineHeight is the vertical advance for body text.
func (c Config) LineHeight() float64 { return c.FontSize * LineHeightFactor }

// Validate checks the geometry before any text is placed.
func (c Config) Validate() error {
	if c.PageWidth <= 0 || c.PageHeight <= 0 || c.Margin < 0 || c.FontSize <= 0 {
		return fmt.Errorf("%w: page %.2fx%.2f margin %.2f font %.2f", ErrInvalidConfig, c.PageWidth, c.PageHeight, c.Margin, c.FontSize)
	}
	if c.ContentWidth() <= 0 {
		return fmt.Errorf("%w: width %.2f", ErrContentTooNarrow, c.ContentWidth())
	}
	return nil
}

// Run is one positioned line of text.
type Run struct {
	Text     string  `json:"text"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	FontSize float64 `json:"font_size"`
}

// Page is a laid-out page. Pages are not mutated after Layout returns.
type Page struct {
	Number int     `json:"number"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Runs   []Run   `json:"runs"`
}

// Document is the input to Layout.
type Document struct {
	// Title is centered on the first page only.
	Title string
	// Header lines follow the title, left aligned.
	Header []string
	Body   string
}

// LayoutText lays out body text without a title or header.
func LayoutText(text string, cfg Config, metrics FontMetrics) ([]Page, error) {
	return Layout(Document{Body: text}, cfg, metrics)
}

// Layout wraps and paginates a document. It always returns at least one page.
func Layout(doc Document, cfg Config, metrics FontMetrics) ([]Page, error) {
	if metrics == nil {
		return nil, errors.New("layout: nil font metrics")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	titleSize := cfg.TitleFontSize
	if titleSize <= 0 {
		titleSize = cfg.FontSize
	}

	c := &cursor{cfg: cfg}
	c.newPage()

	if title := strings.TrimSpace(doc.Title); title != "" {
		lines, err := wrapLine(title, cfg.ContentWidth(), titleSize, metrics)
		if err != nil {
			return nil, err
		}
		for _, line := range lines {
			x := (cfg.PageWidth - metrics.WidthOfText(line, titleSize)) / 2
			if err := c.place(line, x, titleSize); err != nil {
				return nil, err
			}
		}
		c.space(cfg.LineHeight())
	}

	if len(doc.Header) > 0 {
		for _, header := range doc.Header {
			if err := c.text(header, metrics); err != nil {
				return nil, err
			}
		}
		c.space(cfg.LineHeight())
	}

	if err := c.text(doc.Body, metrics); err != nil {
		return nil, err
	}
	return c.pages, nil
}

type cursor struct {
	cfg   Config
	pages []Page
	y     float64
}

func (c *cursor) newPage() {
	c.pages = append(c.pages, Page{
		Number: len(c.pages) + 1,
		Width:  c.cfg.PageWidth,
		Height: c.cfg.PageHeight,
	})
	c.y = c.cfg.Margin
}

func (c *cursor) bottom() float64 { return c.cfg.PageHeight - c.cfg.Margin }

// space advances the cursor without placing a run. A spacer never opens a page;
// the next placed run does if the cursor has crossed the bottom margin.
func (c *cursor) space(height float64) {
	c.y += height
}

func (c *cursor) place(text string, x, fontSize float64) error {
	lineHeight := fontSize * LineHeightFactor
	if c.y+lineHeight > c.bottom() {
		current := &c.pages[len(c.pages)-1]
		if len(current.Runs) == 0 && c.y <= c.cfg.Margin {
			return fmt.Errorf("%w: line height %.2f exceeds %.2f", ErrPageTooShort, lineHeight, c.bottom()-c.cfg.Margin)
		}
		c.newPage()
		if c.y+lineHeight > c.bottom() {
			return fmt.Errorf("%w: line height %.2f exceeds %.2f", ErrPageTooShort, lineHeight, c.bottom()-c.cfg.Margin)
		}
	}
	page := &c.pages[len(c.pages)-1]
	page.Runs = append(page.Runs, Run{Text: text, X: x, Y: c.y, FontSize: fontSize})
	c.y += lineHeight
	return nil
}

// text places multi-line body text at the left margin.
func (c *cursor) text(body string, metrics FontMetrics) error {
	body = strings.ReplaceAll(body, "\r\n", "\n")
	for _, raw := range strings.Split(body, "\n") {
		if strings.TrimSpace(raw) == "" {
			c.space(c.cfg.LineHeight())
			continue
		}
		lines, err := wrapLine(raw, c.cfg.ContentWidth(), c.cfg.FontSize, metrics)
		if err != nil {
			return err
		}
		for _, line := range lines {
			if err := c.place(line, c.cfg.Margin, c.cfg.FontSize); err != nil {
				return err
			}
		}
	}
	return nil
}

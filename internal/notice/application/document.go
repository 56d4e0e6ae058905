package application

import (
	"fmt"
	"strings"

	notice "rentnotice-cloud/internal/notice/domain"
	"rentnotice-cloud/internal/notice/layout"
	"rentnotice-cloud/internal/notice/render"
	"rentnotice-cloud/internal/observability/metrics"
)

// DocumentOptions controls how composed notices become documents.
type DocumentOptions struct {
	Layout layout.Config
	// Title overrides the notice subject as the document heading.
	Title string
	// Defaults fill editable sections the caller leaves blank.
	Defaults notice.EditableSections
}

// DefaultDocumentOptions lays notices out on US Letter.
func DefaultDocumentOptions() DocumentOptions {
	return DocumentOptions{Layout: layout.LetterConfig()}
}

// RenderedDocument is a finished notice document.
type RenderedDocument struct {
	Data        []byte
	ContentType string
	Format      string
	Pages       int
}

// Filename suggests a download name for the document.
func (d RenderedDocument) Filename(n notice.ComposedNotice) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		case r == ' ' || r == '_':
			return '-'
		default:
			return -1
		}
	}, n.Tenant.Name)
	if name == "" {
		name = "tenant"
	}
	return fmt.Sprintf("late-rent-notice-%s-%s.%s", name, n.Period, d.Format)
}

// RenderNotice lays out and renders a composed notice in the given format.
func RenderNotice(n notice.ComposedNotice, format string, opts DocumentOptions) (*RenderedDocument, error) {
	if format == "" {
		format = render.FormatPDF
	}
	renderer, fontMetrics, err := render.ForFormat(format)
	if err != nil {
		return nil, err
	}
	title := opts.Title
	if strings.TrimSpace(title) == "" {
		title = notice.Subject
	}
	pages, err := layout.Layout(layout.Document{
		Title:  title,
		Header: n.HeaderLines(),
		Body:   n.Text,
	}, opts.Layout, fontMetrics)
	if err != nil {
		return nil, err
	}
	metrics.ObserveLayoutPages(len(pages))

	data, err := renderer.Render(pages)
	if err != nil {
		return nil, err
	}
	return &RenderedDocument{
		Data:        data,
		ContentType: renderer.ContentType(),
		Format:      format,
		Pages:       len(pages),
	}, nil
}

// Sections fills blank editable sections from the configured defaults.
func (o DocumentOptions) Sections(in notice.EditableSections) notice.EditableSections {
	if strings.TrimSpace(in.Intro) == "" {
		in.Intro = o.Defaults.Intro
	}
	if strings.TrimSpace(in.PaymentInstructions) == "" {
		in.PaymentInstructions = o.Defaults.PaymentInstructions
	}
	if strings.TrimSpace(in.ExtraNotes) == "" {
		in.ExtraNotes = o.Defaults.ExtraNotes
	}
	return in
}

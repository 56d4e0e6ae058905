package layout

import "unicode/utf8"

// FixedWidthMetrics measures every rune as Advance × font size.
// It suits plain-text output and tests that need predictable widths.
type FixedWidthMetrics struct {
	Advance float64
}

// CourierMetrics matches the 0.6em advance of the Courier core font.
func CourierMetrics() FixedWidthMetrics { return FixedWidthMetrics{Advance: 0.6} }

// WidthOfText implements FontMetrics.
func (m FixedWidthMetrics) WidthOfText(text string, fontSize float64) float64 {
	return float64(utf8.RuneCountInString(text)) * m.Advance * fontSize
}

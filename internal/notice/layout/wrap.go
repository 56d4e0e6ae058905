package layout

import (
	"fmt"
	"strings"
)

// wrapLine splits a single line greedily so every piece fits width.
// Breaks happen at the last space at or before the overflow point; a word
// wider than the line is broken at the widest prefix that fits.
func wrapLine(line string, width, fontSize float64, metrics FontMetrics) ([]string, error) {
	runes := []rune(strings.TrimRight(line, " \t"))
	var out []string
	for len(runes) > 0 {
		if metrics.WidthOfText(string(runes), fontSize) <= width {
			out = append(out, string(runes))
			break
		}

		fit := fitPrefix(runes, width, fontSize, metrics)
		if fit == 0 {
			return nil, fmt.Errorf("%w: %q does not fit %.2f at size %.2f", ErrContentTooNarrow, string(runes[0]), width, fontSize)
		}

		brk := -1
		for i := fit; i > 0; i-- {
			if runes[i] == ' ' {
				brk = i
				break
			}
		}
		if brk > 0 {
			if head := strings.TrimRight(string(runes[:brk]), " "); head != "" {
				out = append(out, head)
				runes = trimLeadingSpaces(runes[brk+1:])
				continue
			}
		}

		out = append(out, string(runes[:fit]))
		runes = runes[fit:]
	}
	return out, nil
}

// fitPrefix returns the largest n < len(runes) such that runes[:n] fits width.
// Widths are assumed non-decreasing with prefix length.
func fitPrefix(runes []rune, width, fontSize float64, metrics FontMetrics) int {
	lo, hi := 0, len(runes)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if metrics.WidthOfText(string(runes[:mid]), fontSize) <= width {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

func trimLeadingSpaces(runes []rune) []rune {
	for len(runes) > 0 && runes[0] == ' ' {
		runes = runes[1:]
	}
	return runes
}

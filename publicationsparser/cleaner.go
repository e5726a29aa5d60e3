package publicationsparser

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DateLayout is the layout every parseable date is normalized to (month-day-year).
const DateLayout = "01-02-2006"

// dateLayouts are tried in order. Numeric slashed dates are read day first.
var dateLayouts = []string{
	"2/1/2006",
	"2006-01-02",
	"2 January 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"Jan 2, 2006",
	"2006/01/02",
}

// CleanText lower-cases and trims a text column.
func CleanText(s string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(s))
}

// NormalizeDate rewrites a date in any supported layout to DateLayout. Values matching
// no layout are returned trimmed and otherwise untouched, as is the empty string.
func NormalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(DateLayout)
		}
	}
	return s
}

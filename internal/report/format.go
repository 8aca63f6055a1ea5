// Package report builds the human-readable side of an impact assessment:
// locale-aware counts, the minimum needs table, demographic breakdowns and
// the impact summary table.
package report

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formatter writes integers with the thousand separator of a locale.
// A Formatter is not safe for concurrent use.
type Formatter struct {
	tag     language.Tag
	printer *message.Printer
}

// NewFormatter returns a Formatter for a BCP 47 locale such as "id" or "en-US".
func NewFormatter(locale string) (*Formatter, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("invalid locale %q: %w", locale, err)
	}
	return &Formatter{tag: tag, printer: message.NewPrinter(tag)}, nil
}

// Int formats n with thousand separators.
func (f *Formatter) Int(n int64) string {
	return f.printer.Sprintf("%d", n)
}

// Separator returns the thousand separator of the locale.
func (f *Formatter) Separator() string {
	s := f.printer.Sprintf("%d", 1000)
	return strings.TrimSuffix(strings.TrimPrefix(s, "1"), "000")
}

// Locale returns the locale tag.
func (f *Formatter) Locale() string { return f.tag.String() }

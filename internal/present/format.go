// Package present turns aggregate buckets into chart-ready points and
// formats money for display. Values handed to charts stay raw; only the
// Display strings carry the currency prefix and grouping.
package present

import (
	"fmt"
	"strconv"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"fintrack/internal/core"
)

const (
	DefaultPrefix = "Rs. "
	DefaultLocale = "en"

	// NotAvailable stands in for a statistic over no data.
	NotAvailable = "N/A"
)

// Formatter renders money as prefix + locale-grouped number, e.g. "Rs. 1,500.5".
type Formatter struct {
	prefix  string
	printer *message.Printer
}

func NewFormatter(prefix, locale string) (*Formatter, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("parse locale %q: %w", locale, err)
	}
	return &Formatter{prefix: prefix, printer: message.NewPrinter(tag)}, nil
}

// DefaultFormatter uses DefaultPrefix and English grouping.
func DefaultFormatter() *Formatter {
	return &Formatter{prefix: DefaultPrefix, printer: message.NewPrinter(language.English)}
}

func (f *Formatter) Money(m core.Money) string {
	return f.prefix + f.printer.Sprint(number.Decimal(m.Float64(), number.MaxFractionDigits(2)))
}

// Number groups thousands without the currency prefix.
func (f *Formatter) Number(n int) string {
	return f.printer.Sprint(number.Decimal(n))
}

// MonthLabel renders "Jan 2024".
func MonthLabel(year, month int) string {
	return time.Month(month).String()[:3] + " " + strconv.Itoa(year)
}

// DayLabel renders "5 Jan 24".
func DayLabel(d core.Date) string {
	return fmt.Sprintf("%d %s %02d", d.Day(), time.Month(d.Month()).String()[:3], d.Year()%100)
}

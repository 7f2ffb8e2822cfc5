package importer

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/epeers/fintrack/internal/models"
)

// dateLayouts are tried in order. Sources use ISO dates, compact KRX dates, dotted Naver
// dates, US slash dates and spelled-out month names.
var dateLayouts = []string{
	"2006-01-02",
	"20060102",
	"2006.01.02",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

// ParseDate parses s with any of the known source date layouts.
func ParseDate(s string) (models.Date, error) {
	norm := normalizeDate(s)
	if norm == "" || strings.EqualFold(norm, "none") || norm == "-" {
		return models.Date{}, fmt.Errorf("missing date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, norm); err == nil {
			return models.DateOf(t), nil
		}
	}
	return models.Date{}, fmt.Errorf("unrecognised date %q", s)
}

// normalizeDate collapses whitespace, drops a trailing dot ("2025.01.03.") and
// puts exactly one space after a comma ("Jan 2,2025" -> "Jan 2, 2025").
func normalizeDate(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	s = strings.TrimSuffix(s, ".")
	s = strings.ReplaceAll(s, " ,", ",")
	s = strings.ReplaceAll(s, ", ", ",")
	s = strings.ReplaceAll(s, ",", ", ")
	return s
}

var amountReplacer = strings.NewReplacer("$", "", "₩", "", "원", "", ",", "", " ", "", "\u00a0", "")

// ParseAmount parses a price, amount or rate after stripping currency symbols and thousands separators.
func ParseAmount(s string) (decimal.Decimal, error) {
	clean := amountReplacer.Replace(strings.TrimSpace(s))
	if clean == "" || strings.EqualFold(clean, "none") || clean == "-" {
		return decimal.Zero, fmt.Errorf("missing amount")
	}
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("unrecognised amount %q", s)
	}
	return d, nil
}

// Window is an inclusive date range; a zero bound is open.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether d falls inside w
func (w Window) Contains(d models.Date) bool {
	if !w.Start.IsZero() && d.Before(models.DateOf(w.Start).Time) {
		return false
	}
	if !w.End.IsZero() && d.After(models.DateOf(w.End).Time) {
		return false
	}
	return true
}

// InYears reports whether d falls in one of years. An empty list accepts every date.
func InYears(d models.Date, years []int) bool {
	if len(years) == 0 {
		return true
	}
	for _, y := range years {
		if d.Year() == y {
			return true
		}
	}
	return false
}

package util

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/harrisonrobin/floaat/pkg/model"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// isoShape matches input that is meant as YYYY-MM-DD even when the date
// itself does not exist.
var isoShape = regexp.MustCompile(`^\d{4}-\d{1,2}-\d{1,2}$`)

var parser = func() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}()

// ParseDate parses a user supplied date. ISO dates (2024-01-31) are tried
// first, then natural language such as "yesterday" or "last friday",
// relative to now.
func ParseDate(input string, now time.Time) (model.Date, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return model.Date{}, fmt.Errorf("empty date")
	}
	if isoShape.MatchString(input) {
		d, err := model.ParseDate(input)
		if err != nil {
			return model.Date{}, fmt.Errorf("invalid date '%s': %w", input, err)
		}
		return d, nil
	}

	r, err := parser.Parse(input, now)
	if err != nil {
		return model.Date{}, fmt.Errorf("failed to parse date '%s': %w", input, err)
	}
	// the match must cover the whole input
	if r == nil || r.Index != 0 || len(r.Text) != len(input) {
		return model.Date{}, fmt.Errorf("failed to parse date '%s': use YYYY-MM-DD", input)
	}
	return model.DateOf(r.Time), nil
}

// StartOfWeek returns the Monday of the week containing d.
func StartOfWeek(d model.Date) model.Date {
	weekday := int(d.Weekday())
	if weekday == 0 { // Sunday
		weekday = 7
	}
	return d.AddDays(-(weekday - 1))
}

// ThisWeek returns Monday..Sunday of the week containing d.
func ThisWeek(d model.Date) model.DateRange {
	start := StartOfWeek(d)
	return model.DateRange{Start: start, End: start.AddDays(6)}
}

// LastWeek returns Monday..Sunday of the week before the one containing d.
func LastWeek(d model.Date) model.DateRange {
	return ThisWeek(d.AddDays(-7))
}

// FormatHours renders fractional hours as h:mm.
func FormatHours(hours float64) string {
	minutes := int(math.Round(hours * 60))
	sign := ""
	if minutes < 0 {
		sign = "-"
		minutes = -minutes
	}
	return fmt.Sprintf("%s%d:%02d", sign, minutes/60, minutes%60)
}

package util

import (
	"testing"
	"time"

	"github.com/harrisonrobin/floaat/pkg/model"
)

func TestParseDateISO(t *testing.T) {
	now := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	d, err := ParseDate(" 2024-01-05 ", now)
	if err != nil {
		t.Fatalf("ParseDate failed: %v", err)
	}
	if d != (model.Date{Year: 2024, Month: time.January, Day: 5}) {
		t.Errorf("Expected 2024-01-05, got %s", d)
	}
}

func TestParseDateSingleDigits(t *testing.T) {
	now := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	d, err := ParseDate("2024-3-5", now)
	if err != nil {
		t.Fatalf("ParseDate failed: %v", err)
	}
	if d.String() != "2024-03-05" {
		t.Errorf("Expected 2024-03-05, got %s", d)
	}
}

func TestParseDateNaturalLanguage(t *testing.T) {
	now := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	d, err := ParseDate("yesterday", now)
	if err != nil {
		t.Fatalf("ParseDate failed: %v", err)
	}
	if d.String() != "2024-01-09" {
		t.Errorf("Expected 2024-01-09, got %s", d)
	}
}

func TestParseDateInvalid(t *testing.T) {
	now := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	for _, in := range []string{
		"", "   ", "gibberish",
		"2024-02-30", "2024-13-01", "2024-01-32", "2023-02-29",
		"yesterday please", "see you tomorrow",
	} {
		if _, err := ParseDate(in, now); err == nil {
			t.Errorf("Expected error for %q", in)
		}
	}
}

func TestWeeks(t *testing.T) {
	sunday := model.Date{Year: 2024, Month: time.January, Day: 7}
	w := ThisWeek(sunday)
	if w.Start.String() != "2024-01-01" || w.End.String() != "2024-01-07" {
		t.Errorf("Expected 2024-01-01..2024-01-07, got %s", w)
	}
	lw := LastWeek(sunday)
	if lw.Start.String() != "2023-12-25" || lw.End.String() != "2023-12-31" {
		t.Errorf("Expected 2023-12-25..2023-12-31, got %s", lw)
	}
}

func TestFormatHours(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0:00"},
		{1.5, "1:30"},
		{0.25, "0:15"},
		{7.999, "8:00"},
		{-0.5, "-0:30"},
	}
	for _, tt := range tests {
		if got := FormatHours(tt.in); got != tt.want {
			t.Errorf("FormatHours(%v) = %q, expected %q", tt.in, got, tt.want)
		}
	}
}

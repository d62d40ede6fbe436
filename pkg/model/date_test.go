package model

import (
	"encoding/json"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestDateArithmetic(t *testing.T) {
	d := Date{Year: 2024, Month: time.February, Day: 28}
	if got := d.AddDays(1).String(); got != "2024-02-29" {
		t.Errorf("Expected leap day, got %s", got)
	}
	if got := d.AddDays(2).String(); got != "2024-03-01" {
		t.Errorf("Expected 2024-03-01, got %s", got)
	}
	if got := d.AddMonths(-2).String(); got != "2023-12-28" {
		t.Errorf("Expected 2023-12-28, got %s", got)
	}
	if !d.Before(d.AddDays(1)) || d.After(d) {
		t.Error("Before/After ordering is wrong")
	}
}

func TestDateRange(t *testing.T) {
	r := DateRange{
		Start: Date{Year: 2024, Month: time.January, Day: 1},
		End:   Date{Year: 2024, Month: time.January, Day: 7},
	}
	days := r.Days()
	if len(days) != 7 {
		t.Fatalf("Expected 7 days, got %d", len(days))
	}
	if !r.Contains(r.Start) || !r.Contains(r.End) {
		t.Error("Expected range to be inclusive")
	}
	if r.Contains(r.End.AddDays(1)) || r.Contains(r.Start.AddDays(-1)) {
		t.Error("Expected dates outside the range to be excluded")
	}
}

func TestDateSetSorted(t *testing.T) {
	a, _ := ParseDate("2024-01-05")
	b, _ := ParseDate("2023-12-31")
	c, _ := ParseDate("2024-01-02")
	s := NewDateSet(a, b, c, a)
	sorted := s.Sorted()
	if len(sorted) != 3 || sorted[0] != b || sorted[1] != c || sorted[2] != a {
		t.Errorf("Unexpected order: %v", sorted)
	}
}

func TestDateEncoding(t *testing.T) {
	d, err := ParseDate("2024-01-05")
	if err != nil {
		t.Fatalf("ParseDate failed: %v", err)
	}
	b, err := json.Marshal(TimeEntry{Date: d})
	if err != nil {
		t.Fatalf("json.Marshal failed: %v", err)
	}
	var back TimeEntry
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("json.Unmarshal failed: %v", err)
	}
	if back.Date != d {
		t.Errorf("Expected %s after JSON round trip, got %s", d, back.Date)
	}

	y, err := yaml.Marshal(map[string]Date{"date": d})
	if err != nil {
		t.Fatalf("yaml.Marshal failed: %v", err)
	}
	if string(y) != "date: \"2024-01-05\"\n" && string(y) != "date: 2024-01-05\n" {
		t.Errorf("Unexpected YAML: %q", y)
	}

	if _, err := ParseDate("05/01/2024"); err == nil {
		t.Error("Expected error for non-ISO date")
	}
}

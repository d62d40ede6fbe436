package report

import (
	"context"
	"errors"
	"testing"

	"github.com/harrisonrobin/floaat/pkg/fake"
	"github.com/harrisonrobin/floaat/pkg/model"
)

func day(d int) model.Date {
	return model.Date{Year: 2024, Month: 3, Day: d}
}

func newSource() *fake.Source {
	return &fake.Source{
		Projects: []model.Project{
			{ID: 1, Name: "Website", Active: true},
			{ID: 45, Name: "Website / Design", Active: true, ParentID: model.Int64(1)},
			{ID: 2, Name: "Other", Active: true},
		},
		Entries: []model.TimeEntry{
			{ID: 1, Date: day(4), ProjectID: 1, Notes: "Standup", Hours: 0.25},
			{ID: 2, Date: day(4), ProjectID: 1, Notes: "Mockups", Hours: 2, PhaseID: model.Int64(45)},
			{ID: 3, Date: day(4), ProjectID: 1, Notes: "Mockups ", Hours: 1.5, PhaseID: model.Int64(45)},
			{ID: 4, Date: day(5), ProjectID: 1, Notes: "Standup", Hours: 0.25},
			{ID: 5, Date: day(5), ProjectID: 2, Notes: "Elsewhere", Hours: 3},
			{ID: 6, Date: day(3), ProjectID: 1, Notes: "Earlier", Hours: 1},
		},
	}
}

func TestLastEntry(t *testing.T) {
	last, ok, err := LastEntry(context.Background(), newSource(), day(10))
	if err != nil {
		t.Fatalf("LastEntry failed: %v", err)
	}
	if !ok || last != day(5) {
		t.Errorf("Expected %s, got %s (ok=%v)", day(5), last, ok)
	}
}

func TestLastEntryNone(t *testing.T) {
	_, ok, err := LastEntry(context.Background(), &fake.Source{}, day(10))
	if err != nil {
		t.Fatalf("LastEntry failed: %v", err)
	}
	if ok {
		t.Error("Expected no last entry")
	}
}

func TestLastEntryError(t *testing.T) {
	src := &fake.Source{Err: errors.New("down")}
	if _, _, err := LastEntry(context.Background(), src, day(10)); err == nil {
		t.Error("Expected an error")
	}
}

func TestWeek(t *testing.T) {
	// 2024-03-06 is a Wednesday
	days, err := Week(context.Background(), newSource(), day(6))
	if err != nil {
		t.Fatalf("Week failed: %v", err)
	}
	if len(days) != 7 {
		t.Fatalf("Expected 7 days, got %d", len(days))
	}
	if days[0].Date != day(4) || days[6].Date != day(10) {
		t.Errorf("Expected Monday..Sunday, got %s..%s", days[0].Date, days[6].Date)
	}
	if days[0].Hours != 3.75 {
		t.Errorf("Expected 3.75 hours on Monday, got %v", days[0].Hours)
	}
	if days[1].Hours != 3.25 {
		t.Errorf("Expected 3.25 hours on Tuesday, got %v", days[1].Hours)
	}
	if days[2].Hours != 0 {
		t.Errorf("Expected no hours on Wednesday, got %v", days[2].Hours)
	}
}

func TestProject(t *testing.T) {
	r := model.DateRange{Start: day(3), End: day(10)}
	got, err := Project(context.Background(), newSource(), 1, r)
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Expected 3 days, got %d: %+v", len(got), got)
	}
	if got[0].Date != day(3) || got[1].Date != day(4) || got[2].Date != day(5) {
		t.Errorf("Unexpected day order: %+v", got)
	}

	monday := got[1].Lines
	if len(monday) != 2 {
		t.Fatalf("Expected 2 lines on Monday, got %+v", monday)
	}
	if s := monday[0].String(); s != "0:15 - Standup" {
		t.Errorf("Expected '0:15 - Standup', got '%s'", s)
	}
	if s := monday[1].String(); s != "3:30 - Mockups (Design)" {
		t.Errorf("Expected '3:30 - Mockups (Design)', got '%s'", s)
	}
}

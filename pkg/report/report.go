// Package report summarises logged time read back from Float.
package report

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/harrisonrobin/floaat/pkg/model"
	"github.com/harrisonrobin/floaat/pkg/util"
)

// LastEntryDays is how far back LastEntry looks.
const LastEntryDays = 14

// Source is the read side of Float used for reports.
type Source interface {
	ListProjects(ctx context.Context) ([]model.Project, error)
	ListTimeEntries(ctx context.Context, r model.DateRange) ([]model.TimeEntry, error)
}

// LastEntry returns the most recent date with logged time in the two weeks
// up to today. ok is false when there is none.
func LastEntry(ctx context.Context, src Source, today model.Date) (last model.Date, ok bool, err error) {
	entries, err := src.ListTimeEntries(ctx, model.DateRange{Start: today.AddDays(-LastEntryDays), End: today})
	if err != nil {
		return model.Date{}, false, fmt.Errorf("failed to list logged time: %w", err)
	}
	for _, e := range entries {
		if !ok || e.Date.After(last) {
			last, ok = e.Date, true
		}
	}
	return last, ok, nil
}

// Day is the total logged on one date.
type Day struct {
	Date  model.Date `json:"date" yaml:"date"`
	Hours float64    `json:"hours" yaml:"hours"`
}

// Week returns hours per day for Monday..Sunday of the week containing
// today. Days without entries are reported as zero.
func Week(ctx context.Context, src Source, today model.Date) ([]Day, error) {
	week := util.ThisWeek(today)
	entries, err := src.ListTimeEntries(ctx, week)
	if err != nil {
		return nil, fmt.Errorf("failed to list logged time: %w", err)
	}

	totals := make(map[model.Date]float64)
	for _, e := range entries {
		totals[e.Date] += e.Hours
	}
	days := make([]Day, 0, 7)
	for _, d := range week.Days() {
		days = append(days, Day{Date: d, Hours: totals[d]})
	}
	return days, nil
}

// Line is one grouped row of a project report.
type Line struct {
	Notes string  `json:"notes" yaml:"notes"`
	Phase string  `json:"phase" yaml:"phase"`
	Hours float64 `json:"hours" yaml:"hours"`
}

func (l Line) String() string {
	s := util.FormatHours(l.Hours) + " - " + l.Notes
	if l.Phase != "" {
		s += " (" + l.Phase + ")"
	}
	return s
}

// DayReport groups a project's lines for one date.
type DayReport struct {
	Date  model.Date `json:"date" yaml:"date"`
	Lines []Line     `json:"lines" yaml:"lines"`
}

// Project reports the entries logged against projectID in r, grouped by
// date and then by notes and phase, with hours summed.
func Project(ctx context.Context, src Source, projectID int64, r model.DateRange) ([]DayReport, error) {
	projects, err := src.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	names := make(map[int64]string, len(projects))
	for _, p := range projects {
		names[p.ID] = p.Name
	}

	entries, err := src.ListTimeEntries(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("failed to list logged time: %w", err)
	}

	type key struct {
		date  model.Date
		notes string
		phase string
	}
	sums := make(map[key]float64)
	var order []key
	for _, e := range entries {
		if e.ProjectID != projectID {
			continue
		}
		k := key{date: e.Date, notes: strings.TrimSpace(e.Notes)}
		if e.PhaseID != nil {
			k.phase = phaseName(names[*e.PhaseID])
		}
		if _, seen := sums[k]; !seen {
			order = append(order, k)
		}
		sums[k] += e.Hours
	}

	sort.SliceStable(order, func(i, j int) bool { return order[i].date.Before(order[j].date) })

	var out []DayReport
	for _, k := range order {
		if len(out) == 0 || out[len(out)-1].Date != k.date {
			out = append(out, DayReport{Date: k.date})
		}
		day := &out[len(out)-1]
		day.Lines = append(day.Lines, Line{Notes: k.notes, Phase: k.phase, Hours: sums[k]})
	}
	return out, nil
}

// phaseName drops the "Project / " prefix from a flattened phase name.
func phaseName(name string) string {
	if i := strings.LastIndex(name, " / "); i >= 0 {
		return name[i+3:]
	}
	return name
}

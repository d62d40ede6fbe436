// Package backfill finds days that were tracked on the Target but never
// logged on the Source, and pushes a chosen day's entries across.
package backfill

import (
	"context"
	"fmt"
	"time"

	"github.com/harrisonrobin/floaat/pkg/logsink"
	"github.com/harrisonrobin/floaat/pkg/model"
	"github.com/harrisonrobin/floaat/pkg/util"
	"golang.org/x/sync/errgroup"
)

// WindowDays is how far back Missing looks by default.
const WindowDays = 14

// Rejection reasons.
const (
	ReasonAlreadyInSource = "entries already exist in Source for date"
	ReasonUnmappedProject = "unmapped project"
	ReasonInvalidDate     = "invalid date"
)

// Source is the system time entries are pushed to.
type Source interface {
	ListTimeEntries(ctx context.Context, r model.DateRange) ([]model.TimeEntry, error)
	CreateTimeEntries(ctx context.Context, entries []model.TimeEntry) error
	ListDatesWithEntries(ctx context.Context, r model.DateRange) (model.DateSet, error)
}

// Target is the system time entries are read from.
type Target interface {
	GetWorkspace(ctx context.Context) (*model.Workspace, error)
	ListProjects(ctx context.Context, ws model.Workspace) ([]model.Project, error)
	ListTimeEntries(ctx context.Context, r model.DateRange) ([]model.TimeEntry, error)
	ListDatesWithEntries(ctx context.Context, r model.DateRange) (model.DateSet, error)
}

// Outcome of a backfill attempt.
type Outcome int

const (
	Succeeded Outcome = iota
	AlreadyPresent
	Rejected
)

func (o Outcome) String() string {
	switch o {
	case Succeeded:
		return "succeeded"
	case AlreadyPresent:
		return "already present"
	case Rejected:
		return "rejected"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// Result describes what Backfill did for one date.
type Result struct {
	Date    model.Date
	Outcome Outcome
	Reason  string
	// Offending lists the Target entries that caused a rejection.
	Offending []model.TimeEntry
	// Pushed is the number of entries written to the Source.
	Pushed int
}

// DefaultWindow is [today-14d, today].
func DefaultWindow(today model.Date) model.DateRange {
	return model.DateRange{Start: today.AddDays(-WindowDays), End: today}
}

// MissingDates returns, in ascending order, the dates inside window on which
// the Target has entries and the Source has none.
func MissingDates(source, target model.DateSet, window model.DateRange) []model.Date {
	var missing []model.Date
	for _, d := range target.Sorted() {
		if window.Contains(d) && !source.Has(d) {
			missing = append(missing, d)
		}
	}
	return missing
}

// Backfiller moves time entries from the Target to the Source.
type Backfiller struct {
	Source Source
	Target Target
	Log    logsink.Sink
	// WindowDays, when positive, replaces the default look-back of Missing.
	WindowDays int
}

func New(source Source, target Target, log logsink.Sink) *Backfiller {
	return &Backfiller{Source: source, Target: target, Log: log}
}

// Missing lists backfill candidates in the default window ending today.
// These still need to be confirmed by the user before calling Backfill.
func (b *Backfiller) Missing(ctx context.Context, today model.Date) ([]model.Date, error) {
	window := DefaultWindow(today)
	if b.WindowDays > 0 {
		window.Start = today.AddDays(-b.WindowDays)
	}

	var sourceDates, targetDates model.DateSet
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sourceDates, err = b.Source.ListDatesWithEntries(gctx, window)
		if err != nil {
			return fmt.Errorf("failed to list Float dates: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		targetDates, err = b.Target.ListDatesWithEntries(gctx, window)
		if err != nil {
			return fmt.Errorf("failed to list Toggl dates: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return MissingDates(sourceDates, targetDates, window), nil
}

// BackfillInput parses a user supplied date and backfills it. A date that
// cannot be parsed is a rejection, not an error.
func (b *Backfiller) BackfillInput(ctx context.Context, raw string, now time.Time) (Result, error) {
	date, err := util.ParseDate(raw, now)
	if err != nil {
		logsink.Errorf(b.Log, "Double check your date, expected YYYY-MM-DD: %v", err)
		return Result{Outcome: Rejected, Reason: ReasonInvalidDate}, nil
	}
	return b.Backfill(ctx, date)
}

// Backfill copies the Target's entries for date into the Source.
//
// It refuses to write when the Source already has entries for the date,
// which also makes a repeated call harmless, and when any entry belongs to a
// project that cannot be traced back to a Source project. Either way nothing
// is written.
func (b *Backfiller) Backfill(ctx context.Context, date model.Date) (Result, error) {
	day := model.DateRange{Start: date, End: date}
	res := Result{Date: date}

	entries, err := b.Target.ListTimeEntries(ctx, day)
	if err != nil {
		return res, fmt.Errorf("failed to list Toggl time entries for %s: %w", date, err)
	}
	logsink.Logf(b.Log, "Found %d time entries for %s on Toggl", len(entries), date)
	if len(entries) == 0 {
		b.Log.Log("Nothing to do here.")
		res.Outcome = AlreadyPresent
		return res, nil
	}

	existing, err := b.Source.ListTimeEntries(ctx, day)
	if err != nil {
		return res, fmt.Errorf("failed to list Float time entries for %s: %w", date, err)
	}
	if len(existing) > 0 {
		logsink.Errorf(b.Log, "There are already %d time entries on Float for %s. Remove them first, they cannot be merged.", len(existing), date)
		res.Outcome = Rejected
		res.Reason = ReasonAlreadyInSource
		return res, nil
	}

	ws, err := b.Target.GetWorkspace(ctx)
	if err != nil {
		return res, fmt.Errorf("failed to get Toggl workspace: %w", err)
	}
	if ws == nil {
		return res, model.ErrNoWorkspace
	}
	projects, err := b.Target.ListProjects(ctx, *ws)
	if err != nil {
		return res, fmt.Errorf("failed to list Toggl projects: %w", err)
	}

	pushed, unmapped := translate(entries, projects)
	if len(unmapped) > 0 {
		b.Log.Error("Some time entries don't have a valid project assigned. Fix them and try again.")
		for _, e := range unmapped {
			logsink.Logf(b.Log, "  - %s (%s)", e.Notes, util.FormatHours(e.Hours))
		}
		res.Outcome = Rejected
		res.Reason = ReasonUnmappedProject
		res.Offending = unmapped
		return res, nil
	}

	logsink.Logf(b.Log, "Pushing %d time entries for %s to Float", len(pushed), date)
	if err := b.Source.CreateTimeEntries(ctx, pushed); err != nil {
		return res, fmt.Errorf("failed to push time entries for %s: %w", date, err)
	}
	res.Outcome = Succeeded
	res.Pushed = len(pushed)
	return res, nil
}

// translate maps Target entries onto Source projects via the correlation
// key of their project. Entries whose project has no key are returned as
// unmapped.
func translate(entries []model.TimeEntry, projects []model.Project) (mapped, unmapped []model.TimeEntry) {
	byID := make(map[int64]model.Project, len(projects))
	for _, p := range projects {
		byID[p.ID] = p
	}

	for _, e := range entries {
		p, ok := byID[e.ProjectID]
		if !ok || p.CorrelationKey == nil {
			unmapped = append(unmapped, e)
			continue
		}
		mapped = append(mapped, model.TimeEntry{
			Date:      e.Date,
			ProjectID: *p.CorrelationKey,
			Notes:     e.Notes,
			Hours:     e.Hours,
		})
	}
	return mapped, unmapped
}

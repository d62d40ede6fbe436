// Package migrate moves Target time entries off projects that were split
// into phase projects or superseded by a correlated project.
package migrate

import (
	"context"
	"fmt"
	"time"

	"github.com/harrisonrobin/floaat/pkg/logsink"
	"github.com/harrisonrobin/floaat/pkg/model"
)

// DefaultSettleDelay is how long to wait after a project batch before
// reading projects back. The Target does not make fresh writes visible to
// reads immediately.
const DefaultSettleDelay = 2 * time.Second

// WindowMonths is how far back Migrate looks by default.
const WindowMonths = 2

// Target is the system whose time entries are re-linked.
type Target interface {
	ListProjects(ctx context.Context, ws model.Workspace) ([]model.Project, error)
	ListTimeEntries(ctx context.Context, r model.DateRange) ([]model.TimeEntry, error)
	UpdateTimeEntries(ctx context.Context, ws model.Workspace, updates []model.TimeEntryUpdate) error
}

// Window is [today-months, today]. A non-positive months falls back to
// WindowMonths.
func Window(today model.Date, months int) model.DateRange {
	if months <= 0 {
		months = WindowMonths
	}
	return model.DateRange{Start: today.AddMonths(-months), End: today}
}

// Migrator re-links time entries to their current project.
type Migrator struct {
	Target Target
	Log    logsink.Sink
	// SettleDelay is the fixed wait before reading. Zero skips the wait.
	SettleDelay time.Duration
}

func New(target Target, log logsink.Sink) *Migrator {
	return &Migrator{Target: target, Log: log, SettleDelay: DefaultSettleDelay}
}

// Settle waits for earlier writes to become readable. It returns early with
// the context's error if ctx is done.
func (m *Migrator) Settle(ctx context.Context) error {
	if m.SettleDelay <= 0 {
		return nil
	}
	t := time.NewTimer(m.SettleDelay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Migrate reassigns every entry in window whose project carries a phase or
// legacy marker to the live project correlated with that id, and returns the
// number of entries moved. All reassignments go out as one batch.
func (m *Migrator) Migrate(ctx context.Context, ws model.Workspace, window model.DateRange) (int, error) {
	logsink.Logf(m.Log, "Checking if time entries between %s and %s need migrating", window.Start, window.End)
	if err := m.Settle(ctx); err != nil {
		return 0, err
	}

	entries, err := m.Target.ListTimeEntries(ctx, window)
	if err != nil {
		return 0, fmt.Errorf("failed to list Toggl time entries: %w", err)
	}
	projects, err := m.Target.ListProjects(ctx, ws)
	if err != nil {
		return 0, fmt.Errorf("failed to list Toggl projects: %w", err)
	}

	updates := Plan(entries, projects)
	if len(updates) == 0 {
		m.Log.Log("No time entries to migrate")
		return 0, nil
	}

	logsink.Logf(m.Log, "Migrating %d time entries to their current project", len(updates))
	if err := m.Target.UpdateTimeEntries(ctx, ws, updates); err != nil {
		return 0, fmt.Errorf("failed to update Toggl time entries: %w", err)
	}
	return len(updates), nil
}

// Plan computes the reassignments for entries against the current project
// list. An entry's project is looked at for a phase marker first, then a
// legacy marker; the entry moves to the project correlated with that id if
// it is a different project.
func Plan(entries []model.TimeEntry, projects []model.Project) []model.TimeEntryUpdate {
	byID := make(map[int64]model.Project, len(projects))
	for _, p := range projects {
		byID[p.ID] = p
	}

	var updates []model.TimeEntryUpdate
	for _, e := range entries {
		p, ok := byID[e.ProjectID]
		if !ok {
			continue
		}
		key := p.PhaseKey
		if key == nil {
			key = p.LegacyKey
		}
		if key == nil {
			continue
		}
		dest, ok := correlated(projects, *key)
		if !ok || dest.ID == e.ProjectID {
			continue
		}
		updates = append(updates, model.TimeEntryUpdate{ID: e.ID, ProjectID: dest.ID})
	}
	return updates
}

// correlated prefers an active project over an archived one.
func correlated(projects []model.Project, key int64) (model.Project, bool) {
	var found *model.Project
	for i := range projects {
		if !projects[i].HasCorrelation(key) {
			continue
		}
		if projects[i].Active {
			return projects[i], true
		}
		if found == nil {
			found = &projects[i]
		}
	}
	if found == nil {
		return model.Project{}, false
	}
	return *found, true
}

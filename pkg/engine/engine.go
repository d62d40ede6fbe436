// Package engine runs a full Float to Toggl sync as an ordered pipeline of
// steps and serialises every run that writes to either service.
package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/harrisonrobin/floaat/pkg/backfill"
	"github.com/harrisonrobin/floaat/pkg/colors"
	"github.com/harrisonrobin/floaat/pkg/logsink"
	"github.com/harrisonrobin/floaat/pkg/migrate"
	"github.com/harrisonrobin/floaat/pkg/model"
)

// ErrRunInProgress is returned when a run is requested while another one
// is still executing. Runs are rejected, never queued or interleaved.
var ErrRunInProgress = errors.New("a sync run is already in progress")

// Source is Float, the authority for projects, tasks and logged time.
type Source interface {
	ListProjects(ctx context.Context) ([]model.Project, error)
	ListTaskNames(ctx context.Context) ([]string, error)
	ListTimeEntries(ctx context.Context, r model.DateRange) ([]model.TimeEntry, error)
	CreateTimeEntries(ctx context.Context, entries []model.TimeEntry) error
	ListDatesWithEntries(ctx context.Context, r model.DateRange) (model.DateSet, error)
}

// Target is Toggl, kept in line with the Source.
type Target interface {
	GetWorkspace(ctx context.Context) (*model.Workspace, error)
	ListProjects(ctx context.Context, ws model.Workspace) ([]model.Project, error)
	CreateProjects(ctx context.Context, ws model.Workspace, projects []model.Project) error
	UpdateProjects(ctx context.Context, ws model.Workspace, projects []model.Project) error
	DeleteProjects(ctx context.Context, ws model.Workspace, ids []int64) error
	ListTags(ctx context.Context, ws model.Workspace) ([]string, error)
	CreateTags(ctx context.Context, ws model.Workspace, names []string) error
	ListTimeEntries(ctx context.Context, r model.DateRange) ([]model.TimeEntry, error)
	UpdateTimeEntries(ctx context.Context, ws model.Workspace, updates []model.TimeEntryUpdate) error
	ListDatesWithEntries(ctx context.Context, r model.DateRange) (model.DateSet, error)
}

// StepError reports which pipeline step aborted a run.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Report summarises a finished run.
type Report struct {
	RunID       string
	Started     time.Time
	Finished    time.Time
	Created     int
	Updated     int
	TagsCreated int
	Migrated    int
	Deleted     int
}

// Orchestrator sequences the reconcilers into runs.
type Orchestrator struct {
	Source Source
	Target Target
	Log    logsink.Sink
	Colors *colors.Mapper
	// SettleDelay is the wait before time entries are migrated.
	SettleDelay time.Duration
	// MigrationMonths is how far back time entries are migrated.
	MigrationMonths int
	// BackfillDays is the window Missing looks at.
	BackfillDays int
	// Now is the clock; tests replace it.
	Now func() time.Time
	// LockPath is a file locked for the duration of a run, so that runs
	// from separate processes exclude each other too. Empty means the
	// slot is only shared within this Orchestrator.
	LockPath string

	running sync.Mutex
}

// New returns an Orchestrator with the default palette and delays.
func New(source Source, target Target, log logsink.Sink) *Orchestrator {
	return &Orchestrator{
		Source:          source,
		Target:          target,
		Log:             log,
		Colors:          colors.NewMapper(),
		SettleDelay:     migrate.DefaultSettleDelay,
		MigrationMonths: migrate.WindowMonths,
		BackfillDays:    backfill.WindowDays,
		Now:             time.Now,
	}
}

func (o *Orchestrator) today() model.Date {
	return model.DateOf(o.Now())
}

// acquire claims the single run slot.
func (o *Orchestrator) acquire() (func(), error) {
	if !o.running.TryLock() {
		return nil, ErrRunInProgress
	}
	if o.LockPath == "" {
		return o.running.Unlock, nil
	}

	if err := os.MkdirAll(filepath.Dir(o.LockPath), 0700); err != nil {
		o.running.Unlock()
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}
	lock := flock.New(o.LockPath)
	locked, err := lock.TryLock()
	if err != nil {
		o.running.Unlock()
		return nil, fmt.Errorf("acquiring run lock: %w", err)
	}
	if !locked {
		o.running.Unlock()
		return nil, ErrRunInProgress
	}
	return func() {
		_ = lock.Unlock()
		o.running.Unlock()
	}, nil
}

func (o *Orchestrator) backfiller(log logsink.Sink) *backfill.Backfiller {
	b := backfill.New(o.Source, o.Target, log)
	b.WindowDays = o.BackfillDays
	return b
}

// Missing lists the dates in the backfill window that Toggl has entries for
// and Float does not. It only reads, so it does not take the run slot.
func (o *Orchestrator) Missing(ctx context.Context) ([]model.Date, error) {
	return o.backfiller(o.Log).Missing(ctx, o.today())
}

// Backfill pushes Toggl's entries for date to Float.
func (o *Orchestrator) Backfill(ctx context.Context, date model.Date) (backfill.Result, error) {
	release, err := o.acquire()
	if err != nil {
		return backfill.Result{}, err
	}
	defer release()
	return o.backfiller(o.Log).Backfill(ctx, date)
}

// BackfillInput parses raw as a date and backfills it.
func (o *Orchestrator) BackfillInput(ctx context.Context, raw string) (backfill.Result, error) {
	release, err := o.acquire()
	if err != nil {
		return backfill.Result{}, err
	}
	defer release()
	return o.backfiller(o.Log).BackfillInput(ctx, raw, o.Now())
}

// Prune deletes Toggl projects that only carry a legacy marker.
func (o *Orchestrator) Prune(ctx context.Context) (*Report, error) {
	release, err := o.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	r := o.newRun()
	err = r.execute(ctx, []step{
		{"workspace", r.fetchWorkspace},
		{"prune", r.prune},
	})
	return r.finish(err)
}

// RunFullSync brings Toggl in line with Float: projects, then tags, then
// time-entry migration, then stale project removal. A failing step aborts
// the rest of the run; writes already made stay, and the next run
// converges from there.
func (o *Orchestrator) RunFullSync(ctx context.Context) (*Report, error) {
	release, err := o.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	r := o.newRun()
	err = r.execute(ctx, []step{
		{"workspace", r.fetchWorkspace},
		{"projects", r.syncProjects},
		{"tags", r.syncTags},
		{"migrate", r.migrateEntries},
		{"prune", r.prune},
	})
	if err == nil {
		r.log.Log("Sync complete.")
	}
	return r.finish(err)
}

func (o *Orchestrator) newRun() *run {
	id := uuid.NewString()
	return &run{
		o:      o,
		log:    prefixed{sink: o.Log, prefix: "[" + id[:8] + "] "},
		report: &Report{RunID: id, Started: o.Now()},
	}
}

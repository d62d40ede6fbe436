package engine

import (
	"context"
	"fmt"

	"github.com/harrisonrobin/floaat/pkg/logsink"
	"github.com/harrisonrobin/floaat/pkg/migrate"
	"github.com/harrisonrobin/floaat/pkg/model"
	"github.com/harrisonrobin/floaat/pkg/reconcile"
)

// step is one synchronous stage of a run.
type step struct {
	name string
	fn   func(ctx context.Context) error
}

// run carries the state of a single pipeline execution.
type run struct {
	o      *Orchestrator
	log    logsink.Sink
	report *Report
	ws     model.Workspace
}

// execute runs steps in order. Cancellation is checked between steps only;
// a call already in flight is never interrupted by the engine.
func (r *run) execute(ctx context.Context, steps []step) error {
	for _, s := range steps {
		if err := ctx.Err(); err != nil {
			logsink.Errorf(r.log, "Stopped before %s: %v", s.name, err)
			return &StepError{Step: s.name, Err: err}
		}
		if err := s.fn(ctx); err != nil {
			logsink.Errorf(r.log, "Sync aborted during %s: %v", s.name, err)
			return &StepError{Step: s.name, Err: err}
		}
	}
	return nil
}

func (r *run) finish(err error) (*Report, error) {
	r.report.Finished = r.o.Now()
	return r.report, err
}

func (r *run) fetchWorkspace(ctx context.Context) error {
	r.log.Log("Fetching Toggl workspace")
	ws, err := r.o.Target.GetWorkspace(ctx)
	if err != nil {
		return fmt.Errorf("failed to get workspace: %w", err)
	}
	if ws == nil {
		return model.ErrNoWorkspace
	}
	r.ws = *ws
	return nil
}

func (r *run) syncProjects(ctx context.Context) error {
	r.log.Log("Fetching projects from Float and Toggl")
	source, err := r.o.Source.ListProjects(ctx)
	if err != nil {
		return fmt.Errorf("failed to list Float projects: %w", err)
	}
	target, err := r.o.Target.ListProjects(ctx, r.ws)
	if err != nil {
		return fmt.Errorf("failed to list Toggl projects: %w", err)
	}

	plan := reconcile.PlanProjects(source, target, r.o.Colors)
	if plan.Empty() {
		r.log.Log("Toggl projects are up to date")
		return nil
	}
	logsink.Logf(r.log, "Project plan: %s", plan.Summary())

	if len(plan.ToCreate) > 0 {
		logsink.Logf(r.log, "Syncing new Float projects to Toggl (%d of %d)", len(plan.ToCreate), len(source))
		if err := r.o.Target.CreateProjects(ctx, r.ws, plan.ToCreate); err != nil {
			return fmt.Errorf("failed to create %d projects: %w", len(plan.ToCreate), err)
		}
		r.report.Created = len(plan.ToCreate)
	}
	if len(plan.ToUpdate) > 0 {
		logsink.Logf(r.log, "Syncing modified Float projects to Toggl (%d of %d)", len(plan.ToUpdate), len(source))
		if err := r.o.Target.UpdateProjects(ctx, r.ws, plan.ToUpdate); err != nil {
			return fmt.Errorf("failed to update %d projects: %w", len(plan.ToUpdate), err)
		}
		r.report.Updated = len(plan.ToUpdate)
	}
	return nil
}

func (r *run) syncTags(ctx context.Context) error {
	r.log.Log("Fetching tags from Float and Toggl")
	source, err := r.o.Source.ListTaskNames(ctx)
	if err != nil {
		return fmt.Errorf("failed to list Float tasks: %w", err)
	}
	target, err := r.o.Target.ListTags(ctx, r.ws)
	if err != nil {
		return fmt.Errorf("failed to list Toggl tags: %w", err)
	}

	create := reconcile.PlanTags(source, target)
	if len(create) == 0 {
		return nil
	}
	logsink.Logf(r.log, "Syncing new Float tags to Toggl (%d)", len(create))
	if err := r.o.Target.CreateTags(ctx, r.ws, create); err != nil {
		return fmt.Errorf("failed to create %d tags: %w", len(create), err)
	}
	r.report.TagsCreated = len(create)
	return nil
}

func (r *run) migrateEntries(ctx context.Context) error {
	m := migrate.New(r.o.Target, r.log)
	m.SettleDelay = r.o.SettleDelay

	n, err := m.Migrate(ctx, r.ws, migrate.Window(r.o.today(), r.o.MigrationMonths))
	if err != nil {
		return err
	}
	r.report.Migrated = n
	return nil
}

// prune re-reads the project list so that it sees the state left behind by
// the earlier steps.
func (r *run) prune(ctx context.Context) error {
	target, err := r.o.Target.ListProjects(ctx, r.ws)
	if err != nil {
		return fmt.Errorf("failed to list Toggl projects: %w", err)
	}
	stale := reconcile.StaleProjects(target)
	if len(stale) == 0 {
		return nil
	}
	logsink.Logf(r.log, "Removing %d old Toggl projects", len(stale))
	if err := r.o.Target.DeleteProjects(ctx, r.ws, stale); err != nil {
		return fmt.Errorf("failed to delete %d projects: %w", len(stale), err)
	}
	r.report.Deleted = len(stale)
	return nil
}

// prefixed tags every line with the run id.
type prefixed struct {
	sink   logsink.Sink
	prefix string
}

func (p prefixed) Log(msg string) {
	p.sink.Log(p.prefix + msg)
}

func (p prefixed) Error(msg string) {
	p.sink.Error(p.prefix + msg)
}

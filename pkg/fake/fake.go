// Package fake provides in-memory Float and Toggl stand-ins for tests.
package fake

import (
	"context"
	"sync"

	"github.com/harrisonrobin/floaat/pkg/model"
)

// Source is an in-memory Float.
type Source struct {
	mu sync.Mutex

	Projects  []model.Project
	TaskNames []string
	Entries   []model.TimeEntry
	People    []model.Person

	// Err, when set, is returned by every call.
	Err error
	// Created records every CreateTimeEntries batch.
	Created [][]model.TimeEntry
	nextID  int64
}

func (s *Source) ListProjects(ctx context.Context) ([]model.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	return append([]model.Project(nil), s.Projects...), nil
}

func (s *Source) ListPeople(ctx context.Context) ([]model.Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	return append([]model.Person(nil), s.People...), nil
}

func (s *Source) ListTaskNames(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	return append([]string(nil), s.TaskNames...), nil
}

func (s *Source) ListTimeEntries(ctx context.Context, r model.DateRange) ([]model.TimeEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	return entriesIn(s.Entries, r), nil
}

func (s *Source) CreateTimeEntries(ctx context.Context, entries []model.TimeEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	batch := make([]model.TimeEntry, 0, len(entries))
	for _, e := range entries {
		s.nextID++
		e.ID = 10000 + s.nextID
		batch = append(batch, e)
	}
	s.Entries = append(s.Entries, batch...)
	s.Created = append(s.Created, batch)
	return nil
}

func (s *Source) ListDatesWithEntries(ctx context.Context, r model.DateRange) (model.DateSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	return datesIn(s.Entries, r), nil
}

// Target is an in-memory Toggl with a single workspace.
type Target struct {
	mu sync.Mutex

	Workspace *model.Workspace
	Projects  []model.Project
	Tags      []string
	Entries   []model.TimeEntry

	// Err, when set, is returned by every call. FailOn limits it to one method.
	Err    error
	FailOn string

	// Calls records method names in call order.
	Calls   []string
	Deleted []int64
	Updated [][]model.TimeEntryUpdate
	nextID  int64
}

func (t *Target) fail(method string) error {
	t.Calls = append(t.Calls, method)
	if t.Err != nil && (t.FailOn == "" || t.FailOn == method) {
		return t.Err
	}
	return nil
}

func (t *Target) GetWorkspace(ctx context.Context) (*model.Workspace, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.fail("GetWorkspace"); err != nil {
		return nil, err
	}
	return t.Workspace, nil
}

func (t *Target) ListProjects(ctx context.Context, ws model.Workspace) ([]model.Project, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.fail("ListProjects"); err != nil {
		return nil, err
	}
	return append([]model.Project(nil), t.Projects...), nil
}

func (t *Target) CreateProjects(ctx context.Context, ws model.Workspace, projects []model.Project) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.fail("CreateProjects"); err != nil {
		return err
	}
	for _, p := range projects {
		t.nextID++
		p.ID = 90000 + t.nextID
		t.Projects = append(t.Projects, p)
	}
	return nil
}

func (t *Target) UpdateProjects(ctx context.Context, ws model.Workspace, projects []model.Project) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.fail("UpdateProjects"); err != nil {
		return err
	}
	for _, u := range projects {
		for i := range t.Projects {
			if t.Projects[i].ID == u.ID {
				t.Projects[i].Name = u.Name
				t.Projects[i].Active = u.Active
				t.Projects[i].Color = u.Color
				t.Projects[i].CorrelationKey = u.CorrelationKey
			}
		}
	}
	return nil
}

func (t *Target) DeleteProjects(ctx context.Context, ws model.Workspace, ids []int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.fail("DeleteProjects"); err != nil {
		return err
	}
	drop := make(map[int64]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	kept := t.Projects[:0]
	for _, p := range t.Projects {
		if !drop[p.ID] {
			kept = append(kept, p)
		}
	}
	t.Projects = kept
	t.Deleted = append(t.Deleted, ids...)
	return nil
}

func (t *Target) ListTags(ctx context.Context, ws model.Workspace) ([]string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.fail("ListTags"); err != nil {
		return nil, err
	}
	return append([]string(nil), t.Tags...), nil
}

func (t *Target) CreateTags(ctx context.Context, ws model.Workspace, names []string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.fail("CreateTags"); err != nil {
		return err
	}
	t.Tags = append(t.Tags, names...)
	return nil
}

func (t *Target) ListTimeEntries(ctx context.Context, r model.DateRange) ([]model.TimeEntry, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.fail("ListTimeEntries"); err != nil {
		return nil, err
	}
	return entriesIn(t.Entries, r), nil
}

func (t *Target) UpdateTimeEntries(ctx context.Context, ws model.Workspace, updates []model.TimeEntryUpdate) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.fail("UpdateTimeEntries"); err != nil {
		return err
	}
	for _, u := range updates {
		for i := range t.Entries {
			if t.Entries[i].ID == u.ID {
				t.Entries[i].ProjectID = u.ProjectID
			}
		}
	}
	t.Updated = append(t.Updated, updates)
	return nil
}

func (t *Target) ListDatesWithEntries(ctx context.Context, r model.DateRange) (model.DateSet, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.fail("ListDatesWithEntries"); err != nil {
		return nil, err
	}
	return datesIn(t.Entries, r), nil
}

// Called reports whether method was invoked.
func (t *Target) Called(method string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, c := range t.Calls {
		if c == method {
			return true
		}
	}
	return false
}

func entriesIn(entries []model.TimeEntry, r model.DateRange) []model.TimeEntry {
	var out []model.TimeEntry
	for _, e := range entries {
		if r.Contains(e.Date) {
			out = append(out, e)
		}
	}
	return out
}

func datesIn(entries []model.TimeEntry, r model.DateRange) model.DateSet {
	set := model.NewDateSet()
	for _, e := range entries {
		if r.Contains(e.Date) {
			set.Add(e.Date)
		}
	}
	return set
}

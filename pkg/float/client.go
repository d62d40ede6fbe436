package float

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/harrisonrobin/floaat/pkg/model"
	"github.com/harrisonrobin/floaat/pkg/rest"
)

// BaseURL is the Float REST API root.
const BaseURL = "https://api.float.com/v3"

const perPage = 200

// Client reads and writes Float on behalf of a single person.
type Client struct {
	api      *rest.Client
	peopleID int64
}

// NewClient wraps an authenticated *http.Client. peopleID selects whose
// logged time is read and written.
func NewClient(httpClient *http.Client, baseURL string, peopleID int64) *Client {
	if baseURL == "" {
		baseURL = BaseURL
	}
	return &Client{api: rest.New(httpClient, baseURL), peopleID: peopleID}
}

// list walks every page of a collection endpoint.
func list[T any](ctx context.Context, api *rest.Client, path string, query url.Values) ([]T, error) {
	if query == nil {
		query = url.Values{}
	}
	query.Set("per-page", strconv.Itoa(perPage))

	var all []T
	for page := 1; ; page++ {
		query.Set("page", strconv.Itoa(page))
		var items []T
		resp, err := api.Do(ctx, http.MethodGet, path, query, nil, &items)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)

		pages, err := strconv.Atoi(resp.Header.Get("X-Pagination-Page-Count"))
		if err != nil || page >= pages || len(items) == 0 {
			return all, nil
		}
	}
}

// ListPeople returns every person in the Float account.
func (c *Client) ListPeople(ctx context.Context) ([]model.Person, error) {
	people, err := list[person](ctx, c.api, "/people", nil)
	if err != nil {
		return nil, err
	}
	out := make([]model.Person, 0, len(people))
	for _, p := range people {
		out = append(out, model.Person{ID: p.PeopleID, Name: p.Name, Email: p.Email, Active: bool(p.Active)})
	}
	return out, nil
}

// ListProjects returns Float projects and their phases as one flat list.
// A phase becomes its own project named "Project / Phase", identified by
// the phase id, active only while both it and its project are.
func (c *Client) ListProjects(ctx context.Context) ([]model.Project, error) {
	projects, err := list[project](ctx, c.api, "/projects", nil)
	if err != nil {
		return nil, err
	}
	phases, err := list[phase](ctx, c.api, "/phases", nil)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]project, len(projects))
	out := make([]model.Project, 0, len(projects)+len(phases))
	for _, p := range projects {
		byID[p.ProjectID] = p
		out = append(out, model.Project{
			ID:     p.ProjectID,
			Name:   p.Name,
			Color:  p.Color,
			Active: bool(p.Active),
		})
	}
	for _, ph := range phases {
		parent, ok := byID[ph.ProjectID]
		if !ok {
			log.Printf("Warning: skipping phase %d, project %d not found", ph.PhaseID, ph.ProjectID)
			continue
		}
		color := ph.Color
		if color == "" {
			color = parent.Color
		}
		out = append(out, model.Project{
			ID:       ph.PhaseID,
			Name:     parent.Name + " / " + ph.Name,
			Color:    color,
			Active:   bool(parent.Active) && bool(ph.Active),
			ParentID: model.Int64(parent.ProjectID),
		})
	}
	return out, nil
}

// ListTaskNames returns the distinct task names in Float, in first-seen order.
func (c *Client) ListTaskNames(ctx context.Context) ([]string, error) {
	tasks, err := list[task](ctx, c.api, "/tasks", nil)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(tasks))
	var names []string
	for _, t := range tasks {
		if t.Name == "" || seen[t.Name] {
			continue
		}
		seen[t.Name] = true
		names = append(names, t.Name)
	}
	return names, nil
}

// ListTimeEntries returns the person's logged time within r.
func (c *Client) ListTimeEntries(ctx context.Context, r model.DateRange) ([]model.TimeEntry, error) {
	query := url.Values{}
	query.Set("people_id", strconv.FormatInt(c.peopleID, 10))
	query.Set("start_date", r.Start.String())
	query.Set("end_date", r.End.String())

	logged, err := list[loggedTime](ctx, c.api, "/logged-time", query)
	if err != nil {
		return nil, err
	}

	var entries []model.TimeEntry
	for _, lt := range logged {
		d, err := model.ParseDate(lt.Date)
		if err != nil {
			return nil, fmt.Errorf("logged time for project %d: %w", lt.ProjectID, err)
		}
		e := model.TimeEntry{
			Date:      d,
			ProjectID: lt.ProjectID,
			Notes:     lt.Notes,
			Hours:     lt.Hours,
		}
		if lt.PhaseID != 0 {
			e.PhaseID = model.Int64(lt.PhaseID)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// ListDatesWithEntries returns the dates in r with at least one logged-time
// row. Zero-hour rows count: a backfill of such a day would be refused.
func (c *Client) ListDatesWithEntries(ctx context.Context, r model.DateRange) (model.DateSet, error) {
	entries, err := c.ListTimeEntries(ctx, r)
	if err != nil {
		return nil, err
	}
	dates := model.NewDateSet()
	for _, e := range entries {
		dates.Add(e.Date)
	}
	return dates, nil
}

// CreateTimeEntries logs every entry for the configured person. Float has
// no bulk endpoint, so the rows go out one request each; the first failure
// stops the batch and is returned.
//
// An entry's ProjectID may be a phase id (see ListProjects). Phases are
// resolved to their project so Float gets both ids.
func (c *Client) CreateTimeEntries(ctx context.Context, entries []model.TimeEntry) error {
	if len(entries) == 0 {
		return nil
	}
	projects, err := c.ListProjects(ctx)
	if err != nil {
		return err
	}
	parents := make(map[int64]int64)
	for _, p := range projects {
		if p.ParentID == nil {
			parents[p.ID] = 0
		} else if _, isProject := parents[p.ID]; !isProject {
			parents[p.ID] = *p.ParentID
		}
	}

	for i, e := range entries {
		body := loggedTime{
			Date:      e.Date.String(),
			Hours:     e.Hours,
			ProjectID: e.ProjectID,
			PeopleID:  c.peopleID,
			Notes:     e.Notes,
		}
		if parent := parents[e.ProjectID]; parent != 0 {
			body.ProjectID = parent
			body.PhaseID = e.ProjectID
		}
		if _, err := c.api.Do(ctx, http.MethodPost, "/logged-time", nil, body, nil); err != nil {
			return fmt.Errorf("logged %d of %d entries: %w", i, len(entries), err)
		}
	}
	return nil
}

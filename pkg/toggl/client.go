package toggl

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/harrisonrobin/floaat/pkg/correlation"
	"github.com/harrisonrobin/floaat/pkg/model"
	"github.com/harrisonrobin/floaat/pkg/rest"
)

// BaseURL is the Toggl Track API root.
const BaseURL = "https://api.track.toggl.com/api/v9"

const (
	perPage = 200
	// maxBulk is the most ids Toggl accepts in one bulk patch.
	maxBulk = 100
)

// Client talks to Toggl Track for one user.
type Client struct {
	api *rest.Client
	// Location decides which calendar day an entry's start falls on.
	Location *time.Location
}

func NewClient(httpClient *http.Client, baseURL string) *Client {
	if baseURL == "" {
		baseURL = BaseURL
	}
	return &Client{api: rest.New(httpClient, baseURL), Location: time.Local}
}

// GetWorkspace returns the user's first workspace, or nil if there is none.
func (c *Client) GetWorkspace(ctx context.Context) (*model.Workspace, error) {
	var workspaces []workspace
	if _, err := c.api.Do(ctx, http.MethodGet, "/me/workspaces", nil, nil, &workspaces); err != nil {
		return nil, err
	}
	if len(workspaces) == 0 {
		return nil, nil
	}
	return &model.Workspace{ID: workspaces[0].ID, Name: workspaces[0].Name}, nil
}

func wsPath(ws model.Workspace, suffix string) string {
	return "/workspaces/" + strconv.FormatInt(ws.ID, 10) + suffix
}

// ListProjects returns active and archived projects with their id markers
// parsed out of the name.
func (c *Client) ListProjects(ctx context.Context, ws model.Workspace) ([]model.Project, error) {
	var out []model.Project
	for page := 1; ; page++ {
		query := url.Values{}
		query.Set("active", "both")
		query.Set("per_page", strconv.Itoa(perPage))
		query.Set("page", strconv.Itoa(page))

		var projects []project
		if _, err := c.api.Do(ctx, http.MethodGet, wsPath(ws, "/projects"), query, nil, &projects); err != nil {
			return nil, err
		}
		for _, p := range projects {
			out = append(out, fromTogglProject(p))
		}
		if len(projects) < perPage {
			return out, nil
		}
	}
}

func fromTogglProject(p project) model.Project {
	keys := correlation.Parse(p.Name)
	return model.Project{
		ID:             p.ID,
		Name:           keys.Name,
		Color:          p.Color,
		Active:         p.Active,
		CorrelationKey: keys.Correlation,
		LegacyKey:      keys.Legacy,
		PhaseKey:       keys.Phase,
	}
}

func toTogglProject(p model.Project) project {
	name := p.Name
	if p.CorrelationKey != nil {
		name = correlation.FormatName(p.Name, *p.CorrelationKey)
	}
	return project{Name: name, Color: p.Color, Active: p.Active}
}

// CreateProjects creates each project. Toggl has no bulk create, so this is
// one request per project; the first failure stops the batch.
func (c *Client) CreateProjects(ctx context.Context, ws model.Workspace, projects []model.Project) error {
	for i, p := range projects {
		if _, err := c.api.Do(ctx, http.MethodPost, wsPath(ws, "/projects"), nil, toTogglProject(p), nil); err != nil {
			return fmt.Errorf("created %d of %d projects: %w", i, len(projects), err)
		}
	}
	return nil
}

// UpdateProjects overwrites name, color and active state of each project.
func (c *Client) UpdateProjects(ctx context.Context, ws model.Workspace, projects []model.Project) error {
	for i, p := range projects {
		path := wsPath(ws, "/projects/"+strconv.FormatInt(p.ID, 10))
		if _, err := c.api.Do(ctx, http.MethodPut, path, nil, toTogglProject(p), nil); err != nil {
			return fmt.Errorf("updated %d of %d projects: %w", i, len(projects), err)
		}
	}
	return nil
}

// DeleteProjects removes the projects. Their time entries stay, unassigned.
func (c *Client) DeleteProjects(ctx context.Context, ws model.Workspace, ids []int64) error {
	query := url.Values{}
	query.Set("teDeletionMode", "unassign")
	for i, id := range ids {
		path := wsPath(ws, "/projects/"+strconv.FormatInt(id, 10))
		if _, err := c.api.Do(ctx, http.MethodDelete, path, query, nil, nil); err != nil {
			return fmt.Errorf("deleted %d of %d projects: %w", i, len(ids), err)
		}
	}
	return nil
}

// ListTags returns the workspace's tag names.
func (c *Client) ListTags(ctx context.Context, ws model.Workspace) ([]string, error) {
	var tags []tag
	if _, err := c.api.Do(ctx, http.MethodGet, wsPath(ws, "/tags"), nil, nil, &tags); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Name)
	}
	return names, nil
}

// CreateTags creates each tag in the workspace.
func (c *Client) CreateTags(ctx context.Context, ws model.Workspace, names []string) error {
	for i, name := range names {
		if _, err := c.api.Do(ctx, http.MethodPost, wsPath(ws, "/tags"), nil, tag{Name: name}, nil); err != nil {
			return fmt.Errorf("created %d of %d tags: %w", i, len(names), err)
		}
	}
	return nil
}

// ListTimeEntries returns the user's stopped entries that start within r.
func (c *Client) ListTimeEntries(ctx context.Context, r model.DateRange) ([]model.TimeEntry, error) {
	query := url.Values{}
	query.Set("start_date", r.Start.Time(c.Location).Format(time.RFC3339))
	// end_date is exclusive
	query.Set("end_date", r.End.AddDays(1).Time(c.Location).Format(time.RFC3339))

	var raw []timeEntry
	if _, err := c.api.Do(ctx, http.MethodGet, "/me/time_entries", query, nil, &raw); err != nil {
		return nil, err
	}

	var entries []model.TimeEntry
	for _, te := range raw {
		if te.Duration < 0 {
			continue
		}
		e := model.TimeEntry{
			ID:    te.ID,
			Date:  model.DateOf(te.Start.In(c.Location)),
			Notes: te.Description,
			Hours: float64(te.Duration) / 3600,
		}
		if te.ProjectID != nil {
			e.ProjectID = *te.ProjectID
		}
		if !r.Contains(e.Date) {
			continue
		}
		entries = append(entries, e)
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Date.Before(entries[j].Date) })
	return entries, nil
}

// ListDatesWithEntries returns the dates in r with at least one entry.
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

// UpdateTimeEntries moves entries to new projects using the bulk patch
// endpoint, one request per destination project and chunk of ids.
func (c *Client) UpdateTimeEntries(ctx context.Context, ws model.Workspace, updates []model.TimeEntryUpdate) error {
	byProject := make(map[int64][]int64)
	var order []int64
	for _, u := range updates {
		if _, ok := byProject[u.ProjectID]; !ok {
			order = append(order, u.ProjectID)
		}
		byProject[u.ProjectID] = append(byProject[u.ProjectID], u.ID)
	}

	for _, projectID := range order {
		ids := byProject[projectID]
		for start := 0; start < len(ids); start += maxBulk {
			end := min(start+maxBulk, len(ids))
			path := wsPath(ws, "/time_entries/"+joinIDs(ids[start:end]))
			ops := []patchOp{{Op: "replace", Path: "/project_id", Value: projectID}}
			if _, err := c.api.Do(ctx, http.MethodPatch, path, nil, ops, nil); err != nil {
				return fmt.Errorf("moving entries to project %d: %w", projectID, err)
			}
		}
	}
	return nil
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

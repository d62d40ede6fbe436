package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/harrisonrobin/floaat/pkg/config"
	"github.com/harrisonrobin/floaat/pkg/engine"
	"github.com/harrisonrobin/floaat/pkg/fake"
	"github.com/harrisonrobin/floaat/pkg/model"
	"google.golang.org/api/googleapi"
)

// wednesday is 2024-03-06; its week runs from 2024-03-04 to 2024-03-10.
var wednesday = time.Date(2024, 3, 6, 10, 0, 0, 0, time.Local)

func day(d int) model.Date {
	return model.Date{Year: 2024, Month: 3, Day: d}
}

type harness struct {
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	exit   int
	cfg    *config.Config
	saved  *config.Config
	src    *fake.Source
	tgt    *fake.Target
}

func setup(t *testing.T) *harness {
	t.Setenv("HOME", t.TempDir())
	h := &harness{
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
		exit:   -1,
		cfg: &config.Config{
			TogglAPIKey:   "toggl-secret",
			FloatAPIKey:   "float-secret",
			FloatPeopleID: 9,
			SettleDelay:   "0s",
			LogFile:       filepath.Join(t.TempDir(), "floaat.log"),
		},
		src: &fake.Source{},
		tgt: &fake.Target{Workspace: &model.Workspace{ID: 7, Name: "Home"}},
	}
	SetDeps(&Deps{
		Stdout:      h.stdout,
		Stderr:      h.stderr,
		Exit:        func(code int) { h.exit = code },
		Now:         func() time.Time { return wednesday },
		LoadConfig:  func() (*config.Config, error) { c := *h.cfg; return &c, nil },
		SaveConfig:  func(c *config.Config) error { h.saved = c; return nil },
		ClearConfig: func() error { h.cfg = &config.Config{}; return nil },
		Connect: func(ctx context.Context, cfg *config.Config) (*Clients, error) {
			return &Clients{Float: h.src, Toggl: h.tgt}, nil
		},
		Interactive: func() bool { return false },
		PromptKeys:  func(togglKey, floatKey *string) error { return errors.New("no terminal") },
		PickPerson:  func(people []model.Person) (int64, error) { return 0, errors.New("no terminal") },
		PickDate:    func(dates []model.Date) (model.Date, error) { return model.Date{}, errors.New("no terminal") },
		Confirm:     func(title string) (bool, error) { return false, errors.New("no terminal") },
	})
	outputFormat = "text"
	t.Cleanup(func() {
		ResetDeps()
		outputFormat = "text"
	})
	return h
}

func (h *harness) mappedEntries() {
	h.tgt.Projects = []model.Project{
		{ID: 100, Name: "Website", Active: true, CorrelationKey: model.Int64(1)},
	}
	h.tgt.Entries = []model.TimeEntry{
		{ID: 1, Date: day(4), ProjectID: 100, Notes: "Mockups", Hours: 2},
		{ID: 2, Date: day(4), ProjectID: 100, Notes: "Review", Hours: 1},
	}
}

func setFlag(t *testing.T, name, value string, flags interface {
	Set(name, value string) error
}) {
	if err := flags.Set(name, value); err != nil {
		t.Fatalf("Failed to set --%s: %v", name, err)
	}
}

func TestSync(t *testing.T) {
	h := setup(t)
	h.src.Projects = []model.Project{{ID: 1, Name: "Website", Color: "#ff0000", Active: true}}
	h.src.TaskNames = []string{"Design"}

	runSync(syncCmd)

	if h.exit != -1 {
		t.Fatalf("Expected no exit, got %d: %s", h.exit, h.stderr.String())
	}
	out := h.stdout.String()
	if !strings.Contains(out, "Sync complete.") {
		t.Errorf("Expected 'Sync complete.' in output, got: %s", out)
	}
	if !strings.Contains(out, "1 created") {
		t.Errorf("Expected '1 created' in output, got: %s", out)
	}
	if len(h.tgt.Projects) != 1 || !h.tgt.Projects[0].HasCorrelation(1) {
		t.Errorf("Expected a correlated Toggl project, got %+v", h.tgt.Projects)
	}
	if len(h.tgt.Tags) != 1 || h.tgt.Tags[0] != "Design" {
		t.Errorf("Expected tag 'Design', got %v", h.tgt.Tags)
	}
}

func TestSyncFailureNamesStep(t *testing.T) {
	h := setup(t)
	h.tgt.Err = errors.New("boom")
	h.tgt.FailOn = "ListTags"

	runSync(syncCmd)

	if h.exit != 1 {
		t.Errorf("Expected exit code 1, got %d", h.exit)
	}
	if !strings.Contains(h.stderr.String(), "step 'tags'") {
		t.Errorf("Expected failing step in stderr, got: %s", h.stderr.String())
	}
}

func TestSyncMissingCredentials(t *testing.T) {
	h := setup(t)
	h.cfg.FloatAPIKey = ""

	runSync(syncCmd)

	if h.exit != 1 {
		t.Errorf("Expected exit code 1, got %d", h.exit)
	}
	if !strings.Contains(h.stderr.String(), "floaat login") {
		t.Errorf("Expected login hint, got: %s", h.stderr.String())
	}
	if h.tgt.Called("GetWorkspace") {
		t.Error("Expected no Toggl calls without credentials")
	}
}

func TestSyncRejectedWhileLockHeld(t *testing.T) {
	h := setup(t)
	lockPath, err := h.cfg.LockPath()
	if err != nil {
		t.Fatalf("LockPath failed: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(lockPath), 0700); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	other := flock.New(lockPath)
	if ok, err := other.TryLock(); !ok || err != nil {
		t.Fatalf("Failed to take the lock: %v", err)
	}
	defer other.Unlock()

	runSync(syncCmd)

	if h.exit != 1 {
		t.Errorf("Expected exit code 1, got %d", h.exit)
	}
	if !strings.Contains(h.stderr.String(), engine.ErrRunInProgress.Error()) {
		t.Errorf("Expected run in progress error, got: %s", h.stderr.String())
	}
	if h.tgt.Called("GetWorkspace") {
		t.Error("Expected no Toggl calls while another run holds the lock")
	}
}

func TestBackfillImpossibleDate(t *testing.T) {
	h := setup(t)
	h.mappedEntries()
	for i := range h.tgt.Entries {
		h.tgt.Entries[i].Date = model.DateOf(wednesday)
	}
	setFlag(t, "yes", "true", backfillCmd.Flags())
	defer backfillCmd.Flags().Set("yes", "false")

	runBackfill(backfillCmd, []string{"2024-02-30"})

	if h.exit != 1 {
		t.Errorf("Expected exit code 1, got %d", h.exit)
	}
	if !strings.Contains(h.stderr.String(), "invalid date") {
		t.Errorf("Expected 'invalid date' in stderr, got: %s", h.stderr.String())
	}
	if len(h.src.Created) != 0 {
		t.Errorf("Expected no writes to Float, got %+v", h.src.Created)
	}
}

func TestSyncRejectedKeyHint(t *testing.T) {
	h := setup(t)
	h.tgt.Err = fmt.Errorf("GET /me/workspaces: %w", &googleapi.Error{Code: http.StatusForbidden})

	runSync(syncCmd)

	if h.exit != 1 {
		t.Errorf("Expected exit code 1, got %d", h.exit)
	}
	if !strings.Contains(h.stderr.String(), "API key was rejected") {
		t.Errorf("Expected rejected key hint, got: %s", h.stderr.String())
	}
}

func TestPrune(t *testing.T) {
	h := setup(t)
	h.tgt.Projects = []model.Project{
		{ID: 100, Name: "Old", LegacyKey: model.Int64(1)},
		{ID: 101, Name: "New", Active: true, CorrelationKey: model.Int64(1)},
	}

	runPrune(pruneCmd)

	if !strings.Contains(h.stdout.String(), "Deleted 1 projects") {
		t.Errorf("Expected 'Deleted 1 projects', got: %s", h.stdout.String())
	}
	if len(h.tgt.Deleted) != 1 || h.tgt.Deleted[0] != 100 {
		t.Errorf("Expected project 100 deleted, got %v", h.tgt.Deleted)
	}
}

func TestMissingJSON(t *testing.T) {
	h := setup(t)
	h.mappedEntries()
	outputFormat = "json"

	runMissing(missingCmd)

	if h.exit != -1 {
		t.Fatalf("Expected no exit, got %d: %s", h.exit, h.stderr.String())
	}
	if !strings.Contains(h.stdout.String(), `"2024-03-04"`) {
		t.Errorf("Expected missing date in JSON, got: %s", h.stdout.String())
	}
}

func TestMissingUnknownFormat(t *testing.T) {
	h := setup(t)
	outputFormat = "xml"

	runMissing(missingCmd)

	if h.exit != 1 {
		t.Errorf("Expected exit code 1, got %d", h.exit)
	}
}

func TestBackfill(t *testing.T) {
	h := setup(t)
	h.mappedEntries()
	setFlag(t, "yes", "true", backfillCmd.Flags())
	defer backfillCmd.Flags().Set("yes", "false")

	runBackfill(backfillCmd, []string{"2024-03-04"})

	if h.exit != -1 {
		t.Fatalf("Expected no exit, got %d: %s", h.exit, h.stderr.String())
	}
	if len(h.src.Created) != 1 || len(h.src.Created[0]) != 2 {
		t.Fatalf("Expected one batch of 2 entries, got %+v", h.src.Created)
	}
	if h.src.Created[0][0].ProjectID != 1 {
		t.Errorf("Expected Float project 1, got %d", h.src.Created[0][0].ProjectID)
	}
	if !strings.Contains(h.stdout.String(), "Pushed 2 entries for 2024-03-04") {
		t.Errorf("Unexpected output: %s", h.stdout.String())
	}
}

func TestBackfillNeedsConfirmation(t *testing.T) {
	h := setup(t)
	h.mappedEntries()

	runBackfill(backfillCmd, []string{"2024-03-04"})

	if h.exit != 1 {
		t.Errorf("Expected exit code 1, got %d", h.exit)
	}
	if len(h.src.Created) != 0 {
		t.Errorf("Expected no writes to Float, got %+v", h.src.Created)
	}
}

func TestBackfillConfirmed(t *testing.T) {
	h := setup(t)
	h.mappedEntries()
	for i := range h.tgt.Entries {
		h.tgt.Entries[i].Date = day(5)
	}
	deps.Interactive = func() bool { return true }
	var asked string
	deps.Confirm = func(title string) (bool, error) { asked = title; return true, nil }

	runBackfill(backfillCmd, []string{"yesterday"})

	if !strings.Contains(asked, "2024-03-05") {
		t.Errorf("Expected confirmation for 2024-03-05, got '%s'", asked)
	}
	if len(h.src.Created) != 1 {
		t.Errorf("Expected one batch, got %+v", h.src.Created)
	}
}

func TestBackfillDeclined(t *testing.T) {
	h := setup(t)
	h.mappedEntries()
	deps.Interactive = func() bool { return true }
	deps.Confirm = func(title string) (bool, error) { return false, nil }

	runBackfill(backfillCmd, []string{"2024-03-04"})

	if !strings.Contains(h.stdout.String(), "Cancelled.") {
		t.Errorf("Expected 'Cancelled.', got: %s", h.stdout.String())
	}
	if len(h.src.Created) != 0 {
		t.Errorf("Expected no writes to Float, got %+v", h.src.Created)
	}
}

func TestBackfillInvalidDate(t *testing.T) {
	h := setup(t)

	runBackfill(backfillCmd, []string{"gibberish"})

	if h.exit != 1 {
		t.Errorf("Expected exit code 1, got %d", h.exit)
	}
	if !strings.Contains(h.stderr.String(), "invalid date") {
		t.Errorf("Expected 'invalid date' in stderr, got: %s", h.stderr.String())
	}
}

func TestBackfillPicksMissingDate(t *testing.T) {
	h := setup(t)
	h.mappedEntries()
	deps.Interactive = func() bool { return true }
	var offered []model.Date
	deps.PickDate = func(dates []model.Date) (model.Date, error) { offered = dates; return dates[0], nil }
	deps.Confirm = func(title string) (bool, error) { return true, nil }

	runBackfill(backfillCmd, nil)

	if len(offered) != 1 || offered[0] != day(4) {
		t.Errorf("Expected to be offered 2024-03-04, got %v", offered)
	}
	if len(h.src.Created) != 1 {
		t.Errorf("Expected one batch, got %+v", h.src.Created)
	}
}

func TestWeek(t *testing.T) {
	h := setup(t)
	h.src.Entries = []model.TimeEntry{
		{ID: 1, Date: day(4), ProjectID: 1, Hours: 3.75},
		{ID: 2, Date: day(5), ProjectID: 1, Hours: 0.5},
	}

	runWeek(weekCmd)

	out := h.stdout.String()
	if !strings.Contains(out, "3:45") {
		t.Errorf("Expected '3:45' in output, got: %s", out)
	}
	if !strings.Contains(out, "4:15") {
		t.Errorf("Expected total '4:15' in output, got: %s", out)
	}
}

func TestLastYAML(t *testing.T) {
	h := setup(t)
	h.src.Entries = []model.TimeEntry{{ID: 1, Date: day(5), ProjectID: 1, Hours: 1}}
	outputFormat = "yaml"

	runLast(lastCmd)

	out := h.stdout.String()
	if !strings.Contains(out, "last:") || !strings.Contains(out, "2024-03-05") {
		t.Errorf("Expected last date in YAML, got: %s", out)
	}
}

func TestReportRequiresProject(t *testing.T) {
	h := setup(t)

	runReport(reportCmd)

	if h.exit != 1 {
		t.Errorf("Expected exit code 1, got %d", h.exit)
	}
}

func TestReport(t *testing.T) {
	h := setup(t)
	h.src.Projects = []model.Project{{ID: 1, Name: "Website", Active: true}}
	h.src.Entries = []model.TimeEntry{
		{ID: 1, Date: day(1), ProjectID: 1, Notes: "Standup", Hours: 0.25},
		{ID: 2, Date: day(1), ProjectID: 1, Notes: "Standup", Hours: 0.25},
		{ID: 3, Date: day(5), ProjectID: 1, Notes: "This week", Hours: 1},
	}
	setFlag(t, "project", "1", reportCmd.Flags())
	defer reportCmd.Flags().Set("project", "0")

	runReport(reportCmd)

	out := h.stdout.String()
	if !strings.Contains(out, "1:00 - This week") {
		t.Errorf("Expected '1:00 - This week', got: %s", out)
	}
	if strings.Contains(out, "Standup") {
		t.Errorf("Expected only this week's entries, got: %s", out)
	}

	h.stdout.Reset()
	setFlag(t, "last-week", "true", reportCmd.Flags())
	defer reportCmd.Flags().Set("last-week", "false")

	runReport(reportCmd)

	out = h.stdout.String()
	if !strings.Contains(out, "0:30 - Standup") {
		t.Errorf("Expected '0:30 - Standup', got: %s", out)
	}
	if strings.Contains(out, "This week") {
		t.Errorf("Expected only last week's entries, got: %s", out)
	}
}

func TestLoginWithFlags(t *testing.T) {
	h := setup(t)
	h.cfg = &config.Config{SettleDelay: "2s"}
	h.src.People = []model.Person{
		{ID: 9, Name: "Ada", Active: true},
		{ID: 10, Name: "Bob", Active: false},
	}
	setFlag(t, "toggl-key", "t-key", loginCmd.Flags())
	setFlag(t, "float-key", "f-key", loginCmd.Flags())
	defer func() {
		loginCmd.Flags().Set("toggl-key", "")
		loginCmd.Flags().Set("float-key", "")
	}()

	runLogin(loginCmd)

	if h.saved == nil {
		t.Fatalf("Expected config to be saved, stderr: %s", h.stderr.String())
	}
	if h.saved.TogglAPIKey != "t-key" || h.saved.FloatAPIKey != "f-key" || h.saved.FloatPeopleID != 9 {
		t.Errorf("Unexpected saved config: %+v", h.saved)
	}
	if !strings.Contains(h.stdout.String(), "workspace 'Home'") {
		t.Errorf("Unexpected output: %s", h.stdout.String())
	}
}

func TestLoginPromptsWhenInteractive(t *testing.T) {
	h := setup(t)
	h.cfg = &config.Config{}
	h.src.People = []model.Person{
		{ID: 9, Name: "Ada", Active: true},
		{ID: 10, Name: "Bob", Active: true},
	}
	deps.Interactive = func() bool { return true }
	deps.PromptKeys = func(togglKey, floatKey *string) error {
		*togglKey, *floatKey = "t", "f"
		return nil
	}
	deps.PickPerson = func(people []model.Person) (int64, error) { return people[1].ID, nil }

	runLogin(loginCmd)

	if h.saved == nil || h.saved.FloatPeopleID != 10 || h.saved.TogglAPIKey != "t" {
		t.Errorf("Unexpected saved config: %+v", h.saved)
	}
}

func TestLoginNeedsPersonWhenNotInteractive(t *testing.T) {
	h := setup(t)
	h.src.People = []model.Person{
		{ID: 9, Name: "Ada", Active: true},
		{ID: 10, Name: "Bob", Active: true},
	}
	setFlag(t, "toggl-key", "t-key", loginCmd.Flags())
	setFlag(t, "float-key", "f-key", loginCmd.Flags())
	defer func() {
		loginCmd.Flags().Set("toggl-key", "")
		loginCmd.Flags().Set("float-key", "")
	}()

	runLogin(loginCmd)

	if h.exit != 1 {
		t.Errorf("Expected exit code 1, got %d", h.exit)
	}
	if h.saved != nil {
		t.Errorf("Expected nothing saved, got %+v", h.saved)
	}
}

func TestLoginWithoutWorkspace(t *testing.T) {
	h := setup(t)
	h.tgt.Workspace = nil
	setFlag(t, "toggl-key", "t-key", loginCmd.Flags())
	setFlag(t, "float-key", "f-key", loginCmd.Flags())
	defer func() {
		loginCmd.Flags().Set("toggl-key", "")
		loginCmd.Flags().Set("float-key", "")
	}()

	runLogin(loginCmd)

	if !strings.Contains(h.stderr.String(), model.ErrNoWorkspace.Error()) {
		t.Errorf("Expected workspace error, got: %s", h.stderr.String())
	}
}

func TestPeopleAndConfig(t *testing.T) {
	h := setup(t)
	h.src.People = []model.Person{{ID: 9, Name: "Ada", Email: "ada@example.com", Active: true}}

	runPeople(peopleCmd)
	if !strings.Contains(h.stdout.String(), "Ada") {
		t.Errorf("Expected 'Ada' in output, got: %s", h.stdout.String())
	}

	h.stdout.Reset()
	runConfig()
	out := h.stdout.String()
	if strings.Contains(out, "toggl-secret") {
		t.Errorf("Expected API key to be masked, got: %s", out)
	}
	if !strings.Contains(out, "********cret") {
		t.Errorf("Expected masked key, got: %s", out)
	}
}

func TestMask(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"abc", "***"},
		{"abcdef", "**cdef"},
	}
	for _, tt := range tests {
		if got := mask(tt.in); got != tt.want {
			t.Errorf("mask(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestLogout(t *testing.T) {
	h := setup(t)

	logoutCmd.Run(logoutCmd, nil)

	if !strings.Contains(h.stdout.String(), "Logged out.") {
		t.Errorf("Expected 'Logged out.', got: %s", h.stdout.String())
	}
	if h.cfg.TogglAPIKey != "" {
		t.Errorf("Expected credentials to be cleared, got %+v", h.cfg)
	}
}

package cmd

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/harrisonrobin/floaat/pkg/auth"
	"github.com/harrisonrobin/floaat/pkg/config"
	"github.com/harrisonrobin/floaat/pkg/engine"
	"github.com/harrisonrobin/floaat/pkg/float"
	"github.com/harrisonrobin/floaat/pkg/model"
	"github.com/harrisonrobin/floaat/pkg/toggl"
	"golang.org/x/term"
)

// FloatAPI is the Float side as the commands use it.
type FloatAPI interface {
	engine.Source
	ListPeople(ctx context.Context) ([]model.Person, error)
}

// Clients are the two connected services.
type Clients struct {
	Float FloatAPI
	Toggl engine.Target
}

// Deps holds external dependencies for CLI commands, enabling testability.
type Deps struct {
	Stdout io.Writer
	Stderr io.Writer
	Exit   func(code int)
	Now    func() time.Time

	LoadConfig  func() (*config.Config, error)
	SaveConfig  func(*config.Config) error
	ClearConfig func() error
	Connect     func(ctx context.Context, cfg *config.Config) (*Clients, error)

	// Interactive reports whether prompts can be shown.
	Interactive func() bool
	PromptKeys  func(togglKey, floatKey *string) error
	PickPerson  func(people []model.Person) (int64, error)
	PickDate    func(dates []model.Date) (model.Date, error)
	Confirm     func(title string) (bool, error)
}

// DefaultDeps returns the default production dependencies.
func DefaultDeps() *Deps {
	return &Deps{
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		Exit:        os.Exit,
		Now:         time.Now,
		LoadConfig:  config.Load,
		SaveConfig:  config.Save,
		ClearConfig: config.Clear,
		Connect:     connect,
		Interactive: func() bool { return term.IsTerminal(int(os.Stdin.Fd())) },
		PromptKeys:  promptKeys,
		PickPerson:  pickPerson,
		PickDate:    pickDate,
		Confirm:     confirm,
	}
}

// deps is the global dependencies instance used by commands.
var deps = DefaultDeps()

// SetDeps sets the global dependencies (for testing).
func SetDeps(d *Deps) {
	deps = d
}

// ResetDeps resets dependencies to defaults (for testing cleanup).
func ResetDeps() {
	deps = DefaultDeps()
}

func connect(ctx context.Context, cfg *config.Config) (*Clients, error) {
	floatHTTP, err := auth.NewFloatClient(ctx, cfg.FloatAPIKey)
	if err != nil {
		return nil, err
	}
	togglHTTP, err := auth.NewTogglClient(cfg.TogglAPIKey)
	if err != nil {
		return nil, err
	}
	return &Clients{
		Float: float.NewClient(floatHTTP, "", cfg.FloatPeopleID),
		Toggl: toggl.NewClient(togglHTTP, ""),
	}, nil
}

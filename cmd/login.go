package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/harrisonrobin/floaat/pkg/model"
	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store API keys and pick your Float account",
	Long: `Store the Toggl API token and Float API key in the config file and choose
which Float person time is logged for.

Keys not given as flags are asked for when running in a terminal.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runLogin(cmd)
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove stored credentials and settings",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := deps.ClearConfig(); err != nil {
			fail(err)
			return
		}
		_, _ = fmt.Fprintln(deps.Stdout, "Logged out.")
	},
}

var peopleCmd = &cobra.Command{
	Use:   "people",
	Short: "List Float people",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runPeople(cmd)
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(peopleCmd)
	loginCmd.Flags().String("toggl-key", "", "Toggl API token")
	loginCmd.Flags().String("float-key", "", "Float API key")
	loginCmd.Flags().Int64("people-id", 0, "Float people id (see 'floaat people')")
}

func runLogin(cmd *cobra.Command) {
	ctx := commandContext(cmd)
	cfg, err := deps.LoadConfig()
	if err != nil {
		fail(err)
		return
	}

	togglKey, _ := cmd.Flags().GetString("toggl-key")
	floatKey, _ := cmd.Flags().GetString("float-key")
	peopleID, _ := cmd.Flags().GetInt64("people-id")

	if togglKey == "" || floatKey == "" {
		if !deps.Interactive() {
			fail(errors.New("--toggl-key and --float-key are required when not running in a terminal"))
			return
		}
		if err := deps.PromptKeys(&togglKey, &floatKey); err != nil {
			fail(err)
			return
		}
	}
	cfg.TogglAPIKey = strings.TrimSpace(togglKey)
	cfg.FloatAPIKey = strings.TrimSpace(floatKey)

	clients, err := deps.Connect(ctx, cfg)
	if err != nil {
		fail(err)
		return
	}
	ws, err := clients.Toggl.GetWorkspace(ctx)
	if err != nil {
		fail(fmt.Errorf("failed to reach Toggl: %w", err))
		return
	}
	if ws == nil {
		fail(model.ErrNoWorkspace)
		return
	}

	if peopleID == 0 {
		people, err := clients.Float.ListPeople(ctx)
		if err != nil {
			fail(fmt.Errorf("failed to reach Float: %w", err))
			return
		}
		people = activePeople(people)
		switch {
		case len(people) == 1:
			peopleID = people[0].ID
		case len(people) == 0:
			fail(errors.New("no active people in Float"))
			return
		case !deps.Interactive():
			fail(errors.New("several Float people found, pass --people-id (see 'floaat people')"))
			return
		default:
			if peopleID, err = deps.PickPerson(people); err != nil {
				fail(err)
				return
			}
		}
	}
	cfg.FloatPeopleID = peopleID

	if err := deps.SaveConfig(cfg); err != nil {
		fail(err)
		return
	}
	_, _ = fmt.Fprintf(deps.Stdout, "Logged in to Toggl workspace '%s' as Float person %d\n", ws.Name, peopleID)
}

func activePeople(people []model.Person) []model.Person {
	var out []model.Person
	for _, p := range people {
		if p.Active {
			out = append(out, p)
		}
	}
	return out
}

func runPeople(cmd *cobra.Command) {
	ctx := commandContext(cmd)
	cfg, err := deps.LoadConfig()
	if err != nil {
		fail(err)
		return
	}
	clients, err := deps.Connect(ctx, cfg)
	if err != nil {
		fail(err)
		return
	}
	people, err := clients.Float.ListPeople(ctx)
	if err != nil {
		fail(err)
		return
	}
	if people == nil {
		people = []model.Person{}
	}
	err = render(people, func(w io.Writer) {
		for _, p := range people {
			line := fmt.Sprintf("%8d  %s", p.ID, p.Name)
			if p.Email != "" {
				line += " " + dimStyle.Render("<"+p.Email+">")
			}
			if !p.Active {
				line += dimStyle.Render(" (inactive)")
			}
			_, _ = fmt.Fprintln(w, line)
		}
	})
	if err != nil {
		fail(err)
	}
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/harrisonrobin/floaat/pkg/config"
	"github.com/harrisonrobin/floaat/pkg/rest"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "floaat",
	Short: "Keep Toggl Track in line with Float",
	Long: `floaat mirrors Float projects and tasks into Toggl Track and pushes the
time you track in Toggl back to Float.

Usage:
  floaat login                 Store API keys and pick your Float account
  floaat sync                  Sync projects and tags from Float to Toggl
  floaat missing               List days logged in Toggl but not in Float
  floaat backfill [date]       Push a day's Toggl entries to Float
  floaat week                  Hours per day logged in Float this week
  floaat report --project ID   This week's entries for one project

Dates accept YYYY-MM-DD or phrases such as "yesterday" or "last friday".`,
	SilenceUsage: true,
}

var outputFormat string

func init() {
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text, json or yaml")
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(version, commit, date string) {
	rootCmd.Version = version
	rootCmd.SetVersionTemplate(
		"floaat version {{.Version}}\n" +
			"commit: " + commit + "\n" +
			"built: " + date + "\n",
	)
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// fail prints err with a hint where one helps and exits non-zero.
func fail(err error) {
	_, _ = fmt.Fprintf(deps.Stderr, "Error: %v\n", err)
	switch code := rest.StatusCode(err); {
	case errors.Is(err, config.ErrMissingCredentials):
		_, _ = fmt.Fprintln(deps.Stderr, "Hint: Run 'floaat login' to store your API keys")
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		_, _ = fmt.Fprintln(deps.Stderr, "Hint: An API key was rejected, run 'floaat login' again")
	}
	deps.Exit(1)
}

// loadCredentials loads the config and checks that both services can be
// reached with it.
func loadCredentials() (*config.Config, error) {
	cfg, err := deps.LoadConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.Credentials(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

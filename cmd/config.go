package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/harrisonrobin/floaat/pkg/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the active configuration",
	Long: `Show the configuration after defaults and FLOAAT_* environment overrides
are applied. API keys are masked.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runConfig()
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func mask(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}

func runConfig() {
	cfg, err := deps.LoadConfig()
	if err != nil {
		fail(err)
		return
	}
	shown := *cfg
	shown.TogglAPIKey = mask(cfg.TogglAPIKey)
	shown.FloatAPIKey = mask(cfg.FloatAPIKey)
	if shown.LogFile == "" {
		shown.LogFile, _ = cfg.LogPath()
	}

	path, _ := config.GetConfigPath()
	err = render(shown, func(w io.Writer) {
		_, _ = fmt.Fprintln(w, headerStyle.Render(path))
		_, _ = fmt.Fprintf(w, "  toggl_api_key            %s\n", shown.TogglAPIKey)
		_, _ = fmt.Fprintf(w, "  float_api_key            %s\n", shown.FloatAPIKey)
		_, _ = fmt.Fprintf(w, "  float_people_id          %d\n", shown.FloatPeopleID)
		_, _ = fmt.Fprintf(w, "  settle_delay             %s\n", shown.SettleDelay)
		_, _ = fmt.Fprintf(w, "  backfill_window_days     %d\n", shown.BackfillWindowDays)
		_, _ = fmt.Fprintf(w, "  migration_window_months  %d\n", shown.MigrationWindowMonths)
		_, _ = fmt.Fprintf(w, "  log_file                 %s\n", shown.LogFile)
	})
	if err != nil {
		fail(err)
	}
}

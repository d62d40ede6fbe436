package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/harrisonrobin/floaat/pkg/model"
	"github.com/harrisonrobin/floaat/pkg/report"
	"github.com/harrisonrobin/floaat/pkg/util"
	"github.com/spf13/cobra"
)

var lastCmd = &cobra.Command{
	Use:   "last",
	Short: "Show the last day with time logged in Float",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runLast(cmd)
	},
}

var weekCmd = &cobra.Command{
	Use:   "week",
	Short: "Hours per day logged in Float this week",
	Long:  `Show the hours logged in Float for each day of the current week (Monday-Sunday).`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runWeek(cmd)
	},
}

var reportCmd = &cobra.Command{
	Use:   "report --project ID",
	Short: "This week's Float entries for one project",
	Long: `List the current week's (Monday-Sunday) Float entries for one project,
grouped by day. Use --last-week for the week before.

Entries with the same notes and phase on one day are summed.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runReport(cmd)
	},
}

func init() {
	rootCmd.AddCommand(lastCmd)
	rootCmd.AddCommand(weekCmd)
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().Int64P("project", "p", 0, "Float project id")
	reportCmd.Flags().Bool("last-week", false, "Report the previous week instead")
}

func runLast(cmd *cobra.Command) {
	ctx := commandContext(cmd)
	s, err := newSession(ctx)
	if err != nil {
		fail(err)
		return
	}
	defer s.Close()

	last, ok, err := report.LastEntry(ctx, s.clients.Float, model.DateOf(deps.Now()))
	if err != nil {
		fail(err)
		return
	}
	out := struct {
		Last *model.Date `json:"last" yaml:"last"`
	}{}
	if ok {
		out.Last = &last
	}
	err = render(out, func(w io.Writer) {
		if !ok {
			_, _ = fmt.Fprintf(w, "No time logged in Float in the last %d days\n", report.LastEntryDays)
			return
		}
		_, _ = fmt.Fprintf(w, "Last time logged in Float: %s (%s)\n", last, last.Weekday())
	})
	if err != nil {
		fail(err)
	}
}

func runWeek(cmd *cobra.Command) {
	ctx := commandContext(cmd)
	s, err := newSession(ctx)
	if err != nil {
		fail(err)
		return
	}
	defer s.Close()

	days, err := report.Week(ctx, s.clients.Float, model.DateOf(deps.Now()))
	if err != nil {
		fail(err)
		return
	}
	err = render(days, func(w io.Writer) {
		var total float64
		_, _ = fmt.Fprintln(w, headerStyle.Render("This week in Float:"))
		for _, d := range days {
			_, _ = fmt.Fprintf(w, "  %-9s %s  %s\n", d.Date.Weekday(), dimStyle.Render(d.Date.String()), util.FormatHours(d.Hours))
			total += d.Hours
		}
		_, _ = fmt.Fprintf(w, "  %-9s %s  %s\n", "Total", dimStyle.Render("          "), util.FormatHours(total))
	})
	if err != nil {
		fail(err)
	}
}

func runReport(cmd *cobra.Command) {
	ctx := commandContext(cmd)
	projectID, _ := cmd.Flags().GetInt64("project")
	lastWeek, _ := cmd.Flags().GetBool("last-week")
	if projectID == 0 {
		fail(errors.New("--project is required"))
		return
	}

	s, err := newSession(ctx)
	if err != nil {
		fail(err)
		return
	}
	defer s.Close()

	week := util.ThisWeek(model.DateOf(deps.Now()))
	if lastWeek {
		week = util.LastWeek(model.DateOf(deps.Now()))
	}
	days, err := report.Project(ctx, s.clients.Float, projectID, week)
	if err != nil {
		fail(err)
		return
	}
	if days == nil {
		days = []report.DayReport{}
	}
	err = render(days, func(w io.Writer) {
		if len(days) == 0 {
			_, _ = fmt.Fprintf(w, "No entries for project %d in %s\n", projectID, week)
			return
		}
		for i, d := range days {
			if i > 0 {
				_, _ = fmt.Fprintln(w)
			}
			_, _ = fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%s (%s)", d.Date, d.Date.Weekday())))
			for _, l := range d.Lines {
				_, _ = fmt.Fprintln(w, l.String())
			}
		}
	})
	if err != nil {
		fail(err)
	}
}

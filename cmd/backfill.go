package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/harrisonrobin/floaat/pkg/backfill"
	"github.com/harrisonrobin/floaat/pkg/model"
	"github.com/harrisonrobin/floaat/pkg/util"
	"github.com/spf13/cobra"
)

var missingCmd = &cobra.Command{
	Use:   "missing",
	Short: "List days logged in Toggl but not in Float",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runMissing(cmd)
	},
}

var backfillCmd = &cobra.Command{
	Use:   "backfill [date]",
	Short: "Push a day's Toggl entries to Float",
	Long: `Push every Toggl time entry of one day to Float.

The day is refused when Float already has entries for it or when an entry's
project was not created by floaat. Without a date you can pick one of the
missing days.

Examples:
  floaat backfill 2024-03-01
  floaat backfill yesterday
  floaat backfill "last friday" --yes`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runBackfill(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(missingCmd)
	rootCmd.AddCommand(backfillCmd)
	backfillCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
}

func runMissing(cmd *cobra.Command) {
	ctx := commandContext(cmd)
	s, err := newSession(ctx)
	if err != nil {
		fail(err)
		return
	}
	defer s.Close()

	dates, err := s.engine.Missing(ctx)
	if err != nil {
		fail(err)
		return
	}
	if dates == nil {
		dates = []model.Date{}
	}
	err = render(dates, func(w io.Writer) {
		if len(dates) == 0 {
			_, _ = fmt.Fprintln(w, "Float is up to date.")
			return
		}
		_, _ = fmt.Fprintln(w, headerStyle.Render("Missing in Float:"))
		for _, d := range dates {
			_, _ = fmt.Fprintf(w, "  %s %s\n", d, dimStyle.Render(d.Weekday().String()))
		}
	})
	if err != nil {
		fail(err)
	}
}

func runBackfill(cmd *cobra.Command, args []string) {
	ctx := commandContext(cmd)
	yes, _ := cmd.Flags().GetBool("yes")

	s, err := newSession(ctx)
	if err != nil {
		fail(err)
		return
	}
	defer s.Close()

	var date model.Date
	if len(args) == 1 {
		date, err = util.ParseDate(args[0], deps.Now())
		if err != nil {
			// Let the engine report the rejection so it is logged like any other.
			res, err := s.engine.BackfillInput(ctx, args[0])
			if err != nil {
				fail(err)
				return
			}
			reportBackfill(res)
			return
		}
	} else {
		if !deps.Interactive() {
			fail(errors.New("no date given"))
			return
		}
		dates, err := s.engine.Missing(ctx)
		if err != nil {
			fail(err)
			return
		}
		if len(dates) == 0 {
			_, _ = fmt.Fprintln(deps.Stdout, "Float is up to date.")
			return
		}
		if date, err = deps.PickDate(dates); err != nil {
			fail(err)
			return
		}
	}

	if !yes {
		if !deps.Interactive() {
			fail(errors.New("refusing to write to Float without confirmation, pass --yes"))
			return
		}
		ok, err := deps.Confirm(fmt.Sprintf("Push Toggl entries for %s (%s) to Float?", date, date.Weekday()))
		if err != nil {
			fail(err)
			return
		}
		if !ok {
			_, _ = fmt.Fprintln(deps.Stdout, "Cancelled.")
			return
		}
	}

	res, err := s.engine.Backfill(ctx, date)
	if err != nil {
		fail(err)
		return
	}
	reportBackfill(res)
}

func reportBackfill(res backfill.Result) {
	switch res.Outcome {
	case backfill.Succeeded:
		_, _ = fmt.Fprintf(deps.Stdout, "Pushed %d entries for %s\n", res.Pushed, res.Date)
	case backfill.AlreadyPresent:
		_, _ = fmt.Fprintf(deps.Stdout, "Nothing to push for %s\n", res.Date)
	case backfill.Rejected:
		_, _ = fmt.Fprintf(deps.Stderr, "Error: backfill rejected: %s\n", res.Reason)
		deps.Exit(1)
	}
}

package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/harrisonrobin/floaat/pkg/engine"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync projects and tags from Float to Toggl",
	Long: `Create and update Toggl projects for every active Float project and phase,
create Toggl tags for Float task names, move time entries off legacy phase
projects and delete the projects they leave behind.

With --detach the sync runs in a background process and only writes to the
log file.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		detach, _ := cmd.Flags().GetBool("detach")
		if detach {
			detachSync()
			return
		}
		runSync(cmd)
	},
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete Toggl projects left over from older releases",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runPrune(cmd)
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(pruneCmd)
	syncCmd.Flags().Bool("detach", false, "Run the sync in the background")
}

func runSync(cmd *cobra.Command) {
	ctx := commandContext(cmd)
	s, err := newSession(ctx)
	if err != nil {
		fail(err)
		return
	}
	defer s.Close()

	report, err := s.engine.RunFullSync(ctx)
	if err != nil {
		failRun(err)
		return
	}
	_, _ = fmt.Fprintln(deps.Stdout, dimStyle.Render(fmt.Sprintf(
		"%d created, %d updated, %d tags, %d entries moved, %d deleted",
		report.Created, report.Updated, report.TagsCreated, report.Migrated, report.Deleted)))
}

func runPrune(cmd *cobra.Command) {
	ctx := commandContext(cmd)
	s, err := newSession(ctx)
	if err != nil {
		fail(err)
		return
	}
	defer s.Close()

	report, err := s.engine.Prune(ctx)
	if err != nil {
		failRun(err)
		return
	}
	_, _ = fmt.Fprintf(deps.Stdout, "Deleted %d projects\n", report.Deleted)
}

func failRun(err error) {
	var stepErr *engine.StepError
	if errors.As(err, &stepErr) {
		_, _ = fmt.Fprintf(deps.Stderr, "Error: sync stopped at step '%s'\n", stepErr.Step)
	}
	fail(err)
}

// detachSync re-runs the sync in a child process and returns at once.
func detachSync() {
	self, err := os.Executable()
	if err != nil {
		fail(fmt.Errorf("could not find self: %w", err))
		return
	}
	child := exec.Command(self, "sync")
	child.Stdout = nil
	child.Stderr = nil
	if err := child.Start(); err != nil {
		fail(fmt.Errorf("could not start background process: %w", err))
		return
	}
	_, _ = fmt.Fprintf(deps.Stdout, "Sync running in the background (pid %d)\n", child.Process.Pid)
	_ = child.Process.Release()
}

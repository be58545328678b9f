package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/kleincho/humint/internal/models"
	"github.com/kleincho/humint/internal/threads"
)

func newThreadsCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "threads",
		Short: "List recent threads grouped by recency",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp(*configPath)
			if err != nil {
				return err
			}
			defer app.Close()

			identity := app.Auth.Current()
			if identity == nil {
				return fmt.Errorf("not signed in; thread history is kept per identity (humint login)")
			}

			threadList, err := app.Threads.ListThreads(cmd.Context(), identity.UserID)
			if err != nil {
				return err
			}

			buckets := threads.GroupByRecency(threadList, time.Now())
			if buckets.Empty() {
				fmt.Fprintln(cmd.OutOrStdout(), "no recent threads")
				return nil
			}

			out := cmd.OutOrStdout()
			printBucket(out, "Today", buckets.Today)
			printBucket(out, "Yesterday", buckets.Yesterday)
			printBucket(out, "Previous 7 days", buckets.PreviousWeek)
			return nil
		},
	}
}

func printBucket(out io.Writer, label string, bucket []models.Thread) {
	if len(bucket) == 0 {
		return
	}
	fmt.Fprintf(out, "%s:\n", label)
	for _, thread := range bucket {
		fmt.Fprintf(out, "  %s  %s\n", thread.ThreadID, thread.Title)
	}
}

package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/quintaverde/taskroster/internal/constants"
	"github.com/quintaverde/taskroster/internal/services"
	"github.com/quintaverde/taskroster/internal/utils"
)

// SyncOptions holds flags for the sync command.
type SyncOptions struct {
	*RootOptions
	Start            string
	End              string
	ChunkDays        int
	SuppressTriggers bool
}

// NewSyncCommand creates the sync command.
func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SyncOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Backfill task assignments for a date range",
		Long: `Synchronize task assignments over a date range in bounded windows.

When --start or --end are omitted, the range is derived from the stored
shift calendars and scheduled task dates, clamped to include today.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Start, "start", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.End, "end", "", "end date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&opts.ChunkDays, "chunk-size", constants.DefaultSyncChunkDays, "days per iteration")
	cmd.Flags().BoolVar(&opts.SuppressTriggers, "suppress-triggers", false, "disable automatic triggers during the run")

	return cmd
}

func runSync(opts *SyncOptions, cmd *cobra.Command) error {
	if opts.ChunkDays <= 0 {
		return services.ErrInvalidChunkSize
	}

	app, err := openApp(opts.RootOptions)
	if err != nil {
		return err
	}

	start, end, err := resolveRange(app, opts.Start, opts.End)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Synchronizing assignments from %s to %s\n",
		utils.DateKey(start), utils.DateKey(end))

	stats, err := app.sync.Backfill(services.BackfillOptions{
		Start:     start,
		End:       end,
		ChunkDays: opts.ChunkDays,
		Suppress:  opts.SuppressTriggers,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Done: %d created, %d updated, %d orphaned, %d already in place\n",
		stats.Created, stats.Updated, stats.Orphaned, stats.Matched)
	return nil
}

func resolveRange(app *app, startFlag, endFlag string) (time.Time, time.Time, error) {
	defaultStart, defaultEnd, err := app.sync.DefaultBackfillRange(time.Now())
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	start, end := defaultStart, defaultEnd
	if startFlag != "" {
		if start, err = utils.ParseDate(startFlag); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --start: %w", err)
		}
	}
	if endFlag != "" {
		if end, err = utils.ParseDate(endFlag); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --end: %w", err)
		}
	}

	if start.After(end) {
		return time.Time{}, time.Time{}, services.ErrInvalidDateRange
	}
	return start, end, nil
}

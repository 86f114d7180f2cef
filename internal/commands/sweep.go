package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/taskcore/taskcore/internal/config"
	"github.com/taskcore/taskcore/internal/sweep"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run one overdue sweep now",
	Long: `Find every overdue task that is not done and has not been flagged yet,
deliver a single summary notification, and mark the batch notified.
A failed run marks nothing, so the next run retries the same set.`,
	Run: func(cmd *cobra.Command, args []string) {
		initDB()

		sweeper := sweep.New(newNotifier(), logger)
		if err := sweeper.Run(time.Now()); err != nil {
			fmt.Printf("Sweep failed: %v\n", err)
			return
		}
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the overdue sweep on a fixed period until interrupted",
	Run: func(cmd *cobra.Command, args []string) {
		initDB()

		interval, _ := cmd.Flags().GetDuration("interval")
		if interval <= 0 {
			interval = config.SweepInterval()
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		fmt.Printf("Watching for overdue tasks every %s (ctrl+c to stop)\n", interval)

		scheduler := sweep.NewScheduler(sweep.New(newNotifier(), logger), interval, logger)
		if err := scheduler.Run(ctx); err != nil && ctx.Err() == nil {
			fmt.Printf("Watch stopped: %v\n", err)
		}
	},
}

func init() {
	watchCmd.Flags().DurationP("interval", "i", 0, "Sweep period (default from config, 1h)")
}

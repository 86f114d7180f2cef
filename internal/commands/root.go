package commands

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/taskcore/taskcore/internal/config"
	"github.com/taskcore/taskcore/internal/db"
	"github.com/taskcore/taskcore/internal/files"
	"github.com/taskcore/taskcore/internal/notify"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"

	cfgFile string
	verbose bool
	logger  *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "taskcore",
	Short: "A CLI task manager with overdue notifications",
	Long: `taskcore manages work items through their lifecycle (open, in progress,
done, failed), keeps file attachments with them, and runs a recurring
sweep that notifies you about overdue tasks exactly once per change.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logLevel := slog.LevelWarn
		if verbose {
			logLevel = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: logLevel,
		}))
	},
}

// initDB initializes the database and panics on error
func initDB() {
	if err := db.Initialize(config.DBPath()); err != nil {
		panic(err)
	}
}

// newManager builds the attachment manager over the configured blob root
func newManager() *files.Manager {
	return files.NewManager(config.FilesDir(), files.DiskStore{}, logger)
}

// newNotifier picks the configured delivery channel: an external command
// when one is set, the terminal otherwise.
func newNotifier() notify.Notifier {
	if cmd := config.NotifyCommand(); cmd != "" {
		return notify.CommandNotifier{Command: cmd, Logger: logger}
	}
	return notify.ConsoleNotifier{Out: os.Stdout}
}

// SetVersion sets the version information
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func initConfig() {
	if err := config.Init(cfgFile); err != nil {
		panic(err)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.taskcore/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(openCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(doneCmd)
	rootCmd.AddCommand(failCmd)
	rootCmd.AddCommand(reopenCmd)
	rootCmd.AddCommand(attachCmd)
	rootCmd.AddCommand(filesCmd)
	rootCmd.AddCommand(detachCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("taskcore %s (commit %s, built %s)\n", version, commit, date)
	},
}

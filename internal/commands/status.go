package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/taskcore/taskcore/internal/db"
	"github.com/taskcore/taskcore/internal/models"
)

func statusCommand(use, short string, status models.TaskStatus, emoji string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <task-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			taskID, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				fmt.Printf("Error: invalid task ID '%s'\n", args[0])
				return
			}
			initDB()

			task, err := db.SetTaskStatus(uint(taskID), status)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				return
			}

			fmt.Printf("%s Task #%d is now %s: %s\n", emoji, task.ID, task.Status, task.Title)
		},
	}
}

var (
	startCmd  = statusCommand("start", "Mark a task as in progress", models.StatusInProgress, "▶️")
	doneCmd   = statusCommand("done", "Mark a task as done", models.StatusDone, "✅")
	failCmd   = statusCommand("fail", "Mark a task as failed", models.StatusFailed, "❌")
	reopenCmd = statusCommand("reopen", "Move a task back to open", models.StatusOpen, "↩️")
)

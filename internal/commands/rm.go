package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/taskcore/taskcore/internal/db"
)

var rmCmd = &cobra.Command{
	Use:     "rm <task-id>",
	Aliases: []string{"delete"},
	Short:   "Delete a task and all its attachments",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		taskID, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			fmt.Printf("Error: invalid task ID '%s'\n", args[0])
			return
		}
		initDB()

		// Blobs first, then the row; the TaskFile rows follow by cascade.
		if err := newManager().RemoveAllForTask(uint(taskID)); err != nil {
			fmt.Printf("Error removing attachments: %v\n", err)
			return
		}

		existed, err := db.DeleteTask(uint(taskID))
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		if !existed {
			fmt.Printf("Task #%d not found.\n", taskID)
			return
		}

		fmt.Printf("🗑  Deleted task #%d\n", taskID)
	},
}

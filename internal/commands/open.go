package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/taskcore/taskcore/internal/tui"
)

var openCmd = &cobra.Command{
	Use:     "open <task-id>",
	Aliases: []string{"view", "show"},
	Short:   "Open a task session in view mode",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		taskID, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			fmt.Printf("Error: invalid task ID '%s'\n", args[0])
			return
		}
		initDB()

		if err := tui.RunTaskTUI(uint(taskID), newManager()); err != nil {
			fmt.Printf("Error: %v\n", err)
		}
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <task-id>",
	Short: "Open a task session directly in edit mode",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		taskID, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			fmt.Printf("Error: invalid task ID '%s'\n", args[0])
			return
		}
		initDB()

		if err := tui.RunEditTaskTUI(uint(taskID), newManager()); err != nil {
			fmt.Printf("Error: %v\n", err)
		}
	},
}

package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/taskcore/taskcore/internal/config"
	"github.com/taskcore/taskcore/internal/db"
	"github.com/taskcore/taskcore/internal/parser"
	"github.com/taskcore/taskcore/internal/tui"
)

var addCmd = &cobra.Command{
	Use:   "add [task title]",
	Short: "Create a new task",
	Long: `Create a new task.

Modes:
  Interactive: taskcore add (no arguments opens the session form)
  Quick: taskcore add "Task title" --due 2025-03-10 --assignee alice

The due date accepts yyyy-mm-dd or relative forms like "3 days".`,
	Args: cobra.ArbitraryArgs,
	Run: func(cmd *cobra.Command, args []string) {
		initDB()

		if len(args) == 0 {
			if err := tui.RunCreateTaskTUI(newManager(), config.CurrentUser()); err != nil {
				fmt.Printf("Error: %v\n", err)
			}
			return
		}

		description, _ := cmd.Flags().GetString("description")
		assignee, _ := cmd.Flags().GetString("assignee")
		due, _ := cmd.Flags().GetString("due")
		status, _ := cmd.Flags().GetString("status")

		if assignee == "" {
			assignee = config.CurrentUser()
		}

		task, err := db.CreateTask(db.TaskDraft{
			Title:       strings.Join(args, " "),
			Description: description,
			Assignee:    assignee,
			DueDate:     due,
			Status:      status,
		})
		if err != nil {
			fmt.Printf("Error creating task: %v\n", err)
			return
		}

		fmt.Printf("Created task #%d: %s\n", task.ID, task.Title)
		if task.Assignee != "" {
			fmt.Printf("  Assignee: %s\n", task.Assignee)
		}
		fmt.Printf("  Due: %s\n", parser.FormatDueDate(task.DueDate))
		fmt.Printf("  Status: %s\n", task.Status)
	},
}

func init() {
	addCmd.Flags().StringP("description", "d", "", "Task description")
	addCmd.Flags().StringP("assignee", "a", "", "Assignee login (defaults to the current user)")
	addCmd.Flags().StringP("due", "", "1 day", "Due date: yyyy-mm-dd, X days, X weeks")
	addCmd.Flags().StringP("status", "s", "", "Initial status (defaults to OPEN)")
}

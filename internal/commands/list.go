package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/taskcore/taskcore/internal/db"
	"github.com/taskcore/taskcore/internal/models"
	"github.com/taskcore/taskcore/internal/parser"
)

var listCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List tasks",
	Run: func(cmd *cobra.Command, args []string) {
		initDB()

		tasks, err := db.GetTasks()
		if err != nil {
			fmt.Printf("Error fetching tasks: %v\n", err)
			return
		}

		statusFilter, _ := cmd.Flags().GetString("status")
		assigneeFilter, _ := cmd.Flags().GetString("assignee")
		tasks = filterTasks(tasks, statusFilter, assigneeFilter)

		if len(tasks) == 0 {
			fmt.Println("No tasks found. Use 'taskcore add \"task title\"' to create your first task.")
			return
		}

		now := time.Now()

		// Print table header
		fmt.Printf("%-4s %-12s %-40s %-12s %s\n", "ID", "STATUS", "TITLE", "ASSIGNEE", "DUE")
		fmt.Println(strings.Repeat("-", 96))

		for _, task := range tasks {
			title := task.Title
			if len(title) > 38 {
				title = title[:35] + "..."
			}

			assignee := task.Assignee
			if len(assignee) > 10 {
				assignee = assignee[:7] + "..."
			}

			fmt.Printf("%-4d %-12s %-40s %-12s %s\n",
				task.ID,
				task.Status,
				title,
				assignee,
				parser.DescribeDueDate(task.DueDate, now))
		}
	},
}

func filterTasks(tasks []models.Task, status, assignee string) []models.Task {
	if status == "" && assignee == "" {
		return tasks
	}
	var out []models.Task
	for _, t := range tasks {
		if status != "" && !strings.EqualFold(status, string(t.Status)) {
			continue
		}
		if assignee != "" && assignee != t.Assignee {
			continue
		}
		out = append(out, t)
	}
	return out
}

func init() {
	listCmd.Flags().StringP("status", "s", "", "Filter by status: OPEN, IN_PROGRESS, DONE, FAILED")
	listCmd.Flags().StringP("assignee", "a", "", "Filter by assignee login")
}

package commands

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/taskcore/taskcore/internal/files"
)

var attachCmd = &cobra.Command{
	Use:   "attach <task-id> <file-path>",
	Short: "Attach a file to a task",
	Long: `Copy a file into the task's private attachment storage and record it.
The task must already exist; files cannot be attached before the first save.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		taskID, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			fmt.Printf("Error: invalid task ID '%s'\n", args[0])
			return
		}
		initDB()

		file, err := newManager().Attach(uint(taskID), args[1])
		if err != nil {
			if errors.Is(err, files.ErrTaskRequired) {
				fmt.Println("Error: create the task first, then attach files.")
				return
			}
			fmt.Printf("Error: %v\n", err)
			return
		}

		fmt.Printf("📎 Attached #%d %s (%s) to task #%d\n", file.ID, file.FileName, file.MimeType, taskID)
	},
}

var filesCmd = &cobra.Command{
	Use:   "files <task-id>",
	Short: "List a task's attachments, newest first",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		taskID, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			fmt.Printf("Error: invalid task ID '%s'\n", args[0])
			return
		}
		initDB()

		attached, err := newManager().List(uint(taskID))
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		if len(attached) == 0 {
			fmt.Println("No attachments.")
			return
		}

		for _, f := range attached {
			fmt.Printf("#%-4d %-30s %-24s %s\n",
				f.ID, f.FileName, f.MimeType,
				time.UnixMilli(f.CreatedAt).Format("2006-01-02 15:04"))
		}
	},
}

var detachCmd = &cobra.Command{
	Use:   "detach <file-id>",
	Short: "Remove one attachment",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		fileID, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			fmt.Printf("Error: invalid file ID '%s'\n", args[0])
			return
		}
		initDB()

		if err := newManager().Remove(uint(fileID)); err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		fmt.Printf("Removed attachment #%d\n", fileID)
	},
}

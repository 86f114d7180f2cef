package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/taskcore/taskcore/internal/files"
)

// RunCreateTaskTUI starts a session in CREATE mode. currentUser seeds
// the default assignee.
func RunCreateTaskTUI(manager *files.Manager, currentUser string) error {
	return runSession(NewTaskSessionModel(0, manager, currentUser))
}

// RunTaskTUI starts a session on an existing task in VIEW mode.
func RunTaskTUI(taskID uint, manager *files.Manager) error {
	return runSession(NewTaskSessionModel(taskID, manager, ""))
}

// RunEditTaskTUI starts a session on an existing task directly in EDIT
// mode, draft pre-populated once the load completes.
func RunEditTaskTUI(taskID uint, manager *files.Manager) error {
	model := NewTaskSessionModel(taskID, manager, "")
	model.mode = ModeEdit
	return runSession(model)
}

func runSession(model TaskSessionModel) error {
	p := tea.NewProgram(model, tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	// Handle exit messages after the TUI closes
	if m, ok := finalModel.(TaskSessionModel); ok {
		switch {
		case m.deleted:
			fmt.Printf("🗑  Deleted task #%d\n", m.taskID)
		case m.cancelled:
			fmt.Println("❌ Cancelled.")
		case m.created:
			fmt.Printf("✅ Created task #%d\n", m.taskID)
		}
	}

	return nil
}

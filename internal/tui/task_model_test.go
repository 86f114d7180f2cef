package tui

import (
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskcore/taskcore/internal/db"
	"github.com/taskcore/taskcore/internal/files"
	"github.com/taskcore/taskcore/internal/models"
)

func setupSession(t *testing.T) *files.Manager {
	t.Helper()
	require.NoError(t, db.Initialize(filepath.Join(t.TempDir(), "test.db")))
	t.Cleanup(func() { _ = db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return files.NewManager(t.TempDir(), files.DiskStore{}, logger)
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func step(t *testing.T, m TaskSessionModel, msg tea.Msg) (TaskSessionModel, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	next, ok := updated.(TaskSessionModel)
	require.True(t, ok)
	return next, cmd
}

// runCmd executes an async command synchronously and feeds its result
// back, the way the bubbletea runtime would.
func runCmd(t *testing.T, m TaskSessionModel, cmd tea.Cmd) TaskSessionModel {
	t.Helper()
	require.NotNil(t, cmd)
	next, _ := step(t, m, cmd())
	return next
}

func TestCreateModeDefaults(t *testing.T) {
	manager := setupSession(t)

	m := NewTaskSessionModel(0, manager, "alice")

	assert.Equal(t, ModeCreate, m.mode)
	assert.Equal(t, "alice", m.inputs[fieldAssignee].Value())
	assert.Equal(t, string(models.StatusOpen), m.inputs[fieldStatus].Value())
	assert.Equal(t,
		time.Now().AddDate(0, 0, 1).Format("2006-01-02"),
		m.inputs[fieldDueDate].Value())
	assert.False(t, m.canSave())
}

func TestCreateRequiresTitle(t *testing.T) {
	manager := setupSession(t)

	m := NewTaskSessionModel(0, manager, "")
	m, cmd := step(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})

	assert.Nil(t, cmd)
	assert.Equal(t, ModeCreate, m.mode)
	assert.NotEmpty(t, m.errMsg)
}

func TestCreateToViewOnSuccess(t *testing.T) {
	manager := setupSession(t)

	m := NewTaskSessionModel(0, manager, "alice")
	m.inputs[fieldTitle].SetValue("ship the release")

	m, cmd := step(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.True(t, m.loading)
	m = runCmd(t, m, cmd)

	assert.Equal(t, ModeView, m.mode)
	assert.False(t, m.loading)
	assert.NotZero(t, m.taskID)
	assert.True(t, m.created)

	stored, err := db.GetTaskByID(m.taskID)
	require.NoError(t, err)
	assert.Equal(t, "ship the release", stored.Title)
	assert.Equal(t, "alice", stored.Assignee)
}

func TestCreateFailureKeepsDraft(t *testing.T) {
	manager := setupSession(t)

	m := NewTaskSessionModel(0, manager, "")
	m.inputs[fieldTitle].SetValue("typo in date")
	m.inputs[fieldDueDate].SetValue("03/10/2025")

	m, cmd := step(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	m = runCmd(t, m, cmd)

	assert.Equal(t, ModeCreate, m.mode)
	assert.NotEmpty(t, m.errMsg)
	// The draft survives so the user can correct and resubmit
	assert.Equal(t, "typo in date", m.inputs[fieldTitle].Value())
	assert.Equal(t, "03/10/2025", m.inputs[fieldDueDate].Value())

	tasks, err := db.GetTasks()
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestSaveIsSingleFlight(t *testing.T) {
	manager := setupSession(t)

	m := NewTaskSessionModel(0, manager, "")
	m.inputs[fieldTitle].SetValue("once only")

	m, first := step(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	require.NotNil(t, first)
	require.True(t, m.loading)

	// Re-entrant submission while the write is in flight is suppressed
	m, second := step(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.Nil(t, second)

	m = runCmd(t, m, first)
	assert.Equal(t, ModeView, m.mode)
}

func TestViewLoadsTaskAndFiles(t *testing.T) {
	manager := setupSession(t)

	task, err := db.CreateTask(db.TaskDraft{Title: "loaded", DueDate: "2025-03-10"})
	require.NoError(t, err)

	m := NewTaskSessionModel(task.ID, manager, "")
	assert.Equal(t, ModeView, m.mode)
	assert.True(t, m.loading)

	m = runCmd(t, m, m.loadTaskCmd())

	assert.False(t, m.loading)
	require.NotNil(t, m.task)
	assert.Equal(t, "loaded", m.task.Title)
	assert.Equal(t, "2025-03-10", m.inputs[fieldDueDate].Value())
}

func TestViewLoadMissingTask(t *testing.T) {
	manager := setupSession(t)

	m := NewTaskSessionModel(404, manager, "")
	m = runCmd(t, m, m.loadTaskCmd())

	assert.False(t, m.loading)
	assert.Contains(t, m.errMsg, "no longer exists")
}

func TestEditSaveReturnsToView(t *testing.T) {
	manager := setupSession(t)

	task, err := db.CreateTask(db.TaskDraft{Title: "before", DueDate: "2025-03-10"})
	require.NoError(t, err)

	m := NewTaskSessionModel(task.ID, manager, "")
	m = runCmd(t, m, m.loadTaskCmd())

	m, _ = step(t, m, keyRune('e'))
	assert.Equal(t, ModeEdit, m.mode)

	m.inputs[fieldTitle].SetValue("after")
	m, cmd := step(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	m = runCmd(t, m, cmd)

	assert.Equal(t, ModeView, m.mode)

	stored, err := db.GetTaskByID(task.ID)
	require.NoError(t, err)
	assert.Equal(t, "after", stored.Title)
	assert.Equal(t, task.CreatedAt, stored.CreatedAt)
}

func TestEditEscRestoresDraft(t *testing.T) {
	manager := setupSession(t)

	task, err := db.CreateTask(db.TaskDraft{Title: "original", DueDate: "2025-03-10"})
	require.NoError(t, err)

	m := NewTaskSessionModel(task.ID, manager, "")
	m = runCmd(t, m, m.loadTaskCmd())
	m, _ = step(t, m, keyRune('e'))
	m.inputs[fieldTitle].SetValue("abandoned edit")

	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	assert.Equal(t, ModeView, m.mode)
	assert.Equal(t, "original", m.inputs[fieldTitle].Value())
}

func TestStaleResultIsDiscarded(t *testing.T) {
	manager := setupSession(t)

	task, err := db.CreateTask(db.TaskDraft{Title: "steady", DueDate: "2025-03-10"})
	require.NoError(t, err)

	m := NewTaskSessionModel(task.ID, manager, "")
	m = runCmd(t, m, m.loadTaskCmd())
	m, _ = step(t, m, keyRune('e'))
	// Leaving EDIT bumps the sequence; anything the abandoned context
	// produces must be ignored.
	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	stale := saveResultMsg{seq: m.seq - 1, err: errors.New("too late")}
	m, _ = step(t, m, stale)

	assert.Equal(t, ModeView, m.mode)
	assert.Empty(t, m.errMsg)
}

func TestDeleteTerminatesSession(t *testing.T) {
	manager := setupSession(t)

	task, err := db.CreateTask(db.TaskDraft{Title: "doomed", DueDate: "2025-03-10"})
	require.NoError(t, err)

	src := filepath.Join(t.TempDir(), "evidence.txt")
	require.NoError(t, writeFile(src, "data"))
	_, err = manager.Attach(task.ID, src)
	require.NoError(t, err)

	m := NewTaskSessionModel(task.ID, manager, "")
	m = runCmd(t, m, m.loadTaskCmd())

	m, _ = step(t, m, keyRune('d'))
	assert.True(t, m.showDeleteModal)

	m, cmd := step(t, m, keyRune('y'))
	m = runCmd(t, m, cmd)

	assert.True(t, m.deleted)

	_, err = db.GetTaskByID(task.ID)
	assert.ErrorIs(t, err, db.ErrNotFound)

	var count int64
	require.NoError(t, db.DB.Model(&models.TaskFile{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestDeleteModalCanBeDismissed(t *testing.T) {
	manager := setupSession(t)

	task, err := db.CreateTask(db.TaskDraft{Title: "spared", DueDate: "2025-03-10"})
	require.NoError(t, err)

	m := NewTaskSessionModel(task.ID, manager, "")
	m = runCmd(t, m, m.loadTaskCmd())

	m, _ = step(t, m, keyRune('d'))
	m, _ = step(t, m, keyRune('n'))

	assert.False(t, m.showDeleteModal)
	assert.False(t, m.deleted)

	_, err = db.GetTaskByID(task.ID)
	assert.NoError(t, err)
}

func writeFile(path, content string) error {
	return files.DiskStore{}.WriteFile(path, []byte(content))
}

package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/taskcore/taskcore/internal/db"
	"github.com/taskcore/taskcore/internal/files"
	"github.com/taskcore/taskcore/internal/models"
	"github.com/taskcore/taskcore/internal/parser"
)

// Mode is the session's interaction mode. Loading and error state are
// orthogonal overlays, not modes.
type Mode int

const (
	ModeCreate Mode = iota
	ModeView
	ModeEdit
)

// Field indexes into the draft inputs
const (
	fieldTitle = iota
	fieldDescription
	fieldAssignee
	fieldDueDate
	fieldStatus
	fieldCount
)

var fieldLabels = [fieldCount]string{"Title", "Description", "Assignee", "Due date", "Status"}

// TaskSessionModel is the per-task controller. It starts in CREATE when
// no task id is supplied, or VIEW with an immediate load when one is.
// All field edits mutate the in-memory draft only; storage is touched by
// the save/create/delete commands.
type TaskSessionModel struct {
	mode   Mode
	taskID uint // 0 until CREATE succeeds

	inputs [fieldCount]textinput.Model
	focus  int

	task            *models.Task
	attachments     []models.TaskFile
	assigneeOptions []string

	// loading makes save/create single-flight: re-entrant submissions
	// are ignored while a write is outstanding.
	loading bool
	errMsg  string

	// seq tags async commands; a result carrying a stale seq belongs to
	// a context the session already left and is discarded.
	seq int

	deleted   bool
	cancelled bool
	created   bool

	showDeleteModal bool

	manager *files.Manager
	width   int
	height  int
}

type taskLoadedMsg struct {
	seq   int
	task  *models.Task
	files []models.TaskFile
	err   error
}

type usersLoadedMsg struct {
	seq    int
	logins []string
}

type saveResultMsg struct {
	seq     int
	created bool
	task    *models.Task
	err     error
}

type deleteResultMsg struct {
	seq     int
	existed bool
	err     error
}

// NewTaskSessionModel builds a session. taskID == 0 starts CREATE mode;
// currentUser seeds the default assignee there.
func NewTaskSessionModel(taskID uint, manager *files.Manager, currentUser string) TaskSessionModel {
	m := TaskSessionModel{taskID: taskID, manager: manager}

	for i := 0; i < fieldCount; i++ {
		m.inputs[i] = textinput.New()
		m.inputs[i].Width = 60
		m.inputs[i].TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPrimaryText))
		m.inputs[i].PlaceholderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPlaceholder))
		m.inputs[i].Cursor.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentBright))
	}

	m.inputs[fieldTitle].Placeholder = "Task title (required)"
	m.inputs[fieldTitle].CharLimit = 200
	m.inputs[fieldDescription].Placeholder = "Description"
	m.inputs[fieldDescription].CharLimit = 500
	m.inputs[fieldAssignee].Placeholder = "Assignee login"
	m.inputs[fieldAssignee].CharLimit = 50
	m.inputs[fieldDueDate].Placeholder = "yyyy-mm-dd, X days, X weeks"
	m.inputs[fieldDueDate].CharLimit = 20
	m.inputs[fieldStatus].Placeholder = "OPEN / IN_PROGRESS / DONE / FAILED"
	m.inputs[fieldStatus].CharLimit = 20

	if taskID == 0 {
		m.mode = ModeCreate
		m.inputs[fieldAssignee].SetValue(currentUser)
		m.inputs[fieldDueDate].SetValue(time.Now().AddDate(0, 0, 1).Format("2006-01-02"))
		m.inputs[fieldStatus].SetValue(string(models.StatusOpen))
		m.inputs[fieldTitle].Focus()
	} else {
		m.mode = ModeView
		m.loading = true
	}

	return m
}

// Init kicks off the initial load for VIEW sessions and the assignee
// options for CREATE sessions.
func (m TaskSessionModel) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.loadUsersCmd()}
	if m.taskID != 0 {
		cmds = append(cmds, m.loadTaskCmd())
	}
	return tea.Batch(cmds...)
}

func (m TaskSessionModel) loadTaskCmd() tea.Cmd {
	seq := m.seq
	id := m.taskID
	manager := m.manager
	return func() tea.Msg {
		task, err := db.GetTaskByID(id)
		if err != nil {
			return taskLoadedMsg{seq: seq, err: err}
		}
		attached, err := manager.List(id)
		if err != nil {
			return taskLoadedMsg{seq: seq, task: task, err: err}
		}
		return taskLoadedMsg{seq: seq, task: task, files: attached}
	}
}

func (m TaskSessionModel) loadUsersCmd() tea.Cmd {
	seq := m.seq
	return func() tea.Msg {
		users, err := db.GetUsers()
		if err != nil {
			// Assignee suggestions are a convenience; the session stays up.
			return usersLoadedMsg{seq: seq}
		}
		logins := make([]string, len(users))
		for i, u := range users {
			logins[i] = u.Login
		}
		return usersLoadedMsg{seq: seq, logins: logins}
	}
}

func (m TaskSessionModel) saveCmd() tea.Cmd {
	seq := m.seq
	id := m.taskID
	creating := m.mode == ModeCreate
	draft := db.TaskDraft{
		Title:       m.inputs[fieldTitle].Value(),
		Description: m.inputs[fieldDescription].Value(),
		Assignee:    m.inputs[fieldAssignee].Value(),
		DueDate:     m.inputs[fieldDueDate].Value(),
		Status:      m.inputs[fieldStatus].Value(),
	}
	return func() tea.Msg {
		if creating {
			task, err := db.CreateTask(draft)
			return saveResultMsg{seq: seq, created: true, task: task, err: err}
		}
		task, err := db.UpdateTask(id, draft)
		return saveResultMsg{seq: seq, task: task, err: err}
	}
}

func (m TaskSessionModel) deleteCmd() tea.Cmd {
	seq := m.seq
	id := m.taskID
	manager := m.manager
	return func() tea.Msg {
		// Blobs go first so the row cascade cannot strand them.
		if err := manager.RemoveAllForTask(id); err != nil {
			return deleteResultMsg{seq: seq, err: err}
		}
		existed, err := db.DeleteTask(id)
		return deleteResultMsg{seq: seq, existed: existed, err: err}
	}
}

// canSave gates save/create on the one field-level rule the draft has.
func (m TaskSessionModel) canSave() bool {
	return strings.TrimSpace(m.inputs[fieldTitle].Value()) != ""
}

// Update handles messages
func (m TaskSessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case usersLoadedMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		m.assigneeOptions = msg.logins
		if m.mode == ModeCreate && m.inputs[fieldAssignee].Value() == "" && len(msg.logins) > 0 {
			m.inputs[fieldAssignee].SetValue(msg.logins[0])
		}
		return m, nil

	case taskLoadedMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.errMsg = describeError(msg.err)
			return m, nil
		}
		m.task = msg.task
		m.taskID = msg.task.ID
		m.attachments = msg.files
		m.fillDraftFromTask()
		if m.mode == ModeEdit {
			m.focusField(m.focus)
		}
		return m, nil

	case saveResultMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			// The draft stays as typed so the user can correct and retry.
			m.errMsg = describeError(msg.err)
			return m, nil
		}
		m.task = msg.task
		m.taskID = msg.task.ID
		m.created = m.created || msg.created
		m.mode = ModeView
		m.errMsg = ""
		m.blurAll()
		return m, nil

	case deleteResultMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.errMsg = describeError(msg.err)
			return m, nil
		}
		if !msg.existed {
			m.errMsg = "task no longer exists"
			return m, nil
		}
		m.deleted = true
		return m, tea.Quit

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateFocusedInput(msg)
}

func (m TaskSessionModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showDeleteModal {
		switch msg.String() {
		case "y", "Y", "enter":
			m.showDeleteModal = false
			m.loading = true
			m.seq++
			return m, m.deleteCmd()
		case "n", "N", "esc":
			m.showDeleteModal = false
			return m, nil
		case "ctrl+c":
			m.cancelled = true
			return m, tea.Quit
		}
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c":
		m.cancelled = true
		return m, tea.Quit
	}

	if m.mode == ModeView {
		switch msg.String() {
		case "e":
			m.mode = ModeEdit
			m.errMsg = ""
			m.focus = fieldTitle
			m.focusField(fieldTitle)
			return m, nil
		case "d":
			if m.loading {
				return m, nil
			}
			m.showDeleteModal = true
			return m, nil
		case "q", "esc":
			return m, tea.Quit
		}
		return m, nil
	}

	// CREATE / EDIT
	switch msg.String() {
	case "esc":
		if m.mode == ModeEdit {
			// Abandon the draft; an in-flight save may still land but its
			// result will be dropped by the sequence check.
			m.mode = ModeView
			m.errMsg = ""
			m.seq++
			m.fillDraftFromTask()
			m.blurAll()
			return m, nil
		}
		m.cancelled = true
		return m, tea.Quit

	case "tab", "down", "enter":
		m.focus = (m.focus + 1) % fieldCount
		m.focusField(m.focus)
		return m, nil

	case "shift+tab", "up":
		m.focus = (m.focus + fieldCount - 1) % fieldCount
		m.focusField(m.focus)
		return m, nil

	case "ctrl+s":
		if !m.canSave() {
			m.errMsg = "title must not be empty"
			return m, nil
		}
		if m.loading {
			return m, nil
		}
		m.loading = true
		m.errMsg = ""
		m.seq++
		return m, m.saveCmd()
	}

	return m.updateFocusedInput(msg)
}

func (m TaskSessionModel) updateFocusedInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.mode == ModeView {
		return m, nil
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *TaskSessionModel) fillDraftFromTask() {
	if m.task == nil {
		return
	}
	m.inputs[fieldTitle].SetValue(m.task.Title)
	m.inputs[fieldDescription].SetValue(m.task.Description)
	m.inputs[fieldAssignee].SetValue(m.task.Assignee)
	m.inputs[fieldDueDate].SetValue(parser.FormatDueDate(m.task.DueDate))
	m.inputs[fieldStatus].SetValue(string(m.task.Status))
}

func (m *TaskSessionModel) focusField(idx int) {
	for i := range m.inputs {
		if i == idx {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
}

func (m *TaskSessionModel) blurAll() {
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
}

// describeError maps repository errors onto the messages the session
// shows next to the form.
func describeError(err error) string {
	switch {
	case db.IsValidation(err):
		return err.Error()
	case errors.Is(err, db.ErrNotFound):
		return "task no longer exists (it may have been deleted)"
	case errors.Is(err, db.ErrConflict):
		return "task changed in the background - reload and try again"
	default:
		return "storage failure, please try again"
	}
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorAccentBright))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSecondaryText)).Width(13)
	activeLabel = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentBright)).Width(13)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorPrimaryText))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorError))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorWarning))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorHelpText))
	modalStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(ColorAccentMain)).
			Padding(1, 2)
)

// View renders the session
func (m TaskSessionModel) View() string {
	if m.deleted || m.cancelled {
		return ""
	}

	if m.showDeleteModal {
		return modalStyle.Render("Delete this task and all its attachments?\n\n[y] yes   [n] no")
	}

	var b strings.Builder

	switch m.mode {
	case ModeCreate:
		b.WriteString(headerStyle.Render("New task") + "\n\n")
	case ModeEdit:
		b.WriteString(headerStyle.Render(fmt.Sprintf("Edit task #%d", m.taskID)) + "\n\n")
	case ModeView:
		b.WriteString(headerStyle.Render(fmt.Sprintf("Task #%d", m.taskID)) + "\n\n")
	}

	if m.mode == ModeView {
		b.WriteString(m.viewDetails())
	} else {
		b.WriteString(m.viewForm())
	}

	if m.errMsg != "" {
		b.WriteString("\n" + errStyle.Render("✗ "+m.errMsg) + "\n")
	}
	if m.loading {
		b.WriteString("\n" + helpStyle.Render("working…") + "\n")
	}

	b.WriteString("\n" + helpStyle.Render(m.helpLine()))
	return b.String()
}

func (m TaskSessionModel) viewForm() string {
	var b strings.Builder
	for i := 0; i < fieldCount; i++ {
		label := labelStyle
		if i == m.focus {
			label = activeLabel
		}
		b.WriteString(label.Render(fieldLabels[i]) + " " + m.inputs[i].View() + "\n")
	}
	if len(m.assigneeOptions) > 0 {
		b.WriteString("\n" + helpStyle.Render("known users: "+strings.Join(m.assigneeOptions, ", ")) + "\n")
	}
	return b.String()
}

func (m TaskSessionModel) viewDetails() string {
	if m.task == nil {
		return helpStyle.Render("loading task…") + "\n"
	}

	var b strings.Builder
	row := func(label, value string) {
		b.WriteString(labelStyle.Render(label) + " " + valueStyle.Render(value) + "\n")
	}

	row("Title", m.task.Title)
	row("Status", string(m.task.Status))

	assignee := m.task.Assignee
	if assignee == "" {
		assignee = "—"
	}
	row("Assignee", assignee)

	due := parser.DescribeDueDate(m.task.DueDate, time.Now())
	if strings.HasPrefix(due, "OVERDUE") {
		b.WriteString(labelStyle.Render("Due date") + " " + warnStyle.Render(due) + "\n")
	} else {
		row("Due date", due)
	}

	if m.task.Description != "" {
		row("Description", m.task.Description)
	}
	if m.task.OverdueNotifiedAt != nil {
		row("Notified", time.UnixMilli(*m.task.OverdueNotifiedAt).Format("2006-01-02 15:04"))
	}
	row("Created", time.UnixMilli(m.task.CreatedAt).Format("2006-01-02 15:04"))
	row("Updated", time.UnixMilli(m.task.UpdatedAt).Format("2006-01-02 15:04"))

	b.WriteString("\n" + headerStyle.Render(fmt.Sprintf("Attachments (%d)", len(m.attachments))) + "\n")
	if len(m.attachments) == 0 {
		b.WriteString(helpStyle.Render("none — use `taskcore attach` to add files") + "\n")
	}
	for _, f := range m.attachments {
		b.WriteString(valueStyle.Render(fmt.Sprintf("#%d %s", f.ID, f.FileName)) +
			helpStyle.Render(fmt.Sprintf("  %s  %s", f.MimeType,
				time.UnixMilli(f.CreatedAt).Format("2006-01-02 15:04"))) + "\n")
	}

	return b.String()
}

func (m TaskSessionModel) helpLine() string {
	switch m.mode {
	case ModeView:
		return "e: edit • d: delete • q: close"
	default:
		return "tab/shift+tab: move • ctrl+s: save • esc: cancel"
	}
}

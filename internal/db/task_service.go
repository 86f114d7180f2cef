package db

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/taskcore/taskcore/internal/models"
	"github.com/taskcore/taskcore/internal/parser"
)

// TaskDraft holds the raw field values for a create or save, exactly as
// the user typed them. Parsing and validation happen here, not in the UI.
type TaskDraft struct {
	Title       string
	Description string
	Assignee    string
	DueDate     string // yyyy-mm-dd or a relative form
	Status      string // status token, empty means OPEN
}

type parsedDraft struct {
	title       string
	description string
	assignee    string
	dueMillis   int64
	status      models.TaskStatus
}

func parseDraft(draft TaskDraft) (*parsedDraft, error) {
	title := strings.TrimSpace(draft.Title)
	if title == "" {
		return nil, &ValidationError{Field: "title", Message: "title must not be empty"}
	}

	due, err := parser.ParseDueDate(draft.DueDate)
	if err != nil {
		return nil, &ValidationError{Field: "due_date", Message: err.Error()}
	}

	status := models.StatusOpen
	if strings.TrimSpace(draft.Status) != "" {
		status, err = models.ParseTaskStatus(draft.Status)
		if err != nil {
			return nil, &ValidationError{Field: "status", Message: err.Error()}
		}
	}

	return &parsedDraft{
		title:       title,
		description: strings.TrimSpace(draft.Description),
		assignee:    strings.TrimSpace(draft.Assignee),
		dueMillis:   due.UnixMilli(),
		status:      status,
	}, nil
}

// CreateTask validates the draft and inserts a new task. Created-at and
// updated-at are stamped with the same instant.
func CreateTask(draft TaskDraft) (*models.Task, error) {
	p, err := parseDraft(draft)
	if err != nil {
		return nil, err
	}

	now := time.Now().UnixMilli()
	task := models.Task{
		Title:       p.title,
		Description: p.description,
		Assignee:    p.assignee,
		DueDate:     p.dueMillis,
		Status:      p.status,
		CreatedAt:   now,
		UpdatedAt:   now,
		Version:     1,
	}

	if err := DB.Create(&task).Error; err != nil {
		return nil, persistence(err)
	}

	return &task, nil
}

// UpdateTask applies the draft to the task with the given id. The current
// row is re-read immediately before writing so fields owned elsewhere
// (created-at, the sweep's notified stamp) are merged, never rebuilt, and
// the write is conditional on the version that was read. A lost race
// returns ErrConflict; a row deleted underneath returns ErrNotFound.
func UpdateTask(id uint, draft TaskDraft) (*models.Task, error) {
	p, err := parseDraft(draft)
	if err != nil {
		return nil, err
	}

	existing, err := GetTaskByID(id)
	if err != nil {
		return nil, err
	}

	nowTime := time.Now()
	now := nowTime.UnixMilli()

	merged := *existing
	merged.Title = p.title
	merged.Description = p.description
	merged.Assignee = p.assignee
	merged.DueDate = p.dueMillis
	merged.Status = p.status
	merged.UpdatedAt = now

	// A due date pushed into the future re-arms the overdue notification.
	if merged.OverdueNotifiedAt != nil && merged.DueDate > now {
		merged.OverdueNotifiedAt = nil
	}

	res := DB.Model(&models.Task{}).
		Where("id = ? AND version = ?", id, existing.Version).
		Updates(map[string]interface{}{
			"title":                  merged.Title,
			"description":            merged.Description,
			"assignee":               merged.Assignee,
			"due_date_ms":            merged.DueDate,
			"status":                 merged.Status,
			"updated_at_ms":          merged.UpdatedAt,
			"overdue_notified_at_ms": merged.OverdueNotifiedAt,
			"version":                existing.Version + 1,
		})
	if res.Error != nil {
		return nil, persistence(res.Error)
	}
	if res.RowsAffected == 0 {
		// Either the row vanished or another writer got there first.
		if _, err := GetTaskByID(id); errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, ErrConflict
	}

	merged.Version = existing.Version + 1
	return &merged, nil
}

// DeleteTask removes the task row and reports whether one existed.
// TaskFile rows go with it via the foreign-key cascade; the attachment
// manager is responsible for unlinking blobs beforehand.
func DeleteTask(id uint) (bool, error) {
	res := DB.Delete(&models.Task{}, id)
	if res.Error != nil {
		return false, persistence(res.Error)
	}
	return res.RowsAffected > 0, nil
}

// GetTaskByID fetches a single task
func GetTaskByID(id uint) (*models.Task, error) {
	var task models.Task
	err := DB.First(&task, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, persistence(err)
	}
	return &task, nil
}

// GetTasks retrieves all tasks, newest first
func GetTasks() ([]models.Task, error) {
	var tasks []models.Task
	if err := DB.Order("created_at_ms DESC").Find(&tasks).Error; err != nil {
		return nil, persistence(err)
	}
	return tasks, nil
}

// SetTaskStatus is the shortcut behind the done/start/fail/reopen
// commands; it goes through UpdateTask so the same merge and version
// rules apply.
func SetTaskStatus(id uint, status models.TaskStatus) (*models.Task, error) {
	task, err := GetTaskByID(id)
	if err != nil {
		return nil, err
	}
	return UpdateTask(id, TaskDraft{
		Title:       task.Title,
		Description: task.Description,
		Assignee:    task.Assignee,
		DueDate:     parser.FormatDueDate(task.DueDate),
		Status:      string(status),
	})
}

// FindOverdueUnnotified returns tasks due strictly before asOf that are
// not DONE and have never been flagged, soonest-overdue first.
func FindOverdueUnnotified(asOf time.Time) ([]models.Task, error) {
	var tasks []models.Task
	err := DB.
		Where("due_date_ms < ? AND status <> ? AND overdue_notified_at_ms IS NULL",
			asOf.UnixMilli(), models.StatusDone).
		Order("due_date_ms ASC, id ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, persistence(err)
	}
	return tasks, nil
}

// MarkNotified bulk-sets the overdue flag for the given ids at the given
// instant. Idempotent; re-marking still counts as affected. The version
// bump makes a concurrently in-flight stale save fail instead of
// reverting the stamp.
func MarkNotified(ids []uint, at time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := DB.Model(&models.Task{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{
			"overdue_notified_at_ms": at.UnixMilli(),
			"version":                gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return 0, persistence(res.Error)
	}
	return res.RowsAffected, nil
}

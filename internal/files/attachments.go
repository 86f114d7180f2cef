// Package files manages task attachments: TaskFile rows plus their
// backing blobs in task-scoped private storage.
package files

import (
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"path/filepath"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/taskcore/taskcore/internal/db"
	"github.com/taskcore/taskcore/internal/models"
)

// ErrTaskRequired is returned when attaching to a task that does not
// exist yet. A task in CREATE mode has no id, so nothing is written.
var ErrTaskRequired = errors.New("create the task first, then attach files")

// Manager copies attachment blobs into a private root and keeps the
// TaskFile rows in step with them.
type Manager struct {
	root   string
	store  BlobStore
	logger *slog.Logger
}

func NewManager(root string, store BlobStore, logger *slog.Logger) *Manager {
	return &Manager{root: root, store: store, logger: logger}
}

// Attach copies the file at sourcePath into storage scoped to the task
// and records a TaskFile row. The task must already exist.
func (m *Manager) Attach(taskID uint, sourcePath string) (*models.TaskFile, error) {
	if _, err := db.GetTaskByID(taskID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrTaskRequired
		}
		return nil, err
	}

	data, err := m.store.ReadFile(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read source file: %w", err)
	}

	name := filepath.Base(sourcePath)
	mimeType := mime.TypeByExtension(filepath.Ext(name))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	now := time.Now().UnixMilli()

	// Timestamp prefix keeps same-named uploads from colliding.
	target := filepath.Join(m.taskDir(taskID), fmt.Sprintf("%d_%s", now, name))
	if err := m.store.WriteFile(target, data); err != nil {
		return nil, fmt.Errorf("failed to store attachment: %w", err)
	}

	file := models.TaskFile{
		TaskID:    taskID,
		FileName:  name,
		FilePath:  target,
		MimeType:  mimeType,
		CreatedAt: now,
	}
	if err := db.DB.Create(&file).Error; err != nil {
		// Roll the blob back so a failed insert leaves no stray file.
		if rmErr := m.store.Remove(target); rmErr != nil {
			m.logger.Warn("failed to remove blob after insert failure",
				"path", target, "error", rmErr)
		}
		return nil, fmt.Errorf("%w: %v", db.ErrPersistence, err)
	}

	m.logger.Info("attached file", "task_id", taskID, "file_id", file.ID, "name", name)
	return &file, nil
}

// List returns the task's attachments, newest first.
func (m *Manager) List(taskID uint) ([]models.TaskFile, error) {
	var rows []models.TaskFile
	err := db.DB.
		Where("task_id = ?", taskID).
		Order("created_at_ms DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", db.ErrPersistence, err)
	}
	return rows, nil
}

// Remove deletes one attachment. The blob delete is best effort: a blob
// that cannot be removed is logged and the row is deleted anyway.
func (m *Manager) Remove(fileID uint) error {
	var file models.TaskFile
	err := db.DB.First(&file, fileID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return db.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: %v", db.ErrPersistence, err)
	}

	if err := m.store.Remove(file.FilePath); err != nil {
		m.logger.Warn("failed to delete attachment blob", "path", file.FilePath, "error", err)
	}

	if err := db.DB.Delete(&models.TaskFile{}, fileID).Error; err != nil {
		return fmt.Errorf("%w: %v", db.ErrPersistence, err)
	}
	return nil
}

// RemoveAllForTask unlinks every blob of the task and deletes the rows.
// Deletion paths call this before removing the task itself, so the
// foreign-key cascade never strands blobs on disk.
func (m *Manager) RemoveAllForTask(taskID uint) error {
	rows, err := m.List(taskID)
	if err != nil {
		return err
	}
	for _, file := range rows {
		if err := m.store.Remove(file.FilePath); err != nil {
			m.logger.Warn("failed to delete attachment blob", "path", file.FilePath, "error", err)
		}
	}
	if err := db.DB.Where("task_id = ?", taskID).Delete(&models.TaskFile{}).Error; err != nil {
		return fmt.Errorf("%w: %v", db.ErrPersistence, err)
	}
	return nil
}

func (m *Manager) taskDir(taskID uint) string {
	return filepath.Join(m.root, "task_files", strconv.FormatUint(uint64(taskID), 10))
}

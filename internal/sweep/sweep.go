// Package sweep implements the periodic overdue-task detection job. A
// run finds every overdue, unfinished, not-yet-flagged task, delivers a
// single summary notification, and marks the whole batch notified. The
// mark is the dedup state: an unchanged task is notified at most once.
package sweep

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/taskcore/taskcore/internal/db"
	"github.com/taskcore/taskcore/internal/models"
	"github.com/taskcore/taskcore/internal/notify"
)

// Sweeper executes one sweep at a time. It is stateless between runs;
// everything it needs to dedup lives in the task rows and the durable
// notification batches.
type Sweeper struct {
	notifier notify.Notifier
	logger   *slog.Logger
}

func New(notifier notify.Notifier, logger *slog.Logger) *Sweeper {
	return &Sweeper{notifier: notifier, logger: logger}
}

// Run performs one sweep at the given instant. Any error aborts the run
// with nothing marked, so the next period retries the same set — the
// trade-off is a possible duplicate notification, never a lost one.
func (s *Sweeper) Run(now time.Time) error {
	if err := s.recoverBatches(); err != nil {
		return err
	}

	overdue, err := db.FindOverdueUnnotified(now)
	if err != nil {
		return fmt.Errorf("overdue query failed: %w", err)
	}
	if len(overdue) == 0 {
		s.logger.Debug("sweep found no overdue tasks")
		return nil
	}

	ids := make([]uint, len(overdue))
	for i, t := range overdue {
		ids[i] = t.ID
	}

	// Stage the batch before delivering so a crash in between leaves a
	// record to reconcile against on the next run.
	batch := models.NotificationBatch{
		NotifiedAt: now.UnixMilli(),
		CreatedAt:  now.UnixMilli(),
	}
	batch.SetTaskIDs(ids)
	if err := db.DB.Create(&batch).Error; err != nil {
		return fmt.Errorf("failed to stage notification batch: %w", err)
	}

	title, body := summarize(overdue)
	s.notifier.Notify(title, body)

	deliveredAt := time.Now().UnixMilli()
	err = db.DB.Model(&batch).Update("delivered_at_ms", deliveredAt).Error
	if err != nil {
		return fmt.Errorf("failed to record delivery: %w", err)
	}

	if err := s.commit(&batch); err != nil {
		return err
	}

	s.logger.Info("sweep flagged overdue tasks", "count", len(ids))
	return nil
}

// commit marks every batch member notified at the batch's instant and
// closes the batch. Safe to repeat: MarkNotified is idempotent. A member
// whose due date moved into the future since delivery has been re-armed
// and is skipped; stamping it would exempt its next overdue cycle.
func (s *Sweeper) commit(batch *models.NotificationBatch) error {
	members := batch.TaskIDList()
	var eligible []uint
	if len(members) > 0 {
		err := db.DB.Model(&models.Task{}).
			Where("id IN ? AND due_date_ms < ?", members, time.Now().UnixMilli()).
			Pluck("id", &eligible).Error
		if err != nil {
			return fmt.Errorf("failed to filter notification batch: %w", err)
		}
	}
	if _, err := db.MarkNotified(eligible, time.UnixMilli(batch.NotifiedAt)); err != nil {
		return fmt.Errorf("failed to mark tasks notified: %w", err)
	}
	committedAt := time.Now().UnixMilli()
	if err := db.DB.Model(batch).Update("committed_at_ms", committedAt).Error; err != nil {
		return fmt.Errorf("failed to commit notification batch: %w", err)
	}
	return nil
}

// recoverBatches reconciles batches a previous run left open. Delivered
// but uncommitted means the process died between notifying and marking:
// re-commit without notifying again. Staged but undelivered is simply
// abandoned; the live query recomputes the set.
func (s *Sweeper) recoverBatches() error {
	var open []models.NotificationBatch
	err := db.DB.Where("committed_at_ms IS NULL").Find(&open).Error
	if err != nil {
		return fmt.Errorf("failed to load open notification batches: %w", err)
	}

	for i := range open {
		batch := &open[i]
		if batch.DeliveredAt != nil {
			s.logger.Info("re-committing delivered notification batch", "batch_id", batch.ID)
			if err := s.commit(batch); err != nil {
				return err
			}
			continue
		}
		if err := db.DB.Delete(&models.NotificationBatch{}, batch.ID).Error; err != nil {
			return fmt.Errorf("failed to drop stale notification batch: %w", err)
		}
	}
	return nil
}

// summarize builds the single notification for a batch: a count in the
// title, the task titles in the body.
func summarize(tasks []models.Task) (title, body string) {
	title = fmt.Sprintf("Overdue tasks: %d", len(tasks))

	lines := make([]string, len(tasks))
	for i, t := range tasks {
		lines[i] = "- " + t.Title
	}
	body = strings.Join(lines, "\n")
	return title, body
}

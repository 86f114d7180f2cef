package sweep_test

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskcore/taskcore/internal/db"
	"github.com/taskcore/taskcore/internal/models"
	"github.com/taskcore/taskcore/internal/sweep"
)

type recordingNotifier struct {
	titles []string
	bodies []string
}

func (n *recordingNotifier) Notify(title, body string) {
	n.titles = append(n.titles, title)
	n.bodies = append(n.bodies, body)
}

func setupSweep(t *testing.T) (*sweep.Sweeper, *recordingNotifier) {
	t.Helper()
	require.NoError(t, db.Initialize(filepath.Join(t.TempDir(), "test.db")))
	t.Cleanup(func() { _ = db.Close() })

	notifier := &recordingNotifier{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return sweep.New(notifier, logger), notifier
}

func isoDate(t time.Time) string {
	return t.In(time.Local).Format("2006-01-02")
}

func createTask(t *testing.T, title, due, status string) *models.Task {
	t.Helper()
	task, err := db.CreateTask(db.TaskDraft{Title: title, DueDate: due, Status: status})
	require.NoError(t, err)
	return task
}

func TestSweepMarksOverdueBatch(t *testing.T) {
	sweeper, notifier := setupSweep(t)

	yesterday := isoDate(time.Now().AddDate(0, 0, -1))
	tomorrow := isoDate(time.Now().AddDate(0, 0, 1))

	late := createTask(t, "late one", yesterday, "")
	upcoming := createTask(t, "future one", tomorrow, "")

	now := time.Now()
	require.NoError(t, sweeper.Run(now))

	// Exactly one notification for the whole batch
	require.Len(t, notifier.titles, 1)
	assert.Equal(t, "Overdue tasks: 1", notifier.titles[0])
	assert.Contains(t, notifier.bodies[0], "late one")
	assert.NotContains(t, notifier.bodies[0], "future one")

	loaded, err := db.GetTaskByID(late.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.OverdueNotifiedAt)
	assert.Equal(t, now.UnixMilli(), *loaded.OverdueNotifiedAt)

	loaded, err = db.GetTaskByID(upcoming.ID)
	require.NoError(t, err)
	assert.Nil(t, loaded.OverdueNotifiedAt)

	// An immediately following sweep finds nothing left to flag
	require.NoError(t, sweeper.Run(time.Now()))
	assert.Len(t, notifier.titles, 1)
}

func TestSweepEmptySetIsSilent(t *testing.T) {
	sweeper, notifier := setupSweep(t)

	createTask(t, "not due yet", isoDate(time.Now().AddDate(0, 0, 3)), "")

	require.NoError(t, sweeper.Run(time.Now()))

	assert.Empty(t, notifier.titles)

	// Zero writes: no batch was even staged
	var count int64
	require.NoError(t, db.DB.Model(&models.NotificationBatch{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSweepExcludesDoneTasks(t *testing.T) {
	sweeper, notifier := setupSweep(t)

	lastWeek := isoDate(time.Now().AddDate(0, 0, -7))
	done := createTask(t, "finished late", lastWeek, "DONE")

	require.NoError(t, sweeper.Run(time.Now()))
	require.NoError(t, sweeper.Run(time.Now()))

	assert.Empty(t, notifier.titles)

	loaded, err := db.GetTaskByID(done.ID)
	require.NoError(t, err)
	assert.Nil(t, loaded.OverdueNotifiedAt)
}

func TestSweepSummarizesWholeBatch(t *testing.T) {
	sweeper, notifier := setupSweep(t)

	lastWeek := isoDate(time.Now().AddDate(0, 0, -7))
	yesterday := isoDate(time.Now().AddDate(0, 0, -1))

	createTask(t, "first overdue", lastWeek, "")
	createTask(t, "second overdue", yesterday, "IN_PROGRESS")

	require.NoError(t, sweeper.Run(time.Now()))

	require.Len(t, notifier.titles, 1)
	assert.Equal(t, "Overdue tasks: 2", notifier.titles[0])
	assert.Contains(t, notifier.bodies[0], "first overdue")
	assert.Contains(t, notifier.bodies[0], "second overdue")
}

func TestSweepRecommitsDeliveredBatch(t *testing.T) {
	sweeper, notifier := setupSweep(t)

	yesterday := isoDate(time.Now().AddDate(0, 0, -1))
	task := createTask(t, "survived a crash", yesterday, "")

	// A previous run died after delivering but before committing.
	notifiedAt := time.Now().Add(-30 * time.Minute).UnixMilli()
	deliveredAt := notifiedAt + 5
	batch := models.NotificationBatch{
		NotifiedAt:  notifiedAt,
		DeliveredAt: &deliveredAt,
		CreatedAt:   notifiedAt,
	}
	batch.SetTaskIDs([]uint{task.ID})
	require.NoError(t, db.DB.Create(&batch).Error)

	require.NoError(t, sweeper.Run(time.Now()))

	// Re-committed, not re-delivered
	assert.Empty(t, notifier.titles)

	loaded, err := db.GetTaskByID(task.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.OverdueNotifiedAt)
	assert.Equal(t, notifiedAt, *loaded.OverdueNotifiedAt)

	var reloaded models.NotificationBatch
	require.NoError(t, db.DB.First(&reloaded, batch.ID).Error)
	assert.NotNil(t, reloaded.CommittedAt)
}

func TestSweepRecommitSkipsRescheduledTask(t *testing.T) {
	sweeper, notifier := setupSweep(t)

	yesterday := isoDate(time.Now().AddDate(0, 0, -1))
	task := createTask(t, "pushed out after delivery", yesterday, "")

	notifiedAt := time.Now().Add(-30 * time.Minute).UnixMilli()
	deliveredAt := notifiedAt + 5
	batch := models.NotificationBatch{
		NotifiedAt:  notifiedAt,
		DeliveredAt: &deliveredAt,
		CreatedAt:   notifiedAt,
	}
	batch.SetTaskIDs([]uint{task.ID})
	require.NoError(t, db.DB.Create(&batch).Error)

	// The user rescheduled the task before the crash got recovered. The
	// re-commit must not stamp it, or it would skip its next overdue cycle.
	_, err := db.UpdateTask(task.ID, db.TaskDraft{
		Title:   "pushed out after delivery",
		DueDate: isoDate(time.Now().AddDate(0, 0, 3)),
	})
	require.NoError(t, err)

	require.NoError(t, sweeper.Run(time.Now()))

	assert.Empty(t, notifier.titles)

	loaded, err := db.GetTaskByID(task.ID)
	require.NoError(t, err)
	assert.Nil(t, loaded.OverdueNotifiedAt)

	// The batch itself still closes
	var reloaded models.NotificationBatch
	require.NoError(t, db.DB.First(&reloaded, batch.ID).Error)
	assert.NotNil(t, reloaded.CommittedAt)
}

func TestSweepAbandonsStagedBatch(t *testing.T) {
	sweeper, notifier := setupSweep(t)

	yesterday := isoDate(time.Now().AddDate(0, 0, -1))
	task := createTask(t, "staged but never sent", yesterday, "")

	// A previous run died before delivering; its stage carries no
	// delivery, so the set is recomputed and delivered fresh.
	staged := models.NotificationBatch{
		NotifiedAt: time.Now().Add(-30 * time.Minute).UnixMilli(),
		CreatedAt:  time.Now().Add(-30 * time.Minute).UnixMilli(),
	}
	staged.SetTaskIDs([]uint{task.ID})
	require.NoError(t, db.DB.Create(&staged).Error)

	now := time.Now()
	require.NoError(t, sweeper.Run(now))

	require.Len(t, notifier.titles, 1)

	loaded, err := db.GetTaskByID(task.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.OverdueNotifiedAt)
	assert.Equal(t, now.UnixMilli(), *loaded.OverdueNotifiedAt)

	// The stale stage is gone; only the fresh committed batch remains
	var count int64
	require.NoError(t, db.DB.Model(&models.NotificationBatch{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestSchedulerStopsOnCancel(t *testing.T) {
	sweeper, _ := setupSweep(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	scheduler := sweep.NewScheduler(sweeper, 10*time.Millisecond, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := scheduler.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

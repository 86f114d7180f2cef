package models

import (
	"strconv"
	"strings"
)

// NotificationBatch is the durable record behind one sweep notification.
// It moves through three phases: staged (row exists), delivered
// (DeliveredAt set), committed (CommittedAt set, tasks marked notified).
// A batch found delivered-but-uncommitted after a crash is re-committed
// without delivering again.
type NotificationBatch struct {
	ID uint `gorm:"primarykey" json:"id"`

	TaskIDs    string `gorm:"not null" json:"task_ids"` // comma-joined
	NotifiedAt int64  `gorm:"column:notified_at_ms" json:"notified_at"`

	DeliveredAt *int64 `gorm:"column:delivered_at_ms" json:"delivered_at"`
	CommittedAt *int64 `gorm:"column:committed_at_ms" json:"committed_at"`

	CreatedAt int64 `gorm:"column:created_at_ms;autoCreateTime:false" json:"created_at"`
}

// SetTaskIDs stores the batch members as a comma-joined list.
func (b *NotificationBatch) SetTaskIDs(ids []uint) {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatUint(uint64(id), 10)
	}
	b.TaskIDs = strings.Join(parts, ",")
}

// TaskIDList decodes the stored member list. Malformed entries are skipped.
func (b *NotificationBatch) TaskIDList() []uint {
	if b.TaskIDs == "" {
		return nil
	}
	var ids []uint
	for _, part := range strings.Split(b.TaskIDs, ",") {
		n, err := strconv.ParseUint(strings.TrimSpace(part), 10, 32)
		if err != nil {
			continue
		}
		ids = append(ids, uint(n))
	}
	return ids
}

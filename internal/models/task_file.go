package models

// TaskFile is an attachment row. The backing blob lives in task-scoped
// private storage at FilePath; rows are exclusively owned by their task
// and removed by the foreign-key cascade on task deletion.
type TaskFile struct {
	ID     uint `gorm:"primarykey" json:"id"`
	TaskID uint `gorm:"not null;index" json:"task_id"`

	FileName string `gorm:"not null" json:"file_name"`
	FilePath string `gorm:"not null" json:"file_path"`
	MimeType string `json:"mime_type"`

	CreatedAt int64 `gorm:"column:created_at_ms;autoCreateTime:false" json:"created_at"`

	Task Task `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

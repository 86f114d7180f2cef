package models

// User is a registered account. Task.Assignee references Login by value
// only; there is no foreign key and dangling logins are tolerated.
type User struct {
	ID uint `gorm:"primarykey" json:"id"`

	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	Login        string `gorm:"not null" json:"login"`
	PasswordHash string `gorm:"not null" json:"-"`
	Salt         string `gorm:"not null" json:"-"`

	CreatedAt int64 `gorm:"column:created_at_ms;autoCreateTime:false" json:"created_at"`
}

package entity

import "time"

// RefreshToken is the single live refresh credential of a user.
type RefreshToken struct {
	UserID    string `gorm:"primaryKey;type:varchar(64)"`
	Token     string `gorm:"type:varchar(128);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

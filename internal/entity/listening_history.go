package entity

import "time"

type ListeningHistory struct {
	Base

	UserID     string    `gorm:"uniqueIndex:idx_listening_histories_user_played_at;type:varchar(64);not null"`
	PlayedAt   time.Time `gorm:"uniqueIndex:idx_listening_histories_user_played_at;not null"`
	TrackID    string    `gorm:"type:varchar(64)"`
	TrackName  string
	ArtistName string
	AlbumName  string
	DurationMs int
	ContextURI string
}

func (ListeningHistory) TableName() string {
	return "listening_histories"
}

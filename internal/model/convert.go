package model

import (
	"github.com/soundtrail/backend/internal/entity"
)

func ConvertUser(user *entity.User) User {
	if user == nil {
		return User{}
	}

	return User{
		ID:                user.ID,
		ProviderUserID:    user.ProviderUserID,
		Email:             user.Email,
		DisplayName:       user.DisplayName,
		ProfilePictureURL: user.ProfilePictureURL,
		HasPremium:        user.HasPremium,
	}
}

func ConvertListeningHistory(record entity.ListeningHistory) ListeningHistory {
	return ListeningHistory{
		TrackID:    record.TrackID,
		TrackName:  record.TrackName,
		ArtistName: record.ArtistName,
		AlbumName:  record.AlbumName,
		DurationMs: record.DurationMs,
		ContextURI: record.ContextURI,
		PlayedAt:   record.PlayedAt,
	}
}

package model

import (
	"time"

	"github.com/soundtrail/backend/pkg/api/spotify"
)

type GetCurrentlyPlayingRequest struct{}

type GetCurrentlyPlayingResponse struct {
	*spotify.CurrentlyPlaying
	Playlist *spotify.Playlist `json:"playlist,omitempty"`
}

type ListeningHistory struct {
	TrackID    string    `json:"trackId"`
	TrackName  string    `json:"trackName"`
	ArtistName string    `json:"artistName"`
	AlbumName  string    `json:"albumName"`
	DurationMs int       `json:"durationMs"`
	ContextURI string    `json:"contextUri,omitempty"`
	PlayedAt   time.Time `json:"playedAt"`
}

type GetListeningHistoryRequest struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

type GetListeningHistoryResponse struct {
	Histories []ListeningHistory `json:"histories"`
}

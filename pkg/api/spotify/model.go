package spotify

import (
	"strings"
	"time"
)

type Token struct {
	AccessToken string

	// RefreshToken is empty unless the provider rotated it.
	RefreshToken string

	ExpiresIn int
}

type Profile struct {
	ID                string
	Email             string
	DisplayName       string
	ProfilePictureURL string
	HasPremium        bool
}

type Authorization struct {
	Token   Token
	Profile Profile
}

type Image struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

type me struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"display_name"`
	Email       string  `json:"email"`
	Product     string  `json:"product"`
	Images      []Image `json:"images"`
}

func (m me) toProfile() Profile {
	profile := Profile{
		ID:          m.ID,
		Email:       m.Email,
		DisplayName: m.DisplayName,
		HasPremium:  m.Product == "premium",
	}

	if len(m.Images) > 0 {
		profile.ProfilePictureURL = m.Images[0].URL
	}

	return profile
}

type Artist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Album struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Images []Image `json:"images"`
}

type Track struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	URI        string   `json:"uri"`
	DurationMs int      `json:"duration_ms"`
	Artists    []Artist `json:"artists"`
	Album      Album    `json:"album"`
}

// ArtistNames joins the artist names with a comma.
func (t Track) ArtistNames() string {
	names := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		names = append(names, a.Name)
	}

	return strings.Join(names, ", ")
}

type PlaybackContext struct {
	Type string `json:"type"`
	URI  string `json:"uri"`
	Href string `json:"href"`
}

// PlaylistID returns the playlist id of a playlist context, or an empty
// string.
func (c *PlaybackContext) PlaylistID() string {
	if c == nil || c.Type != "playlist" {
		return ""
	}

	segments := strings.Split(c.URI, ":")
	for i := 0; i < len(segments)-1; i++ {
		if segments[i] == "playlist" {
			return segments[i+1]
		}
	}

	return ""
}

type CurrentlyPlaying struct {
	IsPlaying            bool             `json:"is_playing"`
	ProgressMs           int              `json:"progress_ms"`
	CurrentlyPlayingType string           `json:"currently_playing_type"`
	Context              *PlaybackContext `json:"context"`
	Item                 *Track           `json:"item"`
}

type PlaylistOwner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type PlaylistTracks struct {
	Total int `json:"total"`
}

type Playlist struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	URI         string         `json:"uri"`
	Images      []Image        `json:"images"`
	Owner       PlaylistOwner  `json:"owner"`
	Tracks      PlaylistTracks `json:"tracks"`
}

type PlayHistory struct {
	Track    Track            `json:"track"`
	PlayedAt time.Time        `json:"played_at"`
	Context  *PlaybackContext `json:"context"`
}

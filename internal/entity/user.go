package entity

import "time"

// User is an identity resolved from the upstream provider. It also caches the
// provider credentials used to call the provider on the user's behalf.
type User struct {
	Base

	ProviderUserID    string `gorm:"unique;type:varchar(191);not null"`
	Email             string
	DisplayName       string
	ProfilePictureURL string `gorm:"type:text"`
	HasPremium        bool

	UpstreamAccessToken   string `gorm:"type:text"`
	UpstreamRefreshToken  string `gorm:"type:text"`
	UpstreamTokenIssuedAt time.Time
	UpstreamTokenTTL      int
}

func (User) TableName() string {
	return "users"
}

// UpstreamTokenExpiresAt is the only authority on whether the cached upstream
// access token is still usable.
func (u *User) UpstreamTokenExpiresAt() time.Time {
	return u.UpstreamTokenIssuedAt.Add(time.Duration(u.UpstreamTokenTTL) * time.Second)
}

func (u *User) HasValidUpstreamToken(now time.Time) bool {
	return u.UpstreamAccessToken != "" && now.Before(u.UpstreamTokenExpiresAt())
}

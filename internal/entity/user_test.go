package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestUser_HasValidUpstreamToken(t *testing.T) {
	issuedAt := time.Date(2023, 5, 1, 10, 0, 0, 0, time.UTC)
	user := User{
		UpstreamAccessToken:   "access",
		UpstreamTokenIssuedAt: issuedAt,
		UpstreamTokenTTL:      3600,
	}

	require.Equal(t, issuedAt.Add(time.Hour), user.UpstreamTokenExpiresAt())
	require.True(t, user.HasValidUpstreamToken(issuedAt.Add(59*time.Minute)))
	require.False(t, user.HasValidUpstreamToken(issuedAt.Add(time.Hour)))

	user.UpstreamAccessToken = ""
	require.False(t, user.HasValidUpstreamToken(issuedAt))
}

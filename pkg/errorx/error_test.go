package errorx

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("call: %w", Wrap(Upstream, cause, "Upstream request failed"))

	require.ErrorIs(t, err, cause)
	require.ErrorIs(t, err, New(Upstream, ""))
	require.NotErrorIs(t, err, New(UpstreamAuth, ""))
	require.Equal(t, Upstream, CodeOf(err))
	require.Equal(t, Unknown.Code, CodeOf(cause))
}

func TestCode_HTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{BadRequest, http.StatusBadRequest},
		{Unauthenticated, http.StatusUnauthorized},
		{SessionExpired, http.StatusUnauthorized},
		{InvalidRefreshToken, http.StatusUnauthorized},
		{UpstreamAuth, http.StatusForbidden},
		{TooManyRequests, http.StatusTooManyRequests},
		{Upstream, http.StatusBadGateway},
		{Unknown.Code, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, tt.code.HTTPStatus(), "code %d", tt.code)
	}
}

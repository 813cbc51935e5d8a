package common

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_BearerToken(t *testing.T) {
	testCases := []struct {
		name   string
		header string
		want   string
	}{
		{name: "bearer", header: "Bearer abc.def", want: "abc.def"},
		{name: "lower case scheme", header: "bearer abc", want: "abc"},
		{name: "basic", header: "Basic dXNlcjpwYXNz", want: ""},
		{name: "no scheme", header: "abc", want: ""},
		{name: "empty", header: "", want: ""},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			require.Equal(t, tt.want, BearerToken(req))
		})
	}

	require.Empty(t, BearerToken(nil))
}

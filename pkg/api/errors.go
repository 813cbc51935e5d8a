package api

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"
)

// ErrUnauthorized is returned when the upstream rejects the credential of a
// request.
var ErrUnauthorized = errors.New("upstream unauthorized")

type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("upstream rate limit, retry after %s", e.RetryAfter)
}

type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream responded %d: %s", e.Code, e.Body)
}

// IsRateLimit returns the advertised delay if err is a rate limit signal.
func IsRateLimit(err error) (time.Duration, bool) {
	var rateLimitErr *RateLimitError
	if !errors.As(err, &rateLimitErr) {
		return 0, false
	}

	return rateLimitErr.RetryAfter, true
}

// CheckResponse converts a non-2xx response into an error. The retry-after
// header is read in seconds; defaultRetryAfter applies when it is missing or
// malformed.
func CheckResponse(resp *Response, defaultRetryAfter time.Duration) error {
	switch {
	case resp.Code >= 200 && resp.Code < 300:
		return nil
	case resp.Code == http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", ErrUnauthorized, truncate(resp.RawBody))
	case resp.Code == http.StatusTooManyRequests:
		return &RateLimitError{RetryAfter: ParseRetryAfter(resp.Header, defaultRetryAfter)}
	default:
		return &StatusError{Code: resp.Code, Body: truncate(resp.RawBody)}
	}
}

// MaxRetryAfter bounds the delay a provider can impose with one answer.
const MaxRetryAfter = time.Hour

func ParseRetryAfter(header http.Header, defaultRetryAfter time.Duration) time.Duration {
	value := header.Get("Retry-After")
	if value == "" {
		return defaultRetryAfter
	}

	seconds, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(seconds) || seconds < 0 {
		return defaultRetryAfter
	}

	if seconds >= MaxRetryAfter.Seconds() {
		return MaxRetryAfter
	}

	return time.Duration(seconds * float64(time.Second))
}

func truncate(b []byte) string {
	const limit = 256
	if len(b) > limit {
		return string(b[:limit]) + "..."
	}

	return string(b)
}

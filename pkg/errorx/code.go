package errorx

import "net/http"

type Code int

var Unknown = Error{Code: 100000, Message: "Request failed"}

const (
	// Common codes
	BadRequest       Code = 100001
	BadResponse      Code = 100002
	PermissionDenied Code = 100003
	NotFound         Code = 100004
	Unauthenticated  Code = 100005
	Internal         Code = 100007
	Unavailable      Code = 100008
	TooManyRequests  Code = 100010

	// Session codes
	InvalidRefreshToken Code = 200001
	SessionExpired      Code = 200002

	// Upstream provider codes
	UpstreamAuth Code = 300001
	Upstream     Code = 300002
)

// HTTPStatus returns the status code written to clients for this error code.
func (c Code) HTTPStatus() int {
	switch c {
	case BadRequest:
		return http.StatusBadRequest
	case Unauthenticated, SessionExpired, InvalidRefreshToken:
		return http.StatusUnauthorized
	case PermissionDenied, UpstreamAuth:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case TooManyRequests:
		return http.StatusTooManyRequests
	case Upstream, BadResponse:
		return http.StatusBadGateway
	case Unavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

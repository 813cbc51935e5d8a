package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/soundtrail/backend/pkg/errorx"
	"github.com/soundtrail/backend/pkg/xcontext"
)

type response struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
}

type errorResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
	Code       int    `json:"code"`
	Cause      string `json:"cause,omitempty"`
}

func newErrorResponse(ctx context.Context, err error) errorResponse {
	errx := errorx.Unknown
	if !errors.As(err, &errx) {
		xcontext.Logger(ctx).Errorf("Unexpected error: %v", err)
		errx = errorx.Wrap(errorx.Unknown.Code, err, errorx.Unknown.Message)
	}

	resp := errorResponse{
		Success:    false,
		Message:    errx.Message,
		StatusCode: errx.Code.HTTPStatus(),
		Code:       int(errx.Code),
	}

	if xcontext.Configs(ctx).IsLocal() && errx.Cause() != nil {
		resp.Cause = errx.Cause().Error()
	}

	return resp
}

func writeResponse(ctx context.Context, w http.ResponseWriter, data any, err error) {
	if err != nil {
		resp := newErrorResponse(ctx, err)
		if err := WriteJSON(w, resp.StatusCode, resp); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot write the response: %v", err)
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, response{Success: true, Data: data}); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot write the response: %v", err)
	}
}

func WriteJSON(w http.ResponseWriter, status int, resp any) error {
	b, err := json.Marshal(resp)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(b)
	return err
}

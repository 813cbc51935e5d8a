package router

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/mitchellh/mapstructure"
	"github.com/soundtrail/backend/pkg/errorx"
	"github.com/soundtrail/backend/pkg/xcontext"
)

func wrapHandler[Request, Response any](
	router *Router,
	method string,
	handler HandlerFunc[Request, Response],
) http.HandlerFunc {
	befores := router.befores
	afters := router.afters

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := router.requestContext(r)

		var resp *Response
		err := func() error {
			for _, middleware := range befores {
				next, err := middleware(ctx)
				if err != nil {
					return err
				}
				ctx = next
			}

			var req Request
			if err := bind(method, r, &req); err != nil {
				xcontext.Logger(ctx).Debugf("Cannot bind request: %v", err)
				return errorx.Wrap(errorx.BadRequest, err, "Invalid request")
			}

			var err error
			resp, err = handler(ctx, &req)
			return err
		}()

		ctx = xcontext.WithError(ctx, err)
		if err != nil {
			writeResponse(ctx, w, nil, err)
		} else {
			writeResponse(ctx, w, resp, nil)
		}

		for _, closer := range afters {
			closer(ctx)
		}
	}
}

func bind(method string, r *http.Request, req any) error {
	switch method {
	case http.MethodGet:
		return bindQuery(r, req)
	case http.MethodPost:
		return bindJSON(r, req)
	default:
		return errors.New("unsupported method")
	}
}

func bindQuery(r *http.Request, req any) error {
	input := map[string]any{}
	for key, values := range r.URL.Query() {
		if len(values) == 1 {
			input[key] = values[0]
		} else {
			input[key] = values
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           req,
	})
	if err != nil {
		return err
	}

	return decoder.Decode(input)
}

func bindJSON(r *http.Request, req any) error {
	if r.Body == nil {
		return nil
	}

	err := json.NewDecoder(r.Body).Decode(req)
	if errors.Is(err, io.EOF) {
		return nil
	}

	return err
}

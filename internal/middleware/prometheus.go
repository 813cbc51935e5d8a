package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/soundtrail/backend/internal/common"
	"github.com/soundtrail/backend/pkg/errorx"
	"github.com/soundtrail/backend/pkg/router"
	"github.com/soundtrail/backend/pkg/xcontext"
)

func WithStartTime() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		return xcontext.WithStartTime(ctx, time.Now()), nil
	}
}

func Prometheus() router.CloserFunc {
	return func(ctx context.Context) {
		startTime := xcontext.StartTime(ctx)
		path := xcontext.HTTPRequest(ctx).URL.Path

		status := 200
		if err := xcontext.Error(ctx); err != nil {
			status = errorx.CodeOf(err).HTTPStatus()
		}

		common.PromCounters[common.HTTPRequestTotal].
			WithLabelValues(path, fmt.Sprint(status)).Inc()

		if !startTime.IsZero() {
			common.PromHistograms[common.HTTPRequestDurationSeconds].
				WithLabelValues(path, fmt.Sprint(status)).Observe(time.Since(startTime).Seconds())
		}
	}
}

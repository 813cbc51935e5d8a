package upstream

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/soundtrail/backend/pkg/xcontext"
	"github.com/soundtrail/backend/pkg/xredis"
)

// RateLimitWindow holds the moment upstream calls may resume. It is shared
// by every user because the provider limits the application as a whole. The
// window is advisory, a call racing with Block may still go out.
type RateLimitWindow interface {
	// ResumeAt returns the zero time when no window is active.
	ResumeAt(ctx context.Context) (time.Time, error)

	// Block extends the window to until. A window already reaching further
	// is kept.
	Block(ctx context.Context, until time.Time) error
}

type memoryWindow struct {
	resumeAt atomic.Int64
}

func NewMemoryWindow() *memoryWindow {
	return &memoryWindow{}
}

func (w *memoryWindow) ResumeAt(ctx context.Context) (time.Time, error) {
	nanos := w.resumeAt.Load()
	if nanos == 0 {
		return time.Time{}, nil
	}

	return time.Unix(0, nanos), nil
}

func (w *memoryWindow) Block(ctx context.Context, until time.Time) error {
	nanos := until.UnixNano()
	for {
		current := w.resumeAt.Load()
		if current >= nanos {
			return nil
		}

		if w.resumeAt.CompareAndSwap(current, nanos) {
			return nil
		}
	}
}

const redisWindowKey = "upstream:rate_limit:resume_at"

// redisWindow shares the window between processes using the same provider
// application, e.g. the api server and the cron worker.
type redisWindow struct {
	client xredis.Client
	key    string
}

func NewRedisWindow(client xredis.Client, name string) *redisWindow {
	return &redisWindow{client: client, key: redisWindowKey + ":" + name}
}

func (w *redisWindow) ResumeAt(ctx context.Context) (time.Time, error) {
	value, err := w.client.Get(ctx, w.key)
	if err != nil {
		if errors.Is(err, xredis.ErrNotFound) {
			return time.Time{}, nil
		}

		return time.Time{}, err
	}

	millis, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return time.Time{}, err
	}

	return time.UnixMilli(millis), nil
}

func (w *redisWindow) Block(ctx context.Context, until time.Time) error {
	ttl := until.Sub(xcontext.Now(ctx))
	if ttl <= 0 {
		return nil
	}

	current, err := w.ResumeAt(ctx)
	if err != nil {
		return err
	}

	// Two processes may race here; the window stays advisory.
	if !current.Before(until.Truncate(time.Millisecond)) {
		return nil
	}

	// Round up so the key never expires before the window closes.
	ttl = ttl.Truncate(time.Millisecond) + time.Millisecond
	return w.client.SetWithTTL(ctx, w.key, strconv.FormatInt(until.UnixMilli(), 10), ttl)
}

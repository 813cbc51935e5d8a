package cron

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync"
	"github.com/soundtrail/backend/config"
	"github.com/soundtrail/backend/internal/common"
	"github.com/soundtrail/backend/internal/domain/upstream"
	"github.com/soundtrail/backend/internal/entity"
	"github.com/soundtrail/backend/internal/repository"
	"github.com/soundtrail/backend/pkg/api/spotify"
	"github.com/soundtrail/backend/pkg/errorx"
	"github.com/soundtrail/backend/pkg/xcontext"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// ListeningHistoryCronJob polls the recently played tracks of every user and
// stores the plays it has not seen yet.
type ListeningHistoryCronJob struct {
	userRepo             repository.UserRepository
	listeningHistoryRepo repository.ListeningHistoryRepository
	caller               *upstream.Caller
	spotifyEndpoint      spotify.IEndpoint
	cfg                  config.CronConfigs

	// Time of the latest stored play per user.
	cursors *xsync.MapOf[string, time.Time]
}

func NewListeningHistoryCronJob(
	userRepo repository.UserRepository,
	listeningHistoryRepo repository.ListeningHistoryRepository,
	caller *upstream.Caller,
	spotifyEndpoint spotify.IEndpoint,
	cfg config.CronConfigs,
) *ListeningHistoryCronJob {
	return &ListeningHistoryCronJob{
		userRepo:             userRepo,
		listeningHistoryRepo: listeningHistoryRepo,
		caller:               caller,
		spotifyEndpoint:      spotifyEndpoint,
		cfg:                  cfg,
		cursors:              xsync.NewMapOf[time.Time](),
	}
}

func (job *ListeningHistoryCronJob) Do(ctx context.Context) {
	users, err := job.userRepo.GetAll(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get all users: %v", err)
		return
	}

	group := errgroup.Group{}
	if job.cfg.MaxConcurrentUsers > 0 {
		group.SetLimit(job.cfg.MaxConcurrentUsers)
	}

	for i := range users {
		user := &users[i]
		group.Go(func() error {
			job.syncUser(ctx, user)
			return nil
		})
	}

	_ = group.Wait()
}

func (job *ListeningHistoryCronJob) syncUser(ctx context.Context, user *entity.User) {
	after, err := job.cursor(ctx, user.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get latest play of user %s: %v", user.ID, err)
		return
	}

	plays, err := upstream.Call(ctx, job.caller, user,
		func(ctx context.Context, accessToken string) ([]spotify.PlayHistory, error) {
			return job.spotifyEndpoint.GetRecentlyPlayed(ctx, accessToken, after, job.cfg.ListeningHistoryLimit)
		})
	if err != nil {
		if errorx.CodeOf(err) == errorx.TooManyRequests {
			xcontext.Logger(ctx).Debugf("Skip listening history of user %s: %v", user.ID, err)
			return
		}

		xcontext.Logger(ctx).Warnf("Cannot get recently played tracks of user %s: %v", user.ID, err)
		return
	}

	latest := after
	records := []entity.ListeningHistory{}
	for _, p := range plays {
		if !p.PlayedAt.After(after) {
			continue
		}

		record := entity.ListeningHistory{
			Base:       entity.Base{ID: uuid.NewString()},
			UserID:     user.ID,
			PlayedAt:   p.PlayedAt,
			TrackID:    p.Track.ID,
			TrackName:  p.Track.Name,
			ArtistName: p.Track.ArtistNames(),
			AlbumName:  p.Track.Album.Name,
			DurationMs: p.Track.DurationMs,
		}
		if p.Context != nil {
			record.ContextURI = p.Context.URI
		}

		records = append(records, record)
		if p.PlayedAt.After(latest) {
			latest = p.PlayedAt
		}
	}

	if err := job.listeningHistoryRepo.CreateMany(ctx, records); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot store listening history of user %s: %v", user.ID, err)
		return
	}

	common.PromCounters[common.ListeningHistoryStored].WithLabelValues().Add(float64(len(records)))
	job.cursors.Store(user.ID, latest)
}

func (job *ListeningHistoryCronJob) cursor(ctx context.Context, userID string) (time.Time, error) {
	if after, ok := job.cursors.Load(userID); ok {
		return after, nil
	}

	latest, err := job.listeningHistoryRepo.GetLatest(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return time.Time{}, nil
		}

		return time.Time{}, err
	}

	job.cursors.Store(userID, latest.PlayedAt)
	return latest.PlayedAt, nil
}

func (job *ListeningHistoryCronJob) RunNow() bool {
	return true
}

func (job *ListeningHistoryCronJob) Next() time.Time {
	return time.Now().Add(job.cfg.ListeningHistoryInterval)
}

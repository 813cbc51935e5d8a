package domain

import (
	"context"

	"github.com/soundtrail/backend/internal/common"
	"github.com/soundtrail/backend/internal/domain/upstream"
	"github.com/soundtrail/backend/internal/entity"
	"github.com/soundtrail/backend/internal/model"
	"github.com/soundtrail/backend/internal/repository"
	"github.com/soundtrail/backend/pkg/api/spotify"
	"github.com/soundtrail/backend/pkg/errorx"
	"github.com/soundtrail/backend/pkg/xcontext"
)

type DashboardDomain interface {
	GetCurrentlyPlaying(context.Context, *model.GetCurrentlyPlayingRequest) (*model.GetCurrentlyPlayingResponse, error)
	GetListeningHistory(context.Context, *model.GetListeningHistoryRequest) (*model.GetListeningHistoryResponse, error)
}

type dashboardDomain struct {
	userRepo             repository.UserRepository
	listeningHistoryRepo repository.ListeningHistoryRepository
	caller               *upstream.Caller
	spotifyEndpoint      spotify.IEndpoint
}

func NewDashboardDomain(
	userRepo repository.UserRepository,
	listeningHistoryRepo repository.ListeningHistoryRepository,
	caller *upstream.Caller,
	spotifyEndpoint spotify.IEndpoint,
) DashboardDomain {
	return &dashboardDomain{
		userRepo:             userRepo,
		listeningHistoryRepo: listeningHistoryRepo,
		caller:               caller,
		spotifyEndpoint:      spotifyEndpoint,
	}
}

func (d *dashboardDomain) GetCurrentlyPlaying(
	ctx context.Context, req *model.GetCurrentlyPlayingRequest,
) (*model.GetCurrentlyPlayingResponse, error) {
	user, err := d.requestUser(ctx)
	if err != nil {
		return nil, err
	}

	playing, err := upstream.Call(ctx, d.caller, user, d.spotifyEndpoint.GetCurrentlyPlaying)
	if err != nil {
		return nil, err
	}

	resp := &model.GetCurrentlyPlayingResponse{CurrentlyPlaying: playing}
	if playing == nil {
		return resp, nil
	}

	if playlistID := playing.Context.PlaylistID(); playlistID != "" {
		resp.Playlist, err = upstream.Call(ctx, d.caller, user,
			func(ctx context.Context, accessToken string) (*spotify.Playlist, error) {
				return d.spotifyEndpoint.GetPlaylist(ctx, accessToken, playlistID)
			})
		if err != nil {
			return nil, err
		}
	}

	return resp, nil
}

func (d *dashboardDomain) GetListeningHistory(
	ctx context.Context, req *model.GetListeningHistoryRequest,
) (*model.GetListeningHistoryResponse, error) {
	if req.Offset < 0 {
		return nil, errorx.New(errorx.BadRequest, "Offset must be non-negative")
	}

	cfg := xcontext.Configs(ctx).ApiServer
	if req.Limit == 0 {
		req.Limit = cfg.DefaultLimit
	}

	if req.Limit < 0 {
		return nil, errorx.New(errorx.BadRequest, "Limit must be positive")
	}

	if req.Limit > cfg.MaxLimit {
		return nil, errorx.New(errorx.BadRequest, "Exceed the maximum of limit (%d)", cfg.MaxLimit)
	}

	records, err := d.listeningHistoryRepo.GetList(ctx, xcontext.RequestUserID(ctx), req.Offset, req.Limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get listening history: %v", err)
		return nil, errorx.Unknown
	}

	histories := make([]model.ListeningHistory, 0, len(records))
	for _, r := range records {
		histories = append(histories, model.ConvertListeningHistory(r))
	}

	return &model.GetListeningHistoryResponse{Histories: histories}, nil
}

func (d *dashboardDomain) requestUser(ctx context.Context) (*entity.User, error) {
	if user := common.RequestUser(ctx); user != nil {
		return user, nil
	}

	user, err := d.userRepo.GetByID(ctx, xcontext.RequestUserID(ctx))
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get user: %v", err)
		return nil, errorx.Unknown
	}

	return user, nil
}

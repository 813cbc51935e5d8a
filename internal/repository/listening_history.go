package repository

import (
	"context"

	"github.com/soundtrail/backend/internal/entity"
	"github.com/soundtrail/backend/pkg/xcontext"
	"gorm.io/gorm/clause"
)

type ListeningHistoryRepository interface {
	CreateMany(ctx context.Context, records []entity.ListeningHistory) error
	GetLatest(ctx context.Context, userID string) (*entity.ListeningHistory, error)
	GetList(ctx context.Context, userID string, offset, limit int) ([]entity.ListeningHistory, error)
}

type listeningHistoryRepository struct{}

func NewListeningHistoryRepository() *listeningHistoryRepository {
	return &listeningHistoryRepository{}
}

// CreateMany stores the plays, ignoring those already stored for the same
// user and play time.
func (r *listeningHistoryRepository) CreateMany(ctx context.Context, records []entity.ListeningHistory) error {
	if len(records) == 0 {
		return nil
	}

	return xcontext.DB(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&records).Error
}

func (r *listeningHistoryRepository) GetLatest(ctx context.Context, userID string) (*entity.ListeningHistory, error) {
	var result entity.ListeningHistory
	err := xcontext.DB(ctx).
		Where("user_id=?", userID).
		Order("played_at DESC").
		Take(&result).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *listeningHistoryRepository) GetList(
	ctx context.Context, userID string, offset, limit int,
) ([]entity.ListeningHistory, error) {
	var result []entity.ListeningHistory
	err := xcontext.DB(ctx).
		Where("user_id=?", userID).
		Order("played_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

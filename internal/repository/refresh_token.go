package repository

import (
	"context"

	"github.com/soundtrail/backend/internal/entity"
	"github.com/soundtrail/backend/pkg/xcontext"
	"gorm.io/gorm/clause"
)

type RefreshTokenRepository interface {
	Upsert(ctx context.Context, userID, token string) error
	Get(ctx context.Context, userID string) (*entity.RefreshToken, error)
	Delete(ctx context.Context, userID string) error
}

type refreshTokenRepository struct{}

func NewRefreshTokenRepository() *refreshTokenRepository {
	return &refreshTokenRepository{}
}

// Upsert replaces the refresh token of the user. Only the last written token
// is valid.
func (r *refreshTokenRepository) Upsert(ctx context.Context, userID, token string) error {
	return xcontext.DB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"token", "updated_at"}),
	}).Create(&entity.RefreshToken{UserID: userID, Token: token}).Error
}

func (r *refreshTokenRepository) Get(ctx context.Context, userID string) (*entity.RefreshToken, error) {
	var result entity.RefreshToken
	if err := xcontext.DB(ctx).Take(&result, "user_id=?", userID).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *refreshTokenRepository) Delete(ctx context.Context, userID string) error {
	return xcontext.DB(ctx).Delete(&entity.RefreshToken{}, "user_id=?", userID).Error
}

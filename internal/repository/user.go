package repository

import (
	"context"
	"time"

	"github.com/soundtrail/backend/internal/entity"
	"github.com/soundtrail/backend/pkg/xcontext"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByProviderUserID(ctx context.Context, providerUserID string) (*entity.User, error)
	GetAll(ctx context.Context) ([]entity.User, error)
	Upsert(ctx context.Context, data *entity.User) error
	UpdateUpstreamTokens(ctx context.Context, id string, tokens UpstreamTokens) error
}

// UpstreamTokens is a new provider credential of a user. An empty
// RefreshToken keeps the stored one.
type UpstreamTokens struct {
	AccessToken  string
	RefreshToken string
	TTL          int
	IssuedAt     time.Time
}

type userRepository struct{}

func NewUserRepository() *userRepository {
	return &userRepository{}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	var record entity.User
	if err := xcontext.DB(ctx).Where("id=?", id).Take(&record).Error; err != nil {
		return nil, err
	}

	return &record, nil
}

func (r *userRepository) GetByProviderUserID(ctx context.Context, providerUserID string) (*entity.User, error) {
	var record entity.User
	if err := xcontext.DB(ctx).Where("provider_user_id=?", providerUserID).Take(&record).Error; err != nil {
		return nil, err
	}

	return &record, nil
}

func (r *userRepository) GetAll(ctx context.Context) ([]entity.User, error) {
	var result []entity.User
	if err := xcontext.DB(ctx).Order("created_at").Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

// Upsert creates the user or, if the provider user id is already known,
// refreshes its profile and provider credential. The id of an existing user
// never changes.
func (r *userRepository) Upsert(ctx context.Context, data *entity.User) error {
	return xcontext.DB(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "provider_user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"email",
			"display_name",
			"profile_picture_url",
			"has_premium",
			"upstream_access_token",
			"upstream_refresh_token",
			"upstream_token_issued_at",
			"upstream_token_ttl",
			"updated_at",
		}),
	}).Create(data).Error
}

func (r *userRepository) UpdateUpstreamTokens(ctx context.Context, id string, tokens UpstreamTokens) error {
	updateMap := map[string]any{
		"upstream_access_token":    tokens.AccessToken,
		"upstream_token_ttl":       tokens.TTL,
		"upstream_token_issued_at": tokens.IssuedAt,
	}

	if tokens.RefreshToken != "" {
		updateMap["upstream_refresh_token"] = tokens.RefreshToken
	}

	tx := xcontext.DB(ctx).Model(&entity.User{}).Where("id=?", id).Updates(updateMap)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

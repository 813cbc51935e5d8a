package migration

import (
	"context"

	"github.com/soundtrail/backend/internal/entity"
	"github.com/soundtrail/backend/pkg/xcontext"
)

// migrate0001 adds the unique play index to databases created before the
// listening history job deduplicated plays.
func migrate0001(ctx context.Context) error {
	const index = "idx_listening_histories_user_played_at"

	migrator := xcontext.DB(ctx).Migrator()
	if migrator.HasIndex(&entity.ListeningHistory{}, index) {
		return nil
	}

	return migrator.CreateIndex(&entity.ListeningHistory{}, index)
}

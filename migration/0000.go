package migration

import (
	"context"

	"github.com/soundtrail/backend/internal/entity"
)

// migrate0000 will create the database with the latest version.
func migrate0000(ctx context.Context) error {
	return entity.MigrateTable(ctx)
}

package entity

import (
	"context"

	"github.com/soundtrail/backend/pkg/xcontext"
)

// MigrateTable creates or updates every table to the latest schema.
func MigrateTable(ctx context.Context) error {
	return xcontext.DB(ctx).AutoMigrate(
		&User{},
		&RefreshToken{},
		&ListeningHistory{},
		&Migration{},
	)
}

package migration

import (
	"context"
	"errors"
	"fmt"

	"github.com/soundtrail/backend/internal/entity"
	"github.com/soundtrail/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type Migrator func(ctx context.Context) error

// Migrators are applied in order. The index of a migrator is its version.
// NOTE: Never reorder or remove a migrator, only append.
var Migrators = []Migrator{
	migrate0000,
	migrate0001,
}

// Migrate applies every migrator newer than the version recorded in the
// database. A fresh database is created with the latest schema directly.
func Migrate(ctx context.Context) error {
	db := xcontext.DB(ctx)
	if err := db.AutoMigrate(&entity.Migration{}); err != nil {
		return err
	}

	version, err := currentVersion(ctx)
	if err != nil {
		return err
	}

	if version < 0 {
		if err := migrate0000(ctx); err != nil {
			return err
		}

		// The initial migrator builds the latest schema.
		return markApplied(ctx, 0, len(Migrators)-1)
	}

	for v := version + 1; v < len(Migrators); v++ {
		xcontext.Logger(ctx).Infof("Apply migration %04d", v)
		if err := Migrators[v](ctx); err != nil {
			return fmt.Errorf("migration %04d: %w", v, err)
		}

		if err := markApplied(ctx, v, v); err != nil {
			return err
		}
	}

	return nil
}

// currentVersion returns -1 if no migration has been applied.
func currentVersion(ctx context.Context) (int, error) {
	var latest entity.Migration
	err := xcontext.DB(ctx).Order("version DESC").Take(&latest).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return -1, nil
		}

		return 0, err
	}

	return latest.Version, nil
}

func markApplied(ctx context.Context, from, to int) error {
	for v := from; v <= to; v++ {
		if err := xcontext.DB(ctx).Create(&entity.Migration{Version: v}).Error; err != nil {
			return err
		}
	}

	return nil
}

package db

import (
	"context"

	"github.com/habiliai/agentloop/errors"
	"gorm.io/gorm"
)

func AutoMigrate(ctx context.Context, db *gorm.DB, models ...any) error {
	_, tx := OpenSession(ctx, db)
	return errors.Wrapf(tx.AutoMigrate(models...), "failed to migrate")
}

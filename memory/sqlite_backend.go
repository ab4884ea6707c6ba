package memory

import (
	"context"
	"encoding/json"
	"time"

	"github.com/habiliai/agentloop/errors"
	"github.com/habiliai/agentloop/internal/db"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SqliteBackend keeps every document as one JSON row of the documents table.
type SqliteBackend struct {
	db *gorm.DB
}

type SqliteDocumentRecord struct {
	Name      string `gorm:"primaryKey"`
	Body      datatypes.JSON
	UpdatedAt time.Time
}

func (SqliteDocumentRecord) TableName() string {
	return "memory_documents"
}

var _ Backend = (*SqliteBackend)(nil)

func NewSqliteBackend(ctx context.Context, path string) (*SqliteBackend, error) {
	conn, err := db.OpenSqlite(path)
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(ctx, conn, &SqliteDocumentRecord{}); err != nil {
		_ = db.CloseDB(conn)
		return nil, err
	}

	return &SqliteBackend{db: conn}, nil
}

func (b *SqliteBackend) Load(ctx context.Context, name string, v any) (bool, error) {
	_, tx := db.OpenSession(ctx, b.db)

	var record SqliteDocumentRecord
	if err := tx.First(&record, "name = ?", name).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	} else if err != nil {
		return false, errors.Wrapf(err, "failed to load %s", name)
	}

	if err := json.Unmarshal(record.Body, v); err != nil {
		return true, errors.Wrapf(errors.ErrInvalidDocument, "%s: %v", name, err)
	}
	return true, nil
}

func (b *SqliteBackend) Save(ctx context.Context, name string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "failed to encode %s", name)
	}

	_, tx := db.OpenSession(ctx, b.db)
	record := SqliteDocumentRecord{
		Name:      name,
		Body:      datatypes.JSON(body),
		UpdatedAt: time.Now(),
	}
	if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&record).Error; err != nil {
		return errors.Wrapf(err, "failed to save %s", name)
	}
	return nil
}

func (b *SqliteBackend) Close() error {
	return db.CloseDB(b.db)
}

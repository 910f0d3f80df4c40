package streaming

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WarehouseRepository performs bulk inserts into the analytical table and
// writes the ingestion audit log. The target table is <dataset>.<table>,
// both injected from configuration.
type WarehouseRepository struct {
	db      *gorm.DB
	dataset string
	table   string
}

func NewWarehouseRepository(db *gorm.DB, dataset, table string) *WarehouseRepository {
	return &WarehouseRepository{db: db, dataset: dataset, table: table}
}

func (r *WarehouseRepository) target() string {
	return r.dataset + "." + r.table
}

func (r *WarehouseRepository) AutoMigrate() error {
	if err := r.db.Exec(fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %q", r.dataset)).Error; err != nil {
		return err
	}
	if err := r.db.Table(r.target()).AutoMigrate(&TelemetryRow{}); err != nil {
		return err
	}
	return r.db.AutoMigrate(&IngestionLog{})
}

// BulkInsert writes the whole batch inside one transaction. The first
// failing row aborts and rolls back the transaction, so a bad row never
// leaves a partial file behind. An empty error list means the batch
// committed.
func (r *WarehouseRepository) BulkInsert(ctx context.Context, rows []TelemetryRow) ([]RowError, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	var rowErrors []RowError
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range rows {
			if err := tx.Table(r.target()).Create(&rows[i]).Error; err != nil {
				rowErrors = append(rowErrors, RowError{Index: i, Message: err.Error()})
				return BulkInsertError{Errors: rowErrors}
			}
		}
		return nil
	})

	if len(rowErrors) > 0 {
		return rowErrors, nil
	}
	return nil, err
}

// RecordOutcome appends an audit row. Callers treat failures as non-fatal.
func (r *WarehouseRepository) RecordOutcome(ctx context.Context, entry *IngestionLog) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	entry.CreatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Create(entry).Error
}

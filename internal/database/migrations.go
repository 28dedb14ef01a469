package database

import (
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pharmadesk/backend/internal/crm"
	"github.com/pharmadesk/backend/internal/gateway"
)

const migrationBackfillOrderTotals = "2026-06-02_backfill_order_totals"

type migrationRecord struct {
	Name             string `gorm:"column:name;primaryKey;size:190;not null"`
	AppliedAtSeconds int64  `gorm:"column:applied_at_s;not null"`
}

func (migrationRecord) TableName() string {
	return "db_migrations"
}

type migrationDefinition struct {
	name  string
	apply func(*gorm.DB) error
}

func applyMigrations(db *gorm.DB, logger *zap.Logger) error {
	migrations := []migrationDefinition{
		{name: migrationBackfillOrderTotals, apply: backfillOrderTotals},
	}

	for _, migration := range migrations {
		var record migrationRecord
		err := db.Where("name = ?", migration.name).Take(&record).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := migration.apply(db); err != nil {
			return err
		}
		appliedAt := time.Now().UTC().Unix()
		if err := db.Create(&migrationRecord{Name: migration.name, AppliedAtSeconds: appliedAt}).Error; err != nil {
			return err
		}
		if logger != nil {
			logger.Info("database migration applied", zap.String("migration", migration.name))
		}
	}
	return nil
}

// backfillOrderTotals repairs rows whose stored total drifted from the line
// items, from before total_value became write-once derived.
func backfillOrderTotals(db *gorm.DB) error {
	var records []gateway.OrderRecord
	if err := db.Find(&records).Error; err != nil {
		return err
	}
	for _, record := range records {
		total := crm.LineItemsTotal(gateway.DecodeLineItems(record.Products))
		if total == record.TotalValue {
			continue
		}
		if err := db.Model(&gateway.OrderRecord{}).
			Where("id = ?", record.ID).
			Update("total_value", total).Error; err != nil {
			return err
		}
	}
	return nil
}

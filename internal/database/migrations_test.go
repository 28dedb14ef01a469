package database

import (
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/pharmadesk/backend/internal/gateway"
)

func newMigratedDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access database handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(
		&gateway.LeadRecord{},
		&gateway.ManufacturerRecord{},
		&gateway.OrderRecord{},
		&gateway.DocumentRecord{},
		&migrationRecord{},
	); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}
	return db
}

func TestBackfillOrderTotalsRepairsDrift(t *testing.T) {
	db := newMigratedDB(t)

	now := time.Unix(1700000000, 0).UTC()
	drifted := gateway.OrderRecord{
		ID:         "order-drift",
		UserID:     "operator-1",
		LeadID:     "lead-1",
		Products:   `[{"product_id":"p-1","name":"Item","quantity":2,"unit_price":5}]`,
		TotalValue: 999,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	consistent := gateway.OrderRecord{
		ID:         "order-ok",
		UserID:     "operator-1",
		LeadID:     "lead-1",
		Products:   `[{"product_id":"p-2","name":"Item","quantity":1,"unit_price":7}]`,
		TotalValue: 7,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := db.Create(&drifted).Error; err != nil {
		t.Fatalf("failed to seed drifted row: %v", err)
	}
	if err := db.Create(&consistent).Error; err != nil {
		t.Fatalf("failed to seed consistent row: %v", err)
	}

	if err := applyMigrations(db, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var repaired gateway.OrderRecord
	if err := db.Where("id = ?", "order-drift").Take(&repaired).Error; err != nil {
		t.Fatalf("failed to reload row: %v", err)
	}
	if repaired.TotalValue != 10 {
		t.Fatalf("expected repaired total 10, got %v", repaired.TotalValue)
	}

	var untouched gateway.OrderRecord
	if err := db.Where("id = ?", "order-ok").Take(&untouched).Error; err != nil {
		t.Fatalf("failed to reload row: %v", err)
	}
	if untouched.TotalValue != 7 {
		t.Fatalf("consistent row changed: %v", untouched.TotalValue)
	}
}

func TestApplyMigrationsIsIdempotent(t *testing.T) {
	db := newMigratedDB(t)

	if err := applyMigrations(db, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := applyMigrations(db, nil); err != nil {
		t.Fatalf("unexpected error on rerun: %v", err)
	}

	var count int64
	if err := db.Model(&migrationRecord{}).Count(&count).Error; err != nil {
		t.Fatalf("failed to count migrations: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 applied migration, got %d", count)
	}
}

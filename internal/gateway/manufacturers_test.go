package gateway

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pharmadesk/backend/internal/crm"
)

func TestManufacturerGatewayTranslatesContactColumns(t *testing.T) {
	db := newTestDB(t)
	gatewayUnderTest, err := NewManufacturerGateway(newTestConfig(t, db, "mfr-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	created, err := gatewayUnderTest.Create(context.Background(), crm.NewManufacturer{
		Name:          "Helix Pharma",
		ContactPerson: "Maria Ortiz",
		MinOrderValue: 2500,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ContactPerson != "Maria Ortiz" {
		t.Fatalf("expected contact person round trip, got %q", created.ContactPerson)
	}
	if created.MinOrderValue != 2500 {
		t.Fatalf("expected min order value 2500, got %v", created.MinOrderValue)
	}

	var storedContact string
	if err := db.Raw("SELECT contact_person FROM manufacturers WHERE id = ?", created.ID).Scan(&storedContact).Error; err != nil {
		t.Fatalf("failed to read stored column: %v", err)
	}
	if storedContact != "Maria Ortiz" {
		t.Fatalf("expected snake_case storage column, got %q", storedContact)
	}
}

func TestManufacturerGatewayDefaultsOnSparseRows(t *testing.T) {
	db := newTestDB(t)
	gatewayUnderTest, err := NewManufacturerGateway(newTestConfig(t, db))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Simulate a row written before the gateway enforced defaults: NULL
	// lists, NULL min_order_value, blank status.
	now := time.Unix(1700000000, 0).UTC()
	sparse := ManufacturerRecord{
		ID:        "mfr-legacy",
		UserID:    testOperatorID,
		Name:      "Legacy Labs",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := db.Create(&sparse).Error; err != nil {
		t.Fatalf("failed to seed sparse row: %v", err)
	}

	manufacturers := gatewayUnderTest.List(context.Background())
	if len(manufacturers) != 1 {
		t.Fatalf("expected 1 manufacturer, got %d", len(manufacturers))
	}
	listed := manufacturers[0]
	if listed.MinOrderValue != 0 {
		t.Fatalf("expected min order value default 0, got %v", listed.MinOrderValue)
	}
	if listed.Products == nil || len(listed.Products) != 0 {
		t.Fatalf("expected empty products default, got %#v", listed.Products)
	}
	if listed.Certifications == nil || len(listed.Certifications) != 0 {
		t.Fatalf("expected empty certifications default, got %#v", listed.Certifications)
	}
	if listed.Status != crm.ManufacturerStatusActive {
		t.Fatalf("expected active default status, got %q", listed.Status)
	}
}

func TestManufacturerGatewayPartialUpdate(t *testing.T) {
	db := newTestDB(t)
	gatewayUnderTest, err := NewManufacturerGateway(newTestConfig(t, db, "mfr-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	created, err := gatewayUnderTest.Create(context.Background(), crm.NewManufacturer{
		Name:           "Helix Pharma",
		ContactPerson:  "Maria Ortiz",
		Certifications: []string{"GMP", "ISO 9001"},
		Rating:         4.5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	status := crm.ManufacturerStatusInactive
	updated, err := gatewayUnderTest.Update(context.Background(), created.ID, crm.ManufacturerPatch{Status: &status})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != crm.ManufacturerStatusInactive {
		t.Fatalf("expected inactive status, got %q", updated.Status)
	}
	if updated.ContactPerson != created.ContactPerson || updated.Rating != created.Rating {
		t.Fatalf("untouched fields changed: %#v", updated)
	}
	if len(updated.Certifications) != 2 {
		t.Fatalf("certifications changed: %#v", updated.Certifications)
	}
}

func TestManufacturerGatewayRejectsInvalidInput(t *testing.T) {
	db := newTestDB(t)
	gatewayUnderTest, err := NewManufacturerGateway(newTestConfig(t, db, "mfr-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = gatewayUnderTest.Create(context.Background(), crm.NewManufacturer{Name: "Bad", Status: "dormant"})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for status, got %v", err)
	}
	_, err = gatewayUnderTest.Create(context.Background(), crm.NewManufacturer{Name: "Bad", MinOrderValue: -1})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for min order value, got %v", err)
	}
	_, err = gatewayUnderTest.Update(context.Background(), "missing", crm.ManufacturerPatch{})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

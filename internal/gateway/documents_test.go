package gateway

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pharmadesk/backend/internal/crm"
)

func TestDocumentGatewayRelationRoundTrip(t *testing.T) {
	db := newTestDB(t)
	gatewayUnderTest, err := NewDocumentGateway(newTestConfig(t, db, "doc-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	created, err := gatewayUnderTest.Create(context.Background(), crm.NewDocument{
		Title: "Supply Agreement",
		Type:  "contract",
		RelatedTo: crm.DocumentRelation{
			Kind: crm.RelationKindManufacturer,
			ID:   "mfr-1",
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.Title != "Supply Agreement" {
		t.Fatalf("expected title round trip, got %q", created.Title)
	}
	if created.RelatedTo.Kind != crm.RelationKindManufacturer || created.RelatedTo.ID != "mfr-1" {
		t.Fatalf("relation mismatch: %#v", created.RelatedTo)
	}

	// The application-side Title lives in the storage column named "name".
	var storedName string
	if err := db.Raw("SELECT name FROM documents WHERE id = ?", created.ID).Scan(&storedName).Error; err != nil {
		t.Fatalf("failed to read stored column: %v", err)
	}
	if storedName != "Supply Agreement" {
		t.Fatalf("expected title in name column, got %q", storedName)
	}
}

func TestDocumentGatewayRejectsInvalidRelation(t *testing.T) {
	db := newTestDB(t)
	gatewayUnderTest, err := NewDocumentGateway(newTestConfig(t, db, "doc-1", "doc-2"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = gatewayUnderTest.Create(context.Background(), crm.NewDocument{
		Title:     "Bad Kind",
		RelatedTo: crm.DocumentRelation{Kind: "contact", ID: "c-1"},
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for relation kind, got %v", err)
	}

	_, err = gatewayUnderTest.Create(context.Background(), crm.NewDocument{
		Title:     "Missing Target",
		RelatedTo: crm.DocumentRelation{Kind: crm.RelationKindLead},
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for missing related id, got %v", err)
	}

	_, err = gatewayUnderTest.Create(context.Background(), crm.NewDocument{
		RelatedTo: crm.DocumentRelation{Kind: crm.RelationKindLead, ID: "lead-1"},
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for missing title, got %v", err)
	}
}

func TestDocumentGatewaySurvivesInvalidStoredKind(t *testing.T) {
	db := newTestDB(t)
	gatewayUnderTest, err := NewDocumentGateway(newTestConfig(t, db))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	now := time.Unix(1700000000, 0).UTC()
	legacy := DocumentRecord{
		ID:        "doc-legacy",
		UserID:    testOperatorID,
		Name:      "Old Scan",
		RelatedTo: "invoice",
		RelatedID: "inv-1",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := db.Create(&legacy).Error; err != nil {
		t.Fatalf("failed to seed legacy row: %v", err)
	}

	documents := gatewayUnderTest.List(context.Background())
	if len(documents) != 1 {
		t.Fatalf("expected 1 document, got %d", len(documents))
	}
	if documents[0].RelatedTo != (crm.DocumentRelation{}) {
		t.Fatalf("expected empty relation for invalid stored kind, got %#v", documents[0].RelatedTo)
	}
}

func TestDocumentGatewayUpdateRelation(t *testing.T) {
	db := newTestDB(t)
	gatewayUnderTest, err := NewDocumentGateway(newTestConfig(t, db, "doc-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	created, err := gatewayUnderTest.Create(context.Background(), crm.NewDocument{
		Title:     "Price List",
		RelatedTo: crm.DocumentRelation{Kind: crm.RelationKindLead, ID: "lead-1"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	relation := crm.DocumentRelation{Kind: crm.RelationKindOrder, ID: "order-9"}
	updated, err := gatewayUnderTest.Update(context.Background(), created.ID, crm.DocumentPatch{RelatedTo: &relation})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.RelatedTo != relation {
		t.Fatalf("expected relation replaced, got %#v", updated.RelatedTo)
	}
	if updated.Title != created.Title {
		t.Fatalf("title changed on relation update: %q", updated.Title)
	}

	bad := crm.DocumentRelation{Kind: "contact", ID: "c-1"}
	if _, err := gatewayUnderTest.Update(context.Background(), created.ID, crm.DocumentPatch{RelatedTo: &bad}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

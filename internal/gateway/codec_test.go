package gateway

import (
	"testing"

	"github.com/pharmadesk/backend/internal/crm"
)

func TestLineItemCodecRoundTrip(t *testing.T) {
	items := []crm.LineItem{
		{ProductID: "p-1", Name: "Amoxicillin 500mg", Quantity: 3, UnitPrice: 12.5},
		{ProductID: "p-2", Name: "Ibuprofen 200mg", Quantity: 10, UnitPrice: 0.8},
	}

	encoded, err := EncodeLineItems(items)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	decoded := DecodeLineItems(encoded)
	if len(decoded) != len(items) {
		t.Fatalf("expected %d items, got %d", len(items), len(decoded))
	}
	for i := range items {
		if decoded[i] != items[i] {
			t.Fatalf("item %d mismatch: %#v vs %#v", i, decoded[i], items[i])
		}
	}
}

func TestDecodeLineItemsDegradesToEmpty(t *testing.T) {
	for _, raw := range []string{"", "{not json", "null", `{"product_id":"p"}`} {
		items := DecodeLineItems(raw)
		if items == nil || len(items) != 0 {
			t.Fatalf("expected empty list for %q, got %#v", raw, items)
		}
	}
}

func TestEncodeLineItemsEmptyList(t *testing.T) {
	encoded, err := EncodeLineItems(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if encoded != "[]" {
		t.Fatalf("expected empty array encoding, got %q", encoded)
	}
}

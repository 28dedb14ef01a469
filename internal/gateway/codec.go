package gateway

import (
	"encoding/json"

	"github.com/pharmadesk/backend/internal/crm"
)

// The orders table persists line items as one encoded text column. This file
// is the only place that encoding is read or written.

type lineItemPayload struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// EncodeLineItems serializes the structured line-item list for storage.
func EncodeLineItems(items []crm.LineItem) (string, error) {
	payloads := make([]lineItemPayload, 0, len(items))
	for _, item := range items {
		payloads = append(payloads, lineItemPayload{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	encoded, err := json.Marshal(payloads)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

// DecodeLineItems parses the stored representation back into structured
// items. A NULL, empty or malformed column yields an empty list, never an
// error: read paths must not fail on historic rows.
func DecodeLineItems(raw string) []crm.LineItem {
	if raw == "" {
		return []crm.LineItem{}
	}
	var payloads []lineItemPayload
	if err := json.Unmarshal([]byte(raw), &payloads); err != nil || payloads == nil {
		return []crm.LineItem{}
	}
	items := make([]crm.LineItem, 0, len(payloads))
	for _, payload := range payloads {
		items = append(items, crm.LineItem{
			ProductID: payload.ProductID,
			Name:      payload.Name,
			Quantity:  payload.Quantity,
			UnitPrice: payload.UnitPrice,
		})
	}
	return items
}

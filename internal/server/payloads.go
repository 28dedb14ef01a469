package server

import (
	"time"

	"github.com/pharmadesk/backend/internal/crm"
	"github.com/pharmadesk/backend/internal/store"
)

// Wire payloads for the UI clients. Field names mirror the application shape
// in snake_case; timestamps travel as RFC 3339.

type leadPayload struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Company      string     `json:"company"`
	Email        string     `json:"email"`
	Phone        string     `json:"phone"`
	Status       string     `json:"status"`
	Source       string     `json:"source"`
	Score        float64    `json:"score"`
	Location     string     `json:"location"`
	Priority     string     `json:"priority"`
	Notes        string     `json:"notes"`
	Products     []string   `json:"products"`
	Value        float64    `json:"value"`
	LastContact  *time.Time `json:"last_contact,omitempty"`
	NextFollowUp *time.Time `json:"next_follow_up,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func leadToPayload(lead crm.Lead) leadPayload {
	return leadPayload{
		ID:           lead.ID,
		Name:         lead.Name,
		Company:      lead.Company,
		Email:        lead.Email,
		Phone:        lead.Phone,
		Status:       string(lead.Status),
		Source:       lead.Source,
		Score:        lead.Score,
		Location:     lead.Location,
		Priority:     lead.Priority,
		Notes:        lead.Notes,
		Products:     lead.Products,
		Value:        lead.Value,
		LastContact:  lead.LastContact,
		NextFollowUp: lead.NextFollowUp,
		CreatedAt:    lead.CreatedAt,
		UpdatedAt:    lead.UpdatedAt,
	}
}

func leadsToPayload(leads []crm.Lead) []leadPayload {
	payloads := make([]leadPayload, 0, len(leads))
	for _, lead := range leads {
		payloads = append(payloads, leadToPayload(lead))
	}
	return payloads
}

type newLeadPayload struct {
	Name         string     `json:"name"`
	Company      string     `json:"company"`
	Email        string     `json:"email"`
	Phone        string     `json:"phone"`
	Status       string     `json:"status"`
	Source       string     `json:"source"`
	Score        float64    `json:"score"`
	Location     string     `json:"location"`
	Priority     string     `json:"priority"`
	Notes        string     `json:"notes"`
	Products     []string   `json:"products"`
	Value        float64    `json:"value"`
	LastContact  *time.Time `json:"last_contact"`
	NextFollowUp *time.Time `json:"next_follow_up"`
}

func (p newLeadPayload) toInput() crm.NewLead {
	return crm.NewLead{
		Name:         p.Name,
		Company:      p.Company,
		Email:        p.Email,
		Phone:        p.Phone,
		Status:       crm.LeadStatus(p.Status),
		Source:       p.Source,
		Score:        p.Score,
		Location:     p.Location,
		Priority:     p.Priority,
		Notes:        p.Notes,
		Products:     p.Products,
		Value:        p.Value,
		LastContact:  p.LastContact,
		NextFollowUp: p.NextFollowUp,
	}
}

type leadPatchPayload struct {
	Name         *string    `json:"name"`
	Company      *string    `json:"company"`
	Email        *string    `json:"email"`
	Phone        *string    `json:"phone"`
	Status       *string    `json:"status"`
	Source       *string    `json:"source"`
	Score        *float64   `json:"score"`
	Location     *string    `json:"location"`
	Priority     *string    `json:"priority"`
	Notes        *string    `json:"notes"`
	Products     *[]string  `json:"products"`
	Value        *float64   `json:"value"`
	LastContact  *time.Time `json:"last_contact"`
	NextFollowUp *time.Time `json:"next_follow_up"`
}

func (p leadPatchPayload) toPatch() crm.LeadPatch {
	patch := crm.LeadPatch{
		Name:         p.Name,
		Company:      p.Company,
		Email:        p.Email,
		Phone:        p.Phone,
		Source:       p.Source,
		Score:        p.Score,
		Location:     p.Location,
		Priority:     p.Priority,
		Notes:        p.Notes,
		Products:     p.Products,
		Value:        p.Value,
		LastContact:  p.LastContact,
		NextFollowUp: p.NextFollowUp,
	}
	if p.Status != nil {
		status := crm.LeadStatus(*p.Status)
		patch.Status = &status
	}
	return patch
}

type manufacturerPayload struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	ContactPerson  string    `json:"contact_person"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	Address        string    `json:"address"`
	Products       []string  `json:"products"`
	Certifications []string  `json:"certifications"`
	MinOrderValue  float64   `json:"min_order_value"`
	Rating         float64   `json:"rating"`
	Status         string    `json:"status"`
	Notes          string    `json:"notes"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func manufacturerToPayload(manufacturer crm.Manufacturer) manufacturerPayload {
	return manufacturerPayload{
		ID:             manufacturer.ID,
		Name:           manufacturer.Name,
		ContactPerson:  manufacturer.ContactPerson,
		Email:          manufacturer.Email,
		Phone:          manufacturer.Phone,
		Address:        manufacturer.Address,
		Products:       manufacturer.Products,
		Certifications: manufacturer.Certifications,
		MinOrderValue:  manufacturer.MinOrderValue,
		Rating:         manufacturer.Rating,
		Status:         string(manufacturer.Status),
		Notes:          manufacturer.Notes,
		CreatedAt:      manufacturer.CreatedAt,
		UpdatedAt:      manufacturer.UpdatedAt,
	}
}

func manufacturersToPayload(manufacturers []crm.Manufacturer) []manufacturerPayload {
	payloads := make([]manufacturerPayload, 0, len(manufacturers))
	for _, manufacturer := range manufacturers {
		payloads = append(payloads, manufacturerToPayload(manufacturer))
	}
	return payloads
}

type newManufacturerPayload struct {
	Name           string   `json:"name"`
	ContactPerson  string   `json:"contact_person"`
	Email          string   `json:"email"`
	Phone          string   `json:"phone"`
	Address        string   `json:"address"`
	Products       []string `json:"products"`
	Certifications []string `json:"certifications"`
	MinOrderValue  float64  `json:"min_order_value"`
	Rating         float64  `json:"rating"`
	Status         string   `json:"status"`
	Notes          string   `json:"notes"`
}

func (p newManufacturerPayload) toInput() crm.NewManufacturer {
	return crm.NewManufacturer{
		Name:           p.Name,
		ContactPerson:  p.ContactPerson,
		Email:          p.Email,
		Phone:          p.Phone,
		Address:        p.Address,
		Products:       p.Products,
		Certifications: p.Certifications,
		MinOrderValue:  p.MinOrderValue,
		Rating:         p.Rating,
		Status:         crm.ManufacturerStatus(p.Status),
		Notes:          p.Notes,
	}
}

type manufacturerPatchPayload struct {
	Name           *string   `json:"name"`
	ContactPerson  *string   `json:"contact_person"`
	Email          *string   `json:"email"`
	Phone          *string   `json:"phone"`
	Address        *string   `json:"address"`
	Products       *[]string `json:"products"`
	Certifications *[]string `json:"certifications"`
	MinOrderValue  *float64  `json:"min_order_value"`
	Rating         *float64  `json:"rating"`
	Status         *string   `json:"status"`
	Notes          *string   `json:"notes"`
}

func (p manufacturerPatchPayload) toPatch() crm.ManufacturerPatch {
	patch := crm.ManufacturerPatch{
		Name:           p.Name,
		ContactPerson:  p.ContactPerson,
		Email:          p.Email,
		Phone:          p.Phone,
		Address:        p.Address,
		Products:       p.Products,
		Certifications: p.Certifications,
		MinOrderValue:  p.MinOrderValue,
		Rating:         p.Rating,
		Notes:          p.Notes,
	}
	if p.Status != nil {
		status := crm.ManufacturerStatus(*p.Status)
		patch.Status = &status
	}
	return patch
}

type orderItemPayload struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

func orderItemsToPayload(items []crm.LineItem) []orderItemPayload {
	payloads := make([]orderItemPayload, 0, len(items))
	for _, item := range items {
		payloads = append(payloads, orderItemPayload{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	return payloads
}

func orderItemsFromPayload(payloads []orderItemPayload) []crm.LineItem {
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

type orderPayload struct {
	ID            string             `json:"id"`
	LeadID        string             `json:"lead_id"`
	LeadName      string             `json:"lead_name"`
	Items         []orderItemPayload `json:"items"`
	TotalAmount   float64            `json:"total_amount"`
	Status        string             `json:"status"`
	PaymentStatus string             `json:"payment_status"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

func orderToPayload(order crm.Order) orderPayload {
	return orderPayload{
		ID:            order.ID,
		LeadID:        order.LeadID,
		LeadName:      order.LeadName,
		Items:         orderItemsToPayload(order.Items),
		TotalAmount:   order.TotalAmount,
		Status:        string(order.Status),
		PaymentStatus: string(order.PaymentStatus),
		CreatedAt:     order.CreatedAt,
		UpdatedAt:     order.UpdatedAt,
	}
}

func ordersToPayload(orders []crm.Order) []orderPayload {
	payloads := make([]orderPayload, 0, len(orders))
	for _, order := range orders {
		payloads = append(payloads, orderToPayload(order))
	}
	return payloads
}

type newOrderPayload struct {
	LeadID        string             `json:"lead_id"`
	Items         []orderItemPayload `json:"items"`
	Status        string             `json:"status"`
	PaymentStatus string             `json:"payment_status"`
}

func (p newOrderPayload) toInput() crm.NewOrder {
	return crm.NewOrder{
		LeadID:        p.LeadID,
		Items:         orderItemsFromPayload(p.Items),
		Status:        crm.OrderStatus(p.Status),
		PaymentStatus: crm.PaymentStatus(p.PaymentStatus),
	}
}

type orderPatchPayload struct {
	LeadID        *string             `json:"lead_id"`
	Items         *[]orderItemPayload `json:"items"`
	Status        *string             `json:"status"`
	PaymentStatus *string             `json:"payment_status"`
}

func (p orderPatchPayload) toPatch() crm.OrderPatch {
	patch := crm.OrderPatch{LeadID: p.LeadID}
	if p.Items != nil {
		items := orderItemsFromPayload(*p.Items)
		patch.Items = &items
	}
	if p.Status != nil {
		status := crm.OrderStatus(*p.Status)
		patch.Status = &status
	}
	if p.PaymentStatus != nil {
		paymentStatus := crm.PaymentStatus(*p.PaymentStatus)
		patch.PaymentStatus = &paymentStatus
	}
	return patch
}

type documentRelationPayload struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
}

type documentPayload struct {
	ID        string                  `json:"id"`
	Title     string                  `json:"title"`
	Type      string                  `json:"type"`
	RelatedTo documentRelationPayload `json:"related_to"`
	CreatedAt time.Time               `json:"created_at"`
	UpdatedAt time.Time               `json:"updated_at"`
}

func documentToPayload(document crm.Document) documentPayload {
	return documentPayload{
		ID:    document.ID,
		Title: document.Title,
		Type:  document.Type,
		RelatedTo: documentRelationPayload{
			Kind: string(document.RelatedTo.Kind),
			ID:   document.RelatedTo.ID,
		},
		CreatedAt: document.CreatedAt,
		UpdatedAt: document.UpdatedAt,
	}
}

func documentsToPayload(documents []crm.Document) []documentPayload {
	payloads := make([]documentPayload, 0, len(documents))
	for _, document := range documents {
		payloads = append(payloads, documentToPayload(document))
	}
	return payloads
}

type newDocumentPayload struct {
	Title     string                  `json:"title"`
	Type      string                  `json:"type"`
	RelatedTo documentRelationPayload `json:"related_to"`
}

func (p newDocumentPayload) toInput() crm.NewDocument {
	return crm.NewDocument{
		Title: p.Title,
		Type:  p.Type,
		RelatedTo: crm.DocumentRelation{
			Kind: crm.RelationKind(p.RelatedTo.Kind),
			ID:   p.RelatedTo.ID,
		},
	}
}

type documentPatchPayload struct {
	Title     *string                  `json:"title"`
	Type      *string                  `json:"type"`
	RelatedTo *documentRelationPayload `json:"related_to"`
}

func (p documentPatchPayload) toPatch() crm.DocumentPatch {
	patch := crm.DocumentPatch{Title: p.Title, Type: p.Type}
	if p.RelatedTo != nil {
		relation := crm.DocumentRelation{
			Kind: crm.RelationKind(p.RelatedTo.Kind),
			ID:   p.RelatedTo.ID,
		}
		patch.RelatedTo = &relation
	}
	return patch
}

type statePayload struct {
	Leads         []leadPayload         `json:"leads"`
	Manufacturers []manufacturerPayload `json:"manufacturers"`
	Orders        []orderPayload        `json:"orders"`
	Documents     []documentPayload     `json:"documents"`
	RefreshedAt   time.Time             `json:"refreshed_at"`
}

func snapshotToPayload(snapshot store.Snapshot) statePayload {
	return statePayload{
		Leads:         leadsToPayload(snapshot.Leads),
		Manufacturers: manufacturersToPayload(snapshot.Manufacturers),
		Orders:        ordersToPayload(snapshot.Orders),
		Documents:     documentsToPayload(snapshot.Documents),
		RefreshedAt:   snapshot.RefreshedAt,
	}
}

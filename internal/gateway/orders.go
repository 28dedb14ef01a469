package gateway

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pharmadesk/backend/internal/crm"
)

const (
	opOrderNew    = "orders.gateway.new"
	opOrderList   = "orders.list"
	opOrderCreate = "orders.create"
	opOrderUpdate = "orders.update"
	opOrderDelete = "orders.delete"
)

var errMissingLeadDirectory = errors.New("lead directory is required")

// OrderRecord is the storage shape of an order row. The products column holds
// the encoded line-item list; total_value is derived from it on every write.
type OrderRecord struct {
	ID            string    `gorm:"column:id;primaryKey;size:190;not null"`
	UserID        string    `gorm:"column:user_id;size:190;not null;index:idx_orders_user_created,priority:1"`
	LeadID        string    `gorm:"column:lead_id;size:190;not null;index"`
	Products      string    `gorm:"column:products;type:text;not null;default:''"`
	TotalValue    float64   `gorm:"column:total_value;not null;default:0"`
	Status        string    `gorm:"column:status;size:32"`
	PaymentStatus string    `gorm:"column:payment_status;size:32"`
	CreatedAt     time.Time `gorm:"column:created_at;not null;index:idx_orders_user_created,priority:2"`
	UpdatedAt     time.Time `gorm:"column:updated_at;not null"`
}

// TableName provides the explicit table binding for GORM.
func (OrderRecord) TableName() string {
	return "orders"
}

func orderFromRecord(record OrderRecord, leadNames map[string]string) crm.Order {
	status := crm.OrderStatus(record.Status)
	if status == "" {
		status = crm.OrderStatusPending
	}
	paymentStatus := crm.PaymentStatus(record.PaymentStatus)
	if paymentStatus == "" {
		paymentStatus = crm.PaymentStatusUnpaid
	}
	leadName, ok := leadNames[record.LeadID]
	if !ok || leadName == "" {
		leadName = crm.UnknownLeadName
	}
	return crm.Order{
		ID:            record.ID,
		UserID:        record.UserID,
		LeadID:        record.LeadID,
		LeadName:      leadName,
		Items:         DecodeLineItems(record.Products),
		TotalAmount:   record.TotalValue,
		Status:        status,
		PaymentStatus: paymentStatus,
		CreatedAt:     record.CreatedAt,
		UpdatedAt:     record.UpdatedAt,
	}
}

// LeadDirectory resolves lead display names at read time. The name is never
// stored on the order row.
type LeadDirectory interface {
	List(ctx context.Context) []crm.Lead
}

// OrderGatewayConfig extends the shared gateway config with the lead
// directory used for display-name resolution.
type OrderGatewayConfig struct {
	Config
	Leads LeadDirectory
}

// OrderGateway exposes the order collection scoped to the current operator.
type OrderGateway struct {
	core
	leads LeadDirectory
}

// NewOrderGateway constructs the gateway, validating its dependencies.
func NewOrderGateway(cfg OrderGatewayConfig) (*OrderGateway, error) {
	base, err := newCore(cfg.Config, opOrderNew)
	if err != nil {
		return nil, err
	}
	if cfg.Leads == nil {
		return nil, newError(opOrderNew, "missing_lead_directory", nil, errMissingLeadDirectory)
	}
	return &OrderGateway{core: base, leads: cfg.Leads}, nil
}

func (g *OrderGateway) leadNames(ctx context.Context) map[string]string {
	names := map[string]string{}
	for _, lead := range g.leads.List(ctx) {
		names[lead.ID] = lead.Name
	}
	return names
}

// List returns the operator's orders newest-first with lead names resolved,
// degrading to an empty collection on transport failure.
func (g *OrderGateway) List(ctx context.Context) []crm.Order {
	ctx, cancel := g.opCtx(ctx)
	defer cancel()

	userID, err := g.session.CurrentUserID(ctx)
	if err != nil {
		g.logError(opOrderList, "session_unresolved", err)
		return []crm.Order{}
	}

	var records []OrderRecord
	if err := g.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&records).Error; err != nil {
		g.logError(opOrderList, "query_failed", err, zap.String("user_id", userID))
		return []crm.Order{}
	}

	names := g.leadNames(ctx)
	orders := make([]crm.Order, 0, len(records))
	for _, record := range records {
		orders = append(orders, orderFromRecord(record, names))
	}
	return orders
}

// Create validates line items, derives the total, encodes the items, inserts,
// and returns the materialized order with the lead name resolved. An unknown
// lead reference is not an error; the name resolves to "Unknown".
func (g *OrderGateway) Create(ctx context.Context, input crm.NewOrder) (crm.Order, error) {
	ctx, cancel := g.opCtx(ctx)
	defer cancel()

	userID, err := g.currentUser(ctx, opOrderCreate)
	if err != nil {
		return crm.Order{}, err
	}
	if err := validateNewOrder(input); err != nil {
		return crm.Order{}, newError(opOrderCreate, "invalid_input", ErrValidation, err)
	}

	id, err := g.ids.NewID()
	if err != nil {
		g.logError(opOrderCreate, "id_generation_failed", err)
		return crm.Order{}, newError(opOrderCreate, "id_generation_failed", ErrTransport, err)
	}

	encoded, err := EncodeLineItems(input.Items)
	if err != nil {
		return crm.Order{}, newError(opOrderCreate, "encode_failed", ErrValidation, err)
	}

	status := input.Status
	if status == "" {
		status = crm.OrderStatusPending
	}
	paymentStatus := input.PaymentStatus
	if paymentStatus == "" {
		paymentStatus = crm.PaymentStatusUnpaid
	}

	now := g.clock().UTC()
	record := OrderRecord{
		ID:            id,
		UserID:        userID,
		LeadID:        input.LeadID,
		Products:      encoded,
		TotalValue:    crm.LineItemsTotal(input.Items),
		Status:        string(status),
		PaymentStatus: string(paymentStatus),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := g.db.WithContext(ctx).Create(&record).Error; err != nil {
		g.logError(opOrderCreate, "insert_failed", err, zap.String("user_id", userID))
		return crm.Order{}, newError(opOrderCreate, "insert_failed", classifyWrite(err), err)
	}
	return orderFromRecord(record, g.leadNames(ctx)), nil
}

// Update applies only the provided fields. Patching Items re-derives
// total_value; the total is never writable on its own.
func (g *OrderGateway) Update(ctx context.Context, id string, patch crm.OrderPatch) (crm.Order, error) {
	ctx, cancel := g.opCtx(ctx)
	defer cancel()

	userID, err := g.currentUser(ctx, opOrderUpdate)
	if err != nil {
		return crm.Order{}, err
	}

	updates, err := orderUpdates(patch)
	if err != nil {
		return crm.Order{}, newError(opOrderUpdate, "invalid_input", ErrValidation, err)
	}

	var record OrderRecord
	err = g.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		Take(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return crm.Order{}, newError(opOrderUpdate, "record_missing", ErrNotFound, err)
	}
	if err != nil {
		g.logError(opOrderUpdate, "select_failed", err, zap.String("order_id", id))
		return crm.Order{}, newError(opOrderUpdate, "select_failed", ErrTransport, err)
	}

	if len(updates) > 0 {
		updates["updated_at"] = g.clock().UTC()
		if err := g.db.WithContext(ctx).
			Model(&OrderRecord{}).
			Where("user_id = ? AND id = ?", userID, id).
			Updates(updates).Error; err != nil {
			g.logError(opOrderUpdate, "update_failed", err, zap.String("order_id", id))
			return crm.Order{}, newError(opOrderUpdate, "update_failed", classifyWrite(err), err)
		}
		if err := g.db.WithContext(ctx).
			Where("user_id = ? AND id = ?", userID, id).
			Take(&record).Error; err != nil {
			g.logError(opOrderUpdate, "reload_failed", err, zap.String("order_id", id))
			return crm.Order{}, newError(opOrderUpdate, "reload_failed", ErrTransport, err)
		}
	}
	return orderFromRecord(record, g.leadNames(ctx)), nil
}

// Delete hard-deletes the order, reporting failures as false.
func (g *OrderGateway) Delete(ctx context.Context, id string) bool {
	ctx, cancel := g.opCtx(ctx)
	defer cancel()

	userID, err := g.session.CurrentUserID(ctx)
	if err != nil {
		g.logError(opOrderDelete, "session_unresolved", err)
		return false
	}

	result := g.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		Delete(&OrderRecord{})
	if result.Error != nil {
		g.logError(opOrderDelete, "delete_failed", result.Error, zap.String("order_id", id))
		return false
	}
	if result.RowsAffected == 0 {
		g.logError(opOrderDelete, "record_missing", nil, zap.String("order_id", id))
		return false
	}
	return true
}

func validateNewOrder(input crm.NewOrder) error {
	if input.LeadID == "" {
		return errors.New("lead id is required")
	}
	for _, item := range input.Items {
		if err := item.Validate(); err != nil {
			return err
		}
	}
	if input.Status != "" {
		if _, err := crm.ParseOrderStatus(string(input.Status)); err != nil {
			return err
		}
	}
	if input.PaymentStatus != "" {
		if _, err := crm.ParsePaymentStatus(string(input.PaymentStatus)); err != nil {
			return err
		}
	}
	return nil
}

func orderUpdates(patch crm.OrderPatch) (map[string]interface{}, error) {
	updates := map[string]interface{}{}
	if patch.LeadID != nil {
		if *patch.LeadID == "" {
			return nil, errors.New("lead id is required")
		}
		updates["lead_id"] = *patch.LeadID
	}
	if patch.Items != nil {
		for _, item := range *patch.Items {
			if err := item.Validate(); err != nil {
				return nil, err
			}
		}
		encoded, err := EncodeLineItems(*patch.Items)
		if err != nil {
			return nil, err
		}
		updates["products"] = encoded
		updates["total_value"] = crm.LineItemsTotal(*patch.Items)
	}
	if patch.Status != nil {
		status, err := crm.ParseOrderStatus(string(*patch.Status))
		if err != nil {
			return nil, err
		}
		updates["status"] = string(status)
	}
	if patch.PaymentStatus != nil {
		paymentStatus, err := crm.ParsePaymentStatus(string(*patch.PaymentStatus))
		if err != nil {
			return nil, err
		}
		updates["payment_status"] = string(paymentStatus)
	}
	return updates, nil
}

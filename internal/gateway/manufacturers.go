package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/pharmadesk/backend/internal/crm"
)

const (
	opManufacturerNew    = "manufacturers.gateway.new"
	opManufacturerList   = "manufacturers.list"
	opManufacturerCreate = "manufacturers.create"
	opManufacturerUpdate = "manufacturers.update"
	opManufacturerDelete = "manufacturers.delete"
)

// ManufacturerRecord is the storage shape of a manufacturer row. The
// contact_person and min_order_value columns are renamed to camel-case fields
// on the application side.
type ManufacturerRecord struct {
	ID             string         `gorm:"column:id;primaryKey;size:190;not null"`
	UserID         string         `gorm:"column:user_id;size:190;not null;index:idx_manufacturers_user_created,priority:1"`
	Name           string         `gorm:"column:name;size:320;not null"`
	ContactPerson  string         `gorm:"column:contact_person;size:320"`
	Email          string         `gorm:"column:email;size:320"`
	Phone          string         `gorm:"column:phone;size:64"`
	Address        string         `gorm:"column:address;size:512"`
	Products       datatypes.JSON `gorm:"column:products"`
	Certifications datatypes.JSON `gorm:"column:certifications"`
	MinOrderValue  *float64       `gorm:"column:min_order_value"`
	Rating         float64        `gorm:"column:rating;not null;default:0"`
	Status         string         `gorm:"column:status;size:32"`
	Notes          string         `gorm:"column:notes;type:text"`
	CreatedAt      time.Time      `gorm:"column:created_at;not null;index:idx_manufacturers_user_created,priority:2"`
	UpdatedAt      time.Time      `gorm:"column:updated_at;not null"`
}

// TableName provides the explicit table binding for GORM.
func (ManufacturerRecord) TableName() string {
	return "manufacturers"
}

func manufacturerFromRecord(record ManufacturerRecord) crm.Manufacturer {
	status := crm.ManufacturerStatus(record.Status)
	if status == "" {
		status = crm.ManufacturerStatusActive
	}
	minOrderValue := 0.0
	if record.MinOrderValue != nil {
		minOrderValue = *record.MinOrderValue
	}
	return crm.Manufacturer{
		ID:             record.ID,
		UserID:         record.UserID,
		Name:           record.Name,
		ContactPerson:  record.ContactPerson,
		Email:          record.Email,
		Phone:          record.Phone,
		Address:        record.Address,
		Products:       decodeStringList(record.Products),
		Certifications: decodeStringList(record.Certifications),
		MinOrderValue:  minOrderValue,
		Rating:         record.Rating,
		Status:         status,
		Notes:          record.Notes,
		CreatedAt:      record.CreatedAt,
		UpdatedAt:      record.UpdatedAt,
	}
}

// ManufacturerGateway exposes the supplier directory scoped to the current
// operator.
type ManufacturerGateway struct {
	core
}

// NewManufacturerGateway constructs the gateway, validating its dependencies.
func NewManufacturerGateway(cfg Config) (*ManufacturerGateway, error) {
	base, err := newCore(cfg, opManufacturerNew)
	if err != nil {
		return nil, err
	}
	return &ManufacturerGateway{core: base}, nil
}

// List returns the operator's manufacturers newest-first, degrading to an
// empty collection on transport failure.
func (g *ManufacturerGateway) List(ctx context.Context) []crm.Manufacturer {
	ctx, cancel := g.opCtx(ctx)
	defer cancel()

	userID, err := g.session.CurrentUserID(ctx)
	if err != nil {
		g.logError(opManufacturerList, "session_unresolved", err)
		return []crm.Manufacturer{}
	}

	var records []ManufacturerRecord
	if err := g.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&records).Error; err != nil {
		g.logError(opManufacturerList, "query_failed", err, zap.String("user_id", userID))
		return []crm.Manufacturer{}
	}

	manufacturers := make([]crm.Manufacturer, 0, len(records))
	for _, record := range records {
		manufacturers = append(manufacturers, manufacturerFromRecord(record))
	}
	return manufacturers
}

// Create validates, stamps ownership and timestamps, inserts, and returns the
// fully materialized manufacturer.
func (g *ManufacturerGateway) Create(ctx context.Context, input crm.NewManufacturer) (crm.Manufacturer, error) {
	ctx, cancel := g.opCtx(ctx)
	defer cancel()

	userID, err := g.currentUser(ctx, opManufacturerCreate)
	if err != nil {
		return crm.Manufacturer{}, err
	}
	if err := validateNewManufacturer(input); err != nil {
		return crm.Manufacturer{}, newError(opManufacturerCreate, "invalid_input", ErrValidation, err)
	}

	id, err := g.ids.NewID()
	if err != nil {
		g.logError(opManufacturerCreate, "id_generation_failed", err)
		return crm.Manufacturer{}, newError(opManufacturerCreate, "id_generation_failed", ErrTransport, err)
	}

	status := input.Status
	if status == "" {
		status = crm.ManufacturerStatusActive
	}
	minOrderValue := input.MinOrderValue

	now := g.clock().UTC()
	record := ManufacturerRecord{
		ID:             id,
		UserID:         userID,
		Name:           input.Name,
		ContactPerson:  input.ContactPerson,
		Email:          input.Email,
		Phone:          input.Phone,
		Address:        input.Address,
		Products:       encodeStringList(input.Products),
		Certifications: encodeStringList(input.Certifications),
		MinOrderValue:  &minOrderValue,
		Rating:         input.Rating,
		Status:         string(status),
		Notes:          input.Notes,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := g.db.WithContext(ctx).Create(&record).Error; err != nil {
		g.logError(opManufacturerCreate, "insert_failed", err, zap.String("user_id", userID))
		return crm.Manufacturer{}, newError(opManufacturerCreate, "insert_failed", classifyWrite(err), err)
	}
	return manufacturerFromRecord(record), nil
}

// Update applies only the provided fields and returns the materialized row.
func (g *ManufacturerGateway) Update(ctx context.Context, id string, patch crm.ManufacturerPatch) (crm.Manufacturer, error) {
	ctx, cancel := g.opCtx(ctx)
	defer cancel()

	userID, err := g.currentUser(ctx, opManufacturerUpdate)
	if err != nil {
		return crm.Manufacturer{}, err
	}

	updates, err := manufacturerUpdates(patch)
	if err != nil {
		return crm.Manufacturer{}, newError(opManufacturerUpdate, "invalid_input", ErrValidation, err)
	}

	var record ManufacturerRecord
	err = g.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		Take(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return crm.Manufacturer{}, newError(opManufacturerUpdate, "record_missing", ErrNotFound, err)
	}
	if err != nil {
		g.logError(opManufacturerUpdate, "select_failed", err, zap.String("manufacturer_id", id))
		return crm.Manufacturer{}, newError(opManufacturerUpdate, "select_failed", ErrTransport, err)
	}

	if len(updates) > 0 {
		updates["updated_at"] = g.clock().UTC()
		if err := g.db.WithContext(ctx).
			Model(&ManufacturerRecord{}).
			Where("user_id = ? AND id = ?", userID, id).
			Updates(updates).Error; err != nil {
			g.logError(opManufacturerUpdate, "update_failed", err, zap.String("manufacturer_id", id))
			return crm.Manufacturer{}, newError(opManufacturerUpdate, "update_failed", classifyWrite(err), err)
		}
		if err := g.db.WithContext(ctx).
			Where("user_id = ? AND id = ?", userID, id).
			Take(&record).Error; err != nil {
			g.logError(opManufacturerUpdate, "reload_failed", err, zap.String("manufacturer_id", id))
			return crm.Manufacturer{}, newError(opManufacturerUpdate, "reload_failed", ErrTransport, err)
		}
	}
	return manufacturerFromRecord(record), nil
}

// Delete hard-deletes the manufacturer, reporting failures as false.
func (g *ManufacturerGateway) Delete(ctx context.Context, id string) bool {
	ctx, cancel := g.opCtx(ctx)
	defer cancel()

	userID, err := g.session.CurrentUserID(ctx)
	if err != nil {
		g.logError(opManufacturerDelete, "session_unresolved", err)
		return false
	}

	result := g.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		Delete(&ManufacturerRecord{})
	if result.Error != nil {
		g.logError(opManufacturerDelete, "delete_failed", result.Error, zap.String("manufacturer_id", id))
		return false
	}
	if result.RowsAffected == 0 {
		g.logError(opManufacturerDelete, "record_missing", nil, zap.String("manufacturer_id", id))
		return false
	}
	return true
}

func validateNewManufacturer(input crm.NewManufacturer) error {
	if input.Name == "" {
		return errors.New("name is required")
	}
	if input.Status != "" {
		if _, err := crm.ParseManufacturerStatus(string(input.Status)); err != nil {
			return err
		}
	}
	if input.MinOrderValue < 0 {
		return fmt.Errorf("min order value must be non-negative, got %v", input.MinOrderValue)
	}
	if input.Rating < 0 {
		return fmt.Errorf("rating must be non-negative, got %v", input.Rating)
	}
	return nil
}

func manufacturerUpdates(patch crm.ManufacturerPatch) (map[string]interface{}, error) {
	updates := map[string]interface{}{}
	if patch.Name != nil {
		if *patch.Name == "" {
			return nil, errors.New("name is required")
		}
		updates["name"] = *patch.Name
	}
	if patch.ContactPerson != nil {
		updates["contact_person"] = *patch.ContactPerson
	}
	if patch.Email != nil {
		updates["email"] = *patch.Email
	}
	if patch.Phone != nil {
		updates["phone"] = *patch.Phone
	}
	if patch.Address != nil {
		updates["address"] = *patch.Address
	}
	if patch.Products != nil {
		updates["products"] = encodeStringList(*patch.Products)
	}
	if patch.Certifications != nil {
		updates["certifications"] = encodeStringList(*patch.Certifications)
	}
	if patch.MinOrderValue != nil {
		if *patch.MinOrderValue < 0 {
			return nil, fmt.Errorf("min order value must be non-negative, got %v", *patch.MinOrderValue)
		}
		updates["min_order_value"] = *patch.MinOrderValue
	}
	if patch.Rating != nil {
		if *patch.Rating < 0 {
			return nil, fmt.Errorf("rating must be non-negative, got %v", *patch.Rating)
		}
		updates["rating"] = *patch.Rating
	}
	if patch.Status != nil {
		status, err := crm.ParseManufacturerStatus(string(*patch.Status))
		if err != nil {
			return nil, err
		}
		updates["status"] = string(status)
	}
	if patch.Notes != nil {
		updates["notes"] = *patch.Notes
	}
	return updates, nil
}

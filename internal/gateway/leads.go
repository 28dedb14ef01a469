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
	opLeadNew    = "leads.gateway.new"
	opLeadList   = "leads.list"
	opLeadCreate = "leads.create"
	opLeadUpdate = "leads.update"
	opLeadDelete = "leads.delete"
)

// LeadRecord is the storage shape of a lead row.
type LeadRecord struct {
	ID           string         `gorm:"column:id;primaryKey;size:190;not null"`
	UserID       string         `gorm:"column:user_id;size:190;not null;index:idx_leads_user_created,priority:1"`
	Name         string         `gorm:"column:name;size:320;not null"`
	Company      string         `gorm:"column:company;size:320"`
	Email        string         `gorm:"column:email;size:320"`
	Phone        string         `gorm:"column:phone;size:64"`
	Status       string         `gorm:"column:status;size:32"`
	Source       string         `gorm:"column:source;size:190"`
	Score        float64        `gorm:"column:score;not null;default:0"`
	Location     string         `gorm:"column:location;size:320"`
	Priority     string         `gorm:"column:priority;size:32"`
	Notes        string         `gorm:"column:notes;type:text"`
	Products     datatypes.JSON `gorm:"column:products"`
	Value        float64        `gorm:"column:value;not null;default:0"`
	LastContact  *time.Time     `gorm:"column:last_contact"`
	NextFollowUp *time.Time     `gorm:"column:next_follow_up"`
	CreatedAt    time.Time      `gorm:"column:created_at;not null;index:idx_leads_user_created,priority:2"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;not null"`
}

// TableName provides the explicit table binding for GORM.
func (LeadRecord) TableName() string {
	return "leads"
}

func leadFromRecord(record LeadRecord) crm.Lead {
	status := crm.LeadStatus(record.Status)
	if status == "" {
		status = crm.LeadStatusNew
	}
	return crm.Lead{
		ID:           record.ID,
		UserID:       record.UserID,
		Name:         record.Name,
		Company:      record.Company,
		Email:        record.Email,
		Phone:        record.Phone,
		Status:       status,
		Source:       record.Source,
		Score:        record.Score,
		Location:     record.Location,
		Priority:     record.Priority,
		Notes:        record.Notes,
		Products:     decodeStringList(record.Products),
		Value:        record.Value,
		LastContact:  record.LastContact,
		NextFollowUp: record.NextFollowUp,
		CreatedAt:    record.CreatedAt,
		UpdatedAt:    record.UpdatedAt,
	}
}

// LeadGateway exposes the lead collection scoped to the current operator.
type LeadGateway struct {
	core
}

// NewLeadGateway constructs the gateway, validating its dependencies.
func NewLeadGateway(cfg Config) (*LeadGateway, error) {
	base, err := newCore(cfg, opLeadNew)
	if err != nil {
		return nil, err
	}
	return &LeadGateway{core: base}, nil
}

// List returns the operator's leads newest-first. Transport failures are
// logged and degrade to an empty collection so read surfaces stay up.
func (g *LeadGateway) List(ctx context.Context) []crm.Lead {
	ctx, cancel := g.opCtx(ctx)
	defer cancel()

	userID, err := g.session.CurrentUserID(ctx)
	if err != nil {
		g.logError(opLeadList, "session_unresolved", err)
		return []crm.Lead{}
	}

	var records []LeadRecord
	if err := g.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&records).Error; err != nil {
		g.logError(opLeadList, "query_failed", err, zap.String("user_id", userID))
		return []crm.Lead{}
	}

	leads := make([]crm.Lead, 0, len(records))
	for _, record := range records {
		leads = append(leads, leadFromRecord(record))
	}
	return leads
}

// Create validates, stamps ownership and timestamps, inserts, and returns the
// fully materialized lead.
func (g *LeadGateway) Create(ctx context.Context, input crm.NewLead) (crm.Lead, error) {
	ctx, cancel := g.opCtx(ctx)
	defer cancel()

	userID, err := g.currentUser(ctx, opLeadCreate)
	if err != nil {
		return crm.Lead{}, err
	}
	if err := validateNewLead(input); err != nil {
		return crm.Lead{}, newError(opLeadCreate, "invalid_input", ErrValidation, err)
	}

	id, err := g.ids.NewID()
	if err != nil {
		g.logError(opLeadCreate, "id_generation_failed", err)
		return crm.Lead{}, newError(opLeadCreate, "id_generation_failed", ErrTransport, err)
	}

	status := input.Status
	if status == "" {
		status = crm.LeadStatusNew
	}

	now := g.clock().UTC()
	record := LeadRecord{
		ID:           id,
		UserID:       userID,
		Name:         input.Name,
		Company:      input.Company,
		Email:        input.Email,
		Phone:        input.Phone,
		Status:       string(status),
		Source:       input.Source,
		Score:        input.Score,
		Location:     input.Location,
		Priority:     input.Priority,
		Notes:        input.Notes,
		Products:     encodeStringList(input.Products),
		Value:        input.Value,
		LastContact:  input.LastContact,
		NextFollowUp: input.NextFollowUp,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := g.db.WithContext(ctx).Create(&record).Error; err != nil {
		g.logError(opLeadCreate, "insert_failed", err, zap.String("user_id", userID))
		return crm.Lead{}, newError(opLeadCreate, "insert_failed", classifyWrite(err), err)
	}
	return leadFromRecord(record), nil
}

// Update applies only the provided fields and returns the materialized row.
func (g *LeadGateway) Update(ctx context.Context, id string, patch crm.LeadPatch) (crm.Lead, error) {
	ctx, cancel := g.opCtx(ctx)
	defer cancel()

	userID, err := g.currentUser(ctx, opLeadUpdate)
	if err != nil {
		return crm.Lead{}, err
	}

	updates, err := leadUpdates(patch)
	if err != nil {
		return crm.Lead{}, newError(opLeadUpdate, "invalid_input", ErrValidation, err)
	}

	var record LeadRecord
	err = g.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		Take(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return crm.Lead{}, newError(opLeadUpdate, "record_missing", ErrNotFound, err)
	}
	if err != nil {
		g.logError(opLeadUpdate, "select_failed", err, zap.String("lead_id", id))
		return crm.Lead{}, newError(opLeadUpdate, "select_failed", ErrTransport, err)
	}

	if len(updates) > 0 {
		updates["updated_at"] = g.clock().UTC()
		if err := g.db.WithContext(ctx).
			Model(&LeadRecord{}).
			Where("user_id = ? AND id = ?", userID, id).
			Updates(updates).Error; err != nil {
			g.logError(opLeadUpdate, "update_failed", err, zap.String("lead_id", id))
			return crm.Lead{}, newError(opLeadUpdate, "update_failed", classifyWrite(err), err)
		}
		if err := g.db.WithContext(ctx).
			Where("user_id = ? AND id = ?", userID, id).
			Take(&record).Error; err != nil {
			g.logError(opLeadUpdate, "reload_failed", err, zap.String("lead_id", id))
			return crm.Lead{}, newError(opLeadUpdate, "reload_failed", ErrTransport, err)
		}
	}
	return leadFromRecord(record), nil
}

// Delete hard-deletes the lead. Failures are logged and reported as false so
// fire-and-forget call sites stay simple.
func (g *LeadGateway) Delete(ctx context.Context, id string) bool {
	ctx, cancel := g.opCtx(ctx)
	defer cancel()

	userID, err := g.session.CurrentUserID(ctx)
	if err != nil {
		g.logError(opLeadDelete, "session_unresolved", err)
		return false
	}

	result := g.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		Delete(&LeadRecord{})
	if result.Error != nil {
		g.logError(opLeadDelete, "delete_failed", result.Error, zap.String("lead_id", id))
		return false
	}
	if result.RowsAffected == 0 {
		g.logError(opLeadDelete, "record_missing", nil, zap.String("lead_id", id))
		return false
	}
	return true
}

func validateNewLead(input crm.NewLead) error {
	if input.Name == "" {
		return errors.New("name is required")
	}
	if input.Status != "" {
		if _, err := crm.ParseLeadStatus(string(input.Status)); err != nil {
			return err
		}
	}
	if input.Value < 0 {
		return fmt.Errorf("value must be non-negative, got %v", input.Value)
	}
	if input.Score < 0 {
		return fmt.Errorf("score must be non-negative, got %v", input.Score)
	}
	return nil
}

func leadUpdates(patch crm.LeadPatch) (map[string]interface{}, error) {
	updates := map[string]interface{}{}
	if patch.Name != nil {
		if *patch.Name == "" {
			return nil, errors.New("name is required")
		}
		updates["name"] = *patch.Name
	}
	if patch.Company != nil {
		updates["company"] = *patch.Company
	}
	if patch.Email != nil {
		updates["email"] = *patch.Email
	}
	if patch.Phone != nil {
		updates["phone"] = *patch.Phone
	}
	if patch.Status != nil {
		status, err := crm.ParseLeadStatus(string(*patch.Status))
		if err != nil {
			return nil, err
		}
		updates["status"] = string(status)
	}
	if patch.Source != nil {
		updates["source"] = *patch.Source
	}
	if patch.Score != nil {
		if *patch.Score < 0 {
			return nil, fmt.Errorf("score must be non-negative, got %v", *patch.Score)
		}
		updates["score"] = *patch.Score
	}
	if patch.Location != nil {
		updates["location"] = *patch.Location
	}
	if patch.Priority != nil {
		updates["priority"] = *patch.Priority
	}
	if patch.Notes != nil {
		updates["notes"] = *patch.Notes
	}
	if patch.Products != nil {
		updates["products"] = encodeStringList(*patch.Products)
	}
	if patch.Value != nil {
		if *patch.Value < 0 {
			return nil, fmt.Errorf("value must be non-negative, got %v", *patch.Value)
		}
		updates["value"] = *patch.Value
	}
	if patch.LastContact != nil {
		updates["last_contact"] = *patch.LastContact
	}
	if patch.NextFollowUp != nil {
		updates["next_follow_up"] = *patch.NextFollowUp
	}
	return updates, nil
}

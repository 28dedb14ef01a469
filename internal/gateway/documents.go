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
	opDocumentNew    = "documents.gateway.new"
	opDocumentList   = "documents.list"
	opDocumentCreate = "documents.create"
	opDocumentUpdate = "documents.update"
	opDocumentDelete = "documents.delete"
)

// DocumentRecord is the storage shape of a document row. The name column maps
// to the application-side Title field; related_to/related_id form the
// polymorphic relation.
type DocumentRecord struct {
	ID        string    `gorm:"column:id;primaryKey;size:190;not null"`
	UserID    string    `gorm:"column:user_id;size:190;not null;index:idx_documents_user_created,priority:1"`
	Name      string    `gorm:"column:name;size:320;not null"`
	Type      string    `gorm:"column:type;size:64"`
	RelatedTo string    `gorm:"column:related_to;size:32;not null"`
	RelatedID string    `gorm:"column:related_id;size:190;not null"`
	CreatedAt time.Time `gorm:"column:created_at;not null;index:idx_documents_user_created,priority:2"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

// TableName provides the explicit table binding for GORM.
func (DocumentRecord) TableName() string {
	return "documents"
}

func documentFromRecord(record DocumentRecord) crm.Document {
	relation := crm.DocumentRelation{ID: record.RelatedID}
	if kind, err := crm.ParseRelationKind(record.RelatedTo); err == nil {
		relation.Kind = kind
	} else {
		// Rows written before kind validation existed; surface an empty
		// relation rather than an invalid kind.
		relation = crm.DocumentRelation{}
	}
	return crm.Document{
		ID:        record.ID,
		UserID:    record.UserID,
		Title:     record.Name,
		Type:      record.Type,
		RelatedTo: relation,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
}

// DocumentGateway exposes the document collection scoped to the current
// operator.
type DocumentGateway struct {
	core
}

// NewDocumentGateway constructs the gateway, validating its dependencies.
func NewDocumentGateway(cfg Config) (*DocumentGateway, error) {
	base, err := newCore(cfg, opDocumentNew)
	if err != nil {
		return nil, err
	}
	return &DocumentGateway{core: base}, nil
}

// List returns the operator's documents newest-first, degrading to an empty
// collection on transport failure.
func (g *DocumentGateway) List(ctx context.Context) []crm.Document {
	ctx, cancel := g.opCtx(ctx)
	defer cancel()

	userID, err := g.session.CurrentUserID(ctx)
	if err != nil {
		g.logError(opDocumentList, "session_unresolved", err)
		return []crm.Document{}
	}

	var records []DocumentRecord
	if err := g.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&records).Error; err != nil {
		g.logError(opDocumentList, "query_failed", err, zap.String("user_id", userID))
		return []crm.Document{}
	}

	documents := make([]crm.Document, 0, len(records))
	for _, record := range records {
		documents = append(documents, documentFromRecord(record))
	}
	return documents
}

// Create validates the relation, stamps ownership and timestamps, inserts,
// and returns the fully materialized document.
func (g *DocumentGateway) Create(ctx context.Context, input crm.NewDocument) (crm.Document, error) {
	ctx, cancel := g.opCtx(ctx)
	defer cancel()

	userID, err := g.currentUser(ctx, opDocumentCreate)
	if err != nil {
		return crm.Document{}, err
	}
	if err := validateNewDocument(input); err != nil {
		return crm.Document{}, newError(opDocumentCreate, "invalid_input", ErrValidation, err)
	}

	id, err := g.ids.NewID()
	if err != nil {
		g.logError(opDocumentCreate, "id_generation_failed", err)
		return crm.Document{}, newError(opDocumentCreate, "id_generation_failed", ErrTransport, err)
	}

	now := g.clock().UTC()
	record := DocumentRecord{
		ID:        id,
		UserID:    userID,
		Name:      input.Title,
		Type:      input.Type,
		RelatedTo: string(input.RelatedTo.Kind),
		RelatedID: input.RelatedTo.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := g.db.WithContext(ctx).Create(&record).Error; err != nil {
		g.logError(opDocumentCreate, "insert_failed", err, zap.String("user_id", userID))
		return crm.Document{}, newError(opDocumentCreate, "insert_failed", classifyWrite(err), err)
	}
	return documentFromRecord(record), nil
}

// Update applies only the provided fields and returns the materialized row.
func (g *DocumentGateway) Update(ctx context.Context, id string, patch crm.DocumentPatch) (crm.Document, error) {
	ctx, cancel := g.opCtx(ctx)
	defer cancel()

	userID, err := g.currentUser(ctx, opDocumentUpdate)
	if err != nil {
		return crm.Document{}, err
	}

	updates, err := documentUpdates(patch)
	if err != nil {
		return crm.Document{}, newError(opDocumentUpdate, "invalid_input", ErrValidation, err)
	}

	var record DocumentRecord
	err = g.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		Take(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return crm.Document{}, newError(opDocumentUpdate, "record_missing", ErrNotFound, err)
	}
	if err != nil {
		g.logError(opDocumentUpdate, "select_failed", err, zap.String("document_id", id))
		return crm.Document{}, newError(opDocumentUpdate, "select_failed", ErrTransport, err)
	}

	if len(updates) > 0 {
		updates["updated_at"] = g.clock().UTC()
		if err := g.db.WithContext(ctx).
			Model(&DocumentRecord{}).
			Where("user_id = ? AND id = ?", userID, id).
			Updates(updates).Error; err != nil {
			g.logError(opDocumentUpdate, "update_failed", err, zap.String("document_id", id))
			return crm.Document{}, newError(opDocumentUpdate, "update_failed", classifyWrite(err), err)
		}
		if err := g.db.WithContext(ctx).
			Where("user_id = ? AND id = ?", userID, id).
			Take(&record).Error; err != nil {
			g.logError(opDocumentUpdate, "reload_failed", err, zap.String("document_id", id))
			return crm.Document{}, newError(opDocumentUpdate, "reload_failed", ErrTransport, err)
		}
	}
	return documentFromRecord(record), nil
}

// Delete hard-deletes the document, reporting failures as false.
func (g *DocumentGateway) Delete(ctx context.Context, id string) bool {
	ctx, cancel := g.opCtx(ctx)
	defer cancel()

	userID, err := g.session.CurrentUserID(ctx)
	if err != nil {
		g.logError(opDocumentDelete, "session_unresolved", err)
		return false
	}

	result := g.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		Delete(&DocumentRecord{})
	if result.Error != nil {
		g.logError(opDocumentDelete, "delete_failed", result.Error, zap.String("document_id", id))
		return false
	}
	if result.RowsAffected == 0 {
		g.logError(opDocumentDelete, "record_missing", nil, zap.String("document_id", id))
		return false
	}
	return true
}

func validateNewDocument(input crm.NewDocument) error {
	if input.Title == "" {
		return errors.New("title is required")
	}
	if _, err := crm.ParseRelationKind(string(input.RelatedTo.Kind)); err != nil {
		return err
	}
	if input.RelatedTo.ID == "" {
		return errors.New("related id is required")
	}
	return nil
}

func documentUpdates(patch crm.DocumentPatch) (map[string]interface{}, error) {
	updates := map[string]interface{}{}
	if patch.Title != nil {
		if *patch.Title == "" {
			return nil, errors.New("title is required")
		}
		updates["name"] = *patch.Title
	}
	if patch.Type != nil {
		updates["type"] = *patch.Type
	}
	if patch.RelatedTo != nil {
		kind, err := crm.ParseRelationKind(string(patch.RelatedTo.Kind))
		if err != nil {
			return nil, err
		}
		if patch.RelatedTo.ID == "" {
			return nil, errors.New("related id is required")
		}
		updates["related_to"] = string(kind)
		updates["related_id"] = patch.RelatedTo.ID
	}
	return updates, nil
}

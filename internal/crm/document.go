package crm

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// RelationKind tags the entity collection a document attaches to.
type RelationKind string

const (
	RelationKindLead         RelationKind = "lead"
	RelationKindOrder        RelationKind = "order"
	RelationKindManufacturer RelationKind = "manufacturer"
)

// ErrInvalidRelationKind indicates a relation target outside the three
// attachable collections.
var ErrInvalidRelationKind = errors.New("crm: invalid relation kind")

// ParseRelationKind validates raw input against the attachable collections.
func ParseRelationKind(rawInput string) (RelationKind, error) {
	switch RelationKind(strings.ToLower(strings.TrimSpace(rawInput))) {
	case RelationKindLead:
		return RelationKindLead, nil
	case RelationKindOrder:
		return RelationKindOrder, nil
	case RelationKindManufacturer:
		return RelationKindManufacturer, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRelationKind, rawInput)
	}
}

// DocumentRelation points a document at one lead, order or manufacturer.
type DocumentRelation struct {
	Kind RelationKind
	ID   string
}

// Document models a stored file reference attached to another entity.
type Document struct {
	ID        string
	UserID    string
	Title     string
	Type      string
	RelatedTo DocumentRelation
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewDocument carries caller-supplied fields for a document insert.
type NewDocument struct {
	Title     string
	Type      string
	RelatedTo DocumentRelation
}

// DocumentPatch describes a partial update. Nil fields keep their stored
// value.
type DocumentPatch struct {
	Title     *string
	Type      *string
	RelatedTo *DocumentRelation
}

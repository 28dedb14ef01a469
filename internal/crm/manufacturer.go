package crm

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ManufacturerStatus marks whether a manufacturer is currently sourced from.
type ManufacturerStatus string

const (
	ManufacturerStatusActive   ManufacturerStatus = "active"
	ManufacturerStatusInactive ManufacturerStatus = "inactive"
)

// ErrInvalidManufacturerStatus indicates a status outside {active, inactive}.
var ErrInvalidManufacturerStatus = errors.New("crm: invalid manufacturer status")

// ParseManufacturerStatus validates raw input against the closed status set.
func ParseManufacturerStatus(rawInput string) (ManufacturerStatus, error) {
	switch ManufacturerStatus(strings.ToLower(strings.TrimSpace(rawInput))) {
	case ManufacturerStatusActive:
		return ManufacturerStatusActive, nil
	case ManufacturerStatusInactive:
		return ManufacturerStatusInactive, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidManufacturerStatus, rawInput)
	}
}

// Manufacturer models a supplier in the directory.
type Manufacturer struct {
	ID             string
	UserID         string
	Name           string
	ContactPerson  string
	Email          string
	Phone          string
	Address        string
	Products       []string
	Certifications []string
	MinOrderValue  float64
	Rating         float64
	Status         ManufacturerStatus
	Notes          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewManufacturer carries caller-supplied fields for a directory insert.
// An empty Status defaults to ManufacturerStatusActive.
type NewManufacturer struct {
	Name           string
	ContactPerson  string
	Email          string
	Phone          string
	Address        string
	Products       []string
	Certifications []string
	MinOrderValue  float64
	Rating         float64
	Status         ManufacturerStatus
	Notes          string
}

// ManufacturerPatch describes a partial update. Nil fields keep their stored
// value.
type ManufacturerPatch struct {
	Name           *string
	ContactPerson  *string
	Email          *string
	Phone          *string
	Address        *string
	Products       *[]string
	Certifications *[]string
	MinOrderValue  *float64
	Rating         *float64
	Status         *ManufacturerStatus
	Notes          *string
}

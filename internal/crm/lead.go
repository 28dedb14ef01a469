package crm

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// LeadStatus enumerates the pipeline stages a lead moves through.
type LeadStatus string

const (
	LeadStatusNew         LeadStatus = "new"
	LeadStatusContacted   LeadStatus = "contacted"
	LeadStatusQualified   LeadStatus = "qualified"
	LeadStatusProposal    LeadStatus = "proposal"
	LeadStatusNegotiation LeadStatus = "negotiation"
	LeadStatusClosed      LeadStatus = "closed"
)

// ErrInvalidLeadStatus indicates a status value outside the pipeline set.
var ErrInvalidLeadStatus = errors.New("crm: invalid lead status")

// ParseLeadStatus validates raw input against the closed status set.
func ParseLeadStatus(rawInput string) (LeadStatus, error) {
	switch LeadStatus(strings.ToLower(strings.TrimSpace(rawInput))) {
	case LeadStatusNew:
		return LeadStatusNew, nil
	case LeadStatusContacted:
		return LeadStatusContacted, nil
	case LeadStatusQualified:
		return LeadStatusQualified, nil
	case LeadStatusProposal:
		return LeadStatusProposal, nil
	case LeadStatusNegotiation:
		return LeadStatusNegotiation, nil
	case LeadStatusClosed:
		return LeadStatusClosed, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidLeadStatus, rawInput)
	}
}

// Lead models a sales prospect owned by the CRM operator.
type Lead struct {
	ID           string
	UserID       string
	Name         string
	Company      string
	Email        string
	Phone        string
	Status       LeadStatus
	Source       string
	Score        float64
	Location     string
	Priority     string
	Notes        string
	Products     []string
	Value        float64
	LastContact  *time.Time
	NextFollowUp *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewLead carries the caller-supplied fields for a lead insert. The store
// assigns the identifier, owner and timestamps. An empty Status defaults to
// LeadStatusNew.
type NewLead struct {
	Name         string
	Company      string
	Email        string
	Phone        string
	Status       LeadStatus
	Source       string
	Score        float64
	Location     string
	Priority     string
	Notes        string
	Products     []string
	Value        float64
	LastContact  *time.Time
	NextFollowUp *time.Time
}

// LeadPatch describes a partial update. Nil fields keep their stored value.
type LeadPatch struct {
	Name         *string
	Company      *string
	Email        *string
	Phone        *string
	Status       *LeadStatus
	Source       *string
	Score        *float64
	Location     *string
	Priority     *string
	Notes        *string
	Products     *[]string
	Value        *float64
	LastContact  *time.Time
	NextFollowUp *time.Time
}

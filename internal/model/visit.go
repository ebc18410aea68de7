package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type VisitStatus string

const (
	VisitStatusPending   VisitStatus = "PENDING"
	VisitStatusCompleted VisitStatus = "COMPLETED"
	VisitStatusCanceled  VisitStatus = "CANCELED"
	// VisitStatusMissed is never stored. It is the read-time projection of a
	// pending visit whose day has passed.
	VisitStatusMissed VisitStatus = "MISSED"
)

// Terminal reports whether no further transitions are allowed from s.
func (s VisitStatus) Terminal() bool {
	return s == VisitStatusCompleted || s == VisitStatusCanceled
}

type Visit struct {
	ID           int64       `json:"id"`
	ContractID   uuid.UUID   `json:"contract_id"`
	ClientID     uuid.UUID   `json:"client_id"`
	TechnicianID *uuid.UUID  `json:"technician_id"`
	Date         time.Time   `json:"date"`
	Status       VisitStatus `json:"status"`
	PestType     *string     `json:"pest_type,omitempty"`
	Chemicals    *string     `json:"chemicals,omitempty"`
	Notes        *string     `json:"notes,omitempty"`
	CompletedAt  *time.Time  `json:"completed_at,omitempty"`
	Version      int64       `json:"version"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// Number is the human-facing visit label.
func (v Visit) Number() string {
	if v.ID == 0 {
		return ""
	}
	return fmt.Sprintf("VST-%d", v.ID)
}

// VisitReport is the technician's completion payload.
type VisitReport struct {
	PestType  string
	Chemicals string
	Notes     string
}

package model

import (
	"time"

	"github.com/google/uuid"
)

type ContractType string

const (
	ContractTypeAnnual     ContractType = "ANNUAL"
	ContractTypeSemiAnnual ContractType = "SEMI_ANNUAL"
	ContractTypeOneTime    ContractType = "ONE_TIME"
)

type Cadence string

const (
	CadenceWeekly    Cadence = "WEEKLY"
	CadenceMonthly   Cadence = "MONTHLY"
	CadenceQuarterly Cadence = "QUARTERLY"
	CadenceOneOff    Cadence = "ONE_OFF"
)

type ContractStatus string

const (
	ContractStatusActive     ContractStatus = "ACTIVE"
	ContractStatusExpired    ContractStatus = "EXPIRED"
	ContractStatusTerminated ContractStatus = "TERMINATED"
)

type Contract struct {
	ID             uuid.UUID      `json:"id"`
	ContractNumber string         `json:"contract_number"`
	ClientID       uuid.UUID      `json:"client_id"`
	Type           ContractType   `json:"type"`
	Cadence        Cadence        `json:"cadence"`
	StartDate      time.Time      `json:"start_date"`
	EndDate        time.Time      `json:"end_date"`
	VisitsIncluded int            `json:"visits_included"`
	Price          float64        `json:"price"`
	IsPaid         bool           `json:"is_paid"`
	Status         ContractStatus `json:"status"`
	CreatedAt      time.Time      `json:"created_at"`
}

// Covers reports whether day falls inside the contract's inclusive schedule window.
func (c Contract) Covers(day time.Time) bool {
	return !day.Before(c.StartDate) && !day.After(c.EndDate)
}

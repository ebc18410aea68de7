package model

import (
	"time"

	"github.com/google/uuid"
)

type PropertyType string

const (
	PropertyResidential PropertyType = "RESIDENTIAL"
	PropertyCommercial  PropertyType = "COMMERCIAL"
	PropertyIndustrial  PropertyType = "INDUSTRIAL"
)

type Client struct {
	ID           uuid.UUID    `json:"id"`
	Name         string       `json:"name"`
	Phone        string       `json:"phone"`
	Email        string       `json:"email"`
	Emirate      string       `json:"emirate"`
	Address      string       `json:"address"`
	UnitNumber   *string      `json:"unit_number,omitempty"`
	PropertyType PropertyType `json:"property_type"`
	CreatedAt    time.Time    `json:"created_at"`
}

type Technician struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Role  string    `json:"role"`
	Email string    `json:"email"`
	Color string    `json:"color"`
}

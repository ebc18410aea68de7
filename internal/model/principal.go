package model

import "github.com/google/uuid"

type UserRole string

const (
	UserRoleAdmin      UserRole = "ADMIN"
	UserRoleOffice     UserRole = "OFFICE"
	UserRoleTechnician UserRole = "TECHNICIAN"
)

// Principal is the caller identity extracted from the access token.
// TechnicianID is set only for technician tokens.
type Principal struct {
	UserID       uuid.UUID
	Role         UserRole
	TechnicianID *uuid.UUID
}

func (p Principal) IsAdmin() bool {
	return p.Role == UserRoleAdmin
}

func (p Principal) IsOffice() bool {
	return p.Role == UserRoleOffice || p.Role == UserRoleAdmin
}

func (p Principal) IsTechnician() bool {
	return p.Role == UserRoleTechnician
}

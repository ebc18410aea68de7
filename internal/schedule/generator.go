package schedule

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/nurpe/pestcare-visits/internal/model"
)

// ValidateContract checks the invariants the generator relies on.
// Visit count is ignored for one-off contracts, which always yield one visit.
func ValidateContract(c model.Contract) error {
	if c.ClientID == uuid.Nil {
		return fmt.Errorf("%w: client_id is required", ErrValidation)
	}
	if !validCadence(c.Cadence) {
		return fmt.Errorf("%w: unknown cadence %q", ErrValidation, c.Cadence)
	}
	if c.StartDate.IsZero() || c.EndDate.IsZero() {
		return fmt.Errorf("%w: start and end dates are required", ErrValidation)
	}
	if DateOnly(c.EndDate).Before(DateOnly(c.StartDate)) {
		return fmt.Errorf("%w: end_date must not be before start_date", ErrValidation)
	}
	if c.Cadence != model.CadenceOneOff && c.VisitsIncluded < 1 {
		return fmt.Errorf("%w: visits_included must be at least 1", ErrValidation)
	}
	return nil
}

// GenerateVisits expands a contract into its pending visit drafts, in date
// order. Drafts carry no ID; identifiers are assigned from the system-wide
// sequence when the drafts are persisted.
func GenerateVisits(c model.Contract) ([]model.Visit, error) {
	if err := ValidateContract(c); err != nil {
		return nil, err
	}

	limit := c.VisitsIncluded
	if c.Cadence == model.CadenceOneOff {
		limit = 1
	}
	end := DateOnly(c.EndDate)

	visits := make([]model.Visit, 0, limit)
	cursor := NewDateCursor(c.StartDate, c.Cadence)
	for !cursor.Current().After(end) && len(visits) < limit {
		visits = append(visits, model.Visit{
			ContractID: c.ID,
			ClientID:   c.ClientID,
			Date:       cursor.Current(),
			Status:     model.VisitStatusPending,
		})
		if !cursor.Advance() {
			break
		}
	}
	return visits, nil
}

package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nurpe/pestcare-visits/internal/model"
)

// Transitions take a visit by value and return the updated copy. On error the
// returned visit is the input, untouched.

func requirePending(v model.Visit, action string) error {
	switch {
	case v.Status.Terminal():
		return fmt.Errorf("%w: cannot %s visit %d in status %s", ErrInvalidTransition, action, v.ID, v.Status)
	case v.Status != model.VisitStatusPending:
		// MISSED is derived on read and never valid as a stored status.
		return fmt.Errorf("%w: visit %d has unknown status %q", ErrValidation, v.ID, v.Status)
	}
	return nil
}

// AssignTechnician sets or overwrites the technician of a pending visit.
func AssignTechnician(v model.Visit, technicianID uuid.UUID) (model.Visit, error) {
	if err := requirePending(v, "assign"); err != nil {
		return v, err
	}
	if technicianID == uuid.Nil {
		return v, fmt.Errorf("%w: technician_id is required", ErrValidation)
	}
	next := v
	next.TechnicianID = &technicianID
	return next, nil
}

// Reschedule moves a pending visit to another day inside its contract's window.
func Reschedule(v model.Visit, c model.Contract, newDate time.Time) (model.Visit, error) {
	if err := requirePending(v, "reschedule"); err != nil {
		return v, err
	}
	if v.ContractID != c.ID {
		return v, fmt.Errorf("%w: visit %d does not belong to contract %s", ErrValidation, v.ID, c.ID)
	}
	if newDate.IsZero() {
		return v, fmt.Errorf("%w: date is required", ErrValidation)
	}
	day := DateOnly(newDate)
	if !c.Covers(day) {
		return v, fmt.Errorf("%w: %s is outside contract window %s..%s",
			ErrScheduleViolation, FormatDay(day), FormatDay(c.StartDate), FormatDay(c.EndDate))
	}
	next := v
	next.Date = day
	return next, nil
}

// Complete records the technician's report and closes the visit.
func Complete(v model.Visit, report model.VisitReport, now time.Time) (model.Visit, error) {
	if err := requirePending(v, "complete"); err != nil {
		return v, err
	}
	pest := strings.TrimSpace(report.PestType)
	chemicals := strings.TrimSpace(report.Chemicals)
	if pest == "" || chemicals == "" {
		return v, fmt.Errorf("%w: pest_type and chemicals are required", ErrValidation)
	}

	next := v
	next.Status = model.VisitStatusCompleted
	next.PestType = &pest
	next.Chemicals = &chemicals
	if notes := strings.TrimSpace(report.Notes); notes != "" {
		next.Notes = &notes
	}
	completedAt := now
	next.CompletedAt = &completedAt
	return next, nil
}

func Cancel(v model.Visit) (model.Visit, error) {
	if err := requirePending(v, "cancel"); err != nil {
		return v, err
	}
	next := v
	next.Status = model.VisitStatusCanceled
	return next, nil
}

// IsEffectivelyMissed reports whether v is still pending on a day before asOf.
func IsEffectivelyMissed(v model.Visit, asOf time.Time) bool {
	return v.Status == model.VisitStatusPending && DateOnly(v.Date).Before(DateOnly(asOf))
}

// EffectiveStatus is the stored status with missed visits projected.
func EffectiveStatus(v model.Visit, asOf time.Time) model.VisitStatus {
	if IsEffectivelyMissed(v, asOf) {
		return model.VisitStatusMissed
	}
	return v.Status
}

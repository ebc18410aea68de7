package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nurpe/pestcare-visits/internal/model"
	"github.com/nurpe/pestcare-visits/internal/schedule"
)

type AddVisitInput struct {
	ContractID   uuid.UUID
	Date         time.Time
	TechnicianID *uuid.UUID
	Principal    model.Principal
}

// AddVisit books an extra visit on an active contract, inside its window.
func (s *VisitService) AddVisit(ctx context.Context, input AddVisitInput) (*model.VisitRecord, error) {
	if !input.Principal.IsOffice() {
		return nil, ErrPermissionDenied
	}
	if input.Date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	contract, err := s.store.GetContract(ctx, input.ContractID)
	if err != nil {
		return nil, translateNotFound(err)
	}
	if contract.Status != model.ContractStatusActive {
		return nil, fmt.Errorf("%w: contract %s is %s", ErrInvalidInput, contract.ContractNumber, contract.Status)
	}
	day := schedule.DateOnly(input.Date)
	if !contract.Covers(day) {
		return nil, fmt.Errorf("%w: %s is outside contract window", ErrScheduleViolation, schedule.FormatDay(day))
	}
	if input.TechnicianID != nil {
		if _, err := s.store.GetTechnician(ctx, *input.TechnicianID); err != nil {
			return nil, translateNotFound(err)
		}
	}

	saved, err := s.store.AddVisit(ctx, model.Visit{
		ContractID:   contract.ID,
		ClientID:     contract.ClientID,
		TechnicianID: input.TechnicianID,
		Date:         day,
		Status:       model.VisitStatusPending,
	})
	if err != nil {
		return nil, translateNotFound(err)
	}
	s.remember(*saved)
	return s.decorateOne(ctx, *saved)
}

func (s *VisitService) GetVisit(ctx context.Context, id int64) (*model.VisitRecord, error) {
	visit, err := s.store.GetVisit(ctx, id)
	if err != nil {
		return nil, translateNotFound(err)
	}
	return s.decorateOne(ctx, *visit)
}

// mutate runs one lifecycle transition against the store and indexes the
// committed result.
func (s *VisitService) mutate(
	ctx context.Context,
	id int64,
	action string,
	fn func(model.Visit) (model.Visit, error),
) (*model.VisitRecord, error) {
	updated, err := s.store.MutateVisit(ctx, id, fn)
	if err != nil {
		s.log.Debug().Err(err).Int64("visit_id", id).Str("action", action).Msg("visit transition rejected")
		return nil, translateNotFound(err)
	}
	s.remember(*updated)
	s.log.Info().
		Int64("visit_id", updated.ID).
		Str("action", action).
		Str("status", string(updated.Status)).
		Msg("visit updated")
	return s.decorateOne(ctx, *updated)
}

func (s *VisitService) AssignTechnician(
	ctx context.Context,
	principal model.Principal,
	visitID int64,
	technicianID uuid.UUID,
) (*model.VisitRecord, error) {
	if !principal.IsOffice() {
		return nil, ErrPermissionDenied
	}
	if _, err := s.store.GetTechnician(ctx, technicianID); err != nil {
		return nil, translateNotFound(err)
	}
	return s.mutate(ctx, visitID, "assign", func(v model.Visit) (model.Visit, error) {
		return schedule.AssignTechnician(v, technicianID)
	})
}

func (s *VisitService) Reschedule(
	ctx context.Context,
	principal model.Principal,
	visitID int64,
	date time.Time,
) (*model.VisitRecord, error) {
	if !principal.IsOffice() {
		return nil, ErrPermissionDenied
	}
	visit, err := s.store.GetVisit(ctx, visitID)
	if err != nil {
		return nil, translateNotFound(err)
	}
	// The owning contract and its window never change, so reading it
	// outside the visit lock is safe.
	contract, err := s.store.GetContract(ctx, visit.ContractID)
	if err != nil {
		return nil, translateNotFound(err)
	}
	return s.mutate(ctx, visitID, "reschedule", func(v model.Visit) (model.Visit, error) {
		return schedule.Reschedule(v, *contract, date)
	})
}

// Complete records a technician report. Technicians may only complete visits
// assigned to them; the check runs under the visit lock.
func (s *VisitService) Complete(
	ctx context.Context,
	principal model.Principal,
	visitID int64,
	report model.VisitReport,
) (*model.VisitRecord, error) {
	if !principal.IsOffice() && !principal.IsTechnician() {
		return nil, ErrPermissionDenied
	}
	return s.mutate(ctx, visitID, "complete", func(v model.Visit) (model.Visit, error) {
		if principal.IsTechnician() && !assignedTo(v, principal.TechnicianID) {
			return v, ErrPermissionDenied
		}
		return schedule.Complete(v, report, s.clock.Now().UTC())
	})
}

func (s *VisitService) Cancel(ctx context.Context, principal model.Principal, visitID int64) (*model.VisitRecord, error) {
	if !principal.IsOffice() {
		return nil, ErrPermissionDenied
	}
	return s.mutate(ctx, visitID, "cancel", schedule.Cancel)
}

func assignedTo(v model.Visit, technicianID *uuid.UUID) bool {
	return technicianID != nil && v.TechnicianID != nil && *v.TechnicianID == *technicianID
}

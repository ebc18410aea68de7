package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/nurpe/pestcare-visits/internal/model"
	"github.com/nurpe/pestcare-visits/internal/schedule"
)

func (s *VisitService) VisitsOnDay(ctx context.Context, day time.Time) ([]model.VisitRecord, error) {
	visits := s.readIndex(func(idx *schedule.Index) []model.Visit {
		return idx.VisitsOnDay(day)
	})
	return s.decorate(ctx, visits)
}

// MonthSchedule returns one cell per calendar day of month, empty days included.
func (s *VisitService) MonthSchedule(ctx context.Context, month time.Time) (*model.MonthSchedule, error) {
	first := monthStart(month)
	last := first.AddDate(0, 1, -1)

	visits := s.readIndex(func(idx *schedule.Index) []model.Visit {
		return idx.VisitsInRange(first, last)
	})
	records, err := s.decorate(ctx, visits)
	if err != nil {
		return nil, err
	}

	result := &model.MonthSchedule{Month: first}
	pos := 0
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		cell := model.DaySchedule{Date: day, Visits: []model.VisitRecord{}}
		for pos < len(records) && records[pos].Date.Equal(day) {
			cell.Visits = append(cell.Visits, records[pos])
			pos++
		}
		result.Days = append(result.Days, cell)
	}
	return result, nil
}

// PendingForTechnician lists a technician's open visits in date order.
// Technicians may only read their own queue.
func (s *VisitService) PendingForTechnician(
	ctx context.Context,
	principal model.Principal,
	technicianID uuid.UUID,
) ([]model.VisitRecord, error) {
	if principal.IsTechnician() {
		if principal.TechnicianID == nil || *principal.TechnicianID != technicianID {
			return nil, ErrPermissionDenied
		}
	} else if !principal.IsOffice() {
		return nil, ErrPermissionDenied
	}
	if _, err := s.store.GetTechnician(ctx, technicianID); err != nil {
		return nil, translateNotFound(err)
	}

	visits := s.readIndex(func(idx *schedule.Index) []model.Visit {
		return idx.PendingForTechnician(technicianID)
	})
	return s.decorate(ctx, visits)
}

// MyVisits is the technician's own pending queue.
func (s *VisitService) MyVisits(ctx context.Context, principal model.Principal) ([]model.VisitRecord, error) {
	if !principal.IsTechnician() || principal.TechnicianID == nil {
		return nil, ErrPermissionDenied
	}
	return s.PendingForTechnician(ctx, principal, *principal.TechnicianID)
}

// Dashboard aggregates the office overview. Missed visits are derived at read
// time and counted apart from pending ones.
func (s *VisitService) Dashboard(ctx context.Context, principal model.Principal) (*model.DashboardStats, error) {
	if !principal.IsOffice() {
		return nil, ErrPermissionDenied
	}
	today := s.today()
	stats := &model.DashboardStats{AsOf: today}

	var visits []model.Visit
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.store.CountClients(gctx)
		stats.TotalClients = n
		return err
	})
	g.Go(func() error {
		n, err := s.store.CountContracts(gctx, model.ContractStatusActive)
		stats.ActiveContracts = n
		return err
	})
	g.Go(func() error {
		var err error
		visits, err = s.store.ListVisits(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, v := range visits {
		if schedule.DateOnly(v.Date).Equal(today) {
			stats.TodaysVisits++
		}
		switch schedule.EffectiveStatus(v, today) {
		case model.VisitStatusCompleted:
			stats.Completed++
		case model.VisitStatusCanceled:
			stats.Canceled++
		case model.VisitStatusMissed:
			stats.MissedVisits++
		case model.VisitStatusPending:
			stats.Pending++
		}
	}
	return stats, nil
}

func monthStart(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

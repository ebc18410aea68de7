package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nurpe/pestcare-visits/internal/model"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypePDF  = "application/pdf"
	contentTypeICS  = "text/calendar; charset=utf-8"
)

// ExportMonth renders the month calendar as a workbook.
func (s *VisitService) ExportMonth(ctx context.Context, principal model.Principal, month time.Time) (*FileResult, error) {
	if !principal.IsOffice() {
		return nil, ErrPermissionDenied
	}
	if s.renderers.Excel == nil {
		return nil, fmt.Errorf("excel exporter is not configured")
	}

	schedule, err := s.MonthSchedule(ctx, month)
	if err != nil {
		return nil, err
	}
	content, err := s.renderers.Excel.Generate(*schedule)
	if err != nil {
		return nil, fmt.Errorf("generate schedule workbook: %w", err)
	}
	return &FileResult{
		FileName:    fmt.Sprintf("schedule-%s.xlsx", schedule.Month.Format("2006-01")),
		ContentType: contentTypeXLSX,
		Content:     content,
	}, nil
}

// VisitReport renders the service report of a completed visit.
func (s *VisitService) VisitReport(ctx context.Context, principal model.Principal, visitID int64) (*FileResult, error) {
	if !principal.IsOffice() && !principal.IsTechnician() {
		return nil, ErrPermissionDenied
	}
	if s.renderers.PDF == nil {
		return nil, fmt.Errorf("pdf renderer is not configured")
	}

	visit, err := s.store.GetVisit(ctx, visitID)
	if err != nil {
		return nil, translateNotFound(err)
	}
	if principal.IsTechnician() && !assignedTo(*visit, principal.TechnicianID) {
		return nil, ErrPermissionDenied
	}
	if visit.Status != model.VisitStatusCompleted {
		return nil, fmt.Errorf("%w: visit %s is %s", ErrInvalidTransition, visit.Number(), visit.Status)
	}

	contract, err := s.store.GetContract(ctx, visit.ContractID)
	if err != nil {
		return nil, translateNotFound(err)
	}
	client, err := s.store.GetClient(ctx, visit.ClientID)
	if err != nil {
		return nil, translateNotFound(err)
	}
	doc := model.VisitDocument{Visit: *visit, Contract: *contract, Client: *client}
	if visit.TechnicianID != nil {
		tech, err := s.store.GetTechnician(ctx, *visit.TechnicianID)
		if err != nil {
			return nil, translateNotFound(err)
		}
		doc.Technician = tech
	}

	content, err := s.renderers.PDF.Generate(doc)
	if err != nil {
		return nil, fmt.Errorf("generate visit report: %w", err)
	}
	return &FileResult{
		FileName:    fmt.Sprintf("%s-%s.pdf", visit.Number(), sanitizeFileName(client.Name)),
		ContentType: contentTypePDF,
		Content:     content,
	}, nil
}

// TechnicianCalendar builds the iCalendar feed of a technician's visits.
// Canceled visits are left out.
func (s *VisitService) TechnicianCalendar(
	ctx context.Context,
	principal model.Principal,
	technicianID uuid.UUID,
) (*FileResult, error) {
	if principal.IsTechnician() {
		if principal.TechnicianID == nil || *principal.TechnicianID != technicianID {
			return nil, ErrPermissionDenied
		}
	} else if !principal.IsOffice() {
		return nil, ErrPermissionDenied
	}
	if s.renderers.Calendar == nil {
		return nil, fmt.Errorf("calendar encoder is not configured")
	}

	tech, err := s.store.GetTechnician(ctx, technicianID)
	if err != nil {
		return nil, translateNotFound(err)
	}
	all, err := s.store.ListVisits(ctx)
	if err != nil {
		return nil, err
	}
	own := make([]model.Visit, 0)
	for _, v := range all {
		if v.Status == model.VisitStatusCanceled || !assignedTo(v, &technicianID) {
			continue
		}
		own = append(own, v)
	}
	records, err := s.decorate(ctx, own)
	if err != nil {
		return nil, err
	}

	content, err := s.renderers.Calendar.Encode(model.TechnicianFeed{
		Technician:  *tech,
		GeneratedAt: s.clock.Now().UTC(),
		Visits:      records,
	})
	if err != nil {
		return nil, fmt.Errorf("encode calendar: %w", err)
	}
	name := sanitizeFileName(tech.Name)
	if name == "" {
		name = tech.ID.String()
	}
	return &FileResult{
		FileName:    fmt.Sprintf("visits-%s.ics", name),
		ContentType: contentTypeICS,
		Content:     content,
	}, nil
}

func sanitizeFileName(input string) string {
	result := make([]rune, 0, len(input))
	for _, r := range input {
		switch {
		case r >= 'a' && r <= 'z':
			result = append(result, r)
		case r >= 'A' && r <= 'Z':
			result = append(result, r)
		case r >= '0' && r <= '9':
			result = append(result, r)
		case r == '-', r == '_':
			result = append(result, r)
		default:
			result = append(result, '-')
		}
	}
	return strings.Trim(string(result), "-")
}

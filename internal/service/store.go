package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nurpe/pestcare-visits/internal/model"
)

type ClientStore interface {
	CreateClient(ctx context.Context, client model.Client) (*model.Client, error)
	GetClient(ctx context.Context, id uuid.UUID) (*model.Client, error)
	ListClients(ctx context.Context, search string) ([]model.Client, error)
	CountClients(ctx context.Context) (int64, error)

	CreateTechnician(ctx context.Context, tech model.Technician) (*model.Technician, error)
	GetTechnician(ctx context.Context, id uuid.UUID) (*model.Technician, error)
	ListTechnicians(ctx context.Context) ([]model.Technician, error)
}

type ContractStore interface {
	CreateContract(ctx context.Context, contract model.Contract, drafts []model.Visit) (*model.Contract, []model.Visit, error)
	GetContract(ctx context.Context, id uuid.UUID) (*model.Contract, error)
	ListContracts(ctx context.Context, clientID *uuid.UUID) ([]model.Contract, error)
	UpdateContractStatus(ctx context.Context, id uuid.UUID, status model.ContractStatus) (*model.Contract, error)
	ExpireContracts(ctx context.Context, asOf time.Time) (int64, error)
	CountContracts(ctx context.Context, status model.ContractStatus) (int64, error)
}

type VisitStore interface {
	AddVisit(ctx context.Context, visit model.Visit) (*model.Visit, error)
	GetVisit(ctx context.Context, id int64) (*model.Visit, error)
	ListVisits(ctx context.Context) ([]model.Visit, error)
	ListVisitsByContract(ctx context.Context, contractID uuid.UUID) ([]model.Visit, error)
	// MutateVisit runs fn with exclusive access to one visit and persists
	// its result. Errors from fn are returned unchanged and nothing is stored.
	MutateVisit(ctx context.Context, id int64, fn func(model.Visit) (model.Visit, error)) (*model.Visit, error)
}

type Store interface {
	ClientStore
	ContractStore
	VisitStore
}

type ScheduleExporter interface {
	Generate(month model.MonthSchedule) ([]byte, error)
}

type VisitReportRenderer interface {
	Generate(doc model.VisitDocument) ([]byte, error)
}

type CalendarEncoder interface {
	Encode(feed model.TechnicianFeed) ([]byte, error)
}

// FileResult is a rendered document ready to be served.
type FileResult struct {
	FileName    string
	ContentType string
	Content     []byte
}

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nurpe/pestcare-visits/internal/model"
	"github.com/nurpe/pestcare-visits/internal/schedule"
)

type CreateContractInput struct {
	ClientID       uuid.UUID
	Type           model.ContractType
	Cadence        model.Cadence
	StartDate      time.Time
	EndDate        time.Time
	VisitsIncluded int
	Price          float64
	IsPaid         bool
	Principal      model.Principal
}

// ContractDetail is a contract with its cadence rendered as an RRULE.
type ContractDetail struct {
	Contract model.Contract      `json:"contract"`
	RRule    string              `json:"rrule,omitempty"`
	Visits   []model.VisitRecord `json:"visits,omitempty"`
}

// CreateContract stores the contract and materialises its visits in one step.
func (s *VisitService) CreateContract(ctx context.Context, input CreateContractInput) (*ContractDetail, error) {
	if !input.Principal.IsOffice() {
		return nil, ErrPermissionDenied
	}
	if input.Price < 0 {
		return nil, fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	}

	contractType := input.Type
	switch contractType {
	case "":
		contractType = model.ContractTypeAnnual
		if input.Cadence == model.CadenceOneOff {
			contractType = model.ContractTypeOneTime
		}
	case model.ContractTypeAnnual, model.ContractTypeSemiAnnual, model.ContractTypeOneTime:
	default:
		return nil, fmt.Errorf("%w: unknown contract type %q", ErrInvalidInput, contractType)
	}

	if _, err := s.store.GetClient(ctx, input.ClientID); err != nil {
		return nil, translateNotFound(err)
	}

	contract := model.Contract{
		ClientID:       input.ClientID,
		Type:           contractType,
		Cadence:        input.Cadence,
		StartDate:      schedule.DateOnly(input.StartDate),
		EndDate:        schedule.DateOnly(input.EndDate),
		VisitsIncluded: input.VisitsIncluded,
		Price:          input.Price,
		IsPaid:         input.IsPaid,
		Status:         model.ContractStatusActive,
		CreatedAt:      s.clock.Now().UTC(),
	}
	if contract.Cadence == model.CadenceOneOff {
		contract.VisitsIncluded = 1
	}

	drafts, err := schedule.GenerateVisits(contract)
	if err != nil {
		return nil, err
	}

	saved, visits, err := s.store.CreateContract(ctx, contract, drafts)
	if err != nil {
		return nil, translateNotFound(err)
	}
	s.remember(visits...)

	s.log.Info().
		Str("contract_id", saved.ID.String()).
		Str("contract_number", saved.ContractNumber).
		Str("cadence", string(saved.Cadence)).
		Int("visits", len(visits)).
		Msg("contract created")

	records, err := s.decorate(ctx, visits)
	if err != nil {
		return nil, err
	}
	return &ContractDetail{
		Contract: *saved,
		RRule:    s.ruleValue(*saved),
		Visits:   records,
	}, nil
}

func (s *VisitService) GetContract(ctx context.Context, id uuid.UUID) (*ContractDetail, error) {
	contract, err := s.store.GetContract(ctx, id)
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &ContractDetail{Contract: *contract, RRule: s.ruleValue(*contract)}, nil
}

func (s *VisitService) ListContracts(ctx context.Context, clientID *uuid.UUID) ([]model.Contract, error) {
	return s.store.ListContracts(ctx, clientID)
}

// ContractVisits lists every visit generated or added for a contract.
func (s *VisitService) ContractVisits(ctx context.Context, id uuid.UUID) ([]model.VisitRecord, error) {
	if _, err := s.store.GetContract(ctx, id); err != nil {
		return nil, translateNotFound(err)
	}
	visits, err := s.store.ListVisitsByContract(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.decorate(ctx, visits)
}

// SetContractStatus records an office decision about the contract. Visits
// keep their own lifecycle and are not touched.
func (s *VisitService) SetContractStatus(
	ctx context.Context,
	principal model.Principal,
	id uuid.UUID,
	status model.ContractStatus,
) (*model.Contract, error) {
	if !principal.IsOffice() {
		return nil, ErrPermissionDenied
	}
	switch status {
	case model.ContractStatusActive, model.ContractStatusExpired, model.ContractStatusTerminated:
	default:
		return nil, fmt.Errorf("%w: unknown contract status %q", ErrInvalidInput, status)
	}

	contract, err := s.store.UpdateContractStatus(ctx, id, status)
	if err != nil {
		return nil, translateNotFound(err)
	}
	s.log.Info().Str("contract_id", id.String()).Str("status", string(status)).Msg("contract status changed")
	return contract, nil
}

// ExpireContracts marks active contracts whose window closed before today.
func (s *VisitService) ExpireContracts(ctx context.Context) (int64, error) {
	return s.store.ExpireContracts(ctx, s.today())
}

func (s *VisitService) ruleValue(contract model.Contract) string {
	rule, err := schedule.CadenceRule(contract)
	if err != nil {
		s.log.Debug().Err(err).Str("contract_id", contract.ID.String()).Msg("no recurrence rule")
		return ""
	}
	return schedule.RuleValue(rule)
}

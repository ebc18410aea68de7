package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nurpe/pestcare-visits/internal/model"
	"github.com/nurpe/pestcare-visits/internal/schedule"
)

// firstVisitID keeps generated labels at four digits and up (VST-1001).
const firstVisitID = 1001

// visitSlot serialises mutations of one visit. The store-level lock only
// guards the slot map, so writers of different visits never wait on each other.
type visitSlot struct {
	mu    sync.Mutex
	visit model.Visit
}

// MemoryStore keeps clients, technicians, contracts and visits in process.
// It backs DB_DRIVER=memory and the service tests.
type MemoryStore struct {
	mu          sync.RWMutex
	clients     map[uuid.UUID]model.Client
	technicians map[uuid.UUID]model.Technician
	contracts   map[uuid.UUID]model.Contract
	visits      map[int64]*visitSlot
	contractSeq int64
	nextVisitID int64
	now         func() time.Time
}

func NewMemoryStore(now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{
		clients:     make(map[uuid.UUID]model.Client),
		technicians: make(map[uuid.UUID]model.Technician),
		contracts:   make(map[uuid.UUID]model.Contract),
		visits:      make(map[int64]*visitSlot),
		nextVisitID: firstVisitID,
		now:         now,
	}
}

func (s *MemoryStore) CreateClient(_ context.Context, client model.Client) (*model.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	client.ID = uuid.New()
	client.CreatedAt = s.now().UTC()
	s.clients[client.ID] = client
	return &client, nil
}

func (s *MemoryStore) GetClient(_ context.Context, id uuid.UUID) (*model.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	client, ok := s.clients[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &client, nil
}

func (s *MemoryStore) ListClients(_ context.Context, search string) ([]model.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search = strings.ToLower(strings.TrimSpace(search))
	result := make([]model.Client, 0, len(s.clients))
	for _, client := range s.clients {
		if search != "" &&
			!strings.Contains(strings.ToLower(client.Name), search) &&
			!strings.Contains(client.Phone, search) {
			continue
		}
		result = append(result, client)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (s *MemoryStore) CountClients(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.clients)), nil
}

func (s *MemoryStore) CreateTechnician(_ context.Context, tech model.Technician) (*model.Technician, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tech.ID = uuid.New()
	s.technicians[tech.ID] = tech
	return &tech, nil
}

func (s *MemoryStore) GetTechnician(_ context.Context, id uuid.UUID) (*model.Technician, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tech, ok := s.technicians[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &tech, nil
}

func (s *MemoryStore) ListTechnicians(_ context.Context) ([]model.Technician, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]model.Technician, 0, len(s.technicians))
	for _, tech := range s.technicians {
		result = append(result, tech)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (s *MemoryStore) CreateContract(
	_ context.Context,
	contract model.Contract,
	drafts []model.Visit,
) (*model.Contract, []model.Visit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.clients[contract.ClientID]; !ok {
		return nil, nil, ErrNotFound
	}

	s.contractSeq++
	now := s.now().UTC()
	if contract.CreatedAt.IsZero() {
		contract.CreatedAt = now
	}
	contract.ID = uuid.New()
	contract.ContractNumber = contractNumber(contract.CreatedAt, s.contractSeq)
	contract.StartDate = schedule.DateOnly(contract.StartDate)
	contract.EndDate = schedule.DateOnly(contract.EndDate)
	s.contracts[contract.ID] = contract

	visits := make([]model.Visit, 0, len(drafts))
	for _, draft := range drafts {
		draft.ContractID = contract.ID
		visits = append(visits, s.insertVisitLocked(draft, now))
	}
	return &contract, visits, nil
}

func (s *MemoryStore) GetContract(_ context.Context, id uuid.UUID) (*model.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	contract, ok := s.contracts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &contract, nil
}

func (s *MemoryStore) ListContracts(_ context.Context, clientID *uuid.UUID) ([]model.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]model.Contract, 0, len(s.contracts))
	for _, contract := range s.contracts {
		if clientID != nil && contract.ClientID != *clientID {
			continue
		}
		result = append(result, contract)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].StartDate.Equal(result[j].StartDate) {
			return result[i].StartDate.After(result[j].StartDate)
		}
		return result[i].ContractNumber < result[j].ContractNumber
	})
	return result, nil
}

func (s *MemoryStore) UpdateContractStatus(
	_ context.Context,
	id uuid.UUID,
	status model.ContractStatus,
) (*model.Contract, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	contract, ok := s.contracts[id]
	if !ok {
		return nil, ErrNotFound
	}
	contract.Status = status
	s.contracts[id] = contract
	return &contract, nil
}

func (s *MemoryStore) ExpireContracts(_ context.Context, asOf time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	day := schedule.DateOnly(asOf)
	var expired int64
	for id, contract := range s.contracts {
		if contract.Status == model.ContractStatusActive && contract.EndDate.Before(day) {
			contract.Status = model.ContractStatusExpired
			s.contracts[id] = contract
			expired++
		}
	}
	return expired, nil
}

func (s *MemoryStore) CountContracts(_ context.Context, status model.ContractStatus) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total int64
	for _, contract := range s.contracts {
		if contract.Status == status {
			total++
		}
	}
	return total, nil
}

func (s *MemoryStore) AddVisit(_ context.Context, visit model.Visit) (*model.Visit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.contracts[visit.ContractID]; !ok {
		return nil, ErrNotFound
	}
	saved := s.insertVisitLocked(visit, s.now().UTC())
	return &saved, nil
}

func (s *MemoryStore) insertVisitLocked(visit model.Visit, now time.Time) model.Visit {
	visit.ID = s.nextVisitID
	s.nextVisitID++
	visit.Date = schedule.DateOnly(visit.Date)
	visit.Version = 1
	visit.CreatedAt = now
	visit.UpdatedAt = now
	s.visits[visit.ID] = &visitSlot{visit: visit}
	return visit
}

func (s *MemoryStore) slot(id int64) (*visitSlot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	slot, ok := s.visits[id]
	return slot, ok
}

func (s *MemoryStore) GetVisit(_ context.Context, id int64) (*model.Visit, error) {
	slot, ok := s.slot(id)
	if !ok {
		return nil, ErrNotFound
	}
	slot.mu.Lock()
	visit := slot.visit
	slot.mu.Unlock()
	return &visit, nil
}

func (s *MemoryStore) ListVisits(_ context.Context) ([]model.Visit, error) {
	return s.listVisits(func(model.Visit) bool { return true }), nil
}

func (s *MemoryStore) ListVisitsByContract(_ context.Context, contractID uuid.UUID) ([]model.Visit, error) {
	return s.listVisits(func(v model.Visit) bool { return v.ContractID == contractID }), nil
}

func (s *MemoryStore) listVisits(keep func(model.Visit) bool) []model.Visit {
	s.mu.RLock()
	slots := make([]*visitSlot, 0, len(s.visits))
	for _, slot := range s.visits {
		slots = append(slots, slot)
	}
	s.mu.RUnlock()

	result := make([]model.Visit, 0, len(slots))
	for _, slot := range slots {
		slot.mu.Lock()
		visit := slot.visit
		slot.mu.Unlock()
		if keep(visit) {
			result = append(result, visit)
		}
	}
	schedule.SortVisits(result)
	return result
}

// MutateVisit applies fn under the visit's own lock. A failing fn leaves the
// stored visit untouched.
func (s *MemoryStore) MutateVisit(
	_ context.Context,
	id int64,
	fn func(model.Visit) (model.Visit, error),
) (*model.Visit, error) {
	slot, ok := s.slot(id)
	if !ok {
		return nil, ErrNotFound
	}

	slot.mu.Lock()
	defer slot.mu.Unlock()

	next, err := fn(slot.visit)
	if err != nil {
		return nil, err
	}
	next.ID = slot.visit.ID
	next.Date = schedule.DateOnly(next.Date)
	next.Version = slot.visit.Version + 1
	next.UpdatedAt = s.now().UTC()
	slot.visit = next
	return &next, nil
}

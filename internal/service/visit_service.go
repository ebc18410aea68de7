package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/nurpe/pestcare-visits/internal/clock"
	"github.com/nurpe/pestcare-visits/internal/config"
	"github.com/nurpe/pestcare-visits/internal/model"
	"github.com/nurpe/pestcare-visits/internal/repository"
	"github.com/nurpe/pestcare-visits/internal/schedule"
)

const lookupConcurrency = 8

type Renderers struct {
	Excel    ScheduleExporter
	PDF      VisitReportRenderer
	Calendar CalendarEncoder
}

// VisitService owns contract materialisation and visit transitions. It keeps
// a schedule index in memory, updated after every committed change and
// rebuilt from the store on demand.
type VisitService struct {
	store     Store
	renderers Renderers
	clock     clock.Clock
	loc       *time.Location
	log       zerolog.Logger

	mu    sync.RWMutex
	index *schedule.Index
}

func NewVisitService(store Store, renderers Renderers, clk clock.Clock, cfg *config.Config, log zerolog.Logger) *VisitService {
	loc := cfg.Schedule.Location
	if loc == nil {
		loc = time.UTC
	}
	return &VisitService{
		store:     store,
		renderers: renderers,
		clock:     clk,
		loc:       loc,
		log:       log,
		index:     schedule.BuildIndex(nil),
	}
}

func (s *VisitService) today() time.Time {
	return schedule.Today(s.clock.Now(), s.loc)
}

// RebuildIndex replaces the in-memory index with one built from the store.
// Indexed visits newer than the store snapshot are kept.
func (s *VisitService) RebuildIndex(ctx context.Context) (int, error) {
	visits, err := s.store.ListVisits(ctx)
	if err != nil {
		return 0, err
	}
	fresh := schedule.BuildIndex(visits)

	s.mu.Lock()
	defer s.mu.Unlock()
	// Commits remembered while the snapshot was read may be newer than it.
	s.index.Each(func(v model.Visit) {
		if cur, ok := fresh.Get(v.ID); !ok || cur.Version < v.Version {
			fresh.Upsert(v)
		}
	})
	s.index = fresh
	return fresh.Len(), nil
}

// remember folds a committed visit into the index. Older versions never
// overwrite newer ones, so out-of-order updates from racing writers are safe.
func (s *VisitService) remember(visits ...model.Visit) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range visits {
		if cur, ok := s.index.Get(v.ID); ok && cur.Version > v.Version {
			continue
		}
		s.index.Upsert(v)
	}
}

func (s *VisitService) readIndex(fn func(idx *schedule.Index) []model.Visit) []model.Visit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.index)
}

// decorate adds display names and the derived status to visits. Client and
// technician lookups run concurrently, one per distinct ID.
func (s *VisitService) decorate(ctx context.Context, visits []model.Visit) ([]model.VisitRecord, error) {
	clientIDs := make(map[uuid.UUID]struct{})
	techIDs := make(map[uuid.UUID]struct{})
	for _, v := range visits {
		clientIDs[v.ClientID] = struct{}{}
		if v.TechnicianID != nil {
			techIDs[*v.TechnicianID] = struct{}{}
		}
	}

	var mu sync.Mutex
	clientNames := make(map[uuid.UUID]string, len(clientIDs))
	techNames := make(map[uuid.UUID]string, len(techIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(lookupConcurrency)
	for id := range clientIDs {
		id := id
		g.Go(func() error {
			client, err := s.store.GetClient(gctx, id)
			if errors.Is(err, repository.ErrNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			mu.Lock()
			clientNames[id] = client.Name
			mu.Unlock()
			return nil
		})
	}
	for id := range techIDs {
		id := id
		g.Go(func() error {
			tech, err := s.store.GetTechnician(gctx, id)
			if errors.Is(err, repository.ErrNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			mu.Lock()
			techNames[id] = tech.Name
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	asOf := s.today()
	records := make([]model.VisitRecord, 0, len(visits))
	for _, v := range visits {
		record := newRecord(v, asOf)
		record.ClientName = clientNames[v.ClientID]
		if v.TechnicianID != nil {
			record.TechnicianName = techNames[*v.TechnicianID]
		}
		records = append(records, record)
	}
	return records, nil
}

func (s *VisitService) decorateOne(ctx context.Context, v model.Visit) (*model.VisitRecord, error) {
	records, err := s.decorate(ctx, []model.Visit{v})
	if err != nil {
		return nil, err
	}
	return &records[0], nil
}

func newRecord(v model.Visit, asOf time.Time) model.VisitRecord {
	return model.VisitRecord{
		Visit:           v,
		Number:          v.Number(),
		EffectiveStatus: schedule.EffectiveStatus(v, asOf),
	}
}

package schedule

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/nurpe/pestcare-visits/internal/model"
)

type dayKey struct {
	year  int
	month time.Month
	day   int
}

func keyOf(t time.Time) dayKey {
	y, m, d := t.Date()
	return dayKey{year: y, month: m, day: d}
}

type idSet map[int64]struct{}

// Index answers calendar and technician queries over a visit collection.
// Query cost is proportional to the result, not to the collection.
//
// Construct with BuildIndex. Not safe for concurrent use.
type Index struct {
	visits map[int64]model.Visit

	byDay map[dayKey]idSet

	// Pending visits only; completed and canceled visits drop out.
	pendingByTechnician map[uuid.UUID]idSet
}

func newIndex(capacity int) *Index {
	return &Index{
		visits:              make(map[int64]model.Visit, capacity),
		byDay:               make(map[dayKey]idSet),
		pendingByTechnician: make(map[uuid.UUID]idSet),
	}
}

// BuildIndex indexes visits. The result depends only on the input collection;
// when the same ID appears twice the later entry wins.
func BuildIndex(visits []model.Visit) *Index {
	idx := newIndex(len(visits))
	for _, v := range visits {
		idx.Upsert(v)
	}
	return idx
}

func (idx *Index) Len() int {
	return len(idx.visits)
}

// Get returns the indexed copy of a visit.
func (idx *Index) Get(id int64) (model.Visit, bool) {
	v, ok := idx.visits[id]
	return v, ok
}

// Upsert adds v or replaces the indexed copy with the same ID, moving it
// between day buckets and technician sets as needed.
func (idx *Index) Upsert(v model.Visit) {
	if prev, ok := idx.visits[v.ID]; ok {
		idx.unlink(prev)
	}
	v.Date = DateOnly(v.Date)
	idx.visits[v.ID] = v
	idx.link(v)
}

func (idx *Index) link(v model.Visit) {
	add(idx.byDay, keyOf(v.Date), v.ID)
	if v.Status == model.VisitStatusPending && v.TechnicianID != nil {
		add(idx.pendingByTechnician, *v.TechnicianID, v.ID)
	}
}

func (idx *Index) unlink(v model.Visit) {
	remove(idx.byDay, keyOf(v.Date), v.ID)
	if v.TechnicianID != nil {
		remove(idx.pendingByTechnician, *v.TechnicianID, v.ID)
	}
}

// Each calls fn for every indexed visit, in no particular order.
func (idx *Index) Each(fn func(model.Visit)) {
	for _, v := range idx.visits {
		fn(v)
	}
}

// VisitsOnDay returns the visits dated on day, ordered by ID.
func (idx *Index) VisitsOnDay(day time.Time) []model.Visit {
	return idx.collect(idx.byDay[keyOf(DateOnly(day))])
}

// VisitsInRange returns visits dated within [from, to], ordered by date then ID.
func (idx *Index) VisitsInRange(from, to time.Time) []model.Visit {
	from, to = DateOnly(from), DateOnly(to)
	var out []model.Visit
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		out = append(out, idx.VisitsOnDay(day)...)
	}
	return out
}

// PendingForTechnician returns the technician's pending visits ordered by
// date, ties broken by ID.
func (idx *Index) PendingForTechnician(technicianID uuid.UUID) []model.Visit {
	return idx.collect(idx.pendingByTechnician[technicianID])
}

func (idx *Index) collect(ids idSet) []model.Visit {
	out := make([]model.Visit, 0, len(ids))
	for id := range ids {
		out = append(out, idx.visits[id])
	}
	SortVisits(out)
	return out
}

// SortVisits orders visits by date, then ID.
func SortVisits(visits []model.Visit) {
	sort.Slice(visits, func(i, j int) bool {
		if !visits[i].Date.Equal(visits[j].Date) {
			return visits[i].Date.Before(visits[j].Date)
		}
		return visits[i].ID < visits[j].ID
	})
}

func add[K comparable](m map[K]idSet, key K, id int64) {
	set, ok := m[key]
	if !ok {
		set = make(idSet)
		m[key] = set
	}
	set[id] = struct{}{}
}

func remove[K comparable](m map[K]idSet, key K, id int64) {
	set, ok := m[key]
	if !ok {
		return
	}
	delete(set, id)
	if len(set) == 0 {
		delete(m, key)
	}
}

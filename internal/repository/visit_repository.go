package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/pestcare-visits/internal/model"
	"github.com/nurpe/pestcare-visits/internal/schedule"
)

const visitColumns = `
	id,
	contract_id,
	client_id,
	technician_id,
	date,
	status,
	pest_type,
	chemicals,
	notes,
	completed_at,
	version,
	created_at,
	updated_at
`

// ErrConcurrentUpdate means the row changed between read and write. It cannot
// happen while the row lock is held and signals a broken invariant.
var ErrConcurrentUpdate = errors.New("visit was modified concurrently")

type VisitRepository struct {
	db *gorm.DB
}

func NewVisitRepository(db *gorm.DB) *VisitRepository {
	return &VisitRepository{db: db}
}

func insertVisit(tx *gorm.DB, visit model.Visit) (*model.Visit, error) {
	var saved model.Visit
	err := tx.Raw(`
		INSERT INTO visits (contract_id, client_id, technician_id, date, status)
		VALUES (?, ?, ?, ?::date, ?)
		RETURNING `+visitColumns,
		visit.ContractID,
		visit.ClientID,
		visit.TechnicianID,
		schedule.FormatDay(visit.Date),
		visit.Status,
	).Scan(&saved).Error
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

// AddVisit stores a single visit outside of contract generation.
func (r *VisitRepository) AddVisit(ctx context.Context, visit model.Visit) (*model.Visit, error) {
	return insertVisit(r.db.WithContext(ctx), visit)
}

func (r *VisitRepository) GetVisit(ctx context.Context, id int64) (*model.Visit, error) {
	var visit model.Visit
	if err := r.db.WithContext(ctx).Raw(`
		SELECT `+visitColumns+`
		FROM visits
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&visit).Error; err != nil {
		return nil, err
	}
	if visit.ID == 0 {
		return nil, ErrNotFound
	}
	return &visit, nil
}

func (r *VisitRepository) ListVisits(ctx context.Context) ([]model.Visit, error) {
	var visits []model.Visit
	if err := r.db.WithContext(ctx).Raw(`
		SELECT ` + visitColumns + `
		FROM visits
		ORDER BY date ASC, id ASC
	`).Scan(&visits).Error; err != nil {
		return nil, err
	}
	return visits, nil
}

func (r *VisitRepository) ListVisitsByContract(ctx context.Context, contractID uuid.UUID) ([]model.Visit, error) {
	var visits []model.Visit
	if err := r.db.WithContext(ctx).Raw(`
		SELECT `+visitColumns+`
		FROM visits
		WHERE contract_id = ?
		ORDER BY date ASC, id ASC
	`, contractID).Scan(&visits).Error; err != nil {
		return nil, err
	}
	return visits, nil
}

// MutateVisit applies fn to the visit while holding its row lock. Concurrent
// mutations of the same visit queue behind the lock and observe the committed
// result; other visits are unaffected. When fn fails nothing is written.
func (r *VisitRepository) MutateVisit(
	ctx context.Context,
	id int64,
	fn func(model.Visit) (model.Visit, error),
) (*model.Visit, error) {
	var saved model.Visit
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current model.Visit
		if err := tx.Raw(`
			SELECT `+visitColumns+`
			FROM visits
			WHERE id = ?
			FOR UPDATE
		`, id).Scan(&current).Error; err != nil {
			return err
		}
		if current.ID == 0 {
			return ErrNotFound
		}

		next, err := fn(current)
		if err != nil {
			return err
		}

		err = tx.Raw(`
			UPDATE visits
			SET
				technician_id = ?,
				date = ?::date,
				status = ?,
				pest_type = ?,
				chemicals = ?,
				notes = ?,
				completed_at = ?,
				version = version + 1,
				updated_at = NOW()
			WHERE id = ? AND version = ?
			RETURNING `+visitColumns,
			next.TechnicianID,
			schedule.FormatDay(next.Date),
			next.Status,
			next.PestType,
			next.Chemicals,
			next.Notes,
			next.CompletedAt,
			current.ID,
			current.Version,
		).Scan(&saved).Error
		if err != nil {
			return err
		}
		if saved.ID == 0 {
			return ErrConcurrentUpdate
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

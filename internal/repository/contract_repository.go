package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/pestcare-visits/internal/model"
	"github.com/nurpe/pestcare-visits/internal/schedule"
)

const contractColumns = `
	id,
	contract_number,
	client_id,
	type,
	cadence,
	start_date,
	end_date,
	visits_included,
	price,
	is_paid,
	status,
	created_at
`

type ContractRepository struct {
	db *gorm.DB
}

func NewContractRepository(db *gorm.DB) *ContractRepository {
	return &ContractRepository{db: db}
}

// CreateContract stores a contract together with its generated visits in one
// transaction. The contract number and visit IDs are drawn from sequences.
func (r *ContractRepository) CreateContract(
	ctx context.Context,
	contract model.Contract,
	drafts []model.Visit,
) (*model.Contract, []model.Visit, error) {
	var saved model.Contract
	visits := make([]model.Visit, 0, len(drafts))

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var seq int64
		if err := tx.Raw(`SELECT nextval('contract_number_seq')`).Scan(&seq).Error; err != nil {
			return err
		}

		err := tx.Raw(`
			INSERT INTO contracts (
				contract_number,
				client_id,
				type,
				cadence,
				start_date,
				end_date,
				visits_included,
				price,
				is_paid,
				status
			) VALUES (?, ?, ?, ?, ?::date, ?::date, ?, ?, ?, ?)
			RETURNING `+contractColumns,
			contractNumber(contract.CreatedAt, seq),
			contract.ClientID,
			contract.Type,
			contract.Cadence,
			schedule.FormatDay(contract.StartDate),
			schedule.FormatDay(contract.EndDate),
			contract.VisitsIncluded,
			contract.Price,
			contract.IsPaid,
			contract.Status,
		).Scan(&saved).Error
		if err != nil {
			return err
		}

		for _, draft := range drafts {
			draft.ContractID = saved.ID
			visit, err := insertVisit(tx, draft)
			if err != nil {
				return err
			}
			visits = append(visits, *visit)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &saved, visits, nil
}

func (r *ContractRepository) GetContract(ctx context.Context, id uuid.UUID) (*model.Contract, error) {
	var contract model.Contract
	if err := r.db.WithContext(ctx).Raw(`
		SELECT `+contractColumns+`
		FROM contracts
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&contract).Error; err != nil {
		return nil, err
	}
	if contract.ID == uuid.Nil {
		return nil, ErrNotFound
	}
	return &contract, nil
}

func (r *ContractRepository) ListContracts(ctx context.Context, clientID *uuid.UUID) ([]model.Contract, error) {
	query := `SELECT ` + contractColumns + ` FROM contracts`
	var args []interface{}
	if clientID != nil {
		query += " WHERE client_id = ?"
		args = append(args, *clientID)
	}
	query += " ORDER BY start_date DESC, contract_number ASC"

	var contracts []model.Contract
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&contracts).Error; err != nil {
		return nil, err
	}
	return contracts, nil
}

func (r *ContractRepository) UpdateContractStatus(
	ctx context.Context,
	id uuid.UUID,
	status model.ContractStatus,
) (*model.Contract, error) {
	var contract model.Contract
	if err := r.db.WithContext(ctx).Raw(`
		UPDATE contracts
		SET status = ?
		WHERE id = ?
		RETURNING `+contractColumns,
		status, id,
	).Scan(&contract).Error; err != nil {
		return nil, err
	}
	if contract.ID == uuid.Nil {
		return nil, ErrNotFound
	}
	return &contract, nil
}

// ExpireContracts marks active contracts whose window ended before asOf.
func (r *ContractRepository) ExpireContracts(ctx context.Context, asOf time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Exec(`
		UPDATE contracts
		SET status = ?
		WHERE status = ? AND end_date < ?::date
	`, model.ContractStatusExpired, model.ContractStatusActive, schedule.FormatDay(asOf))
	return result.RowsAffected, result.Error
}

func (r *ContractRepository) CountContracts(ctx context.Context, status model.ContractStatus) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Raw(`
		SELECT COUNT(*) FROM contracts WHERE status = ?
	`, status).Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func contractNumber(createdAt time.Time, seq int64) string {
	return fmt.Sprintf("CTR-%d-%03d", createdAt.Year(), seq)
}

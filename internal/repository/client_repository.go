package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/pestcare-visits/internal/model"
)

type ClientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

func (r *ClientRepository) CreateClient(ctx context.Context, client model.Client) (*model.Client, error) {
	var saved model.Client
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO clients (name, phone, email, emirate, address, unit_number, property_type)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id, name, phone, email, emirate, address, unit_number, property_type, created_at
	`,
		client.Name,
		client.Phone,
		client.Email,
		client.Emirate,
		client.Address,
		client.UnitNumber,
		client.PropertyType,
	).Scan(&saved).Error
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *ClientRepository) GetClient(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	var client model.Client
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, name, phone, email, emirate, address, unit_number, property_type, created_at
		FROM clients
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&client).Error; err != nil {
		return nil, err
	}
	if client.ID == uuid.Nil {
		return nil, ErrNotFound
	}
	return &client, nil
}

// ListClients returns clients whose name (case-insensitive) or phone contains search.
func (r *ClientRepository) ListClients(ctx context.Context, search string) ([]model.Client, error) {
	query := `
		SELECT id, name, phone, email, emirate, address, unit_number, property_type, created_at
		FROM clients
	`
	var args []interface{}
	if search = strings.TrimSpace(search); search != "" {
		query += " WHERE name ILIKE ? OR phone LIKE ?"
		pattern := "%" + escapeLike(search) + "%"
		args = append(args, pattern, pattern)
	}
	query += " ORDER BY name ASC"

	var clients []model.Client
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

func (r *ClientRepository) CountClients(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Raw(`SELECT COUNT(*) FROM clients`).Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *ClientRepository) CreateTechnician(ctx context.Context, tech model.Technician) (*model.Technician, error) {
	var saved model.Technician
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO technicians (name, role, email, color)
		VALUES (?, ?, ?, ?)
		RETURNING id, name, role, email, color
	`, tech.Name, tech.Role, tech.Email, tech.Color).Scan(&saved).Error
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *ClientRepository) GetTechnician(ctx context.Context, id uuid.UUID) (*model.Technician, error) {
	var tech model.Technician
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, name, role, email, color
		FROM technicians
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&tech).Error; err != nil {
		return nil, err
	}
	if tech.ID == uuid.Nil {
		return nil, ErrNotFound
	}
	return &tech, nil
}

func (r *ClientRepository) ListTechnicians(ctx context.Context) ([]model.Technician, error) {
	var techs []model.Technician
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, name, role, email, color
		FROM technicians
		ORDER BY name ASC
	`).Scan(&techs).Error; err != nil {
		return nil, err
	}
	return techs, nil
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)
	return replacer.Replace(value)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/nurpe/pestcare-visits/internal/model"
	"github.com/nurpe/pestcare-visits/internal/repository"
)

const defaultTechnicianColor = "#3b82f6"

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

type ClientService struct {
	store ClientStore
}

func NewClientService(store ClientStore) *ClientService {
	return &ClientService{store: store}
}

type CreateClientInput struct {
	Name         string
	Phone        string
	Email        string
	Emirate      string
	Address      string
	UnitNumber   string
	PropertyType model.PropertyType
	Principal    model.Principal
}

func (s *ClientService) CreateClient(ctx context.Context, input CreateClientInput) (*model.Client, error) {
	if !input.Principal.IsOffice() {
		return nil, ErrPermissionDenied
	}
	name := strings.TrimSpace(input.Name)
	phone := strings.TrimSpace(input.Phone)
	if name == "" || phone == "" {
		return nil, fmt.Errorf("%w: name and phone are required", ErrInvalidInput)
	}

	propertyType := input.PropertyType
	switch propertyType {
	case "":
		propertyType = model.PropertyResidential
	case model.PropertyResidential, model.PropertyCommercial, model.PropertyIndustrial:
	default:
		return nil, fmt.Errorf("%w: unknown property type %q", ErrInvalidInput, propertyType)
	}

	client := model.Client{
		Name:         name,
		Phone:        phone,
		Email:        strings.TrimSpace(input.Email),
		Emirate:      strings.TrimSpace(input.Emirate),
		Address:      strings.TrimSpace(input.Address),
		PropertyType: propertyType,
	}
	if unit := strings.TrimSpace(input.UnitNumber); unit != "" {
		client.UnitNumber = &unit
	}
	return s.store.CreateClient(ctx, client)
}

func (s *ClientService) GetClient(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	client, err := s.store.GetClient(ctx, id)
	if err != nil {
		return nil, translateNotFound(err)
	}
	return client, nil
}

func (s *ClientService) ListClients(ctx context.Context, search string) ([]model.Client, error) {
	return s.store.ListClients(ctx, search)
}

type CreateTechnicianInput struct {
	Name      string
	Role      string
	Email     string
	Color     string
	Principal model.Principal
}

func (s *ClientService) CreateTechnician(ctx context.Context, input CreateTechnicianInput) (*model.Technician, error) {
	if !input.Principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	color := strings.TrimSpace(input.Color)
	if color == "" {
		color = defaultTechnicianColor
	}
	if !colorPattern.MatchString(color) {
		return nil, fmt.Errorf("%w: color must look like #rrggbb", ErrInvalidInput)
	}
	return s.store.CreateTechnician(ctx, model.Technician{
		Name:  name,
		Role:  strings.TrimSpace(input.Role),
		Email: strings.TrimSpace(input.Email),
		Color: color,
	})
}

func (s *ClientService) ListTechnicians(ctx context.Context) ([]model.Technician, error) {
	return s.store.ListTechnicians(ctx)
}

func translateNotFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

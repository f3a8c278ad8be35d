package service

import (
	"context"

	"github.com/billflow/billflow-api/internal/domain/entity"
	"github.com/billflow/billflow-api/internal/domain/repository"
	"github.com/billflow/billflow-api/pkg/apperror"
	"github.com/billflow/billflow-api/pkg/pagination"
	"github.com/google/uuid"
)

// ClientService handles client-related operations
type ClientService struct {
	clientRepo repository.ClientRepository
}

// NewClientService creates a new client service
func NewClientService(clientRepo repository.ClientRepository) *ClientService {
	return &ClientService{clientRepo: clientRepo}
}

// CreateClientInput represents the create client input
type CreateClientInput struct {
	UserID       uuid.UUID
	Name         string
	CompanyName  *string
	Email        *string
	Phone        *string
	TaxNumber    *string
	BillingEmail *string
	Address      *string
	Notes        *string
	Currency     string
}

// CreateClient creates a new client
func (s *ClientService) CreateClient(ctx context.Context, input *CreateClientInput) (*entity.Client, error) {
	currency := input.Currency
	if currency == "" {
		currency = "USD"
	}

	client := &entity.Client{
		UserID:       input.UserID,
		Name:         input.Name,
		CompanyName:  input.CompanyName,
		Email:        input.Email,
		Phone:        input.Phone,
		TaxNumber:    input.TaxNumber,
		BillingEmail: input.BillingEmail,
		Address:      input.Address,
		Notes:        input.Notes,
		Currency:     currency,
	}

	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, err
	}

	return client, nil
}

// GetClient retrieves a client by ID
func (s *ClientService) GetClient(ctx context.Context, id uuid.UUID) (*entity.Client, error) {
	client, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, apperror.NewNotFoundError("Client")
	}
	return client, nil
}

// ListClients lists clients. If isSuperAdmin is true, returns all clients.
func (s *ClientService) ListClients(ctx context.Context, userID uuid.UUID, params *pagination.PaginationParams, search string, isSuperAdmin bool) (*pagination.PaginatedResult[entity.Client], error) {
	clients, total, err := s.clientRepo.List(ctx, userID, params, search, isSuperAdmin)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(clients, pag), nil
}

// UpdateClientInput represents the update client input
type UpdateClientInput struct {
	UserID       uuid.UUID
	ID           uuid.UUID
	IsSuperAdmin bool
	Name         *string
	CompanyName  *string
	Email        *string
	Phone        *string
	TaxNumber    *string
	BillingEmail *string
	Address      *string
	Notes        *string
	Currency     *string
}

// UpdateClient updates an existing client
func (s *ClientService) UpdateClient(ctx context.Context, input *UpdateClientInput) (*entity.Client, error) {
	client, err := s.clientRepo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, apperror.NewNotFoundError("Client")
	}

	// Check permission
	if !input.IsSuperAdmin && client.UserID != input.UserID {
		return nil, apperror.ErrForbidden
	}

	if input.Name != nil {
		client.Name = *input.Name
	}
	if input.CompanyName != nil {
		client.CompanyName = input.CompanyName
	}
	if input.Email != nil {
		client.Email = input.Email
	}
	if input.Phone != nil {
		client.Phone = input.Phone
	}
	if input.TaxNumber != nil {
		client.TaxNumber = input.TaxNumber
	}
	if input.BillingEmail != nil {
		client.BillingEmail = input.BillingEmail
	}
	if input.Address != nil {
		client.Address = input.Address
	}
	if input.Notes != nil {
		client.Notes = input.Notes
	}
	if input.Currency != nil {
		client.Currency = *input.Currency
	}

	if err := s.clientRepo.Update(ctx, client); err != nil {
		return nil, err
	}

	return client, nil
}

// DeleteClient deletes a client
func (s *ClientService) DeleteClient(ctx context.Context, userID, id uuid.UUID, isSuperAdmin bool) error {
	client, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if client == nil {
		return apperror.NewNotFoundError("Client")
	}

	if !isSuperAdmin && client.UserID != userID {
		return apperror.ErrForbidden
	}

	return s.clientRepo.Delete(ctx, id)
}

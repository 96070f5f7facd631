package support

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/mknind/backoffice/internal/catalog"
	"github.com/mknind/backoffice/pkg/db"
	"github.com/mknind/backoffice/pkg/db/models"
	"github.com/mknind/backoffice/pkg/enums"
	pkgerrors "github.com/mknind/backoffice/pkg/errors"
	"github.com/mknind/backoffice/pkg/logger"
)

type ServiceParams struct {
	Repo      Repository
	Customers Customers
	Logger    *logger.Logger
}

// Service raises tickets for a customer and lets admins triage them.
type Service interface {
	Create(ctx context.Context, customerID uuid.UUID, req CreateTicketRequest) (*models.SupportTicket, error)
	Get(ctx context.Context, id uuid.UUID) (*models.SupportTicket, error)
	GetForCustomer(ctx context.Context, customerID, id uuid.UUID) (*models.SupportTicket, error)
	List(ctx context.Context, filters Filters) ([]models.SupportTicket, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateTicketRequest) (*models.SupportTicket, error)
	ChangeStatus(ctx context.Context, id uuid.UUID, req StatusRequest) (*models.SupportTicket, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo      Repository
	customers Customers
	logg      *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "support repository is required")
	}
	if params.Customers == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer lookup is required")
	}
	if params.Logger == nil {
		params.Logger = logger.Nop()
	}
	return &service{repo: params.Repo, customers: params.Customers, logg: params.Logger}, nil
}

func (s *service) Create(ctx context.Context, customerID uuid.UUID, req CreateTicketRequest) (*models.SupportTicket, error) {
	title, description := strings.TrimSpace(req.Title), strings.TrimSpace(req.Description)
	if title == "" || description == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title and description are required")
	}
	customer, err := s.customers.FindCustomer(ctx, customerID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) || db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to load customer")
	}

	ticket := &models.SupportTicket{
		CustomerID:   customer.ID,
		Title:        title,
		Description:  description,
		Status:       enums.TicketStatusPending,
		CustomerInfo: models.CustomerInfoOf(*customer),
	}
	if err := s.repo.Create(ctx, ticket); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to create support ticket")
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"ticket_id":   ticket.ID.String(),
		"customer_id": customer.ID.String(),
	}), "support.ticket.created")
	return ticket, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.SupportTicket, error) {
	ticket, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapStoreError(err, "failed to load support ticket")
	}
	return ticket, nil
}

// GetForCustomer hides tickets raised by other customers behind NotFound.
func (s *service) GetForCustomer(ctx context.Context, customerID, id uuid.UUID) (*models.SupportTicket, error) {
	ticket, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if ticket.CustomerID != customerID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "support ticket not found")
	}
	return ticket, nil
}

func (s *service) List(ctx context.Context, filters Filters) ([]models.SupportTicket, error) {
	tickets, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to list support tickets")
	}
	return tickets, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, req UpdateTicketRequest) (*models.SupportTicket, error) {
	if req.Title == nil && req.Description == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields provided to update")
	}
	ticket, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		if ticket.Title = strings.TrimSpace(*req.Title); ticket.Title == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "title must not be blank")
		}
	}
	if req.Description != nil {
		if ticket.Description = strings.TrimSpace(*req.Description); ticket.Description == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "description must not be blank")
		}
	}
	if err := s.repo.Update(ctx, ticket); err != nil {
		return nil, mapStoreError(err, "failed to update support ticket")
	}
	s.logg.Info(s.logg.WithField(ctx, "ticket_id", id.String()), "support.ticket.updated")
	return ticket, nil
}

func (s *service) ChangeStatus(ctx context.Context, id uuid.UUID, req StatusRequest) (*models.SupportTicket, error) {
	status, err := enums.ParseTicketStatus(req.Status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "status must be pending or resolved")
	}
	ticket, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	ticket.Status = status
	if err := s.repo.Update(ctx, ticket); err != nil {
		return nil, mapStoreError(err, "failed to update support ticket status")
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"ticket_id": id.String(),
		"status":    status.String(),
	}), "support.ticket.status_changed")
	return ticket, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapStoreError(err, "failed to delete support ticket")
	}
	s.logg.Info(s.logg.WithField(ctx, "ticket_id", id.String()), "support.ticket.deleted")
	return nil
}

func mapStoreError(err error, msg string) error {
	if db.IsNotFound(err) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "support ticket not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, msg)
}

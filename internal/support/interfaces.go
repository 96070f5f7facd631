// Package support keeps customer support tickets. A ticket stores a
// snapshot of the customer's contact details taken when it is raised.
package support

import (
	"context"

	"github.com/google/uuid"

	"github.com/mknind/backoffice/pkg/db/models"
	"github.com/mknind/backoffice/pkg/enums"
)

// Filters narrows the ticket list. Nil fields do not filter.
type Filters struct {
	Status     *enums.TicketStatus
	CustomerID *uuid.UUID
}

type Repository interface {
	Create(ctx context.Context, ticket *models.SupportTicket) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.SupportTicket, error)
	List(ctx context.Context, filters Filters) ([]models.SupportTicket, error)
	Update(ctx context.Context, ticket *models.SupportTicket) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Customers is the catalog lookup ticket creation needs.
type Customers interface {
	FindCustomer(ctx context.Context, id uuid.UUID) (*models.Customer, error)
}

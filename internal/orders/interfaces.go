package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mknind/backoffice/pkg/db/models"
	"github.com/mknind/backoffice/pkg/enums"
)

// Filters narrows the order list. Nil fields do not filter.
type Filters struct {
	OrderStatus   *enums.OrderStatus
	PaymentStatus *enums.PaymentStatus
	CustomerID    *uuid.UUID
}

// Repository defines persistence operations for the orders table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, filters Filters) ([]models.Order, error)
	Update(ctx context.Context, order *models.Order) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteMany(ctx context.Context, ids []uuid.UUID) (int64, error)
	LatestInvoiceNo(ctx context.Context) (string, bool, error)
	HighestInvoiceNo(ctx context.Context, prefix string) (string, bool, error)
	Summarize(ctx context.Context) (Summary, error)
}

// Catalog is the slice of the catalog the order service reads.
type Catalog interface {
	FindCustomer(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	FindCustomersByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Customer, error)
	FindProductsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error)
}

// InvoiceSequencer hands out invoice numbers.
type InvoiceSequencer interface {
	Next(ctx context.Context) (string, error)
	Resync(ctx context.Context) error
}

package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/mknind/backoffice/pkg/db/models"
)

var (
	// ErrNotFound is returned by every Repository implementation when a
	// customer or product id does not exist.
	ErrNotFound = errors.New("catalog: record not found")
	// ErrDuplicate signals a unique email/phone collision.
	ErrDuplicate = errors.New("catalog: duplicate record")
)

// ProductFilters narrows the product list. The zero value lists every
// product.
type ProductFilters struct {
	// ActiveOnly keeps products that are switched on and visible in the shop.
	ActiveOnly    bool
	TopSellerOnly bool
}

// Repository persists customers and products together with their embedded
// address and variant lists.
type Repository interface {
	CreateCustomer(ctx context.Context, customer *models.Customer) error
	UpdateCustomer(ctx context.Context, customer *models.Customer) error
	DeleteCustomer(ctx context.Context, id uuid.UUID) error
	FindCustomer(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	FindCustomersByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Customer, error)
	ListCustomers(ctx context.Context) ([]models.Customer, error)

	CreateProduct(ctx context.Context, product *models.Product) error
	UpdateProduct(ctx context.Context, product *models.Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindProductsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error)
	ListProducts(ctx context.Context, filters ProductFilters) ([]models.Product, error)
}

// uniqueIDs drops nil and repeated ids while keeping first-seen order.
func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

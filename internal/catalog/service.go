package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/mknind/backoffice/pkg/db/models"
	pkgerrors "github.com/mknind/backoffice/pkg/errors"
)

// ServiceParams groups dependencies for the catalog service.
type ServiceParams struct {
	Repo Repository
}

// Service is the customer and product CRUD surface used to seed the
// embedded address and variant lists that orders refer into.
type Service interface {
	CreateCustomer(ctx context.Context, input CustomerInput) (*models.Customer, error)
	GetCustomer(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	ListCustomers(ctx context.Context) ([]models.Customer, error)
	UpdateCustomer(ctx context.Context, id uuid.UUID, input CustomerInput) (*models.Customer, error)
	DeleteCustomer(ctx context.Context, id uuid.UUID) error

	CreateProduct(ctx context.Context, input ProductInput) (*models.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListProducts(ctx context.Context, filters ProductFilters) ([]models.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog repository is required")
	}
	return &service{repo: params.Repo}, nil
}

func (s *service) CreateCustomer(ctx context.Context, input CustomerInput) (*models.Customer, error) {
	var customer models.Customer
	input.apply(&customer)
	if err := validateAddressIDs(customer.Addresses); err != nil {
		return nil, err
	}
	if err := s.repo.CreateCustomer(ctx, &customer); err != nil {
		return nil, mapError(err, "customer")
	}
	return &customer, nil
}

func (s *service) GetCustomer(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	customer, err := s.repo.FindCustomer(ctx, id)
	if err != nil {
		return nil, mapError(err, "customer")
	}
	return customer, nil
}

func (s *service) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	customers, err := s.repo.ListCustomers(ctx)
	if err != nil {
		return nil, mapError(err, "customer")
	}
	return customers, nil
}

func (s *service) UpdateCustomer(ctx context.Context, id uuid.UUID, input CustomerInput) (*models.Customer, error) {
	customer, err := s.repo.FindCustomer(ctx, id)
	if err != nil {
		return nil, mapError(err, "customer")
	}
	input.apply(customer)
	if err := validateAddressIDs(customer.Addresses); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateCustomer(ctx, customer); err != nil {
		return nil, mapError(err, "customer")
	}
	return customer, nil
}

func (s *service) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	return mapError(s.repo.DeleteCustomer(ctx, id), "customer")
}

func (s *service) CreateProduct(ctx context.Context, input ProductInput) (*models.Product, error) {
	var product models.Product
	input.apply(&product)
	if err := validateVariants(product.Variants); err != nil {
		return nil, err
	}
	if err := s.repo.CreateProduct(ctx, &product); err != nil {
		return nil, mapError(err, "product")
	}
	return &product, nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindProduct(ctx, id)
	if err != nil {
		return nil, mapError(err, "product")
	}
	return product, nil
}

func (s *service) ListProducts(ctx context.Context, filters ProductFilters) ([]models.Product, error) {
	products, err := s.repo.ListProducts(ctx, filters)
	if err != nil {
		return nil, mapError(err, "product")
	}
	return products, nil
}

func (s *service) UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) (*models.Product, error) {
	product, err := s.repo.FindProduct(ctx, id)
	if err != nil {
		return nil, mapError(err, "product")
	}
	input.apply(product)
	if err := validateVariants(product.Variants); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateProduct(ctx, product); err != nil {
		return nil, mapError(err, "product")
	}
	return product, nil
}

func (s *service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return mapError(s.repo.DeleteProduct(ctx, id), "product")
}

func validateAddressIDs(addrs []models.Address) error {
	seen := make(map[uuid.UUID]struct{}, len(addrs))
	for _, a := range addrs {
		if _, dup := seen[a.ID]; dup {
			return pkgerrors.New(pkgerrors.CodeValidation, "address ids must be unique").
				WithDetails(map[string]any{"id": a.ID})
		}
		seen[a.ID] = struct{}{}
	}
	return nil
}

func validateVariants(variants []models.Variant) error {
	seen := make(map[uuid.UUID]struct{}, len(variants))
	for _, v := range variants {
		if v.Price.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "variant price must not be negative").
				WithDetails(map[string]any{"id": v.ID})
		}
		if _, dup := seen[v.ID]; dup {
			return pkgerrors.New(pkgerrors.CodeValidation, "variant ids must be unique").
				WithDetails(map[string]any{"id": v.ID})
		}
		seen[v.ID] = struct{}{}
	}
	return nil
}

func mapError(err error, entity string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound):
		return pkgerrors.New(pkgerrors.CodeNotFound, entity+" not found")
	case errors.Is(err, ErrDuplicate):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, entity+" conflicts with an existing record")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "catalog store unavailable")
}

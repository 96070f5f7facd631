package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/mknind/backoffice/internal/catalog"
	"github.com/mknind/backoffice/internal/resolver"
	"github.com/mknind/backoffice/pkg/db"
	"github.com/mknind/backoffice/pkg/db/models"
	pkgerrors "github.com/mknind/backoffice/pkg/errors"
	"github.com/mknind/backoffice/pkg/logger"
	"github.com/mknind/backoffice/pkg/metrics"
)

const defaultMaxRetries = 8

// Catalog is the read surface the cart validates and resolves against.
type Catalog interface {
	FindCustomer(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	FindCustomersByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Customer, error)
	FindProductsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error)
}

// ServiceParams groups dependencies for the cart service.
type ServiceParams struct {
	Repo       Repository
	Catalog    Catalog
	Resolver   *resolver.Resolver
	Logger     *logger.Logger
	Metrics    *metrics.OrderMetrics
	MaxRetries int
}

// ItemInput is a cart line as submitted by the client.
type ItemInput struct {
	Product  uuid.UUID  `json:"product" validate:"required"`
	Variant  *uuid.UUID `json:"variant,omitempty"`
	Quantity int        `json:"quantity" validate:"required,min=1"`
}

type AddItemRequest struct {
	ProductID uuid.UUID  `json:"productId" validate:"required"`
	VariantID *uuid.UUID `json:"variantId,omitempty"`
	Quantity  int        `json:"quantity" validate:"required,min=1"`
}

type ReplaceItemsRequest struct {
	CartItems []ItemInput `json:"cartItems" validate:"required,dive"`
}

type WishlistAddRequest struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
}

type ReplaceWishlistRequest struct {
	WishlistItems []uuid.UUID `json:"wishlistItems" validate:"required"`
}

// Service is the per-customer cart and wishlist aggregator.
type Service interface {
	Get(ctx context.Context, customerID uuid.UUID) (*models.CartWishlist, error)
	GetCartItems(ctx context.Context, customerID uuid.UUID) ([]resolver.ResolvedCartItem, error)
	AddToCart(ctx context.Context, customerID uuid.UUID, req AddItemRequest) (*models.CartWishlist, error)
	RemoveFromCart(ctx context.Context, customerID, productID uuid.UUID, variantID *uuid.UUID) (*models.CartWishlist, error)
	ClearCart(ctx context.Context, customerID uuid.UUID) (*models.CartWishlist, error)
	UpdateCartItems(ctx context.Context, customerID uuid.UUID, items []ItemInput) (*models.CartWishlist, error)
	GetWishlist(ctx context.Context, customerID uuid.UUID) ([]resolver.Ref[resolver.ProductSummary], error)
	AddToWishlist(ctx context.Context, customerID, productID uuid.UUID) (*models.CartWishlist, error)
	RemoveFromWishlist(ctx context.Context, customerID, productID uuid.UUID) (*models.CartWishlist, error)
	UpdateWishlistItems(ctx context.Context, customerID uuid.UUID, ids []uuid.UUID) (*models.CartWishlist, error)
}

type service struct {
	repo       Repository
	catalog    Catalog
	resolver   *resolver.Resolver
	logg       *logger.Logger
	metrics    *metrics.OrderMetrics
	maxRetries int
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart repository is required")
	}
	if params.Catalog == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog is required")
	}
	if params.Resolver == nil {
		params.Resolver = resolver.New(params.Metrics)
	}
	if params.Logger == nil {
		params.Logger = logger.Nop()
	}
	if params.MaxRetries <= 0 {
		params.MaxRetries = defaultMaxRetries
	}
	return &service{
		repo:       params.Repo,
		catalog:    params.Catalog,
		resolver:   params.Resolver,
		logg:       params.Logger,
		metrics:    params.Metrics,
		maxRetries: params.MaxRetries,
	}, nil
}

func (s *service) Get(ctx context.Context, customerID uuid.UUID) (*models.CartWishlist, error) {
	doc, err := s.repo.FindByCustomer(ctx, customerID)
	if err != nil {
		return nil, mapLoadError(err)
	}
	return doc, nil
}

func (s *service) GetCartItems(ctx context.Context, customerID uuid.UUID) ([]resolver.ResolvedCartItem, error) {
	doc, err := s.Get(ctx, customerID)
	if err != nil {
		return nil, err
	}
	items, _, err := s.resolver.ResolveCart(ctx, s.catalog, models.CartWishlist{CartItems: doc.CartItems})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to resolve cart")
	}
	return items, nil
}

func (s *service) GetWishlist(ctx context.Context, customerID uuid.UUID) ([]resolver.Ref[resolver.ProductSummary], error) {
	doc, err := s.Get(ctx, customerID)
	if err != nil {
		return nil, err
	}
	_, wishlist, err := s.resolver.ResolveCart(ctx, s.catalog, models.CartWishlist{WishlistItems: doc.WishlistItems})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to resolve wishlist")
	}
	return wishlist, nil
}

func (s *service) AddToCart(ctx context.Context, customerID uuid.UUID, req AddItemRequest) (*models.CartWishlist, error) {
	if req.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if err := s.checkLines(ctx, []ItemInput{{Product: req.ProductID, Variant: req.VariantID, Quantity: req.Quantity}}); err != nil {
		return nil, err
	}
	return s.mutate(ctx, customerID, "add_to_cart", true, AddItem(req.ProductID, req.VariantID, req.Quantity))
}

func (s *service) RemoveFromCart(ctx context.Context, customerID, productID uuid.UUID, variantID *uuid.UUID) (*models.CartWishlist, error) {
	return s.mutate(ctx, customerID, "remove_from_cart", false, RemoveItem(productID, variantID))
}

func (s *service) ClearCart(ctx context.Context, customerID uuid.UUID) (*models.CartWishlist, error) {
	return s.mutate(ctx, customerID, "clear_cart", false, Clear())
}

func (s *service) UpdateCartItems(ctx context.Context, customerID uuid.UUID, items []ItemInput) (*models.CartWishlist, error) {
	if err := s.checkLines(ctx, items); err != nil {
		return nil, err
	}
	lines := make([]models.CartItem, 0, len(items))
	for _, item := range items {
		lines = append(lines, models.CartItem{ProductID: item.Product, VariantID: item.Variant, Quantity: item.Quantity})
	}
	return s.mutate(ctx, customerID, "replace_cart", true, ReplaceItems(lines))
}

func (s *service) AddToWishlist(ctx context.Context, customerID, productID uuid.UUID) (*models.CartWishlist, error) {
	if err := s.checkProducts(ctx, []uuid.UUID{productID}); err != nil {
		return nil, err
	}
	return s.mutate(ctx, customerID, "add_to_wishlist", true, AddToWishlist(productID))
}

func (s *service) RemoveFromWishlist(ctx context.Context, customerID, productID uuid.UUID) (*models.CartWishlist, error) {
	return s.mutate(ctx, customerID, "remove_from_wishlist", false, RemoveFromWishlist(productID))
}

func (s *service) UpdateWishlistItems(ctx context.Context, customerID uuid.UUID, ids []uuid.UUID) (*models.CartWishlist, error) {
	if err := s.checkProducts(ctx, ids); err != nil {
		return nil, err
	}
	return s.mutate(ctx, customerID, "replace_wishlist", true, ReplaceWishlist(ids))
}

// mutate loads the customer's document, applies fn and writes it back
// with a version check, retrying from a fresh read on a lost race. When
// create is set a missing document is inserted; a concurrent insert that
// wins the unique customer index sends us round the loop again.
func (s *service) mutate(ctx context.Context, customerID uuid.UUID, op string, create bool, fn Mutation) (*models.CartWishlist, error) {
	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		doc, err := s.repo.FindByCustomer(ctx, customerID)
		switch {
		case err == nil:
			fn(doc)
			won, err := s.repo.SaveIfVersion(ctx, doc)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to save cart")
			}
			if won {
				return doc, nil
			}
		case db.IsNotFound(err):
			if !create {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found for this customer")
			}
			if attempt == 1 {
				if err := s.checkCustomer(ctx, customerID); err != nil {
					return nil, err
				}
			}
			doc = &models.CartWishlist{CustomerID: customerID}
			fn(doc)
			err := s.repo.Insert(ctx, doc)
			if err == nil {
				s.logg.Info(s.logg.WithField(ctx, "customer_id", customerID.String()), "cart.created")
				return doc, nil
			}
			if !db.IsUniqueViolation(err, CustomerConstraint) && !db.IsUniqueViolation(err, "cart_wishlists.customer_id") {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to create cart")
			}
		default:
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to load cart")
		}

		s.metrics.CartRetry(op)
		s.logg.Debug(s.logg.WithFields(ctx, map[string]any{
			"customer_id": customerID.String(),
			"op":          op,
			"attempt":     attempt,
		}), "cart.merge.retry")
	}
	return nil, pkgerrors.New(pkgerrors.CodeConflict, "cart is being modified concurrently, try again")
}

func (s *service) checkCustomer(ctx context.Context, customerID uuid.UUID) error {
	if _, err := s.catalog.FindCustomer(ctx, customerID); err != nil {
		if errors.Is(err, catalog.ErrNotFound) || db.IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to load customer")
	}
	return nil
}

func (s *service) checkLines(ctx context.Context, items []ItemInput) error {
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.Product)
	}
	products, err := s.catalog.FindProductsByIDs(ctx, ids)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to load products")
	}
	for i, item := range items {
		if item.Quantity < 1 {
			return itemError(i, "quantity must be at least 1")
		}
		product, ok := products[item.Product]
		if !ok {
			return itemError(i, "product not found")
		}
		if item.Variant != nil {
			if _, ok := product.FindVariant(*item.Variant); !ok {
				return itemError(i, "variant not found")
			}
		}
	}
	return nil
}

func (s *service) checkProducts(ctx context.Context, ids []uuid.UUID) error {
	products, err := s.catalog.FindProductsByIDs(ctx, ids)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to load products")
	}
	for i, id := range ids {
		if _, ok := products[id]; !ok {
			return itemError(i, "product not found")
		}
	}
	return nil
}

func itemError(index int, msg string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, "invalid cart item").
		WithDetails(map[string]any{"index": index, "error": msg})
}

func mapLoadError(err error) error {
	if db.IsNotFound(err) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart not found for this customer")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to load cart")
}

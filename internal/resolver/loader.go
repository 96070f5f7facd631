package resolver

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/mknind/backoffice/pkg/db/models"
)

// Lookup is the batch read surface of the catalog.
type Lookup interface {
	FindCustomersByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Customer, error)
	FindProductsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error)
}

// ResolveOrders fetches every customer and product the orders refer to in
// two concurrent batch lookups, then resolves each order. Store failures
// are returned; missing documents become markers.
func (r *Resolver) ResolveOrders(ctx context.Context, lookup Lookup, orders []models.Order) ([]ResolvedOrder, error) {
	out := make([]ResolvedOrder, 0, len(orders))
	if len(orders) == 0 {
		return out, nil
	}

	customerIDs := make([]uuid.UUID, 0, len(orders))
	var productIDs []uuid.UUID
	for _, o := range orders {
		customerIDs = append(customerIDs, o.CustomerID)
		for _, line := range o.Lines {
			productIDs = append(productIDs, line.ProductID)
		}
	}

	var (
		customers map[uuid.UUID]models.Customer
		products  map[uuid.UUID]models.Product
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		customers, err = lookup.FindCustomersByIDs(gctx, customerIDs)
		return err
	})
	g.Go(func() error {
		var err error
		products, err = lookup.FindProductsByIDs(gctx, productIDs)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, o := range orders {
		var customer *models.Customer
		if c, ok := customers[o.CustomerID]; ok {
			customer = &c
		}
		out = append(out, r.ResolveOrder(o, customer, products))
	}
	return out, nil
}

// ResolveCart resolves both lists of a cart document with a single
// product lookup.
func (r *Resolver) ResolveCart(ctx context.Context, lookup Lookup, doc models.CartWishlist) ([]ResolvedCartItem, []Ref[ProductSummary], error) {
	ids := make([]uuid.UUID, 0, len(doc.CartItems)+len(doc.WishlistItems))
	for _, item := range doc.CartItems {
		ids = append(ids, item.ProductID)
	}
	ids = append(ids, doc.WishlistItems...)

	products, err := lookup.FindProductsByIDs(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	return r.ResolveCartItems(doc.CartItems, products), r.ResolveWishlist(doc.WishlistItems, products), nil
}

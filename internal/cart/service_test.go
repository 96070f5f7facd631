package cart

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mknind/backoffice/internal/catalog"
	"github.com/mknind/backoffice/pkg/db/dbtest"
	"github.com/mknind/backoffice/pkg/db/models"
	pkgerrors "github.com/mknind/backoffice/pkg/errors"
	"github.com/mknind/backoffice/pkg/metrics"
)

type fixture struct {
	svc      Service
	repo     Repository
	catalog  catalog.Repository
	customer uuid.UUID
	product  *models.Product
	variant  uuid.UUID
}

func newFixture(t *testing.T, retries int) *fixture {
	t.Helper()
	ctx := context.Background()
	conn := dbtest.Open(t).DB()

	f := &fixture{repo: NewRepository(conn), catalog: catalog.NewRepository(conn), variant: uuid.New()}
	customer := &models.Customer{FirstName: "Nia", LastName: "Das", Email: "nia@example.com", Phone: "9000000123"}
	require.NoError(t, f.catalog.CreateCustomer(ctx, customer))
	f.customer = customer.ID
	f.product = &models.Product{
		ProductName: "Jaggery",
		Variants:    []models.Variant{{ID: f.variant, Weight: "1kg", Price: decimal.NewFromInt(90)}},
	}
	require.NoError(t, f.catalog.CreateProduct(ctx, f.product))

	svc, err := NewService(ServiceParams{
		Repo:       f.repo,
		Catalog:    f.catalog,
		Metrics:    metrics.NewOrderMetrics(prometheus.NewRegistry()),
		MaxRetries: retries,
	})
	require.NoError(t, err)
	f.svc = svc
	return f
}

func (f *fixture) add(t *testing.T, qty int) *models.CartWishlist {
	t.Helper()
	v := f.variant
	doc, err := f.svc.AddToCart(context.Background(), f.customer, AddItemRequest{ProductID: f.product.ID, VariantID: &v, Quantity: qty})
	require.NoError(t, err)
	return doc
}

func TestReadsWithoutDocumentAreNotFound(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	_, err := f.svc.Get(ctx, f.customer)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	_, err = f.svc.ClearCart(ctx, f.customer)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	_, err = f.svc.RemoveFromWishlist(ctx, f.customer, f.product.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestAddToCartUpsertsAndMerges(t *testing.T) {
	f := newFixture(t, 0)
	first := f.add(t, 2)
	assert.Equal(t, int64(1), first.Version)

	second := f.add(t, 3)
	assert.Equal(t, first.ID, second.ID, "one document per customer")
	require.Len(t, second.CartItems, 1)
	assert.Equal(t, 5, second.CartItems[0].Quantity)
	assert.Equal(t, int64(2), second.Version)
}

func TestAddToCartValidatesCatalog(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	_, err := f.svc.AddToCart(ctx, f.customer, AddItemRequest{ProductID: uuid.New(), Quantity: 1})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	bogus := uuid.New()
	_, err = f.svc.AddToCart(ctx, f.customer, AddItemRequest{ProductID: f.product.ID, VariantID: &bogus, Quantity: 1})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = f.svc.AddToCart(ctx, uuid.New(), AddItemRequest{ProductID: f.product.ID, Quantity: 1})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "unknown customer")
}

func TestRemoveAndClear(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	f.add(t, 1)
	_, err := f.svc.AddToWishlist(ctx, f.customer, f.product.ID)
	require.NoError(t, err)

	doc, err := f.svc.RemoveFromCart(ctx, f.customer, f.product.ID, nil)
	require.NoError(t, err)
	assert.Len(t, doc.CartItems, 1, "variantless pair does not match")

	v := f.variant
	doc, err = f.svc.RemoveFromCart(ctx, f.customer, f.product.ID, &v)
	require.NoError(t, err)
	assert.Empty(t, doc.CartItems)

	f.add(t, 4)
	doc, err = f.svc.ClearCart(ctx, f.customer)
	require.NoError(t, err)
	assert.Empty(t, doc.CartItems)
	assert.Len(t, doc.WishlistItems, 1)
}

func TestResolvedReadsUseLiveCatalog(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	f.add(t, 2)
	_, err := f.svc.AddToWishlist(ctx, f.customer, f.product.ID)
	require.NoError(t, err)

	f.product.Variants[0].Price = decimal.NewFromInt(95)
	require.NoError(t, f.catalog.UpdateProduct(ctx, f.product))

	items, err := f.svc.GetCartItems(ctx, f.customer)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, items[0].Variant.Value.Price.Equal(decimal.NewFromInt(95)))

	require.NoError(t, f.catalog.DeleteProduct(ctx, f.product.ID))
	wishlist, err := f.svc.GetWishlist(ctx, f.customer)
	require.NoError(t, err)
	require.Len(t, wishlist, 1)
	assert.Equal(t, "Product not found", wishlist[0].Marker)
}

func TestReplaceLists(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	doc, err := f.svc.UpdateCartItems(ctx, f.customer, []ItemInput{
		{Product: f.product.ID, Quantity: 1},
		{Product: f.product.ID, Quantity: 1},
	})
	require.NoError(t, err)
	require.Len(t, doc.CartItems, 1)
	assert.Equal(t, 2, doc.CartItems[0].Quantity)

	doc, err = f.svc.UpdateWishlistItems(ctx, f.customer, []uuid.UUID{f.product.ID})
	require.NoError(t, err)
	assert.Len(t, doc.WishlistItems, 1)

	_, err = f.svc.UpdateWishlistItems(ctx, f.customer, []uuid.UUID{uuid.New()})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestConcurrentAddsAllLand(t *testing.T) {
	f := newFixture(t, 64)

	const workers = 10
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v := f.variant
			_, err := f.svc.AddToCart(context.Background(), f.customer, AddItemRequest{ProductID: f.product.ID, VariantID: &v, Quantity: 1})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	doc, err := f.svc.Get(context.Background(), f.customer)
	require.NoError(t, err)
	require.Len(t, doc.CartItems, 1)
	assert.Equal(t, workers, doc.CartItems[0].Quantity)
}

type losingRepo struct {
	Repository
	losses int
}

func (r *losingRepo) SaveIfVersion(ctx context.Context, doc *models.CartWishlist) (bool, error) {
	if r.losses > 0 {
		r.losses--
		return false, nil
	}
	return r.Repository.SaveIfVersion(ctx, doc)
}

func TestLostRaceIsRetriedThenSurfaced(t *testing.T) {
	f := newFixture(t, 0)
	f.add(t, 1)

	repo := &losingRepo{Repository: f.repo, losses: 2}
	svc, err := NewService(ServiceParams{Repo: repo, Catalog: f.catalog, MaxRetries: 3})
	require.NoError(t, err)

	doc, err := svc.ClearCart(context.Background(), f.customer)
	require.NoError(t, err)
	assert.Empty(t, doc.CartItems)

	repo.losses = 3
	_, err = svc.ClearCart(context.Background(), f.customer)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
}

package catalog

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mknind/backoffice/pkg/config"
	"github.com/mknind/backoffice/pkg/db/models"
	pkgmongo "github.com/mknind/backoffice/pkg/mongo"
)

func openMongo(t *testing.T) *pkgmongo.Client {
	t.Helper()
	uri := os.Getenv("MKN_MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MKN_MONGO_TEST_URI not set")
	}
	client, err := pkgmongo.New(context.Background(), config.MongoConfig{
		URI:      uri,
		Database: "mkn_test_" + uuid.NewString()[:8],
		Timeout:  5 * time.Second,
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestMongoRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	client := openMongo(t)
	require.NoError(t, EnsureIndexes(ctx, client))
	repo := NewMongoRepository(client)

	customer := newCustomer("mongo@example.com", "9000000100")
	require.NoError(t, repo.CreateCustomer(ctx, customer))
	require.ErrorIs(t, repo.CreateCustomer(ctx, newCustomer("mongo@example.com", "9000000101")), ErrDuplicate)

	found, err := repo.FindCustomersByIDs(ctx, []uuid.UUID{customer.ID, uuid.New()})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, customer.Addresses[0].ID, found[customer.ID].Addresses[0].ID)

	product := &models.Product{
		ProductName: "Saffron",
		Variants:    []models.Variant{{ID: uuid.New(), Weight: "1g", Price: decimal.RequireFromString("310.25")}},
	}
	require.NoError(t, repo.CreateProduct(ctx, product))
	got, err := repo.FindProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.True(t, got.Variants[0].Price.Equal(product.Variants[0].Price))

	require.NoError(t, repo.DeleteProduct(ctx, product.ID))
	_, err = repo.FindProduct(ctx, product.ID)
	require.ErrorIs(t, err, ErrNotFound)

	customers, err := repo.ListCustomers(ctx)
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.Equal(t, customer.ID, customers[0].ID)

	hidden := &models.Product{ProductName: "Clove", Status: true, HideFromShop: true}
	top := &models.Product{ProductName: "Cardamom", Status: true, TopSeller: true}
	require.NoError(t, repo.CreateProduct(ctx, hidden))
	require.NoError(t, repo.CreateProduct(ctx, top))
	all, err := repo.ListProducts(ctx, ProductFilters{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
	sellers, err := repo.ListProducts(ctx, ProductFilters{ActiveOnly: true, TopSellerOnly: true})
	require.NoError(t, err)
	require.Len(t, sellers, 1)
	assert.Equal(t, top.ID, sellers[0].ID)
}

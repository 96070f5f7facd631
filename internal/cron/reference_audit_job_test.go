package cron

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/mknind/backoffice/internal/orders"
	"github.com/mknind/backoffice/internal/resolver"
	"github.com/mknind/backoffice/pkg/db/models"
	"github.com/mknind/backoffice/pkg/logger"
)

type stubOrderLister struct {
	orders []models.Order
	err    error
}

func (s stubOrderLister) List(context.Context, orders.Filters) ([]models.Order, error) {
	return s.orders, s.err
}

type stubLookup struct {
	customers map[uuid.UUID]models.Customer
	products  map[uuid.UUID]models.Product
}

func (s stubLookup) FindCustomersByIDs(context.Context, []uuid.UUID) (map[uuid.UUID]models.Customer, error) {
	return s.customers, nil
}

func (s stubLookup) FindProductsByIDs(context.Context, []uuid.UUID) (map[uuid.UUID]models.Product, error) {
	return s.products, nil
}

func TestReferenceAuditJobReportsDanglingOrders(t *testing.T) {
	addr := models.Address{ID: uuid.New(), City: "Pune"}
	customer := models.Customer{ID: uuid.New(), FirstName: "Ada", Addresses: []models.Address{addr}}
	product := models.Product{ID: uuid.New(), ProductName: "Tea"}

	healthy := models.Order{
		ID:                uuid.New(),
		CustomerID:        customer.ID,
		BillingAddressID:  addr.ID,
		ShippingAddressID: addr.ID,
		Lines:             []models.OrderLine{{ProductID: product.ID, Quantity: 1}},
	}
	broken := models.Order{
		ID:                uuid.New(),
		CustomerID:        customer.ID,
		BillingAddressID:  uuid.New(),
		ShippingAddressID: addr.ID,
		Lines:             []models.OrderLine{{ProductID: uuid.New(), Quantity: 1}},
	}

	var buf bytes.Buffer
	job, err := NewReferenceAuditJob(ReferenceAuditJobParams{
		Logger: logger.New(logger.Options{ServiceName: "cron-test", Output: &buf}),
		Orders: stubOrderLister{orders: []models.Order{healthy, broken}},
		Catalog: stubLookup{
			customers: map[uuid.UUID]models.Customer{customer.ID: customer},
			products:  map[uuid.UUID]models.Product{product.ID: product},
		},
		Resolver: resolver.New(nil),
	})
	require.NoError(t, err)
	require.Equal(t, referenceAuditJobName, job.Name())

	require.NoError(t, job.Run(context.Background()))

	out := buf.String()
	require.Contains(t, out, broken.ID.String())
	require.NotContains(t, out, healthy.ID.String())
	require.True(t, strings.Contains(out, `"orders_affected":1`), out)
	require.True(t, strings.Contains(out, `"dangling_refs":2`), out)
}

func TestReferenceAuditJobPropagatesStoreErrors(t *testing.T) {
	job, err := NewReferenceAuditJob(ReferenceAuditJobParams{
		Logger:   logger.Nop(),
		Orders:   stubOrderLister{err: errors.New("db down")},
		Catalog:  stubLookup{},
		Resolver: resolver.New(nil),
	})
	require.NoError(t, err)
	require.Error(t, job.Run(context.Background()))
}

func TestNewReferenceAuditJobRequiresDependencies(t *testing.T) {
	_, err := NewReferenceAuditJob(ReferenceAuditJobParams{Logger: logger.Nop()})
	require.Error(t, err)
}

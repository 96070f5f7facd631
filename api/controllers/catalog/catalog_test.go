package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mknind/backoffice/internal/catalog"
	"github.com/mknind/backoffice/pkg/db/models"
	pkgerrors "github.com/mknind/backoffice/pkg/errors"
)

type stubCatalogService struct {
	catalog.Service
	createCustomer func(ctx context.Context, input catalog.CustomerInput) (*models.Customer, error)
	deleteProduct  func(ctx context.Context, id uuid.UUID) error
	listCustomers  func(ctx context.Context) ([]models.Customer, error)
	listProducts   func(ctx context.Context, filters catalog.ProductFilters) ([]models.Product, error)
}

func (s *stubCatalogService) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	return s.listCustomers(ctx)
}

func (s *stubCatalogService) ListProducts(ctx context.Context, filters catalog.ProductFilters) ([]models.Product, error) {
	return s.listProducts(ctx, filters)
}

func (s *stubCatalogService) CreateCustomer(ctx context.Context, input catalog.CustomerInput) (*models.Customer, error) {
	return s.createCustomer(ctx, input)
}

func (s *stubCatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return s.deleteProduct(ctx, id)
}

func TestCustomerCreateValidatesEmail(t *testing.T) {
	body := `{"firstName":"Ada","lastName":"L","email":"nope","phone":"5550001111"}`
	resp := httptest.NewRecorder()
	CustomerCreate(&stubCatalogService{}, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/customers", strings.NewReader(body)))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCustomerCreateConflict(t *testing.T) {
	svc := &stubCatalogService{createCustomer: func(ctx context.Context, input catalog.CustomerInput) (*models.Customer, error) {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "customer conflicts with an existing record")
	}}
	body := `{"firstName":"Ada","lastName":"L","email":"ada@example.com","phone":"5550001111"}`
	resp := httptest.NewRecorder()
	CustomerCreate(svc, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/customers", strings.NewReader(body)))
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
}

func TestCustomerCreateReturns201(t *testing.T) {
	svc := &stubCatalogService{createCustomer: func(ctx context.Context, input catalog.CustomerInput) (*models.Customer, error) {
		if len(input.Addresses) != 1 || input.Addresses[0].City != "Pune" {
			t.Fatalf("unexpected addresses %+v", input.Addresses)
		}
		return &models.Customer{ID: uuid.New(), Email: input.Email}, nil
	}}
	body := `{"firstName":"Ada","lastName":"L","email":"ada@example.com","phone":"5550001111",
		"addresses":[{"address":"1 Main","pincode":"411001","city":"Pune","state":"MH","country":"IN"}]}`
	resp := httptest.NewRecorder()
	CustomerCreate(svc, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/customers", strings.NewReader(body)))
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestProductDeleteNotFound(t *testing.T) {
	productID := uuid.New()
	svc := &stubCatalogService{deleteProduct: func(ctx context.Context, id uuid.UUID) error {
		if id != productID {
			t.Fatalf("unexpected id %s", id)
		}
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}}
	req := httptest.NewRequest(http.MethodDelete, "/products/x", nil)
	rc := chi.NewRouteContext()
	rc.URLParams.Add("productId", productID.String())
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
	resp := httptest.NewRecorder()
	ProductDelete(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestCustomerListReturnsAll(t *testing.T) {
	svc := &stubCatalogService{listCustomers: func(ctx context.Context) ([]models.Customer, error) {
		return []models.Customer{{ID: uuid.New(), Email: "a@example.com"}, {ID: uuid.New(), Email: "b@example.com"}}, nil
	}}
	resp := httptest.NewRecorder()
	CustomerList(svc, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/customers", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	var payload struct {
		Data []struct {
			ID uuid.UUID `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(payload.Data) != 2 {
		t.Fatalf("expected 2 customers got %d", len(payload.Data))
	}
}

func TestProductListParsesFilters(t *testing.T) {
	var got catalog.ProductFilters
	svc := &stubCatalogService{listProducts: func(ctx context.Context, filters catalog.ProductFilters) ([]models.Product, error) {
		got = filters
		return []models.Product{}, nil
	}}
	resp := httptest.NewRecorder()
	ProductList(svc, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/products?active=true&topSeller=1", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if !got.ActiveOnly || !got.TopSellerOnly {
		t.Fatalf("unexpected filters %+v", got)
	}
}

func TestProductListRejectsBadBoolean(t *testing.T) {
	resp := httptest.NewRecorder()
	ProductList(&stubCatalogService{}, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/products?active=maybe", nil))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

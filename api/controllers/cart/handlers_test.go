package cart

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mknind/backoffice/internal/cart"
	"github.com/mknind/backoffice/internal/resolver"
	"github.com/mknind/backoffice/pkg/db/models"
	pkgerrors "github.com/mknind/backoffice/pkg/errors"
)

type stubCartService struct {
	cart.Service
	add       func(ctx context.Context, customerID uuid.UUID, req cart.AddItemRequest) (*models.CartWishlist, error)
	remove    func(ctx context.Context, customerID, productID uuid.UUID, variantID *uuid.UUID) (*models.CartWishlist, error)
	items     func(ctx context.Context, customerID uuid.UUID) ([]resolver.ResolvedCartItem, error)
	replaceWL func(ctx context.Context, customerID uuid.UUID, ids []uuid.UUID) (*models.CartWishlist, error)
}

func (s *stubCartService) AddToCart(ctx context.Context, customerID uuid.UUID, req cart.AddItemRequest) (*models.CartWishlist, error) {
	return s.add(ctx, customerID, req)
}

func (s *stubCartService) RemoveFromCart(ctx context.Context, customerID, productID uuid.UUID, variantID *uuid.UUID) (*models.CartWishlist, error) {
	return s.remove(ctx, customerID, productID, variantID)
}

func (s *stubCartService) GetCartItems(ctx context.Context, customerID uuid.UUID) ([]resolver.ResolvedCartItem, error) {
	return s.items(ctx, customerID)
}

func (s *stubCartService) UpdateWishlistItems(ctx context.Context, customerID uuid.UUID, ids []uuid.UUID) (*models.CartWishlist, error) {
	return s.replaceWL(ctx, customerID, ids)
}

func withParams(req *http.Request, params map[string]string) *http.Request {
	rc := chi.NewRouteContext()
	for k, v := range params {
		rc.URLParams.Add(k, v)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

func TestCartAddDecodesBody(t *testing.T) {
	customerID, productID := uuid.New(), uuid.New()
	svc := &stubCartService{add: func(ctx context.Context, c uuid.UUID, req cart.AddItemRequest) (*models.CartWishlist, error) {
		if c != customerID || req.ProductID != productID || req.Quantity != 3 || req.VariantID != nil {
			t.Fatalf("unexpected call %s %+v", c, req)
		}
		return &models.CartWishlist{CustomerID: c, CartItems: []models.CartItem{{ProductID: productID, Quantity: 3}}}, nil
	}}
	body := `{"productId":"` + productID.String() + `","quantity":3}`
	req := withParams(httptest.NewRequest(http.MethodPost, "/cart", strings.NewReader(body)), map[string]string{"customerId": customerID.String()})
	resp := httptest.NewRecorder()
	CartAdd(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if !strings.Contains(resp.Body.String(), `"quantity":3`) {
		t.Fatalf("unexpected body %s", resp.Body.String())
	}
}

func TestCartAddRejectsZeroQuantity(t *testing.T) {
	body := `{"productId":"` + uuid.NewString() + `","quantity":0}`
	req := withParams(httptest.NewRequest(http.MethodPost, "/cart", strings.NewReader(body)), map[string]string{"customerId": uuid.NewString()})
	resp := httptest.NewRecorder()
	CartAdd(&stubCartService{}, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCartRemoveItemPassesVariant(t *testing.T) {
	customerID, productID, variantID := uuid.New(), uuid.New(), uuid.New()
	svc := &stubCartService{remove: func(ctx context.Context, c, p uuid.UUID, v *uuid.UUID) (*models.CartWishlist, error) {
		if p != productID || v == nil || *v != variantID {
			t.Fatalf("unexpected pair %s %v", p, v)
		}
		return &models.CartWishlist{CustomerID: c}, nil
	}}
	req := httptest.NewRequest(http.MethodDelete, "/cart/items/x?variantId="+variantID.String(), nil)
	req = withParams(req, map[string]string{"customerId": customerID.String(), "productId": productID.String()})
	resp := httptest.NewRecorder()
	CartRemoveItem(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestCartFetchRendersMarkers(t *testing.T) {
	svc := &stubCartService{items: func(ctx context.Context, c uuid.UUID) ([]resolver.ResolvedCartItem, error) {
		return []resolver.ResolvedCartItem{{
			Product:  resolver.Dangling[resolver.ProductSummary](resolver.MsgProductNotFound),
			Variant:  resolver.Dangling[models.Variant](resolver.MsgProductNotFound),
			Quantity: 1,
		}}, nil
	}}
	req := withParams(httptest.NewRequest(http.MethodGet, "/cart", nil), map[string]string{"customerId": uuid.NewString()})
	resp := httptest.NewRecorder()
	CartFetch(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `"error"`) {
		t.Fatalf("expected error marker in body %s", resp.Body.String())
	}
}

func TestCartFetchMissingDocument(t *testing.T) {
	svc := &stubCartService{items: func(ctx context.Context, c uuid.UUID) ([]resolver.ResolvedCartItem, error) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
	}}
	req := withParams(httptest.NewRequest(http.MethodGet, "/cart", nil), map[string]string{"customerId": uuid.NewString()})
	resp := httptest.NewRecorder()
	CartFetch(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestWishlistReplace(t *testing.T) {
	ids := []uuid.UUID{uuid.New(), uuid.New()}
	svc := &stubCartService{replaceWL: func(ctx context.Context, c uuid.UUID, got []uuid.UUID) (*models.CartWishlist, error) {
		if len(got) != 2 || got[0] != ids[0] {
			t.Fatalf("unexpected ids %v", got)
		}
		return &models.CartWishlist{CustomerID: c, WishlistItems: got}, nil
	}}
	body := `{"wishlistItems":["` + ids[0].String() + `","` + ids[1].String() + `"]}`
	req := withParams(httptest.NewRequest(http.MethodPut, "/wishlist", strings.NewReader(body)), map[string]string{"customerId": uuid.NewString()})
	resp := httptest.NewRecorder()
	WishlistReplace(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

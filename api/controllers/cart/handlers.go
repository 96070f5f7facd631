package cart

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/mknind/backoffice/api/responses"
	"github.com/mknind/backoffice/api/validators"
	"github.com/mknind/backoffice/internal/cart"
	"github.com/mknind/backoffice/pkg/db/models"
	pkgerrors "github.com/mknind/backoffice/pkg/errors"
	"github.com/mknind/backoffice/pkg/logger"
)

func unavailable() error {
	return pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable")
}

// CartWishlist returns the raw stored document, references unresolved.
func CartWishlist(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable())
			return
		}
		customerID, err := validators.ParsePathUUID(r, "customerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		doc, err := svc.Get(r.Context(), customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, doc)
	}
}

// CartFetch returns cart lines resolved against the live catalog.
func CartFetch(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable())
			return
		}
		customerID, err := validators.ParsePathUUID(r, "customerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items, err := svc.GetCartItems(r.Context(), customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"cartItems": items})
	}
}

// CartAdd merges a (product, variant) pair into the cart, summing quantity
// when the pair is already present.
func CartAdd(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable())
			return
		}
		customerID, err := validators.ParsePathUUID(r, "customerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req cart.AddItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		doc, err := svc.AddToCart(r.Context(), customerID, req)
		writeDocument(r.Context(), w, logg, doc, err)
	}
}

func CartReplace(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable())
			return
		}
		customerID, err := validators.ParsePathUUID(r, "customerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req cart.ReplaceItemsRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		doc, err := svc.UpdateCartItems(r.Context(), customerID, req.CartItems)
		writeDocument(r.Context(), w, logg, doc, err)
	}
}

func CartClear(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable())
			return
		}
		customerID, err := validators.ParsePathUUID(r, "customerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		doc, err := svc.ClearCart(r.Context(), customerID)
		writeDocument(r.Context(), w, logg, doc, err)
	}
}

// CartRemoveItem drops the exact (productId, variantId) pair. Without
// variantId only variant-less lines of the product match.
func CartRemoveItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable())
			return
		}
		customerID, productID, err := parseCustomerAndProduct(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		variantID, err := validators.ParseQueryUUID(r, "variantId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		doc, err := svc.RemoveFromCart(r.Context(), customerID, productID, variantID)
		writeDocument(r.Context(), w, logg, doc, err)
	}
}

func WishlistFetch(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable())
			return
		}
		customerID, err := validators.ParsePathUUID(r, "customerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items, err := svc.GetWishlist(r.Context(), customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"wishlistItems": items})
	}
}

func WishlistAdd(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable())
			return
		}
		customerID, err := validators.ParsePathUUID(r, "customerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req cart.WishlistAddRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		doc, err := svc.AddToWishlist(r.Context(), customerID, req.ProductID)
		writeDocument(r.Context(), w, logg, doc, err)
	}
}

func WishlistReplace(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable())
			return
		}
		customerID, err := validators.ParsePathUUID(r, "customerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req cart.ReplaceWishlistRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		doc, err := svc.UpdateWishlistItems(r.Context(), customerID, req.WishlistItems)
		writeDocument(r.Context(), w, logg, doc, err)
	}
}

func WishlistRemove(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable())
			return
		}
		customerID, productID, err := parseCustomerAndProduct(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		doc, err := svc.RemoveFromWishlist(r.Context(), customerID, productID)
		writeDocument(r.Context(), w, logg, doc, err)
	}
}

func writeDocument(ctx context.Context, w http.ResponseWriter, logg *logger.Logger, doc *models.CartWishlist, err error) {
	if err != nil {
		responses.WriteError(ctx, logg, w, err)
		return
	}
	responses.WriteSuccess(w, doc)
}

func parseCustomerAndProduct(r *http.Request) (uuid.UUID, uuid.UUID, error) {
	customerID, err := validators.ParsePathUUID(r, "customerId")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	productID, err := validators.ParsePathUUID(r, "productId")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return customerID, productID, nil
}

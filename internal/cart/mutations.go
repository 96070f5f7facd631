package cart

import (
	"github.com/google/uuid"

	"github.com/mknind/backoffice/pkg/db/models"
	dbtypes "github.com/mknind/backoffice/pkg/db/types"
)

// Mutation edits a document in memory. It must be safe to re-apply to a
// freshly loaded document after a lost write race.
type Mutation func(doc *models.CartWishlist)

// AddItem merges qty into the line keyed by (productID, variantID) or
// appends a new line.
func AddItem(productID uuid.UUID, variantID *uuid.UUID, qty int) Mutation {
	return func(doc *models.CartWishlist) {
		for i := range doc.CartItems {
			if doc.CartItems[i].SameLine(productID, variantID) {
				doc.CartItems[i].Quantity += qty
				return
			}
		}
		doc.CartItems = append(doc.CartItems, models.CartItem{
			ProductID: productID,
			VariantID: copyID(variantID),
			Quantity:  qty,
		})
	}
}

// RemoveItem drops the exact pair. A missing pair leaves the cart as is.
func RemoveItem(productID uuid.UUID, variantID *uuid.UUID) Mutation {
	return func(doc *models.CartWishlist) {
		kept := make([]models.CartItem, 0, len(doc.CartItems))
		for _, item := range doc.CartItems {
			if !item.SameLine(productID, variantID) {
				kept = append(kept, item)
			}
		}
		doc.CartItems = kept
	}
}

func Clear() Mutation {
	return func(doc *models.CartWishlist) {
		doc.CartItems = []models.CartItem{}
	}
}

// ReplaceItems swaps the whole cart. Repeated pairs in items are merged so
// the stored cart stays unique by (product, variant).
func ReplaceItems(items []models.CartItem) Mutation {
	return func(doc *models.CartWishlist) {
		doc.CartItems = []models.CartItem{}
		for _, item := range items {
			AddItem(item.ProductID, item.VariantID, item.Quantity)(doc)
		}
	}
}

// AddToWishlist has set semantics.
func AddToWishlist(productID uuid.UUID) Mutation {
	return func(doc *models.CartWishlist) {
		if !doc.WishlistItems.Contains(productID) {
			doc.WishlistItems = append(doc.WishlistItems, productID)
		}
	}
}

func RemoveFromWishlist(productID uuid.UUID) Mutation {
	return func(doc *models.CartWishlist) {
		doc.WishlistItems = doc.WishlistItems.Without(productID)
	}
}

// ReplaceWishlist swaps the whole wishlist, dropping repeats.
func ReplaceWishlist(ids []uuid.UUID) Mutation {
	return func(doc *models.CartWishlist) {
		doc.WishlistItems = dbtypes.UUIDArray{}
		for _, id := range ids {
			AddToWishlist(id)(doc)
		}
	}
}

func copyID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

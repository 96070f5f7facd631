package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbtypes "github.com/mknind/backoffice/pkg/db/types"
)

// CartItem is unique within a cart by (ProductID, VariantID).
type CartItem struct {
	ProductID uuid.UUID  `json:"product"`
	VariantID *uuid.UUID `json:"variant"`
	Quantity  int        `json:"quantity"`
}

// SameLine reports whether the item is keyed by the given pair. A nil
// variant only matches a nil variant.
func (i CartItem) SameLine(productID uuid.UUID, variantID *uuid.UUID) bool {
	if i.ProductID != productID {
		return false
	}
	if i.VariantID == nil || variantID == nil {
		return i.VariantID == nil && variantID == nil
	}
	return *i.VariantID == *variantID
}

// CartWishlist is the single per-customer cart and wishlist document.
// Version guards compare-and-swap updates.
type CartWishlist struct {
	ID            uuid.UUID         `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	CustomerID    uuid.UUID         `gorm:"column:customer_id;type:uuid;not null;uniqueIndex:ux_cart_wishlists_customer" json:"customer"`
	WishlistItems dbtypes.UUIDArray `gorm:"column:wishlist_items;type:uuid[];not null" json:"wishlistItems"`
	CartItems     []CartItem        `gorm:"column:cart_items;type:jsonb;serializer:json;not null" json:"cartItems"`
	Version       int64             `gorm:"column:version;not null;default:1" json:"-"`
	CreatedAt     time.Time         `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time         `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (CartWishlist) TableName() string { return "cart_wishlists" }

func (c *CartWishlist) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.WishlistItems == nil {
		c.WishlistItems = dbtypes.UUIDArray{}
	}
	if c.CartItems == nil {
		c.CartItems = []CartItem{}
	}
	if c.Version == 0 {
		c.Version = 1
	}
	return nil
}

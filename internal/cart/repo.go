package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mknind/backoffice/pkg/db/models"
)

// CustomerConstraint is the one-document-per-customer unique index.
const CustomerConstraint = "ux_cart_wishlists_customer"

// Repository persists cart/wishlist documents with optimistic versioning.
type Repository interface {
	FindByCustomer(ctx context.Context, customerID uuid.UUID) (*models.CartWishlist, error)
	Insert(ctx context.Context, doc *models.CartWishlist) error
	// SaveIfVersion writes both lists and bumps the version only when the
	// stored version still equals doc.Version. It reports whether it won.
	SaveIfVersion(ctx context.Context, doc *models.CartWishlist) (bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindByCustomer(ctx context.Context, customerID uuid.UUID) (*models.CartWishlist, error) {
	var doc models.CartWishlist
	if err := r.db.WithContext(ctx).Where("customer_id = ?", customerID).First(&doc).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *repository) Insert(ctx context.Context, doc *models.CartWishlist) error {
	return r.db.WithContext(ctx).Create(doc).Error
}

func (r *repository) SaveIfVersion(ctx context.Context, doc *models.CartWishlist) (bool, error) {
	expected := doc.Version
	doc.Version = expected + 1
	res := r.db.WithContext(ctx).
		Model(doc).
		Where("version = ?", expected).
		Select("cart_items", "wishlist_items", "version", "updated_at").
		Updates(doc)
	if res.Error != nil {
		doc.Version = expected
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		doc.Version = expected
		return false, nil
	}
	return true, nil
}

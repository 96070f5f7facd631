package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mknind/backoffice/pkg/db"
	"github.com/mknind/backoffice/pkg/db/models"
)

type gormRepository struct {
	db *gorm.DB
}

// NewRepository builds the relational catalog repository.
func NewRepository(conn *gorm.DB) Repository {
	return &gormRepository{db: conn}
}

func (r *gormRepository) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	return translate(r.db.WithContext(ctx).Create(customer).Error)
}

func (r *gormRepository) UpdateCustomer(ctx context.Context, customer *models.Customer) error {
	res := r.db.WithContext(ctx).
		Model(customer).
		Select("first_name", "last_name", "email", "phone", "addresses", "updated_at").
		Updates(customer)
	if err := translate(res.Error); err != nil {
		return err
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormRepository) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.Customer{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormRepository) FindCustomer(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&customer).Error; err != nil {
		return nil, translate(err)
	}
	return &customer, nil
}

func (r *gormRepository) FindCustomersByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Customer, error) {
	ids = uniqueIDs(ids)
	out := make(map[uuid.UUID]models.Customer, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.Customer
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ID] = row
	}
	return out, nil
}

// ListCustomers returns every customer, newest first.
func (r *gormRepository) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	customers := []models.Customer{}
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}

func (r *gormRepository) CreateProduct(ctx context.Context, product *models.Product) error {
	return translate(r.db.WithContext(ctx).Create(product).Error)
}

func (r *gormRepository) UpdateProduct(ctx context.Context, product *models.Product) error {
	res := r.db.WithContext(ctx).
		Model(product).
		Select("product_name", "description", "status", "top_seller", "hide_from_shop",
			"variants", "images", "category_ids", "updated_at").
		Updates(product)
	if err := translate(res.Error); err != nil {
		return err
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormRepository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormRepository) FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

func (r *gormRepository) FindProductsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error) {
	ids = uniqueIDs(ids)
	out := make(map[uuid.UUID]models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ID] = row
	}
	return out, nil
}

// ListProducts returns products matching filters, newest first.
func (r *gormRepository) ListProducts(ctx context.Context, filters ProductFilters) ([]models.Product, error) {
	q := r.db.WithContext(ctx).Model(&models.Product{})
	if filters.ActiveOnly {
		q = q.Where("status = ? AND hide_from_shop = ?", true, false)
	}
	if filters.TopSellerOnly {
		q = q.Where("top_seller = ?", true)
	}
	products := []models.Product{}
	if err := q.Order("created_at DESC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case db.IsNotFound(err):
		return ErrNotFound
	case db.IsUniqueViolation(err, ""):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}

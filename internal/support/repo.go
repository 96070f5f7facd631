package support

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mknind/backoffice/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, ticket *models.SupportTicket) error {
	return r.db.WithContext(ctx).Create(ticket).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.SupportTicket, error) {
	var ticket models.SupportTicket
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&ticket).Error; err != nil {
		return nil, err
	}
	return &ticket, nil
}

// List returns matching tickets, newest first.
func (r *repository) List(ctx context.Context, filters Filters) ([]models.SupportTicket, error) {
	q := r.db.WithContext(ctx).Model(&models.SupportTicket{})
	if filters.Status != nil {
		q = q.Where("status = ?", *filters.Status)
	}
	if filters.CustomerID != nil {
		q = q.Where("customer_id = ?", *filters.CustomerID)
	}
	tickets := []models.SupportTicket{}
	if err := q.Order("created_at DESC").Find(&tickets).Error; err != nil {
		return nil, err
	}
	return tickets, nil
}

// Update writes the editable columns. The customer snapshot is fixed at
// creation.
func (r *repository) Update(ctx context.Context, ticket *models.SupportTicket) error {
	res := r.db.WithContext(ctx).
		Model(ticket).
		Select("title", "description", "status", "updated_at").
		Updates(ticket)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.SupportTicket{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

package orders

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mknind/backoffice/internal/invoices"
	"github.com/mknind/backoffice/pkg/db/models"
	"github.com/mknind/backoffice/pkg/enums"
)

// InvoiceNoConstraint is the unique index that backstops the sequencer.
const InvoiceNoConstraint = "ux_orders_invoice_no"

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByIDForUpdate loads an order and, on postgres, holds a row lock
// until the surrounding transaction ends. sqlite serialises writers
// itself and has no FOR UPDATE.
func (r *repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	q := r.db.WithContext(ctx)
	if q.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var order models.Order
	if err := q.Where("id = ?", id).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) List(ctx context.Context, filters Filters) ([]models.Order, error) {
	q := r.db.WithContext(ctx).Model(&models.Order{})
	if filters.OrderStatus != nil {
		q = q.Where("order_status = ?", *filters.OrderStatus)
	}
	if filters.PaymentStatus != nil {
		q = q.Where("payment_status = ?", *filters.PaymentStatus)
	}
	if filters.CustomerID != nil {
		q = q.Where("customer_id = ?", *filters.CustomerID)
	}
	orders := []models.Order{}
	if err := q.Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Update writes every mutable column. InvoiceDetails and InvoiceNo are
// never touched after creation.
func (r *repository) Update(ctx context.Context, order *models.Order) error {
	res := r.db.WithContext(ctx).
		Model(order).
		Select(
			"billing_address_id", "shipping_address_id", "lines", "shipping_method",
			"order_status", "payment_status", "cancellation_reason",
			"additional_charges", "discount", "order_note", "payment_total", "updated_at",
		).
		Updates(order)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.Order{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) DeleteMany(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&models.Order{})
	return res.RowsAffected, res.Error
}

// LatestInvoiceNo returns the canonical invoice number of the newest order.
func (r *repository) LatestInvoiceNo(ctx context.Context) (string, bool, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Select("invoice_no", "invoice_details").
		Order("created_at DESC").
		Limit(1).
		Take(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	if detail, ok := order.CanonicalInvoice(); ok {
		return detail.InvoiceNo, true, nil
	}
	return order.InvoiceNo, true, nil
}

// HighestInvoiceNo returns the stored invoice number under prefix with the
// largest running number. Rows whose suffix does not parse are skipped.
func (r *repository) HighestInvoiceNo(ctx context.Context, prefix string) (string, bool, error) {
	rows, err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("invoice_no").
		Where("invoice_no LIKE ? ESCAPE '\\'", escapeLike(prefix)+"%").
		Order("LENGTH(invoice_no) DESC").
		Order("invoice_no DESC").
		Rows()
	if err != nil {
		return "", false, err
	}
	defer rows.Close()
	for rows.Next() {
		var invoiceNo string
		if err := rows.Scan(&invoiceNo); err != nil {
			return "", false, err
		}
		if _, ok := invoices.ParseSuffix(prefix, invoiceNo); ok {
			return invoiceNo, true, nil
		}
	}
	return "", false, rows.Err()
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(s)
}

type statusRow struct {
	OrderStatus string
	Count       int64
	Revenue     decimal.NullDecimal
}

func (r *repository) Summarize(ctx context.Context) (Summary, error) {
	var rows []statusRow
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("order_status, COUNT(*) AS count, SUM(payment_total) AS revenue").
		Group("order_status").
		Order("order_status ASC").
		Scan(&rows).Error
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{OrdersByStatus: make([]StatusCount, 0, len(rows))}
	revenue := decimal.Zero
	for _, row := range rows {
		summary.TotalOrders += row.Count
		summary.OrdersByStatus = append(summary.OrdersByStatus, StatusCount{
			Status: enums.OrderStatus(row.OrderStatus),
			Count:  row.Count,
		})
		if row.Revenue.Valid {
			revenue = revenue.Add(row.Revenue.Decimal)
		}
	}
	summary.TotalRevenue = revenue.InexactFloat64()
	return summary, nil
}

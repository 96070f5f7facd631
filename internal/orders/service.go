package orders

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mknind/backoffice/internal/catalog"
	"github.com/mknind/backoffice/internal/resolver"
	"github.com/mknind/backoffice/pkg/db"
	"github.com/mknind/backoffice/pkg/db/models"
	"github.com/mknind/backoffice/pkg/enums"
	pkgerrors "github.com/mknind/backoffice/pkg/errors"
	"github.com/mknind/backoffice/pkg/logger"
	"github.com/mknind/backoffice/pkg/metrics"
)

const defaultMaxAttempts = 5

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams groups dependencies for the order service.
type ServiceParams struct {
	Repo        Repository
	Tx          txRunner
	Catalog     Catalog
	Sequencer   InvoiceSequencer
	Resolver    *resolver.Resolver
	Logger      *logger.Logger
	Metrics     *metrics.OrderMetrics
	MaxAttempts int
	Now         func() time.Time
}

// Service exposes order creation, resolved reads and status management.
type Service interface {
	Create(ctx context.Context, req CreateOrderRequest) (*resolver.ResolvedOrder, error)
	Get(ctx context.Context, id uuid.UUID) (*resolver.ResolvedOrder, error)
	GetForCustomer(ctx context.Context, customerID, id uuid.UUID) (*resolver.ResolvedOrder, error)
	List(ctx context.Context, filters Filters) ([]resolver.ResolvedOrder, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateOrderRequest) (*resolver.ResolvedOrder, error)
	ChangeStatus(ctx context.Context, id uuid.UUID, req StatusChangeRequest) (*resolver.ResolvedOrder, error)
	Delete(ctx context.Context, id uuid.UUID) error
	BulkDelete(ctx context.Context, ids []uuid.UUID) (BulkDeleteResult, error)
	Invoice(ctx context.Context, id uuid.UUID) (*Invoice, error)
	InvoiceForCustomer(ctx context.Context, customerID, id uuid.UUID) (*Invoice, error)
	Summary(ctx context.Context) (Summary, error)
}

type service struct {
	repo        Repository
	tx          txRunner
	catalog     Catalog
	sequencer   InvoiceSequencer
	resolver    *resolver.Resolver
	logg        *logger.Logger
	metrics     *metrics.OrderMetrics
	maxAttempts int
	now         func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "orders repository is required")
	}
	if params.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction runner is required")
	}
	if params.Catalog == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog is required")
	}
	if params.Sequencer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invoice sequencer is required")
	}
	if params.Resolver == nil {
		params.Resolver = resolver.New(params.Metrics)
	}
	if params.Logger == nil {
		params.Logger = logger.Nop()
	}
	if params.MaxAttempts <= 0 {
		params.MaxAttempts = defaultMaxAttempts
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &service{
		repo:        params.Repo,
		tx:          params.Tx,
		catalog:     params.Catalog,
		sequencer:   params.Sequencer,
		resolver:    params.Resolver,
		logg:        params.Logger,
		metrics:     params.Metrics,
		maxAttempts: params.MaxAttempts,
		now:         params.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, req CreateOrderRequest) (*resolver.ResolvedOrder, error) {
	customer, err := s.catalog.FindCustomer(ctx, req.Customer)
	if err != nil {
		if isMissing(err) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer not found").
				WithDetails(map[string]any{"customer": req.Customer})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to load customer")
	}
	if err := checkAddresses(customer, req.BillingAddress, req.ShippingAddress); err != nil {
		return nil, err
	}
	lines, products, err := s.buildLines(ctx, req.Products)
	if err != nil {
		return nil, err
	}

	order, err := newOrder(req, lines)
	if err != nil {
		return nil, err
	}

	if err := s.insertSequenced(ctx, order); err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"order_id":    order.ID.String(),
		"customer_id": order.CustomerID.String(),
		"invoice_no":  order.InvoiceNo,
	}), "order.created")

	resolved := s.resolver.ResolveOrder(*order, customer, products)
	return &resolved, nil
}

// insertSequenced stamps the order with the next invoice number and
// inserts it, re-sequencing when the unique index rejects the number.
func (s *service) insertSequenced(ctx context.Context, order *models.Order) error {
	date := s.now().UTC().Format(models.InvoiceDateLayout)
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		invoiceNo, err := s.sequencer.Next(ctx)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to sequence invoice number")
		}
		order.ID = uuid.Nil
		order.InvoiceDetails = []models.InvoiceDetail{{InvoiceNo: invoiceNo, InvoiceDate: date}}
		order.InvoiceNo = invoiceNo

		err = s.repo.Create(ctx, order)
		if err == nil {
			return nil
		}
		if !db.IsUniqueViolation(err, InvoiceNoConstraint) && !db.IsUniqueViolation(err, "orders.invoice_no") {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to create order")
		}

		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"invoice_no": invoiceNo,
			"attempt":    attempt,
		}), "invoice.sequence.conflict")
		if err := s.sequencer.Resync(ctx); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to resync invoice counter")
		}
	}
	return pkgerrors.New(pkgerrors.CodeConflict, "could not allocate a unique invoice number").
		WithDetails(map[string]any{"attempts": s.maxAttempts})
}

func newOrder(req CreateOrderRequest, lines []models.OrderLine) (*models.Order, error) {
	shipping, err := enums.ParseShippingMethod(req.ShippingMethod)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid shippingMethod")
	}
	order := &models.Order{
		CustomerID:        req.Customer,
		BillingAddressID:  req.BillingAddress,
		ShippingAddressID: req.ShippingAddress,
		Lines:             lines,
		ShippingMethod:    shipping,
		OrderStatus:       enums.OrderStatusPending,
		PaymentStatus:     enums.PaymentStatusPending,
		AdditionalCharges: defaultCharges(),
		Discount:          decimal.Zero,
		OrderNote:         req.OrderNote,
	}
	if len(req.AdditionalCharges) > 0 {
		order.AdditionalCharges = toCharges(req.AdditionalCharges)
	}
	if req.Discount != nil {
		if req.Discount.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount must not be negative")
		}
		order.Discount = *req.Discount
	}

	status := StatusChangeRequest{}
	if req.OrderStatus != "" {
		status.OrderStatus = &req.OrderStatus
	}
	if req.PaymentStatus != "" {
		status.PaymentStatus = &req.PaymentStatus
	}
	if req.CancellationReason != "" {
		status.CancellationReason = &req.CancellationReason
	}
	if status.OrderStatus != nil || status.PaymentStatus != nil || status.CancellationReason != nil {
		if _, err := ApplyStatusChange(order, status); err != nil {
			return nil, err
		}
	}

	order.PaymentTotal = GrandTotal(order)
	if req.PaymentTotal != nil {
		order.PaymentTotal = *req.PaymentTotal
	}
	if order.PaymentTotal.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "paymentTotal must not be negative")
	}
	return order, nil
}

func checkAddresses(customer *models.Customer, billing, shipping uuid.UUID) error {
	details := map[string]any{}
	if _, ok := customer.FindAddress(billing); !ok {
		details["billingAddress"] = "not found on customer"
	}
	if _, ok := customer.FindAddress(shipping); !ok {
		details["shippingAddress"] = "not found on customer"
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "address does not belong to customer").WithDetails(details)
	}
	return nil
}

// buildLines checks every line against the live catalog and captures the
// unit price.
func (s *service) buildLines(ctx context.Context, in []LineInput) ([]models.OrderLine, map[uuid.UUID]models.Product, error) {
	ids := make([]uuid.UUID, 0, len(in))
	for _, line := range in {
		ids = append(ids, line.Product)
	}
	products, err := s.catalog.FindProductsByIDs(ctx, ids)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to load products")
	}

	lines := make([]models.OrderLine, 0, len(in))
	for i, line := range in {
		if line.Quantity < 1 {
			return nil, nil, lineError(i, "quantity must be at least 1")
		}
		product, ok := products[line.Product]
		if !ok {
			return nil, nil, lineError(i, "product not found")
		}
		out := models.OrderLine{ProductID: line.Product, Quantity: line.Quantity}
		if line.Variant != nil {
			variant, ok := product.FindVariant(*line.Variant)
			if !ok {
				return nil, nil, lineError(i, "variant not found")
			}
			v := variant.ID
			out.VariantID = &v
			out.Price = variant.Price
		}
		if line.Price != nil {
			out.Price = *line.Price
		} else if line.Variant == nil {
			return nil, nil, lineError(i, "price is required when no variant is given")
		}
		if out.Price.IsNegative() {
			return nil, nil, lineError(i, "price must not be negative")
		}
		lines = append(lines, out)
	}
	return lines, products, nil
}

func lineError(index int, msg string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, "invalid order line").
		WithDetails(map[string]any{"index": index, "error": msg})
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*resolver.ResolvedOrder, error) {
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.resolveOne(ctx, *order)
}

func (s *service) GetForCustomer(ctx context.Context, customerID, id uuid.UUID) (*resolver.ResolvedOrder, error) {
	order, err := s.loadOwned(ctx, customerID, id)
	if err != nil {
		return nil, err
	}
	return s.resolveOne(ctx, *order)
}

func (s *service) List(ctx context.Context, filters Filters) ([]resolver.ResolvedOrder, error) {
	orders, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to list orders")
	}
	resolved, err := s.resolver.ResolveOrders(ctx, s.catalog, orders)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to resolve orders")
	}
	return resolved, nil
}

// Update checks references against the catalog first, then re-reads and
// writes the order inside one transaction so concurrent edits do not
// overwrite each other's fields.
func (s *service) Update(ctx context.Context, id uuid.UUID, req UpdateOrderRequest) (*resolver.ResolvedOrder, error) {
	if req.empty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields provided to update")
	}
	if req.Products != nil && len(req.Products) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "products must not be empty")
	}
	if req.Discount != nil && req.Discount.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount must not be negative")
	}
	if req.PaymentTotal != nil && req.PaymentTotal.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "paymentTotal must not be negative")
	}
	var method *enums.ShippingMethod
	if req.ShippingMethod != nil {
		m, err := enums.ParseShippingMethod(*req.ShippingMethod)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid shippingMethod")
		}
		method = &m
	}

	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.BillingAddress != nil || req.ShippingAddress != nil {
		customer, err := s.catalog.FindCustomer(ctx, current.CustomerID)
		if err != nil {
			if isMissing(err) {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "order customer no longer exists")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to load customer")
		}
		billing, shipping := current.BillingAddressID, current.ShippingAddressID
		if req.BillingAddress != nil {
			billing = *req.BillingAddress
		}
		if req.ShippingAddress != nil {
			shipping = *req.ShippingAddress
		}
		if err := checkAddresses(customer, billing, shipping); err != nil {
			return nil, err
		}
	}
	var lines []models.OrderLine
	if req.Products != nil {
		if lines, _, err = s.buildLines(ctx, req.Products); err != nil {
			return nil, err
		}
	}

	var order *models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loaded, err := repo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return mapStoreError(err, "failed to load order")
		}
		applyUpdate(loaded, req, lines, method)
		if err := repo.Update(ctx, loaded); err != nil {
			return mapStoreError(err, "failed to update order")
		}
		order = loaded
		return nil
	})
	if err != nil {
		return nil, asServiceError(err, "failed to update order")
	}
	s.logg.Info(s.logg.WithField(ctx, "order_id", order.ID.String()), "order.updated")
	return s.resolveOne(ctx, *order)
}

// applyUpdate copies the checked request onto order. lines is only read
// when req.Products is set.
func applyUpdate(order *models.Order, req UpdateOrderRequest, lines []models.OrderLine, method *enums.ShippingMethod) {
	if req.BillingAddress != nil {
		order.BillingAddressID = *req.BillingAddress
	}
	if req.ShippingAddress != nil {
		order.ShippingAddressID = *req.ShippingAddress
	}
	recompute := false
	if req.Products != nil {
		order.Lines = lines
		recompute = true
	}
	if method != nil {
		order.ShippingMethod = *method
	}
	if req.AdditionalCharges != nil {
		order.AdditionalCharges = toCharges(req.AdditionalCharges)
		recompute = true
	}
	if req.Discount != nil {
		order.Discount = *req.Discount
		recompute = true
	}
	if req.OrderNote != nil {
		order.OrderNote = *req.OrderNote
	}
	switch {
	case req.PaymentTotal != nil:
		order.PaymentTotal = *req.PaymentTotal
	case recompute:
		order.PaymentTotal = GrandTotal(order)
	}
}

func (s *service) ChangeStatus(ctx context.Context, id uuid.UUID, req StatusChangeRequest) (*resolver.ResolvedOrder, error) {
	var (
		order       *models.Order
		regressions []Regression
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loaded, err := repo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return mapStoreError(err, "failed to load order")
		}
		if regressions, err = ApplyStatusChange(loaded, req); err != nil {
			return err
		}
		if err := repo.Update(ctx, loaded); err != nil {
			return mapStoreError(err, "failed to update order status")
		}
		order = loaded
		return nil
	})
	if err != nil {
		return nil, asServiceError(err, "failed to update order status")
	}
	for _, r := range regressions {
		s.metrics.StatusRegression(r.Field)
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"order_id": order.ID.String(),
			"field":    r.Field,
			"from":     r.From,
			"to":       r.To,
		}), "order.status.regression")
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"order_id":       order.ID.String(),
		"order_status":   order.OrderStatus.String(),
		"payment_status": order.PaymentStatus.String(),
	}), "order.status.changed")
	return s.resolveOne(ctx, *order)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapStoreError(err, "failed to delete order")
	}
	s.logg.Info(s.logg.WithField(ctx, "order_id", id.String()), "order.deleted")
	return nil
}

func (s *service) BulkDelete(ctx context.Context, ids []uuid.UUID) (BulkDeleteResult, error) {
	if len(ids) == 0 {
		return BulkDeleteResult{}, pkgerrors.New(pkgerrors.CodeValidation, "ids must be a non-empty array")
	}
	for _, id := range ids {
		if id == uuid.Nil {
			return BulkDeleteResult{}, pkgerrors.New(pkgerrors.CodeValidation, "ids must be valid order ids")
		}
	}
	n, err := s.repo.DeleteMany(ctx, ids)
	if err != nil {
		return BulkDeleteResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to delete orders")
	}
	if n == 0 {
		return BulkDeleteResult{}, pkgerrors.New(pkgerrors.CodeNotFound, "no orders found for the given ids")
	}
	s.logg.Info(s.logg.WithField(ctx, "deleted", n), "order.bulk_deleted")
	return BulkDeleteResult{DeletedCount: n}, nil
}

func (s *service) Invoice(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	resolved, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	inv := BuildInvoice(*resolved)
	return &inv, nil
}

func (s *service) InvoiceForCustomer(ctx context.Context, customerID, id uuid.UUID) (*Invoice, error) {
	resolved, err := s.GetForCustomer(ctx, customerID, id)
	if err != nil {
		return nil, err
	}
	inv := BuildInvoice(*resolved)
	return &inv, nil
}

func (s *service) Summary(ctx context.Context) (Summary, error) {
	summary, err := s.repo.Summarize(ctx)
	if err != nil {
		return Summary{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to summarize orders")
	}
	return summary, nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapStoreError(err, "failed to load order")
	}
	return order, nil
}

// loadOwned hides orders of other customers behind NotFound.
func (s *service) loadOwned(ctx context.Context, customerID, id uuid.UUID) (*models.Order, error) {
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.CustomerID != customerID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

func (s *service) resolveOne(ctx context.Context, order models.Order) (*resolver.ResolvedOrder, error) {
	resolved, err := s.resolver.ResolveOrders(ctx, s.catalog, []models.Order{order})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to resolve order")
	}
	return &resolved[0], nil
}

func mapStoreError(err error, msg string) error {
	if db.IsNotFound(err) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, msg)
}

// asServiceError keeps typed errors raised inside a transaction and wraps
// failures of the transaction itself, such as a failed commit.
func asServiceError(err error, msg string) error {
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, msg)
}

func isMissing(err error) bool {
	return errors.Is(err, catalog.ErrNotFound) || db.IsNotFound(err)
}

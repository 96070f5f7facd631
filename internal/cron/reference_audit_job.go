package cron

import (
	"context"
	"fmt"

	"github.com/mknind/backoffice/internal/orders"
	"github.com/mknind/backoffice/internal/resolver"
	"github.com/mknind/backoffice/pkg/db/models"
	"github.com/mknind/backoffice/pkg/logger"
)

const referenceAuditJobName = "order-reference-audit"

type orderLister interface {
	List(ctx context.Context, filters orders.Filters) ([]models.Order, error)
}

// ReferenceAuditJobParams configure the dangling reference audit.
type ReferenceAuditJobParams struct {
	Logger   *logger.Logger
	Orders   orderLister
	Catalog  resolver.Lookup
	Resolver *resolver.Resolver
}

// NewReferenceAuditJob builds the job that resolves every stored order and
// reports the ones whose customer, address, product or variant references
// no longer resolve. It never repairs anything; dangling references stay
// visible to API readers as markers.
func NewReferenceAuditJob(params ReferenceAuditJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders reader required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("catalog lookup required")
	}
	if params.Resolver == nil {
		return nil, fmt.Errorf("resolver required")
	}
	return &referenceAuditJob{
		logg:     params.Logger,
		orders:   params.Orders,
		catalog:  params.Catalog,
		resolver: params.Resolver,
	}, nil
}

type referenceAuditJob struct {
	logg     *logger.Logger
	orders   orderLister
	catalog  resolver.Lookup
	resolver *resolver.Resolver
}

func (j *referenceAuditJob) Name() string {
	return referenceAuditJobName
}

func (j *referenceAuditJob) Run(ctx context.Context) error {
	stored, err := j.orders.List(ctx, orders.Filters{})
	if err != nil {
		return fmt.Errorf("list orders: %w", err)
	}
	resolved, err := j.resolver.ResolveOrders(ctx, j.catalog, stored)
	if err != nil {
		return fmt.Errorf("resolve orders: %w", err)
	}

	var affected, refs int
	for _, order := range resolved {
		n := order.DanglingRefs()
		if n == 0 {
			continue
		}
		affected++
		refs += n
		j.logg.Warn(j.logg.WithFields(ctx, map[string]any{
			"order_id":      order.ID.String(),
			"dangling_refs": n,
		}), "order.reference.dangling")
	}

	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"orders_scanned":  len(resolved),
		"orders_affected": affected,
		"dangling_refs":   refs,
	}), "order.reference.audit")
	return nil
}

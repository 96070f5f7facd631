// Package invoices issues human-readable invoice numbers of the form
// <prefix><n>, strictly increasing and never shared between orders.
package invoices

import (
	"context"
	"errors"
	"time"

	"github.com/mknind/backoffice/pkg/config"
	"github.com/mknind/backoffice/pkg/logger"
	"github.com/mknind/backoffice/pkg/metrics"
)

// Source reads stored invoice numbers. LatestInvoiceNo reports the most
// recently created order; HighestInvoiceNo reports the largest valid
// running number under prefix. ok is false when nothing matches.
type Source interface {
	LatestInvoiceNo(ctx context.Context) (invoiceNo string, ok bool, err error)
	HighestInvoiceNo(ctx context.Context, prefix string) (invoiceNo string, ok bool, err error)
}

type SequencerParams struct {
	Prefix  string
	Counter Counter
	Source  Source
	Logger  *logger.Logger
	Metrics *metrics.OrderMetrics
	Now     func() time.Time
}

type Sequencer struct {
	prefix  string
	counter Counter
	source  Source
	logg    *logger.Logger
	metrics *metrics.OrderMetrics
	now     func() time.Time
}

func NewSequencer(p SequencerParams) (*Sequencer, error) {
	if p.Prefix == "" {
		return nil, errors.New("invoice prefix is required")
	}
	if p.Counter == nil {
		return nil, errors.New("invoice counter is required")
	}
	if p.Source == nil {
		return nil, errors.New("latest invoice source is required")
	}
	if p.Logger == nil {
		p.Logger = logger.Nop()
	}
	if p.Now == nil {
		p.Now = time.Now
	}
	return &Sequencer{
		prefix:  p.Prefix,
		counter: p.Counter,
		source:  p.Source,
		logg:    p.Logger,
		metrics: p.Metrics,
		now:     p.Now,
	}, nil
}

// Next returns the next invoice number.
func (s *Sequencer) Next(ctx context.Context) (string, error) {
	started := s.now()
	n, err := s.counter.Next(ctx, s.prefix, s.seed)
	if err != nil {
		return "", err
	}
	invoiceNo := Format(s.prefix, n)
	s.metrics.InvoiceIssued(s.counter.Kind(), s.now().Sub(started))
	s.logg.Debug(s.logg.WithFields(ctx, map[string]any{
		"invoice_no": invoiceNo,
		"counter":    s.counter.Kind(),
	}), "invoice.sequenced")
	return invoiceNo, nil
}

// Resync is called after an insert lost on the invoice unique index. The
// counter is dropped so the next call seeds from the stored orders again.
func (s *Sequencer) Resync(ctx context.Context) error {
	s.metrics.InvoiceConflict()
	return s.counter.Reset(ctx, s.prefix)
}

// seed reads the number to continue from. Atomic counters continue from the
// highest stored suffix so rows created out of order cannot pin them below
// an issued number. The latest mode keeps reading the newest order.
func (s *Sequencer) seed(ctx context.Context) (int64, error) {
	var (
		last string
		ok   bool
		err  error
	)
	if s.counter.Kind() == config.InvoiceCounterLatest {
		last, ok, err = s.source.LatestInvoiceNo(ctx)
	} else {
		last, ok, err = s.source.HighestInvoiceNo(ctx, s.prefix)
	}
	if err != nil || !ok {
		return 0, err
	}
	n, valid := ParseSuffix(s.prefix, last)
	if !valid {
		s.logg.Warn(s.logg.WithField(ctx, "invoice_no", last), "invoice.sequence.anomaly")
	}
	return n, nil
}

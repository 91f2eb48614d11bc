package indexer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/debojyoti10CC/pmpfun/internal/domain"
	"github.com/debojyoti10CC/pmpfun/internal/horizon"
	"github.com/debojyoti10CC/pmpfun/internal/observability"
	"github.com/debojyoti10CC/pmpfun/internal/storage"
)

// OperationSource abstracts the Horizon operations listing for tests.
type OperationSource interface {
	Operations(ctx context.Context, cursor domain.Cursor, limit int, order horizon.Order) ([]horizon.Operation, error)
	LatestCursor(ctx context.Context) (domain.Cursor, error)
}

// Sleeper suspends the loop for the given duration or until the context is
// cancelled. Injected so tests run without real timers.
type Sleeper func(ctx context.Context, d time.Duration) error

// Poller is the single long-running loop driving the pipeline: fetch a page
// of operations after the current cursor, hand each record to the
// classifier, apply the resulting events, then persist the cursor.
//
// The in-memory cursor advances optimistically per record handed to the
// classifier; the persisted cursor only moves after the record's effects
// are durably applied, so a crash replays from the last durable position
// and the applier's idempotency absorbs the redelivery.
type Poller struct {
	source     OperationSource
	classifier *Classifier
	applier    *Applier
	cursors    storage.CursorStore

	contractAddress string
	pageSize        int
	pollInterval    time.Duration
	pageInterval    time.Duration
	retryInterval   time.Duration
	logger          *log.Logger
	sleep           Sleeper
	now             func() int64
	metrics         *observability.Metrics

	cursor    domain.Cursor // in-memory position, owned by the loop
	persisted domain.Cursor
}

// PollerOptions contains configuration for creating a Poller.
type PollerOptions struct {
	Source          OperationSource
	Classifier      *Classifier
	Applier         *Applier
	CursorStore     storage.CursorStore
	ContractAddress string
	PageSize        int           // default 200
	PollInterval    time.Duration // default 5s, post-cycle suspension
	PageInterval    time.Duration // default 500ms, post-fetch suspension
	RetryInterval   time.Duration // default 10s, fixed backoff on fetch errors
	Logger          *log.Logger
	Sleep           Sleeper                // optional, for tests
	Now             func() int64           // optional, for tests
	Metrics         *observability.Metrics // optional
}

// NewPoller creates a new Poller.
func NewPoller(opts PollerOptions) *Poller {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = 200
	}
	pollInterval := opts.PollInterval
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}
	pageInterval := opts.PageInterval
	if pageInterval <= 0 {
		pageInterval = 500 * time.Millisecond
	}
	retryInterval := opts.RetryInterval
	if retryInterval <= 0 {
		retryInterval = 10 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	sleep := opts.Sleep
	if sleep == nil {
		sleep = sleepWithContext
	}
	now := opts.Now
	if now == nil {
		now = nowMillis
	}

	return &Poller{
		source:          opts.Source,
		classifier:      opts.Classifier,
		applier:         opts.Applier,
		cursors:         opts.CursorStore,
		contractAddress: opts.ContractAddress,
		pageSize:        pageSize,
		pollInterval:    pollInterval,
		pageInterval:    pageInterval,
		retryInterval:   retryInterval,
		logger:          logger,
		sleep:           sleep,
		now:             now,
		metrics:         opts.Metrics,
	}
}

// Run drives the polling loop until the context is cancelled.
func (p *Poller) Run(ctx context.Context) error {
	if err := p.loadCursor(ctx); err != nil {
		return err
	}
	p.logger.Printf("[poller] starting at cursor %q for contract %s", p.cursor, p.contractAddress)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		ops, err := p.fetchPage(ctx)
		if err != nil {
			// fetchPage already retried with fixed backoff; only context
			// cancellation reaches here.
			return err
		}
		if p.metrics != nil {
			p.metrics.PagesFetched.Inc()
			p.metrics.LastSuccessfulPoll.SetToCurrentTime()
		}

		if len(ops) == 0 {
			// Post-cycle suspension: caught up, wait for new ledger activity.
			if err := p.sleep(ctx, p.pollInterval); err != nil {
				return err
			}
			continue
		}

		p.processPage(ctx, ops)

		if err := p.persistCursor(ctx); err != nil {
			p.logger.Printf("[poller] WARN could not persist cursor %q: %v", p.cursor, err)
			if p.metrics != nil {
				p.metrics.CursorPersistErrors.Inc()
			}
		}

		// Post-fetch suspension before the next page.
		if err := p.sleep(ctx, p.pageInterval); err != nil {
			return err
		}
	}
}

// loadCursor restores the persisted position, or cold-starts from the
// ledger's most recent position so a fresh deployment does not replay
// full history.
func (p *Poller) loadCursor(ctx context.Context) error {
	saved, err := p.cursors.Get(ctx, p.contractAddress)
	if err == nil {
		p.cursor = saved.Cursor
		p.persisted = saved.Cursor
		return nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("load cursor: %w", err)
	}

	latest, err := retryFn(ctx, p.retryInterval, p.logger, func() (domain.Cursor, error) {
		return p.source.LatestCursor(ctx)
	})
	if err != nil {
		return fmt.Errorf("resolve cold-start cursor: %w", err)
	}
	// The cold-start position is durable by definition: nothing before it
	// will ever be processed, and a failed first page must rewind here, not
	// to the ledger's beginning.
	p.cursor = latest
	p.persisted = latest
	p.logger.Printf("[poller] no saved cursor, cold-starting at %q", latest)
	return nil
}

// fetchPage requests the next ascending page, retrying fetch failures with
// a fixed backoff. This is the only retried failure class.
func (p *Poller) fetchPage(ctx context.Context) ([]horizon.Operation, error) {
	return retryFn(ctx, p.retryInterval, p.logger, func() ([]horizon.Operation, error) {
		ops, err := p.source.Operations(ctx, p.cursor, p.pageSize, horizon.OrderAsc)
		if err != nil && p.metrics != nil {
			p.metrics.FetchErrors.Inc()
		}
		return ops, err
	})
}

// processPage hands each record to the classifier in ledger order and
// applies the resulting events. The in-memory cursor advances past every
// record; a store failure stops the page and rewinds the in-memory cursor
// to the last durable position, so the next fetch redelivers the failed
// record and the applier's idempotency absorbs the replayed prefix.
func (p *Poller) processPage(ctx context.Context, ops []horizon.Operation) {
	for i := range ops {
		op := &ops[i]
		p.cursor = domain.Cursor(op.PagingToken)
		if p.metrics != nil {
			p.metrics.RecordsScanned.Inc()
		}

		ev, ok := p.classifier.Classify(op)
		if !ok {
			p.markDurable(op)
			continue
		}
		if p.metrics != nil {
			p.metrics.EventsClassified.WithLabelValues(string(ev.Kind())).Inc()
		}

		if err := p.applier.Apply(ctx, ev); err != nil {
			p.logger.Printf("[poller] ERROR applying %s event tx=%s: %v", ev.Kind(), ev.Tx(), err)
			if p.metrics != nil {
				p.metrics.ApplyErrors.Inc()
			}
			p.cursor = p.persisted
			return
		}
		if p.metrics != nil {
			p.metrics.EventsApplied.WithLabelValues(string(ev.Kind())).Inc()
		}
		p.markDurable(op)
	}
}

// markDurable records that everything up to this operation is safe to
// checkpoint.
func (p *Poller) markDurable(op *horizon.Operation) {
	p.persisted = domain.Cursor(op.PagingToken)
}

// persistCursor checkpoints the last durable position.
func (p *Poller) persistCursor(ctx context.Context) error {
	if p.persisted.IsZero() {
		return nil
	}
	return p.cursors.Set(ctx, &domain.IndexerCursor{
		ContractAddress: p.contractAddress,
		Cursor:          p.persisted,
		UpdatedAt:       p.now(),
	})
}

// retryFn runs fn with a constant backoff until it succeeds or the
// context is cancelled. Fetch failures are never fatal.
func retryFn[T any](ctx context.Context, interval time.Duration, logger *log.Logger, fn func() (T, error)) (T, error) {
	var out T
	op := func() error {
		v, err := fn()
		if err != nil {
			logger.Printf("[poller] WARN ledger fetch failed, retrying in %s: %v", interval, err)
			return err
		}
		out = v
		return nil
	}
	policy := backoff.WithContext(backoff.NewConstantBackOff(interval), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return out, err
	}
	return out, nil
}

// sleepWithContext waits for d or until ctx is done.
func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}

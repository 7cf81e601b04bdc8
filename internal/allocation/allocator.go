// Package allocation mints the human-readable unique codes carried by client
// and contract records: a client's dedicated number and a contract's client
// and renew codes.
//
// Codes are sequential within a prefix, and the sequence is derived from a
// count of committed rows. That count is only a hint: between the count and
// the insert a concurrent request may claim the same sequence number. The
// store's unique index is the sole arbiter of correctness; the allocator
// absorbs a detected collision by recounting and retrying, bounded.
package allocation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"servicedesk/internal/platform/metrics"
	"servicedesk/pkg/platform/sentinel"
)

var (
	// ErrUnknownCategory is returned when a category label is outside the
	// recognized set. Never retried; nothing is written.
	ErrUnknownCategory = errors.New("unknown category")

	// ErrExhausted is returned when the retry bound is hit under contention.
	// The caller may retry the whole operation later.
	ErrExhausted = errors.New("allocation retries exhausted")
)

// Counter reports how many committed records carry a code starting with the
// given prefix. The read carries no isolation guarantee against concurrent
// inserts; the allocator is built around that gap.
type Counter interface {
	CountByCodePrefix(ctx context.Context, prefix string) (int, error)
}

// ContractCodes is the pair of identifiers minted for a new contract. The
// renew code reserves the identifier a future renewal will carry, under the
// following year's prefix so the shared client/renew identifier space stays
// collision-free by construction.
type ContractCodes struct {
	ClientCode string
	RenewCode  string
}

const defaultMaxAttempts = 4

// Allocator runs the count -> format -> insert protocol with bounded retry
// on uniqueness conflicts. It holds no cross-request state: every allocation
// coordinates with its competitors only through the store's unique indexes.
type Allocator struct {
	maxAttempts int
	logger      *slog.Logger
	metrics     *metrics.Metrics
	tracer      trace.Tracer
}

// Option configures an Allocator.
type Option func(*Allocator)

// WithMaxAttempts overrides the retry bound.
func WithMaxAttempts(n int) Option {
	return func(a *Allocator) {
		if n > 0 {
			a.maxAttempts = n
		}
	}
}

// WithLogger sets the logger used for conflict diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Allocator) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithMetrics enables allocation metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Allocator) {
		a.metrics = m
	}
}

// New constructs an Allocator.
func New(opts ...Option) *Allocator {
	a := &Allocator{
		maxAttempts: defaultMaxAttempts,
		logger:      slog.Default(),
		tracer:      otel.Tracer("servicedesk/allocation"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AllocateClientCode mints a dedicated number for a new client and hands it
// to commit, which must persist the record and return
// sentinel.ErrDuplicateCode when the number's unique index rejects it.
func (a *Allocator) AllocateClientCode(
	ctx context.Context,
	counter Counter,
	name string,
	commit func(ctx context.Context, dedicatedNumber string) error,
) (string, error) {
	prefix := ClientPrefix(name)

	var number string
	err := a.run(ctx, "client", func(ctx context.Context) error {
		n, err := counter.CountByCodePrefix(ctx, prefix)
		if err != nil {
			return fmt.Errorf("count prefix %q: %w", prefix, err)
		}
		number = FormatClientNumber(prefix[0], n+1)
		return commit(ctx, number)
	})
	if err != nil {
		return "", err
	}
	return number, nil
}

// AllocateContractCode mints the client code and renew code for a new
// contract. Both are computed from fresh counts on every attempt and
// committed atomically; a collision on either unique index restarts the
// attempt.
func (a *Allocator) AllocateContractCode(
	ctx context.Context,
	counter Counter,
	category string,
	parentNumber string,
	year int,
	commit func(ctx context.Context, codes ContractCodes) error,
) (ContractCodes, error) {
	categoryCode, err := CategoryCode(category)
	if err != nil {
		return ContractCodes{}, err
	}
	clientPrefix := ContractPrefix(categoryCode, year, parentNumber)
	renewPrefix := ContractPrefix(categoryCode, year+1, parentNumber)

	var codes ContractCodes
	err = a.run(ctx, "contract", func(ctx context.Context) error {
		n, err := counter.CountByCodePrefix(ctx, clientPrefix)
		if err != nil {
			return fmt.Errorf("count prefix %q: %w", clientPrefix, err)
		}
		m, err := counter.CountByCodePrefix(ctx, renewPrefix)
		if err != nil {
			return fmt.Errorf("count prefix %q: %w", renewPrefix, err)
		}
		codes = ContractCodes{
			ClientCode: FormatContractCode(categoryCode, year, parentNumber, n+1),
			RenewCode:  FormatContractCode(categoryCode, year+1, parentNumber, m+1),
		}
		return commit(ctx, codes)
	})
	if err != nil {
		return ContractCodes{}, err
	}
	return codes, nil
}

// run drives one allocation: each attempt recomputes its candidate from the
// current committed state and tries to insert. Only a duplicate-code signal
// triggers another attempt; cancellation and every other store error
// propagate immediately so retries never amplify load on a degraded store.
func (a *Allocator) run(ctx context.Context, entity string, attempt func(ctx context.Context) error) error {
	ctx, span := a.tracer.Start(ctx, "allocation.run",
		trace.WithAttributes(attribute.String("allocation.entity", entity)))
	defer span.End()

	for i := 1; i <= a.maxAttempts; i++ {
		err := attempt(ctx)
		if err == nil {
			span.SetAttributes(attribute.Int("allocation.attempts", i))
			if a.metrics != nil {
				a.metrics.CodesAllocated.WithLabelValues(entity).Inc()
				a.metrics.AllocationAttempts.WithLabelValues(entity).Observe(float64(i))
			}
			return nil
		}
		if !errors.Is(err, sentinel.ErrDuplicateCode) {
			span.RecordError(err)
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if a.metrics != nil {
			a.metrics.AllocationConflicts.WithLabelValues(entity).Inc()
		}
		a.logger.DebugContext(ctx, "code collision, recomputing sequence",
			"entity", entity,
			"attempt", i,
		)
	}

	if a.metrics != nil {
		a.metrics.AllocationExhausted.WithLabelValues(entity).Inc()
	}
	return fmt.Errorf("%w after %d attempts", ErrExhausted, a.maxAttempts)
}

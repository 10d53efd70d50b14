package lifecycle

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/utafrali/EcommerceGo/storefront/internal/notify"
	apperrors "github.com/utafrali/EcommerceGo/storefront/pkg/errors"
	"github.com/utafrali/EcommerceGo/storefront/pkg/logger"
	"github.com/utafrali/EcommerceGo/storefront/pkg/tracing"
)

const tracerName = "github.com/utafrali/EcommerceGo/storefront/internal/lifecycle"

// Executor applies lifecycle transitions for every store.
type Executor struct {
	mu          sync.Mutex
	rules       Table
	generations map[Key]uint64
	seq         uint64

	obsMu     sync.RWMutex
	observers []Observer

	notifier   Notifier
	logger     *slog.Logger
	tracer     trace.Tracer
	staleGuard bool
}

// Option configures an Executor.
type Option func(*Executor)

// WithStaleGuard discards a resolution when a newer invocation of the same
// operation started after it. Off by default (last-settled-wins).
func WithStaleGuard(enabled bool) Option {
	return func(e *Executor) {
		e.staleGuard = enabled
	}
}

// WithObserver registers an observer at construction time.
func WithObserver(o Observer) Option {
	return func(e *Executor) {
		e.observers = append(e.observers, o)
	}
}

// WithTracer overrides the tracer taken from the global provider.
func WithTracer(t trace.Tracer) Option {
	return func(e *Executor) {
		e.tracer = t
	}
}

// NewExecutor creates an executor publishing notices to notifier.
func NewExecutor(notifier Notifier, logger *slog.Logger, opts ...Option) *Executor {
	e := &Executor{
		rules:       Table{},
		generations: make(map[Key]uint64),
		notifier:    notifier,
		logger:      logger,
		tracer:      tracing.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Wire installs the propagation table. It is meant to be called once while
// the stores are being assembled.
func (e *Executor) Wire(t Table) error {
	if err := t.Validate(); err != nil {
		return err
	}
	e.mu.Lock()
	e.rules = t
	e.mu.Unlock()
	return nil
}

// Observe registers an observer for all subsequent transitions.
func (e *Executor) Observe(o Observer) {
	e.obsMu.Lock()
	e.observers = append(e.observers, o)
	e.obsMu.Unlock()
}

// View runs fn under the executor lock. Stores use it to take consistent snapshots.
func (e *Executor) View(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn()
}

// StaleGuard reports whether stale resolutions are discarded.
func (e *Executor) StaleGuard() bool {
	return e.staleGuard
}

// Run executes op through the lifecycle and returns its value or error.
//
// Order on success: fulfilled transition, success notice, cascades.
// Order on failure: rejected transition, failure notice.
// A discarded resolution runs only the Discarded hook and no effects. It
// returns an error wrapping apperrors.ErrSuperseded.
func Run[T any](ctx context.Context, e *Executor, op Operation[T]) (T, error) {
	var zero T

	id := uuid.NewString()
	inCascade := IsCascade(ctx)
	ctx = logger.WithInvocationID(ctx, id)
	ctx = logger.WithOperation(ctx, op.Key.String())
	ctx, span := e.tracer.Start(ctx, op.Key.String(), trace.WithAttributes(
		attribute.String("storefront.store", op.Key.Store),
		attribute.String("storefront.operation", op.Key.Operation),
		attribute.String("storefront.invocation_id", id),
		attribute.Bool("storefront.cascade", inCascade),
	))
	defer span.End()
	log := logger.WithContext(ctx, e.logger)

	start := time.Now()
	inFlight := operationsInFlight.WithLabelValues(op.Key.Store)
	inFlight.Inc()

	e.mu.Lock()
	e.generations[op.Key]++
	gen := e.generations[op.Key]
	if op.Pending != nil {
		op.Pending()
	}
	pending := e.record(op.Key, PhasePending, id, inCascade)
	e.mu.Unlock()
	e.emit(pending)

	value, err := op.Call(ctx)
	if err != nil {
		var appErr *apperrors.AppError
		if !errors.As(err, &appErr) {
			err = apperrors.TransportCause(err)
		}
	}

	e.mu.Lock()
	stale := e.staleGuard && e.generations[op.Key] != gen
	discarded := stale || (op.Current != nil && !op.Current())
	var terminal Transition
	switch {
	case discarded:
		if op.Discarded != nil {
			op.Discarded()
		}
		terminal = e.record(op.Key, terminalPhase(err), id, inCascade)
		terminal.Discarded = true
	case err == nil:
		if op.Fulfilled != nil {
			op.Fulfilled(value)
		}
		terminal = e.record(op.Key, PhaseFulfilled, id, inCascade)
	default:
		msg := apperrors.Message(err)
		if op.Rejected != nil {
			op.Rejected(msg)
		}
		terminal = e.record(op.Key, PhaseRejected, id, inCascade)
		terminal.Error = msg
	}
	rule := e.rules[op.Key]
	e.mu.Unlock()
	e.emit(terminal)

	inFlight.Dec()
	operationDuration.WithLabelValues(op.Key.Store, op.Key.Operation).Observe(time.Since(start).Seconds())

	if discarded {
		operationsTotal.WithLabelValues(op.Key.Store, op.Key.Operation, outcomeDiscarded).Inc()
		span.SetAttributes(attribute.String("storefront.outcome", outcomeDiscarded))
		log.InfoContext(ctx, "operation resolution discarded",
			slog.Bool("stale", stale),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return zero, apperrors.Superseded(op.Key.String())
	}

	if err != nil {
		operationsTotal.WithLabelValues(op.Key.Store, op.Key.Operation, outcomeRejected).Inc()
		span.SetAttributes(attribute.String("storefront.outcome", outcomeRejected))
		span.RecordError(err)
		span.SetStatus(codes.Error, apperrors.Message(err))
		log.WarnContext(ctx, "operation rejected",
			slog.String("error", err.Error()),
			slog.Int("remote_status", apperrors.RemoteStatus(err)),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		e.publish(rule.FailureNotice, notify.SeverityError)
		return zero, err
	}

	operationsTotal.WithLabelValues(op.Key.Store, op.Key.Operation, outcomeFulfilled).Inc()
	span.SetAttributes(attribute.String("storefront.outcome", outcomeFulfilled))
	log.DebugContext(ctx, "operation fulfilled",
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	e.publish(rule.SuccessNotice, notify.SeveritySuccess)
	e.cascade(ctx, log, op.Key, rule.Cascades, inCascade)

	return value, nil
}

// Apply runs a synchronous local transition for key. The key's declared resets
// are applied first inside the same atomic section. Local transitions cannot fail.
func (e *Executor) Apply(ctx context.Context, key Key, fn func()) {
	id := uuid.NewString()
	inCascade := IsCascade(ctx)

	e.mu.Lock()
	rule := e.rules[key]
	applied := make([]Transition, 0, len(rule.Resets)+1)
	for _, r := range rule.Resets {
		r.apply()
		applied = append(applied, e.record(r.target, PhaseApplied, id, true))
	}
	if fn != nil {
		fn()
	}
	applied = append(applied, e.record(key, PhaseApplied, id, inCascade))
	e.mu.Unlock()

	for _, tr := range applied {
		e.emit(tr)
		operationsTotal.WithLabelValues(tr.Key.Store, tr.Key.Operation, outcomeApplied).Inc()
	}

	logger.WithContext(ctx, e.logger).DebugContext(ctx, "local transition applied",
		slog.String("operation", key.String()),
		slog.String("invocation_id", id),
		slog.Int("resets", len(rule.Resets)),
	)
}

func (e *Executor) cascade(ctx context.Context, log *slog.Logger, from Key, cascades []Cascade, inCascade bool) {
	if len(cascades) == 0 {
		return
	}
	if inCascade {
		log.DebugContext(ctx, "cascade suppressed beyond depth 1", slog.Int("edges", len(cascades)))
		return
	}

	cctx := withCascade(ctx)
	for _, c := range cascades {
		cascadesTotal.WithLabelValues(from.String(), c.target.String()).Inc()
		if err := c.run(cctx); err != nil {
			log.WarnContext(ctx, "cascaded operation failed",
				slog.String("target", c.target.String()),
				slog.String("error", err.Error()),
			)
		}
	}
}

func (e *Executor) publish(message string, severity notify.Severity) {
	if message == "" || e.notifier == nil {
		return
	}
	e.notifier.Publish(message, severity)
}

// record must be called with e.mu held.
func (e *Executor) record(key Key, phase Phase, id string, cascade bool) Transition {
	e.seq++
	return Transition{
		Seq:          e.seq,
		Key:          key,
		Phase:        phase,
		InvocationID: id,
		Cascade:      cascade,
	}
}

func (e *Executor) emit(tr Transition) {
	e.obsMu.RLock()
	observers := e.observers
	e.obsMu.RUnlock()
	for _, o := range observers {
		o(tr)
	}
}

func terminalPhase(err error) Phase {
	if err != nil {
		return PhaseRejected
	}
	return PhaseFulfilled
}

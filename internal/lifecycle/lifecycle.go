// Package lifecycle runs every storefront operation through the same
// pending -> fulfilled | rejected state machine and applies the declared
// cross-store effects (notifications, cascades, resets) in a fixed order.
//
// All stores share one Executor. Its lock is the single logical thread on
// which state transitions happen: remote calls run concurrently, but no two
// transitions ever interleave. There is no coalescing or cancellation; the
// last invocation to settle determines store state unless the stale guard
// is enabled, in which case a resolution older than the newest invocation
// of the same operation is discarded.
package lifecycle

import (
	"context"
	"fmt"

	"github.com/utafrali/EcommerceGo/storefront/internal/notify"
)

// Phase is one lifecycle transition kind.
type Phase string

const (
	PhasePending   Phase = "pending"
	PhaseFulfilled Phase = "fulfilled"
	PhaseRejected  Phase = "rejected"
	// PhaseApplied marks a synchronous local transition (logout, reset, clear-error).
	PhaseApplied Phase = "applied"
)

// Key names an operation on a store, e.g. {"catalog", "listProducts"}.
type Key struct {
	Store     string
	Operation string
}

func (k Key) String() string {
	return k.Store + "/" + k.Operation
}

// Transition is one applied (or discarded) state change, in the global order
// given by Seq.
type Transition struct {
	Seq          uint64
	Key          Key
	Phase        Phase
	InvocationID string
	Error        string
	Discarded    bool
	Cascade      bool
}

// Observer receives every transition after it has been applied. Observers run
// in the goroutine of the invocation that produced the transition, outside the
// executor lock, so they may read store snapshots.
type Observer func(Transition)

// Notifier is the sink for declared notices.
type Notifier interface {
	Publish(message string, severity notify.Severity) notify.Notification
}

// Operation describes one asynchronous operation. Pending, Fulfilled and
// Rejected mutate the owning store and run under the executor lock. Current,
// when set, is consulted under the same lock at resolution time; returning
// false discards the resolution. It must not block. Discarded runs under the
// lock in place of Fulfilled or Rejected when a resolution is discarded.
type Operation[T any] struct {
	Key       Key
	Pending   func()
	Call      func(ctx context.Context) (T, error)
	Fulfilled func(T)
	Rejected  func(message string)
	Current   func() bool
	Discarded func()
}

// Rule is the set of effects declared for one operation.
type Rule struct {
	// SuccessNotice is published after a fulfilled transition.
	SuccessNotice string
	// FailureNotice is published after a rejected transition.
	FailureNotice string
	// Cascades run after a fulfilled transition and its notice, never from
	// inside another cascade.
	Cascades []Cascade
	// Resets are applied inside the same atomic section as a local transition,
	// before the owner's own update.
	Resets []Reset
}

// Cascade is a declared dispatch of another operation.
type Cascade struct {
	target Key
	run    func(ctx context.Context) error
}

// NewCascade declares that target is dispatched by calling run.
func NewCascade(target Key, run func(ctx context.Context) error) Cascade {
	return Cascade{target: target, run: run}
}

// Target is the key of the dispatched operation.
func (c Cascade) Target() Key {
	return c.target
}

// Reset is a declared synchronous reset of another store.
type Reset struct {
	target Key
	apply  func()
}

// NewReset declares a synchronous reset of target. apply runs under the executor lock.
func NewReset(target Key, apply func()) Reset {
	return Reset{target: target, apply: apply}
}

// Target is the key of the reset transition.
func (r Reset) Target() Key {
	return r.target
}

// Table is the fixed propagation table keyed by the originating operation.
type Table map[Key]Rule

// Validate rejects tables whose edges could propagate past depth 1: a cascade
// or reset target must not declare cascades or resets of its own.
func (t Table) Validate() error {
	for from, rule := range t {
		for _, c := range rule.Cascades {
			if c.run == nil {
				return fmt.Errorf("cascade %s -> %s has no dispatch", from, c.target)
			}
			if next, ok := t[c.target]; ok && (len(next.Cascades) > 0 || len(next.Resets) > 0) {
				return fmt.Errorf("cascade %s -> %s would propagate further", from, c.target)
			}
		}
		for _, r := range rule.Resets {
			if r.apply == nil {
				return fmt.Errorf("reset %s -> %s has no transition", from, r.target)
			}
			if next, ok := t[r.target]; ok && (len(next.Cascades) > 0 || len(next.Resets) > 0) {
				return fmt.Errorf("reset %s -> %s would propagate further", from, r.target)
			}
		}
	}
	return nil
}

type cascadeKey struct{}

func withCascade(ctx context.Context) context.Context {
	return context.WithValue(ctx, cascadeKey{}, true)
}

// IsCascade reports whether ctx belongs to an operation dispatched as a cascade.
func IsCascade(ctx context.Context) bool {
	v, _ := ctx.Value(cascadeKey{}).(bool)
	return v
}

// Package notify holds the storefront's single transient notification slot.
// A publish replaces whatever is displayed; there is no queue. Display and
// dismissal timing belong to the consuming view.
package notify

import (
	"log/slog"
	"slices"
	"sync"
	"time"
)

// Severity is the kind of notification.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Notification is one published message.
type Notification struct {
	Message     string    `json:"message"`
	Severity    Severity  `json:"status"`
	Seq         uint64    `json:"seq"`
	PublishedAt time.Time `json:"published_at"`
}

type subscriber struct {
	id uint64
	fn func(Notification)
}

// Channel is the single-slot publish/replace notification channel.
type Channel struct {
	mu          sync.Mutex
	current     *Notification
	seq         uint64
	subscribers []subscriber
	nextSub     uint64
	logger      *slog.Logger
	now         func() time.Time
}

// NewChannel creates an empty channel.
func NewChannel(logger *slog.Logger) *Channel {
	return &Channel{
		logger:      logger,
		now:         time.Now,
	}
}

// Publish overwrites the displayed notification and returns it.
// Subscribers are called synchronously in the publishing goroutine, in
// subscription order.
func (c *Channel) Publish(message string, severity Severity) Notification {
	c.mu.Lock()
	c.seq++
	n := Notification{
		Message:     message,
		Severity:    severity,
		Seq:         c.seq,
		PublishedAt: c.now().UTC(),
	}
	c.current = &n
	subs := slices.Clone(c.subscribers)
	c.mu.Unlock()

	c.logger.Debug("notification published",
		slog.String("severity", string(severity)),
		slog.String("message", message),
		slog.Uint64("seq", n.Seq),
	)

	for _, sub := range subs {
		sub.fn(n)
	}
	return n
}

// Success publishes a success notification.
func (c *Channel) Success(message string) Notification {
	return c.Publish(message, SeveritySuccess)
}

// Error publishes an error notification.
func (c *Channel) Error(message string) Notification {
	return c.Publish(message, SeverityError)
}

// Current returns the displayed notification, if any.
func (c *Channel) Current() (Notification, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return Notification{}, false
	}
	return *c.current, true
}

// Dismiss clears the slot if seq is still the displayed notification.
// It reports whether anything was cleared.
func (c *Channel) Dismiss(seq uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil || c.current.Seq != seq {
		return false
	}
	c.current = nil
	return true
}

// Subscribe registers fn for every future publish. The returned func unsubscribes.
func (c *Channel) Subscribe(fn func(Notification)) (cancel func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextSub++
	id := c.nextSub
	c.subscribers = append(c.subscribers, subscriber{id: id, fn: fn})
	return func() {
		c.mu.Lock()
		c.subscribers = slices.DeleteFunc(c.subscribers, func(s subscriber) bool {
			return s.id == id
		})
		c.mu.Unlock()
	}
}

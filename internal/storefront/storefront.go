// Package storefront assembles the stores, the shared executor and the
// notification channel, and applies the guards callers run before dispatch.
package storefront

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/utafrali/EcommerceGo/storefront/internal/cart"
	"github.com/utafrali/EcommerceGo/storefront/internal/catalog"
	"github.com/utafrali/EcommerceGo/storefront/internal/lifecycle"
	"github.com/utafrali/EcommerceGo/storefront/internal/notify"
	"github.com/utafrali/EcommerceGo/storefront/internal/remote"
	"github.com/utafrali/EcommerceGo/storefront/internal/session"
	apperrors "github.com/utafrali/EcommerceGo/storefront/pkg/errors"
)

// Storefront owns every store of one storefront process.
type Storefront struct {
	Notifications *notify.Channel
	Catalog       *catalog.Store
	Cart          *cart.Store
	Session       *session.Store

	exec   *lifecycle.Executor
	logger *slog.Logger
}

// Options tunes a Storefront.
type Options struct {
	Executor []lifecycle.Option
	Session  []session.Option
}

// New wires the stores against api and installs the propagation table.
func New(api remote.Requester, tokens session.TokenStore, logger *slog.Logger, opts Options) (*Storefront, error) {
	channel := notify.NewChannel(logger)
	exec := lifecycle.NewExecutor(channel, logger, opts.Executor...)

	sf := &Storefront{
		Notifications: channel,
		Catalog:       catalog.New(exec, api),
		Cart:          cart.New(exec, api),
		Session:       session.New(exec, api, tokens, logger, opts.Session...),
		exec:          exec,
		logger:        logger,
	}

	if err := exec.Wire(Rules(sf.Catalog, sf.Cart)); err != nil {
		return nil, fmt.Errorf("wire propagation table: %w", err)
	}

	return sf, nil
}

// Observe registers o for every lifecycle transition.
func (sf *Storefront) Observe(o lifecycle.Observer) {
	sf.exec.Observe(o)
}

// Bootstrap attempts to resume a persisted session once at startup. A missing
// token is not an error.
func (sf *Storefront) Bootstrap(ctx context.Context) error {
	_, err := sf.Session.ResumeSession(ctx)
	switch {
	case err == nil:
		sf.logger.InfoContext(ctx, "session resumed")
		return nil
	case errors.Is(err, apperrors.ErrSessionRequired):
		sf.logger.DebugContext(ctx, "no usable persisted session", slog.String("reason", apperrors.Message(err)))
		return nil
	default:
		return err
	}
}

// AddToCart guards and dispatches an add-to-cart. A missing size is a
// ValidationFailure and a missing session a SessionRequired carrying the
// login redirect; neither reaches the cart store.
func (sf *Storefront) AddToCart(ctx context.Context, productID, size string) (int, error) {
	if size == "" {
		return 0, apperrors.Validation("please select a size", map[string]string{"size": "is required"})
	}
	if !sf.Session.State().Authenticated() {
		return 0, apperrors.SessionRequired(session.LoginPath)
	}
	return sf.Cart.AddToCart(ctx, cart.AddInput{ProductID: productID, Size: size})
}

// Package cart holds the storefront's reflection of the remote cart.
package cart

import (
	"context"
	"net/http"
	"net/url"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/utafrali/EcommerceGo/storefront/internal/lifecycle"
	"github.com/utafrali/EcommerceGo/storefront/internal/remote"
	"github.com/utafrali/EcommerceGo/storefront/pkg/validator"
)

const storeName = "cart"

// Operation keys.
var (
	KeyAddToCart      = lifecycle.Key{Store: storeName, Operation: "addToCart"}
	KeyListCart       = lifecycle.Key{Store: storeName, Operation: "listCart"}
	KeyDeleteCartItem = lifecycle.Key{Store: storeName, Operation: "deleteCartItem"}
	KeyUpdateQuantity = lifecycle.Key{Store: storeName, Operation: "updateQuantity"}
	KeyFetchCartCount = lifecycle.Key{Store: storeName, Operation: "fetchCartCount"}
	KeySelectItem     = lifecycle.Key{Store: storeName, Operation: "selectItem"}
	KeyReset          = lifecycle.Key{Store: storeName, Operation: "reset"}
)

// State is a snapshot of the cart store.
type State struct {
	CartList      []CartLine
	SelectedItem  *CartLine
	CartItemCount int
	TotalPrice    decimal.Decimal
	Loading       bool
	Error         string
}

func initialState() State {
	return State{
		CartList:   []CartLine{},
		TotalPrice: decimal.Zero,
	}
}

// Store is the cart store. CartItemCount is never negative.
type Store struct {
	exec  *lifecycle.Executor
	api   remote.Requester
	state State
	// epoch is bumped by every reset. Calls dispatched before a reset are
	// discarded when they resolve.
	epoch uint64
}

// New creates a cart store in its initial state.
func New(exec *lifecycle.Executor, api remote.Requester) *Store {
	return &Store{
		exec:  exec,
		api:   api,
		state: initialState(),
	}
}

// State returns a copy of the current state.
func (s *Store) State() State {
	var st State
	s.exec.View(func() {
		st = s.state
		st.CartList = slices.Clone(s.state.CartList)
		if s.state.SelectedItem != nil {
			item := *s.state.SelectedItem
			st.SelectedItem = &item
		}
	})
	return st
}

// AddToCart adds one unit of the given product size and returns the new item count.
func (s *Store) AddToCart(ctx context.Context, in AddInput) (int, error) {
	if err := validator.Validate(in); err != nil {
		return 0, err
	}
	pending, current := s.track()
	return lifecycle.Run(ctx, s.exec, lifecycle.Operation[int]{
		Key:     KeyAddToCart,
		Pending: pending,
		Call: func(ctx context.Context) (int, error) {
			resp, err := s.api.Request(ctx, http.MethodPost, "/cart", addRequest{
				ProductID: in.ProductID,
				Size:      in.Size,
				Qty:       1,
			}, nil)
			if err != nil {
				return 0, err
			}
			return decodeCount(resp)
		},
		Fulfilled: s.counted,
		Rejected:  s.fail,
		Current:   current,
	})
}

// ListCart fetches the cart lines.
func (s *Store) ListCart(ctx context.Context) ([]CartLine, error) {
	pending, current := s.track()
	p, err := lifecycle.Run(ctx, s.exec, lifecycle.Operation[cartPayload]{
		Key:     KeyListCart,
		Pending: pending,
		Call: func(ctx context.Context) (cartPayload, error) {
			resp, err := s.api.Request(ctx, http.MethodGet, "/cart", nil, nil)
			if err != nil {
				return cartPayload{}, err
			}
			return decodeLines(resp)
		},
		Fulfilled: s.replaced,
		Rejected:  s.fail,
		Current:   current,
	})
	return p.Data, err
}

// DeleteCartItem removes the line identified by id.
func (s *Store) DeleteCartItem(ctx context.Context, id string) ([]CartLine, error) {
	pending, current := s.track()
	p, err := lifecycle.Run(ctx, s.exec, lifecycle.Operation[cartPayload]{
		Key:     KeyDeleteCartItem,
		Pending: pending,
		Call: func(ctx context.Context) (cartPayload, error) {
			resp, err := s.api.Request(ctx, http.MethodDelete, "/cart/"+url.PathEscape(id), nil, nil)
			if err != nil {
				return cartPayload{}, err
			}
			return decodeLines(resp)
		},
		Fulfilled: s.replaced,
		Rejected:  s.fail,
		Current:   current,
	})
	return p.Data, err
}

// UpdateQuantity sets the quantity of one line.
func (s *Store) UpdateQuantity(ctx context.Context, in UpdateInput) ([]CartLine, error) {
	if err := validator.Validate(in); err != nil {
		return nil, err
	}
	pending, current := s.track()
	p, err := lifecycle.Run(ctx, s.exec, lifecycle.Operation[cartPayload]{
		Key:     KeyUpdateQuantity,
		Pending: pending,
		Call: func(ctx context.Context) (cartPayload, error) {
			resp, err := s.api.Request(ctx, http.MethodPut, "/cart/"+url.PathEscape(in.ID), in, nil)
			if err != nil {
				return cartPayload{}, err
			}
			return decodeLines(resp)
		},
		Fulfilled: s.replaced,
		Rejected:  s.fail,
		Current:   current,
	})
	return p.Data, err
}

// FetchCartCount probes the remote item count.
func (s *Store) FetchCartCount(ctx context.Context) (int, error) {
	pending, current := s.track()
	return lifecycle.Run(ctx, s.exec, lifecycle.Operation[int]{
		Key:     KeyFetchCartCount,
		Pending: pending,
		Call: func(ctx context.Context) (int, error) {
			resp, err := s.api.Request(ctx, http.MethodGet, "/cart/qty", nil, nil)
			if err != nil {
				return 0, err
			}
			return decodeCount(resp)
		},
		Fulfilled: s.counted,
		Rejected:  s.fail,
		Current:   current,
	})
}

// SelectItem stores line in the scratch field used by cart views.
func (s *Store) SelectItem(ctx context.Context, line CartLine) {
	s.exec.Apply(ctx, KeySelectItem, func() {
		s.state.SelectedItem = &line
	})
}

// Reset returns the store to its initial state.
func (s *Store) Reset(ctx context.Context) {
	s.exec.Apply(ctx, KeyReset, s.reset)
}

// ResetEdge declares the reset as a propagation edge for another store's transition.
func (s *Store) ResetEdge() lifecycle.Reset {
	return lifecycle.NewReset(KeyReset, s.reset)
}

func (s *Store) reset() {
	s.state = initialState()
	s.epoch++
}

// track returns the Pending and Current hooks of one cart call.
func (s *Store) track() (pending func(), current func() bool) {
	var epoch uint64
	pending = func() {
		epoch = s.epoch
		s.state.Loading = true
	}
	current = func() bool {
		return s.epoch == epoch
	}
	return pending, current
}

func (s *Store) fail(msg string) {
	s.state.Loading = false
	s.state.Error = msg
}

func (s *Store) counted(n int) {
	s.state.Loading = false
	s.state.CartItemCount = n
	s.state.Error = ""
}

func (s *Store) replaced(p cartPayload) {
	s.state.Loading = false
	s.state.CartList = slices.Clone(p.Data)
	if s.state.CartList == nil {
		s.state.CartList = []CartLine{}
	}
	s.state.TotalPrice = p.TotalPrice
	s.state.CartItemCount = ItemCount(p.Data)
	s.state.Error = ""
}

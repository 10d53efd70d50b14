// Package catalog holds the storefront's reflection of the product catalog.
package catalog

import (
	"context"
	"net/http"
	"net/url"
	"slices"

	"github.com/utafrali/EcommerceGo/storefront/internal/lifecycle"
	"github.com/utafrali/EcommerceGo/storefront/internal/remote"
	"github.com/utafrali/EcommerceGo/storefront/pkg/pagination"
)

const storeName = "catalog"

// Operation keys.
var (
	KeyListProducts     = lifecycle.Key{Store: storeName, Operation: "listProducts"}
	KeyGetProductDetail = lifecycle.Key{Store: storeName, Operation: "getProductDetail"}
	KeyCreateProduct    = lifecycle.Key{Store: storeName, Operation: "createProduct"}
	KeyDeleteProduct    = lifecycle.Key{Store: storeName, Operation: "deleteProduct"}
	KeyEditProduct      = lifecycle.Key{Store: storeName, Operation: "editProduct"}
	KeyClearError       = lifecycle.Key{Store: storeName, Operation: "clearError"}
)

// State is a snapshot of the catalog store.
type State struct {
	ProductList     []Product
	SelectedProduct *Product
	Loading         bool
	Error           string
	TotalPageNum    int
	Success         bool
}

func initialState() State {
	return State{
		ProductList:  []Product{},
		TotalPageNum: 1,
	}
}

type productPage struct {
	Data         []Product `json:"data"`
	TotalPageNum int       `json:"totalPageNum"`
}

type productDetail struct {
	Product Product `json:"product"`
}

type productEnvelope struct {
	Data Product `json:"data"`
}

// Store is the catalog store. Its state only changes through its operations.
type Store struct {
	exec  *lifecycle.Executor
	api   remote.Requester
	state State
}

// New creates a catalog store in its initial state.
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
		st.ProductList = make([]Product, len(s.state.ProductList))
		for i, p := range s.state.ProductList {
			st.ProductList[i] = p.clone()
		}
		if s.state.SelectedProduct != nil {
			p := s.state.SelectedProduct.clone()
			st.SelectedProduct = &p
		}
	})
	return st
}

// ListProducts fetches one page of products matching q.
func (s *Store) ListProducts(ctx context.Context, q ListQuery) ([]Product, error) {
	page, err := lifecycle.Run(ctx, s.exec, lifecycle.Operation[productPage]{
		Key:     KeyListProducts,
		Pending: s.begin,
		Call: func(ctx context.Context) (productPage, error) {
			resp, err := s.api.Request(ctx, http.MethodGet, "/product", nil, q.values())
			if err != nil {
				return productPage{}, err
			}
			return remote.Decode[productPage](resp)
		},
		Fulfilled: func(p productPage) {
			s.state.Loading = false
			s.state.ProductList = slices.Clone(p.Data)
			if s.state.ProductList == nil {
				s.state.ProductList = []Product{}
			}
			s.state.TotalPageNum = pagination.TotalPages(p.TotalPageNum)
			s.state.Error = ""
		},
		Rejected: s.fail,
	})
	return page.Data, err
}

// GetProductDetail fetches a single product into SelectedProduct.
func (s *Store) GetProductDetail(ctx context.Context, id string) (Product, error) {
	return lifecycle.Run(ctx, s.exec, lifecycle.Operation[Product]{
		Key: KeyGetProductDetail,
		Pending: func() {
			s.state.Loading = true
			s.state.Error = ""
		},
		Call: func(ctx context.Context) (Product, error) {
			resp, err := s.api.Request(ctx, http.MethodGet, "/product/"+url.PathEscape(id), nil, nil)
			if err != nil {
				return Product{}, err
			}
			d, err := remote.Decode[productDetail](resp)
			return d.Product, err
		},
		Fulfilled: func(p Product) {
			s.state.Loading = false
			selected := p.clone()
			s.state.SelectedProduct = &selected
			s.state.Error = ""
		},
		Rejected: s.fail,
	})
}

// CreateProduct submits a new product. Invalid input fails before any transition.
func (s *Store) CreateProduct(ctx context.Context, in ProductInput) (Product, error) {
	if err := in.Validate(); err != nil {
		return Product{}, err
	}
	return lifecycle.Run(ctx, s.exec, lifecycle.Operation[Product]{
		Key:     KeyCreateProduct,
		Pending: s.begin,
		Call: func(ctx context.Context) (Product, error) {
			resp, err := s.api.Request(ctx, http.MethodPost, "/product", in, nil)
			if err != nil {
				return Product{}, err
			}
			env, err := remote.Decode[productEnvelope](resp)
			return env.Data, err
		},
		Fulfilled: s.mutated,
		Rejected:  s.mutationFailed,
	})
}

// DeleteProduct removes a product.
func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	_, err := lifecycle.Run(ctx, s.exec, lifecycle.Operation[string]{
		Key:     KeyDeleteProduct,
		Pending: s.begin,
		Call: func(ctx context.Context) (string, error) {
			resp, err := s.api.Request(ctx, http.MethodDelete, "/product/"+url.PathEscape(id), nil, nil)
			if err != nil {
				return "", err
			}
			return id, remote.Check(resp)
		},
		Fulfilled: func(string) {
			s.state.Loading = false
			s.state.Error = ""
		},
		Rejected: s.fail,
	})
	return err
}

// EditProduct replaces the product identified by id.
func (s *Store) EditProduct(ctx context.Context, id string, in ProductInput) (Product, error) {
	if err := in.Validate(); err != nil {
		return Product{}, err
	}
	return lifecycle.Run(ctx, s.exec, lifecycle.Operation[Product]{
		Key:     KeyEditProduct,
		Pending: s.begin,
		Call: func(ctx context.Context) (Product, error) {
			resp, err := s.api.Request(ctx, http.MethodPut, "/product/"+url.PathEscape(id), in, nil)
			if err != nil {
				return Product{}, err
			}
			env, err := remote.Decode[productEnvelope](resp)
			return env.Data, err
		},
		Fulfilled: s.mutated,
		Rejected:  s.mutationFailed,
	})
}

// ClearError resets the error and success flags.
func (s *Store) ClearError(ctx context.Context) {
	s.exec.Apply(ctx, KeyClearError, func() {
		s.state.Error = ""
		s.state.Success = false
	})
}

func (s *Store) begin() {
	s.state.Loading = true
}

func (s *Store) fail(msg string) {
	s.state.Loading = false
	s.state.Error = msg
}

func (s *Store) mutated(Product) {
	s.state.Loading = false
	s.state.Error = ""
	s.state.Success = true
}

func (s *Store) mutationFailed(msg string) {
	s.fail(msg)
	s.state.Success = false
}

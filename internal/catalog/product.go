package catalog

import (
	"maps"
	"net/url"

	"github.com/shopspring/decimal"

	apperrors "github.com/utafrali/EcommerceGo/storefront/pkg/errors"
	"github.com/utafrali/EcommerceGo/storefront/pkg/pagination"
	"github.com/utafrali/EcommerceGo/storefront/pkg/validator"
)

// Product is a catalog entry as served by the remote catalog.
type Product struct {
	ID          string          `json:"_id"`
	SKU         string          `json:"sku,omitempty"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description,omitempty"`
	Image       string          `json:"image,omitempty"`
	// Stock maps a size label to its remaining quantity. An absent size is not offered.
	Stock map[string]int `json:"stock,omitempty"`
}

// Offers reports whether size is offered at all.
func (p Product) Offers(size string) bool {
	_, ok := p.Stock[size]
	return ok
}

// InStock reports whether at least one unit of size remains.
func (p Product) InStock(size string) bool {
	return p.Stock[size] > 0
}

func (p Product) clone() Product {
	p.Stock = maps.Clone(p.Stock)
	return p
}

// ListQuery filters a listing fetch. A zero Page means the first page.
type ListQuery struct {
	Name    string
	Page    int
	PerPage int
}

func (q ListQuery) values() url.Values {
	v := url.Values{}
	if q.Name != "" {
		v.Set("name", q.Name)
	}
	pagination.Params{Page: q.Page, PerPage: q.PerPage}.Encode(v)
	return v
}

// ProductInput is the form payload for create and edit.
type ProductInput struct {
	SKU         string          `json:"sku,omitempty"`
	Name        string          `json:"name" validate:"required"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description,omitempty"`
	Image       string          `json:"image,omitempty" validate:"omitempty,url"`
	Stock       map[string]int  `json:"stock,omitempty" validate:"omitempty,dive,keys,required,endkeys,gte=0"`
}

// Validate checks the input before it is sent.
func (in ProductInput) Validate() error {
	if err := validator.Validate(in); err != nil {
		return err
	}
	if in.Price.IsNegative() {
		return apperrors.Validation("field 'Price' must be greater than or equal to 0",
			map[string]string{"Price": "must be greater than or equal to 0"})
	}
	return nil
}

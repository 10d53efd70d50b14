package cart

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/utafrali/EcommerceGo/storefront/internal/remote"
	apperrors "github.com/utafrali/EcommerceGo/storefront/pkg/errors"
)

// CartLine is one line of the remote cart.
type CartLine struct {
	ID        string `json:"_id"`
	ProductID string `json:"productId"`
	Size      string `json:"size"`
	Qty       int    `json:"qty"`
}

// AddInput selects the product and size to add.
type AddInput struct {
	ProductID string `json:"productId" validate:"required"`
	Size      string `json:"size" validate:"required"`
}

// UpdateInput sets the quantity of an existing line.
type UpdateInput struct {
	ID  string `json:"-" validate:"required"`
	Qty int    `json:"qty" validate:"gte=1"`
}

type addRequest struct {
	ProductID string `json:"productId"`
	Size      string `json:"size"`
	Qty       int    `json:"qty"`
}

type cartPayload struct {
	Data       []CartLine      `json:"data"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

type countPayload struct {
	Qty *int `json:"qty"`
	// CartItemQty is what some cart endpoints answer with instead of a bare number.
	CartItemQty *int `json:"cartItemQty"`
}

// ItemCount sums the quantities of lines.
func ItemCount(lines []CartLine) int {
	n := 0
	for _, l := range lines {
		n += l.Qty
	}
	return n
}

// decodeCount accepts a bare number or an object carrying the count.
func decodeCount(resp *remote.Response) (int, error) {
	if err := remote.Check(resp); err != nil {
		return 0, err
	}

	var n int
	if err := json.Unmarshal(resp.Data, &n); err != nil {
		var p countPayload
		if err := json.Unmarshal(resp.Data, &p); err != nil {
			return 0, apperrors.Transport(resp.Status, "malformed cart count")
		}
		switch {
		case p.CartItemQty != nil:
			n = *p.CartItemQty
		case p.Qty != nil:
			n = *p.Qty
		default:
			return 0, apperrors.Transport(resp.Status, "malformed cart count")
		}
	}

	if n < 0 {
		return 0, apperrors.Transport(resp.Status, "invalid cart count")
	}
	return n, nil
}

func decodeLines(resp *remote.Response) (cartPayload, error) {
	p, err := remote.Decode[cartPayload](resp)
	if err != nil {
		return p, err
	}
	for _, l := range p.Data {
		if l.Qty < 1 {
			return p, apperrors.Transport(resp.Status, "invalid cart line quantity")
		}
	}
	return p, nil
}

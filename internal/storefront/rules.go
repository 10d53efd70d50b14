package storefront

import (
	"context"

	"github.com/utafrali/EcommerceGo/storefront/internal/cart"
	"github.com/utafrali/EcommerceGo/storefront/internal/catalog"
	"github.com/utafrali/EcommerceGo/storefront/internal/lifecycle"
	"github.com/utafrali/EcommerceGo/storefront/internal/session"
)

// Notices published by the propagation table.
const (
	NoticeProductCreated     = "Product created"
	NoticeProductDeleted     = "Product deleted"
	NoticeAddedToCart        = "Item added to cart"
	NoticeAddToCartFailed    = "Failed to add item to cart"
	NoticeRemovedFromCart    = "Item removed from cart"
	NoticeRemoveFailed       = "Failed to remove item from cart"
	NoticeUpdateQtyFailed    = "Failed to update quantity"
	NoticeRegistered         = "Registration succeeded"
	NoticeRegistrationFailed = "Registration failed"
)

// Rules returns the fixed propagation table between the stores.
func Rules(products *catalog.Store, items *cart.Store) lifecycle.Table {
	relist := lifecycle.NewCascade(catalog.KeyListProducts, func(ctx context.Context) error {
		_, err := products.ListProducts(ctx, catalog.ListQuery{Page: 1})
		return err
	})

	return lifecycle.Table{
		catalog.KeyCreateProduct: {
			SuccessNotice: NoticeProductCreated,
			Cascades:      []lifecycle.Cascade{relist},
		},
		catalog.KeyDeleteProduct: {
			SuccessNotice: NoticeProductDeleted,
			Cascades:      []lifecycle.Cascade{relist},
		},
		catalog.KeyEditProduct: {
			Cascades: []lifecycle.Cascade{relist},
		},
		cart.KeyAddToCart: {
			SuccessNotice: NoticeAddedToCart,
			FailureNotice: NoticeAddToCartFailed,
		},
		cart.KeyDeleteCartItem: {
			SuccessNotice: NoticeRemovedFromCart,
			FailureNotice: NoticeRemoveFailed,
		},
		cart.KeyUpdateQuantity: {
			FailureNotice: NoticeUpdateQtyFailed,
		},
		session.KeyRegisterUser: {
			SuccessNotice: NoticeRegistered,
			FailureNotice: NoticeRegistrationFailed,
		},
		session.KeyLogout: {
			Resets: []lifecycle.Reset{items.ResetEdge()},
		},
	}
}

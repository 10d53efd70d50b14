package cart

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/EcommerceGo/storefront/internal/lifecycle"
	"github.com/utafrali/EcommerceGo/storefront/internal/notify"
	"github.com/utafrali/EcommerceGo/storefront/internal/remote"
	"github.com/utafrali/EcommerceGo/storefront/internal/remote/remotetest"
	apperrors "github.com/utafrali/EcommerceGo/storefront/pkg/errors"
	"github.com/utafrali/EcommerceGo/storefront/pkg/logger"
)

func newTestStore(t *testing.T) (*Store, *remotetest.Requester, *lifecycle.Executor) {
	t.Helper()
	exec := lifecycle.NewExecutor(notify.NewChannel(logger.Discard()), logger.Discard())
	api := &remotetest.Requester{}
	t.Cleanup(func() { api.AssertExpectations(t) })
	return New(exec, api), api, exec
}

func cartBody(total string, lines ...CartLine) any {
	return map[string]any{"data": lines, "totalPrice": decimal.RequireFromString(total)}
}

var (
	lineA = CartLine{ID: "c1", ProductID: "p1", Size: "m", Qty: 2}
	lineB = CartLine{ID: "c2", ProductID: "p2", Size: "s", Qty: 3}
)

func addBody(id, size string) addRequest {
	return addRequest{ProductID: id, Size: size, Qty: 1}
}

// --- AddToCart ---

func TestAddToCart_CountFromRemote(t *testing.T) {
	store, api, _ := newTestStore(t)
	api.On("Request", mock.Anything, http.MethodPost, "/cart", addBody("p1", "m"), mock.Anything).
		Return(remotetest.Raw(http.StatusOK, `7`), nil)

	n, err := store.AddToCart(context.Background(), AddInput{ProductID: "p1", Size: "m"})

	require.NoError(t, err)
	assert.Equal(t, 7, n)
	st := store.State()
	assert.Equal(t, 7, st.CartItemCount)
	assert.Empty(t, st.Error)
	assert.False(t, st.Loading)
}

func TestAddToCart_CountInObject(t *testing.T) {
	store, api, _ := newTestStore(t)
	api.On("Request", mock.Anything, http.MethodPost, "/cart", addBody("p1", "m"), mock.Anything).
		Return(remotetest.Raw(http.StatusCreated, `{"status":"success","cartItemQty":3}`), nil)

	n, err := store.AddToCart(context.Background(), AddInput{ProductID: "p1", Size: "m"})

	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestAddToCart_ServerErrorLeavesCount(t *testing.T) {
	store, api, _ := newTestStore(t)
	api.On("Request", mock.Anything, http.MethodPost, "/cart", addBody("p1", "m"), mock.Anything).
		Return(remotetest.Raw(http.StatusOK, `2`), nil).Once()
	api.On("Request", mock.Anything, http.MethodPost, "/cart", addBody("p1", "m"), mock.Anything).
		Return(remotetest.Raw(http.StatusInternalServerError, `{"error":"cart unavailable"}`), nil).Once()

	_, err := store.AddToCart(context.Background(), AddInput{ProductID: "p1", Size: "m"})
	require.NoError(t, err)
	_, err = store.AddToCart(context.Background(), AddInput{ProductID: "p1", Size: "m"})
	require.Error(t, err)

	st := store.State()
	assert.Equal(t, "cart unavailable", st.Error)
	assert.False(t, st.Loading)
	assert.Equal(t, 2, st.CartItemCount)
}

func TestAddToCart_NegativeCountRejected(t *testing.T) {
	store, api, _ := newTestStore(t)
	api.On("Request", mock.Anything, http.MethodPost, "/cart", mock.Anything, mock.Anything).
		Return(remotetest.Raw(http.StatusOK, `-1`), nil)

	_, err := store.AddToCart(context.Background(), AddInput{ProductID: "p1", Size: "m"})

	require.Error(t, err)
	st := store.State()
	assert.Equal(t, "invalid cart count", st.Error)
	assert.Zero(t, st.CartItemCount)
}

func TestAddToCart_MissingSizeNeverDispatched(t *testing.T) {
	store, api, _ := newTestStore(t)

	_, err := store.AddToCart(context.Background(), AddInput{ProductID: "p1"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
	api.AssertNotCalled(t, "Request", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, initialState(), store.State())
}

func TestAddToCart_LoadingDuringCall(t *testing.T) {
	store, api, _ := newTestStore(t)
	api.On("Request", mock.Anything, http.MethodPost, "/cart", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			assert.True(t, store.State().Loading)
		}).
		Return(remotetest.Raw(http.StatusOK, `1`), nil)

	_, err := store.AddToCart(context.Background(), AddInput{ProductID: "p1", Size: "m"})
	require.NoError(t, err)
}

// --- Lines ---

func TestListCart_DerivesCount(t *testing.T) {
	store, api, _ := newTestStore(t)
	api.On("Request", mock.Anything, http.MethodGet, "/cart", nil, mock.Anything).
		Return(remotetest.JSON(http.StatusOK, cartBody("120.5", lineA, lineB)), nil)

	lines, err := store.ListCart(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []CartLine{lineA, lineB}, lines)
	st := store.State()
	assert.Equal(t, 5, st.CartItemCount)
	assert.True(t, st.TotalPrice.Equal(decimal.RequireFromString("120.5")))
}

func TestListCart_FailureIsSilentIntoError(t *testing.T) {
	store, api, _ := newTestStore(t)
	api.On("Request", mock.Anything, http.MethodGet, "/cart", nil, mock.Anything).
		Return(nil, apperrors.Transport(0, "timeout"))

	_, err := store.ListCart(context.Background())

	require.Error(t, err)
	assert.Equal(t, "timeout", store.State().Error)
}

func TestDeleteCartItem(t *testing.T) {
	store, api, _ := newTestStore(t)
	api.On("Request", mock.Anything, http.MethodDelete, "/cart/c2", nil, mock.Anything).
		Return(remotetest.JSON(http.StatusOK, cartBody("40", lineA)), nil)

	lines, err := store.DeleteCartItem(context.Background(), "c2")

	require.NoError(t, err)
	assert.Equal(t, []CartLine{lineA}, lines)
	assert.Equal(t, 2, store.State().CartItemCount)
}

func TestDeleteCartItem_EmptyCart(t *testing.T) {
	store, api, _ := newTestStore(t)
	api.On("Request", mock.Anything, http.MethodDelete, "/cart/c1", nil, mock.Anything).
		Return(remotetest.Raw(http.StatusOK, `{"data":[],"totalPrice":0}`), nil)

	_, err := store.DeleteCartItem(context.Background(), "c1")

	require.NoError(t, err)
	st := store.State()
	assert.Empty(t, st.CartList)
	assert.NotNil(t, st.CartList)
	assert.Zero(t, st.CartItemCount)
}

func TestUpdateQuantity(t *testing.T) {
	store, api, _ := newTestStore(t)
	in := UpdateInput{ID: "c1", Qty: 4}
	updated := lineA
	updated.Qty = 4
	api.On("Request", mock.Anything, http.MethodPut, "/cart/c1", in, mock.Anything).
		Return(remotetest.JSON(http.StatusOK, cartBody("80", updated, lineB)), nil)

	_, err := store.UpdateQuantity(context.Background(), in)

	require.NoError(t, err)
	assert.Equal(t, 7, store.State().CartItemCount)
}

func TestUpdateQuantity_ZeroRejectedLocally(t *testing.T) {
	store, api, _ := newTestStore(t)

	_, err := store.UpdateQuantity(context.Background(), UpdateInput{ID: "c1", Qty: 0})

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
	api.AssertNotCalled(t, "Request", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateQuantity_NonPositiveLineRejected(t *testing.T) {
	for name, body := range map[string]string{
		"negative": `{"data":[{"_id":"c1","qty":-3}],"totalPrice":0}`,
		"zero":     `{"data":[{"_id":"c1","qty":0}],"totalPrice":0}`,
		"missing":  `{"data":[{"_id":"c1"}],"totalPrice":0}`,
	} {
		t.Run(name, func(t *testing.T) {
			store, api, _ := newTestStore(t)
			api.On("Request", mock.Anything, http.MethodPut, "/cart/c1", mock.Anything, mock.Anything).
				Return(remotetest.Raw(http.StatusOK, body), nil)

			_, err := store.UpdateQuantity(context.Background(), UpdateInput{ID: "c1", Qty: 1})

			require.Error(t, err)
			assert.Equal(t, "invalid cart line quantity", store.State().Error)
			assert.Empty(t, store.State().CartList)
		})
	}
}

func TestFetchCartCount(t *testing.T) {
	store, api, _ := newTestStore(t)
	api.On("Request", mock.Anything, http.MethodGet, "/cart/qty", nil, mock.Anything).
		Return(remotetest.Raw(http.StatusOK, `{"qty":9}`), nil)

	n, err := store.FetchCartCount(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 9, n)
	assert.Equal(t, 9, store.State().CartItemCount)
}

func TestDecodeCount_Malformed(t *testing.T) {
	_, err := decodeCount(&remote.Response{Status: http.StatusOK, Data: []byte(`{"status":"ok"}`)})
	require.Error(t, err)
	assert.Equal(t, "malformed cart count", apperrors.Message(err))

	_, err = decodeCount(&remote.Response{Status: http.StatusOK, Data: []byte(`"three"`)})
	require.Error(t, err)
}

// --- Local transitions ---

func TestSelectItem(t *testing.T) {
	store, _, _ := newTestStore(t)

	store.SelectItem(context.Background(), lineB)

	st := store.State()
	require.NotNil(t, st.SelectedItem)
	assert.Equal(t, lineB, *st.SelectedItem)
}

func TestReset(t *testing.T) {
	store, api, _ := newTestStore(t)
	api.On("Request", mock.Anything, http.MethodGet, "/cart", nil, mock.Anything).
		Return(remotetest.JSON(http.StatusOK, cartBody("10", lineA)), nil)
	_, err := store.ListCart(context.Background())
	require.NoError(t, err)
	store.SelectItem(context.Background(), lineA)

	store.Reset(context.Background())

	st := store.State()
	assert.Zero(t, st.CartItemCount)
	assert.Empty(t, st.CartList)
	assert.Nil(t, st.SelectedItem)
	assert.True(t, st.TotalPrice.IsZero())
}

func TestResetEdge(t *testing.T) {
	store, api, exec := newTestStore(t)
	api.On("Request", mock.Anything, http.MethodPost, "/cart", mock.Anything, mock.Anything).
		Return(remotetest.Raw(http.StatusOK, `4`), nil)
	_, err := store.AddToCart(context.Background(), AddInput{ProductID: "p1", Size: "m"})
	require.NoError(t, err)

	owner := lifecycle.Key{Store: "session", Operation: "logout"}
	require.NoError(t, exec.Wire(lifecycle.Table{owner: {Resets: []lifecycle.Reset{store.ResetEdge()}}}))
	exec.Apply(context.Background(), owner, nil)

	assert.Zero(t, store.State().CartItemCount)
	assert.Equal(t, KeyReset, store.ResetEdge().Target())
}

func TestReset_DiscardsCallDispatchedBefore(t *testing.T) {
	store, api, _ := newTestStore(t)
	ctx := context.Background()

	inFlight := make(chan struct{})
	release := make(chan struct{})
	api.On("Request", mock.Anything, http.MethodGet, "/cart", nil, mock.Anything).
		Run(func(mock.Arguments) {
			close(inFlight)
			<-release
		}).
		Return(remotetest.JSON(http.StatusOK, cartBody("10", lineA)), nil).Once()
	api.On("Request", mock.Anything, http.MethodGet, "/cart/qty", nil, mock.Anything).
		Return(remotetest.Raw(http.StatusOK, `2`), nil).Once()

	done := make(chan error, 1)
	go func() {
		_, err := store.ListCart(ctx)
		done <- err
	}()

	<-inFlight
	store.Reset(ctx)
	close(release)
	err := <-done

	require.ErrorIs(t, err, apperrors.ErrSuperseded)
	st := store.State()
	assert.Empty(t, st.CartList)
	assert.Zero(t, st.CartItemCount)
	assert.False(t, st.Loading)

	n, err := store.FetchCartCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, store.State().CartItemCount, "calls dispatched after a reset still apply")
}

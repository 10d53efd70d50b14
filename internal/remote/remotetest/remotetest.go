// Package remotetest provides a testify mock of remote.Requester.
package remotetest

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/stretchr/testify/mock"

	"github.com/utafrali/EcommerceGo/storefront/internal/remote"
)

// Requester is a mock remote.Requester.
type Requester struct {
	mock.Mock
}

func (m *Requester) Request(ctx context.Context, method, path string, body any, params url.Values) (*remote.Response, error) {
	args := m.Called(ctx, method, path, body, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*remote.Response), args.Error(1)
}

// JSON builds a response carrying v encoded as JSON.
func JSON(status int, v any) *remote.Response {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return &remote.Response{Status: status, Data: data}
}

// Raw builds a response with a literal body.
func Raw(status int, body string) *remote.Response {
	return &remote.Response{Status: status, Data: []byte(body)}
}

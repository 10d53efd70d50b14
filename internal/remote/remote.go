// Package remote is the storefront's view of the REST service it synchronizes with.
package remote

import (
	"context"
	"encoding/json"
	"net/url"

	apperrors "github.com/utafrali/EcommerceGo/storefront/pkg/errors"
	"github.com/utafrali/EcommerceGo/storefront/pkg/httpclient"
)

// Response is a completed exchange with the remote service. A non-success
// Status is still a Response; only calls that never got an answer return an error.
type Response struct {
	Status int
	Data   json.RawMessage
}

// Requester performs one request against the remote service. body is JSON
// encoded when non-nil; params are appended as the query string.
type Requester interface {
	Request(ctx context.Context, method, path string, body any, params url.Values) (*Response, error)
}

// Check returns a TransportFailure when resp does not carry a success status.
func Check(resp *Response) error {
	if resp == nil {
		return apperrors.Transport(0, "empty response")
	}
	if !apperrors.IsSuccessStatus(resp.Status) {
		return apperrors.Transport(resp.Status, httpclient.ErrorMessage(resp.Status, resp.Data))
	}
	return nil
}

// Decode checks resp and unmarshals its payload into T.
func Decode[T any](resp *Response) (T, error) {
	var v T
	if err := Check(resp); err != nil {
		return v, err
	}
	if err := json.Unmarshal(resp.Data, &v); err != nil {
		return v, apperrors.Transport(resp.Status, "malformed response: "+err.Error())
	}
	return v, nil
}

package httpclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// errorBody covers the error shapes the storefront API answers with:
//
//	{"status":"fail","error":"invalid password"}
//	{"error":{"code":"OUT_OF_STOCK","message":"size m is sold out"}}
//	{"message":"product not found"}
type errorBody struct {
	Error   json.RawMessage `json:"error"`
	Message string          `json:"message"`
}

type structuredError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorMessage extracts the human-readable message from a failed response body.
// Unrecognized bodies fall back to the trimmed raw text, and an empty body to the
// status text.
func ErrorMessage(status int, body []byte) string {
	var parsed errorBody
	if json.Unmarshal(body, &parsed) == nil {
		if len(parsed.Error) > 0 {
			var s string
			if json.Unmarshal(parsed.Error, &s) == nil && s != "" {
				return s
			}
			var se structuredError
			if json.Unmarshal(parsed.Error, &se) == nil && se.Message != "" {
				return se.Message
			}
		}
		if parsed.Message != "" {
			return parsed.Message
		}
	}

	if raw := strings.TrimSpace(string(body)); raw != "" && !strings.HasPrefix(raw, "{") {
		return raw
	}

	if text := http.StatusText(status); text != "" {
		return fmt.Sprintf("request failed with status %d (%s)", status, text)
	}
	return fmt.Sprintf("request failed with status %d", status)
}

// IsClientError returns true if the HTTP status code is a 4xx client error.
func IsClientError(status int) bool {
	return status >= 400 && status < 500
}

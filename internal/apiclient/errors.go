package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrAuthRequired is returned before any I/O when an authenticated call is
// attempted without a stored credential.
var ErrAuthRequired = errors.New("authentication required")

// NetworkError means no HTTP response reached the client.
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error on %s %s: %v", e.Method, e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPError is a 4xx/5xx answer from the backend. Payload is the raw body.
type HTTPError struct {
	Method  string
	Path    string
	Status  int
	Payload []byte
}

func (e *HTTPError) Error() string {
	if detail := e.Detail(); detail != "" {
		return fmt.Sprintf("%s %s returned status %d: %s", e.Method, e.Path, e.Status, detail)
	}
	return fmt.Sprintf("%s %s returned status %d", e.Method, e.Path, e.Status)
}

// Detail extracts a human readable message from the payload. It understands
// {"detail": ...}, {"error": ...} and field error maps such as
// {"username": ["already exists"]}.
func (e *HTTPError) Detail() string {
	if len(e.Payload) == 0 {
		return ""
	}

	var body map[string]interface{}
	if err := json.Unmarshal(e.Payload, &body); err != nil {
		var list []string
		if err := json.Unmarshal(e.Payload, &list); err == nil && len(list) > 0 {
			return list[0]
		}
		return ""
	}

	for _, key := range []string{"detail", "error", "non_field_errors"} {
		if msg := firstMessage(body[key]); msg != "" {
			return msg
		}
	}

	keys := make([]string, 0, len(body))
	for key := range body {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if msg := firstMessage(body[key]); msg != "" {
			return key + ": " + msg
		}
	}
	return ""
}

func firstMessage(v interface{}) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case []interface{}:
		for _, item := range val {
			if msg := firstMessage(item); msg != "" {
				return msg
			}
		}
	}
	return ""
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var herr *HTTPError
	if errors.As(err, &herr) {
		return herr.Status
	}
	return 0
}

// Message picks the best user-facing text for err, falling back to fallback.
func Message(err error, fallback string) string {
	var herr *HTTPError
	if errors.As(err, &herr) {
		if detail := herr.Detail(); detail != "" {
			return detail
		}
	}
	return fallback
}

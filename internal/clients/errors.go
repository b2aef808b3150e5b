package clients

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Kind is the disposition class of a failed call.
type Kind string

const (
	KindAuthExpired  Kind = "auth_expired"
	KindForbidden    Kind = "forbidden"
	KindNotFound     Kind = "not_found"
	KindServerError  Kind = "server_error"
	KindUnclassified Kind = "unclassified"
)

var (
	ErrAuthExpired  = errors.New("session expired")
	ErrForbidden    = errors.New("permission denied")
	ErrNotFound     = errors.New("resource not found")
	ErrServerError  = errors.New("server error")
	ErrUnclassified = errors.New("request failed")
)

// maxErrorBody bounds how much of a failed response is kept.
const maxErrorBody = 1 << 20

func ClassifyStatus(code int) Kind {
	switch code {
	case http.StatusUnauthorized:
		return KindAuthExpired
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusInternalServerError:
		return KindServerError
	default:
		return KindUnclassified
	}
}

// APIError is returned for every failed backend call. StatusCode is 0
// when no response was received; Err then holds the transport error.
type APIError struct {
	Kind       Kind
	Method     string
	Path       string
	StatusCode int
	Body       []byte
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
}

func (e *APIError) Unwrap() []error {
	errs := []error{e.Kind.sentinel()}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func (k Kind) sentinel() error {
	switch k {
	case KindAuthExpired:
		return ErrAuthExpired
	case KindForbidden:
		return ErrForbidden
	case KindNotFound:
		return ErrNotFound
	case KindServerError:
		return ErrServerError
	default:
		return ErrUnclassified
	}
}

// AsAPIError is a shorthand for errors.As with *APIError.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// newResponseError consumes and closes resp.Body.
func newResponseError(req *http.Request, resp *http.Response) *APIError {
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &APIError{
		Kind:       ClassifyStatus(resp.StatusCode),
		Method:     req.Method,
		Path:       req.URL.Path,
		StatusCode: resp.StatusCode,
		Body:       body,
		Message:    backendMessage(body),
	}
}

func newTransportError(req *http.Request, err error) *APIError {
	return &APIError{
		Kind:   KindUnclassified,
		Method: req.Method,
		Path:   req.URL.Path,
		Err:    err,
	}
}

func backendMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Message
}

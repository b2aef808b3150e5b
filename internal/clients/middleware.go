package clients

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const HeaderRequestID = "X-Request-ID"

type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type DoerFunc func(req *http.Request) (*http.Response, error)

func (f DoerFunc) Do(req *http.Request) (*http.Response, error) {
	return f(req)
}

// Middleware wraps a Doer. Chains are built outermost first.
type Middleware func(next Doer) Doer

func Chain(base Doer, middlewares ...Middleware) Doer {
	for i := len(middlewares) - 1; i >= 0; i-- {
		base = middlewares[i](base)
	}
	return base
}

func RequestID() Middleware {
	return func(next Doer) Doer {
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			if req.Header.Get(HeaderRequestID) == "" {
				req.Header.Set(HeaderRequestID, uuid.NewString())
			}
			return next.Do(req)
		})
	}
}

func RequestLogger(logger *logrus.Logger) Middleware {
	return func(next Doer) Doer {
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			startTime := time.Now()
			entry := logger.WithFields(logrus.Fields{
				"method": req.Method,
				"path":   req.URL.Path,
			})
			if reqID := req.Header.Get(HeaderRequestID); reqID != "" {
				entry = entry.WithField("request_id", reqID)
			}
			entry.Debug("Outgoing request")

			resp, err := next.Do(req)
			entry = entry.WithField("latency_ms", time.Since(startTime).Milliseconds())
			if err != nil {
				entry.Errorf("Request failed without response: %v", err)
				return resp, err
			}

			entry = entry.WithField("status_code", resp.StatusCode)
			switch {
			case resp.StatusCode >= 500:
				entry.Error("Request completed with server error")
			case resp.StatusCode >= 400:
				entry.Warn("Request completed with client error")
			default:
				entry.Debug("Request completed successfully")
			}
			return resp, nil
		})
	}
}

// TokenSource yields the current bearer credential, "" if none.
type TokenSource interface {
	Token(ctx context.Context) string
}

type bearerOverrideKey struct{}

// WithBearerToken pins the credential used for calls made with ctx,
// regardless of what the TokenSource holds.
func WithBearerToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, bearerOverrideKey{}, token)
}

func BearerToken(src TokenSource) Middleware {
	return func(next Doer) Doer {
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			token, pinned := req.Context().Value(bearerOverrideKey{}).(string)
			if !pinned {
				token = src.Token(req.Context())
			}
			if token != "" {
				req.Header.Set("Authorization", "Bearer "+token)
			}
			return next.Do(req)
		})
	}
}

// FailureDisposition turns non-2xx responses and transport failures into
// *APIError, hands them to h, and returns them to the caller.
func FailureDisposition(h FailureHandler) Middleware {
	return func(next Doer) Doer {
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			resp, err := next.Do(req)
			if err != nil {
				apiErr := newTransportError(req, err)
				h.HandleFailure(req.Context(), apiErr)
				return nil, apiErr
			}
			if isSuccess(resp.StatusCode) {
				return resp, nil
			}
			apiErr := newResponseError(req, resp)
			h.HandleFailure(req.Context(), apiErr)
			return nil, apiErr
		})
	}
}

func isSuccess(code int) bool {
	return code >= 200 && code < 300
}

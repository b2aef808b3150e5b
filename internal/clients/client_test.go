package clients

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"storefront/internal/notify"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCredentials struct {
	mu      sync.Mutex
	token   string
	cleared int
}

func (f *fakeCredentials) Token(ctx context.Context) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

func (f *fakeCredentials) Clear(ctx context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = ""
	f.cleared++
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestClient(t *testing.T, baseURL string, creds *fakeCredentials, rec *notify.Recorder, timeout time.Duration) *Client {
	t.Helper()
	logger := quietLogger()
	disp := NewDisposition(creds, rec, rec, "/login", logger)
	c, err := NewStandardClient(Options{BaseURL: baseURL + "/api/v1", Timeout: timeout}, creds, disp, logger)
	require.NoError(t, err)
	return c
}

func TestClientAttachesBearerAndRequestID(t *testing.T) {
	var gotAuth, gotReqID, gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotReqID = r.Header.Get(HeaderRequestID)
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	creds := &fakeCredentials{token: "tok1"}
	c := newTestClient(t, srv.URL, creds, notify.NewRecorder(), time.Second)

	resp, err := c.Get(context.Background(), "/products", map[string][]string{"size": {"6"}})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"ok":true}`, string(resp.Body))
	assert.Equal(t, "Bearer tok1", gotAuth)
	assert.NotEmpty(t, gotReqID)
	assert.Equal(t, "/api/v1/products", gotPath)
	assert.Equal(t, "size=6", gotQuery)
}

func TestClientOmitsBearerWithoutCredential(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, &fakeCredentials{}, notify.NewRecorder(), time.Second)
	_, err := c.Post(context.Background(), "/auth/logout", nil)
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestClientPinnedBearerOverridesSource(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, &fakeCredentials{}, notify.NewRecorder(), time.Second)
	_, err := c.Post(WithBearerToken(context.Background(), "old-token"), "/auth/logout", nil)
	require.NoError(t, err)
	assert.Equal(t, "Bearer old-token", gotAuth)
}

func TestClientFailureDispositions(t *testing.T) {
	cases := []struct {
		name        string
		status      int
		body        string
		wantKind    Kind
		wantErr     error
		wantMessage string
		wantCleared bool
		wantNav     []string
	}{
		{"unauthorized", http.StatusUnauthorized, `{"message":"Token expired"}`, KindAuthExpired, ErrAuthExpired, MsgSessionExpired, true, []string{"/login"}},
		{"forbidden", http.StatusForbidden, ``, KindForbidden, ErrForbidden, MsgAccessDenied, false, nil},
		{"not found", http.StatusNotFound, ``, KindNotFound, ErrNotFound, MsgNotFound, false, nil},
		{"server error", http.StatusInternalServerError, `{"message":"boom"}`, KindServerError, ErrServerError, MsgServerError, false, nil},
		{"backend message", http.StatusBadRequest, `{"status":400,"message":"Insufficient stock. Available: 2"}`, KindUnclassified, ErrUnclassified, "Insufficient stock. Available: 2", false, nil},
		{"generic", http.StatusBadGateway, `Bad Gateway`, KindUnclassified, ErrUnclassified, MsgUnexpected, false, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			creds := &fakeCredentials{token: "tok1"}
			rec := notify.NewRecorder()
			c := newTestClient(t, srv.URL, creds, rec, time.Second)

			_, err := c.Get(context.Background(), "/cart", nil)
			require.Error(t, err)

			apiErr, ok := AsAPIError(err)
			require.True(t, ok)
			assert.Equal(t, tc.wantKind, apiErr.Kind)
			assert.Equal(t, tc.status, apiErr.StatusCode)
			assert.Equal(t, tc.body, string(apiErr.Body))
			assert.ErrorIs(t, err, tc.wantErr)

			assert.Equal(t, []string{tc.wantMessage}, rec.Messages())
			assert.Equal(t, tc.wantNav, nilIfEmpty(rec.Navigations()))
			if tc.wantCleared {
				assert.Equal(t, 1, creds.cleared)
				assert.Empty(t, creds.token)
			} else {
				assert.Equal(t, 0, creds.cleared)
				assert.Equal(t, "tok1", creds.token)
			}
		})
	}
}

func nilIfEmpty(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return s
}

func TestClientTransportFailureIsUnclassified(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := srv.URL
	srv.Close()

	rec := notify.NewRecorder()
	c := newTestClient(t, baseURL, &fakeCredentials{token: "tok1"}, rec, time.Second)

	_, err := c.Get(context.Background(), "/cart", nil)
	require.Error(t, err)

	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, KindUnclassified, apiErr.Kind)
	assert.Equal(t, 0, apiErr.StatusCode)
	assert.Error(t, apiErr.Err)
	assert.Equal(t, []string{MsgUnexpected}, rec.Messages())
}

func TestClientTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := newTestClient(t, srv.URL, &fakeCredentials{}, notify.NewRecorder(), 50*time.Millisecond)

	_, err := c.Get(context.Background(), "/cart", nil)
	require.Error(t, err)

	var netErr net.Error
	require.True(t, errors.As(err, &netErr))
	assert.True(t, netErr.Timeout())
	assert.ErrorIs(t, err, ErrUnclassified)
}

func TestChainOrderIsOutermostFirst(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next Doer) Doer {
			return DoerFunc(func(req *http.Request) (*http.Response, error) {
				order = append(order, name)
				return next.Do(req)
			})
		}
	}
	base := DoerFunc(func(req *http.Request) (*http.Response, error) {
		order = append(order, "base")
		return &http.Response{StatusCode: http.StatusNoContent, Body: http.NoBody}, nil
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := Chain(base, mark("a"), mark("b")).Do(req)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "base"}, order)
}

func TestNewClientRejectsEmptyBaseURL(t *testing.T) {
	_, err := NewClient(Options{BaseURL: "  "}, quietLogger())
	assert.Error(t, err)
}

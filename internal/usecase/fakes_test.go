package usecase

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"storefront/internal/clients"
	"storefront/internal/domain"
	"storefront/internal/notify"
	"storefront/internal/repository"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

var zeroTime time.Time

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type fakeAuth struct {
	mu           sync.Mutex
	calls        []string
	loginFn      func(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error)
	registerFn   func(ctx context.Context, req domain.RegisterRequest) (*domain.RegisterResult, error)
	logoutFn     func(ctx context.Context) error
	getProfileFn func(ctx context.Context) (*domain.User, error)
}

func (f *fakeAuth) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
}

func (f *fakeAuth) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeAuth) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error) {
	f.record("login")
	return f.loginFn(ctx, req)
}

func (f *fakeAuth) Register(ctx context.Context, req domain.RegisterRequest) (*domain.RegisterResult, error) {
	f.record("register")
	return f.registerFn(ctx, req)
}

func (f *fakeAuth) Logout(ctx context.Context) error {
	f.record("logout")
	if f.logoutFn == nil {
		return nil
	}
	return f.logoutFn(ctx)
}

func (f *fakeAuth) GetProfile(ctx context.Context) (*domain.User, error) {
	f.record("profile")
	return f.getProfileFn(ctx)
}

type fakeCart struct {
	getCartFn func(ctx context.Context) (*domain.Cart, error)
	mutateErr error
	calls     []string
}

func (f *fakeCart) GetCart(ctx context.Context) (*domain.Cart, error) {
	f.calls = append(f.calls, "get")
	return f.getCartFn(ctx)
}

func (f *fakeCart) AddCartItem(ctx context.Context, productID int64, quantity int) error {
	f.calls = append(f.calls, "add")
	return f.mutateErr
}

func (f *fakeCart) UpdateCartItem(ctx context.Context, itemID int64, quantity int) error {
	f.calls = append(f.calls, "update")
	return f.mutateErr
}

func (f *fakeCart) RemoveCartItem(ctx context.Context, itemID int64) error {
	f.calls = append(f.calls, "remove")
	return f.mutateErr
}

func (f *fakeCart) ClearCart(ctx context.Context) error {
	f.calls = append(f.calls, "clear")
	return f.mutateErr
}

// recordingRepo remembers the expiry of every save.
type recordingRepo struct {
	*repository.MemoryStateRepository
	mu      sync.Mutex
	expires map[string]time.Time
}

func newRecordingRepo() *recordingRepo {
	return &recordingRepo{MemoryStateRepository: repository.NewMemoryStateRepository(), expires: map[string]time.Time{}}
}

func (r *recordingRepo) Save(ctx context.Context, key string, value []byte, expiresAt time.Time) error {
	r.mu.Lock()
	r.expires[key] = expiresAt
	r.mu.Unlock()
	return r.MemoryStateRepository.Save(ctx, key, value, expiresAt)
}

// gatedRepo holds the first save of key whose value contains marker
// until release is closed.
type gatedRepo struct {
	*repository.MemoryStateRepository
	key     string
	marker  string
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func newGatedRepo(key, marker string) *gatedRepo {
	return &gatedRepo{
		MemoryStateRepository: repository.NewMemoryStateRepository(),
		key:                   key,
		marker:                marker,
		entered:               make(chan struct{}),
		release:               make(chan struct{}),
	}
}

func (r *gatedRepo) Save(ctx context.Context, key string, value []byte, expiresAt time.Time) error {
	if key == r.key && strings.Contains(string(value), r.marker) {
		r.once.Do(func() {
			close(r.entered)
			<-r.release
		})
	}
	return r.MemoryStateRepository.Save(ctx, key, value, expiresAt)
}

// backend is an httptest server that logs "METHOD path" per request.
type backend struct {
	mu       sync.Mutex
	requests []string
	headers  []http.Header
	bodies   []string
}

func (b *backend) Requests() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.requests...)
}

func (b *backend) Bodies() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.bodies...)
}

func (b *backend) Header(i int) http.Header {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.headers[i]
}

func (b *backend) wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		b.mu.Lock()
		b.requests = append(b.requests, r.Method+" "+r.URL.Path)
		b.headers = append(b.headers, r.Header.Clone())
		b.bodies = append(b.bodies, string(body))
		b.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type harness struct {
	backend *backend
	repo    *repository.MemoryStateRepository
	creds   *CredentialStore
	rec     *notify.Recorder
	api     *clients.StorefrontAPI
	session *SessionStore
	cart    *CartStore
}

// newHarness wires the real client stack against mux.
func newHarness(t *testing.T, mux http.Handler) *harness {
	t.Helper()
	b := &backend{}
	srv := httptest.NewServer(b.wrap(mux))
	t.Cleanup(srv.Close)

	ctx := context.Background()
	log := quietLogger()
	repo := repository.NewMemoryStateRepository()
	creds := NewCredentialStore(repo, 0, log)
	rec := notify.NewRecorder()
	disp := clients.NewDisposition(creds, rec, rec, "/login", log)
	c, err := clients.NewStandardClient(clients.Options{BaseURL: srv.URL + "/api/v1", Timeout: 2 * time.Second}, creds, disp, log)
	require.NoError(t, err)
	api := clients.NewStorefrontAPI(c, log)

	return &harness{
		backend: b,
		repo:    repo,
		creds:   creds,
		rec:     rec,
		api:     api,
		session: NewSessionStore(ctx, api, creds, repo, domain.NameSplitSecond, log),
		cart:    NewCartStore(ctx, api, rec, repo, log),
	}
}

package usecase

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"storefront/internal/clients"
	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func aliceLoginMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"accessToken": "tok1",
			"userId":      7,
			"fullName":    "Alice Smith",
			"username":    "alice",
			"email":       "a@x.com",
			"role":        "USER",
		})
	})
	return mux
}

func TestLoginScenario(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, aliceLoginMux())

	require.NoError(t, h.session.Login(ctx, "alice", "pw"))

	assert.Equal(t, domain.Session{
		User: &domain.User{
			ID:        7,
			FirstName: "Alice",
			LastName:  "Smith",
			Username:  "alice",
			Email:     "a@x.com",
			Role:      domain.RoleUser,
		},
		IsAuthenticated: true,
	}, h.session.Snapshot())
	assert.Equal(t, "tok1", h.creds.Token(ctx))
	assert.JSONEq(t, `{"usernameOrEmail":"alice","password":"pw"}`, h.backend.Bodies()[0])

	raw, err := h.repo.Load(ctx, SessionStateKey)
	require.NoError(t, err)
	assert.JSONEq(t, `{"state":{"user":{"id":7,"firstName":"Alice","lastName":"Smith","username":"alice","email":"a@x.com","role":"USER"},"isAuthenticated":true},"version":0}`, string(raw))
}

func TestLoginFailureLeavesSessionAnonymous(t *testing.T) {
	ctx := context.Background()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"status": 400, "message": "Invalid username or password"})
	})
	h := newHarness(t, mux)

	err := h.session.Login(ctx, "alice", "nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, clients.ErrUnclassified)

	snap := h.session.Snapshot()
	assert.False(t, snap.IsAuthenticated)
	assert.False(t, snap.IsLoading)
	assert.Nil(t, snap.User)
	assert.Empty(t, h.creds.Token(ctx))
	assert.Equal(t, []string{"Invalid username or password"}, h.rec.Messages())
}

func TestLoginWithoutAccessTokenFails(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryStateRepository()
	creds := NewCredentialStore(repo, 0, quietLogger())
	auth := &fakeAuth{loginFn: func(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error) {
		return &domain.LoginResponse{UserID: 7, Username: "alice"}, nil
	}}
	s := NewSessionStore(ctx, auth, creds, repo, domain.NameSplitSecond, quietLogger())

	err := s.Login(ctx, "alice", "pw")
	assert.ErrorIs(t, err, domain.ErrMalformedResponse)
	assert.False(t, s.Snapshot().IsAuthenticated)
	assert.False(t, creds.Has(ctx))
}

func TestLoginNameSplitModes(t *testing.T) {
	ctx := context.Background()
	auth := &fakeAuth{loginFn: func(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error) {
		return &domain.LoginResponse{AccessToken: "tok", UserID: 1, FullName: "Mary Ann Van Dyke", Username: "mary", Role: domain.RoleUser}, nil
	}}

	for _, tc := range []struct {
		mode domain.NameSplitMode
		last string
	}{
		{domain.NameSplitSecond, "Ann"},
		{domain.NameSplitRest, "Ann Van Dyke"},
	} {
		repo := repository.NewMemoryStateRepository()
		s := NewSessionStore(ctx, auth, NewCredentialStore(repo, 0, quietLogger()), repo, tc.mode, quietLogger())
		require.NoError(t, s.Login(ctx, "mary", "pw"))
		assert.Equal(t, "Mary", s.Snapshot().User.FirstName)
		assert.Equal(t, tc.last, s.Snapshot().User.LastName, string(tc.mode))
	}
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	user := &domain.User{ID: 3, FirstName: "Bob", LastName: "Stone", Username: "bob", Email: "b@x.com", Role: domain.RoleUser}

	t.Run("success stores credential and user", func(t *testing.T) {
		repo := repository.NewMemoryStateRepository()
		creds := NewCredentialStore(repo, 0, quietLogger())
		auth := &fakeAuth{registerFn: func(ctx context.Context, req domain.RegisterRequest) (*domain.RegisterResult, error) {
			assert.Equal(t, "bob", req.Username)
			return &domain.RegisterResult{Token: "tok9", User: user}, nil
		}}
		s := NewSessionStore(ctx, auth, creds, repo, domain.NameSplitSecond, quietLogger())

		require.NoError(t, s.Register(ctx, domain.RegisterRequest{FirstName: "Bob", LastName: "Stone", Email: "b@x.com", Username: "bob", Password: "pw"}))
		assert.Equal(t, *user, *s.Snapshot().User)
		assert.True(t, s.Snapshot().IsAuthenticated)
		assert.Equal(t, "tok9", creds.Token(ctx))
	})

	t.Run("missing user is a failure", func(t *testing.T) {
		repo := repository.NewMemoryStateRepository()
		creds := NewCredentialStore(repo, 0, quietLogger())
		auth := &fakeAuth{registerFn: func(ctx context.Context, req domain.RegisterRequest) (*domain.RegisterResult, error) {
			return &domain.RegisterResult{Token: "tok9"}, nil
		}}
		s := NewSessionStore(ctx, auth, creds, repo, domain.NameSplitSecond, quietLogger())

		assert.ErrorIs(t, s.Register(ctx, domain.RegisterRequest{Username: "bob"}), domain.ErrMalformedResponse)
		assert.False(t, s.Snapshot().IsAuthenticated)
		assert.False(t, s.Snapshot().IsLoading)
		assert.False(t, creds.Has(ctx))
	})
}

func TestLogoutIsSynchronousAndUsesPreviousCredential(t *testing.T) {
	ctx := context.Background()
	release := make(chan struct{})
	var logoutAuth string
	var mu sync.Mutex

	mux := aliceLoginMux()
	mux.HandleFunc("POST /api/v1/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		<-release
		mu.Lock()
		logoutAuth = r.Header.Get("Authorization")
		mu.Unlock()
		writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "boom"})
	})
	h := newHarness(t, mux)
	require.NoError(t, h.session.Login(ctx, "alice", "pw"))

	h.session.Logout(ctx)

	snap := h.session.Snapshot()
	assert.False(t, snap.IsAuthenticated)
	assert.Nil(t, snap.User)
	assert.Empty(t, h.creds.Token(ctx))

	close(release)
	h.session.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "Bearer tok1", logoutAuth)
	assert.False(t, h.session.Snapshot().IsAuthenticated)
}

func TestCheckAuthWithoutCredentialMakesNoCall(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryStateRepository()
	stale := `{"state":{"user":{"id":1,"username":"ghost","role":"USER"},"isAuthenticated":true},"version":0}`
	require.NoError(t, repo.Save(ctx, SessionStateKey, []byte(stale), zeroTime))

	auth := &fakeAuth{}
	s := NewSessionStore(ctx, auth, NewCredentialStore(repo, 0, quietLogger()), repo, domain.NameSplitSecond, quietLogger())
	require.True(t, s.Snapshot().IsAuthenticated)

	s.CheckAuth(ctx)

	assert.Empty(t, auth.Calls())
	assert.Equal(t, domain.Session{}, s.Snapshot())
}

func TestCheckAuth(t *testing.T) {
	ctx := context.Background()
	user := &domain.User{ID: 7, Username: "alice", Role: domain.RoleAdmin}

	t.Run("valid credential confirms the user", func(t *testing.T) {
		repo := repository.NewMemoryStateRepository()
		creds := NewCredentialStore(repo, 0, quietLogger())
		require.NoError(t, creds.Set(ctx, "tok1"))
		auth := &fakeAuth{getProfileFn: func(ctx context.Context) (*domain.User, error) { return user, nil }}
		s := NewSessionStore(ctx, auth, creds, repo, domain.NameSplitSecond, quietLogger())

		s.CheckAuth(ctx)

		snap := s.Snapshot()
		assert.True(t, snap.IsAuthenticated)
		assert.True(t, snap.IsAdmin())
		assert.False(t, snap.IsLoading)
		assert.Equal(t, "tok1", creds.Token(ctx))
	})

	t.Run("rejected credential is cleared", func(t *testing.T) {
		repo := repository.NewMemoryStateRepository()
		creds := NewCredentialStore(repo, 0, quietLogger())
		require.NoError(t, creds.Set(ctx, "tok1"))
		auth := &fakeAuth{getProfileFn: func(ctx context.Context) (*domain.User, error) {
			return nil, errors.New("connection refused")
		}}
		s := NewSessionStore(ctx, auth, creds, repo, domain.NameSplitSecond, quietLogger())

		s.CheckAuth(ctx)

		assert.Equal(t, domain.Session{}, s.Snapshot())
		assert.False(t, creds.Has(ctx))
	})
}

func TestUnauthorizedResponseClearsCredentialAndNavigates(t *testing.T) {
	ctx := context.Background()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/users/profile", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"status": 401, "message": "Full authentication is required"})
	})
	h := newHarness(t, mux)
	require.NoError(t, h.creds.Set(ctx, "stale"))

	h.session.CheckAuth(ctx)

	assert.Empty(t, h.creds.Token(ctx))
	assert.Equal(t, []string{"/login"}, h.rec.Navigations())
	assert.Equal(t, []string{clients.MsgSessionExpired}, h.rec.Messages())
	assert.False(t, h.session.Snapshot().IsAuthenticated)
}

func TestSessionInvariantHoldsForEveryObservedState(t *testing.T) {
	ctx := context.Background()
	mux := aliceLoginMux()
	mux.HandleFunc("POST /api/v1/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /api/v1/users/profile", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{"id": 7, "username": "alice", "role": "USER"}})
	})
	h := newHarness(t, mux)

	var mu sync.Mutex
	var observed []domain.Session
	unsubscribe := h.session.Subscribe(func(s domain.Session) {
		mu.Lock()
		defer mu.Unlock()
		observed = append(observed, s)
	})
	defer unsubscribe()

	require.NoError(t, h.session.Login(ctx, "alice", "pw"))
	h.session.UpdateUser(ctx, domain.UserPatch{Email: ptr("new@x.com")})
	h.session.CheckAuth(ctx)
	h.session.Logout(ctx)
	h.session.Wait()
	h.session.CheckAuth(ctx)

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, observed)
	for i, s := range observed {
		assert.Equal(t, s.User != nil, s.IsAuthenticated, "state %d", i)
	}
}

func TestUpdateUser(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, aliceLoginMux())

	h.session.UpdateUser(ctx, domain.UserPatch{FirstName: ptr("Nobody")})
	assert.Nil(t, h.session.Snapshot().User)

	require.NoError(t, h.session.Login(ctx, "alice", "pw"))
	h.session.UpdateUser(ctx, domain.UserPatch{FirstName: ptr("Alicia")})

	u := h.session.Snapshot().User
	assert.Equal(t, "Alicia", u.FirstName)
	assert.Equal(t, "Smith", u.LastName)
	assert.Len(t, h.backend.Requests(), 1)
}

func TestSessionRestore(t *testing.T) {
	ctx := context.Background()

	t.Run("survives re-creating the store", func(t *testing.T) {
		h := newHarness(t, aliceLoginMux())
		require.NoError(t, h.session.Login(ctx, "alice", "pw"))

		again := NewSessionStore(ctx, h.api, h.creds, h.repo, domain.NameSplitSecond, quietLogger())
		snap := again.Snapshot()
		assert.True(t, snap.IsAuthenticated)
		assert.False(t, snap.IsLoading)
		assert.Equal(t, "alice", snap.User.Username)
	})

	t.Run("flag without user is normalised", func(t *testing.T) {
		repo := repository.NewMemoryStateRepository()
		require.NoError(t, repo.Save(ctx, SessionStateKey, []byte(`{"state":{"user":null,"isAuthenticated":true},"version":0}`), zeroTime))
		s := NewSessionStore(ctx, &fakeAuth{}, NewCredentialStore(repo, 0, quietLogger()), repo, domain.NameSplitSecond, quietLogger())
		assert.Equal(t, domain.Session{}, s.Snapshot())
	})

	t.Run("unreadable record is ignored", func(t *testing.T) {
		repo := repository.NewMemoryStateRepository()
		require.NoError(t, repo.Save(ctx, SessionStateKey, []byte(`not json`), zeroTime))
		s := NewSessionStore(ctx, &fakeAuth{}, NewCredentialStore(repo, 0, quietLogger()), repo, domain.NameSplitSecond, quietLogger())
		assert.Equal(t, domain.Session{}, s.Snapshot())
	})
}

func ptr[T any](v T) *T {
	return &v
}

func TestConcurrentSessionWritesPersistInOrder(t *testing.T) {
	ctx := context.Background()
	repo := newGatedRepo(SessionStateKey, `"username":"alice"`)
	creds := NewCredentialStore(repo, 0, quietLogger())
	auth := &fakeAuth{loginFn: func(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error) {
		return &domain.LoginResponse{AccessToken: "tok1", UserID: 7, Username: "alice", FullName: "Alice Smith", Role: domain.RoleUser}, nil
	}}
	s := NewSessionStore(ctx, auth, creds, repo, domain.NameSplitSecond, quietLogger())

	loggedIn := make(chan error, 1)
	go func() { loggedIn <- s.Login(ctx, "alice", "pw") }()
	<-repo.entered

	loggedOut := make(chan struct{})
	go func() {
		defer close(loggedOut)
		s.Logout(ctx)
	}()
	time.Sleep(20 * time.Millisecond)
	close(repo.release)

	require.NoError(t, <-loggedIn)
	<-loggedOut
	s.Wait()

	assert.Nil(t, s.Snapshot().User)
	restored := NewSessionStore(ctx, auth, creds, repo, domain.NameSplitSecond, quietLogger())
	assert.Nil(t, restored.Snapshot().User)
	assert.False(t, restored.Snapshot().IsAuthenticated)
}

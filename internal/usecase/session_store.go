package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"storefront/internal/clients"
	"storefront/internal/domain"

	"github.com/sirupsen/logrus"
)

// CredentialSlot is the persisted bearer credential the session store writes.
type CredentialSlot interface {
	Token(ctx context.Context) string
	Set(ctx context.Context, token string) error
	Clear(ctx context.Context)
}

// SessionStore owns the client's view of who is logged in.
type SessionStore struct {
	auth     domain.AuthGateway
	creds    CredentialSlot
	repo     domain.StateRepository
	nameMode domain.NameSplitMode
	log      *logrus.Logger

	// writeMu orders state changes with their saves and notifications.
	writeMu sync.Mutex
	mu      sync.RWMutex
	state   domain.Session
	subs    subscribers[domain.Session]

	background sync.WaitGroup
}

// NewSessionStore restores the persisted session, if any. The loading
// flag is never restored.
func NewSessionStore(ctx context.Context, auth domain.AuthGateway, creds CredentialSlot, repo domain.StateRepository, nameMode domain.NameSplitMode, logger *logrus.Logger) *SessionStore {
	s := &SessionStore{
		auth:     auth,
		creds:    creds,
		repo:     repo,
		nameMode: nameMode,
		log:      logger,
	}
	if restored, ok := loadRecord[domain.Session](ctx, repo, SessionStateKey, logger); ok {
		s.state = domain.Session{User: restored.User, IsAuthenticated: restored.User != nil}
		if restored.IsAuthenticated != s.state.IsAuthenticated {
			logger.Warnf("Use Case: Normalised persisted session (isAuthenticated=%t, user present=%t)", restored.IsAuthenticated, restored.User != nil)
		}
	}
	return s
}

func (s *SessionStore) Snapshot() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copySession(s.state)
}

// Subscribe registers fn for every later state change and returns a
// function that removes it. fn must not call the store's mutating methods.
func (s *SessionStore) Subscribe(fn func(domain.Session)) func() {
	return s.subs.add(fn)
}

func (s *SessionStore) update(ctx context.Context, mutate func(*domain.Session)) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	mutate(&s.state)
	s.state.IsAuthenticated = s.state.User != nil
	snap := copySession(s.state)
	s.mu.Unlock()

	saveRecord(ctx, s.repo, SessionStateKey, snap, s.log)
	s.subs.publish(snap)
}

func (s *SessionStore) Login(ctx context.Context, usernameOrEmail, password string) error {
	s.log.Infof("Use Case: Login attempt for %s", usernameOrEmail)
	s.update(ctx, func(st *domain.Session) { st.IsLoading = true })

	resp, err := s.auth.Login(ctx, domain.LoginRequest{UsernameOrEmail: usernameOrEmail, Password: password})
	if err == nil && (resp == nil || strings.TrimSpace(resp.AccessToken) == "") {
		err = fmt.Errorf("%w: login response has no access token", domain.ErrMalformedResponse)
	}
	if err != nil {
		s.log.Warnf("Use Case: Login failed for %s: %v", usernameOrEmail, err)
		s.update(ctx, func(st *domain.Session) { st.IsLoading = false })
		return fmt.Errorf("login failed: %w", err)
	}

	first, last := domain.SplitFullName(resp.FullName, s.nameMode)
	user := &domain.User{
		ID:        resp.UserID,
		FirstName: first,
		LastName:  last,
		Username:  resp.Username,
		Email:     resp.Email,
		Role:      resp.Role,
	}
	s.storeCredential(ctx, resp.AccessToken)
	s.update(ctx, func(st *domain.Session) {
		st.User = user
		st.IsLoading = false
	})
	s.log.Infof("Use Case: User %s (ID %d) logged in", user.Username, user.ID)
	return nil
}

func (s *SessionStore) Register(ctx context.Context, req domain.RegisterRequest) error {
	s.log.Infof("Use Case: Registering username %s", req.Username)
	s.update(ctx, func(st *domain.Session) { st.IsLoading = true })

	res, err := s.auth.Register(ctx, req)
	if err == nil && (res == nil || strings.TrimSpace(res.Token) == "" || res.User == nil) {
		err = fmt.Errorf("%w: register response lacks token or user", domain.ErrMalformedResponse)
	}
	if err != nil {
		s.log.Warnf("Use Case: Registration failed for %s: %v", req.Username, err)
		s.update(ctx, func(st *domain.Session) { st.IsLoading = false })
		return fmt.Errorf("registration failed: %w", err)
	}

	user := *res.User
	s.storeCredential(ctx, res.Token)
	s.update(ctx, func(st *domain.Session) {
		st.User = &user
		st.IsLoading = false
	})
	s.log.Infof("Use Case: User %s (ID %d) registered", user.Username, user.ID)
	return nil
}

// Logout drops the local session at once. The backend is told in the
// background with the credential that was active before the clear.
func (s *SessionStore) Logout(ctx context.Context) {
	token := s.creds.Token(ctx)
	s.creds.Clear(ctx)
	s.update(ctx, func(st *domain.Session) {
		st.User = nil
		st.IsLoading = false
	})
	s.log.Info("Use Case: Logged out locally")

	bg := context.WithoutCancel(ctx)
	if token != "" {
		bg = clients.WithBearerToken(bg, token)
	}
	s.background.Add(1)
	go func() {
		defer s.background.Done()
		if err := s.auth.Logout(bg); err != nil {
			s.log.Debugf("Use Case: Background logout call failed: %v", err)
		}
	}()
}

// Wait blocks until background calls started by Logout have finished.
func (s *SessionStore) Wait() {
	s.background.Wait()
}

// CheckAuth validates the stored credential against the backend.
// Without a credential it settles on anonymous and makes no call.
func (s *SessionStore) CheckAuth(ctx context.Context) {
	if s.creds.Token(ctx) == "" {
		s.update(ctx, func(st *domain.Session) {
			st.User = nil
			st.IsLoading = false
		})
		return
	}

	s.update(ctx, func(st *domain.Session) { st.IsLoading = true })
	user, err := s.auth.GetProfile(ctx)
	if err != nil {
		s.log.Warnf("Use Case: Stored credential rejected: %v", err)
		s.creds.Clear(ctx)
		s.update(ctx, func(st *domain.Session) {
			st.User = nil
			st.IsLoading = false
		})
		return
	}
	s.update(ctx, func(st *domain.Session) {
		st.User = user
		st.IsLoading = false
	})
	s.log.Infof("Use Case: Session confirmed for %s", user.Username)
}

// UpdateUser merges patch into the local user. It is a no-op while anonymous.
func (s *SessionStore) UpdateUser(ctx context.Context, patch domain.UserPatch) {
	s.mu.RLock()
	anonymous := s.state.User == nil
	s.mu.RUnlock()
	if anonymous || patch.IsEmpty() {
		return
	}
	s.update(ctx, func(st *domain.Session) {
		if st.User == nil {
			return
		}
		merged := patch.Apply(*st.User)
		st.User = &merged
	})
}

func (s *SessionStore) storeCredential(ctx context.Context, token string) {
	if err := s.creds.Set(ctx, token); err != nil {
		s.log.Errorf("Use Case: Credential not persisted: %v", err)
	}
}

func copySession(st domain.Session) domain.Session {
	if st.User != nil {
		u := *st.User
		st.User = &u
	}
	return st
}

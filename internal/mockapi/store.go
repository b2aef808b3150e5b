package mockapi

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalid      = errors.New("invalid request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("already exists")
)

type userRecord struct {
	domain.User
	PasswordHash []byte
}

type cartRecord struct {
	ID    int64
	Items []domain.CartItem
}

// Store is the in-memory state behind the stub backend.
type Store struct {
	mu  sync.Mutex
	log *logrus.Logger

	hashCost int
	seq      map[string]int64

	users         map[int64]*userRecord
	accessTokens  map[string]int64
	refreshTokens map[string]int64
	products      map[int64]*domain.Product
	carts         map[int64]*cartRecord
	orders        map[int64][]*domain.Order
}

type StoreOption func(*Store)

// WithHashCost sets the bcrypt cost used for passwords.
func WithHashCost(cost int) StoreOption {
	return func(s *Store) { s.hashCost = cost }
}

// NewStore returns a store seeded with the default accounts and catalogue.
func NewStore(logger *logrus.Logger, opts ...StoreOption) (*Store, error) {
	s := &Store{
		log:           logger,
		hashCost:      bcrypt.DefaultCost,
		seq:           make(map[string]int64),
		users:         make(map[int64]*userRecord),
		accessTokens:  make(map[string]int64),
		refreshTokens: make(map[string]int64),
		products:      make(map[int64]*domain.Product),
		carts:         make(map[int64]*cartRecord),
		orders:        make(map[int64][]*domain.Order),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.seed(); err != nil {
		return nil, err
	}
	return s, nil
}

// next hands out per-entity identifiers starting at 1.
func (s *Store) next(entity string) int64 {
	s.seq[entity]++
	return s.seq[entity]
}

func (s *Store) seed() error {
	accounts := []struct {
		user     domain.User
		password string
	}{
		{domain.User{FirstName: "Admin", LastName: "User", Username: "admin", Email: "admin@ecommerce.com", Role: domain.RoleAdmin}, "admin1234"},
		{domain.User{FirstName: "Test", LastName: "User", Username: "user", Email: "user@ecommerce.com", Role: domain.RoleUser}, "user1234"},
	}
	for _, a := range accounts {
		if _, err := s.addUser(a.user, a.password); err != nil {
			return fmt.Errorf("seed user %s: %w", a.user.Username, err)
		}
	}

	catalogue := []struct {
		name, description, price, category string
		stock                              int
		brand, sku                         string
	}{
		{"iPhone 14 Pro", "Latest iPhone with advanced camera system", "999.99", "Electronics", 50, "Apple", "IPH-14-PRO"},
		{"Samsung Galaxy S23", "Flagship Android smartphone with excellent display", "849.99", "Electronics", 45, "Samsung", "SGS-23"},
		{"MacBook Pro M2", "Powerful laptop for professionals", "1299.99", "Electronics", 25, "Apple", "MBP-M2"},
		{"Sony WH-1000XM4", "Premium noise-canceling wireless headphones", "349.99", "Electronics", 75, "Sony", "WH-1000XM4"},
		{"Classic Denim Jacket", "Timeless denim jacket for casual wear", "79.99", "Clothing", 100, "Levi's", "DJ-CLASSIC"},
		{"Cotton T-Shirt", "Comfortable cotton t-shirt available in multiple colors", "19.99", "Clothing", 200, "Uniqlo", "CT-BASIC"},
		{"Running Sneakers", "Lightweight running shoes for athletes", "129.99", "Clothing", 80, "Nike", "RUN-SNKR"},
		{"Coffee Maker", "Automatic drip coffee maker with timer", "89.99", "Home & Garden", 40, "Cuisinart", "CM-AUTO"},
		{"Succulent Plant Set", "Collection of 6 easy-care succulent plants", "29.99", "Home & Garden", 60, "GreenThumb", "SUCC-SET6"},
		{"Yoga Mat", "Non-slip yoga mat perfect for home workouts", "39.99", "Sports", 120, "Manduka", "YOGA-MAT"},
		{"The Art of Programming", "Comprehensive guide to software development", "49.99", "Books", 30, "TechBooks", "ART-PROG"},
		{"Modern JavaScript", "Learn modern JavaScript techniques and frameworks", "39.99", "Books", 25, "WebDev Press", "MOD-JS"},
	}
	for _, p := range catalogue {
		s.CreateProduct(domain.Product{
			Name:          p.name,
			Description:   p.description,
			Price:         decimal.RequireFromString(p.price),
			Category:      p.category,
			StockQuantity: p.stock,
			Brand:         p.brand,
			SKU:           p.sku,
			ImageURL:      "https://via.placeholder.com/400x300?text=" + strings.ReplaceAll(p.name, " ", "+"),
		})
	}
	s.log.Infof("Mock API: seeded %d users and %d products", len(s.users), len(s.products))
	return nil
}

func (s *Store) addUser(u domain.User, password string) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("internal error processing password: %w", err)
	}
	u.ID = s.next("user")
	s.users[u.ID] = &userRecord{User: u, PasswordHash: hash}
	return &u, nil
}

func (s *Store) findUser(usernameOrEmail string) *userRecord {
	key := strings.ToLower(strings.TrimSpace(usernameOrEmail))
	for _, u := range s.users {
		if strings.ToLower(u.Username) == key || strings.ToLower(u.Email) == key {
			return u
		}
	}
	return nil
}

// Authenticate checks the password and issues an access and refresh token pair.
func (s *Store) Authenticate(usernameOrEmail, password string) (*domain.LoginResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.findUser(usernameOrEmail)
	if u == nil {
		return nil, fmt.Errorf("%w: Invalid credentials", ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, fmt.Errorf("%w: Invalid credentials", ErrUnauthorized)
		}
		return nil, fmt.Errorf("internal error during authentication: %w", err)
	}
	return s.issueLocked(u.User), nil
}

func (s *Store) issueLocked(u domain.User) *domain.LoginResponse {
	access, refresh := uuid.NewString(), uuid.NewString()
	s.accessTokens[access] = u.ID
	s.refreshTokens[refresh] = u.ID
	return &domain.LoginResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    86400,
		UserID:       u.ID,
		Username:     u.Username,
		Email:        u.Email,
		FullName:     strings.TrimSpace(u.FirstName + " " + u.LastName),
		Role:         u.Role,
		LoginTime:    time.Now().UTC().Format(time.RFC3339),
	}
}

func (s *Store) Register(req domain.RegisterRequest) (*domain.RegisterResult, error) {
	if strings.TrimSpace(req.Username) == "" || strings.TrimSpace(req.Email) == "" || len(req.Password) < 6 {
		return nil, fmt.Errorf("%w: username, email and a password of at least 6 characters are required", ErrInvalid)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findUser(req.Username) != nil || s.findUser(req.Email) != nil {
		return nil, fmt.Errorf("%w: username or email is already taken", ErrConflict)
	}
	u, err := s.addUser(domain.User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Username:  req.Username,
		Email:     req.Email,
		Role:      domain.RoleUser,
	}, req.Password)
	if err != nil {
		return nil, err
	}
	auth := s.issueLocked(*u)
	return &domain.RegisterResult{Token: auth.AccessToken, User: u}, nil
}

// Refresh trades a refresh token, or a live access token, for a new
// token pair. The presented token stops working.
func (s *Store) Refresh(token string) (*domain.LoginResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.refreshTokens[token]; ok {
		delete(s.refreshTokens, token)
		return s.issueLocked(s.users[id].User), nil
	}
	if id, ok := s.accessTokens[token]; ok {
		delete(s.accessTokens, token)
		return s.issueLocked(s.users[id].User), nil
	}
	return nil, fmt.Errorf("%w: Invalid refresh token", ErrUnauthorized)
}

func (s *Store) Revoke(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.accessTokens, token)
}

// UserForToken resolves an access token to its user.
func (s *Store) UserForToken(token string) (domain.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.accessTokens[token]
	if !ok {
		return domain.User{}, false
	}
	return s.users[id].User, true
}

func (s *Store) UpdateProfile(userID int64, upd domain.ProfileUpdate) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return domain.User{}, fmt.Errorf("%w: user %d", ErrNotFound, userID)
	}
	if upd.Username != "" && upd.Username != u.Username {
		if other := s.findUser(upd.Username); other != nil {
			return domain.User{}, fmt.Errorf("%w: username is already taken", ErrConflict)
		}
		u.Username = upd.Username
	}
	if upd.Email != "" && upd.Email != u.Email {
		if other := s.findUser(upd.Email); other != nil {
			return domain.User{}, fmt.Errorf("%w: email is already taken", ErrConflict)
		}
		u.Email = upd.Email
	}
	if upd.FirstName != "" {
		u.FirstName = upd.FirstName
	}
	if upd.LastName != "" {
		u.LastName = upd.LastName
	}
	return u.User, nil
}

func (s *Store) Users() []domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u.User)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Products returns products matching the filters. Search matches
// name or description and category matches exactly, both ignoring case.
func (s *Store) Products(search, category, sortBy, sortDir string) []domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	search = strings.ToLower(strings.TrimSpace(search))
	category = strings.TrimSpace(category)
	out := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		if category != "" && !strings.EqualFold(p.Category, category) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) &&
			(category != "" || !strings.Contains(strings.ToLower(p.Description), search)) {
			continue
		}
		out = append(out, *p)
	}

	less := func(a, b domain.Product) bool { return a.ID < b.ID }
	switch sortBy {
	case "name":
		less = func(a, b domain.Product) bool { return a.Name < b.Name }
	case "price":
		less = func(a, b domain.Product) bool { return a.Price.LessThan(b.Price) }
	case "stockQuantity":
		less = func(a, b domain.Product) bool { return a.StockQuantity < b.StockQuantity }
	}
	desc := strings.EqualFold(sortDir, "desc")
	sort.SliceStable(out, func(i, j int) bool {
		if desc {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}

func (s *Store) Product(id int64) (domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return domain.Product{}, fmt.Errorf("%w: Product not found with id: %d", ErrNotFound, id)
	}
	return *p, nil
}

func (s *Store) CreateProduct(p domain.Product) domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.ID = s.next("product")
	p.Active = true
	if strings.TrimSpace(p.SKU) == "" {
		p.SKU = generateSKU(p.Name, p.ID)
	}
	s.products[p.ID] = &p
	return p
}

func (s *Store) UpdateProduct(id int64, upd domain.Product) (domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok {
		return domain.Product{}, fmt.Errorf("%w: Product not found with id: %d", ErrNotFound, id)
	}
	sku := p.SKU
	if strings.TrimSpace(upd.SKU) != "" {
		sku = upd.SKU
	}
	upd.ID = id
	upd.SKU = sku
	*p = upd
	return *p, nil
}

func (s *Store) DeleteProduct(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return fmt.Errorf("%w: Product not found with id: %d", ErrNotFound, id)
	}
	delete(s.products, id)
	return nil
}

func generateSKU(name string, id int64) string {
	prefix := strings.ToUpper(strings.ReplaceAll(name, " ", ""))
	if len(prefix) > 3 {
		prefix = prefix[:3]
	}
	return fmt.Sprintf("%s-%06d", prefix, id)
}

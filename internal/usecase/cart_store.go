package usecase

import (
	"context"
	"fmt"
	"sync"

	"storefront/internal/domain"
	"storefront/internal/notify"

	"github.com/sirupsen/logrus"
)

const (
	MsgItemAdded   = "Item added to cart"
	MsgCartUpdated = "Cart updated"
	MsgItemRemoved = "Item removed from cart"
	MsgCartCleared = "Cart cleared"
)

type CartState struct {
	Cart      *domain.Cart `json:"cart"`
	IsLoading bool         `json:"-"`
}

// CartStore mirrors the server's cart. It never computes totals itself:
// every successful mutation except ClearCart is followed by a re-fetch.
type CartStore struct {
	gateway  domain.CartGateway
	notifier notify.Notifier
	repo     domain.StateRepository
	log      *logrus.Logger

	// writeMu orders state changes with their saves and notifications.
	writeMu sync.Mutex
	mu      sync.RWMutex
	state   CartState
	subs    subscribers[CartState]
}

func NewCartStore(ctx context.Context, gateway domain.CartGateway, notifier notify.Notifier, repo domain.StateRepository, logger *logrus.Logger) *CartStore {
	s := &CartStore{
		gateway:  gateway,
		notifier: notifier,
		repo:     repo,
		log:      logger,
	}
	if restored, ok := loadRecord[CartState](ctx, repo, CartStateKey, logger); ok {
		s.state.Cart = restored.Cart
	}
	return s
}

func (s *CartStore) Snapshot() CartState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return CartState{Cart: s.state.Cart.Clone(), IsLoading: s.state.IsLoading}
}

// Subscribe registers fn for every later state change. fn must not
// call the store's mutating methods.
func (s *CartStore) Subscribe(fn func(CartState)) func() {
	return s.subs.add(fn)
}

func (s *CartStore) update(ctx context.Context, mutate func(*CartState)) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	mutate(&s.state)
	snap := CartState{Cart: s.state.Cart.Clone(), IsLoading: s.state.IsLoading}
	s.mu.Unlock()

	saveRecord(ctx, s.repo, CartStateKey, snap, s.log)
	s.subs.publish(snap)
}

func (s *CartStore) setLoading(ctx context.Context, loading bool) {
	s.update(ctx, func(st *CartState) { st.IsLoading = loading })
}

// FetchCart replaces the cart with the server's copy. Failures keep
// the stale cart and are only logged.
func (s *CartStore) FetchCart(ctx context.Context) {
	s.setLoading(ctx, true)
	cart, err := s.gateway.GetCart(ctx)
	if err != nil {
		s.log.Warnf("Use Case: Fetching cart failed: %v", err)
		s.setLoading(ctx, false)
		return
	}
	s.update(ctx, func(st *CartState) {
		st.Cart = cart
		st.IsLoading = false
	})
	if cart != nil {
		s.log.Debugf("Use Case: Cart %d fetched with %d items", cart.ID, cart.TotalItems)
	}
}

func (s *CartStore) AddToCart(ctx context.Context, productID int64, quantity int) error {
	s.setLoading(ctx, true)
	if err := s.gateway.AddCartItem(ctx, productID, quantity); err != nil {
		s.setLoading(ctx, false)
		return fmt.Errorf("add product %d to cart: %w", productID, err)
	}
	s.FetchCart(ctx)
	s.notifier.Success(MsgItemAdded)
	return nil
}

// UpdateCartItem sets an item's quantity; zero or less removes the item.
func (s *CartStore) UpdateCartItem(ctx context.Context, itemID int64, quantity int) error {
	if quantity <= 0 {
		return s.RemoveFromCart(ctx, itemID)
	}
	s.setLoading(ctx, true)
	if err := s.gateway.UpdateCartItem(ctx, itemID, quantity); err != nil {
		s.setLoading(ctx, false)
		return fmt.Errorf("update cart item %d: %w", itemID, err)
	}
	s.FetchCart(ctx)
	s.notifier.Success(MsgCartUpdated)
	return nil
}

func (s *CartStore) RemoveFromCart(ctx context.Context, itemID int64) error {
	s.setLoading(ctx, true)
	if err := s.gateway.RemoveCartItem(ctx, itemID); err != nil {
		s.setLoading(ctx, false)
		return fmt.Errorf("remove cart item %d: %w", itemID, err)
	}
	s.FetchCart(ctx)
	s.notifier.Success(MsgItemRemoved)
	return nil
}

// ClearCart empties the cart on the server and drops the local copy
// without re-fetching.
func (s *CartStore) ClearCart(ctx context.Context) error {
	s.setLoading(ctx, true)
	if err := s.gateway.ClearCart(ctx); err != nil {
		s.setLoading(ctx, false)
		return fmt.Errorf("clear cart: %w", err)
	}
	s.update(ctx, func(st *CartState) {
		st.Cart = nil
		st.IsLoading = false
	})
	s.notifier.Success(MsgCartCleared)
	return nil
}

func (s *CartStore) ItemQuantity(productID int64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.Cart == nil {
		return 0
	}
	item, ok := s.state.Cart.ItemForProduct(productID)
	if !ok {
		return 0
	}
	return item.Quantity
}

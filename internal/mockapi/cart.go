package mockapi

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func (s *Store) cartLocked(userID int64) *cartRecord {
	c, ok := s.carts[userID]
	if !ok {
		c = &cartRecord{ID: s.next("cart")}
		s.carts[userID] = c
	}
	return c
}

func (s *Store) cartViewLocked(c *cartRecord) *domain.Cart {
	out := &domain.Cart{ID: c.ID, Items: make([]domain.CartItem, 0, len(c.Items)), TotalAmount: decimal.Zero}
	for _, item := range c.Items {
		item.SubTotal = item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		out.Items = append(out.Items, item)
		out.TotalItems += item.Quantity
		out.TotalAmount = out.TotalAmount.Add(item.SubTotal)
	}
	return out
}

// Cart returns the user's cart, creating an empty one on first use.
func (s *Store) Cart(userID int64) *domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cartViewLocked(s.cartLocked(userID))
}

func (s *Store) AddCartItem(userID, productID int64, quantity int) (*domain.Cart, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: Quantity must be greater than 0", ErrInvalid)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[productID]
	if !ok {
		return nil, fmt.Errorf("%w: Product not found with id: %d", ErrNotFound, productID)
	}

	c := s.cartLocked(userID)
	for i := range c.Items {
		if c.Items[i].ProductID != productID {
			continue
		}
		want := c.Items[i].Quantity + quantity
		if want > p.StockQuantity {
			return nil, fmt.Errorf("%w: Insufficient stock. Available: %d", ErrInvalid, p.StockQuantity)
		}
		c.Items[i].Quantity = want
		return s.cartViewLocked(c), nil
	}
	if quantity > p.StockQuantity {
		return nil, fmt.Errorf("%w: Insufficient stock. Available: %d", ErrInvalid, p.StockQuantity)
	}
	c.Items = append(c.Items, domain.CartItem{
		ID:          s.next("cartItem"),
		ProductID:   p.ID,
		ProductName: p.Name,
		ProductSKU:  p.SKU,
		UnitPrice:   p.Price,
		Quantity:    quantity,
	})
	return s.cartViewLocked(c), nil
}

func (s *Store) itemIndexLocked(userID, itemID int64) (*cartRecord, int, error) {
	c := s.cartLocked(userID)
	for i, item := range c.Items {
		if item.ID == itemID {
			return c, i, nil
		}
	}
	return nil, 0, fmt.Errorf("%w: Cart item not found with id: %d", ErrNotFound, itemID)
}

func (s *Store) UpdateCartItem(userID, itemID int64, quantity int) (*domain.Cart, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: Quantity must be greater than 0", ErrInvalid)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, i, err := s.itemIndexLocked(userID, itemID)
	if err != nil {
		return nil, err
	}
	if p, ok := s.products[c.Items[i].ProductID]; ok && quantity > p.StockQuantity {
		return nil, fmt.Errorf("%w: Insufficient stock. Available: %d", ErrInvalid, p.StockQuantity)
	}
	c.Items[i].Quantity = quantity
	return s.cartViewLocked(c), nil
}

func (s *Store) RemoveCartItem(userID, itemID int64) (*domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, i, err := s.itemIndexLocked(userID, itemID)
	if err != nil {
		return nil, err
	}
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	return s.cartViewLocked(c), nil
}

func (s *Store) ClearCart(userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.cartLocked(userID)
	if len(c.Items) == 0 {
		return fmt.Errorf("%w: Cart is already empty", ErrInvalid)
	}
	c.Items = nil
	return nil
}

// ValidateCart reports whether every line can still be fulfilled.
func (s *Store) ValidateCart(userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.validateCartLocked(s.cartLocked(userID))
}

func (s *Store) validateCartLocked(c *cartRecord) error {
	if len(c.Items) == 0 {
		return fmt.Errorf("%w: Cannot checkout with empty cart", ErrInvalid)
	}
	for _, item := range c.Items {
		p := s.products[item.ProductID]
		if p == nil {
			return fmt.Errorf("%w: Product '%s' is no longer available", ErrInvalid, item.ProductName)
		}
		if p.StockQuantity < item.Quantity {
			return fmt.Errorf("%w: Insufficient stock for product '%s'. Available: %d, Required: %d",
				ErrInvalid, p.Name, p.StockQuantity, item.Quantity)
		}
	}
	return nil
}

// CreateOrder turns the user's cart into a pending order and empties the cart.
func (s *Store) CreateOrder(userID int64, req domain.CreateOrderRequest) (*domain.Order, error) {
	addr := req.ShippingAddress
	if strings.TrimSpace(addr.AddressLine1) == "" || strings.TrimSpace(addr.City) == "" ||
		strings.TrimSpace(addr.PostalCode) == "" || strings.TrimSpace(addr.Country) == "" {
		return nil, fmt.Errorf("%w: shipping address line 1, city, postal code and country are required", ErrInvalid)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.cartLocked(userID)
	if err := s.validateCartLocked(c); err != nil {
		return nil, err
	}
	view := s.cartViewLocked(c)

	order := &domain.Order{
		ID:                   s.next("order"),
		OrderNumber:          "ORD-" + strings.ToUpper(uuid.NewString()[:8]),
		Status:               domain.StatusPending,
		OrderDate:            time.Now().UTC(),
		TotalAmount:          view.TotalAmount,
		TotalItems:           view.TotalItems,
		ShippingAddressLine1: addr.AddressLine1,
		ShippingAddressLine2: addr.AddressLine2,
		ShippingCity:         addr.City,
		ShippingState:        addr.State,
		ShippingPostalCode:   addr.PostalCode,
		ShippingCountry:      addr.Country,
		PaymentMethod:        req.PaymentMethod,
		PaymentStatus:        "PENDING",
		Notes:                req.Notes,
	}
	for _, item := range view.Items {
		order.OrderItems = append(order.OrderItems, domain.OrderItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			ProductSKU:  item.ProductSKU,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			SubTotal:    item.SubTotal,
		})
	}
	c.Items = nil
	s.orders[userID] = append(s.orders[userID], order)
	return order, nil
}

// Orders lists a user's orders, or every order when userID is zero,
// newest first.
func (s *Store) Orders(userID int64) []domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.Order
	for owner, orders := range s.orders {
		if userID != 0 && owner != userID {
			continue
		}
		for _, o := range orders {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (s *Store) Order(userID, orderID int64) (domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders[userID] {
		if o.ID == orderID {
			return *o, nil
		}
	}
	return domain.Order{}, fmt.Errorf("%w: Order not found with id: %d", ErrNotFound, orderID)
}

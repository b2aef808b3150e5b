package clients

import (
	"context"
	"fmt"

	"storefront/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// envelope is the {success, message, data} wrapper most endpoints use.
type envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

func decodeData[T any](resp *Response) (T, error) {
	var env envelope[T]
	if err := resp.Decode(&env); err != nil {
		var zero T
		return zero, err
	}
	return env.Data, nil
}

// StorefrontAPI exposes the backend REST surface as typed calls. It does
// not reshape payloads beyond unwrapping the response envelope.
type StorefrontAPI struct {
	client *Client
	log    *logrus.Logger
}

var (
	_ domain.AuthGateway = (*StorefrontAPI)(nil)
	_ domain.CartGateway = (*StorefrontAPI)(nil)
)

func NewStorefrontAPI(c *Client, logger *logrus.Logger) *StorefrontAPI {
	return &StorefrontAPI{client: c, log: logger}
}

func (a *StorefrontAPI) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error) {
	a.log.Debugf("StorefrontAPI: Calling Login for: %s", req.UsernameOrEmail)
	resp, err := a.client.Post(ctx, "/auth/login", req)
	if err != nil {
		return nil, err
	}
	var out domain.LoginResponse
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *StorefrontAPI) Register(ctx context.Context, req domain.RegisterRequest) (*domain.RegisterResult, error) {
	a.log.Debugf("StorefrontAPI: Calling Register for username: %s", req.Username)
	resp, err := a.client.Post(ctx, "/auth/register", req)
	if err != nil {
		return nil, err
	}
	data, err := decodeData[*domain.RegisterResult](resp)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, fmt.Errorf("%w: register response has no data", domain.ErrMalformedResponse)
	}
	return data, nil
}

func (a *StorefrontAPI) RefreshToken(ctx context.Context) (*domain.LoginResponse, error) {
	a.log.Debug("StorefrontAPI: Calling RefreshToken")
	resp, err := a.client.Post(ctx, "/auth/refresh", nil)
	if err != nil {
		return nil, err
	}
	var out domain.LoginResponse
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *StorefrontAPI) Logout(ctx context.Context) error {
	a.log.Debug("StorefrontAPI: Calling Logout")
	_, err := a.client.Post(ctx, "/auth/logout", nil)
	return err
}

func (a *StorefrontAPI) GetProfile(ctx context.Context) (*domain.User, error) {
	a.log.Debug("StorefrontAPI: Calling GetProfile")
	resp, err := a.client.Get(ctx, "/users/profile", nil)
	if err != nil {
		return nil, err
	}
	user, err := decodeData[*domain.User](resp)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: profile response has no data", domain.ErrMalformedResponse)
	}
	return user, nil
}

// UpdateProfile returns the user echoed by the backend, or nil if it sent none.
func (a *StorefrontAPI) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (*domain.User, error) {
	a.log.Debug("StorefrontAPI: Calling UpdateProfile")
	resp, err := a.client.Put(ctx, "/users/profile", update)
	if err != nil {
		return nil, err
	}
	if len(resp.Body) == 0 {
		return nil, nil
	}
	return decodeData[*domain.User](resp)
}

func (a *StorefrontAPI) ListProducts(ctx context.Context, q domain.ProductQuery) (*domain.Page[domain.Product], error) {
	a.log.Debugf("StorefrontAPI: Calling ListProducts: %s", q.Values().Encode())
	resp, err := a.client.Get(ctx, "/products", q.Values())
	if err != nil {
		return nil, err
	}
	page, err := decodeData[domain.Page[domain.Product]](resp)
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func (a *StorefrontAPI) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	a.log.Debugf("StorefrontAPI: Calling GetProduct: ID=%d", id)
	resp, err := a.client.Get(ctx, fmt.Sprintf("/products/%d", id), nil)
	if err != nil {
		return nil, err
	}
	return requireData[domain.Product](resp, "product")
}

func (a *StorefrontAPI) CreateProduct(ctx context.Context, p domain.Product) (*domain.Product, error) {
	a.log.Debugf("StorefrontAPI: Calling CreateProduct: Name=%s", p.Name)
	resp, err := a.client.Post(ctx, "/products", p)
	if err != nil {
		return nil, err
	}
	return requireData[domain.Product](resp, "product")
}

func (a *StorefrontAPI) UpdateProduct(ctx context.Context, id int64, p domain.Product) (*domain.Product, error) {
	a.log.Debugf("StorefrontAPI: Calling UpdateProduct: ID=%d", id)
	resp, err := a.client.Put(ctx, fmt.Sprintf("/products/%d", id), p)
	if err != nil {
		return nil, err
	}
	return requireData[domain.Product](resp, "product")
}

func (a *StorefrontAPI) DeleteProduct(ctx context.Context, id int64) error {
	a.log.Debugf("StorefrontAPI: Calling DeleteProduct: ID=%d", id)
	_, err := a.client.Delete(ctx, fmt.Sprintf("/products/%d", id))
	return err
}

func (a *StorefrontAPI) GetCart(ctx context.Context) (*domain.Cart, error) {
	a.log.Debug("StorefrontAPI: Calling GetCart")
	resp, err := a.client.Get(ctx, "/cart", nil)
	if err != nil {
		return nil, err
	}
	return decodeData[*domain.Cart](resp)
}

func (a *StorefrontAPI) AddCartItem(ctx context.Context, productID int64, quantity int) error {
	a.log.Debugf("StorefrontAPI: Calling AddCartItem: ProductID=%d, Quantity=%d", productID, quantity)
	_, err := a.client.Post(ctx, "/cart/items", domain.AddCartItemRequest{ProductID: productID, Quantity: quantity})
	return err
}

func (a *StorefrontAPI) UpdateCartItem(ctx context.Context, itemID int64, quantity int) error {
	a.log.Debugf("StorefrontAPI: Calling UpdateCartItem: ItemID=%d, Quantity=%d", itemID, quantity)
	_, err := a.client.Put(ctx, fmt.Sprintf("/cart/items/%d", itemID), domain.UpdateCartItemRequest{Quantity: quantity})
	return err
}

func (a *StorefrontAPI) RemoveCartItem(ctx context.Context, itemID int64) error {
	a.log.Debugf("StorefrontAPI: Calling RemoveCartItem: ItemID=%d", itemID)
	_, err := a.client.Delete(ctx, fmt.Sprintf("/cart/items/%d", itemID))
	return err
}

func (a *StorefrontAPI) ClearCart(ctx context.Context) error {
	a.log.Debug("StorefrontAPI: Calling ClearCart")
	_, err := a.client.Delete(ctx, "/cart/clear")
	return err
}

func (a *StorefrontAPI) CartCount(ctx context.Context) (int, error) {
	resp, err := a.client.Get(ctx, "/cart/count", nil)
	if err != nil {
		return 0, err
	}
	return decodeData[int](resp)
}

func (a *StorefrontAPI) CartTotal(ctx context.Context) (decimal.Decimal, error) {
	resp, err := a.client.Get(ctx, "/cart/total", nil)
	if err != nil {
		return decimal.Zero, err
	}
	return decodeData[decimal.Decimal](resp)
}

// ValidateCart asks the backend whether the cart can be checked out.
func (a *StorefrontAPI) ValidateCart(ctx context.Context) error {
	a.log.Debug("StorefrontAPI: Calling ValidateCart")
	_, err := a.client.Post(ctx, "/cart/validate", nil)
	return err
}

func (a *StorefrontAPI) ListOrders(ctx context.Context, q domain.PageQuery) (*domain.Page[domain.Order], error) {
	a.log.Debugf("StorefrontAPI: Calling ListOrders: %s", q.Values().Encode())
	return a.listOrders(ctx, "/orders", q)
}

func (a *StorefrontAPI) ListOrdersAdmin(ctx context.Context, q domain.PageQuery) (*domain.Page[domain.Order], error) {
	a.log.Debugf("StorefrontAPI: Calling ListOrdersAdmin: %s", q.Values().Encode())
	return a.listOrders(ctx, "/orders/admin", q)
}

func (a *StorefrontAPI) listOrders(ctx context.Context, path string, q domain.PageQuery) (*domain.Page[domain.Order], error) {
	resp, err := a.client.Get(ctx, path, q.Values())
	if err != nil {
		return nil, err
	}
	page, err := decodeData[domain.Page[domain.Order]](resp)
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func (a *StorefrontAPI) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	a.log.Debugf("StorefrontAPI: Calling GetOrder: ID=%d", id)
	resp, err := a.client.Get(ctx, fmt.Sprintf("/orders/%d", id), nil)
	if err != nil {
		return nil, err
	}
	return requireData[domain.Order](resp, "order")
}

func (a *StorefrontAPI) CreateOrder(ctx context.Context, req domain.CreateOrderRequest) (*domain.Order, error) {
	a.log.Debugf("StorefrontAPI: Calling CreateOrder: City=%s, Country=%s", req.ShippingAddress.City, req.ShippingAddress.Country)
	resp, err := a.client.Post(ctx, "/orders", req)
	if err != nil {
		return nil, err
	}
	return requireData[domain.Order](resp, "order")
}

func (a *StorefrontAPI) ListUsersAdmin(ctx context.Context, q domain.PageQuery) (*domain.Page[domain.User], error) {
	a.log.Debugf("StorefrontAPI: Calling ListUsersAdmin: %s", q.Values().Encode())
	resp, err := a.client.Get(ctx, "/users/admin", q.Values())
	if err != nil {
		return nil, err
	}
	page, err := decodeData[domain.Page[domain.User]](resp)
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func requireData[T any](resp *Response, what string) (*T, error) {
	data, err := decodeData[*T](resp)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, fmt.Errorf("%w: %s response has no data", domain.ErrMalformedResponse, what)
	}
	return data, nil
}

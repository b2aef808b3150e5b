package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/internal/domain"
	"storefront/internal/notify"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAPI(t *testing.T, handler http.HandlerFunc) *StorefrontAPI {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := newTestClient(t, srv.URL, &fakeCredentials{token: "tok1"}, notify.NewRecorder(), time.Second)
	return NewStorefrontAPI(c, quietLogger())
}

func TestLoginDecodesFlatPayload(t *testing.T) {
	var got domain.LoginRequest
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/auth/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"accessToken":"tok1","tokenType":"Bearer","userId":7,"fullName":"Alice Smith","username":"alice","email":"a@x.com","role":"USER"}`))
	})

	resp, err := api.Login(context.Background(), domain.LoginRequest{UsernameOrEmail: "alice", Password: "pw"})
	require.NoError(t, err)

	assert.Equal(t, domain.LoginRequest{UsernameOrEmail: "alice", Password: "pw"}, got)
	assert.Equal(t, "tok1", resp.AccessToken)
	assert.EqualValues(t, 7, resp.UserID)
	assert.Equal(t, "Alice Smith", resp.FullName)
	assert.Equal(t, domain.RoleUser, resp.Role)
}

func TestRegisterDecodesNestedPayload(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"success":true,"data":{"token":"tok2","user":{"id":9,"firstName":"Bob","lastName":"Stone","username":"bob","email":"b@x.com","role":"USER"}}}`))
	})

	res, err := api.Register(context.Background(), domain.RegisterRequest{Username: "bob"})
	require.NoError(t, err)
	assert.Equal(t, "tok2", res.Token)
	require.NotNil(t, res.User)
	assert.Equal(t, "Stone", res.User.LastName)
}

func TestRegisterWithoutDataIsMalformed(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true}`))
	})

	_, err := api.Register(context.Background(), domain.RegisterRequest{Username: "bob"})
	assert.ErrorIs(t, err, domain.ErrMalformedResponse)
}

func TestGetCartDecodesDecimals(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":{"id":1,"items":[{"id":11,"productId":42,"productName":"Yoga Mat","unitPrice":39.99,"quantity":2,"subTotal":79.98}],"totalItems":2,"totalAmount":79.98}}`))
	})

	cart, err := api.GetCart(context.Background())
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.True(t, decimal.RequireFromString("79.98").Equal(cart.TotalAmount))
	assert.True(t, decimal.RequireFromString("39.99").Equal(cart.Items[0].UnitPrice))
	assert.Equal(t, 2, cart.Items[0].Quantity)
}

func TestListProductsPassesQueryThrough(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Books", r.URL.Query().Get("category"))
		assert.Equal(t, "desc", r.URL.Query().Get("sortDir"))
		assert.False(t, r.URL.Query().Has("search"))
		w.Write([]byte(`{"success":true,"data":{"content":[{"id":11,"name":"The Art of Programming","price":49.99,"active":true}],"totalElements":1,"totalPages":1,"number":0,"size":20}}`))
	})

	page, err := api.ListProducts(context.Background(), domain.ProductQuery{Category: "Books", SortDir: "desc"})
	require.NoError(t, err)
	require.Len(t, page.Content, 1)
	assert.Equal(t, "The Art of Programming", page.Content[0].Name)
	assert.EqualValues(t, 1, page.TotalElements)
}

func TestCartMutationsHitExpectedRoutes(t *testing.T) {
	type call struct{ method, path, body string }
	var calls []call
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		var body json.RawMessage
		_ = json.NewDecoder(r.Body).Decode(&body)
		calls = append(calls, call{r.Method, r.URL.Path, string(body)})
		w.Write([]byte(`{"success":true}`))
	})
	ctx := context.Background()

	require.NoError(t, api.AddCartItem(ctx, 42, 2))
	require.NoError(t, api.UpdateCartItem(ctx, 7, 3))
	require.NoError(t, api.RemoveCartItem(ctx, 7))
	require.NoError(t, api.ClearCart(ctx))

	assert.Equal(t, []call{
		{http.MethodPost, "/api/v1/cart/items", `{"productId":42,"quantity":2}`},
		{http.MethodPut, "/api/v1/cart/items/7", `{"quantity":3}`},
		{http.MethodDelete, "/api/v1/cart/items/7", ``},
		{http.MethodDelete, "/api/v1/cart/clear", ``},
	}, calls)
}

package mockapi

import (
	"net/http"
	"strconv"
	"strings"

	"storefront/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	store *Store
	log   *logrus.Logger
}

func NewHandler(store *Store, logger *logrus.Logger) *Handler {
	return &Handler{store: store, log: logger}
}

func (h *Handler) RegisterRoutes(router gin.IRouter) {
	authed := AuthMiddleware(h.store, h.log)
	admin := RequireRole(domain.RoleAdmin, h.log)

	auth := router.Group("/auth")
	{
		auth.POST("/login", h.Login)
		auth.POST("/register", h.Register)
		auth.POST("/refresh", h.Refresh)
		auth.POST("/logout", h.Logout)
	}

	products := router.Group("/products")
	{
		products.GET("", h.ListProducts)
		products.GET("/:id", h.GetProduct)
		products.POST("", authed, admin, h.CreateProduct)
		products.PUT("/:id", authed, admin, h.UpdateProduct)
		products.DELETE("/:id", authed, admin, h.DeleteProduct)
	}

	cart := router.Group("/cart", authed, RequireRole(domain.RoleUser, h.log))
	{
		cart.GET("", h.GetCart)
		cart.POST("/items", h.AddCartItem)
		cart.PUT("/items/:id", h.UpdateCartItem)
		cart.DELETE("/items/:id", h.RemoveCartItem)
		cart.DELETE("/clear", h.ClearCart)
		cart.GET("/count", h.CartCount)
		cart.GET("/total", h.CartTotal)
		cart.POST("/validate", h.ValidateCart)
	}

	orders := router.Group("/orders", authed)
	{
		orders.GET("", h.ListOrders)
		orders.POST("", h.CreateOrder)
		orders.GET("/admin", admin, h.ListAllOrders)
		orders.GET("/:id", h.GetOrder)
	}

	users := router.Group("/users", authed)
	{
		users.GET("/profile", h.GetProfile)
		users.PUT("/profile", h.UpdateProfile)
		users.GET("/admin", admin, h.ListUsers)
	}
}

func bearer(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

func pathID(c *gin.Context, what string) (int64, bool) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		ErrorResponse(c, http.StatusBadRequest, "Invalid "+what+" ID format")
		return 0, false
	}
	return id, true
}

func paging(c *gin.Context) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "0"))
	if err != nil || page < 0 {
		page = 0
	}
	size, err := strconv.Atoi(c.DefaultQuery("size", "20"))
	if err != nil || size <= 0 {
		size = 20
	}
	return page, size
}

func (h *Handler) Login(c *gin.Context) {
	var req domain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.UsernameOrEmail == "" || req.Password == "" {
		ErrorResponse(c, http.StatusBadRequest, "Username/email and password are required")
		return
	}

	resp, err := h.store.Authenticate(req.UsernameOrEmail, req.Password)
	if err != nil {
		h.log.Warnf("Login failed for %s: %v", req.UsernameOrEmail, err)
		failWith(c, err)
		return
	}
	h.log.Infof("User %s logged in", resp.Username)
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) Register(c *gin.Context) {
	var req domain.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	res, err := h.store.Register(req)
	if err != nil {
		h.log.Warnf("Registration failed for %s: %v", req.Username, err)
		failWith(c, err)
		return
	}
	h.log.Infof("User registered: ID %d, Username %s", res.User.ID, res.User.Username)
	SuccessResponse(c, http.StatusCreated, "User registered successfully", res)
}

// Refresh accepts a refresh token or a live access token.
func (h *Handler) Refresh(c *gin.Context) {
	token := bearer(c)
	if token == "" {
		ErrorResponse(c, http.StatusBadRequest, "Invalid authorization header")
		return
	}
	resp, err := h.store.Refresh(token)
	if err != nil {
		failWith(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) Logout(c *gin.Context) {
	token := bearer(c)
	if token == "" {
		ErrorResponse(c, http.StatusBadRequest, "Invalid authorization header")
		return
	}
	h.store.Revoke(token)
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListProducts(c *gin.Context) {
	page, size := paging(c)
	all := h.store.Products(c.Query("search"), c.Query("category"), c.DefaultQuery("sortBy", "id"), c.DefaultQuery("sortDir", "asc"))
	SuccessResponse(c, http.StatusOK, "Products retrieved successfully", domain.NewPage(all, page, size))
}

func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := pathID(c, "product")
	if !ok {
		return
	}
	p, err := h.store.Product(id)
	if err != nil {
		failWith(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Product retrieved successfully", p)
}

func bindProduct(c *gin.Context) (domain.Product, bool) {
	var p domain.Product
	if err := c.ShouldBindJSON(&p); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return p, false
	}
	if strings.TrimSpace(p.Name) == "" {
		ErrorResponse(c, http.StatusBadRequest, "Product name is required")
		return p, false
	}
	if !p.Price.IsPositive() {
		ErrorResponse(c, http.StatusBadRequest, "Price must be greater than 0")
		return p, false
	}
	if p.StockQuantity < 0 {
		ErrorResponse(c, http.StatusBadRequest, "Stock quantity cannot be negative")
		return p, false
	}
	return p, true
}

func (h *Handler) CreateProduct(c *gin.Context) {
	p, ok := bindProduct(c)
	if !ok {
		return
	}
	created := h.store.CreateProduct(p)
	h.log.Infof("Product created successfully: ID %d, Name %s", created.ID, created.Name)
	SuccessResponse(c, http.StatusCreated, "Product created successfully", created)
}

func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := pathID(c, "product")
	if !ok {
		return
	}
	p, ok := bindProduct(c)
	if !ok {
		return
	}
	updated, err := h.store.UpdateProduct(id, p)
	if err != nil {
		failWith(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Product updated successfully", updated)
}

func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := pathID(c, "product")
	if !ok {
		return
	}
	if err := h.store.DeleteProduct(id); err != nil {
		failWith(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Product deleted successfully", nil)
}

func (h *Handler) GetCart(c *gin.Context) {
	SuccessResponse(c, http.StatusOK, "Cart retrieved successfully", h.store.Cart(currentUser(c).ID))
}

func (h *Handler) AddCartItem(c *gin.Context) {
	var req domain.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	cart, err := h.store.AddCartItem(currentUser(c).ID, req.ProductID, req.Quantity)
	if err != nil {
		failWith(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Item added to cart successfully", cart)
}

func (h *Handler) UpdateCartItem(c *gin.Context) {
	id, ok := pathID(c, "cart item")
	if !ok {
		return
	}
	var req domain.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	cart, err := h.store.UpdateCartItem(currentUser(c).ID, id, req.Quantity)
	if err != nil {
		failWith(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Cart item updated successfully", cart)
}

func (h *Handler) RemoveCartItem(c *gin.Context) {
	id, ok := pathID(c, "cart item")
	if !ok {
		return
	}
	cart, err := h.store.RemoveCartItem(currentUser(c).ID, id)
	if err != nil {
		failWith(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Item removed from cart successfully", cart)
}

func (h *Handler) ClearCart(c *gin.Context) {
	if err := h.store.ClearCart(currentUser(c).ID); err != nil {
		failWith(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Cart cleared successfully", "Cart is now empty")
}

func (h *Handler) CartCount(c *gin.Context) {
	SuccessResponse(c, http.StatusOK, "Cart item count retrieved successfully", h.store.Cart(currentUser(c).ID).TotalItems)
}

func (h *Handler) CartTotal(c *gin.Context) {
	SuccessResponse(c, http.StatusOK, "Cart total retrieved successfully", h.store.Cart(currentUser(c).ID).TotalAmount)
}

func (h *Handler) ValidateCart(c *gin.Context) {
	if err := h.store.ValidateCart(currentUser(c).ID); err != nil {
		failWith(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Cart is valid for checkout", "All items are available")
}

func (h *Handler) ListOrders(c *gin.Context) {
	page, size := paging(c)
	SuccessResponse(c, http.StatusOK, "Orders retrieved successfully", domain.NewPage(h.store.Orders(currentUser(c).ID), page, size))
}

func (h *Handler) ListAllOrders(c *gin.Context) {
	page, size := paging(c)
	SuccessResponse(c, http.StatusOK, "Orders retrieved successfully", domain.NewPage(h.store.Orders(0), page, size))
}

func (h *Handler) GetOrder(c *gin.Context) {
	id, ok := pathID(c, "order")
	if !ok {
		return
	}
	order, err := h.store.Order(currentUser(c).ID, id)
	if err != nil {
		failWith(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Order retrieved successfully", order)
}

func (h *Handler) CreateOrder(c *gin.Context) {
	var req domain.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	order, err := h.store.CreateOrder(currentUser(c).ID, req)
	if err != nil {
		failWith(c, err)
		return
	}
	h.log.Infof("Order %s created for user %d", order.OrderNumber, currentUser(c).ID)
	SuccessResponse(c, http.StatusCreated, "Order created successfully", order)
}

func (h *Handler) GetProfile(c *gin.Context) {
	SuccessResponse(c, http.StatusOK, "Profile retrieved successfully", currentUser(c))
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var req domain.ProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	user, err := h.store.UpdateProfile(currentUser(c).ID, req)
	if err != nil {
		failWith(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Profile updated successfully", user)
}

func (h *Handler) ListUsers(c *gin.Context) {
	page, size := paging(c)
	SuccessResponse(c, http.StatusOK, "Users retrieved successfully", domain.NewPage(h.store.Users(), page, size))
}

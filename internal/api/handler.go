package api

import (
	"net/http"
	"strconv"
	"time"

	"bakery-service/internal/catalog"
	"bakery-service/internal/service"
	"bakery-service/internal/storage"
	"bakery-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const sessionCookie = "bakery_session"

// Handler contains HTTP handlers
type Handler struct {
	catalogService  *service.CatalogService
	cartService     *service.CartService
	checkoutService *service.CheckoutService
	paymentService  *service.PaymentService
	images          storage.ImageStore
	resolveRole     RoleResolver
}

// NewHandler creates a new HTTP handler
func NewHandler(
	catalogService *service.CatalogService,
	cartService *service.CartService,
	checkoutService *service.CheckoutService,
	paymentService *service.PaymentService,
	images storage.ImageStore,
	resolveRole RoleResolver,
) *Handler {
	return &Handler{
		catalogService:  catalogService,
		cartService:     cartService,
		checkoutService: checkoutService,
		paymentService:  paymentService,
		images:          images,
		resolveRole:     resolveRole,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/products", h.listMenu)
		v1.GET("/products/:id", h.getProduct)

		v1.GET("/cart", h.getCart)
		v1.POST("/cart/items", h.addCartItem)
		v1.DELETE("/cart/items/:id", h.removeCartItem)
		v1.DELETE("/cart", h.clearCart)

		v1.POST("/checkout", h.createCheckout)
		v1.GET("/orders/:id", h.getOrder)

		v1.POST("/payments/webhook", h.paymentWebhook)
	}

	admin := v1.Group("/admin", RequireAdmin(h.resolveRole))
	{
		admin.GET("/products", h.adminListProducts)
		admin.POST("/products", h.createProduct)
		admin.GET("/products/:id", h.getProduct)
		admin.PUT("/products/:id", h.updateProduct)
		admin.DELETE("/products/:id", h.deleteProduct)
		admin.POST("/products/seed", h.seedProducts)
		admin.POST("/uploads", h.uploadImages)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// viewConfig parses catalog view parameters from the query string. The UI
// owns resetting page to 1 when filters change; the server only clamps.
func viewConfig(c *gin.Context) catalog.ViewConfig {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "0"))

	return catalog.ViewConfig{
		Query:         c.Query("q"),
		OnlyAvailable: c.Query("only_available") == "true",
		OnlyPromotion: c.Query("only_promotion") == "true",
		SortKey:       catalog.SortKey(c.DefaultQuery("sort", string(catalog.SortRecent))),
		Page:          page,
		PageSize:      pageSize,
	}
}

// listMenu handles the public menu listing
func (h *Handler) listMenu(c *gin.Context) {
	page, err := h.catalogService.MenuList(c.Request.Context(), viewConfig(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to load products",
			"details": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, page)
}

// adminListProducts handles the admin product listing
func (h *Handler) adminListProducts(c *gin.Context) {
	page, err := h.catalogService.AdminList(c.Request.Context(), viewConfig(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to load products",
			"details": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, page)
}

// getProduct handles get product by ID
func (h *Handler) getProduct(c *gin.Context) {
	product, err := h.catalogService.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Product not found",
			"details": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}

// createProduct handles product creation
func (h *Handler) createProduct(c *gin.Context) {
	var req service.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	product, err := h.catalogService.CreateProduct(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to create product",
			"details": err.Error(),
		})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"product": product})
}

// updateProduct handles partial product updates
func (h *Handler) updateProduct(c *gin.Context) {
	var update service.ProductPatch
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	product, err := h.catalogService.UpdateProduct(c.Request.Context(), c.Param("id"), update)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to update product",
			"details": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}

// deleteProduct handles product deletion
func (h *Handler) deleteProduct(c *gin.Context) {
	if err := h.catalogService.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to delete product",
			"details": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// seedProducts inserts the sample catalog
func (h *Handler) seedProducts(c *gin.Context) {
	inserted, err := h.catalogService.SeedProducts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to seed products",
			"details": err.Error(),
		})
		return
	}
	status := http.StatusOK
	if inserted > 0 {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"inserted": inserted})
}

// uploadImages handles product image uploads (multipart field "images")
func (h *Handler) uploadImages(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid multipart form",
			"details": err.Error(),
		})
		return
	}

	urls, err := h.images.Upload(c.Request.Context(), form.File["images"])
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Upload failed",
			"details": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"urls": urls})
}

// sessionID reads the cart session cookie, minting one when absent
func sessionID(c *gin.Context) string {
	if id, err := c.Cookie(sessionCookie); err == nil && id != "" {
		return id
	}
	id := uuid.New().String()
	c.SetCookie(sessionCookie, id, int((365 * 24 * time.Hour).Seconds()), "/", "", false, true)
	return id
}

// getCart returns the session cart
func (h *Handler) getCart(c *gin.Context) {
	summary, err := h.cartService.GetCart(c.Request.Context(), sessionID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to load cart",
			"details": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, summary)
}

type addCartItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity"`
}

// addCartItem adds a product to the session cart
func (h *Handler) addCartItem(c *gin.Context) {
	var req addCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	summary, err := h.cartService.AddItem(c.Request.Context(), sessionID(c), req.ProductID, req.Quantity)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Failed to add item",
			"details": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// removeCartItem removes a product from the session cart
func (h *Handler) removeCartItem(c *gin.Context) {
	summary, err := h.cartService.RemoveItem(c.Request.Context(), sessionID(c), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to remove item",
			"details": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// clearCart empties the session cart
func (h *Handler) clearCart(c *gin.Context) {
	if err := h.cartService.ClearCart(c.Request.Context(), sessionID(c)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to clear cart",
			"details": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// createCheckout turns the session cart into an order with a payment
// preference
func (h *Handler) createCheckout(c *gin.Context) {
	resp, err := h.checkoutService.CreateCheckout(c.Request.Context(), sessionID(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Failed to create checkout",
			"details": err.Error(),
		})
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// getOrder handles get order by ID
func (h *Handler) getOrder(c *gin.Context) {
	order, items, payment, err := h.checkoutService.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Order not found",
			"details": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"order":   order,
		"items":   items,
		"payment": payment,
	})
}

// paymentWebhook receives provider notifications and acks once the event
// is on the broker
func (h *Handler) paymentWebhook(c *gin.Context) {
	var notification service.WebhookNotification
	if err := c.ShouldBindJSON(&notification); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid webhook payload",
			"details": err.Error(),
		})
		return
	}

	if err := h.paymentService.HandleNotification(c.Request.Context(), &notification); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to process webhook",
			"details": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}

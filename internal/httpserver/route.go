package httpserver

import (
	"context"
	"net/http"

	"github.com/Skotchmaster/storefront/pkg/metrics"
	"github.com/Skotchmaster/storefront/pkg/middleware/csrf"
	middleware "github.com/Skotchmaster/storefront/pkg/middleware/auth"
	"github.com/labstack/echo/v4"
)

type Deps struct {
	OrderHandler   *OrderHTTP
	CatalogHandler *CatalogHTTP
	AuthHandler    *AuthHTTP
	ContactHandler *ContactHTTP
	JWTSecret      []byte
	SecureCookies  bool

	// Ready backs /health/ready; nil means always ready.
	Ready          func(ctx context.Context) error
	Metrics        *metrics.ServerMetrics
	MetricsHandler http.Handler
}

func Register(e *echo.Echo, d *Deps) {
	e.HTTPErrorHandler = ErrorHandler

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "not ready")
			}
		}
		return c.NoContent(http.StatusOK)
	})
	if d.MetricsHandler != nil {
		e.GET("/metrics", echo.WrapHandler(d.MetricsHandler))
	}

	authMW := middleware.NewJWTMiddleware(d.JWTSecret)

	api := e.Group("/api/v1")
	if d.Metrics != nil {
		api.Use(d.Metrics.Middleware())
	}
	api.Use(csrf.Middleware(csrf.Config{Secure: d.SecureCookies}))

	api.POST("/register", d.AuthHandler.Register)
	api.POST("/login", d.AuthHandler.Login)
	api.POST("/logout", d.AuthHandler.Logout)
	api.GET("/me", d.AuthHandler.Me, authMW.RequireAuth)

	products := api.Group("/products")
	products.GET("", d.CatalogHandler.GetProducts, authMW.Optional)
	products.GET("/:id", d.CatalogHandler.GetProduct)

	adminProducts := products.Group("", authMW.RequireAdmin)
	adminProducts.POST("", d.CatalogHandler.CreateProduct)
	adminProducts.PATCH("/:id", d.CatalogHandler.PatchProduct)
	adminProducts.DELETE("/:id", d.CatalogHandler.DeleteProduct)

	orders := api.Group("/orders")
	orders.POST("", d.OrderHandler.CreateOrder, authMW.Optional)

	admin := orders.Group("", authMW.RequireAdmin)
	admin.GET("", d.OrderHandler.ListOrders)
	admin.GET("/:id", d.OrderHandler.GetOrder)
	admin.PATCH("/:id", d.OrderHandler.UpdateOrder)
	admin.DELETE("/:id", d.OrderHandler.DeleteOrder)
	admin.PUT("/:id/items", d.OrderHandler.ReplaceItems)
	admin.POST("/:id/items", d.OrderHandler.AddItem)
	admin.PATCH("/:id/items/:item", d.OrderHandler.UpdateItem)
	admin.DELETE("/:id/items/:item", d.OrderHandler.RemoveItem)
	admin.PATCH("/:id/status", d.OrderHandler.SetStatus)

	msgs := api.Group("/contact-messages")
	msgs.POST("", d.ContactHandler.SubmitMessage)

	adminMsgs := msgs.Group("", authMW.RequireAdmin)
	adminMsgs.GET("", d.ContactHandler.ListMessages)
	adminMsgs.GET("/:id", d.ContactHandler.GetMessage)
	adminMsgs.PATCH("/:id/process", d.ContactHandler.ProcessMessage)
	adminMsgs.DELETE("/:id", d.ContactHandler.DeleteMessage)
}

// Package router registers every HTTP route and its middleware.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/storefront/internal/handler"
	"github.com/iliyamo/storefront/internal/middleware"
	"github.com/iliyamo/storefront/internal/model"
)

// Deps collects what the routes need.  Cache and LoginLimit may be nil.
type Deps struct {
	Auth        *handler.AuthHandler
	Orders      *handler.OrderHandler
	Products    *handler.ProductHandler
	Integration *handler.IntegrationHandler
	Ready       echo.HandlerFunc
	Gate        *middleware.SessionGate
	APIKey      string
	Cache       echo.MiddlewareFunc
	LoginLimit  echo.MiddlewareFunc
}

// RegisterRoutes registers the health checks.
func RegisterRoutes(e *echo.Echo, ready echo.HandlerFunc) {
	e.GET("/healthz", handler.Health)
	if ready != nil {
		e.GET("/readyz", ready)
	}
}

// RegisterAuth registers /api/auth.  Register, login and logout need no
// session; me does.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, gate *middleware.SessionGate, loginLimit echo.MiddlewareFunc) {
	g := e.Group("/api/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login, orPass(loginLimit))
	g.POST("/logout", a.Logout)
	g.GET("/me", a.Me, gate.RequireSession())
}

// RegisterCatalog registers the public product routes.
func RegisterCatalog(e *echo.Echo, p *handler.ProductHandler, cache echo.MiddlewareFunc) {
	e.GET("/api/products", p.List, orPass(cache))
	e.GET("/api/products/:id", p.Get, orPass(cache))
}

// RegisterOrders registers the session-gated order routes.  Search also
// needs the admin role.
func RegisterOrders(e *echo.Echo, o *handler.OrderHandler, gate *middleware.SessionGate) {
	e.GET("/api/orders/me", o.MyOrders, gate.RequireSession())

	admin := e.Group("/api/admin", gate.RequireSession(), middleware.RequireRole(model.RoleAdmin))
	admin.GET("/orders/search", o.Search)
}

// RegisterIntegration registers the API-key routes used by suppliers and
// partners.  Static segments win over /api/products/:id in echo's router.
func RegisterIntegration(e *echo.Echo, i *handler.IntegrationHandler, apiKey string) {
	key := middleware.RequireAPIKey(apiKey)
	e.GET("/api/products/inventory", i.ListInventory, key)
	e.PATCH("/api/products/sync-inventory", i.SyncInventory, key)
	e.POST("/api/webhooks/register", i.RegisterWebhook, key)
	e.GET("/api/webhooks/register", i.ListWebhooks, key)
}

// Register wires every route group.
func Register(e *echo.Echo, d Deps) {
	RegisterRoutes(e, d.Ready)
	RegisterAuth(e, d.Auth, d.Gate, d.LoginLimit)
	RegisterCatalog(e, d.Products, d.Cache)
	RegisterOrders(e, d.Orders, d.Gate)
	RegisterIntegration(e, d.Integration, d.APIKey)
}

func orPass(mw echo.MiddlewareFunc) echo.MiddlewareFunc {
	if mw == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return mw
}

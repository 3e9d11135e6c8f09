package router

import (
	"net/http"
	"sort"

	"github.com/bizdir/backend/internal/interfaces/http/handler"
	"github.com/bizdir/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router mounts domain groups under the versioned API prefix
type Router struct {
	engine     *gin.Engine
	apiVersion string
	registrars []RouteRegistrar
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{engine: engine, apiVersion: "v1"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register queues registrars for Setup
func (r *Router) Register(registrars ...RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrars...)
	return r
}

// Setup registers all queued routes and returns the API group
func (r *Router) Setup() *gin.RouterGroup {
	api := r.engine.Group(r.BasePath())
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
	return api
}

// BasePath is the versioned API prefix, e.g. /api/v1
func (r *Router) BasePath() string {
	return "/api/" + r.apiVersion
}

// DomainGroup collects the routes of one area of the API
type DomainGroup struct {
	name       string
	prefix     string
	routes     []routeDefinition
	subgroups  []*DomainGroup
	middleware []gin.HandlerFunc
}

type routeDefinition struct {
	method   string
	path     string
	handlers []gin.HandlerFunc
}

// NewDomainGroup creates a new domain-specific route group
func NewDomainGroup(name, prefix string) *DomainGroup {
	return &DomainGroup{name: name, prefix: prefix}
}

// Use adds middleware to this group
func (dg *DomainGroup) Use(middleware ...gin.HandlerFunc) *DomainGroup {
	dg.middleware = append(dg.middleware, middleware...)
	return dg
}

// Handle registers a route with an arbitrary method
func (dg *DomainGroup) Handle(method, path string, handlers ...gin.HandlerFunc) *DomainGroup {
	dg.routes = append(dg.routes, routeDefinition{method: method, path: path, handlers: handlers})
	return dg
}

// GET registers a GET route
func (dg *DomainGroup) GET(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodGet, path, handlers...)
}

// POST registers a POST route
func (dg *DomainGroup) POST(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodPost, path, handlers...)
}

// PUT registers a PUT route
func (dg *DomainGroup) PUT(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodPut, path, handlers...)
}

// DELETE registers a DELETE route
func (dg *DomainGroup) DELETE(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodDelete, path, handlers...)
}

// Group creates a sub-group that inherits this group's prefix and middleware
func (dg *DomainGroup) Group(name, prefix string) *DomainGroup {
	subgroup := NewDomainGroup(name, prefix)
	dg.subgroups = append(dg.subgroups, subgroup)
	return subgroup
}

// RegisterRoutes implements RouteRegistrar
func (dg *DomainGroup) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group(dg.prefix)
	if len(dg.middleware) > 0 {
		group.Use(dg.middleware...)
	}
	for _, route := range dg.routes {
		group.Handle(route.method, route.path, route.handlers...)
	}
	for _, subgroup := range dg.subgroups {
		subgroup.RegisterRoutes(group)
	}
}

// Name returns the group name
func (dg *DomainGroup) Name() string {
	return dg.name
}

// Prefix returns the group prefix
func (dg *DomainGroup) Prefix() string {
	return dg.prefix
}

// Handlers bundles every API handler the directory serves
type Handlers struct {
	Auth       *handler.AuthHandler
	Users      *handler.UserHandler
	Listings   *handler.ListingHandler
	Reviews    *handler.ReviewHandler
	Bookings   *handler.BookingHandler
	Messaging  *handler.MessagingHandler
	Moderation *handler.ModerationHandler
	Analytics  *handler.AnalyticsHandler
	Billing    *handler.BillingHandler
	Builder    *handler.BuilderHandler
	Admin      *handler.AdminHandler
}

// Groups builds the API route table. Which routes need a token is decided by
// the JWT middleware's public route list; admin routes additionally check the role.
func Groups(h Handlers) []RouteRegistrar {
	auth := NewDomainGroup("auth", "/auth").
		POST("/register", h.Auth.Register).
		POST("/login", h.Auth.Login).
		POST("/refresh", h.Auth.Refresh).
		POST("/logout", h.Auth.Logout).
		GET("/me", h.Auth.Me).
		PUT("/me", h.Auth.UpdateProfile).
		PUT("/password", h.Auth.ChangePassword)

	listings := NewDomainGroup("listings", "/listings").
		GET("", h.Listings.Search).
		GET("/:id", h.Listings.Get).
		GET("/:id/reviews", h.Reviews.ListForListing).
		POST("/:id/reviews", h.Reviews.Create).
		POST("/:id/bookings", h.Bookings.Request)

	me := NewDomainGroup("me", "/me").
		GET("/listings", h.Listings.ListMine).
		POST("/listings", h.Listings.Create).
		PUT("/listings/:id", h.Listings.Update).
		POST("/listings/:id/submit", h.Listings.Submit).
		POST("/listings/:id/archive", h.Listings.Archive).
		POST("/listings/:id/photos/upload-url", h.Listings.PhotoUploadURL).
		POST("/listings/:id/photos", h.Listings.AttachPhoto).
		DELETE("/listings/:id/photos", h.Listings.RemovePhoto).
		GET("/reviews", h.Reviews.ListMine)

	reviews := NewDomainGroup("reviews", "/reviews").
		PUT("/:id", h.Reviews.Update).
		DELETE("/:id", h.Reviews.Delete).
		POST("/:id/response", h.Reviews.Respond)

	bookings := NewDomainGroup("bookings", "/bookings").
		GET("", h.Bookings.List).
		GET("/:id", h.Bookings.Get).
		POST("/:id/confirm", h.Bookings.Confirm).
		POST("/:id/decline", h.Bookings.Decline).
		POST("/:id/cancel", h.Bookings.Cancel).
		POST("/:id/complete", h.Bookings.Complete)

	conversations := NewDomainGroup("conversations", "/conversations").
		POST("", h.Messaging.Start).
		GET("", h.Messaging.List).
		GET("/unread", h.Messaging.Unread).
		GET("/:id/messages", h.Messaging.Messages).
		POST("/:id/messages", h.Messaging.Send).
		POST("/:id/read", h.Messaging.MarkRead)

	reports := NewDomainGroup("reports", "/reports").
		POST("", h.Moderation.File)

	analytics := NewDomainGroup("analytics", "/analytics").
		POST("/events", h.Analytics.Track).
		GET("/dashboard", h.Analytics.OwnerDashboard)

	billing := NewDomainGroup("billing", "").
		GET("/plans", h.Billing.Plans).
		GET("/billing/subscription", h.Billing.Mine).
		POST("/billing/subscription/cancel", h.Billing.Cancel).
		POST("/billing/subscription/resume", h.Billing.Resume).
		POST("/billing/webhook", h.Billing.Webhook)

	builder := NewDomainGroup("builder", "/builder").
		POST("/uploads", h.Builder.UploadURL).
		POST("/analyze", h.Builder.Analyze).
		POST("/listings", h.Builder.CreateListing)

	admin := NewDomainGroup("admin", "/admin").
		Use(middleware.RequireRole("admin")).
		GET("/overview", h.Admin.Overview)
	admin.Group("users", "/users").
		GET("", h.Users.List).
		GET("/:id", h.Users.Get).
		POST("/:id/suspend", h.Users.Suspend).
		POST("/:id/reactivate", h.Users.Reactivate)
	admin.Group("listings", "/listings").
		GET("", h.Listings.AdminList).
		GET("/pending", h.Listings.Pending).
		POST("/:id/approve", h.Listings.Approve).
		POST("/:id/reject", h.Listings.Reject).
		POST("/:id/reinstate", h.Listings.Reinstate).
		POST("/:id/archive", h.Listings.Archive)
	admin.Group("reviews", "/reviews").
		POST("/:id/hide", h.Reviews.Hide)
	admin.Group("reports", "/reports").
		GET("", h.Moderation.List).
		GET("/stats", h.Moderation.Stats).
		GET("/:id", h.Moderation.Get).
		POST("/:id/investigate", h.Moderation.Investigate).
		POST("/:id/resolve", h.Moderation.Resolve).
		POST("/:id/dismiss", h.Moderation.Dismiss)
	admin.Group("analytics", "/analytics").
		GET("/dashboard", h.Analytics.SiteDashboard).
		GET("/export", h.Analytics.ExportPDF)

	return []RouteRegistrar{
		auth, listings, me, reviews, bookings, conversations,
		reports, analytics, billing, builder, admin,
	}
}

// Describe lists the engine's routes as "METHOD path", sorted
func Describe(engine *gin.Engine) []string {
	routes := engine.Routes()
	out := make([]string, 0, len(routes))
	for _, r := range routes {
		out = append(out, r.Method+" "+r.Path)
	}
	sort.Strings(out)
	return out
}

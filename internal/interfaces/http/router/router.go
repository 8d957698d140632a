package router

import (
	"github.com/gin-gonic/gin"
)

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// RegisterFunc registers routes on a group
type RegisterFunc func(rg *gin.RouterGroup)

type surface struct {
	middleware []gin.HandlerFunc
	register   RegisterFunc
}

// Router manages HTTP route registration. Each surface (sync agent,
// storefront, dashboard, admin) mounts under the versioned API prefix
// with its own middleware chain.
type Router struct {
	engine     *gin.Engine
	apiVersion string
	surfaces   []surface
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
	r := &Router{
		engine:     engine,
		apiVersion: "v1",
		surfaces:   make([]surface, 0),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Register adds a registrar to the versioned group with no extra middleware
func (r *Router) Register(registrar RouteRegistrar) *Router {
	return r.RegisterFunc(registrar.RegisterRoutes)
}

// RegisterFunc adds a register function with its own middleware chain.
// The middleware applies only to routes registered by this function.
func (r *Router) RegisterFunc(register RegisterFunc, middleware ...gin.HandlerFunc) *Router {
	r.surfaces = append(r.surfaces, surface{
		middleware: middleware,
		register:   register,
	})
	return r
}

// Setup registers all routes with the engine
func (r *Router) Setup() {
	api := r.engine.Group("/api/" + r.apiVersion)

	for _, s := range r.surfaces {
		group := api.Group("")
		if len(s.middleware) > 0 {
			group.Use(s.middleware...)
		}
		s.register(group)
	}
}

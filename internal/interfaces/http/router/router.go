// Package router mounts the storefront API on a gin engine.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RouteRegistrar registers its routes under a parent group
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router owns the versioned API group and the registrars mounted on it
type Router struct {
	engine     *gin.Engine
	apiVersion string
	middleware []gin.HandlerFunc
	registrars []RouteRegistrar
}

// RouterOption configures a Router
type RouterOption func(*Router)

// WithAPIVersion mounts the API under /api/{version} instead of /api/v1
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) { r.apiVersion = version }
}

func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{engine: engine, apiVersion: "v1"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Use adds middleware to every route under the API prefix
func (r *Router) Use(middleware ...gin.HandlerFunc) *Router {
	r.middleware = append(r.middleware, middleware...)
	return r
}

// Register adds a RouteRegistrar to be mounted by Setup
func (r *Router) Register(registrars ...RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrars...)
	return r
}

// Setup mounts every registrar under /api/{version}
func (r *Router) Setup() {
	api := r.engine.Group("/api/"+r.apiVersion, r.middleware...)
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
}

// RouteGroup collects routes under a prefix. Middleware added with Use
// wraps the group's routes and every subgroup.
type RouteGroup struct {
	prefix     string
	middleware []gin.HandlerFunc
	routes     []route
	subgroups  []*RouteGroup
}

type route struct {
	method   string
	path     string
	handlers []gin.HandlerFunc
}

// NewRouteGroup starts an empty group mounted at prefix
func NewRouteGroup(prefix string) *RouteGroup {
	return &RouteGroup{prefix: prefix}
}

func (g *RouteGroup) Use(middleware ...gin.HandlerFunc) *RouteGroup {
	g.middleware = append(g.middleware, middleware...)
	return g
}

func (g *RouteGroup) handle(method, path string, handlers []gin.HandlerFunc) *RouteGroup {
	g.routes = append(g.routes, route{method: method, path: path, handlers: handlers})
	return g
}

func (g *RouteGroup) GET(path string, h ...gin.HandlerFunc) *RouteGroup {
	return g.handle(http.MethodGet, path, h)
}

func (g *RouteGroup) POST(path string, h ...gin.HandlerFunc) *RouteGroup {
	return g.handle(http.MethodPost, path, h)
}

func (g *RouteGroup) PUT(path string, h ...gin.HandlerFunc) *RouteGroup {
	return g.handle(http.MethodPut, path, h)
}

func (g *RouteGroup) PATCH(path string, h ...gin.HandlerFunc) *RouteGroup {
	return g.handle(http.MethodPatch, path, h)
}

func (g *RouteGroup) DELETE(path string, h ...gin.HandlerFunc) *RouteGroup {
	return g.handle(http.MethodDelete, path, h)
}

// Sub returns a nested group under prefix
func (g *RouteGroup) Sub(prefix string) *RouteGroup {
	sub := NewRouteGroup(prefix)
	g.subgroups = append(g.subgroups, sub)
	return sub
}

// RegisterRoutes implements RouteRegistrar
func (g *RouteGroup) RegisterRoutes(parent *gin.RouterGroup) {
	rg := parent.Group(g.prefix, g.middleware...)
	for _, rt := range g.routes {
		rg.Handle(rt.method, rt.path, rt.handlers...)
	}
	for _, sub := range g.subgroups {
		sub.RegisterRoutes(rg)
	}
}

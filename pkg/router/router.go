package router

import (
	"context"
	"net/http"
	"sync"

	"github.com/soundtrail/backend/pkg/errorx"
	"github.com/soundtrail/backend/pkg/xcontext"
)

type HandlerFunc[Request, Response any] func(ctx context.Context, req *Request) (*Response, error)

// MiddlewareFunc runs before the handler. A returned error stops the request.
type MiddlewareFunc func(ctx context.Context) (context.Context, error)

// CloserFunc runs after the response has been written.
type CloserFunc func(ctx context.Context)

type routes struct {
	mutex    sync.RWMutex
	handlers map[string]map[string]http.HandlerFunc
}

type Router struct {
	ctx     context.Context
	routes  *routes
	befores []MiddlewareFunc
	afters  []CloserFunc
}

// New creates a router whose handlers see the values of ctx (configs,
// logger, database) on top of the request context.
func New(ctx context.Context) *Router {
	return &Router{
		ctx:    ctx,
		routes: &routes{handlers: make(map[string]map[string]http.HandlerFunc)},
	}
}

// Branch returns a router sharing the routes of r. Middlewares added to the
// branch do not affect r.
func (r *Router) Branch() *Router {
	return &Router{
		ctx:     r.ctx,
		routes:  r.routes,
		befores: append([]MiddlewareFunc{}, r.befores...),
		afters:  append([]CloserFunc{}, r.afters...),
	}
}

func (r *Router) Before(middleware MiddlewareFunc) {
	r.befores = append(r.befores, middleware)
}

func (r *Router) After(closer CloserFunc) {
	r.afters = append(r.afters, closer)
}

func GET[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.routes.add(http.MethodGet, pattern, wrapHandler(r, http.MethodGet, handler))
}

func POST[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.routes.add(http.MethodPost, pattern, wrapHandler(r, http.MethodPost, handler))
}

// Handle registers a plain http.Handler for every method of pattern.
func (r *Router) Handle(pattern string, handler http.Handler) {
	r.routes.add("*", pattern, handler.ServeHTTP)
}

func (r *Router) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if handler, ok := r.routes.get(req.Method, req.URL.Path); ok {
			handler(w, req)
			return
		}

		ctx := r.requestContext(req)
		err := errorx.New(errorx.NotFound, "Not found %s %s", req.Method, req.URL.Path)
		writeResponse(ctx, w, nil, err)
	})
}

func (r *Router) requestContext(req *http.Request) context.Context {
	ctx := context.Context(valueContext{Context: req.Context(), values: r.ctx})
	return xcontext.WithHTTPRequest(ctx, req)
}

func (rs *routes) add(method, pattern string, handler http.HandlerFunc) {
	rs.mutex.Lock()
	defer rs.mutex.Unlock()

	if _, ok := rs.handlers[pattern]; !ok {
		rs.handlers[pattern] = make(map[string]http.HandlerFunc)
	}

	rs.handlers[pattern][method] = handler
}

func (rs *routes) get(method, pattern string) (http.HandlerFunc, bool) {
	rs.mutex.RLock()
	defer rs.mutex.RUnlock()

	methods, ok := rs.handlers[pattern]
	if !ok {
		return nil, false
	}

	if handler, ok := methods[method]; ok {
		return handler, true
	}

	handler, ok := methods["*"]
	return handler, ok
}

// valueContext carries the cancellation of the request and falls back to
// the router context for values.
type valueContext struct {
	context.Context
	values context.Context
}

func (c valueContext) Value(key any) any {
	if v := c.Context.Value(key); v != nil {
		return v
	}

	return c.values.Value(key)
}

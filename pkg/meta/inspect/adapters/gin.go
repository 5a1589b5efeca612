package adapters

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/toyz/metamodel/pkg/meta/inspect"
)

// GinAdapter implements inspect.Server for the Gin framework
type GinAdapter struct {
	engine *gin.Engine
	server *http.Server
}

// NewGinAdapter creates a new Gin adapter
func NewGinAdapter(g *gin.Engine) *GinAdapter {
	return &GinAdapter{engine: g}
}

// NewDefaultGinAdapter creates a new Gin adapter with a release mode engine
func NewDefaultGinAdapter() *GinAdapter {
	gin.SetMode(gin.ReleaseMode)
	g := gin.New()
	g.Use(gin.Recovery())
	return &GinAdapter{engine: g}
}

// Handle registers a route with the Gin engine
func (ga *GinAdapter) Handle(method, path string, handler inspect.HandlerFunc) {
	ga.engine.Handle(method, path, func(c *gin.Context) {
		if err := handler(&ginContext{ctx: c}); err != nil {
			code, body := inspect.ErrorResponse(err)
			c.JSON(code, body)
		}
	})
}

// Mount registers a net/http handler with the Gin engine
func (ga *GinAdapter) Mount(method, path string, handler http.Handler) {
	ga.engine.Handle(method, path, gin.WrapH(handler))
}

// Start starts serving the Gin engine
func (ga *GinAdapter) Start(addr string) error {
	ga.server = &http.Server{Addr: addr, Handler: ga.engine}
	if err := ga.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop gracefully stops the server started by Start
func (ga *GinAdapter) Stop(ctx context.Context) error {
	if ga.server == nil {
		return nil
	}
	return ga.server.Shutdown(ctx)
}

// Name returns the adapter name
func (ga *GinAdapter) Name() string {
	return "Gin"
}

// ServeHTTP serves a request directly
func (ga *GinAdapter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ga.engine.ServeHTTP(w, r)
}

// ginContext wraps gin.Context to implement inspect.Context
type ginContext struct {
	ctx *gin.Context
}

func (c *ginContext) Context() context.Context      { return c.ctx.Request.Context() }
func (c *ginContext) Param(name string) string      { return c.ctx.Param(name) }
func (c *ginContext) QueryParam(name string) string { return c.ctx.Query(name) }

func (c *ginContext) JSON(code int, v any) error {
	c.ctx.JSON(code, v)
	return nil
}

func (c *ginContext) Blob(code int, contentType string, b []byte) error {
	c.ctx.Data(code, contentType, b)
	return nil
}

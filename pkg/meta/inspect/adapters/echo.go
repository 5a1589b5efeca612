package adapters

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/toyz/metamodel/pkg/meta/inspect"
)

// EchoAdapter implements inspect.Server for the Echo framework
type EchoAdapter struct {
	echo *echo.Echo
}

// NewEchoAdapter creates a new Echo adapter
func NewEchoAdapter(e *echo.Echo) *EchoAdapter {
	return &EchoAdapter{echo: e}
}

// NewDefaultEchoAdapter creates a new Echo adapter with a quiet Echo instance
func NewDefaultEchoAdapter() *EchoAdapter {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	return &EchoAdapter{echo: e}
}

// Handle registers a route with the Echo server
func (ea *EchoAdapter) Handle(method, path string, handler inspect.HandlerFunc) {
	ea.echo.Add(method, path, func(c echo.Context) error {
		if err := handler(&echoContext{ctx: c}); err != nil {
			code, body := inspect.ErrorResponse(err)
			return c.JSON(code, body)
		}
		return nil
	})
}

// Mount registers a net/http handler with the Echo server
func (ea *EchoAdapter) Mount(method, path string, handler http.Handler) {
	ea.echo.Add(method, path, echo.WrapHandler(handler))
}

// Start starts the Echo server
func (ea *EchoAdapter) Start(addr string) error {
	if err := ea.echo.Start(addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop gracefully stops the Echo server
func (ea *EchoAdapter) Stop(ctx context.Context) error {
	return ea.echo.Shutdown(ctx)
}

// Name returns the adapter name
func (ea *EchoAdapter) Name() string {
	return "Echo"
}

// ServeHTTP serves a request directly
func (ea *EchoAdapter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ea.echo.ServeHTTP(w, r)
}

// echoContext wraps echo.Context to implement inspect.Context
type echoContext struct {
	ctx echo.Context
}

func (c *echoContext) Context() context.Context      { return c.ctx.Request().Context() }
func (c *echoContext) Param(name string) string      { return c.ctx.Param(name) }
func (c *echoContext) QueryParam(name string) string { return c.ctx.QueryParam(name) }
func (c *echoContext) JSON(code int, v any) error    { return c.ctx.JSON(code, v) }

func (c *echoContext) Blob(code int, contentType string, b []byte) error {
	return c.ctx.Blob(code, contentType, b)
}

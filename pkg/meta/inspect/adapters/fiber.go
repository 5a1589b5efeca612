package adapters

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/toyz/metamodel/pkg/meta/inspect"
)

// FiberAdapter implements inspect.Server for the Fiber framework
type FiberAdapter struct {
	app *fiber.App
}

// NewFiberAdapter creates a new Fiber adapter
func NewFiberAdapter(app *fiber.App) *FiberAdapter {
	return &FiberAdapter{app: app}
}

// NewDefaultFiberAdapter creates a new Fiber adapter without the startup message
func NewDefaultFiberAdapter() *FiberAdapter {
	return &FiberAdapter{app: fiber.New(fiber.Config{DisableStartupMessage: true})}
}

// Handle registers a route with the Fiber app
func (fa *FiberAdapter) Handle(method, path string, handler inspect.HandlerFunc) {
	fa.app.Add(method, path, func(c *fiber.Ctx) error {
		if err := handler(&fiberContext{ctx: c}); err != nil {
			code, body := inspect.ErrorResponse(err)
			return c.Status(code).JSON(body)
		}
		return nil
	})
}

// Mount registers a net/http handler with the Fiber app
func (fa *FiberAdapter) Mount(method, path string, handler http.Handler) {
	fa.app.Add(method, path, adaptor.HTTPHandler(handler))
}

// Start starts the Fiber app
func (fa *FiberAdapter) Start(addr string) error {
	return fa.app.Listen(addr)
}

// Stop gracefully stops the Fiber app
func (fa *FiberAdapter) Stop(ctx context.Context) error {
	return fa.app.ShutdownWithContext(ctx)
}

// Name returns the adapter name
func (fa *FiberAdapter) Name() string {
	return "Fiber"
}

// App returns the underlying Fiber app
func (fa *FiberAdapter) App() *fiber.App {
	return fa.app
}

// fiberContext wraps fiber.Ctx to implement inspect.Context
type fiberContext struct {
	ctx *fiber.Ctx
}

func (c *fiberContext) Context() context.Context      { return c.ctx.UserContext() }
func (c *fiberContext) Param(name string) string      { return c.ctx.Params(name) }
func (c *fiberContext) QueryParam(name string) string { return c.ctx.Query(name) }
func (c *fiberContext) JSON(code int, v any) error    { return c.ctx.Status(code).JSON(v) }

func (c *fiberContext) Blob(code int, contentType string, b []byte) error {
	c.ctx.Set(fiber.HeaderContentType, contentType)
	return c.ctx.Status(code).Send(b)
}

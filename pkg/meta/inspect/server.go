package inspect

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/toyz/metamodel/pkg/meta"
	"github.com/toyz/metamodel/pkg/meta/spec"
)

// Context is the framework-agnostic view of one request
type Context interface {
	Context() context.Context
	Param(name string) string
	QueryParam(name string) string
	JSON(code int, v any) error
	Blob(code int, contentType string, b []byte) error
}

// HandlerFunc handles one request
type HandlerFunc func(Context) error

// Router registers routes on a web framework. Paths use the :name parameter syntax.
type Router interface {
	Handle(method, path string, handler HandlerFunc)
	// Mount serves a plain net/http handler
	Mount(method, path string, handler http.Handler)
	Name() string
}

// Server is a Router that can be started and stopped
type Server interface {
	Router
	Start(addr string) error
	Stop(ctx context.Context) error
}

// HTTPError is an error with a status code
type HTTPError struct {
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`
}

// Error implements the error interface
func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// NewHTTPError creates an HTTPError
func NewHTTPError(statusCode int, message string) *HTTPError {
	return &HTTPError{StatusCode: statusCode, Message: message}
}

// ErrorResponse maps err to a status code and response body
func ErrorResponse(err error) (int, *HTTPError) {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode, httpErr
	}
	return http.StatusInternalServerError, NewHTTPError(http.StatusInternalServerError, err.Error())
}

// Service serves a metamodel read-only
type Service struct {
	model    *meta.MetaModel
	gatherer prometheus.Gatherer
	logger   *slog.Logger
}

// Option configures a Service
type Option func(*Service)

// WithGatherer exposes the gathered metrics under /metrics
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Service) { s.gatherer = g }
}

// WithLogger sets the service logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// NewService creates a service over model
func NewService(model *meta.MetaModel, opts ...Option) *Service {
	s := &Service{model: model, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register adds the service routes to r
func (s *Service) Register(r Router) {
	r.Handle(http.MethodGet, "/health", s.health)
	r.Handle(http.MethodGet, "/model", s.describeModel)
	r.Handle(http.MethodGet, "/specs", s.listSpecifications)
	r.Handle(http.MethodGet, "/specs/:name", s.getSpecification)
	r.Handle(http.MethodGet, "/failures", s.listFailures)
	if s.gatherer != nil {
		r.Mount(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	s.logger.Debug("registered inspection routes", "adapter", r.Name())
}

func (s *Service) health(c Context) error {
	if !s.model.Ready() {
		return c.JSON(http.StatusServiceUnavailable, map[string]any{
			"ready": false,
			"error": s.model.Err().Error(),
		})
	}
	return c.JSON(http.StatusOK, map[string]any{"ready": true})
}

func (s *Service) describeModel(c Context) error {
	return s.render(c, http.StatusOK, DescribeModel(s.model))
}

func (s *Service) listSpecifications(c Context) error {
	specs, err := s.model.Specifications()
	if err != nil {
		return s.fail(err)
	}
	names := make([]string, len(specs))
	for i, sp := range specs {
		names[i] = sp.Name()
	}
	return s.render(c, http.StatusOK, names)
}

func (s *Service) getSpecification(c Context) error {
	sp, err := s.model.Specification(c.Context(), c.Param("name"))
	if err != nil {
		return s.fail(err)
	}
	return s.render(c, http.StatusOK, DescribeSpecification(sp))
}

func (s *Service) listFailures(c Context) error {
	return s.render(c, http.StatusOK, s.model.Failures())
}

func (s *Service) fail(err error) error {
	switch {
	case errors.Is(err, spec.ErrSpecNotFound):
		return &HTTPError{StatusCode: http.StatusNotFound, Message: err.Error()}
	case errors.Is(err, meta.ErrNotReady):
		return &HTTPError{StatusCode: http.StatusServiceUnavailable, Message: err.Error(), Details: s.model.Failures()}
	}
	return err
}

// render writes v as JSON unless ?format=yaml is given
func (s *Service) render(c Context, code int, v any) error {
	format, err := ParseFormat(c.QueryParam("format"))
	if err != nil {
		return NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if c.QueryParam("format") == "" || format == FormatJSON {
		return c.JSON(code, v)
	}
	var buf bytes.Buffer
	if err := Encode(&buf, format, v); err != nil {
		return err
	}
	return c.Blob(code, format.ContentType(), buf.Bytes())
}

package adapters

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/toyz/metamodel/pkg/meta"
	"github.com/toyz/metamodel/pkg/meta/descriptor"
	"github.com/toyz/metamodel/pkg/meta/inspect"
	"github.com/toyz/metamodel/pkg/meta/interaction"
)

type ticket struct{ closed bool }

func ticketTable(extra ...*descriptor.Type) *descriptor.Table {
	ticketType := descriptor.NewBuilder("helpdesk.Ticket").
		WithConstructor(func() any { return &ticket{} }).
		Field("Subject", "string", descriptor.Getter(func(any) any { return "printer on fire" })).
		Method("Close", descriptor.Invokes(func(t any, _ []any) (any, error) {
			t.(*ticket).closed = true
			return nil, nil
		})).
		Build()
	return descriptor.NewTable().MustRegister(append([]*descriptor.Type{ticketType}, extra...)...)
}

// do sends a request to the server the way each framework is tested
func do(t *testing.T, server inspect.Server, method, target string) (int, string, string) {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)

	var resp *http.Response
	switch s := server.(type) {
	case *FiberAdapter:
		var err error
		resp, err = s.App().Test(req, -1)
		if err != nil {
			t.Fatalf("Failed to execute request: %v", err)
		}
	case http.Handler:
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)
		resp = rec.Result()
	default:
		t.Fatalf("cannot serve requests on %T", server)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read body: %v", err)
	}
	return resp.StatusCode, resp.Header.Get("Content-Type"), strings.TrimSpace(string(body))
}

func servers() []inspect.Server {
	return []inspect.Server{NewDefaultEchoAdapter(), NewDefaultGinAdapter(), NewDefaultFiberAdapter()}
}

func TestServeReadyModel(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := meta.New(ticketTable(), meta.WithRegisterer(reg))
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := m.Bootstrap(ctx); err != nil {
		t.Fatal(err)
	}
	s, _ := m.Specification(ctx, "helpdesk.Ticket")
	closeAction, _ := s.Action("Close")
	if _, err := m.InvokeAction(ctx, closeAction, interaction.Request{Target: &ticket{}}); err != nil {
		t.Fatal(err)
	}

	for _, server := range servers() {
		t.Run(server.Name(), func(t *testing.T) {
			inspect.NewService(m, inspect.WithGatherer(reg)).Register(server)

			code, _, body := do(t, server, http.MethodGet, "/health")
			if code != http.StatusOK || body != `{"ready":true}` {
				t.Errorf("health: got %d %s", code, body)
			}

			code, _, body = do(t, server, http.MethodGet, "/specs")
			if code != http.StatusOK || body != `["helpdesk.Ticket"]` {
				t.Errorf("specs: got %d %s", code, body)
			}

			code, contentType, body := do(t, server, http.MethodGet, "/specs/helpdesk.Ticket?format=yaml")
			if code != http.StatusOK {
				t.Fatalf("spec: got %d %s", code, body)
			}
			if !strings.HasPrefix(contentType, "application/yaml") {
				t.Errorf("Expected yaml content type, got %q", contentType)
			}
			if !strings.Contains(body, "name: helpdesk.Ticket") || !strings.Contains(body, "name: Close") {
				t.Errorf("Unexpected spec document:\n%s", body)
			}

			code, _, body = do(t, server, http.MethodGet, "/specs/helpdesk.Missing")
			if code != http.StatusNotFound || !strings.Contains(body, `"status_code":404`) {
				t.Errorf("missing spec: got %d %s", code, body)
			}

			code, _, body = do(t, server, http.MethodGet, "/specs?format=xml")
			if code != http.StatusBadRequest {
				t.Errorf("bad format: got %d %s", code, body)
			}

			code, _, body = do(t, server, http.MethodGet, "/metrics")
			if code != http.StatusOK || !strings.Contains(body, "metamodel_interaction_phases_total") {
				t.Errorf("metrics: got %d %s", code, body)
			}
		})
	}
}

func TestServeInvalidModel(t *testing.T) {
	orphan := descriptor.NewBuilder("helpdesk.Queue").
		Method("DisableEscalate", descriptor.Returns("string")).
		Build()
	m, err := meta.New(ticketTable(orphan))
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Bootstrap(context.Background()); err == nil {
		t.Fatal("Expected bootstrap to fail")
	}

	for _, server := range servers() {
		t.Run(server.Name(), func(t *testing.T) {
			inspect.NewService(m).Register(server)

			code, _, body := do(t, server, http.MethodGet, "/health")
			if code != http.StatusServiceUnavailable || !strings.Contains(body, `"ready":false`) {
				t.Errorf("health: got %d %s", code, body)
			}

			code, _, body = do(t, server, http.MethodGet, "/specs")
			if code != http.StatusServiceUnavailable || !strings.Contains(body, "DisableEscalate") {
				t.Errorf("specs: got %d %s", code, body)
			}

			code, _, body = do(t, server, http.MethodGet, "/failures?format=json")
			if code != http.StatusOK || !strings.Contains(body, "helpdesk.Queue#DisableEscalate") {
				t.Errorf("failures: got %d %s", code, body)
			}

			code, _, _ = do(t, server, http.MethodGet, "/metrics")
			if code != http.StatusNotFound {
				t.Errorf("metrics should not be served without a gatherer, got %d", code)
			}
		})
	}
}

func TestNew(t *testing.T) {
	for _, name := range Names {
		server, err := New(name)
		if err != nil {
			t.Fatalf("New(%q): %v", name, err)
		}
		if !strings.EqualFold(server.Name(), name) {
			t.Errorf("Expected %s adapter, got %s", name, server.Name())
		}
	}
	if _, err := New("martini"); err == nil {
		t.Error("Expected an error for an unknown framework")
	}
}

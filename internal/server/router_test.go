package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/ytz/internal/shared"
)

// pingHandler is a minimal Handler for routing tests.
type pingHandler struct {
	fn http.HandlerFunc
}

func (h *pingHandler) Routes() []string { return []string{"/ping"} }

func (h *pingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) { h.fn(w, r) }

func TestBasicRouter(t *testing.T) {
	t.Run("middleware order", func(t *testing.T) {
		router := NewBasicRouter()

		var order []string
		named := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		router.Use(named("first"), named("second"))
		router.Handler(&pingHandler{fn: func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "handler")
		}})

		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		router.ServeHTTP(httptest.NewRecorder(), req)

		if len(order) != 3 || order[0] != "first" || order[1] != "second" || order[2] != "handler" {
			t.Errorf("unexpected call order %v", order)
		}
	})

	t.Run("handler routes registered", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handler(&HealthHandler{})

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}
	})
}

func TestRequestIDMiddleware(t *testing.T) {
	handler := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected a request id header")
	}
}

func TestLoggingMiddleware(t *testing.T) {
	logger := shared.NewLogger(io.Discard)
	handler := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusTeapot {
		t.Errorf("expected status to pass through, got %d", rec.Code)
	}
}

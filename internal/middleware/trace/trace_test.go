package trace

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"fintrack/internal/log"
)

func newTraced(buf *bytes.Buffer) http.Handler {
	logger := log.New(log.Config{Level: log.ParseLevel("debug"), JSON: true, Output: buf})
	r := chi.NewRouter()
	r.Use(NewMiddleware(logger, func(*http.Request) string { return "10.0.0.1" }).Middleware)
	r.Get("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Seen-ID", GetRequestID(r.Context()))
		w.WriteHeader(http.StatusTeapot)
	})
	return r
}

func TestMiddlewareGeneratesRequestID(t *testing.T) {
	var buf bytes.Buffer
	rec := httptest.NewRecorder()
	newTraced(&buf).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/7", nil))

	id := rec.Header().Get(RequestIDHeader)
	if !strings.HasPrefix(id, "req_") {
		t.Fatalf("unexpected request id %q", id)
	}
	if rec.Header().Get("X-Seen-ID") != id {
		t.Fatal("handler did not see the request id in its context")
	}
	out := buf.String()
	for _, want := range []string{`"status_code":418`, `"client_ip":"10.0.0.1"`, `"level":"WARN"`, id} {
		if !strings.Contains(out, want) {
			t.Errorf("access log missing %s: %s", want, out)
		}
	}
}

func TestMiddlewareHonoursIncomingRequestID(t *testing.T) {
	var buf bytes.Buffer
	req := httptest.NewRequest(http.MethodGet, "/items/7", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	newTraced(&buf).ServeHTTP(rec, req)

	if got := rec.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Fatalf("request id = %q", got)
	}
}

func TestMiddlewareReplacesOversizedRequestID(t *testing.T) {
	var buf bytes.Buffer
	req := httptest.NewRequest(http.MethodGet, "/items/7", nil)
	req.Header.Set(RequestIDHeader, strings.Repeat("x", maxRequestIDLen+1))
	rec := httptest.NewRecorder()
	newTraced(&buf).ServeHTTP(rec, req)

	if got := rec.Header().Get(RequestIDHeader); !strings.HasPrefix(got, "req_") {
		t.Fatalf("oversized id should be replaced, got %q", got)
	}
}

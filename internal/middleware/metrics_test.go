package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
)

type observation struct {
	method string
	route  string
	status int
}

type recordingObserver struct {
	observed []observation
}

func (o *recordingObserver) ObserveHTTPRequest(method, route string, status int, _ time.Duration) {
	o.observed = append(o.observed, observation{method: method, route: route, status: status})
}

func TestMetricsMiddleware_RecordsRoutePattern(t *testing.T) {
	obs := &recordingObserver{}

	r := chi.NewRouter()
	r.Use(NewMetricsMiddleware(obs))
	r.Get("/api/notes/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotImplemented)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/notes/abc", nil))

	if len(obs.observed) != 1 {
		t.Fatalf("observations = %d, want 1", len(obs.observed))
	}
	got := obs.observed[0]
	if got.method != http.MethodGet || got.route != "/api/notes/{id}" || got.status != http.StatusNotImplemented {
		t.Errorf("observation = %+v", got)
	}
}

func TestMetricsMiddleware_UnmatchedRoute(t *testing.T) {
	obs := &recordingObserver{}
	handler := NewMetricsMiddleware(obs)(okHandler())

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	if len(obs.observed) != 1 || obs.observed[0].route != "unmatched" {
		t.Errorf("observations = %+v", obs.observed)
	}
}

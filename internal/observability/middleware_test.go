package observability

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddlewareLabelsByRoutePattern(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))

	r := chi.NewRouter()
	r.Use(Middleware(log))
	r.Post("/app/booking/vehicles/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
	})

	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/app/booking/vehicles/{id}", "409"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/app/booking/vehicles/mini", nil))

	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/app/booking/vehicles/{id}", "409"))
	if after != before+1 {
		t.Fatalf("counter %v -> %v", before, after)
	}

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log = %q", buf.String())
	}
	if line["route"] != "/app/booking/vehicles/{id}" || line["status"] != float64(409) {
		t.Fatalf("log line = %v", line)
	}
}

package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func serve(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestLivenessHandler(t *testing.T) {
	rec := serve(t, LivenessHandler(), "/healthz")
	if rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Errorf("got %d %q, want 200 OK", rec.Code, rec.Body.String())
	}
}

func TestReadinessHandler(t *testing.T) {
	tests := []struct {
		name     string
		result   Result
		wantCode int
		wantBody string
	}{
		{"healthy", Healthy(""), http.StatusOK, "OK"},
		{"degraded", Degraded(""), http.StatusOK, "DEGRADED"},
		{"unhealthy", Unhealthy("", nil), http.StatusServiceUnavailable, "UNHEALTHY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := NewAggregator()
			agg.Register("c", fixed("c", tt.result))

			rec := serve(t, ReadinessHandler(agg), "/readyz")
			if rec.Code != tt.wantCode || rec.Body.String() != tt.wantBody {
				t.Errorf("got %d %q, want %d %q", rec.Code, rec.Body.String(), tt.wantCode, tt.wantBody)
			}
		})
	}
}

func TestDetailedHandler(t *testing.T) {
	agg := NewAggregator()
	agg.Register("registry", fixed("registry", Unhealthy("global fallback handler not installed", ErrHandlerMissing)))

	rec := serve(t, DetailedHandler(agg), "/health")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Code = %d, want 503", rec.Code)
	}

	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "unhealthy" {
		t.Errorf("Status = %q, want unhealthy", resp.Status)
	}
	check := resp.Checks["registry"]
	if check.Error != ErrHandlerMissing.Error() || check.Message == "" {
		t.Errorf("check = %+v", check)
	}
}

func TestSingleCheckHandler(t *testing.T) {
	agg := NewAggregator()
	agg.Register("redis", fixed("redis", Healthy("reachable")))

	if rec := serve(t, SingleCheckHandler(agg, "redis"), "/health/redis"); rec.Code != http.StatusOK {
		t.Errorf("Code = %d, want 200", rec.Code)
	}
	if rec := serve(t, SingleCheckHandler(agg, "missing"), "/health/missing"); rec.Code != http.StatusNotFound {
		t.Errorf("Code = %d, want 404", rec.Code)
	}
}

func TestRegisterHandlers(t *testing.T) {
	mux := http.NewServeMux()
	RegisterHandlers(mux, NewAggregator())

	for _, path := range []string{"/healthz", "/readyz", "/health"} {
		if rec := serve(t, mux, path); rec.Code != http.StatusOK {
			t.Errorf("%s: Code = %d, want 200", path, rec.Code)
		}
	}
}

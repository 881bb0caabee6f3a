package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCanonicalPath(t *testing.T) {
	cases := []struct{ in, want string }{
		{"/", "/"},
		{"", "/"},
		{"/healthz", "/healthz"},
		{"/api/auth/register", "/api/auth/register"},
		{"/api/auth/login", "/api/auth/login"},
		{"/api/customers", "/api/customers"},
		{"/api/customers/dashboard", "/api/customers/dashboard"},
		{"/api/customers/7b6a1d3e-0000-0000-0000-000000000000", "/api/customers/:id"},
		{"/api/sales", "/api/sales"},
		{"/api/sales/statistics/daily", "/api/sales/statistics/daily"},
		{"/api/sales/statistics/top-volume-customer", "/api/sales/statistics/top-volume-customer"},
	}
	for _, tc := range cases {
		if got := canonicalPath(tc.in); got != tc.want {
			t.Fatalf("canonicalPath(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestInstrumentHandlerPreservesStatus(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	InstrumentHandler(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sales", nil))
	if rec.Code != http.StatusTeapot {
		t.Fatalf("status = %d, want 418", rec.Code)
	}
}

func TestMetricsEndpointServes(t *testing.T) {
	RecordSale()
	RecordStatisticsQuery("daily")
	RecordAuthFailure("INVALID_TOKEN")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", rec.Code)
	}
	if rec.Body.Len() == 0 {
		t.Fatal("expected metrics exposition output")
	}
}

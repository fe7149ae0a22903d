package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// カウンターが記録されることを検証
func TestCollector_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordCatalogRead()
	c.RecordCatalogRead()
	c.RecordSeedFallback()
	c.RecordInterest()
	c.RecordListingRegistered()

	if got := testutil.ToFloat64(c.catalogReads); got != 2 {
		t.Errorf("catalogReads = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.seedFallbacks); got != 1 {
		t.Errorf("seedFallbacks = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.interestsRecorded); got != 1 {
		t.Errorf("interestsRecorded = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.listingsCreated); got != 1 {
		t.Errorf("listingsCreated = %v, want 1", got)
	}
}

// ロゴ保存の結果がラベル別に記録されることを検証
func TestCollector_LogoUploads(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordLogoUpload(true)
	c.RecordLogoUpload(true)
	c.RecordLogoUpload(false)

	if got := testutil.ToFloat64(c.logoUploads.WithLabelValues("success")); got != 2 {
		t.Errorf("success uploads = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.logoUploads.WithLabelValues("failure")); got != 1 {
		t.Errorf("failure uploads = %v, want 1", got)
	}
}

// HTTPステータスがコード別に記録されることを検証
func TestCollector_HTTPStatus(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHTTPRequest("GET", "/api/listings", 200)
	c.RecordHTTPRequest("POST", "/api/listings", 403)
	c.RecordHTTPRequest("GET", "/api/interests", 200)

	if got := testutil.ToFloat64(c.httpStatus.WithLabelValues("200")); got != 2 {
		t.Errorf("status 200 = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.httpStatus.WithLabelValues("403")); got != 1 {
		t.Errorf("status 403 = %v, want 1", got)
	}
}

// /metricsエンドポイントがメトリクスを公開することを検証
func TestSetupMetricsRoute(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordSeedFallback()

	handler := SetupMetricsRoute(reg)
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "bizmarket_seed_fallbacks_total 1") {
		t.Error("seed fallback metric not exposed")
	}
}

package analytics

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tripmate-app/tripmate-backend/api/middleware"
	"github.com/tripmate-app/tripmate-backend/internal/analytics/types"
	"github.com/tripmate-app/tripmate-backend/pkg/logger"
)

func TestTripSpendRequiresTripContext(t *testing.T) {
	stub := &testAnalyticsService{}
	handler := TripSpend(stub, logger.New(logger.Options{ServiceName: "test"}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/trips/t1/analytics/spend", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 when trip context missing, got %d", resp.Code)
	}
	if stub.called() {
		t.Fatal("service should not be invoked when context missing")
	}
}

func TestTripSpendUsesPreset(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	timeNowUTC = func() time.Time { return now }
	defer func() { timeNowUTC = func() time.Time { return time.Now().UTC() } }()

	stub := &testAnalyticsService{
		response: &types.TripSpendQueryResponse{
			ExpensesSeries: []types.TimeSeriesPoint{
				{Date: "2026-03-09", Value: 3},
			},
			SpendSeries: []types.TimeSeriesPoint{
				{Date: "2026-03-09", Value: 125000},
			},
		},
	}

	handler := TripSpend(stub, logger.New(logger.Options{ServiceName: "test"}))
	req := httptest.NewRequest(http.MethodGet, "/api/v1/trips/t1/analytics/spend?preset=7d", nil)
	ctx := middleware.WithTripMember(req.Context(), "trip-1", "member-1")
	req = req.WithContext(ctx)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if stub.period() != 7*24*time.Hour {
		t.Fatalf("expected 7d range, got %v", stub.period())
	}
	if stub.last.TripID != "trip-1" {
		t.Fatalf("expected trip-1, got %s", stub.last.TripID)
	}

	var envelope struct {
		Data types.TripSpendQueryResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data.ExpensesSeries) == 0 || envelope.Data.ExpensesSeries[0].Value != 3 {
		t.Fatalf("unexpected expenses blob: %+v", envelope.Data.ExpensesSeries)
	}
	if len(envelope.Data.SpendSeries) == 0 || envelope.Data.SpendSeries[0].Value != 125000 {
		t.Fatalf("unexpected spend blob: %+v", envelope.Data.SpendSeries)
	}
}

func TestTripSpendExplicitRange(t *testing.T) {
	stub := &testAnalyticsService{}
	handler := TripSpend(stub, logger.New(logger.Options{ServiceName: "test"}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/trips/t1/analytics/spend?from=2026-03-01T00:00:00Z&to=2026-03-08T00:00:00Z", nil)
	req = req.WithContext(middleware.WithTripMember(req.Context(), "trip-1", "member-1"))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if stub.period() != 7*24*time.Hour {
		t.Fatalf("expected explicit 7d range, got %v", stub.period())
	}
}

func TestTripSpendRejectsBadPreset(t *testing.T) {
	stub := &testAnalyticsService{}
	handler := TripSpend(stub, logger.New(logger.Options{ServiceName: "test"}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/trips/t1/analytics/spend?preset=1y", nil)
	req = req.WithContext(middleware.WithTripMember(req.Context(), "trip-1", "member-1"))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown preset, got %d", resp.Code)
	}
	if stub.called() {
		t.Fatal("service should not be invoked for invalid preset")
	}
}

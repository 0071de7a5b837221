package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/tripmate-app/tripmate-backend/api/middleware"
	"github.com/tripmate-app/tripmate-backend/internal/trips"
	"github.com/tripmate-app/tripmate-backend/pkg/db/models"
	"github.com/tripmate-app/tripmate-backend/pkg/enums"
)

type fakeTripsService struct {
	createInput trips.CreateTripInput
	updateInput trips.UpdateTripInput
	deleted     bool
	err         error
}

func (f *fakeTripsService) Create(ctx context.Context, input trips.CreateTripInput) (*trips.TripView, error) {
	f.createInput = input
	if f.err != nil {
		return nil, f.err
	}
	return &trips.TripView{ID: uuid.New(), Name: input.Name, Currency: input.Currency}, nil
}

func (f *fakeTripsService) Get(ctx context.Context, tripID uuid.UUID) (*trips.TripView, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &trips.TripView{ID: tripID}, nil
}

func (f *fakeTripsService) GetModel(ctx context.Context, tripID uuid.UUID) (*models.Trip, error) {
	return &models.Trip{ID: tripID}, nil
}

func (f *fakeTripsService) ListForUser(ctx context.Context, tripIDs []uuid.UUID) ([]trips.TripView, error) {
	views := make([]trips.TripView, 0, len(tripIDs))
	for _, id := range tripIDs {
		views = append(views, trips.TripView{ID: id})
	}
	return views, nil
}

func (f *fakeTripsService) Update(ctx context.Context, input trips.UpdateTripInput) (*trips.TripView, error) {
	f.updateInput = input
	if f.err != nil {
		return nil, f.err
	}
	return &trips.TripView{ID: input.TripID}, nil
}

func (f *fakeTripsService) Delete(ctx context.Context, tripID, actorUserID uuid.UUID) error {
	f.deleted = true
	return f.err
}

type fakeUserSource struct {
	user *models.User
}

func (f *fakeUserSource) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if f.user != nil {
		return f.user, nil
	}
	return &models.User{ID: id, DisplayName: "Traveler"}, nil
}

func authedRequest(method, target string, body string, userID uuid.UUID) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	return req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
}

func tripScoped(req *http.Request, tripID uuid.UUID) *http.Request {
	return req.WithContext(middleware.WithTripMember(req.Context(), tripID.String(), uuid.NewString()))
}

func TestTripCreateSuccess(t *testing.T) {
	svc := &fakeTripsService{}
	userID := uuid.New()
	users := &fakeUserSource{user: &models.User{ID: userID, DisplayName: "Linh"}}
	handler := TripCreate(svc, users, nil)

	body := `{"name":"Da Nang","destination":"Vietnam","currency":"vnd","start_date":"2026-04-01","tags":["beach"]}`
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/trips", body, userID))

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.createInput.Currency != enums.CurrencyVND {
		t.Fatalf("expected VND got %s", svc.createInput.Currency)
	}
	if svc.createInput.OwnerDisplayName != "Linh" {
		t.Fatalf("expected owner display name from user row, got %q", svc.createInput.OwnerDisplayName)
	}
	if svc.createInput.StartDate == nil || svc.createInput.StartDate.Format("2006-01-02") != "2026-04-01" {
		t.Fatalf("unexpected start date %v", svc.createInput.StartDate)
	}
}

func TestTripCreateRejectsUnknownCurrency(t *testing.T) {
	svc := &fakeTripsService{}
	handler := TripCreate(svc, &fakeUserSource{}, nil)

	body := `{"name":"Da Nang","destination":"Vietnam","currency":"XYZ"}`
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/trips", body, uuid.New()))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if svc.createInput.Name != "" {
		t.Fatal("service should not be called for invalid currency")
	}
}

func TestTripCreateRejectsBadDate(t *testing.T) {
	handler := TripCreate(&fakeTripsService{}, &fakeUserSource{}, nil)

	body := `{"name":"Da Nang","destination":"Vietnam","currency":"USD","start_date":"04/01/2026"}`
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/trips", body, uuid.New()))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestTripListUsesDenormalizedIDs(t *testing.T) {
	svc := &fakeTripsService{}
	userID := uuid.New()
	tripA, tripB := uuid.New(), uuid.New()
	users := &fakeUserSource{user: &models.User{ID: userID, TripIDs: []uuid.UUID{tripA, tripB}}}
	handler := TripList(svc, users, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodGet, "/api/v1/trips", "", userID))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data struct {
			Trips []trips.TripView `json:"trips"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(envelope.Data.Trips) != 2 {
		t.Fatalf("expected 2 trips got %d", len(envelope.Data.Trips))
	}
}

func TestTripUpdateRejectsUnknownStatus(t *testing.T) {
	handler := TripUpdate(&fakeTripsService{}, nil)

	req := tripScoped(authedRequest(http.MethodPut, "/api/v1/trips/t1", `{"status":"paused"}`, uuid.New()), uuid.New())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestTripDeleteRequiresTripContext(t *testing.T) {
	svc := &fakeTripsService{}
	handler := TripDelete(svc, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodDelete, "/api/v1/trips/t1", "", uuid.New()))

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
	if svc.deleted {
		t.Fatal("service should not be called without trip context")
	}
}

package matching

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rentwise/rentwise-backend/internal/auth"
)

type stubService struct {
	err        error
	gotUserID  int64
	gotOpts    *MatchOptions
	gotSearch  *PropertySearch
	gotPage    int
	gotLimit   int
	gotID      uuid.UUID
	refreshed  bool
	matchesOut *MatchingResponse
}

func (s *stubService) GetMatchesForUser(ctx context.Context, userID int64, opts *MatchOptions) (*MatchingResponse, error) {
	s.gotUserID, s.gotOpts = userID, opts
	if s.err != nil {
		return nil, s.err
	}
	if s.matchesOut != nil {
		return s.matchesOut, nil
	}
	return &MatchingResponse{Results: []PropertyMatchResult{}}, nil
}

func (s *stubService) GetTopMatches(ctx context.Context, userID int64, limit int) ([]*TopMatch, error) {
	s.gotUserID, s.gotLimit = userID, limit
	return []*TopMatch{}, s.err
}

func (s *stubService) GetDetailedMatches(ctx context.Context, userID int64, opts *MatchOptions) ([]*DetailedMatch, error) {
	s.gotUserID, s.gotOpts = userID, opts
	return []*DetailedMatch{}, s.err
}

func (s *stubService) GetMatchedPropertiesWithPagination(ctx context.Context, userID int64, search *PropertySearch, page, limit int) (*PaginatedMatches, error) {
	s.gotUserID, s.gotSearch, s.gotPage, s.gotLimit = userID, search, page, limit
	if s.err != nil {
		return nil, s.err
	}
	return &PaginatedMatches{Page: page, Limit: limit}, nil
}

func (s *stubService) GetPropertyMatch(ctx context.Context, propertyID uuid.UUID, userID int64) (*PropertyMatchResult, error) {
	s.gotUserID, s.gotID = userID, propertyID
	if s.err != nil {
		return nil, s.err
	}
	return &PropertyMatchResult{MatchPercentage: 80}, nil
}

func (s *stubService) RefreshMatches(ctx context.Context, userID int64) {
	s.gotUserID, s.refreshed = userID, true
}

func (s *stubService) Weights() CategoryWeights {
	return DefaultWeights()
}

func authed(r *http.Request) *http.Request {
	return r.WithContext(auth.WithUser(r.Context(), tenantID))
}

func TestGetMatchesHandler(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		serviceErr error
		wantStatus int
	}{
		{"ok", "?min_score=40&min_visible_score=60&limit=5&include_partial=false", nil, http.StatusOK},
		{"bad min score", "?min_score=abc", nil, http.StatusBadRequest},
		{"bad include partial", "?include_partial=maybe", nil, http.StatusBadRequest},
		{"no preferences", "", fmt.Errorf("load preferences: %w", ErrPreferencesNotFound), http.StatusNotFound},
		{"invalid options", "", fmt.Errorf("%w: MinScore must be at most 100", ErrInvalidOptions), http.StatusBadRequest},
		{"internal", "", errors.New("db down"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{err: tt.serviceErr}
			h := NewHandler(svc)

			req := authed(httptest.NewRequest(http.MethodGet, "/api/v1/matching/matches"+tt.query, nil))
			rec := httptest.NewRecorder()
			h.GetMatches(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status=%d want=%d body=%s", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestGetMatchesHandlerParsesOptions(t *testing.T) {
	svc := &stubService{}
	h := NewHandler(svc)

	req := authed(httptest.NewRequest(http.MethodGet, "/?min_score=40&min_visible_score=60&limit=5&include_partial=false", nil))
	h.GetMatches(httptest.NewRecorder(), req)

	o := svc.gotOpts
	if svc.gotUserID != tenantID || o == nil {
		t.Fatalf("service not called with user %d", tenantID)
	}
	if o.MinScore != 40 || o.Limit != 5 || o.MinVisibleScore == nil || *o.MinVisibleScore != 60 {
		t.Fatalf("opts=%+v", o)
	}
	if o.IncludePartialMatches == nil || *o.IncludePartialMatches {
		t.Fatalf("include_partial not parsed: %v", o.IncludePartialMatches)
	}
}

func TestGetMatchesHandlerUnauthenticated(t *testing.T) {
	h := NewHandler(&stubService{})
	rec := httptest.NewRecorder()
	h.GetMatches(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status=%d want=401", rec.Code)
	}
}

func TestSearchMatchesHandler(t *testing.T) {
	svc := &stubService{matchesOut: &MatchingResponse{Total: 3, PreferencesSummary: "Up to £2000"}}
	h := NewHandler(svc)

	body := `{"weights":{"budget":40,"pets":0},"min_score":10,"limit":3}`
	req := authed(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))
	rec := httptest.NewRecorder()
	h.SearchMatches(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	if svc.gotOpts.Weights[CategoryBudget] != 40 || svc.gotOpts.Limit != 3 {
		t.Fatalf("opts=%+v", svc.gotOpts)
	}

	var resp struct {
		Success bool             `json:"success"`
		Data    MatchingResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success || resp.Data.Total != 3 || resp.Data.PreferencesSummary != "Up to £2000" {
		t.Fatalf("resp=%+v", resp)
	}

	rec = httptest.NewRecorder()
	h.SearchMatches(rec, authed(httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{"))))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed body status=%d want=400", rec.Code)
	}
}

func TestGetPropertyMatchHandler(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name       string
		id         string
		serviceErr error
		wantStatus int
	}{
		{"ok", id.String(), nil, http.StatusOK},
		{"bad id", "not-a-uuid", nil, http.StatusBadRequest},
		{"missing property", id.String(), fmt.Errorf("load property: %w", ErrPropertyNotFound), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{err: tt.serviceErr}
			h := NewHandler(svc)

			req := authed(httptest.NewRequest(http.MethodGet, "/", nil))
			req = mux.SetURLVars(req, map[string]string{"id": tt.id})
			rec := httptest.NewRecorder()
			h.GetPropertyMatch(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status=%d want=%d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK && svc.gotID != id {
				t.Fatalf("id=%s want=%s", svc.gotID, id)
			}
		})
	}
}

func TestSearchPropertiesHandler(t *testing.T) {
	svc := &stubService{}
	h := NewHandler(svc)

	req := authed(httptest.NewRequest(http.MethodGet, "/?city=London&min_price=1000&max_price=2500&bedrooms=2&property_type=flat&page=2&limit=15", nil))
	rec := httptest.NewRecorder()
	h.SearchProperties(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	s := svc.gotSearch
	if s.City != "London" || *s.MinPrice != 1000 || *s.MaxPrice != 2500 || *s.MinBedrooms != 2 || s.PropertyType != "flat" {
		t.Fatalf("search=%+v", s)
	}
	if svc.gotPage != 2 || svc.gotLimit != 15 {
		t.Fatalf("page=%d limit=%d", svc.gotPage, svc.gotLimit)
	}

	rec = httptest.NewRecorder()
	h.SearchProperties(rec, authed(httptest.NewRequest(http.MethodGet, "/?max_price=cheap", nil)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad max_price status=%d want=400", rec.Code)
	}
}

func TestGetTopMatchesHandler(t *testing.T) {
	svc := &stubService{}
	h := NewHandler(svc)

	rec := httptest.NewRecorder()
	h.GetTopMatches(rec, authed(httptest.NewRequest(http.MethodGet, "/", nil)))
	if rec.Code != http.StatusOK || svc.gotLimit != 5 {
		t.Fatalf("status=%d limit=%d", rec.Code, svc.gotLimit)
	}

	rec = httptest.NewRecorder()
	h.GetTopMatches(rec, authed(httptest.NewRequest(http.MethodGet, "/?limit=0", nil)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("limit=0 status=%d want=400", rec.Code)
	}
}

func TestRoutesRequireAuth(t *testing.T) {
	router := mux.NewRouter()
	RegisterRoutes(router, NewHandler(&stubService{}), auth.NewMiddleware("secret"))

	for _, path := range []string{"/api/v1/matching/matches", "/api/v1/matching/weights", "/api/v1/matching/search"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s status=%d want=401", path, rec.Code)
		}
	}
}

func TestRefreshAndWeightsHandlers(t *testing.T) {
	svc := &stubService{}
	h := NewHandler(svc)

	rec := httptest.NewRecorder()
	h.RefreshMatches(rec, authed(httptest.NewRequest(http.MethodDelete, "/", nil)))
	if rec.Code != http.StatusOK || !svc.refreshed {
		t.Fatalf("status=%d refreshed=%v", rec.Code, svc.refreshed)
	}

	rec = httptest.NewRecorder()
	h.GetWeights(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	var resp struct {
		Data map[string]float64 `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data["budget"] != 20 || len(resp.Data) != CategoryCount {
		t.Fatalf("weights=%v", resp.Data)
	}
}

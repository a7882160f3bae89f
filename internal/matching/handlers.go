// internal/matching/handlers.go

package matching

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rentwise/rentwise-backend/internal/auth"
	"github.com/rentwise/rentwise-backend/internal/common/utils"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) GetMatches(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	opts, err := parseMatchOptions(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.service.GetMatchesForUser(r.Context(), userID, opts)
	if err != nil {
		respondWithServiceError(w, err, "Failed to get matches")
		return
	}

	utils.RespondWithData(w, http.StatusOK, resp)
}

// SearchMatches accepts MatchOptions as a JSON body, including custom weights
func (h *Handler) SearchMatches(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var opts MatchOptions
	if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	resp, err := h.service.GetMatchesForUser(r.Context(), userID, &opts)
	if err != nil {
		respondWithServiceError(w, err, "Failed to get matches")
		return
	}

	utils.RespondWithData(w, http.StatusOK, resp)
}

func (h *Handler) GetTopMatches(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	limit := 5
	if l := r.URL.Query().Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 1 {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	top, err := h.service.GetTopMatches(r.Context(), userID, limit)
	if err != nil {
		respondWithServiceError(w, err, "Failed to get top matches")
		return
	}

	utils.RespondWithData(w, http.StatusOK, top)
}

func (h *Handler) GetDetailedMatches(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	opts, err := parseMatchOptions(r)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	detailed, err := h.service.GetDetailedMatches(r.Context(), userID, opts)
	if err != nil {
		respondWithServiceError(w, err, "Failed to get detailed matches")
		return
	}

	utils.RespondWithData(w, http.StatusOK, detailed)
}

func (h *Handler) GetPropertyMatch(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	propertyID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid property ID")
		return
	}

	result, err := h.service.GetPropertyMatch(r.Context(), propertyID, userID)
	if err != nil {
		respondWithServiceError(w, err, "Failed to get property match")
		return
	}

	utils.RespondWithData(w, http.StatusOK, result)
}

func (h *Handler) SearchProperties(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	q := r.URL.Query()
	search := &PropertySearch{
		City:         q.Get("city"),
		PropertyType: q.Get("property_type"),
	}

	var err error
	if search.MinPrice, err = parseOptionalFloat(q.Get("min_price")); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid min_price")
		return
	}
	if search.MaxPrice, err = parseOptionalFloat(q.Get("max_price")); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid max_price")
		return
	}
	if search.MinBedrooms, err = parseOptionalInt(q.Get("bedrooms")); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid bedrooms")
		return
	}

	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	paged, err := h.service.GetMatchedPropertiesWithPagination(r.Context(), userID, search, page, limit)
	if err != nil {
		respondWithServiceError(w, err, "Failed to search properties")
		return
	}

	utils.RespondWithData(w, http.StatusOK, paged)
}

func (h *Handler) RefreshMatches(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	h.service.RefreshMatches(r.Context(), userID)
	utils.RespondWithJSON(w, http.StatusOK, utils.Response{Success: true, Message: "Matches will be recalculated"})
}

func (h *Handler) GetWeights(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithData(w, http.StatusOK, h.service.Weights())
}

// parseMatchOptions reads MatchOptions from the query string
func parseMatchOptions(r *http.Request) (*MatchOptions, error) {
	q := r.URL.Query()
	opts := &MatchOptions{}

	if v := q.Get("min_score"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, errors.New("invalid min_score")
		}
		opts.MinScore = n
	}

	minVisible, err := parseOptionalInt(q.Get("min_visible_score"))
	if err != nil {
		return nil, errors.New("invalid min_visible_score")
	}
	opts.MinVisibleScore = minVisible

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, errors.New("invalid limit")
		}
		opts.Limit = n
	}

	if v := q.Get("include_partial"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, errors.New("invalid include_partial")
		}
		opts.IncludePartialMatches = &b
	}

	return opts, nil
}

func parseOptionalInt(v string) (*int, error) {
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func parseOptionalFloat(v string) (*float64, error) {
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func respondWithServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrPreferencesNotFound), errors.Is(err, ErrPropertyNotFound):
		utils.RespondWithError(w, http.StatusNotFound, unwrapSentinel(err).Error())
	case errors.Is(err, ErrInvalidOptions):
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
	default:
		utils.RespondWithError(w, http.StatusInternalServerError, fallback)
	}
}

func unwrapSentinel(err error) error {
	for _, s := range []error{ErrPreferencesNotFound, ErrPropertyNotFound} {
		if errors.Is(err, s) {
			return s
		}
	}
	return err
}

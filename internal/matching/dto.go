// internal/matching/dto.go

package matching

import (
	"time"

	"github.com/google/uuid"
)

// MatchOptions tunes a GetMatchesForUser call. Zero values mean defaults.
type MatchOptions struct {
	Weights               map[Category]float64 `json:"weights,omitempty" validate:"omitempty,dive,keys,oneof=budget location bedrooms property_type availability amenities bathrooms building_style lifestyle duration size furnishing smoking pets bills,endkeys,gte=0,lte=1000"`
	MinScore              int                  `json:"min_score" validate:"gte=0,lte=100"`
	MinVisibleScore       *int                 `json:"min_visible_score,omitempty" validate:"omitempty,gte=0,lte=100"`
	Limit                 int                  `json:"limit" validate:"omitempty,min=1,max=100"`
	IncludePartialMatches *bool                `json:"include_partial_matches,omitempty"`
}

// MatchingResponse is the ranked result set for one tenant.
type MatchingResponse struct {
	Results            []PropertyMatchResult `json:"results"`
	Total              int                   `json:"total"`
	PreferencesSummary string                `json:"preferences_summary"`
	AppliedWeights     CategoryWeights       `json:"applied_weights"`
}

// TopMatch is the compact card shown in match carousels.
type TopMatch struct {
	PropertyID      uuid.UUID `json:"property_id"`
	Title           string    `json:"title"`
	Address         string    `json:"address"`
	Price           float64   `json:"price"`
	CoverPhoto      string    `json:"cover_photo,omitempty"`
	MatchPercentage int       `json:"match_percentage"`
	IsPerfectMatch  bool      `json:"is_perfect_match"`
}

// CategoryBreakdown is one scored category of a DetailedMatch.
type CategoryBreakdown struct {
	Category   Category `json:"category"`
	Score      float64  `json:"score"`
	MaxScore   float64  `json:"max_score"`
	Percentage int      `json:"percentage"`
	Match      bool     `json:"match"`
	Reason     string   `json:"reason"`
	Details    string   `json:"details,omitempty"`
}

// DetailedMatch explains a match category by category.
type DetailedMatch struct {
	Property        *Property           `json:"property"`
	MatchPercentage int                 `json:"match_percentage"`
	IsPerfectMatch  bool                `json:"is_perfect_match"`
	Summary         MatchSummary        `json:"summary"`
	Breakdown       []CategoryBreakdown `json:"breakdown"`
	Highlights      []string            `json:"highlights"`
	Concerns        []string            `json:"concerns"`
}

// PropertySearch narrows the candidate set before scoring.
type PropertySearch struct {
	City         string     `json:"city,omitempty"`
	MinPrice     *float64   `json:"min_price,omitempty" validate:"omitempty,gte=0"`
	MaxPrice     *float64   `json:"max_price,omitempty" validate:"omitempty,gte=0"`
	MinBedrooms  *int       `json:"bedrooms,omitempty" validate:"omitempty,gte=0"`
	PropertyType string     `json:"property_type,omitempty"`
	AvailableBy  *time.Time `json:"available_by,omitempty"`
}

// PaginatedMatches is one page of search results ranked by match.
type PaginatedMatches struct {
	Items      []PropertyMatchResult `json:"items"`
	Total      int                   `json:"total"`
	Page       int                   `json:"page"`
	Limit      int                   `json:"limit"`
	TotalPages int                   `json:"total_pages"`
}

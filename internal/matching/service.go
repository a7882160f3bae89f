// internal/matching/service.go

package matching

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rentwise/rentwise-backend/internal/common/utils"
)

var (
	ErrPreferencesNotFound = errors.New("preferences not found")
	ErrPropertyNotFound    = errors.New("property not found")
	ErrInvalidOptions      = errors.New("invalid match options")
)

const (
	DefaultMatchLimit = 20
	MaxMatchLimit     = 100
)

type Service interface {
	// Ranking
	GetMatchesForUser(ctx context.Context, userID int64, opts *MatchOptions) (*MatchingResponse, error)
	GetTopMatches(ctx context.Context, userID int64, limit int) ([]*TopMatch, error)
	GetDetailedMatches(ctx context.Context, userID int64, opts *MatchOptions) ([]*DetailedMatch, error)
	GetMatchedPropertiesWithPagination(ctx context.Context, userID int64, search *PropertySearch, page, limit int) (*PaginatedMatches, error)

	// Single property
	GetPropertyMatch(ctx context.Context, propertyID uuid.UUID, userID int64) (*PropertyMatchResult, error)

	// Cache and configuration
	RefreshMatches(ctx context.Context, userID int64)
	Weights() CategoryWeights
}

// Config holds service defaults
type Config struct {
	Weights      CategoryWeights
	DefaultLimit int
}

type service struct {
	preferences  PreferencesRepository
	properties   PropertyRepository
	media        MediaURLProvider
	cache        MatchCache
	weights      CategoryWeights
	defaultLimit int
}

// NewService wires the matching service. media and cache may be nil.
func NewService(preferences PreferencesRepository, properties PropertyRepository, media MediaURLProvider, cache MatchCache, cfg Config) Service {
	if cfg.Weights == nil {
		cfg.Weights = DefaultWeights()
	}
	if cfg.DefaultLimit <= 0 || cfg.DefaultLimit > MaxMatchLimit {
		cfg.DefaultLimit = DefaultMatchLimit
	}
	if cache == nil {
		cache = noopCache{}
	}

	return &service{
		preferences:  preferences,
		properties:   properties,
		media:        media,
		cache:        cache,
		weights:      cfg.Weights.Merge(nil),
		defaultLimit: cfg.DefaultLimit,
	}
}

func (s *service) Weights() CategoryWeights {
	return s.weights.Merge(nil)
}

func (s *service) RefreshMatches(ctx context.Context, userID int64) {
	s.cache.InvalidateUser(ctx, userID)
}

func (s *service) GetMatchesForUser(ctx context.Context, userID int64, opts *MatchOptions) (resp *MatchingResponse, err error) {
	defer observe("matches", time.Now(), &err)
	return s.rankForUser(ctx, userID, opts)
}

func (s *service) GetTopMatches(ctx context.Context, userID int64, limit int) (top []*TopMatch, err error) {
	defer observe("top", time.Now(), &err)

	if limit > MaxMatchLimit {
		limit = MaxMatchLimit
	}
	if limit < 0 {
		limit = 0
	}

	resp, err := s.rankForUser(ctx, userID, &MatchOptions{Limit: limit})
	if err != nil {
		return nil, err
	}

	top = make([]*TopMatch, 0, len(resp.Results))
	for _, r := range resp.Results {
		m := &TopMatch{
			PropertyID:      r.Property.ID,
			Title:           r.Property.Title,
			Address:         r.Property.Address,
			Price:           r.Property.Price,
			MatchPercentage: r.MatchPercentage,
			IsPerfectMatch:  r.IsPerfectMatch,
		}
		if len(r.Property.Photos) > 0 {
			m.CoverPhoto = r.Property.Photos[0]
		}
		top = append(top, m)
	}

	return top, nil
}

func (s *service) GetDetailedMatches(ctx context.Context, userID int64, opts *MatchOptions) (detailed []*DetailedMatch, err error) {
	defer observe("detailed", time.Now(), &err)

	resp, err := s.rankForUser(ctx, userID, opts)
	if err != nil {
		return nil, err
	}

	detailed = make([]*DetailedMatch, 0, len(resp.Results))
	for _, r := range resp.Results {
		detailed = append(detailed, explain(r))
	}
	return detailed, nil
}

func (s *service) GetPropertyMatch(ctx context.Context, propertyID uuid.UUID, userID int64) (result *PropertyMatchResult, err error) {
	defer observe("property", time.Now(), &err)

	prefs, err := s.loadPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}

	property, err := s.properties.GetProperty(ctx, propertyID)
	if err != nil {
		return nil, fmt.Errorf("load property: %w", err)
	}
	if property == nil {
		return nil, ErrPropertyNotFound
	}

	results := []PropertyMatchResult{CalculateMatch(property, prefs, s.weights)}
	observeScored(1, results)
	refreshMedia(ctx, s.media, results)

	return &results[0], nil
}

// GetMatchedPropertiesWithPagination ranks every search hit with the default
// weights and returns one page. Total counts search hits, not score-filtered results.
func (s *service) GetMatchedPropertiesWithPagination(ctx context.Context, userID int64, search *PropertySearch, page, limit int) (paged *PaginatedMatches, err error) {
	defer observe("search", time.Now(), &err)

	if search != nil {
		if err := utils.ValidateStruct(search); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidOptions, err)
		}
	}
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = s.defaultLimit
	}
	if limit > MaxMatchLimit {
		limit = MaxMatchLimit
	}

	prefs, err := s.loadPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}

	properties, err := s.properties.ListProperties(ctx, search)
	if err != nil {
		return nil, fmt.Errorf("load properties: %w", err)
	}

	ranked, total := RankProperties(properties, prefs, RankOptions{
		Weights:               s.weights,
		IncludePartialMatches: true,
	})
	observeScored(len(properties), ranked)

	// checked by division so huge page numbers cannot overflow the offset
	start := len(ranked)
	if page-1 <= len(ranked)/limit {
		start = min((page-1)*limit, len(ranked))
	}
	end := min(start+limit, len(ranked))

	items := ranked[start:end]
	refreshMedia(ctx, s.media, items)

	return &PaginatedMatches{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
	}, nil
}

// rankForUser is the shared ranking pipeline behind the list endpoints
func (s *service) rankForUser(ctx context.Context, userID int64, opts *MatchOptions) (*MatchingResponse, error) {
	if opts == nil {
		opts = &MatchOptions{}
	}
	if err := utils.ValidateStruct(opts); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}

	limit := opts.Limit
	if limit == 0 {
		limit = s.defaultLimit
	}
	includePartial := true
	if opts.IncludePartialMatches != nil {
		includePartial = *opts.IncludePartialMatches
	}
	weights := s.weights.Merge(opts.Weights)

	prefs, err := s.loadPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}

	key := matchCacheKey(userID, prefs, weights, opts, limit, includePartial)
	if cached, ok := s.cache.Get(ctx, key); ok {
		return cached, nil
	}

	properties, err := s.properties.ListProperties(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("load properties: %w", err)
	}

	results, total := RankProperties(properties, prefs, RankOptions{
		Weights:               weights,
		MinScore:              opts.MinScore,
		MinVisibleScore:       opts.MinVisibleScore,
		IncludePartialMatches: includePartial,
		Limit:                 limit,
	})
	observeScored(len(properties), results)
	refreshMedia(ctx, s.media, results)

	resp := &MatchingResponse{
		Results:            results,
		Total:              total,
		PreferencesSummary: BuildPreferencesSummary(prefs),
		AppliedWeights:     weights,
	}

	s.cache.Set(ctx, key, resp)
	return resp, nil
}

func (s *service) loadPreferences(ctx context.Context, userID int64) (*Preferences, error) {
	prefs, err := s.preferences.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load preferences: %w", err)
	}
	if prefs == nil {
		return nil, ErrPreferencesNotFound
	}
	return prefs, nil
}

// explain projects a result into a per-category breakdown
func explain(r PropertyMatchResult) *DetailedMatch {
	d := &DetailedMatch{
		Property:        r.Property,
		MatchPercentage: r.MatchPercentage,
		IsPerfectMatch:  r.IsPerfectMatch,
		Summary:         r.Summary,
		Breakdown:       []CategoryBreakdown{},
		Highlights:      []string{},
		Concerns:        []string{},
	}

	for _, c := range r.Categories {
		if !c.HasPreference {
			continue
		}

		b := CategoryBreakdown{
			Category: c.Category,
			Score:    c.Score,
			MaxScore: c.MaxScore,
			Match:    c.Match,
			Reason:   c.Reason,
			Details:  c.Details,
		}
		if c.MaxScore > 0 {
			b.Percentage = int(math.Round(100 * c.Score / c.MaxScore))
		}
		d.Breakdown = append(d.Breakdown, b)

		switch {
		case c.MaxScore == 0:
		case c.Score == c.MaxScore:
			d.Highlights = append(d.Highlights, c.Reason)
		case c.Score == 0:
			d.Concerns = append(d.Concerns, c.Reason)
		}
	}

	return d
}

// BuildPreferencesSummary renders a short digest of the tenant's main wishes
func BuildPreferencesSummary(prefs *Preferences) string {
	if prefs == nil {
		return "No preferences set"
	}

	var parts []string

	if prefs.MinPrice != nil || prefs.MaxPrice != nil {
		switch {
		case prefs.MinPrice != nil && prefs.MaxPrice != nil:
			parts = append(parts, formatMoney(*prefs.MinPrice)+" - "+formatMoney(*prefs.MaxPrice))
		case prefs.MaxPrice != nil:
			parts = append(parts, "Up to "+formatMoney(*prefs.MaxPrice))
		default:
			parts = append(parts, "From "+formatMoney(*prefs.MinPrice))
		}
	}

	if len(prefs.Bedrooms) > 0 {
		lo, hi := minMaxInt(prefs.Bedrooms)
		if lo == hi {
			parts = append(parts, strconv.FormatInt(lo, 10)+" bed")
		} else {
			parts = append(parts, fmt.Sprintf("%d-%d bed", lo, hi))
		}
	}

	if types := normalizeList(prefs.PropertyTypes); len(types) > 0 {
		parts = append(parts, strings.Join(types, ", "))
	}

	if (prefs.PetPolicy != nil && *prefs.PetPolicy) || len(prefs.Pets) > 0 {
		parts = append(parts, "Pet-friendly")
	}

	if len(parts) == 0 {
		return "No preferences set"
	}
	return strings.Join(parts, " • ")
}

func observe(operation string, start time.Time, err *error) {
	responseTime.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	recordRequest(operation, *err)
	if *err != nil && !errors.Is(*err, ErrPreferencesNotFound) && !errors.Is(*err, ErrPropertyNotFound) && !errors.Is(*err, ErrInvalidOptions) {
		log.Printf("matching %s failed: %v", operation, *err)
	}
}

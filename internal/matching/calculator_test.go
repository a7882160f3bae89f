package matching

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"testing"

	"github.com/google/uuid"
)

func TestCalculateMatchPerfect(t *testing.T) {
	prop := &Property{ID: uuid.New(), Price: 2000, PropertyType: ptr("flat")}
	prefs := &Preferences{MinPrice: ptr(1500.0), MaxPrice: ptr(3000.0), PropertyTypes: []string{"flat"}}

	got := CalculateMatch(prop, prefs, DefaultWeights())

	if got.TotalScore != 30 || got.MaxPossibleScore != 30 {
		t.Fatalf("total=%v max=%v want 30/30", got.TotalScore, got.MaxPossibleScore)
	}
	if got.MatchPercentage != 100 || !got.IsPerfectMatch {
		t.Fatalf("percentage=%d perfect=%v", got.MatchPercentage, got.IsPerfectMatch)
	}
	want := MatchSummary{Matched: 2, Skipped: 13}
	if got.Summary != want {
		t.Fatalf("summary=%+v want=%+v", got.Summary, want)
	}
	if len(got.Categories) != CategoryCount {
		t.Fatalf("categories=%d want=%d", len(got.Categories), CategoryCount)
	}
	if got.Property != prop {
		t.Fatalf("result should reference the scored property")
	}
}

func TestCalculateMatchSkipsEmptyPreferences(t *testing.T) {
	prop := &Property{Price: 2000, Bedrooms: ptr(3)}
	prefs := &Preferences{MaxPrice: ptr(3000.0), Bedrooms: []int64{}}

	got := CalculateMatch(prop, prefs, DefaultWeights())

	for _, c := range got.Categories {
		if c.Category != CategoryBedrooms {
			continue
		}
		if c.HasPreference || c.Score != 0 || c.MaxScore != 0 {
			t.Fatalf("bedrooms should be skipped, got %+v", c)
		}
	}
	if got.MaxPossibleScore != 20 {
		t.Fatalf("max=%v want 20 (budget only)", got.MaxPossibleScore)
	}
}

func TestCalculateMatchNoPreferences(t *testing.T) {
	got := CalculateMatch(&Property{Price: 1000}, nil, DefaultWeights())

	if got.MatchPercentage != 0 || got.IsPerfectMatch {
		t.Fatalf("percentage=%d perfect=%v, want 0/false", got.MatchPercentage, got.IsPerfectMatch)
	}
	if got.Summary.Skipped != CategoryCount {
		t.Fatalf("skipped=%d want=%d", got.Summary.Skipped, CategoryCount)
	}
}

func TestCalculateMatchPercentage(t *testing.T) {
	prop := &Property{Price: 3300, PropertyType: ptr("flat"), Bedrooms: ptr(5)}
	prefs := &Preferences{
		MinPrice:      ptr(1500.0),
		MaxPrice:      ptr(3000.0),
		PropertyTypes: []string{"flat"},
		Bedrooms:      []int64{2},
	}

	got := CalculateMatch(prop, prefs, DefaultWeights())

	// budget 10/20, property type 10/10, bedrooms 0/12
	if got.TotalScore != 20 || got.MaxPossibleScore != 42 {
		t.Fatalf("total=%v max=%v want 20/42", got.TotalScore, got.MaxPossibleScore)
	}
	if want := int(math.Round(100 * 20.0 / 42.0)); got.MatchPercentage != want {
		t.Fatalf("percentage=%d want=%d", got.MatchPercentage, want)
	}
	want := MatchSummary{Matched: 1, Partial: 1, NotMatched: 1, Skipped: 12}
	if got.Summary != want {
		t.Fatalf("summary=%+v want=%+v", got.Summary, want)
	}
}

func TestCalculateMatchZeroWeightCategory(t *testing.T) {
	prop := &Property{Price: 2000, PropertyType: ptr("house")}
	prefs := &Preferences{MaxPrice: ptr(3000.0), PropertyTypes: []string{"flat"}}
	weights := DefaultWeights().Merge(map[Category]float64{CategoryPropertyType: 0})

	got := CalculateMatch(prop, prefs, weights)

	if got.MatchPercentage != 100 {
		t.Fatalf("percentage=%d want=100", got.MatchPercentage)
	}
	want := MatchSummary{Matched: 1, Skipped: 13}
	if got.Summary != want {
		t.Fatalf("summary=%+v want=%+v", got.Summary, want)
	}
}

func TestCalculateMatchIdempotent(t *testing.T) {
	prop := &Property{
		Price:         2100,
		Bedrooms:      ptr(2),
		Amenities:     []string{"gym"},
		Address:       "Camden, London",
		AvailableFrom: date("2026-03-10T00:00:00Z"),
	}
	prefs := &Preferences{
		MaxPrice:       ptr(2000.0),
		Bedrooms:       []int64{1, 2},
		Amenities:      []string{"gym", "lift"},
		PreferredAreas: []string{"camden"},
		MoveInDate:     date("2026-03-01T00:00:00Z"),
	}

	a := CalculateMatch(prop, prefs, DefaultWeights())
	b := CalculateMatch(prop, prefs, DefaultWeights())
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("results differ:\n%+v\n%+v", a, b)
	}
}

func TestCalculateMatchMonotonicWeights(t *testing.T) {
	prop := &Property{Price: 2000, PropertyType: ptr("house")}
	prefs := &Preferences{MaxPrice: ptr(3000.0), PropertyTypes: []string{"flat"}}

	base := CalculateMatch(prop, prefs, DefaultWeights())
	raised := CalculateMatch(prop, prefs, DefaultWeights().Merge(map[Category]float64{CategoryBudget: 40}))
	if raised.MatchPercentage <= base.MatchPercentage {
		t.Fatalf("raising a contributing weight: %d -> %d, want increase", base.MatchPercentage, raised.MatchPercentage)
	}

	skipped := CalculateMatch(prop, prefs, DefaultWeights().Merge(map[Category]float64{CategoryBills: 50}))
	if skipped.MatchPercentage != base.MatchPercentage {
		t.Fatalf("raising a skipped weight: %d -> %d, want unchanged", base.MatchPercentage, skipped.MatchPercentage)
	}
}

func TestCalculateMatchInvariants(t *testing.T) {
	props := []*Property{
		{Price: 900, Bedrooms: ptr(1), SmokingArea: true},
		{Price: 2500, Bedrooms: ptr(4), PetPolicy: true, Pets: PetList{{Type: "cat"}}},
		{Price: 3300, Furnishing: ptr("part-furnished"), LetDuration: ptr("short_term")},
		{Price: 1800, TenantTypes: []string{"professional"}, SquareMeters: ptr(44.0)},
	}
	prefs := &Preferences{
		MinPrice:        ptr(1500.0),
		MaxPrice:        ptr(3000.0),
		Bedrooms:        []int64{2, 3},
		Bathrooms:       []int64{1},
		Furnishing:      []string{"furnished"},
		LetDuration:     ptr("long_term"),
		Pets:            PetList{{Type: "dog"}},
		Smoker:          ptr("no"),
		Occupation:      ptr("student"),
		MinSquareMeters: ptr(50.0),
	}

	for i, p := range props {
		r := CalculateMatch(p, prefs, DefaultWeights())
		var total, max float64
		for _, c := range r.Categories {
			if !c.HasPreference {
				if c.Score != 0 || c.MaxScore != 0 {
					t.Errorf("property %d %s: skipped category scored %v/%v", i, c.Category, c.Score, c.MaxScore)
				}
				continue
			}
			if c.Score < 0 || c.Score > c.MaxScore {
				t.Errorf("property %d %s: score %v outside [0,%v]", i, c.Category, c.Score, c.MaxScore)
			}
			total += c.Score
			max += c.MaxScore
		}
		want := 0
		if max > 0 {
			want = int(math.Round(100 * total / max))
		}
		if r.MatchPercentage != want || r.MatchPercentage < 0 || r.MatchPercentage > 100 {
			t.Errorf("property %d: percentage=%d want=%d", i, r.MatchPercentage, want)
		}
	}
}

func rankingFixture(n int) ([]*Property, *Preferences) {
	props := make([]*Property, 0, n)
	for i := 0; i < n; i++ {
		props = append(props, &Property{
			ID:       uuid.New(),
			Title:    fmt.Sprintf("Listing %d", i),
			Price:    float64(1500 + (i%7)*150),
			Bedrooms: ptr(1 + i%4),
			Balcony:  i%3 == 0,
		})
	}
	prefs := &Preferences{
		MaxPrice: ptr(2000.0),
		Bedrooms: []int64{2},
		Balcony:  ptr(true),
	}
	return props, prefs
}

func TestRankPropertiesSortsAndTruncates(t *testing.T) {
	props, prefs := rankingFixture(25)

	results, total := RankProperties(props, prefs, RankOptions{
		Weights:               DefaultWeights(),
		IncludePartialMatches: true,
		Limit:                 10,
	})

	if total != 25 {
		t.Fatalf("total=%d want=25", total)
	}
	if len(results) != 10 {
		t.Fatalf("results=%d want=10", len(results))
	}

	all := make([]int, 0, len(props))
	for _, p := range props {
		all = append(all, CalculateMatch(p, prefs, DefaultWeights()).MatchPercentage)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(all)))

	for i, r := range results {
		if i > 0 && r.MatchPercentage > results[i-1].MatchPercentage {
			t.Fatalf("results not sorted at %d: %d > %d", i, r.MatchPercentage, results[i-1].MatchPercentage)
		}
		if r.MatchPercentage != all[i] {
			t.Fatalf("result %d percentage=%d want=%d", i, r.MatchPercentage, all[i])
		}
	}
}

func TestRankPropertiesFilters(t *testing.T) {
	props, prefs := rankingFixture(25)
	weights := DefaultWeights()

	count := func(min int) int {
		n := 0
		for _, p := range props {
			if CalculateMatch(p, prefs, weights).MatchPercentage >= min {
				n++
			}
		}
		return n
	}

	tests := []struct {
		name      string
		opts      RankOptions
		wantTotal int
	}{
		{"no filter", RankOptions{Weights: weights, IncludePartialMatches: true}, 25},
		{"min score", RankOptions{Weights: weights, MinScore: 50, IncludePartialMatches: true}, count(50)},
		{"min visible score", RankOptions{Weights: weights, MinScore: 10, MinVisibleScore: ptr(80), IncludePartialMatches: true}, count(80)},
		{"perfect only", RankOptions{Weights: weights}, count(100)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, total := RankProperties(props, prefs, tt.opts)
			if total != tt.wantTotal {
				t.Fatalf("total=%d want=%d", total, tt.wantTotal)
			}
			if len(results) != total {
				t.Fatalf("results=%d total=%d without limit", len(results), total)
			}
			for _, r := range results {
				if !tt.opts.IncludePartialMatches && !r.IsPerfectMatch {
					t.Fatalf("non-perfect result kept: %d%%", r.MatchPercentage)
				}
			}
		})
	}
}

func TestRankPropertiesEmpty(t *testing.T) {
	results, total := RankProperties(nil, &Preferences{}, RankOptions{Weights: DefaultWeights(), Limit: 10})
	if total != 0 || len(results) != 0 {
		t.Fatalf("results=%d total=%d want empty", len(results), total)
	}
}

// internal/matching/calculator.go

package matching

import (
	"math"
	"sort"
)

// CalculateMatch scores one property against a tenant's preferences.
// A nil prefs is treated as "no preferences at all".
func CalculateMatch(p *Property, prefs *Preferences, weights CategoryWeights) PropertyMatchResult {
	if prefs == nil {
		prefs = &Preferences{}
	}

	categories := make([]CategoryMatchResult, 0, CategoryCount)
	for _, s := range scorers {
		categories = append(categories, s.score(p, prefs, weights[s.category]))
	}

	return aggregate(p, categories)
}

// aggregate folds per-category results into totals, percentage and summary.
func aggregate(p *Property, categories []CategoryMatchResult) PropertyMatchResult {
	result := PropertyMatchResult{
		Property:   p,
		Categories: categories,
	}

	for i := range categories {
		c := &categories[i]
		if !c.HasPreference {
			c.Score, c.MaxScore, c.Match = 0, 0, false
			result.Summary.Skipped++
			continue
		}

		c.Score = math.Max(0, math.Min(c.Score, c.MaxScore))
		result.TotalScore += c.Score
		result.MaxPossibleScore += c.MaxScore

		// zero-weight categories contribute nothing and are not counted
		switch {
		case c.MaxScore == 0:
		case c.Score == c.MaxScore:
			result.Summary.Matched++
		case c.Score > 0:
			result.Summary.Partial++
		default:
			result.Summary.NotMatched++
		}
	}

	if result.MaxPossibleScore > 0 {
		result.MatchPercentage = int(math.Round(100 * result.TotalScore / result.MaxPossibleScore))
	}
	result.IsPerfectMatch = result.MatchPercentage == 100

	return result
}

// RankOptions controls batch ranking.
type RankOptions struct {
	Weights               CategoryWeights
	MinScore              int
	MinVisibleScore       *int
	IncludePartialMatches bool
	// Limit <= 0 returns every ranked result
	Limit int
}

// RankProperties scores every property, filters, sorts by percentage
// descending and truncates. total is the filtered count before truncation.
func RankProperties(properties []*Property, prefs *Preferences, opts RankOptions) (results []PropertyMatchResult, total int) {
	results = make([]PropertyMatchResult, 0, len(properties))

	for _, p := range properties {
		if p == nil {
			continue
		}
		r := CalculateMatch(p, prefs, opts.Weights)

		if r.MatchPercentage < opts.MinScore {
			continue
		}
		if opts.MinVisibleScore != nil && r.MatchPercentage < *opts.MinVisibleScore {
			continue
		}
		if !opts.IncludePartialMatches && !r.IsPerfectMatch {
			continue
		}
		results = append(results, r)
	}

	SortByMatch(results)

	total = len(results)
	if opts.Limit > 0 && len(results) > opts.Limit {
		results = results[:opts.Limit]
	}
	return results, total
}

// SortByMatch orders results by match percentage, best first. Ties keep
// their input order.
func SortByMatch(results []PropertyMatchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].MatchPercentage > results[j].MatchPercentage
	})
}

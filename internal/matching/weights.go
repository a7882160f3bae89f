package matching

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Category names one scored preference dimension.
type Category string

const (
	CategoryBudget        Category = "budget"
	CategoryLocation      Category = "location"
	CategoryBedrooms      Category = "bedrooms"
	CategoryPropertyType  Category = "property_type"
	CategoryAvailability  Category = "availability"
	CategoryAmenities     Category = "amenities"
	CategoryBathrooms     Category = "bathrooms"
	CategoryBuildingStyle Category = "building_style"
	CategoryLifestyle     Category = "lifestyle"
	CategoryDuration      Category = "duration"
	CategorySize          Category = "size"
	CategoryFurnishing    Category = "furnishing"
	CategorySmoking       Category = "smoking"
	CategoryPets          Category = "pets"
	CategoryBills         Category = "bills"
)

// CategoryCount is the number of scored categories.
const CategoryCount = 15

// Categories lists every category in scoring order.
var Categories = [CategoryCount]Category{
	CategoryBudget,
	CategoryLocation,
	CategoryBedrooms,
	CategoryPropertyType,
	CategoryAvailability,
	CategoryAmenities,
	CategoryBathrooms,
	CategoryBuildingStyle,
	CategoryLifestyle,
	CategoryDuration,
	CategorySize,
	CategoryFurnishing,
	CategorySmoking,
	CategoryPets,
	CategoryBills,
}

// IsValid reports whether c is one of the scored categories.
func (c Category) IsValid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// CategoryWeights maps each category to the maximum points it can contribute.
type CategoryWeights map[Category]float64

// DefaultWeights returns the stock weight table. The values add up to 100.
func DefaultWeights() CategoryWeights {
	return CategoryWeights{
		CategoryBudget:        20,
		CategoryLocation:      15,
		CategoryBedrooms:      12,
		CategoryPropertyType:  10,
		CategoryAvailability:  8,
		CategoryAmenities:     7,
		CategoryBathrooms:     5,
		CategoryBuildingStyle: 4,
		CategoryLifestyle:     4,
		CategoryDuration:      3,
		CategorySize:          3,
		CategoryFurnishing:    3,
		CategorySmoking:       2,
		CategoryPets:          2,
		CategoryBills:         2,
	}
}

// Merge returns a copy of w with overrides applied. Unknown categories are ignored.
func (w CategoryWeights) Merge(overrides map[Category]float64) CategoryWeights {
	out := make(CategoryWeights, CategoryCount)
	for _, c := range Categories {
		out[c] = w[c]
	}
	for c, v := range overrides {
		if c.IsValid() {
			out[c] = v
		}
	}
	return out
}

// Total sums all weights.
func (w CategoryWeights) Total() float64 {
	var total float64
	for _, c := range Categories {
		total += w[c]
	}
	return total
}

// LoadWeightsFromFile reads a YAML weight table on top of the defaults.
//
//	budget: 25
//	location: 10
func LoadWeightsFromFile(path string) (CategoryWeights, error) {
	w := DefaultWeights()

	b, err := os.ReadFile(path)
	if err != nil {
		return w, fmt.Errorf("read weights file: %w", err)
	}

	var overrides map[Category]float64
	if err := yaml.Unmarshal(b, &overrides); err != nil {
		return w, fmt.Errorf("unmarshal weights: %w", err)
	}

	for c, v := range overrides {
		if !c.IsValid() {
			return w, fmt.Errorf("unknown category %q in weights file", c)
		}
		if v < 0 {
			return w, fmt.Errorf("negative weight for %q", c)
		}
	}

	return w.Merge(overrides), nil
}

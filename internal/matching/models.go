// internal/matching/models.go

package matching

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Property is the read-only listing snapshot the engine scores.
type Property struct {
	ID            uuid.UUID        `json:"id" db:"id"`
	Title         string           `json:"title" db:"title"`
	Price         float64          `json:"price" db:"price"`
	Bedrooms      *int             `json:"bedrooms,omitempty" db:"bedrooms"`
	Bathrooms     *int             `json:"bathrooms,omitempty" db:"bathrooms"`
	PropertyType  *string          `json:"property_type,omitempty" db:"property_type"`
	BuildingType  *string          `json:"building_type,omitempty" db:"building_type"`
	Furnishing    *string          `json:"furnishing,omitempty" db:"furnishing"`
	LetDuration   *string          `json:"let_duration,omitempty" db:"let_duration"`
	Bills         *string          `json:"bills,omitempty" db:"bills"`
	SquareMeters  *float64         `json:"square_meters,omitempty" db:"square_meters"`
	Amenities     pq.StringArray   `json:"amenities" db:"amenities"`
	OutdoorSpace  bool             `json:"outdoor_space" db:"outdoor_space"`
	Balcony       bool             `json:"balcony" db:"balcony"`
	Terrace       bool             `json:"terrace" db:"terrace"`
	PetPolicy     bool             `json:"pet_policy" db:"pet_policy"`
	Pets          PetList          `json:"pets" db:"pets"`
	SmokingArea   bool             `json:"smoking_area" db:"smoking_area"`
	TenantTypes   pq.StringArray   `json:"tenant_types" db:"tenant_types"`
	Address       string           `json:"address" db:"address"`
	MetroStations MetroStationList `json:"metro_stations" db:"metro_stations"`
	AvailableFrom *time.Time       `json:"available_from,omitempty" db:"available_from"`
	Photos        pq.StringArray   `json:"photos" db:"photos"`
	Status        string           `json:"status" db:"status"`
	CreatedAt     time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at" db:"updated_at"`
}

// Preferences holds a tenant's stated wishes. Nil pointers, empty lists and
// empty strings all mean "no preference" for that dimension.
type Preferences struct {
	ID                     int64          `json:"id" db:"id"`
	UserID                 int64          `json:"user_id" db:"user_id"`
	MinPrice               *float64       `json:"min_price,omitempty" db:"min_price"`
	MaxPrice               *float64       `json:"max_price,omitempty" db:"max_price"`
	Bedrooms               pq.Int64Array  `json:"bedrooms" db:"bedrooms"`
	Bathrooms              pq.Int64Array  `json:"bathrooms" db:"bathrooms"`
	PropertyTypes          pq.StringArray `json:"property_types" db:"property_types"`
	Furnishing             pq.StringArray `json:"furnishing" db:"furnishing"`
	OutdoorSpace           *bool          `json:"outdoor_space,omitempty" db:"outdoor_space"`
	Balcony                *bool          `json:"balcony,omitempty" db:"balcony"`
	Terrace                *bool          `json:"terrace,omitempty" db:"terrace"`
	MinSquareMeters        *float64       `json:"min_square_meters,omitempty" db:"min_square_meters"`
	MaxSquareMeters        *float64       `json:"max_square_meters,omitempty" db:"max_square_meters"`
	BuildingTypes          pq.StringArray `json:"building_types" db:"building_types"`
	LetDuration            *string        `json:"let_duration,omitempty" db:"let_duration"`
	Bills                  *string        `json:"bills,omitempty" db:"bills"`
	PetPolicy              *bool          `json:"pet_policy,omitempty" db:"pet_policy"`
	Pets                   PetList        `json:"pets" db:"pets"`
	Amenities              pq.StringArray `json:"amenities" db:"amenities"`
	Smoker                 *string        `json:"smoker,omitempty" db:"smoker"`
	MoveInDate             *time.Time     `json:"move_in_date,omitempty" db:"move_in_date"`
	MoveOutDate            *time.Time     `json:"move_out_date,omitempty" db:"move_out_date"`
	Occupation             *string        `json:"occupation,omitempty" db:"occupation"`
	FamilyStatus           *string        `json:"family_status,omitempty" db:"family_status"`
	ChildrenCount          *string        `json:"children_count,omitempty" db:"children_count"`
	PreferredAreas         pq.StringArray `json:"preferred_areas" db:"preferred_areas"`
	PreferredDistricts     pq.StringArray `json:"preferred_districts" db:"preferred_districts"`
	PreferredMetroStations pq.StringArray `json:"preferred_metro_stations" db:"preferred_metro_stations"`
	CreatedAt              time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt              time.Time      `json:"updated_at" db:"updated_at"`
}

// PetInfo describes one pet, either the tenant's or one a landlord accepts.
type PetInfo struct {
	Type string `json:"type"`
	Size string `json:"size,omitempty"`
}

// MetroStation is a nearby station and the walking time to it.
type MetroStation struct {
	Label   string `json:"label"`
	Minutes int    `json:"minutes"`
}

// PetList is stored as a JSONB column
type PetList []PetInfo

// Scan implements sql.Scanner
func (l *PetList) Scan(src interface{}) error {
	return scanJSON(src, l)
}

// Value implements driver.Valuer
func (l PetList) Value() (driver.Value, error) {
	return valueJSON(l)
}

// MetroStationList is stored as a JSONB column
type MetroStationList []MetroStation

// Scan implements sql.Scanner
func (l *MetroStationList) Scan(src interface{}) error {
	return scanJSON(src, l)
}

// Value implements driver.Valuer
func (l MetroStationList) Value() (driver.Value, error) {
	return valueJSON(l)
}

func scanJSON(src interface{}, dst interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		if len(v) == 0 {
			return nil
		}
		return json.Unmarshal(v, dst)
	case string:
		if v == "" {
			return nil
		}
		return json.Unmarshal([]byte(v), dst)
	default:
		return errors.New("unsupported type for JSON column")
	}
}

func valueJSON(v interface{}) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// CategoryMatchResult is one category's verdict for one property.
type CategoryMatchResult struct {
	Category      Category `json:"category"`
	Match         bool     `json:"match"`
	Score         float64  `json:"score"`
	MaxScore      float64  `json:"max_score"`
	Reason        string   `json:"reason"`
	Details       string   `json:"details"`
	HasPreference bool     `json:"has_preference"`
}

// MatchSummary tallies category outcomes for one property.
type MatchSummary struct {
	Matched    int `json:"matched"`
	Partial    int `json:"partial"`
	NotMatched int `json:"not_matched"`
	Skipped    int `json:"skipped"`
}

// PropertyMatchResult is the scored, explainable verdict for one property.
type PropertyMatchResult struct {
	Property         *Property             `json:"property"`
	TotalScore       float64               `json:"total_score"`
	MaxPossibleScore float64               `json:"max_possible_score"`
	MatchPercentage  int                   `json:"match_percentage"`
	IsPerfectMatch   bool                  `json:"is_perfect_match"`
	Categories       []CategoryMatchResult `json:"categories"`
	Summary          MatchSummary          `json:"summary"`
}

// internal/matching/repository.go

package matching

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// PropertyRepository supplies candidate listings.
type PropertyRepository interface {
	GetProperty(ctx context.Context, id uuid.UUID) (*Property, error)
	ListProperties(ctx context.Context, search *PropertySearch) ([]*Property, error)
}

// PreferencesRepository supplies a tenant's saved preferences.
type PreferencesRepository interface {
	GetByUserID(ctx context.Context, userID int64) (*Preferences, error)
}

const propertyColumns = `
	id, title, price, bedrooms, bathrooms, property_type, building_type,
	furnishing, let_duration, bills, square_meters, amenities,
	outdoor_space, balcony, terrace, pet_policy, pets, smoking_area,
	tenant_types, address, metro_stations, available_from, photos,
	status, created_at, updated_at`

const preferencesColumns = `
	id, user_id, min_price, max_price, bedrooms, bathrooms, property_types,
	furnishing, outdoor_space, balcony, terrace, min_square_meters,
	max_square_meters, building_types, let_duration, bills, pet_policy, pets,
	amenities, smoker, move_in_date, move_out_date, occupation, family_status,
	children_count, preferred_areas, preferred_districts,
	preferred_metro_stations, created_at, updated_at`

// postgresPropertyRepository implements PropertyRepository using PostgreSQL
type postgresPropertyRepository struct {
	db *sqlx.DB
}

// NewPostgresPropertyRepository creates a new PostgreSQL property repository
func NewPostgresPropertyRepository(db *sqlx.DB) PropertyRepository {
	return &postgresPropertyRepository{db: db}
}

// GetProperty retrieves a single active or inactive property by id
func (r *postgresPropertyRepository) GetProperty(ctx context.Context, id uuid.UUID) (*Property, error) {
	var p Property
	query := `SELECT ` + propertyColumns + ` FROM properties WHERE id = $1`

	if err := r.db.GetContext(ctx, &p, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPropertyNotFound
		}
		return nil, fmt.Errorf("failed to get property: %w", err)
	}

	return &p, nil
}

// ListProperties returns active properties matching search, newest first
func (r *postgresPropertyRepository) ListProperties(ctx context.Context, search *PropertySearch) ([]*Property, error) {
	query, args := buildPropertySearchQuery(search)

	var properties []*Property
	if err := r.db.SelectContext(ctx, &properties, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}

	return properties, nil
}

// buildPropertySearchQuery builds the candidate query with positional args
func buildPropertySearchQuery(search *PropertySearch) (string, []interface{}) {
	conditions := []string{"status = 'active'"}
	args := []interface{}{}
	argCount := 1

	if search != nil {
		if city := strings.TrimSpace(search.City); city != "" {
			conditions = append(conditions, fmt.Sprintf("address ILIKE $%d", argCount))
			args = append(args, "%"+city+"%")
			argCount++
		}
		if search.MinPrice != nil {
			conditions = append(conditions, fmt.Sprintf("price >= $%d", argCount))
			args = append(args, *search.MinPrice)
			argCount++
		}
		if search.MaxPrice != nil {
			conditions = append(conditions, fmt.Sprintf("price <= $%d", argCount))
			args = append(args, *search.MaxPrice)
			argCount++
		}
		if search.MinBedrooms != nil {
			conditions = append(conditions, fmt.Sprintf("bedrooms >= $%d", argCount))
			args = append(args, *search.MinBedrooms)
			argCount++
		}
		if pt := strings.TrimSpace(search.PropertyType); pt != "" {
			conditions = append(conditions, fmt.Sprintf("LOWER(property_type) = LOWER($%d)", argCount))
			args = append(args, pt)
			argCount++
		}
		if search.AvailableBy != nil {
			conditions = append(conditions, fmt.Sprintf("(available_from IS NULL OR available_from <= $%d)", argCount))
			args = append(args, *search.AvailableBy)
		}
	}

	query := `SELECT ` + propertyColumns + `
		FROM properties
		WHERE ` + strings.Join(conditions, " AND ") + `
		ORDER BY created_at DESC`

	return query, args
}

// postgresPreferencesRepository implements PreferencesRepository using PostgreSQL
type postgresPreferencesRepository struct {
	db *sqlx.DB
}

// NewPostgresPreferencesRepository creates a new PostgreSQL preferences repository
func NewPostgresPreferencesRepository(db *sqlx.DB) PreferencesRepository {
	return &postgresPreferencesRepository{db: db}
}

// GetByUserID retrieves the preferences row for a user
func (r *postgresPreferencesRepository) GetByUserID(ctx context.Context, userID int64) (*Preferences, error) {
	var prefs Preferences
	query := `SELECT ` + preferencesColumns + ` FROM preferences WHERE user_id = $1`

	if err := r.db.GetContext(ctx, &prefs, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPreferencesNotFound
		}
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}

	return &prefs, nil
}

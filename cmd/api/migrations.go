package main

import (
	"context"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
)

// runMigrations creates the tables the matching module reads
func runMigrations(ctx context.Context, db *sqlx.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS properties (
			id UUID PRIMARY KEY,
			title VARCHAR(255) NOT NULL,
			price NUMERIC(10,2) NOT NULL,
			bedrooms INTEGER,
			bathrooms INTEGER,
			property_type VARCHAR(50),
			building_type VARCHAR(50),
			furnishing VARCHAR(50),
			let_duration VARCHAR(255),
			bills VARCHAR(50),
			square_meters NUMERIC(8,2),
			amenities TEXT[] DEFAULT '{}',
			outdoor_space BOOLEAN DEFAULT FALSE,
			balcony BOOLEAN DEFAULT FALSE,
			terrace BOOLEAN DEFAULT FALSE,
			pet_policy BOOLEAN DEFAULT FALSE,
			pets JSONB DEFAULT '[]',
			smoking_area BOOLEAN DEFAULT FALSE,
			tenant_types TEXT[] DEFAULT '{}',
			address TEXT NOT NULL DEFAULT '',
			metro_stations JSONB DEFAULT '[]',
			available_from DATE,
			photos TEXT[] DEFAULT '{}',
			status VARCHAR(20) NOT NULL DEFAULT 'active',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS preferences (
			id SERIAL PRIMARY KEY,
			user_id BIGINT UNIQUE NOT NULL,
			min_price NUMERIC(10,2),
			max_price NUMERIC(10,2),
			bedrooms INTEGER[] DEFAULT '{}',
			bathrooms INTEGER[] DEFAULT '{}',
			property_types TEXT[] DEFAULT '{}',
			furnishing TEXT[] DEFAULT '{}',
			outdoor_space BOOLEAN,
			balcony BOOLEAN,
			terrace BOOLEAN,
			min_square_meters NUMERIC(8,2),
			max_square_meters NUMERIC(8,2),
			building_types TEXT[] DEFAULT '{}',
			let_duration VARCHAR(255),
			bills VARCHAR(50),
			pet_policy BOOLEAN,
			pets JSONB DEFAULT '[]',
			amenities TEXT[] DEFAULT '{}',
			smoker VARCHAR(50),
			move_in_date DATE,
			move_out_date DATE,
			occupation VARCHAR(50),
			family_status VARCHAR(50),
			children_count VARCHAR(20),
			preferred_areas TEXT[] DEFAULT '{}',
			preferred_districts TEXT[] DEFAULT '{}',
			preferred_metro_stations TEXT[] DEFAULT '{}',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_properties_status_created ON properties(status, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_properties_price ON properties(price)`,
	}

	for i, migration := range migrations {
		if _, err := db.ExecContext(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	log.Printf("   ✅ Applied %d migrations", len(migrations))
	return nil
}

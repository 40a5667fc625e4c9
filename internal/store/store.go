package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"juicedash/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

type Store struct {
	db *sqlx.DB
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

// GetAvailableProducts retrieves all products currently on the menu
func (s *Store) GetAvailableProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := s.db.SelectContext(ctx, &products,
		"SELECT * FROM products WHERE is_available ORDER BY created_at, id")
	return products, err
}

// GetAvailableProductByID retrieves a product by ID restricted to
// available products. Returns nil without error when not found.
func (s *Store) GetAvailableProductByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product,
		"SELECT * FROM products WHERE id = $1 AND is_available", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// GetSymptomMappings retrieves the full symptom mapping table
func (s *Store) GetSymptomMappings(ctx context.Context) ([]models.SymptomMapping, error) {
	var mappings []models.SymptomMapping
	err := s.db.SelectContext(ctx, &mappings,
		"SELECT * FROM symptom_mappings ORDER BY symptom")
	return mappings, err
}

// GetOutletByID retrieves an outlet by ID
func (s *Store) GetOutletByID(ctx context.Context, id string) (*models.Outlet, error) {
	var outlet models.Outlet
	err := s.db.GetContext(ctx, &outlet, "SELECT * FROM outlets WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("outlet not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	return &outlet, nil
}

// NearestOutlet resolves the closest active outlet to a coordinate
// using a great-circle distance computed in SQL. Returns nil without
// error when no active outlet exists.
func (s *Store) NearestOutlet(ctx context.Context, lat, lng float64) (*models.NearestOutlet, error) {
	query := `
		SELECT id AS outlet_id, name, address,
		       6371 * acos(LEAST(1.0,
		           cos(radians($1)) * cos(radians(lat)) * cos(radians(lng) - radians($2))
		         + sin(radians($1)) * sin(radians(lat)))) AS distance_km
		FROM outlets
		WHERE is_active
		ORDER BY distance_km
		LIMIT 1`

	var nearest models.NearestOutlet
	err := s.db.GetContext(ctx, &nearest, query, lat, lng)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &nearest, nil
}

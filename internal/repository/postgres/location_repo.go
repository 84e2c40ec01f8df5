package postgres

import (
	"context"
	"database/sql"
	"errors"

	"eventboard/internal/domain"
)

type locationRepository struct {
	DB *sql.DB
}

func NewLocationRepository(db *sql.DB) domain.LocationRepository {
	return &locationRepository{
		DB: db,
	}
}

func (r *locationRepository) GetByCoordinates(ctx context.Context, lat, lon float64) (*domain.Location, error) {
	loc := &domain.Location{}
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, lat, lon FROM locations WHERE lat = $1 AND lon = $2`,
		lat, lon,
	).Scan(&loc.ID, &loc.Lat, &loc.Lon)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return loc, nil
}

func (r *locationRepository) Create(ctx context.Context, loc *domain.Location) error {
	return r.DB.QueryRowContext(ctx,
		`INSERT INTO locations (lat, lon) VALUES ($1, $2) RETURNING id`,
		loc.Lat, loc.Lon,
	).Scan(&loc.ID)
}

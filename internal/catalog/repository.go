package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/horizon-travel/horizon/internal/shared"
)

// Repository reads catalog records.
type Repository interface {
	Get(ctx context.Context, serviceType shared.ServiceType, id int64) (*ServiceRecord, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL-backed catalog repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Get(ctx context.Context, serviceType shared.ServiceType, id int64) (*ServiceRecord, error) {
	switch serviceType {
	case shared.ServiceTour:
		return r.getTour(ctx, id)
	case shared.ServiceVehicle:
		return r.getVehicle(ctx, id)
	case shared.ServiceHotel:
		return r.getHotel(ctx, id)
	default:
		return nil, fmt.Errorf("catalog: no catalog for service type %q: %w", serviceType, ErrNotFound)
	}
}

func (r *repository) getTour(ctx context.Context, id int64) (*ServiceRecord, error) {
	const query = `
		SELECT id, name, duration_days, includings, exclusions, price_per_day
		FROM tour_packages WHERE id = $1`

	rec := ServiceRecord{Type: shared.ServiceTour}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&rec.ID, &rec.Name, &rec.DurationDays, &rec.Includings, &rec.Exclusions, &rec.PricePerDay,
	)
	if err != nil {
		return nil, mapErr(err, "tour", id)
	}
	return &rec, nil
}

func (r *repository) getVehicle(ctx context.Context, id int64) (*ServiceRecord, error) {
	const query = `
		SELECT id, name, vehicle_type, capacity, transmission, fuel_type, available_for, price_per_day
		FROM vehicles WHERE id = $1`

	rec := ServiceRecord{Type: shared.ServiceVehicle}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&rec.ID, &rec.Name, &rec.VehicleType, &rec.Capacity,
		&rec.Transmission, &rec.FuelType, &rec.AvailableFor, &rec.PricePerDay,
	)
	if err != nil {
		return nil, mapErr(err, "vehicle", id)
	}
	return &rec, nil
}

func (r *repository) getHotel(ctx context.Context, id int64) (*ServiceRecord, error) {
	const query = `
		SELECT id, name, location, star_rating, facilities, price_per_day
		FROM hotels WHERE id = $1`

	rec := ServiceRecord{Type: shared.ServiceHotel}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&rec.ID, &rec.Name, &rec.Location, &rec.StarRating, &rec.Facilities, &rec.PricePerDay,
	)
	if err != nil {
		return nil, mapErr(err, "hotel", id)
	}
	return &rec, nil
}

func mapErr(err error, kind string, id int64) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("catalog: %s %d: %w", kind, id, ErrNotFound)
	}
	return fmt.Errorf("catalog: get %s %d: %w", kind, id, err)
}

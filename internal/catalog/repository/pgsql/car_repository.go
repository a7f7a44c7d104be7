package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fleetsvc/cars-bills/internal/apperrors"
	"github.com/fleetsvc/cars-bills/internal/catalog/domain"
	"github.com/fleetsvc/cars-bills/internal/catalog/ports"
)

// PgxCarRepository stores cars and the car/detail join rows.
type PgxCarRepository struct {
	BaseRepository
}

// NewCarRepository creates a new repository for car data.
func NewCarRepository(pool *pgxpool.Pool) ports.CarRepository {
	return &PgxCarRepository{BaseRepository{Pool: pool}}
}

var _ ports.CarRepository = (*PgxCarRepository)(nil)

const carColumns = `vin, license_plate, manufacturer, model, year, driver_id, created_at, last_updated_at`

// carSortColumns whitelists sortBy values against column names.
var carSortColumns = map[string]string{
	"vin":          "vin",
	"licensePlate": "license_plate",
	"manufacturer": "manufacturer",
	"model":        "model",
	"year":         "year",
}

func scanCar(row pgx.Row) (*domain.Car, error) {
	var c domain.Car
	err := row.Scan(
		&c.VIN,
		&c.LicensePlate,
		&c.Manufacturer,
		&c.Model,
		&c.Year,
		&c.DriverID,
		&c.CreatedAt,
		&c.LastUpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// loadDetails fetches the details attached to one car.
func (r *PgxCarRepository) loadDetails(ctx context.Context, vin string) ([]domain.Detail, error) {
	query := `
		SELECT d.detail_id, d.serial_number, d.price, d.created_at, d.last_updated_at
		FROM details d
		JOIN car_details cd ON cd.detail_id = d.detail_id
		WHERE cd.car_vin = $1
		ORDER BY d.serial_number;
	`
	rows, err := r.Pool.Query(ctx, query, vin)
	if err != nil {
		return nil, fmt.Errorf("failed to load details for car %s: %w", vin, err)
	}
	defer rows.Close()

	details := []domain.Detail{}
	for rows.Next() {
		var d domain.Detail
		if err := rows.Scan(&d.DetailID, &d.SerialNumber, &d.Price, &d.CreatedAt, &d.LastUpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan detail row: %w", err)
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating detail rows: %w", err)
	}
	return details, nil
}

// SaveCarInTx inserts a new car inside an open transaction so nested detail
// creation can join it atomically.
func (r *PgxCarRepository) SaveCarInTx(ctx context.Context, tx pgx.Tx, car domain.Car) error {
	query := `
		INSERT INTO cars (vin, license_plate, manufacturer, model, year, driver_id, created_at, last_updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := tx.Exec(ctx, query,
		car.VIN,
		car.LicensePlate,
		car.Manufacturer,
		car.Model,
		car.Year,
		car.DriverID,
		car.CreatedAt,
		car.LastUpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: car with vin %s or plate %s already exists", apperrors.ErrDuplicate, car.VIN, car.LicensePlate)
		}
		return fmt.Errorf("failed to save car %s: %w", car.VIN, err)
	}
	return nil
}

// FindCarByVIN retrieves a car with its attached details.
func (r *PgxCarRepository) FindCarByVIN(ctx context.Context, vin string) (*domain.Car, error) {
	query := `SELECT ` + carColumns + ` FROM cars WHERE vin = $1;`

	c, err := scanCar(r.Pool.QueryRow(ctx, query, vin))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find car by vin %s: %w", vin, err)
	}

	if c.Details, err = r.loadDetails(ctx, c.VIN); err != nil {
		return nil, err
	}
	return c, nil
}

// FindCarByLicensePlate retrieves a car by the license plate business key.
func (r *PgxCarRepository) FindCarByLicensePlate(ctx context.Context, licensePlate string) (*domain.Car, error) {
	query := `SELECT ` + carColumns + ` FROM cars WHERE license_plate = $1;`

	c, err := scanCar(r.Pool.QueryRow(ctx, query, licensePlate))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find car by plate %s: %w", licensePlate, err)
	}

	if c.Details, err = r.loadDetails(ctx, c.VIN); err != nil {
		return nil, err
	}
	return c, nil
}

// ListCars returns one page of cars matching the filter plus the total match
// count. Details are not loaded for list results.
func (r *PgxCarRepository) ListCars(ctx context.Context, filter ports.CarFilter, page ports.PageRequest) ([]domain.Car, int64, error) {
	sortColumn, ok := carSortColumns[page.SortBy]
	if !ok {
		sortColumn = "manufacturer"
	}

	where := "TRUE"
	args := []any{page.Size, page.Page * page.Size}
	switch {
	case filter.Manufacturer != "":
		where = "manufacturer ILIKE '%' || $3 || '%'"
		args = append(args, filter.Manufacturer)
	case filter.Model != "":
		where = "model ILIKE '%' || $3 || '%'"
		args = append(args, filter.Model)
	case filter.Year != nil:
		where = "year = $3"
		args = append(args, *filter.Year)
	}

	query := `
		SELECT ` + carColumns + `, COUNT(*) OVER() AS total
		FROM cars
		WHERE ` + where + `
		ORDER BY ` + sortColumn + `
		LIMIT $1 OFFSET $2;
	`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list cars: %w", err)
	}
	defer rows.Close()

	var cars []domain.Car
	var total int64
	for rows.Next() {
		var c domain.Car
		err := rows.Scan(
			&c.VIN,
			&c.LicensePlate,
			&c.Manufacturer,
			&c.Model,
			&c.Year,
			&c.DriverID,
			&c.CreatedAt,
			&c.LastUpdatedAt,
			&total,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan car row: %w", err)
		}
		cars = append(cars, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating car rows: %w", err)
	}
	return cars, total, nil
}

// UpdateCar writes mutable car fields.
func (r *PgxCarRepository) UpdateCar(ctx context.Context, car domain.Car) error {
	query := `
		UPDATE cars
		SET license_plate = $2, manufacturer = $3, model = $4, year = $5, last_updated_at = $6
		WHERE vin = $1;
	`
	ct, err := r.Pool.Exec(ctx, query,
		car.VIN,
		car.LicensePlate,
		car.Manufacturer,
		car.Model,
		car.Year,
		car.LastUpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: license plate %s already in use", apperrors.ErrDuplicate, car.LicensePlate)
		}
		return fmt.Errorf("failed to update car %s: %w", car.VIN, err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteCarByVIN removes a car. Join rows go with it via ON DELETE CASCADE.
func (r *PgxCarRepository) DeleteCarByVIN(ctx context.Context, vin string) error {
	ct, err := r.Pool.Exec(ctx, `DELETE FROM cars WHERE vin = $1;`, vin)
	if err != nil {
		return fmt.Errorf("failed to delete car by vin %s: %w", vin, err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// AssignDriver sets the driver on the car identified by license plate.
func (r *PgxCarRepository) AssignDriver(ctx context.Context, licensePlate, driverID string) error {
	query := `UPDATE cars SET driver_id = $2, last_updated_at = now() WHERE license_plate = $1;`

	ct, err := r.Pool.Exec(ctx, query, licensePlate, driverID)
	if err != nil {
		return fmt.Errorf("failed to assign driver to car %s: %w", licensePlate, err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("%w: no car with license plate %s", apperrors.ErrNotFound, licensePlate)
	}
	return nil
}

// AttachDetailInTx links a detail to a car. Re-attaching is a no-op, which
// absorbs redelivered payment events.
func (r *PgxCarRepository) AttachDetailInTx(ctx context.Context, tx pgx.Tx, vin, detailID string) error {
	query := `
		INSERT INTO car_details (car_vin, detail_id)
		VALUES ($1, $2)
		ON CONFLICT (car_vin, detail_id) DO NOTHING;
	`
	if _, err := tx.Exec(ctx, query, vin, detailID); err != nil {
		return fmt.Errorf("failed to attach detail %s to car %s: %w", detailID, vin, err)
	}
	return nil
}

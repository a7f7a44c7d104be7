package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fleetsvc/cars-bills/internal/apperrors"
	"github.com/fleetsvc/cars-bills/internal/billing/domain"
	"github.com/fleetsvc/cars-bills/internal/billing/ports"
)

// PgxDriverRepository stores drivers.
type PgxDriverRepository struct {
	BaseRepository
}

// NewDriverRepository creates a new repository for driver data.
func NewDriverRepository(pool *pgxpool.Pool) ports.DriverRepository {
	return &PgxDriverRepository{BaseRepository{Pool: pool}}
}

var _ ports.DriverRepository = (*PgxDriverRepository)(nil)

const driverColumns = `driver_id, first_name, last_name, passport, license_category, date_of_birth, experience, created_at, last_updated_at`

// driverSortColumns whitelists sortBy values against column names.
var driverSortColumns = map[string]string{
	"firstName":   "first_name",
	"lastName":    "last_name",
	"passport":    "passport",
	"experience":  "experience",
	"dateOfBirth": "date_of_birth",
}

func scanDriver(row pgx.Row) (*domain.Driver, error) {
	var d domain.Driver
	err := row.Scan(
		&d.DriverID,
		&d.FirstName,
		&d.LastName,
		&d.Passport,
		&d.LicenseCategory,
		&d.DateOfBirth,
		&d.Experience,
		&d.CreatedAt,
		&d.LastUpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// SaveDriverInTx inserts a new driver inside an open transaction so the
// account creation can join it atomically.
func (r *PgxDriverRepository) SaveDriverInTx(ctx context.Context, tx pgx.Tx, driver domain.Driver) error {
	query := `
		INSERT INTO drivers (driver_id, first_name, last_name, passport, license_category, date_of_birth, experience, created_at, last_updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := tx.Exec(ctx, query,
		driver.DriverID,
		driver.FirstName,
		driver.LastName,
		driver.Passport,
		driver.LicenseCategory,
		driver.DateOfBirth,
		driver.Experience,
		driver.CreatedAt,
		driver.LastUpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: driver with passport %s already exists", apperrors.ErrDuplicate, driver.Passport)
		}
		return fmt.Errorf("failed to save driver %s: %w", driver.DriverID, err)
	}
	return nil
}

// FindDriverByPassport retrieves a driver by the passport business key.
func (r *PgxDriverRepository) FindDriverByPassport(ctx context.Context, passport string) (*domain.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers WHERE passport = $1;`

	d, err := scanDriver(r.Pool.QueryRow(ctx, query, passport))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find driver by passport %s: %w", passport, err)
	}
	return d, nil
}

// FindDriverByID retrieves a driver by its identifier.
func (r *PgxDriverRepository) FindDriverByID(ctx context.Context, driverID string) (*domain.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers WHERE driver_id = $1;`

	d, err := scanDriver(r.Pool.QueryRow(ctx, query, driverID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find driver by ID %s: %w", driverID, err)
	}
	return d, nil
}

// ExistsByPassport reports whether a driver with the passport is registered.
func (r *PgxDriverRepository) ExistsByPassport(ctx context.Context, passport string) (bool, error) {
	var exists bool
	err := r.Pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM drivers WHERE passport = $1);`, passport).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check driver existence for passport %s: %w", passport, err)
	}
	return exists, nil
}

// ListDrivers returns one page of drivers matching the filter plus the total
// match count.
func (r *PgxDriverRepository) ListDrivers(ctx context.Context, filter ports.DriverFilter, page ports.PageRequest) ([]domain.Driver, int64, error) {
	sortColumn, ok := driverSortColumns[page.SortBy]
	if !ok {
		sortColumn = "first_name"
	}

	where := "TRUE"
	args := []any{page.Size, page.Page * page.Size}
	switch {
	case filter.FirstName != "":
		where = "first_name ILIKE '%' || $3 || '%'"
		args = append(args, filter.FirstName)
	case filter.LastName != "":
		where = "last_name ILIKE '%' || $3 || '%'"
		args = append(args, filter.LastName)
	case filter.Passport != "":
		where = "passport ILIKE '%' || $3 || '%'"
		args = append(args, filter.Passport)
	case filter.Experience != nil:
		where = "experience = $3"
		args = append(args, *filter.Experience)
	}

	query := `
		SELECT ` + driverColumns + `, COUNT(*) OVER() AS total
		FROM drivers
		WHERE ` + where + `
		ORDER BY ` + sortColumn + `
		LIMIT $1 OFFSET $2;
	`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list drivers: %w", err)
	}
	defer rows.Close()

	var drivers []domain.Driver
	var total int64
	for rows.Next() {
		var d domain.Driver
		err := rows.Scan(
			&d.DriverID,
			&d.FirstName,
			&d.LastName,
			&d.Passport,
			&d.LicenseCategory,
			&d.DateOfBirth,
			&d.Experience,
			&d.CreatedAt,
			&d.LastUpdatedAt,
			&total,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan driver row: %w", err)
		}
		drivers = append(drivers, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating driver rows: %w", err)
	}
	return drivers, total, nil
}

// UpdateDriver writes mutable driver fields.
func (r *PgxDriverRepository) UpdateDriver(ctx context.Context, driver domain.Driver) error {
	query := `
		UPDATE drivers
		SET first_name = $2, last_name = $3, license_category = $4, date_of_birth = $5, experience = $6, last_updated_at = $7
		WHERE driver_id = $1;
	`
	ct, err := r.Pool.Exec(ctx, query,
		driver.DriverID,
		driver.FirstName,
		driver.LastName,
		driver.LicenseCategory,
		driver.DateOfBirth,
		driver.Experience,
		driver.LastUpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update driver %s: %w", driver.DriverID, err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteDriverByPassport removes a driver. The account row goes with it via
// the ON DELETE CASCADE foreign key.
func (r *PgxDriverRepository) DeleteDriverByPassport(ctx context.Context, passport string) error {
	ct, err := r.Pool.Exec(ctx, `DELETE FROM drivers WHERE passport = $1;`, passport)
	if err != nil {
		return fmt.Errorf("failed to delete driver by passport %s: %w", passport, err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// FindDriversWithBirthday returns drivers born on the given month and day.
func (r *PgxDriverRepository) FindDriversWithBirthday(ctx context.Context, month time.Month, day int) ([]domain.Driver, error) {
	query := `
		SELECT ` + driverColumns + `
		FROM drivers
		WHERE EXTRACT(MONTH FROM date_of_birth) = $1 AND EXTRACT(DAY FROM date_of_birth) = $2;
	`
	rows, err := r.Pool.Query(ctx, query, int(month), day)
	if err != nil {
		return nil, fmt.Errorf("failed to query drivers with birthday: %w", err)
	}
	defer rows.Close()

	var drivers []domain.Driver
	for rows.Next() {
		var d domain.Driver
		err := rows.Scan(
			&d.DriverID,
			&d.FirstName,
			&d.LastName,
			&d.Passport,
			&d.LicenseCategory,
			&d.DateOfBirth,
			&d.Experience,
			&d.CreatedAt,
			&d.LastUpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan driver row: %w", err)
		}
		drivers = append(drivers, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating driver rows: %w", err)
	}
	return drivers, nil
}

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

// PgxDetailRepository stores details.
type PgxDetailRepository struct {
	BaseRepository
}

// NewDetailRepository creates a new repository for detail data.
func NewDetailRepository(pool *pgxpool.Pool) ports.DetailRepository {
	return &PgxDetailRepository{BaseRepository{Pool: pool}}
}

var _ ports.DetailRepository = (*PgxDetailRepository)(nil)

const detailColumns = `detail_id, serial_number, price, created_at, last_updated_at`

// detailSortColumns whitelists sortBy values against column names.
var detailSortColumns = map[string]string{
	"serialNumber": "serial_number",
	"price":        "price",
}

func scanDetail(row pgx.Row) (*domain.Detail, error) {
	var d domain.Detail
	err := row.Scan(
		&d.DetailID,
		&d.SerialNumber,
		&d.Price,
		&d.CreatedAt,
		&d.LastUpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// SaveDetailInTx inserts a new detail inside an open transaction.
func (r *PgxDetailRepository) SaveDetailInTx(ctx context.Context, tx pgx.Tx, detail domain.Detail) error {
	query := `
		INSERT INTO details (detail_id, serial_number, price, created_at, last_updated_at)
		VALUES ($1, $2, $3, $4, $5);
	`
	_, err := tx.Exec(ctx, query,
		detail.DetailID,
		detail.SerialNumber,
		detail.Price,
		detail.CreatedAt,
		detail.LastUpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: detail with serial number %s already exists", apperrors.ErrDuplicate, detail.SerialNumber)
		}
		return fmt.Errorf("failed to save detail %s: %w", detail.DetailID, err)
	}
	return nil
}

// FindDetailBySerialNumber retrieves a detail by the serial number business
// key.
func (r *PgxDetailRepository) FindDetailBySerialNumber(ctx context.Context, serialNumber string) (*domain.Detail, error) {
	query := `SELECT ` + detailColumns + ` FROM details WHERE serial_number = $1;`

	d, err := scanDetail(r.Pool.QueryRow(ctx, query, serialNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find detail by serial number %s: %w", serialNumber, err)
	}
	return d, nil
}

// ListDetails returns one page of details matching the filter plus the total
// match count.
func (r *PgxDetailRepository) ListDetails(ctx context.Context, filter ports.DetailFilter, page ports.PageRequest) ([]domain.Detail, int64, error) {
	sortColumn, ok := detailSortColumns[page.SortBy]
	if !ok {
		sortColumn = "serial_number"
	}

	where := "TRUE"
	args := []any{page.Size, page.Page * page.Size}
	switch {
	case filter.SerialNumber != "":
		where = "serial_number ILIKE '%' || $3 || '%'"
		args = append(args, filter.SerialNumber)
	case filter.Price != nil:
		where = "price = $3"
		args = append(args, *filter.Price)
	}

	query := `
		SELECT ` + detailColumns + `, COUNT(*) OVER() AS total
		FROM details
		WHERE ` + where + `
		ORDER BY ` + sortColumn + `
		LIMIT $1 OFFSET $2;
	`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list details: %w", err)
	}
	defer rows.Close()

	var details []domain.Detail
	var total int64
	for rows.Next() {
		var d domain.Detail
		err := rows.Scan(
			&d.DetailID,
			&d.SerialNumber,
			&d.Price,
			&d.CreatedAt,
			&d.LastUpdatedAt,
			&total,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan detail row: %w", err)
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating detail rows: %w", err)
	}
	return details, total, nil
}

// UpdateDetail writes mutable detail fields.
func (r *PgxDetailRepository) UpdateDetail(ctx context.Context, detail domain.Detail) error {
	query := `
		UPDATE details
		SET price = $2, last_updated_at = $3
		WHERE detail_id = $1;
	`
	ct, err := r.Pool.Exec(ctx, query, detail.DetailID, detail.Price, detail.LastUpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update detail %s: %w", detail.DetailID, err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteDetailBySerialNumber removes a detail and its join rows.
func (r *PgxDetailRepository) DeleteDetailBySerialNumber(ctx context.Context, serialNumber string) error {
	ct, err := r.Pool.Exec(ctx, `DELETE FROM details WHERE serial_number = $1;`, serialNumber)
	if err != nil {
		return fmt.Errorf("failed to delete detail by serial number %s: %w", serialNumber, err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

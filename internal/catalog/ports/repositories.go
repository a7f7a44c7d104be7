package ports

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/fleetsvc/cars-bills/internal/catalog/domain"
)

// TransactionManager exposes transaction lifecycle operations used by
// services that need multi-statement atomicity.
type TransactionManager interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Commit(ctx context.Context, tx pgx.Tx) error
	Rollback(ctx context.Context, tx pgx.Tx) error
}

// CarFilter narrows ListCars. The first non-zero field wins.
type CarFilter struct {
	Manufacturer string
	Model        string
	Year         *int
}

// DetailFilter narrows ListDetails. The first non-zero field wins.
type DetailFilter struct {
	SerialNumber string
	Price        *decimal.Decimal
}

// PageRequest describes pagination and sorting for list queries.
type PageRequest struct {
	Page   int
	Size   int
	SortBy string
}

// CarRepository persists cars and their attached details.
type CarRepository interface {
	TransactionManager

	SaveCarInTx(ctx context.Context, tx pgx.Tx, car domain.Car) error
	FindCarByVIN(ctx context.Context, vin string) (*domain.Car, error)
	FindCarByLicensePlate(ctx context.Context, licensePlate string) (*domain.Car, error)
	ListCars(ctx context.Context, filter CarFilter, page PageRequest) ([]domain.Car, int64, error)
	UpdateCar(ctx context.Context, car domain.Car) error
	DeleteCarByVIN(ctx context.Context, vin string) error

	// AssignDriver sets the driver on the car identified by license plate.
	AssignDriver(ctx context.Context, licensePlate, driverID string) error

	// AttachDetailInTx inserts into the car/detail join table. Re-attaching
	// an already attached detail is a no-op.
	AttachDetailInTx(ctx context.Context, tx pgx.Tx, vin, detailID string) error
}

// DetailRepository persists details.
type DetailRepository interface {
	TransactionManager

	SaveDetailInTx(ctx context.Context, tx pgx.Tx, detail domain.Detail) error
	FindDetailBySerialNumber(ctx context.Context, serialNumber string) (*domain.Detail, error)
	ListDetails(ctx context.Context, filter DetailFilter, page PageRequest) ([]domain.Detail, int64, error)
	UpdateDetail(ctx context.Context, detail domain.Detail) error
	DeleteDetailBySerialNumber(ctx context.Context, serialNumber string) error
}

package ports

import (
	"context"

	"github.com/fleetsvc/cars-bills/internal/catalog/domain"
	"github.com/fleetsvc/cars-bills/internal/catalog/dto"
	"github.com/fleetsvc/cars-bills/internal/events"
)

// CarSvcFacade covers car CRUD, driver assignment and the detail billing
// kickoff.
type CarSvcFacade interface {
	RegisterCar(ctx context.Context, req dto.CreateCarRequest) (*domain.Car, error)
	GetCarByVIN(ctx context.Context, vin string) (*domain.Car, error)
	GetCarByLicensePlate(ctx context.Context, licensePlate string) (*domain.Car, error)
	ListCars(ctx context.Context, filter CarFilter, page PageRequest) ([]domain.Car, int64, error)
	UpdateCar(ctx context.Context, vin string, req dto.UpdateCarRequest) (*domain.Car, error)
	DeleteCar(ctx context.Context, vin string) error

	// RequestDetailBilling enriches the add-detail request with the car's
	// driver and the detail's price, then publishes it for billing.
	RequestDetailBilling(ctx context.Context, req dto.AddDetailRequest) error

	// AssignDriver links a purchased car to its driver. Consumed from the
	// purchase event stream.
	AssignDriver(ctx context.Context, ev events.CarPurchase) error

	// AttachPaidDetail records a paid detail on its car. Consumed from the
	// payment-completed event stream; re-delivery is a no-op.
	AttachPaidDetail(ctx context.Context, ev events.DetailAdded) error
}

// DetailSvcFacade covers detail CRUD.
type DetailSvcFacade interface {
	RegisterDetail(ctx context.Context, req dto.CreateDetailRequest) (*domain.Detail, error)
	GetDetailBySerialNumber(ctx context.Context, serialNumber string) (*domain.Detail, error)
	ListDetails(ctx context.Context, filter DetailFilter, page PageRequest) ([]domain.Detail, int64, error)
	UpdateDetail(ctx context.Context, serialNumber string, req dto.UpdateDetailRequest) (*domain.Detail, error)
	DeleteDetail(ctx context.Context, serialNumber string) error
}

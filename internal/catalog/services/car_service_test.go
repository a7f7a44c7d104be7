package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/fleetsvc/cars-bills/internal/apperrors"
	"github.com/fleetsvc/cars-bills/internal/catalog/domain"
	"github.com/fleetsvc/cars-bills/internal/catalog/dto"
	"github.com/fleetsvc/cars-bills/internal/events"
)

type CarServiceTestSuite struct {
	suite.Suite
	mockCarRepo    *MockCarRepository
	mockDetailRepo *MockDetailRepository
	mockPublisher  *MockPublisher
	service        *CarService
	ctx            context.Context
}

func (s *CarServiceTestSuite) SetupTest() {
	s.mockCarRepo = new(MockCarRepository)
	s.mockDetailRepo = new(MockDetailRepository)
	s.mockPublisher = new(MockPublisher)
	s.service = NewCarService(s.mockCarRepo, s.mockDetailRepo, s.mockPublisher)
	s.ctx = context.Background()
}

func TestCarServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CarServiceTestSuite))
}

func strPtr(s string) *string { return &s }

func carWithDriver(driverID *string) *domain.Car {
	return &domain.Car{
		VIN:          "VIN-1",
		LicensePlate: "A123BC",
		Manufacturer: "Lada",
		Model:        "Vesta",
		Year:         2020,
		DriverID:     driverID,
	}
}

func (s *CarServiceTestSuite) TestRegisterCar_WithNestedDetails() {
	req := dto.CreateCarRequest{
		VIN:          "VIN-1",
		LicensePlate: "A123BC",
		Manufacturer: "Lada",
		Model:        "Vesta",
		Year:         2020,
		Details: []dto.NestedDetailRequest{
			{SerialNumber: "SN-001", Price: decimal.NewFromInt(100)},
		},
	}
	s.mockCarRepo.On("Begin", s.ctx).Return(nil, nil).Once()
	s.mockCarRepo.On("Rollback", s.ctx, mock.Anything).Return(nil).Maybe()
	s.mockCarRepo.On("SaveCarInTx", s.ctx, mock.Anything, mock.MatchedBy(func(c domain.Car) bool {
		return c.VIN == "VIN-1" && c.DriverID == nil
	})).Return(nil).Once()
	s.mockDetailRepo.On("SaveDetailInTx", s.ctx, mock.Anything, mock.MatchedBy(func(d domain.Detail) bool {
		return d.SerialNumber == "SN-001" && d.DetailID != ""
	})).Return(nil).Once()
	s.mockCarRepo.On("AttachDetailInTx", s.ctx, mock.Anything, "VIN-1", mock.Anything).Return(nil).Once()
	s.mockCarRepo.On("Commit", s.ctx, mock.Anything).Return(nil).Once()

	car, err := s.service.RegisterCar(s.ctx, req)

	s.Require().NoError(err)
	s.Len(car.Details, 1)
	s.mockCarRepo.AssertExpectations(s.T())
	s.mockDetailRepo.AssertExpectations(s.T())
}

func (s *CarServiceTestSuite) TestRegisterCar_DuplicateVIN() {
	req := dto.CreateCarRequest{VIN: "VIN-1", LicensePlate: "A123BC", Manufacturer: "Lada", Model: "Vesta", Year: 2020}
	s.mockCarRepo.On("Begin", s.ctx).Return(nil, nil).Once()
	s.mockCarRepo.On("Rollback", s.ctx, mock.Anything).Return(nil).Maybe()
	s.mockCarRepo.On("SaveCarInTx", s.ctx, mock.Anything, mock.Anything).Return(apperrors.ErrDuplicate).Once()

	_, err := s.service.RegisterCar(s.ctx, req)

	s.Require().ErrorIs(err, apperrors.ErrDuplicate)
	s.mockCarRepo.AssertNotCalled(s.T(), "Commit", mock.Anything, mock.Anything)
}

func (s *CarServiceTestSuite) TestRequestDetailBilling_EnrichesEvent() {
	car := carWithDriver(strPtr("drv-1"))
	detail := &domain.Detail{DetailID: "det-1", SerialNumber: "SN-001", Price: decimal.RequireFromString("49.90")}
	s.mockCarRepo.On("FindCarByLicensePlate", s.ctx, "A123BC").Return(car, nil).Once()
	s.mockDetailRepo.On("FindDetailBySerialNumber", s.ctx, "SN-001").Return(detail, nil).Once()
	s.mockPublisher.On("Publish", s.ctx, events.TopicDetailBilling, mock.MatchedBy(func(ev events.DetailAdded) bool {
		return ev.DriverID == "drv-1" && ev.Price.Equal(detail.Price) && ev.Currency == "GREEN"
	})).Return(nil).Once()

	err := s.service.RequestDetailBilling(s.ctx, dto.AddDetailRequest{
		SerialNumber: "SN-001",
		LicensePlate: "A123BC",
		Currency:     "GREEN",
	})

	s.Require().NoError(err)
	s.mockPublisher.AssertExpectations(s.T())
}

func (s *CarServiceTestSuite) TestRequestDetailBilling_NoDriverAssigned() {
	car := carWithDriver(nil)
	s.mockCarRepo.On("FindCarByLicensePlate", s.ctx, "A123BC").Return(car, nil).Once()

	err := s.service.RequestDetailBilling(s.ctx, dto.AddDetailRequest{
		SerialNumber: "SN-001",
		LicensePlate: "A123BC",
		Currency:     "RED",
	})

	s.Require().ErrorIs(err, apperrors.ErrValidation)
	s.mockPublisher.AssertNotCalled(s.T(), "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func (s *CarServiceTestSuite) TestRequestDetailBilling_UnknownCar() {
	s.mockCarRepo.On("FindCarByLicensePlate", s.ctx, "MISSING").Return(nil, apperrors.ErrNotFound).Once()

	err := s.service.RequestDetailBilling(s.ctx, dto.AddDetailRequest{
		SerialNumber: "SN-001",
		LicensePlate: "MISSING",
		Currency:     "RED",
	})

	s.Require().ErrorIs(err, apperrors.ErrNotFound)
}

func (s *CarServiceTestSuite) TestAssignDriver() {
	ev := events.CarPurchase{DriverID: "drv-1", LicensePlate: "A123BC"}
	s.mockCarRepo.On("AssignDriver", s.ctx, "A123BC", "drv-1").Return(nil).Once()

	s.Require().NoError(s.service.AssignDriver(s.ctx, ev))
	s.mockCarRepo.AssertExpectations(s.T())
}

func (s *CarServiceTestSuite) TestAssignDriver_UnknownPlate() {
	ev := events.CarPurchase{DriverID: "drv-1", LicensePlate: "MISSING"}
	s.mockCarRepo.On("AssignDriver", s.ctx, "MISSING", "drv-1").Return(apperrors.ErrNotFound).Once()

	s.Require().ErrorIs(s.service.AssignDriver(s.ctx, ev), apperrors.ErrNotFound)
}

func (s *CarServiceTestSuite) TestAttachPaidDetail() {
	car := carWithDriver(strPtr("drv-1"))
	detail := &domain.Detail{DetailID: "det-1", SerialNumber: "SN-001"}
	ev := events.DetailAdded{SerialNumber: "SN-001", LicensePlate: "A123BC", DriverID: "drv-1", Currency: "RED"}
	s.mockCarRepo.On("FindCarByLicensePlate", s.ctx, "A123BC").Return(car, nil).Once()
	s.mockDetailRepo.On("FindDetailBySerialNumber", s.ctx, "SN-001").Return(detail, nil).Once()
	s.mockCarRepo.On("Begin", s.ctx).Return(nil, nil).Once()
	s.mockCarRepo.On("Rollback", s.ctx, mock.Anything).Return(nil).Maybe()
	s.mockCarRepo.On("AttachDetailInTx", s.ctx, mock.Anything, "VIN-1", "det-1").Return(nil).Once()
	s.mockCarRepo.On("Commit", s.ctx, mock.Anything).Return(nil).Once()

	s.Require().NoError(s.service.AttachPaidDetail(s.ctx, ev))
	s.mockCarRepo.AssertExpectations(s.T())
}

func (s *CarServiceTestSuite) TestUpdateCar_PatchSemantics() {
	car := carWithDriver(strPtr("drv-1"))
	s.mockCarRepo.On("FindCarByVIN", s.ctx, "VIN-1").Return(car, nil).Once()
	s.mockCarRepo.On("UpdateCar", s.ctx, mock.MatchedBy(func(c domain.Car) bool {
		return c.Model == "Granta" && c.Manufacturer == "Lada"
	})).Return(nil).Once()

	updated, err := s.service.UpdateCar(s.ctx, "VIN-1", dto.UpdateCarRequest{Model: strPtr("Granta")})

	s.Require().NoError(err)
	s.Equal("Granta", updated.Model)
	s.mockCarRepo.AssertExpectations(s.T())
}

package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/fleetsvc/cars-bills/internal/apperrors"
	"github.com/fleetsvc/cars-bills/internal/billing/domain"
	"github.com/fleetsvc/cars-bills/internal/billing/dto"
	"github.com/fleetsvc/cars-bills/internal/billing/ports"
	"github.com/fleetsvc/cars-bills/internal/events"
)

type DriverServiceTestSuite struct {
	suite.Suite
	mockDriverRepo  *MockDriverRepository
	mockAccountRepo *MockAccountRepository
	mockPublisher   *MockPublisher
	service         *DriverService
	ctx             context.Context
}

func (s *DriverServiceTestSuite) SetupTest() {
	s.mockDriverRepo = new(MockDriverRepository)
	s.mockAccountRepo = new(MockAccountRepository)
	s.mockPublisher = new(MockPublisher)
	s.service = NewDriverService(s.mockDriverRepo, s.mockAccountRepo, s.mockPublisher)
	s.ctx = context.Background()
}

func TestDriverServiceTestSuite(t *testing.T) {
	suite.Run(t, new(DriverServiceTestSuite))
}

func createDriverRequest() dto.CreateDriverRequest {
	return dto.CreateDriverRequest{
		FirstName:       "Ivan",
		LastName:        "Petrov",
		Passport:        "4510123456",
		LicenseCategory: "B",
		DateOfBirth:     time.Date(1990, time.May, 14, 0, 0, 0, 0, time.UTC),
		Experience:      7,
	}
}

func (s *DriverServiceTestSuite) TestRegisterDriver_Success() {
	req := createDriverRequest()
	s.mockDriverRepo.On("ExistsByPassport", s.ctx, req.Passport).Return(false, nil).Once()
	s.mockDriverRepo.On("Begin", s.ctx).Return(nil, nil).Once()
	s.mockDriverRepo.On("Rollback", s.ctx, mock.Anything).Return(nil).Maybe()
	s.mockDriverRepo.On("SaveDriverInTx", s.ctx, mock.Anything, mock.MatchedBy(func(d domain.Driver) bool {
		return d.Passport == req.Passport && d.LicenseCategory == domain.CategoryB && d.DriverID != ""
	})).Return(nil).Once()
	s.mockAccountRepo.On("SaveAccountInTx", s.ctx, mock.Anything, mock.MatchedBy(func(a domain.Account) bool {
		return a.DriverID != "" && a.Balances[domain.Red].IsZero() && a.Balances[domain.Green].IsZero() && a.Balances[domain.Blue].IsZero()
	})).Return(nil).Once()
	s.mockDriverRepo.On("Commit", s.ctx, mock.Anything).Return(nil).Once()

	driver, err := s.service.RegisterDriver(s.ctx, req)

	s.Require().NoError(err)
	s.Equal("Ivan", driver.FirstName)
	s.NotEmpty(driver.DriverID)
	s.mockDriverRepo.AssertExpectations(s.T())
	s.mockAccountRepo.AssertExpectations(s.T())
}

func (s *DriverServiceTestSuite) TestRegisterDriver_DuplicatePassport() {
	req := createDriverRequest()
	s.mockDriverRepo.On("ExistsByPassport", s.ctx, req.Passport).Return(true, nil).Once()

	_, err := s.service.RegisterDriver(s.ctx, req)

	s.Require().ErrorIs(err, apperrors.ErrDuplicate)
	s.mockDriverRepo.AssertNotCalled(s.T(), "SaveDriverInTx", mock.Anything, mock.Anything, mock.Anything)
}

func (s *DriverServiceTestSuite) TestRegisterDriver_BadLicenseCategory() {
	req := createDriverRequest()
	req.LicenseCategory = "Z"

	_, err := s.service.RegisterDriver(s.ctx, req)

	s.Require().ErrorIs(err, apperrors.ErrValidation)
	s.mockDriverRepo.AssertNotCalled(s.T(), "ExistsByPassport", mock.Anything, mock.Anything)
}

func (s *DriverServiceTestSuite) TestUpdateDriver_PatchSemantics() {
	existing := &domain.Driver{
		DriverID:        "drv-1",
		FirstName:       "Ivan",
		LastName:        "Petrov",
		Passport:        "4510123456",
		LicenseCategory: domain.CategoryB,
		Experience:      7,
	}
	s.mockDriverRepo.On("FindDriverByPassport", s.ctx, "4510123456").Return(existing, nil).Once()
	s.mockDriverRepo.On("UpdateDriver", s.ctx, mock.MatchedBy(func(d domain.Driver) bool {
		return d.FirstName == "Pyotr" && d.LastName == "Petrov" && d.Experience == 7
	})).Return(nil).Once()

	newName := "Pyotr"
	driver, err := s.service.UpdateDriver(s.ctx, "4510123456", dto.UpdateDriverRequest{FirstName: &newName})

	s.Require().NoError(err)
	s.Equal("Pyotr", driver.FirstName)
	s.Equal(7, driver.Experience)
	s.mockDriverRepo.AssertExpectations(s.T())
}

func (s *DriverServiceTestSuite) TestUpdateDriver_NotFound() {
	s.mockDriverRepo.On("FindDriverByPassport", s.ctx, "missing").Return(nil, apperrors.ErrNotFound).Once()

	_, err := s.service.UpdateDriver(s.ctx, "missing", dto.UpdateDriverRequest{})

	s.Require().ErrorIs(err, apperrors.ErrNotFound)
}

func (s *DriverServiceTestSuite) TestListDrivers_NilBecomesEmpty() {
	s.mockDriverRepo.On("ListDrivers", s.ctx, mock.Anything, mock.Anything).Return(nil, int64(0), nil).Once()

	drivers, total, err := s.service.ListDrivers(s.ctx, ports.DriverFilter{}, ports.PageRequest{Size: 10})

	s.Require().NoError(err)
	s.NotNil(drivers)
	s.Empty(drivers)
	s.Zero(total)
}

func (s *DriverServiceTestSuite) TestDeleteDriver() {
	s.mockDriverRepo.On("DeleteDriverByPassport", s.ctx, "4510123456").Return(nil).Once()

	s.Require().NoError(s.service.DeleteDriver(s.ctx, "4510123456"))
	s.mockDriverRepo.AssertExpectations(s.T())
}

func (s *DriverServiceTestSuite) TestRequestCarPurchase_Publishes() {
	ev := events.CarPurchase{DriverID: "drv-1", LicensePlate: "A123BC"}
	s.mockPublisher.On("Publish", s.ctx, events.TopicCarPurchase, ev).Return(nil).Once()

	s.Require().NoError(s.service.RequestCarPurchase(s.ctx, ev))
	s.mockPublisher.AssertExpectations(s.T())
}

func (s *DriverServiceTestSuite) TestCongratulateBirthdays() {
	now := time.Now()
	birthdayers := []domain.Driver{{DriverID: "drv-1", FirstName: "Ivan", LastName: "Petrov"}}
	s.mockDriverRepo.On("FindDriversWithBirthday", s.ctx, now.Month(), now.Day()).Return(birthdayers, nil).Once()

	s.Require().NoError(s.service.CongratulateBirthdays(s.ctx))
	s.mockDriverRepo.AssertExpectations(s.T())
}

package http

import (
	"context"
	"time"

	"bora-alugar-backend/internal/domain"
	"bora-alugar-backend/internal/security"
	"bora-alugar-backend/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Signup(ctx context.Context, in service.SignupInput) (*domain.User, *service.Tokens, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.User), args.Get(1).(*service.Tokens), args.Error(2)
}
func (m *MockAuthService) Login(ctx context.Context, email, password string) (*domain.User, *service.Tokens, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.User), args.Get(1).(*service.Tokens), args.Error(2)
}
func (m *MockAuthService) Refresh(ctx context.Context, refreshToken string) (*service.Tokens, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Tokens), args.Error(1)
}
func (m *MockAuthService) Logout(ctx context.Context, access *security.UserClaims, refreshToken string) error {
	args := m.Called(ctx, access, refreshToken)
	return args.Error(0)
}

type MockItemService struct {
	mock.Mock
}

func (m *MockItemService) CreateItem(ctx context.Context, ownerID int32, in service.ItemInput) (*domain.Item, error) {
	args := m.Called(ctx, ownerID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Item), args.Error(1)
}
func (m *MockItemService) GetItem(ctx context.Context, id int32, viewer *domain.GeoPoint) (*domain.ItemWithDistance, error) {
	args := m.Called(ctx, id, viewer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ItemWithDistance), args.Error(1)
}
func (m *MockItemService) UpdateItem(ctx context.Context, userID int32, isAdmin bool, id int32, in service.ItemInput) (*domain.Item, error) {
	args := m.Called(ctx, userID, isAdmin, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Item), args.Error(1)
}
func (m *MockItemService) DeleteItem(ctx context.Context, userID int32, isAdmin bool, id int32) error {
	args := m.Called(ctx, userID, isAdmin, id)
	return args.Error(0)
}
func (m *MockItemService) ListMyItems(ctx context.Context, ownerID int32, page, pageSize int32) ([]domain.Item, int32, error) {
	args := m.Called(ctx, ownerID, page, pageSize)
	return args.Get(0).([]domain.Item), args.Get(1).(int32), args.Error(2)
}
func (m *MockItemService) SearchItems(ctx context.Context, filter domain.ItemFilter) ([]domain.ItemWithDistance, int32, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.ItemWithDistance), args.Get(1).(int32), args.Error(2)
}
func (m *MockItemService) CheckAvailability(ctx context.Context, itemID int32, start, end time.Time) (*service.Availability, error) {
	args := m.Called(ctx, itemID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Availability), args.Error(1)
}

type MockRentalService struct {
	mock.Mock
}

func (m *MockRentalService) RequestRental(ctx context.Context, renterID int32, req service.RentalRequest) (*domain.Rental, error) {
	args := m.Called(ctx, renterID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}
func (m *MockRentalService) GetRental(ctx context.Context, userID int32, isAdmin bool, rentalID int32) (*domain.Rental, error) {
	args := m.Called(ctx, userID, isAdmin, rentalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}
func (m *MockRentalService) ListRentals(ctx context.Context, renterID int32, status domain.RentalStatus, page, pageSize int32) ([]domain.Rental, int32, error) {
	args := m.Called(ctx, renterID, status, page, pageSize)
	return args.Get(0).([]domain.Rental), args.Get(1).(int32), args.Error(2)
}
func (m *MockRentalService) ListLendings(ctx context.Context, ownerID int32, status domain.RentalStatus, page, pageSize int32) ([]domain.Rental, int32, error) {
	args := m.Called(ctx, ownerID, status, page, pageSize)
	return args.Get(0).([]domain.Rental), args.Get(1).(int32), args.Error(2)
}
func (m *MockRentalService) Transition(ctx context.Context, userID int32, isAdmin bool, rentalID int32, to domain.RentalStatus, reason string) (*domain.Rental, error) {
	args := m.Called(ctx, userID, isAdmin, rentalID, to, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}

// MockUserService only answers profile reads; other methods are unused here
type MockUserService struct {
	service.UserService
	mock.Mock
}

func (m *MockUserService) GetProfile(ctx context.Context, userID int32) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type MockAdminService struct {
	service.AdminService
	mock.Mock
}

func (m *MockAdminService) ListUsers(ctx context.Context, query string, page, pageSize int32) ([]domain.User, int32, error) {
	args := m.Called(ctx, query, page, pageSize)
	return args.Get(0).([]domain.User), args.Get(1).(int32), args.Error(2)
}

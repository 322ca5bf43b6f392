package http

import (
	"context"

	"github.com/stretchr/testify/mock"

	"rentwear-backend/internal/domain"
	"rentwear-backend/internal/service"
)

type MockRentalService struct {
	mock.Mock
}

func (m *MockRentalService) CreateRental(ctx context.Context, customerID string, req service.CreateRentalRequest) (*domain.Rental, error) {
	args := m.Called(ctx, customerID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}

func (m *MockRentalService) GetRental(ctx context.Context, callerID, rentalID string) (*domain.Rental, error) {
	args := m.Called(ctx, callerID, rentalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}

func (m *MockRentalService) ListRentalsForUser(ctx context.Context, callerID string, view domain.RentalView) ([]domain.Rental, error) {
	args := m.Called(ctx, callerID, view)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Rental), args.Error(1)
}

func (m *MockRentalService) CancelRental(ctx context.Context, callerID, rentalID string) (*domain.Rental, error) {
	args := m.Called(ctx, callerID, rentalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}

func (m *MockRentalService) ApplyStatusChange(ctx context.Context, change domain.RentalStatusChange) (*domain.Rental, error) {
	args := m.Called(ctx, change)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}

type MockReturnService struct {
	mock.Mock
}

func (m *MockReturnService) ret(args mock.Arguments) (*domain.Return, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Return), args.Error(1)
}

func (m *MockReturnService) list(args mock.Arguments) ([]domain.Return, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Return), args.Error(1)
}

func (m *MockReturnService) ScheduleReturn(ctx context.Context, customerID string, req service.ScheduleReturnRequest) (*domain.Return, error) {
	return m.ret(m.Called(ctx, customerID, req))
}

func (m *MockReturnService) GetReturn(ctx context.Context, callerID string, role domain.Role, returnID string) (*domain.Return, error) {
	return m.ret(m.Called(ctx, callerID, role, returnID))
}

func (m *MockReturnService) ListUserReturns(ctx context.Context, customerID string) ([]domain.Return, error) {
	return m.list(m.Called(ctx, customerID))
}

func (m *MockReturnService) ListPendingReturns(ctx context.Context, partnerID string) ([]domain.Return, error) {
	return m.list(m.Called(ctx, partnerID))
}

func (m *MockReturnService) ListCompletedReturns(ctx context.Context, partnerID string) ([]domain.Return, error) {
	return m.list(m.Called(ctx, partnerID))
}

func (m *MockReturnService) AssignReturn(ctx context.Context, partnerID, returnID string) (*domain.Return, error) {
	return m.ret(m.Called(ctx, partnerID, returnID))
}

func (m *MockReturnService) UpdateReturnStatus(ctx context.Context, partnerID, returnID, status string) (*domain.Return, error) {
	return m.ret(m.Called(ctx, partnerID, returnID, status))
}

func (m *MockReturnService) SubmitInspection(ctx context.Context, partnerID, returnID string, req service.InspectionRequest) (*domain.Return, error) {
	return m.ret(m.Called(ctx, partnerID, returnID, req))
}

func (m *MockReturnService) CompleteReturn(ctx context.Context, partnerID, returnID string) (*domain.Return, error) {
	return m.ret(m.Called(ctx, partnerID, returnID))
}

type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) GetNotifications(ctx context.Context, userID string, page, pageSize int32) ([]domain.Notification, int32, error) {
	args := m.Called(ctx, userID, page, pageSize)
	return args.Get(0).([]domain.Notification), int32(args.Int(1)), args.Error(2)
}

func (m *MockNotificationService) MarkAsRead(ctx context.Context, userID string, notificationID int64) error {
	return m.Called(ctx, userID, notificationID).Error(0)
}

func (m *MockNotificationService) Notify(ctx context.Context, userID, title, message string, attrs map[string]string) {
	m.Called(ctx, userID, title, message, attrs)
}

type fakePinger struct {
	err error
}

func (p fakePinger) PingContext(ctx context.Context) error {
	return p.err
}

package service

import (
	"context"
	"time"

	"rentwear-backend/internal/domain"
	"rentwear-backend/internal/storage"
)

// CreateRentalRequest carries what the customer sends after payment. Amounts are
// optional; when present they must match the server-side quote.
type CreateRentalRequest struct {
	ProductID       string
	StartDate       time.Time
	EndDate         time.Time
	TotalDays       int32
	RentalPrice     int64
	SecurityDeposit int64
	TotalAmount     int64
	PaymentID       string
	OrderID         string
	Signature       string
}

type ScheduleReturnRequest struct {
	RentalID        string
	PickupDate      time.Time
	TimeSlot        string
	AdditionalNotes string
}

type InspectionRequest struct {
	Condition     string
	QualityIssues []string
	Comments      string
	Images        []storage.Image
}

type RentalService interface {
	CreateRental(ctx context.Context, customerID string, req CreateRentalRequest) (*domain.Rental, error)
	GetRental(ctx context.Context, callerID, rentalID string) (*domain.Rental, error)
	ListRentalsForUser(ctx context.Context, callerID string, view domain.RentalView) ([]domain.Rental, error)
	CancelRental(ctx context.Context, callerID, rentalID string) (*domain.Rental, error)
	// ApplyStatusChange is the only place a return transition moves a rental.
	ApplyStatusChange(ctx context.Context, change domain.RentalStatusChange) (*domain.Rental, error)
}

type ReturnService interface {
	ScheduleReturn(ctx context.Context, customerID string, req ScheduleReturnRequest) (*domain.Return, error)
	GetReturn(ctx context.Context, callerID string, role domain.Role, returnID string) (*domain.Return, error)
	ListUserReturns(ctx context.Context, customerID string) ([]domain.Return, error)
	ListPendingReturns(ctx context.Context, partnerID string) ([]domain.Return, error)
	ListCompletedReturns(ctx context.Context, partnerID string) ([]domain.Return, error)
	AssignReturn(ctx context.Context, partnerID, returnID string) (*domain.Return, error)
	UpdateReturnStatus(ctx context.Context, partnerID, returnID, status string) (*domain.Return, error)
	SubmitInspection(ctx context.Context, partnerID, returnID string, req InspectionRequest) (*domain.Return, error)
	CompleteReturn(ctx context.Context, partnerID, returnID string) (*domain.Return, error)
}

type NotificationService interface {
	GetNotifications(ctx context.Context, userID string, page, pageSize int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, userID string, notificationID int64) error
	// Notify records an in-app notification and emails the user. Failures are
	// logged and never returned.
	Notify(ctx context.Context, userID, title, message string, attrs map[string]string)
}

type EmailService interface {
	SendEmail(ctx context.Context, to, toName, subject, plainText, htmlContent string) error
}

// PaymentVerifier checks the gateway signature of a captured payment.
type PaymentVerifier interface {
	VerifySignature(orderID, paymentID, signature string) bool
}

// ImageUploader stores one inspection image and returns its URL.
type ImageUploader interface {
	UploadImage(ctx context.Context, folder string, img storage.Image) (string, error)
}

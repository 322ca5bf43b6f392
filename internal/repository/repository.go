package repository

import (
	"context"
	"errors"
	"time"

	"rentwear-backend/internal/domain"
)

// ErrIDCollision is returned by Create when a generated external id is already taken.
// Callers regenerate the id and retry.
var ErrIDCollision = errors.New("generated id already exists")

// Transactor runs fn inside a database transaction. Repositories called with the
// context passed to fn take part in it. Nested calls join the outer transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

type RentalRepository interface {
	Create(ctx context.Context, rental *domain.Rental) error
	GetByID(ctx context.Context, id int64) (*domain.Rental, error)
	GetByRentalID(ctx context.Context, rentalID string) (*domain.Rental, error)
	ListByUser(ctx context.Context, userID string, view domain.RentalView) ([]domain.Rental, error)
	// UpdateStatus writes rental.Status if rental.Version is still current and bumps the version.
	UpdateStatus(ctx context.Context, rental *domain.Rental) error
	ListActiveEndingOn(ctx context.Context, day time.Time) ([]domain.Rental, error)
}

type ReturnRepository interface {
	Create(ctx context.Context, ret *domain.Return) error
	GetByReturnID(ctx context.Context, returnID string) (*domain.Return, error)
	GetByRentalID(ctx context.Context, rentalID int64) (*domain.Return, error)
	// Update writes status and inspection if ret.Version is still current and bumps the version.
	Update(ctx context.Context, ret *domain.Return) error
	// Assign claims the return for partnerID unless another partner already holds it.
	Assign(ctx context.Context, returnID, partnerID string) error
	ListByUser(ctx context.Context, userID string) ([]domain.Return, error)
	ListPending(ctx context.Context, partnerID string) ([]domain.Return, error)
	ListCompletedByPartner(ctx context.Context, partnerID string) ([]domain.Return, error)
	ListScheduledOn(ctx context.Context, day time.Time) ([]domain.Return, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, note *domain.Notification) error
	List(ctx context.Context, userID string, limit, offset int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, id int64, userID string) error
}

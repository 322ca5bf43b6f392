package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentwear-backend/internal/domain"
	"rentwear-backend/internal/repository"
	"rentwear-backend/internal/repository/postgres"
)

func TestRentalRepository_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := postgres.NewRentalRepository(db)
	ctx := context.Background()

	newRental := func() *domain.Rental {
		start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		return &domain.Rental{
			RentalID:        "RENT-1A2B3C4D",
			UserID:          "cust-1",
			ProductID:       "prod-1",
			StartDate:       start,
			EndDate:         start.AddDate(0, 0, 5),
			TotalDays:       5,
			RentalPrice:     250000,
			SecurityDeposit: 200000,
			TotalAmount:     450000,
			PaymentID:       "pay_123",
			Status:          domain.RentalStatusActive,
		}
	}

	t.Run("Success", func(t *testing.T) {
		rental := newRental()
		mock.ExpectQuery("INSERT INTO rentals").
			WithArgs(rental.RentalID, rental.UserID, rental.ProductID, rental.StartDate, rental.EndDate, rental.TotalDays,
				rental.RentalPrice, rental.SecurityDeposit, rental.TotalAmount, rental.PaymentID, "", "active", sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

		err := repo.Create(ctx, rental)
		require.NoError(t, err)
		assert.Equal(t, int64(7), rental.ID)
		assert.Equal(t, int32(1), rental.Version)
		assert.False(t, rental.CreatedAt.IsZero())
	})

	t.Run("Rental id collision", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO rentals").
			WillReturnError(&pq.Error{Code: "23505", Constraint: "rentals_rental_id_key"})

		err := repo.Create(ctx, newRental())
		assert.ErrorIs(t, err, repository.ErrIDCollision)
	})

	t.Run("Taken rental id inserts nothing", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO rentals (.+) ON CONFLICT \(rental_id\) DO NOTHING RETURNING id`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		err := repo.Create(ctx, newRental())
		assert.ErrorIs(t, err, repository.ErrIDCollision)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRentalRepository_GetByRentalID(t *testing.T) {
	db, mock := newMock(t)
	repo := postgres.NewRentalRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM rentals r JOIN products p ON p.id = r.product_id WHERE r.rental_id = \$1`).
			WithArgs("RENT-1A2B3C4D").
			WillReturnRows(rentalRows(rentalValues(3, "RENT-1A2B3C4D", "active")))

		rental, err := repo.GetByRentalID(ctx, "RENT-1A2B3C4D")
		require.NoError(t, err)
		assert.Equal(t, int64(3), rental.ID)
		assert.Equal(t, domain.RentalStatusActive, rental.Status)
		assert.Equal(t, int32(1), rental.Version)
		require.NotNil(t, rental.Product)
		assert.Equal(t, "Silk Saree", rental.Product.Name)
		assert.Equal(t, int64(50000), rental.Product.RentalPricePerDay)
	})

	t.Run("Not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM rentals").
			WithArgs("RENT-MISSING0").
			WillReturnRows(rentalRows())

		_, err := repo.GetByRentalID(ctx, "RENT-MISSING0")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRentalRepository_ListByUser(t *testing.T) {
	db, mock := newMock(t)
	repo := postgres.NewRentalRepository(db)
	ctx := context.Background()

	t.Run("Active view filters and sorts by end date", func(t *testing.T) {
		mock.ExpectQuery(`WHERE r.user_id = \$1 AND r.status = ANY\(\$2\) ORDER BY r.end_date ASC`).
			WithArgs("cust-1", pq.Array([]string{"active", "return_scheduled"})).
			WillReturnRows(rentalRows(
				rentalValues(1, "RENT-00000001", "active"),
				rentalValues(2, "RENT-00000002", "return_scheduled"),
			))

		rentals, err := repo.ListByUser(ctx, "cust-1", domain.RentalViewActive)
		require.NoError(t, err)
		assert.Len(t, rentals, 2)
		assert.Equal(t, "RENT-00000002", rentals[1].RentalID)
	})

	t.Run("Completed view", func(t *testing.T) {
		mock.ExpectQuery(`ORDER BY r.end_date DESC`).
			WithArgs("cust-1", pq.Array([]string{"completed", "returned"})).
			WillReturnRows(rentalRows())

		rentals, err := repo.ListByUser(ctx, "cust-1", domain.RentalViewCompleted)
		require.NoError(t, err)
		assert.NotNil(t, rentals)
		assert.Empty(t, rentals)
	})

	t.Run("All rentals newest first", func(t *testing.T) {
		mock.ExpectQuery(`WHERE r.user_id = \$1 ORDER BY r.created_at DESC`).
			WithArgs("cust-1").
			WillReturnRows(rentalRows(rentalValues(1, "RENT-00000001", "cancelled")))

		rentals, err := repo.ListByUser(ctx, "cust-1", domain.RentalViewAll)
		require.NoError(t, err)
		assert.Len(t, rentals, 1)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRentalRepository_UpdateStatus(t *testing.T) {
	db, mock := newMock(t)
	repo := postgres.NewRentalRepository(db)
	ctx := context.Background()

	t.Run("Success bumps version", func(t *testing.T) {
		rental := &domain.Rental{ID: 3, RentalID: "RENT-1A2B3C4D", Status: domain.RentalStatusCancelled, Version: 1}
		mock.ExpectExec(`UPDATE rentals SET status = \$1, version = version \+ 1`).
			WithArgs("cancelled", sqlmock.AnyArg(), int64(3), int32(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.UpdateStatus(ctx, rental))
		assert.Equal(t, int32(2), rental.Version)
	})

	t.Run("Stale version conflicts", func(t *testing.T) {
		rental := &domain.Rental{ID: 3, RentalID: "RENT-1A2B3C4D", Status: domain.RentalStatusCancelled, Version: 1}
		mock.ExpectExec("UPDATE rentals").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateStatus(ctx, rental)
		assert.ErrorIs(t, err, domain.ErrConflict)
		assert.Equal(t, int32(1), rental.Version)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRentalRepository_ListActiveEndingOn(t *testing.T) {
	db, mock := newMock(t)
	repo := postgres.NewRentalRepository(db)

	day := time.Date(2026, 3, 6, 15, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`WHERE r.status = \$1 AND r.end_date = \$2`).
		WithArgs("active", "2026-03-06").
		WillReturnRows(rentalRows(rentalValues(1, "RENT-00000001", "active")))

	rentals, err := repo.ListActiveEndingOn(context.Background(), day)
	require.NoError(t, err)
	assert.Len(t, rentals, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"rentwear-backend/internal/domain"
	"rentwear-backend/internal/logger"
	"rentwear-backend/internal/repository"
)

const rentalColumns = `r.id, r.rental_id, r.user_id, r.product_id, r.start_date, r.end_date, r.total_days,
	r.rental_price, r.security_deposit, r.total_amount, r.payment_id, r.payment_order_id,
	r.status, r.version, r.created_at, r.updated_at`

const rentalSelect = `SELECT ` + rentalColumns + `, ` + productColumns + `
	FROM rentals r JOIN products p ON p.id = r.product_id`

func rentalDest(rt *domain.Rental) []any {
	return []any{&rt.ID, &rt.RentalID, &rt.UserID, &rt.ProductID, &rt.StartDate, &rt.EndDate, &rt.TotalDays,
		&rt.RentalPrice, &rt.SecurityDeposit, &rt.TotalAmount, &rt.PaymentID, &rt.PaymentOrderID,
		&rt.Status, &rt.Version, &rt.CreatedAt, &rt.UpdatedAt}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRental(s rowScanner) (*domain.Rental, error) {
	rt := &domain.Rental{Product: &domain.Product{}}
	if err := s.Scan(append(rentalDest(rt), productDest(rt.Product)...)...); err != nil {
		return nil, err
	}
	return rt, nil
}

type rentalRepository struct {
	db *sql.DB
}

func NewRentalRepository(db *sql.DB) repository.RentalRepository {
	return &rentalRepository{db: db}
}

// Create inserts rt. A taken rental_id yields repository.ErrIDCollision without
// raising an error, so an enclosing transaction stays usable for the retry.
func (r *rentalRepository) Create(ctx context.Context, rt *domain.Rental) error {
	query := `INSERT INTO rentals (rental_id, user_id, product_id, start_date, end_date, total_days,
	          rental_price, security_deposit, total_amount, payment_id, payment_order_id, status, version, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, 1, $13, $13)
	          ON CONFLICT (rental_id) DO NOTHING RETURNING id`
	now := time.Now()
	logger.DatabaseCall("INSERT", "rentals", "rentalID", rt.RentalID, "userID", rt.UserID)
	err := conn(ctx, r.db).QueryRowContext(ctx, query, rt.RentalID, rt.UserID, rt.ProductID, rt.StartDate, rt.EndDate, rt.TotalDays,
		rt.RentalPrice, rt.SecurityDeposit, rt.TotalAmount, rt.PaymentID, rt.PaymentOrderID, rt.Status, now).Scan(&rt.ID)
	logger.DatabaseResult("INSERT", 1, err, "rentalID", rt.RentalID)
	if err != nil {
		if _, ok := uniqueConstraint(err); ok || errors.Is(err, sql.ErrNoRows) {
			return repository.ErrIDCollision
		}
		return err
	}
	rt.Version = 1
	rt.CreatedAt = now
	rt.UpdatedAt = now
	return nil
}

func (r *rentalRepository) GetByID(ctx context.Context, id int64) (*domain.Rental, error) {
	rt, err := scanRental(conn(ctx, r.db).QueryRowContext(ctx, rentalSelect+` WHERE r.id = $1`, id))
	if err != nil {
		return nil, notFound(err, "rental")
	}
	return rt, nil
}

func (r *rentalRepository) GetByRentalID(ctx context.Context, rentalID string) (*domain.Rental, error) {
	logger.DatabaseCall("SELECT", "rentals", "rentalID", rentalID)
	rt, err := scanRental(conn(ctx, r.db).QueryRowContext(ctx, rentalSelect+` WHERE r.rental_id = $1`, rentalID))
	if err != nil {
		return nil, notFound(err, "rental")
	}
	return rt, nil
}

func (r *rentalRepository) ListByUser(ctx context.Context, userID string, view domain.RentalView) ([]domain.Rental, error) {
	query := rentalSelect + ` WHERE r.user_id = $1`
	args := []any{userID}

	if statuses := view.Statuses(); len(statuses) > 0 {
		names := make([]string, len(statuses))
		for i, s := range statuses {
			names[i] = string(s)
		}
		query += ` AND r.status = ANY($2)`
		args = append(args, pq.Array(names))
	}

	switch view {
	case domain.RentalViewActive:
		query += ` ORDER BY r.end_date ASC, r.id ASC`
	case domain.RentalViewCompleted:
		query += ` ORDER BY r.end_date DESC, r.id DESC`
	default:
		query += ` ORDER BY r.created_at DESC, r.id DESC`
	}

	logger.DatabaseCall("SELECT", "rentals", "userID", userID, "view", view)
	return r.list(ctx, query, args...)
}

func (r *rentalRepository) ListActiveEndingOn(ctx context.Context, day time.Time) ([]domain.Rental, error) {
	query := rentalSelect + ` WHERE r.status = $1 AND r.end_date = $2 ORDER BY r.id`
	return r.list(ctx, query, domain.RentalStatusActive, day.Format(time.DateOnly))
}

func (r *rentalRepository) list(ctx context.Context, query string, args ...any) ([]domain.Rental, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rentals := []domain.Rental{}
	for rows.Next() {
		rt, err := scanRental(rows)
		if err != nil {
			return nil, err
		}
		rentals = append(rentals, *rt)
	}
	return rentals, rows.Err()
}

func (r *rentalRepository) UpdateStatus(ctx context.Context, rt *domain.Rental) error {
	query := `UPDATE rentals SET status = $1, version = version + 1, updated_at = $2 WHERE id = $3 AND version = $4`
	now := time.Now()
	logger.DatabaseCall("UPDATE", "rentals", "rentalID", rt.RentalID, "status", rt.Status)
	result, err := conn(ctx, r.db).ExecContext(ctx, query, rt.Status, now, rt.ID, rt.Version)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err)
		return err
	}
	rows, err := result.RowsAffected()
	logger.DatabaseResult("UPDATE", rows, err, "rentalID", rt.RentalID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.Conflict("rental %s was modified concurrently", rt.RentalID)
	}
	rt.Version++
	rt.UpdatedAt = now
	return nil
}

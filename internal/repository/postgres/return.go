package postgres

import (
	"context"
	"database/sql"
	"errors"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"rentwear-backend/internal/domain"
	"rentwear-backend/internal/logger"
	"rentwear-backend/internal/repository"
)

const returnColumns = `t.id, t.return_id, t.rental_id, t.user_id, t.product_id, t.pickup_date, t.time_slot,
	t.additional_notes, t.status, t.delivery_partner_id, t.inspection, t.version, t.created_at, t.updated_at`

// returnSelect loads a return with its rental, product and, when a users row exists, customer contact.
const returnSelect = `SELECT ` + returnColumns + `, ` + rentalColumns + `, ` + productColumns + `,
	u.id, u.name, u.email, u.phone, u.role
	FROM returns t
	JOIN rentals r ON r.id = t.rental_id
	JOIN products p ON p.id = t.product_id
	LEFT JOIN users u ON u.id = t.user_id`

type returnRow struct {
	ret        domain.Return
	partner    sql.NullString
	inspection []byte
	rental     domain.Rental
	product    domain.Product
	customer   [5]sql.NullString
}

func (row *returnRow) dest() []any {
	t := &row.ret
	dest := []any{&t.ID, &t.ReturnID, &t.RentalID, &t.UserID, &t.ProductID, &t.PickupDate, &t.TimeSlot,
		&t.AdditionalNotes, &t.Status, &row.partner, &row.inspection, &t.Version, &t.CreatedAt, &t.UpdatedAt}
	dest = append(dest, rentalDest(&row.rental)...)
	dest = append(dest, productDest(&row.product)...)
	for i := range row.customer {
		dest = append(dest, &row.customer[i])
	}
	return dest
}

func (row *returnRow) build() (*domain.Return, error) {
	ret := row.ret
	if row.partner.Valid {
		partner := row.partner.String
		ret.DeliveryPartnerID = &partner
	}
	if len(row.inspection) > 0 {
		var insp domain.Inspection
		if err := json.Unmarshal(row.inspection, &insp); err != nil {
			return nil, fmt.Errorf("failed to decode inspection of return %s: %w", ret.ReturnID, err)
		}
		ret.Inspection = &insp
	}
	product := row.product
	rental := row.rental
	rental.Product = &product
	ret.Product = &product
	ret.Rental = &rental
	if row.customer[0].Valid {
		ret.Customer = &domain.User{
			ID:    row.customer[0].String,
			Name:  row.customer[1].String,
			Email: row.customer[2].String,
			Phone: row.customer[3].String,
			Role:  domain.Role(row.customer[4].String),
		}
	}
	return &ret, nil
}

func scanReturn(s rowScanner) (*domain.Return, error) {
	var row returnRow
	if err := s.Scan(row.dest()...); err != nil {
		return nil, err
	}
	return row.build()
}

type returnRepository struct {
	db *sql.DB
}

func NewReturnRepository(db *sql.DB) repository.ReturnRepository {
	return &returnRepository{db: db}
}

// Create inserts ret. A taken return_id yields repository.ErrIDCollision without
// raising an error, so an enclosing transaction stays usable for the retry.
func (r *returnRepository) Create(ctx context.Context, ret *domain.Return) error {
	logger.EnterMethod("returnRepository.Create", "returnID", ret.ReturnID, "rentalID", ret.RentalID)

	query := `INSERT INTO returns (return_id, rental_id, user_id, product_id, pickup_date, time_slot,
	          additional_notes, status, version, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 1, $9, $9)
	          ON CONFLICT (return_id) DO NOTHING RETURNING id`
	now := time.Now()
	logger.DatabaseCall("INSERT", "returns", "returnID", ret.ReturnID)
	err := conn(ctx, r.db).QueryRowContext(ctx, query, ret.ReturnID, ret.RentalID, ret.UserID, ret.ProductID,
		ret.PickupDate.Format(time.DateOnly), ret.TimeSlot, ret.AdditionalNotes, ret.Status, now).Scan(&ret.ID)
	logger.DatabaseResult("INSERT", 1, err, "returnID", ret.ReturnID)

	if err != nil {
		switch constraint, ok := uniqueConstraint(err); {
		case errors.Is(err, sql.ErrNoRows):
			err = repository.ErrIDCollision
		case ok && constraint == "returns_rental_id_key":
			err = domain.Conflict("return already scheduled for this rental")
		case ok:
			err = repository.ErrIDCollision
		}
		logger.ExitMethodWithError("returnRepository.Create", err)
		return err
	}

	ret.Version = 1
	ret.CreatedAt = now
	ret.UpdatedAt = now
	logger.ExitMethod("returnRepository.Create", "id", ret.ID)
	return nil
}

func (r *returnRepository) GetByReturnID(ctx context.Context, returnID string) (*domain.Return, error) {
	logger.DatabaseCall("SELECT", "returns", "returnID", returnID)
	ret, err := scanReturn(conn(ctx, r.db).QueryRowContext(ctx, returnSelect+` WHERE t.return_id = $1`, returnID))
	if err != nil {
		return nil, notFound(err, "return")
	}
	return ret, nil
}

func (r *returnRepository) GetByRentalID(ctx context.Context, rentalID int64) (*domain.Return, error) {
	ret, err := scanReturn(conn(ctx, r.db).QueryRowContext(ctx, returnSelect+` WHERE t.rental_id = $1`, rentalID))
	if err != nil {
		return nil, notFound(err, "return")
	}
	return ret, nil
}

func (r *returnRepository) Update(ctx context.Context, ret *domain.Return) error {
	var inspection any
	if ret.Inspection != nil {
		data, err := json.Marshal(ret.Inspection)
		if err != nil {
			return fmt.Errorf("failed to encode inspection: %w", err)
		}
		inspection = string(data)
	}

	query := `UPDATE returns SET status = $1, inspection = $2, version = version + 1, updated_at = $3
	          WHERE id = $4 AND version = $5`
	now := time.Now()
	logger.DatabaseCall("UPDATE", "returns", "returnID", ret.ReturnID, "status", ret.Status)
	result, err := conn(ctx, r.db).ExecContext(ctx, query, ret.Status, inspection, now, ret.ID, ret.Version)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err)
		return err
	}
	rows, err := result.RowsAffected()
	logger.DatabaseResult("UPDATE", rows, err, "returnID", ret.ReturnID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.Conflict("return %s was modified concurrently", ret.ReturnID)
	}
	ret.Version++
	ret.UpdatedAt = now
	return nil
}

func (r *returnRepository) Assign(ctx context.Context, returnID, partnerID string) error {
	query := `UPDATE returns SET delivery_partner_id = $1, version = version + 1, updated_at = $2
	          WHERE return_id = $3 AND delivery_partner_id IS NULL`
	logger.DatabaseCall("UPDATE", "returns", "returnID", returnID, "partnerID", partnerID)
	result, err := conn(ctx, r.db).ExecContext(ctx, query, partnerID, time.Now(), returnID)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err)
		return err
	}
	rows, err := result.RowsAffected()
	logger.DatabaseResult("UPDATE", rows, err, "returnID", returnID)
	if err != nil {
		return err
	}
	if rows == 1 {
		return nil
	}

	// Nothing claimed: either the return is missing or somebody already holds it.
	var current sql.NullString
	err = conn(ctx, r.db).QueryRowContext(ctx, `SELECT delivery_partner_id FROM returns WHERE return_id = $1`, returnID).Scan(&current)
	if err != nil {
		return notFound(err, "return")
	}
	if current.Valid && current.String == partnerID {
		return nil
	}
	return domain.Conflict("return already assigned to another delivery partner")
}

func (r *returnRepository) ListByUser(ctx context.Context, userID string) ([]domain.Return, error) {
	logger.DatabaseCall("SELECT", "returns", "userID", userID)
	return r.list(ctx, returnSelect+` WHERE t.user_id = $1 ORDER BY t.created_at DESC, t.id DESC`, userID)
}

func (r *returnRepository) ListPending(ctx context.Context, partnerID string) ([]domain.Return, error) {
	query := returnSelect + ` WHERE t.status = $1 AND (t.delivery_partner_id IS NULL OR t.delivery_partner_id = $2)
	          ORDER BY t.pickup_date ASC, t.id ASC`
	logger.DatabaseCall("SELECT", "returns", "pendingFor", partnerID)
	return r.list(ctx, query, domain.ReturnStatusScheduled, partnerID)
}

func (r *returnRepository) ListCompletedByPartner(ctx context.Context, partnerID string) ([]domain.Return, error) {
	statuses := pq.Array([]string{
		string(domain.ReturnStatusPickedUp),
		string(domain.ReturnStatusInspected),
		string(domain.ReturnStatusCompleted),
	})
	query := returnSelect + ` WHERE t.delivery_partner_id = $1 AND t.status = ANY($2) ORDER BY t.updated_at DESC, t.id DESC`
	logger.DatabaseCall("SELECT", "returns", "handledBy", partnerID)
	return r.list(ctx, query, partnerID, statuses)
}

func (r *returnRepository) ListScheduledOn(ctx context.Context, day time.Time) ([]domain.Return, error) {
	query := returnSelect + ` WHERE t.status = $1 AND t.pickup_date = $2 ORDER BY t.id`
	return r.list(ctx, query, domain.ReturnStatusScheduled, day.Format(time.DateOnly))
}

func (r *returnRepository) list(ctx context.Context, query string, args ...any) ([]domain.Return, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	returns := []domain.Return{}
	for rows.Next() {
		ret, err := scanReturn(rows)
		if err != nil {
			return nil, err
		}
		returns = append(returns, *ret)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return returns, nil
}

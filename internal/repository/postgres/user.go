package postgres

import (
	"context"
	"database/sql"

	"rentwear-backend/internal/domain"
	"rentwear-backend/internal/logger"
	"rentwear-backend/internal/repository"
)

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	u := &domain.User{}
	query := `SELECT id, name, email, phone, role FROM users WHERE id = $1`
	logger.DatabaseCall("SELECT", "users", "userID", id)
	err := conn(ctx, r.db).QueryRowContext(ctx, query, id).Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.Role)
	if err != nil {
		return nil, notFound(err, "user")
	}
	return u, nil
}

package postgres

import (
	"context"
	"database/sql"

	"rentwear-backend/internal/domain"
	"rentwear-backend/internal/logger"
	"rentwear-backend/internal/repository"
)

const productColumns = `p.id, p.retailer_id, p.name, p.category, p.image_url, p.rental_price_per_day, p.security_deposit, p.available`

func productDest(p *domain.Product) []any {
	return []any{&p.ID, &p.RetailerID, &p.Name, &p.Category, &p.ImageURL, &p.RentalPricePerDay, &p.SecurityDeposit, &p.Available}
}

type productRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) repository.ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	p := &domain.Product{}
	query := `SELECT ` + productColumns + ` FROM products p WHERE p.id = $1`
	logger.DatabaseCall("SELECT", "products", "productID", id)
	if err := conn(ctx, r.db).QueryRowContext(ctx, query, id).Scan(productDest(p)...); err != nil {
		return nil, notFound(err, "product")
	}
	return p, nil
}

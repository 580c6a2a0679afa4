package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/procurex/procurement-backend/internal/domain/product"
	"github.com/procurex/procurement-backend/internal/domain/values"
	"github.com/procurex/procurement-backend/internal/store"
)

type ProductRepository struct {
	db *pgxpool.Pool
}

func NewProductRepository(db *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{db: db}
}

const productColumns = `
	id, vendor_id, name, description, price, currency,
	min_order_qty, max_order_qty, stock_count, lead_time_days,
	active, created_at, updated_at`

func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.db.Exec(ctx, query,
		p.ID, p.VendorID, p.Name, p.Description, p.Price.Amount(), p.Price.Currency(),
		p.MinOrderQty, p.MaxOrderQty, p.StockCount, p.LeadTimeDays,
		p.Active, p.CreatedAt, p.UpdatedAt,
	)
	return wrapError(err, "create product")
}

func (r *ProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*product.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	return scanProduct(r.db.QueryRow(ctx, query, id))
}

func (r *ProductRepository) Update(ctx context.Context, p *product.Product) error {
	query := `
		UPDATE products SET
			name = $1, description = $2, price = $3, currency = $4,
			min_order_qty = $5, max_order_qty = $6, stock_count = $7,
			lead_time_days = $8, active = $9, updated_at = $10
		WHERE id = $11`

	tag, err := r.db.Exec(ctx, query,
		p.Name, p.Description, p.Price.Amount(), p.Price.Currency(),
		p.MinOrderQty, p.MaxOrderQty, p.StockCount, p.LeadTimeDays,
		p.Active, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return wrapError(err, "update product")
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *ProductRepository) ListByVendor(ctx context.Context, vendorID uuid.UUID) ([]*product.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE vendor_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, vendorID)
	if err != nil {
		return nil, wrapError(err, "list products by vendor")
	}
	defer rows.Close()

	var products []*product.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, wrapError(rows.Err(), "list products by vendor")
}

func scanProduct(row rowScanner) (*product.Product, error) {
	var (
		p        product.Product
		price    decimal.Decimal
		currency string
	)

	err := row.Scan(
		&p.ID, &p.VendorID, &p.Name, &p.Description, &price, &currency,
		&p.MinOrderQty, &p.MaxOrderQty, &p.StockCount, &p.LeadTimeDays,
		&p.Active, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, wrapError(err, "scan product")
	}

	p.Price, err = values.NewMoney(price, currency)
	if err != nil {
		return nil, fmt.Errorf("stored product price: %w", err)
	}

	return &p, nil
}

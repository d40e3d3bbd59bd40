package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/SergioZanela/ecommerce-project/internal/catalog/app"
	"github.com/SergioZanela/ecommerce-project/internal/catalog/domain"
)

type ProductRepo struct {
	db *sql.DB
}

func NewProductRepo(db *sql.DB) *ProductRepo {
	return &ProductRepo{db: db}
}

const productColumns = `id, store_id, name, description, price, is_active, created_at`

func (r *ProductRepo) Create(ctx context.Context, p domain.Product) (domain.Product, error) {
	storeUUID, err := uuid.Parse(p.StoreID)
	if err != nil {
		return domain.Product{}, fmt.Errorf("invalid store UUID: %w", err)
	}

	row := r.db.QueryRowContext(ctx, `
		INSERT INTO products (id, store_id, name, description, price, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+productColumns,
		uuid.New(), storeUUID, p.Name, p.Description, p.Price, p.Active,
	)
	return scanProduct(row)
}

func (r *ProductRepo) Get(ctx context.Context, id string) (domain.Product, error) {
	productUUID, err := uuid.Parse(id)
	if err != nil {
		return domain.Product{}, app.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+productColumns+` FROM products WHERE id = $1`,
		productUUID,
	)

	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, app.ErrNotFound
	}
	return p, err
}

func (r *ProductRepo) List(ctx context.Context, storeID string, limit int) ([]domain.Product, error) {
	storeUUID, err := uuid.Parse(storeID)
	if err != nil {
		return nil, fmt.Errorf("invalid store UUID: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+productColumns+` FROM products
		WHERE store_id = $1 AND is_active
		ORDER BY created_at DESC
		LIMIT $2`,
		storeUUID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

func (r *ProductRepo) Lookup(ctx context.Context, ids []string) ([]domain.Product, error) {
	// Unparseable ids are skipped, not errors: a stale cart entry must
	// degrade to an omitted line.
	uuids := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		u, err := uuid.Parse(id)
		if err != nil {
			continue
		}
		uuids = append(uuids, u)
	}
	if len(uuids) == 0 {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+productColumns+` FROM products
		WHERE id = ANY($1) AND is_active`,
		pq.Array(uuids),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to look up products: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (domain.Product, error) {
	var (
		p                  domain.Product
		productID, storeID uuid.UUID
	)
	if err := row.Scan(&productID, &storeID, &p.Name, &p.Description, &p.Price, &p.Active, &p.CreatedAt); err != nil {
		return domain.Product{}, err
	}
	p.ID = productID.String()
	p.StoreID = storeID.String()
	return p, nil
}

func scanProducts(rows *sql.Rows) ([]domain.Product, error) {
	var out []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/SergioZanela/ecommerce-project/internal/order/app"
	"github.com/SergioZanela/ecommerce-project/internal/order/domain"
)

type OrderRepo struct {
	db *sql.DB
}

func NewOrderRepo(db *sql.DB) *OrderRepo {
	return &OrderRepo{db: db}
}

func (r *OrderRepo) execTX(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("tx err: %w; rollback err: %v", err, rbErr)
		}
		return err
	}

	return tx.Commit()
}

func (r *OrderRepo) CreateOrderTx(ctx context.Context, order domain.Order) (domain.Order, error) {
	buyerUUID, err := uuid.Parse(order.BuyerID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("invalid buyer UUID: %w", err)
	}

	var created domain.Order

	err = r.execTX(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `
			INSERT INTO orders (buyer_id, email_sent)
			VALUES ($1, FALSE)
			RETURNING id, created_at`,
			buyerUUID,
		)

		created = domain.Order{BuyerID: order.BuyerID}
		if err := row.Scan(&created.ID, &created.CreatedAt); err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		for i, item := range order.Items {
			productUUID, err := uuid.Parse(item.ProductID)
			if err != nil {
				return fmt.Errorf("item %d: invalid product UUID: %w", i, err)
			}

			var itemID int64
			err = tx.QueryRowContext(ctx, `
				INSERT INTO order_items (order_id, product_id, quantity, product_name_snapshot, price_snapshot)
				VALUES ($1, $2, $3, $4, $5)
				RETURNING id`,
				created.ID, productUUID, item.Quantity, item.ProductNameSnapshot, item.PriceSnapshot,
			).Scan(&itemID)
			if err != nil {
				return fmt.Errorf("failed to insert item %d: %w", i, err)
			}

			item.ID = itemID
			item.OrderID = created.ID
			created.Items = append(created.Items, item)
		}

		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}
	return created, nil
}

func (r *OrderRepo) Get(ctx context.Context, orderID int64) (domain.Order, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, buyer_id, email_sent, created_at FROM orders WHERE id = $1`,
		orderID,
	)

	order, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, app.ErrNotFound
	}
	if err != nil {
		return domain.Order{}, err
	}

	itemsByOrder, err := r.loadItems(ctx, []int64{order.ID})
	if err != nil {
		return domain.Order{}, err
	}
	order.Items = itemsByOrder[order.ID]
	return order, nil
}

func (r *OrderRepo) ListByBuyer(ctx context.Context, buyerID string, limit int) ([]domain.Order, error) {
	buyerUUID, err := uuid.Parse(buyerID)
	if err != nil {
		return nil, fmt.Errorf("invalid buyer UUID: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, buyer_id, email_sent, created_at FROM orders
		WHERE buyer_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`,
		buyerUUID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var (
		orders []domain.Order
		ids    []int64
	)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
		ids = append(ids, order.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, nil
	}

	itemsByOrder, err := r.loadItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = itemsByOrder[orders[i].ID]
	}
	return orders, nil
}

func (r *OrderRepo) MarkEmailSent(ctx context.Context, orderID int64) error {
	// The flag only ever moves false -> true; re-marking is a no-op.
	_, err := r.db.ExecContext(ctx, `
		UPDATE orders SET email_sent = TRUE WHERE id = $1 AND NOT email_sent`,
		orderID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark order %d email_sent: %w", orderID, err)
	}
	return nil
}

func (r *OrderRepo) HasPurchased(ctx context.Context, buyerID, productID string) (bool, error) {
	buyerUUID, err := uuid.Parse(buyerID)
	if err != nil {
		return false, nil
	}
	productUUID, err := uuid.Parse(productID)
	if err != nil {
		return false, nil
	}

	var purchased bool
	err = r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM order_items oi
			JOIN orders o ON o.id = oi.order_id
			WHERE o.buyer_id = $1 AND oi.product_id = $2
		)`,
		buyerUUID, productUUID,
	).Scan(&purchased)
	if err != nil {
		return false, fmt.Errorf("failed to check purchase history: %w", err)
	}
	return purchased, nil
}

func (r *OrderRepo) loadItems(ctx context.Context, orderIDs []int64) (map[int64][]domain.OrderItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, quantity, product_name_snapshot, price_snapshot
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY id`,
		pq.Array(orderIDs),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load order items: %w", err)
	}
	defer rows.Close()

	out := make(map[int64][]domain.OrderItem)
	for rows.Next() {
		var (
			item      domain.OrderItem
			productID uuid.UUID
		)
		if err := rows.Scan(&item.ID, &item.OrderID, &productID, &item.Quantity, &item.ProductNameSnapshot, &item.PriceSnapshot); err != nil {
			return nil, err
		}
		item.ProductID = productID.String()
		out[item.OrderID] = append(out[item.OrderID], item)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (domain.Order, error) {
	var (
		order     domain.Order
		buyerUUID uuid.UUID
	)
	if err := row.Scan(&order.ID, &buyerUUID, &order.EmailSent, &order.CreatedAt); err != nil {
		return domain.Order{}, err
	}
	order.BuyerID = buyerUUID.String()
	return order, nil
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domitem "github.com/no0e/Projet2A-Ub-EJR-Eats/internal/domain/item"
	domain "github.com/no0e/Projet2A-Ub-EJR-Eats/internal/domain/order"
)

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

func (r *OrderRepository) Insert(ctx context.Context, o *domain.Order) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		return insertOrderTx(ctx, tx, o)
	})
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	var o domain.Order
	err := r.pool.QueryRow(ctx, `
		SELECT id, customer, driver, address, total, created_at
		FROM orders WHERE id = $1`, id,
	).Scan(&o.ID, &o.Customer, &o.Driver, &o.Address, &o.Total, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: query order: %w", err)
	}

	lines, err := r.loadLines(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Lines = lines
	return &o, nil
}

func (r *OrderRepository) FindByCustomer(ctx context.Context, customerName string) ([]*domain.Order, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, customer, driver, address, total, created_at
		FROM orders WHERE customer = $1 ORDER BY created_at`, customerName)
	if err != nil {
		return nil, fmt.Errorf("postgres: query orders: %w", err)
	}
	defer rows.Close()

	var out []*domain.Order
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.ID, &o.Customer, &o.Driver, &o.Address, &o.Total, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("postgres: scan order: %w", err)
		}
		out = append(out, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, o := range out {
		lines, err := r.loadLines(ctx, o.ID)
		if err != nil {
			return nil, err
		}
		o.Lines = lines
	}
	return out, nil
}

func (r *OrderRepository) AssignDriver(ctx context.Context, orderID, driver string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE orders SET driver = $2 WHERE id = $1`, orderID, driver)
	if err != nil {
		return fmt.Errorf("postgres: assign driver: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *OrderRepository) loadLines(ctx context.Context, orderID string) ([]domain.Line, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT item_id, item_name, quantity
		FROM order_lines WHERE order_id = $1 ORDER BY item_name`, orderID)
	if err != nil {
		return nil, fmt.Errorf("postgres: query order lines: %w", err)
	}
	defer rows.Close()

	var lines []domain.Line
	for rows.Next() {
		var l domain.Line
		if err := rows.Scan(&l.ItemID, &l.ItemName, &l.Quantity); err != nil {
			return nil, fmt.Errorf("postgres: scan order line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func insertOrderTx(ctx context.Context, tx pgx.Tx, o *domain.Order) error {
	if _, err := tx.Exec(ctx, `
		INSERT INTO orders (id, customer, driver, address, total, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		o.ID, o.Customer, o.Driver, o.Address, o.Total, o.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	for _, l := range o.Lines {
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_lines (order_id, item_id, item_name, quantity)
			VALUES ($1, $2, $3, $4)`,
			o.ID, l.ItemID, l.ItemName, l.Quantity,
		); err != nil {
			return fmt.Errorf("insert order line: %w", err)
		}
	}
	return nil
}

// CheckoutStore runs the order insert and every stock decrement in one
// transaction. Each decrement is a conditional UPDATE whose affected-row
// count carries the stock check; any line that cannot be covered rolls the
// whole order back.
type CheckoutStore struct {
	pool *pgxpool.Pool
}

func NewCheckoutStore(pool *pgxpool.Pool) *CheckoutStore {
	return &CheckoutStore{pool: pool}
}

func (s *CheckoutStore) CreateOrder(ctx context.Context, o *domain.Order) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		for _, l := range o.Lines {
			tag, err := tx.Exec(ctx, `
				UPDATE items SET stock = stock - $2, updated_at = NOW()
				WHERE id = $1 AND stock >= $2`,
				l.ItemID, l.Quantity,
			)
			if err != nil {
				return fmt.Errorf("decrement stock for %s: %w", l.ItemName, err)
			}
			if tag.RowsAffected() == 0 {
				return fmt.Errorf("%w: %s", domitem.ErrInsufficientStock, l.ItemName)
			}
		}
		return insertOrderTx(ctx, tx, o)
	})
}

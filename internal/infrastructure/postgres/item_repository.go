package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domain "github.com/no0e/Projet2A-Ub-EJR-Eats/internal/domain/item"
)

const uniqueViolation = "23505"

type ItemRepository struct {
	pool *pgxpool.Pool
}

func NewItemRepository(pool *pgxpool.Pool) *ItemRepository {
	return &ItemRepository{pool: pool}
}

func (r *ItemRepository) Create(ctx context.Context, it *domain.Item) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO items (id, name, price, category, stock, exposed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		it.ID, it.Name, int64(it.Price), string(it.Category), it.Stock, it.Exposed, it.CreatedAt, it.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrNameTaken
		}
		return fmt.Errorf("postgres: insert item: %w", err)
	}
	return nil
}

func (r *ItemRepository) Update(ctx context.Context, it *domain.Item) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE items
		SET name = $2, price = $3, category = $4, stock = $5, exposed = $6, updated_at = $7
		WHERE id = $1`,
		it.ID, it.Name, int64(it.Price), string(it.Category), it.Stock, it.Exposed, it.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrNameTaken
		}
		return fmt.Errorf("postgres: update item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ItemRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres: delete item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ItemRepository) FindByID(ctx context.Context, id string) (*domain.Item, error) {
	return r.scanOne(r.pool.QueryRow(ctx, `
		SELECT id, name, price, category, stock, exposed, created_at, updated_at
		FROM items WHERE id = $1`, id))
}

func (r *ItemRepository) FindByName(ctx context.Context, name string) (*domain.Item, error) {
	return r.scanOne(r.pool.QueryRow(ctx, `
		SELECT id, name, price, category, stock, exposed, created_at, updated_at
		FROM items WHERE LOWER(name) = $1`, domain.NormalizeName(name)))
}

func (r *ItemRepository) FindAll(ctx context.Context) ([]*domain.Item, error) {
	return r.list(ctx, `
		SELECT id, name, price, category, stock, exposed, created_at, updated_at
		FROM items ORDER BY name`)
}

func (r *ItemRepository) FindExposed(ctx context.Context) ([]*domain.Item, error) {
	return r.list(ctx, `
		SELECT id, name, price, category, stock, exposed, created_at, updated_at
		FROM items WHERE exposed ORDER BY name`)
}

// DecrementStock is a single conditional UPDATE; the WHERE clause carries the
// stock check, so the row either covers the quantity and is decremented or is
// left untouched.
func (r *ItemRepository) DecrementStock(ctx context.Context, id string, qty int) (bool, error) {
	if qty <= 0 {
		return false, domain.ErrInvalidQuantity
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE items SET stock = stock - $2, updated_at = NOW()
		WHERE id = $1 AND stock >= $2`,
		id, qty,
	)
	if err != nil {
		return false, fmt.Errorf("postgres: decrement stock: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *ItemRepository) list(ctx context.Context, query string) ([]*domain.Item, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("postgres: query items: %w", err)
	}
	defer rows.Close()

	var out []*domain.Item
	for rows.Next() {
		it, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *ItemRepository) scanOne(row rowScanner) (*domain.Item, error) {
	var (
		it       domain.Item
		price    int64
		category string
	)
	err := row.Scan(&it.ID, &it.Name, &price, &category, &it.Stock, &it.Exposed, &it.CreatedAt, &it.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: scan item: %w", err)
	}
	it.Price = domain.Price(price)
	it.Category = domain.Category(category)
	return &it, nil
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domain "github.com/no0e/Projet2A-Ub-EJR-Eats/internal/domain/delivery"
)

type DeliveryRepository struct {
	pool *pgxpool.Pool
}

func NewDeliveryRepository(pool *pgxpool.Pool) *DeliveryRepository {
	return &DeliveryRepository{pool: pool}
}

func (r *DeliveryRepository) Insert(ctx context.Context, d *domain.Delivery) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO deliveries (id, driver, duration_min, order_ids, stops, accepted, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		d.ID, d.Driver, d.DurationMin, d.OrderIDs, d.Stops, d.Accepted, d.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert delivery: %w", err)
	}
	return nil
}

func (r *DeliveryRepository) FindByID(ctx context.Context, id string) (*domain.Delivery, error) {
	var d domain.Delivery
	err := r.pool.QueryRow(ctx, `
		SELECT id, driver, duration_min, order_ids, stops, accepted, created_at
		FROM deliveries WHERE id = $1`, id,
	).Scan(&d.ID, &d.Driver, &d.DurationMin, &d.OrderIDs, &d.Stops, &d.Accepted, &d.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: query delivery: %w", err)
	}
	return &d, nil
}

func (r *DeliveryRepository) ListUnaccepted(ctx context.Context) ([]*domain.Delivery, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, driver, duration_min, order_ids, stops, accepted, created_at
		FROM deliveries WHERE NOT accepted ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("postgres: query deliveries: %w", err)
	}
	defer rows.Close()

	var out []*domain.Delivery
	for rows.Next() {
		var d domain.Delivery
		if err := rows.Scan(&d.ID, &d.Driver, &d.DurationMin, &d.OrderIDs, &d.Stops, &d.Accepted, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("postgres: scan delivery: %w", err)
		}
		out = append(out, &d)
	}
	return out, rows.Err()
}

// AcceptIfUnaccepted claims the delivery with one conditional UPDATE; the
// accepted=false guard in the WHERE clause makes the row transition at most
// once no matter how many drivers race for it.
func (r *DeliveryRepository) AcceptIfUnaccepted(ctx context.Context, id, driver string, durationMin int) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE deliveries SET accepted = TRUE, driver = $2, duration_min = $3
		WHERE id = $1 AND accepted = FALSE`,
		id, driver, durationMin,
	)
	if err != nil {
		return false, fmt.Errorf("postgres: accept delivery: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

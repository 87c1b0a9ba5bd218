// Package order holds the checkout domain: the order model, the builder that
// turns a cart into an immutable order, and the PostgreSQL repository standing
// behind the remote persistence contract.
package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound = errors.New("order not found")
	// ErrStaleTransition means the requested status does not move the order
	// forward along the fulfillment sequence.
	ErrStaleTransition = errors.New("status transition is not forward")
	// ErrRemoteWrite / ErrRemoteRead classify persistence failures. The
	// repository never retries; retry policy belongs to the caller, and the
	// cart is left intact so checkout can be re-attempted.
	ErrRemoteWrite = errors.New("order write failed")
	ErrRemoteRead  = errors.New("order read failed")
)

type Repository interface {
	// Create durably stores the order and returns it with the server-assigned
	// timestamp. Retrying a checkout with the same client key returns the
	// already-committed order instead of writing a duplicate.
	Create(ctx context.Context, o *Order) (*Order, error)
	GetByID(ctx context.Context, id string) (*Order, error)
	// ListByAccount returns the account's orders newest first.
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]Order, error)
	// UpdateStatus applies a forward-only status change; the fulfillment side
	// is the only caller.
	UpdateStatus(ctx context.Context, id string, status Status) error
	CountByAccount(ctx context.Context, accountID string) (int, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) Create(ctx context.Context, o *Order) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteWrite, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// ON CONFLICT on the client key makes a retried checkout a no-op insert;
	// the committed row is fetched and returned either way.
	tag, err := tx.Exec(ctx, `
		INSERT INTO orders (id, account_id, total, service_type, table_number,
		                    special_request, status, client_key, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,NOW())
		ON CONFLICT (client_key) DO NOTHING
	`, o.ID, o.AccountID, o.Total, o.ServiceType, o.TableNumber,
		o.SpecialRequest, o.Status, o.ClientKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteWrite, err)
	}

	if tag.RowsAffected() > 0 {
		for _, it := range o.Items {
			if _, err := tx.Exec(ctx, `
				INSERT INTO order_items (id, order_id, menu_item_id, name, price, quantity, customization)
				VALUES ($1,$2,$3,$4,$5,$6,$7)
			`, it.ID, o.ID, it.MenuItemID, it.Name, it.Price, it.Quantity, it.Customization); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrRemoteWrite, err)
			}
		}
	}

	var committed Order
	if err := tx.QueryRow(ctx, `
		SELECT id, account_id, total::text, service_type, table_number,
		       special_request, status, client_key, created_at
		FROM orders WHERE client_key=$1
	`, o.ClientKey).Scan(&committed.ID, &committed.AccountID, &committed.Total,
		&committed.ServiceType, &committed.TableNumber, &committed.SpecialRequest,
		&committed.Status, &committed.ClientKey, &committed.CreatedAt); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteWrite, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteWrite, err)
	}

	items, err := r.getItems(ctx, committed.ID)
	if err != nil {
		return nil, err
	}
	committed.Items = items
	return &committed, nil
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var o Order
	err := r.db.QueryRow(ctx, `
		SELECT id, account_id, total::text, service_type, table_number,
		       special_request, status, client_key, created_at
		FROM orders WHERE id=$1
	`, id).Scan(&o.ID, &o.AccountID, &o.Total, &o.ServiceType, &o.TableNumber,
		&o.SpecialRequest, &o.Status, &o.ClientKey, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrRemoteRead, err)
	}
	items, err := r.getItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return &o, nil
}

func (r *PGRepo) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.db.Query(ctx, `
		SELECT id, account_id, total::text, service_type, table_number,
		       special_request, status, client_key, created_at
		FROM orders WHERE account_id=$1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, accountID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteRead, err)
	}
	defer rows.Close()
	var out []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.AccountID, &o.Total, &o.ServiceType, &o.TableNumber,
			&o.SpecialRequest, &o.Status, &o.ClientKey, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRemoteRead, err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteRead, err)
	}
	return out, nil
}

func (r *PGRepo) UpdateStatus(ctx context.Context, id string, status Status) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var current Status
	if err := r.db.QueryRow(ctx, `SELECT status FROM orders WHERE id=$1`, id).Scan(&current); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("%w: %v", ErrRemoteRead, err)
	}
	if !CanTransition(current, status) {
		return ErrStaleTransition
	}

	// The guard is repeated in the WHERE clause so a concurrent forward move
	// cannot be undone between the read and the write.
	tag, err := r.db.Exec(ctx, `
		UPDATE orders SET status = $2
		WHERE id = $1 AND status = $3
	`, id, status, current)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRemoteWrite, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrStaleTransition
	}
	return nil
}

func (r *PGRepo) CountByAccount(ctx context.Context, accountID string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var n int
	if err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM orders WHERE account_id=$1
	`, accountID).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRemoteRead, err)
	}
	return n, nil
}

func (r *PGRepo) getItems(ctx context.Context, orderID string) ([]LineItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, order_id, menu_item_id, name, price::text, quantity, customization
		FROM order_items WHERE order_id=$1
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteRead, err)
	}
	defer rows.Close()
	var items []LineItem
	for rows.Next() {
		var it LineItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.MenuItemID, &it.Name, &it.Price, &it.Quantity, &it.Customization); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRemoteRead, err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteRead, err)
	}
	return items, nil
}

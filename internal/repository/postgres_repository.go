package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/novamart/storefront/internal/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

// SaveCheckout inserts the order, its lines, the payment and the outbox event in one
// transaction. Nothing is visible unless all of them commit.
func (r *PostgresRepository) SaveCheckout(ctx context.Context, rec *CheckoutRecord) (err error) {
	if len(rec.Lines) == 0 {
		return ErrEmptyCheckout
	}
	if rec.Payment == nil {
		return ErrMissingPayment
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	o := rec.Order
	_, err = tx.ExecContext(ctx,
		`INSERT INTO orders (id, user_id, total_amount, currency, status, payment_method, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		o.ID, o.UserID, o.TotalAmount, o.Currency, o.Status, o.PaymentMethod, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateOrder
		}
		return fmt.Errorf("insert order: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO order_items (id, order_id, product_id, product_name, quantity, unit_price, subtotal, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`)
	if err != nil {
		return fmt.Errorf("prepare order items: %w", err)
	}
	defer stmt.Close()
	for _, l := range rec.Lines {
		if _, err = stmt.ExecContext(ctx, l.ID, o.ID, l.ProductID, l.ProductName, l.Quantity, l.UnitPrice, l.Subtotal, l.CreatedAt); err != nil {
			return fmt.Errorf("insert order item %d: %w", l.ProductID, err)
		}
	}

	p := rec.Payment
	_, err = tx.ExecContext(ctx,
		`INSERT INTO payments (id, order_id, amount, method, method_name, status, transaction_id, processed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, o.ID, p.Amount, p.Method, p.MethodName, p.Status, p.TransactionID, p.ProcessedAt)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}

	if ev := rec.Event; ev != nil {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO outbox_events (aggregate_id, event_type, payload) VALUES ($1, $2, $3)`,
			ev.AggregateID, ev.EventType, ev.Payload)
		if err != nil {
			return fmt.Errorf("insert outbox event: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit checkout: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	query := `SELECT id, user_id, total_amount, currency, status, payment_method, created_at, updated_at
	          FROM orders WHERE id = $1`

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, orderID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		// malformed uuid
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "22P02" {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("query order by id: %w", err)
	}

	if order.Lines, err = r.orderLines(ctx, order.ID); err != nil {
		return nil, err
	}
	if order.Payment, err = r.orderPayment(ctx, order.ID); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *PostgresRepository) orderLines(ctx context.Context, orderID string) ([]domain.OrderLine, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, order_id, product_id, product_name, quantity, unit_price, subtotal, created_at
		 FROM order_items WHERE order_id = $1 ORDER BY created_at, product_id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	var lines []domain.OrderLine
	for rows.Next() {
		var l domain.OrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.ProductName, &l.Quantity, &l.UnitPrice, &l.Subtotal, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return lines, nil
}

func (r *PostgresRepository) orderPayment(ctx context.Context, orderID string) (*domain.PaymentRecord, error) {
	var p domain.PaymentRecord
	err := r.db.QueryRowContext(ctx,
		`SELECT id, order_id, amount, method, method_name, status, transaction_id, processed_at
		 FROM payments WHERE order_id = $1`, orderID).
		Scan(&p.ID, &p.OrderID, &p.Amount, &p.Method, &p.MethodName, &p.Status, &p.TransactionID, &p.ProcessedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query payment: %w", err)
	}
	return &p, nil
}

func (r *PostgresRepository) ListOrdersByUserID(ctx context.Context, userID string) ([]*domain.Order, error) {
	query := `SELECT id, user_id, total_amount, currency, status, payment_method, created_at, updated_at
	          FROM orders WHERE user_id = $1 ORDER BY created_at DESC, id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query orders by user id: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return orders, nil
}

func scanOrder(s interface{ Scan(...any) error }) (*domain.Order, error) {
	var o domain.Order
	err := s.Scan(&o.ID, &o.UserID, &o.TotalAmount, &o.Currency, &o.Status, &o.PaymentMethod, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *PostgresRepository) CreateNotification(ctx context.Context, n *domain.Notification) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO notifications (id, user_id, order_id, message, delivery_method, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		n.ID, n.UserID, n.OrderID, n.Message, n.DeliveryMethod, n.Status, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListNotifications(ctx context.Context, userID string, limit int) ([]*domain.Notification, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, order_id, message, delivery_method, status, created_at
		 FROM notifications WHERE user_id = $1 ORDER BY created_at DESC, id LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}
	defer rows.Close()

	var out []*domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.OrderID, &n.Message, &n.DeliveryMethod, &n.Status, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		out = append(out, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, aggregate_id, event_type, payload, created_at
		 FROM outbox_events WHERE processed_at IS NULL ORDER BY id LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query outbox events: %w", err)
	}
	defer rows.Close()

	var events []*OutboxEvent
	for rows.Next() {
		var ev OutboxEvent
		if err := rows.Scan(&ev.ID, &ev.AggregateID, &ev.EventType, &ev.Payload, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outbox event: %w", err)
		}
		events = append(events, &ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return events, nil
}

func (r *PostgresRepository) MarkEventAsProcessed(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE outbox_events SET processed_at = $2 WHERE id = $1 AND processed_at IS NULL`, id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("mark outbox event %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark outbox event %d: %w", id, err)
	}
	if n == 0 {
		return ErrUnknownOutboxRow
	}
	return nil
}

package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"curryhouse/internal/domain"
)

type OrderRepositoryInterface interface {
	CountCreatedSince(ctx context.Context, since time.Time) (int, error)
	CreateOrder(ctx context.Context, o domain.Order) (int, error)
	GetByNumber(ctx context.Context, number string) (domain.Order, error)
	GetByID(ctx context.Context, id int) (domain.Order, error)
	List(ctx context.Context, status, orderType string) ([]domain.Order, error)
	PendingByTable(ctx context.Context, tableNo string) ([]domain.Order, error)
	KitchenQueue(ctx context.Context) ([]domain.Order, error)

	AcceptTx(ctx context.Context, number string) (bool, error)
	CancelTx(ctx context.Context, number string) (bool, error)
	SettleTx(ctx context.Context, numbers []string, tip float64) (int, error)
	MarkPreparingTx(ctx context.Context, id int) (bool, error)
}

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) OrderRepositoryInterface {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) CountCreatedSince(ctx context.Context, since time.Time) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM orders WHERE created_at >= $1`, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return count, nil
}

func (r *OrderRepository) CreateOrder(ctx context.Context, o domain.Order) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var orderID int
	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders
		    (order_number, customer_name, customer_phone, customer_email,
		     order_type, table_number, delivery_address,
		     subtotal, tax, tip, total,
		     payment_method, payment_status, transaction_id, status,
		     created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,NOW(),NOW())
		RETURNING id`,
		o.Number, o.Customer.Name, o.Customer.Phone, o.Customer.Email,
		o.Type, o.TableNumber, o.DeliveryAddr,
		o.Subtotal, o.Tax, o.Tip, o.Total,
		o.Payment.Method, o.Payment.Status, o.Payment.TransactionID, o.Status,
	).Scan(&orderID)
	if err != nil {
		return 0, fmt.Errorf("insert order: %w", err)
	}

	for _, item := range o.Items {
		addons, _ := json.Marshal(item.Addons)
		if addons == nil || string(addons) == "null" {
			addons = []byte("[]")
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, name, quantity, unit_price, base_price, spice_level, addons)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			orderID, item.Name, item.Quantity, item.UnitPrice, item.BasePrice, item.SpiceLevel, string(addons))
		if err != nil {
			return 0, fmt.Errorf("insert order item %s: %w", item.Name, err)
		}
	}

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO order_status_log (order_id, status, changed_by)
		VALUES ($1, $2, 'api')`, orderID, o.Status); err != nil {
		return 0, fmt.Errorf("insert status log: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return orderID, nil
}

const orderColumns = `
	id, order_number, customer_name, customer_phone, customer_email,
	order_type, table_number, delivery_address,
	subtotal, tax, tip, total,
	payment_method, payment_status, transaction_id, status,
	created_at, updated_at, completed_at`

func (r *OrderRepository) GetByNumber(ctx context.Context, number string) (domain.Order, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE order_number = $1`, number)
	return r.scanWithItems(ctx, row)
}

func (r *OrderRepository) GetByID(ctx context.Context, id int) (domain.Order, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	return r.scanWithItems(ctx, row)
}

func (r *OrderRepository) List(ctx context.Context, status, orderType string) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE 1=1`
	args := []any{}
	if status != "" {
		args = append(args, status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if orderType != "" {
		args = append(args, orderType)
		query += fmt.Sprintf(" AND order_type = $%d", len(args))
	}
	query += " ORDER BY created_at DESC"
	return r.queryOrders(ctx, query, args...)
}

func (r *OrderRepository) PendingByTable(ctx context.Context, tableNo string) ([]domain.Order, error) {
	return r.queryOrders(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE table_number = $1 AND status = 'pending'
		ORDER BY created_at`, tableNo)
}

// KitchenQueue lists the dine-in orders the kitchen still has to look at.
func (r *OrderRepository) KitchenQueue(ctx context.Context) ([]domain.Order, error) {
	return r.queryOrders(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE order_type = 'dinein' AND status IN ('pending','preparing')
		ORDER BY created_at`)
}

// AcceptTx moves a pending order to accepted. Returns false without error
// when the order exists but is already past pending, so a retried accept
// cannot double-apply.
func (r *OrderRepository) AcceptTx(ctx context.Context, number string) (bool, error) {
	return r.transition(ctx, number, []string{domain.StatusPending}, domain.StatusAccepted)
}

func (r *OrderRepository) CancelTx(ctx context.Context, number string) (bool, error) {
	return r.transition(ctx, number, []string{domain.StatusPending, domain.StatusAccepted}, domain.StatusCancelled)
}

func (r *OrderRepository) transition(ctx context.Context, number string, from []string, to string) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	var current string
	err = tx.QueryRowContext(ctx,
		`SELECT status FROM orders WHERE order_number = $1 FOR UPDATE`, number).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return false, domain.ErrNotFound
	}
	if err != nil {
		return false, err
	}

	allowed := false
	for _, f := range from {
		if current == f {
			allowed = true
			break
		}
	}
	if !allowed {
		return false, tx.Commit()
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE orders SET status = $2, updated_at = NOW() WHERE order_number = $1`,
		number, to); err != nil {
		return false, err
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO order_status_log (order_id, status, changed_by)
		SELECT id, $2, 'admin' FROM orders WHERE order_number = $1`,
		number, to); err != nil {
		return false, err
	}
	return true, tx.Commit()
}

// SettleTx closes out every still-pending order in the bill: status
// completed, payment paid, completed_at stamped. The tip lands on the
// first order that actually transitions. Orders another admin settled in
// the meantime are skipped, so concurrent settlement cannot double-apply.
func (r *OrderRepository) SettleTx(ctx context.Context, numbers []string, tip float64) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	settled := 0
	for _, number := range numbers {
		orderTip := 0.0
		if settled == 0 {
			orderTip = tip
		}
		res, err := tx.ExecContext(ctx, `
			UPDATE orders
			SET status = 'completed', payment_status = 'paid', tip = $2,
			    completed_at = NOW(), updated_at = NOW()
			WHERE order_number = $1 AND status = 'pending'`,
			number, orderTip)
		if err != nil {
			return 0, fmt.Errorf("settle %s: %w", number, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		if n == 0 {
			continue
		}
		settled++
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO order_status_log (order_id, status, changed_by)
			SELECT id, 'completed', 'admin' FROM orders WHERE order_number = $1`,
			number); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return settled, nil
}

// MarkPreparingTx is the kitchen dispatch transition for a dine-in order.
func (r *OrderRepository) MarkPreparingTx(ctx context.Context, id int) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	var current, orderType string
	err = tx.QueryRowContext(ctx,
		`SELECT status, order_type FROM orders WHERE id = $1 FOR UPDATE`, id).Scan(&current, &orderType)
	if errors.Is(err, sql.ErrNoRows) {
		return false, domain.ErrNotFound
	}
	if err != nil {
		return false, err
	}
	if orderType != domain.TypeDineIn || current != domain.StatusPending {
		return false, tx.Commit()
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE orders SET status = 'preparing', updated_at = NOW() WHERE id = $1`, id); err != nil {
		return false, err
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO order_status_log (order_id, status, changed_by)
		VALUES ($1, 'preparing', 'kitchen')`, id); err != nil {
		return false, err
	}
	return true, tx.Commit()
}

func (r *OrderRepository) queryOrders(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		items, err := r.listLines(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}

func (r *OrderRepository) scanWithItems(ctx context.Context, row *sql.Row) (domain.Order, error) {
	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Order{}, err
	}
	o.Items, err = r.listLines(ctx, o.ID)
	if err != nil {
		return domain.Order{}, err
	}
	return o, nil
}

func (r *OrderRepository) listLines(ctx context.Context, orderID int) ([]domain.OrderLine, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT name, quantity, unit_price, base_price, spice_level, addons
		FROM order_items WHERE order_id = $1 ORDER BY id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	lines := []domain.OrderLine{}
	for rows.Next() {
		var (
			l         domain.OrderLine
			addonsRaw []byte
		)
		if err := rows.Scan(&l.Name, &l.Quantity, &l.UnitPrice, &l.BasePrice, &l.SpiceLevel, &addonsRaw); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(addonsRaw, &l.Addons); err != nil {
			return nil, fmt.Errorf("decode addons: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (domain.Order, error) {
	var o domain.Order
	err := row.Scan(
		&o.ID, &o.Number, &o.Customer.Name, &o.Customer.Phone, &o.Customer.Email,
		&o.Type, &o.TableNumber, &o.DeliveryAddr,
		&o.Subtotal, &o.Tax, &o.Tip, &o.Total,
		&o.Payment.Method, &o.Payment.Status, &o.Payment.TransactionID, &o.Status,
		&o.CreatedAt, &o.UpdatedAt, &o.CompletedAt,
	)
	return o, err
}

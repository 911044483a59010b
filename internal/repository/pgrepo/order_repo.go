package pgrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"shopflow-backend/internal/domain"

	json "github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const orderColumns = `id, order_number, user_id, customer, items, totals,
	payment_method, payment_status, payment_details, status,
	delivery_partner, assignment_history, timeline, created_at, updated_at`

type orderRepository struct {
	db *pgxpool.Pool
}

func NewOrderRepository(db *pgxpool.Pool) domain.OrderRepository {
	return &orderRepository{db: db}
}

// --- Mappers ---

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		o               domain.Order
		customer        []byte
		items           []byte
		totals          []byte
		paymentDetails  []byte
		deliveryPartner []byte
		assignmentHist  []byte
		timeline        []byte
	)
	err := row.Scan(&o.ID, &o.OrderNumber, &o.UserID, &customer, &items, &totals,
		&o.PaymentMethod, &o.PaymentStatus, &paymentDetails, &o.Status,
		&deliveryPartner, &assignmentHist, &timeline, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.E(domain.KindNotFound, "order not found")
		}
		return nil, err
	}

	if err := json.Unmarshal(customer, &o.Customer); err != nil {
		return nil, fmt.Errorf("unmarshal customer: %w", err)
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, fmt.Errorf("unmarshal items: %w", err)
	}
	if err := json.Unmarshal(totals, &o.Totals); err != nil {
		return nil, fmt.Errorf("unmarshal totals: %w", err)
	}
	if len(paymentDetails) > 0 {
		if err := json.Unmarshal(paymentDetails, &o.PaymentDetails); err != nil {
			return nil, fmt.Errorf("unmarshal payment details: %w", err)
		}
	}
	if len(deliveryPartner) > 0 {
		if err := json.Unmarshal(deliveryPartner, &o.DeliveryPartner); err != nil {
			return nil, fmt.Errorf("unmarshal delivery partner: %w", err)
		}
	}
	if len(assignmentHist) > 0 {
		if err := json.Unmarshal(assignmentHist, &o.AssignmentHistory); err != nil {
			return nil, fmt.Errorf("unmarshal assignment history: %w", err)
		}
	}
	if len(timeline) > 0 {
		if err := json.Unmarshal(timeline, &o.Timeline); err != nil {
			return nil, fmt.Errorf("unmarshal timeline: %w", err)
		}
	}
	return &o, nil
}

// --- Methods ---

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	q := queriesFromContext(ctx, r.db)

	customer, err := json.Marshal(order.Customer)
	if err != nil {
		return err
	}
	items, err := json.Marshal(order.Items)
	if err != nil {
		return err
	}
	totals, err := json.Marshal(order.Totals)
	if err != nil {
		return err
	}
	paymentDetails, err := json.Marshal(order.PaymentDetails)
	if err != nil {
		return err
	}
	timeline, err := json.Marshal(order.Timeline)
	if err != nil {
		return err
	}

	// The order number is minted by the database sequence so it is unique
	// and assigned exactly once.
	const query = `
		INSERT INTO orders (id, order_number, user_id, customer, items, totals,
			payment_method, payment_status, payment_details, status, timeline)
		VALUES ($1,
			'ORD-' || to_char(now(), 'YYYYMMDD') || '-' || lpad(nextval('order_number_seq')::text, 5, '0'),
			$2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING order_number, created_at, updated_at`

	return q.QueryRow(ctx, query, order.ID, order.UserID, customer, items, totals,
		order.PaymentMethod, order.PaymentStatus, paymentDetails, order.Status, timeline).
		Scan(&order.OrderNumber, &order.CreatedAt, &order.UpdatedAt)
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	q := queriesFromContext(ctx, r.db)
	row := q.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	return scanOrder(row)
}

func (r *orderRepository) GetByUserID(ctx context.Context, userID string) ([]domain.Order, error) {
	q := queriesFromContext(ctx, r.db)
	rows, err := q.Query(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

func (r *orderRepository) GetAll(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, int64, error) {
	q := queriesFromContext(ctx, r.db)

	var (
		where []string
		args  []any
	)
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.PaymentStatus != "" {
		args = append(args, filter.PaymentStatus)
		where = append(where, fmt.Sprintf("payment_status = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where = append(where, fmt.Sprintf("(order_number ILIKE $%d OR customer->>'name' ILIKE $%d)", len(args), len(args)))
	}

	query := `SELECT ` + orderColumns + `, count(*) OVER() AS total FROM orders`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC"

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 || limit > 100 {
		limit = 20
	}
	args = append(args, limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))
	args = append(args, (page-1)*limit)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var (
		orders []domain.Order
		total  int64
	)
	for rows.Next() {
		var (
			o               domain.Order
			customer        []byte
			items           []byte
			totals          []byte
			paymentDetails  []byte
			deliveryPartner []byte
			assignmentHist  []byte
			timeline        []byte
		)
		err := rows.Scan(&o.ID, &o.OrderNumber, &o.UserID, &customer, &items, &totals,
			&o.PaymentMethod, &o.PaymentStatus, &paymentDetails, &o.Status,
			&deliveryPartner, &assignmentHist, &timeline, &o.CreatedAt, &o.UpdatedAt, &total)
		if err != nil {
			return nil, 0, err
		}
		json.Unmarshal(customer, &o.Customer)
		json.Unmarshal(items, &o.Items)
		json.Unmarshal(totals, &o.Totals)
		json.Unmarshal(paymentDetails, &o.PaymentDetails)
		if len(deliveryPartner) > 0 {
			json.Unmarshal(deliveryPartner, &o.DeliveryPartner)
		}
		if len(assignmentHist) > 0 {
			json.Unmarshal(assignmentHist, &o.AssignmentHistory)
		}
		if len(timeline) > 0 {
			json.Unmarshal(timeline, &o.Timeline)
		}
		orders = append(orders, o)
	}
	return orders, total, rows.Err()
}

// Update applies the patch as one UPDATE statement. Timeline and
// assignment-history entries go through the jsonb append operator so
// concurrent writers never drop each other's entries.
func (r *orderRepository) Update(ctx context.Context, id string, patch domain.OrderPatch) (*domain.Order, error) {
	if patch.IsZero() {
		return r.GetByID(ctx, id)
	}

	q := queriesFromContext(ctx, r.db)

	var (
		sets []string
		args []any
	)
	add := func(expr string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf(expr, len(args)))
	}

	if patch.Status != nil {
		add("status = $%d", *patch.Status)
	}
	if patch.PaymentStatus != nil {
		add("payment_status = $%d", *patch.PaymentStatus)
	}
	if patch.PaymentDetails != nil {
		b, err := json.Marshal(patch.PaymentDetails)
		if err != nil {
			return nil, err
		}
		add("payment_details = $%d", b)
	}
	if patch.DeliveryPartner != nil {
		b, err := json.Marshal(patch.DeliveryPartner)
		if err != nil {
			return nil, err
		}
		add("delivery_partner = $%d", b)
	}
	if len(patch.AppendAssignments) > 0 {
		b, err := json.Marshal(patch.AppendAssignments)
		if err != nil {
			return nil, err
		}
		add("assignment_history = assignment_history || $%d::jsonb", b)
	}
	if len(patch.AppendTimeline) > 0 {
		b, err := json.Marshal(patch.AppendTimeline)
		if err != nil {
			return nil, err
		}
		add("timeline = timeline || $%d::jsonb", b)
	}
	sets = append(sets, "updated_at = now()")

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE orders SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), orderColumns)

	return scanOrder(q.QueryRow(ctx, query, args...))
}

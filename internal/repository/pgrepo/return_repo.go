package pgrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"shopflow-backend/internal/domain"

	json "github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const returnColumns = `id, order_id, user_id, type, status, items, exchange_items,
	customer_notes, admin_notes, images, refund, return_shipping, bank_account,
	shipping_address, timestamps, created_at, updated_at`

// uniqueViolation is the Postgres error code raised by the one-return-per-order
// constraint.
const uniqueViolation = "23505"

type returnRepository struct {
	db *pgxpool.Pool
}

func NewReturnRepository(db *pgxpool.Pool) domain.ReturnRepository {
	return &returnRepository{db: db}
}

func scanReturn(row pgx.Row) (*domain.Return, error) {
	var (
		ret        domain.Return
		items      []byte
		exchange   []byte
		refund     []byte
		shipping   []byte
		bank       []byte
		address    []byte
		timestamps []byte
	)
	err := row.Scan(&ret.ID, &ret.OrderID, &ret.UserID, &ret.Type, &ret.Status,
		&items, &exchange, &ret.CustomerNotes, &ret.AdminNotes, &ret.Images,
		&refund, &shipping, &bank, &address, &timestamps, &ret.CreatedAt, &ret.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.E(domain.KindNotFound, "return not found")
		}
		return nil, err
	}

	if err := json.Unmarshal(items, &ret.Items); err != nil {
		return nil, fmt.Errorf("unmarshal items: %w", err)
	}
	if len(exchange) > 0 {
		if err := json.Unmarshal(exchange, &ret.ExchangeItems); err != nil {
			return nil, fmt.Errorf("unmarshal exchange items: %w", err)
		}
	}
	if len(refund) > 0 {
		if err := json.Unmarshal(refund, &ret.Refund); err != nil {
			return nil, fmt.Errorf("unmarshal refund: %w", err)
		}
	}
	if len(shipping) > 0 {
		if err := json.Unmarshal(shipping, &ret.ReturnShipping); err != nil {
			return nil, fmt.Errorf("unmarshal return shipping: %w", err)
		}
	}
	if len(bank) > 0 {
		if err := json.Unmarshal(bank, &ret.BankAccount); err != nil {
			return nil, fmt.Errorf("unmarshal bank account: %w", err)
		}
	}
	if len(address) > 0 {
		if err := json.Unmarshal(address, &ret.ShippingAddress); err != nil {
			return nil, fmt.Errorf("unmarshal shipping address: %w", err)
		}
	}
	if len(timestamps) > 0 {
		if err := json.Unmarshal(timestamps, &ret.Timestamps); err != nil {
			return nil, fmt.Errorf("unmarshal timestamps: %w", err)
		}
	}
	return &ret, nil
}

func (r *returnRepository) Create(ctx context.Context, ret *domain.Return) error {
	q := queriesFromContext(ctx, r.db)

	items, err := json.Marshal(ret.Items)
	if err != nil {
		return err
	}
	exchange, err := json.Marshal(ret.ExchangeItems)
	if err != nil {
		return err
	}
	refund, err := json.Marshal(ret.Refund)
	if err != nil {
		return err
	}
	timestamps, err := json.Marshal(ret.Timestamps)
	if err != nil {
		return err
	}
	var bank, address []byte
	if ret.BankAccount != nil {
		if bank, err = json.Marshal(ret.BankAccount); err != nil {
			return err
		}
	}
	if ret.ShippingAddress != nil {
		if address, err = json.Marshal(ret.ShippingAddress); err != nil {
			return err
		}
	}

	const query = `
		INSERT INTO returns (id, order_id, user_id, type, status, items, exchange_items,
			customer_notes, images, refund, bank_account, shipping_address, timestamps)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at, updated_at`

	err = q.QueryRow(ctx, query, ret.ID, ret.OrderID, ret.UserID, ret.Type, ret.Status,
		items, exchange, ret.CustomerNotes, ret.Images, refund, bank, address, timestamps).
		Scan(&ret.CreatedAt, &ret.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.E(domain.KindDuplicateReturn, "a return already exists for this order")
		}
		return err
	}
	return nil
}

func (r *returnRepository) GetByID(ctx context.Context, id string) (*domain.Return, error) {
	q := queriesFromContext(ctx, r.db)
	row := q.QueryRow(ctx, `SELECT `+returnColumns+` FROM returns WHERE id = $1`, id)
	return scanReturn(row)
}

func (r *returnRepository) GetByOrderID(ctx context.Context, orderID string) (*domain.Return, error) {
	q := queriesFromContext(ctx, r.db)
	row := q.QueryRow(ctx, `SELECT `+returnColumns+` FROM returns WHERE order_id = $1`, orderID)
	ret, err := scanReturn(row)
	if err != nil {
		if domain.KindOf(err) == domain.KindNotFound {
			return nil, nil
		}
		return nil, err
	}
	return ret, nil
}

func (r *returnRepository) GetByUserID(ctx context.Context, userID string) ([]domain.Return, error) {
	q := queriesFromContext(ctx, r.db)
	rows, err := q.Query(ctx, `SELECT `+returnColumns+` FROM returns WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var returns []domain.Return
	for rows.Next() {
		ret, err := scanReturn(rows)
		if err != nil {
			return nil, err
		}
		returns = append(returns, *ret)
	}
	return returns, rows.Err()
}

func (r *returnRepository) GetAll(ctx context.Context, filter domain.ReturnFilter) ([]domain.Return, int64, error) {
	q := queriesFromContext(ctx, r.db)

	var (
		where []string
		args  []any
	)
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		where = append(where, fmt.Sprintf("type = $%d", len(args)))
	}

	countQuery := `SELECT count(*) FROM returns`
	query := `SELECT ` + returnColumns + ` FROM returns`
	if len(where) > 0 {
		clause := " WHERE " + strings.Join(where, " AND ")
		countQuery += clause
		query += clause
	}

	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 || limit > 100 {
		limit = 20
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))
	args = append(args, (page-1)*limit)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var returns []domain.Return
	for rows.Next() {
		ret, err := scanReturn(rows)
		if err != nil {
			return nil, 0, err
		}
		returns = append(returns, *ret)
	}
	return returns, total, rows.Err()
}

// Update applies the patch as one UPDATE statement and returns the
// updated return.
func (r *returnRepository) Update(ctx context.Context, id string, patch domain.ReturnPatch) (*domain.Return, error) {
	q := queriesFromContext(ctx, r.db)

	var (
		sets []string
		args []any
	)
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	addJSON := func(column string, value any) error {
		b, err := json.Marshal(value)
		if err != nil {
			return err
		}
		add(column, b)
		return nil
	}

	if patch.Status != nil {
		add("status", *patch.Status)
	}
	if patch.Items != nil {
		if err := addJSON("items", patch.Items); err != nil {
			return nil, err
		}
	}
	if patch.ExchangeItems != nil {
		if err := addJSON("exchange_items", patch.ExchangeItems); err != nil {
			return nil, err
		}
	}
	if patch.CustomerNotes != nil {
		add("customer_notes", *patch.CustomerNotes)
	}
	if patch.AdminNotes != nil {
		add("admin_notes", *patch.AdminNotes)
	}
	if patch.Images != nil {
		add("images", patch.Images)
	}
	if patch.Refund != nil {
		if err := addJSON("refund", patch.Refund); err != nil {
			return nil, err
		}
	}
	if patch.ReturnShipping != nil {
		if err := addJSON("return_shipping", patch.ReturnShipping); err != nil {
			return nil, err
		}
	}
	if patch.BankAccount != nil {
		if err := addJSON("bank_account", patch.BankAccount); err != nil {
			return nil, err
		}
	}
	if patch.ShippingAddress != nil {
		if err := addJSON("shipping_address", patch.ShippingAddress); err != nil {
			return nil, err
		}
	}
	if patch.Timestamps != nil {
		if err := addJSON("timestamps", patch.Timestamps); err != nil {
			return nil, err
		}
	}
	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}
	sets = append(sets, "updated_at = now()")

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE returns SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), returnColumns)

	return scanReturn(q.QueryRow(ctx, query, args...))
}

func (r *returnRepository) Stats(ctx context.Context) (*domain.ReturnStats, error) {
	q := queriesFromContext(ctx, r.db)

	stats := &domain.ReturnStats{ByStatus: make(map[string]int64)}

	rows, err := q.Query(ctx, `SELECT status, count(*) FROM returns GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			status string
			count  int64
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats.ByStatus[status] = count
		stats.TotalRequests += count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	err = q.QueryRow(ctx, `
		SELECT coalesce(sum((refund->>'amount')::numeric), 0)
		FROM returns
		WHERE refund->>'status' = 'completed'`).Scan(&stats.TotalRefunded)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

package pgrepo

import (
	"context"
	"errors"
	"fmt"

	"shopflow-backend/internal/domain"

	json "github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const partnerColumns = `id, name, phone, email, vehicle_type, active,
	is_available, service_areas, rating, completed_deliveries, created_at, updated_at`

type partnerRepository struct {
	db *pgxpool.Pool
}

func NewPartnerRepository(db *pgxpool.Pool) domain.PartnerRepository {
	return &partnerRepository{db: db}
}

func scanPartner(row pgx.Row) (*domain.DeliveryPartner, error) {
	var (
		p     domain.DeliveryPartner
		areas []byte
	)
	err := row.Scan(&p.ID, &p.Name, &p.Phone, &p.Email, &p.VehicleType, &p.Active,
		&p.IsAvailable, &areas, &p.Rating, &p.CompletedDeliveries, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.E(domain.KindNotFound, "delivery partner not found")
		}
		return nil, err
	}
	if len(areas) > 0 {
		if err := json.Unmarshal(areas, &p.ServiceAreas); err != nil {
			return nil, fmt.Errorf("unmarshal service areas: %w", err)
		}
	}
	return &p, nil
}

func (r *partnerRepository) Create(ctx context.Context, partner *domain.DeliveryPartner) error {
	q := queriesFromContext(ctx, r.db)

	areas, err := json.Marshal(partner.ServiceAreas)
	if err != nil {
		return err
	}

	const query = `
		INSERT INTO delivery_partners (id, name, phone, email, vehicle_type, active, is_available, service_areas)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`

	return q.QueryRow(ctx, query, partner.ID, partner.Name, partner.Phone, partner.Email,
		partner.VehicleType, partner.Active, partner.IsAvailable, areas).
		Scan(&partner.CreatedAt, &partner.UpdatedAt)
}

func (r *partnerRepository) GetByID(ctx context.Context, id string) (*domain.DeliveryPartner, error) {
	q := queriesFromContext(ctx, r.db)
	row := q.QueryRow(ctx, `SELECT `+partnerColumns+` FROM delivery_partners WHERE id = $1`, id)
	return scanPartner(row)
}

func (r *partnerRepository) GetAll(ctx context.Context) ([]domain.DeliveryPartner, error) {
	q := queriesFromContext(ctx, r.db)
	return r.queryPartners(ctx, q, `SELECT `+partnerColumns+` FROM delivery_partners ORDER BY name`)
}

func (r *partnerRepository) GetActiveAvailable(ctx context.Context) ([]domain.DeliveryPartner, error) {
	q := queriesFromContext(ctx, r.db)
	return r.queryPartners(ctx, q,
		`SELECT `+partnerColumns+` FROM delivery_partners WHERE active AND is_available ORDER BY rating DESC, name`)
}

func (r *partnerRepository) queryPartners(ctx context.Context, q querier, query string) ([]domain.DeliveryPartner, error) {
	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var partners []domain.DeliveryPartner
	for rows.Next() {
		p, err := scanPartner(rows)
		if err != nil {
			return nil, err
		}
		partners = append(partners, *p)
	}
	return partners, rows.Err()
}

func (r *partnerRepository) SetAvailability(ctx context.Context, id string, available bool) error {
	q := queriesFromContext(ctx, r.db)
	tag, err := q.Exec(ctx,
		`UPDATE delivery_partners SET is_available = $1, updated_at = now() WHERE id = $2`, available, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.E(domain.KindNotFound, "delivery partner not found")
	}
	return nil
}

func (r *partnerRepository) IncrementCompletedDeliveries(ctx context.Context, id string) error {
	q := queriesFromContext(ctx, r.db)
	_, err := q.Exec(ctx,
		`UPDATE delivery_partners SET completed_deliveries = completed_deliveries + 1, updated_at = now() WHERE id = $1`, id)
	return err
}

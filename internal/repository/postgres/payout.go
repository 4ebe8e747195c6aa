package postgres

import (
	"context"
	"database/sql"
	"time"

	"lavarenta-backend/internal/domain"
	"lavarenta-backend/internal/repository"
)

type payoutRepository struct {
	db DBTX
}

func NewPayoutRepository(db DBTX) repository.PayoutRepository {
	return &payoutRepository{db: db}
}

// Create writes one settlement result. Payouts are write-once; the
// calculation is never re-run against an existing row.
func (r *payoutRepository) Create(ctx context.Context, p *domain.Payout) error {
	query := `INSERT INTO payouts (type, partner_id, machine_id, rent_id, income_amount_cents,
	          mantainance_cents, mantainance_pct, comision_cents, comision_pct, to_pay_cents,
	          status, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) RETURNING id`
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	return r.db.QueryRowContext(ctx, query, p.Type, p.PartnerID, p.MachineID, p.RentID,
		p.IncomeAmountCents, p.MantainanceCents, p.MantainancePct, p.ComisionCents,
		p.ComisionPct, p.ToPayCents, p.Status, p.CreatedAt).Scan(&p.ID)
}

func (r *payoutRepository) ListByPartner(ctx context.Context, partnerID int64) ([]domain.Payout, error) {
	query := `SELECT id, type, partner_id, machine_id, rent_id, income_amount_cents,
	          mantainance_cents, mantainance_pct, comision_cents, comision_pct, to_pay_cents,
	          status, created_at
	          FROM payouts WHERE partner_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, partnerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payouts []domain.Payout
	for rows.Next() {
		var p domain.Payout
		if err := rows.Scan(&p.ID, &p.Type, &p.PartnerID, &p.MachineID, &p.RentID,
			&p.IncomeAmountCents, &p.MantainanceCents, &p.MantainancePct, &p.ComisionCents,
			&p.ComisionPct, &p.ToPayCents, &p.Status, &p.CreatedAt); err != nil {
			return nil, err
		}
		payouts = append(payouts, p)
	}
	return payouts, rows.Err()
}

type partnerRepository struct {
	db DBTX
}

func NewPartnerRepository(db DBTX) repository.PartnerRepository {
	return &partnerRepository{db: db}
}

func (r *partnerRepository) GetByID(ctx context.Context, id int64) (*domain.Partner, error) {
	query := `SELECT id, name, COALESCE(phone, ''), commission_pct, created_at FROM partners WHERE id = $1`
	p := &domain.Partner{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.Name, &p.Phone, &p.CommissionPct, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.Errorf(domain.CodeNotFound, "socio %d no encontrado", id)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

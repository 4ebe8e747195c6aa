package service

import (
	"time"

	"github.com/shopspring/decimal"

	"lavarenta-backend/internal/config"
	"lavarenta-backend/internal/domain"
)

// SettlementResult is one computed partner revenue split
type SettlementResult struct {
	IncomeAmountCents int64
	MantainanceCents  int64
	MantainancePct    float64
	ComisionCents     int64
	ComisionPct       float64
	ToPayCents        int64
}

// SettlementCalculator computes maintenance/commission/payout splits. Pure:
// no clock, no storage; both completion paths feed it and write its output
// once into a Payout.
type SettlementCalculator struct {
	bands             []config.MaintenanceBand
	defaultCommission float64
}

func NewSettlementCalculator(cfg config.SettlementConfig) *SettlementCalculator {
	return &SettlementCalculator{
		bands:             cfg.MaintenanceBands,
		defaultCommission: cfg.DefaultCommission,
	}
}

// MaintenancePct returns the age-scaled maintenance percentage for a
// machine created at the given time
func (c *SettlementCalculator) MaintenancePct(machineCreatedAt, now time.Time) float64 {
	months := (&domain.Machine{CreatedAt: machineCreatedAt}).AgeMonths(now)
	for _, band := range c.bands {
		if band.MaxMonths == 0 || months < band.MaxMonths {
			return band.Percent
		}
	}
	if len(c.bands) == 0 {
		return 0
	}
	return c.bands[len(c.bands)-1].Percent
}

// Settle splits an income amount into maintenance, commission and the
// partner's residual. commissionPct <= 0 falls back to the configured
// default. Cents round half-up so the three parts always sum to the income.
func (c *SettlementCalculator) Settle(incomeCents int64, machineCreatedAt, now time.Time, commissionPct float64) SettlementResult {
	if commissionPct <= 0 {
		commissionPct = c.defaultCommission
	}
	maintenancePct := c.MaintenancePct(machineCreatedAt, now)

	income := decimal.NewFromInt(incomeCents)
	hundred := decimal.NewFromInt(100)

	maintenance := income.Mul(decimal.NewFromFloat(maintenancePct)).Div(hundred).Round(0)
	commission := income.Mul(decimal.NewFromFloat(commissionPct)).Div(hundred).Round(0)
	toPay := income.Sub(maintenance).Sub(commission)

	return SettlementResult{
		IncomeAmountCents: incomeCents,
		MantainanceCents:  maintenance.IntPart(),
		MantainancePct:    maintenancePct,
		ComisionCents:     commission.IntPart(),
		ComisionPct:       commissionPct,
		ToPayCents:        toPay.IntPart(),
	}
}

// NewPayout builds the write-once payout record from a settlement result
func (c *SettlementCalculator) NewPayout(kind domain.PayoutType, res SettlementResult, partnerID, machineID int64, rentID *int64) *domain.Payout {
	return &domain.Payout{
		Type:              kind,
		PartnerID:         partnerID,
		MachineID:         machineID,
		RentID:            rentID,
		IncomeAmountCents: res.IncomeAmountCents,
		MantainanceCents:  res.MantainanceCents,
		MantainancePct:    res.MantainancePct,
		ComisionCents:     res.ComisionCents,
		ComisionPct:       res.ComisionPct,
		ToPayCents:        res.ToPayCents,
		Status:            domain.PayoutStatusPending,
	}
}

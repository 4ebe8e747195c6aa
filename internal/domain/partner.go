package domain

import "time"

// Partner owns machines placed into the fleet under a revenue-share deal
type Partner struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Phone         string    `json:"phone"`
	CommissionPct float64   `json:"commission_pct"`
	CreatedAt     time.Time `json:"created_at"`
}

type PayoutType string

const (
	PayoutTypeNew      PayoutType = "NEW"
	PayoutTypeExtended PayoutType = "EXTENDED"
)

type PayoutStatus string

const (
	PayoutStatusPending   PayoutStatus = "PENDING"
	PayoutStatusCompleted PayoutStatus = "COMPLETED"
	PayoutStatusNA        PayoutStatus = "NA"
)

// Payout is one partner revenue-share computation. Written once from the
// settlement calculator's output; historical payouts are never recomputed.
type Payout struct {
	ID                int64        `json:"id"`
	Type              PayoutType   `json:"type"`
	PartnerID         int64        `json:"partner_id"`
	MachineID         int64        `json:"machine_id"`
	RentID            *int64       `json:"rent_id,omitempty"`
	IncomeAmountCents int64        `json:"income_amount_cents"`
	MantainanceCents  int64        `json:"mantainance_cents"`
	MantainancePct    float64      `json:"mantainance_pct"`
	ComisionCents     int64        `json:"comision_cents"`
	ComisionPct       float64      `json:"comision_pct"`
	ToPayCents        int64        `json:"to_pay_cents"`
	Status            PayoutStatus `json:"status"`
	CreatedAt         time.Time    `json:"created_at"`
}

package service

import (
	"context"
	"fmt"

	"lavarenta-backend/internal/domain"
	"lavarenta-backend/internal/logger"
	"lavarenta-backend/internal/repository"
)

// acumulatedDaysPerBonusWeek is the carry at which bridged pay-day days
// convert into a free week
const acumulatedDaysPerBonusWeek = 5

// extensionService runs the back-office operations on a running rent:
// extending the billed period and shifting the payment weekday. Neither
// needs a field visit; they apply immediately in one transaction.
type extensionService struct {
	TaskCore
}

func NewExtensionService(core TaskCore) ExtensionService {
	return &extensionService{TaskCore: core}
}

// balanceAfter applies the insufficiency rule: the operation goes through
// when the account ends non-negative, or when an indebted account at least
// moves toward zero
func balanceAfter(balance, payment, cost int64) (int64, error) {
	after := balance + payment - cost
	if after >= 0 {
		return after, nil
	}
	if balance < 0 && after > balance {
		return after, nil
	}
	return 0, domain.Errorf(domain.CodeInsufficientBalance,
		"el pago no cubre el cargo: saldo resultante %d", after)
}

// ExtendRentData adds weeks to a running rent. Free weeks cover part of the
// charge when asked; an overdue rent that extends becomes current again.
func (s *extensionService) ExtendRentData(ctx context.Context, in ExtendRentInput) (*domain.Rent, error) {
	if in.Weeks <= 0 {
		return nil, domain.NewError(domain.CodeMissingField, "las semanas a extender deben ser positivas")
	}

	var (
		rent        *domain.Rent
		notifyBlock func(context.Context)
	)
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		var err error
		rent, err = tx.Rents().GetByID(ctx, in.RentID)
		if err != nil {
			return err
		}
		if rent.Status != domain.RentStatusRentado && rent.Status != domain.RentStatusVencida {
			return domain.Errorf(domain.CodeInvalidStatus, "la renta %d no admite extensión en %s", rent.ID, rent.Status)
		}
		if rent.EndDate == nil || rent.MachineID == nil {
			return domain.Errorf(domain.CodeInvalidStatus, "la renta %d no ha sido entregada", rent.ID)
		}

		customer, err := tx.Customers().GetByID(ctx, rent.CustomerID)
		if err != nil {
			return err
		}

		freeUsed := 0
		if in.UseFreeWeeks {
			freeUsed = customer.FreeWeeks
			if freeUsed > in.Weeks {
				freeUsed = in.Weeks
			}
		}
		cost := s.pricing.WeekPrice(customer.Level) * int64(in.Weeks-freeUsed)

		newBalance, err := balanceAfter(customer.BalanceCents, in.PaymentCents, cost)
		if err != nil {
			return err
		}

		now := s.now()
		end := rent.EndDate.AddDate(0, 0, in.Weeks*7)
		rent.EndDate = &end
		rent.TotalWeeks += in.Weeks
		rent.ExtendedTimes++
		rent.UsedFreeWeeks += freeUsed
		if rent.Status == domain.RentStatusVencida {
			rent.Status = domain.RentStatusRentado
		}
		rent.UpdatedAt = now
		rent.UpdatedBy = in.ActingUser
		if err := tx.Rents().Update(ctx, rent); err != nil {
			return err
		}

		customer.BalanceCents = newBalance
		customer.FreeWeeks -= freeUsed
		customer.TotalRentWeeks += in.Weeks
		customer.UpdatedAt = now
		if err := tx.Customers().Update(ctx, customer); err != nil {
			return err
		}

		if err := tx.Movements().CreateCustomerMovement(ctx, &domain.CustomerMovement{
			CustomerID:  customer.ID,
			RentID:      &rent.ID,
			Type:        domain.CustomerMovementExtRent,
			AmountCents: in.PaymentCents - cost,
			Date:        now,
			Description: fmt.Sprintf("extensión de %d semanas, pago de %d", in.Weeks, in.PaymentCents),
		}); err != nil {
			return err
		}
		if freeUsed > 0 {
			if err := tx.Movements().CreateCustomerMovement(ctx, &domain.CustomerMovement{
				CustomerID:  customer.ID,
				RentID:      &rent.ID,
				Type:        domain.CustomerMovementFreeWeek,
				AmountCents: 0,
				Date:        now,
				Description: fmt.Sprintf("%d semanas gratis aplicadas", freeUsed),
			}); err != nil {
				return err
			}
		}

		machine, err := tx.Machines().GetByID(ctx, *rent.MachineID)
		if err != nil {
			return err
		}
		machine.EarningsCents += in.PaymentCents
		machine.UpdatedAt = now
		machine.UpdatedBy = in.ActingUser
		if err := tx.Machines().Update(ctx, machine); err != nil {
			return err
		}
		if err := tx.Movements().CreateMachineMovement(ctx, &domain.MachineMovement{
			MachineID:   machine.ID,
			RentID:      &rent.ID,
			Type:        domain.MachineMovementExtRent,
			AmountCents: in.PaymentCents,
			Date:        now,
			Description: fmt.Sprintf("extensión de %d semanas", in.Weeks),
		}); err != nil {
			return err
		}

		if machine.PartnerID != nil && in.PaymentCents > 0 {
			partner, err := tx.Partners().GetByID(ctx, *machine.PartnerID)
			if err != nil {
				return err
			}
			res := s.settlement.Settle(in.PaymentCents, machine.CreatedAt, now, partner.CommissionPct)
			payout := s.settlement.NewPayout(domain.PayoutTypeExtended, res, partner.ID, machine.ID, &rent.ID)
			if err := tx.Payouts().Create(ctx, payout); err != nil {
				return err
			}
		}

		notifyBlock, err = s.applyPacing(ctx, tx, in.ActingUser, "EXTENSION", now)
		return err
	})
	if err != nil {
		return nil, err
	}

	if notifyBlock != nil {
		notifyBlock(ctx)
	}
	logger.Info("rent extended", "rent_id", in.RentID, "weeks", in.Weeks)
	return rent, nil
}

// ChangeRentPayDayData shifts the rent's payment weekday forward, charging
// the bridged days at the customer's daily rate
func (s *extensionService) ChangeRentPayDayData(ctx context.Context, in ChangePayDayInput) (*domain.Rent, error) {
	var (
		rent        *domain.Rent
		notifyBlock func(context.Context)
	)
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		var err error
		rent, err = tx.Rents().GetByID(ctx, in.RentID)
		if err != nil {
			return err
		}
		if rent.Status != domain.RentStatusRentado && rent.Status != domain.RentStatusVencida {
			return domain.Errorf(domain.CodeInvalidStatus, "la renta %d no admite cambio de día de pago en %s", rent.ID, rent.Status)
		}
		if rent.EndDate == nil || rent.MachineID == nil {
			return domain.Errorf(domain.CodeInvalidStatus, "la renta %d no ha sido entregada", rent.ID)
		}
		if in.NewPayDay == rent.PayDay {
			return domain.NewError(domain.CodeInvalidStatus, "el día de pago no cambia")
		}

		customer, err := tx.Customers().GetByID(ctx, rent.CustomerID)
		if err != nil {
			return err
		}

		days := int(in.NewPayDay-rent.PayDay+7) % 7
		charge := s.pricing.DayPrice(customer.Level) * int64(days)

		newBalance, err := balanceAfter(customer.BalanceCents, in.PaymentCents, charge)
		if err != nil {
			return err
		}

		now := s.now()
		end := rent.EndDate.AddDate(0, 0, days)
		rent.EndDate = &end
		rent.PayDay = in.NewPayDay
		rent.AcumulatedDays += days
		bonusWeeks := rent.AcumulatedDays / acumulatedDaysPerBonusWeek
		rent.AcumulatedDays %= acumulatedDaysPerBonusWeek
		rent.UpdatedAt = now
		rent.UpdatedBy = in.ActingUser
		if err := tx.Rents().Update(ctx, rent); err != nil {
			return err
		}

		customer.BalanceCents = newBalance
		customer.FreeWeeks += bonusWeeks
		customer.UpdatedAt = now
		if err := tx.Customers().Update(ctx, customer); err != nil {
			return err
		}

		if bonusWeeks > 0 {
			if err := tx.Movements().CreateCustomerMovement(ctx, &domain.CustomerMovement{
				CustomerID:  customer.ID,
				RentID:      &rent.ID,
				Type:        domain.CustomerMovementBonus,
				AmountCents: 0,
				Date:        now,
				Description: fmt.Sprintf("%d semanas gratis por días acumulados", bonusWeeks),
			}); err != nil {
				return err
			}
		}

		if err := tx.Movements().CreateCustomerMovement(ctx, &domain.CustomerMovement{
			CustomerID:  customer.ID,
			RentID:      &rent.ID,
			Type:        domain.CustomerMovementPayChange,
			AmountCents: in.PaymentCents - charge,
			Date:        now,
			Description: fmt.Sprintf("cambio de día de pago a %s, %d días puente", in.NewPayDay, days),
		}); err != nil {
			return err
		}

		machine, err := tx.Machines().GetByID(ctx, *rent.MachineID)
		if err != nil {
			return err
		}
		machine.EarningsCents += in.PaymentCents
		machine.UpdatedAt = now
		machine.UpdatedBy = in.ActingUser
		if err := tx.Machines().Update(ctx, machine); err != nil {
			return err
		}
		if err := tx.Movements().CreateMachineMovement(ctx, &domain.MachineMovement{
			MachineID:   machine.ID,
			RentID:      &rent.ID,
			Type:        domain.MachineMovementExtRent,
			AmountCents: in.PaymentCents,
			Date:        now,
			Description: fmt.Sprintf("cambio de día de pago, %d días puente", days),
		}); err != nil {
			return err
		}

		if machine.PartnerID != nil && in.PaymentCents > 0 {
			partner, err := tx.Partners().GetByID(ctx, *machine.PartnerID)
			if err != nil {
				return err
			}
			res := s.settlement.Settle(in.PaymentCents, machine.CreatedAt, now, partner.CommissionPct)
			payout := s.settlement.NewPayout(domain.PayoutTypeExtended, res, partner.ID, machine.ID, &rent.ID)
			if err := tx.Payouts().Create(ctx, payout); err != nil {
				return err
			}
		}

		notifyBlock, err = s.applyPacing(ctx, tx, in.ActingUser, "PAY_DAY", now)
		return err
	})
	if err != nil {
		return nil, err
	}

	if notifyBlock != nil {
		notifyBlock(ctx)
	}
	logger.Info("pay day changed", "rent_id", in.RentID, "new_pay_day", in.NewPayDay)
	return rent, nil
}

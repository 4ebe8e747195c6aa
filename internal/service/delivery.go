package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"lavarenta-backend/internal/domain"
	"lavarenta-backend/internal/logger"
	"lavarenta-backend/internal/repository"
)

// deliveryService runs the first-delivery visit flow: scheduling against a
// pending rent and the completion that actually starts the rental.
type deliveryService struct {
	TaskCore
}

func NewDeliveryService(core TaskCore) DeliveryService {
	return &deliveryService{TaskCore: core}
}

// SaveDeliveryData schedules the delivery visit. The rent stays PENDIENTE:
// pending is already the waiting-for-delivery state.
func (s *deliveryService) SaveDeliveryData(ctx context.Context, in SaveTaskInput) (*domain.Task, error) {
	var task *domain.Task
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		rent, err := tx.Rents().GetByID(ctx, in.RentID)
		if err != nil {
			return err
		}
		if rent.Status != domain.RentStatusPendiente {
			return domain.Errorf(domain.CodeInvalidStatus, "la renta %d no está pendiente de entrega", rent.ID)
		}
		task, err = s.scheduleTask(ctx, tx, domain.TaskKindDelivery, in, "")
		return err
	})
	if err != nil {
		return nil, err
	}
	logger.Info("delivery scheduled", "task_id", task.ID, "rent_id", in.RentID, "date", task.Date)
	return task, nil
}

func (s *deliveryService) AssignDeliveryOperator(ctx context.Context, taskID, operatorID, actingUser int64) error {
	return s.assignOperator(ctx, domain.TaskKindDelivery, taskID, operatorID, actingUser)
}

// MarkCompleteDeliveryData closes the visit and starts the rental: machine
// handed over, customer identity confirmed, first payment recorded, rent
// number assigned. Everything commits or nothing does; uploaded evidence is
// removed again when the transaction fails.
func (s *deliveryService) MarkCompleteDeliveryData(ctx context.Context, in CompleteDeliveryInput) (*domain.Rent, error) {
	var (
		rent        *domain.Rent
		uploaded    []string
		notifyBlock func(context.Context)
	)

	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		task, err := s.loadCompletableTask(ctx, tx, domain.TaskKindDelivery, in.TaskID)
		if err != nil {
			return err
		}
		rent, err = tx.Rents().GetByID(ctx, task.RentID)
		if err != nil {
			return err
		}
		if rent.Status != domain.RentStatusPendiente {
			return domain.Errorf(domain.CodeInvalidStatus, "la renta %d no está pendiente de entrega", rent.ID)
		}

		customer, err := s.resolveRecipient(ctx, tx, rent, in)
		if err != nil {
			return err
		}

		machine, err := tx.Machines().GetByID(ctx, in.MachineID)
		if err != nil {
			return err
		}
		if !machine.Status.CanTransition(domain.MachineStatusRentado) {
			return domain.Errorf(domain.CodeInvalidStatus, "la máquina %d no está disponible para entrega", machine.Num)
		}

		now := s.now()
		operatorID := in.ActingUser
		if task.OperatorID != nil {
			operatorID = *task.OperatorID
		}

		// first payment must cover the initial period
		charge := s.pricing.WeekPrice(customer.Level) * int64(rent.InitialWeeks)
		if in.PaymentCents < charge {
			return domain.Errorf(domain.CodeInsufficientBalance,
				"el pago de la entrega no cubre las %d semanas iniciales", rent.InitialWeeks)
		}

		num, err := tx.Counters().Next(ctx, "rent_num")
		if err != nil {
			return err
		}

		start := now
		end := domain.EndOfDay(start.AddDate(0, 0, rent.InitialWeeks*7))
		rent.Num = &num
		rent.Status = domain.RentStatusRentado
		rent.CustomerID = customer.ID
		rent.MachineID = &machine.ID
		rent.StartDate = &start
		rent.EndDate = &end
		rent.TotalWeeks = rent.InitialWeeks
		rent.Accessories = in.Accessories
		rent.UpdatedAt = now
		rent.UpdatedBy = in.ActingUser
		if err := tx.Rents().Update(ctx, rent); err != nil {
			return err
		}

		machine.Status = domain.MachineStatusRentado
		machine.PlaceWithCustomer()
		machine.LastRentID = &rent.ID
		machine.EarningsCents += in.PaymentCents
		machine.UpdatedAt = now
		machine.UpdatedBy = in.ActingUser
		if err := tx.Machines().Update(ctx, machine); err != nil {
			return err
		}
		if err := tx.Vehicles().RemoveMachineFromAny(ctx, machine.ID); err != nil {
			return err
		}

		customer.HasRent = true
		customer.CurrentRentID = &rent.ID
		customer.TotalRentWeeks += rent.InitialWeeks
		customer.UpdatedAt = now
		if excess := in.PaymentCents - charge; excess != 0 {
			customer.BalanceCents += excess
			if err := tx.Movements().CreateCustomerMovement(ctx, &domain.CustomerMovement{
				CustomerID:  customer.ID,
				RentID:      &rent.ID,
				Type:        domain.CustomerMovementDebt,
				AmountCents: excess,
				Date:        now,
				Description: "excedente registrado en la entrega",
			}); err != nil {
				return err
			}
		}
		if err := tx.Customers().Update(ctx, customer); err != nil {
			return err
		}

		if err := tx.Movements().CreateCustomerMovement(ctx, &domain.CustomerMovement{
			CustomerID:  customer.ID,
			RentID:      &rent.ID,
			Type:        domain.CustomerMovementNewRent,
			AmountCents: 0,
			Date:        now,
			Description: fmt.Sprintf("renta nueva #%d, %d semanas, pago de %d", num, rent.InitialWeeks, in.PaymentCents),
		}); err != nil {
			return err
		}
		if err := tx.Movements().CreateMachineMovement(ctx, &domain.MachineMovement{
			MachineID:   machine.ID,
			RentID:      &rent.ID,
			Type:        domain.MachineMovementRent,
			AmountCents: in.PaymentCents,
			Date:        now,
			Description: fmt.Sprintf("renta nueva #%d", num),
		}); err != nil {
			return err
		}

		if machine.PartnerID != nil {
			partner, err := tx.Partners().GetByID(ctx, *machine.PartnerID)
			if err != nil {
				return err
			}
			res := s.settlement.Settle(in.PaymentCents, machine.CreatedAt, now, partner.CommissionPct)
			payout := s.settlement.NewPayout(domain.PayoutTypeNew, res, partner.ID, machine.ID, &rent.ID)
			if err := tx.Payouts().Create(ctx, payout); err != nil {
				return err
			}
		}

		urls, keys, err := s.uploadEvidence(ctx, in.Evidence)
		if err != nil {
			return err
		}
		uploaded = keys

		task.Status = domain.TaskStatusCompletada
		task.ImagesURL = urls
		task.FinishedAt = &now
		task.UpdatedAt = now
		if err := tx.Tasks().Update(ctx, task); err != nil {
			return err
		}

		notifyBlock, err = s.applyPacing(ctx, tx, operatorID, string(domain.TaskKindDelivery), now)
		return err
	})
	if err != nil {
		s.cleanupEvidence(ctx, uploaded)
		return nil, err
	}

	if notifyBlock != nil {
		notifyBlock(ctx)
	}
	logger.Info("delivery completed", "task_id", in.TaskID, "rent_id", rent.ID, "rent_num", *rent.Num)
	return rent, nil
}

// resolveRecipient confirms who actually received the machine. When the
// recipient is someone else, an existing account with rental history wins
// over the intake record, which gets folded into it.
func (s *deliveryService) resolveRecipient(ctx context.Context, tx repository.Tx, rent *domain.Rent, in CompleteDeliveryInput) (*domain.Customer, error) {
	if !validMapsURL(in.MapsURL) {
		return nil, domain.NewError(domain.CodeMissingField, "se requiere una URL de ubicación válida")
	}
	intake, err := tx.Customers().GetByID(ctx, rent.CustomerID)
	if err != nil {
		return nil, err
	}
	if in.SamePerson {
		intake.MapsURL = in.MapsURL
		return intake, nil
	}
	if strings.TrimSpace(in.CustomerName) == "" || strings.TrimSpace(in.CustomerPhone) == "" {
		return nil, domain.NewError(domain.CodeMissingField, "nombre y teléfono del receptor son obligatorios")
	}

	existing, err := tx.Customers().GetByPhone(ctx, in.CustomerPhone)
	if err != nil && !domain.IsDomainError(err) {
		return nil, err
	}

	now := s.now()
	if existing != nil && existing.ID != intake.ID && existing.CompletedRents > 0 {
		open, err := tx.Rents().GetOpenByCustomer(ctx, existing.ID)
		if err != nil && !domain.IsDomainError(err) {
			return nil, err
		}
		if open != nil && open.ID != rent.ID {
			return nil, domain.Errorf(domain.CodeDuplicate, "el cliente %s ya tiene una renta activa", existing.Name)
		}

		// fold the intake record into the established account
		moved := intake.FreeWeeks
		existing.FreeWeeks += moved
		existing.MapsURL = in.MapsURL
		existing.UpdatedAt = now
		if err := tx.Customers().Update(ctx, existing); err != nil {
			return nil, err
		}
		intake.MergedIntoID = &existing.ID
		intake.FreeWeeks = 0
		intake.HasRent = false
		intake.CurrentRentID = nil
		intake.UpdatedAt = now
		if err := tx.Customers().Update(ctx, intake); err != nil {
			return nil, err
		}
		// the free-week transfer leaves a trail on both accounts
		if moved > 0 {
			if err := tx.Movements().CreateCustomerMovement(ctx, &domain.CustomerMovement{
				CustomerID:  intake.ID,
				RentID:      &rent.ID,
				Type:        domain.CustomerMovementFreeWeek,
				AmountCents: 0,
				Date:        now,
				Description: fmt.Sprintf("%d semanas gratis transferidas al cliente %d", moved, existing.ID),
			}); err != nil {
				return nil, err
			}
			if err := tx.Movements().CreateCustomerMovement(ctx, &domain.CustomerMovement{
				CustomerID:  existing.ID,
				RentID:      &rent.ID,
				Type:        domain.CustomerMovementFreeWeek,
				AmountCents: 0,
				Date:        now,
				Description: fmt.Sprintf("%d semanas gratis recibidas del registro %d", moved, intake.ID),
			}); err != nil {
				return nil, err
			}
		}
		logger.Info("customer records merged", "intake_id", intake.ID, "kept_id", existing.ID)
		return existing, nil
	}

	intake.Name = in.CustomerName
	intake.Phone = in.CustomerPhone
	intake.MapsURL = in.MapsURL
	intake.UpdatedAt = now
	if err := tx.Customers().Update(ctx, intake); err != nil {
		return nil, err
	}
	return intake, nil
}

// validMapsURL accepts only absolute http(s) locations
func validMapsURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// CancelDeliveryData closes the visit; with CancelRent it also voids the
// pending rent itself.
func (s *deliveryService) CancelDeliveryData(ctx context.Context, in CancelTaskInput) error {
	return s.store.WithinTx(ctx, func(tx repository.Tx) error {
		if _, err := s.cancelTask(ctx, tx, domain.TaskKindDelivery, in, false); err != nil {
			return err
		}
		if !in.CancelRent {
			return nil
		}

		task, err := tx.Tasks().GetByID(ctx, in.TaskID)
		if err != nil {
			return err
		}
		rent, err := tx.Rents().GetByID(ctx, task.RentID)
		if err != nil {
			return err
		}
		if !rent.Status.CanTransition(domain.RentStatusCancelada) {
			return domain.Errorf(domain.CodeInvalidStatus, "la renta %d no puede cancelarse desde %s", rent.ID, rent.Status)
		}
		now := s.now()
		rent.Status = domain.RentStatusCancelada
		rent.UpdatedAt = now
		rent.UpdatedBy = in.ActingUser
		if err := tx.Rents().Update(ctx, rent); err != nil {
			return err
		}

		customer, err := tx.Customers().GetByID(ctx, rent.CustomerID)
		if err != nil {
			return err
		}
		customer.HasRent = false
		customer.CurrentRentID = nil
		customer.UpdatedAt = now
		return tx.Customers().Update(ctx, customer)
	})
}

func (s *deliveryService) UpdateDeliveryTimeData(ctx context.Context, in UpdateTimeInput) (*domain.Task, error) {
	var task *domain.Task
	err := s.store.WithinTx(ctx, func(tx repository.Tx) error {
		var err error
		task, err = s.rescheduleTask(ctx, tx, domain.TaskKindDelivery, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

package shifts

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tillworks/tillworks-backend/internal/catalog"
	"github.com/tillworks/tillworks-backend/internal/orders"
	"github.com/tillworks/tillworks-backend/pkg/actor"
	"github.com/tillworks/tillworks-backend/pkg/db"
	"github.com/tillworks/tillworks-backend/pkg/db/models"
	"github.com/tillworks/tillworks-backend/pkg/enums"
	pkgerrors "github.com/tillworks/tillworks-backend/pkg/errors"
	"github.com/tillworks/tillworks-backend/pkg/logger"
)

const openShiftConstraint = "uq_shifts_open_register"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service is the shift register: cash-drawer sessions, their immutable cash
// movements, and reconciliation reports rebuilt from history.
type Service interface {
	Open(ctx context.Context, act actor.Actor, registerID uuid.UUID, openingFloat decimal.Decimal) (*models.Shift, error)
	Close(ctx context.Context, act actor.Actor, shiftID uuid.UUID, closingCash decimal.Decimal) (*models.Shift, *Report, error)
	MoveCash(ctx context.Context, act actor.Actor, input MoveCashInput) (*models.CashMovement, error)
	AttachOrder(ctx context.Context, act actor.Actor, orderID, shiftID uuid.UUID) (*models.Order, error)
	BuildReport(ctx context.Context, act actor.Actor, shiftID uuid.UUID) (*Report, error)
}

// MoveCashInput captures one drawer movement request.
type MoveCashInput struct {
	ShiftID uuid.UUID
	Type    enums.CashMovementType
	Amount  decimal.Decimal
	Reason  *string
}

type service struct {
	repo    Repository
	catalog catalog.Repository
	orders  orders.Repository
	tx      txRunner
	logg    *logger.Logger
}

// NewService wires the shift register with its repositories.
func NewService(repo Repository, catalogRepo catalog.Repository, ordersRepo orders.Repository, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("shifts repository required")
	}
	if catalogRepo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:    repo,
		catalog: catalogRepo,
		orders:  ordersRepo,
		tx:      tx,
		logg:    logg,
	}, nil
}

// Open starts a shift on the register. At most one open shift may exist per
// register: the check runs inside the insert transaction and the partial
// unique index backstops it against races.
func (s *service) Open(ctx context.Context, act actor.Actor, registerID uuid.UUID, openingFloat decimal.Decimal) (*models.Shift, error) {
	if err := act.Validate(); err != nil {
		return nil, err
	}
	if registerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "register id is required")
	}
	if openingFloat.IsNegative() {
		openingFloat = decimal.Zero
	}

	var shift *models.Shift
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		register, err := s.catalog.WithTx(tx).GetRegister(ctx, act.TenantID, registerID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading register")
		}
		if register == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "register not found")
		}
		if !register.IsActive {
			return pkgerrors.New(pkgerrors.CodeValidation, "register is inactive")
		}
		if register.StoreID != act.StoreID {
			return pkgerrors.New(pkgerrors.CodeValidation, "register belongs to a different store")
		}

		open, err := repo.GetOpenByRegister(ctx, act.TenantID, registerID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking open shift")
		}
		if open != nil {
			return pkgerrors.New(pkgerrors.CodeConsistency, "register already has an open shift")
		}

		shift = &models.Shift{
			ID:           uuid.New(),
			TenantID:     act.TenantID,
			StoreID:      act.StoreID,
			RegisterID:   registerID,
			UserID:       act.UserID,
			OpenedAt:     time.Now().UTC(),
			OpeningFloat: openingFloat,
		}
		if err := repo.Create(ctx, shift); err != nil {
			if db.IsUniqueViolation(err, openShiftConstraint) {
				return pkgerrors.New(pkgerrors.CodeConsistency, "register already has an open shift")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating shift")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return shift, nil
}

// Close ends the shift and returns the reconciliation report.
func (s *service) Close(ctx context.Context, act actor.Actor, shiftID uuid.UUID, closingCash decimal.Decimal) (*models.Shift, *Report, error) {
	if err := act.Validate(); err != nil {
		return nil, nil, err
	}
	if closingCash.IsNegative() {
		closingCash = decimal.Zero
	}

	var (
		shift  *models.Shift
		report *Report
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		locked, err := repo.Lock(ctx, act.TenantID, shiftID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "locking shift")
		}
		if locked == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "shift not found")
		}
		if !locked.IsOpen() {
			return pkgerrors.New(pkgerrors.CodeValidation, "shift is already closed")
		}
		if err := s.authorizeShiftActor(act, locked); err != nil {
			return err
		}

		closedAt := time.Now().UTC()
		closed, err := repo.Close(ctx, locked.ID, closedAt, closingCash)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "closing shift")
		}
		if !closed {
			return pkgerrors.New(pkgerrors.CodeConsistency, "shift was closed concurrently")
		}
		locked.ClosedAt = &closedAt
		locked.ClosingCash = &closingCash

		shiftOrders, err := repo.ListOrders(ctx, locked.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading shift orders")
		}
		movements, err := repo.ListMovements(ctx, locked.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cash movements")
		}
		shift = locked
		report = buildReport(locked, shiftOrders, movements)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return shift, report, nil
}

// MoveCash appends one immutable drawer movement. Only the shift's own
// cashier or a manager/admin may act.
func (s *service) MoveCash(ctx context.Context, act actor.Actor, input MoveCashInput) (*models.CashMovement, error) {
	if err := act.Validate(); err != nil {
		return nil, err
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cash movement type")
	}
	if !input.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}

	var movement *models.CashMovement
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		shift, err := repo.Lock(ctx, act.TenantID, input.ShiftID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "locking shift")
		}
		if shift == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "shift not found")
		}
		if !shift.IsOpen() {
			return pkgerrors.New(pkgerrors.CodeValidation, "shift is closed")
		}
		if err := s.authorizeShiftActor(act, shift); err != nil {
			return err
		}

		movement = &models.CashMovement{
			ID:        uuid.New(),
			ShiftID:   shift.ID,
			Type:      input.Type,
			Amount:    input.Amount,
			Reason:    input.Reason,
			CreatedBy: act.UserID,
		}
		if err := repo.CreateMovement(ctx, movement); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating cash movement")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return movement, nil
}

// AttachOrder binds an order to a shift exactly once. Re-attaching to the
// same shift is a no-op; any other rebinding is rejected.
func (s *service) AttachOrder(ctx context.Context, act actor.Actor, orderID, shiftID uuid.UUID) (*models.Order, error) {
	if err := act.Validate(); err != nil {
		return nil, err
	}

	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		ordersRepo := s.orders.WithTx(tx)

		shift, err := repo.Lock(ctx, act.TenantID, shiftID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "locking shift")
		}
		if shift == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "shift not found")
		}
		if !shift.IsOpen() {
			return pkgerrors.New(pkgerrors.CodeValidation, "shift is closed")
		}

		locked, err := ordersRepo.Lock(ctx, act.TenantID, orderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "locking order")
		}
		if locked == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		if locked.ShiftID != nil {
			if *locked.ShiftID == shift.ID {
				order = locked
				return nil
			}
			return pkgerrors.New(pkgerrors.CodeConsistency, "order already belongs to another shift")
		}
		if locked.StoreID != shift.StoreID {
			return pkgerrors.New(pkgerrors.CodeConsistency, "order belongs to a different store")
		}

		locked.ShiftID = &shift.ID
		if err := ordersRepo.UpdateOrder(ctx, locked); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "attaching order")
		}
		order = locked
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// BuildReport rebuilds the reconciliation report from the shift's full
// history.
func (s *service) BuildReport(ctx context.Context, act actor.Actor, shiftID uuid.UUID) (*Report, error) {
	if err := act.ValidateTenant(); err != nil {
		return nil, err
	}

	shift, err := s.repo.Get(ctx, act.TenantID, shiftID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading shift")
	}
	if shift == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shift not found")
	}

	shiftOrders, err := s.repo.ListOrders(ctx, shift.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading shift orders")
	}
	movements, err := s.repo.ListMovements(ctx, shift.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cash movements")
	}
	return buildReport(shift, shiftOrders, movements), nil
}

func (s *service) authorizeShiftActor(act actor.Actor, shift *models.Shift) error {
	if shift.UserID == act.UserID || act.Role.CanManageShifts() {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "only the shift owner or a manager may act on this shift")
}

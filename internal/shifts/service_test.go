package shifts

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tillworks/tillworks-backend/internal/catalog"
	"github.com/tillworks/tillworks-backend/internal/orders"
	"github.com/tillworks/tillworks-backend/pkg/actor"
	"github.com/tillworks/tillworks-backend/pkg/db/models"
	"github.com/tillworks/tillworks-backend/pkg/enums"
	pkgerrors "github.com/tillworks/tillworks-backend/pkg/errors"
	"github.com/tillworks/tillworks-backend/pkg/logger"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func setupShiftsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{
		`CREATE TABLE stores (
  id TEXT PRIMARY KEY, tenant_id TEXT NOT NULL, name TEXT NOT NULL,
  is_active INTEGER NOT NULL DEFAULT 1, created_at DATETIME, updated_at DATETIME
);`,
		`CREATE TABLE registers (
  id TEXT PRIMARY KEY, tenant_id TEXT NOT NULL, store_id TEXT NOT NULL,
  name TEXT NOT NULL, is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME, updated_at DATETIME
);`,
		`CREATE TABLE users (
  id TEXT PRIMARY KEY, tenant_id TEXT NOT NULL, name TEXT NOT NULL,
  role TEXT NOT NULL DEFAULT 'cashier', store_id TEXT,
  created_at DATETIME, updated_at DATETIME
);`,
		`CREATE TABLE shifts (
  id TEXT PRIMARY KEY, tenant_id TEXT NOT NULL, store_id TEXT NOT NULL,
  register_id TEXT NOT NULL, user_id TEXT NOT NULL,
  opened_at DATETIME NOT NULL, closed_at DATETIME,
  opening_float TEXT NOT NULL DEFAULT '0', closing_cash TEXT,
  created_at DATETIME, updated_at DATETIME
);`,
		`CREATE UNIQUE INDEX uq_shifts_open_register ON shifts (register_id) WHERE closed_at IS NULL;`,
		`CREATE TABLE cash_movements (
  id TEXT PRIMARY KEY, shift_id TEXT NOT NULL, type TEXT NOT NULL,
  amount TEXT NOT NULL, reason TEXT, created_by TEXT NOT NULL, created_at DATETIME
);`,
		`CREATE TABLE orders (
  id TEXT PRIMARY KEY, tenant_id TEXT NOT NULL, store_id TEXT NOT NULL,
  cashier_id TEXT NOT NULL, customer_id TEXT, shift_id TEXT,
  status TEXT NOT NULL DEFAULT 'draft',
  subtotal TEXT NOT NULL DEFAULT '0', discount TEXT NOT NULL DEFAULT '0',
  manual_discount TEXT NOT NULL DEFAULT '0', tax TEXT NOT NULL DEFAULT '0',
  total TEXT NOT NULL DEFAULT '0', refunded_total TEXT NOT NULL DEFAULT '0',
  payment_method TEXT, created_at DATETIME, updated_at DATETIME
);`,
		`CREATE TABLE order_items (
  id TEXT PRIMARY KEY, order_id TEXT NOT NULL, product_id TEXT NOT NULL,
  variant_id TEXT NOT NULL, qty TEXT NOT NULL, unit_price TEXT NOT NULL,
  cogs_amount TEXT NOT NULL DEFAULT '0', note TEXT,
  created_at DATETIME, updated_at DATETIME
);`,
		`CREATE TABLE order_item_options (
  id TEXT PRIMARY KEY, order_item_id TEXT NOT NULL, option_id TEXT NOT NULL,
  price_delta TEXT NOT NULL DEFAULT '0', created_at DATETIME
);`,
		`CREATE TABLE payments (
  id TEXT PRIMARY KEY, order_id TEXT NOT NULL, amount TEXT NOT NULL,
  method TEXT NOT NULL, status TEXT NOT NULL DEFAULT 'captured', created_at DATETIME
);`,
	}
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

type shiftFixture struct {
	db       *gorm.DB
	svc      Service
	act      actor.Actor
	register models.Register
}

func newShiftFixture(t *testing.T) *shiftFixture {
	t.Helper()

	db := setupShiftsTestDB(t)
	logg := logger.New(logger.Options{ServiceName: "shifts-test", Output: io.Discard})
	runner := gormTxRunner{db: db}

	act := actor.Actor{
		TenantID: uuid.New(),
		StoreID:  uuid.New(),
		UserID:   uuid.New(),
		Role:     enums.MemberRoleCashier,
	}

	require.NoError(t, db.Create(&models.Store{ID: act.StoreID, TenantID: act.TenantID, Name: "Main", IsActive: true}).Error)
	require.NoError(t, db.Create(&models.User{ID: act.UserID, TenantID: act.TenantID, Name: "Cashier", Role: enums.MemberRoleCashier}).Error)

	register := models.Register{
		ID:       uuid.New(),
		TenantID: act.TenantID,
		StoreID:  act.StoreID,
		Name:     "Front",
		IsActive: true,
	}
	require.NoError(t, db.Create(&register).Error)

	svc, err := NewService(NewRepository(db), catalog.NewRepository(db), orders.NewRepository(db), runner, logg)
	require.NoError(t, err)

	return &shiftFixture{db: db, svc: svc, act: act, register: register}
}

func (f *shiftFixture) openShift(t *testing.T, openingFloat string) *models.Shift {
	t.Helper()
	shift, err := f.svc.Open(context.Background(), f.act, f.register.ID, decimal.RequireFromString(openingFloat))
	require.NoError(t, err)
	return shift
}

func (f *shiftFixture) seedPaidOrder(t *testing.T, shiftID uuid.UUID, total string, method enums.PaymentMethod, withPaymentRow bool) models.Order {
	t.Helper()
	order := models.Order{
		ID:            uuid.New(),
		TenantID:      f.act.TenantID,
		StoreID:       f.act.StoreID,
		CashierID:     f.act.UserID,
		ShiftID:       &shiftID,
		Status:        enums.OrderStatusPaid,
		Subtotal:      decimal.RequireFromString(total),
		Total:         decimal.RequireFromString(total),
		PaymentMethod: &method,
	}
	require.NoError(t, f.db.Create(&order).Error)
	if withPaymentRow {
		require.NoError(t, f.db.Create(&models.Payment{
			ID:      uuid.New(),
			OrderID: order.ID,
			Amount:  order.Total,
			Method:  method,
			Status:  enums.PaymentStatusCaptured,
		}).Error)
	}
	return order
}

func TestOpenShiftEnforcesSingleOpenPerRegister(t *testing.T) {
	f := newShiftFixture(t)

	f.openShift(t, "100")

	_, err := f.svc.Open(context.Background(), f.act, f.register.ID, decimal.Zero)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConsistency), "got %v", err)
}

func TestOpenShiftAfterCloseSucceeds(t *testing.T) {
	f := newShiftFixture(t)

	shift := f.openShift(t, "100")
	_, _, err := f.svc.Close(context.Background(), f.act, shift.ID, decimal.NewFromInt(100))
	require.NoError(t, err)

	second := f.openShift(t, "50")
	require.NotEqual(t, shift.ID, second.ID)
}

func TestOpenShiftClampsNegativeFloat(t *testing.T) {
	f := newShiftFixture(t)

	shift, err := f.svc.Open(context.Background(), f.act, f.register.ID, decimal.NewFromInt(-25))
	require.NoError(t, err)
	require.True(t, shift.OpeningFloat.IsZero())
}

func TestOpenShiftRejectsForeignRegister(t *testing.T) {
	f := newShiftFixture(t)

	foreign := models.Register{
		ID:       uuid.New(),
		TenantID: f.act.TenantID,
		StoreID:  uuid.New(),
		Name:     "Back",
		IsActive: true,
	}
	require.NoError(t, f.db.Create(&foreign).Error)

	_, err := f.svc.Open(context.Background(), f.act, foreign.ID, decimal.Zero)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
}

func TestCloseShiftTwiceFails(t *testing.T) {
	f := newShiftFixture(t)

	shift := f.openShift(t, "100")
	_, _, err := f.svc.Close(context.Background(), f.act, shift.ID, decimal.NewFromInt(100))
	require.NoError(t, err)

	_, _, err = f.svc.Close(context.Background(), f.act, shift.ID, decimal.NewFromInt(100))
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
}

func TestMoveCashValidation(t *testing.T) {
	f := newShiftFixture(t)
	shift := f.openShift(t, "100")

	_, err := f.svc.MoveCash(context.Background(), f.act, MoveCashInput{
		ShiftID: shift.ID,
		Type:    enums.CashMovementTypeIn,
		Amount:  decimal.Zero,
	})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "zero amount: %v", err)

	_, err = f.svc.MoveCash(context.Background(), f.act, MoveCashInput{
		ShiftID: shift.ID,
		Type:    enums.CashMovementType("deposit"),
		Amount:  decimal.NewFromInt(5),
	})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "bad type: %v", err)

	_, _, err = f.svc.Close(context.Background(), f.act, shift.ID, decimal.NewFromInt(100))
	require.NoError(t, err)

	_, err = f.svc.MoveCash(context.Background(), f.act, MoveCashInput{
		ShiftID: shift.ID,
		Type:    enums.CashMovementTypeIn,
		Amount:  decimal.NewFromInt(5),
	})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "closed shift: %v", err)
}

func TestMoveCashOwnershipRoles(t *testing.T) {
	f := newShiftFixture(t)
	shift := f.openShift(t, "100")

	otherCashier := f.act
	otherCashier.UserID = uuid.New()
	_, err := f.svc.MoveCash(context.Background(), otherCashier, MoveCashInput{
		ShiftID: shift.ID,
		Type:    enums.CashMovementTypeIn,
		Amount:  decimal.NewFromInt(5),
	})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "foreign cashier: %v", err)

	manager := otherCashier
	manager.Role = enums.MemberRoleManager
	movement, err := f.svc.MoveCash(context.Background(), manager, MoveCashInput{
		ShiftID: shift.ID,
		Type:    enums.CashMovementTypeOut,
		Amount:  decimal.NewFromInt(5),
	})
	require.NoError(t, err)
	require.Equal(t, manager.UserID, movement.CreatedBy)
}

func TestAttachOrderExactlyOnce(t *testing.T) {
	f := newShiftFixture(t)
	shift := f.openShift(t, "100")

	order := models.Order{
		ID:        uuid.New(),
		TenantID:  f.act.TenantID,
		StoreID:   f.act.StoreID,
		CashierID: f.act.UserID,
		Status:    enums.OrderStatusDraft,
	}
	require.NoError(t, f.db.Create(&order).Error)

	attached, err := f.svc.AttachOrder(context.Background(), f.act, order.ID, shift.ID)
	require.NoError(t, err)
	require.NotNil(t, attached.ShiftID)
	require.Equal(t, shift.ID, *attached.ShiftID)

	// Re-attaching to the same shift is a no-op.
	_, err = f.svc.AttachOrder(context.Background(), f.act, order.ID, shift.ID)
	require.NoError(t, err)

	_, _, err = f.svc.Close(context.Background(), f.act, shift.ID, decimal.NewFromInt(100))
	require.NoError(t, err)
	second := f.openShift(t, "0")

	_, err = f.svc.AttachOrder(context.Background(), f.act, order.ID, second.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConsistency), "rebind: %v", err)
}

func TestAttachOrderRejectsForeignStore(t *testing.T) {
	f := newShiftFixture(t)
	shift := f.openShift(t, "0")

	order := models.Order{
		ID:        uuid.New(),
		TenantID:  f.act.TenantID,
		StoreID:   uuid.New(),
		CashierID: f.act.UserID,
		Status:    enums.OrderStatusDraft,
	}
	require.NoError(t, f.db.Create(&order).Error)

	_, err := f.svc.AttachOrder(context.Background(), f.act, order.ID, shift.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConsistency), "got %v", err)
}

func TestReconciliationReport(t *testing.T) {
	f := newShiftFixture(t)
	shift := f.openShift(t, "100")

	f.seedPaidOrder(t, shift.ID, "150.00", enums.PaymentMethodCash, true)

	_, err := f.svc.MoveCash(context.Background(), f.act, MoveCashInput{
		ShiftID: shift.ID,
		Type:    enums.CashMovementTypeIn,
		Amount:  decimal.NewFromInt(20),
	})
	require.NoError(t, err)
	_, err = f.svc.MoveCash(context.Background(), f.act, MoveCashInput{
		ShiftID: shift.ID,
		Type:    enums.CashMovementTypeOut,
		Amount:  decimal.NewFromInt(10),
	})
	require.NoError(t, err)

	_, report, err := f.svc.Close(context.Background(), f.act, shift.ID, decimal.NewFromInt(260))
	require.NoError(t, err)

	require.Equal(t, 1, report.SalesCount)
	require.True(t, report.GrossSales.Equal(decimal.RequireFromString("150.00")))
	require.True(t, report.CashSales.Equal(decimal.RequireFromString("150.00")))
	require.True(t, report.CashIn.Equal(decimal.NewFromInt(20)))
	require.True(t, report.CashOut.Equal(decimal.NewFromInt(10)))
	require.True(t, report.ExpectedCash.Equal(decimal.NewFromInt(260)), "expected cash %s", report.ExpectedCash)
	require.NotNil(t, report.CashOverShort)
	require.True(t, report.CashOverShort.IsZero(), "over/short %s", report.CashOverShort)
}

func TestReportCashFallbackAndRefunds(t *testing.T) {
	f := newShiftFixture(t)
	shift := f.openShift(t, "50")

	// Cash order without an explicit payment row: the order total is used.
	f.seedPaidOrder(t, shift.ID, "40.00", enums.PaymentMethodCash, false)
	// Card order must not count toward cash.
	f.seedPaidOrder(t, shift.ID, "30.00", enums.PaymentMethodCard, true)

	method := enums.PaymentMethodCash
	refunded := models.Order{
		ID:            uuid.New(),
		TenantID:      f.act.TenantID,
		StoreID:       f.act.StoreID,
		CashierID:     f.act.UserID,
		ShiftID:       &shift.ID,
		Status:        enums.OrderStatusRefunded,
		Total:         decimal.RequireFromString("15.00"),
		RefundedTotal: decimal.RequireFromString("15.00"),
		PaymentMethod: &method,
	}
	require.NoError(t, f.db.Create(&refunded).Error)

	report, err := f.svc.BuildReport(context.Background(), f.act, shift.ID)
	require.NoError(t, err)

	require.Equal(t, 2, report.SalesCount)
	require.True(t, report.GrossSales.Equal(decimal.RequireFromString("70.00")))
	require.True(t, report.RefundTotal.Equal(decimal.RequireFromString("15.00")))
	require.True(t, report.Net.Equal(decimal.RequireFromString("55.00")))
	// The refunded order's cash entered the drawer too, so it counts in
	// cash_sales before it is subtracted again via cash_refunds.
	require.True(t, report.CashSales.Equal(decimal.RequireFromString("55.00")), "cash sales %s", report.CashSales)
	require.True(t, report.CashRefunds.Equal(decimal.RequireFromString("15.00")))
	// 50 + 0 - 0 + 55 - 15
	require.True(t, report.ExpectedCash.Equal(decimal.RequireFromString("90.00")), "expected cash %s", report.ExpectedCash)
	require.Nil(t, report.CashOverShort, "open shift has no over/short")
}

func TestReportCashSaleRefundedWithinShift(t *testing.T) {
	f := newShiftFixture(t)
	shift := f.openShift(t, "100")

	order := f.seedPaidOrder(t, shift.ID, "150.00", enums.PaymentMethodCash, true)
	require.NoError(t, f.db.Model(&models.Order{}).
		Where("id = ?", order.ID).
		Updates(map[string]any{
			"status":         enums.OrderStatusRefunded,
			"refunded_total": order.Total,
		}).Error)

	report, err := f.svc.BuildReport(context.Background(), f.act, shift.ID)
	require.NoError(t, err)

	require.Equal(t, 0, report.SalesCount)
	require.True(t, report.RefundTotal.Equal(decimal.RequireFromString("150.00")))
	require.True(t, report.CashSales.Equal(decimal.RequireFromString("150.00")), "cash sales %s", report.CashSales)
	require.True(t, report.CashRefunds.Equal(decimal.RequireFromString("150.00")))
	// The sale's cash came in and the refund paid it back out: the drawer
	// nets to the opening float.
	require.True(t, report.ExpectedCash.Equal(decimal.NewFromInt(100)), "expected cash %s", report.ExpectedCash)
}

func TestBuildReportUnknownShift(t *testing.T) {
	f := newShiftFixture(t)

	_, err := f.svc.BuildReport(context.Background(), f.act, uuid.New())
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "got %v", err)
}

func TestShiftTimestamps(t *testing.T) {
	f := newShiftFixture(t)

	before := time.Now().Add(-time.Minute)
	shift := f.openShift(t, "0")
	require.True(t, shift.OpenedAt.After(before))
	require.Nil(t, shift.ClosedAt)
}

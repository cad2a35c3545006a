package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tillworks/tillworks-backend/internal/inventory"
	"github.com/tillworks/tillworks-backend/internal/orders"
	"github.com/tillworks/tillworks-backend/internal/shifts"
	"github.com/tillworks/tillworks-backend/pkg/actor"
	pkgauth "github.com/tillworks/tillworks-backend/pkg/auth"
	"github.com/tillworks/tillworks-backend/pkg/config"
	"github.com/tillworks/tillworks-backend/pkg/db/models"
	"github.com/tillworks/tillworks-backend/pkg/enums"
	"github.com/tillworks/tillworks-backend/pkg/logger"
)

type stubOrdersService struct{}

func (stubOrdersService) CreateDraft(context.Context, actor.Actor) (*orders.Result, error) {
	return emptyResult(), nil
}

func (stubOrdersService) Get(context.Context, actor.Actor, uuid.UUID) (*orders.Result, error) {
	return emptyResult(), nil
}

func (stubOrdersService) List(context.Context, actor.Actor, orders.ListInput) (*orders.ListResult, error) {
	return &orders.ListResult{}, nil
}

func (stubOrdersService) AddItem(context.Context, actor.Actor, uuid.UUID, uuid.UUID, decimal.Decimal) (*orders.Result, error) {
	return emptyResult(), nil
}

func (stubOrdersService) Checkout(context.Context, actor.Actor, uuid.UUID) (*orders.Result, error) {
	return emptyResult(), nil
}

func (stubOrdersService) ApplyDiscount(context.Context, actor.Actor, uuid.UUID, decimal.Decimal) (*orders.Result, error) {
	return emptyResult(), nil
}

func (stubOrdersService) SetCustomer(context.Context, actor.Actor, uuid.UUID, uuid.UUID) (*orders.Result, error) {
	return emptyResult(), nil
}

func (stubOrdersService) Capture(context.Context, actor.Actor, orders.CaptureInput) (*orders.Result, error) {
	return emptyResult(), nil
}

func (stubOrdersService) Refund(context.Context, actor.Actor, uuid.UUID) (*orders.Result, error) {
	return emptyResult(), nil
}

func emptyResult() *orders.Result {
	return &orders.Result{Order: &models.Order{ID: uuid.New(), Status: enums.OrderStatusDraft}}
}

type stubInventoryService struct{}

func (stubInventoryService) GetOnHand(context.Context, actor.Actor, uuid.UUID) (decimal.Decimal, error) {
	return decimal.NewFromInt(5), nil
}

func (stubInventoryService) Adjust(context.Context, actor.Actor, inventory.AdjustInput) (decimal.Decimal, error) {
	return decimal.NewFromInt(5), nil
}

func (stubInventoryService) ApplyDelta(context.Context, *gorm.DB, actor.Actor, inventory.AdjustInput) (decimal.Decimal, error) {
	return decimal.NewFromInt(5), nil
}

type stubShiftsService struct{}

func (stubShiftsService) Open(context.Context, actor.Actor, uuid.UUID, decimal.Decimal) (*models.Shift, error) {
	return &models.Shift{ID: uuid.New(), OpenedAt: time.Now()}, nil
}

func (stubShiftsService) Close(context.Context, actor.Actor, uuid.UUID, decimal.Decimal) (*models.Shift, *shifts.Report, error) {
	now := time.Now()
	return &models.Shift{ID: uuid.New(), OpenedAt: now, ClosedAt: &now}, &shifts.Report{}, nil
}

func (stubShiftsService) MoveCash(context.Context, actor.Actor, shifts.MoveCashInput) (*models.CashMovement, error) {
	return &models.CashMovement{ID: uuid.New()}, nil
}

func (stubShiftsService) AttachOrder(context.Context, actor.Actor, uuid.UUID, uuid.UUID) (*models.Order, error) {
	return &models.Order{ID: uuid.New()}, nil
}

func (stubShiftsService) BuildReport(context.Context, actor.Actor, uuid.UUID) (*shifts.Report, error) {
	return &shifts.Report{}, nil
}

func testRouter(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "router-test", Output: io.Discard})
	return NewRouter(cfg, logg, nil, nil, prometheus.NewRegistry(), stubOrdersService{}, stubInventoryService{}, stubShiftsService{})
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test"},
		JWT: config.JWTConfig{Secret: "router-secret", Issuer: "tillworks", ExpirationMinutes: 60},
	}
}

func mintToken(t *testing.T, cfg *config.Config) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), pkgauth.AccessTokenPayload{
		UserID:   uuid.New(),
		TenantID: uuid.New(),
		StoreID:  uuid.New(),
		Role:     enums.MemberRoleCashier,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLiveIsPublic(t *testing.T) {
	router := testRouter(t, testConfig())

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestMetricsEndpointExposed(t *testing.T) {
	router := testRouter(t, testConfig())

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestOrdersRequireAuth(t *testing.T) {
	router := testRouter(t, testConfig())

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/orders", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestOrdersAcceptValidToken(t *testing.T) {
	cfg := testConfig()
	router := testRouter(t, cfg)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, cfg))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestCaptureRouteIsWired(t *testing.T) {
	cfg := testConfig()
	router := testRouter(t, cfg)

	// No redis store is configured, so the idempotency middleware passes through.
	body := strings.NewReader(`{"method":"cash"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/"+uuid.NewString()+"/capture", body)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, cfg))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestShiftReportRouteIsWired(t *testing.T) {
	cfg := testConfig()
	router := testRouter(t, cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/shifts/"+uuid.NewString()+"/report", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, cfg))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

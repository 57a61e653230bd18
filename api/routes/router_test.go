package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/scraploop/scraploop-backend/internal/coupons"
	"github.com/scraploop/scraploop-backend/internal/notifications"
	"github.com/scraploop/scraploop-backend/internal/orders"
	"github.com/scraploop/scraploop-backend/internal/wallet"
	pkgAuth "github.com/scraploop/scraploop-backend/pkg/auth"
	"github.com/scraploop/scraploop-backend/pkg/config"
	"github.com/scraploop/scraploop-backend/pkg/db/models"
	"github.com/scraploop/scraploop-backend/pkg/enums"
	"github.com/scraploop/scraploop-backend/pkg/logger"
	"github.com/scraploop/scraploop-backend/pkg/pagination"
	"github.com/scraploop/scraploop-backend/pkg/redis"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubOrdersService struct {
	available func(ctx context.Context, collectorID uuid.UUID, tier enums.QuantityType, params pagination.Params) (*orders.OrderList, error)
}

func (s stubOrdersService) Create(ctx context.Context, input orders.CreateOrderInput) (*models.Order, error) {
	return &models.Order{}, nil
}

func (s stubOrdersService) Get(ctx context.Context, orderID uuid.UUID, actor orders.Actor) (*models.Order, error) {
	return &models.Order{}, nil
}

func (s stubOrdersService) Accept(ctx context.Context, orderID, collectorID uuid.UUID) (*models.Order, error) {
	return &models.Order{}, nil
}

func (s stubOrdersService) Forward(ctx context.Context, input orders.ForwardInput) (*models.Order, error) {
	return &models.Order{}, nil
}

func (s stubOrdersService) UpdateStatus(ctx context.Context, input orders.UpdateStatusInput) (*models.Order, error) {
	return &models.Order{}, nil
}

func (s stubOrdersService) Cancel(ctx context.Context, input orders.CancelInput) (*models.Order, error) {
	return &models.Order{}, nil
}

func (s stubOrdersService) ListAvailable(ctx context.Context, collectorID uuid.UUID, tier enums.QuantityType, params pagination.Params) (*orders.OrderList, error) {
	if s.available != nil {
		return s.available(ctx, collectorID, tier, params)
	}
	return &orders.OrderList{}, nil
}

func (s stubOrdersService) ListMine(ctx context.Context, requesterID uuid.UUID, params pagination.Params) (*orders.OrderList, error) {
	return &orders.OrderList{}, nil
}

func (s stubOrdersService) ListAssigned(ctx context.Context, collectorID uuid.UUID, params pagination.Params) (*orders.OrderList, error) {
	return &orders.OrderList{}, nil
}

func (s stubOrdersService) ListForwarded(ctx context.Context, collectorID uuid.UUID, params pagination.Params) (*orders.OrderList, error) {
	return &orders.OrderList{}, nil
}

type stubWalletService struct{}

func (stubWalletService) GetOrCreateAccount(ctx context.Context, ownerType enums.OwnerType, ownerID uuid.UUID) (*models.WalletAccount, error) {
	return &models.WalletAccount{}, nil
}

func (stubWalletService) Profile(ctx context.Context, ownerType enums.OwnerType, ownerID uuid.UUID, params pagination.Params) (*wallet.Profile, error) {
	return &wallet.Profile{}, nil
}

func (stubWalletService) ValidateBalance(ctx context.Context, ownerType enums.OwnerType, ownerID uuid.UUID, minimumPaise int64) error {
	return nil
}

func (stubWalletService) Credit(ctx context.Context, input wallet.EntryInput) (*models.WalletTransaction, error) {
	return &models.WalletTransaction{}, nil
}

func (stubWalletService) Debit(ctx context.Context, input wallet.EntryInput) (*models.WalletTransaction, error) {
	return &models.WalletTransaction{}, nil
}

func (stubWalletService) ApplyTx(ctx context.Context, tx *gorm.DB, input wallet.EntryInput) (*models.WalletTransaction, error) {
	return &models.WalletTransaction{}, nil
}

func (stubWalletService) Transfer(ctx context.Context, input wallet.TransferInput) error {
	return nil
}

func (stubWalletService) SettleOrderTx(ctx context.Context, tx *gorm.DB, input wallet.SettlementInput) (*wallet.Settlement, error) {
	return &wallet.Settlement{}, nil
}

func (stubWalletService) CreditFromExternalPayment(ctx context.Context, input wallet.ExternalCreditInput) (*models.WalletTransaction, bool, error) {
	return &models.WalletTransaction{}, false, nil
}

func (stubWalletService) RequestWithdrawal(ctx context.Context, input wallet.WithdrawalInput) (*models.PayoutRequest, error) {
	return &models.PayoutRequest{}, nil
}

type stubCouponsService struct{}

func (stubCouponsService) Validate(ctx context.Context, code string, ownerType enums.OwnerType, ownerID uuid.UUID) (*models.Coupon, error) {
	return &models.Coupon{}, nil
}

func (stubCouponsService) Redeem(ctx context.Context, input coupons.RedeemInput) (*coupons.Redemption, error) {
	return &coupons.Redemption{}, nil
}

func (stubCouponsService) ListAvailable(ctx context.Context, ownerType enums.OwnerType, ownerID uuid.UUID) ([]models.Coupon, error) {
	return nil, nil
}

type stubNotificationsService struct{}

func (stubNotificationsService) List(ctx context.Context, params notifications.ListParams) (*notifications.ListResult, error) {
	return &notifications.ListResult{}, nil
}

func (stubNotificationsService) MarkRead(ctx context.Context, ownerType enums.OwnerType, ownerID, notificationID uuid.UUID) error {
	return nil
}

func (stubNotificationsService) MarkAllRead(ctx context.Context, ownerType enums.OwnerType, ownerID uuid.UUID) (int64, error) {
	return 0, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "issuer",
			ExpirationMinutes: 60,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(
		cfg,
		logg,
		stubPinger{},
		(*redis.Client)(nil),
		nil, // razorpay gateway unused in routing tests
		stubOrdersService{},
		stubWalletService{},
		stubCouponsService{},
		stubNotificationsService{},
	)
}

func TestPrivateGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestPrivateGroupSucceedsWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.ActorRoleRequester))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for private ping got %d", resp.Code)
	}
}

func TestPublicPingNeedsNoToken(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/public/ping", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for public ping got %d", resp.Code)
	}
}

func TestAvailableOrdersRequiresCollectorRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	requester := httptest.NewRequest(http.MethodGet, "/api/v1/orders/available", nil)
	requester.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.ActorRoleRequester))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, requester)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for requester got %d", resp.Code)
	}

	collector := httptest.NewRequest(http.MethodGet, "/api/v1/orders/available", nil)
	collector.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.ActorRoleCollector))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, collector)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for collector got %d", resp.Code)
	}
}

func TestCreateOrderRequiresRequesterRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	collector := httptest.NewRequest(http.MethodPost, "/api/v1/orders", nil)
	collector.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.ActorRoleCollector))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, collector)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for collector create got %d", resp.Code)
	}
}

func TestMyOrdersRequiresRequesterRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	collector := httptest.NewRequest(http.MethodGet, "/api/v1/orders/mine", nil)
	collector.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.ActorRoleCollector))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, collector)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for collector got %d", resp.Code)
	}

	requester := httptest.NewRequest(http.MethodGet, "/api/v1/orders/mine", nil)
	requester.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.ActorRoleRequester))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, requester)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for requester got %d", resp.Code)
	}
}

func TestWalletProfileReturnsForOwnerRoles(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	for _, role := range []enums.ActorRole{enums.ActorRoleRequester, enums.ActorRoleCollector} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/wallet/profile", nil)
		req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, role))
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("role %s: expected 200 got %d", role, resp.Code)
		}
	}

	admin := httptest.NewRequest(http.MethodGet, "/api/v1/wallet/profile", nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.ActorRoleAdmin))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for admin wallet got %d", resp.Code)
	}
}

func TestHealthEndpointsArePublic(t *testing.T) {
	router := newTestRouter(testConfig())

	for _, path := range []string{"/health/live", "/health/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d", path, resp.Code)
		}
	}
}

func buildToken(t *testing.T, cfg *config.Config, role enums.ActorRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

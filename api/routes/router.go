package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/scraploop/scraploop-backend/api/controllers"
	"github.com/scraploop/scraploop-backend/api/middleware"
	"github.com/scraploop/scraploop-backend/internal/coupons"
	"github.com/scraploop/scraploop-backend/internal/notifications"
	"github.com/scraploop/scraploop-backend/internal/orders"
	"github.com/scraploop/scraploop-backend/internal/wallet"
	"github.com/scraploop/scraploop-backend/pkg/config"
	"github.com/scraploop/scraploop-backend/pkg/db"
	"github.com/scraploop/scraploop-backend/pkg/enums"
	"github.com/scraploop/scraploop-backend/pkg/logger"
	"github.com/scraploop/scraploop-backend/pkg/razorpay"
	"github.com/scraploop/scraploop-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	gateway *razorpay.Client,
	ordersService orders.Service,
	walletService wallet.Service,
	couponsService coupons.Service,
	notificationsService notifications.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	var redisP redis.Pinger
	if redisClient != nil {
		redisP = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	r.Get("/api/public/ping", controllers.PublicPing())
	r.Post("/api/public/webhooks/razorpay", controllers.RazorpayWebhook(gateway, walletService, logg))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		if redisClient != nil {
			r.Use(middleware.Idempotency(redisClient, logg))
			r.Use(middleware.RateLimit(redisClient, logg))
		}

		r.Get("/ping", controllers.PrivatePing())

		r.Route("/orders", func(r chi.Router) {
			r.With(middleware.RequireRole(string(enums.ActorRoleRequester), logg)).
				Post("/", controllers.CreateOrder(ordersService, logg))
			r.With(middleware.RequireRole(string(enums.ActorRoleRequester), logg)).
				Get("/mine", controllers.MyOrders(ordersService, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(string(enums.ActorRoleCollector), logg))
				r.Get("/available", controllers.AvailableOrders(ordersService, logg))
				r.Get("/my-assigned", controllers.MyAssignedOrders(ordersService, logg))
				r.Get("/my-forwarded", controllers.MyForwardedOrders(ordersService, logg))
				r.Post("/{orderId}/accept", controllers.AcceptOrder(ordersService, logg))
				r.Post("/{orderId}/forward", controllers.ForwardOrder(ordersService, logg))
			})

			r.Get("/{orderId}", controllers.OrderDetail(ordersService, logg))
			r.Put("/{orderId}/status", controllers.UpdateOrderStatus(ordersService, logg))
			r.Post("/{orderId}/cancel", controllers.CancelOrder(ordersService, logg))
		})

		r.Route("/wallet", func(r chi.Router) {
			r.Get("/profile", controllers.WalletProfile(walletService, logg))
			r.Post("/recharge/create", controllers.WalletRechargeCreate(gateway, logg))
			r.Post("/recharge/verify", controllers.WalletRechargeVerify(gateway, walletService, logg))
			r.Post("/withdraw", controllers.WalletWithdraw(walletService, logg))
			r.Post("/apply-coupon", controllers.ApplyCoupon(couponsService, logg))
			r.Get("/coupons", controllers.AvailableCoupons(couponsService, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(notificationsService, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(notificationsService, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(notificationsService, logg))
		})
	})

	return r
}

package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aelshahawy/dokan/internal/auth"
	"github.com/aelshahawy/dokan/internal/billing"
	"github.com/aelshahawy/dokan/internal/domain"
	"github.com/aelshahawy/dokan/internal/middleware"
	"github.com/aelshahawy/dokan/internal/telemetry"
)

// Services bundles the business services the HTTP surface exposes.
type Services struct {
	Carts    domain.CartService
	Coupons  domain.CouponService
	Orders   domain.OrderService
	Checkout domain.CheckoutService
}

// Register mounts all routes on e: the authenticated API, the
// unauthenticated webhook, and the operational endpoints.
func Register(e *echo.Echo, svcs Services, tokens *auth.TokenStore, provider billing.Provider, metrics *telemetry.Metrics) {
	authn := middleware.Authenticate(tokens)

	NewCartHandler(svcs.Carts).Register(e.Group("/cart", authn))
	NewCouponHandler(svcs.Coupons).Register(e.Group("/coupon", authn))
	NewOrderHandler(svcs.Orders).Register(e.Group("/order", authn))
	NewCheckoutHandler(svcs.Checkout, svcs.Orders).Register(e.Group("/checkout", authn))
	NewWebhookHandler(provider, svcs.Orders, metrics).Register(e)

	e.GET("/healthz", Healthz)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

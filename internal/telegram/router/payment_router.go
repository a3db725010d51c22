package router

import (
	"time"

	tg "shopbot/internal/telegram"
	"shopbot/internal/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// PaymentRoutes wires the pre-checkout and successful-payment endpoints.
// Both carry money, so they skip nothing: recover and logging middleware
// wrap each handler the same way command routes are wrapped.
func PaymentRoutes(precheck, payment tele.HandlerFunc) []tg.Route {
	routes := make([]tg.Route, 0, 2)

	if precheck != nil {
		h := func(c tele.Context) error {
			start := time.Now()
			return handleWithSummary(c, "payment.precheck", start, "", "", func() error {
				return precheck(c)
			})
		}
		routes = append(routes, tg.Route{
			Endpoint: tele.OnCheckout,
			Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(h)),
		})
	}

	if payment != nil {
		h := func(c tele.Context) error {
			start := time.Now()
			return handleWithSummary(c, "payment.fulfill", start, "", "", func() error {
				return payment(c)
			})
		}
		routes = append(routes, tg.Route{
			Endpoint: tele.OnPayment,
			Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(h)),
		})
	}

	return routes
}

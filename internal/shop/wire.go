package shop

import (
	"fmt"

	tg "shopbot/internal/telegram"
	"shopbot/internal/telegram/callbacks"
	"shopbot/internal/telegram/commands"
	tghelpers "shopbot/internal/telegram/helpers"
	"shopbot/internal/telegram/router"

	tele "gopkg.in/telebot.v4"
)

const unknownActionText = "Неизвестное действие. Нажмите /start, чтобы открыть каталог."

// Register wires the conversation into the dispatch registry: the /start
// command, the item-scoped callbacks, and the fallbacks for anything that
// matches no pattern.
func Register(reg *tg.Registry, h *Handlers) error {
	reg.RegisterCommand("/start", commands.Command{
		Handler:     h.Start,
		Description: "Открыть каталог материалов",
	})

	cbs := map[string]tele.HandlerFunc{
		CallbackItem: h.ShowItem,
		CallbackDemo: h.Demo,
		CallbackBuy:  h.Buy,
		CallbackBack: h.Start,
	}
	for key, handler := range cbs {
		if err := reg.RegisterCallback(key, handler); err != nil {
			return fmt.Errorf("register callback %q: %w", key, err)
		}
	}

	unknown := func(c tele.Context) error {
		return tghelpers.SendText(c, unknownActionText)
	}
	reg.SetCallbackNotFound(unknown)
	reg.SetTextFallback(unknown)
	return nil
}

// PaymentRoutes exposes the provider-initiated endpoints (precheck and
// confirmed payment) as routes for the runtime.
func PaymentRoutes(h *Handlers) []tg.Route {
	return router.PaymentRoutes(h.Precheck, h.Fulfill)
}

func callbackPayload(c tele.Context) string {
	return callbacks.CallbackPayload(c)
}

package shop

import (
	"errors"
	"fmt"
	"time"

	"log/slog"

	"shopbot/internal/catalog"
	"shopbot/internal/config"
	"shopbot/internal/events"
	"shopbot/internal/logger"
	tghelpers "shopbot/internal/telegram/helpers"
	"shopbot/internal/telegram/sender"

	"github.com/rs/xid"
	tele "gopkg.in/telebot.v4"
)

// Handlers implements the purchase conversation. Every handler is a function
// of the incoming payload and the injected collaborators; nothing survives
// between calls.
type Handlers struct {
	store    catalog.Store
	events   events.Publisher
	payments config.PaymentsConfig
}

// New builds the handler set.
func New(store catalog.Store, pub events.Publisher, payments config.PaymentsConfig) *Handlers {
	return &Handlers{store: store, events: pub, payments: payments}
}

// Start renders the catalog. Zero active items is a valid screen, not an
// error; a store failure is reported as an outage, never as an empty
// catalog. Reached from /start and from the back button.
func (h *Handlers) Start(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	items, err := h.store.ListActive(ctx)
	if err != nil {
		_ = tghelpers.SendText(c, catalogDownText)
		return fmt.Errorf("list active items: %w", err)
	}
	text, markup := CatalogView(items)
	return tghelpers.EditOrSendText(c, text, markup)
}

// ShowItem presents one item's detail screen, photo first with a text
// fallback.
func (h *Handlers) ShowItem(c tele.Context) error {
	it, ok, err := h.resolveItem(c)
	if !ok {
		return err
	}
	return deliverDetail(c, it)
}

// Demo sends the item's demo link as a plain message. A delivery failure is
// reported to the user distinctly from a missing item.
func (h *Handlers) Demo(c tele.Context) error {
	it, ok, err := h.resolveItem(c)
	if !ok {
		return err
	}
	if err := c.Send(DemoText(it)); err != nil {
		_ = tghelpers.SendText(c, demoFailedText)
		return fmt.Errorf("send demo for item %d: %w", it.ID, err)
	}
	return nil
}

// Buy issues an invoice whose payload carries the item id and whose single
// price line equals the stored price. No rounding, no conversion.
func (h *Handlers) Buy(c tele.Context) error {
	it, ok, err := h.resolveItem(c)
	if !ok {
		return err
	}

	inv := tele.Invoice{
		Title:       it.Title,
		Description: it.Description,
		Payload:     EncodePayload(it.ID),
		Currency:    h.payments.Currency,
		Token:       h.payments.ProviderToken,
		Prices: []tele.Price{
			{Label: it.Title, Amount: it.Price},
		},
	}

	ctx := tghelpers.BuildContext(c)
	if err := c.Send(&inv); err != nil {
		reason := sender.SanitizeErrorMessage(err)
		_ = tghelpers.SendText(c, "Не удалось создать счёт: "+reason)
		logger.Error(ctx, "service.payments", "invoice.failed",
			slog.Int64("item_id", it.ID),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
		return fmt.Errorf("send invoice for item %d: %w", it.ID, err)
	}

	logger.Info(ctx, "service.payments", "invoice.sent",
		slog.Int64("item_id", it.ID),
		slog.Int("price", it.Price),
		slog.String("currency", h.payments.Currency),
	)
	return nil
}

// Precheck answers the provider's pre-charge validation. The charge is
// approved only when the payload still resolves to an active item; a catalog
// change between invoice and checkout declines the charge instead of
// capturing money for nothing.
func (h *Handlers) Precheck(c tele.Context) error {
	q := c.PreCheckoutQuery()
	if q == nil {
		return nil
	}
	ctx := tghelpers.BuildContext(c)

	id, err := ParsePayload(q.Payload)
	if err == nil {
		_, err = h.store.GetByID(ctx, id)
	}
	if err != nil {
		logger.Warn(ctx, "service.payments", "precheck.declined",
			slog.String("payload", logger.SanitizeLimit(q.Payload, 64)),
			slog.String("err", err.Error()),
		)
		return c.Accept(notFoundText)
	}

	logger.Info(ctx, "service.payments", "precheck.approved",
		slog.Int64("item_id", id),
		slog.Int("price", q.Total),
		slog.String("currency", q.Currency),
	)
	return c.Accept()
}

// Fulfill delivers the purchased content after the provider confirms the
// charge. A payload that no longer resolves means money was captured for
// content that cannot be delivered; that case is never swallowed — it is
// published as an anomaly and the user gets a support reference.
func (h *Handlers) Fulfill(c tele.Context) error {
	msg := c.Message()
	if msg == nil || msg.Payment == nil {
		return nil
	}
	pay := msg.Payment
	ctx := tghelpers.BuildContext(c)

	id, err := ParsePayload(pay.Payload)
	var it catalog.Item
	if err == nil {
		it, err = h.store.GetByID(ctx, id)
	}
	if err != nil {
		return h.reportAnomaly(c, pay, id, err)
	}

	text, markup := FulfilledView(it)
	if err := c.Send(text, markup); err != nil {
		return h.reportAnomaly(c, pay, id, fmt.Errorf("deliver full link: %w", err))
	}

	ev := events.PurchaseEvent{
		Kind:       events.KindPurchaseCompleted,
		ItemID:     it.ID,
		Payload:    pay.Payload,
		Amount:     pay.Total,
		Currency:   pay.Currency,
		UserID:     senderID(c),
		OccurredAt: time.Now().UTC(),
	}
	if err := h.events.Publish(ctx, ev); err != nil {
		logger.Error(ctx, "events", "publish.failed",
			slog.String("kind", string(ev.Kind)),
			slog.Int64("item_id", it.ID),
			slog.String("err", err.Error()),
		)
	}

	logger.Info(ctx, "service.payments", "purchase.fulfilled",
		slog.Int64("item_id", it.ID),
		slog.Int("price", pay.Total),
		slog.String("currency", pay.Currency),
	)
	return nil
}

// reportAnomaly handles a captured payment that cannot be fulfilled: a
// distinct log line, a published event, and a support reference for the
// user. The handler itself returns nil — the receive loop has nothing to
// retry.
func (h *Handlers) reportAnomaly(c tele.Context, pay *tele.Payment, itemID int64, cause error) error {
	ctx := tghelpers.BuildContext(c)
	ref := xid.New().String()

	logger.Error(ctx, "service.payments", "fulfillment.anomaly",
		slog.String("support_ref", ref),
		slog.String("payload", logger.SanitizeLimit(pay.Payload, 64)),
		slog.Int64("item_id", itemID),
		slog.Int("price", pay.Total),
		slog.String("currency", pay.Currency),
		slog.String("err", logger.SanitizeLimit(cause.Error(), 256)),
	)

	ev := events.PurchaseEvent{
		Kind:       events.KindFulfillmentAnomaly,
		ItemID:     itemID,
		Payload:    pay.Payload,
		Amount:     pay.Total,
		Currency:   pay.Currency,
		UserID:     senderID(c),
		SupportRef: ref,
		OccurredAt: time.Now().UTC(),
	}
	if err := h.events.Publish(ctx, ev); err != nil {
		logger.Error(ctx, "events", "publish.failed",
			slog.String("kind", string(ev.Kind)),
			slog.String("support_ref", ref),
			slog.String("err", err.Error()),
		)
	}

	return c.Send(AnomalyText(ref))
}

// resolveItem parses the callback payload and loads the item. On any
// failure the user is told the item is gone and ok is false; the returned
// error is non-nil only for store failures worth surfacing to the summary
// log.
func (h *Handlers) resolveItem(c tele.Context) (catalog.Item, bool, error) {
	ctx := tghelpers.BuildContext(c)
	raw := callbackPayload(c)

	id, err := ParsePayload(raw)
	if err != nil {
		_ = tghelpers.SendText(c, notFoundText)
		return catalog.Item{}, false, nil
	}

	it, err := h.store.GetByID(ctx, id)
	if err != nil {
		_ = tghelpers.SendText(c, notFoundText)
		if errors.Is(err, catalog.ErrNotFound) {
			return catalog.Item{}, false, nil
		}
		return catalog.Item{}, false, fmt.Errorf("load item %d: %w", id, err)
	}
	return it, true, nil
}

func senderID(c tele.Context) int64 {
	if s := c.Sender(); s != nil {
		return s.ID
	}
	return 0
}

package middleware

import (
	"sync"
	"time"

	"log/slog"

	"shopbot/internal/logger"
	"shopbot/internal/telegram/callbacks"
	tghelpers "shopbot/internal/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// seenUpdates deduplicates receipt logging when the middleware is applied on
// more than one endpoint branch for the same update.
var (
	seenMu      sync.Mutex
	seenUpdates = make(map[int]time.Time)
	seenTTL     = 10 * time.Second
)

func firstSight(updateID int) bool {
	now := time.Now()
	seenMu.Lock()
	defer seenMu.Unlock()
	for id, ts := range seenUpdates {
		if now.Sub(ts) > seenTTL {
			delete(seenUpdates, id)
		}
	}
	if _, ok := seenUpdates[updateID]; ok {
		return false
	}
	seenUpdates[updateID] = now
	return true
}

// LoggerMiddleware assigns the rid, stores the enriched context, and logs a
// single sampled receipt line per update.
func LoggerMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		upd := c.Update()
		user := c.Sender()
		chat := c.Chat()

		chatID, userID := int64(0), int64(0)
		if chat != nil {
			chatID = chat.ID
		}
		if user != nil {
			userID = user.ID
		}
		rid := logger.BuildRID(upd.ID, chatID, userID)
		c.Set("rid", rid)
		c.Set("update_start", time.Now())

		ctx := logger.WithRID(logger.Background(), rid)
		ctx = logger.WithUpdateMeta(ctx, upd.ID, userID, chatID)
		ctx = logger.WithLogger(ctx, logger.Component("tg"))
		tghelpers.StoreContext(c, ctx)

		if logger.ShouldSampleDebug() && firstSight(upd.ID) {
			attrs := receiptAttrs(c, rid, chat, user)
			logger.LogEvent(ctx, logger.Component("tg"), slog.LevelDebug, "update.received", attrs...)
		}

		return next(c)
	}
}

func receiptAttrs(c tele.Context, rid string, chat *tele.Chat, user *tele.User) []slog.Attr {
	upd := c.Update()
	attrs := []slog.Attr{
		slog.String("status", "ok"),
		slog.String("rid", rid),
		slog.Int("update_id", upd.ID),
	}
	if chat != nil {
		attrs = append(attrs,
			slog.Int64("chat_id", chat.ID),
			slog.String("chat_type", string(chat.Type)),
		)
	}
	if user != nil {
		attrs = append(attrs, slog.Int64("user_id", user.ID))
		if user.Username != "" {
			attrs = append(attrs, slog.String("username", logger.SanitizeLimit(user.Username, 64)))
		}
		if user.LanguageCode != "" {
			attrs = append(attrs, slog.String("lang", user.LanguageCode))
		}
	}

	switch {
	case upd.Callback != nil:
		if key := callbacks.CallbackKey(c); key != "" {
			attrs = append(attrs, slog.String("cb_key", logger.SanitizeLimit(key, 128)))
		}
		if payload := callbacks.CallbackPayload(c); payload != "" {
			attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(payload, 256)))
		}
	case upd.PreCheckoutQuery != nil:
		attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(upd.PreCheckoutQuery.Payload, 256)))
	case upd.Message != nil && upd.Message.Payment != nil:
		attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(upd.Message.Payment.Payload, 256)))
	case upd.Message != nil:
		if t := c.Text(); t != "" {
			attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(t, 256)))
		}
	}
	return attrs
}

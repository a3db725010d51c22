package middleware

import (
	"sync"
	"time"

	"log/slog"

	"shopbot/internal/logger"

	tele "gopkg.in/telebot.v4"
)

// RateLimitOptions configures the per-user throttle.
type RateLimitOptions struct {
	Interval  time.Duration
	Exclude   map[string]struct{}
	OnLimited tele.HandlerFunc
}

// throttle remembers when each user was last allowed through.
type throttle struct {
	mu   sync.Mutex
	seen map[int64]time.Time
}

// allow reports whether the user may proceed and records the attempt.
func (t *throttle) allow(userID int64, interval time.Duration) bool {
	now := time.Now()
	t.mu.Lock()
	defer t.mu.Unlock()
	if last, ok := t.seen[userID]; ok && now.Sub(last) < interval {
		return false
	}
	t.seen[userID] = now
	return true
}

// RateLimitMiddleware enforces a minimum interval between updates from the
// same user. Payment updates always pass: dropping a precheck or a payment
// confirmation would strand a charge.
func RateLimitMiddleware(opts RateLimitOptions) tele.MiddlewareFunc {
	gate := &throttle{seen: make(map[int64]time.Time)}
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			user := c.Sender()
			if user == nil || opts.Interval <= 0 {
				return next(c)
			}

			upd := c.Update()
			if upd.PreCheckoutQuery != nil || (upd.Message != nil && upd.Message.Payment != nil) {
				return next(c)
			}
			if _, skip := opts.Exclude[updateKind(upd)]; skip {
				return next(c)
			}

			if gate.allow(user.ID, opts.Interval) {
				return next(c)
			}

			attrs := []any{
				slog.String("event", "tg.rate_limit"),
				slog.Int64("user_id", user.ID),
			}
			if chat := c.Chat(); chat != nil {
				attrs = append(attrs, slog.Int64("chat_id", chat.ID))
			}
			logger.TG.Warn("rate limit", attrs...)

			if opts.OnLimited != nil {
				_ = opts.OnLimited(c)
			}
			return nil
		}
	}
}

func updateKind(upd tele.Update) string {
	switch {
	case upd.Callback != nil:
		return "callback"
	case upd.Message != nil:
		return "message"
	default:
		return "other"
	}
}

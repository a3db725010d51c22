package helpers

import (
	"errors"
	"log/slog"
	"sync/atomic"

	"shopbot/internal/logger"
	"shopbot/internal/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

var globalDispatcher atomic.Pointer[sender.Dispatcher]

// SetDispatcher wires the asynchronous sender used by helper functions.
func SetDispatcher(d *sender.Dispatcher) {
	globalDispatcher.Store(d)
}

func currentDispatcher() *sender.Dispatcher {
	return globalDispatcher.Load()
}

func sendAsync(c tele.Context, action, endpoint string, run func() error) error {
	disp := currentDispatcher()
	if disp == nil {
		return run()
	}

	ctx := BuildContext(c)
	if err := disp.Enqueue(ctx, action, endpoint, run); err != nil {
		if errors.Is(err, sender.ErrQueueFull) || errors.Is(err, sender.ErrQueueClosed) {
			logger.Warn(ctx, "tg.sender", "queue.fallback",
				slog.String("action", action),
				slog.String("endpoint", endpoint),
				slog.String("err", err.Error()),
			)
			return run()
		}
		return err
	}
	return nil
}

func firstMarkup(markup []*tele.ReplyMarkup) *tele.ReplyMarkup {
	if len(markup) > 0 {
		return markup[0]
	}
	return nil
}

// SendText sends raw text (no parse mode) to the current recipient through
// the async dispatcher. Use c.Send directly when the handler must observe
// the delivery outcome.
func SendText(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	rm := firstMarkup(markup)
	return sendAsync(c, "send.text", "sendMessage", func() error {
		if rm != nil {
			return c.Send(text, rm)
		}
		return c.Send(text)
	})
}

// EditOrSendText edits the current message in place, falling back to a new
// message. Synchronous: callers react to the outcome.
func EditOrSendText(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	if rm := firstMarkup(markup); rm != nil {
		return c.EditOrSend(text, rm)
	}
	return c.EditOrSend(text)
}

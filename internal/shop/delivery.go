package shop

import (
	"log/slog"

	"shopbot/internal/catalog"
	"shopbot/internal/logger"
	tghelpers "shopbot/internal/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// deliveryStrategy is one way to put a view in front of the user. Strategies
// are tried in order; the first success wins.
type deliveryStrategy struct {
	name string
	run  func(c tele.Context) error
}

// deliverDetail presents an item, photo first, text second. The text
// fallback carries the same caption and keyboard, so a dead image link never
// strands the user without the action buttons.
func deliverDetail(c tele.Context, it catalog.Item) error {
	caption, markup := DetailView(it)

	strategies := []deliveryStrategy{
		{name: "photo", run: func(c tele.Context) error {
			photo := &tele.Photo{File: tele.FromURL(it.ImgLink), Caption: caption}
			return c.Send(photo, markup)
		}},
		{name: "text", run: func(c tele.Context) error {
			return c.Send(caption, markup)
		}},
	}

	return deliverWith(c, "detail", it.ID, strategies)
}

func deliverWith(c tele.Context, view string, itemID int64, strategies []deliveryStrategy) error {
	ctx := tghelpers.BuildContext(c)
	var lastErr error
	for _, s := range strategies {
		err := s.run(c)
		if err == nil {
			if lastErr != nil {
				logger.Info(ctx, "tg", "delivery.fallback",
					slog.String("view", view),
					slog.Int64("item_id", itemID),
					slog.String("strategy", s.name),
				)
			}
			return nil
		}
		lastErr = err
		logger.Warn(ctx, "tg", "delivery.attempt_failed",
			slog.String("view", view),
			slog.Int64("item_id", itemID),
			slog.String("strategy", s.name),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
	}
	return lastErr
}

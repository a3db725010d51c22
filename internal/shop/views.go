package shop

import (
	"fmt"

	"shopbot/internal/catalog"
	"shopbot/internal/telegram/keyboard"

	tele "gopkg.in/telebot.v4"
)

// Callback keys registered with the dispatch registry. Item-scoped keys carry
// the item id as the payload.
const (
	CallbackItem = "item"
	CallbackDemo = "demo"
	CallbackBuy  = "buy"
	CallbackBack = "back"
)

// CaptionLimit is Telegram's hard cap for media captions, in runes.
const CaptionLimit = 1024

const (
	catalogGreeting  = "Привет! Выберите интересующий материал:"
	catalogEmptyText = "Каталог пока пуст, загляните позже."
	catalogDownText  = "Каталог временно недоступен, попробуйте позже."
	notFoundText     = "Материал не найден или больше недоступен."
	demoFailedText   = "Не удалось отправить демо. Попробуйте ещё раз чуть позже."
	fulfilledText    = "Спасибо за покупку! Ваш материал:\n%s"
	anomalyText      = "Платёж получен, но материал выдать не удалось. Напишите в поддержку и укажите код обращения: %s"

	btnDemo = "Скачать демо"
	btnBuy  = "Купить полный материал"
	btnBack = "Вернуться к началу"
)

// CatalogView renders the catalog screen: greeting plus one button per
// active item, labeled with the item title.
func CatalogView(items []catalog.Item) (string, *tele.ReplyMarkup) {
	if len(items) == 0 {
		return catalogEmptyText, &tele.ReplyMarkup{}
	}
	btns := make([]keyboard.InlineBtn, 0, len(items))
	for _, it := range items {
		btns = append(btns, keyboard.InlineBtn{
			Text:   it.Title,
			Unique: CallbackItem,
			Data:   EncodePayload(it.ID),
		})
	}
	return catalogGreeting, keyboard.InlineButtons(btns)
}

// DetailView renders one item's caption and its action keyboard. The caption
// is truncated to the platform cap so an oversized description degrades
// instead of failing the send.
func DetailView(it catalog.Item) (string, *tele.ReplyMarkup) {
	caption := TruncateRunes(it.Title+"\n\n"+it.Description, CaptionLimit)
	payload := EncodePayload(it.ID)
	markup := keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: btnDemo, Unique: CallbackDemo, Data: payload},
		{Text: btnBuy, Unique: CallbackBuy, Data: payload},
		{Text: btnBack, Unique: CallbackBack},
	})
	return caption, markup
}

// DemoText renders the demo delivery message.
func DemoText(it catalog.Item) string {
	return fmt.Sprintf("Демо «%s»:\n%s", it.Title, it.DemoLink)
}

// FulfilledView renders the full-content delivery plus the back action.
func FulfilledView(it catalog.Item) (string, *tele.ReplyMarkup) {
	markup := keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: btnBack, Unique: CallbackBack},
	})
	return fmt.Sprintf(fulfilledText, it.FullLink), markup
}

// AnomalyText renders the support message for a captured payment that could
// not be fulfilled.
func AnomalyText(supportRef string) string {
	return fmt.Sprintf(anomalyText, supportRef)
}

// TruncateRunes cuts s to at most limit runes, appending an ellipsis when
// anything was dropped.
func TruncateRunes(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	if limit == 1 {
		return "…"
	}
	return string(runes[:limit-1]) + "…"
}

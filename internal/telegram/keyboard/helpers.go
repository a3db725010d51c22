package keyboard

import tele "gopkg.in/telebot.v4"

// InlineBtn is a flat description of one inline button.
type InlineBtn struct {
	Text   string
	Unique string
	Data   string
}

// InlineButtons lays out the buttons one per row.
func InlineButtons(buttons []InlineBtn) *tele.ReplyMarkup {
	rows := make([][]InlineBtn, len(buttons))
	for i, b := range buttons {
		rows[i] = []InlineBtn{b}
	}
	return InlineButtonsRows(rows...)
}

// InlineButtonsRows builds an inline keyboard with the given row layout.
func InlineButtonsRows(rows ...[]InlineBtn) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{InlineKeyboard: make([][]tele.InlineButton, len(rows))}
	for i, row := range rows {
		built := make([]tele.InlineButton, len(row))
		for j, b := range row {
			built[j] = *markup.Data(b.Text, b.Unique, b.Data).Inline()
		}
		markup.InlineKeyboard[i] = built
	}
	return markup
}

// Labels flattens the button captions, row by row. Used in logs and tests.
func Labels(markup *tele.ReplyMarkup) []string {
	if markup == nil {
		return nil
	}
	var labels []string
	for _, row := range markup.InlineKeyboard {
		for _, btn := range row {
			labels = append(labels, btn.Text)
		}
	}
	return labels
}

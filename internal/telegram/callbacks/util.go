// Package callbacks decodes inline-button callback data.
package callbacks

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

// ParseCallbackData splits raw callback data in telebot's
// "\f<unique>|<payload>" form. Payload may be empty.
func ParseCallbackData(cb *tele.Callback) (string, string) {
	if cb == nil {
		return "", ""
	}
	raw := strings.TrimPrefix(cb.Data, "\\f")
	unique, payload, _ := strings.Cut(raw, "|")
	return strings.TrimSpace(unique), payload
}

// CallbackKey returns the action key of the callback. Telebot fills Unique
// before dispatch; raw Data is only parsed when it did not.
func CallbackKey(c tele.Context) string {
	cb := c.Callback()
	switch {
	case cb == nil:
		return ""
	case cb.Unique != "":
		return cb.Unique
	}
	key, _ := ParseCallbackData(cb)
	return key
}

// CallbackPayload returns the payload of the callback. When Unique is set
// the encoding was already stripped and Data holds the bare payload.
func CallbackPayload(c tele.Context) string {
	cb := c.Callback()
	switch {
	case cb == nil:
		return ""
	case cb.Unique != "":
		return cb.Data
	}
	_, payload := ParseCallbackData(cb)
	return payload
}

package middleware

import (
	tele "gopkg.in/telebot.v4"
)

// countingContext wraps tele.Context so the summary log can report how many
// messages a handler produced and whether any carried a keyboard.
type countingContext struct{ tele.Context }

func (m countingContext) bump(hasKB bool) {
	n := 0
	if v, ok := m.Get("messages").(int); ok {
		n = v
	}
	m.Set("messages", n+1)
	if hasKB {
		m.Set("kb", true)
	}
}

func carriesKeyboard(opts []interface{}) bool {
	for _, o := range opts {
		switch v := o.(type) {
		case *tele.SendOptions:
			if v != nil && v.ReplyMarkup != nil {
				return true
			}
		case *tele.ReplyMarkup:
			if v != nil {
				return true
			}
		}
	}
	return false
}

func (m countingContext) Send(what interface{}, opts ...interface{}) error {
	err := m.Context.Send(what, opts...)
	if err == nil {
		m.bump(carriesKeyboard(opts))
	}
	return err
}

func (m countingContext) Reply(what interface{}, opts ...interface{}) error {
	err := m.Context.Reply(what, opts...)
	if err == nil {
		m.bump(carriesKeyboard(opts))
	}
	return err
}

// Edits count as responses too.
func (m countingContext) Edit(what interface{}, opts ...interface{}) error {
	err := m.Context.Edit(what, opts...)
	if err == nil {
		m.bump(carriesKeyboard(opts))
	}
	return err
}

func (m countingContext) EditOrSend(what interface{}, opts ...interface{}) error {
	err := m.Context.EditOrSend(what, opts...)
	if err == nil {
		m.bump(carriesKeyboard(opts))
	}
	return err
}

// MessageMetricsMiddleware instruments the context with outbound counters.
func MessageMetricsMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		c.Set("messages", 0)
		c.Set("kb", false)
		return next(countingContext{Context: c})
	}
}

// GetCounters reads the counters written by MessageMetricsMiddleware.
func GetCounters(c tele.Context) (int, bool) {
	msgs := 0
	if n, ok := c.Get("messages").(int); ok {
		msgs = n
	}
	kb := false
	if b, ok := c.Get("kb").(bool); ok {
		kb = b
	}
	return msgs, kb
}

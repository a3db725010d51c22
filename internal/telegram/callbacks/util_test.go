package callbacks

import (
	"testing"

	tele "gopkg.in/telebot.v4"
)

func TestParseCallbackDataRawEncoding(t *testing.T) {
	cases := []struct {
		name    string
		data    string
		key     string
		payload string
	}{
		{name: "key and payload", data: "\\fitem|42", key: "item", payload: "42"},
		{name: "key only", data: "\\fback", key: "back", payload: ""},
		{name: "no prefix", data: "demo|7", key: "demo", payload: "7"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			key, payload := ParseCallbackData(&tele.Callback{Data: tc.data})
			if key != tc.key || payload != tc.payload {
				t.Fatalf("got (%q, %q), want (%q, %q)", key, payload, tc.key, tc.payload)
			}
		})
	}
}

type callbackCtx struct {
	tele.Context
	cb *tele.Callback
}

func (c *callbackCtx) Callback() *tele.Callback { return c.cb }

func TestCallbackKeyPrefersPreSplitUnique(t *testing.T) {
	c := &callbackCtx{cb: &tele.Callback{Unique: "item", Data: "42"}}
	if key := CallbackKey(c); key != "item" {
		t.Fatalf("key = %q", key)
	}
	if payload := CallbackPayload(c); payload != "42" {
		t.Fatalf("payload = %q", payload)
	}
}

func TestCallbackKeyFallsBackToRawData(t *testing.T) {
	c := &callbackCtx{cb: &tele.Callback{Data: "\\fbuy|7"}}
	if key := CallbackKey(c); key != "buy" {
		t.Fatalf("key = %q", key)
	}
	if payload := CallbackPayload(c); payload != "7" {
		t.Fatalf("payload = %q", payload)
	}
}

func TestCallbackKeyWithoutCallback(t *testing.T) {
	c := &callbackCtx{}
	if key := CallbackKey(c); key != "" {
		t.Fatalf("key = %q, want empty", key)
	}
	if payload := CallbackPayload(c); payload != "" {
		t.Fatalf("payload = %q, want empty", payload)
	}
}

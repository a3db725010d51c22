package shop

import (
	"context"
	"errors"
	"strings"
	"testing"

	"shopbot/internal/catalog"
	"shopbot/internal/config"
	"shopbot/internal/events"

	tele "gopkg.in/telebot.v4"
)

// fakeStore serves a fixed set of items.
type fakeStore struct {
	items  map[int64]catalog.Item
	dbErr  error
	listed []catalog.Item
}

func (s *fakeStore) GetByID(_ context.Context, id int64) (catalog.Item, error) {
	if s.dbErr != nil {
		return catalog.Item{}, s.dbErr
	}
	it, ok := s.items[id]
	if !ok {
		return catalog.Item{}, catalog.ErrNotFound
	}
	return it, nil
}

func (s *fakeStore) ListActive(context.Context) ([]catalog.Item, error) {
	if s.dbErr != nil {
		return nil, s.dbErr
	}
	return s.listed, nil
}

// capturingPublisher records published events.
type capturingPublisher struct {
	published []events.PurchaseEvent
	err       error
}

func (p *capturingPublisher) Publish(_ context.Context, ev events.PurchaseEvent) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, ev)
	return nil
}

func (p *capturingPublisher) Close() error { return nil }

// testContext fakes the pieces of tele.Context the handlers touch. Unused
// interface methods panic via the embedded nil.
type testContext struct {
	tele.Context

	kv       map[string]any
	cb       *tele.Callback
	msg      *tele.Message
	pcq      *tele.PreCheckoutQuery
	sent     []any
	sendErr  func(what any) error
	accepted []string
}

func newTestContext() *testContext {
	return &testContext{kv: map[string]any{}}
}

func (c *testContext) Get(k string) any    { return c.kv[k] }
func (c *testContext) Set(k string, v any) { c.kv[k] = v }

func (c *testContext) Update() tele.Update { return tele.Update{ID: 1} }
func (c *testContext) Sender() *tele.User  { return &tele.User{ID: 100} }
func (c *testContext) Chat() *tele.Chat    { return &tele.Chat{ID: 100} }

func (c *testContext) Callback() *tele.Callback { return c.cb }
func (c *testContext) Message() *tele.Message   { return c.msg }

func (c *testContext) PreCheckoutQuery() *tele.PreCheckoutQuery { return c.pcq }

func (c *testContext) Respond(...*tele.CallbackResponse) error { return nil }

func (c *testContext) Send(what interface{}, _ ...interface{}) error {
	if c.sendErr != nil {
		if err := c.sendErr(what); err != nil {
			return err
		}
	}
	c.sent = append(c.sent, what)
	return nil
}

func (c *testContext) EditOrSend(what interface{}, opts ...interface{}) error {
	return c.Send(what, opts...)
}

func (c *testContext) Accept(errorMessage ...string) error {
	msg := ""
	if len(errorMessage) > 0 {
		msg = errorMessage[0]
	}
	c.accepted = append(c.accepted, msg)
	return nil
}

func withCallback(c *testContext, unique, data string) *testContext {
	c.cb = &tele.Callback{Unique: unique, Data: data}
	return c
}

func sentTexts(c *testContext) []string {
	var out []string
	for _, s := range c.sent {
		if text, ok := s.(string); ok {
			out = append(out, text)
		}
	}
	return out
}

func newHandlers(store catalog.Store, pub events.Publisher) *Handlers {
	return New(store, pub, config.PaymentsConfig{ProviderToken: "prov:token", Currency: "RUB"})
}

func TestStartRendersCatalogButtons(t *testing.T) {
	store := &fakeStore{listed: []catalog.Item{testItem()}}
	h := newHandlers(store, &capturingPublisher{})
	c := newTestContext()

	if err := h.Start(c); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if len(c.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(c.sent))
	}
	if text := c.sent[0].(string); text != catalogGreeting {
		t.Fatalf("catalog text = %q", text)
	}
}

func TestStartEmptyCatalogIsNotAnError(t *testing.T) {
	h := newHandlers(&fakeStore{}, &capturingPublisher{})
	c := newTestContext()

	if err := h.Start(c); err != nil {
		t.Fatalf("Start on empty catalog: %v", err)
	}
	texts := sentTexts(c)
	if len(texts) != 1 || texts[0] != catalogEmptyText {
		t.Fatalf("sent = %v", texts)
	}
}

func TestStartStoreFailureIsReportedAsOutage(t *testing.T) {
	store := &fakeStore{dbErr: errors.New("dial tcp 127.0.0.1:5432: connect: connection refused")}
	h := newHandlers(store, &capturingPublisher{})
	c := newTestContext()

	if err := h.Start(c); err == nil {
		t.Fatal("Start should surface the store failure")
	}
	texts := sentTexts(c)
	if len(texts) != 1 || texts[0] != catalogDownText {
		t.Fatalf("sent = %v, want the outage notice", texts)
	}
	if texts[0] == catalogEmptyText {
		t.Fatal("store failure must not read as an empty catalog")
	}
}

func TestShowItemFallsBackToText(t *testing.T) {
	store := &fakeStore{items: map[int64]catalog.Item{1: testItem()}}
	h := newHandlers(store, &capturingPublisher{})

	c := withCallback(newTestContext(), CallbackItem, "1")
	c.sendErr = func(what any) error {
		if _, ok := what.(*tele.Photo); ok {
			return errors.New("wrong file identifier")
		}
		return nil
	}

	if err := h.ShowItem(c); err != nil {
		t.Fatalf("ShowItem with dead image: %v", err)
	}
	texts := sentTexts(c)
	if len(texts) != 1 || !strings.Contains(texts[0], "Guide") {
		t.Fatalf("text fallback not delivered: %v", texts)
	}
}

func TestShowItemMissingItemAcknowledges(t *testing.T) {
	h := newHandlers(&fakeStore{}, &capturingPublisher{})
	c := withCallback(newTestContext(), CallbackItem, "404")

	if err := h.ShowItem(c); err != nil {
		t.Fatalf("ShowItem on missing item: %v", err)
	}
	texts := sentTexts(c)
	if len(texts) != 1 || texts[0] != notFoundText {
		t.Fatalf("sent = %v", texts)
	}
}

func TestDemoSendsLink(t *testing.T) {
	store := &fakeStore{items: map[int64]catalog.Item{1: testItem()}}
	h := newHandlers(store, &capturingPublisher{})
	c := withCallback(newTestContext(), CallbackDemo, "1")

	if err := h.Demo(c); err != nil {
		t.Fatalf("Demo: %v", err)
	}
	texts := sentTexts(c)
	if len(texts) != 1 || !strings.Contains(texts[0], "https://example.com/demo.pdf") {
		t.Fatalf("demo message = %v", texts)
	}
}

func TestDemoDeliveryFailureIsReportedDistinctly(t *testing.T) {
	store := &fakeStore{items: map[int64]catalog.Item{1: testItem()}}
	h := newHandlers(store, &capturingPublisher{})

	c := withCallback(newTestContext(), CallbackDemo, "1")
	c.sendErr = func(what any) error {
		if text, ok := what.(string); ok && strings.Contains(text, "demo.pdf") {
			return errors.New("forbidden: bot was blocked")
		}
		return nil
	}

	if err := h.Demo(c); err == nil {
		t.Fatal("Demo should surface the delivery failure")
	}
	texts := sentTexts(c)
	if len(texts) != 1 || texts[0] != demoFailedText {
		t.Fatalf("sent = %v, want the delivery-failure notice", texts)
	}
}

func TestBuyInvoiceMatchesStoredPrice(t *testing.T) {
	store := &fakeStore{items: map[int64]catalog.Item{1: testItem()}}
	h := newHandlers(store, &capturingPublisher{})
	c := withCallback(newTestContext(), CallbackBuy, "1")

	if err := h.Buy(c); err != nil {
		t.Fatalf("Buy: %v", err)
	}
	if len(c.sent) != 1 {
		t.Fatalf("sent %d messages, want 1 invoice", len(c.sent))
	}
	inv, ok := c.sent[0].(*tele.Invoice)
	if !ok {
		t.Fatalf("sent %T, want *tele.Invoice", c.sent[0])
	}
	if inv.Payload != "1" {
		t.Fatalf("invoice payload = %q", inv.Payload)
	}
	if inv.Currency != "RUB" {
		t.Fatalf("invoice currency = %q", inv.Currency)
	}
	if len(inv.Prices) != 1 || inv.Prices[0].Amount != 500 {
		t.Fatalf("invoice prices = %+v, want single line of 500", inv.Prices)
	}
}

func TestBuyProviderFailureIsUserVisible(t *testing.T) {
	store := &fakeStore{items: map[int64]catalog.Item{1: testItem()}}
	h := newHandlers(store, &capturingPublisher{})

	c := withCallback(newTestContext(), CallbackBuy, "1")
	c.sendErr = func(what any) error {
		if _, ok := what.(*tele.Invoice); ok {
			return errors.New("PAYMENT_PROVIDER_INVALID")
		}
		return nil
	}

	if err := h.Buy(c); err == nil {
		t.Fatal("Buy should surface invoice creation failure")
	}
	texts := sentTexts(c)
	if len(texts) != 1 || !strings.Contains(texts[0], "Не удалось создать счёт") {
		t.Fatalf("sent = %v", texts)
	}
}

func TestPrecheckApprovesResolvableItem(t *testing.T) {
	store := &fakeStore{items: map[int64]catalog.Item{1: testItem()}}
	h := newHandlers(store, &capturingPublisher{})

	c := newTestContext()
	c.pcq = &tele.PreCheckoutQuery{Payload: "1", Total: 500, Currency: "RUB"}

	if err := h.Precheck(c); err != nil {
		t.Fatalf("Precheck: %v", err)
	}
	if len(c.accepted) != 1 || c.accepted[0] != "" {
		t.Fatalf("accepted = %v, want unconditional approve", c.accepted)
	}
}

func TestPrecheckDeclinesUnresolvableItem(t *testing.T) {
	h := newHandlers(&fakeStore{}, &capturingPublisher{})

	c := newTestContext()
	c.pcq = &tele.PreCheckoutQuery{Payload: "404", Total: 500, Currency: "RUB"}

	if err := h.Precheck(c); err != nil {
		t.Fatalf("Precheck: %v", err)
	}
	if len(c.accepted) != 1 || c.accepted[0] == "" {
		t.Fatalf("accepted = %v, want decline with reason", c.accepted)
	}
}

func TestFulfillDeliversFullLink(t *testing.T) {
	store := &fakeStore{items: map[int64]catalog.Item{1: testItem()}}
	pub := &capturingPublisher{}
	h := newHandlers(store, pub)

	c := newTestContext()
	c.msg = &tele.Message{Payment: &tele.Payment{Payload: "1", Total: 500, Currency: "RUB"}}

	if err := h.Fulfill(c); err != nil {
		t.Fatalf("Fulfill: %v", err)
	}
	texts := sentTexts(c)
	if len(texts) != 1 || !strings.Contains(texts[0], "https://example.com/full.pdf") {
		t.Fatalf("sent = %v", texts)
	}
	if len(pub.published) != 1 || pub.published[0].Kind != events.KindPurchaseCompleted {
		t.Fatalf("published = %+v", pub.published)
	}
	if pub.published[0].ItemID != 1 || pub.published[0].Amount != 500 {
		t.Fatalf("event payload = %+v", pub.published[0])
	}
}

func TestFulfillUnresolvablePayloadIsAnomaly(t *testing.T) {
	pub := &capturingPublisher{}
	h := newHandlers(&fakeStore{}, pub)

	c := newTestContext()
	c.msg = &tele.Message{Payment: &tele.Payment{Payload: "404", Total: 500, Currency: "RUB"}}

	if err := h.Fulfill(c); err != nil {
		t.Fatalf("Fulfill anomaly path should not fail the receive loop: %v", err)
	}
	texts := sentTexts(c)
	if len(texts) != 1 || !strings.Contains(texts[0], "поддержку") {
		t.Fatalf("sent = %v, want support-contact message", texts)
	}
	if len(pub.published) != 1 || pub.published[0].Kind != events.KindFulfillmentAnomaly {
		t.Fatalf("published = %+v", pub.published)
	}
	if pub.published[0].SupportRef == "" {
		t.Fatal("anomaly event missing support ref")
	}
	if !strings.Contains(texts[0], pub.published[0].SupportRef) {
		t.Fatalf("support message %q misses ref %q", texts[0], pub.published[0].SupportRef)
	}
}

func TestFulfillGarbagePayloadIsAnomaly(t *testing.T) {
	pub := &capturingPublisher{}
	h := newHandlers(&fakeStore{items: map[int64]catalog.Item{1: testItem()}}, pub)

	c := newTestContext()
	c.msg = &tele.Message{Payment: &tele.Payment{Payload: "not-a-number", Total: 500, Currency: "RUB"}}

	if err := h.Fulfill(c); err != nil {
		t.Fatalf("Fulfill: %v", err)
	}
	if len(pub.published) != 1 || pub.published[0].Kind != events.KindFulfillmentAnomaly {
		t.Fatalf("published = %+v", pub.published)
	}
}

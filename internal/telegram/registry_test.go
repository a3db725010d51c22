package telegram

import (
	"testing"

	"shopbot/internal/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

func noop(tele.Context) error { return nil }

func TestRegistryRejectsDuplicateCallbacks(t *testing.T) {
	reg := NewRegistry()
	if err := reg.RegisterCallback("buy", noop); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if err := reg.RegisterCallback("buy", noop); err == nil {
		t.Fatal("duplicate callback key must be rejected")
	}
	if got := reg.ListCallbacks(); len(got) != 1 {
		t.Fatalf("callbacks = %v", got)
	}
}

func TestRegistryUnknownCallbackFallsThrough(t *testing.T) {
	reg := NewRegistry()
	if _, ok := reg.GetCallback("nope"); ok {
		t.Fatal("unknown key must not resolve")
	}
	if reg.CallbackNotFound() == nil {
		t.Fatal("default not-found acknowledgment missing")
	}
}

func TestRegistryCommandLookupByAlias(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterCommand("/start", commands.Command{
		Handler:     noop,
		Description: "catalog",
		Aliases:     []string{"начать"},
	})

	key, _, ok := reg.LookupCommand("начать")
	if !ok || key != "/start" {
		t.Fatalf("alias lookup = (%q, %v)", key, ok)
	}
	if _, _, ok := reg.LookupCommand("/stop"); ok {
		t.Fatal("unregistered command must not resolve")
	}
}

func TestRegistryCommandValidation(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterCommand("start", commands.Command{Handler: noop, Description: "no slash"})
	reg.RegisterCommand("/nodesc", commands.Command{Handler: noop})
	if len(reg.Commands()) != 0 {
		t.Fatalf("invalid registrations accepted: %v", reg.Commands())
	}
}

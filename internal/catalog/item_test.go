package catalog

import (
	"errors"
	"strings"
	"testing"
)

func validItem() Item {
	return Item{
		ID:          1,
		Title:       "Guide",
		Description: "A guide.",
		ImgLink:     "https://example.com/img.png",
		DemoLink:    "https://example.com/demo.pdf",
		FullLink:    "https://example.com/full.pdf",
		Price:       500,
		Active:      true,
	}
}

func TestNormalizeEmptyDescription(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", DescriptionPlaceholder},
		{"whitespace", "  \t", DescriptionPlaceholder},
		{"kept", "real text", "real text"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			item := validItem()
			item.Description = tc.in
			item.Normalize()
			if item.Description != tc.want {
				t.Fatalf("description = %q, want %q", item.Description, tc.want)
			}
		})
	}
}

func TestNormalizeTrimsTitle(t *testing.T) {
	item := validItem()
	item.Title = "  Guide  "
	item.Normalize()
	if item.Title != "Guide" {
		t.Fatalf("title = %q", item.Title)
	}
}

func TestValidateRejectsPartialItems(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Item)
	}{
		{"zero id", func(i *Item) { i.ID = 0 }},
		{"negative id", func(i *Item) { i.ID = -3 }},
		{"empty title", func(i *Item) { i.Title = "" }},
		{"zero price", func(i *Item) { i.Price = 0 }},
		{"negative price", func(i *Item) { i.Price = -500 }},
		{"missing demo link", func(i *Item) { i.DemoLink = "" }},
		{"missing full link", func(i *Item) { i.FullLink = "" }},
		{"non-url image", func(i *Item) { i.ImgLink = "not a url" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			item := validItem()
			tc.mutate(&item)
			if item.Validate() == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestValidateAcceptsCompleteItem(t *testing.T) {
	item := validItem()
	item.Normalize()
	if err := item.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestErrNotFoundIsDistinguishable(t *testing.T) {
	wrapped := errors.Join(errors.New("outer"), ErrNotFound)
	if !errors.Is(wrapped, ErrNotFound) {
		t.Fatal("ErrNotFound lost through wrapping")
	}
	if !strings.Contains(ErrNotFound.Error(), "not found") {
		t.Fatalf("unexpected message: %s", ErrNotFound.Error())
	}
}

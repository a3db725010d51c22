package shop

import (
	"strings"
	"testing"
	"unicode/utf8"

	"shopbot/internal/catalog"
	"shopbot/internal/telegram/keyboard"
)

func testItem() catalog.Item {
	return catalog.Item{
		ID:          1,
		Title:       "Guide",
		Description: "Полный гайд",
		ImgLink:     "https://example.com/img.png",
		DemoLink:    "https://example.com/demo.pdf",
		FullLink:    "https://example.com/full.pdf",
		Price:       500,
		Active:      true,
	}
}

func TestCatalogViewEmpty(t *testing.T) {
	text, markup := CatalogView(nil)
	if text != catalogEmptyText {
		t.Fatalf("empty catalog text = %q", text)
	}
	if got := keyboard.Labels(markup); len(got) != 0 {
		t.Fatalf("empty catalog rendered buttons: %v", got)
	}
}

func TestCatalogViewOneButtonPerItem(t *testing.T) {
	items := []catalog.Item{testItem(), func() catalog.Item {
		it := testItem()
		it.ID = 2
		it.Title = "Course"
		return it
	}()}

	_, markup := CatalogView(items)
	labels := keyboard.Labels(markup)
	if len(labels) != 2 || labels[0] != "Guide" || labels[1] != "Course" {
		t.Fatalf("catalog labels = %v", labels)
	}

	btn := markup.InlineKeyboard[0][0]
	if btn.Unique != CallbackItem || btn.Data != "1" {
		t.Fatalf("first button = (%q, %q), want (%q, \"1\")", btn.Unique, btn.Data, CallbackItem)
	}
}

func TestDetailViewActions(t *testing.T) {
	caption, markup := DetailView(testItem())
	if !strings.Contains(caption, "Guide") || !strings.Contains(caption, "Полный гайд") {
		t.Fatalf("caption = %q", caption)
	}

	labels := keyboard.Labels(markup)
	want := []string{"Скачать демо", "Купить полный материал", "Вернуться к началу"}
	if len(labels) != len(want) {
		t.Fatalf("detail labels = %v", labels)
	}
	for i := range want {
		if labels[i] != want[i] {
			t.Fatalf("label[%d] = %q, want %q", i, labels[i], want[i])
		}
	}
}

func TestDetailViewTruncatesCaption(t *testing.T) {
	it := testItem()
	it.Description = strings.Repeat("ж", 3000)

	caption, _ := DetailView(it)
	if n := utf8.RuneCountInString(caption); n > CaptionLimit {
		t.Fatalf("caption length = %d runes, cap %d", n, CaptionLimit)
	}
	if !strings.HasSuffix(caption, "…") {
		t.Fatalf("truncated caption missing ellipsis: %q", caption[len(caption)-12:])
	}
}

func TestTruncateRunes(t *testing.T) {
	cases := []struct {
		in    string
		limit int
		want  string
	}{
		{"abc", 5, "abc"},
		{"abc", 3, "abc"},
		{"abcd", 3, "ab…"},
		{"жёлтый", 4, "жёл…"},
		{"abc", 1, "…"},
		{"abc", 0, ""},
	}
	for _, tc := range cases {
		if got := TruncateRunes(tc.in, tc.limit); got != tc.want {
			t.Fatalf("TruncateRunes(%q, %d) = %q, want %q", tc.in, tc.limit, got, tc.want)
		}
	}
}

func TestDemoTextContainsLink(t *testing.T) {
	text := DemoText(testItem())
	if !strings.Contains(text, "https://example.com/demo.pdf") {
		t.Fatalf("demo text %q misses demo link", text)
	}
}

func TestFulfilledViewHasBackAction(t *testing.T) {
	text, markup := FulfilledView(testItem())
	if !strings.Contains(text, "https://example.com/full.pdf") {
		t.Fatalf("fulfilled text %q misses full link", text)
	}
	labels := keyboard.Labels(markup)
	if len(labels) != 1 || labels[0] != "Вернуться к началу" {
		t.Fatalf("fulfilled labels = %v", labels)
	}
}

package shop

import (
	"errors"
	"math"
	"testing"
)

func TestPayloadRoundTrip(t *testing.T) {
	ids := []int64{1, 7, 42, 999999, math.MaxInt64}
	for _, id := range ids {
		got, err := ParsePayload(EncodePayload(id))
		if err != nil {
			t.Fatalf("ParsePayload(EncodePayload(%d)): %v", id, err)
		}
		if got != id {
			t.Fatalf("round trip %d: got %d", id, got)
		}
	}
}

func TestParsePayloadRejectsGarbage(t *testing.T) {
	cases := []string{"", "  ", "abc", "0", "-5", "1.5", "1e3", "9223372036854775808"}
	for _, raw := range cases {
		if _, err := ParsePayload(raw); !errors.Is(err, ErrBadPayload) {
			t.Fatalf("ParsePayload(%q): want ErrBadPayload, got %v", raw, err)
		}
	}
}

func TestParsePayloadTrimsWhitespace(t *testing.T) {
	got, err := ParsePayload(" 17 ")
	if err != nil || got != 17 {
		t.Fatalf("ParsePayload(\" 17 \") = %d, %v", got, err)
	}
}

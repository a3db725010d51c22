package shop

import (
	"errors"
	"strconv"
	"strings"
)

// ErrBadPayload marks an action or invoice payload that does not decode to
// an item id.
var ErrBadPayload = errors.New("shop: bad payload")

// EncodePayload renders an item id as the opaque payload attached to
// callbacks and invoices. The provider echoes it back byte-for-byte.
func EncodePayload(itemID int64) string {
	return strconv.FormatInt(itemID, 10)
}

// ParsePayload decodes a payload produced by EncodePayload. Anything that is
// not a positive decimal integer is rejected.
func ParsePayload(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, ErrBadPayload
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrBadPayload
	}
	return id, nil
}

package facet

import (
	"errors"
	"strings"
)

// WildcardPrefix tags a terms-filter value as a substring match request
// instead of an exact term selection. Known limitation: a legitimate
// term value that itself begins with the marker cannot be told apart
// from an encoded wildcard; there is no escape mechanism.
const WildcardPrefix = "~~"

// ErrNotWildcard is returned when decoding a value that does not carry
// the wildcard marker. Callers are expected to check IsWildcard first,
// so hitting this is a programming error.
var ErrNotWildcard = errors.New("facet: value is not wildcard-encoded")

// EncodeWildcard tags a raw substring as a wildcard match request.
func EncodeWildcard(raw string) string {
	return WildcardPrefix + raw
}

// IsWildcard reports whether the value carries the wildcard marker.
func IsWildcard(value string) bool {
	return strings.HasPrefix(value, WildcardPrefix)
}

// DecodeWildcard strips the marker and returns the substring to match.
func DecodeWildcard(value string) (string, error) {
	if !IsWildcard(value) {
		return "", ErrNotWildcard
	}
	return value[len(WildcardPrefix):], nil
}

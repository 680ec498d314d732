package session

import "strings"

const (
	mobilePrefix     = "521"
	countryPrefix    = "52"
	prefixedIDLength = 13
)

// NormalizeUserID canonicalizes a sender id before it is used as a store key
// or lock key. Mexican WhatsApp ids arrive with the mobile marker 521 while
// outbound sends and the index use the bare 52 country code; the marker is
// stripped so both spellings address the same session. Only full-length
// prefixed ids are rewritten, which makes the function idempotent: a
// normalized 12-digit id can never match again.
func NormalizeUserID(id string) string {
	id = strings.TrimSpace(id)
	if len(id) == prefixedIDLength && strings.HasPrefix(id, mobilePrefix) {
		return countryPrefix + id[len(mobilePrefix):]
	}
	return id
}

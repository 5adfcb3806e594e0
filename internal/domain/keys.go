package domain

import (
	"fmt"
	"strings"
)

const apiKeyLength = 32

// APIKeys a public/private key pair identifying an exchange account.
// Keys are generated at https://tradeogre.com/account/settings.
type APIKeys struct {
	Public  string
	Private string
}

// Valid reports whether both keys have the exact length the exchange issues.
// This is an input-boundary rule; the API client itself does not enforce it.
func (k APIKeys) Valid() bool {
	return len(k.Public) == apiKeyLength && len(k.Private) == apiKeyLength
}

// String returns the composite "public:private" storage form.
func (k APIKeys) String() string {
	return fmt.Sprintf("%s:%s", k.Public, k.Private)
}

// ParseAPIKeys parses the composite storage form. A missing or malformed
// value (wrong segment count, empty segment) means no credentials.
func ParseAPIKeys(s string) (APIKeys, bool) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return APIKeys{}, false
	}
	return APIKeys{Public: parts[0], Private: parts[1]}, true
}

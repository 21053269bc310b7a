package ghclient

import (
	"strings"

	"github.com/spiffcs/ghusers/internal/constants"
)

// ValidUsername reports whether s looks like a GitHub login: at most 39
// ASCII letters, digits or hyphens, not starting or ending with a hyphen.
// Surrounding whitespace is ignored.
func ValidUsername(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > constants.MaxUsernameLength {
		return false
	}
	if s[0] == '-' || s[len(s)-1] == '-' {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-':
		default:
			return false
		}
	}
	return true
}

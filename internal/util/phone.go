package util

import (
	"regexp"
	"strings"
)

var nonPhoneChars = regexp.MustCompile(`[^\d\+]+`)

// NormalizePhone tries to normalize user input into E.164-like format.
// National French numbers (0XXXXXXXXX) get the +33 prefix.
func NormalizePhone(raw string) string {
	s := nonPhoneChars.ReplaceAllString(strings.TrimSpace(raw), "")

	switch {
	case strings.HasPrefix(s, "00"):
		s = "+" + s[2:]
	case strings.HasPrefix(s, "0") && len(s) == 10:
		s = "+33" + s[1:]
	case strings.HasPrefix(s, "33") && len(s) == 11:
		s = "+" + s
	}

	return s
}

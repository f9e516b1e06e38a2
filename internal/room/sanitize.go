package room

import (
	"regexp"
	"strings"
)

const (
	maxRoomIDLen   = 100
	maxUsernameLen = 32
)

var (
	roomIDStrip   = regexp.MustCompile(`[^A-Za-z0-9_:-]`)
	usernameStrip = regexp.MustCompile(`[^\w\- ]`)
)

// SanitizeRoomID trims, caps, and strips a room id down to its allowed
// character set. ok is false when nothing usable remains.
func SanitizeRoomID(id string) (cleaned string, ok bool) {
	id = trimTo(id, maxRoomIDLen)
	cleaned = roomIDStrip.ReplaceAllString(id, "")
	return cleaned, cleaned != ""
}

// SanitizeUsername trims, caps, and strips a display name, falling back
// to "Anonymous" when nothing usable remains.
func SanitizeUsername(name string) string {
	name = trimTo(name, maxUsernameLen)
	cleaned := usernameStrip.ReplaceAllString(name, "")
	if cleaned == "" {
		return "Anonymous"
	}
	return cleaned
}

func trimTo(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) > max {
		s = s[:max]
	}
	return s
}

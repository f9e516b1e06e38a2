package room

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSanitizeRoomID(t *testing.T) {
	cases := []struct {
		name  string
		in    string
		want  string
		valid bool
	}{
		{"plain", "room-1", "room-1", true},
		{"trimmed", "  my-room  ", "my-room", true},
		{"strips forbidden", "room/../1!", "room1", true},
		{"keeps colon and underscore", "team:alpha_2", "team:alpha_2", true},
		{"empty", "", "", false},
		{"whitespace only", "   ", "", false},
		{"nothing survives", "@@@", "", false},
		{"capped at 100", strings.Repeat("a", 150), strings.Repeat("a", 100), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := SanitizeRoomID(tc.in)
			require.Equal(t, tc.valid, ok)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestSanitizeUsername(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "alice", "alice"},
		{"space allowed", "alice b", "alice b"},
		{"strips markup", "<alice>", "alice"},
		{"blank defaults", "   ", "Anonymous"},
		{"nothing survives defaults", "@!#", "Anonymous"},
		{"capped at 32", strings.Repeat("x", 40), strings.Repeat("x", 32)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, SanitizeUsername(tc.in))
		})
	}
}

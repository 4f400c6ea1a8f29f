package telegoapi

import (
	"strconv"
	"strings"

	"github.com/mymmrac/telego"
)

// ChatIDFromString builds a telego.ChatID from either a numeric chat id
// or a public @username. Values without a leading @ that do not parse
// as a number are treated as usernames.
func ChatIDFromString(s string) telego.ChatID {
	if strings.HasPrefix(s, "@") {
		return telego.ChatID{Username: s}
	}
	if id, err := strconv.ParseInt(s, 10, 64); err == nil {
		return telego.ChatID{ID: id}
	}
	return telego.ChatID{Username: "@" + s}
}

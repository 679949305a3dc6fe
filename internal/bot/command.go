package bot

import (
	"strings"

	"github.com/shigurecafe/cafebot/internal/telegram"
)

// Command is a parsed "/name@bot arg1 arg2" message.
type Command struct {
	Name string
	Args []string
}

// ParseCommand extracts a bot command from msg. Commands addressed to a
// different bot ("/audit@other_bot") are ignored; botUsername may be empty
// before the bot identity is known, in which case any addressee matches.
func ParseCommand(msg *telegram.Message, botUsername string) (Command, bool) {
	if msg == nil || !strings.HasPrefix(msg.Text, "/") {
		return Command{}, false
	}
	fields := strings.Fields(msg.Text)
	if len(fields) == 0 {
		return Command{}, false
	}

	name := strings.TrimPrefix(fields[0], "/")
	if at := strings.IndexByte(name, '@'); at >= 0 {
		target := name[at+1:]
		name = name[:at]
		if botUsername != "" && !strings.EqualFold(target, botUsername) {
			return Command{}, false
		}
	}
	if name == "" {
		return Command{}, false
	}

	return Command{Name: strings.ToLower(name), Args: fields[1:]}, true
}

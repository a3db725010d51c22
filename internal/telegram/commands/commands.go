// Package commands defines the registration shape for slash commands.
package commands

import (
	tele "gopkg.in/telebot.v4"
)

// Command binds a handler to a slash command. Description feeds the bot
// command menu; Hidden commands are wired but kept out of the menu.
// Aliases are plain-text phrases routed to the same handler.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	Hidden      bool
	Aliases     []string
}

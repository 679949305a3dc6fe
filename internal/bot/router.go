// Package bot turns Telegram updates into command handler calls and sends
// the replies.
package bot

import (
	"context"
	"sync"

	"github.com/shigurecafe/cafebot/internal/telegram"
	"github.com/shigurecafe/cafebot/pkg/log"
	"github.com/shigurecafe/cafebot/pkg/safe"
)

// Replier sends messages back to a chat.
type Replier interface {
	SendMessage(ctx context.Context, params telegram.SendMessageParams) (*telegram.Message, error)
}

// HandlerFunc handles one command invocation.
type HandlerFunc func(ctx context.Context, c *Context) error

// Context carries a single command invocation to its handler.
type Context struct {
	Update  telegram.Update
	Message *telegram.Message
	Command Command
	replier Replier
}

// Reply sends text to the chat the command came from. markdown selects the
// legacy Markdown parse mode. Outside private chats the reply quotes the
// command message.
func (c *Context) Reply(ctx context.Context, text string, markdown bool) error {
	params := telegram.SendMessageParams{
		ChatID: c.Message.Chat.ID,
		Text:   text,
	}
	if markdown {
		params.ParseMode = telegram.ParseModeMarkdown
	}
	if c.Message.Chat.Type != telegram.ChatTypePrivate {
		params.ReplyParameters = &telegram.ReplyParameters{
			MessageID:                c.Message.MessageID,
			AllowSendingWithoutReply: true,
		}
	}
	_, err := c.replier.SendMessage(ctx, params)
	return err
}

// Router dispatches commands to registered handlers.
type Router struct {
	mu       sync.RWMutex
	username string
	handlers map[string]HandlerFunc
	replier  Replier
}

func NewRouter(replier Replier) *Router {
	return &Router{
		handlers: make(map[string]HandlerFunc),
		replier:  replier,
	}
}

// SetUsername sets the bot's own username used to filter addressed commands.
func (r *Router) SetUsername(username string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.username = username
}

// Handle registers h for command name (without the leading slash).
func (r *Router) Handle(name string, h HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = h
}

// Dispatch routes one update. Updates that are not commands for this bot are
// ignored. Handler errors and panics are logged and never propagate.
func (r *Router) Dispatch(ctx context.Context, update telegram.Update) {
	r.mu.RLock()
	username := r.username
	r.mu.RUnlock()

	cmd, ok := ParseCommand(update.Message, username)
	if !ok {
		return
	}

	r.mu.RLock()
	h, ok := r.handlers[cmd.Name]
	r.mu.RUnlock()
	if !ok {
		return
	}

	c := &Context{
		Update:  update,
		Message: update.Message,
		Command: cmd,
		replier: r.replier,
	}
	if err := safe.Call(func() error { return h(ctx, c) }); err != nil {
		log.Errorw("exception while handling an update",
			"update_id", update.UpdateID,
			"command", cmd.Name,
			"error", err,
		)
	}
}

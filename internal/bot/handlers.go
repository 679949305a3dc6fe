package bot

import (
	"context"
	"fmt"

	"github.com/shigurecafe/cafebot/internal/audit"
)

const (
	startText = "你好！欢迎来到 Shigure Cafe 审核机器人。\n" +
		"请使用命令 `/audit <审核码>` 来获取审核群邀请链接。\n" +
		"例如：`/audit 12345678-1234-1234-1234-1234567890ab`\n" +
		"审核码在你注册成功后会显示在网页上。"
	chatIDText = "当前群组/聊天的 ID 是: `%d`\n类型: %s"
)

// AuditHandler is the orchestration behind /audit.
type AuditHandler interface {
	Handle(ctx context.Context, req audit.Request) audit.Result
}

// Handlers holds the command implementations.
type Handlers struct {
	audit AuditHandler
}

func NewHandlers(auditor AuditHandler) *Handlers {
	return &Handlers{audit: auditor}
}

// Register binds every command on r.
func (h *Handlers) Register(r *Router) {
	r.Handle("start", h.Start)
	r.Handle("chatid", h.ChatID)
	r.Handle("audit", h.Audit)
}

func (h *Handlers) Start(ctx context.Context, c *Context) error {
	return c.Reply(ctx, startText, true)
}

// ChatID reports the current chat id, used when configuring the review group.
func (h *Handlers) ChatID(ctx context.Context, c *Context) error {
	chat := c.Message.Chat
	return c.Reply(ctx, fmt.Sprintf(chatIDText, chat.ID, chat.Type), true)
}

func (h *Handlers) Audit(ctx context.Context, c *Context) error {
	req := audit.Request{
		ChatType: c.Message.Chat.Type,
		Args:     c.Command.Args,
	}
	if c.Message.From != nil {
		req.UserID = c.Message.From.ID
	}

	res := h.audit.Handle(ctx, req)
	return c.Reply(ctx, res.Text, res.Markdown)
}

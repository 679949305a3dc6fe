package audit

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/shigurecafe/cafebot/internal/telegram"
)

const (
	// InviteTTL is how long an issued invite stays valid.
	InviteTTL = 10 * time.Minute
	// InviteMemberLimit makes every invite single-use.
	InviteMemberLimit = 1

	inviteLabelPrefix = "Audit: "
	// Bot API limit for invite link names.
	maxInviteNameLen = 32
)

// ErrNotConfigured is returned when no target group is configured.
var ErrNotConfigured = errors.New("audit group is not configured")

// InviteCreator is the chat-platform call that mints invite links.
type InviteCreator interface {
	CreateChatInviteLink(ctx context.Context, params telegram.InviteLinkParams) (*telegram.ChatInviteLink, error)
}

// InviteGrant is an issued invite. It is handed to the user and never stored.
type InviteGrant struct {
	Link        string
	ExpiresAt   time.Time
	MemberLimit int
	Label       string
}

// InviteIssuer mints single-use, expiring invites into the review group.
type InviteIssuer struct {
	creator InviteCreator
	groupID string
	now     func() time.Time
}

func NewInviteIssuer(creator InviteCreator, groupID string) *InviteIssuer {
	return &InviteIssuer{creator: creator, groupID: groupID, now: time.Now}
}

// Configured reports whether a target group id is set.
func (i *InviteIssuer) Configured() bool {
	return i.groupID != ""
}

// Issue requests an invite labelled after username that expires InviteTTL
// from now and admits one member.
func (i *InviteIssuer) Issue(ctx context.Context, username string) (*InviteGrant, error) {
	if !i.Configured() {
		return nil, ErrNotConfigured
	}

	label := inviteLabel(username)
	expiresAt := i.now().UTC().Add(InviteTTL)

	link, err := i.creator.CreateChatInviteLink(ctx, telegram.InviteLinkParams{
		ChatID:      i.groupID,
		Name:        label,
		ExpireDate:  expiresAt.Unix(),
		MemberLimit: InviteMemberLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("create invite link: %w", err)
	}

	return &InviteGrant{
		Link:        link.InviteLink,
		ExpiresAt:   expiresAt,
		MemberLimit: InviteMemberLimit,
		Label:       label,
	}, nil
}

func inviteLabel(username string) string {
	label := inviteLabelPrefix + username
	if utf8.RuneCountInString(label) <= maxInviteNameLen {
		return label
	}
	runes := []rune(label)
	return string(runes[:maxInviteNameLen])
}

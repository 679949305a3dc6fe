package bootstrap

import (
	"github.com/google/wire"

	"github.com/shigurecafe/cafebot/internal/audit"
	"github.com/shigurecafe/cafebot/internal/bot"
	"github.com/shigurecafe/cafebot/internal/config"
	"github.com/shigurecafe/cafebot/internal/logship"
	"github.com/shigurecafe/cafebot/internal/telegram"
	"github.com/shigurecafe/cafebot/pkg/log"
)

// ProviderSet wires the pieces that need values from configuration.
var ProviderSet = wire.NewSet(
	ProvideTelegramClient,
	ProvideInviteIssuer,
	ProvidePoller,
	ProvideShipper,
	NewApp,
)

// ProvideTelegramClient 提供 Bot API 客户端，cleanup 时释放连接
func ProvideTelegramClient(conf *config.AppConfig, opts telegram.Options) (*telegram.Client, func()) {
	client := telegram.NewClient(conf.Bot.Token, opts)
	return client, func() {
		if err := client.Close(); err != nil {
			log.Warnw("failed to close telegram client", "error", err)
		}
	}
}

func ProvideInviteIssuer(creator audit.InviteCreator, conf *config.AppConfig) *audit.InviteIssuer {
	return audit.NewInviteIssuer(creator, conf.Bot.AuditGroupID)
}

func ProvidePoller(source bot.UpdateSource, router *bot.Router, conf *config.AppConfig) *bot.Poller {
	return bot.NewPoller(source, router, conf.Bot.PollTimeout)
}

func ProvideShipper(buffer *logship.Buffer, uploader logship.Uploader, conf *config.AppConfig) *logship.Shipper {
	return logship.NewShipper(buffer, uploader, conf.Shipper.Interval)
}

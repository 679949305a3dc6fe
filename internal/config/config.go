// Package config loads the bot configuration from an optional TOML file,
// a .env file and the process environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/shigurecafe/cafebot/pkg/log"
	"github.com/shigurecafe/cafebot/pkg/metrics"
)

const (
	DefaultBackendURL = "http://localhost:8080"
	apiPrefix         = "/api/v1"
)

// ErrMissingToken is returned when no bot token is configured.
var ErrMissingToken = errors.New("TELEGRAM_BOT_TOKEN is not set")

// AppConfig holds all configuration settings
type AppConfig struct {
	Bot     BotConfig             `mapstructure:"bot"`
	Backend BackendConfig         `mapstructure:"backend"`
	Shipper ShipperConfig         `mapstructure:"shipper"`
	Log     log.Conf              `mapstructure:"log"`
	Metrics metrics.MetricsConfig `mapstructure:"metrics"`
}

type BotConfig struct {
	Token        string        `mapstructure:"token" validate:"required"`
	ProxyURL     string        `mapstructure:"proxyUrl" validate:"omitempty,url"`
	AuditGroupID string        `mapstructure:"auditGroupId"`
	APIURL       string        `mapstructure:"apiUrl" validate:"omitempty,url"` // 自建 Bot API 服务地址
	PollTimeout  int           `mapstructure:"pollTimeout" validate:"gte=0"`   // 长轮询秒数
	Timeout      time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

type BackendConfig struct {
	URL     string        `mapstructure:"url" validate:"required,url"`
	APIKey  string        `mapstructure:"apiKey"`
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

// APIBaseURL returns the REST root, e.g. http://localhost:8080/api/v1.
func (c BackendConfig) APIBaseURL() string {
	return strings.TrimRight(c.URL, "/") + apiPrefix
}

type ShipperConfig struct {
	Enable   bool          `mapstructure:"enable"`
	Interval time.Duration `mapstructure:"interval" validate:"gt=0"`
}

// env names kept compatible with existing deployments
var envBindings = map[string]string{
	"bot.token":        "TELEGRAM_BOT_TOKEN",
	"bot.proxyUrl":     "PROXY_URL",
	"bot.auditGroupId": "AUDIT_GROUP_ID",
	"backend.url":      "BACKEND_URL",
	"backend.apiKey":   "CAFE_API_KEY",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("bot.pollTimeout", 30)
	v.SetDefault("bot.timeout", 20*time.Second)
	v.SetDefault("bot.auditGroupId", "")
	v.SetDefault("bot.proxyUrl", "")
	v.SetDefault("backend.url", DefaultBackendURL)
	v.SetDefault("backend.apiKey", "")
	v.SetDefault("backend.timeout", 15*time.Second)
	v.SetDefault("shipper.enable", true)
	v.SetDefault("shipper.interval", 5*time.Second)

	logConf := log.SetDefaults()
	v.SetDefault("log.output", logConf.Output)
	v.SetDefault("log.path", logConf.Path)
	v.SetDefault("log.filename", logConf.Filename)
	v.SetDefault("log.level", logConf.Level)
	v.SetDefault("log.keepHours", logConf.KeepHours)
	v.SetDefault("log.rotateSize", logConf.RotateSize)
	v.SetDefault("log.rotateNum", logConf.RotateNum)

	v.SetDefault("metrics.host", "127.0.0.1")
	v.SetDefault("metrics.port", 9464)
	v.SetDefault("metrics.enable", false)
	v.SetDefault("metrics.pprof", false)
}

// Load reads configuration. confPath may be empty or point to a missing file,
// in which case only defaults, .env and the environment are used.
func Load(confPath string) (*AppConfig, error) {
	// .env 不覆盖已存在的环境变量
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	fileLoaded := false
	if confPath != "" {
		if _, err := os.Stat(confPath); err == nil {
			v.SetConfigFile(confPath)
			v.SetConfigType("toml")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read configuration file: %w", err)
			}
			fileLoaded = true
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat configuration file: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	cfg.Bot.Token = strings.TrimSpace(cfg.Bot.Token)
	cfg.Backend.URL = strings.TrimRight(cfg.Backend.URL, "/")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if fileLoaded {
		v.OnConfigChange(func(e fsnotify.Event) {
			log.Infow("configuration file changed, restart to apply", "file", e.Name, "op", e.Op.String())
		})
		v.WatchConfig()
	}

	return &cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints. A missing token is reported as
// ErrMissingToken; a missing audit group is allowed and handled per request.
func (c *AppConfig) Validate() error {
	if c.Bot.Token == "" {
		return ErrMissingToken
	}
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s(%s)", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(fields, ", "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return c.Log.Validate()
}

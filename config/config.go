package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

//go:embed config-default.yaml
var DefaultYAML string

type Config struct {
	AdminEmails []string `mapstructure:"admin_emails"`

	LogFormat string `mapstructure:"log_format"`
	LogLevel  string `mapstructure:"log_level"`

	SMTPServer   string `mapstructure:"smtp_server"`
	SMTPPort     int    `mapstructure:"smtp_port"`
	SMTPTLS      bool   `mapstructure:"smtp_tls"`
	SMTPLogin    string `mapstructure:"smtp_login"`
	SMTPPassword string `mapstructure:"smtp_password"`
	SMTPFrom     string `mapstructure:"smtp_from"`

	ExpireSoonDays          int   `mapstructure:"expire_soon_days"`
	OKReportDay             int   `mapstructure:"ok_report_day"`
	NoCacheDaysBeforeExpire int64 `mapstructure:"no_cache_days_before_expire"`

	StateFile     string `mapstructure:"state_file"`
	CustomersFile string `mapstructure:"customers_file"`

	WhoisTimeout   time.Duration `mapstructure:"whois_timeout"`
	WhoisRateLimit time.Duration `mapstructure:"whois_rate_limit"`
	UseRDAP        bool          `mapstructure:"use_rdap"`

	Telegram Telegram `mapstructure:"telegram"`
	Metrics  Metrics  `mapstructure:"metrics"`
}

type Telegram struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

type Metrics struct {
	PushgatewayURL string `mapstructure:"pushgateway_url"`
}

// Default 只包含内置默认值。
func Default() (*Config, error) {
	v, err := newViper()
	if err != nil {
		return nil, err
	}
	return unmarshal(v)
}

// Load 先读内置默认值，再合并 path 指向的文件，最后是 DOMAINWATCH_* 环境变量。
func Load(path string) (*Config, error) {
	v, err := newViper()
	if err != nil {
		return nil, err
	}
	v.SetConfigFile(path)
	if err := v.MergeInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return unmarshal(v)
}

func newViper() (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewBufferString(DefaultYAML)); err != nil {
		return nil, fmt.Errorf("read default config: %w", err)
	}
	v.SetEnvPrefix("DOMAINWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v, nil
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.UnmarshalExact(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.OKReportDay < 0 || c.OKReportDay > 7 {
		return fmt.Errorf("ok_report_day must be within 0..7, got %d", c.OKReportDay)
	}
	if c.ExpireSoonDays < 0 {
		return fmt.Errorf("expire_soon_days must not be negative, got %d", c.ExpireSoonDays)
	}
	return nil
}

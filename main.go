package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"DomainWatch/config"
	"DomainWatch/domain"
	"DomainWatch/internal/app"
	"DomainWatch/telegram"

	"github.com/google/uuid"
	"github.com/lmittmann/tint"
	"github.com/openrdap/rdap"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	var (
		configPath            string
		printDefaultConfig    bool
		printCustomersExample bool
	)

	cmd := &cobra.Command{
		Use:           filepath.Base(os.Args[0]),
		Short:         "Checks domain expiry dates for customers and mails reports",
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if printDefaultConfig {
				fmt.Println(config.DefaultYAML)
				return nil
			}
			if printCustomersExample {
				fmt.Println(domain.CustomersExample)
				return nil
			}
			return run(configPath)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to config file")
	cmd.Flags().BoolVar(&printDefaultConfig, "print-default-config", false,
		"Print the default config and exit. config.yaml needs only the keys you want to override")
	cmd.Flags().BoolVar(&printCustomersExample, "print-customers-example", false, "Print customers.yaml example and exit")

	if err := cmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg).With("run_id", uuid.NewString())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var whois app.WhoisGateway = app.DefaultWhoisClient{Timeout: cfg.WhoisTimeout}
	if cfg.UseRDAP {
		whois = &app.RDAPWhoisClient{Client: &rdap.Client{}, Fallback: whois}
	}

	var sender telegram.Sender
	if cfg.Telegram.BotToken != "" {
		botSender, err := telegram.NewBotSender(cfg.Telegram.BotToken, cfg.Telegram.ChatID, 2, time.Second, 10*time.Second)
		if err != nil {
			logger.Warn("telegram init failed, reports go to email only", "err", err)
		} else {
			defer botSender.Close()
			sender = botSender
		}
	}

	metrics := app.NewMetrics()
	application := &app.App{
		Config: cfg,
		Repo:   domain.NewFileRepository(cfg.CustomersFile, cfg.StateFile),
		Whois:  whois,
		Notifier: &app.NotifierService{
			Mailer: &app.SMTPMailer{
				Server:   cfg.SMTPServer,
				Port:     cfg.SMTPPort,
				TLS:      cfg.SMTPTLS,
				Login:    cfg.SMTPLogin,
				Password: cfg.SMTPPassword,
			},
			Sender:      sender,
			From:        cfg.SMTPFrom,
			AdminEmails: cfg.AdminEmails,
			Logger:      logger,
			Metrics:     metrics,
		},
		Metrics: metrics,
		Logger:  logger,
	}
	return application.Run(ctx)
}

func setupLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(cfg.LogLevel))); err != nil {
		log.Printf("unknown log level %q, using info", cfg.LogLevel)
		level = slog.LevelInfo
	}

	var handler slog.Handler
	switch strings.ToLower(cfg.LogFormat) {
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	default:
		replaceAttrs := func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.SourceKey {
				source := a.Value.Any().(*slog.Source)
				source.File = filepath.Base(source.File)
			}
			return a
		}
		handler = tint.NewHandler(os.Stderr, &tint.Options{
			AddSource:   level == slog.LevelDebug,
			Level:       level,
			ReplaceAttr: replaceAttrs,
			TimeFormat:  time.DateTime,
		})
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

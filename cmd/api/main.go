package main

import (
	"flag"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/thisisjab/signup-go/api"
	"github.com/thisisjab/signup-go/internal/data"
	"github.com/thisisjab/signup-go/internal/envreader"
	"github.com/thisisjab/signup-go/internal/form"
	"github.com/thisisjab/signup-go/internal/mailer"
	"github.com/thisisjab/signup-go/internal/notify"
)

var version = "dev"

func main() {
	env := envreader.New("SIGNUP_")

	logLevel := flag.String("log-level", env.Choice("LOG_LEVEL", []string{"debug", "info", "warning", "error"}, "info"), "server log level (debug, info, warning, error)")
	formTTL := flag.Duration("form-ttl", env.Duration("FORM_TTL", 30*time.Minute), "drop forms idle for longer than this (0 keeps them forever)")
	crossField := flag.String("cross-field", env.Choice("CROSS_FIELD", []string{"revalidate", "keep-stale"}, "revalidate"), "confirmation handling when the password changes (revalidate, keep-stale)")

	apiCfg := &api.Config{Version: version}
	loadAPIConfig(env, apiCfg)

	mailCfg := mailer.Config{}
	var mailRecipient string
	loadMailerConfig(env, &mailCfg, &mailRecipient)

	flag.Parse()

	logger := setupLogger(*logLevel)

	policy, err := form.ParseCrossFieldPolicy(*crossField)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	models := data.NewModels(*formTTL, form.WithCrossFieldPolicy(policy))

	notifiers := notify.Multi{notify.LogNotifier{Logger: logger}}
	if mailCfg.Host != "" && mailRecipient != "" {
		notifiers = append(notifiers, notify.NewMailNotifier(mailer.New(mailCfg), mailRecipient))
		logger.Info("mailing accepted signups", "recipient", mailRecipient, "smtp_host", mailCfg.Host)
	}

	server := api.NewServer(apiCfg, models, notifiers, logger)
	if err := server.Start(); err != nil {
		logger.Error("failed to start server", "error", err)
		os.Exit(1)
	}
}

func setupLogger(logLevel string) *slog.Logger {
	l := slog.LevelInfo

	switch logLevel {
	case "debug":
		l = slog.LevelDebug
	case "info":
		l = slog.LevelInfo
	case "warning":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}

	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: l}))
}

func loadAPIConfig(env *envreader.EnvReader, cfg *api.Config) {
	flag.StringVar(&cfg.Environment, "environment", env.Choice("ENVIRONMENT", []string{"development", "production"}, "development"), "server environment (development, production)")
	flag.IntVar(&cfg.Port, "port", env.Int("PORT", 8000), "server port")
	flag.DurationVar(&cfg.SweepInterval, "sweep-interval", env.Duration("SWEEP_INTERVAL", time.Minute), "how often idle forms are purged")

	flag.BoolVar(&cfg.RateLimiter.Enabled, "limiter-enabled", env.Bool("LIMITER_ENABLED", true), "enable per-client rate limiting")
	flag.Float64Var(&cfg.RateLimiter.Rps, "limiter-rps", env.Float("LIMITER_RPS", 4), "rate limiter maximum requests per second")
	flag.IntVar(&cfg.RateLimiter.Burst, "limiter-burst", env.Int("LIMITER_BURST", 8), "rate limiter maximum burst")

	flag.StringVar(&cfg.Cors.AllowedMethods, "cors-allowed-methods", env.String("CORS_ALLOWED_METHODS", "GET, POST, PUT, DELETE, OPTIONS"), "value of Access-Control-Allow-Methods")
	flag.StringVar(&cfg.Cors.AllowedHeaders, "cors-allowed-headers", env.String("CORS_ALLOWED_HEADERS", "Content-Type"), "value of Access-Control-Allow-Headers")
	flag.Func("cors-trusted-origins", "trusted CORS origins (space separated)", func(val string) error {
		cfg.Cors.TrustedOrigins = strings.Fields(val)
		return nil
	})
	cfg.Cors.TrustedOrigins = strings.Fields(env.String("CORS_TRUSTED_ORIGINS", ""))
}

func loadMailerConfig(env *envreader.EnvReader, cfg *mailer.Config, recipient *string) {
	flag.StringVar(&cfg.Host, "smtp-host", env.String("SMTP_HOST", ""), "SMTP host; mail notifications are off when empty")
	flag.IntVar(&cfg.Port, "smtp-port", env.Int("SMTP_PORT", 587), "SMTP port")
	flag.StringVar(&cfg.Username, "smtp-username", env.String("SMTP_USERNAME", ""), "SMTP username")
	flag.StringVar(&cfg.Password, "smtp-password", env.String("SMTP_PASSWORD", ""), "SMTP password")
	flag.StringVar(&cfg.Sender, "smtp-sender", env.String("SMTP_SENDER", "Signup <no-reply@signup.local>"), "SMTP sender")
	flag.StringVar(recipient, "notify-recipient", env.String("NOTIFY_RECIPIENT", ""), "mailbox that receives accepted signups")
}

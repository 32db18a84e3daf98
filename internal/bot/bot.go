package bot

import (
	"fmt"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/medinet/credgate/internal/bot/handlers"
	"github.com/medinet/credgate/internal/bot/keyboard"
	"github.com/medinet/credgate/internal/eligibility"
	errs "github.com/medinet/credgate/internal/errors"
	"github.com/medinet/credgate/internal/idempotency"
	"github.com/medinet/credgate/internal/issuer"
	"github.com/medinet/credgate/internal/middleware"
	"github.com/medinet/credgate/internal/referral"
	"github.com/medinet/credgate/internal/repository"
	"github.com/medinet/credgate/pkg/config"
)

// Bot wraps telebot.Bot with application dependencies required for handling updates.
type Bot struct {
	telebot            *telebot.Bot
	log                *slog.Logger
	cfg                config.Config
	router             *Router
	keyboard           *keyboard.Builder
	gate               *eligibility.Gate
	issuer             *issuer.Issuer
	errHandler         *errs.Handler
	rateLimitMw        *middleware.RateLimitMiddleware
	idempotencyManager idempotency.Manager
}

// New builds a telegram bot instance configured according to the application settings.
func New(
	cfg config.Config,
	log *slog.Logger,
	users repository.UserRepository,
	creds repository.CredentialRepository,
	ledger *referral.Ledger,
	idempotencyManager idempotency.Manager,
	rateLimitMw *middleware.RateLimitMiddleware,
) (*Bot, error) {
	settings := telebot.Settings{
		Token: cfg.Bot.Token,
	}

	if cfg.Bot.Mode == "webhook" {
		settings.Poller = &telebot.Webhook{
			Listen: cfg.Server.Port,
		}
	} else {
		settings.Poller = &telebot.LongPoller{
			Timeout: cfg.Bot.Timeout,
		}
	}

	tb, err := telebot.NewBot(settings)
	if err != nil {
		return nil, fmt.Errorf("initialize telebot: %w", err)
	}

	membership := NewMembership(tb, log)
	gate := eligibility.NewGate(membership, cfg.Referral.Channel, cfg.Referral.Required, log)

	gen := issuer.NewTokenGenerator(cfg.Credentials.IDLetters, cfg.Credentials.IDDigits, nil)
	iss := issuer.New(users, creds, gate, gen, issuer.Config{
		DailyLimit:  cfg.Credentials.DailyLimit,
		MaxAttempts: cfg.Credentials.MaxAttempts,
	}, log)

	kb := keyboard.NewBuilder(cfg.Referral.Channel, cfg.Bot.AdminContact)

	b := &Bot{
		telebot:            tb,
		log:                log,
		cfg:                cfg,
		router:             NewRouter(log),
		keyboard:           kb,
		gate:               gate,
		issuer:             iss,
		errHandler:         errs.NewHandler(log, cfg.Sentry.Enabled),
		rateLimitMw:        rateLimitMw,
		idempotencyManager: idempotencyManager,
	}

	b.setupRouter(users, creds, ledger)

	if b.rateLimitMw != nil {
		b.telebot.Use(b.rateLimitMw.Handle)
	}

	b.registerTelebotHandlers()

	return b, nil
}

// Start runs the telegram bot event loop.
func (b *Bot) Start() {
	if b.telebot != nil {
		b.telebot.Start()
	}
}

// Stop gracefully stops the telegram bot.
func (b *Bot) Stop() {
	if b.telebot == nil {
		return
	}

	b.log.Info("stopping telegram bot...")
	b.telebot.Stop()
}

// Telebot exposes the underlying telebot.Bot instance for integrations such as health checks.
func (b *Bot) Telebot() *telebot.Bot {
	return b.telebot
}

func (b *Bot) setupRouter(
	users repository.UserRepository,
	creds repository.CredentialRepository,
	ledger *referral.Ledger,
) {
	b.router.Use(RecoveryMiddleware(b.log, b.errHandler))
	b.router.Use(middleware.Idempotency(b.idempotencyManager, b.log))
	b.router.Use(ErrorHandlingMiddleware(b.errHandler))
	b.router.Use(LoggingMiddleware(b.log))
	b.router.Use(middleware.Metrics)

	renderer := handlers.NewRenderer(b.keyboard, b.cfg.Referral.Channel, b.telebot.Me.Username)

	b.router.RegisterCommand(CommandStart, handlers.NewStartHandler(users, ledger, b.gate, renderer, b.log))
	b.router.RegisterCommand(CommandStatus, handlers.NewStatusHandler(users, b.gate, renderer, b.log))
	b.router.RegisterCommand(CommandMyCreds, handlers.NewMyCredsHandler(users, creds, b.log))
	b.router.RegisterCommand(CommandHelp, handlers.NewHelpHandler(b.keyboard, b.cfg.Referral.Channel, b.cfg.Referral.Required))
	b.router.RegisterCommand(CommandBuy, handlers.NewBuyHandler(b.keyboard))

	b.router.RegisterCallback(CallbackCheckStatus, handlers.NewCheckStatusHandler(users, b.gate, renderer, b.log))
	b.router.RegisterCallback(CallbackGenerate, handlers.NewGenerateHandler(b.issuer, renderer, b.cfg.Credentials.DailyLimit, b.log))
}

func (b *Bot) registerTelebotHandlers() {
	b.telebot.Handle(telebot.OnText, b.router.Route)
	b.telebot.Handle(telebot.OnCallback, b.router.Route)
}

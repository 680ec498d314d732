package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/topmx/top-assistant/internal/ai"
	"github.com/topmx/top-assistant/internal/ai/gemini"
	"github.com/topmx/top-assistant/internal/assistant"
	"github.com/topmx/top-assistant/internal/ats"
	"github.com/topmx/top-assistant/internal/dialogue"
	"github.com/topmx/top-assistant/internal/jobindex"
	"github.com/topmx/top-assistant/internal/logger"
	"github.com/topmx/top-assistant/internal/messaging"
	"github.com/topmx/top-assistant/internal/secrets"
	"github.com/topmx/top-assistant/internal/session"
	"github.com/topmx/top-assistant/internal/telegram"
	"github.com/topmx/top-assistant/internal/webhook"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	defaultListen   = ":8080"
	shutdownTimeout = 10 * time.Second
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the assistant webhook server",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("listen", "l", "", "listen address for the webhook server. Default is :8080.")

	viper.BindPFlag("listen", runCmd.Flags().Lookup("listen"))
}

// run is the main command for the cli: it wires every adapter together and
// serves the webhook until a shutdown signal arrives.
func run(_ *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the "+app, zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	if config == nil {
		logger.Fatal("config is required")
	}

	appName := config.AppName
	if appName == "" {
		appName = defaultAppName
	}

	if config.JobIndex == nil || config.JobIndex.URL == "" {
		logger.Fatal("the posting index is required", zap.String("hint", "set job-index.url in the configuration file"))
	}

	if config.Meta == nil {
		logger.Fatal("meta webhook configuration is required", zap.String("hint", "set the meta section in the configuration file"))
	}

	verifyToken, err := secrets.Load(secrets.Source{
		Name: "meta verify token",
		File: tokenFileOr(config.Meta.VerifyTokenFile, "meta.verify-token-file"),
	})
	if err != nil {
		logger.Fatal("loading meta verify token",
			zap.Error(err),
			zap.String("hint", "set META_VERIFY_TOKEN_FILE environment variable or the 'meta.verify-token-file' key in the configuration file"),
		)
	}

	store, err := newSessionStore(ctx, config.Session)
	if err != nil {
		logger.Fatal("building the session store", zap.Error(err))
	}
	defer store.Close()

	jobs, err := newJobIndex(config.JobIndex, logger)
	if err != nil {
		logger.Fatal("building the posting index client", zap.Error(err))
	}

	sender, err := newDispatcher(config.Meta, logger)
	if err != nil {
		logger.Fatal("building the outbound senders", zap.Error(err))
	}

	opsAlerts, staffAlerts, err := newNotifiers(config.Telegram, logger)
	if err != nil {
		logger.Fatal("building the telegram notifiers", zap.Error(err))
	}
	if opsAlerts == nil {
		logger.Warn("telegram is not configured, operator alerts are disabled")
	}

	sink, err := newATS(config.ATS, logger)
	if err != nil {
		logger.Fatal("building the ats client", zap.Error(err))
	}

	classifier, err := newClassifier(ctx, config.AI, logger)
	if err != nil {
		logger.Fatal("building the intent classifier", zap.Error(err))
	}

	router := dialogue.NewRouter(classifier, logger)
	registry := dialogue.NewRegistry(logger,
		dialogue.NewDiscoveryHandler(jobs, logger),
		dialogue.NewJobInfoHandler(jobs, logger),
		dialogue.NewContactHandler(logger),
		dialogue.NewApplicationHandler(jobs, sink, staffAlerts, opsAlerts, logger),
		dialogue.NewFAQHandler(),
		dialogue.NewFollowUpHandler(),
	)

	engine := assistant.New(appName, store, jobs, router, registry, sender, opsAlerts, logger)

	listen := config.Listen
	if listen == "" {
		listen = defaultListen
	}

	srv := &http.Server{
		Addr:              listen,
		Handler:           webhook.NewServer(logger, verifyToken, engine).Routes(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("webhook server listening", zap.String("addr", srv.Addr), zap.String("app_name", appName))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("webhook server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	stop()

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
	}

	logger.Info("stopped")
}

// tokenFileOr falls back to the viper key when the unmarshalled config left
// the field empty; environment bindings land there.
func tokenFileOr(file, key string) string {
	if strings.TrimSpace(file) != "" {
		return file
	}
	return strings.TrimSpace(viper.GetString(key))
}

func newSessionStore(ctx context.Context, cfg *SessionConfig) (session.Store, error) {
	storeType := session.StoreTypeMemory
	if cfg != nil && cfg.Store != "" {
		storeType = session.StoreType(cfg.Store)
	}

	switch storeType {
	case session.StoreTypeMemory:
		return session.NewStore(session.StoreTypeMemory)

	case session.StoreTypeRedis:
		if cfg.Redis == nil || cfg.Redis.Addr == "" {
			return nil, errors.New("session.redis.addr is required for the redis store")
		}

		password, err := secrets.Optional(secrets.Source{
			Name: "redis password",
			File: tokenFileOr(cfg.Redis.PasswordFile, "session.redis.password-file"),
		})
		if err != nil {
			return nil, err
		}

		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			DB:       cfg.Redis.DB,
			Password: password,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("pinging redis at %s: %w", cfg.Redis.Addr, err)
		}

		return session.NewStore(session.StoreTypeRedis,
			session.WithRedisClient(client),
			session.WithTTL(cfg.TTL),
		)

	case session.StoreTypeSQLite:
		if cfg.SQLite == nil || cfg.SQLite.Path == "" {
			return nil, errors.New("session.sqlite.path is required for the sqlite store")
		}
		return session.NewStore(session.StoreTypeSQLite, session.WithSQLitePath(cfg.SQLite.Path))

	default:
		return nil, fmt.Errorf("unsupported session store: %s", cfg.Store)
	}
}

// newJobIndex builds the posting index client. The token is optional, an
// index inside the private network may run without one.
func newJobIndex(cfg *JobIndexConfig, logger *zap.Logger) (*jobindex.Client, error) {
	token, err := secrets.Optional(secrets.Source{
		Name: "job index token",
		File: tokenFileOr(cfg.TokenFile, "job-index.token-file"),
	})
	if err != nil {
		return nil, err
	}
	if token == "" {
		logger.Warn("job index token is not configured, requests go unauthenticated")
	}

	client := jobindex.New(logger, token, cfg.URL)
	if cfg.MaxPageSize > 0 {
		client.MaxPageSize = cfg.MaxPageSize
	}

	return client, nil
}

// newDispatcher builds the per-channel senders. A channel without
// configuration stays unregistered; events for it fail loudly at send time
// instead of silently dropping replies.
func newDispatcher(cfg *MetaConfig, logger *zap.Logger) (*messaging.Dispatcher, error) {
	var whatsapp, messenger messaging.Sender

	if cfg.WhatsApp != nil {
		token, err := secrets.Load(secrets.Source{
			Name: "whatsapp access token",
			File: tokenFileOr(cfg.WhatsApp.TokenFile, "meta.whatsapp.token-file"),
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set meta.whatsapp.token-file or WHATSAPP_TOKEN_FILE)", err)
		}
		if cfg.WhatsApp.PhoneNumberID == "" {
			return nil, errors.New("meta.whatsapp.phone-number-id is required")
		}
		whatsapp = messaging.NewWhatsAppSender(logger, token, cfg.WhatsApp.PhoneNumberID)
	} else {
		logger.Warn("whatsapp sender is not configured")
	}

	if cfg.Messenger != nil {
		token, err := secrets.Load(secrets.Source{
			Name: "messenger page token",
			File: tokenFileOr(cfg.Messenger.TokenFile, "meta.messenger.token-file"),
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set meta.messenger.token-file or MESSENGER_TOKEN_FILE)", err)
		}
		messenger = messaging.NewMessengerSender(logger, token)
	} else {
		logger.Warn("messenger sender is not configured")
	}

	if whatsapp == nil && messenger == nil {
		return nil, errors.New("at least one channel must be configured under meta")
	}

	return messaging.NewDispatcher(whatsapp, messenger), nil
}

func newNotifiers(cfg *TelegramConfig, logger *zap.Logger) (ops, staff dialogue.Notifier, err error) {
	if cfg == nil {
		return nil, nil, nil
	}

	token, err := secrets.Load(secrets.Source{
		Name: "telegram bot token",
		File: tokenFileOr(cfg.TokenFile, "telegram.token-file"),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%w (set telegram.token-file or TELEGRAM_TOKEN_FILE)", err)
	}

	client := telegram.New(logger, token)

	if cfg.OpsChatID != "" {
		ops = telegram.NewChatNotifier(client, cfg.OpsChatID)
	}
	if cfg.StaffChatID != "" {
		staff = telegram.NewChatNotifier(client, cfg.StaffChatID)
	}

	return ops, staff, nil
}

func newATS(cfg *ATSConfig, logger *zap.Logger) (*ats.Client, error) {
	if cfg == nil || cfg.URL == "" {
		return nil, errors.New("ats.url is required to forward candidacies")
	}

	token, err := secrets.Load(secrets.Source{
		Name: "ats token",
		File: tokenFileOr(cfg.TokenFile, "ats.token-file"),
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ats.token-file or ATS_TOKEN_FILE)", err)
	}

	return ats.New(logger, token, cfg.URL, cfg.CatalogID), nil
}

// newClassifier picks the intent backend. Keyword rules are the default and
// always back a model provider, so a dead model degrades classification
// instead of taking the assistant down.
func newClassifier(ctx context.Context, cfg *AIConfig, log *zap.Logger) (ai.Classifier, error) {
	keywords := ai.NewKeywordClassifier()

	provider := ""
	if cfg != nil {
		provider = strings.TrimSpace(strings.ToLower(cfg.Provider))
	}

	switch provider {
	case "", "keywords":
		return keywords, nil
	case "gemini":
	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	if cfg.Gemini == nil {
		return nil, errors.New("gemini configuration is required when ai.provider is gemini")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: tokenFileOr(cfg.Gemini.APIKeyFile, "ai.gemini.api-key-file"),
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
	}

	genLogger := logger.WithFields(log, logger.ClassifierFields("gemini", cfg.Gemini.Model)...)

	generator, err := gemini.NewGenerator(ctx, genLogger, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries)
	if err != nil {
		return nil, err
	}

	primary := gemini.NewClassifier(generator, genLogger, cfg.Gemini.MaxLogLength)

	return ai.NewFallbackClassifier(primary, keywords, log), nil
}

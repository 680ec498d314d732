package cmd

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "top-assistant"

	// defaultAppName keys the session rows when app-name is not configured.
	defaultAppName = "jobs-support"
)

type Config struct {
	AppName  string          `mapstructure:"app-name"`
	Listen   string          `mapstructure:"listen"`
	Session  *SessionConfig  `mapstructure:"session"`
	JobIndex *JobIndexConfig `mapstructure:"job-index"`
	Meta     *MetaConfig     `mapstructure:"meta"`
	Telegram *TelegramConfig `mapstructure:"telegram"`
	ATS      *ATSConfig      `mapstructure:"ats"`
	AI       *AIConfig       `mapstructure:"ai"`
}

type SessionConfig struct {
	Store  string        `mapstructure:"store"`
	TTL    time.Duration `mapstructure:"ttl"`
	Redis  *RedisConfig  `mapstructure:"redis"`
	SQLite *SQLiteConfig `mapstructure:"sqlite"`
}

type RedisConfig struct {
	Addr         string `mapstructure:"addr"`
	DB           int    `mapstructure:"db"`
	PasswordFile string `mapstructure:"password-file"`
}

type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

type JobIndexConfig struct {
	URL         string `mapstructure:"url"`
	TokenFile   string `mapstructure:"token-file"`
	MaxPageSize int    `mapstructure:"max-page-size"`
}

type MetaConfig struct {
	VerifyTokenFile string           `mapstructure:"verify-token-file"`
	WhatsApp        *WhatsAppConfig  `mapstructure:"whatsapp"`
	Messenger       *MessengerConfig `mapstructure:"messenger"`
}

type WhatsAppConfig struct {
	TokenFile     string `mapstructure:"token-file"`
	PhoneNumberID string `mapstructure:"phone-number-id"`
}

type MessengerConfig struct {
	TokenFile string `mapstructure:"token-file"`
}

type TelegramConfig struct {
	TokenFile   string `mapstructure:"token-file"`
	OpsChatID   string `mapstructure:"ops-chat-id"`
	StaffChatID string `mapstructure:"staff-chat-id"`
}

type ATSConfig struct {
	URL       string `mapstructure:"url"`
	TokenFile string `mapstructure:"token-file"`
	CatalogID int    `mapstructure:"catalog-id"`
}

type AIConfig struct {
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "top-assistant runs the conversational job placement assistant behind the TOP WhatsApp and Messenger channels",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	envBindings := map[string]string{
		"meta.verify-token-file":      "META_VERIFY_TOKEN_FILE",
		"meta.whatsapp.token-file":    "WHATSAPP_TOKEN_FILE",
		"meta.messenger.token-file":   "MESSENGER_TOKEN_FILE",
		"telegram.token-file":         "TELEGRAM_TOKEN_FILE",
		"ats.token-file":              "ATS_TOKEN_FILE",
		"job-index.token-file":        "JOB_INDEX_TOKEN_FILE",
		"ai.gemini.api-key-file":      "GEMINI_API_KEY_FILE",
		"session.redis.password-file": "REDIS_PASSWORD_FILE",
	}
	for key, env := range envBindings {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is top-assistant.yaml in current directory, or $TOP_CONFIG)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Config needed only for the run and reset commands. If there is no
	// config, we can skip initialization.
	if runCmd.CalledAs() == "" && resetCmd.CalledAs() == "" {
		return
	}

	// Secrets may arrive through a .env file in development.
	_ = godotenv.Load()

	if cfgFile == "" {
		cfgFile = os.Getenv("TOP_CONFIG")
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// We can't proceed if the config file parsed with error.
	if err := viper.ReadInConfig(); err != nil {
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}

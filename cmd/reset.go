package cmd

import (
	"context"
	"log"

	"github.com/topmx/top-assistant/internal/logger"
	"github.com/topmx/top-assistant/internal/session"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptYes = "Yes"
	PromptNo  = "No"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset a user's session to the initial template, keeping identity and contact fields",
	Run: func(cmd *cobra.Command, _ []string) {
		reset(cmd)
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)

	resetCmd.Flags().StringP("user", "u", "", "the user id whose session to reset")
	resetCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")
}

// reset rebuilds a stuck session by hand. Support uses it when a candidate
// reports the assistant lost the thread; the identity and contact fields
// survive so the candidate is not asked for their data again.
func reset(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	if config == nil {
		logger.Fatal("config is required")
	}

	appName := config.AppName
	if appName == "" {
		appName = defaultAppName
	}

	userID := session.NormalizeUserID(cmd.Flag("user").Value.String())
	if userID == "" {
		logger.Fatal("a user id is required", zap.String("hint", "pass it with --user"))
	}

	store, err := newSessionStore(ctx, config.Session)
	if err != nil {
		logger.Fatal("building the session store", zap.Error(err))
	}
	defer store.Close()

	record, err := store.Load(ctx, appName, userID)
	if err != nil {
		logger.Fatal("loading the session", zap.Error(err))
	}
	if record == nil {
		logger.Info("nothing to reset", zap.String("user_id", userID), zap.String("app_name", appName))
		return
	}

	logger.Info("found session",
		zap.String("user_id", userID),
		zap.String("session_id", record.ID),
		zap.String("channel", string(record.State.Channel)),
		zap.String("current_job_id", record.State.CurrentJobID),
		zap.String("current_job_title", record.State.CurrentJobTitle),
		zap.Int("applied_jobs", len(record.State.AppliedJobs)),
		zap.Int64("version", record.Version),
	)

	if cmd.Flag("yes").Value.String() == "false" {
		prompt := promptui.Select{
			Label: "Reset this session?",
			Items: []string{PromptYes, PromptNo},
		}

		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}
		if action != PromptYes {
			logger.Info("exiting", zap.String("reason", "got no from prompt"))
			return
		}
	}

	record, err = store.Reset(ctx, appName, userID, session.DefaultPreservedFields)
	if err != nil {
		logger.Fatal("resetting the session", zap.Error(err))
	}

	logger.Info("session reset",
		zap.String("user_id", userID),
		zap.String("session_id", record.ID),
		zap.Int64("version", record.Version),
	)
}

package main

import (
	"errors"

	"github.com/spf13/cobra"

	telegram "facegate/internal/api"
	"facegate/internal/container"
	"facegate/internal/infrastructure/storage"
)

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the Telegram verification bot",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.TelegramToken == "" {
			return errors.New("TELEGRAM_TOKEN is required")
		}

		c, err := container.New(cmd.Context(), cfg, log, storage.NewMemoryUserRepository())
		if err != nil {
			return err
		}
		defer c.Close()

		policy, err := cfg.Policy()
		if err != nil {
			return err
		}

		bot, err := telegram.NewBot(cfg.TelegramToken, c.SessionService, c.UserService, policy.MaxImageBytes, log)
		if err != nil {
			return err
		}

		log.Info("bot is running")
		return bot.Run(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(botCmd)
}

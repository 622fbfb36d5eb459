package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	cartCmd "github.com/Alturino/shop/cart/cmd"
	"github.com/Alturino/shop/internal/common/constants"
	"github.com/Alturino/shop/internal/log"
	notificationCmd "github.com/Alturino/shop/notification/cmd"
	orderCmd "github.com/Alturino/shop/order/cmd"
	shopCmd "github.com/Alturino/shop/shop/cmd"
	userCmd "github.com/Alturino/shop/user/cmd"
)

func Start() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().
		Timestamp().
		Str(log.KeyAppName, constants.AppMainShop).
		Str(log.KeyTag, "main Start").
		Logger()

	logger.Debug().Msg("adding listener for SIGINT and SIGTERM")
	c, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger.Debug().Msg("added listener for SIGINT and SIGTERM")

	c = logger.WithContext(c)

	rootCmd := &cobra.Command{
		Use:           "shop",
		Short:         "Shop backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	commands := []*cobra.Command{
		{
			Use:   "shop",
			Short: "Run every service in one process",
			RunE: func(cmd *cobra.Command, args []string) error {
				return shopCmd.RunShop(cmd.Context())
			},
		},
		{
			Use:   "cart",
			Short: "Run cart service",
			RunE: func(cmd *cobra.Command, args []string) error {
				return cartCmd.RunCartService(cmd.Context())
			},
		},
		{
			Use:   "notification",
			Short: "Run notification service",
			RunE: func(cmd *cobra.Command, args []string) error {
				return notificationCmd.RunNotificationService(cmd.Context())
			},
		},
		{
			Use:   "order",
			Short: "Run order service",
			RunE: func(cmd *cobra.Command, args []string) error {
				return orderCmd.RunOrderService(cmd.Context())
			},
		},
		{
			Use:   "user",
			Short: "Run user service",
			RunE: func(cmd *cobra.Command, args []string) error {
				return userCmd.RunUserService(cmd.Context())
			},
		},
		newMigrateCommand(),
		newProductCommand(),
		newSeedCommand(),
		newHealthcheckCommand(),
	}
	rootCmd.AddCommand(commands...)
	if err := rootCmd.ExecuteContext(c); err != nil {
		logger.Fatal().Err(err).Msgf("error when executing command=%s", err.Error())
	}
}

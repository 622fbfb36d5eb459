package cmd

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Alturino/shop/internal/common/constants"
	"github.com/Alturino/shop/internal/config"
	"github.com/Alturino/shop/internal/infra"
	"github.com/Alturino/shop/internal/log"
)

const (
	migrateUp   = "up"
	migrateDown = "down"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down]",
		Short:     "Apply or revert database migrations",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{migrateUp, migrateDown},
		RunE: func(cmd *cobra.Command, args []string) error {
			c := cmd.Context()
			cfg := config.Get(c, constants.AppShop)

			logger := zerolog.Ctx(c).
				With().
				Str(log.KeyTag, "cmd migrate").
				Str(log.KeyProcess, "migrating "+args[0]).
				Logger()
			c = logger.WithContext(c)

			var err error
			switch args[0] {
			case migrateUp:
				err = infra.MigrateUp(c, cfg.Database)
			case migrateDown:
				err = infra.MigrateDown(c, cfg.Database)
			}
			if err != nil {
				err = fmt.Errorf("failed migrating %s with error=%w", args[0], err)
				logger.Error().Err(err).Msg(err.Error())
				return err
			}
			logger.Info().Msg("migrated " + args[0])
			return nil
		},
	}
}

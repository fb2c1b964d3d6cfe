package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the job queue schema",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.store.Migrate(ctx); err != nil {
			return err
		}

		zap.L().Info("migrations complete", zap.String("driver", cfg.Queue.Driver))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

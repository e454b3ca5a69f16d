package app

import (
	"github.com/spf13/cobra"

	"github.com/zhongyue-admin/zhongyue-admin/internal/config"
	"github.com/zhongyue-admin/zhongyue-admin/internal/daemon"
)

func init() { //nolint: gochecknoinits
	rootCmd.AddCommand(migrateCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate the database schema and seed the initial admin role and user",
	PreRunE: func(_ *cobra.Command, _ []string) error {
		cfg, err = config.ReadConfig(configPath)

		return err
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return daemon.Migrate(&cfg)
	},
}

// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "zhongyue-admin",
	Short: "zhongyue-admin is the back-office API of the bookkeeping agency",
	Long: `zhongyue-admin is the back-office API of the bookkeeping agency.
It manages customers, contracts, expense records, users, departments and roles,
and filters every list by the permissions of the caller's roles.`,
	Args: cobra.OnlyValidArgs,
}

func init() { //nolint: gochecknoinits
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the config directory (default ./etc/)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

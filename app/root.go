// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "go-profile-portal",
	Short: "GoProfilePortal is a web portal for self-service user profiles",
	Long: `GoProfilePortal is a small web portal where users sign in through an
OpenID Connect identity provider and manage their own profile information.`,
	Args: cobra.OnlyValidArgs,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// Package cli provides the command-line interface for the Solo in
// Public backend.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/duhenri9/solo-in-public/internal/client"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	serverURL string
	sessionID string
	locale    string

	api *client.Client
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "solo",
	Short: "Solo in Public assistant client",
	Long: `Solo is the terminal client for the Solo in Public backend: chat with
the Pro-founder Agent, search the knowledge base, manage conversation
memory and drive the content workflow.`,
	Version: Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		api = client.New(serverURL)
	},
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "server base URL (default $SOLO_SERVER_URL or http://localhost:8787)")
	rootCmd.PersistentFlags().StringVarP(&sessionID, "session", "s", "cli", "conversation session id")
	rootCmd.PersistentFlags().StringVarP(&locale, "locale", "l", "pt-BR", "user locale")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(postsCmd)
}

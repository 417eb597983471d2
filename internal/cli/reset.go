package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear the conversation memory of the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := api.ResetSession(context.Background(), sessionID); err != nil {
			return fmt.Errorf("reset session: %w", err)
		}
		fmt.Printf("Session %q cleared.\n", sessionID)
		return nil
	},
}

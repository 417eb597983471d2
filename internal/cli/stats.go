package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregated assistant usage metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		summary, err := api.Dashboard(context.Background())
		if err != nil {
			return fmt.Errorf("dashboard: %w", err)
		}

		fmt.Printf("Messages total:     %d\n", summary.TotalMessages)
		fmt.Printf("Messages last 24h:  %d\n", summary.Messages24h)
		fmt.Printf("Avg response time:  %.0f ms\n", summary.AvgResponse)
		fmt.Printf("Handovers:          %d\n", summary.Handovers)
		fmt.Printf("Leads captured:     %d\n", summary.LeadsCount)
		return nil
	},
}

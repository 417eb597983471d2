package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask <message>",
	Short: "Send one message through the assistant pipeline",
	Long: `Ask sends a single message through the full assistant pipeline:
conversation memory, knowledge retrieval, model routing and handover
evaluation. The reply and the routing decision are printed.

Examples:
  solo ask "Qual o preço do plano?"
  solo ask -s demo -l en "How does the method work?"`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func runAsk(cmd *cobra.Command, args []string) error {
	resp, err := api.Chat(context.Background(), sessionID, args[0], locale)
	if err != nil {
		return fmt.Errorf("chat: %w", err)
	}

	fmt.Println(resp.Message)
	fmt.Printf("\n[model: %s]\n", resp.Model)
	if len(resp.KnowledgeApplied) > 0 {
		fmt.Println("knowledge applied:")
		for _, snippet := range resp.KnowledgeApplied {
			fmt.Printf("  - (%s) %s\n", snippet.Category, snippet.Title)
		}
	}
	if resp.HandoverTriggered {
		fmt.Println("handover: a human follow-up was queued")
	}
	return nil
}

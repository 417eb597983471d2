package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	postTopic   string
	postPersona string
)

var postsCmd = &cobra.Command{
	Use:   "posts",
	Short: "Manage generated LinkedIn drafts",
}

var postsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored drafts",
	RunE: func(cmd *cobra.Command, args []string) error {
		posts, err := api.Posts(context.Background())
		if err != nil {
			return fmt.Errorf("list posts: %w", err)
		}
		if len(posts) == 0 {
			fmt.Println("No drafts yet.")
			return nil
		}
		for _, post := range posts {
			state := "draft"
			if post.Approved {
				state = "approved"
			}
			fmt.Printf("%s [%s, %s]\n%s\n\n", post.ID, state, post.CreatedAt.Format("2006-01-02"), post.Content)
		}
		return nil
	},
}

var postsGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new draft (capped per month)",
	RunE: func(cmd *cobra.Command, args []string) error {
		post, remaining, err := api.GeneratePost(context.Background(), postTopic, postPersona, locale)
		if err != nil {
			return fmt.Errorf("generate post: %w", err)
		}
		fmt.Printf("Draft %s created (%d generations left this month):\n\n%s\n", post.ID, remaining, post.Content)
		return nil
	},
}

var postsApproveCmd = &cobra.Command{
	Use:   "approve <id>",
	Short: "Approve a draft for publishing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		post, err := api.ApprovePost(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("approve post: %w", err)
		}
		fmt.Printf("Post %s approved at %s.\n", post.ID, post.ApprovedAt.Format("2006-01-02 15:04"))
		return nil
	},
}

var postsCalendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Show suggested publishing slots for the next two weeks",
	RunE: func(cmd *cobra.Command, args []string) error {
		suggestions, err := api.Calendar(context.Background())
		if err != nil {
			return fmt.Errorf("calendar: %w", err)
		}
		for _, suggestion := range suggestions {
			fmt.Printf("%s  %s\n", suggestion.Slot, suggestion.Reason)
		}
		return nil
	},
}

func init() {
	postsGenerateCmd.Flags().StringVarP(&postTopic, "topic", "t", "", "post topic (default: the solo founder journey)")
	postsGenerateCmd.Flags().StringVarP(&postPersona, "persona", "p", "default", "writing persona")

	postsCmd.AddCommand(postsListCmd)
	postsCmd.AddCommand(postsGenerateCmd)
	postsCmd.AddCommand(postsApproveCmd)
	postsCmd.AddCommand(postsCalendarCmd)
}

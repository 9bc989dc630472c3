package command

import (
	"fmt"
	"strconv"
	"strings"

	"yamdb/cmd/cli/command/client"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var reviewsCmd = &cobra.Command{
	Use:   "reviews",
	Short: "Read and post reviews",
}

var listReviewsCmd = &cobra.Command{
	Use:   "list [title-id]",
	Short: "List the reviews of a title, newest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		titleID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid title ID: %w", err)
		}
		pageNum, _ := cmd.Flags().GetInt("page")

		page, err := anonymousClient().ListReviews(titleID, pageNum)
		if err != nil {
			return fmt.Errorf("failed to list reviews: %w", err)
		}
		if len(page.Data) == 0 {
			fmt.Println("No reviews yet.")
			return nil
		}
		for _, r := range page.Data {
			color.Cyan("#%d %s  %d/10  %s", r.ID, r.Author, r.Score, r.PubDate.Format("2006-01-02"))
			fmt.Println(r.Text)
			fmt.Println(strings.Repeat("-", 50))
		}
		return nil
	},
}

var addReviewCmd = &cobra.Command{
	Use:   "add [title-id] [score] [text]",
	Short: "Review a title with a score from 1 to 10",
	Args:  cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		titleID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid title ID: %w", err)
		}
		score, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid score: %w", err)
		}
		if score < 1 || score > 10 {
			return fmt.Errorf("score must be between 1 and 10")
		}
		text := strings.Join(args[2:], " ")

		return withSession(func(c *client.HTTPClient) error {
			r, err := c.AddReview(titleID, text, score)
			if err != nil {
				return fmt.Errorf("failed to post review: %w", err)
			}
			color.Green("✓ Review #%d posted", r.ID)
			return nil
		})
	},
}

var deleteReviewCmd = &cobra.Command{
	Use:   "delete [title-id] [review-id]",
	Short: "Delete a review",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		titleID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid title ID: %w", err)
		}
		reviewID, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid review ID: %w", err)
		}
		return withSession(func(c *client.HTTPClient) error {
			if err := c.DeleteReview(titleID, reviewID); err != nil {
				return fmt.Errorf("failed to delete review: %w", err)
			}
			color.Green("✓ Review deleted")
			return nil
		})
	},
}

func init() {
	reviewsCmd.AddCommand(listReviewsCmd, addReviewCmd, deleteReviewCmd)
	listReviewsCmd.Flags().Int("page", 1, "Page number")
}

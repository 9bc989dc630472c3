package command

import (
	"fmt"
	"strconv"
	"strings"

	"yamdb/cmd/cli/command/client"
	"yamdb/internal/microservices/http-api/dto"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var titlesCmd = &cobra.Command{
	Use:   "titles",
	Short: "Browse titles",
}

var listTitlesCmd = &cobra.Command{
	Use:   "list",
	Short: "List titles, optionally filtered",
	RunE: func(cmd *cobra.Command, args []string) error {
		var f client.TitleFilter
		f.Genre, _ = cmd.Flags().GetString("genre")
		f.Category, _ = cmd.Flags().GetString("category")
		f.Year, _ = cmd.Flags().GetInt("year")
		f.Name, _ = cmd.Flags().GetString("name")
		f.Page, _ = cmd.Flags().GetInt("page")

		page, err := anonymousClient().ListTitles(f)
		if err != nil {
			return fmt.Errorf("failed to list titles: %w", err)
		}
		if len(page.Data) == 0 {
			fmt.Println("No titles found.")
			return nil
		}

		fmt.Printf("Page %d of %d (%d titles)\n\n", page.Page, page.TotalPages, page.Total)
		for _, t := range page.Data {
			fmt.Printf("%-6d %s (%d)  %s\n", t.ID, t.Name, t.Year, formatRating(t.Rating))
		}
		return nil
	},
}

var getTitleCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Show a title",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid title ID: %w", err)
		}

		t, err := anonymousClient().GetTitle(id)
		if err != nil {
			return fmt.Errorf("failed to get title: %w", err)
		}
		printTitle(t)
		return nil
	},
}

func printTitle(t *dto.TitleResponse) {
	color.New(color.Bold).Printf("%s (%d)\n", t.Name, t.Year)
	fmt.Printf("ID: %d\n", t.ID)
	fmt.Printf("Rating: %s\n", formatRating(t.Rating))
	if t.Category != nil {
		fmt.Printf("Category: %s\n", t.Category.Name)
	}
	if len(t.Genre) > 0 {
		names := make([]string, 0, len(t.Genre))
		for _, g := range t.Genre {
			names = append(names, g.Name)
		}
		fmt.Printf("Genres: %s\n", strings.Join(names, ", "))
	}
	if t.Description != nil && *t.Description != "" {
		fmt.Println()
		fmt.Println(*t.Description)
	}
}

// formatRating colors an average score by how good it is.
func formatRating(r *float64) string {
	if r == nil {
		return color.HiBlackString("no rating")
	}
	s := fmt.Sprintf("%.1f/10", *r)
	switch {
	case *r >= 7:
		return color.GreenString(s)
	case *r >= 4:
		return color.YellowString(s)
	default:
		return color.RedString(s)
	}
}

func init() {
	titlesCmd.AddCommand(listTitlesCmd, getTitleCmd)

	listTitlesCmd.Flags().String("genre", "", "Genre slug")
	listTitlesCmd.Flags().String("category", "", "Category slug")
	listTitlesCmd.Flags().Int("year", 0, "Release year")
	listTitlesCmd.Flags().String("name", "", "Part of the title name")
	listTitlesCmd.Flags().Int("page", 1, "Page number")
}

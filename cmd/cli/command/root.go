package command

// root.go defines the root command for the yamdb CLI and its global flags.

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var apiURL string // Global flag for API server URL

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "yamdb",
	Short: "yamdb - YaMDb Command Line Interface",
	Long: `yamdb is a client for the YaMDb review API. It can:
- Sign up and sign in with an emailed confirmation code
- Browse titles with their average rating
- Read and post reviews
- Show and edit your profile

Use "yamdb [command] --help" to see all available commands.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error: %v", err))
		os.Exit(1)
	}
}

func init() {
	defaultURL := os.Getenv("YAMDB_API_URL")
	if defaultURL == "" {
		defaultURL = "http://localhost:8080/api/v1"
	}
	// Global persistent flags = available to all subcommands
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", defaultURL, "API server URL")

	rootCmd.AddCommand(authCmd, titlesCmd, reviewsCmd, meCmd)
}

package command

import (
	"fmt"

	"yamdb/cmd/cli/authentication"
	"yamdb/cmd/cli/command/client"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// authCmd represents the auth command for authentication related subcommands
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authentication commands",
	Long: `Authenticate with the YaMDb API. Sign up with a username and email, then
exchange the emailed confirmation code for tokens with "yamdb auth token".`,
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account and receive a confirmation code by email",
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("username")
		email, _ := cmd.Flags().GetString("email")

		resp, err := client.NewHTTPClient(apiURL).Signup(username, email)
		if err != nil {
			return fmt.Errorf("sign up failed: %w", err)
		}
		color.Green("✓ Confirmation code sent to %s", resp.Email)
		fmt.Println("Run 'yamdb auth token --email " + resp.Email + " --code <code>' to sign in.")
		return nil
	},
}

var requestCodeCmd = &cobra.Command{
	Use:   "request-code",
	Short: "Mail a new confirmation code to an existing account",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		if err := client.NewHTTPClient(apiURL).RequestCode(email); err != nil {
			return fmt.Errorf("request failed: %w", err)
		}
		color.Green("✓ Confirmation code sent to %s", email)
		return nil
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Exchange a confirmation code for session tokens",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		code, _ := cmd.Flags().GetString("code")

		pair, err := client.NewHTTPClient(apiURL).ExchangeCode(email, code)
		if err != nil {
			return fmt.Errorf("sign in failed: %w", err)
		}
		if err := saveSession(pair, email); err != nil {
			return fmt.Errorf("store tokens: %w", err)
		}
		color.Green("✓ Signed in as %s", email)
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with a username and password",
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("username")
		password, _ := cmd.Flags().GetString("password")

		pair, err := client.NewHTTPClient(apiURL).Login(username, password)
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}
		if err := saveSession(pair, ""); err != nil {
			return fmt.Errorf("store tokens: %w", err)
		}
		color.Green("✓ Successfully logged in!")
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Revoke the refresh token and forget the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		if creds, err := authentication.GetTokens(); err == nil && creds.RefreshToken != "" {
			if err := client.NewHTTPClient(apiURL).Revoke(creds.RefreshToken); err != nil {
				color.Yellow("! could not revoke the session on the server: %v", err)
			}
		}
		if err := authentication.DeleteTokens(); err != nil {
			return err
		}
		color.Green("✓ Successfully logged out.")
		return nil
	},
}

func init() {
	authCmd.AddCommand(signupCmd, requestCodeCmd, tokenCmd, loginCmd, logoutCmd)

	signupCmd.Flags().StringP("username", "u", "", "Username for the new account")
	signupCmd.Flags().StringP("email", "e", "", "Email address for the new account")
	signupCmd.MarkFlagRequired("username")
	signupCmd.MarkFlagRequired("email")

	requestCodeCmd.Flags().StringP("email", "e", "", "Account email")
	requestCodeCmd.MarkFlagRequired("email")

	tokenCmd.Flags().StringP("email", "e", "", "Account email")
	tokenCmd.Flags().StringP("code", "c", "", "Confirmation code from the email")
	tokenCmd.MarkFlagRequired("email")
	tokenCmd.MarkFlagRequired("code")

	loginCmd.Flags().StringP("username", "u", "", "Username for the account")
	loginCmd.Flags().StringP("password", "p", "", "Password for the account")
	loginCmd.MarkFlagRequired("username")
	loginCmd.MarkFlagRequired("password")
}

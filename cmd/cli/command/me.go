package command

import (
	"fmt"

	"yamdb/cmd/cli/command/client"
	"yamdb/internal/microservices/http-api/dto"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var meCmd = &cobra.Command{
	Use:   "me",
	Short: "Show or edit your profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		var patch dto.UpdateUserDTO
		edited := false
		for flag, target := range map[string]**string{
			"first-name": &patch.FirstName,
			"last-name":  &patch.LastName,
			"bio":        &patch.Bio,
		} {
			if cmd.Flags().Changed(flag) {
				v, _ := cmd.Flags().GetString(flag)
				*target = &v
				edited = true
			}
		}

		return withSession(func(c *client.HTTPClient) error {
			var (
				u   *dto.UserResponse
				err error
			)
			if edited {
				u, err = c.UpdateMe(patch)
			} else {
				u, err = c.Me()
			}
			if err != nil {
				return fmt.Errorf("failed to load profile: %w", err)
			}

			color.New(color.Bold).Println(u.Username)
			fmt.Printf("Email: %s\n", u.Email)
			fmt.Printf("Role: %s\n", u.Role)
			if u.FirstName != "" || u.LastName != "" {
				fmt.Printf("Name: %s %s\n", u.FirstName, u.LastName)
			}
			if u.Bio != "" {
				fmt.Printf("Bio: %s\n", u.Bio)
			}
			return nil
		})
	},
}

func init() {
	meCmd.Flags().String("first-name", "", "Set your first name")
	meCmd.Flags().String("last-name", "", "Set your last name")
	meCmd.Flags().String("bio", "", "Set your bio")
}

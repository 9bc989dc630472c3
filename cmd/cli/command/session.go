package command

import (
	"errors"
	"fmt"

	"yamdb/cmd/cli/authentication"
	"yamdb/cmd/cli/command/client"
	"yamdb/internal/microservices/http-api/dto"

	"github.com/zalando/go-keyring"
)

var errNotLoggedIn = errors.New("not logged in, run 'yamdb auth token' or 'yamdb auth login' first")

func saveSession(pair *dto.TokenResponse, email string) error {
	return authentication.StoreTokens(&authentication.StoredCredentials{
		AccessToken:  pair.Access,
		RefreshToken: pair.Refresh,
		Email:        email,
	})
}

// anonymousClient is used for public reads. It still sends the stored
// access token when there is one.
func anonymousClient() *client.HTTPClient {
	c := client.NewHTTPClient(apiURL)
	if creds, err := authentication.GetTokens(); err == nil {
		c.SetToken(creds.AccessToken)
	}
	return c
}

// withSession runs fn with an authenticated client. When the access token has
// expired it rotates the refresh token once and retries.
func withSession(fn func(c *client.HTTPClient) error) error {
	creds, err := authentication.GetTokens()
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errNotLoggedIn
		}
		return fmt.Errorf("read stored tokens: %w", err)
	}

	c := client.NewHTTPClient(apiURL)
	c.SetToken(creds.AccessToken)
	err = fn(c)
	if !client.IsUnauthorized(err) || creds.RefreshToken == "" {
		return err
	}

	pair, refreshErr := c.Refresh(creds.RefreshToken)
	if refreshErr != nil {
		_ = authentication.DeleteTokens()
		return errNotLoggedIn
	}
	if err := saveSession(pair, creds.Email); err != nil {
		return err
	}
	c.SetToken(pair.Access)
	return fn(c)
}

package spotify

import (
	"context"
	"fmt"

	"github.com/spotcat/spotcat/internal/shared"
	"golang.org/x/oauth2/clientcredentials"
)

const spotifyTokenURL = "https://accounts.spotify.com/api/token"

// FetchToken exchanges a client id/secret pair for a short-lived bearer token
// via the client-credentials grant. The caller injects the result into
// [NewClient]; token refresh is out of scope for the core.
func FetchToken(ctx context.Context, clientID, clientSecret string) (string, error) {
	return fetchToken(ctx, clientID, clientSecret, spotifyTokenURL)
}

func fetchToken(ctx context.Context, clientID, clientSecret, tokenURL string) (string, error) {
	if clientID == "" || clientSecret == "" {
		return "", fmt.Errorf("%w: client_id and client_secret are required", shared.ErrMissingCredentials)
	}

	conf := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
	}

	token, err := conf.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}
	return token.AccessToken, nil
}

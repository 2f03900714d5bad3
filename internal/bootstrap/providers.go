package bootstrap

import (
	"log"

	"github.com/go-authgate/stravaexport/internal/client"
	"github.com/go-authgate/stravaexport/internal/config"
	"github.com/go-authgate/stravaexport/internal/strava"
)

// initializeStravaProvider creates the Strava OAuth and activities client
func initializeStravaProvider(cfg *config.Config) (*strava.Provider, error) {
	httpClient, err := client.NewHTTPClient(cfg.StravaTimeout, cfg.StravaInsecureSkipVerify)
	if err != nil {
		return nil, err
	}

	provider := strava.NewProvider(strava.Config{
		ClientID:     cfg.StravaClientID,
		ClientSecret: cfg.StravaClientSecret,
		RedirectURL:  cfg.StravaRedirectURI,
		Scopes:       cfg.StravaScopes,
		AuthURL:      cfg.StravaAuthURL,
		TokenURL:     cfg.StravaTokenURL,
		APIBaseURL:   cfg.StravaAPIURL,
	}, httpClient)

	log.Printf("Strava provider configured (client_id=%s, api=%s)", cfg.StravaClientID, cfg.StravaAPIURL)
	return provider, nil
}

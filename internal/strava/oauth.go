package strava

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
	"golang.org/x/oauth2"
)

// Default Strava endpoints.
const (
	DefaultAuthURL    = "https://www.strava.com/oauth/authorize"
	DefaultTokenURL   = "https://www.strava.com/api/v3/oauth/token"
	DefaultAPIBaseURL = "https://www.strava.com/api/v3"
)

// Config contains the Strava application registration.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
	AuthURL      string
	TokenURL     string
	APIBaseURL   string
}

// Athlete is the subset of the athlete summary returned with a token.
type Athlete struct {
	ID        int64  `mapstructure:"id"`
	Username  string `mapstructure:"username"`
	Firstname string `mapstructure:"firstname"`
	Lastname  string `mapstructure:"lastname"`
}

// Grant is the result of a successful code exchange.
type Grant struct {
	AccessToken string
	AthleteID   string
	Athlete     Athlete
	Token       *oauth2.Token
}

// Provider talks to the Strava OAuth and REST endpoints.
type Provider struct {
	config     *oauth2.Config
	apiBaseURL string
	httpClient *http.Client
}

// NewProvider creates a Provider. A nil httpClient falls back to http.DefaultClient.
func NewProvider(cfg Config, httpClient *http.Client) *Provider {
	authURL := cfg.AuthURL
	if authURL == "" {
		authURL = DefaultAuthURL
	}
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}
	apiBaseURL := cfg.APIBaseURL
	if apiBaseURL == "" {
		apiBaseURL = DefaultAPIBaseURL
	}

	// Strava expects a single comma separated scope parameter.
	var scopes []string
	if len(cfg.Scopes) > 0 {
		scopes = []string{strings.Join(cfg.Scopes, ",")}
	}

	return &Provider{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   authURL,
				TokenURL:  tokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		apiBaseURL: strings.TrimRight(apiBaseURL, "/"),
		httpClient: httpClient,
	}
}

// AuthCodeURL returns the consent page URL carrying the given state.
func (p *Provider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state)
}

// ExchangeCode trades an authorization code for an access token and the athlete ID.
func (p *Provider) ExchangeCode(ctx context.Context, code string) (*Grant, error) {
	token, err := p.config.Exchange(p.clientContext(ctx), code)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenExchange, err)
	}

	athlete, err := decodeAthlete(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenExchange, err)
	}

	return &Grant{
		AccessToken: token.AccessToken,
		AthleteID:   strconv.FormatInt(athlete.ID, 10),
		Athlete:     athlete,
		Token:       token,
	}, nil
}

// clientContext attaches the configured HTTP client for the oauth2 package to use.
func (p *Provider) clientContext(ctx context.Context) context.Context {
	if p.httpClient == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
}

func decodeAthlete(token *oauth2.Token) (Athlete, error) {
	var athlete Athlete

	raw := token.Extra("athlete")
	if raw == nil {
		return athlete, fmt.Errorf("token response missing athlete")
	}
	if err := mapstructure.Decode(raw, &athlete); err != nil {
		return athlete, fmt.Errorf("failed to decode athlete: %w", err)
	}
	if athlete.ID == 0 {
		return athlete, fmt.Errorf("token response missing athlete.id")
	}
	return athlete, nil
}

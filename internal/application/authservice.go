package application

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/ericfisherdev/slackpanel/internal/domain/model"
	"github.com/ericfisherdev/slackpanel/internal/domain/port/driven"
)

// DefaultAuthorizeURL is Slack's OAuth v2 authorization endpoint.
const DefaultAuthorizeURL = "https://slack.com/oauth/v2/authorize"

// BotScopes is the fixed capability set requested on every authorization:
// send messages, list channels, join channels and read users.
var BotScopes = []string{"chat:write", "channels:read", "channels:join", "users:read"}

// OAuthConfig carries the Slack app settings needed for the OAuth flow.
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	AuthorizeURL string // defaults to DefaultAuthorizeURL
}

// AuthService drives the Slack OAuth flow and owns the credential lifecycle:
// Unauthenticated -> Authenticated -> Authenticated (replaced). There is no
// revoke transition.
type AuthService struct {
	cfg       OAuthConfig
	credStore driven.CredentialStore
	gateway   driven.SlackGateway
	logger    *slog.Logger
}

// NewAuthService creates a new AuthService with the required dependencies.
func NewAuthService(cfg OAuthConfig, credStore driven.CredentialStore, gateway driven.SlackGateway, logger *slog.Logger) *AuthService {
	if cfg.AuthorizeURL == "" {
		cfg.AuthorizeURL = DefaultAuthorizeURL
	}
	return &AuthService{
		cfg:       cfg,
		credStore: credStore,
		gateway:   gateway,
		logger:    logger,
	}
}

// AuthorizeURL builds the Slack authorization redirect target. It has no
// side effects.
func (s *AuthService) AuthorizeURL() string {
	q := url.Values{}
	q.Set("client_id", s.cfg.ClientID)
	q.Set("scope", strings.Join(BotScopes, ","))
	q.Set("redirect_uri", s.cfg.RedirectURI)
	return s.cfg.AuthorizeURL + "?" + q.Encode()
}

// CompleteAuthorization exchanges an OAuth code and replaces the stored
// credential with the result. Concurrent callbacks are last-writer-wins.
func (s *AuthService) CompleteAuthorization(ctx context.Context, code string) (model.Credential, error) {
	cred, err := s.gateway.ExchangeCode(ctx, code, s.cfg.ClientID, s.cfg.ClientSecret, s.cfg.RedirectURI)
	if err != nil {
		return model.Credential{}, err
	}

	if err := s.credStore.Replace(ctx, cred); err != nil {
		return model.Credential{}, fmt.Errorf("store credential: %w", err)
	}

	s.logger.Info("slack workspace authorized", "team", cred.TeamName, "team_id", cred.TeamID, "app_id", cred.AppID)
	return cred, nil
}

// Current returns the active credential, or (nil, nil) when unauthenticated.
func (s *AuthService) Current(ctx context.Context) (*model.Credential, error) {
	cred, err := s.credStore.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load credential: %w", err)
	}
	return cred, nil
}

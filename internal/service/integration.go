package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"golang.org/x/oauth2"

	"github.com/ananyateklu/second-brain-sub000/internal/model"
)

type CredentialStore interface {
	GetCredentials(ctx context.Context, userID string) (*model.Credentials, error)
	SaveCredentials(ctx context.Context, c *model.Credentials) error
	DeleteCredentials(ctx context.Context, userID string) error
}

// IntegrationService handles the TickTick OAuth lifecycle: authorization-code
// exchange on connect, status checks, disconnect. Expired tokens are not
// refreshed; the sync path fails closed and the user reconnects.
type IntegrationService struct {
	store CredentialStore
	oauth *oauth2.Config
}

func NewIntegrationService(store CredentialStore, clientID, clientSecret, redirectURL string) *IntegrationService {
	return &IntegrationService{
		store: store,
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"tasks:read", "tasks:write"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  "https://ticktick.com/oauth/authorize",
				TokenURL: "https://ticktick.com/oauth/token",
			},
		},
	}
}

// AuthURL is where the user grants access; state is echoed back on the
// callback.
func (s *IntegrationService) AuthURL(state string) string {
	return s.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

func (s *IntegrationService) Connect(ctx context.Context, userID, code string) (*model.Credentials, error) {
	tok, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("ticktick code exchange failed: %w", err)
	}

	creds := &model.Credentials{
		UserID:       userID,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    tok.Expiry,
	}
	if creds.ExpiresAt.IsZero() {
		// TickTick access tokens live long; without an expiry in the
		// response, keep a conservative window.
		creds.ExpiresAt = time.Now().Add(30 * 24 * time.Hour)
	}
	if err := s.store.SaveCredentials(ctx, creds); err != nil {
		return nil, err
	}
	return creds, nil
}

func (s *IntegrationService) Status(ctx context.Context, userID string) (*model.IntegrationStatus, error) {
	creds, err := s.store.GetCredentials(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &model.IntegrationStatus{Connected: false}, nil
		}
		return nil, err
	}
	expiresAt := creds.ExpiresAt
	return &model.IntegrationStatus{
		Connected: true,
		Expired:   time.Until(expiresAt) <= tokenExpiryLeeway,
		ExpiresAt: &expiresAt,
	}, nil
}

func (s *IntegrationService) Disconnect(ctx context.Context, userID string) error {
	return s.store.DeleteCredentials(ctx, userID)
}

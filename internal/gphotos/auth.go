package gphotos

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/ccfrost/albumdrop/internal/config"
	"github.com/ccfrost/albumdrop/internal/lib"
)

var scopes = []string{
	"https://www.googleapis.com/auth/photoslibrary.readonly.appcreateddata",
	"https://www.googleapis.com/auth/photoslibrary.appendonly",
	"https://www.googleapis.com/auth/photoslibrary.edit.appcreateddata",
}

func oauthConfig(cfg config.GooglePhotosConfig) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.ClientId,
		ClientSecret: cfg.ClientSecret,
		Scopes:       scopes,
		Endpoint:     google.Endpoint,
	}
}

// NewHTTPClient returns an HTTP client authorized with the pre-provisioned
// token in cfg.TokenFile. Refreshed tokens are written back to that file.
// A missing or unusable token is reported as lib.ErrTerminalAuth since no
// request can succeed without it.
func NewHTTPClient(ctx context.Context, cfg config.GooglePhotosConfig) (*http.Client, error) {
	if cfg.ClientId == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("%w: google_photos.client_id or client_secret not configured", lib.ErrTerminalAuth)
	}

	token, err := loadToken(cfg.TokenFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", lib.ErrTerminalAuth, err)
	}
	if !token.Valid() && token.RefreshToken == "" {
		return nil, fmt.Errorf("%w: token in %s has expired and has no refresh token", lib.ErrTerminalAuth, cfg.TokenFile)
	}

	src := &persistingTokenSource{
		base:      oauthConfig(cfg).TokenSource(ctx, token),
		path:      cfg.TokenFile,
		lastSaved: token.AccessToken,
	}
	return oauth2.NewClient(ctx, oauth2.ReuseTokenSource(token, src)), nil
}

// persistingTokenSource saves each new token from base to path.
type persistingTokenSource struct {
	base oauth2.TokenSource
	path string

	mu        sync.Mutex
	lastSaved string // Access token.
}

func (s *persistingTokenSource) Token() (*oauth2.Token, error) {
	token, err := s.base.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if token.AccessToken != s.lastSaved {
		if err := saveToken(s.path, token); err != nil {
			// The token is still usable in memory.
			logger.Warn("Failed to save refreshed token",
				slog.String("path", s.path),
				slog.String("error", err.Error()))
		} else {
			s.lastSaved = token.AccessToken
			logger.Debug("Saved refreshed token",
				slog.String("path", s.path))
		}
	}
	return token, nil
}

func loadToken(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("no oauth token at %s", path)
		}
		return nil, fmt.Errorf("failed to open token file %s: %w", path, err)
	}
	defer f.Close()

	token := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(token); err != nil {
		return nil, fmt.Errorf("failed to read token file %s: %w", path, err)
	}
	return token, nil
}

// saveToken saves the OAuth2 token to the specified file path.
func saveToken(path string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create dir for %s: %w", path, err)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("unable to cache oauth token: %w", err)
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(token)
}

package sheetsclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/sheets/v4"
)

const (
	// AuthPort is the loopback port the consent callback listens on
	AuthPort       = 3000
	authTimeout    = 5 * time.Minute
	callbackPath   = "/oauth/callback"
	tokenFilePerms = 0600
	tokenDirPerms  = 0700
)

// isInstalledClient reports whether credentials JSON is a desktop OAuth
// client rather than a service account or authorized user
func isInstalledClient(data []byte) bool {
	var client struct {
		Installed json.RawMessage `json:"installed"`
	}
	return json.Unmarshal(data, &client) == nil && len(client.Installed) > 0
}

// oauthConfig builds the desktop client config with the loopback redirect
func oauthConfig(data []byte) (*oauth2.Config, error) {
	cfg, err := google.ConfigFromJSON(data, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("failed to create google config: %w", err)
	}
	cfg.RedirectURL = fmt.Sprintf("http://localhost:%d%s", AuthPort, callbackPath)
	return cfg, nil
}

// installedTokenSource returns a token source for a desktop OAuth client.
// A token cached at tokenPath is reused and refreshed; otherwise the consent
// flow runs once and its token is saved.
func installedTokenSource(ctx context.Context, data []byte, tokenPath string, out io.Writer) (oauth2.TokenSource, error) {
	cfg, err := oauthConfig(data)
	if err != nil {
		return nil, err
	}

	token, err := LoadToken(tokenPath)
	if err != nil {
		fmt.Fprintf(out, "Warning: failed to load token from file: %v\n", err)
	}

	if token == nil {
		token, err = runConsentFlow(ctx, cfg, out)
		if err != nil {
			return nil, err
		}
		if err := SaveToken(tokenPath, token); err != nil {
			fmt.Fprintf(out, "Warning: failed to save token to file: %v\n", err)
		}
	}

	return &savingTokenSource{
		base: cfg.TokenSource(ctx, token),
		path: tokenPath,
		last: token,
	}, nil
}

// savingTokenSource writes refreshed tokens back to the token file
type savingTokenSource struct {
	base oauth2.TokenSource
	path string

	mu   sync.Mutex
	last *oauth2.Token
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	token, err := s.base.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil || token.AccessToken != s.last.AccessToken {
		if err := SaveToken(s.path, token); err != nil {
			return nil, err
		}
		s.last = token
	}
	return token, nil
}

// runConsentFlow prints the consent URL and waits for the loopback callback
func runConsentFlow(ctx context.Context, cfg *oauth2.Config, out io.Writer) (*oauth2.Token, error) {
	fmt.Fprintln(out, "No valid token found - starting OAuth flow")
	authURL := cfg.AuthCodeURL("state", oauth2.AccessTypeOffline)
	fmt.Fprintf(out, "\nVisit this URL to authorize the application:\n%s\n\n", authURL)

	code, err := listenForAuthCallback(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get authorization code: %w", err)
	}

	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code for token: %w", err)
	}
	return token, nil
}

// listenForAuthCallback starts a local HTTP server and waits for the OAuth callback
func listenForAuthCallback(ctx context.Context) (string, error) {
	codeChan := make(chan string, 1)
	errChan := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc(callbackPath, func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			errChan <- fmt.Errorf("no authorization code received")
			http.Error(w, "Authorization failed", http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><body><h1>Authorization successful!</h1><p>You can close this window.</p></body></html>`)
		codeChan <- code
	})

	server := &http.Server{
		Addr:              fmt.Sprintf("localhost:%d", AuthPort),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	timeoutCtx, cancel := context.WithTimeout(ctx, authTimeout)
	defer cancel()

	var code string
	var authErr error
	select {
	case code = <-codeChan:
	case authErr = <-errChan:
	case <-timeoutCtx.Done():
		authErr = fmt.Errorf("authorization timeout after %v", authTimeout)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	server.Shutdown(shutdownCtx)

	if authErr != nil {
		return "", authErr
	}
	return code, nil
}

// DefaultTokenPath is where the token for env is cached under the home directory
func DefaultTokenPath(env string) (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	if env == "" {
		env = "default"
	}
	return filepath.Join(homeDir, ".rodizio", "tokens", fmt.Sprintf("token-%s.json", env)), nil
}

// LoadToken reads a cached token.
// Returns nil if the file doesn't exist (not an error - just means no cached token)
func LoadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("failed to parse token file: %w", err)
	}
	return &token, nil
}

// SaveToken writes a token with owner-only permissions
func SaveToken(path string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), tokenDirPerms); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	if err := os.WriteFile(path, data, tokenFilePerms); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

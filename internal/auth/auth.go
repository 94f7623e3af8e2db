// Package auth guards the HTTP surface. Callers present a bearer token:
// either the statically configured shared token, or, when an OIDC issuer is
// configured, an access token that issuer signed.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/coreos/go-oidc"

	"flowguard-mcp/internal/config"
)

// Logger defines the logging interface compatible with the application logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

// Auth holds the verification state for incoming requests.
type Auth struct {
	token      string
	verifier   *oidc.IDTokenVerifier
	logger     Logger
	authBypass bool
}

// New creates a new Auth object from the application configuration. In the
// DEV environment with dev_mode_bypass set, all requests pass; otherwise at
// least one of the static token or the OIDC issuer must be configured.
func New(ctx context.Context, cfg *config.Config, logger Logger) (*Auth, error) {
	isDev := strings.ToUpper(cfg.Environment) == "DEV"
	shouldBypass := isDev && cfg.Auth.DevModeBypass

	a := &Auth{
		token:      cfg.Auth.Token,
		logger:     logger,
		authBypass: shouldBypass,
	}
	if shouldBypass {
		return a, nil
	}

	if cfg.Auth.Issuer != "" {
		provider, err := oidc.NewProvider(ctx, cfg.Auth.Issuer)
		if err != nil {
			return nil, err
		}
		// Access tokens often carry a non-client audience, so the client id
		// check is skipped; the issuer signature is what matters here.
		a.verifier = provider.Verifier(&oidc.Config{SkipClientIDCheck: true})
	}

	if a.token == "" && a.verifier == nil {
		return nil, errors.New("auth configuration is incomplete: set a token or an issuer")
	}
	return a, nil
}

// RequireAuth is middleware that ensures a valid bearer token is present.
func (a *Auth) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.authBypass {
			next.ServeHTTP(w, r)
			return
		}

		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}
		raw := strings.TrimPrefix(header, "Bearer ")

		if a.token != "" &&
			subtle.ConstantTimeCompare([]byte(raw), []byte(a.token)) == 1 {
			next.ServeHTTP(w, r)
			return
		}

		if a.verifier != nil {
			if _, err := a.verifier.Verify(r.Context(), raw); err == nil {
				next.ServeHTTP(w, r)
				return
			} else if a.logger != nil {
				a.logger.Debug("token verification failed", "error", err)
			}
		}

		http.Error(w, "invalid token", http.StatusUnauthorized)
	})
}

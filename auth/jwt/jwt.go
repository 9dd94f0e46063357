// Package jwt provides an HMAC-signed JWT security provider with
// near-expiry token renewal. HTTP requests carry a bearer token; remote
// and event triggers come from the owning process and authenticate as
// the system principal.
package jwt

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/xraph/relay"
	"github.com/xraph/relay/auth"
	"github.com/xraph/relay/dispatch"
	"github.com/xraph/relay/message"
	"github.com/xraph/relay/metadata"
)

var _ dispatch.SecurityProvider = (*Provider)(nil)

// Common errors for token verification.
var (
	ErrMissingToken   = errors.New("jwt: missing bearer token")
	ErrInvalidToken   = errors.New("jwt: invalid token")
	ErrRoleDenied     = errors.New("jwt: required role missing")
	ErrSecretTooShort = errors.New("jwt: secret must be at least 32 bytes")
)

// Config holds provider configuration.
type Config struct {
	// Secret is the HMAC signing key. Must be at least 32 bytes.
	Secret []byte

	// Issuer is the token issuer claim. Default: "relay".
	Issuer string

	// TTL is the lifetime of issued tokens. Default: 1 hour.
	TTL time.Duration

	// RenewWithin re-issues a verified token whose remaining lifetime
	// is below this window. Default: 10 minutes.
	RenewWithin time.Duration
}

// Provider verifies bearer tokens on HTTP requests and re-issues tokens
// close to expiry, surfacing the replacement through the security
// context's TokenRenewed flag.
type Provider struct {
	cfg Config
	now func() time.Time
}

// New creates a Provider. It fails on a too-short secret.
func New(cfg Config) (*Provider, error) {
	if len(cfg.Secret) < 32 {
		return nil, ErrSecretTooShort
	}
	if cfg.Issuer == "" {
		cfg.Issuer = "relay"
	}
	if cfg.TTL == 0 {
		cfg.TTL = 1 * time.Hour
	}
	if cfg.RenewWithin == 0 {
		cfg.RenewWithin = 10 * time.Minute
	}
	return &Provider{cfg: cfg, now: time.Now}, nil
}

// FromConfig builds a Provider from the root configuration: AuthSecret,
// TokenTTL, and TokenRenewWithin.
func FromConfig(cfg relay.Config) (*Provider, error) {
	return New(Config{
		Secret:      []byte(cfg.AuthSecret),
		TTL:         cfg.TokenTTL,
		RenewWithin: cfg.TokenRenewWithin,
	})
}

// WithTimeFunc overrides the provider's time source for issue, verify,
// and renewal decisions. Tests use it to drive tokens through the
// renewal window deterministically.
func (p *Provider) WithTimeFunc(fn func() time.Time) *Provider {
	p.now = fn
	return p
}

type claims struct {
	jwtv5.RegisteredClaims
	Roles []string `json:"roles,omitempty"`
}

// Issue signs a token for principal with the given roles.
func (p *Provider) Issue(principal string, roles []string) (string, error) {
	now := p.now()
	c := &claims{
		RegisteredClaims: jwtv5.RegisteredClaims{
			// A unique jti keeps a renewed token distinct from its
			// predecessor even when both are signed in the same second.
			ID:        uuid.NewString(),
			Issuer:    p.cfg.Issuer,
			Subject:   principal,
			IssuedAt:  jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(now.Add(p.cfg.TTL)),
		},
		Roles: roles,
	}
	token := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, c)
	signed, err := token.SignedString(p.cfg.Secret)
	if err != nil {
		return "", fmt.Errorf("jwt: sign token: %w", err)
	}
	return signed, nil
}

func (p *Provider) verify(raw string) (*claims, error) {
	var c claims
	token, err := jwtv5.ParseWithClaims(raw, &c, func(t *jwtv5.Token) (any, error) {
		if _, ok := t.Method.(*jwtv5.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return p.cfg.Secret, nil
	}, jwtv5.WithIssuer(p.cfg.Issuer), jwtv5.WithTimeFunc(p.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return &c, nil
}

func (p *Provider) systemContext() *auth.Context {
	return &auth.Context{Principal: "system", Claims: map[string]any{"roles": []string{"system"}}}
}

// RemoteAuth authenticates remote calls as the system principal. Remote
// triggers only arrive from the owning process, which is trusted.
func (p *Provider) RemoteAuth(_ context.Context, _ *message.RemoteRequest, _ *metadata.Descriptor) (*auth.Context, error) {
	return p.systemContext(), nil
}

// EventAuth authenticates event notifications as the system principal.
func (p *Provider) EventAuth(_ context.Context, _ *message.EventRequest, _ *metadata.Descriptor) (*auth.Context, error) {
	return p.systemContext(), nil
}

// HTTPAuth verifies the request's bearer token against the route's
// requirements. A token whose remaining lifetime is inside the renewal
// window is re-issued; the replacement is surfaced on the returned
// context so the dispatcher can inject the Token response header.
func (p *Provider) HTTPAuth(_ context.Context, req *message.HTTPRequest, md *metadata.Descriptor) (*auth.Context, error) {
	if md.Auth.Public {
		return &auth.Context{Principal: "anonymous"}, nil
	}

	raw := bearerToken(req.Headers)
	if raw == "" {
		return nil, ErrMissingToken
	}

	c, err := p.verify(raw)
	if err != nil {
		return nil, err
	}

	if len(md.Auth.Roles) > 0 && !hasAnyRole(c.Roles, md.Auth.Roles) {
		return nil, fmt.Errorf("%w: principal %q", ErrRoleDenied, c.Subject)
	}

	ac := &auth.Context{
		Principal: c.Subject,
		Claims:    map[string]any{"roles": c.Roles},
		Token:     raw,
	}

	if c.ExpiresAt != nil && c.ExpiresAt.Sub(p.now()) < p.cfg.RenewWithin {
		renewed, err := p.Issue(c.Subject, c.Roles)
		if err != nil {
			return nil, err
		}
		ac.Token = renewed
		ac.TokenRenewed = true
	}

	return ac, nil
}

func bearerToken(headers map[string]string) string {
	h := headers["Authorization"]
	if h == "" {
		h = headers["authorization"]
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(h, prefix) {
		return ""
	}
	return strings.TrimPrefix(h, prefix)
}

func hasAnyRole(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}
	return false
}

// Package userinfo completa el email del caller desde el endpoint /userinfo
// del proveedor cuando el access token no lo trae.
package userinfo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"animal-shelter-api/internal/platform/httpclient"
	"animal-shelter-api/internal/ports/auth"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
)

// Cache de emails por sub: acotado en tamaño y con vencimiento.
const (
	cacheSize = 10_000
	cacheTTL  = time.Hour
)

var ErrNotConfigured = errors.New("userinfo client not configured")

type Config struct {
	URL     string
	Timeout time.Duration
}

type Client struct {
	url  string
	http *httpclient.Client
}

func NewClient(cfg Config) *Client {
	return &Client{
		url:  strings.TrimSpace(cfg.URL),
		http: httpclient.New(cfg.Timeout),
	}
}

func (c *Client) IsConfigured() bool {
	return c != nil && c.url != ""
}

type response struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
}

// Email pide el perfil con el mismo bearer token que mandó el caller.
func (c *Client) Email(ctx context.Context, token string) (string, error) {
	if !c.IsConfigured() {
		return "", ErrNotConfigured
	}
	var out response
	if err := c.http.GetJSON(ctx, c.url, token, &out); err != nil {
		return "", fmt.Errorf("userinfo: %w", err)
	}
	return strings.TrimSpace(out.Email), nil
}

// Verifier envuelve otro verifier y rellena Email si falta. Cachea por sub:
// el email solo importa la primera vez que se crea el usuario.
type Verifier struct {
	next   auth.AuthVerifier
	client *Client
	log    *zap.Logger
	cache  *expirable.LRU[string, string]
}

func NewVerifier(next auth.AuthVerifier, client *Client, log *zap.Logger) *Verifier {
	return newVerifier(next, client, log, cacheSize, cacheTTL)
}

func newVerifier(next auth.AuthVerifier, client *Client, log *zap.Logger, size int, ttl time.Duration) *Verifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Verifier{
		next:   next,
		client: client,
		log:    log,
		cache:  expirable.NewLRU[string, string](size, nil, ttl),
	}
}

func (v *Verifier) Verify(ctx context.Context, token string) (auth.Claims, error) {
	claims, err := v.next.Verify(ctx, token)
	if err != nil || claims.Email != "" || !v.client.IsConfigured() {
		return claims, err
	}

	if email, ok := v.cache.Get(claims.UserID); ok {
		claims.Email = email
		return claims, nil
	}

	email, err := v.client.Email(ctx, token)
	if err != nil {
		// sin email el request sigue; solo se pierde el dato en el user
		v.log.Warn("userinfo lookup failed", zap.String("user_id", claims.UserID), zap.Error(err))
		return claims, nil
	}

	v.cache.Add(claims.UserID, email)
	claims.Email = email
	return claims, nil
}

var _ auth.AuthVerifier = (*Verifier)(nil)

// Package jwks verifica JWT RS256 contra el JWKS del proveedor de identidad.
package jwks

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"animal-shelter-api/internal/ports/auth"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenEmpty   = errors.New("token is empty")
	ErrInvalidToken = errors.New("invalid token")
)

type Config struct {
	JWKSURL  string
	Issuer   string
	Audience string
}

type tokenClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Verifier implementa auth.AuthVerifier.
type Verifier struct {
	cfg     Config
	keyfunc jwt.Keyfunc
	parser  *jwt.Parser
}

// New descarga el JWKS y lo refresca en background. No hay modo sin firma:
// sin verifier el router solo acepta el header de debug.
func New(ctx context.Context, cfg Config) (*Verifier, error) {
	if strings.TrimSpace(cfg.JWKSURL) == "" {
		return nil, errors.New("jwks url required")
	}
	k, err := keyfunc.NewDefaultCtx(ctx, []string{cfg.JWKSURL})
	if err != nil {
		return nil, fmt.Errorf("load jwks %s: %w", cfg.JWKSURL, err)
	}
	return newVerifier(cfg, k.Keyfunc), nil
}

func newVerifier(cfg Config, kf jwt.Keyfunc) *Verifier {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}
	return &Verifier{cfg: cfg, keyfunc: kf, parser: jwt.NewParser(opts...)}
}

func (v *Verifier) Verify(_ context.Context, token string) (auth.Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrTokenEmpty
	}

	var c tokenClaims
	if _, err := v.parser.ParseWithClaims(token, &c, v.keyfunc); err != nil {
		return auth.Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	sub := strings.TrimSpace(c.Subject)
	if sub == "" {
		return auth.Claims{}, fmt.Errorf("%w: missing sub", ErrInvalidToken)
	}
	return auth.Claims{UserID: sub, Email: strings.TrimSpace(c.Email)}, nil
}

var _ auth.AuthVerifier = (*Verifier)(nil)

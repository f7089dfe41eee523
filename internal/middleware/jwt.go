package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
)

// TokenValidator verifies a bearer token and returns its claims.
type TokenValidator interface {
	Validate(ctx context.Context, token string) (Claims, error)
}

// Claims is the decoded payload of a verified token.
type Claims map[string]any

// UserID reads the tenant id from claim. Numeric claims and strings of
// digits are accepted; the id must be positive.
func (c Claims) UserID(claim string) (int64, error) {
	raw, ok := c[claim]
	if !ok {
		return 0, fmt.Errorf("token has no %q claim", claim)
	}
	var id int64
	switch v := raw.(type) {
	case float64:
		if v != float64(int64(v)) {
			return 0, fmt.Errorf("claim %q is not an integer", claim)
		}
		id = int64(v)
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("claim %q is not an integer", claim)
		}
		id = n
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("claim %q is not an integer", claim)
		}
		id = n
	default:
		return 0, fmt.Errorf("claim %q has unsupported type %T", claim, raw)
	}
	if id <= 0 {
		return 0, fmt.Errorf("claim %q must be a positive integer", claim)
	}
	return id, nil
}

// === OIDC ===

// OIDCValidator verifies RS256 tokens against a discovered issuer.
type OIDCValidator struct {
	verifier *oidc.IDTokenVerifier
}

// NewOIDCValidator runs issuer discovery and builds a verifier. An empty
// audience skips the audience check.
func NewOIDCValidator(ctx context.Context, issuerURL, audience string) (*OIDCValidator, error) {
	provider, err := oidc.NewProvider(ctx, issuerURL)
	if err != nil {
		return nil, fmt.Errorf("discover OIDC issuer %q: %w", issuerURL, err)
	}
	cfg := &oidc.Config{ClientID: audience, SkipClientIDCheck: audience == ""}
	return &OIDCValidator{verifier: provider.Verifier(cfg)}, nil
}

// Validate verifies the token signature, issuer, expiry and audience.
func (v *OIDCValidator) Validate(ctx context.Context, token string) (Claims, error) {
	idToken, err := v.verifier.Verify(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("verify token: %w", err)
	}
	var claims Claims
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("decode claims: %w", err)
	}
	return claims, nil
}

// === HS256 ===

// HS256Validator verifies tokens signed with a shared secret.
type HS256Validator struct {
	secret []byte
}

// NewHS256Validator creates a validator for the given shared secret.
func NewHS256Validator(secret string) *HS256Validator {
	return &HS256Validator{secret: []byte(secret)}
}

// Validate checks the HMAC signature and the exp/nbf claims.
func (v *HS256Validator) Validate(_ context.Context, token string) (Claims, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	mc, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return Claims(mc), nil
}

// SignHS256 mints a token carrying userID in claim, valid for ttl.
func SignHS256(secret, claim string, userID int64, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	if claim == "sub" {
		claims[claim] = strconv.FormatInt(userID, 10)
	} else {
		claims[claim] = userID
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

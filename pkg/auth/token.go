package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// clockSkew tolerates small drift between API replicas.
const clockSkew = 30 * time.Second

var (
	signingMethod = jwt.SigningMethodHS256

	ErrSigningConfig = errors.New("jwt signing config incomplete")
	ErrSubjectClaim  = errors.New("token subject does not match user id")
)

func checkSigningConfig(cfg config.JWTConfig) error {
	var missing []string
	if cfg.Secret == "" {
		missing = append(missing, "secret")
	}
	if cfg.Issuer == "" {
		missing = append(missing, "issuer")
	}
	if cfg.ExpirationMinutes <= 0 {
		missing = append(missing, "expiration")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrSigningConfig, strings.Join(missing, ", "))
	}
	return nil
}

// MintAccessToken signs an HS256 access token valid from now for the
// configured access TTL. An empty payload.JTI gets a fresh uuid.
func MintAccessToken(cfg config.JWTConfig, now time.Time, payload AccessTokenPayload) (string, error) {
	if err := checkSigningConfig(cfg); err != nil {
		return "", err
	}
	switch {
	case payload.UserID == uuid.Nil:
		return "", errors.New("user id is required")
	case !payload.Role.IsValid():
		return "", fmt.Errorf("invalid role %q", payload.Role)
	}

	jti := strings.TrimSpace(payload.JTI)
	if jti == "" {
		jti = uuid.NewString()
	}
	issued := jwt.NewNumericDate(now)
	claims := AccessTokenClaims{
		UserID: payload.UserID,
		Role:   payload.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    cfg.Issuer,
			Subject:   payload.UserID.String(),
			IssuedAt:  issued,
			NotBefore: issued,
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.AccessTokenTTL())),
		},
	}

	signed, err := jwt.NewWithClaims(signingMethod, claims).SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("signing jwt: %w", err)
	}
	return signed, nil
}

// ParseAccessToken verifies signature, issuer and time claims.
func ParseAccessToken(cfg config.JWTConfig, tokenString string) (*AccessTokenClaims, error) {
	return parse(cfg, tokenString, jwt.WithLeeway(clockSkew))
}

// ParseAccessTokenAllowExpired verifies the signature and issuer only, so
// refresh and logout can read the jti of an expired access token.
func ParseAccessTokenAllowExpired(cfg config.JWTConfig, tokenString string) (*AccessTokenClaims, error) {
	return parse(cfg, tokenString, jwt.WithoutClaimsValidation())
}

func parse(cfg config.JWTConfig, tokenString string, opts ...jwt.ParserOption) (*AccessTokenClaims, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("%w: secret", ErrSigningConfig)
	}

	parser := jwt.NewParser(append(opts,
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
	)...)
	claims := &AccessTokenClaims{}
	if _, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return []byte(cfg.Secret), nil
	}); err != nil {
		return nil, err
	}

	// WithoutClaimsValidation also skips the issuer check.
	if claims.Issuer != cfg.Issuer {
		return nil, fmt.Errorf("unexpected issuer %q", claims.Issuer)
	}
	if !claims.Role.IsValid() {
		return nil, fmt.Errorf("invalid role %q", claims.Role)
	}
	if claims.Subject != "" && claims.Subject != claims.UserID.String() {
		return nil, ErrSubjectClaim
	}
	return claims, nil
}

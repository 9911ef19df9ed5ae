package ingress

import (
	"errors"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc"
	"github.com/golang-jwt/jwt/v4"
)

// Auth validates the OIDC bearer tokens a push subscription attaches to
// its deliveries.
type Auth struct {
	jwks     *keyfunc.JWKS
	audience string
	issuer   string
}

func NewAuth(jwks *keyfunc.JWKS, audience, issuer string) *Auth {
	return &Auth{jwks: jwks, audience: audience, issuer: issuer}
}

// Verify checks the Authorization header carries a valid token.
func (a *Auth) Verify(header string) error {
	if header == "" {
		return errors.New("missing authorization header")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return errors.New("bad auth header")
	}

	parser := jwt.NewParser(jwt.WithValidMethods([]string{"RS256"}))
	token, err := parser.Parse(parts[1], a.jwks.Keyfunc)
	if err != nil {
		return err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return errors.New("invalid claims")
	}

	now := time.Now().Unix()
	if !claims.VerifyExpiresAt(now, true) {
		return errors.New("token expired")
	}
	if !claims.VerifyAudience(a.audience, false) {
		return errors.New("invalid audience")
	}
	if !claims.VerifyIssuer(a.issuer, false) {
		return errors.New("invalid issuer")
	}
	return nil
}

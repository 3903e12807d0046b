package auth

import (
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMissingCredential means no token was presented at all.
	ErrMissingCredential = errors.New("a token is required for authentication")
	// ErrInvalidCredential covers malformed, tampered, and expired tokens.
	ErrInvalidCredential = errors.New("invalid token")
)

// Identity is the decoded claim set of a verified token.
type Identity struct {
	Claims map[string]any
}

// Subject returns the token's sub claim, or an empty string.
func (id *Identity) Subject() string {
	sub, _ := id.Claims["sub"].(string)
	return sub
}

// Verifier validates HMAC-signed bearer tokens against a shared secret.
// Verification is stateless; expiry is checked against the current time.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify decodes and validates the given credential, which is the raw
// Authorization header value. A "Bearer " prefix is accepted and stripped.
func (v *Verifier) Verify(credential string) (*Identity, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return nil, ErrMissingCredential
	}

	if stripped, found := strings.CutPrefix(credential, "Bearer "); found {
		credential = stripped
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(credential, claims, func(_ *jwt.Token) (any, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}))
	if err != nil || !token.Valid {
		return nil, ErrInvalidCredential
	}

	return &Identity{Claims: claims}, nil
}

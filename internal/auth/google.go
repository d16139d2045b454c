package auth

import (
	"errors"
	"fmt"
	"strings"

	googleAuthIDTokenVerifier "github.com/futurenda/google-auth-id-token-verifier"
)

var ErrInvalidIdentity = errors.New("invalid identity token")

// Identity is what a verified Google ID token asserts about the caller.
type Identity struct {
	Subject string
	Email   string
	Name    string
}

// GoogleVerifier checks Google ID tokens for signature, expiry and audience.
type GoogleVerifier struct {
	audience []string
	v        googleAuthIDTokenVerifier.Verifier
}

func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{audience: []string{clientID}}
}

func (g *GoogleVerifier) VerifyIdentity(idToken string) (Identity, error) {
	if idToken == "" {
		return Identity{}, ErrInvalidIdentity
	}

	if err := g.v.VerifyIDToken(idToken, g.audience); err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidIdentity, err)
	}

	claims, err := googleAuthIDTokenVerifier.Decode(idToken)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidIdentity, err)
	}

	return Identity{
		Subject: claims.Sub,
		Email:   strings.ToLower(strings.TrimSpace(claims.Email)),
		Name:    claims.Name,
	}, nil
}

package auth

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"driveportal/internal/domain"
	"driveportal/internal/domain/models"

	"github.com/golang-jwt/jwt/v5"
)

func TestJWKSVerifier_VerifyToken(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	otherKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	verifier := newVerifierWithKeyfunc(func(*jwt.Token) (interface{}, error) {
		return &key.PublicKey, nil
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	claimsFor := func(mutate func(*models.Claims)) *models.Claims {
		c := &models.Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "user-1",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
			Role:        "authenticated",
			AppMetadata: map[string]interface{}{"role": "admin"},
		}
		if mutate != nil {
			mutate(c)
		}
		return c
	}
	sign := func(signingKey *ecdsa.PrivateKey, c *models.Claims) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodES256, c).SignedString(signingKey)
		if err != nil {
			t.Fatalf("sign token: %v", err)
		}
		return s
	}

	tests := []struct {
		name    string
		token   string
		wantErr bool
	}{
		{"valid token", sign(key, claimsFor(nil)), false},
		{"wrong signing key", sign(otherKey, claimsFor(nil)), true},
		{"expired", sign(key, claimsFor(func(c *models.Claims) {
			c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
		})), true},
		{"missing expiry", sign(key, claimsFor(func(c *models.Claims) { c.ExpiresAt = nil })), true},
		{"missing subject", sign(key, claimsFor(func(c *models.Claims) { c.Subject = "" })), true},
		{"anonymous role", sign(key, claimsFor(func(c *models.Claims) { c.Role = "anon" })), true},
		{"garbage", "not-a-jwt", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := verifier.VerifyToken(tt.token)
			if tt.wantErr {
				if !errors.Is(err, domain.ErrUnauthorized) {
					t.Errorf("VerifyToken() error = %v, want ErrUnauthorized", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("VerifyToken() error = %v", err)
			}
			if claims.GetUserID() != "user-1" {
				t.Errorf("GetUserID() = %q, want user-1", claims.GetUserID())
			}
			if claims.PortalRole() != "admin" {
				t.Errorf("PortalRole() = %q, want admin", claims.PortalRole())
			}
		})
	}
}

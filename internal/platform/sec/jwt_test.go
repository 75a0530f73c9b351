// Copyright (c) 2026 EOSC Resource Catalogue. All rights reserved.
// Author: resource-catalogue maintainers

package sec_test

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EOSC-Lot-1/resource-catalogue-sub000/internal/platform/sec"
)

const issuer = "https://aai.example.org"

func sign(t *testing.T, key *rsa.PrivateKey, method jwt.SigningMethod, claims sec.AuthClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func claimsFor(role sec.UserRole, expiresIn time.Duration) sec.AuthClaims {
	return sec.AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   "u-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		},
		UserID:    "u-1",
		Username:  "Pat",
		Email:     "pat@example.org",
		Role:      string(role),
		Providers: []string{"acme"},
	}
}

func TestVerifyToken(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	other, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	verifier := sec.NewVerifierFromKey(&key.PublicKey, issuer)

	t.Run("valid", func(t *testing.T) {
		claims, err := verifier.VerifyToken(sign(t, key, jwt.SigningMethodRS256, claimsFor(sec.RoleProvider, time.Hour)))
		require.NoError(t, err)
		assert.Equal(t, "u-1", claims.UserID)
		assert.Equal(t, "pat@example.org", claims.Email)
		assert.True(t, claims.AdministersProvider("acme"))
		assert.False(t, claims.AdministersProvider("other"))
		assert.False(t, claims.IsStaff())
	})

	t.Run("expired", func(t *testing.T) {
		_, err := verifier.VerifyToken(sign(t, key, jwt.SigningMethodRS256, claimsFor(sec.RoleUser, -time.Minute)))
		assert.Error(t, err)
	})

	t.Run("foreign key", func(t *testing.T) {
		_, err := verifier.VerifyToken(sign(t, other, jwt.SigningMethodRS256, claimsFor(sec.RoleAdmin, time.Hour)))
		assert.Error(t, err)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		claims := claimsFor(sec.RoleAdmin, time.Hour)
		claims.Issuer = "https://evil.example.org"
		_, err := verifier.VerifyToken(sign(t, key, jwt.SigningMethodRS256, claims))
		assert.Error(t, err)
	})

	t.Run("other algorithm", func(t *testing.T) {
		_, err := verifier.VerifyToken(sign(t, key, jwt.SigningMethodRS512, claimsFor(sec.RoleAdmin, time.Hour)))
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := verifier.VerifyToken("not-a-token")
		assert.Error(t, err)
	})
}

func TestNewVerifier(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "public.pem")
	require.NoError(t, os.WriteFile(path, pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}), 0o600))

	verifier, err := sec.NewVerifier(path, "")
	require.NoError(t, err)

	claims := claimsFor(sec.RoleEPOT, time.Hour)
	claims.Issuer = "anyone"
	parsed, err := verifier.VerifyToken(sign(t, key, jwt.SigningMethodRS256, claims))
	require.NoError(t, err)
	assert.True(t, parsed.IsStaff())
	assert.False(t, parsed.IsAdmin())

	_, err = sec.NewVerifier(filepath.Join(t.TempDir(), "missing.pem"), "")
	assert.Error(t, err)
}

func TestRoleHierarchy(t *testing.T) {
	assert.True(t, sec.RoleAdmin.AtLeast(sec.RoleEPOT))
	assert.True(t, sec.RoleEPOT.AtLeast(sec.RoleEPOT))
	assert.False(t, sec.RoleProvider.AtLeast(sec.RoleEPOT))
	assert.False(t, sec.UserRole("guest").AtLeast(sec.RoleUser))
}

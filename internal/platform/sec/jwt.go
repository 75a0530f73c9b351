// Copyright (c) 2026 EOSC Resource Catalogue. All rights reserved.
// Author: resource-catalogue maintainers

// Package sec verifies access tokens and evaluates role predicates.
//
// # Architecture
//
// Tokens are issued by the external identity provider; this service only
// holds the RSA public key and never signs anything. Role and provider
// membership travel inside the token so that permission checks need no
// database round-trip.
package sec

import (
	"crypto/rsa"
	"fmt"
	"os"
	"slices"

	"github.com/golang-jwt/jwt/v5"
)

// AuthClaims represents the payload embedded inside a JWT Access Token.
type AuthClaims struct {
	jwt.RegisteredClaims

	// Custom application claims are abbreviated to keep the JWT payload small.
	UserID    string   `json:"uid"`
	Username  string   `json:"unm"`
	Email     string   `json:"eml"`
	Role      string   `json:"rol"`
	Providers []string `json:"prv,omitempty"`
}

// IsAdmin reports whether the caller holds the admin role.
func (claims *AuthClaims) IsAdmin() bool {
	return claims != nil && UserRole(claims.Role) == RoleAdmin
}

// IsStaff reports whether the caller is an admin or on the onboarding team.
func (claims *AuthClaims) IsStaff() bool {
	return claims != nil && UserRole(claims.Role).AtLeast(RoleEPOT)
}

// AdministersProvider reports whether the caller may manage providerID and
// its resources. Staff administer every provider.
func (claims *AuthClaims) AdministersProvider(providerID string) bool {
	if claims == nil {
		return false
	}
	return claims.IsStaff() || slices.Contains(claims.Providers, providerID)
}

// Verifier checks RS256 access tokens against a single public key.
type Verifier struct {
	publicKey *rsa.PublicKey
	issuer    string
}

// NewVerifier reads a PEM encoded RSA public key from publicKeyPath.
// An empty issuer disables the issuer check.
func NewVerifier(publicKeyPath, issuer string) (*Verifier, error) {
	publicKeyData, err := os.ReadFile(publicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("auth: failed to read public key from %s: %w", publicKeyPath, err)
	}

	publicKey, err := jwt.ParseRSAPublicKeyFromPEM(publicKeyData)
	if err != nil {
		return nil, fmt.Errorf("auth: failed to parse public key: %w", err)
	}

	return NewVerifierFromKey(publicKey, issuer), nil
}

// NewVerifierFromKey constructs a [Verifier] around an already parsed key.
func NewVerifierFromKey(publicKey *rsa.PublicKey, issuer string) *Verifier {
	return &Verifier{publicKey: publicKey, issuer: issuer}
}

// VerifyToken checks the signature and validity of a JWT string.
func (verifier *Verifier) VerifyToken(tokenString string) (*AuthClaims, error) {
	options := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()})}
	if verifier.issuer != "" {
		options = append(options, jwt.WithIssuer(verifier.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		return verifier.publicKey, nil
	}, options...)
	if err != nil {
		return nil, fmt.Errorf("auth: invalid token: %w", err)
	}

	claims, ok := token.Claims.(*AuthClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("auth: invalid token claims")
	}

	return claims, nil
}

/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package jwt

import (
	"errors"
	"fmt"

	"github.com/go-jose/go-jose/v3/json"

	"github.com/identra/framework-go/pkg/doc/jose"
	"github.com/identra/framework-go/pkg/doc/signature/verifier"
)

const issuerClaim = "iss"

// KeyResolver resolves the verification key based on the token issuer and the kid JOSE header.
type KeyResolver interface {
	// Resolve resolves the public key.
	Resolve(issuer, kid string) (*verifier.PublicKey, error)
}

// KeyResolverFunc defines a function on the KeyResolver interface.
type KeyResolverFunc func(issuer, kid string) (*verifier.PublicKey, error)

// Resolve resolves the public key.
func (r KeyResolverFunc) Resolve(issuer, kid string) (*verifier.PublicKey, error) {
	return r(issuer, kid)
}

// BasicVerifier is a signed JWT verifier based on the Issuer claim and the Key ID JOSE header.
// The signature algorithm is taken from the alg header and dispatched through the
// algorithm table, so every registered signature algorithm is accepted.
type BasicVerifier struct {
	resolver KeyResolver
}

// NewVerifier creates a new basic Verifier.
func NewVerifier(resolver KeyResolver) *BasicVerifier {
	return &BasicVerifier{resolver: resolver}
}

// Verify verifies the JSON Web Token. The public key is fetched using the Issuer claim
// and the Key ID JOSE header.
func (v BasicVerifier) Verify(joseHeaders jose.Headers, payload, signingInput, signature []byte) error {
	alg, ok := joseHeaders.Algorithm()
	if !ok {
		return errors.New("alg is not defined")
	}

	algVerifier, err := verifier.ForAlgorithm(alg)
	if err != nil {
		return err
	}

	claims := make(map[string]interface{})

	err = json.Unmarshal(payload, &claims)
	if err != nil {
		return fmt.Errorf("read claims from JSON Web Token: %w", err)
	}

	issuer, err := getIssuerClaim(claims)
	if err != nil {
		return fmt.Errorf("read issuer claim: %w", err)
	}

	kid, _ := joseHeaders.KeyID()

	pubKey, err := v.resolver.Resolve(issuer, kid)
	if err != nil {
		return err
	}

	return algVerifier.Verify(pubKey, signingInput, signature)
}

func getIssuerClaim(claims map[string]interface{}) (string, error) {
	v, ok := claims[issuerClaim]
	if !ok {
		return "", errors.New("issuer claim is not defined")
	}

	s, ok := v.(string)
	if !ok {
		return "", errors.New("issuer claim is not a string")
	}

	return s, nil
}

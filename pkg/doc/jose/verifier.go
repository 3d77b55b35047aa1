/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package jose

import (
	"errors"
	"fmt"
)

// SignatureVerifier makes verification of JSON Web Signature.
type SignatureVerifier interface {
	// Verify verifies JWS based on the signing input.
	Verify(joseHeaders Headers, payload, signingInput, signature []byte) error
}

// SignatureVerifierFunc is a function wrapper for SignatureVerifier.
type SignatureVerifierFunc func(joseHeaders Headers, payload, signingInput, signature []byte) error

// Verify verifies JWS.
func (s SignatureVerifierFunc) Verify(joseHeaders Headers, payload, signingInput, signature []byte) error {
	return s(joseHeaders, payload, signingInput, signature)
}

// DefaultSigningInputVerifier is a SignatureVerifier that generates the signing input
// from the given headers and payload, instead of using the signing input parameter.
type DefaultSigningInputVerifier func(joseHeaders Headers, payload, signingInput, signature []byte) error

// Verify verifies JWS.
func (s DefaultSigningInputVerifier) Verify(joseHeaders Headers, payload, _, signature []byte) error {
	signingInputData, err := signingInput(joseHeaders, payload)
	if err != nil {
		return err
	}

	return s(joseHeaders, payload, signingInputData, signature)
}

// CompositeAlgSigVerifier defines composite signature verifier based on the algorithm
// taken from JOSE header alg.
type CompositeAlgSigVerifier struct {
	verifierByAlg map[string]SignatureVerifier
}

// AlgSignatureVerifier defines verifier for particular signature algorithm.
type AlgSignatureVerifier struct {
	Alg      string
	Verifier SignatureVerifier
}

// NewCompositeAlgSigVerifier creates a new CompositeAlgSigVerifier.
func NewCompositeAlgSigVerifier(v AlgSignatureVerifier, vOther ...AlgSignatureVerifier) *CompositeAlgSigVerifier {
	verifierByAlg := make(map[string]SignatureVerifier, 1+len(vOther))
	verifierByAlg[v.Alg] = v.Verifier

	for _, v := range vOther {
		verifierByAlg[v.Alg] = v.Verifier
	}

	return &CompositeAlgSigVerifier{
		verifierByAlg: verifierByAlg,
	}
}

// Verify verifies signature.
func (v *CompositeAlgSigVerifier) Verify(joseHeaders Headers, payload, signingInput, signature []byte) error {
	alg, ok := joseHeaders.Algorithm()
	if !ok {
		return errors.New("'alg' JOSE header is not present")
	}

	verifier, ok := v.verifierByAlg[alg]
	if !ok {
		return fmt.Errorf("no verifier found for %s algorithm", alg)
	}

	return verifier.Verify(joseHeaders, payload, signingInput, signature)
}

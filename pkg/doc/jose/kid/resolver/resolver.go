/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package resolver maps JOSE 'kid' header values of the form did:...#fragment to
// verification keys of the owning DID document.
package resolver

import (
	"errors"
	"fmt"
	"strings"

	"github.com/identra/framework-go/pkg/doc/did"
	"github.com/identra/framework-go/pkg/doc/jose"
	"github.com/identra/framework-go/pkg/doc/signature/verifier"
)

// ErrMalformedKeyID is returned when a 'kid' value carries no DID URL fragment.
var ErrMalformedKeyID = errors.New("malformed key ID: no fragment")

// DIDFromKeyID extracts the owning DID from a 'kid' of the form did:...#fragment,
// splitting on the last '#'. Fails with ErrMalformedKeyID when no '#' is present.
func DIDFromKeyID(keyID string) (string, error) {
	idx := strings.LastIndex(keyID, "#")
	if idx < 0 {
		return "", fmt.Errorf("%w: %s", ErrMalformedKeyID, keyID)
	}

	return keyID[:idx], nil
}

// DocResolver resolves a DID into its document. Implemented by vdr.Registry.
type DocResolver interface {
	Resolve(didID string) (*did.Doc, error)
}

// DIDKeyResolver resolves 'kid' values through DID document resolution.
type DIDKeyResolver struct {
	resolver DocResolver
}

// NewDIDKeyResolver creates a DIDKeyResolver over the given document resolver.
func NewDIDKeyResolver(resolver DocResolver) *DIDKeyResolver {
	return &DIDKeyResolver{resolver: resolver}
}

// Resolve resolves a 'kid' into the verification key of the owning DID document.
// The document key is matched by the full kid or by its fragment suffix; fails
// with did.ErrKeyNotFound when the document exposes no matching key.
func (r *DIDKeyResolver) Resolve(keyID string) (*verifier.PublicKey, error) {
	didID, err := DIDFromKeyID(keyID)
	if err != nil {
		return nil, err
	}

	doc, err := r.resolver.Resolve(didID)
	if err != nil {
		return nil, fmt.Errorf("resolve DID %s: %w", didID, err)
	}

	return doc.ResolvePublicKey(keyID)
}

// VerifyAgainstIdentity verifies every signature of the token against all keys of
// the identity document. Any key of the document may have produced a signature.
func VerifyAgainstIdentity(token *jose.JSONWebSignature, doc *did.Doc) (bool, error) {
	return token.VerifyKeys(doc.PublicKeys()...)
}

// VerifyAgainstKeyID verifies the token by resolving each signature's key
// independently from its own 'kid' protected header, supporting multi-signer
// tokens signed by different DIDs. A signature without a 'kid' is a structural
// error since its key cannot be located.
func (r *DIDKeyResolver) VerifyAgainstKeyID(token *jose.JSONWebSignature) (bool, error) {
	var keys []*verifier.PublicKey

	for _, sig := range token.Signatures() {
		kid, ok := sig.ProtectedHeaders.KeyID()
		if !ok {
			return false, errors.New("signature carries no kid header")
		}

		key, err := r.Resolve(kid)
		if err != nil {
			if errors.Is(err, did.ErrKeyNotFound) {
				return false, nil
			}

			return false, err
		}

		keys = append(keys, key)
	}

	return token.VerifyKeys(keys...)
}

// Verify verifies the token against the identity named by forDID when one is
// given, otherwise against each signature's own 'kid'.
func (r *DIDKeyResolver) Verify(token *jose.JSONWebSignature, forDID string) (bool, error) {
	if forDID == "" {
		return r.VerifyAgainstKeyID(token)
	}

	doc, err := r.resolver.Resolve(forDID)
	if err != nil {
		return false, fmt.Errorf("resolve DID %s: %w", forDID, err)
	}

	return VerifyAgainstIdentity(token, doc)
}

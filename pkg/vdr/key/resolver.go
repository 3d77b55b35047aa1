/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package key

import (
	"fmt"
	"time"

	"github.com/identra/framework-go/pkg/doc/did"
	"github.com/identra/framework-go/pkg/doc/jose/jwa"
	"github.com/identra/framework-go/pkg/doc/jose/jwk/jwksupport"
	"github.com/identra/framework-go/pkg/vdr/fingerprint"
)

// Read expands a did:key value to a DID document.
func (v *VDR) Read(didKey string) (*did.Doc, error) {
	parsed, err := did.Parse(didKey)
	if err != nil {
		return nil, fmt.Errorf("did:key vdr Read: failed to parse DID: %w", err)
	}

	if parsed.Method != didMethod {
		return nil, fmt.Errorf("did:key vdr Read: invalid method: %s", parsed.Method)
	}

	pubKeyBytes, code, err := fingerprint.PubKeyFromFingerprint(parsed.MethodSpecificID)
	if err != nil {
		return nil, fmt.Errorf("did:key vdr Read: failed to get key fingerprint: %w", err)
	}

	didDoc, err := createDIDDocFromPubKey(parsed.MethodSpecificID, code, pubKeyBytes)
	if err != nil {
		return nil, fmt.Errorf("creating did document from public key failed: %w", err)
	}

	return didDoc, nil
}

func createDIDDocFromPubKey(methodID string, code uint64, pubKeyBytes []byte) (*did.Doc, error) {
	didKey := fmt.Sprintf("did:key:%s", methodID)
	keyID := fmt.Sprintf("%s#%s", didKey, methodID)

	switch code {
	case fingerprint.ED25519PubKeyMultiCodec:
		vm := did.NewVerificationMethodFromBytes(keyID, ed25519VerificationKey2018, didKey, pubKeyBytes)
		return createDoc(didKey, vm), nil
	case fingerprint.P256PubKeyMultiCodec, fingerprint.P384PubKeyMultiCodec,
		fingerprint.P521PubKeyMultiCodec, fingerprint.SECP256K1PubKeyMultiCodec:
		vm, err := createJWKVerificationMethod(keyID, didKey, code, pubKeyBytes)
		if err != nil {
			return nil, err
		}

		return createDoc(didKey, vm), nil
	}

	return nil, fmt.Errorf("unsupported key multicodec code [0x%x]", code)
}

func createJWKVerificationMethod(keyID, didKey string, code uint64, pubKeyBytes []byte) (*did.VerificationMethod, error) {
	alg := jwa.ES256

	switch code {
	case fingerprint.P384PubKeyMultiCodec:
		alg = jwa.ES384
	case fingerprint.P521PubKeyMultiCodec:
		alg = jwa.ES512
	case fingerprint.SECP256K1PubKeyMultiCodec:
		alg = jwa.ES256K
	}

	j, err := jwksupport.PubKeyBytesToJWK(pubKeyBytes, alg)
	if err != nil {
		return nil, fmt.Errorf("convert public key bytes to JWK: %w", err)
	}

	j.KeyID = keyID

	return did.NewVerificationMethodFromJWK(keyID, jsonWebKey2020, didKey, j)
}

func createDoc(didKey string, vm *did.VerificationMethod) *did.Doc {
	created := time.Now()

	return &did.Doc{
		Context:            []string{did.ContextV1},
		ID:                 didKey,
		VerificationMethod: []did.VerificationMethod{*vm},
		Authentication:     []did.VerificationMethod{*vm},
		AssertionMethod:    []did.VerificationMethod{*vm},
		Created:            &created,
		Updated:            &created,
	}
}

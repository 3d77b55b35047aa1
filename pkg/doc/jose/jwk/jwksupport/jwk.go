/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package jwksupport provides builders for the JWK model from opaque Go keys
// and key material bytes.
package jwksupport

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rsa"
	"crypto/x509"
	"fmt"

	"github.com/btcsuite/btcd/btcec"
	"github.com/go-jose/go-jose/v3"

	"github.com/identra/framework-go/pkg/doc/jose/jwa"
	"github.com/identra/framework-go/pkg/doc/jose/jwk"
)

// JWKFromKey creates a JWK from an opaque key struct.
// It's e.g. *ecdsa.PublicKey, *ecdsa.PrivateKey, *rsa.PublicKey, *rsa.PrivateKey,
// ed25519.PublicKey, ed25519.PrivateKey or a raw []byte symmetric key.
func JWKFromKey(opaqueKey interface{}) (*jwk.JWK, error) {
	key := &jwk.JWK{
		JSONWebKey: jose.JSONWebKey{
			Key: opaqueKey,
		},
	}

	// marshal/unmarshal to get all JWK's fields other than Key filled.
	keyBytes, err := key.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("create JWK: %w", err)
	}

	err = key.UnmarshalJSON(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("create JWK: %w", err)
	}

	return key, nil
}

// PublicKeyFromJWK derives the public JWK corresponding to the given (possibly private) JWK.
// The derivation is deterministic and never fails for well-formed keys.
func PublicKeyFromJWK(j *jwk.JWK) (*jwk.JWK, error) {
	var pubKey interface{}

	switch key := j.Key.(type) {
	case *ecdsa.PrivateKey:
		pubKey = &key.PublicKey
	case *rsa.PrivateKey:
		pubKey = &key.PublicKey
	case ed25519.PrivateKey:
		pubKey = key.Public()
	default:
		// public and symmetric keys are their own public form
		pubKey = key
	}

	pubJWK, err := JWKFromKey(pubKey)
	if err != nil {
		return nil, fmt.Errorf("derive public JWK: %w", err)
	}

	pubJWK.KeyID = j.KeyID
	pubJWK.Algorithm = j.Algorithm
	pubJWK.Use = j.Use
	pubJWK.KeyOps = j.KeyOps

	return pubJWK, nil
}

// PubKeyBytesToJWK converts marshalled public key bytes into a JWK, using the given
// JOSE algorithm label to select the key construction.
func PubKeyBytesToJWK(pubKeyBytes []byte, alg string) (*jwk.JWK, error) {
	descriptor, err := jwa.Resolve(alg)
	if err != nil {
		return nil, err
	}

	switch descriptor.Name {
	case jwa.EdDSA:
		return JWKFromKey(ed25519.PublicKey(pubKeyBytes))
	case jwa.ES256K:
		pubKey, err := btcec.ParsePubKey(pubKeyBytes, btcec.S256())
		if err != nil {
			return nil, fmt.Errorf("parse secp256k1 public key: %w", err)
		}

		return JWKFromKey(pubKey.ToECDSA())
	case jwa.ES256, jwa.ES384, jwa.ES512:
		x, y := elliptic.Unmarshal(descriptor.Curve, pubKeyBytes)
		if x == nil {
			return nil, fmt.Errorf("invalid %s public key bytes", descriptor.Name)
		}

		return JWKFromKey(&ecdsa.PublicKey{Curve: descriptor.Curve, X: x, Y: y})
	case jwa.RS256, jwa.RS384, jwa.RS512, jwa.PS256:
		pubKey, err := x509.ParsePKCS1PublicKey(pubKeyBytes)
		if err != nil {
			return nil, fmt.Errorf("parse RSA public key: %w", err)
		}

		return JWKFromKey(pubKey)
	default:
		return nil, fmt.Errorf("%w: %s", jwa.ErrUnknownAlgorithm, alg)
	}
}

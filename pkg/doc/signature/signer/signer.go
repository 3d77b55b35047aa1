/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package signer provides JWS signature signers for the supported JOSE algorithms.
// Each signer hashes the signing input per its algorithm descriptor and produces
// the signature in the wire format the algorithm mandates (raw r||s or ASN.1 DER).
package signer

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"fmt"

	"github.com/identra/framework-go/pkg/doc/jose/jwa"
	"github.com/identra/framework-go/pkg/doc/jose/jwk"
)

// SignatureSigner signs data of a certain signature algorithm. It is consumed
// through the jose.Signer interface when building JWS tokens.
type SignatureSigner interface {
	// Algorithm returns the JOSE algorithm label the produced signatures carry.
	Algorithm() string

	// KeyID returns the identifier of the signing key, empty if the key is anonymous.
	KeyID() string

	// Sign signs the message and returns the signature.
	Sign(msg []byte) ([]byte, error)
}

// FromJWK builds a signer for the given private JWK using its algorithm label.
func FromJWK(privKey *jwk.JWK) (SignatureSigner, error) {
	descriptor, err := jwa.Resolve(privKey.Algorithm)
	if err != nil {
		return nil, err
	}

	kid := privKey.KeyID

	switch descriptor.Name {
	case jwa.EdDSA:
		edKey, ok := privKey.Key.(ed25519.PrivateKey)
		if !ok {
			return nil, errors.New("EdDSA signer requires an ed25519 private key")
		}

		return NewEd25519Signer(edKey, kid), nil
	case jwa.ES256K, jwa.ES256, jwa.ES384, jwa.ES512:
		ecKey, ok := privKey.Key.(*ecdsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("%s signer requires an ECDSA private key", descriptor.Name)
		}

		return newECDSASigner(ecKey, kid, descriptor), nil
	case jwa.RS256, jwa.RS384, jwa.RS512, jwa.PS256:
		rsaKey, ok := privKey.Key.(*rsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("%s signer requires an RSA private key", descriptor.Name)
		}

		return newRSASigner(rsaKey, kid, descriptor), nil
	default:
		return nil, fmt.Errorf("%w: no signer for %s", jwa.ErrUnknownAlgorithm, privKey.Algorithm)
	}
}

// Ed25519Signer makes EdDSA signatures.
type Ed25519Signer struct {
	privKey ed25519.PrivateKey
	keyID   string
}

// NewEd25519Signer creates a new Ed25519Signer.
func NewEd25519Signer(privKey ed25519.PrivateKey, keyID string) *Ed25519Signer {
	return &Ed25519Signer{privKey: privKey, keyID: keyID}
}

// Algorithm returns the JOSE algorithm label the produced signatures carry.
func (s *Ed25519Signer) Algorithm() string {
	return jwa.EdDSA
}

// KeyID returns the identifier of the signing key.
func (s *Ed25519Signer) KeyID() string {
	return s.keyID
}

// Sign signs the message.
func (s *Ed25519Signer) Sign(msg []byte) ([]byte, error) {
	return ed25519.Sign(s.privKey, msg), nil
}

// ECDSASigner makes ECDSA signatures, DER encoded when the algorithm requires it.
type ECDSASigner struct {
	privKey    *ecdsa.PrivateKey
	keyID      string
	descriptor jwa.Descriptor
}

// NewECDSASecp256k1Signer creates a signer producing ES256K signatures in DER form.
func NewECDSASecp256k1Signer(privKey *ecdsa.PrivateKey, keyID string) *ECDSASigner {
	descriptor, _ := jwa.Resolve(jwa.ES256K) //nolint:errcheck

	return newECDSASigner(privKey, keyID, descriptor)
}

func newECDSASigner(privKey *ecdsa.PrivateKey, keyID string, descriptor jwa.Descriptor) *ECDSASigner {
	return &ECDSASigner{privKey: privKey, keyID: keyID, descriptor: descriptor}
}

// Algorithm returns the JOSE algorithm label the produced signatures carry.
func (s *ECDSASigner) Algorithm() string {
	return s.descriptor.Name
}

// KeyID returns the identifier of the signing key.
func (s *ECDSASigner) KeyID() string {
	return s.keyID
}

// Sign signs the message.
func (s *ECDSASigner) Sign(msg []byte) ([]byte, error) {
	hasher := s.descriptor.Hash.New()

	_, err := hasher.Write(msg)
	if err != nil {
		return nil, errors.New("ecdsa: hash error")
	}

	hashed := hasher.Sum(nil)

	r, sVal, err := ecdsa.Sign(rand.Reader, s.privKey, hashed)
	if err != nil {
		return nil, fmt.Errorf("ecdsa: sign error: %w", err)
	}

	if s.descriptor.DERSignature {
		return jwa.EncodeSignatureDER(r.Bytes(), sVal.Bytes()), nil
	}

	keySize := curveKeySize(s.descriptor)

	signature := make([]byte, 2*keySize)
	copyPadded(signature[:keySize], r.Bytes())
	copyPadded(signature[keySize:], sVal.Bytes())

	return signature, nil
}

// RSASigner makes RSASSA-PKCS1-v1_5 or RSASSA-PSS signatures.
type RSASigner struct {
	privKey    *rsa.PrivateKey
	keyID      string
	descriptor jwa.Descriptor
}

// NewRS256Signer creates a signer producing RS256 signatures.
func NewRS256Signer(privKey *rsa.PrivateKey, keyID string) *RSASigner {
	descriptor, _ := jwa.Resolve(jwa.RS256) //nolint:errcheck

	return newRSASigner(privKey, keyID, descriptor)
}

func newRSASigner(privKey *rsa.PrivateKey, keyID string, descriptor jwa.Descriptor) *RSASigner {
	return &RSASigner{privKey: privKey, keyID: keyID, descriptor: descriptor}
}

// Algorithm returns the JOSE algorithm label the produced signatures carry.
func (s *RSASigner) Algorithm() string {
	return s.descriptor.Name
}

// KeyID returns the identifier of the signing key.
func (s *RSASigner) KeyID() string {
	return s.keyID
}

// Sign signs the message.
func (s *RSASigner) Sign(msg []byte) ([]byte, error) {
	hasher := s.descriptor.Hash.New()

	_, err := hasher.Write(msg)
	if err != nil {
		return nil, errors.New("rsa: hash error")
	}

	hashed := hasher.Sum(nil)

	if s.descriptor.Padding == jwa.PaddingPSS {
		return rsa.SignPSS(rand.Reader, s.privKey, s.descriptor.Hash, hashed, nil)
	}

	return rsa.SignPKCS1v15(rand.Reader, s.privKey, s.descriptor.Hash, hashed)
}

func curveKeySize(descriptor jwa.Descriptor) int {
	bits := descriptor.Curve.Params().BitSize

	size := bits / 8
	if bits%8 != 0 {
		size++
	}

	return size
}

func copyPadded(dst, src []byte) {
	copy(dst[len(dst)-len(src):], src)
}

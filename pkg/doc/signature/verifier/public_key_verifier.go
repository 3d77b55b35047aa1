/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package verifier

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rsa"
	"crypto/x509"
	"errors"
	"fmt"
	"math/big"

	"github.com/identra/framework-go/pkg/doc/jose/jwa"
	"github.com/identra/framework-go/pkg/doc/jose/jwk"
)

// PublicKey contains a result of public key resolution.
type PublicKey struct {
	Type  string
	Value []byte
	JWK   *jwk.JWK
}

// SignatureVerifier make signature verification of a certain algorithm (e.g. Ed25519 or ECDSA secp256k1).
type SignatureVerifier interface {
	// Algorithm returns the JOSE algorithm label this verifier supports.
	Algorithm() string

	// Verify verifies the signature.
	Verify(pubKey *PublicKey, msg, signature []byte) error
}

// ForAlgorithm returns a signature verifier for the given JOSE algorithm label.
func ForAlgorithm(alg string) (SignatureVerifier, error) {
	descriptor, err := jwa.Resolve(alg)
	if err != nil {
		return nil, err
	}

	switch descriptor.Name {
	case jwa.EdDSA:
		return NewEd25519SignatureVerifier(), nil
	case jwa.ES256K:
		return NewECDSASecp256k1SignatureVerifier(), nil
	case jwa.ES256, jwa.ES384, jwa.ES512:
		return newECDSAVerifier(descriptor), nil
	case jwa.RS256, jwa.RS384, jwa.RS512:
		return newRSAPKCS1Verifier(descriptor), nil
	case jwa.PS256:
		return NewRSAPS256SignatureVerifier(), nil
	default:
		return nil, fmt.Errorf("%w: no verifier for %s", jwa.ErrUnknownAlgorithm, alg)
	}
}

type baseSignatureVerifier struct {
	algorithm string
}

// Algorithm returns the JOSE algorithm label this verifier supports.
func (v baseSignatureVerifier) Algorithm() string {
	return v.algorithm
}

// Ed25519SignatureVerifier verifies a Ed25519 signature taking public key bytes as input.
type Ed25519SignatureVerifier struct {
	baseSignatureVerifier
}

// NewEd25519SignatureVerifier creates a new Ed25519SignatureVerifier.
func NewEd25519SignatureVerifier() *Ed25519SignatureVerifier {
	return &Ed25519SignatureVerifier{
		baseSignatureVerifier{algorithm: jwa.EdDSA},
	}
}

// Verify verifies the signature.
func (v *Ed25519SignatureVerifier) Verify(pubKey *PublicKey, msg, signature []byte) error {
	value := pubKey.Value

	if pubKey.JWK != nil {
		edKey, ok := pubKey.JWK.Key.(ed25519.PublicKey)
		if !ok {
			return errors.New("ed25519: invalid public key type")
		}

		value = edKey
	}

	if len(value) != ed25519.PublicKeySize {
		return errors.New("ed25519: invalid key")
	}

	verified := ed25519.Verify(value, msg, signature)
	if !verified {
		return errors.New("ed25519: invalid signature")
	}

	return nil
}

// RSAPKCS1SignatureVerifier verifies a RSASSA-PKCS1-v1_5 signature
// taking RSA public key bytes or a JSON Web Key as input.
type RSAPKCS1SignatureVerifier struct {
	baseSignatureVerifier

	hash crypto.Hash
}

// NewRSARS256SignatureVerifier creates a new RSAPKCS1SignatureVerifier for the RS256 algorithm.
func NewRSARS256SignatureVerifier() *RSAPKCS1SignatureVerifier {
	return &RSAPKCS1SignatureVerifier{
		baseSignatureVerifier: baseSignatureVerifier{algorithm: jwa.RS256},
		hash:                  crypto.SHA256,
	}
}

func newRSAPKCS1Verifier(descriptor jwa.Descriptor) *RSAPKCS1SignatureVerifier {
	return &RSAPKCS1SignatureVerifier{
		baseSignatureVerifier: baseSignatureVerifier{algorithm: descriptor.Name},
		hash:                  descriptor.Hash,
	}
}

// Verify verifies the signature.
func (v *RSAPKCS1SignatureVerifier) Verify(pubKey *PublicKey, msg, signature []byte) error {
	pubKeyRsa, err := rsaPublicKey(pubKey)
	if err != nil {
		return err
	}

	hasher := v.hash.New()

	_, err = hasher.Write(msg)
	if err != nil {
		return errors.New("rsa: hash error")
	}

	hashed := hasher.Sum(nil)

	err = rsa.VerifyPKCS1v15(pubKeyRsa, v.hash, hashed, signature)
	if err != nil {
		return errors.New("rsa: invalid signature")
	}

	return nil
}

// RSAPS256SignatureVerifier verifies a RSASSA-PSS signature taking RSA public key bytes as input.
type RSAPS256SignatureVerifier struct {
	baseSignatureVerifier
}

// NewRSAPS256SignatureVerifier creates a new RSAPS256SignatureVerifier.
func NewRSAPS256SignatureVerifier() *RSAPS256SignatureVerifier {
	return &RSAPS256SignatureVerifier{
		baseSignatureVerifier{algorithm: jwa.PS256},
	}
}

// Verify verifies the signature.
func (v *RSAPS256SignatureVerifier) Verify(pubKey *PublicKey, msg, signature []byte) error {
	pubKeyRsa, err := rsaPublicKey(pubKey)
	if err != nil {
		return err
	}

	hasher := crypto.SHA256.New()

	_, err = hasher.Write(msg)
	if err != nil {
		return errors.New("rsa: hash error")
	}

	hashed := hasher.Sum(nil)

	err = rsa.VerifyPSS(pubKeyRsa, crypto.SHA256, hashed, signature, nil)
	if err != nil {
		return errors.New("rsa: invalid signature")
	}

	return nil
}

func rsaPublicKey(pubKey *PublicKey) (*rsa.PublicKey, error) {
	if pubKey.JWK != nil {
		pubKeyRsa, ok := pubKey.JWK.Key.(*rsa.PublicKey)
		if !ok {
			return nil, errors.New("rsa: invalid public key type")
		}

		return pubKeyRsa, nil
	}

	pubKeyRsa, err := x509.ParsePKCS1PublicKey(pubKey.Value)
	if err != nil {
		return nil, errors.New("rsa: not a PKCS1 public key")
	}

	return pubKeyRsa, nil
}

// ECDSASignatureVerifier verifies elliptic curve signatures.
type ECDSASignatureVerifier struct {
	baseSignatureVerifier

	curve        elliptic.Curve
	keySize      int
	hash         crypto.Hash
	derSignature bool
}

// NewECDSASecp256k1SignatureVerifier creates a new signature verifier that verifies a ECDSA secp256k1 signature
// taking public key bytes and JSON Web Key as input.
func NewECDSASecp256k1SignatureVerifier() *ECDSASignatureVerifier {
	descriptor, _ := jwa.Resolve(jwa.ES256K) //nolint:errcheck

	return newECDSAVerifier(descriptor)
}

// NewECDSAES256SignatureVerifier creates a new signature verifier that verifies a ECDSA P-256 signature
// taking public key bytes and JSON Web Key as input.
func NewECDSAES256SignatureVerifier() *ECDSASignatureVerifier {
	descriptor, _ := jwa.Resolve(jwa.ES256) //nolint:errcheck

	return newECDSAVerifier(descriptor)
}

func newECDSAVerifier(descriptor jwa.Descriptor) *ECDSASignatureVerifier {
	return &ECDSASignatureVerifier{
		baseSignatureVerifier: baseSignatureVerifier{algorithm: descriptor.Name},
		curve:                 descriptor.Curve,
		keySize:               curveKeySize(descriptor.Curve),
		hash:                  descriptor.Hash,
		derSignature:          descriptor.DERSignature,
	}
}

// Verify verifies the signature.
func (v *ECDSASignatureVerifier) Verify(pubKey *PublicKey, msg, signature []byte) error {
	ecdsaPubKey, err := v.ecdsaKey(pubKey)
	if err != nil {
		return err
	}

	hasher := v.hash.New()

	_, err = hasher.Write(msg)
	if err != nil {
		return errors.New("ecdsa: hash error")
	}

	hash := hasher.Sum(nil)

	r, s, err := v.unpackSignature(signature)
	if err != nil {
		return err
	}

	verified := ecdsa.Verify(ecdsaPubKey, hash, r, s)
	if !verified {
		return errors.New("ecdsa: invalid signature")
	}

	return nil
}

// unpackSignature reads the (r, s) pair from raw concatenation or, when the
// algorithm mandates it, from ASN.1 DER.
func (v *ECDSASignatureVerifier) unpackSignature(signature []byte) (*big.Int, *big.Int, error) {
	if v.derSignature || len(signature) > 2*v.keySize {
		rBytes, sBytes, err := jwa.DecodeSignatureDER(signature)
		if err != nil {
			return nil, nil, fmt.Errorf("ecdsa: %w", err)
		}

		return new(big.Int).SetBytes(rBytes), new(big.Int).SetBytes(sBytes), nil
	}

	if len(signature) < 2*v.keySize {
		return nil, nil, errors.New("ecdsa: invalid signature size")
	}

	r := new(big.Int).SetBytes(signature[:v.keySize])
	s := new(big.Int).SetBytes(signature[v.keySize:])

	return r, s, nil
}

func (v *ECDSASignatureVerifier) ecdsaKey(pubKey *PublicKey) (*ecdsa.PublicKey, error) {
	if pubKey.JWK != nil {
		ecdsaPubKey, ok := pubKey.JWK.Key.(*ecdsa.PublicKey)
		if !ok {
			return nil, errors.New("ecdsa: invalid public key type")
		}

		return ecdsaPubKey, nil
	}

	x, y := elliptic.Unmarshal(v.curve, pubKey.Value)
	if x == nil {
		return nil, errors.New("ecdsa: invalid public key bytes")
	}

	return &ecdsa.PublicKey{Curve: v.curve, X: x, Y: y}, nil
}

func curveKeySize(curve elliptic.Curve) int {
	bits := curve.Params().BitSize

	size := bits / 8
	if bits%8 != 0 {
		size++
	}

	return size
}

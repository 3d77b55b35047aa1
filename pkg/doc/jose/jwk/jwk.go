/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package jwk contains the JSON Web Key model (https://tools.ietf.org/html/rfc7517).
// It wraps go-jose's JSONWebKey to add support for the secp256k1 curve and the
// key_ops member, neither of which go-jose handles.
package jwk

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/btcsuite/btcd/btcec"
	"github.com/go-jose/go-jose/v3"
	"github.com/go-jose/go-jose/v3/json"
)

const (
	secp256k1Crv  = "secp256k1"
	secp256k1Kty  = "EC"
	secp256k1Size = 32
	bitsPerByte   = 8
)

// JWK errors.
var (
	// ErrInvalidKey is returned when a passed JWK is invalid.
	ErrInvalidKey = errors.New("invalid JWK")
	// ErrUnsupportedKeyType is returned when a JWK carries a kty outside {EC, RSA, OKP, oct}.
	ErrUnsupportedKeyType = errors.New("unsupported key type")
)

// JWK (JSON Web Key) is a JSON data structure that represents a cryptographic key.
type JWK struct {
	jose.JSONWebKey

	Kty    string
	Crv    string
	KeyOps []string
}

// PublicKeyBytes converts a public key to bytes.
func (j *JWK) PublicKeyBytes() ([]byte, error) {
	if j.isSecp256k1() {
		var ecPubKey *ecdsa.PublicKey

		ecPubKey, ok := j.Key.(*ecdsa.PublicKey)
		if !ok {
			ecPrivKey, okPriv := j.Key.(*ecdsa.PrivateKey)
			if !okPriv {
				return nil, fmt.Errorf("%w: unexpected secp256k1 key type %T", ErrInvalidKey, j.Key)
			}

			ecPubKey = &ecPrivKey.PublicKey
		}

		pubKey := &btcec.PublicKey{
			Curve: btcec.S256(),
			X:     ecPubKey.X,
			Y:     ecPubKey.Y,
		}

		return pubKey.SerializeCompressed(), nil
	}

	switch pubKey := j.Public().Key.(type) {
	case ed25519.PublicKey:
		return pubKey, nil
	case *ecdsa.PublicKey:
		return elliptic.Marshal(pubKey.Curve, pubKey.X, pubKey.Y), nil
	case *rsa.PublicKey:
		return x509.MarshalPKCS1PublicKey(pubKey), nil
	case []byte:
		return pubKey, nil
	default:
		return nil, fmt.Errorf("%w: unsupported public key type %T", ErrInvalidKey, pubKey)
	}
}

// UnmarshalJSON reads a key from its JSON representation.
func (j *JWK) UnmarshalJSON(jwkBytes []byte) error {
	var key jsonWebKey

	marshalErr := json.Unmarshal(jwkBytes, &key)
	if marshalErr != nil {
		return fmt.Errorf("unable to read JWK: %w", marshalErr)
	}

	if !isSupportedKty(key.Kty) {
		return fmt.Errorf("%w: %s", ErrUnsupportedKeyType, key.Kty)
	}

	if isSecp256k1(key.Alg, key.Kty, key.Crv) {
		jwk, err := unmarshalSecp256k1(&key)
		if err != nil {
			return fmt.Errorf("unable to read secp256k1 JWK: %w", err)
		}

		*j = *jwk
	} else {
		var joseJWK jose.JSONWebKey

		err := json.Unmarshal(jwkBytes, &joseJWK)
		if err != nil {
			return fmt.Errorf("unable to read JOSE JWK: %w", err)
		}

		j.JSONWebKey = joseJWK
	}

	j.Kty = key.Kty
	j.Crv = key.Crv
	j.KeyOps = key.KeyOps

	return nil
}

// MarshalJSON serializes the key to its JSON representation.
func (j JWK) MarshalJSON() ([]byte, error) {
	if j.isSecp256k1() {
		return marshalSecp256k1(&j)
	}

	keyBytes, err := j.JSONWebKey.MarshalJSON()
	if err != nil {
		return nil, err
	}

	if len(j.KeyOps) == 0 {
		return keyBytes, nil
	}

	// go-jose does not serialize key_ops, so it is spliced into the output.
	var raw map[string]interface{}

	if err := json.Unmarshal(keyBytes, &raw); err != nil {
		return nil, err
	}

	raw["key_ops"] = j.KeyOps

	return json.Marshal(raw)
}

func (j *JWK) isSecp256k1() bool {
	return isSecp256k1Key(j.Key) || isSecp256k1(j.Algorithm, j.Kty, j.Crv)
}

func isSecp256k1Key(opaqueKey interface{}) bool {
	switch key := opaqueKey.(type) {
	case *ecdsa.PublicKey:
		return key.Curve == btcec.S256()
	case *ecdsa.PrivateKey:
		return key.Curve == btcec.S256()
	default:
		return false
	}
}

func isSecp256k1(alg, kty, crv string) bool {
	return strings.EqualFold(kty, secp256k1Kty) &&
		(strings.EqualFold(crv, secp256k1Crv) || strings.EqualFold(alg, "ES256K"))
}

func isSupportedKty(kty string) bool {
	for _, supported := range []string{"EC", "RSA", "OKP", "oct"} {
		if strings.EqualFold(kty, supported) {
			return true
		}
	}

	return false
}

func unmarshalSecp256k1(jwk *jsonWebKey) (*JWK, error) {
	if jwk.X == nil {
		return nil, ErrInvalidKey
	}

	if jwk.Y == nil {
		return nil, ErrInvalidKey
	}

	curve := btcec.S256()

	if curveSize(curve) != len(jwk.X.data) {
		return nil, ErrInvalidKey
	}

	if curveSize(curve) != len(jwk.Y.data) {
		return nil, ErrInvalidKey
	}

	if jwk.D != nil && dSize(curve) != len(jwk.D.data) {
		return nil, ErrInvalidKey
	}

	x := jwk.X.bigInt()
	y := jwk.Y.bigInt()

	if !curve.IsOnCurve(x, y) {
		return nil, ErrInvalidKey
	}

	var key interface{}

	if jwk.D != nil {
		key = &ecdsa.PrivateKey{
			PublicKey: ecdsa.PublicKey{
				Curve: curve,
				X:     x,
				Y:     y,
			},
			D: jwk.D.bigInt(),
		}
	} else {
		key = &ecdsa.PublicKey{
			Curve: curve,
			X:     x,
			Y:     y,
		}
	}

	return &JWK{
		JSONWebKey: jose.JSONWebKey{
			Key:       key,
			KeyID:     jwk.Kid,
			Algorithm: jwk.Alg,
			Use:       jwk.Use,
		},
	}, nil
}

func marshalSecp256k1(jwk *JWK) ([]byte, error) {
	var raw jsonWebKey

	switch ecdsaKey := jwk.Key.(type) {
	case *ecdsa.PublicKey:
		raw = jsonWebKey{
			Kty: secp256k1Kty,
			Crv: secp256k1Crv,
			X:   newFixedSizeBuffer(ecdsaKey.X.Bytes(), secp256k1Size),
			Y:   newFixedSizeBuffer(ecdsaKey.Y.Bytes(), secp256k1Size),
		}
	case *ecdsa.PrivateKey:
		raw = jsonWebKey{
			Kty: secp256k1Kty,
			Crv: secp256k1Crv,
			X:   newFixedSizeBuffer(ecdsaKey.X.Bytes(), secp256k1Size),
			Y:   newFixedSizeBuffer(ecdsaKey.Y.Bytes(), secp256k1Size),
			D:   newFixedSizeBuffer(ecdsaKey.D.Bytes(), dSize(btcec.S256())),
		}
	default:
		return nil, ErrInvalidKey
	}

	raw.Kid = jwk.KeyID
	raw.Alg = jwk.Algorithm
	raw.Use = jwk.Use
	raw.KeyOps = jwk.KeyOps

	return json.Marshal(raw)
}

// jsonWebKey contains subset of JSON Web Key fields with json tags.
type jsonWebKey struct {
	Use    string   `json:"use,omitempty"`
	Kty    string   `json:"kty,omitempty"`
	Kid    string   `json:"kid,omitempty"`
	Crv    string   `json:"crv,omitempty"`
	Alg    string   `json:"alg,omitempty"`
	KeyOps []string `json:"key_ops,omitempty"`

	X *byteBuffer `json:"x,omitempty"`
	Y *byteBuffer `json:"y,omitempty"`

	D *byteBuffer `json:"d,omitempty"`

	K *byteBuffer `json:"k,omitempty"`
	E *byteBuffer `json:"e,omitempty"`
	N *byteBuffer `json:"n,omitempty"`
}

func curveSize(crv elliptic.Curve) int {
	bits := crv.Params().BitSize

	div := bits / bitsPerByte
	mod := bits % bitsPerByte

	if mod == 0 {
		return div
	}

	return div + 1
}

func dSize(curve elliptic.Curve) int {
	order := curve.Params().P
	bitLen := order.BitLen()
	size := bitLen / bitsPerByte

	if bitLen%bitsPerByte != 0 {
		size++
	}

	return size
}

// byteBuffer represents a slice of bytes that can be serialized to url-safe base64.
type byteBuffer struct {
	data []byte
}

func (b *byteBuffer) UnmarshalJSON(data []byte) error {
	var s string

	err := json.Unmarshal(data, &s)
	if err != nil {
		return err
	}

	if s == "" {
		return nil
	}

	decoded, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return err
	}

	*b = byteBuffer{
		data: decoded,
	}

	return nil
}

func (b *byteBuffer) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.base64())
}

func (b *byteBuffer) base64() string {
	return base64.RawURLEncoding.EncodeToString(b.data)
}

func (b *byteBuffer) bigInt() *big.Int {
	return new(big.Int).SetBytes(b.data)
}

func newFixedSizeBuffer(data []byte, length int) *byteBuffer {
	if len(data) > length {
		// statically allocated sizes are always enough for curve coordinates
		panic("invalid call to newFixedSizeBuffer (len(data) > length)")
	}

	pad := make([]byte, length-len(data))

	return &byteBuffer{
		data: append(pad, data...),
	}
}

/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package jwksupport

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"testing"

	"github.com/btcsuite/btcd/btcec"
	"github.com/stretchr/testify/require"

	"github.com/identra/framework-go/pkg/doc/jose/jwa"
)

func TestJWKFromKey(t *testing.T) {
	t.Run("ed25519 public key", func(t *testing.T) {
		pubKey, _, err := ed25519.GenerateKey(rand.Reader)
		require.NoError(t, err)

		key, err := JWKFromKey(pubKey)
		require.NoError(t, err)
		require.Equal(t, "OKP", key.Kty)
		require.Equal(t, "Ed25519", key.Crv)
	})

	t.Run("ed25519 private key", func(t *testing.T) {
		_, privKey, err := ed25519.GenerateKey(rand.Reader)
		require.NoError(t, err)

		key, err := JWKFromKey(privKey)
		require.NoError(t, err)
		require.Equal(t, "OKP", key.Kty)
		require.IsType(t, ed25519.PrivateKey{}, key.Key)
	})

	t.Run("P-384 public key", func(t *testing.T) {
		privKey, err := ecdsa.GenerateKey(elliptic.P384(), rand.Reader)
		require.NoError(t, err)

		key, err := JWKFromKey(&privKey.PublicKey)
		require.NoError(t, err)
		require.Equal(t, "EC", key.Kty)
		require.Equal(t, "P-384", key.Crv)
	})

	t.Run("secp256k1 private key", func(t *testing.T) {
		privKey, err := ecdsa.GenerateKey(btcec.S256(), rand.Reader)
		require.NoError(t, err)

		key, err := JWKFromKey(privKey)
		require.NoError(t, err)
		require.Equal(t, "EC", key.Kty)
		require.Equal(t, "secp256k1", key.Crv)
	})

	t.Run("RSA public key", func(t *testing.T) {
		privKey, err := rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)

		key, err := JWKFromKey(&privKey.PublicKey)
		require.NoError(t, err)
		require.Equal(t, "RSA", key.Kty)
	})
}

func TestPublicKeyFromJWK(t *testing.T) {
	t.Run("from ed25519 private JWK", func(t *testing.T) {
		pubKey, privKey, err := ed25519.GenerateKey(rand.Reader)
		require.NoError(t, err)

		privJWK, err := JWKFromKey(privKey)
		require.NoError(t, err)

		privJWK.KeyID = "key-1"
		privJWK.Algorithm = "EdDSA"

		pubJWK, err := PublicKeyFromJWK(privJWK)
		require.NoError(t, err)
		require.Equal(t, pubKey, pubJWK.Key)
		require.Equal(t, "key-1", pubJWK.KeyID)
		require.Equal(t, "EdDSA", pubJWK.Algorithm)
	})

	t.Run("from ecdsa private JWK", func(t *testing.T) {
		privKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
		require.NoError(t, err)

		privJWK, err := JWKFromKey(privKey)
		require.NoError(t, err)

		pubJWK, err := PublicKeyFromJWK(privJWK)
		require.NoError(t, err)
		require.Equal(t, &privKey.PublicKey, pubJWK.Key)
	})

	t.Run("public JWK is its own public form", func(t *testing.T) {
		privKey, err := rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)

		pubJWK, err := JWKFromKey(&privKey.PublicKey)
		require.NoError(t, err)

		derived, err := PublicKeyFromJWK(pubJWK)
		require.NoError(t, err)
		require.Equal(t, pubJWK.Key, derived.Key)
	})
}

func TestPubKeyBytesToJWK(t *testing.T) {
	t.Run("EdDSA", func(t *testing.T) {
		pubKey, _, err := ed25519.GenerateKey(rand.Reader)
		require.NoError(t, err)

		key, err := PubKeyBytesToJWK(pubKey, jwa.EdDSA)
		require.NoError(t, err)
		require.Equal(t, "OKP", key.Kty)
	})

	t.Run("ES256", func(t *testing.T) {
		privKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
		require.NoError(t, err)

		pubKeyBytes := elliptic.Marshal(elliptic.P256(), privKey.X, privKey.Y)

		key, err := PubKeyBytesToJWK(pubKeyBytes, jwa.ES256)
		require.NoError(t, err)
		require.Equal(t, "P-256", key.Crv)
	})

	t.Run("ES256 invalid point bytes", func(t *testing.T) {
		_, err := PubKeyBytesToJWK([]byte{0x04, 0x01, 0x02}, jwa.ES256)
		require.Error(t, err)
		require.Contains(t, err.Error(), "invalid ES256 public key bytes")
	})

	t.Run("ES256K compressed point", func(t *testing.T) {
		privKey, err := ecdsa.GenerateKey(btcec.S256(), rand.Reader)
		require.NoError(t, err)

		compressed := (&btcec.PublicKey{
			Curve: btcec.S256(),
			X:     privKey.X,
			Y:     privKey.Y,
		}).SerializeCompressed()

		key, err := PubKeyBytesToJWK(compressed, jwa.ES256K)
		require.NoError(t, err)
		require.Equal(t, "secp256k1", key.Crv)
	})

	t.Run("ES256K bad bytes", func(t *testing.T) {
		_, err := PubKeyBytesToJWK([]byte{0x01}, jwa.ES256K)
		require.Error(t, err)
		require.Contains(t, err.Error(), "parse secp256k1 public key")
	})

	t.Run("RS256", func(t *testing.T) {
		privKey, err := rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)

		pubJWK, err := JWKFromKey(&privKey.PublicKey)
		require.NoError(t, err)

		pubKeyBytes, err := pubJWK.PublicKeyBytes()
		require.NoError(t, err)

		key, err := PubKeyBytesToJWK(pubKeyBytes, jwa.RS256)
		require.NoError(t, err)
		require.Equal(t, "RSA", key.Kty)
	})

	t.Run("unknown algorithm", func(t *testing.T) {
		_, err := PubKeyBytesToJWK([]byte{0x01}, "HS256")
		require.ErrorIs(t, err, jwa.ErrUnknownAlgorithm)
	})
}

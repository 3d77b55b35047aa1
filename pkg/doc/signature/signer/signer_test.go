/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package signer

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
	"github.com/identra/framework-go/pkg/doc/jose/jwk/jwksupport"
	"github.com/identra/framework-go/pkg/doc/signature/verifier"
)

func TestEd25519Signer(t *testing.T) {
	pubKey, privKey, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	s := NewEd25519Signer(privKey, "key-1")
	require.Equal(t, jwa.EdDSA, s.Algorithm())
	require.Equal(t, "key-1", s.KeyID())

	msg := []byte("test message")

	signature, err := s.Sign(msg)
	require.NoError(t, err)
	require.True(t, ed25519.Verify(pubKey, msg, signature))
}

func TestECDSASigner_Secp256k1(t *testing.T) {
	privKey, err := ecdsa.GenerateKey(btcec.S256(), rand.Reader)
	require.NoError(t, err)

	s := NewECDSASecp256k1Signer(privKey, "key-1")
	require.Equal(t, jwa.ES256K, s.Algorithm())

	msg := []byte("test message")

	signature, err := s.Sign(msg)
	require.NoError(t, err)

	// ES256K signatures are DER encoded
	require.Equal(t, byte(0x30), signature[0])

	pubJWK, err := jwksupport.JWKFromKey(&privKey.PublicKey)
	require.NoError(t, err)

	v := verifier.NewECDSASecp256k1SignatureVerifier()
	require.NoError(t, v.Verify(&verifier.PublicKey{JWK: pubJWK}, msg, signature))
}

func TestRSASigner(t *testing.T) {
	privKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	s := NewRS256Signer(privKey, "key-1")
	require.Equal(t, jwa.RS256, s.Algorithm())

	msg := []byte("test message")

	signature, err := s.Sign(msg)
	require.NoError(t, err)

	v := verifier.NewRSARS256SignatureVerifier()

	pubJWK, err := jwksupport.JWKFromKey(&privKey.PublicKey)
	require.NoError(t, err)

	require.NoError(t, v.Verify(&verifier.PublicKey{JWK: pubJWK}, msg, signature))
}

func TestFromJWK(t *testing.T) {
	t.Run("EdDSA", func(t *testing.T) {
		_, privKey, err := ed25519.GenerateKey(rand.Reader)
		require.NoError(t, err)

		privJWK, err := jwksupport.JWKFromKey(privKey)
		require.NoError(t, err)

		privJWK.Algorithm = jwa.EdDSA
		privJWK.KeyID = "ed-key"

		s, err := FromJWK(privJWK)
		require.NoError(t, err)
		require.Equal(t, jwa.EdDSA, s.Algorithm())
		require.Equal(t, "ed-key", s.KeyID())
	})

	t.Run("ES384 raw signature size", func(t *testing.T) {
		privKey, err := ecdsa.GenerateKey(elliptic.P384(), rand.Reader)
		require.NoError(t, err)

		privJWK, err := jwksupport.JWKFromKey(privKey)
		require.NoError(t, err)

		privJWK.Algorithm = jwa.ES384

		s, err := FromJWK(privJWK)
		require.NoError(t, err)

		signature, err := s.Sign([]byte("test message"))
		require.NoError(t, err)
		require.Len(t, signature, 96)
	})

	t.Run("ES512 round trip", func(t *testing.T) {
		privKey, err := ecdsa.GenerateKey(elliptic.P521(), rand.Reader)
		require.NoError(t, err)

		privJWK, err := jwksupport.JWKFromKey(privKey)
		require.NoError(t, err)

		privJWK.Algorithm = jwa.ES512

		s, err := FromJWK(privJWK)
		require.NoError(t, err)

		msg := []byte("test message")

		signature, err := s.Sign(msg)
		require.NoError(t, err)

		v, err := verifier.ForAlgorithm(jwa.ES512)
		require.NoError(t, err)

		pubJWK, err := jwksupport.PublicKeyFromJWK(privJWK)
		require.NoError(t, err)

		require.NoError(t, v.Verify(&verifier.PublicKey{JWK: pubJWK}, msg, signature))
	})

	t.Run("PS256", func(t *testing.T) {
		privKey, err := rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)

		privJWK, err := jwksupport.JWKFromKey(privKey)
		require.NoError(t, err)

		privJWK.Algorithm = jwa.PS256

		s, err := FromJWK(privJWK)
		require.NoError(t, err)

		msg := []byte("test message")

		signature, err := s.Sign(msg)
		require.NoError(t, err)

		v := verifier.NewRSAPS256SignatureVerifier()

		pubJWK, err := jwksupport.PublicKeyFromJWK(privJWK)
		require.NoError(t, err)

		require.NoError(t, v.Verify(&verifier.PublicKey{JWK: pubJWK}, msg, signature))
	})

	t.Run("key type mismatch", func(t *testing.T) {
		_, privKey, err := ed25519.GenerateKey(rand.Reader)
		require.NoError(t, err)

		privJWK, err := jwksupport.JWKFromKey(privKey)
		require.NoError(t, err)

		privJWK.Algorithm = jwa.ES256

		_, err = FromJWK(privJWK)
		require.Error(t, err)
		require.Contains(t, err.Error(), "requires an ECDSA private key")
	})

	t.Run("unknown algorithm", func(t *testing.T) {
		_, privKey, err := ed25519.GenerateKey(rand.Reader)
		require.NoError(t, err)

		privJWK, err := jwksupport.JWKFromKey(privKey)
		require.NoError(t, err)

		privJWK.Algorithm = "HS256"

		_, err = FromJWK(privJWK)
		require.ErrorIs(t, err, jwa.ErrUnknownAlgorithm)
	})
}

/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package resolver

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/identra/framework-go/pkg/doc/jose"
	"github.com/identra/framework-go/pkg/doc/signature/signer"
	"github.com/identra/framework-go/pkg/vdr"
	"github.com/identra/framework-go/pkg/vdr/fingerprint"
	vdrkey "github.com/identra/framework-go/pkg/vdr/key"
)

func TestDIDFromKeyID(t *testing.T) {
	t.Run("valid DID URL", func(t *testing.T) {
		didID, err := DIDFromKeyID("did:example:123#key-1")
		require.NoError(t, err)
		require.Equal(t, "did:example:123", didID)
	})

	t.Run("splits on last fragment separator", func(t *testing.T) {
		didID, err := DIDFromKeyID("did:example:123#a#key-1")
		require.NoError(t, err)
		require.Equal(t, "did:example:123#a", didID)
	})

	t.Run("no fragment", func(t *testing.T) {
		_, err := DIDFromKeyID("did:example:123")
		require.ErrorIs(t, err, ErrMalformedKeyID)
	})
}

func TestDIDKeyResolver_Resolve(t *testing.T) {
	registry := vdr.New(vdr.WithVDR(vdrkey.New()))
	keyResolver := NewDIDKeyResolver(registry)

	pubKey, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	_, keyID := createDIDKey(pubKey)

	t.Run("resolves did:key kid", func(t *testing.T) {
		key, err := keyResolver.Resolve(keyID)
		require.NoError(t, err)
		require.Equal(t, []byte(pubKey), key.Value)
	})

	t.Run("malformed kid", func(t *testing.T) {
		_, err := keyResolver.Resolve("did:example:123")
		require.ErrorIs(t, err, ErrMalformedKeyID)
	})

	t.Run("unresolvable DID", func(t *testing.T) {
		_, err := keyResolver.Resolve("did:unknown:123#key-1")
		require.Error(t, err)
	})
}

func TestDIDKeyResolver_Verify(t *testing.T) {
	registry := vdr.New(vdr.WithVDR(vdrkey.New()))
	keyResolver := NewDIDKeyResolver(registry)

	payload := []byte(`{"claim":"value"}`)

	pubKey, privKey, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	didKey, keyID := createDIDKey(pubKey)

	token := signToken(t, payload, privKey, keyID)

	t.Run("verify against per-signature kid", func(t *testing.T) {
		verified, err := keyResolver.VerifyAgainstKeyID(token)
		require.NoError(t, err)
		require.True(t, verified)
	})

	t.Run("verify against explicit DID", func(t *testing.T) {
		verified, err := keyResolver.Verify(token, didKey)
		require.NoError(t, err)
		require.True(t, verified)
	})

	t.Run("empty DID falls back to kid resolution", func(t *testing.T) {
		verified, err := keyResolver.Verify(token, "")
		require.NoError(t, err)
		require.True(t, verified)
	})

	t.Run("explicit DID of another identity fails verification", func(t *testing.T) {
		otherPub, _, err := ed25519.GenerateKey(rand.Reader)
		require.NoError(t, err)

		otherDID, _ := createDIDKey(otherPub)

		verified, err := keyResolver.Verify(token, otherDID)
		require.NoError(t, err)
		require.False(t, verified)
	})

	t.Run("token signed by another key fails verification", func(t *testing.T) {
		_, otherPriv, err := ed25519.GenerateKey(rand.Reader)
		require.NoError(t, err)

		forged := signToken(t, payload, otherPriv, keyID)

		verified, err := keyResolver.VerifyAgainstKeyID(forged)
		require.NoError(t, err)
		require.False(t, verified)
	})

	t.Run("signature without kid is a structural error", func(t *testing.T) {
		anonymous := signToken(t, payload, privKey, "")

		_, err := keyResolver.VerifyAgainstKeyID(anonymous)
		require.Error(t, err)
		require.Contains(t, err.Error(), "no kid header")
	})
}

func TestVerifyAgainstIdentity(t *testing.T) {
	pubKey, privKey, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	didKey, keyID := createDIDKey(pubKey)

	doc, err := vdrkey.New().Read(didKey)
	require.NoError(t, err)

	token := signToken(t, []byte("payload"), privKey, keyID)

	verified, err := VerifyAgainstIdentity(token, doc)
	require.NoError(t, err)
	require.True(t, verified)
}

type joseSigner struct {
	headers jose.Headers
	signFn  func([]byte) ([]byte, error)
}

func (s *joseSigner) Sign(data []byte) ([]byte, error) {
	return s.signFn(data)
}

func (s *joseSigner) Headers() jose.Headers {
	return s.headers
}

func signToken(t *testing.T, payload []byte, privKey ed25519.PrivateKey, keyID string) *jose.JSONWebSignature {
	t.Helper()

	edSigner := signer.NewEd25519Signer(privKey, keyID)

	headers := jose.Headers{jose.HeaderAlgorithm: edSigner.Algorithm()}
	if keyID != "" {
		headers[jose.HeaderKeyID] = keyID
	}

	token, err := jose.NewJWS(headers, nil, payload, &joseSigner{headers: headers, signFn: edSigner.Sign})
	require.NoError(t, err)

	return token
}

func createDIDKey(pubKey ed25519.PublicKey) (string, string) {
	return fingerprint.CreateDIDKey(pubKey)
}

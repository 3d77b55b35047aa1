/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package did

import (
	"testing"

	"github.com/stretchr/testify/require"
)

//nolint:lll
const validDoc = `{
  "@context": ["https://w3id.org/did/v1"],
  "id": "did:example:21tDAKCERh95uGgKbJNHYp",
  "verificationMethod": [
    {
      "id": "did:example:21tDAKCERh95uGgKbJNHYp#keys-1",
      "type": "Ed25519VerificationKey2018",
      "controller": "did:example:21tDAKCERh95uGgKbJNHYp",
      "publicKeyBase58": "H3C2AVvLMv6gmMNam3uVAjZpfkcJCwDwnZn6z3wXmqPV"
    },
    {
      "id": "did:example:21tDAKCERh95uGgKbJNHYp#keys-2",
      "type": "JsonWebKey2020",
      "controller": "did:example:21tDAKCERh95uGgKbJNHYp",
      "publicKeyJwk": {
        "kty": "OKP",
        "crv": "Ed25519",
        "x": "11qYAYKxCrfVS_7TyWQHOg7hcvPapiMlrwIaaPcHURo"
      }
    }
  ],
  "authentication": ["did:example:21tDAKCERh95uGgKbJNHYp#keys-1"],
  "service": [
    {
      "id": "did:example:21tDAKCERh95uGgKbJNHYp#domain",
      "type": "LinkedDomains",
      "serviceEndpoint": "https://identity.example.com"
    }
  ]
}`

func TestParse(t *testing.T) {
	t.Run("valid DIDs", func(t *testing.T) {
		for _, str := range []string{
			"did:example:123456789abcdefghi",
			"did:key:z6MkpTHR8VNsBxYAAWHut2Geadd9jSwuBV8xRoAnwWsdvktH",
			"did:web:w3c-ccg.github.io:user:alice",
		} {
			d, err := Parse(str)
			require.NoError(t, err)
			require.Equal(t, str, d.String())
		}
	})

	t.Run("invalid DIDs", func(t *testing.T) {
		for _, str := range []string{
			"",
			"did:",
			"did:example",
			"example:123456789abcdefghi",
			"did:EXAMPLE:123",
		} {
			_, err := Parse(str)
			require.Error(t, err)
		}
	})
}

func TestParseDocument(t *testing.T) {
	t.Run("valid document", func(t *testing.T) {
		doc, err := ParseDocument([]byte(validDoc))
		require.NoError(t, err)

		require.Equal(t, "did:example:21tDAKCERh95uGgKbJNHYp", doc.ID)
		require.Len(t, doc.VerificationMethod, 2)
		require.Len(t, doc.Authentication, 1)
		require.Equal(t, "did:example:21tDAKCERh95uGgKbJNHYp#keys-1", doc.Authentication[0].ID)

		require.NotNil(t, doc.VerificationMethod[1].JSONWebKey())
		require.Len(t, doc.VerificationMethod[1].Value, 32)
	})

	t.Run("legacy publicKey spelling", func(t *testing.T) {
		legacy := `{
  "@context": "https://w3id.org/did/v1",
  "id": "did:example:legacy",
  "publicKey": [
    {
      "id": "did:example:legacy#keys-1",
      "type": "Ed25519VerificationKey2018",
      "controller": "did:example:legacy",
      "publicKeyBase58": "H3C2AVvLMv6gmMNam3uVAjZpfkcJCwDwnZn6z3wXmqPV"
    }
  ]
}`

		doc, err := ParseDocument([]byte(legacy))
		require.NoError(t, err)
		require.Len(t, doc.VerificationMethod, 1)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		_, err := ParseDocument([]byte("invalid"))
		require.Error(t, err)
	})

	t.Run("missing required id", func(t *testing.T) {
		_, err := ParseDocument([]byte(`{"@context": "https://w3id.org/did/v1"}`))
		require.Error(t, err)
		require.Contains(t, err.Error(), "did document not valid")
	})

	t.Run("authentication referencing unknown key", func(t *testing.T) {
		badRef := `{
  "@context": "https://w3id.org/did/v1",
  "id": "did:example:badref",
  "verificationMethod": [
    {
      "id": "did:example:badref#keys-1",
      "type": "Ed25519VerificationKey2018",
      "controller": "did:example:badref",
      "publicKeyBase58": "H3C2AVvLMv6gmMNam3uVAjZpfkcJCwDwnZn6z3wXmqPV"
    }
  ],
  "authentication": ["did:example:badref#missing"]
}`

		_, err := ParseDocument([]byte(badRef))
		require.Error(t, err)
		require.Contains(t, err.Error(), "does not exist in did doc verification methods")
	})
}

func TestDoc_ResolvePublicKey(t *testing.T) {
	doc, err := ParseDocument([]byte(validDoc))
	require.NoError(t, err)

	t.Run("exact match", func(t *testing.T) {
		key, err := doc.ResolvePublicKey("did:example:21tDAKCERh95uGgKbJNHYp#keys-1")
		require.NoError(t, err)
		require.Equal(t, "Ed25519VerificationKey2018", key.Type)
		require.NotEmpty(t, key.Value)
	})

	t.Run("fragment match", func(t *testing.T) {
		key, err := doc.ResolvePublicKey("keys-2")
		require.NoError(t, err)
		require.NotNil(t, key.JWK)
		require.Equal(t, "did:example:21tDAKCERh95uGgKbJNHYp#keys-2", key.JWK.KeyID)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := doc.ResolvePublicKey("keys-3")
		require.ErrorIs(t, err, ErrKeyNotFound)
	})
}

func TestDoc_PublicKeys(t *testing.T) {
	doc, err := ParseDocument([]byte(validDoc))
	require.NoError(t, err)

	keys := doc.PublicKeys()
	require.Len(t, keys, 2)
}

func TestDoc_JSONBytes(t *testing.T) {
	doc, err := ParseDocument([]byte(validDoc))
	require.NoError(t, err)

	docBytes, err := doc.JSONBytes()
	require.NoError(t, err)

	parsed, err := ParseDocument(docBytes)
	require.NoError(t, err)
	require.Equal(t, doc.ID, parsed.ID)
	require.Len(t, parsed.VerificationMethod, 2)
}

func TestLookupService(t *testing.T) {
	doc, err := ParseDocument([]byte(validDoc))
	require.NoError(t, err)

	svc, found := LookupService(doc, "LinkedDomains")
	require.True(t, found)
	require.Equal(t, "https://identity.example.com", svc.ServiceEndpoint)

	_, found = LookupService(doc, "DIDCommMessaging")
	require.False(t, found)
}

func TestLookupVerificationMethod(t *testing.T) {
	doc, err := ParseDocument([]byte(validDoc))
	require.NoError(t, err)

	vm, found := LookupVerificationMethod("did:example:21tDAKCERh95uGgKbJNHYp#keys-1", doc)
	require.True(t, found)
	require.Equal(t, "Ed25519VerificationKey2018", vm.Type)

	_, found = LookupVerificationMethod("did:example:21tDAKCERh95uGgKbJNHYp#missing", doc)
	require.False(t, found)
}

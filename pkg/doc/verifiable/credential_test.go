/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package verifiable

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/identra/framework-go/pkg/doc/jwt"
	"github.com/identra/framework-go/pkg/doc/signature/signer"
)

const testDID = "did:example:oakek8cpce9mihzo9oebs88p"

func TestParseCredentialJWT(t *testing.T) {
	t.Run("domain linkage credential", func(t *testing.T) {
		serialized := signVC(t, map[string]interface{}{
			"iss": testDID,
			"sub": testDID,
			"vc": map[string]interface{}{
				"@context": []interface{}{
					"https://www.w3.org/2018/credentials/v1",
					"https://identity.foundation/.well-known/did-configuration/v1",
				},
				"type":           []interface{}{"VerifiableCredential", "DomainLinkageCredential"},
				"issuer":         testDID,
				"issuanceDate":   "2023-07-14T12:30:00Z",
				"expirationDate": "2033-07-14T12:30:00Z",
				"credentialSubject": map[string]interface{}{
					"id":     testDID,
					"origin": "https://identity.example.com",
				},
			},
		})

		vc, token, err := ParseCredentialJWT(serialized)
		require.NoError(t, err)
		require.NotNil(t, token)

		require.Equal(t, []string{"VerifiableCredential", "DomainLinkageCredential"}, vc.Types)
		require.Equal(t, testDID, vc.Issuer)
		require.Equal(t, testDID, vc.IssuerClaim)
		require.Equal(t, testDID, vc.SubjectClaim)
		require.Equal(t, "2023-07-14T12:30:00Z", vc.Issued)
		require.Equal(t, testDID, vc.Subject.ID)
		require.Equal(t, "https://identity.example.com", vc.Subject.Origin)
		require.Equal(t, serialized, vc.JWT)
		require.Len(t, vc.Context, 2)
	})

	t.Run("issuer as object", func(t *testing.T) {
		serialized := signVC(t, map[string]interface{}{
			"iss": testDID,
			"vc": map[string]interface{}{
				"type":   "VerifiableCredential",
				"issuer": map[string]interface{}{"id": testDID, "name": "Example"},
				"credentialSubject": map[string]interface{}{
					"id": testDID,
				},
			},
		})

		vc, _, err := ParseCredentialJWT(serialized)
		require.NoError(t, err)
		require.Equal(t, testDID, vc.Issuer)
		require.Equal(t, []string{"VerifiableCredential"}, vc.Types)
	})

	t.Run("issuer object without id", func(t *testing.T) {
		serialized := signVC(t, map[string]interface{}{
			"iss": testDID,
			"vc": map[string]interface{}{
				"issuer": map[string]interface{}{"name": "Example"},
			},
		})

		_, _, err := ParseCredentialJWT(serialized)
		require.Error(t, err)
		require.Contains(t, err.Error(), "issuer object misses id field")
	})

	t.Run("extra subject properties land in custom fields", func(t *testing.T) {
		serialized := signVC(t, map[string]interface{}{
			"iss": testDID,
			"vc": map[string]interface{}{
				"credentialSubject": map[string]interface{}{
					"id":     testDID,
					"origin": "https://identity.example.com",
					"role":   "controller",
				},
			},
		})

		vc, _, err := ParseCredentialJWT(serialized)
		require.NoError(t, err)
		require.Equal(t, "controller", vc.Subject.CustomFields["role"])
	})

	t.Run("missing vc claim", func(t *testing.T) {
		serialized := signVC(t, map[string]interface{}{"iss": testDID})

		_, _, err := ParseCredentialJWT(serialized)
		require.Error(t, err)
		require.Contains(t, err.Error(), "vc claim is not defined")
	})

	t.Run("not a JWT", func(t *testing.T) {
		_, _, err := ParseCredentialJWT(`{"@context":"https://www.w3.org/2018/credentials/v1"}`)
		require.Error(t, err)
		require.Contains(t, err.Error(), "parse credential JWT")
	})
}

func signVC(t *testing.T, claims map[string]interface{}) string {
	t.Helper()

	_, privKey, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	token, err := jwt.NewSigned(claims, nil,
		jwt.NewJoseSigner(signer.NewEd25519Signer(privKey, testDID+"#key-1")))
	require.NoError(t, err)

	serialized, err := token.Serialize(false)
	require.NoError(t, err)

	return serialized
}

/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package jose

import (
	"encoding/json"

	"github.com/identra/framework-go/pkg/doc/jose/jwk"
)

// IANA registered JOSE headers (https://tools.ietf.org/html/rfc7515#section-4.1)
const (
	// HeaderAlgorithm identifies the cryptographic algorithm used to secure the JWS.
	HeaderAlgorithm = "alg" // string

	// HeaderJWKSetURL is a URI that refers to a resource for a set of JSON-encoded public keys,
	// one of which corresponds to the key used to digitally sign the JWS.
	HeaderJWKSetURL = "jku" // string

	// HeaderJSONWebKey is the public key that corresponds to the key used to digitally sign the JWS.
	HeaderJSONWebKey = "jwk" // JSON

	// HeaderKeyID is a hint indicating which key was used to secure the JWS.
	HeaderKeyID = "kid" // string

	// HeaderX509URL is a URI that refers to a resource for the X.509 public key certificate or
	// certificate chain corresponding to the key used to digitally sign the JWS.
	HeaderX509URL = "x5u"

	// HeaderType is used by JWS applications to declare the media type of this complete JWS.
	HeaderType = "typ" // string

	// HeaderContentType is used by JWS applications to declare the media type of the secured
	// content (the payload).
	HeaderContentType = "cty" // string

	// HeaderCritical indicates that extensions to this JWS header specification and/or JWA are
	// being used that MUST be understood and processed.
	HeaderCritical = "crit" // array
)

// Header defined in https://tools.ietf.org/html/rfc7797
const (
	// HeaderB64Payload determines whether the payload is represented in the JWS and the JWS Signing
	// Input as ASCII(BASE64URL(JWS Payload)) or as the JWS Payload value itself with no encoding performed.
	HeaderB64Payload = "b64" // bool
)

// Headers represents JOSE headers.
type Headers map[string]interface{}

// KeyID gets Key ID from JOSE headers.
func (h Headers) KeyID() (string, bool) {
	return h.stringValue(HeaderKeyID)
}

// Algorithm gets Algorithm from JOSE headers.
func (h Headers) Algorithm() (string, bool) {
	return h.stringValue(HeaderAlgorithm)
}

// Type gets content type from JOSE headers.
func (h Headers) Type() (string, bool) {
	return h.stringValue(HeaderType)
}

// ContentType gets the payload content type from JOSE headers.
func (h Headers) ContentType() (string, bool) {
	return h.stringValue(HeaderContentType)
}

func (h Headers) stringValue(key string) (string, bool) {
	raw, ok := h[key]
	if !ok {
		return "", false
	}

	str, ok := raw.(string)

	return str, ok
}

// JWK gets JWK from JOSE headers.
func (h Headers) JWK() (*jwk.JWK, bool) {
	jwkRaw, ok := h[HeaderJSONWebKey]
	if !ok {
		return nil, false
	}

	var jwkKey jwk.JWK

	err := convertMapToValue(jwkRaw, &jwkKey)
	if err != nil {
		return nil, false
	}

	return &jwkKey, true
}

func convertMapToValue(mapValue, rawValue interface{}) error {
	mapBytes, err := json.Marshal(mapValue)
	if err != nil {
		return err
	}

	return json.Unmarshal(mapBytes, rawValue)
}

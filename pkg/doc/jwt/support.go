/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package jwt

import (
	"github.com/identra/framework-go/pkg/doc/jose"
	"github.com/identra/framework-go/pkg/doc/signature/signer"
)

// JoseSigner bridges a signature signer into the jose.Signer interface used
// when building signed tokens.
type JoseSigner struct {
	signer  signer.SignatureSigner
	headers jose.Headers
}

// NewJoseSigner creates a jose.Signer backed by the given signature signer. The
// produced headers carry the signer's algorithm, its key id when present, and
// the JWT type.
func NewJoseSigner(s signer.SignatureSigner) *JoseSigner {
	headers := jose.Headers{
		jose.HeaderAlgorithm: s.Algorithm(),
		jose.HeaderType:      TypeJWT,
	}

	if s.KeyID() != "" {
		headers[jose.HeaderKeyID] = s.KeyID()
	}

	return &JoseSigner{signer: s, headers: headers}
}

// Sign signs.
func (s *JoseSigner) Sign(data []byte) ([]byte, error) {
	return s.signer.Sign(data)
}

// Headers provides JOSE headers.
func (s *JoseSigner) Headers() jose.Headers {
	return s.headers
}

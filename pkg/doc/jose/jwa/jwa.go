/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package jwa maps JOSE algorithm labels (https://tools.ietf.org/html/rfc7518) to
// normalized signing parameters. The algorithm set is fixed and small, so the
// mapping is a static table rather than a runtime registry.
package jwa

import (
	"crypto"
	"crypto/elliptic"
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcec"
)

// ErrUnknownAlgorithm is returned when an algorithm label is not recognized.
var ErrUnknownAlgorithm = errors.New("unknown signature algorithm")

// RSAPadding is the RSA padding scheme of an algorithm descriptor.
type RSAPadding int

// RSA padding schemes.
const (
	PaddingNone RSAPadding = iota
	PaddingPKCS1v15
	PaddingPSS
	PaddingOAEP
)

// Algorithm names recognized by Resolve.
const (
	RS256      = "RS256"
	RS384      = "RS384"
	RS512      = "RS512"
	PS256      = "PS256"
	RSAOAEP    = "RSA-OAEP"
	RSAOAEP256 = "RSA-OAEP-256"
	ES256      = "ES256"
	ES384      = "ES384"
	ES512      = "ES512"
	ES256K     = "ES256K"
	EdDSA      = "EdDSA"
)

// Descriptor holds the resolved, normalized parameters of a JOSE algorithm.
// Descriptors are never constructed directly by callers, always via Resolve.
type Descriptor struct {
	// Name is the canonical JOSE label.
	Name string

	// Hash is the digest applied to the JWS signing input.
	Hash crypto.Hash

	// Curve is set for ECDSA algorithms only.
	Curve elliptic.Curve

	// DERSignature is true when the signature wire format is ASN.1 DER
	// rather than the raw r||s concatenation.
	DERSignature bool

	// Padding is the RSA padding scheme, PaddingNone for non-RSA algorithms.
	Padding RSAPadding
}

//nolint:gochecknoglobals
var descriptors = map[string]Descriptor{
	RS256:      {Name: RS256, Hash: crypto.SHA256, Padding: PaddingPKCS1v15},
	RS384:      {Name: RS384, Hash: crypto.SHA384, Padding: PaddingPKCS1v15},
	RS512:      {Name: RS512, Hash: crypto.SHA512, Padding: PaddingPKCS1v15},
	PS256:      {Name: PS256, Hash: crypto.SHA256, Padding: PaddingPSS},
	RSAOAEP:    {Name: RSAOAEP, Hash: crypto.SHA256, Padding: PaddingOAEP},
	RSAOAEP256: {Name: RSAOAEP256, Hash: crypto.SHA256, Padding: PaddingOAEP},
	ES256:      {Name: ES256, Hash: crypto.SHA256, Curve: elliptic.P256()},
	ES384:      {Name: ES384, Hash: crypto.SHA384, Curve: elliptic.P384()},
	ES512:      {Name: ES512, Hash: crypto.SHA512, Curve: elliptic.P521()},
	ES256K:     {Name: ES256K, Hash: crypto.SHA256, Curve: btcec.S256(), DERSignature: true},
	EdDSA:      {Name: EdDSA, Hash: crypto.SHA256},
}

//nolint:gochecknoglobals
var canonical = buildCanonicalNames()

func buildCanonicalNames() map[string]string {
	names := make(map[string]string, len(descriptors))

	for name := range descriptors {
		names[strings.ToUpper(name)] = name
	}

	return names
}

// Resolve maps an algorithm label to its descriptor. Matching is case-insensitive.
func Resolve(label string) (Descriptor, error) {
	name, ok := canonical[strings.ToUpper(label)]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %s", ErrUnknownAlgorithm, label)
	}

	return descriptors[name], nil
}

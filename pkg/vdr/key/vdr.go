/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package key implements the did:key method: the document is derived entirely
// from the multicodec fingerprint in the DID itself, no network involved.
package key

const (
	didMethod = "key"

	ed25519VerificationKey2018 = "Ed25519VerificationKey2018"
	jsonWebKey2020             = "JsonWebKey2020"
)

// VDR implements did:key method support.
type VDR struct{}

// New returns a new instance of VDR that works with the did:key method.
func New() *VDR {
	return &VDR{}
}

// Accept accepts the did:key method.
func (v *VDR) Accept(method string) bool {
	return method == didMethod
}

// Close frees resources being maintained by the VDR.
func (v *VDR) Close() error {
	return nil
}

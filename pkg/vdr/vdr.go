/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package vdr provides the verifiable data registry: pluggable DID method
// implementations behind one resolution entry point.
package vdr

import (
	"errors"

	diddoc "github.com/identra/framework-go/pkg/doc/did"
)

// ErrNotFound is returned when a DID document is not found.
var ErrNotFound = errors.New("DID does not exist")

// VDR is the interface of a single DID method implementation.
type VDR interface {
	// Read resolves the DID into its document.
	Read(didID string) (*diddoc.Doc, error)

	// Accept reports whether this implementation handles the DID method.
	Accept(method string) bool

	// Close frees resources being maintained by the method implementation.
	Close() error
}

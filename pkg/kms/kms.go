/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package kms defines the key store surface used by the signing path.
package kms

import (
	"errors"

	"github.com/identra/framework-go/pkg/doc/jose/jwk"
)

// ErrKeyNotFound is returned when no key is stored under the requested ID.
var ErrKeyNotFound = errors.New("key not found")

// KeyStore provides access to stored private keys in JWK form.
type KeyStore interface {
	// Get returns the private JWK stored under keyID. Returns ErrKeyNotFound
	// when no key is stored under keyID.
	Get(keyID string) (*jwk.JWK, error)

	// Contains reports whether a key is stored under keyID.
	Contains(keyID string) bool
}

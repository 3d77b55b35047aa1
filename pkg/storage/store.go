/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package storage

import "errors"

// ErrDataNotFound is returned when data is not found.
var ErrDataNotFound = errors.New("data not found")

// Provider storage provider interface.
type Provider interface {
	// OpenStore opens a store with the given namespace and returns the handle.
	OpenStore(name string) (Store, error)

	// CloseStore closes the store of the given namespace.
	CloseStore(name string) error

	// Close closes all stores created under this store provider.
	Close() error
}

// Store is the storage interface.
type Store interface {
	// Put stores the key and the record.
	Put(k string, v []byte) error

	// Get fetches the record based on key. Returns ErrDataNotFound when no
	// record exists for the key.
	Get(k string) ([]byte, error)

	// Delete removes the record for the key, a no-op when none exists.
	Delete(k string) error
}

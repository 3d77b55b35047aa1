/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package localkms is a KMS implementation backed by a storage provider,
// keeping private keys as JSON Web Keys.
package localkms

import (
	"errors"
	"fmt"

	"github.com/go-jose/go-jose/v3/json"
	"github.com/google/uuid"

	"github.com/identra/framework-go/pkg/doc/jose/jwk"
	"github.com/identra/framework-go/pkg/doc/signature/signer"
	"github.com/identra/framework-go/pkg/kms"
	"github.com/identra/framework-go/pkg/storage"
)

// Namespace is the storage namespace the key store opens.
const Namespace = "kmsdb"

// LocalKeyStore persists private JWKs by key ID on top of a storage provider.
type LocalKeyStore struct {
	store storage.Store
}

// New creates a LocalKeyStore over the given storage provider.
func New(provider storage.Provider) (*LocalKeyStore, error) {
	store, err := provider.OpenStore(Namespace)
	if err != nil {
		return nil, fmt.Errorf("open kms store: %w", err)
	}

	return &LocalKeyStore{store: store}, nil
}

// Put stores the private JWK and returns its key ID. A key without an ID is
// assigned a generated one.
func (l *LocalKeyStore) Put(key *jwk.JWK) (string, error) {
	if key == nil {
		return "", errors.New("key is nil")
	}

	if key.KeyID == "" {
		key.KeyID = uuid.New().String()
	}

	keyBytes, err := json.Marshal(key)
	if err != nil {
		return "", fmt.Errorf("marshal key %s: %w", key.KeyID, err)
	}

	err = l.store.Put(key.KeyID, keyBytes)
	if err != nil {
		return "", fmt.Errorf("store key %s: %w", key.KeyID, err)
	}

	return key.KeyID, nil
}

// Get returns the private JWK stored under keyID.
func (l *LocalKeyStore) Get(keyID string) (*jwk.JWK, error) {
	keyBytes, err := l.store.Get(keyID)
	if err != nil {
		if errors.Is(err, storage.ErrDataNotFound) {
			return nil, fmt.Errorf("%w: %s", kms.ErrKeyNotFound, keyID)
		}

		return nil, fmt.Errorf("fetch key %s: %w", keyID, err)
	}

	key := &jwk.JWK{}

	err = key.UnmarshalJSON(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("unmarshal key %s: %w", keyID, err)
	}

	if key.KeyID == "" {
		key.KeyID = keyID
	}

	return key, nil
}

// Contains reports whether a key is stored under keyID.
func (l *LocalKeyStore) Contains(keyID string) bool {
	_, err := l.store.Get(keyID)

	return err == nil
}

// Remove deletes the key stored under keyID.
func (l *LocalKeyStore) Remove(keyID string) error {
	return l.store.Delete(keyID)
}

// Signer builds a signature signer for the key stored under keyID, using the
// key's algorithm label.
func (l *LocalKeyStore) Signer(keyID string) (signer.SignatureSigner, error) {
	key, err := l.Get(keyID)
	if err != nil {
		return nil, err
	}

	return signer.FromJWK(key)
}

/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package vdr

import (
	"errors"
	"fmt"
	"strings"

	diddoc "github.com/identra/framework-go/pkg/doc/did"
)

// Option is a vdr instance option.
type Option func(opts *Registry)

// Registry vdr registry.
type Registry struct {
	vdr []VDR
}

// New returns a new instance of the vdr registry.
func New(opts ...Option) *Registry {
	registry := &Registry{}

	for _, opt := range opts {
		opt(registry)
	}

	return registry
}

// Resolve resolves the DID into its document using the method implementation
// registered for the DID's method.
func (r *Registry) Resolve(did string) (*diddoc.Doc, error) {
	didMethod, err := GetDidMethod(did)
	if err != nil {
		return nil, err
	}

	method, err := r.resolveVDR(didMethod)
	if err != nil {
		return nil, err
	}

	didDoc, err := method.Read(did)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}

		return nil, fmt.Errorf("did method read failed: %w", err)
	}

	return didDoc, nil
}

// Close frees resources being maintained by the vdr.
func (r *Registry) Close() error {
	for _, v := range r.vdr {
		if err := v.Close(); err != nil {
			return fmt.Errorf("close vdr: %w", err)
		}
	}

	return nil
}

func (r *Registry) resolveVDR(method string) (VDR, error) {
	for _, v := range r.vdr {
		if v.Accept(method) {
			return v, nil
		}
	}

	return nil, fmt.Errorf("did method %s not supported for vdr", method)
}

// WithVDR adds a DID method implementation to the registry.
func WithVDR(method VDR) Option {
	return func(opts *Registry) {
		opts.vdr = append(opts.vdr, method)
	}
}

// GetDidMethod returns the method name of the DID.
func GetDidMethod(didID string) (string, error) {
	const numPartsDID = 3

	didParts := strings.Split(didID, ":")
	if len(didParts) < numPartsDID {
		return "", fmt.Errorf("wrong format did input: %s", didID)
	}

	return didParts[1], nil
}

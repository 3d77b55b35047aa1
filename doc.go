/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package framework provides building blocks for decentralized identity
// protocols: JWS signing and verification with single or multiple signatures,
// JSON Web Key handling including the secp256k1 curve, DID document parsing
// and resolution (did:key and HTTP binding), JWT issuance and validation, and
// domain linkage checks against well-known DID configuration resources.
//
// Packages for end developer usage
//
// pkg/doc/jose: JWS tokens in compact and JSON serialization, JOSE headers,
// signature verifiers.
//
// pkg/doc/jwt: signed and unsecured JSON Web Tokens on top of pkg/doc/jose.
//
// pkg/doc/did: DID document model, parsing and key lookup.
//
// pkg/vdr: DID resolution registry with did:key and HTTP binding resolvers.
//
// pkg/doc/didconfig and pkg/client/didconfig: domain linkage credential
// verification and the well-known resource client.
package framework

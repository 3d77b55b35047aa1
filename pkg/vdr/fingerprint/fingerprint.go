/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package fingerprint

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/multiformats/go-multibase"
)

// Multicodec codes of the supported public key types.
// Source: https://github.com/multiformats/multicodec/blob/master/table.csv.
const (
	// ED25519PubKeyMultiCodec ed25519 public key.
	ED25519PubKeyMultiCodec = uint64(0xed)
	// X25519PubKeyMultiCodec curve25519 key agreement key.
	X25519PubKeyMultiCodec = uint64(0xec)
	// SECP256K1PubKeyMultiCodec secp256k1 public key.
	SECP256K1PubKeyMultiCodec = uint64(0xe7)
	// P256PubKeyMultiCodec NIST P-256 public key.
	P256PubKeyMultiCodec = uint64(0x1200)
	// P384PubKeyMultiCodec NIST P-384 public key.
	P384PubKeyMultiCodec = uint64(0x1201)
	// P521PubKeyMultiCodec NIST P-521 public key.
	P521PubKeyMultiCodec = uint64(0x1202)
	// RSAPubKeyMultiCodec RSA public key.
	RSAPubKeyMultiCodec = uint64(0x1205)
)

// CreateDIDKey creates a did:key ID for an ed25519 public key using the multicodec key
// fingerprint as per the did:key format spec found at:
// https://w3c-ccg.github.io/did-method-key/#format.
func CreateDIDKey(pubKey []byte) (string, string) {
	return CreateDIDKeyByCode(ED25519PubKeyMultiCodec, pubKey)
}

// CreateDIDKeyByCode creates a did:key ID for the given multicodec code and raw public
// key bytes. It returns the DID and the key id of its single verification method.
func CreateDIDKeyByCode(code uint64, pubKey []byte) (string, string) {
	methodID := KeyFingerprint(code, pubKey)
	didKey := fmt.Sprintf("did:key:%s", methodID)
	keyID := fmt.Sprintf("%s#%s", didKey, methodID)

	return didKey, keyID
}

// KeyFingerprint generates a multibase (base58-btc) multicodec fingerprint for the raw
// public key bytes. It is used as the method-specific ID of a did:key.
func KeyFingerprint(code uint64, pubKeyValue []byte) string {
	multicodecValue := multicodec(code)
	buf := make([]byte, len(multicodecValue)+len(pubKeyValue))
	copy(buf, multicodecValue)
	copy(buf[len(multicodecValue):], pubKeyValue)

	fp, err := multibase.Encode(multibase.Base58BTC, buf)
	if err != nil {
		// Base58BTC is in the multibase encoder table, encoding cannot fail.
		panic(err)
	}

	return fp
}

func multicodec(code uint64) []byte {
	buf := make([]byte, binary.MaxVarintLen64)
	n := binary.PutUvarint(buf, code)

	return buf[:n]
}

// PubKeyFromFingerprint extracts the raw public key and its multicodec code from a
// did:key fingerprint.
func PubKeyFromFingerprint(fingerprint string) ([]byte, uint64, error) {
	encoding, decoded, err := multibase.Decode(fingerprint)
	if err != nil {
		return nil, 0, fmt.Errorf("pubKeyFromFingerprint: decode multibase: %w", err)
	}

	if encoding != multibase.Base58BTC {
		return nil, 0, fmt.Errorf("pubKeyFromFingerprint: not a base58btc multibase encoding: %c", fingerprint[0])
	}

	code, n := binary.Uvarint(decoded)
	if n <= 0 {
		return nil, 0, fmt.Errorf("pubKeyFromFingerprint: invalid multicodec prefix")
	}

	switch code {
	case ED25519PubKeyMultiCodec, X25519PubKeyMultiCodec, SECP256K1PubKeyMultiCodec,
		P256PubKeyMultiCodec, P384PubKeyMultiCodec, P521PubKeyMultiCodec, RSAPubKeyMultiCodec:
	default:
		return nil, 0, fmt.Errorf("pubKeyFromFingerprint: not supported public key (multicodec code: %#x)", code)
	}

	return decoded[n:], code, nil
}

// MethodIDFromDIDKey returns the method-specific ID of a did:key DID.
func MethodIDFromDIDKey(didKey string) (string, error) {
	const didKeyPrefix = "did:key:"

	if !strings.HasPrefix(didKey, didKeyPrefix) {
		return "", fmt.Errorf("not a did:key DID: %s", didKey)
	}

	methodID := didKey[len(didKeyPrefix):]

	// did:key is hard-coded to base58btc:
	// - https://w3c-ccg.github.io/did-method-key/
	// - https://github.com/multiformats/multibase#multibase-table
	if !strings.HasPrefix(methodID, "z") {
		return "", fmt.Errorf("not a valid did:key identifier (not a base58btc multicodec): %s", didKey)
	}

	return methodID, nil
}

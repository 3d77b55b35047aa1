/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package jwa

import (
	"errors"
	"fmt"
)

// DER signature encoding errors.
var (
	// ErrNotDEREncoded is returned when decoding input that does not start with a DER SEQUENCE marker.
	ErrNotDEREncoded = errors.New("signature is not DER encoded")
	// ErrMalformedDERMarker is returned when an inner element of a DER signature is not an INTEGER.
	ErrMalformedDERMarker = errors.New("malformed DER integer marker")
)

const (
	derSequenceMarker = 0x30
	derIntegerMarker  = 0x02
)

// EncodeSignatureDER converts a raw (r, s) ECDSA signature pair to ASN.1 DER:
// 30 LEN (02 LEN INT)(02 LEN INT). Each integer gets a leading zero byte when
// its high bit is set, to keep the DER INTEGER non-negative.
func EncodeSignatureDER(r, s []byte) []byte {
	rInt := derInteger(r)
	sInt := derInteger(s)

	body := make([]byte, 0, len(rInt)+len(sInt))
	body = append(body, rInt...)
	body = append(body, sInt...)

	der := make([]byte, 0, 2+len(body))
	der = append(der, derSequenceMarker)
	der = append(der, derLength(len(body))...)
	der = append(der, body...)

	return der
}

// DecodeSignatureDER converts an ASN.1 DER encoded ECDSA signature back to the
// raw (r, s) pair, stripping the zero padding bytes added during encoding.
func DecodeSignatureDER(der []byte) (r, s []byte, err error) {
	if len(der) < 2 || der[0] != derSequenceMarker {
		return nil, nil, ErrNotDEREncoded
	}

	body, err := derContents(der[1:])
	if err != nil {
		return nil, nil, err
	}

	r, rest, err := derReadInteger(body)
	if err != nil {
		return nil, nil, err
	}

	s, rest, err = derReadInteger(rest)
	if err != nil {
		return nil, nil, err
	}

	if len(rest) != 0 {
		return nil, nil, fmt.Errorf("%w: trailing bytes after second integer", ErrMalformedDERMarker)
	}

	return r, s, nil
}

func derInteger(value []byte) []byte {
	trimmed := trimLeadingZeros(value)

	pad := 0
	if len(trimmed) == 0 || trimmed[0]&0x80 != 0 {
		pad = 1
	}

	enc := make([]byte, 0, 2+pad+len(trimmed))
	enc = append(enc, derIntegerMarker)
	enc = append(enc, derLength(pad+len(trimmed))...)

	if pad == 1 {
		enc = append(enc, 0x00)
	}

	return append(enc, trimmed...)
}

// derLength encodes a DER length octet sequence. Lengths below 128 use the
// short form, longer values the minimal long form.
func derLength(n int) []byte {
	if n < 0x80 {
		return []byte{byte(n)}
	}

	if n <= 0xff {
		return []byte{0x81, byte(n)}
	}

	return []byte{0x82, byte(n >> 8), byte(n)} //nolint:gomnd
}

// derContents reads a DER length from the front of data and returns the value bytes.
func derContents(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, ErrNotDEREncoded
	}

	length := int(data[0])
	offset := 1

	if length&0x80 != 0 {
		numBytes := length & 0x7f
		if numBytes == 0 || numBytes > 2 || len(data) < 1+numBytes {
			return nil, ErrNotDEREncoded
		}

		length = 0
		for i := 0; i < numBytes; i++ {
			length = length<<8 | int(data[1+i])
		}

		offset += numBytes
	}

	if len(data) < offset+length {
		return nil, ErrNotDEREncoded
	}

	return data[offset : offset+length], nil
}

func derReadInteger(data []byte) (value, rest []byte, err error) {
	if len(data) < 2 {
		return nil, nil, ErrMalformedDERMarker
	}

	if data[0] != derIntegerMarker {
		return nil, nil, ErrMalformedDERMarker
	}

	length := int(data[1])
	if len(data) < 2+length {
		return nil, nil, ErrMalformedDERMarker
	}

	return trimLeadingZeros(data[2 : 2+length]), data[2+length:], nil
}

func trimLeadingZeros(b []byte) []byte {
	i := 0
	for i < len(b)-1 && b[i] == 0x00 {
		i++
	}

	return b[i:]
}

/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package jwa

import (
	"bytes"
	"encoding/asn1"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeSignatureDER(t *testing.T) {
	t.Run("matches encoding/asn1", func(t *testing.T) {
		pairs := [][2]*big.Int{
			{big.NewInt(1), big.NewInt(2)},
			{big.NewInt(127), big.NewInt(128)},
			{big.NewInt(0x8000), big.NewInt(0x7fff)},
			{
				new(big.Int).SetBytes(bytes.Repeat([]byte{0xff}, 32)),
				new(big.Int).SetBytes(bytes.Repeat([]byte{0x7f}, 32)),
			},
		}

		for _, pair := range pairs {
			expected, err := asn1.Marshal(struct {
				R *big.Int
				S *big.Int
			}{pair[0], pair[1]})
			require.NoError(t, err)

			require.Equal(t, expected, EncodeSignatureDER(pair[0].Bytes(), pair[1].Bytes()))
		}
	})

	t.Run("pads integers with high bit set", func(t *testing.T) {
		der := EncodeSignatureDER([]byte{0x80, 0x01}, []byte{0x01})

		require.Equal(t, []byte{0x30, 0x08, 0x02, 0x03, 0x00, 0x80, 0x01, 0x02, 0x01, 0x01}, der)
	})

	t.Run("strips redundant leading zeros", func(t *testing.T) {
		der := EncodeSignatureDER([]byte{0x00, 0x00, 0x01}, []byte{0x02})

		require.Equal(t, []byte{0x30, 0x06, 0x02, 0x01, 0x01, 0x02, 0x01, 0x02}, der)
	})

	t.Run("long form length", func(t *testing.T) {
		r := bytes.Repeat([]byte{0x7f}, 80)
		s := bytes.Repeat([]byte{0x7e}, 80)

		der := EncodeSignatureDER(r, s)
		require.Equal(t, byte(0x30), der[0])
		require.Equal(t, byte(0x81), der[1])

		rOut, sOut, err := DecodeSignatureDER(der)
		require.NoError(t, err)
		require.Equal(t, r, rOut)
		require.Equal(t, s, sOut)
	})
}

func TestDecodeSignatureDER(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		r := []byte{0x80, 0xaa, 0xbb}
		s := []byte{0x01, 0x02, 0x03}

		rOut, sOut, err := DecodeSignatureDER(EncodeSignatureDER(r, s))
		require.NoError(t, err)
		require.Equal(t, r, rOut)
		require.Equal(t, s, sOut)
	})

	t.Run("leading zeros come back minimized", func(t *testing.T) {
		// DER integers are minimal, so redundant leading zero bytes of the
		// input do not survive a round trip.
		rOut, sOut, err := DecodeSignatureDER(EncodeSignatureDER([]byte{0x00, 0x00, 0x7f}, []byte{0x00, 0x81}))
		require.NoError(t, err)
		require.Equal(t, []byte{0x7f}, rOut)
		require.Equal(t, []byte{0x81}, sOut)
	})

	t.Run("zero integers survive", func(t *testing.T) {
		rOut, sOut, err := DecodeSignatureDER(EncodeSignatureDER(nil, []byte{0x00}))
		require.NoError(t, err)
		require.Equal(t, []byte{0x00}, rOut)
		require.Equal(t, []byte{0x00}, sOut)
	})

	t.Run("missing sequence marker", func(t *testing.T) {
		_, _, err := DecodeSignatureDER([]byte{0x31, 0x06, 0x02, 0x01, 0x01, 0x02, 0x01, 0x02})
		require.ErrorIs(t, err, ErrNotDEREncoded)
	})

	t.Run("empty input", func(t *testing.T) {
		_, _, err := DecodeSignatureDER(nil)
		require.ErrorIs(t, err, ErrNotDEREncoded)
	})

	t.Run("inner marker is not an integer", func(t *testing.T) {
		_, _, err := DecodeSignatureDER([]byte{0x30, 0x06, 0x03, 0x01, 0x01, 0x02, 0x01, 0x02})
		require.ErrorIs(t, err, ErrMalformedDERMarker)
	})

	t.Run("second marker is not an integer", func(t *testing.T) {
		_, _, err := DecodeSignatureDER([]byte{0x30, 0x06, 0x02, 0x01, 0x01, 0x04, 0x01, 0x02})
		require.ErrorIs(t, err, ErrMalformedDERMarker)
	})

	t.Run("trailing bytes rejected", func(t *testing.T) {
		der := append(EncodeSignatureDER([]byte{0x01}, []byte{0x02}), 0x00)
		// fix outer length so only the trailing byte is at fault
		der[1]++

		_, _, err := DecodeSignatureDER(der)
		require.ErrorIs(t, err, ErrMalformedDERMarker)
	})

	t.Run("truncated body", func(t *testing.T) {
		_, _, err := DecodeSignatureDER([]byte{0x30, 0x10, 0x02, 0x01})
		require.ErrorIs(t, err, ErrNotDEREncoded)
	})
}

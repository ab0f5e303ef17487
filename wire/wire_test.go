/*
 * Copyright (c) 2018 XLAB d.o.o
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package wire_test

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fentec-project/fhcompare/fe"
	"github.com/fentec-project/fhcompare/fhvec"
	"github.com/fentec-project/fhcompare/group/ristretto"
	"github.com/fentec-project/fhcompare/wire"
)

func init() {
	wire.RegisterBackend(ristretto.New())
}

func TestCompressedSecretKey_RoundTrip(t *testing.T) {
	g := ristretto.New()
	const n = 16
	y := make([]uint16, n)
	for i := range y {
		y[i] = uint16(i % 2)
	}

	inst, err := fe.Setup(g, n, rand.Reader)
	require.NoError(t, err)
	sk, err := inst.KeyGen(y)
	require.NoError(t, err)

	w := wire.Compress(g, sk)
	data, err := w.Marshal()
	require.NoError(t, err)

	back, err := wire.UnmarshalCompressedSecretKey(data)
	require.NoError(t, err)
	sk2, err := back.Decompress()
	require.NoError(t, err)

	x := make([]uint16, n)
	for i := range x {
		x[i] = uint16((i + 1) % 2)
	}
	ct, err := inst.PublicKey().Encrypt(rand.Reader, x)
	require.NoError(t, err)

	want, ok := sk.Decrypt(ct, 2*n+1)
	require.True(t, ok)
	got, ok := sk2.Decrypt(ct, 2*n+1)
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestCompressedSecretKey_RejectsWrongLength(t *testing.T) {
	w := &wire.CompressedSecretKey{
		GroupName: "ristretto255",
		Base:      make([]byte, 32),
		Sx:        make([]byte, 32),
		Tx:        make([]byte, 32),
		XBits:     make([]byte, 1),
		N:         16,
	}
	_, err := w.Decompress()
	assert.ErrorIs(t, err, wire.ErrMalformedCompressedKey)
}

func TestPublicKeyCiphertext_RoundTrip(t *testing.T) {
	g := ristretto.New()
	inst, err := fe.Setup(g, 4, rand.Reader)
	require.NoError(t, err)

	pk := inst.PublicKey()
	wpk := wire.EncodePublicKey(pk)
	data, err := wpk.Marshal()
	require.NoError(t, err)

	back, err := wire.UnmarshalPublicKey(data)
	require.NoError(t, err)
	pk2, err := back.Decode()
	require.NoError(t, err)
	assert.Equal(t, pk.Base.Bytes(), pk2.Base.Bytes())

	x := []uint16{1, 0, 1, 1}
	ct, err := pk2.Encrypt(rand.Reader, x)
	require.NoError(t, err)

	wct := wire.EncodeCiphertext(g, ct)
	ctData, err := wct.Marshal()
	require.NoError(t, err)
	backCt, err := wire.UnmarshalCiphertext(ctData)
	require.NoError(t, err)
	ct2, err := backCt.Decode()
	require.NoError(t, err)
	assert.Equal(t, ct.C.Bytes(), ct2.C.Bytes())
}

func TestFHVector_MarshalRoundTrip(t *testing.T) {
	var digest [32]byte
	digest[0] = 0xaa
	v := fhvec.Encode(digest)
	w := wire.EncodeFHVector(v)

	data, err := w.MarshalCBOR()
	require.NoError(t, err)

	var back wire.FHVector
	require.NoError(t, back.UnmarshalCBOR(data))

	bits, err := back.Decode()
	require.NoError(t, err)
	assert.Equal(t, []uint16(v.V), bits)
}

func TestEncryptionResponse_EndOfComparisonRoundTrip(t *testing.T) {
	w := wire.EndOfComparison()
	data, err := w.MarshalCBOR()
	require.NoError(t, err)

	var back wire.EncryptionResponse
	require.NoError(t, back.UnmarshalCBOR(data))
	assert.Equal(t, wire.EncryptionResponseEnd, back.Kind)
	assert.Nil(t, back.Ciphertext)
}

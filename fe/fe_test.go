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

package fe_test

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fentec-project/fhcompare/fe"
	"github.com/fentec-project/fhcompare/group"
	"github.com/fentec-project/fhcompare/group/modp"
	"github.com/fentec-project/fhcompare/group/ristretto"
)

type fETestParam struct {
	name    string
	backend group.Group
}

func backends() []fETestParam {
	return []fETestParam{
		{name: "ristretto255", backend: ristretto.New()},
		{name: "modp-group15", backend: modp.New()},
	}
}

func testCorrectness(t *testing.T, backend group.Group) {
	const n = 8
	x := []uint16{1, 0, 1, 1, 0, 0, 1, 1}
	y := []uint16{1, 1, 1, 0, 0, 1, 1, 0}
	var want uint16
	for i := range x {
		want += x[i] * y[i]
	}

	inst, err := fe.Setup(backend, n, rand.Reader)
	require.NoError(t, err)

	sk, err := inst.KeyGen(y)
	require.NoError(t, err)

	ct, err := inst.PublicKey().Encrypt(rand.Reader, x)
	require.NoError(t, err)

	got, ok := sk.Decrypt(ct, uint16(2*n+1))
	assert.True(t, ok)
	assert.Equal(t, want, got)
}

func TestFE_Correctness(t *testing.T) {
	for _, param := range backends() {
		param := param
		t.Run(param.name, func(t *testing.T) {
			testCorrectness(t, param.backend)
		})
	}
}

func testBoundExceeded(t *testing.T, backend group.Group) {
	const n = 4
	x := []uint16{1, 1, 1, 1}
	y := []uint16{1, 1, 1, 1}

	inst, err := fe.Setup(backend, n, rand.Reader)
	require.NoError(t, err)

	sk, err := inst.KeyGen(y)
	require.NoError(t, err)

	ct, err := inst.PublicKey().Encrypt(rand.Reader, x)
	require.NoError(t, err)

	_, ok := sk.Decrypt(ct, 2)
	assert.False(t, ok)
}

func TestFE_BoundExceeded(t *testing.T) {
	for _, param := range backends() {
		param := param
		t.Run(param.name, func(t *testing.T) {
			testBoundExceeded(t, param.backend)
		})
	}
}

// PublicKey has no scalar fields, so the master secret cannot travel in
// it by construction; this test checks that the projection carries
// exactly the instance's public fields g, h and mpk.
func TestFE_PublicKeyHidesMasterSecret(t *testing.T) {
	inst, err := fe.Setup(ristretto.New(), 4, rand.Reader)
	require.NoError(t, err)

	pk := inst.PublicKey()
	assert.Equal(t, inst.Base, pk.Base)
	assert.Equal(t, inst.Base2, pk.Base2)
	assert.Equal(t, inst.Mpk, pk.Mpk)
}

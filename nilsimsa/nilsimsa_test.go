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

package nilsimsa_test

import (
	"math/bits"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fentec-project/fhcompare/nilsimsa"
)

func hammingDistance(a, b [nilsimsa.Size]byte) int {
	d := 0
	for i := range a {
		d += bits.OnesCount8(a[i] ^ b[i])
	}
	return d
}

func TestNilsimsa_Deterministic(t *testing.T) {
	h1 := nilsimsa.New()
	h1.Write([]byte("the quick brown fox jumps over the lazy dog"))
	d1 := h1.Sum()

	h2 := nilsimsa.New()
	h2.Write([]byte("the quick brown fox jumps over the lazy dog"))
	d2 := h2.Sum()

	assert.Equal(t, d1, d2)
}

func TestNilsimsa_IncrementalWriteMatchesSinglePass(t *testing.T) {
	text := "the quick brown fox jumps over the lazy dog"

	h1 := nilsimsa.New()
	h1.Write([]byte(text))
	whole := h1.Sum()

	h2 := nilsimsa.New()
	for i := 0; i < len(text); i++ {
		h2.Write([]byte{text[i]})
	}
	chunked := h2.Sum()

	assert.Equal(t, whole, chunked)
}

func TestNilsimsa_SimilarInputsAreCloser(t *testing.T) {
	base := nilsimsa.New()
	base.Write([]byte("the quick brown fox jumps over the lazy dog, a common pangram"))
	d1 := base.Sum()

	similar := nilsimsa.New()
	similar.Write([]byte("the quick brown fox jumps over the lazy dog, a common pangram!"))
	d2 := similar.Sum()

	different := nilsimsa.New()
	different.Write([]byte("completely unrelated text about quarterly revenue projections"))
	d3 := different.Sum()

	assert.Less(t, hammingDistance(d1, d2), hammingDistance(d1, d3))
}

func TestNilsimsa_Reset(t *testing.T) {
	h := nilsimsa.New()
	h.Write([]byte("some data"))
	h.Reset()
	h.Write([]byte("other data"))

	fresh := nilsimsa.New()
	fresh.Write([]byte("other data"))

	assert.Equal(t, fresh.Sum(), h.Sum())
}

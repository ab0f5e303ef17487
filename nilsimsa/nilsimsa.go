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

// Package nilsimsa implements the classic locality-sensitive hash of
// the same name: a sliding window of the last five bytes produces
// eight overlapping trigrams per byte, each folded through a fixed
// substitution table into one of 256 accumulator bins; the final
// digest sets bit i whenever accumulator i exceeds the mean
// accumulator value. Two inputs differing in only a few bytes produce
// digests differing in only a few bits, which is what makes the
// resulting Hamming distance meaningful as a similarity measure.
//
// This is a stable, specified byte-oriented hash rather than a
// cryptographic primitive, so it is implemented directly against the
// published algorithm rather than grounded on a third-party
// dependency (see DESIGN.md). The substitution table below is this
// package's own fixed permutation, not a transcription of any
// particular reference implementation's table — nothing in the
// scheme requires interoperating with another nilsimsa
// implementation bit-for-bit, only that both parties run the same
// deterministic function.
package nilsimsa

// Size is the digest length in bytes (256 bits).
const Size = 32

// substitution is a fixed permutation of the byte range, mixed into
// every trigram before it selects an accumulator bin.
var substitution [256]byte

func init() {
	// A fixed, reproducible permutation: start from the identity and
	// perturb it with a multiplicative congruential step coprime to
	// 256, so every byte value still appears exactly once.
	for i := 0; i < 256; i++ {
		substitution[i] = byte((i*167 + 41) & 0xff)
	}
}

// Nilsimsa accumulates a locality-sensitive digest incrementally,
// shaped like hash.Hash minus the generic Sum/BlockSize ceremony this
// package has no use for.
type Nilsimsa struct {
	acc    [256]int
	window [4]byte
	seen   int // number of bytes written so far, capped for window bookkeeping
	count  int // number of trigrams accumulated
}

// New returns a fresh, empty digest accumulator.
func New() *Nilsimsa {
	return &Nilsimsa{}
}

// Reset clears accumulated state, so the accumulator can be reused.
func (n *Nilsimsa) Reset() {
	*n = Nilsimsa{}
}

func tran3(a, b, c byte, n int) byte {
	return substitution[(substitution[(substitution[(a+byte(n))&0xff]^b)&0xff]^c)&0xff]
}

// Write feeds len(p) bytes into the accumulator. It never fails.
func (n *Nilsimsa) Write(p []byte) (int, error) {
	for _, c0 := range p {
		if n.seen >= 2 {
			w1, w2, w3, w4 := n.window[0], n.window[1], n.window[2], n.window[3]
			n.acc[tran3(c0, w1, w2, 0)]++
			n.acc[tran3(c0, w1, w3, 1)]++
			n.acc[tran3(c0, w2, w3, 2)]++
			n.acc[tran3(c0, w1, w4, 3)]++
			n.acc[tran3(c0, w2, w4, 4)]++
			n.acc[tran3(c0, w3, w4, 5)]++
			n.acc[tran3(w1, w4, c0, 6)]++
			n.acc[tran3(w4, w1, c0, 7)]++
			n.count += 8
		}
		n.window[3] = n.window[2]
		n.window[2] = n.window[1]
		n.window[1] = n.window[0]
		n.window[0] = c0
		if n.seen < 4 {
			n.seen++
		}
	}
	return len(p), nil
}

// Sum returns the 256-bit digest accumulated so far: bit i (MSB first
// within each byte) is 1 whenever accumulator i is strictly above the
// mean accumulator value.
func (n *Nilsimsa) Sum() [Size]byte {
	var threshold int
	if n.count > 0 {
		threshold = n.count / 256
	}

	var digest [Size]byte
	for i := 0; i < 256; i++ {
		if n.acc[i] > threshold {
			digest[i/8] |= 1 << (7 - uint(i%8))
		}
	}
	return digest
}

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

// Package dlog brute-forces a bounded discrete logarithm over any
// group.Group backend by the obvious increment-and-compare approach,
// generalized away from *big.Int so it works identically for the
// Ristretto and modp backends.
package dlog

import "github.com/fentec-project/fhcompare/group"

// BruteForce searches for the smallest i in [0, bound) such that i*base
// (base added to itself i times) equals target. It returns (i, true)
// on a match, or (0, false) once i reaches bound without finding one —
// an expected "inner product at or beyond the caller's budget"
// outcome, not an error.
func BruteForce(g group.Group, base, target group.Element, bound uint16) (uint16, bool) {
	p := g.Identity()
	if bound > 0 && p.Equal(target) {
		return 0, true
	}
	for i := uint16(1); i < bound; i++ {
		p = p.Add(base)
		if p.Equal(target) {
			return i, true
		}
	}
	return 0, false
}

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

// Package fe implements the two-generator DDH inner-product functional
// encryption scheme of Abdalla, Bourse, De Caro, and Pointcheval:
// "Simple Functional Encryption Schemes for Inner Products", generic
// over any group.Group backend rather than tied to one fixed curve.
package fe

import (
	"fmt"
	"io"

	"github.com/fentec-project/fhcompare/fe/dlog"
	"github.com/fentec-project/fhcompare/group"
)

// MskItem is one (s_i, t_i) pair of the master secret key.
type MskItem struct {
	S, T group.Scalar
}

// Instance is the server-side master state produced by Setup. It lives
// per authority-compute interaction (one per batch): created at Setup,
// consumed to derive one PublicKey and a batch of SecretKeys, then
// discarded.
type Instance struct {
	G      group.Group
	Base   group.Element // g
	Base2  group.Element // h
	Msk    []MskItem
	Mpk    []group.Element
}

// PublicKey is the wire-safe projection of an Instance. It contains no
// scalars.
type PublicKey struct {
	G     group.Group
	Base  group.Element
	Base2 group.Element
	Mpk   []group.Element
}

// SecretKey is the functional decryption key derived for a fixed vector
// y. It is needed, vector and all, at decryption time.
type SecretKey struct {
	G    group.Group
	Base group.Element
	Sx   group.Scalar
	Tx   group.Scalar
	X    []uint16
}

// Ciphertext encrypts a vector x under a PublicKey.
type Ciphertext struct {
	C group.Element
	D group.Element
	E []group.Element
}

// Setup samples g, h uniformly in G, then for each of n coordinates
// samples (s_i, t_i) uniformly in the scalar field and computes
// mpk_i = g^{s_i} * h^{t_i}. The only failure mode is the rng itself
// running dry.
func Setup(g group.Group, n int, rng io.Reader) (*Instance, error) {
	base, err := g.RandomElement(rng)
	if err != nil {
		return nil, fmt.Errorf("fe: failed to sample base generator: %w", err)
	}
	base2, err := g.RandomElement(rng)
	if err != nil {
		return nil, fmt.Errorf("fe: failed to sample second generator: %w", err)
	}

	msk := make([]MskItem, n)
	mpk := make([]group.Element, n)
	for i := 0; i < n; i++ {
		s, err := g.RandomScalar(rng)
		if err != nil {
			return nil, fmt.Errorf("fe: failed to sample s_%d: %w", i, err)
		}
		t, err := g.RandomScalar(rng)
		if err != nil {
			return nil, fmt.Errorf("fe: failed to sample t_%d: %w", i, err)
		}
		msk[i] = MskItem{S: s, T: t}
		mpk[i] = g.ScalarMult(base, s).Add(g.ScalarMult(base2, t))
	}

	return &Instance{
		G:     g,
		Base:  base,
		Base2: base2,
		Msk:   msk,
		Mpk:   mpk,
	}, nil
}

// PublicKey projects the Instance down to its publishable fields.
func (inst *Instance) PublicKey() *PublicKey {
	return &PublicKey{
		G:     inst.G,
		Base:  inst.Base,
		Base2: inst.Base2,
		Mpk:   inst.Mpk,
	}
}

// KeyGen derives the functional key for vector y, computing
// sx = Sum s_i*y_i and tx = Sum t_i*y_i over the group's scalar field.
// On the safe-prime backend these accumulate as unbounded naturals,
// never reduced modulo the subgroup order here — only the downstream
// exponentiation folds them back into the group (see DESIGN.md's open
// question on scalar reduction).
func (inst *Instance) KeyGen(y []uint16) (*SecretKey, error) {
	if len(y) != len(inst.Msk) {
		return nil, fmt.Errorf("fe: vector length %d does not match instance length %d", len(y), len(inst.Msk))
	}

	sx := inst.G.ScalarFromUint16(0)
	tx := inst.G.ScalarFromUint16(0)
	for i, yi := range y {
		yiScalar := inst.G.ScalarFromUint16(yi)
		sx = sx.Add(inst.Msk[i].S.Mul(yiScalar))
		tx = tx.Add(inst.Msk[i].T.Mul(yiScalar))
	}

	x := make([]uint16, len(y))
	copy(x, y)

	return &SecretKey{
		G:    inst.G,
		Base: inst.Base,
		Sx:   sx,
		Tx:   tx,
		X:    x,
	}, nil
}

// Encrypt samples fresh r, computes c = g^r, d = h^r, and
// e_i = g^{x_i} * mpk_i^r. r is never retained.
func (pk *PublicKey) Encrypt(rng io.Reader, x []uint16) (*Ciphertext, error) {
	if len(x) != len(pk.Mpk) {
		return nil, fmt.Errorf("fe: vector length %d does not match public key length %d", len(x), len(pk.Mpk))
	}

	r, err := pk.G.RandomScalar(rng)
	if err != nil {
		return nil, fmt.Errorf("fe: failed to sample encryption randomness: %w", err)
	}

	c := pk.G.ScalarMult(pk.Base, r)
	d := pk.G.ScalarMult(pk.Base2, r)

	e := make([]group.Element, len(x))
	for i, xi := range x {
		gxi := pk.G.ScalarMult(pk.Base, pk.G.ScalarFromUint16(xi))
		mpkiR := pk.G.ScalarMult(pk.Mpk[i], r)
		e[i] = gxi.Add(mpkiR)
	}

	return &Ciphertext{C: c, D: d, E: e}, nil
}

// Decrypt computes E = (Sum y_i*e_i) - sx*c - tx*d, then brute-forces
// the discrete log of E base g up to bound. It returns (0, false) when
// no exponent below bound matches — an expected outcome (inner product
// at or above the caller's budget), never a Go error.
func (sk *SecretKey) Decrypt(ct *Ciphertext, bound uint16) (uint16, bool) {
	scalars := make([]group.Scalar, 0, len(sk.X)+2)
	points := make([]group.Element, 0, len(sk.X)+2)

	for i, xi := range sk.X {
		scalars = append(scalars, sk.G.ScalarFromUint16(xi))
		points = append(points, ct.E[i])
	}
	scalars = append(scalars, sk.Sx.Neg(), sk.Tx.Neg())
	points = append(points, ct.C, ct.D)

	e := sk.G.MultiScalarMult(scalars, points)

	return dlog.BruteForce(sk.G, sk.Base, e, bound)
}

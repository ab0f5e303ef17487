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

// Package modp implements the group.Group interface over the
// multiplicative subgroup of (Z/pZ)*, p the RFC 3526 "group 15"
// 3072-bit MODP prime. Fq is approximated here by Z/(p-2)Z rather than
// the true subgroup order (p-1)/2 (see DESIGN.md's open question).
// Scalar accumulation is never reduced; only exponentiation folds a
// scalar back into the group via modular exponentiation, a delayed-
// reduction discipline that avoids computing the subgroup order.
package modp

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"

	"github.com/fentec-project/fhcompare/group"
)

var (
	modulus *big.Int
	two     = big.NewInt(2)
)

func init() {
	modulus = new(big.Int)
	if _, ok := modulus.SetString(modpGroup15Hex, 16); !ok {
		panic("modp: failed to parse RFC 3526 group 15 prime")
	}
}

// Backend is the safe-prime multiplicative-subgroup group.Group
// implementation.
type Backend struct{}

// New returns the RFC 3526 group-15 backend.
func New() group.Group {
	return Backend{}
}

func (Backend) Name() string { return "modp-rfc3526-group15" }

func (Backend) ElementSize() int { return (modulus.BitLen() + 7) / 8 }

// ScalarSize reports the modulus length in bytes. Scalar encodings of
// this backend are variable-length sign-magnitude (one sign byte plus
// the magnitude, see scalar.Bytes) and are not padded to this size.
func (Backend) ScalarSize() int { return (modulus.BitLen() + 7) / 8 }

type element struct{ v *big.Int }

type scalar struct{ v *big.Int }

// modExp computes g^x mod modulus, handling negative x via a modular
// inverse of the positive-exponent result.
func modExp(g, x *big.Int) *big.Int {
	ret := new(big.Int)
	if x.Sign() < 0 {
		xAbs := new(big.Int).Neg(x)
		ret.Exp(g, xAbs, modulus)
		ret.ModInverse(ret, modulus)
	} else {
		ret.Exp(g, x, modulus)
	}
	return ret
}

func (e element) Add(other group.Element) group.Element {
	o := other.(element)
	return element{new(big.Int).Mod(new(big.Int).Mul(e.v, o.v), modulus)}
}

func (e element) Sub(other group.Element) group.Element {
	o := other.(element)
	inv := new(big.Int).ModInverse(o.v, modulus)
	return element{new(big.Int).Mod(new(big.Int).Mul(e.v, inv), modulus)}
}

func (e element) Equal(other group.Element) bool {
	o := other.(element)
	return e.v.Cmp(o.v) == 0
}

func (e element) Bytes() []byte {
	return e.v.FillBytes(make([]byte, Backend{}.ElementSize()))
}

func (s scalar) Add(other group.Scalar) group.Scalar {
	o := other.(scalar)
	return scalar{new(big.Int).Add(s.v, o.v)}
}

func (s scalar) Mul(other group.Scalar) group.Scalar {
	o := other.(scalar)
	return scalar{new(big.Int).Mul(s.v, o.v)}
}

func (s scalar) Neg() group.Scalar {
	return scalar{new(big.Int).Neg(s.v)}
}

func (s scalar) Bytes() []byte {
	// Scalars here are unreduced naturals (possibly negative); encode
	// sign-magnitude so DecodeScalar can round-trip them exactly.
	sign := byte(0)
	mag := s.v
	if s.v.Sign() < 0 {
		sign = 1
		mag = new(big.Int).Neg(s.v)
	}
	out := make([]byte, 1+len(mag.Bytes()))
	out[0] = sign
	mag.FillBytes(out[1:])
	return out
}

// rejectionSample draws a uniform value in [2, modulus) without bias,
// used for both the group-element and scalar roles of this backend.
func rejectionSample(rng io.Reader) (*big.Int, error) {
	span := new(big.Int).Sub(modulus, two)
	for {
		n, err := rand.Int(rng, span)
		if err != nil {
			return nil, fmt.Errorf("modp: failed to draw randomness: %w", err)
		}
		return n.Add(n, two), nil
	}
}

func (b Backend) RandomElement(rng io.Reader) (group.Element, error) {
	v, err := rejectionSample(rng)
	if err != nil {
		return nil, err
	}
	return element{v}, nil
}

func (b Backend) RandomScalar(rng io.Reader) (group.Scalar, error) {
	v, err := rejectionSample(rng)
	if err != nil {
		return nil, err
	}
	return scalar{v}, nil
}

func (b Backend) ScalarBaseMult(a group.Scalar) group.Element {
	s := a.(scalar)
	return element{modExp(baseGenerator, s.v)}
}

func (b Backend) ScalarMult(p group.Element, a group.Scalar) group.Element {
	e := p.(element)
	s := a.(scalar)
	return element{modExp(e.v, s.v)}
}

func (b Backend) MultiScalarMult(scalars []group.Scalar, points []group.Element) group.Element {
	acc := big.NewInt(1)
	for i, s := range scalars {
		p := points[i].(element)
		sc := s.(scalar)
		acc.Mod(acc.Mul(acc, modExp(p.v, sc.v)), modulus)
	}
	return element{acc}
}

func (b Backend) Identity() group.Element {
	return element{big.NewInt(1)}
}

func (b Backend) DecodeElement(data []byte) (group.Element, error) {
	v := new(big.Int).SetBytes(data)
	if v.Cmp(modulus) >= 0 || v.Sign() < 0 {
		return nil, fmt.Errorf("modp: element out of range")
	}
	return element{v}, nil
}

func (b Backend) DecodeScalar(data []byte) (group.Scalar, error) {
	if len(data) < 1 {
		return nil, fmt.Errorf("modp: truncated scalar encoding")
	}
	mag := new(big.Int).SetBytes(data[1:])
	if data[0] == 1 {
		mag.Neg(mag)
	} else if data[0] != 0 {
		return nil, fmt.Errorf("modp: malformed scalar sign byte")
	}
	return scalar{mag}, nil
}

func (b Backend) ScalarFromUint16(x uint16) group.Scalar {
	return scalar{big.NewInt(int64(x))}
}

// baseGenerator is the fixed base ScalarBaseMult exponentiates: 2, the
// group-15 standard generator. The g, h pair used by a scheme instance
// always comes from two independent RandomElement draws (see
// fe.Setup), never from this value.
var baseGenerator = two

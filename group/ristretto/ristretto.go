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

// Package ristretto implements the group.Group interface over the
// Ristretto255 prime-order group (Curve25519), the preferred backend
// for new deployments. It is the 128-bit-security elliptic-curve
// instantiation, the Go analogue of a curve25519-dalek RistrettoPoint
// backend.
package ristretto

import (
	"fmt"
	"io"

	r255 "github.com/gtank/ristretto255"

	"github.com/fentec-project/fhcompare/group"
)

const (
	elementSize = 32
	scalarSize  = 32
	// uniformBytesSize is how much entropy FromUniformBytes needs to
	// map onto a scalar/element without bias.
	uniformBytesSize = 64
)

// Backend is the Ristretto255 group.Group implementation.
type Backend struct{}

// New returns the Ristretto255 backend.
func New() group.Group {
	return Backend{}
}

func (Backend) Name() string { return "ristretto255" }

func (Backend) ElementSize() int { return elementSize }
func (Backend) ScalarSize() int  { return scalarSize }

type element struct{ p *r255.Element }

type scalar struct{ s *r255.Scalar }

func (e element) Add(other group.Element) group.Element {
	o := other.(element)
	return element{r255.NewElement().Add(e.p, o.p)}
}

func (e element) Sub(other group.Element) group.Element {
	o := other.(element)
	return element{r255.NewElement().Subtract(e.p, o.p)}
}

func (e element) Equal(other group.Element) bool {
	o := other.(element)
	return e.p.Equal(o.p) == 1
}

func (e element) Bytes() []byte {
	return e.p.Encode(nil)
}

func (s scalar) Add(other group.Scalar) group.Scalar {
	o := other.(scalar)
	return scalar{r255.NewScalar().Add(s.s, o.s)}
}

func (s scalar) Mul(other group.Scalar) group.Scalar {
	o := other.(scalar)
	return scalar{r255.NewScalar().Multiply(s.s, o.s)}
}

func (s scalar) Neg() group.Scalar {
	return scalar{r255.NewScalar().Negate(s.s)}
}

func (s scalar) Bytes() []byte {
	return s.s.Encode(nil)
}

func randomUniformBytes(rng io.Reader) ([]byte, error) {
	buf := make([]byte, uniformBytesSize)
	if _, err := io.ReadFull(rng, buf); err != nil {
		return nil, fmt.Errorf("ristretto: failed to draw randomness: %w", err)
	}
	return buf, nil
}

// RandomElement samples a uniform group element. Rather than rely on
// a hash-to-curve routine, it draws a uniform scalar and multiplies by
// the fixed Ristretto base point; since the group has prime order,
// this is a bijection between uniform scalars and uniform elements,
// and the scalar is discarded immediately (no one retains a known
// discrete log of the result relative to the base point).
func (b Backend) RandomElement(rng io.Reader) (group.Element, error) {
	buf, err := randomUniformBytes(rng)
	if err != nil {
		return nil, err
	}
	s := r255.NewScalar().FromUniformBytes(buf)
	return element{r255.NewElement().ScalarBaseMult(s)}, nil
}

func (b Backend) RandomScalar(rng io.Reader) (group.Scalar, error) {
	buf, err := randomUniformBytes(rng)
	if err != nil {
		return nil, err
	}
	return scalar{r255.NewScalar().FromUniformBytes(buf)}, nil
}

func (b Backend) ScalarBaseMult(a group.Scalar) group.Element {
	s := a.(scalar)
	return element{r255.NewElement().ScalarBaseMult(s.s)}
}

func (b Backend) ScalarMult(p group.Element, a group.Scalar) group.Element {
	e := p.(element)
	s := a.(scalar)
	return element{r255.NewElement().ScalarMult(s.s, e.p)}
}

func (b Backend) MultiScalarMult(scalars []group.Scalar, points []group.Element) group.Element {
	ss := make([]*r255.Scalar, len(scalars))
	pp := make([]*r255.Element, len(points))
	for i, s := range scalars {
		ss[i] = s.(scalar).s
	}
	for i, p := range points {
		pp[i] = p.(element).p
	}
	return element{r255.NewElement().VarTimeMultiscalarMult(ss, pp)}
}

func (b Backend) Identity() group.Element {
	return element{r255.NewElement().Zero()}
}

func (b Backend) DecodeElement(data []byte) (group.Element, error) {
	p := r255.NewElement()
	if err := p.Decode(data); err != nil {
		return nil, fmt.Errorf("ristretto: %w", err)
	}
	return element{p}, nil
}

func (b Backend) DecodeScalar(data []byte) (group.Scalar, error) {
	s := r255.NewScalar()
	if err := s.Decode(data); err != nil {
		return nil, fmt.Errorf("ristretto: %w", err)
	}
	return scalar{s}, nil
}

func (b Backend) ScalarFromUint16(x uint16) group.Scalar {
	buf := make([]byte, uniformBytesSize)
	buf[0] = byte(x)
	buf[1] = byte(x >> 8)
	return scalar{r255.NewScalar().FromUniformBytes(buf)}
}

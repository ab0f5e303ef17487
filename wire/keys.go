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

// Package wire carries the canonical CBOR serialization of the FE
// primitive's public types (PublicKey, Ciphertext, SecretKey,
// CompressedSecretKey) and the protocol's message catalog: a compact
// binary format. Tagged unions are encoded as CBOR arrays led by their
// discriminant, 0-based in declaration order: EncryptionResponse as
// [discriminant, payload], FHVector as [discriminant, bits, n].
package wire

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/fentec-project/fhcompare/fe"
	"github.com/fentec-project/fhcompare/fhvec"
	"github.com/fentec-project/fhcompare/group"
)

// PublicKey is the wire form of fe.PublicKey. GroupName ties the
// encoded bytes to the backend that must decode them.
type PublicKey struct {
	GroupName string
	Base      []byte
	Base2     []byte
	Mpk       [][]byte
}

// EncodePublicKey projects an fe.PublicKey into its wire form.
func EncodePublicKey(pk *fe.PublicKey) *PublicKey {
	mpk := make([][]byte, len(pk.Mpk))
	for i, m := range pk.Mpk {
		mpk[i] = m.Bytes()
	}
	return &PublicKey{
		GroupName: pk.G.Name(),
		Base:      pk.Base.Bytes(),
		Base2:     pk.Base2.Bytes(),
		Mpk:       mpk,
	}
}

// Decode reconstructs an fe.PublicKey, resolving the group backend
// from GroupName via the package registry.
func (w *PublicKey) Decode() (*fe.PublicKey, error) {
	g, err := lookupBackend(w.GroupName)
	if err != nil {
		return nil, err
	}
	base, err := g.DecodeElement(w.Base)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPublicKey, err)
	}
	base2, err := g.DecodeElement(w.Base2)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPublicKey, err)
	}
	mpk := make([]group.Element, len(w.Mpk))
	for i, m := range w.Mpk {
		el, err := g.DecodeElement(m)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedPublicKey, err)
		}
		mpk[i] = el
	}
	return &fe.PublicKey{G: g, Base: base, Base2: base2, Mpk: mpk}, nil
}

// Marshal encodes the public key as CBOR.
func (w *PublicKey) Marshal() ([]byte, error) {
	return cbor.Marshal(w)
}

// UnmarshalPublicKey decodes a CBOR-encoded PublicKey.
func UnmarshalPublicKey(data []byte) (*PublicKey, error) {
	var w PublicKey
	if err := cbor.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPublicKey, err)
	}
	return &w, nil
}

// Ciphertext is the wire form of fe.Ciphertext.
type Ciphertext struct {
	GroupName string
	C         []byte
	D         []byte
	E         [][]byte
}

// EncodeCiphertext projects an fe.Ciphertext into its wire form.
func EncodeCiphertext(g group.Group, ct *fe.Ciphertext) *Ciphertext {
	e := make([][]byte, len(ct.E))
	for i, el := range ct.E {
		e[i] = el.Bytes()
	}
	return &Ciphertext{
		GroupName: g.Name(),
		C:         ct.C.Bytes(),
		D:         ct.D.Bytes(),
		E:         e,
	}
}

// Decode reconstructs an fe.Ciphertext.
func (w *Ciphertext) Decode() (*fe.Ciphertext, error) {
	g, err := lookupBackend(w.GroupName)
	if err != nil {
		return nil, err
	}
	c, err := g.DecodeElement(w.C)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCiphertext, err)
	}
	d, err := g.DecodeElement(w.D)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCiphertext, err)
	}
	e := make([]group.Element, len(w.E))
	for i, el := range w.E {
		decoded, err := g.DecodeElement(el)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedCiphertext, err)
		}
		e[i] = decoded
	}
	return &fe.Ciphertext{C: c, D: d, E: e}, nil
}

func (w *Ciphertext) Marshal() ([]byte, error) {
	return cbor.Marshal(w)
}

func UnmarshalCiphertext(data []byte) (*Ciphertext, error) {
	var w Ciphertext
	if err := cbor.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCiphertext, err)
	}
	return &w, nil
}

// CompressedSecretKey is the bandwidth-saving wire form of a SecretKey
// whose vector is restricted to {0,1}^N: x packs into ceil(N/8) bytes.
type CompressedSecretKey struct {
	GroupName string
	Base      []byte
	Sx        []byte
	Tx        []byte
	XBits     []byte
	N         int
}

// Compress packs sk's bit vector and canonical element/scalar
// encodings into the wire-efficient CompressedSecretKey form.
func Compress(g group.Group, sk *fe.SecretKey) *CompressedSecretKey {
	return &CompressedSecretKey{
		GroupName: g.Name(),
		Base:      sk.Base.Bytes(),
		Sx:        sk.Sx.Bytes(),
		Tx:        sk.Tx.Bytes(),
		XBits:     fhvec.Pack(sk.X),
		N:         len(sk.X),
	}
}

// Decompress rejects a byte length != ceil(N/8) or a group element
// that fails to decode, per the key-compression invariants.
func (w *CompressedSecretKey) Decompress() (*fe.SecretKey, error) {
	g, err := lookupBackend(w.GroupName)
	if err != nil {
		return nil, err
	}
	if len(w.XBits) != (w.N+7)/8 {
		return nil, ErrMalformedCompressedKey
	}
	base, err := g.DecodeElement(w.Base)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCompressedKey, err)
	}
	sx, err := g.DecodeScalar(w.Sx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCompressedKey, err)
	}
	tx, err := g.DecodeScalar(w.Tx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCompressedKey, err)
	}
	x, err := fhvec.Unpack(w.XBits, w.N)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCompressedKey, err)
	}
	return &fe.SecretKey{G: g, Base: base, Sx: sx, Tx: tx, X: x}, nil
}

func (w *CompressedSecretKey) Marshal() ([]byte, error) {
	return cbor.Marshal(w)
}

func UnmarshalCompressedSecretKey(data []byte) (*CompressedSecretKey, error) {
	var w CompressedSecretKey
	if err := cbor.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCompressedKey, err)
	}
	return &w, nil
}

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

package wire

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/fentec-project/fhcompare/fhvec"
)

// FHVector discriminants. NilsimsaVector is the only variant in v1;
// the tagged-union shape leaves room for future hash families.
const (
	FHVectorNilsimsa = 0
)

// FHVector is the wire form of a fhvec.FHVector. Bits holds the
// packed, MSB-first encoding produced by fhvec.Pack — the same
// self-consistent packed form used everywhere else a bit vector
// crosses the wire (see DESIGN.md's note on this choice).
type FHVector struct {
	Kind int
	Bits []byte
	N    int
}

// EncodeFHVector packs a fhvec.Nilsimsa vector for the wire.
func EncodeFHVector(v fhvec.Nilsimsa) FHVector {
	return FHVector{Kind: FHVectorNilsimsa, Bits: fhvec.Pack(v.V), N: len(v.V)}
}

// Decode unpacks the wire form back into the bit-vector coordinates fe
// expects.
func (w FHVector) Decode() ([]uint16, error) {
	if w.Kind != FHVectorNilsimsa {
		return nil, fmt.Errorf("%w: fhvector kind %d", ErrUnknownUnionDiscriminant, w.Kind)
	}
	bits, err := fhvec.Unpack(w.Bits, w.N)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFHVector, err)
	}
	return bits, nil
}

// MarshalCBOR encodes the tagged union as a [discriminant, bits, n]
// array, matching postcard's discriminant-first convention.
func (w FHVector) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal([]interface{}{w.Kind, w.Bits, w.N})
}

// UnmarshalCBOR decodes the [discriminant, bits, n] array form.
func (w *FHVector) UnmarshalCBOR(data []byte) error {
	var raw []cbor.RawMessage
	if err := cbor.Unmarshal(data, &raw); err != nil || len(raw) != 3 {
		return fmt.Errorf("%w: malformed tagged-union array", ErrMalformedFHVector)
	}
	if err := cbor.Unmarshal(raw[0], &w.Kind); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedFHVector, err)
	}
	if err := cbor.Unmarshal(raw[1], &w.Bits); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedFHVector, err)
	}
	if err := cbor.Unmarshal(raw[2], &w.N); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedFHVector, err)
	}
	return nil
}

// GenerateInstanceRequest is the authority-bound batch of reference
// vectors compute asks an FE instance to be generated for.
type GenerateInstanceRequest struct {
	Vectors []FHVector
}

func (m *GenerateInstanceRequest) Marshal() ([]byte, error) { return cbor.Marshal(m) }

func UnmarshalGenerateInstanceRequest(data []byte) (*GenerateInstanceRequest, error) {
	var m GenerateInstanceRequest
	if err := cbor.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFHVector, err)
	}
	return &m, nil
}

// GenerateInstanceResponse answers a GenerateInstanceRequest with one
// PublicKey and one CompressedSecretKey per requested vector.
type GenerateInstanceResponse struct {
	PK   PublicKey
	Keys []CompressedSecretKey
}

func (m *GenerateInstanceResponse) Marshal() ([]byte, error) { return cbor.Marshal(m) }

func UnmarshalGenerateInstanceResponse(data []byte) (*GenerateInstanceResponse, error) {
	var m GenerateInstanceResponse
	if err := cbor.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPublicKey, err)
	}
	return &m, nil
}

// HashComparisonRequest discriminants. Nilsimsa is the only supported
// hash family in v1.
const (
	HashFamilyNilsimsa = 0
)

// HashComparisonRequest is the client's opening message to compute,
// selecting which hash family's corpus to compare against.
type HashComparisonRequest struct {
	HashFamily int
}

func (m *HashComparisonRequest) Marshal() ([]byte, error) { return cbor.Marshal(m) }

func UnmarshalHashComparisonRequest(data []byte) (*HashComparisonRequest, error) {
	var m HashComparisonRequest
	if err := cbor.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFHVector, err)
	}
	return &m, nil
}

// EncryptionRequest is compute's per-round message to the client. A
// nil PK is the sentinel signaling the end of the batch sequence; the
// accompanying Score is then the final result.
type EncryptionRequest struct {
	PK    *PublicKey
	Score *int16
}

func (m *EncryptionRequest) Marshal() ([]byte, error) { return cbor.Marshal(m) }

func UnmarshalEncryptionRequest(data []byte) (*EncryptionRequest, error) {
	var m EncryptionRequest
	if err := cbor.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPublicKey, err)
	}
	return &m, nil
}

// EncryptionResponse discriminants.
const (
	EncryptionResponseVector = 0
	EncryptionResponseEnd    = 1
)

// EncryptionResponse is the client's per-round reply: either its
// encrypted vector for this batch's public key, or EndOfComparison
// when the client has nothing further to send.
type EncryptionResponse struct {
	Kind       int
	Ciphertext *Ciphertext
}

func EncryptedVector(ct *Ciphertext) EncryptionResponse {
	return EncryptionResponse{Kind: EncryptionResponseVector, Ciphertext: ct}
}

func EndOfComparison() EncryptionResponse {
	return EncryptionResponse{Kind: EncryptionResponseEnd}
}

func (m EncryptionResponse) MarshalCBOR() ([]byte, error) {
	switch m.Kind {
	case EncryptionResponseVector:
		return cbor.Marshal([]interface{}{m.Kind, m.Ciphertext})
	case EncryptionResponseEnd:
		return cbor.Marshal([]interface{}{m.Kind, nil})
	default:
		return nil, fmt.Errorf("%w: encryptionresponse kind %d", ErrUnknownUnionDiscriminant, m.Kind)
	}
}

func (m *EncryptionResponse) UnmarshalCBOR(data []byte) error {
	var raw []cbor.RawMessage
	if err := cbor.Unmarshal(data, &raw); err != nil || len(raw) != 2 {
		return fmt.Errorf("%w: malformed tagged-union array", ErrMalformedCiphertext)
	}
	var kind int
	if err := cbor.Unmarshal(raw[0], &kind); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedCiphertext, err)
	}
	if kind != EncryptionResponseVector && kind != EncryptionResponseEnd {
		return fmt.Errorf("%w: encryptionresponse kind %d", ErrUnknownUnionDiscriminant, kind)
	}
	m.Kind = kind
	m.Ciphertext = nil
	if kind == EncryptionResponseVector {
		var ct Ciphertext
		if err := cbor.Unmarshal(raw[1], &ct); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedCiphertext, err)
		}
		m.Ciphertext = &ct
	}
	return nil
}

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

// Package client implements the querying party's side of the
// per-session state machine: Await -> Receive(pk, s) ->
// (pk=None ? Return(s) : Encrypt -> Send -> Await).
package client

import (
	"crypto/rand"
	"fmt"
	"io"
	"math"
	"net"

	"github.com/fentec-project/fhcompare/fhvec"
	"github.com/fentec-project/fhcompare/framing"
	"github.com/fentec-project/fhcompare/wire"
)

// Session drives one client query against a compute server over conn.
type Session struct {
	conn   net.Conn
	vector fhvec.Vector
	rng    io.Reader
}

// New returns a Session that will compare v against the compute
// server reachable over conn. If rng is nil, crypto/rand.Reader is
// used.
func New(conn net.Conn, v fhvec.Vector, rng io.Reader) *Session {
	if rng == nil {
		rng = rand.Reader
	}
	return &Session{conn: conn, vector: v, rng: rng}
}

// Run sends the opening HashComparisonRequest and then drives the
// per-round loop until compute signals the end of the comparison,
// returning the final similarity score.
func (s *Session) Run() (int16, error) {
	open := &wire.HashComparisonRequest{HashFamily: wire.HashFamilyNilsimsa}
	payload, err := open.Marshal()
	if err != nil {
		return 0, fmt.Errorf("client: failed to encode hash comparison request: %w", err)
	}
	if err := framing.WriteFrame(s.conn, payload); err != nil {
		return 0, fmt.Errorf("client: failed to send hash comparison request: %w", err)
	}

	score := int16(math.MinInt16)

	for {
		reqPayload, err := framing.ReadFrame(s.conn)
		if err != nil {
			return 0, fmt.Errorf("client: failed to read encryption request: %w", err)
		}
		req, err := wire.UnmarshalEncryptionRequest(reqPayload)
		if err != nil {
			return 0, fmt.Errorf("client: malformed encryption request: %w", err)
		}

		if req.Score != nil && *req.Score > score {
			score = *req.Score
		}

		if req.PK == nil {
			return score, nil
		}

		pk, err := req.PK.Decode()
		if err != nil {
			return 0, fmt.Errorf("client: malformed public key: %w", err)
		}

		ct, err := pk.Encrypt(s.rng, s.vector)
		if err != nil {
			return 0, fmt.Errorf("client: failed to encrypt vector: %w", err)
		}

		wct := wire.EncodeCiphertext(pk.G, ct)
		resp := wire.EncryptedVector(wct)
		respPayload, err := resp.MarshalCBOR()
		if err != nil {
			return 0, fmt.Errorf("client: failed to encode encryption response: %w", err)
		}
		if err := framing.WriteFrame(s.conn, respPayload); err != nil {
			return 0, fmt.Errorf("client: failed to send encryption response: %w", err)
		}
	}
}

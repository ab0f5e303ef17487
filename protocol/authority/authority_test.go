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

package authority_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fentec-project/fhcompare/fhvec"
	"github.com/fentec-project/fhcompare/framing"
	"github.com/fentec-project/fhcompare/group/ristretto"
	"github.com/fentec-project/fhcompare/protocol/authority"
	"github.com/fentec-project/fhcompare/wire"
)

func startAuthority(t *testing.T, ctx context.Context) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := authority.New(ristretto.New(), nil, nil)
	go func() {
		_ = srv.Serve(ctx, ln)
	}()
	return ln.Addr().String()
}

func fhvectorOfLen(n int) wire.FHVector {
	bits := make([]uint16, n)
	return wire.FHVector{Kind: wire.FHVectorNilsimsa, Bits: fhvec.Pack(bits), N: n}
}

// TestAuthority_RejectsOversizeBatch exercises the batch-size contract
// directly: a batch whose size is not strictly smaller than the
// vector length must be rejected, and the authority must close the
// connection without ever writing a GenerateInstanceResponse.
func TestAuthority_RejectsOversizeBatch(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	addr := startAuthority(t, ctx)

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	const vectorLen = 4
	req := &wire.GenerateInstanceRequest{
		Vectors: []wire.FHVector{
			fhvectorOfLen(vectorLen),
			fhvectorOfLen(vectorLen),
			fhvectorOfLen(vectorLen),
			fhvectorOfLen(vectorLen),
		},
	}
	payload, err := req.Marshal()
	require.NoError(t, err)
	require.NoError(t, framing.WriteFrame(conn, payload))

	_, err = framing.ReadFrame(conn)
	require.Error(t, err, "authority must close the connection instead of answering an oversize batch")
}

// TestAuthority_AcceptsBatchSmallerThanVectorLength is the positive
// counterpart: a batch strictly smaller than the vector length is
// answered with one key per vector.
func TestAuthority_AcceptsBatchSmallerThanVectorLength(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	addr := startAuthority(t, ctx)

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	const vectorLen = 4
	req := &wire.GenerateInstanceRequest{
		Vectors: []wire.FHVector{
			fhvectorOfLen(vectorLen),
			fhvectorOfLen(vectorLen),
			fhvectorOfLen(vectorLen),
		},
	}
	payload, err := req.Marshal()
	require.NoError(t, err)
	require.NoError(t, framing.WriteFrame(conn, payload))

	respPayload, err := framing.ReadFrame(conn)
	require.NoError(t, err)
	resp, err := wire.UnmarshalGenerateInstanceResponse(respPayload)
	require.NoError(t, err)
	require.Len(t, resp.Keys, len(req.Vectors))
}

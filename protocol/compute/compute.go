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

// Package compute implements the corpus-holding middle party of the
// three-role protocol: per client session it loads the reference
// corpus, fetches one FE instance per batch from the authority, then
// drives the per-batch exchange with the client, tracking a running
// maximum similarity score.
package compute

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net"

	"github.com/fentec-project/fhcompare/corpus"
	"github.com/fentec-project/fhcompare/fhvec"
	"github.com/fentec-project/fhcompare/framing"
	"github.com/fentec-project/fhcompare/wire"
)

// batchSize mirrors the authority's own batching contract: a batch
// given to it must be strictly smaller than the instance length N, so
// the compute server chunks the corpus into batches of size at most
// N-1.
func batchSize(n int) int {
	if n < 2 {
		return n
	}
	return n - 1
}

// Server holds a corpus store and an authority address; it answers
// client connections over a listener.
type Server struct {
	Store         corpus.Store
	AuthorityAddr string
	Log           *slog.Logger
	// N is the per-batch vector/instance length; it is also the batch
	// item count's upper bound via batchSize(N).
	N int
}

// New returns a compute Server. N should match the fhvec vector length
// in use (fhvec.NilsimsaVectorSize for the only v1 hash family).
func New(store corpus.Store, authorityAddr string, n int, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{Store: store, AuthorityAddr: authorityAddr, Log: log, N: n}
}

// Serve accepts client connections on ln until ctx is cancelled.
func (srv *Server) Serve(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return fmt.Errorf("compute: accept failed: %w", err)
			}
		}
		go srv.handleConn(ctx, conn)
	}
}

func (srv *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	reqPayload, err := framing.ReadFrame(conn)
	if err != nil {
		srv.Log.Info("compute: connection closed before request", "remote", conn.RemoteAddr(), "error", err)
		return
	}
	if _, err := wire.UnmarshalHashComparisonRequest(reqPayload); err != nil {
		srv.Log.Warn("compute: malformed hash comparison request", "remote", conn.RemoteAddr(), "error", err)
		return
	}

	score, err := srv.runSession(ctx, conn)
	if err != nil {
		srv.Log.Warn("compute: session aborted", "remote", conn.RemoteAddr(), "error", err)
		return
	}

	srv.Log.Info("compute: session complete", "remote", conn.RemoteAddr(), "score", score)
}

// batch is one authority-supplied FE instance paired with the
// reference vectors it was generated for.
type batch struct {
	pk   *wire.PublicKey
	keys []wire.CompressedSecretKey
}

func (srv *Server) runSession(ctx context.Context, clientConn net.Conn) (int16, error) {
	hashes, err := srv.Store.Load(ctx, corpus.NilsimsaHashType)
	if err != nil {
		return 0, fmt.Errorf("compute: failed to load corpus: %w", err)
	}

	batches, err := srv.fetchBatches(hashes)
	if err != nil {
		return 0, fmt.Errorf("compute: failed to prepare batches: %w", err)
	}

	score := int16(math.MinInt16)

	for _, b := range batches {
		newScore, continued, err := srv.scoreBatch(clientConn, b, score)
		if err != nil {
			return 0, err
		}
		score = newScore
		if !continued {
			break
		}
	}

	finalPayload, err := (&wire.EncryptionRequest{PK: nil, Score: &score}).Marshal()
	if err != nil {
		return 0, fmt.Errorf("compute: failed to encode final request: %w", err)
	}
	if err := framing.WriteFrame(clientConn, finalPayload); err != nil {
		return 0, fmt.Errorf("compute: failed to send final request: %w", err)
	}

	return score, nil
}

// fetchBatches chunks the corpus into batches of size <= N-1,
// converts each reference digest to its concat-with-complement
// vector, and asks the authority for one FE instance per batch. A
// rejection from the authority aborts the entire client session.
func (srv *Server) fetchBatches(hashes [][32]byte) ([]batch, error) {
	chunk := batchSize(srv.N)
	if chunk <= 0 {
		return nil, nil
	}

	var batches []batch
	for i := 0; i < len(hashes); i += chunk {
		end := i + chunk
		if end > len(hashes) {
			end = len(hashes)
		}

		conn, err := net.Dial("tcp", srv.AuthorityAddr)
		if err != nil {
			return nil, fmt.Errorf("compute: failed to reach authority: %w", err)
		}
		b, err := srv.requestInstance(conn, hashes[i:end])
		conn.Close()
		if err != nil {
			return nil, err
		}
		batches = append(batches, b)
	}
	return batches, nil
}

func (srv *Server) requestInstance(conn net.Conn, hashes [][32]byte) (batch, error) {
	req := &wire.GenerateInstanceRequest{Vectors: make([]wire.FHVector, len(hashes))}
	for i, h := range hashes {
		req.Vectors[i] = wire.EncodeFHVector(fhvec.Encode(h))
	}

	payload, err := req.Marshal()
	if err != nil {
		return batch{}, fmt.Errorf("compute: failed to encode instance request: %w", err)
	}
	if err := framing.WriteFrame(conn, payload); err != nil {
		return batch{}, fmt.Errorf("compute: failed to send instance request: %w", err)
	}

	respPayload, err := framing.ReadFrame(conn)
	if err != nil {
		return batch{}, fmt.Errorf("compute: failed to read instance response: %w", err)
	}
	resp, err := wire.UnmarshalGenerateInstanceResponse(respPayload)
	if err != nil {
		return batch{}, fmt.Errorf("compute: authority rejected batch: %w", err)
	}

	return batch{pk: &resp.PK, keys: resp.Keys}, nil
}

// scoreBatch drives one round of the compute<->client exchange for a
// single batch: send the batch's public key and current score, await
// the client's ciphertext, decrypt it against every key in the batch
// with bound = 2N+1 (wide enough that no legitimate bit-vector inner
// product is silently skipped), and fold the per-key scores into the
// running max. The bool result reports whether the client wants to
// continue to the next batch; it is false once the client answers
// with EncryptionResponseEnd, at which point runSession must stop
// sending further batches rather than keep iterating.
func (srv *Server) scoreBatch(conn net.Conn, b batch, score int16) (int16, bool, error) {
	req := &wire.EncryptionRequest{PK: b.pk, Score: &score}
	payload, err := req.Marshal()
	if err != nil {
		return 0, false, fmt.Errorf("compute: failed to encode encryption request: %w", err)
	}
	if err := framing.WriteFrame(conn, payload); err != nil {
		return 0, false, fmt.Errorf("compute: failed to send encryption request: %w", err)
	}

	respPayload, err := framing.ReadFrame(conn)
	if err != nil {
		return 0, false, fmt.Errorf("compute: failed to read encryption response: %w", err)
	}
	var resp wire.EncryptionResponse
	if err := resp.UnmarshalCBOR(respPayload); err != nil {
		return 0, false, fmt.Errorf("compute: malformed encryption response: %w", err)
	}
	if resp.Kind == wire.EncryptionResponseEnd || resp.Ciphertext == nil {
		return score, false, nil
	}

	ct, err := resp.Ciphertext.Decode()
	if err != nil {
		return 0, false, fmt.Errorf("compute: malformed ciphertext: %w", err)
	}

	bound := uint16(2*srv.N + 1)
	for _, wsk := range b.keys {
		sk, err := wsk.Decompress()
		if err != nil {
			return 0, false, fmt.Errorf("compute: failed to decompress key: %w", err)
		}
		d, ok := sk.Decrypt(ct, bound)
		if !ok {
			continue
		}
		s := fhvec.Score(d)
		if s > score {
			score = s
		}
	}

	return score, true, nil
}

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

// Package authority implements the trusted, stateless-across-requests
// party of the three-role protocol: given a batch of reference
// vectors, it runs fe.Setup + one fe.KeyGen per vector and returns a
// fresh PublicKey plus one CompressedSecretKey per vector. It never
// retains anything once a request is answered — the per-request
// Instance and its master secret key live only on the handling
// goroutine's stack.
package authority

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"log/slog"
	"net"

	"golang.org/x/sync/errgroup"

	"github.com/fentec-project/fhcompare/fe"
	"github.com/fentec-project/fhcompare/framing"
	"github.com/fentec-project/fhcompare/group"
	"github.com/fentec-project/fhcompare/wire"
)

// Server accepts connections from compute servers and answers
// GenerateInstanceRequest messages.
type Server struct {
	Group      group.Group
	Log        *slog.Logger
	Rng        io.Reader
	workerPool int // 0 means crypto work runs inline on the connection goroutine
}

// New returns a Server over the given group backend. If log is nil,
// slog.Default() is used; if rng is nil, crypto/rand.Reader is used.
func New(g group.Group, log *slog.Logger, rng io.Reader) *Server {
	if log == nil {
		log = slog.Default()
	}
	if rng == nil {
		rng = rand.Reader
	}
	return &Server{Group: g, Log: log, Rng: rng}
}

// WithWorkerPool configures Setup+KeyGen to be dispatched onto a
// bounded errgroup-based pool of the given size instead of running
// inline, for deployments that want to cap concurrent instance
// generation. size <= 0 restores inline execution.
func (s *Server) WithWorkerPool(size int) *Server {
	s.workerPool = size
	return s
}

// Serve accepts connections on ln until ctx is cancelled or Serve
// encounters a listener error. Each connection is handled on its own
// goroutine; a single connection's failure never stops the accept
// loop.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
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
				return fmt.Errorf("authority: accept failed: %w", err)
			}
		}
		go s.handleConn(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	payload, err := framing.ReadFrame(conn)
	if err != nil {
		s.Log.Info("authority: connection closed before request", "remote", conn.RemoteAddr(), "error", err)
		return
	}

	req, err := wire.UnmarshalGenerateInstanceRequest(payload)
	if err != nil {
		s.Log.Warn("authority: malformed request", "remote", conn.RemoteAddr(), "error", err)
		return
	}

	resp, err := s.generateInstance(req)
	if err != nil {
		s.Log.Warn("authority: rejected batch", "remote", conn.RemoteAddr(), "error", err)
		return
	}

	respPayload, err := resp.Marshal()
	if err != nil {
		s.Log.Error("authority: failed to encode response", "remote", conn.RemoteAddr(), "error", err)
		return
	}
	if err := framing.WriteFrame(conn, respPayload); err != nil {
		s.Log.Info("authority: failed to write response", "remote", conn.RemoteAddr(), "error", err)
		return
	}

	s.Log.Info("authority: answered batch", "remote", conn.RemoteAddr(), "batch_size", len(req.Vectors))
}

// generateInstance enforces the batching contract: reject size 0 or
// >= N, N being the vectors' common length, otherwise Setup one
// Instance of length N and derive one SecretKey per vector.
func (s *Server) generateInstance(req *wire.GenerateInstanceRequest) (*wire.GenerateInstanceResponse, error) {
	n := len(req.Vectors)
	if n == 0 {
		return nil, fmt.Errorf("authority: empty batch rejected")
	}

	vectorLen := -1
	vectors := make([][]uint16, n)
	for i, v := range req.Vectors {
		bits, err := v.Decode()
		if err != nil {
			return nil, fmt.Errorf("authority: malformed vector %d: %w", i, err)
		}
		if vectorLen == -1 {
			vectorLen = len(bits)
		} else if len(bits) != vectorLen {
			return nil, fmt.Errorf("authority: heterogeneous vector lengths in batch")
		}
		vectors[i] = bits
	}

	if n >= vectorLen {
		return nil, fmt.Errorf("authority: batch size %d must be smaller than instance length %d", n, vectorLen)
	}

	inst, err := fe.Setup(s.Group, vectorLen, s.Rng)
	if err != nil {
		return nil, fmt.Errorf("authority: setup failed: %w", err)
	}

	keys := make([]wire.CompressedSecretKey, n)
	if s.workerPool > 0 {
		g, _ := errgroup.WithContext(context.Background())
		g.SetLimit(s.workerPool)
		for i := range vectors {
			i := i
			g.Go(func() error {
				sk, err := inst.KeyGen(vectors[i])
				if err != nil {
					return err
				}
				keys[i] = *wire.Compress(s.Group, sk)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, fmt.Errorf("authority: keygen failed: %w", err)
		}
	} else {
		for i, y := range vectors {
			sk, err := inst.KeyGen(y)
			if err != nil {
				return nil, fmt.Errorf("authority: keygen failed: %w", err)
			}
			keys[i] = *wire.Compress(s.Group, sk)
		}
	}

	return &wire.GenerateInstanceResponse{
		PK:   *wire.EncodePublicKey(inst.PublicKey()),
		Keys: keys,
	}, nil
}

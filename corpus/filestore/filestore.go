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

// Package filestore implements corpus.Store as a flat, length-prefixed
// binary file, one record per reference hash. No SQL driver appears
// anywhere in the example corpus (every go.mod was searched), so this
// package is a deliberate, documented standard-library stand-in for
// the fuzzy_hashes table contract a SQL-backed corpus store would
// expose — it still satisfies the same (type, fh) query shape and the
// --populate-db CLI flag, whose digests Populate writes.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fxamacker/cbor/v2"

	"github.com/fentec-project/fhcompare/framing"
)

// record is one row of the conceptual fuzzy_hashes table.
type record struct {
	Type string
	FH   [32]byte
}

// Store is a corpus.Store backed by a flat file of length-prefixed
// CBOR records.
type Store struct {
	path string
}

// Open returns a Store reading from path. The file need not exist yet
// (Load then returns an empty corpus); Populate creates it.
func Open(path string) *Store {
	return &Store{path: path}
}

// Load reads every record of the given hash type from the file.
func (s *Store) Load(ctx context.Context, hashType string) ([][32]byte, error) {
	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("filestore: failed to open %s: %w", s.path, err)
	}
	defer f.Close()

	var hashes [][32]byte
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		payload, err := framing.ReadFrame(f)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("filestore: truncated or corrupt record: %w", err)
		}
		var rec record
		if err := cbor.Unmarshal(payload, &rec); err != nil {
			return nil, fmt.Errorf("filestore: malformed record: %w", err)
		}
		if rec.Type == hashType {
			hashes = append(hashes, rec.FH)
		}
	}
	return hashes, nil
}

// Populate overwrites the store with the given digests, all tagged
// with hashType, for the --populate-db CLI flag.
func Populate(path, hashType string, digests [][32]byte) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("filestore: failed to create %s: %w", path, err)
	}
	defer f.Close()

	for _, d := range digests {
		payload, err := cbor.Marshal(record{Type: hashType, FH: d})
		if err != nil {
			return fmt.Errorf("filestore: failed to encode record: %w", err)
		}
		if err := framing.WriteFrame(f, payload); err != nil {
			return fmt.Errorf("filestore: failed to write record: %w", err)
		}
	}
	return nil
}

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

// Command compute runs the corpus-holding middle party of the
// three-role protocol: `compute <bind_addr> <authority_addr> <db_path>
// [--populate-db]`.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fentec-project/fhcompare/corpus"
	"github.com/fentec-project/fhcompare/corpus/filestore"
	"github.com/fentec-project/fhcompare/fhvec"
	"github.com/fentec-project/fhcompare/group/ristretto"
	"github.com/fentec-project/fhcompare/internal/logging"
	"github.com/fentec-project/fhcompare/nilsimsa"
	"github.com/fentec-project/fhcompare/protocol/compute"
	"github.com/fentec-project/fhcompare/wire"
)

func main() {
	var populateDB bool

	root := &cobra.Command{
		Use:   "compute <bind_addr> <authority_addr> <db_path>",
		Short: "Run the corpus-holding compute server",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0], args[1], args[2], populateDB)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.Flags().BoolVar(&populateDB, "populate-db", false, "read newline-delimited file paths from stdin, hash each, and populate db_path instead of serving")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(bindAddr, authorityAddr, dbPath string, populateDB bool) error {
	log := logging.New()
	wire.RegisterBackend(ristretto.New())

	if populateDB {
		return populate(dbPath)
	}

	store := filestore.Open(dbPath)
	srv := compute.New(store, authorityAddr, fhvec.NilsimsaVectorSize, log)

	ln, err := net.Listen("tcp", bindAddr)
	if err != nil {
		return fmt.Errorf("compute: failed to bind %s: %w", bindAddr, err)
	}
	defer ln.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log.Info("compute: listening", "addr", ln.Addr().String(), "authority", authorityAddr)
	return srv.Serve(ctx, ln)
}

// populate reads one file path per line from stdin, Nilsimsa-hashes
// the contents of each, and writes the resulting digests to dbPath,
// replacing its previous contents.
func populate(dbPath string) error {
	scanner := bufio.NewScanner(os.Stdin)
	var digests [][32]byte

	for scanner.Scan() {
		path := scanner.Text()
		if path == "" {
			continue
		}
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("compute: failed to open %s: %w", path, err)
		}
		h := nilsimsa.New()
		_, copyErr := io.Copy(h, f)
		f.Close()
		if copyErr != nil {
			return fmt.Errorf("compute: failed to hash %s: %w", path, copyErr)
		}
		digests = append(digests, h.Sum())
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("compute: failed to read stdin: %w", err)
	}

	if err := filestore.Populate(dbPath, corpus.NilsimsaHashType, digests); err != nil {
		return fmt.Errorf("compute: failed to populate %s: %w", dbPath, err)
	}
	fmt.Fprintf(os.Stderr, "compute: populated %s with %d digests\n", dbPath, len(digests))
	return nil
}

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

// Command client queries a compute server with the fuzzy hash of a
// local file: `client <compute_addr> <file> [--nilsimsa|--sdhash]`.
package main

import (
	"fmt"
	"io"
	"net"
	"os"

	"github.com/spf13/cobra"

	"github.com/fentec-project/fhcompare/fhvec"
	"github.com/fentec-project/fhcompare/group/ristretto"
	"github.com/fentec-project/fhcompare/internal/logging"
	"github.com/fentec-project/fhcompare/nilsimsa"
	"github.com/fentec-project/fhcompare/protocol/client"
	"github.com/fentec-project/fhcompare/wire"
)

func main() {
	var useNilsimsa, useSdhash bool

	root := &cobra.Command{
		Use:   "client <compute_addr> <file>",
		Short: "Query a compute server with a local file's fuzzy hash",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0], args[1], useSdhash)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.Flags().BoolVar(&useNilsimsa, "nilsimsa", true, "hash the file with Nilsimsa (default)")
	root.Flags().BoolVar(&useSdhash, "sdhash", false, "hash the file with sdhash")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(computeAddr, path string, useSdhash bool) error {
	log := logging.New()
	wire.RegisterBackend(ristretto.New())

	if useSdhash {
		return fmt.Errorf("not implemented")
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("client: failed to open %s: %w", path, err)
	}
	defer f.Close()

	h := nilsimsa.New()
	if _, err := io.Copy(h, f); err != nil {
		return fmt.Errorf("client: failed to hash %s: %w", path, err)
	}
	digest := h.Sum()

	conn, err := net.Dial("tcp", computeAddr)
	if err != nil {
		return fmt.Errorf("client: failed to reach compute server %s: %w", computeAddr, err)
	}
	defer conn.Close()

	sess := client.New(conn, fhvec.Encode(digest).Encoded(), nil)
	log.Info("client: querying", "compute", computeAddr, "file", path)

	score, err := sess.Run()
	if err != nil {
		return fmt.Errorf("client: query failed: %w", err)
	}

	fmt.Printf("Max similarity score is %d\n", score)
	return nil
}

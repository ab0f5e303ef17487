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

// Command authority runs the trusted master-key-generation party of
// the three-role protocol: `authority <bind_addr>`.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fentec-project/fhcompare/group/ristretto"
	"github.com/fentec-project/fhcompare/internal/logging"
	"github.com/fentec-project/fhcompare/protocol/authority"
	"github.com/fentec-project/fhcompare/wire"
)

func main() {
	root := &cobra.Command{
		Use:   "authority <bind_addr>",
		Short: "Run the FE master-key authority server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0])
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(bindAddr string) error {
	log := logging.New()

	backend := ristretto.New()
	wire.RegisterBackend(backend)

	ln, err := net.Listen("tcp", bindAddr)
	if err != nil {
		return fmt.Errorf("authority: failed to bind %s: %w", bindAddr, err)
	}
	defer ln.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log.Info("authority: listening", "addr", ln.Addr().String())
	srv := authority.New(backend, log, nil)
	return srv.Serve(ctx, ln)
}

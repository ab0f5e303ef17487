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

// Package logging configures the process-wide slog logger from the
// FHCOMPARE_LOG environment variable, a RUST_LOG-style level knob. No
// example repository imports a structured logging library as more
// than an indirect, never-called transitive dependency, so this is a
// documented standard-library exception (see DESIGN.md) built on
// log/slog.
package logging

import (
	"log/slog"
	"os"
	"strings"
)

const envVar = "FHCOMPARE_LOG"

// New builds a text-handler slog.Logger with its level taken from
// FHCOMPARE_LOG ("debug"/"info"/"warn"/"error", default "info").
func New() *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(os.Getenv(envVar)) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}

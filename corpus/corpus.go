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

// Package corpus models the persistent store the compute server loads
// its reference fuzzy hashes from: a table keyed by hash type,
// conceptually `fuzzy_hashes(type TEXT, fh BLOB(32))`, queried for one
// type at a time. The interface keeps compute.Server from depending on
// any concrete storage engine.
package corpus

import "context"

// NilsimsaHashType is the only hash family the store needs to serve in
// v1, matching a `type = 'nilsimsa'` row filter.
const NilsimsaHashType = "nilsimsa"

// Store loads the reference corpus for a given hash type. Each
// returned entry is a raw 32-byte digest.
type Store interface {
	Load(ctx context.Context, hashType string) ([][32]byte, error)
}

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

package wire

import "github.com/fentec-project/fhcompare/group"

// backendByName resolves the group.Group a wire message names by its
// Name() tag, so a PublicKey or Ciphertext that crossed the wire can be
// decoded without the receiver having to already know which backend the
// sender picked.
var backendByName = map[string]group.Group{}

// RegisterBackend makes g available for decoding wire messages tagged
// with g.Name(). Callers (typically a binary's main) register every
// backend they support at startup.
func RegisterBackend(g group.Group) {
	backendByName[g.Name()] = g
}

func lookupBackend(name string) (group.Group, error) {
	g, ok := backendByName[name]
	if !ok {
		return nil, ErrUnknownGroupBackend
	}
	return g, nil
}

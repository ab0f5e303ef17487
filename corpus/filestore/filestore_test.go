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

package filestore_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fentec-project/fhcompare/corpus"
	"github.com/fentec-project/fhcompare/corpus/filestore"
)

func TestFilestore_PopulateThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.bin")

	digests := [][32]byte{{0x01}, {0x02}, {0x03}}
	require.NoError(t, filestore.Populate(path, corpus.NilsimsaHashType, digests))

	store := filestore.Open(path)
	got, err := store.Load(context.Background(), corpus.NilsimsaHashType)
	require.NoError(t, err)
	assert.Equal(t, digests, got)
}

func TestFilestore_LoadMissingFileIsEmpty(t *testing.T) {
	store := filestore.Open(filepath.Join(t.TempDir(), "absent.bin"))
	got, err := store.Load(context.Background(), corpus.NilsimsaHashType)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFilestore_LoadFiltersByType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.bin")
	require.NoError(t, filestore.Populate(path, "sdhash", [][32]byte{{0xff}}))

	store := filestore.Open(path)
	got, err := store.Load(context.Background(), corpus.NilsimsaHashType)
	require.NoError(t, err)
	assert.Empty(t, got)
}

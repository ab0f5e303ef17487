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

package framing_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fentec-project/fhcompare/framing"
)

func TestWriteReadFrame_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	payload := []byte("the quick brown fox")

	require.NoError(t, framing.WriteFrame(&buf, payload))

	got, err := framing.ReadFrame(&buf)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestReadFrame_EmptyPayload(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, framing.WriteFrame(&buf, nil))

	got, err := framing.ReadFrame(&buf)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReadFrame_EOFOnCleanClose(t *testing.T) {
	var buf bytes.Buffer
	_, err := framing.ReadFrame(&buf)
	assert.ErrorIs(t, err, io.EOF)
}

func TestWriteFrame_RejectsOversizePayload(t *testing.T) {
	var buf bytes.Buffer
	err := framing.WriteFrame(&buf, make([]byte, framing.MaxFrameSize+1))
	assert.Error(t, err)
}

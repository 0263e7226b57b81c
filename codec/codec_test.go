// Copyright 2026 Dolthub, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	yerrors "github.com/Zeerooth/yamabiko/errors"
)

type widget struct {
	Name  string `json:"name" yaml:"name"`
	Count int    `json:"count" yaml:"count"`
}

func TestRoundTripJSON(t *testing.T) {
	c := New(JSON)
	want := widget{Name: "bolt", Count: 12}

	b, err := c.Encode(want)
	require.NoError(t, err)

	var got widget
	require.NoError(t, c.Decode(b, &got))
	assert.Equal(t, want, got)
}

func TestRoundTripYAML(t *testing.T) {
	c := New(YAML)
	want := widget{Name: "nut", Count: 4}

	b, err := c.Encode(want)
	require.NoError(t, err)

	var got widget
	require.NoError(t, c.Decode(b, &got))
	assert.Equal(t, want, got)
}

func TestRoundTripPOT(t *testing.T) {
	c := New(POT)
	want := widget{Name: "washer", Count: 100}

	b, err := c.Encode(want)
	require.NoError(t, err)

	var got widget
	require.NoError(t, c.Decode(b, &got))
	assert.Equal(t, want, got)
}

func TestDecodeFieldJSON(t *testing.T) {
	c := New(JSON)
	b, err := c.Encode(map[string]interface{}{"n": 5.0, "label": "x"})
	require.NoError(t, err)

	v, ok, err := c.DecodeField(b, "n")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 5.0, v)

	_, ok, err = c.DecodeField(b, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDecodeFieldYAML(t *testing.T) {
	c := New(YAML)
	b, err := c.Encode(map[string]interface{}{"n": 7, "label": "y"})
	require.NoError(t, err)

	v, ok, err := c.DecodeField(b, "n")
	require.NoError(t, err)
	require.True(t, ok)
	assert.EqualValues(t, 7, v)
}

func TestDecodeFieldPOTFromAStructEncodedRecord(t *testing.T) {
	c := New(POT)
	b, err := c.Encode(widget{Name: "bolt", Count: 12})
	require.NoError(t, err)

	v, ok, err := c.DecodeField(b, "count")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, float64(12), v)

	_, ok, err = c.DecodeField(b, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDecodeMapPOTFromAStructEncodedRecord(t *testing.T) {
	c := New(POT)
	b, err := c.Encode(widget{Name: "nut", Count: 4})
	require.NoError(t, err)

	m, err := c.DecodeMap(b)
	require.NoError(t, err)
	assert.Equal(t, "nut", m["name"])
	assert.Equal(t, float64(4), m["count"])
}

func TestMalformedInputSurfacesDeserializationFailed(t *testing.T) {
	c := New(JSON)
	var got widget
	err := c.Decode([]byte("{not json"), &got)
	require.Error(t, err)
	assert.ErrorIs(t, err, yerrors.ErrDeserializationFailed)
}

func TestParseFormatRejectsUnknown(t *testing.T) {
	_, err := Parse("xml")
	assert.Error(t, err)

	f, err := Parse("json")
	require.NoError(t, err)
	assert.Equal(t, JSON, f)
}

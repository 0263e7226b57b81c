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

// Package codec encodes and decodes record values to and from the byte
// sequence stored in a blob. The format is fixed at collection creation
// and is stateless; it never depends on anything but the bytes and the
// target value.
package codec

import (
	"bytes"
	"encoding/gob"
	"fmt"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v2"

	yerrors "github.com/Zeerooth/yamabiko/errors"
)

// gob requires every concrete type stored in an interface value to be
// registered before it can cross the wire. POT records are always
// projected through a map[string]interface{} (see toGenericRecord)
// before gob-encoding, so the dynamic types that can appear as map
// values — whatever goccy/go-json's own interface{} decoding produces —
// must be registered here, once, at package init.
func init() {
	gob.Register(map[string]interface{}{})
	gob.Register([]interface{}{})
	gob.Register(float64(0))
	gob.Register("")
	gob.Register(false)
}

// Format is a dispatched enumeration of the supported record encodings.
// It is persisted verbatim in the collection's `_format` blob, so the
// string values below are part of the on-disk contract.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
	// POT is yamabiko's binary, self-describing format. No POT-specific
	// binary codec exists anywhere in the example corpus; encoding/gob is
	// used here as the closest stdlib equivalent (see DESIGN.md).
	POT Format = "pot"
)

// Parse validates a format name read back from a `_format` blob.
func Parse(s string) (Format, error) {
	switch Format(s) {
	case JSON, YAML, POT:
		return Format(s), nil
	default:
		return "", fmt.Errorf("codec: unsupported format %q", s)
	}
}

// Codec encodes and decodes a single record format.
type Codec struct {
	format Format
}

// New returns the Codec for format.
func New(format Format) Codec {
	return Codec{format: format}
}

// Format reports the format this Codec was constructed with.
func (c Codec) Format() Format { return c.format }

// Encode serializes value into bytes per the codec's format. For POT,
// value is first projected into a map[string]interface{} (see
// toGenericRecord) regardless of its original Go type, so that
// DecodeField/DecodeMap can later read a named field out of the bytes
// without knowing what concrete type originally produced them — the
// same way JSON/YAML bytes are self-describing independent of the
// struct that was marshaled.
func (c Codec) Encode(value interface{}) ([]byte, error) {
	var (
		b   []byte
		err error
	)
	switch c.format {
	case JSON:
		b, err = json.Marshal(value)
	case YAML:
		b, err = yaml.Marshal(value)
	case POT:
		var generic map[string]interface{}
		generic, err = toGenericRecord(value)
		if err == nil {
			var buf bytes.Buffer
			if err = gob.NewEncoder(&buf).Encode(generic); err == nil {
				b = buf.Bytes()
			}
		}
	default:
		err = fmt.Errorf("codec: unsupported format %q", c.format)
	}
	if err != nil {
		return nil, yerrors.Wrap(yerrors.ErrSerializationFailed, err, string(c.format))
	}
	return b, nil
}

// toGenericRecord projects value into a map[string]interface{} via a
// JSON round trip through goccy/go-json, the same library already used
// for the JSON format. This gives POT the same "any field readable
// without the original type" property JSON and YAML have for free,
// since gob alone cannot decode a struct-shaped wire value into
// anything but that exact struct type.
func toGenericRecord(value interface{}) (map[string]interface{}, error) {
	if m, ok := value.(map[string]interface{}); ok {
		return m, nil
	}
	intermediate, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	m := map[string]interface{}{}
	if err := json.Unmarshal(intermediate, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// Decode deserializes bytes into target, which must be a pointer. For
// POT, the gob-encoded generic record is re-projected through JSON into
// target, mirroring Encode's projection in reverse so target can be any
// struct or map shape compatible with the original value's fields.
func (c Codec) Decode(data []byte, target interface{}) error {
	var err error
	switch c.format {
	case JSON:
		err = json.Unmarshal(data, target)
	case YAML:
		err = yaml.Unmarshal(data, target)
	case POT:
		var generic map[string]interface{}
		if generic, err = decodePOTMap(data); err == nil {
			var intermediate []byte
			if intermediate, err = json.Marshal(generic); err == nil {
				err = json.Unmarshal(intermediate, target)
			}
		}
	default:
		err = fmt.Errorf("codec: unsupported format %q", c.format)
	}
	if err != nil {
		return yerrors.Wrap(yerrors.ErrDeserializationFailed, err, string(c.format))
	}
	return nil
}

// DecodeField decodes data as a generic record and returns the value of
// the named top-level field, coerced per the codec's format. This backs
// the Index Manager's need to read one field without a caller-supplied
// concrete type, and the Query Engine's predicate evaluation.
func (c Codec) DecodeField(data []byte, field string) (interface{}, bool, error) {
	m, err := c.DecodeMap(data)
	if err != nil {
		return nil, false, err
	}
	v, ok := m[field]
	return v, ok, nil
}

// DecodeMap decodes data into a generic field map. POT records are
// always gob-encoded from a map[string]interface{} (see Encode), so
// this always succeeds regardless of the Go type the record was
// originally Set with.
func (c Codec) DecodeMap(data []byte) (map[string]interface{}, error) {
	m := map[string]interface{}{}
	var err error
	switch c.format {
	case JSON:
		err = json.Unmarshal(data, &m)
	case YAML:
		generic := map[interface{}]interface{}{}
		if err = yaml.Unmarshal(data, &generic); err == nil {
			m = normalizeYAMLMap(generic)
		}
	case POT:
		m, err = decodePOTMap(data)
	default:
		err = fmt.Errorf("codec: unsupported format %q", c.format)
	}
	if err != nil {
		return nil, yerrors.Wrap(yerrors.ErrDeserializationFailed, err, string(c.format))
	}
	return m, nil
}

func decodePOTMap(data []byte) (map[string]interface{}, error) {
	m := map[string]interface{}{}
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&m); err != nil {
		return nil, err
	}
	return m, nil
}

func normalizeYAMLMap(in map[interface{}]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		out[fmt.Sprintf("%v", k)] = v
	}
	return out
}

/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

var errNotScalar = errors.New("metadata value must be a string, bool or number")

// Metadata carries the well-known diagnostic fields of an alert plus
// forward-compatible scalar extras.
type Metadata struct {
	Recommendations []string `json:"recommendations,omitempty"`
	StackTrace      string   `json:"stack_trace,omitempty"`
	ErrorType       string   `json:"error_type,omitempty"`
	AffectedUsers   int      `json:"affected_users,omitempty"`
	ErrorCount      int      `json:"error_count,omitempty"`
	Extra           Fields   `json:"extra,omitzero"`
}

// Fields is a key-ordered map of string keys to scalar values.
type Fields struct {
	values map[string]interface{}
}

// Set stores a scalar under key. Non-scalar values are rejected.
func (f *Fields) Set(key string, value interface{}) error {
	v, err := normalizeScalar(value)
	if err != nil {
		return fmt.Errorf("%w: key %q", err, key)
	}

	if f.values == nil {
		f.values = make(map[string]interface{})
	}

	f.values[key] = v

	return nil
}

// Get returns the value stored under key.
func (f Fields) Get(key string) (interface{}, bool) {
	v, ok := f.values[key]

	return v, ok
}

// String returns the value under key formatted as a string.
func (f Fields) String(key string) string {
	v, ok := f.values[key]
	if !ok {
		return ""
	}

	if s, ok := v.(string); ok {
		return s
	}

	return fmt.Sprint(v)
}

// Keys returns the keys in sorted order.
func (f Fields) Keys() []string {
	keys := make([]string, 0, len(f.values))
	for k := range f.values {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

// Len returns the number of fields.
func (f Fields) Len() int {
	return len(f.values)
}

// IsZero lets encoders with omitempty-style checks skip empty field sets.
func (f Fields) IsZero() bool {
	return len(f.values) == 0
}

func (f Fields) MarshalJSON() ([]byte, error) {
	if len(f.values) == 0 {
		return []byte("{}"), nil
	}

	// encoding/json writes map keys in sorted order.
	return json.Marshal(f.values)
}

func (f *Fields) UnmarshalJSON(data []byte) error {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	f.values = nil

	for k, v := range raw {
		if err := f.Set(k, v); err != nil {
			return err
		}
	}

	return nil
}

func normalizeScalar(value interface{}) (interface{}, error) {
	switch v := value.(type) {
	case string, bool, float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint:
		return float64(v), nil
	case uint32:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	default:
		return nil, errNotScalar
	}
}

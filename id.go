/*

  Copyright 2012 Dmitry Kolesnikov, All Rights Reserved

  Licensed under the Apache License, Version 2.0 (the "License");
  you may not use this file except in compliance with the License.
  You may obtain a copy of the License at

      http://www.apache.org/licenses/LICENSE-2.0

  Unless required by applicable law or agreed to in writing, software
  distributed under the License is distributed on an "AS IS" BASIS,
  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
  See the License for the specific language governing permissions and
  limitations under the License.

*/

package snowflake

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ID is 64-bit identifier, the highest bit is always 0.
type ID uint64

// Uint64 returns identifier as unsigned integer
func (id ID) Uint64() uint64 { return uint64(id) }

// Int64 returns identifier as signed integer, it is never negative
func (id ID) Int64() int64 { return int64(id) }

// Before returns true if identifier a is allocated before b
func Before(a, b ID) bool { return a < b }

// After returns true if identifier a is allocated after b
func After(a, b ID) bool { return a > b }

/*
Split decomposes identifier to bytes slice. The function acts as binary
comprehension, the value n defines number of bits to extract into each cell.
The cells are aligned to the lowest bit, the first cell holds the remainder.
*/
func split(uid uint64, n uint) (bytes []byte) {
	size := (64 + n - 1) / n
	mask := uint64(1<<n) - 1
	bytes = make([]byte, size)

	for i := uint(0); i < size; i++ {
		bytes[i] = byte(uid >> (n * (size - 1 - i)) & mask)
	}
	return
}

// fold composes identifier from bytes slice, the operation is inverse to split.
func fold(n uint, bytes []byte) (uid uint64) {
	mask := uint64(1<<n) - 1
	for _, b := range bytes {
		uid = uid<<n | uint64(b)&mask
	}
	return
}

// Bytes encodes identifier to 8 bytes, big-endian
func (id ID) Bytes() []byte {
	return split(uint64(id), 8)
}

// FromBytes decodes identifier from 8 bytes, big-endian
func FromBytes(val []byte) (ID, error) {
	if len(val) != 8 {
		return 0, fmt.Errorf("malformed snowflake id: %v", val)
	}
	return ID(fold(8, val)), nil
}

// String encodes identifier to lexicographically sortable string
func (id ID) String() string {
	return encode64(uint64(id))
}

// FromString decodes identifier from lexicographically sortable string
func FromString(val string) (ID, error) {
	uid, err := decode64(val)
	if err != nil {
		return 0, err
	}
	return ID(uid), nil
}

// Parse decodes identifier either from sortable string or decimal. Input of
// sortable string length is decoded as sortable string whenever it is valid,
// even if it consists of digits only.
func Parse(val string) (ID, error) {
	if len(val) == len64 {
		if uid, err := decode64(val); err == nil {
			return ID(uid), nil
		}
	}

	uid, err := strconv.ParseUint(val, 10, 63)
	if err != nil {
		return 0, fmt.Errorf("malformed snowflake id: %q", val)
	}
	return ID(uid), nil
}

// MarshalJSON encodes identifier to lexicographically sortable JSON string
func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.String())
}

// UnmarshalJSON decodes lexicographically sortable JSON string to identifier
func (id *ID) UnmarshalJSON(b []byte) error {
	var val string
	if err := json.Unmarshal(b, &val); err != nil {
		return err
	}

	uid, err := FromString(val)
	if err != nil {
		return err
	}
	*id = uid
	return nil
}

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

import "math/bits"

// usable bits of identifier, the highest one is kept 0 so that
// identifier remains positive when casted to int64
const idBits = 63

/*
Layout is the bit budget of identifier

	1bit    𝒕 bit              𝒎 bit       𝒔 bit
	 |-|-------------------|------------|---------|
	 ⟨0⟩        ⟨𝒕⟩              ⟨𝒎⟩          ⟨𝒔⟩

The budget is fixed once the generator is created.
*/
type Layout struct {
	TimestampBits int
	MachineBits   int
	SequenceBits  int
}

// NewLayout derives bit budget from capacity bounds. The machine and sequence
// fractions take exactly enough bits to hold values [0, bound), the timestamp
// gets the rest of 63 bits. Both bounds must be at least 2 and leave at least
// one bit for the timestamp.
func NewLayout(maxMachineID, maxSequence int64) (Layout, error) {
	switch {
	case maxMachineID < 2:
		return Layout{}, invalidConfig("maxMachineID", maxMachineID, "at least 2 machines are required")
	case maxSequence < 2:
		return Layout{}, invalidConfig("maxSequence", maxSequence, "at least 2 sequence values are required")
	}

	m := bitLength(maxMachineID - 1)
	s := bitLength(maxSequence - 1)
	if idBits-m-s < 1 {
		return Layout{}, invalidConfig("timestampBits", int64(idBits-m-s),
			"machine and sequence bits leave no bits for timestamp")
	}

	return Layout{
		TimestampBits: idBits - m - s,
		MachineBits:   m,
		SequenceBits:  s,
	}, nil
}

// number of bits required to represent x, 0 for x = 0
func bitLength(x int64) int {
	return bits.Len64(uint64(x))
}

// Fits returns true if timestamp is representable by ⟨𝒕⟩ fraction
func (l Layout) Fits(t int64) bool {
	return bitLength(t) <= l.TimestampBits
}

// Compose packs fractions into identifier.
func (l Layout) Compose(t, machine, seq int64) ID {
	return ID(uint64(t)<<l.timeShift() |
		uint64(machine)<<l.SequenceBits |
		uint64(seq))
}

func (l Layout) timeShift() int {
	return l.MachineBits + l.SequenceBits
}

func mask(n int) uint64 {
	return 1<<n - 1
}

/*******************************************************************************

Lenses of identifier

*******************************************************************************/

// Time returns ⟨𝒕⟩ fraction of identifier, milliseconds since clock epoch
func (l Layout) Time(id ID) int64 {
	return int64(uint64(id) >> l.timeShift())
}

// Machine returns ⟨𝒎⟩ fraction of identifier
func (l Layout) Machine(id ID) int64 {
	return int64(uint64(id) >> l.SequenceBits & mask(l.MachineBits))
}

// Seq returns ⟨𝒔⟩ fraction of identifier
func (l Layout) Seq(id ID) int64 {
	return int64(uint64(id) & mask(l.SequenceBits))
}

// Split decomposes identifier into ⟨𝒕⟩, ⟨𝒎⟩ and ⟨𝒔⟩ fractions
func (l Layout) Split(id ID) (t, machine, seq int64) {
	return l.Time(id), l.Machine(id), l.Seq(id)
}

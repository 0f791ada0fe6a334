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
	"time"
)

// Chronos is an abstraction of the wall clock used by generator.
type Chronos interface {
	// Milliseconds elapsed since the epoch of the clock ⟨𝒕⟩
	T() int64
	// Zero point of ⟨𝒕⟩
	Epoch() time.Time
}

// Wall clock type, the default one
type clock struct {
	// zero point, in UNIX milliseconds
	epoch int64
	// UNIX milliseconds generator
	ticker func() int64
}

func (clock clock) T() int64         { return clock.ticker() - clock.epoch }
func (clock clock) Epoch() time.Time { return time.UnixMilli(clock.epoch) }

// Creates instance of wall clock, UNIX milliseconds by default
func NewClock(opts ...Config) Chronos {
	clock := &clock{}
	defopt := []Config{WithClockUnix()}

	for _, opt := range append(defopt, opts...) {
		opt(clock)
	}
	return clock
}

// Create mock instance of wall clock, it is frozen at UNIX epoch
func NewClockMock(opts ...Config) Chronos {
	clock := &clock{
		epoch:  0,
		ticker: func() int64 { return 0 },
	}

	for _, opt := range opts {
		opt(clock)
	}
	return clock
}

// Config option of wall clock behavior.
type Config func(*clock)

// WithClock configures a custom generator of UNIX milliseconds
func WithClock(ticker func() int64) Config {
	return func(clock *clock) {
		clock.ticker = ticker
	}
}

// WithClockUnix configures time.Now().UnixMilli() as generator function
func WithClockUnix() Config {
	return func(clock *clock) {
		clock.ticker = unixtime
	}
}

func unixtime() int64 {
	return time.Now().UnixMilli()
}

// WithEpoch shifts zero point of ⟨𝒕⟩ to the given instant. Recent epoch
// leaves more timestamps representable by the same number of bits.
func WithEpoch(epoch time.Time) Config {
	return func(clock *clock) {
		clock.epoch = epoch.UnixMilli()
	}
}

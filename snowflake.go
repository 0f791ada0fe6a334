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
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Generator allocates identifiers for single machine. It is safe for
// concurrent use, one instance per process is expected.
type Generator struct {
	mu sync.Mutex

	layout       Layout
	machineID    int64
	maxMachineID int64
	maxSequence  int64

	clock  Chronos
	logger *zap.Logger

	lastTimestamp int64
	sequence      int64
}

// Option of generator behavior
type Option func(*Generator)

// WithChronos configures the clock used to read ⟨𝒕⟩
func WithChronos(clock Chronos) Option {
	return func(g *Generator) {
		g.clock = clock
	}
}

// WithLogger configures logger for the generator, it is silent by default
func WithLogger(logger *zap.Logger) Option {
	return func(g *Generator) {
		g.logger = logger
	}
}

/*
New creates generator for the machine. The machine identity must be in the
range [0, maxMachineID). Both maxMachineID and maxSequence must be at least 2,
a single value fraction does not contribute to uniqueness.

The constructor fails if machine and sequence fractions leave too few bits
to represent the current timestamp.
*/
func New(machineID, maxMachineID, maxSequence int64, opts ...Option) (*Generator, error) {
	layout, err := NewLayout(maxMachineID, maxSequence)
	if err != nil {
		return nil, err
	}

	switch {
	case machineID < 0:
		return nil, invalidConfig("machineID", machineID, "machine id is negative")
	case machineID >= maxMachineID:
		return nil, invalidConfig("machineID", machineID, "machine id exceeds maxMachineID")
	}

	g := &Generator{
		layout:       layout,
		machineID:    machineID,
		maxMachineID: maxMachineID,
		maxSequence:  maxSequence,
		// first identifier within construction millisecond gets ⟨𝒔⟩ = 0
		sequence: -1,
	}

	for _, opt := range opts {
		opt(g)
	}
	if g.clock == nil {
		g.clock = NewClock()
	}
	if g.logger == nil {
		g.logger = zap.NewNop()
	}

	now := g.clock.T()
	if !g.layout.Fits(now) {
		return nil, invalidConfig("timestampBits", int64(g.layout.TimestampBits),
			"machine and sequence bits leave too few bits for timestamp")
	}
	g.lastTimestamp = now

	return g, nil
}

// MaxMachineID returns capacity bound of machine fraction
func (g *Generator) MaxMachineID() int64 { return g.maxMachineID }

// MachineID returns identity of the machine
func (g *Generator) MachineID() int64 { return g.machineID }

// MaxSequence returns number of identifiers available per millisecond
func (g *Generator) MaxSequence() int64 { return g.maxSequence }

// Layout returns bit budget used by the generator
func (g *Generator) Layout() Layout { return g.layout }

// Time converts ⟨𝒕⟩ fraction of identifier to wall clock time
func (g *Generator) Time(id ID) time.Time {
	return g.clock.Epoch().Add(time.Duration(g.layout.Time(id)) * time.Millisecond)
}

/*
NextID allocates a new identifier. Identifiers are strictly increasing while
the clock does not move backward.

The call fails with *TimestampOverflowError if current timestamp does not fit
the layout, and with *ClockRegressionError if the clock reports time earlier
than the previous call observed. The state of generator is not changed by
failed calls.

If the sequence is exhausted within the millisecond, the call busy waits
for the next one.
*/
func (g *Generator) NextID() (ID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.clock.T()
	if !g.layout.Fits(now) {
		return 0, g.overflow(now)
	}

	if now < g.lastTimestamp {
		g.logger.Warn("clock moved backwards",
			zap.Int64("last", g.lastTimestamp),
			zap.Int64("now", now),
		)
		return 0, &ClockRegressionError{Last: g.lastTimestamp, Now: now}
	}

	seq := int64(0)
	if now == g.lastTimestamp {
		seq = g.sequence + 1
		if seq == g.maxSequence {
			g.logger.Debug("sequence exhausted, waiting for next millisecond",
				zap.Int64("timestamp", now),
				zap.Int64("maxSequence", g.maxSequence),
			)
			seq = 0
			now = g.nextMillis()
			if !g.layout.Fits(now) {
				return 0, g.overflow(now)
			}
		}
	}
	g.lastTimestamp = now
	g.sequence = seq

	return g.layout.Compose(now, g.machineID, seq), nil
}

func (g *Generator) overflow(now int64) error {
	g.logger.Warn("timestamp overflows layout",
		zap.Int64("timestamp", now),
		zap.Int("bits", g.layout.TimestampBits),
	)
	return &TimestampOverflowError{Timestamp: now, Bits: g.layout.TimestampBits}
}

// spins until clock passes the last timestamp, yields processor in-between
// the samples but never sleeps
func (g *Generator) nextMillis() int64 {
	now := g.clock.T()
	for now <= g.lastTimestamp {
		runtime.Gosched()
		now = g.clock.T()
	}
	return now
}

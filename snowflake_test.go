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

package snowflake_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fogfish/it/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/young-yangyong/SnowFlake"
)

// ticks replays timestamps, the last one is repeated forever
func ticks(seq ...int64) func() int64 {
	i := 0
	return func() int64 {
		t := seq[i]
		if i < len(seq)-1 {
			i++
		}
		return t
	}
}

func mock(seq ...int64) snowflake.Option {
	return snowflake.WithChronos(
		snowflake.NewClockMock(snowflake.WithClock(ticks(seq...))),
	)
}

func TestNewRejectsConfig(t *testing.T) {
	spec := map[string][3]int64{
		"maxMachineID=1":         {0, 1, 4096},
		"maxMachineID=0":         {0, 0, 4096},
		"maxSequence=1":          {0, 1024, 1},
		"maxSequence=-1":         {0, 1024, -1},
		"machineID=maxMachineID": {1024, 1024, 4096},
		"machineID=-1":           {-1, 1024, 4096},
	}

	for name, tc := range spec {
		t.Run(name, func(t *testing.T) {
			g, err := snowflake.New(tc[0], tc[1], tc[2], mock(1000))

			var cerr *snowflake.ConfigurationError
			it.Then(t).Should(
				it.True(g == nil),
				it.True(errors.As(err, &cerr)),
				it.True(errors.Is(err, snowflake.ErrConfiguration)),
			)
		})
	}
}

func TestNewRejectsTimestampBudget(t *testing.T) {
	// 30 + 30 bits leaves 3 bits for timestamp
	_, err := snowflake.New(0, 1<<30, 1<<30)
	it.Then(t).Should(
		it.True(errors.Is(err, snowflake.ErrConfiguration)),
	)

	_, err = snowflake.New(0, 1<<30, 1<<30, mock(8))
	it.Then(t).Should(
		it.True(errors.Is(err, snowflake.ErrConfiguration)),
	)

	_, err = snowflake.New(0, 1<<30, 1<<30, mock(7))
	it.Then(t).Should(
		it.True(err == nil),
	)
}

func TestNewRejectsClockBeforeEpoch(t *testing.T) {
	clock := snowflake.NewClock(
		snowflake.WithEpoch(time.Now().Add(time.Hour)),
	)
	_, err := snowflake.New(0, 1024, 4096, snowflake.WithChronos(clock))

	it.Then(t).Should(
		it.True(errors.Is(err, snowflake.ErrConfiguration)),
	)
}

func TestBitBudget(t *testing.T) {
	spec := []struct {
		maxMachineID, maxSequence int64
		machineBits, sequenceBits int
	}{
		{2, 2, 1, 1},
		{3, 5, 2, 3},
		{1000, 4000, 10, 12},
		{1024, 4096, 10, 12},
		{1025, 4097, 11, 13},
		{1 << 20, 1 << 8, 20, 8},
	}

	for _, tc := range spec {
		g, err := snowflake.New(1, tc.maxMachineID, tc.maxSequence, mock(1000))
		it.Then(t).Should(
			it.True(err == nil),
		)

		l := g.Layout()
		it.Then(t).Should(
			it.Equal(l.MachineBits, tc.machineBits),
			it.Equal(l.SequenceBits, tc.sequenceBits),
			it.Equal(l.TimestampBits+l.MachineBits+l.SequenceBits, 63),
		)
	}
}

func TestNewLayout(t *testing.T) {
	l, err := snowflake.NewLayout(2, 2)
	it.Then(t).Should(
		it.True(err == nil),
		it.Equal(l.TimestampBits, 61),
	)

	for _, tc := range [][2]int64{{0, 16}, {-1, 16}, {16, 1}, {16, 0}, {1 << 40, 1 << 40}} {
		_, err := snowflake.NewLayout(tc[0], tc[1])
		it.Then(t).Should(
			it.True(errors.Is(err, snowflake.ErrConfiguration)),
		)
	}
}

func TestAccessors(t *testing.T) {
	g, err := snowflake.New(7, 1000, 4000, mock(1000))

	it.Then(t).Should(
		it.True(err == nil),
		it.Equal(g.MachineID(), 7),
		it.Equal(g.MaxMachineID(), 1000),
		it.Equal(g.MaxSequence(), 4000),
	)
}

func TestNextID(t *testing.T) {
	g, _ := snowflake.New(5, 16, 16, mock(1000, 1000, 1001))
	a, erra := g.NextID()
	b, errb := g.NextID()
	c, errc := g.NextID()
	l := g.Layout()

	it.Then(t).Should(
		it.True(erra == nil),
		it.True(errb == nil),
		it.True(errc == nil),
		it.Equal(a, snowflake.ID(1000<<8|5<<4|0)),
		it.Equal(b, snowflake.ID(1001<<8|5<<4|0)),
		it.Equal(l.Seq(c), 1),
		it.True(snowflake.Before(a, b)),
		it.True(snowflake.After(c, b)),
	)
}

func TestSequenceRollover(t *testing.T) {
	g, _ := snowflake.New(1, 4, 4,
		mock(1000, 1000, 1000, 1000, 1000, 1000, 1000, 1000, 1001),
	)
	l := g.Layout()

	for seq := int64(0); seq < 4; seq++ {
		id, err := g.NextID()
		it.Then(t).Should(
			it.True(err == nil),
			it.Equal(l.Time(id), 1000),
			it.Equal(l.Seq(id), seq),
		)
	}

	id, err := g.NextID()
	it.Then(t).Should(
		it.True(err == nil),
		it.Equal(l.Time(id), 1001),
		it.Equal(l.Machine(id), 1),
		it.Equal(l.Seq(id), 0),
	)
}

func TestClockRegression(t *testing.T) {
	g, _ := snowflake.New(1, 4, 16, mock(1000, 1000, 999, 1000))
	l := g.Layout()

	a, err := g.NextID()
	it.Then(t).Should(
		it.True(err == nil),
		it.Equal(l.Seq(a), 0),
	)

	_, err = g.NextID()
	var cerr *snowflake.ClockRegressionError
	it.Then(t).Should(
		it.True(errors.Is(err, snowflake.ErrClockRegression)),
		it.True(errors.As(err, &cerr)),
		it.Equal(cerr.Last, 1000),
		it.Equal(cerr.Now, 999),
	)

	// state is untouched, sequence continues within the same millisecond
	b, err := g.NextID()
	it.Then(t).Should(
		it.True(err == nil),
		it.Equal(l.Time(b), 1000),
		it.Equal(l.Seq(b), 1),
	)
}

func TestTimestampOverflow(t *testing.T) {
	// 20 + 22 bits leaves 21 bits for timestamp
	g, err := snowflake.New(0, 1<<20, 1<<22, mock(1000, 1<<21))
	it.Then(t).Should(
		it.True(err == nil),
		it.Equal(g.Layout().TimestampBits, 21),
	)

	_, err = g.NextID()
	var oerr *snowflake.TimestampOverflowError
	it.Then(t).Should(
		it.True(errors.Is(err, snowflake.ErrTimestampOverflow)),
		it.True(errors.As(err, &oerr)),
		it.Equal(oerr.Timestamp, 1<<21),
		it.Equal(oerr.Bits, 21),
	)
}

func TestOverflowWhileWaiting(t *testing.T) {
	// 60 + 1 bits leaves 2 bits for timestamp, [0, 3]
	g, _ := snowflake.New(0, 1<<60, 2, mock(3, 3, 3, 3, 4))
	l := g.Layout()

	a, err := g.NextID()
	it.Then(t).Should(
		it.True(err == nil),
		it.Equal(l.Seq(a), 0),
	)

	b, err := g.NextID()
	it.Then(t).Should(
		it.True(err == nil),
		it.Equal(l.Seq(b), 1),
	)

	_, err = g.NextID()
	it.Then(t).Should(
		it.True(errors.Is(err, snowflake.ErrTimestampOverflow)),
	)
}

func TestFieldsRoundTrip(t *testing.T) {
	g, _ := snowflake.New(613, 1000, 4000, mock(1700000000000))
	l := g.Layout()

	for i := int64(0); i < 100; i++ {
		id, err := g.NextID()
		ts, machine, seq := l.Split(id)

		it.Then(t).Should(
			it.True(err == nil),
			it.Equal(int64(id)>>(l.MachineBits+l.SequenceBits), 1700000000000),
			it.Equal(ts, 1700000000000),
			it.Equal(machine, 613),
			it.Equal(seq, i),
			it.Equal(l.Compose(ts, machine, seq), id),
		)
	}
}

func TestTime(t *testing.T) {
	epoch := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := snowflake.NewClockMock(
		snowflake.WithEpoch(epoch),
		snowflake.WithClock(func() int64 { return epoch.UnixMilli() + 5000 }),
	)
	g, _ := snowflake.New(1, 2, 2, snowflake.WithChronos(clock))
	id, err := g.NextID()

	it.Then(t).Should(
		it.True(err == nil),
		it.Equal(g.Layout().Time(id), 5000),
		it.True(g.Time(id).Equal(epoch.Add(5*time.Second))),
	)
}

func TestMonotonic(t *testing.T) {
	g, err := snowflake.New(3, 1024, 16)
	it.Then(t).Should(
		it.True(err == nil),
	)

	prev, _ := g.NextID()
	for i := 0; i < 2000; i++ {
		id, err := g.NextID()
		it.Then(t).Should(
			it.True(err == nil),
			it.True(snowflake.Before(prev, id)),
		)
		prev = id
	}
}

func TestUniqueConcurrent(t *testing.T) {
	const (
		workers = 8
		perW    = 2000
	)

	g, _ := snowflake.New(3, 1024, 4096)

	var (
		mu   sync.Mutex
		seen = make(map[snowflake.ID]struct{}, workers*perW)
		fail = 0
		wg   sync.WaitGroup
	)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids := make([]snowflake.ID, 0, perW)
			for i := 0; i < perW; i++ {
				id, err := g.NextID()
				if err != nil {
					mu.Lock()
					fail++
					mu.Unlock()
					return
				}
				ids = append(ids, id)
			}

			mu.Lock()
			for _, id := range ids {
				seen[id] = struct{}{}
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	it.Then(t).Should(
		it.Equal(fail, 0),
		it.Equal(len(seen), workers*perW),
	)
}

func TestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	g, _ := snowflake.New(1, 2, 2,
		mock(1000, 1000, 1000, 1000, 1001, 999),
		snowflake.WithLogger(zap.New(core)),
	)

	g.NextID()
	g.NextID()
	g.NextID()
	_, err := g.NextID()

	it.Then(t).Should(
		it.True(errors.Is(err, snowflake.ErrClockRegression)),
		it.Equal(logs.FilterMessage("sequence exhausted, waiting for next millisecond").Len(), 1),
		it.Equal(logs.FilterMessage("clock moved backwards").Len(), 1),
	)
}

func BenchmarkNextID(b *testing.B) {
	g, _ := snowflake.New(1, 1024, 4096)

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		g.NextID()
	}
}

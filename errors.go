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
	"errors"
	"fmt"
	"strconv"
)

// Sentinel errors, each typed error below unwraps to one of them.
var (
	ErrConfiguration     = errors.New("invalid configuration")
	ErrClockRegression   = errors.New("clock moved backwards")
	ErrTimestampOverflow = errors.New("timestamp overflows layout")
)

// ConfigurationError is returned by constructor when capacity bounds or
// machine identity cannot form a usable generator.
type ConfigurationError struct {
	Field  string
	Value  int64
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf(`snowflake: %s %s=%d, reason: "%s"`,
		ErrConfiguration, strconv.Quote(e.Field), e.Value, e.Reason)
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

func invalidConfig(field string, value int64, reason string) *ConfigurationError {
	return &ConfigurationError{Field: field, Value: value, Reason: reason}
}

// ClockRegressionError is returned when the clock reports a timestamp
// earlier than the one used by the previous identifier.
type ClockRegressionError struct {
	Last int64
	Now  int64
}

func (e *ClockRegressionError) Error() string {
	return fmt.Sprintf("snowflake: %s by %d ms (last %d, now %d), refusing to generate id",
		ErrClockRegression, e.Last-e.Now, e.Last, e.Now)
}

func (e *ClockRegressionError) Unwrap() error { return ErrClockRegression }

// TimestampOverflowError is returned when the timestamp requires more bits
// than the layout allocates for ⟨𝒕⟩.
type TimestampOverflowError struct {
	Timestamp int64
	Bits      int
}

func (e *TimestampOverflowError) Error() string {
	return fmt.Sprintf("snowflake: %s, timestamp %d does not fit %d bits",
		ErrTimestampOverflow, e.Timestamp, e.Bits)
}

func (e *TimestampOverflowError) Unwrap() error { return ErrTimestampOverflow }

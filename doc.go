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

/*
Package snowflake generates unique, roughly time ordered 64-bit identifiers in
a decentralized manner. Each generator packs a millisecond timestamp, a machine
identifier and a per-millisecond sequence into a single integer:

	1bit    𝒕 bit              𝒎 bit       𝒔 bit
	 |-|-------------------|------------|---------|
	 ⟨0⟩        ⟨𝒕⟩              ⟨𝒎⟩          ⟨𝒔⟩

↣ ⟨𝒕⟩ is a millisecond timestamp read from the generator's clock. By default
it is UNIX time, a custom epoch shifts the zero point to extend the lifetime
of the layout.

↣ ⟨𝒎⟩ is the machine identifier. It is assigned to each generator by external
configuration, uniqueness across machines relies on disjoint assignment.

↣ ⟨𝒔⟩ is the sequence, a counter that distinguishes identifiers allocated
within the same millisecond by the same generator.

The bit budget is not fixed. It is derived from two capacity bounds supplied
by the application: the maximum number of machines and the maximum number of
identifiers per millisecond. Whatever remains of 63 bits is given to the
timestamp.

	gen, err := snowflake.New(7, 1024, 4096)
	id, err := gen.NextID()

Identifiers issued by one generator are strictly increasing as long as the
clock never moves backward. The generator refuses to issue identifiers when it
observes a clock regression, or when the timestamp no longer fits into the
layout. Both conditions are reported as errors, the generator never recovers
from them silently.

Identifiers are not ordered across machines.
*/
package snowflake

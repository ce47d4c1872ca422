// Copyright 2024 The Cockroach Authors
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

package oamap

import "fmt"

// Prober is the collision resolution strategy of a Map. It turns the
// initial slot of a key into a sequence of candidate slots. The set of
// probers is closed: use Linear or DoubleHash.
type Prober[K any] interface {
	// probe starts a new probe sequence for key at the given initial slot
	// and table capacity.
	probe(start, capacity uintptr, key K) probeSeq
}

type linearProber[K any] struct{}

// Linear returns a prober visiting consecutive slots:
//
//	p(i) := start + i (mod capacity)
func Linear[K any]() Prober[K] {
	return linearProber[K]{}
}

func (linearProber[K]) probe(start, capacity uintptr, _ K) probeSeq {
	return makeProbeSeq(start, capacity, 1)
}

type doubleHashProber[K any] struct {
	secondary HashFunc[K]
}

// DoubleHash returns a prober whose step between candidate slots is
// derived from secondary, a hash of the key that should be independent of
// the map's primary hash:
//
//	step := mod - secondary(key) % mod
//	p(i) := start + i*step (mod capacity)
//
// where mod is the largest prime of a fixed list that is smaller than the
// capacity. Since secondary(key) % mod < mod the step is never zero, and
// with a prime capacity every step smaller than the capacity visits every
// slot exactly once.
func DoubleHash[K any](secondary HashFunc[K]) Prober[K] {
	if secondary == nil {
		panic("oamap: DoubleHash requires a secondary hash function")
	}
	return doubleHashProber[K]{secondary: secondary}
}

func (p doubleHashProber[K]) probe(start, capacity uintptr, key K) probeSeq {
	mod := doubleHashModulus(capacity)
	step := mod - uintptr(p.secondary(key)%uint64(mod))
	return makeProbeSeq(start, capacity, step)
}

// probeSeq maintains the state for a probe sequence. The sequence is an
// arithmetic progression of the form
//
//	p(i) := start + i*step (mod capacity)
//
// which is cut off after capacity candidates: an open-addressing probe
// sequence never examines more slots than the table holds. A probeSeq is a
// value and lives for a single operation on the map.
type probeSeq struct {
	start    uintptr
	capacity uintptr
	step     uintptr
	// index is the number of candidates produced before offset.
	index  uintptr
	offset uintptr
}

func makeProbeSeq(start, capacity, step uintptr) probeSeq {
	return probeSeq{
		start:    start,
		capacity: capacity,
		step:     step,
		index:    0,
		offset:   start % capacity,
	}
}

// next advances to the next candidate. The offset is updated incrementally
// so that i*step never overflows.
func (s probeSeq) next() probeSeq {
	s.index++
	s.offset = (s.offset + s.step%s.capacity) % s.capacity
	return s
}

// done returns true once capacity candidates have been produced.
func (s probeSeq) done() bool {
	return s.index >= s.capacity
}

func (s probeSeq) String() string {
	return fmt.Sprintf("start=%d capacity=%d step=%d index=%d offset=%d",
		s.start, s.capacity, s.step, s.index, s.offset)
}

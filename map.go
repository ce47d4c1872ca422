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

// package oamap is a Go implementation of a classic open-addressing hash
// table with a pluggable probing strategy. See also:
// https://en.wikipedia.org/wiki/Open_addressing.
//
// # Layout
//
// A Map stores every entry directly in a single table of slots. The table
// is made up of two parallel arrays of the same length: a control array
// holding one byte of state per slot (empty, full or deleted) and a slot
// array holding the keys and values. The length of the table (its
// capacity) is always drawn from a fixed ascending schedule of primes. The
// table never shrinks.
//
// # Probing
//
// The initial slot for a key is hash(key) mod capacity. From there a
// Prober produces the sequence of candidate slots. Two probers are
// provided:
//
//   - Linear visits start, start+1, start+2, ... (mod capacity). It is
//     cache friendly but prone to primary clustering.
//   - DoubleHash visits start, start+step, start+2*step, ... where step is
//     derived from a secondary hash of the key and a prime modulus smaller
//     than the capacity. Keys colliding on their initial slot usually
//     diverge on the next probe.
//
// Every probe sequence is limited to capacity candidates which guarantees
// termination even for a full table.
//
// # Deletion
//
// Deletion leaves a tombstone (ctrlDeleted) in the slot. Lookups skip
// tombstones and stop at the first empty slot: no insertion ever skips an
// empty slot to place an entry further along the same probe sequence, so a
// key cannot live past an empty slot. Insertions reuse the first tombstone
// they pass once they have proven the key is not already present.
//
// # Growth
//
// Before every insertion the map computes (used+deleted)/capacity. Once
// that load factor reaches the growth threshold (0.4 by default) the map
// advances to the next capacity in the schedule and reinserts every live
// entry, dropping all tombstones. Counting tombstones in the load factor
// bounds the worst case probe length of a table that sees many deletions.
// Growth is not incremental: it is a single pass proportional to the
// number of live entries.
package oamap

import (
	"fmt"
	"strings"
)

const (
	debug = false

	defaultGrowthThreshold = 0.4
)

// Each slot in the table has a control byte which is in one of three
// states. Zero is ctrlEmpty so a freshly allocated control array is all
// empty.
type ctrl uint8

const (
	ctrlEmpty ctrl = iota
	ctrlFull
	ctrlDeleted
)

// Slot holds a key and value.
type Slot[K any, V any] struct {
	key   K
	value V
}

// Map is an unordered map from keys to values with Put, Get, Find, At,
// Entry and Delete operations, implemented with open addressing. By
// default a Map uses a seeded generic hash over comparable keys and ==
// for equality; NewFunc accepts any key type given a hash function and an
// equality predicate.
//
// Pointers returned by Find, At and Entry remain valid only until the next
// Put, Entry, Delete or Clear on the map.
//
// A Map is NOT goroutine-safe. Callers sharing a Map between goroutines
// must serialize every operation, including Get, which updates the probe
// statistics.
type Map[K any, V any] struct {
	hash   HashFunc[K]
	equal  EqualFunc[K]
	prober Prober[K]
	// growthThreshold is the load factor in (0, 1] at which the next
	// insertion grows the table.
	growthThreshold float64
	// capacities is the capacity schedule and capIndex the position of the
	// current capacity within it.
	capacities []uintptr
	capIndex   int
	// hint is the number of entries the caller expects to store. It is
	// consulted and reset when the map is constructed.
	hint int
	// ctrls and slots are both capacity in length.
	ctrls []ctrl
	slots []Slot[K, V]
	// The number of full slots (i.e. the number of elements in the map).
	used int
	// The number of tombstones.
	deleted int
	// probes is the total number of candidate slots examined.
	probes uint64
	// resizes is the number of times the table has grown.
	resizes int
}

// New constructs a new Map for comparable keys. Unless overridden with
// WithHash and WithEqual the map hashes keys with ComparableHash and
// compares them with ==. The map starts at the first capacity of its
// schedule unless WithCapacityHint asks for more room.
func New[K comparable, V any](options ...option[K, V]) *Map[K, V] {
	m := &Map[K, V]{
		hash: ComparableHash[K](),
		equal: func(a, b K) bool {
			return a == b
		},
	}
	m.init(options)
	return m
}

// NewFunc constructs a new Map for an arbitrary key type. The equality
// predicate must be consistent with hash: equal keys must have equal
// hashes.
func NewFunc[K any, V any](
	hash HashFunc[K], equal EqualFunc[K], options ...option[K, V],
) *Map[K, V] {
	if hash == nil || equal == nil {
		panic("oamap: NewFunc requires a hash function and an equality predicate")
	}
	m := &Map[K, V]{
		hash:  hash,
		equal: equal,
	}
	m.init(options)
	return m
}

func (m *Map[K, V]) init(options []option[K, V]) {
	m.prober = Linear[K]()
	m.growthThreshold = defaultGrowthThreshold
	m.capacities = defaultCapacities

	for _, op := range options {
		op.apply(m)
	}

	// Skip ahead to the first capacity able to hold hint entries without
	// growing. The last capacity of the schedule is used if none can.
	for m.capIndex+1 < len(m.capacities) &&
		float64(m.hint-1) >= m.growthThreshold*float64(m.capacities[m.capIndex]) {
		m.capIndex++
	}

	m.hint = 0

	capacity := m.capacities[m.capIndex]
	m.ctrls = make([]ctrl, capacity)
	m.slots = make([]Slot[K, V], capacity)

	if debug {
		fmt.Printf("init: capacity=%d growth-threshold=%.2f\n", capacity, m.growthThreshold)
	}
	m.checkInvariants()
}

// Put inserts an entry into the map, overwriting an existing value if an
// entry with the same key already exists. Put returns an error wrapping
// ErrScheduleExhausted if the map needs to grow but its capacity schedule
// has no larger entry, and an error wrapping ErrCapacityExhausted if the
// probe sequence found no slot for the entry. In both cases the map is
// left unchanged. Updating a key that is already present never fails.
func (m *Map[K, V]) Put(key K, value V) error {
	_, err := m.insert(key, value, true /* overwrite */)
	return err
}

// Get retrieves the value from the map for the specified key, return
// ok=false if the key is not present.
func (m *Map[K, V]) Get(key K) (value V, ok bool) {
	i, ok := m.find(key)
	if !ok {
		return value, false
	}
	return m.slots[i].value, true
}

// Find returns a pointer to the value stored for key, or nil if the key is
// not present. The value may be modified through the pointer.
func (m *Map[K, V]) Find(key K) *V {
	i, ok := m.find(key)
	if !ok {
		return nil
	}
	return &m.slots[i].value
}

// At is like Find but returns an error wrapping ErrMissingKey when the key
// is not present.
func (m *Map[K, V]) At(key K) (*V, error) {
	i, ok := m.find(key)
	if !ok {
		return nil, fmt.Errorf("oamap: at(%v): %w", key, ErrMissingKey)
	}
	return &m.slots[i].value, nil
}

// Entry returns a pointer to the value stored for key, first inserting the
// zero value of V if the key is not present. Inserting can fail for the
// same reasons as Put.
func (m *Map[K, V]) Entry(key K) (*V, error) {
	if i, ok := m.find(key); ok {
		return &m.slots[i].value, nil
	}
	var zero V
	return m.insert(key, zero, false /* overwrite */)
}

// Delete deletes the entry corresponding to the specified key from the map.
// It is a noop to delete a non-existent key.
func (m *Map[K, V]) Delete(key K) {
	i, ok := m.find(key)
	if !ok {
		if debug {
			fmt.Printf("delete(%v): not found\n", key)
		}
		return
	}

	// Destroy the contents so the slot doesn't retain references, and leave
	// a tombstone behind so that probe sequences passing through this slot
	// continue past it.
	m.ctrls[i] = ctrlDeleted
	m.slots[i] = Slot[K, V]{}
	m.used--
	m.deleted++

	if debug {
		fmt.Printf("delete(%v): index=%d used=%d deleted=%d\n", key, i, m.used, m.deleted)
	}
	m.checkInvariants()
}

// All calls yield sequentially for each key and value present in the map,
// in slot order. If yield returns false, iteration stops. The order is not
// stable across growth of the map.
func (m *Map[K, V]) All(yield func(key K, value V) bool) {
	// Snapshot the controls and slots so that iteration remains valid if the
	// map is resized during iteration.
	ctrls, slots := m.ctrls, m.slots
	for i := range ctrls {
		if ctrls[i] != ctrlFull {
			continue
		}
		if !yield(slots[i].key, slots[i].value) {
			return
		}
	}
}

// Clear deletes all entries from the map, retaining its current capacity.
// Tombstones are dropped as well.
func (m *Map[K, V]) Clear() {
	clear(m.ctrls)
	clear(m.slots)
	m.used = 0
	m.deleted = 0
	m.checkInvariants()
}

// Len returns the number of entries in the map.
func (m *Map[K, V]) Len() int {
	return m.used
}

// Empty returns true if the map holds no entries.
func (m *Map[K, V]) Empty() bool {
	return m.used == 0
}

// Capacity returns the number of slots in the table.
func (m *Map[K, V]) Capacity() int {
	return len(m.ctrls)
}

func (m *Map[K, V]) capacity() uintptr {
	return uintptr(len(m.ctrls))
}

// loadFactor includes tombstones: they lengthen probe sequences just like
// live entries do.
func (m *Map[K, V]) loadFactor() float64 {
	return float64(m.used+m.deleted) / float64(len(m.ctrls))
}

// probeSeq returns the probe sequence for key at the current capacity.
func (m *Map[K, V]) probeSeq(key K) probeSeq {
	capacity := m.capacity()
	start := uintptr(m.hash(key) % uint64(capacity))
	return m.prober.probe(start, capacity, key)
}

// find returns the index of the full slot holding key.
func (m *Map[K, V]) find(key K) (uintptr, bool) {
	seq := m.probeSeq(key)
	if debug {
		fmt.Printf("find(%v): %s\n", key, seq)
	}

	for ; !seq.done(); seq = seq.next() {
		m.probes++
		i := seq.offset
		switch m.ctrls[i] {
		case ctrlEmpty:
			if debug {
				fmt.Printf("find(not-found): index=%d empty\n", i)
			}
			return 0, false
		case ctrlFull:
			if m.equal(m.slots[i].key, key) {
				return i, true
			}
		}
		// Tombstones and non-matching keys: keep probing.
	}

	if debug {
		fmt.Printf("find(exhausted): %s\n", seq)
	}
	return 0, false
}

// insert places key in the map, returning a pointer to its value. If the
// key is already present its value is overwritten only when overwrite is
// set.
func (m *Map[K, V]) insert(key K, value V, overwrite bool) (*V, error) {
	if lf := m.loadFactor(); lf >= m.growthThreshold {
		if debug {
			fmt.Printf("put(%v): load-factor=%.3f >= %.3f\n", key, lf, m.growthThreshold)
		}
		if err := m.resize(); err != nil {
			// Updating an existing key needs no room.
			if i, ok := m.find(key); ok {
				s := &m.slots[i]
				if overwrite {
					s.value = value
				}
				return &s.value, nil
			}
			return nil, err
		}
	}

	// We cannot stop at the first tombstone: the key may live further along
	// the probe sequence. Remember the first free slot and keep going until
	// an empty slot proves the key is absent.
	var target uintptr
	var found bool

	seq := m.probeSeq(key)
	if debug {
		fmt.Printf("put(%v): %s\n", key, seq)
	}

probing:
	for ; !seq.done(); seq = seq.next() {
		m.probes++
		i := seq.offset
		switch m.ctrls[i] {
		case ctrlEmpty:
			if !found {
				target, found = i, true
			}
			break probing
		case ctrlDeleted:
			if !found {
				target, found = i, true
			}
		default:
			s := &m.slots[i]
			if m.equal(s.key, key) {
				if overwrite {
					s.value = value
				}
				if debug {
					fmt.Printf("put(updating): index=%d key=%v\n", i, key)
				}
				return &s.value, nil
			}
		}
	}

	if !found {
		return nil, fmt.Errorf("oamap: put(%v) after %d probes at capacity %d: %w",
			key, seq.index, m.capacity(), ErrCapacityExhausted)
	}

	if m.ctrls[target] == ctrlDeleted {
		m.deleted--
	}
	m.ctrls[target] = ctrlFull
	m.slots[target] = Slot[K, V]{key: key, value: value}
	m.used++

	if debug {
		fmt.Printf("put(inserting): index=%d used=%d deleted=%d\n", target, m.used, m.deleted)
	}
	m.checkInvariants()
	return &m.slots[target].value, nil
}

// uncheckedPut inserts an entry known not to be in the table into a table
// known to contain no tombstones. Used by resize.
func (m *Map[K, V]) uncheckedPut(key K, value V) {
	for seq := m.probeSeq(key); !seq.done(); seq = seq.next() {
		m.probes++
		i := seq.offset
		if m.ctrls[i] == ctrlEmpty {
			m.ctrls[i] = ctrlFull
			m.slots[i] = Slot[K, V]{key: key, value: value}
			m.used++
			return
		}
	}
	panic(fmt.Sprintf("oamap: no empty slot for %v during resize\n%s", key, m.debugString()))
}

// resize advances to the next capacity of the schedule, allocating fresh
// arrays and uncheckedPutting each live entry of the old arrays into them.
// Tombstones are discarded.
func (m *Map[K, V]) resize() error {
	if m.capIndex+1 >= len(m.capacities) {
		return fmt.Errorf("oamap: grow beyond capacity %d: %w", m.capacity(), ErrScheduleExhausted)
	}

	oldCtrls, oldSlots := m.ctrls, m.slots
	oldCapacity := m.capacity()

	m.capIndex++
	newCapacity := m.capacities[m.capIndex]
	m.ctrls = make([]ctrl, newCapacity)
	m.slots = make([]Slot[K, V], newCapacity)
	m.used = 0
	m.deleted = 0
	m.resizes++

	if debug {
		fmt.Printf("resize: capacity=%d->%d\n", oldCapacity, newCapacity)
	}

	for i := range oldCtrls {
		if oldCtrls[i] != ctrlFull {
			continue
		}
		m.uncheckedPut(oldSlots[i].key, oldSlots[i].value)
	}

	m.checkInvariants()
	return nil
}

func (m *Map[K, V]) checkInvariants() {
	if invariants {
		// Verifying reachability goes through find which would otherwise be
		// counted in the statistics.
		probes := m.probes
		defer func() { m.probes = probes }()

		capacity := m.capacity()
		if m.capacities[m.capIndex] != capacity {
			panic(fmt.Sprintf("invariant failed: capacity %d is not schedule entry %d (%d)\n%s",
				capacity, m.capIndex, m.capacities[m.capIndex], m.debugString()))
		}
		if len(m.slots) != len(m.ctrls) {
			panic(fmt.Sprintf("invariant failed: %d slots, but %d ctrls", len(m.slots), len(m.ctrls)))
		}

		// For every full slot, verify we can retrieve the key using find
		// and that it resolves to that very slot. Count the number of used
		// and deleted slots.
		var used int
		var deleted int
		for i := uintptr(0); i < capacity; i++ {
			switch c := m.ctrls[i]; c {
			case ctrlEmpty:
			case ctrlDeleted:
				deleted++
			case ctrlFull:
				s := &m.slots[i]
				if j, ok := m.find(s.key); !ok || j != i {
					panic(fmt.Sprintf("invariant failed: slot(%d): %v not found (found=%t at %d)\n%s",
						i, s.key, ok, j, m.debugString()))
				}
				used++
			default:
				panic(fmt.Sprintf("invariant failed: ctrl(%d): unexpected %02x", i, c))
			}
		}

		if used != m.used {
			panic(fmt.Sprintf("invariant failed: found %d used slots, but used count is %d\n%s",
				used, m.used, m.debugString()))
		}
		if deleted != m.deleted {
			panic(fmt.Sprintf("invariant failed: found %d deleted slots, but deleted count is %d\n%s",
				deleted, m.deleted, m.debugString()))
		}
	}
}

func (m *Map[K, V]) debugString() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "capacity=%d  used=%d  deleted=%d\n", m.capacity(), m.used, m.deleted)
	for i := range m.ctrls {
		switch c := m.ctrls[i]; c {
		case ctrlEmpty:
			fmt.Fprintf(&buf, "  %4d: empty\n", i)
		case ctrlDeleted:
			fmt.Fprintf(&buf, "  %4d: deleted\n", i)
		default:
			s := &m.slots[i]
			fmt.Fprintf(&buf, "  %4d: %v [home=%d]\n", i, s.key, m.hash(s.key)%uint64(m.capacity()))
		}
	}
	return buf.String()
}

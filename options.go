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

// option provide an interface to do work on Map while it is being created.
type option[K any, V any] interface {
	apply(m *Map[K, V])
}

type hashOption[K any, V any] struct {
	hash HashFunc[K]
}

func (op hashOption[K, V]) apply(m *Map[K, V]) {
	if op.hash == nil {
		panic("oamap: WithHash requires a hash function")
	}
	m.hash = op.hash
}

// WithHash is an option to specify the primary hash function to use for a
// Map[K,V].
func WithHash[K any, V any](hash HashFunc[K]) option[K, V] {
	return hashOption[K, V]{hash}
}

type equalOption[K any, V any] struct {
	equal EqualFunc[K]
}

func (op equalOption[K, V]) apply(m *Map[K, V]) {
	if op.equal == nil {
		panic("oamap: WithEqual requires an equality predicate")
	}
	m.equal = op.equal
}

// WithEqual is an option to specify the key equality predicate to use for a
// Map[K,V]. It must be consistent with the hash functions.
func WithEqual[K any, V any](equal EqualFunc[K]) option[K, V] {
	return equalOption[K, V]{equal}
}

type proberOption[K any, V any] struct {
	prober Prober[K]
}

func (op proberOption[K, V]) apply(m *Map[K, V]) {
	if op.prober == nil {
		panic("oamap: WithProber requires a prober")
	}
	m.prober = op.prober
}

// WithProber is an option to specify the collision resolution strategy,
// Linear (the default) or DoubleHash.
func WithProber[K any, V any](prober Prober[K]) option[K, V] {
	return proberOption[K, V]{prober}
}

type growthThresholdOption[K any, V any] struct {
	threshold float64
}

func (op growthThresholdOption[K, V]) apply(m *Map[K, V]) {
	// NB: written so that NaN is rejected as well.
	if !(op.threshold > 0 && op.threshold <= 1) {
		panic(fmt.Sprintf("oamap: growth threshold %v outside of (0, 1]", op.threshold))
	}
	m.growthThreshold = op.threshold
}

// WithGrowthThreshold is an option to specify the load factor, counting
// tombstones, at which the map grows. It must be in (0, 1]; the default is
// 0.4.
func WithGrowthThreshold[K any, V any](threshold float64) option[K, V] {
	return growthThresholdOption[K, V]{threshold}
}

type capacitiesOption[K any, V any] struct {
	capacities []uintptr
}

func (op capacitiesOption[K, V]) apply(m *Map[K, V]) {
	if len(op.capacities) == 0 {
		panic("oamap: empty capacity schedule")
	}
	for i, c := range op.capacities {
		if c == 0 || (i > 0 && c <= op.capacities[i-1]) {
			panic(fmt.Sprintf("oamap: capacity schedule %v is not strictly ascending and positive",
				op.capacities))
		}
	}
	m.capacities = append([]uintptr(nil), op.capacities...)
}

// WithCapacities is an option to replace the capacity schedule. The
// capacities must be positive and strictly ascending. Prime capacities are
// required for DoubleHash to reach every slot.
func WithCapacities[K any, V any](capacities ...uintptr) option[K, V] {
	return capacitiesOption[K, V]{capacities}
}

type capacityHintOption[K any, V any] struct {
	hint int
}

func (op capacityHintOption[K, V]) apply(m *Map[K, V]) {
	m.hint = op.hint
}

// WithCapacityHint is an option to start the map at the smallest capacity of
// its schedule that can hold hint entries without growing.
func WithCapacityHint[K any, V any](hint int) option[K, V] {
	return capacityHintOption[K, V]{hint}
}

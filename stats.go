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

// Stats describes the occupancy of a Map.
type Stats struct {
	Len        int
	Tombstones int
	Capacity   int
	// LoadFactor is (Len+Tombstones)/Capacity, the value compared with the
	// growth threshold.
	LoadFactor float64
	// Probes is the total number of candidate slots examined by all
	// operations so far, including reinsertion during growth.
	Probes  uint64
	Resizes int
}

// Stats returns the current statistics of the map.
func (m *Map[K, V]) Stats() Stats {
	return Stats{
		Len:        m.used,
		Tombstones: m.deleted,
		Capacity:   m.Capacity(),
		LoadFactor: m.loadFactor(),
		Probes:     m.probes,
		Resizes:    m.resizes,
	}
}

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

// defaultCapacities is the capacity schedule: each growth step moves to the
// next entry, roughly doubling the table. All entries are prime so that a
// double hashing step smaller than the capacity is coprime with it.
var defaultCapacities = []uintptr{
	11, 23, 47, 97, 197, 397, 797, 1597,
	3203, 6421, 12853, 25717, 51437, 102877,
	205759, 411527, 823117, 1646237, 3292489,
	6584983, 13169977, 26339969, 52679969,
	105359969, 210719881, 421439783, 842879579,
	1685759113,
}

// doubleHashModuli are the candidate moduli for the double hashing step.
// Each is prime and about half of the next.
var doubleHashModuli = []uintptr{
	7, 19, 43, 89, 193, 389, 787, 1583, 3191, 6397,
	12841, 25703, 51431, 102871, 205721, 411503, 823051,
	1646221, 3292463, 6584957, 13169963, 26339921,
	52679927, 105359939, 210719881, 421439749, 842879563,
	1685759113,
}

// doubleHashModulus returns the largest modulus smaller than capacity, or
// the smallest modulus if there is none.
func doubleHashModulus(capacity uintptr) uintptr {
	mod := doubleHashModuli[0]
	for _, m := range doubleHashModuli {
		if m >= capacity {
			break
		}
		mod = m
	}
	return mod
}

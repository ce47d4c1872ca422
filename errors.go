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

import "errors"

var (
	// ErrMissingKey is returned by At when the key has no entry.
	ErrMissingKey = errors.New("missing key")

	// ErrCapacityExhausted is returned when a probe sequence visited every
	// candidate slot without finding room for a new entry. A growth
	// threshold below 1 keeps this from happening.
	ErrCapacityExhausted = errors.New("probe sequence exhausted")

	// ErrScheduleExhausted is returned when the map must grow but its
	// capacity schedule has no larger capacity left. The map cannot accept
	// new keys beyond this point.
	ErrScheduleExhausted = errors.New("capacity schedule exhausted")
)

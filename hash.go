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

import (
	"github.com/bytedance/gopkg/lang/fastrand"
	"github.com/cespare/xxhash/v2"
	"github.com/dolthub/maphash"
	"golang.org/x/exp/rand"
)

// HashFunc hashes a key. It must return the same value for equal keys and
// should distribute keys well, though it is not required to be uniform.
type HashFunc[K any] func(key K) uint64

// EqualFunc reports whether two keys are equal.
type EqualFunc[K any] func(a, b K) bool

// ComparableHash returns a hash function for any comparable key type using
// the same hash as Go's builtin map. Each call returns a function with a
// fresh random seed.
func ComparableHash[K comparable]() HashFunc[K] {
	h := maphash.NewHasher[K]()
	return h.Hash
}

// RandomSeed returns a random seed for the seeded hash constructors.
func RandomSeed() uint64 {
	return fastrand.Uint64()
}

// XXHashString returns an xxHash64 string hash using the given seed. It is
// independent of ComparableHash and works well as the secondary hash of
// DoubleHash for string keys.
func XXHashString(seed uint64) HashFunc[string] {
	if seed == 0 {
		return xxhash.Sum64String
	}
	return func(key string) uint64 {
		d := xxhash.NewWithSeed(seed)
		_, _ = d.WriteString(key)
		return d.Sum64()
	}
}

// debugStringMultipliers are the fixed multipliers of DebugStringHasher.
var debugStringMultipliers = [stringHashChunks]uint64{
	983132572, 1468777056, 552714139, 984953261, 261934300,
}

const (
	stringHashChunks    = 5
	stringHashChunkSize = 6
	stringHashBase      = 36
)

// StringHasher is a simple string hash meant for demonstrations and tests
// that need predictable hashes. The last 30 characters of the key are split
// from the end into chunks of 6 characters; each chunk is read as a base 36
// number (letters a-z case insensitively are 0-25, digits are 26-35, any
// other byte is 0) and the hash is the sum of the chunks multiplied by
// per-chunk multipliers.
type StringHasher struct {
	r [stringHashChunks]uint64
}

// DebugStringHasher returns a StringHasher with fixed multipliers, so that
// hashes are identical across processes.
func DebugStringHasher() StringHasher {
	return StringHasher{r: debugStringMultipliers}
}

// NewStringHasher returns a StringHasher with multipliers drawn from a
// pseudo-random generator seeded with seed.
func NewStringHasher(seed uint64) StringHasher {
	var h StringHasher
	rng := rand.New(rand.NewSource(seed))
	for i := range h.r {
		h.r[i] = uint64(rng.Uint32())
	}
	return h
}

// Hash hashes k. Its signature matches HashFunc[string].
func (h StringHasher) Hash(k string) uint64 {
	var w [stringHashChunks]uint64
	n := len(k)
	for chunk := 0; chunk < stringHashChunks; chunk++ {
		end := n - chunk*stringHashChunkSize
		if end <= 0 {
			break
		}
		start := max(0, end-stringHashChunkSize)

		var v uint64
		for i := start; i < end; i++ {
			v = v*stringHashBase + letterDigitToNumber(k[i])
		}
		// The last chunk goes to w[4], the one before it to w[3] and so on.
		w[stringHashChunks-1-chunk] = v
	}

	var sum uint64
	for i := range w {
		sum += h.r[i] * w[i]
	}
	return sum
}

func letterDigitToNumber(c byte) uint64 {
	switch {
	case 'a' <= c && c <= 'z':
		return uint64(c - 'a')
	case 'A' <= c && c <= 'Z':
		return uint64(c - 'A')
	case '0' <= c && c <= '9':
		return uint64(c-'0') + 26
	}
	return 0
}

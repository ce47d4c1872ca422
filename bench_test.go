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
	"fmt"
	"io"
	"strconv"
	"testing"

	"github.com/aclements/go-perfevent/perfbench"
)

func BenchmarkMapGetHit(b *testing.B) {
	b.Run("impl=runtimeMap", func(b *testing.B) {
		b.Run("t=Int64", benchSizes(benchmarkRuntimeMapGetHit[int64], genKeys[int64]))
		b.Run("t=String", benchSizes(benchmarkRuntimeMapGetHit[string], genKeys[string]))
	})
	b.Run("impl=linear", func(b *testing.B) {
		b.Run("t=Int64", benchSizes(benchmarkMapGetHit(linear[int64]), genKeys[int64]))
		b.Run("t=String", benchSizes(benchmarkMapGetHit(linear[string]), genKeys[string]))
	})
	b.Run("impl=double", func(b *testing.B) {
		b.Run("t=String", benchSizes(benchmarkMapGetHit(doubleString), genKeys[string]))
	})
}

func BenchmarkMapGetMiss(b *testing.B) {
	b.Run("impl=runtimeMap", func(b *testing.B) {
		b.Run("t=Int64", benchSizes(benchmarkRuntimeMapGetMiss[int64], genKeys[int64]))
		b.Run("t=String", benchSizes(benchmarkRuntimeMapGetMiss[string], genKeys[string]))
	})
	b.Run("impl=linear", func(b *testing.B) {
		b.Run("t=Int64", benchSizes(benchmarkMapGetMiss(linear[int64]), genKeys[int64]))
		b.Run("t=String", benchSizes(benchmarkMapGetMiss(linear[string]), genKeys[string]))
	})
	b.Run("impl=double", func(b *testing.B) {
		b.Run("t=String", benchSizes(benchmarkMapGetMiss(doubleString), genKeys[string]))
	})
}

func BenchmarkMapPutGrow(b *testing.B) {
	b.Run("impl=runtimeMap", func(b *testing.B) {
		b.Run("t=Int64", benchSizes(benchmarkRuntimeMapPutGrow[int64], genKeys[int64]))
		b.Run("t=String", benchSizes(benchmarkRuntimeMapPutGrow[string], genKeys[string]))
	})
	b.Run("impl=linear", func(b *testing.B) {
		b.Run("t=Int64", benchSizes(benchmarkMapPutGrow(linear[int64]), genKeys[int64]))
		b.Run("t=String", benchSizes(benchmarkMapPutGrow(linear[string]), genKeys[string]))
	})
	b.Run("impl=double", func(b *testing.B) {
		b.Run("t=String", benchSizes(benchmarkMapPutGrow(doubleString), genKeys[string]))
	})
}

func BenchmarkMapPutDelete(b *testing.B) {
	b.Run("impl=runtimeMap", func(b *testing.B) {
		b.Run("t=Int64", benchSizes(benchmarkRuntimeMapPutDelete[int64], genKeys[int64]))
		b.Run("t=String", benchSizes(benchmarkRuntimeMapPutDelete[string], genKeys[string]))
	})
	b.Run("impl=linear", func(b *testing.B) {
		b.Run("t=Int64", benchSizes(benchmarkMapPutDelete(linear[int64]), genKeys[int64]))
		b.Run("t=String", benchSizes(benchmarkMapPutDelete(linear[string]), genKeys[string]))
	})
	b.Run("impl=double", func(b *testing.B) {
		b.Run("t=String", benchSizes(benchmarkMapPutDelete(doubleString), genKeys[string]))
	})
}

type benchTypes interface {
	int64 | string
}

func linear[T comparable](n int) *Map[T, T] {
	return New[T, T](WithCapacityHint[T, T](n))
}

func doubleString(n int) *Map[string, string] {
	return New[string, string](
		WithCapacityHint[string, string](n),
		WithProber[string, string](DoubleHash[string](XXHashString(RandomSeed()))))
}

func benchSizes[T benchTypes](
	f func(b *testing.B, n int, genKeys func(start, end int) []T), genKeys func(start, end int) []T,
) func(*testing.B) {
	var cases = []int{
		6, 12, 18, 24, 30,
		64,
		128,
		256,
		512,
		1024,
		2048,
		4096,
		8192,
		1 << 16,
	}

	return func(b *testing.B) {
		for _, n := range cases {
			b.Run("len="+strconv.Itoa(n), func(b *testing.B) { f(b, n, genKeys) })
		}
	}
}

func genKeys[T benchTypes](start, end int) []T {
	keys := make([]T, end-start)
	for i := range keys {
		switch p := any(&keys[i]).(type) {
		case *int64:
			*p = int64(start + i)
		case *string:
			*p = strconv.Itoa(start + i)
		default:
			panic("not reached")
		}
	}
	return keys
}

func benchmarkRuntimeMapGetMiss[T benchTypes](
	b *testing.B, n int, genKeys func(start, end int) []T,
) {
	m := make(map[T]T)
	keys := genKeys(0, n)
	miss := genKeys(-n, 0)
	for _, k := range keys {
		m[k] = k
	}
	b.ResetTimer()
	perfbench.Open(b)
	for i := 0; i < b.N; i++ {
		_ = m[miss[i%len(miss)]]
	}
}

func benchmarkMapGetMiss[T benchTypes](
	newMap func(n int) *Map[T, T],
) func(b *testing.B, n int, genKeys func(start, end int) []T) {
	return func(b *testing.B, n int, genKeys func(start, end int) []T) {
		m := newMap(0)
		keys := genKeys(0, n)
		miss := genKeys(-n, 0)
		for j := range keys {
			if err := m.Put(keys[j], keys[j]); err != nil {
				b.Fatal(err)
			}
		}
		b.ResetTimer()
		perfbench.Open(b)
		var ok bool
		for i := 0; i < b.N; i++ {
			_, ok = m.Get(miss[i%len(miss)])
		}
		b.StopTimer()
		fmt.Fprint(io.Discard, ok)
	}
}

func benchmarkRuntimeMapGetHit[T benchTypes](
	b *testing.B, n int, genKeys func(start, end int) []T,
) {
	m := make(map[T]T, n)
	keys := genKeys(0, n)
	for _, k := range keys {
		m[k] = k
	}

	// Go's builtin map has an optimization to avoid string comparisons if
	// there is pointer equality. Defeat this optimization to get a better
	// apples-to-apples comparison.
	keys = genKeys(0, n)

	b.ResetTimer()
	perfbench.Open(b)
	for i := 0; i < b.N; i++ {
		_ = m[keys[i%n]]
	}
}

func benchmarkMapGetHit[T benchTypes](
	newMap func(n int) *Map[T, T],
) func(b *testing.B, n int, genKeys func(start, end int) []T) {
	return func(b *testing.B, n int, genKeys func(start, end int) []T) {
		m := newMap(n)
		keys := genKeys(0, n)
		for _, k := range keys {
			if err := m.Put(k, k); err != nil {
				b.Fatal(err)
			}
		}
		b.ResetTimer()
		perfbench.Open(b)
		var ok bool
		for i := 0; i < b.N; i++ {
			_, ok = m.Get(keys[i%n])
		}
		b.StopTimer()
		fmt.Fprint(io.Discard, ok)
	}
}

func benchmarkRuntimeMapPutGrow[T benchTypes](
	b *testing.B, n int, genKeys func(start, end int) []T,
) {
	keys := genKeys(0, n)
	b.ResetTimer()
	perfbench.Open(b)
	for i := 0; i < b.N; i++ {
		m := make(map[T]T)
		for _, k := range keys {
			m[k] = k
		}
	}
}

func benchmarkMapPutGrow[T benchTypes](
	newMap func(n int) *Map[T, T],
) func(b *testing.B, n int, genKeys func(start, end int) []T) {
	return func(b *testing.B, n int, genKeys func(start, end int) []T) {
		keys := genKeys(0, n)
		b.ResetTimer()
		perfbench.Open(b)
		for i := 0; i < b.N; i++ {
			m := newMap(0)
			for _, k := range keys {
				if err := m.Put(k, k); err != nil {
					b.Fatal(err)
				}
			}
		}
	}
}

func benchmarkRuntimeMapPutDelete[T benchTypes](
	b *testing.B, n int, genKeys func(start, end int) []T,
) {
	m := make(map[T]T, n)
	keys := genKeys(0, n)
	for _, k := range keys {
		m[k] = k
	}
	b.ResetTimer()
	perfbench.Open(b)
	for i := 0; i < b.N; i++ {
		j := i % n
		delete(m, keys[j])
		m[keys[j]] = keys[j]
	}
}

func benchmarkMapPutDelete[T benchTypes](
	newMap func(n int) *Map[T, T],
) func(b *testing.B, n int, genKeys func(start, end int) []T) {
	return func(b *testing.B, n int, genKeys func(start, end int) []T) {
		m := newMap(n)
		keys := genKeys(0, n)
		for _, k := range keys {
			if err := m.Put(k, k); err != nil {
				b.Fatal(err)
			}
		}
		b.ResetTimer()
		perfbench.Open(b)
		for i := 0; i < b.N; i++ {
			j := i % n
			m.Delete(keys[j])
			if err := m.Put(keys[j], keys[j]); err != nil {
				b.Fatal(err)
			}
		}
	}
}

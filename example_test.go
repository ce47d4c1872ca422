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

package oamap_test

import (
	"errors"
	"fmt"
	"os"

	"github.com/cockroachdb/oamap"
)

func Example() {
	m := oamap.New[string, int]()
	_ = m.Put("a", 1)
	_ = m.Put("b", 2)

	if v, ok := m.Get("a"); ok {
		fmt.Println("a =", v)
	}
	fmt.Println("c present:", m.Find("c") != nil)

	m.Delete("a")
	fmt.Println("len:", m.Len())
	// Output:
	// a = 1
	// c present: false
	// len: 1
}

func ExampleMap_Entry() {
	counts := oamap.New[string, int]()
	for _, w := range []string{"to", "be", "or", "not", "to", "be"} {
		p, err := counts.Entry(w)
		if err != nil {
			panic(err)
		}
		*p++
	}

	p, _ := counts.At("to")
	fmt.Println("to:", *p)
	_, err := counts.At("question")
	fmt.Println(errors.Is(err, oamap.ErrMissingKey))
	// Output:
	// to: 2
	// true
}

func ExampleDoubleHash() {
	h := oamap.DebugStringHasher()
	m := oamap.New[string, int](
		oamap.WithHash[string, int](h.Hash),
		oamap.WithProber[string, int](oamap.DoubleHash[string](oamap.XXHashString(0))),
		oamap.WithGrowthThreshold[string, int](0.6))
	for i, k := range []string{"alpha", "beta", "gamma"} {
		_ = m.Put(k, i+1)
	}
	fmt.Println(m.Len(), m.Capacity())
	// Output:
	// 3 11
}

func ExampleMap_Dump() {
	// Map every key to slot 2 to get a predictable layout.
	m := oamap.New[string, int](oamap.WithHash[string, int](func(string) uint64 { return 2 }))
	_ = m.Put("x", 10)
	_ = m.Put("y", 20)
	_ = m.Dump(os.Stdout)
	// Output:
	// 2: x => 10
	// 3: y => 20
}

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

	"github.com/valyala/bytebufferpool"
)

// Dump writes one line per live entry to w, in slot order:
//
//	<slot>: <key> => <value>
//
// Dump is a debugging aid; its output is not a stable format.
func (m *Map[K, V]) Dump(w io.Writer) error {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	for i := range m.ctrls {
		if m.ctrls[i] != ctrlFull {
			continue
		}
		s := &m.slots[i]
		fmt.Fprintf(buf, "%d: %v => %v\n", i, s.key, s.value)
	}
	_, err := buf.WriteTo(w)
	return err
}

// Licensed to LinDB under one or more contributor
// license agreements. See the NOTICE file distributed with
// this work for additional information regarding copyright
// ownership. LinDB licenses this file to you under
// the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

package concurrent

import (
	"bufio"
	"fmt"
	"io"
)

// Sink is the output framing PrintStats writes against. It is
// deliberately narrow — "write one formatted line" — so callers can
// back it with a socket, a log file, an in-memory buffer for tests, or
// an administrator's terminal without PrintStats knowing which.
type Sink interface {
	WriteLine(line string)
}

// WriterSink adapts an io.Writer into a Sink, one line per call.
type WriterSink struct {
	w *bufio.Writer
}

// NewWriterSink wraps w so PrintStats can write to it.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: bufio.NewWriter(w)}
}

// WriteLine writes line followed by a newline, flushing immediately so
// a long-lived sink (a pipe to an admin CLI) sees output promptly.
func (s *WriterSink) WriteLine(line string) {
	fmt.Fprintln(s.w, line)
	_ = s.w.Flush()
}

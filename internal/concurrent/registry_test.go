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
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lineSink struct {
	mu    sync.Mutex
	lines []string
}

func (s *lineSink) WriteLine(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append(s.lines, line)
}

func (s *lineSink) all() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.lines))
	copy(out, s.lines)
	return out
}

type stubPlatformReporter struct {
	mem PlatformMemory
	ok  bool
}

func (r stubPlatformReporter) Report() (PlatformMemory, bool) { return r.mem, r.ok }

func TestRegistry_printStatsOnEmptyRegistry(t *testing.T) {
	r := NewRegistry()
	sink := &lineSink{}
	r.PrintStats(sink, nil)
	assert.Equal(t, []string{"POOLS: 0", "END"}, sink.all())
}

func TestRegistry_unregisterMissingPoolDoesNotDeadlock(t *testing.T) {
	r := NewRegistry()
	p := NewPool("orphan", 1, time.Second, func(*TaskHandle, any) {}, WithRegistry(r))
	p.Destroy() // removes it once
	assert.NotPanics(t, func() { r.unregister(p) })

	// the registry lock must still be free
	done := make(chan struct{})
	go func() {
		r.mu.Lock()
		r.mu.Unlock()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("registry lock appears stuck")
	}
}

func TestRegistry_printStatsFormatsPoolBlock(t *testing.T) {
	r := NewRegistry()
	started := make(chan struct{})
	block := make(chan struct{})

	p := NewPool("fmt", 4, 30*time.Second, func(task *TaskHandle, data any) {
		task.SetActiveTask(data.(string), "SCAN")
		close(started)
		<-block
	}, WithRegistry(r))
	defer func() {
		close(block)
		p.Destroy()
	}()

	require.True(t, p.Dispatch("/a"))
	<-started
	p.mu.Lock()
	for p.idleWorkers != 0 {
		p.mu.Unlock()
		time.Sleep(time.Millisecond)
		p.mu.Lock()
	}
	p.mu.Unlock()

	sink := &lineSink{}
	r.PrintStats(sink, nil)
	lines := sink.all()

	require.GreaterOrEqual(t, len(lines), 5)
	assert.Equal(t, "POOLS: 1", lines[0])
	assert.Equal(t, "STATE: VALID PRIMARY", lines[1])
	assert.Equal(t, "THREADS: live 1  idle 0 max 4 idle-timeout 30", lines[2])
	assert.Equal(t, "QUEUE: 0 items", lines[3])
	assert.True(t, strings.HasPrefix(lines[4], "SCAN "))
	assert.True(t, strings.HasSuffix(lines[4], " /a"))
	assert.Equal(t, "END", lines[len(lines)-1])
}

func TestRegistry_printStatsAppendsPlatformMemoryLine(t *testing.T) {
	r := NewRegistry()
	sink := &lineSink{}
	r.PrintStats(sink, stubPlatformReporter{mem: PlatformMemory{UsedBytes: 10, FreeBytes: 20}, ok: true})

	lines := sink.all()
	require.Len(t, lines, 3)
	assert.Equal(t, "MEMORY: heap 0 mmap 0 used 10 free 20 releasable 0", lines[1])
	assert.Equal(t, "END", lines[2])
}

func TestRegistry_printStatsOmitsPlatformMemoryLineWhenNotOK(t *testing.T) {
	r := NewRegistry()
	sink := &lineSink{}
	r.PrintStats(sink, stubPlatformReporter{ok: false})
	assert.Equal(t, []string{"POOLS: 0", "END"}, sink.all())
}

func TestRegistry_registerLinksMultiplePoolsNewestFirst(t *testing.T) {
	r := NewRegistry()
	p1 := NewPool("first", 1, time.Second, func(*TaskHandle, any) {}, WithRegistry(r))
	defer p1.Destroy()
	p2 := NewPool("second", 1, time.Second, func(*TaskHandle, any) {}, WithRegistry(r))
	defer p2.Destroy()

	sink := &lineSink{}
	r.PrintStats(sink, nil)
	lines := sink.all()
	assert.Equal(t, "POOLS: 2", lines[0])

	p1.mu.Lock()
	p1Primary := p1.isPrimaryLocked()
	p1.mu.Unlock()
	p2.mu.Lock()
	p2Primary := p2.isPrimaryLocked()
	p2.mu.Unlock()
	assert.True(t, p1Primary)
	assert.False(t, p2Primary)
}

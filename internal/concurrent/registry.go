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
	"fmt"
	"sync"
	"time"
)

// Registry is a process-wide, lock-guarded list of live pools. Pools
// push themselves at the head on construction and unlink themselves on
// Destroy. PrintStats walks the list under the registry lock, then each
// pool's own lock in turn — that nested order (registry, then pool,
// never the reverse) is the one invariant every other lock acquisition
// in this package must respect.
type Registry struct {
	mu   sync.Mutex
	head *Pool
}

// NewRegistry creates an empty, independent registry. Production code
// normally uses the package-level PrintStats, which targets the
// process-wide default registry; tests that want isolation from other
// tests' pools construct their own with NewRegistry and WithRegistry.
func NewRegistry() *Registry {
	return &Registry{}
}

var defaultRegistry = NewRegistry()

func (r *Registry) register(p *Pool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.registryNext = r.head
	r.head = p
}

// unregister removes p from the registry and clears its task list. The
// lock is released via defer on every path — including "p was not
// found" — fixing a defect in the original implementation where the
// not-found path returned while still holding the registry lock.
func (r *Registry) unregister(p *Pool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.head == p {
		r.head = p.registryNext
	} else {
		cur := r.head
		for cur != nil && cur.registryNext != p {
			cur = cur.registryNext
		}
		if cur == nil {
			return
		}
		cur.registryNext = p.registryNext
	}
	p.registryNext = nil
	p.clearTasks()
}

// PrintStats writes a human-readable status dump of every pool in r to
// sink: a pool count, then per pool its state, worker/queue/task
// bookkeeping, and finally an optional platform memory summary and a
// trailing END line. The exact line grammar is fixed: external tooling
// scrapes this output, so changes to the format are breaking changes.
func (r *Registry) PrintStats(sink Sink, platform PlatformMemoryReporter) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var count int
	for cur := r.head; cur != nil; cur = cur.registryNext {
		count++
	}
	sink.WriteLine(fmt.Sprintf("POOLS: %d", count))

	hadError := false
	for cur := r.head; cur != nil; cur = cur.registryNext {
		if cur.printStats(sink) {
			hadError = true
		}
	}

	if !hadError && platform != nil {
		if mem, ok := platform.Report(); ok {
			sink.WriteLine(fmt.Sprintf(
				"MEMORY: heap %d mmap %d used %d free %d releasable %d",
				mem.HeapBytes, mem.MMapBytes, mem.UsedBytes, mem.FreeBytes, mem.ReleasableBytes))
		}
	}
	sink.WriteLine("END")
}

// PlatformMemoryReporter is the optional external collaborator that
// supplies a process/platform memory summary for the trailing line of
// PrintStats. internal/monitoring provides a gopsutil-backed
// implementation; nil (or one that returns ok=false) simply omits the
// line.
type PlatformMemoryReporter interface {
	Report() (PlatformMemory, bool)
}

// PlatformMemory is a snapshot of platform-level memory usage.
type PlatformMemory struct {
	HeapBytes       uint64
	MMapBytes       uint64
	UsedBytes       uint64
	FreeBytes       uint64
	ReleasableBytes uint64
}

// printStats prints one pool's block and reports whether it emitted an
// error marker (which suppresses the registry-wide memory summary).
func (p *Pool) printStats(sink Sink) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	state := p.state.String()
	if p.isPrimaryLocked() {
		state += " PRIMARY"
	}
	sink.WriteLine("STATE: " + state)
	sink.WriteLine(fmt.Sprintf("THREADS: live %d  idle %d max %d idle-timeout %d",
		p.aliveWorkers, p.idleWorkers, p.maxWorkers, int(p.idleTimeout.Seconds())))

	hadError := false
	if p.queue.count == 0 {
		sink.WriteLine("QUEUE: 0 items")
	} else {
		now := time.Now()
		var minWait, maxWait, sum time.Duration
		valid, invalid := 0, 0
		for item := p.queue.head; item != nil; item = item.next {
			wait := now.Sub(item.arrival)
			if wait < 0 {
				invalid++
				continue
			}
			if valid == 0 || wait < minWait {
				minWait = wait
			}
			if valid == 0 || wait > maxWait {
				maxWait = wait
			}
			sum += wait
			valid++
		}
		var avgWait time.Duration
		if valid > 0 {
			avgWait = sum / time.Duration(valid)
		}
		line := fmt.Sprintf("QUEUE: %d items min_wait: %.6f max_wait: %.6f avg_wait: %.6f",
			p.queue.count, minWait.Seconds(), maxWait.Seconds(), avgWait.Seconds())
		if valid+invalid != p.queue.count {
			line += fmt.Sprintf(" (ERROR: %d != %d)", valid+invalid, p.queue.count)
			hadError = true
		}
		sink.WriteLine(line)
	}

	seenEngines := make([]any, 0, 2)
	var usedTotal, byteTotal uint64
	haveEngines := false
	for d := p.taskHead; d != nil; d = d.next {
		command := d.command
		if command == "" {
			command = "N/A"
		}
		sink.WriteLine(fmt.Sprintf("%s %.6f %s", command, time.Since(d.commandAt).Seconds(), d.filename))

		if d.engine == nil {
			continue
		}
		first := true
		for _, e := range seenEngines {
			if e == d.engine {
				first = false
				break
			}
		}
		if !first {
			continue
		}
		seenEngines = append(seenEngines, d.engine)
		if used, total, ok := p.engineMemStats.Stats(d.engine); ok {
			usedTotal += used
			byteTotal += total
			haveEngines = true
		}
	}
	if haveEngines {
		sink.WriteLine(fmt.Sprintf("ENGINES: %d used %d total %d bytes", len(seenEngines), usedTotal, byteTotal))
	}

	return hadError
}

// isPrimaryLocked reports whether p is the last (oldest, tail) pool in
// its registry's list. registryNext is only ever mutated by the
// registry under its own lock, and every caller of printStats already
// holds that lock for the entire walk, so reading it here is race-free.
func (p *Pool) isPrimaryLocked() bool {
	return p.registryNext == nil
}

// PrintStats writes the process-wide default registry's status dump to
// sink, using platform for the optional memory summary line.
func PrintStats(sink Sink, platform PlatformMemoryReporter) {
	defaultRegistry.PrintStats(sink, platform)
}

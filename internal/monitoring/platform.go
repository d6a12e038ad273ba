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

// Package monitoring supplies the platform-memory collaborator the
// concurrent package's statistics dump optionally reports through, and
// a small periodic sampler that keeps a Prometheus gauge vector fresh
// for the daemon's own metrics endpoint.
package monitoring

import (
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/scancore/clamdpool/internal/concurrent"
)

// MemoryStatGetter fetches a virtual-memory snapshot. It is a function
// field rather than a hard call to mem.VirtualMemory so tests can stub
// failures without touching the real host.
type MemoryStatGetter func() (*mem.VirtualMemoryStat, error)

// GopsutilReporter implements concurrent.PlatformMemoryReporter on top
// of github.com/shirou/gopsutil/v3/mem. Process-level heap/mmap figures
// are left at zero: gopsutil does not expose them portably without
// cgo, and the core's own contract is fine with the line being partial.
type GopsutilReporter struct {
	MemoryStatGetter MemoryStatGetter
}

// NewGopsutilReporter builds a GopsutilReporter wired to the real
// gopsutil backend.
func NewGopsutilReporter() *GopsutilReporter {
	return &GopsutilReporter{MemoryStatGetter: mem.VirtualMemory}
}

// Report implements concurrent.PlatformMemoryReporter.
func (r *GopsutilReporter) Report() (concurrent.PlatformMemory, bool) {
	stat, err := r.MemoryStatGetter()
	if err != nil {
		return concurrent.PlatformMemory{}, false
	}
	return concurrent.PlatformMemory{
		UsedBytes: stat.Used,
		FreeBytes: stat.Available,
	}, true
}

// NoopReporter always reports nothing, so PrintStats omits the platform
// memory line entirely. It is the default when a daemon does not want
// to expose host-level memory figures.
type NoopReporter struct{}

// Report implements concurrent.PlatformMemoryReporter.
func (NoopReporter) Report() (concurrent.PlatformMemory, bool) {
	return concurrent.PlatformMemory{}, false
}

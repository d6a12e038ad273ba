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

package monitoring

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/lindb/common/pkg/logger"

	"github.com/scancore/clamdpool/internal/concurrent"
)

// Collector periodically samples a PlatformMemoryReporter and exposes
// the last reading as a Prometheus gauge vector. It mirrors the
// daemon's other sample-on-an-interval collectors: Run blocks until ctx
// is done, and Collect always serves the most recent sample rather than
// poking the OS on every scrape.
type Collector struct {
	reporter concurrent.PlatformMemoryReporter
	interval time.Duration
	logger   logger.Logger

	usedDesc *prometheus.Desc
	freeDesc *prometheus.Desc

	mu      sync.Mutex
	last    concurrent.PlatformMemory
	lastOK  bool
	sampled bool
}

// NewCollector builds a Collector sampling reporter every interval.
func NewCollector(reporter concurrent.PlatformMemoryReporter, interval time.Duration) *Collector {
	return &Collector{
		reporter: reporter,
		interval: interval,
		logger:   logger.GetLogger("Monitoring", "PlatformMemory"),
		usedDesc: prometheus.NewDesc(
			"clamdpool_platform_memory_used_bytes", "Host memory currently in use.", nil, nil),
		freeDesc: prometheus.NewDesc(
			"clamdpool_platform_memory_free_bytes", "Host memory currently available.", nil, nil),
	}
}

// Run samples the reporter immediately, then every interval, until ctx
// is cancelled. It is meant to run in its own goroutine.
func (c *Collector) Run(ctx context.Context) {
	c.sample()

	if c.interval <= 0 {
		<-ctx.Done()
		return
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.sample()
		}
	}
}

func (c *Collector) sample() {
	mem, ok := c.reporter.Report()
	c.mu.Lock()
	c.last, c.lastOK, c.sampled = mem, ok, true
	c.mu.Unlock()
	if !ok {
		c.logger.Warn("platform memory reporter returned no sample")
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.usedDesc
	ch <- c.freeDesc
}

// Collect implements prometheus.Collector. It emits nothing until the
// first sample lands, and nothing at all if the last sample failed.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.mu.Lock()
	mem, ok, sampled := c.last, c.lastOK, c.sampled
	c.mu.Unlock()

	if !sampled || !ok {
		return
	}
	ch <- prometheus.MustNewConstMetric(c.usedDesc, prometheus.GaugeValue, float64(mem.UsedBytes))
	ch <- prometheus.MustNewConstMetric(c.freeDesc, prometheus.GaugeValue, float64(mem.FreeBytes))
}

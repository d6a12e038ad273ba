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
	"go.uber.org/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// poolMetrics holds the lifetime counters for a Pool. They are kept
// separate from the worker-count bookkeeping in Pool itself:
// aliveWorkers/idleWorkers participate in the pool's own invariants and
// are read together under p.mu, while these are purely additive and
// safe to read from a Prometheus scrape without touching the pool lock.
type poolMetrics struct {
	workersCreated  atomic.Uint64
	tasksDispatched atomic.Uint64
	tasksCompleted  atomic.Uint64
	tasksFailed     atomic.Uint64
	tasksRejected   atomic.Uint64
	// spawnFailures stays at zero in this port: launching a goroutine
	// cannot fail the way pthread_create can. Kept so Stats has the
	// same shape as the daemon's other worker pools.
	spawnFailures atomic.Uint64
}

// Stats is a point-in-time snapshot of a Pool's bookkeeping and
// counters, suitable for logging, JSON responses, or feeding a
// Prometheus collector.
type Stats struct {
	WorkersAlive    uint64
	WorkersIdle     uint64
	WorkersMax      uint64
	WorkersCreated  uint64
	TasksDispatched uint64
	TasksCompleted  uint64
	TasksFailed     uint64
	TasksRejected   uint64
	SpawnFailures   uint64
}

// Snapshot returns the pool's current Stats.
func (p *Pool) Snapshot() Stats {
	p.mu.Lock()
	alive, idle, maxWorkers := p.aliveWorkers, p.idleWorkers, p.maxWorkers
	p.mu.Unlock()

	return Stats{
		WorkersAlive:    uint64(alive),
		WorkersIdle:     uint64(idle),
		WorkersMax:      uint64(maxWorkers),
		WorkersCreated:  p.metrics.workersCreated.Load(),
		TasksDispatched: p.metrics.tasksDispatched.Load(),
		TasksCompleted:  p.metrics.tasksCompleted.Load(),
		TasksFailed:     p.metrics.tasksFailed.Load(),
		TasksRejected:   p.metrics.tasksRejected.Load(),
		SpawnFailures:   p.metrics.spawnFailures.Load(),
	}
}

// PoolCollector adapts a Pool's Stats into a prometheus.Collector so
// the daemon can register it alongside its other collectors.
type PoolCollector struct {
	pool *Pool

	workersAlive    *prometheus.Desc
	workersIdle     *prometheus.Desc
	workersMax      *prometheus.Desc
	workersCreated  *prometheus.Desc
	tasksDispatched *prometheus.Desc
	tasksCompleted  *prometheus.Desc
	tasksFailed     *prometheus.Desc
	tasksRejected   *prometheus.Desc
}

// NewPoolCollector builds a PoolCollector for pool, labeling every
// metric with pool's name.
func NewPoolCollector(pool *Pool) *PoolCollector {
	labels := prometheus.Labels{"pool": pool.name}
	return &PoolCollector{
		pool: pool,
		workersAlive: prometheus.NewDesc(
			"clamdpool_pool_workers_alive", "Current number of live worker goroutines.", nil, labels),
		workersIdle: prometheus.NewDesc(
			"clamdpool_pool_workers_idle", "Current number of idle worker goroutines.", nil, labels),
		workersMax: prometheus.NewDesc(
			"clamdpool_pool_workers_max", "Configured worker ceiling.", nil, labels),
		workersCreated: prometheus.NewDesc(
			"clamdpool_pool_workers_created_total", "Worker goroutines spawned since pool creation.", nil, labels),
		tasksDispatched: prometheus.NewDesc(
			"clamdpool_pool_tasks_dispatched_total", "Jobs successfully enqueued.", nil, labels),
		tasksCompleted: prometheus.NewDesc(
			"clamdpool_pool_tasks_completed_total", "Jobs a worker finished running, success or not.", nil, labels),
		tasksFailed: prometheus.NewDesc(
			"clamdpool_pool_tasks_failed_total", "Jobs whose handler panicked.", nil, labels),
		tasksRejected: prometheus.NewDesc(
			"clamdpool_pool_tasks_rejected_total", "Dispatch calls refused because the pool was not valid.", nil, labels),
	}
}

// Describe implements prometheus.Collector.
func (c *PoolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.workersAlive
	ch <- c.workersIdle
	ch <- c.workersMax
	ch <- c.workersCreated
	ch <- c.tasksDispatched
	ch <- c.tasksCompleted
	ch <- c.tasksFailed
	ch <- c.tasksRejected
}

// Collect implements prometheus.Collector.
func (c *PoolCollector) Collect(ch chan<- prometheus.Metric) {
	snap := c.pool.Snapshot()
	ch <- prometheus.MustNewConstMetric(c.workersAlive, prometheus.GaugeValue, float64(snap.WorkersAlive))
	ch <- prometheus.MustNewConstMetric(c.workersIdle, prometheus.GaugeValue, float64(snap.WorkersIdle))
	ch <- prometheus.MustNewConstMetric(c.workersMax, prometheus.GaugeValue, float64(snap.WorkersMax))
	ch <- prometheus.MustNewConstMetric(c.workersCreated, prometheus.CounterValue, float64(snap.WorkersCreated))
	ch <- prometheus.MustNewConstMetric(c.tasksDispatched, prometheus.CounterValue, float64(snap.TasksDispatched))
	ch <- prometheus.MustNewConstMetric(c.tasksCompleted, prometheus.CounterValue, float64(snap.TasksCompleted))
	ch <- prometheus.MustNewConstMetric(c.tasksFailed, prometheus.CounterValue, float64(snap.TasksFailed))
	ch <- prometheus.MustNewConstMetric(c.tasksRejected, prometheus.CounterValue, float64(snap.TasksRejected))
}

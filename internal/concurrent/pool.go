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
	"sync"
	"time"

	"github.com/lindb/common/pkg/logger"
)

// State is a Pool's lifecycle stage.
type State int32

const (
	// StateInvalid marks a pool that has never been initialized; a
	// destroyed pool stays in StateExit. It is the zero value so a
	// Pool's state is never mistaken for StateValid before construction
	// finishes.
	StateInvalid State = iota
	// StateValid accepts Dispatch calls and runs workers.
	StateValid
	// StateExit is shutting down: Dispatch is refused, and existing
	// workers keep running queued jobs until the queue is empty, then
	// exit.
	StateExit
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateValid:
		return "VALID"
	case StateExit:
		return "EXIT"
	default:
		return "INVALID"
	}
}

// Handler processes one dispatched job. task is the calling worker's
// handle for reporting live status via SetActiveTask/SetActiveEngine;
// data is whatever was passed to Dispatch or DispatchGroup. A panicking
// Handler is recovered by the worker loop and counted as a failed task;
// it does not take the pool down.
type Handler func(task *TaskHandle, data any)

// Option configures optional Pool behavior at construction time.
type Option func(*Pool)

// WithEngineMemStats injects the engine memory accounting collaborator
// PrintStats queries. Without it, engine totals are always omitted.
func WithEngineMemStats(stats EngineMemStats) Option {
	return func(p *Pool) { p.engineMemStats = stats }
}

// WithLogger overrides the pool's logger, mainly useful in tests that
// want to assert on log output.
func WithLogger(l logger.Logger) Option {
	return func(p *Pool) { p.logger = l }
}

// WithRegistry registers the pool into r instead of the process-wide
// default registry. Tests use this to get an isolated registry whose
// PrintStats output does not interleave with other tests' pools.
func WithRegistry(r *Registry) Option {
	return func(p *Pool) { p.registry = r }
}

// Pool is a bounded group of worker goroutines draining a shared FIFO
// queue. Workers are spawned on demand, up to maxWorkers, and reaped
// after sitting idle for idleTimeout.
type Pool struct {
	name string

	mu       sync.Mutex
	poolCond *sync.Cond // signalled on new work, shutdown, or a worker's exit
	idleCond *sync.Cond // signalled whenever a worker goes idle

	state        State
	queue        *workQueue
	taskHead     *taskDescriptor
	aliveWorkers int
	idleWorkers  int
	maxWorkers   int
	idleTimeout  time.Duration

	handler        Handler
	engineMemStats EngineMemStats
	logger         logger.Logger
	metrics        *poolMetrics

	registry *Registry
	// registryNext links this pool into its Registry's singly-linked
	// list; owned by the registry, guarded by the registry's lock.
	registryNext *Pool
}

// NewPool creates a pool named name with up to maxWorkers live workers,
// reaping idle ones after idleTimeout. It returns nil if maxWorkers < 1.
// The pool self-registers with the process-wide Registry unless
// WithRegistry overrides that.
func NewPool(name string, maxWorkers int, idleTimeout time.Duration, handler Handler, opts ...Option) *Pool {
	if maxWorkers < 1 {
		return nil
	}
	p := &Pool{
		name:           name,
		state:          StateValid,
		queue:          newWorkQueue(),
		maxWorkers:     maxWorkers,
		idleTimeout:    idleTimeout,
		handler:        handler,
		engineMemStats: noopEngineMemStats{},
		logger:         logger.GetLogger("Concurrent", "Pool"),
		metrics:        &poolMetrics{},
		registry:       defaultRegistry,
	}
	p.poolCond = sync.NewCond(&p.mu)
	p.idleCond = sync.NewCond(&p.mu)

	for _, opt := range opts {
		opt(p)
	}
	p.registry.register(p)
	return p
}

// Dispatch enqueues data for a worker to process, spawning a new worker
// if there are fewer idle workers than queued items and the pool has
// headroom. It
// returns false if the pool is nil or not StateValid; dispatch never
// blocks beyond the brief lock acquisition.
func (p *Pool) Dispatch(data any) bool {
	if p == nil {
		return false
	}
	p.mu.Lock()
	if p.state != StateValid {
		p.mu.Unlock()
		p.metrics.tasksRejected.Inc()
		return false
	}

	p.queue.push(data)
	p.metrics.tasksDispatched.Inc()

	// Spawn only when no idle worker can absorb this item and we still
	// have headroom. This converges to min(backlog, maxWorkers) live
	// workers without a thundering herd of spawns on every dispatch.
	if p.idleWorkers < p.queue.count && p.aliveWorkers < p.maxWorkers {
		p.aliveWorkers++
		p.metrics.workersCreated.Inc()
		go p.runWorker()
	}
	p.poolCond.Signal()
	p.mu.Unlock()
	return true
}

// DispatchGroup is Dispatch bundled with a Group: it increments the
// group's outstanding count before enqueuing and rolls the increment
// back if Dispatch fails. The group lock is held across the Dispatch
// call so a concurrent WaitForAll can never observe jobs drop to zero
// between the increment and the successful enqueue.
func (p *Pool) DispatchGroup(group *Group, data any) bool {
	group.mu.Lock()
	defer group.mu.Unlock()

	group.jobs++
	if !p.Dispatch(data) {
		group.jobs--
		return false
	}
	return true
}

// runWorker is a worker goroutine's entire lifetime: link in a task
// descriptor, then alternate between draining the queue and waiting
// (with an idle deadline) for more work, until told to exit.
func (p *Pool) runWorker() {
	desc := newTaskDescriptor()
	handle := &TaskHandle{desc: desc}

	p.mu.Lock()
	p.linkTask(desc)
	p.mu.Unlock()

	for {
		p.mu.Lock()
		desc.setIdle()
		deadline := time.Now().Add(p.idleTimeout)
		p.idleWorkers++
		p.idleCond.Signal()

		timedOut := p.waitForWorkOrExit(deadline)

		item, popped := p.queue.pop()
		p.idleWorkers--
		mustExit := timedOut
		if p.state == StateExit {
			mustExit = true
		}
		p.mu.Unlock()

		if popped {
			p.runHandler(handle, item)
			continue
		}
		if mustExit {
			break
		}
	}

	p.mu.Lock()
	p.aliveWorkers--
	if p.aliveWorkers == 0 {
		p.poolCond.Broadcast()
	}
	p.unlinkTask(desc)
	p.mu.Unlock()
}

// waitForWorkOrExit waits on poolCond until the queue is non-empty, the
// pool is shutting down, or deadline passes, whichever comes first. It
// returns true only for a genuine idle timeout (still no work, still
// not exiting). Must be called with p.mu held; it releases and
// re-acquires the lock internally via poolCond.Wait.
//
// The deadline is armed once per call, not recomputed on each spurious
// wakeup, matching the idle-reap policy's intent.
func (p *Pool) waitForWorkOrExit(deadline time.Time) bool {
	timer := time.AfterFunc(time.Until(deadline), func() {
		p.mu.Lock()
		p.poolCond.Broadcast()
		p.mu.Unlock()
	})
	defer timer.Stop()

	for p.queue.count == 0 && p.state != StateExit {
		p.poolCond.Wait()
		if p.queue.count == 0 && p.state != StateExit && !time.Now().Before(deadline) {
			return true
		}
	}
	return false
}

// runHandler invokes the handler for item, recovering a panic so one
// bad job cannot take the worker (or the pool) down with it.
func (p *Pool) runHandler(handle *TaskHandle, item *workItem) {
	defer func() {
		if r := recover(); r != nil {
			p.metrics.tasksFailed.Inc()
			p.logger.Error("panic in pool handler",
				logger.String("pool", p.name), logger.Any("recover", r), logger.Stack())
		}
		p.metrics.tasksCompleted.Inc()
	}()
	p.handler(handle, item.data)
}

// Destroy transitions the pool to StateExit, waits for every worker to
// drain, and unregisters the pool. It is idempotent: calling it on an
// already-destroyed or never-valid pool is a no-op.
func (p *Pool) Destroy() {
	p.mu.Lock()
	if p.state != StateValid {
		p.mu.Unlock()
		return
	}
	p.state = StateExit
	if p.aliveWorkers > 0 {
		p.poolCond.Broadcast()
	}
	for p.aliveWorkers > 0 {
		p.poolCond.Wait()
	}
	p.mu.Unlock()

	// Unregistering takes the registry lock, which must never be
	// acquired while holding the pool lock (registry lock nests
	// outside the pool lock, never the reverse) — so this happens
	// only after p.mu is released above.
	p.registry.unregister(p)
}

// waitIdle blocks until the pool has no busy workers (idleWorkers ==
// aliveWorkers) or there are no workers at all. It is not part of the
// public API; tests use it to synchronize with a pool quiescing instead
// of sleeping.
func (p *Pool) waitIdle() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for p.aliveWorkers > 0 && p.idleWorkers != p.aliveWorkers {
		p.idleCond.Wait()
	}
}

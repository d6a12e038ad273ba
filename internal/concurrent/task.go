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

import "time"

// IdleCommand is the sentinel command label for a worker that is not
// currently executing a job. SetActiveTask treats it specially: setting
// it while it is already current does not refresh the command's start
// time, so an idle worker's reported age is measured from when it first
// went idle.
const IdleCommand = "IDLE"

// taskDescriptor is a worker's live-status record: the file and command
// it is currently processing, the engine handle it is using, and when
// the current command started. It is owned by exactly one worker
// goroutine, which is the only writer; the statistics dump reads it
// under the owning Pool's lock. It is also doubly-linked into the
// Pool's task list so the dump can walk every live worker.
type taskDescriptor struct {
	filename  string
	command   string
	commandAt time.Time
	engine    any

	prev, next *taskDescriptor
}

func newTaskDescriptor() *taskDescriptor {
	return &taskDescriptor{command: IdleCommand, commandAt: time.Now()}
}

// setActiveTask updates the descriptor's filename and command. Filename
// always takes effect. The command's start time is preserved only for
// a repeated IdleCommand update (an idle worker's reported age is
// measured from when it first went idle); every other call, including
// one repeating the same non-idle command, refreshes commandAt.
func (d *taskDescriptor) setActiveTask(filename, command string) {
	d.filename = filename
	if command == IdleCommand && command == d.command {
		return
	}
	d.command = command
	d.commandAt = time.Now()
}

// setIdle clears the active engine and marks the worker idle, preserving
// the "idle since" timestamp if it was already idle.
func (d *taskDescriptor) setIdle() {
	d.engine = nil
	d.setActiveTask(d.filename, IdleCommand)
}

func (d *taskDescriptor) setActiveEngine(engine any) {
	d.engine = engine
}

// TaskHandle is the worker-local handle a Handler uses to report its
// progress. It exists because Go has no thread-local storage: rather
// than stashing the descriptor behind a goroutine id (which would need
// its own lock and defeat the purpose), the pool hands each worker its
// own TaskHandle up front and threads it through every Handler call.
type TaskHandle struct {
	desc *taskDescriptor
}

// SetActiveTask records the file and command the calling worker is
// currently processing. Safe to call without any lock: the descriptor
// is owned by the calling worker, and the statistics dump only reads it
// after acquiring the pool's lock.
func (h *TaskHandle) SetActiveTask(filename, command string) {
	h.desc.setActiveTask(filename, command)
}

// SetActiveEngine records the engine handle the calling worker is
// currently using. Same locking contract as SetActiveTask.
func (h *TaskHandle) SetActiveEngine(engine any) {
	h.desc.setActiveEngine(engine)
}

// linkTask links d at the head of the pool's task list. Must be called
// with p.mu held.
func (p *Pool) linkTask(d *taskDescriptor) {
	d.prev = nil
	d.next = p.taskHead
	if p.taskHead != nil {
		p.taskHead.prev = d
	}
	p.taskHead = d
}

// unlinkTask removes d from the pool's task list. Must be called with
// p.mu held.
func (p *Pool) unlinkTask(d *taskDescriptor) {
	if d.prev != nil {
		d.prev.next = d.next
	} else {
		p.taskHead = d.next
	}
	if d.next != nil {
		d.next.prev = d.prev
	}
	d.prev, d.next = nil, nil
}

// clearTasks unconditionally unlinks every descriptor still on the
// pool's task list. Called only once aliveWorkers has reached zero, so
// no worker can still be writing to one of these descriptors.
func (p *Pool) clearTasks() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for d := p.taskHead; d != nil; {
		next := d.next
		d.prev, d.next = nil, nil
		d = next
	}
	p.taskHead = nil
}

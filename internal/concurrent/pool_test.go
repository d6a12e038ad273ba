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
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPool_rejectsNonPositiveMaxWorkers(t *testing.T) {
	assert.Nil(t, NewPool("bad", 0, time.Second, func(*TaskHandle, any) {}))
	assert.Nil(t, NewPool("bad", -1, time.Second, func(*TaskHandle, any) {}))
}

func TestPool_dispatchRunsHandler(t *testing.T) {
	p := NewPool("test", 4, time.Second, func(task *TaskHandle, data any) {
		task.SetActiveTask(data.(string), "SCAN")
	}, WithRegistry(NewRegistry()))
	defer p.Destroy()

	var wg sync.WaitGroup
	wg.Add(1)
	var got atomic.Value
	p2 := NewPool("capture", 1, time.Second, func(_ *TaskHandle, data any) {
		got.Store(data)
		wg.Done()
	}, WithRegistry(NewRegistry()))
	defer p2.Destroy()

	require.True(t, p2.Dispatch("/a/b"))
	wg.Wait()
	assert.Equal(t, "/a/b", got.Load())

	require.True(t, p.Dispatch("/x"))
	p.waitIdle()
}

func TestPool_dispatchAfterDestroyFails(t *testing.T) {
	p := NewPool("dying", 2, time.Second, func(*TaskHandle, any) {}, WithRegistry(NewRegistry()))
	p.Destroy()
	assert.False(t, p.Dispatch("anything"))
}

func TestPool_capsWorkersAtMax(t *testing.T) {
	release := make(chan struct{})
	var inflight, maxSeen int32

	p := NewPool("capped", 3, time.Minute, func(*TaskHandle, any) {
		n := atomic.AddInt32(&inflight, 1)
		for {
			old := atomic.LoadInt32(&maxSeen)
			if n <= old || atomic.CompareAndSwapInt32(&maxSeen, old, n) {
				break
			}
		}
		<-release
		atomic.AddInt32(&inflight, -1)
	}, WithRegistry(NewRegistry()))
	defer func() {
		close(release)
		p.Destroy()
	}()

	for i := 0; i < 10; i++ {
		require.True(t, p.Dispatch(i))
	}

	require.Eventually(t, func() bool {
		p.mu.Lock()
		defer p.mu.Unlock()
		return p.aliveWorkers == 3
	}, 2*time.Second, 5*time.Millisecond)

	assert.LessOrEqual(t, atomic.LoadInt32(&maxSeen), int32(3))
}

func TestPool_idleWorkersAreReaped(t *testing.T) {
	p := NewPool("reaped", 4, 20*time.Millisecond, func(*TaskHandle, any) {}, WithRegistry(NewRegistry()))
	defer p.Destroy()

	require.True(t, p.Dispatch("job"))
	p.waitIdle()

	require.Eventually(t, func() bool {
		p.mu.Lock()
		defer p.mu.Unlock()
		return p.aliveWorkers == 0
	}, time.Second, 5*time.Millisecond)
}

func TestPool_handlerPanicIsRecovered(t *testing.T) {
	done := make(chan struct{})
	p := NewPool("panicky", 1, time.Second, func(*TaskHandle, any) {
		defer close(done)
		panic("boom")
	}, WithRegistry(NewRegistry()))
	defer p.Destroy()

	require.True(t, p.Dispatch("job"))
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handler never ran")
	}

	require.Eventually(t, func() bool {
		return p.Snapshot().TasksFailed == 1
	}, time.Second, 5*time.Millisecond)

	require.True(t, p.Dispatch("still alive"))
}

type groupJob struct {
	group *Group
	n     int
}

func TestPool_dispatchGroupWaitsForAll(t *testing.T) {
	p := NewPool("grouped", 4, time.Second, func(_ *TaskHandle, data any) {
		job := data.(groupJob)
		outcome := OutcomeOK
		if job.n%3 == 0 {
			outcome = OutcomeError
		}
		job.group.Finished(outcome)
	}, WithRegistry(NewRegistry()))
	defer p.Destroy()

	group := NewGroup()
	for i := 1; i <= 9; i++ {
		require.True(t, p.DispatchGroup(group, groupJob{group: group, n: i}))
	}

	done := make(chan struct{})
	var ok, errCount, total uint64
	go func() {
		ok, errCount, total = group.WaitForAll()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("WaitForAll did not return")
	}

	assert.Equal(t, uint64(9), total)
	assert.Equal(t, uint64(3), errCount)
	assert.Equal(t, uint64(6), ok)
}

func TestPool_destroyDrainsInFlightWork(t *testing.T) {
	var completed atomic.Int64
	started := make(chan struct{})
	block := make(chan struct{})

	p := NewPool("draining", 1, time.Second, func(*TaskHandle, any) {
		close(started)
		<-block
		completed.Add(1)
	}, WithRegistry(NewRegistry()))

	require.True(t, p.Dispatch("job"))
	<-started

	destroyed := make(chan struct{})
	go func() {
		p.Destroy()
		close(destroyed)
	}()

	select {
	case <-destroyed:
		t.Fatal("Destroy returned before the in-flight job finished")
	case <-time.After(50 * time.Millisecond):
	}

	close(block)
	select {
	case <-destroyed:
	case <-time.After(time.Second):
		t.Fatal("Destroy never returned")
	}
	assert.Equal(t, int64(1), completed.Load())
}

func TestPool_destroyIsIdempotent(t *testing.T) {
	p := NewPool("idempotent", 1, time.Second, func(*TaskHandle, any) {}, WithRegistry(NewRegistry()))
	p.Destroy()
	assert.NotPanics(t, p.Destroy)
}

func TestPool_snapshotReportsDispatchedAndCompleted(t *testing.T) {
	p := NewPool("snapshotted", 2, time.Second, func(*TaskHandle, any) {}, WithRegistry(NewRegistry()))
	defer p.Destroy()

	for i := 0; i < 5; i++ {
		require.True(t, p.Dispatch(i))
	}
	p.waitIdle()

	require.Eventually(t, func() bool {
		return p.Snapshot().TasksCompleted == 5
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, uint64(5), p.Snapshot().TasksDispatched)
}

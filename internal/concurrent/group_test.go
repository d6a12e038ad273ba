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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroup_waitsForAllJobs(t *testing.T) {
	g := NewGroup()
	const n = 20

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		g.mu.Lock()
		g.jobs++
		g.mu.Unlock()

		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcome := OutcomeOK
			if i%5 == 0 {
				outcome = OutcomeError
			}
			g.Finished(outcome)
		}(i)
	}

	done := make(chan struct{})
	var ok, errCount, total uint64
	go func() {
		ok, errCount, total = g.WaitForAll()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("WaitForAll did not return")
	}
	wg.Wait()

	assert.Equal(t, uint64(n), total)
	assert.Equal(t, uint64(4), errCount)
	assert.Equal(t, uint64(16), ok)
}

func TestGroup_emptyGroupReturnsImmediately(t *testing.T) {
	g := NewGroup()
	ok, errCount, total := g.WaitForAll()
	assert.Zero(t, ok)
	assert.Zero(t, errCount)
	assert.Zero(t, total)
}

func TestGroup_finishedOnEmptyGroupDoesNotUnderflow(t *testing.T) {
	g := NewGroup()
	require.NotPanics(t, func() {
		g.Finished(OutcomeOK)
	})
	ok, _, total := g.WaitForAll()
	assert.Equal(t, uint64(1), ok)
	assert.Equal(t, uint64(1), total)
}

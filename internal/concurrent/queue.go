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

// workItem is a single queued piece of opaque data plus its arrival time,
// used by the statistics dump to report how long it has been waiting.
type workItem struct {
	data    any
	arrival time.Time
	next    *workItem
}

// workQueue is a singly-linked FIFO of workItem. It is not safe for
// concurrent use; callers serialize access under the owning Pool's lock.
type workQueue struct {
	head, tail *workItem
	count      int
}

func newWorkQueue() *workQueue {
	return &workQueue{}
}

// push appends data to the tail of the queue, stamping it with the
// current time.
func (q *workQueue) push(data any) {
	item := &workItem{data: data, arrival: time.Now()}
	if q.tail == nil {
		q.head = item
	} else {
		q.tail.next = item
	}
	q.tail = item
	q.count++
}

// pop removes and returns the head item, or (nil, false) if the queue
// is empty.
func (q *workQueue) pop() (*workItem, bool) {
	item := q.head
	if item == nil {
		return nil, false
	}
	q.head = item.next
	if q.head == nil {
		q.tail = nil
	}
	item.next = nil
	q.count--
	return item, true
}

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

// Package concurrent implements a bounded worker pool that dispatches
// opaque jobs onto a dynamically sized set of long-lived goroutines.
//
// A Pool grows workers on demand up to a configured ceiling and reaps
// idle ones after a timeout. Producers can fire-and-forget with
// Dispatch, or bundle many jobs into a Group and block on
// (*Group).WaitForAll for a tally of successes and errors. A
// process-wide Registry tracks every live Pool so an operator can pull
// a point-in-time PrintStats dump without coordinating with producers
// or workers.
package concurrent

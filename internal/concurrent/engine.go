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

// EngineMemStats is the external collaborator the statistics dump
// queries for per-engine memory accounting. Engine handles are opaque
// to the pool — typically a signature-engine session owned by the
// daemon's scanning subsystem — so the pool never constructs one
// itself, it only forwards whatever a worker published through
// TaskHandle.SetActiveEngine.
type EngineMemStats interface {
	// Stats reports the used and total byte counts for engine. ok is
	// false when the engine is unrecognized or the query otherwise
	// fails; the dump silently skips it in that case.
	Stats(engine any) (used, total uint64, ok bool)
}

// noopEngineMemStats is the default used when a Pool is built without
// an explicit EngineMemStats, so PrintStats never needs a nil check.
type noopEngineMemStats struct{}

func (noopEngineMemStats) Stats(any) (used, total uint64, ok bool) { return 0, 0, false }

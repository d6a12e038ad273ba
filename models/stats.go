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

package models

import (
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	commonmodels "github.com/lindb/common/models"
)

// PoolStat is a point-in-time rendering of one pool's counters, shaped
// for human display rather than for the wire.
type PoolStat struct {
	Name            string
	WorkersAlive    uint64
	WorkersIdle     uint64
	WorkersMax      uint64
	TasksDispatched uint64
	TasksCompleted  uint64
	TasksFailed     uint64
	TasksRejected   uint64
}

// PoolStats is a list of PoolStat, renderable as a terminal table.
type PoolStats []PoolStat

// ToTable renders s as a table if it has any rows, else returns an
// empty string.
func (s PoolStats) ToTable() (rows int, tableStr string) {
	if len(s) == 0 {
		return 0, ""
	}
	writer := commonmodels.NewTableFormatter()
	writer.AppendHeader(table.Row{"Pool", "Alive", "Idle", "Max", "Dispatched", "Completed", "Failed", "Rejected"})
	for _, p := range s {
		writer.AppendRow(table.Row{
			p.Name,
			strconv.FormatUint(p.WorkersAlive, 10),
			strconv.FormatUint(p.WorkersIdle, 10),
			strconv.FormatUint(p.WorkersMax, 10),
			strconv.FormatUint(p.TasksDispatched, 10),
			strconv.FormatUint(p.TasksCompleted, 10),
			strconv.FormatUint(p.TasksFailed, 10),
			strconv.FormatUint(p.TasksRejected, 10),
		})
	}
	return len(s), writer.Render()
}

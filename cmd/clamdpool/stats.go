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

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/scancore/clamdpool/config"
	"github.com/scancore/clamdpool/internal/concurrent"
	"github.com/scancore/clamdpool/models"
)

// newStatsCmd spins up a short-lived pool against the configured
// worker ceiling, runs a handful of synthetic jobs through it, and
// prints both a human table and the raw text dump. It exists so an
// operator can sanity-check a config file's pool sizing without
// standing up the full daemon.
func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "run a short synthetic workload and print pool statistics",
		RunE:  runStats,
	}
}

func runStats(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	pool := concurrent.NewPool("demo", cfg.Concurrent.MaxWorkers, time.Duration(cfg.Concurrent.IdleTimeout),
		func(_ *concurrent.TaskHandle, _ any) {
			time.Sleep(10 * time.Millisecond)
		},
	)
	defer pool.Destroy()

	for i := 0; i < cfg.Concurrent.MaxWorkers*4; i++ {
		pool.Dispatch(i)
	}

	deadline := time.After(2 * time.Second)
poll:
	for {
		select {
		case <-deadline:
			break poll
		default:
			if snap := pool.Snapshot(); snap.TasksCompleted == snap.TasksDispatched {
				break poll
			}
			time.Sleep(5 * time.Millisecond)
		}
	}

	snap := pool.Snapshot()
	rows, table := models.PoolStats{{
		Name:            "demo",
		WorkersAlive:    snap.WorkersAlive,
		WorkersIdle:     snap.WorkersIdle,
		WorkersMax:      snap.WorkersMax,
		TasksDispatched: snap.TasksDispatched,
		TasksCompleted:  snap.TasksCompleted,
		TasksFailed:     snap.TasksFailed,
		TasksRejected:   snap.TasksRejected,
	}}.ToTable()
	if rows > 0 {
		fmt.Println(table)
	}

	fmt.Println(color.CyanString("raw dump:"))
	concurrent.PrintStats(concurrent.NewWriterSink(os.Stdout), nil)
	return nil
}

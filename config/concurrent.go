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

package config

import (
	"fmt"
	"time"

	"github.com/lindb/common/pkg/ltoml"
)

// Concurrent represents the configuration for a scanning worker pool.
type Concurrent struct {
	MaxWorkers    int            `env:"MAX_WORKERS" toml:"max-workers"`
	IdleTimeout   ltoml.Duration `env:"IDLE_TIMEOUT" toml:"idle-timeout"`
	StatsInterval ltoml.Duration `env:"STATS_INTERVAL" toml:"stats-interval"`
}

// TOML returns Concurrent's toml config text.
func (c *Concurrent) TOML() string {
	return fmt.Sprintf(`
## Config for the scanning worker pool
[concurrent]
## Maximum number of worker goroutines a pool may grow to.
## Default: %d
## Env: LINDB_CLAMDPOOL_CONCURRENT_MAX_WORKERS
max-workers = %d
## How long an idle worker waits for new work before exiting.
## Default: %s
## Env: LINDB_CLAMDPOOL_CONCURRENT_IDLE_TIMEOUT
idle-timeout = "%s"
## How often the daemon's administrator channel refreshes its pool
## statistics dump. Set to 0 to disable periodic dumps entirely.
## Default: %s
## Env: LINDB_CLAMDPOOL_CONCURRENT_STATS_INTERVAL
stats-interval = "%s"`,
		c.MaxWorkers,
		c.MaxWorkers,
		c.IdleTimeout.String(),
		c.IdleTimeout.String(),
		c.StatsInterval.String(),
		c.StatsInterval.String(),
	)
}

// Validate rejects configuration that would make NewPool fail or behave
// in a surprising way.
func (c *Concurrent) Validate() error {
	if c.MaxWorkers < 1 {
		return fmt.Errorf("concurrent.max-workers must be >= 1, got %d", c.MaxWorkers)
	}
	if c.IdleTimeout < 0 {
		return fmt.Errorf("concurrent.idle-timeout must be >= 0, got %s", time.Duration(c.IdleTimeout))
	}
	return nil
}

// NewDefaultConcurrent returns a new default Concurrent config.
func NewDefaultConcurrent() *Concurrent {
	return &Concurrent{
		MaxWorkers:    16,
		IdleTimeout:   ltoml.Duration(30 * time.Second),
		StatsInterval: ltoml.Duration(15 * time.Second),
	}
}

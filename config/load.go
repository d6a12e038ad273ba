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
	"os"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v7"
)

// Daemon is the daemon's full on-disk/environment configuration.
type Daemon struct {
	Concurrent Concurrent `toml:"concurrent"`
}

// NewDefaultDaemon returns a Daemon populated with every section's
// defaults.
func NewDefaultDaemon() *Daemon {
	return &Daemon{Concurrent: *NewDefaultConcurrent()}
}

// Validate runs every section's Validate.
func (d *Daemon) Validate() error {
	return d.Concurrent.Validate()
}

// TOML renders the full daemon configuration as a commented toml file.
func (d *Daemon) TOML() string {
	return d.Concurrent.TOML()
}

// Load reads path (if it exists) into a fresh default Daemon, then
// overlays any LINDB_CLAMDPOOL_* environment variables, matching the
// daemon's usual config precedence: defaults, then file, then
// environment.
func Load(path string) (*Daemon, error) {
	cfg := NewDefaultDaemon()
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, cfg); err != nil {
				return nil, fmt.Errorf("decode config file %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("stat config file %s: %w", path, err)
		}
	}
	if err := env.Parse(&cfg.Concurrent, env.Options{Prefix: "LINDB_CLAMDPOOL_CONCURRENT_"}); err != nil {
		return nil, fmt.Errorf("parse environment overrides: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// WriteDefault writes a default Daemon's toml representation to path,
// refusing to overwrite an existing file.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file %s already exists", path)
	} else if !os.IsNotExist(err) {
		return err
	}
	return os.WriteFile(path, []byte(NewDefaultDaemon().TOML()), 0o644)
}

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
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

const defaultCfgFile = "clamdpool.toml"

var cfgFile string

// newRootCmd assembles the clamdpool command tree: run the daemon,
// dump a default config, or run a short synthetic workload and print
// that pool's counters.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "clamdpool",
		Short: "Bounded worker pool daemon for a signature-scanning backend",
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file path, default is "+defaultCfgFile)

	root.AddCommand(newRunCmd(), newInitConfigCmd(), newStatsCmd())
	return root
}

// newCtxWithSignals returns a context cancelled on SIGINT/SIGTERM, the
// same shutdown trigger the daemon's other long-running commands use.
func newCtxWithSignals() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		cancel()
	}()
	return ctx
}

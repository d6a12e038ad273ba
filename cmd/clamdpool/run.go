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
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/lindb/common/pkg/logger"

	"github.com/scancore/clamdpool/config"
	"github.com/scancore/clamdpool/internal/concurrent"
	"github.com/scancore/clamdpool/internal/engine"
	"github.com/scancore/clamdpool/internal/monitoring"
)

var metricsAddr string

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "run the worker pool daemon",
		RunE:  runDaemon,
	}
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", ":9090", "address the Prometheus /metrics endpoint listens on")
	return cmd
}

func runDaemon(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.GetLogger("Cmd", "ClamdPool")
	ctx := newCtxWithSignals()

	memStats := engine.NewStaticEngineMemStats()
	demoEngine := &engine.Handle{Name: "clamav-session-0"}
	memStats.Set(demoEngine, 12<<20, 64<<20)

	pool := concurrent.NewPool("scan", cfg.Concurrent.MaxWorkers, time.Duration(cfg.Concurrent.IdleTimeout),
		func(task *concurrent.TaskHandle, data any) {
			filename := data.(string)
			task.SetActiveEngine(demoEngine)
			task.SetActiveTask(filename, "SCAN")
			time.Sleep(time.Duration(50+rand.Intn(200)) * time.Millisecond) //nolint:gosec
		},
		concurrent.WithEngineMemStats(memStats),
	)
	defer pool.Destroy()

	reporter := monitoring.NewGopsutilReporter()
	collector := monitoring.NewCollector(reporter, time.Minute)
	go collector.Run(ctx)

	registry := prometheus.NewRegistry()
	registry.MustRegister(concurrent.NewPoolCollector(pool), collector)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	server := &http.Server{Addr: metricsAddr, Handler: mux}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("metrics server stopped", logger.Error(err))
		}
	}()

	interval := time.Duration(cfg.Concurrent.StatsInterval)
	sink := concurrent.NewWriterSink(os.Stdout)
	var ticker *time.Ticker
	var tickC <-chan time.Time
	if interval > 0 {
		ticker = time.NewTicker(interval)
		tickC = ticker.C
		defer ticker.Stop()
	}

	demoFiles := []string{"/var/spool/mail/inbox.eml", "/tmp/upload.zip", "/srv/www/payload.php"}
	feed := time.NewTicker(300 * time.Millisecond)
	defer feed.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			_ = server.Shutdown(shutdownCtx)
			cancel()
			return nil
		case <-tickC:
			concurrent.PrintStats(sink, reporter)
		case <-feed.C:
			pool.Dispatch(demoFiles[rand.Intn(len(demoFiles))]) //nolint:gosec
		}
	}
}

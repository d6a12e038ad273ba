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

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/scancore/clamdpool/config"
)

// newInitConfigCmd returns a command writing a default, commented
// clamdpool.toml.
func newInitConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init-config",
		Short: "create a new default clamdpool config file",
		RunE: func(_ *cobra.Command, _ []string) error {
			path := cfgFile
			if path == "" {
				path = defaultCfgFile
			}
			if err := config.WriteDefault(path); err != nil {
				return err
			}
			fmt.Println(color.GreenString("wrote default config to %s", path))
			return nil
		},
	}
}

// Copyright 2025 Matthew Gall <me@matthewgall.dev>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the raw response cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the number of cached responses",
	RunE: func(cmd *cobra.Command, args []string) error {
		cache, err := openCache()
		if err != nil {
			return err
		}
		total, expired := cache.Stats()
		fmt.Fprintf(cmd.OutOrStdout(), "%d cached responses (%d expired)\n", total, expired)
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached response for the configured service and meter",
	RunE: func(cmd *cobra.Command, args []string) error {
		cache, err := openCache()
		if err != nil {
			return err
		}
		return cache.Purge()
	},
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd, cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

// openCache opens the cache of the configured scope without validating API settings
func openCache() (*ResponseCache, error) {
	config, err := LoadConfig(cfgFile)
	if err != nil {
		return nil, err
	}
	if debugFlag {
		config.Debug = true
	}
	if config.CachePath == "" {
		return nil, &ConfigError{Field: "cache_path", Message: "caching is disabled"}
	}
	return NewResponseCache(config.CachePath, cacheScope(config), NewLoggerFromConfig(config))
}

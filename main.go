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
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile      string
	apiKey       string
	debugFlag    bool
	snapshotPath string
)

var rootCmd = &cobra.Command{
	Use:   "meterviz",
	Short: "Visualize Snapmeter billing variances and meter readings",
	Long: `meterviz fetches bills and interval meter readings from the Snapmeter API and
renders a stacked chart of billing variances and a month by hour heatmap of demand.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&apiKey, "key", "", "Snapmeter API key (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&snapshotPath, "from-snapshot", "", "Replay a saved snapshot instead of calling the API")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// App wires configuration, data source and the two chart views together
type App struct {
	config    *Config
	logger    *Logger
	cache     *ResponseCache
	collector *Collector
	readings  *View
	billing   *View
}

// newApp loads configuration and builds the views shared by render and serve
func newApp() (*App, error) {
	config, err := LoadConfig(cfgFile)
	if err != nil {
		return nil, err
	}

	// Override with command-line flags
	if apiKey != "" {
		config.APIKey = apiKey
	}
	if debugFlag {
		config.Debug = true
	}

	logger := NewLoggerFromConfig(config)
	logger.Info("Starting meterviz", "version", GetVersion())

	validate := config.Validate
	if snapshotPath != "" {
		validate = config.ValidateOffline
	}
	if err := validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		return nil, err
	}

	loc, err := config.Location()
	if err != nil {
		return nil, err
	}

	app := &App{config: config, logger: logger}

	var source Source
	if snapshotPath != "" {
		logger.Info("Replaying snapshot", "path", snapshotPath)
		snapshot, err := LoadSnapshot(snapshotPath)
		if err != nil {
			return nil, err
		}
		source = NewSnapshotSource(snapshot)
	} else {
		if config.CachePath != "" {
			app.cache, err = NewResponseCache(config.CachePath, cacheScope(config), logger)
			if err != nil {
				return nil, err
			}
		}
		client := NewSnapmeterClient(config.BaseURL, config.APIKey, logger.WithServiceID(config.ServiceID))
		source, err = NewAPISource(client, app.cache, config, logger)
		if err != nil {
			return nil, err
		}
	}

	analyzer := NewAnalyzer(config.Chart.Width, config.Chart.Height, loc, logger)
	app.collector = NewCollector(source, analyzer, loc, logger)
	app.readings = NewView(DatasetReadings, app.collector.LoadReadings, logger)
	app.billing = NewView(DatasetBilling, app.collector.LoadBilling, logger)

	return app, nil
}

// cacheScope isolates cache files per service and meter pair
func cacheScope(config *Config) string {
	scope := config.ServiceID
	if config.MeterID != "" {
		scope += "_" + config.MeterID
	}
	if scope == "" {
		scope = "default"
	}
	return scope
}

// Views returns the views in page order
func (a *App) Views() []*View {
	return []*View{a.readings, a.billing}
}

// Close releases the response cache
func (a *App) Close() {
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Warn("Failed to close cache", "error", err)
		}
	}
}

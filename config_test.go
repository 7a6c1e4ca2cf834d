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
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearSnapmeterEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SNAPMETER_API_KEY", "SNAPMETER_BASE_URL", "SNAPMETER_SERVICE_ID", "SNAPMETER_METER_ID",
		"SNAPMETER_START_DATE", "SNAPMETER_END_DATE", "SNAPMETER_TIMEZONE",
		"SNAPMETER_CACHE_PATH", "SNAPMETER_CACHE_TTL_MINUTES", "SNAPMETER_DEBUG",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("Defaults when the file is missing", func(t *testing.T) {
		clearSnapmeterEnv(t)
		config, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
		require.NoError(t, err)

		assert.Equal(t, SnapmeterAPIBase, config.BaseURL)
		assert.Equal(t, DefaultChartWidth, config.Chart.Width)
		assert.Equal(t, DefaultChartHeight, config.Chart.Height)
		assert.Equal(t, "text", config.LogFormat)
		assert.Equal(t, time.Hour, config.CacheTTL())
		assert.NoError(t, config.ValidateOffline())
	})

	t.Run("YAML file", func(t *testing.T) {
		clearSnapmeterEnv(t)
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
api_key: key-123
service_id: svc-1
meter_id: m-1
start_date: "2024-01-01"
end_date: "2024-06-30"
timezone: UTC
chart:
  width: 1024
  height: 480
log_format: json
`), 0600))

		config, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "key-123", config.APIKey)
		assert.Equal(t, "svc-1", config.ServiceID)
		assert.Equal(t, 1024, config.Chart.Width)
		assert.Equal(t, "json", config.LogFormat)
		require.NoError(t, config.Validate())

		loc, err := config.Location()
		require.NoError(t, err)
		assert.Equal(t, time.UTC, loc)
	})

	t.Run("Environment overrides", func(t *testing.T) {
		clearSnapmeterEnv(t)
		t.Setenv("SNAPMETER_API_KEY", "from-env")
		t.Setenv("SNAPMETER_METER_ID", "meter-env")
		t.Setenv("SNAPMETER_CACHE_TTL_MINUTES", "5")
		t.Setenv("SNAPMETER_DEBUG", "1")

		config, err := LoadConfig("")
		require.NoError(t, err)
		assert.Equal(t, "from-env", config.APIKey)
		assert.Equal(t, "meter-env", config.MeterID)
		assert.Equal(t, 5*time.Minute, config.CacheTTL())
		assert.True(t, config.Debug)
	})

	t.Run("Malformed YAML", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("chart: [1, 2"), 0600))
		_, err := LoadConfig(path)
		assert.Error(t, err)
	})

	t.Run("Save and reload", func(t *testing.T) {
		clearSnapmeterEnv(t)
		path := filepath.Join(t.TempDir(), "config.yaml")
		config, err := LoadConfig("")
		require.NoError(t, err)
		config.ServiceID = "saved"

		require.NoError(t, SaveConfig(path, config))
		reloaded, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "saved", reloaded.ServiceID)
	})
}

func TestConfigValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			APIKey:    "key",
			BaseURL:   SnapmeterAPIBase,
			ServiceID: "svc",
			StartDate: "2024-01-01",
			EndDate:   "2024-02-01",
			Timezone:  "UTC",
			LogFormat: "text",
			Chart:     ChartConfig{Width: 800, Height: 600},
		}
	}

	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"missing key", func(c *Config) { c.APIKey = "" }, "api_key is required"},
		{"no identifiers", func(c *Config) { c.ServiceID = "" }, "service_id or meter_id"},
		{"bad url", func(c *Config) { c.BaseURL = "snapmeter.com" }, "base_url"},
		{"bad date", func(c *Config) { c.StartDate = "01/01/2024" }, "start_date must be YYYY-MM-DD"},
		{"reversed range", func(c *Config) { c.StartDate = "2024-03-01" }, "start_date must be before end_date"},
		{"unknown timezone", func(c *Config) { c.Timezone = "Mars/Olympus" }, "timezone"},
		{"small chart", func(c *Config) { c.Chart.Width = 50 }, "at least 100 pixels"},
		{"log format", func(c *Config) { c.LogFormat = "xml" }, "log_format"},
		{"negative ttl", func(c *Config) { c.CacheTTLMinutes = -1 }, "cache_ttl_minutes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	t.Run("Offline skips credentials", func(t *testing.T) {
		c := valid()
		c.APIKey = ""
		c.ServiceID = ""
		assert.NoError(t, c.ValidateOffline())
	})

	t.Run("Location error type", func(t *testing.T) {
		c := valid()
		c.Timezone = "Mars/Olympus"
		_, err := c.Location()
		var configErr *ConfigError
		require.True(t, errors.As(err, &configErr))
		assert.Equal(t, "timezone", configErr.Field)
	})
}

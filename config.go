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
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	// Snapmeter credentials and endpoint
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`

	// Identifiers of the billed service and its meter
	ServiceID string `yaml:"service_id"`
	MeterID   string `yaml:"meter_id"`

	// Date range, YYYY-MM-DD
	StartDate string `yaml:"start_date"`
	EndDate   string `yaml:"end_date"`

	// Timezone used for month and hour-of-day bucketing (IANA name or "Local")
	Timezone string `yaml:"timezone"`

	// Raw response cache, disabled when CachePath is empty
	CachePath       string `yaml:"cache_path"`
	CacheTTLMinutes int    `yaml:"cache_ttl_minutes"`

	// Output
	OutputDir  string      `yaml:"output_dir"`
	ListenAddr string      `yaml:"listen_addr"`
	Chart      ChartConfig `yaml:"chart"`

	// Logging
	LogFormat string `yaml:"log_format"`
	Debug     bool   `yaml:"debug"`
}

// ChartConfig holds the plot area size shared by both visualizations
type ChartConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	// Set defaults
	end := time.Now()
	config := &Config{
		BaseURL:         SnapmeterAPIBase,
		StartDate:       end.AddDate(0, -DefaultHistoryMonths, 0).Format(DateLayout),
		EndDate:         end.Format(DateLayout),
		Timezone:        "Local",
		CacheTTLMinutes: 60,
		OutputDir:       ".",
		ListenAddr:      ":8080",
		LogFormat:       "text",
		Chart: ChartConfig{
			Width:  DefaultChartWidth,
			Height: DefaultChartHeight,
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		} else if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Apply environment variable overrides
	config.applyEnvironmentVariables()

	return config, nil
}

// SaveConfig writes the configuration back to a YAML file
func SaveConfig(path string, config *Config) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// applyEnvironmentVariables overrides config with environment variables
func (c *Config) applyEnvironmentVariables() {
	if val := os.Getenv("SNAPMETER_API_KEY"); val != "" {
		c.APIKey = val
	}
	if val := os.Getenv("SNAPMETER_BASE_URL"); val != "" {
		c.BaseURL = val
	}
	if val := os.Getenv("SNAPMETER_SERVICE_ID"); val != "" {
		c.ServiceID = val
	}
	if val := os.Getenv("SNAPMETER_METER_ID"); val != "" {
		c.MeterID = val
	}
	if val := os.Getenv("SNAPMETER_START_DATE"); val != "" {
		c.StartDate = val
	}
	if val := os.Getenv("SNAPMETER_END_DATE"); val != "" {
		c.EndDate = val
	}
	if val := os.Getenv("SNAPMETER_TIMEZONE"); val != "" {
		c.Timezone = val
	}
	if val := os.Getenv("SNAPMETER_CACHE_PATH"); val != "" {
		c.CachePath = val
	}
	if val := os.Getenv("SNAPMETER_CACHE_TTL_MINUTES"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			c.CacheTTLMinutes = n
		}
	}
	if val := os.Getenv("SNAPMETER_DEBUG"); val == "true" || val == "1" {
		c.Debug = true
	}
}

// Validate checks if the configuration is valid for fetching from the API
func (c *Config) Validate() error {
	return c.validate(true)
}

// ValidateOffline checks the configuration for replaying a saved snapshot
func (c *Config) ValidateOffline() error {
	return c.validate(false)
}

func (c *Config) validate(online bool) error {
	var errors []string

	if online && c.APIKey == "" {
		errors = append(errors, "api_key is required")
	}
	if online && c.ServiceID == "" && c.MeterID == "" {
		errors = append(errors, "at least one of service_id or meter_id is required")
	}
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		errors = append(errors, "base_url must be an http(s) URL")
	}

	start, startErr := time.Parse(DateLayout, c.StartDate)
	if startErr != nil {
		errors = append(errors, "start_date must be YYYY-MM-DD")
	}
	end, endErr := time.Parse(DateLayout, c.EndDate)
	if endErr != nil {
		errors = append(errors, "end_date must be YYYY-MM-DD")
	}
	if startErr == nil && endErr == nil && !start.Before(end) {
		errors = append(errors, "start_date must be before end_date")
	}

	if _, err := c.Location(); err != nil {
		errors = append(errors, fmt.Sprintf("timezone %q is not a known location", c.Timezone))
	}

	if c.CacheTTLMinutes < 0 {
		errors = append(errors, "cache_ttl_minutes cannot be negative")
	}

	if c.Chart.Width < 100 || c.Chart.Height < 100 {
		errors = append(errors, "chart width and height must be at least 100 pixels")
	}

	if c.LogFormat != "text" && c.LogFormat != "json" {
		errors = append(errors, "log_format must be text or json")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// Location resolves the configured timezone
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, &ConfigError{Field: "timezone", Message: err.Error()}
	}
	return loc, nil
}

// CacheTTL returns the raw response cache lifetime
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLMinutes) * time.Minute
}

// NewLoggerFromConfig builds the logger selected by log_format
func NewLoggerFromConfig(c *Config) *Logger {
	if c.LogFormat == "json" {
		return NewJSONLogger(c.Debug)
	}
	return NewLogger(c.Debug)
}

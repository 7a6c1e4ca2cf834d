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
	"fmt"
)

// NetworkError represents a failed request or a non-success response
type NetworkError struct {
	StatusCode int
	Endpoint   string
	Message    string
	Err        error
}

func (e *NetworkError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("network error at %s (status %d): %s: %v", e.Endpoint, e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("network error at %s (status %d): %s", e.Endpoint, e.StatusCode, e.Message)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if a later attempt could succeed
func (e *NetworkError) IsRetryable() bool {
	return isRetryableStatus(e.StatusCode)
}

// isRetryable reports whether err wraps a NetworkError that a later refresh could recover from
func isRetryable(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr) && netErr.IsRetryable()
}

func isRetryableStatus(statusCode int) bool {
	switch statusCode {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

// ShapeError represents a response whose JSON does not match the expected layout
type ShapeError struct {
	Dataset string
	Field   string
	Message string
	Err     error
}

func (e *ShapeError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("unexpected %s response shape at %s: %s", e.Dataset, e.Field, e.Message)
	}
	return fmt.Sprintf("unexpected %s response shape: %s", e.Dataset, e.Message)
}

func (e *ShapeError) Unwrap() error {
	return e.Err
}

// DataEmptyError represents a response that parsed cleanly but held no records
type DataEmptyError struct {
	Dataset string
}

func (e *DataEmptyError) Error() string {
	return fmt.Sprintf("data error for %s: no records after parsing", e.Dataset)
}

// ValidationError represents a configuration or input validation error
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("validation error for %s (%s): %s", e.Field, e.Value, e.Message)
	}
	return fmt.Sprintf("validation error for %s: %s", e.Field, e.Message)
}

// StorageError represents a storage operation error
type StorageError struct {
	Operation string
	Path      string
	Err       error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error during %s at %s: %v", e.Operation, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error for %s: %s", e.Field, e.Message)
}

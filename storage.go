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
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// Snapshot is a saved pair of raw API responses that can be re-rendered offline
type Snapshot struct {
	GeneratedAt time.Time         `json:"generated_at"`
	Bills       *BillsResponse    `json:"bills,omitempty"`
	Readings    *ReadingsResponse `json:"readings,omitempty"`
}

// Storage writes rendered artifacts into the output directory
type Storage struct {
	basePath string
	logger   *Logger
}

// NewStorage creates the output directory if needed
func NewStorage(basePath string, logger *Logger) (*Storage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, &StorageError{
			Operation: "create_directory",
			Path:      basePath,
			Err:       err,
		}
	}

	logger.Debug("Storage initialized", "path", basePath)

	return &Storage{
		basePath: basePath,
		logger:   logger.WithComponent("storage"),
	}, nil
}

// Path returns the location of an artifact
func (s *Storage) Path(name string) string {
	return filepath.Join(s.basePath, name)
}

// WriteArtifact renders into a temporary file and renames it into place
func (s *Storage) WriteArtifact(name string, render func(w io.Writer) error) (string, error) {
	path := s.Path(name)
	s.logger.LogStorageOperation("write_artifact", path)

	tmp, err := os.CreateTemp(s.basePath, "."+name+".*")
	if err != nil {
		return "", &StorageError{Operation: "create_file", Path: path, Err: err}
	}
	defer os.Remove(tmp.Name())

	if err := render(tmp); err != nil {
		tmp.Close()
		return "", &StorageError{Operation: "render", Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return "", &StorageError{Operation: "close_file", Path: path, Err: err}
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", &StorageError{Operation: "rename_file", Path: path, Err: err}
	}

	return path, nil
}

// WriteBytes stores a pre-rendered artifact
func (s *Storage) WriteBytes(name string, data []byte) (string, error) {
	return s.WriteArtifact(name, func(w io.Writer) error {
		_, err := io.Copy(w, bytes.NewReader(data))
		return err
	})
}

// SaveSnapshot stores raw responses as indented JSON
func (s *Storage) SaveSnapshot(name string, snapshot *Snapshot) (string, error) {
	return s.WriteArtifact(name, func(w io.Writer) error {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(snapshot)
	})
}

// LoadSnapshot reads a snapshot written by SaveSnapshot
func LoadSnapshot(path string) (*Snapshot, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &StorageError{Operation: "open_file", Path: path, Err: err}
	}
	defer file.Close()

	var snapshot Snapshot
	if err := json.NewDecoder(file).Decode(&snapshot); err != nil {
		return nil, &StorageError{Operation: "decode_json", Path: path, Err: err}
	}
	return &snapshot, nil
}

// ListArtifacts lists the files in the output directory
func (s *Storage) ListArtifacts() ([]string, error) {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, &StorageError{
			Operation: "list_directory",
			Path:      s.basePath,
			Err:       err,
		}
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

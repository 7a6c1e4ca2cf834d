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
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsNewerVersion(t *testing.T) {
	tests := []struct {
		latest, current string
		want            bool
	}{
		{"v1.2.0", "v1.1.9", true},
		{"v1.10.0", "v1.9.0", true},
		{"v1.2.0", "v1.2.0", false},
		{"v1.2.0", "v1.3.0", false},
		{"v2.0.0", "v1.99.99", true},
		{"v1.2.1", "v1.2.1-rc1", false},
		{"v1.2.0.1", "v1.2.0", true},
	}
	for _, tt := range tests {
		t.Run(tt.latest+"_vs_"+tt.current, func(t *testing.T) {
			assert.Equal(t, tt.want, isNewerVersion(tt.latest, tt.current))
		})
	}
}

func TestLatestRelease(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"tag_name":"v1.4.0","html_url":"https://example.com/r","name":"1.4.0"}`))
	}))
	defer server.Close()

	original := releaseURL
	releaseURL = server.URL
	t.Cleanup(func() { releaseURL = original })

	release, ok := latestRelease("v1.3.2", NewNopLogger())
	require.True(t, ok)
	assert.Equal(t, "v1.4.0", release.TagName)

	_, ok = latestRelease("v1.4.0", NewNopLogger())
	assert.False(t, ok)

	_, ok = latestRelease("dev", NewNopLogger())
	assert.False(t, ok)
}

func TestGetUserAgent(t *testing.T) {
	assert.Contains(t, GetUserAgent(), "matthewgall/meterviz ")
}

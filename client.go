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
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// SnapmeterClient handles communication with the Snapmeter public API
type SnapmeterClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *Logger

	// Rate limiting
	lastRequest  time.Time
	requestMutex sync.Mutex
}

// NewSnapmeterClient creates a new Snapmeter API client
func NewSnapmeterClient(baseURL, apiKey string, logger *Logger) *SnapmeterClient {
	return &SnapmeterClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger.WithComponent("client"),
	}
}

// FetchBills fetches the bills of a service between two dates
func (c *SnapmeterClient) FetchBills(ctx context.Context, serviceID string, start, end time.Time) (*BillsResponse, error) {
	endpoint := c.endpoint("services", serviceID, "bills", start, end)

	var resp BillsResponse
	if err := c.get(ctx, endpoint, DatasetBilling, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FetchReadings fetches the interval readings of a meter between two dates
func (c *SnapmeterClient) FetchReadings(ctx context.Context, meterID string, start, end time.Time) (*ReadingsResponse, error) {
	endpoint := c.endpoint("meters", meterID, "readings", start, end)

	var resp ReadingsResponse
	if err := c.get(ctx, endpoint, DatasetReadings, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *SnapmeterClient) endpoint(collection, id, resource string, start, end time.Time) string {
	query := url.Values{}
	query.Set("start", start.Format(DateLayout))
	query.Set("end", end.Format(DateLayout))
	return fmt.Sprintf("%s/%s/%s/%s?%s", c.baseURL, collection, url.PathEscape(id), resource, query.Encode())
}

// get performs an authenticated GET and decodes the JSON body into result
func (c *SnapmeterClient) get(ctx context.Context, endpoint, dataset string, result interface{}) error {
	// Rate limiting: minimum 100ms between requests
	c.requestMutex.Lock()
	if elapsed := time.Since(c.lastRequest); elapsed < 100*time.Millisecond {
		time.Sleep(100*time.Millisecond - elapsed)
	}
	c.lastRequest = time.Now()
	c.requestMutex.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", GetUserAgent())

	c.logger.LogAPIRequest(http.MethodGet, endpoint)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{
			Endpoint: endpoint,
			Message:  fmt.Sprintf("failed to fetch %s", dataset),
			Err:      err,
		}
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{
			StatusCode: resp.StatusCode,
			Endpoint:   endpoint,
			Message:    "failed to read response body",
			Err:        err,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.LogAPIError(endpoint, resp.StatusCode, fmt.Errorf("%s", string(bodyBytes)))
		return &NetworkError{
			StatusCode: resp.StatusCode,
			Endpoint:   endpoint,
			Message:    strings.TrimSpace(string(bodyBytes)),
		}
	}

	if err := json.Unmarshal(bodyBytes, result); err != nil {
		return &ShapeError{
			Dataset: dataset,
			Message: "response is not valid JSON",
			Err:     err,
		}
	}

	return nil
}

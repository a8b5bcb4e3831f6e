// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package drive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/taibuivan/yomira-drive/pkg/pagination"
)

const (
	defaultBaseURL = "https://www.googleapis.com/drive/v3"
	defaultTimeout = 30 * time.Second

	// maxErrorBody bounds how much of an error response is kept for logs.
	maxErrorBody = 512
)

// Options configures a [Client].
type Options struct {
	BaseURL  string
	APIKey   string
	PageSize int
	Timeout  time.Duration
	// Transport overrides the HTTP transport. It is wrapped for tracing.
	Transport http.RoundTripper
}

// Client talks to the backend's files endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	pageSize   int
	timeout    time.Duration
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a client. Zero option values fall back to defaults.
func NewClient(opts Options, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	transport := opts.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	return &Client{
		baseURL:  baseURL,
		apiKey:   opts.APIKey,
		pageSize: pagination.ClampLimit(opts.PageSize),
		timeout:  timeout,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(transport),
		},
		logger: logger.With(slog.String("component", "drive")),
	}
}

// PageSize reports the number of entries requested per page.
func (c *Client) PageSize() int {
	return c.pageSize
}

// # Listing

/*
List fetches one page of files.

Parameters:
  - ctx: context.Context (cancels the in-flight request)
  - request: ListRequest

Returns:
  - *ListResponse: Files of the page and the continuation token
  - error: *StatusError, *NetworkError, or a decode failure
*/
func (c *Client) List(ctx context.Context, request ListRequest) (*ListResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := url.Values{}
	params.Set("q", request.Query)
	params.Set("fields", withNextPageToken(request.Fields))
	params.Set("orderBy", OrderNatural)
	params.Set("pageSize", strconv.Itoa(c.pageSize))
	params.Set("key", c.apiKey)
	if request.PageToken != "" {
		params.Set("pageToken", request.PageToken)
	}

	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/files?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("drive: build request: %w", err)
	}
	httpRequest.Header.Set("Accept", "application/json")

	startTime := time.Now()
	response, err := c.httpClient.Do(httpRequest)
	if err != nil {
		return nil, newNetworkError(err)
	}
	defer response.Body.Close()

	if err := checkStatus(response); err != nil {
		c.logger.WarnContext(ctx, "drive_list_failed",
			slog.Int("status", response.StatusCode),
			slog.Bool("continuation", request.PageToken != ""),
		)
		return nil, err
	}

	var page ListResponse
	if err := json.NewDecoder(response.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("drive: decode listing: %w", err)
	}

	c.logger.DebugContext(ctx, "drive_list_ok",
		slog.Int("files", len(page.Files)),
		slog.Bool("has_more", page.NextPageToken != ""),
		slog.Int64("latency_ms", time.Since(startTime).Milliseconds()),
	)

	return &page, nil
}

// # Download

// DownloadURL returns the media URL of a file. It embeds the API key.
func (c *Client) DownloadURL(fileID string) string {
	return c.baseURL + "/files/" + url.PathEscape(fileID) + "?alt=media&key=" + url.QueryEscape(c.apiKey)
}

// Document is an open media stream.
type Document struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
}

// Open starts downloading a file's media. The caller must close Body.
//
// No client-side deadline applies. Large documents stream for as long as ctx allows.
func (c *Client) Open(ctx context.Context, fileID string) (*Document, error) {
	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodGet, c.DownloadURL(fileID), nil)
	if err != nil {
		return nil, fmt.Errorf("drive: build request: %w", err)
	}

	response, err := c.httpClient.Do(httpRequest)
	if err != nil {
		return nil, newNetworkError(err)
	}

	if err := checkStatus(response); err != nil {
		response.Body.Close()
		return nil, err
	}

	return &Document{
		Body:          response.Body,
		ContentType:   response.Header.Get("Content-Type"),
		ContentLength: response.ContentLength,
	}, nil
}

// # Helpers

func withNextPageToken(fields string) string {
	if fields == "" {
		return "nextPageToken"
	}
	if strings.Contains(fields, "nextPageToken") {
		return fields
	}
	return fields + ",nextPageToken"
}

func checkStatus(response *http.Response) error {
	if response.StatusCode >= 200 && response.StatusCode < 300 {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(response.Body, maxErrorBody))
	return &StatusError{StatusCode: response.StatusCode, Body: string(body)}
}

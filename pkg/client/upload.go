package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/de-tools/ledger-atlas/pkg/models/api"
)

// GenericFailure is the fallback error text for failed responses that carry
// no detail of their own.
const GenericFailure = "Upload failed"

// Client talks to the ledger-atlas HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Upload submits one CSV to POST /upload-csv as the multipart "file" field.
// Failed responses surface their detail text as the error; responses with no
// usable detail map to the generic failure message.
func (c *Client) Upload(ctx context.Context, fileName string, content io.Reader) (*api.AnalysisResult, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload-csv", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr api.Error
		if err := json.Unmarshal(raw, &apiErr); err == nil && apiErr.Detail != "" {
			return nil, errors.New(apiErr.Detail)
		}
		return nil, errors.New(GenericFailure)
	}

	var result api.AnalysisResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decode analysis result: %w", err)
	}
	return &result, nil
}

// History fetches stored analyses, newest first.
func (c *Client) History(ctx context.Context, limit int) ([]api.AnalysisRecord, error) {
	url := c.baseURL + "/api/v1/analyses"
	if limit > 0 {
		url = fmt.Sprintf("%s?limit=%d", url, limit)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("history request failed with status %d", resp.StatusCode)
	}

	var records []api.AnalysisRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	return records, nil
}

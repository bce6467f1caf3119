// Package fetcher retrieves one page of a remote datatable.
package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/guttosm/margintrend/internal/domain/models"
	"github.com/guttosm/margintrend/internal/logger"
)

const (
	DefaultBaseURL = "https://data.nasdaq.com/api/v3/datatables/MER/F1"
	DefaultPerPage = 10000
	DefaultTimeout = 30 * time.Second

	// maxErrorBody bounds how much of a failed response is kept in the error.
	maxErrorBody = 512
)

// Config holds configuration for the datatable client.
type Config struct {
	BaseURL string        // Endpoint of the datatable
	APIKey  string        // Sent as the api_key query parameter
	PerPage int           // Sent as qopts.per_page
	Timeout time.Duration // HTTP request timeout, used by NewHTTPClient
}

// Client issues the single datatable request.
type Client struct {
	cfg    Config
	client *http.Client
}

// New returns a Client. A zero BaseURL falls back to DefaultBaseURL; a nil
// http.Client is replaced by NewHTTPClient(cfg.Timeout). The API key and page
// size are validated by Fetch, not here.
func New(cfg Config, client *http.Client) *Client {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if client == nil {
		client = NewHTTPClient(cfg.Timeout)
	}
	return &Client{cfg: cfg, client: client}
}

// NewHTTPClient creates an http.Client for external API calls.
//
// http.DefaultClient has no timeout, so the transport and overall timeout are set explicitly.
func NewHTTPClient(timeout time.Duration) *http.Client {
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &http.Client{Timeout: timeout, Transport: t}
}

// datatableResponse mirrors the JSON document returned by the API:
//
//	{"datatable": {"columns": [{"name": ...}], "data": [[...]]}, "meta": {"next_cursor_id": ...}}
type datatableResponse struct {
	Datatable *struct {
		Columns []models.Column    `json:"columns"`
		Data    []models.RawRecord `json:"data"`
	} `json:"datatable"`
	Meta struct {
		NextCursorID *string `json:"next_cursor_id"`
	} `json:"meta"`
}

// Fetch performs one GET against the datatable endpoint and returns the parsed body.
//
// Behavior:
//   - Rejects an empty API key or non-positive page size without touching the network.
//   - Any transport failure, non-2xx status or malformed body becomes a *FetchError.
//   - No retry: a single attempt, fail fast.
func (c *Client) Fetch(ctx context.Context) (*models.RawDataset, error) {
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return nil, &FetchError{Err: ErrMissingAPIKey}
	}
	if c.cfg.PerPage <= 0 {
		return nil, &FetchError{Err: ErrInvalidPageSize}
	}

	q := url.Values{}
	q.Set("api_key", c.cfg.APIKey)
	q.Set("qopts.per_page", strconv.Itoa(c.cfg.PerPage))

	u, err := url.Parse(c.cfg.BaseURL)
	if err != nil {
		return nil, &FetchError{Err: fmt.Errorf("parse base url: %w", err)}
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &FetchError{Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	res, err := c.client.Do(req)
	if err != nil {
		return nil, &FetchError{Err: redact(err, c.cfg.APIKey)}
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			logger.L().Warn().Err(err).Msg("failed to close response body")
		}
	}()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		return nil, &FetchError{
			StatusCode: res.StatusCode,
			Err:        fmt.Errorf("unexpected status %q: %s", res.Status, strings.TrimSpace(string(snippet))),
		}
	}

	var body datatableResponse
	dec := json.NewDecoder(res.Body)
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		return nil, &FetchError{Err: fmt.Errorf("%w: %v", ErrMalformedBody, err)}
	}
	if body.Datatable == nil {
		return nil, &FetchError{Err: fmt.Errorf("%w: missing datatable object", ErrMalformedBody)}
	}

	ds := &models.RawDataset{
		Columns: body.Datatable.Columns,
		Data:    body.Datatable.Data,
	}
	if body.Meta.NextCursorID != nil {
		ds.NextCursorID = *body.Meta.NextCursorID
	}

	logger.L().Info().
		Int("records", len(ds.Data)).
		Int("columns", len(ds.Columns)).
		Int("per_page", c.cfg.PerPage).
		Dur("elapsed", time.Since(start)).
		Msg("datatable fetched")
	if ds.NextCursorID != "" {
		logger.L().Warn().
			Str("next_cursor_id", ds.NextCursorID).
			Msg("datatable has more pages; only the first page is used")
	}

	return ds, nil
}

// redact strips the API key from transport errors, which embed the request URL.
func redact(err error, key string) error {
	param := "api_key=" + url.QueryEscape(key)
	msg := err.Error()
	if !strings.Contains(msg, param) {
		return err
	}
	return &redactedError{msg: strings.ReplaceAll(msg, param, "api_key=REDACTED"), err: err}
}

type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string { return e.msg }
func (e *redactedError) Unwrap() error { return e.err }

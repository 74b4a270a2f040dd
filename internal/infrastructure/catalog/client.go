// Package catalog is the HTTP client for the Catalog API, the Django
// REST service that owns products, catalogs, transactions, users,
// restock reminders and AI logs. The agent never touches that state
// directly; every tool goes through this client.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	pkgerrors "github.com/dharti/dharti/bridge/pkg/errors"
	"go.uber.org/zap"
)

// Resource path segments under /api/. Trailing slashes matter to
// Django's router.
const (
	ResourceProducts         = "products"
	ResourceCatalogs         = "catalogs"
	ResourceCatalogProducts  = "catalog-products"
	ResourceTransactions     = "transactions"
	ResourceUsers            = "users"
	ResourceRestockReminders = "restock-reminders"
	ResourceAILogs           = "ai-logs"
)

// Client performs remote operations against the Catalog API. Calls are
// single-shot: there is no retry here, because mutations are not
// idempotent and a blind retry can double-create. The reasoning loop
// surfaces failures to the model instead.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewClient creates a Catalog API client. baseURL includes the /api
// prefix, e.g. "http://localhost:8000/api".
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger.With(zap.String("component", "catalog-client")),
	}
}

// List retrieves all records of a resource.
func (c *Client) List(ctx context.Context, resource string) (interface{}, error) {
	return c.do(ctx, http.MethodGet, c.collectionPath(resource), nil)
}

// Get retrieves one record by ID.
func (c *Client) Get(ctx context.Context, resource string, id interface{}) (interface{}, error) {
	return c.do(ctx, http.MethodGet, c.recordPath(resource, id), nil)
}

// Create adds a record.
func (c *Client) Create(ctx context.Context, resource string, payload map[string]interface{}) (interface{}, error) {
	return c.do(ctx, http.MethodPost, c.collectionPath(resource), payload)
}

// Update replaces a record by ID.
func (c *Client) Update(ctx context.Context, resource string, id interface{}, payload map[string]interface{}) (interface{}, error) {
	return c.do(ctx, http.MethodPut, c.recordPath(resource, id), payload)
}

// Delete removes a record by ID. The API answers 204 with an empty
// body; callers get a synthetic confirmation object instead.
func (c *Client) Delete(ctx context.Context, resource string, id interface{}) (interface{}, error) {
	return c.do(ctx, http.MethodDelete, c.recordPath(resource, id), nil)
}

// Login calls the login bypass endpoint: a lookup by username, no
// password involved. The service answers {id} for a known name and
// {id: 1} otherwise. It lives outside the resource routes.
func (c *Client) Login(ctx context.Context, username string) (interface{}, error) {
	return c.do(ctx, http.MethodPost, c.baseURL+"/login/", map[string]interface{}{
		"username": username,
	})
}

func (c *Client) collectionPath(resource string) string {
	return fmt.Sprintf("%s/%s/", c.baseURL, resource)
}

func (c *Client) recordPath(resource string, id interface{}) string {
	return fmt.Sprintf("%s/%s/%s/", c.baseURL, resource, formatID(id))
}

// formatID renders an ID path segment. Models pass IDs as JSON numbers
// (float64) or strings; both must become "42", not "42.000000".
func formatID(id interface{}) string {
	switch v := id.(type) {
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%v", v)
	case int:
		return fmt.Sprintf("%d", v)
	case int64:
		return fmt.Sprintf("%d", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// do performs one HTTP exchange and classifies the outcome:
// network failure -> transport error, non-2xx -> remote operation
// error carrying status and body, 2xx -> decoded JSON body (or a
// confirmation object when the body is empty).
func (c *Client) do(ctx context.Context, method, url string, payload map[string]interface{}) (interface{}, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, pkgerrors.NewInternalError("encode request payload", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, pkgerrors.NewInternalError("build request", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("Catalog API unreachable",
			zap.String("method", method),
			zap.String("url", url),
			zap.Error(err),
		)
		return nil, pkgerrors.NewTransportError(
			fmt.Sprintf("%s %s: catalog service unreachable", method, url), err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, pkgerrors.NewTransportError("read catalog response", err)
	}

	c.logger.Debug("Catalog API call",
		zap.String("method", method),
		zap.String("url", url),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := fmt.Sprintf("%s %s returned %d: %s",
			method, url, resp.StatusCode, compactBody(respBody))
		return nil, pkgerrors.NewRemoteOperationError(msg, nil)
	}

	if len(bytes.TrimSpace(respBody)) == 0 {
		return map[string]interface{}{"deleted": true}, nil
	}

	var decoded interface{}
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return nil, pkgerrors.NewRemoteOperationError(
			fmt.Sprintf("%s %s: response is not valid JSON", method, url), err)
	}
	return decoded, nil
}

// compactBody trims an error body for messages; API errors are short
// DRF detail objects, but cap them anyway.
func compactBody(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 512 {
		s = s[:512] + "..."
	}
	if s == "" {
		s = "(empty body)"
	}
	return s
}

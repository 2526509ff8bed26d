// Package api is the device-side HTTP client for the records service.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/finlog-app/finlog/internal/dto"
	"github.com/finlog-app/finlog/internal/models"
	"github.com/finlog-app/finlog/internal/response"
)

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func New(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    http.DefaultClient,
	}
}

// NewWithHTTPClient allows injecting a transport (timeouts, test servers).
func NewWithHTTPClient(baseURL, token string, hc *http.Client) *Client {
	c := New(baseURL, token)
	c.http = hc
	return c
}

func (c *Client) List(ctx context.Context, filters dto.ListFilters) (dto.ListRecordsResponse, error) {
	q := url.Values{}
	if filters.Account != "" {
		q.Set("account", filters.Account)
	}
	if filters.DateFrom != "" {
		q.Set("dateFrom", filters.DateFrom)
	}
	if filters.DateTo != "" {
		q.Set("dateTo", filters.DateTo)
	}
	path := "/records"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out dto.ListRecordsResponse
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

func (c *Client) Create(ctx context.Context, rec models.Record) (dto.MutationResponse, error) {
	var out dto.MutationResponse
	err := c.do(ctx, http.MethodPost, "/records", rec, &out)
	return out, err
}

func (c *Client) Update(ctx context.Context, id string, rec models.Record) (dto.MutationResponse, error) {
	var out dto.MutationResponse
	err := c.do(ctx, http.MethodPut, "/records/"+url.PathEscape(id), rec, &out)
	return out, err
}

func (c *Client) Delete(ctx context.Context, id string) (dto.MutationResponse, error) {
	var out dto.MutationResponse
	err := c.do(ctx, http.MethodDelete, "/records/"+url.PathEscape(id), nil, &out)
	return out, err
}

func (c *Client) DeleteAll(ctx context.Context) (dto.MutationResponse, error) {
	var out dto.MutationResponse
	err := c.do(ctx, http.MethodDelete, "/records", nil, &out)
	return out, err
}

func (c *Client) CreateBatch(ctx context.Context, records []models.Record) (dto.BatchResponse, error) {
	var out dto.BatchResponse
	err := c.do(ctx, http.MethodPost, "/records/batch", records, &out)
	return out, err
}

func (c *Client) ReplaceAll(ctx context.Context, records []models.Record) (dto.BatchResponse, error) {
	var out dto.BatchResponse
	err := c.do(ctx, http.MethodPut, "/records/replace", records, &out)
	return out, err
}

// APIError is a non-2xx response decoded from the uniform error envelope.
type APIError struct {
	Status            int
	Code              string
	Message           string
	RetryAfterSeconds int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d %s: %s", e.Status, e.Code, e.Message)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var env response.ErrorEnvelope
		if decErr := json.NewDecoder(resp.Body).Decode(&env); decErr != nil {
			return &APIError{Status: resp.StatusCode, Code: "UNKNOWN", Message: "undecodable error body"}
		}
		return &APIError{
			Status:            resp.StatusCode,
			Code:              env.Error.Code,
			Message:           env.Error.Message,
			RetryAfterSeconds: env.RetryAfterSeconds,
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

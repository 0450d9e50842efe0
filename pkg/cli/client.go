package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client is a thin HTTP client for the agent's local API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// apiResponse mirrors the agent's response envelope.
type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

func (c *Client) do(method, path string, body, result any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+"/api/v1"+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("agent unreachable at %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	var envelope apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("unexpected response from agent: %w", err)
	}
	if !envelope.Success {
		if envelope.Error != "" {
			return fmt.Errorf("%s", envelope.Error)
		}
		return fmt.Errorf("agent returned HTTP %d", resp.StatusCode)
	}

	if result != nil && envelope.Data != nil {
		return json.Unmarshal(envelope.Data, result)
	}
	return nil
}

func (c *Client) Get(path string, result any) error {
	return c.do(http.MethodGet, path, nil, result)
}

func (c *Client) Post(path string, body, result any) error {
	return c.do(http.MethodPost, path, body, result)
}

func (c *Client) Put(path string, body, result any) error {
	return c.do(http.MethodPut, path, body, result)
}

func (c *Client) Delete(path string, result any) error {
	return c.do(http.MethodDelete, path, nil, result)
}

package endpoints

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Client struct {
	Doer         Doer
	BaseURL      string
	ApplyHeaders func(*http.Request)
}

func New(doer Doer, baseURL string, applyHeaders func(*http.Request)) *Client {
	return &Client{
		Doer:         doer,
		BaseURL:      strings.TrimRight(baseURL, "/"),
		ApplyHeaders: applyHeaders,
	}
}

func (c *Client) newReq(ctx context.Context, method, path string, q url.Values) (*http.Request, error) {
	if c.BaseURL == "" {
		return nil, fmt.Errorf("BaseURL is empty")
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u := c.BaseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return nil, err
	}
	if c.ApplyHeaders != nil {
		c.ApplyHeaders(req)
	}
	return req, nil
}

// getJSON performs a GET and decodes a 200 body into out. Any other status
// is returned as *APIError.
func (c *Client) getJSON(ctx context.Context, path string, q url.Values, limit int64, out any) error {
	req, err := c.newReq(ctx, http.MethodGet, path, q)
	if err != nil {
		return err
	}

	resp, err := c.Doer.Do(req)
	if err != nil {
		return err
	}

	b, err := readLimited(resp, limit)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		return ParseAPIError(resp.StatusCode, []byte(strings.TrimSpace(string(b[:min(len(b), 4096)]))))
	}

	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("%s: bad json body=%s: %w", path, string(b[:min(len(b), 256)]), err)
	}
	return nil
}

func readLimited(resp *http.Response, limit int64) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(io.LimitReader(resp.Body, limit))
}

// Package remote holds the HTTP clients for the collaborator backend: brand
// configuration, chat, order placement and listing, and training-file
// management. Response shapes are decided here, once, into typed results.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Client is the shared transport for all endpoint clients.
type Client struct {
	BaseURL      string
	RestaurantID string
	HTTP         *http.Client

	// Bearer token for the authenticated surfaces (order listing, training
	// files). Empty means unauthenticated requests.
	Token string
}

func NewClient(baseURL, restaurantID string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		BaseURL:      strings.TrimRight(baseURL, "/"),
		RestaurantID: restaurantID,
		HTTP:         &http.Client{Timeout: timeout},
	}
}

// endpoint builds a full URL, attaching the restaurant_id query param when
// the client is bound to one.
func (c *Client) endpoint(path string) string {
	u := c.BaseURL + path
	if c.RestaurantID != "" {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		u += sep + "restaurant_id=" + url.QueryEscape(c.RestaurantID)
	}
	return u
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	return req, nil
}

// doJSON executes req and decodes a 2xx body into out (out may be nil).
// Non-2xx responses become errors carrying any server-supplied error text.
func (c *Client) doJSON(req *http.Request, out any) error {
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", req.Method, req.URL.Path)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.Errorf("%s %s: status %d%s",
			req.Method, req.URL.Path, resp.StatusCode, serverError(resp.Body))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "decode %s response", req.URL.Path)
	}
	return nil
}

func serverError(body io.Reader) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(body).Decode(&payload); err == nil && payload.Error != "" {
		return ": " + payload.Error
	}
	return ""
}

func jsonBody(v any) (io.Reader, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(b), nil
}

// Login obtains a bearer token for the authenticated surfaces and stores it
// on the client.
func (c *Client) Login(ctx context.Context, email, password string) error {
	body, err := jsonBody(map[string]string{"email": email, "password": password})
	if err != nil {
		return err
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/api/login", body)
	if err != nil {
		return err
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := c.doJSON(req, &out); err != nil {
		return errors.Wrap(err, "login")
	}
	if out.Token == "" {
		return fmt.Errorf("login: empty token")
	}
	c.Token = out.Token
	return nil
}

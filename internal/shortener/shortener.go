package shortener

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	defaultShortenTimeout = 10 * time.Second
	shortenEndpoint       = "/v4/shorten"
)

// Client turns absolute URLs into short links through a Bitly-style API.
// Callers treat shortening as best-effort and fall back to the long URL.
type Client struct {
	client *resty.Client
	token  string
}

func NewClient(baseURL, token string) (*Client, error) {
	client := resty.New()
	client.SetTimeout(defaultShortenTimeout)
	client.SetRetryCount(0)

	return NewClientWithClient(baseURL, token, client)
}

func NewClientWithClient(baseURL, token string, client *resty.Client) (*Client, error) {
	trimmedBaseURL := strings.TrimSpace(baseURL)
	if trimmedBaseURL == "" {
		return nil, fmt.Errorf("shortener base url is required")
	}
	if _, err := url.ParseRequestURI(trimmedBaseURL); err != nil {
		return nil, fmt.Errorf("invalid shortener base url: %w", err)
	}
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("shortener token is required")
	}
	if client == nil {
		return nil, fmt.Errorf("resty client is required")
	}

	if client.GetClient().Timeout == 0 {
		client.SetTimeout(defaultShortenTimeout)
	}
	client.SetBaseURL(trimmedBaseURL)
	client.SetRetryCount(0)

	return &Client{
		client: client,
		token:  token,
	}, nil
}

type shortenRequest struct {
	LongURL string `json:"long_url"`
}

type shortenResponse struct {
	Link string `json:"link"`
}

func (c *Client) Shorten(ctx context.Context, longURL string) (string, error) {
	if c == nil || c.client == nil {
		return "", fmt.Errorf("shortener client is not initialized")
	}
	if strings.TrimSpace(longURL) == "" {
		return "", fmt.Errorf("url to shorten is required")
	}

	var result shortenResponse
	response, err := c.client.R().
		SetContext(ctx).
		SetAuthToken(c.token).
		SetHeader("Content-Type", "application/json").
		SetBody(shortenRequest{LongURL: longURL}).
		SetResult(&result).
		Post(shortenEndpoint)
	if err != nil {
		return "", fmt.Errorf("shorten request failed: %w", err)
	}

	statusCode := response.StatusCode()
	if statusCode < http.StatusOK || statusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("shortener returned status %d", statusCode)
	}
	if strings.TrimSpace(result.Link) == "" {
		return "", fmt.Errorf("shortener returned empty link")
	}

	return result.Link, nil
}

package sms

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultSendTimeout = 10 * time.Second

// Receipt carries provider delivery metadata for a sent message.
type Receipt struct {
	SID    string
	Status string
}

// TwilioClient sends text messages through the Twilio Messages API.
type TwilioClient struct {
	client     *resty.Client
	accountSID string
	authToken  string
	from       string
}

func NewTwilioClient(baseURL, accountSID, authToken, from string) (*TwilioClient, error) {
	client := resty.New()
	client.SetTimeout(defaultSendTimeout)
	client.SetRetryCount(0)

	return NewTwilioClientWithClient(baseURL, accountSID, authToken, from, client)
}

func NewTwilioClientWithClient(baseURL, accountSID, authToken, from string, client *resty.Client) (*TwilioClient, error) {
	trimmedBaseURL := strings.TrimSpace(baseURL)
	if trimmedBaseURL == "" {
		return nil, fmt.Errorf("sms base url is required")
	}
	if _, err := url.ParseRequestURI(trimmedBaseURL); err != nil {
		return nil, fmt.Errorf("invalid sms base url: %w", err)
	}
	if strings.TrimSpace(accountSID) == "" {
		return nil, fmt.Errorf("sms account sid is required")
	}
	if strings.TrimSpace(authToken) == "" {
		return nil, fmt.Errorf("sms auth token is required")
	}
	if strings.TrimSpace(from) == "" {
		return nil, fmt.Errorf("sms sender number is required")
	}
	if client == nil {
		return nil, fmt.Errorf("resty client is required")
	}

	if client.GetClient().Timeout == 0 {
		client.SetTimeout(defaultSendTimeout)
	}
	client.SetBaseURL(trimmedBaseURL)
	client.SetRetryCount(0)

	return &TwilioClient{
		client:     client,
		accountSID: accountSID,
		authToken:  authToken,
		from:       from,
	}, nil
}

type messageResponse struct {
	SID    string `json:"sid"`
	Status string `json:"status"`
}

func (c *TwilioClient) SendMessage(ctx context.Context, to, body string) (*Receipt, error) {
	if c == nil || c.client == nil {
		return nil, fmt.Errorf("sms client is not initialized")
	}
	if strings.TrimSpace(to) == "" {
		return nil, fmt.Errorf("recipient phone number is required")
	}
	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("message body is required")
	}

	var result messageResponse
	response, err := c.client.R().
		SetContext(ctx).
		SetBasicAuth(c.accountSID, c.authToken).
		SetFormData(map[string]string{
			"To":   to,
			"From": c.from,
			"Body": body,
		}).
		SetResult(&result).
		Post(fmt.Sprintf("/2010-04-01/Accounts/%s/Messages.json", c.accountSID))
	if err != nil {
		return nil, fmt.Errorf("sms send request failed: %w", err)
	}

	statusCode := response.StatusCode()
	if statusCode < http.StatusOK || statusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("sms provider returned status %d: %s", statusCode, strings.TrimSpace(response.String()))
	}

	return &Receipt{
		SID:    result.SID,
		Status: result.Status,
	}, nil
}

package internal

import (
	"context"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// WebhookClient posts to the automation webhooks that serve dashboard data
type WebhookClient struct {
	client *resty.Client
}

// NewWebhookClient creates a client with the given per-request timeout.
// Request failures and 5xx responses are retried up to retries times.
func NewWebhookClient(timeout time.Duration, retries int) *WebhookClient {
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(retries).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second).
		SetHeader("Accept", "application/json").
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || (r != nil && r.StatusCode() >= http.StatusInternalServerError)
		})
	return &WebhookClient{client: client}
}

// FetchBody posts the vertical name to endpoint and returns the raw response body
func (c *WebhookClient) FetchBody(ctx context.Context, endpoint, vertical string) ([]byte, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(map[string]string{"vertical": vertical}).
		Post(endpoint)
	if err != nil {
		return nil, &TransportError{Kind: TransportRequest, Endpoint: endpoint, Err: err}
	}

	if !resp.IsSuccess() {
		return nil, &TransportError{Kind: TransportStatus, Endpoint: endpoint, Status: resp.StatusCode()}
	}

	LogDebug("Fetched %d bytes from %s in %s", len(resp.Body()), endpoint, resp.Time())
	return resp.Body(), nil
}

// Fetch posts to endpoint and decodes the JSON payload
func (c *WebhookClient) Fetch(ctx context.Context, endpoint, vertical string) (any, error) {
	body, err := c.FetchBody(ctx, endpoint, vertical)
	if err != nil {
		return nil, err
	}
	return DecodePayload(body, endpoint)
}

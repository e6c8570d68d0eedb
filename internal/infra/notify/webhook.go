package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/niveshpath/advisory-backend/internal/infra/queue"
)

// WebhookClient posts lead events to the configured push-notification
// endpoint. Delivery semantics live on the consumer side; this client only
// reports transport-level failure.
type WebhookClient struct {
	client *resty.Client
	url    string
}

func NewWebhookClient(url string) *WebhookClient {
	return &WebhookClient{
		client: resty.New().
			SetTimeout(5 * time.Second).
			SetRetryCount(2).
			SetRetryWaitTime(500 * time.Millisecond),
		url: url,
	}
}

func (c *WebhookClient) NotifyLeadEvent(ctx context.Context, payload queue.LeadEventPayload) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(c.url)
	if err != nil {
		return fmt.Errorf("webhook post: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode())
	}
	return nil
}

// Package webhook delivers job postings to an arbitrary configured HTTP
// endpoint. Delivery is a single synchronous attempt with a boolean
// outcome: no retry, no signature, no queue.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// payload matches the wire contract of the downstream job board.
type payload struct {
	JobTitle       string `json:"job title"`
	JobDescription string `json:"job description"`
	Email          string `json:"email"`
}

type Client struct {
	endpoint string
	client   *http.Client
	logger   *zap.Logger
}

func NewClient(endpoint string, logger *zap.Logger) *Client {
	return &Client{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 15 * time.Second},
		logger:   logger.Named("job_webhook"),
	}
}

// PostJob sends the posting and reports success or failure. Any non-2xx
// response is a failure.
func (c *Client) PostJob(ctx context.Context, jobTitle, jobDescription, email string) error {
	if c.endpoint == "" {
		return fmt.Errorf("job posting endpoint not configured")
	}

	body, err := json.Marshal(payload{
		JobTitle:       jobTitle,
		JobDescription: jobDescription,
		Email:          email,
	})
	if err != nil {
		return fmt.Errorf("failed to encode job posting: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook delivery failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	c.logger.Info("job posting delivered",
		zap.String("endpoint", c.endpoint),
		zap.String("job_title", jobTitle),
	)
	return nil
}

package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultMaxWait      = 180 * time.Second
	defaultPollInterval = 4 * time.Second
)

// RemoteClient talks to an asynchronous text-extraction service: submit the
// PDF, get a job id, poll until the job settles. The service contract is
// deliberately tiny so any Textract-style backend can sit behind it.
//
//	POST {base}/jobs            body: application/pdf   -> {"job_id": "..."}
//	GET  {base}/jobs/{id}       -> {"status": "IN_PROGRESS"|"SUCCEEDED"|"FAILED", "text": "..."}
type RemoteClient struct {
	BaseURL string
	// MaxWait bounds the total polling time (default: 180s).
	MaxWait time.Duration
	// PollInterval is the delay between status checks (default: 4s).
	PollInterval time.Duration

	HTTPClient *http.Client
}

var _ TextExtractor = (*RemoteClient)(nil)

// NewRemoteClient creates a client with the default polling budget.
func NewRemoteClient(baseURL string) *RemoteClient {
	return &RemoteClient{
		BaseURL:      baseURL,
		MaxWait:      defaultMaxWait,
		PollInterval: defaultPollInterval,
		HTTPClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

type submitResponse struct {
	JobID string `json:"job_id"`
}

type jobStatus struct {
	Status string `json:"status"`
	Text   string `json:"text"`
	Error  string `json:"error"`
}

// ExtractText submits the PDF and polls until the job succeeds, fails, or
// the polling budget runs out.
func (c *RemoteClient) ExtractText(ctx context.Context, pdf []byte) (string, error) {
	jobID, err := c.submit(ctx, pdf)
	if err != nil {
		return "", err
	}

	maxWait := c.MaxWait
	if maxWait == 0 {
		maxWait = defaultMaxWait
	}
	interval := c.PollInterval
	if interval == 0 {
		interval = defaultPollInterval
	}

	deadline := time.Now().Add(maxWait)
	for {
		status, err := c.poll(ctx, jobID)
		if err != nil {
			return "", err
		}
		switch status.Status {
		case "SUCCEEDED":
			return status.Text, nil
		case "FAILED":
			return "", fmt.Errorf("%w: job %s: %s", ErrJobFailed, jobID, status.Error)
		}

		if time.Now().After(deadline) {
			return "", fmt.Errorf("%w: job %s still %s after %v", ErrTimedOut, jobID, status.Status, maxWait)
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(interval):
		}
	}
}

func (c *RemoteClient) submit(ctx context.Context, pdf []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+"/jobs", bytes.NewReader(pdf))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/pdf")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: submit: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("%w: submit returned %d: %s", ErrJobFailed, resp.StatusCode, body)
	}

	var sub submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&sub); err != nil {
		return "", fmt.Errorf("%w: decode submit response: %v", ErrJobFailed, err)
	}
	if sub.JobID == "" {
		return "", fmt.Errorf("%w: submit response missing job_id", ErrJobFailed)
	}
	return sub.JobID, nil
}

func (c *RemoteClient) poll(ctx context.Context, jobID string) (jobStatus, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.BaseURL+"/jobs/"+jobID, nil)
	if err != nil {
		return jobStatus{}, err
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return jobStatus{}, fmt.Errorf("%w: poll: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return jobStatus{}, fmt.Errorf("%w: poll returned %d", ErrJobFailed, resp.StatusCode)
	}

	var status jobStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return jobStatus{}, fmt.Errorf("%w: decode poll response: %v", ErrJobFailed, err)
	}
	return status, nil
}

func (c *RemoteClient) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ananyateklu/second-brain-sub000/internal/model"
)

// TickTickClient talks to the TickTick open API. One attempt per call, no
// retries; the caller decides what a failure means for the sync pass.
type TickTickClient struct {
	BaseURL string
	Client  *http.Client
}

func NewTickTickClient(baseURL string) *TickTickClient {
	if baseURL == "" {
		baseURL = "https://api.ticktick.com"
	}
	return &TickTickClient{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 20 * time.Second},
	}
}

func (c *TickTickClient) doRequest(ctx context.Context, method, url, token string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	b, _ := io.ReadAll(res.Body)
	if res.StatusCode >= 400 {
		// Surface the provider's own message when the body parses.
		var apiErr model.TickTickErrorResponse
		if json.Unmarshal(b, &apiErr) == nil && apiErr.ErrorMessage != "" {
			return nil, fmt.Errorf("ticktick api error %d: %s", res.StatusCode, apiErr.ErrorMessage)
		}
		return nil, fmt.Errorf("ticktick api error %d: %s", res.StatusCode, string(b))
	}
	return b, nil
}

// FetchProjectTasks pulls the full task collection of one project.
func (c *TickTickClient) FetchProjectTasks(ctx context.Context, token, projectID string) ([]model.TickTickTask, error) {
	url := fmt.Sprintf("%s/open/v1/project/%s/data", c.BaseURL, projectID)
	b, err := c.doRequest(ctx, http.MethodGet, url, token, nil)
	if err != nil {
		return nil, err
	}

	var out model.TickTickProjectData
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("could not parse project data: %w", err)
	}
	return out.Tasks, nil
}

func (c *TickTickClient) CreateTask(ctx context.Context, token string, task *model.TickTickTask) (*model.TickTickTask, error) {
	url := fmt.Sprintf("%s/open/v1/task", c.BaseURL)
	b, err := c.doRequest(ctx, http.MethodPost, url, token, task)
	if err != nil {
		return nil, err
	}

	var created model.TickTickTask
	if err := json.Unmarshal(b, &created); err != nil {
		return nil, fmt.Errorf("could not parse created task: %w", err)
	}
	return &created, nil
}

func (c *TickTickClient) UpdateTask(ctx context.Context, token string, task *model.TickTickTask) error {
	url := fmt.Sprintf("%s/open/v1/task/%s", c.BaseURL, task.ID)
	_, err := c.doRequest(ctx, http.MethodPost, url, token, task)
	return err
}

func (c *TickTickClient) DeleteTask(ctx context.Context, token, projectID, taskID string) error {
	url := fmt.Sprintf("%s/open/v1/project/%s/task/%s", c.BaseURL, projectID, taskID)
	_, err := c.doRequest(ctx, http.MethodDelete, url, token, nil)
	return err
}

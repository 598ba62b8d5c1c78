package provisioning

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Provisioner is the external hosting collaborator. The platform only asks
// it to start a workload; status updates come back asynchronously through
// the callback endpoint.
type Provisioner interface {
	RequestProvision(req ProvisionRequest) error
}

type ProvisionRequest struct {
	BotID       string `json:"bot_id"`
	Name        string `json:"name"`
	Env         string `json:"env"`
	CallbackURL string `json:"callback_url,omitempty"`
}

type StatusUpdate struct {
	BotID  string `json:"bot_id"`
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

type Client struct {
	BaseURL     string
	APIKey      string
	CallbackURL string
	HTTPClient  *http.Client
}

func NewClient(baseURL, apiKey, callbackURL string) *Client {
	return &Client{
		BaseURL:     baseURL,
		APIKey:      apiKey,
		CallbackURL: callbackURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) RequestProvision(req ProvisionRequest) error {
	req.CallbackURL = c.CallbackURL

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal provision request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/deployments", c.BaseURL)
	httpReq, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.APIKey))

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("provisioner request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("provisioner error: %s (status: %d)", string(respBody), resp.StatusCode)
	}

	return nil
}

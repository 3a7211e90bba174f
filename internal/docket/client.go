// Package docket is the REST client for the external audit
// collaborator. It only produces the event shape; processing is the
// collaborator's business.
package docket

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Evolvus/evolvus-application/domain"
)

type Client struct {
	postURL    string
	httpClient *http.Client
}

func NewClient(postURL string) *Client {
	return &Client{
		postURL: postURL,
		httpClient: &http.Client{
			Timeout: time.Second * 10,
		},
	}
}

type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *ErrorResponse) Error() string {
	return fmt.Sprintf("docket returned error: %v %v", e.Message, e.Code)
}

type postResponse struct {
	Status  string         `json:"status"`
	Message string         `json:"message"`
	Error   *ErrorResponse `json:"error"`
}

// Post sends one audit event. Callers dispatch it fire-and-forget; the
// returned error is for logging only and never gates the operation the
// event describes.
func (c *Client) Post(ctx context.Context, event domain.AuditEvent) error {
	bodyJson, err := json.Marshal(event)
	if err != nil {
		return err
	}
	bodyReader := bytes.NewReader(bodyJson)
	req, err := http.NewRequestWithContext(ctx, "POST", c.postURL, bodyReader)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()
	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("docket returned status %d: %s", resp.StatusCode, string(respBytes))
	}

	response := postResponse{}
	if len(respBytes) > 0 {
		if err := json.Unmarshal(respBytes, &response); err != nil {
			return err
		}
	}
	if response.Error != nil {
		return response.Error
	}
	return nil
}

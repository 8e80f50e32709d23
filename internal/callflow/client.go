package callflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"crm-platform/internal/campaigns"
)

// APIError is a non-2xx response decoded from the server's error body.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Detail)
}

func (e *APIError) Unauthorized() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

// API is the server surface the call session needs.
type API interface {
	// StartCampaign asks for the agent's next workable lead.
	StartCampaign(ctx context.Context, campaignID string) (campaigns.NextLeadResponse, error)

	// SubmitCallLog records a finished call attempt.
	SubmitCallLog(ctx context.Context, req campaigns.LogCallRequest) (CallLogResult, error)
}

// CallLogResult is the server's acknowledgement of a logged call.
type CallLogResult struct {
	CallLog      campaigns.CallLog      `json:"call_log"`
	CampaignLead campaigns.CampaignLead `json:"campaign_lead"`
}

// Client is the HTTP implementation of API, authenticating with a bearer
// token fetched per request so refreshes are picked up.
type Client struct {
	baseURL string
	http    *http.Client
	token   func() string
}

func NewClient(baseURL string, token func() string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		token:   token,
	}
}

func (c *Client) StartCampaign(ctx context.Context, campaignID string) (campaigns.NextLeadResponse, error) {
	var out campaigns.NextLeadResponse
	err := c.do(ctx, http.MethodPost, "/campaigns/"+campaignID+"/start", nil, &out)
	return out, err
}

func (c *Client) SubmitCallLog(ctx context.Context, req campaigns.LogCallRequest) (CallLogResult, error) {
	var out CallLogResult
	err := c.do(ctx, http.MethodPost, "/calls", req, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		payload = bytes.NewReader(raw)
	} else {
		payload = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if t := c.token(); t != "" {
		req.Header.Set("Authorization", "Bearer "+t)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Detail: decodeDetail(resp)}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// decodeDetail extracts the server's "detail" field. The field is usually a
// string but may be an array of validation errors; anything unreadable
// falls back to the status text.
func decodeDetail(resp *http.Response) string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || len(body.Detail) == 0 {
		return http.StatusText(resp.StatusCode)
	}

	var s string
	if err := json.Unmarshal(body.Detail, &s); err == nil {
		return s
	}
	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(body.Detail, &items); err == nil && len(items) > 0 {
		parts := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				parts = append(parts, it.Msg)
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, "; ")
		}
	}
	return string(body.Detail)
}

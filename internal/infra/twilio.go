package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// TwilioResponse is the subset of the Messages API response we care about.
type TwilioResponse struct {
	SID          string  `json:"sid"`
	Status       string  `json:"status"` // queued | sent | failed | ...
	ErrorCode    *int    `json:"error_code"`
	ErrorMessage *string `json:"error_message"`
}

// TwilioClient sends WhatsApp messages through the Twilio Messages API.
// Calls are made from the notification workers, never from request handlers,
// so a slow or down Twilio never blocks an HTTP response.
type TwilioClient struct {
	baseURL    string
	accountSID string
	authToken  string
	from       string
	httpClient *http.Client
}

func NewTwilioClient(baseURL, accountSID, authToken, from string) *TwilioClient {
	return &TwilioClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		accountSID: accountSID,
		authToken:  authToken,
		from:       from,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// SendWhatsApp posts one message to the given number (E.164, no prefix —
// the whatsapp: scheme is added here).
func (c *TwilioClient) SendWhatsApp(ctx context.Context, to, body string) (*TwilioResponse, error) {
	form := url.Values{}
	form.Set("From", c.from)
	form.Set("To", "whatsapp:"+to)
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", c.baseURL, c.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("twilio: create request: %w", err)
	}
	req.SetBasicAuth(c.accountSID, c.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("twilio: unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("twilio: returned %d", resp.StatusCode)
	}

	var result TwilioResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("twilio: decode response: %w", err)
	}
	if result.ErrorCode != nil {
		msg := ""
		if result.ErrorMessage != nil {
			msg = *result.ErrorMessage
		}
		return &result, fmt.Errorf("twilio: error %d: %s", *result.ErrorCode, msg)
	}
	return &result, nil
}

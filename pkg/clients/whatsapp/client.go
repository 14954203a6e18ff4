package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/rpmontada/equinos/internal/config"
)

// maxButtons is the reply-button limit of an interactive message.
const maxButtons = 3

// ErrTooManyButtons is returned when a message offers more quick replies than the API accepts.
var ErrTooManyButtons = errors.New("too many reply buttons")

// Client exposes WhatsApp Cloud API operations used by the application.
type Client interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// Message is an outgoing chat message. With Buttons it is sent as an
// interactive quick-reply message, otherwise as plain text.
type Message struct {
	To      string
	Body    string
	Buttons []string
}

// APIClient is a resty-backed implementation of Client.
type APIClient struct {
	httpClient    *resty.Client
	phoneNumberID string
}

// NewClient builds a WhatsApp API client using the provided configuration values.
func NewClient(cfg config.WhatsAppConfig) *APIClient {
	base := strings.TrimSuffix(cfg.BaseURL, "/")

	restyClient := resty.New().
		SetBaseURL(fmt.Sprintf("%s/%s", base, cfg.APIVersion)).
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.AccessToken)).
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)

	return &APIClient{
		httpClient:    restyClient,
		phoneNumberID: cfg.PhoneNumberID,
	}
}

type sendResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

type apiError struct {
	Error struct {
		Message   string `json:"message"`
		Type      string `json:"type"`
		Code      int    `json:"code"`
		FBTraceID string `json:"fbtrace_id"`
	} `json:"error"`
}

// Send delivers msg and returns the id Meta assigned to it.
func (c *APIClient) Send(ctx context.Context, msg Message) (string, error) {
	payload, err := buildPayload(msg)
	if err != nil {
		return "", err
	}

	result := new(sendResponse)
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(result).
		SetError(apiErr).
		Post(fmt.Sprintf("%s/messages", c.phoneNumberID))
	if err != nil {
		return "", fmt.Errorf("send whatsapp message: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		code := resp.StatusCode()
		if apiErr.Error.Code != 0 {
			code = apiErr.Error.Code
		}
		return "", fmt.Errorf("whatsapp api error: code=%d, message=%s", code, apiErr.Error.Message)
	}

	if len(result.Messages) == 0 {
		return "", nil
	}
	return result.Messages[0].ID, nil
}

func buildPayload(msg Message) (map[string]any, error) {
	payload := map[string]any{
		"messaging_product": "whatsapp",
		"recipient_type":    "individual",
		"to":                msg.To,
	}

	if len(msg.Buttons) == 0 {
		payload["type"] = "text"
		payload["text"] = map[string]any{"body": msg.Body, "preview_url": false}
		return payload, nil
	}

	if len(msg.Buttons) > maxButtons {
		return nil, ErrTooManyButtons
	}

	buttons := make([]map[string]any, 0, len(msg.Buttons))
	for _, label := range msg.Buttons {
		buttons = append(buttons, map[string]any{
			"type":  "reply",
			"reply": map[string]any{"id": label, "title": label},
		})
	}

	payload["type"] = "interactive"
	payload["interactive"] = map[string]any{
		"type":   "button",
		"body":   map[string]any{"text": msg.Body},
		"action": map[string]any{"buttons": buttons},
	}
	return payload, nil
}

package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Telegram sends messages through the Bot API sendMessage method.
type Telegram struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewTelegram(baseURL, token string) *Telegram {
	return &Telegram{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type sendMessageRequest struct {
	ChatID int64  `json:"chat_id"`
	Text   string `json:"text"`
}

type botResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code,omitempty"`
	Description string `json:"description,omitempty"`
}

func (t *Telegram) Notify(ctx context.Context, userID int64, message string) error {
	body, err := json.Marshal(sendMessageRequest{ChatID: userID, Text: message})
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("telegram request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return fmt.Errorf("failed to read telegram response: %w", err)
	}

	var result botResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return fmt.Errorf("telegram returned status %d: %s", resp.StatusCode, string(raw))
	}
	if !result.OK {
		return fmt.Errorf("telegram error %d: %s", result.ErrorCode, result.Description)
	}
	return nil
}

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	chatmodel "github.com/GabrielG71/online-chat/module/chat/model"
	usermodel "github.com/GabrielG71/online-chat/module/user/model"
)

// The request/response operations live beside the stream controller so one
// client covers the whole conversation surface: send and typing go through
// HTTP and come back live through the stream.

func (c *Controller) doJSON(ctx context.Context, method, path string, body any, out any) error {
	var buf *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		buf = bytes.NewReader(raw)
	} else {
		buf = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(c.cfg.BaseURL, "/")+path, buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)

	resp, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		if apiErr.Error != "" {
			return fmt.Errorf("HTTP %d: %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// SendMessage posts a message. The created record comes back immediately;
// the matching new_message event on the stream is deduplicated when the
// caller routes both through RecordSent/OnMessage.
func (c *Controller) SendMessage(ctx context.Context, receiverID, content string) (*chatmodel.Message, error) {
	var msg chatmodel.Message
	err := c.doJSON(ctx, http.MethodPost, "/api/messages",
		map[string]string{"receiverId": receiverID, "content": content}, &msg)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// RecordSent marks a message id as already surfaced, so its echo on the
// live stream is dropped.
func (c *Controller) RecordSent(messageID string) {
	c.mu.Lock()
	c.dedup.Observe(messageID)
	c.mu.Unlock()
}

// SendTyping notifies the receiver about typing state.
func (c *Controller) SendTyping(ctx context.Context, receiverID string, isTyping bool) error {
	return c.doJSON(ctx, http.MethodPost, "/api/typing",
		map[string]any{"receiverId": receiverID, "isTyping": isTyping}, nil)
}

// History fetches the conversation with the other user, oldest first.
func (c *Controller) History(ctx context.Context, otherUserID string) ([]*chatmodel.Message, error) {
	var msgs []*chatmodel.Message
	err := c.doJSON(ctx, http.MethodGet, "/api/messages?userId="+url.QueryEscape(otherUserID), nil, &msgs)
	return msgs, err
}

// Users lists every other account, for the contact sidebar.
func (c *Controller) Users(ctx context.Context) ([]*usermodel.User, error) {
	var users []*usermodel.User
	err := c.doJSON(ctx, http.MethodGet, "/api/users", nil, &users)
	return users, err
}

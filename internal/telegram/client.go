// Copyright 2026 Shigure Cafe Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shigurecafe/cafebot/pkg/httpclient"
)

const (
	// DefaultBaseURL is the public Bot API endpoint.
	DefaultBaseURL = "https://api.telegram.org"
	// DefaultTimeout bounds every non-polling API call.
	DefaultTimeout = 20 * time.Second
)

// APIError is a Bot API answer with ok=false.
type APIError struct {
	Method      string
	Code        int
	Description string
	RetryAfter  int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram %s: %d %s", e.Method, e.Code, e.Description)
}

// Options configures a Client.
type Options struct {
	BaseURL string
	// Proxy applies to API calls and update polling alike.
	Proxy   string
	Timeout time.Duration
}

// Client calls the Telegram Bot API over its own pooled HTTP client.
type Client struct {
	token   string
	baseURL string
	timeout time.Duration
	http    *httpclient.Shared
}

func NewClient(token string, opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Client{
		token:   token,
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		timeout: opts.Timeout,
		// 请求超时由每次调用的 context 控制，长轮询需要更长的时间
		http: httpclient.New(
			httpclient.WithName("telegram"),
			httpclient.WithProxy(opts.Proxy),
		),
	}
}

// GetMe returns the bot's own user.
func (c *Client) GetMe(ctx context.Context) (*User, error) {
	var me User
	if err := c.call(ctx, c.timeout, "getMe", nil, &me); err != nil {
		return nil, err
	}
	return &me, nil
}

// GetUpdates long-polls for new updates.
func (c *Client) GetUpdates(ctx context.Context, params GetUpdatesParams) ([]Update, error) {
	var updates []Update
	timeout := c.timeout + time.Duration(params.Timeout)*time.Second
	if err := c.call(ctx, timeout, "getUpdates", params, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

// SendMessage sends a text message.
func (c *Client) SendMessage(ctx context.Context, params SendMessageParams) (*Message, error) {
	var msg Message
	if err := c.call(ctx, c.timeout, "sendMessage", params, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// CreateChatInviteLink creates an additional invite link for a chat. The bot
// must be an administrator of the chat with the invite-users right.
func (c *Client) CreateChatInviteLink(ctx context.Context, params InviteLinkParams) (*ChatInviteLink, error) {
	var link ChatInviteLink
	if err := c.call(ctx, c.timeout, "createChatInviteLink", params, &link); err != nil {
		return nil, err
	}
	return &link, nil
}

// Close releases pooled connections.
func (c *Client) Close() error {
	return c.http.Close()
}

func (c *Client) call(ctx context.Context, timeout time.Duration, method string, params, out any) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req := c.http.Get().R().SetContext(ctx)
	if params != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(params)
	}

	resp, err := req.Post(c.baseURL + "/bot" + c.token + "/" + method)
	if err != nil {
		return fmt.Errorf("telegram %s: %w", method, c.redact(err))
	}

	var result apiResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return fmt.Errorf("telegram %s: decode response (status %d): %w", method, resp.StatusCode(), err)
	}
	if !result.OK {
		apiErr := &APIError{Method: method, Code: result.ErrorCode, Description: result.Description}
		if result.Parameters != nil {
			apiErr.RetryAfter = result.Parameters.RetryAfter
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(result.Result, out); err != nil {
		return fmt.Errorf("telegram %s: decode result: %w", method, err)
	}
	return nil
}

// redact keeps the bot token out of error strings, which end up in logs and
// from there in the uploaded log batches.
func (c *Client) redact(err error) error {
	if c.token == "" || !strings.Contains(err.Error(), c.token) {
		return err
	}
	return &redactedError{msg: strings.ReplaceAll(err.Error(), c.token, "<token>"), err: err}
}

type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string { return e.msg }

func (e *redactedError) Unwrap() error { return e.err }

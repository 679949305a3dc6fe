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

package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/shigurecafe/cafebot/pkg/httpclient"
	"github.com/shigurecafe/cafebot/pkg/log"
)

const (
	// HeaderAPIKey carries the shared secret when one is configured.
	HeaderAPIKey = "Cafe-API-Key"
	// DefaultTimeout bounds every backend call.
	DefaultTimeout = 15 * time.Second
)

// ErrTransport marks failures where no HTTP response was received:
// connection errors, DNS failures and timeouts.
var ErrTransport = errors.New("backend unreachable")

// Options configures a Gateway.
type Options struct {
	// BaseURL is the API root, e.g. http://localhost:8080/api/v1.
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Gateway performs typed calls against the registration backend over a
// shared client.
type Gateway struct {
	clients *httpclient.Shared
	opts    Options
}

func NewGateway(clients *httpclient.Shared, opts Options) *Gateway {
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Gateway{clients: clients, opts: opts}
}

// FetchRegistration issues GET {base}/registrations/{code} and returns the
// raw response whatever its status; interpreting 200/404/other is left to the
// caller. Only transport failures are returned as errors, wrapping ErrTransport.
func (g *Gateway) FetchRegistration(ctx context.Context, code string) (*resty.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, g.opts.Timeout)
	defer cancel()

	resp, err := g.request(ctx).
		SetPathParam("code", code).
		Get(g.opts.BaseURL + "/registrations/{code}")
	if err != nil {
		return nil, fmt.Errorf("%w: get registration: %w", ErrTransport, err)
	}
	return resp, nil
}

// UploadLogs posts records as a JSON array to {base}/logs. An empty batch is
// a no-op. A non-200 answer is logged and swallowed; transport failures are
// returned wrapping ErrTransport.
func (g *Gateway) UploadLogs(ctx context.Context, records []LogRecord) error {
	if len(records) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, g.opts.Timeout)
	defer cancel()

	resp, err := g.request(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(records).
		Post(g.opts.BaseURL + "/logs")
	if err != nil {
		return fmt.Errorf("%w: upload logs: %w", ErrTransport, err)
	}
	if resp.StatusCode() != http.StatusOK {
		log.Warnw("backend rejected log batch",
			"status", resp.StatusCode(),
			"records", len(records),
			"body", resp.String(),
		)
	}
	return nil
}

// DecodeRegistration parses the body of a 200 registration response.
func DecodeRegistration(resp *resty.Response) (*Registration, error) {
	var reg Registration
	if err := json.Unmarshal(resp.Body(), &reg); err != nil {
		return nil, fmt.Errorf("decode registration: %w", err)
	}
	return &reg, nil
}

func (g *Gateway) request(ctx context.Context) *resty.Request {
	req := g.clients.Get().R().SetContext(ctx)
	if g.opts.APIKey != "" {
		req.SetHeader(HeaderAPIKey, g.opts.APIKey)
	}
	return req
}

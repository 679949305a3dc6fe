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

// Package audit verifies audit codes against the registration backend and
// issues single-use invites into the review group.
package audit

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"

	"github.com/shigurecafe/cafebot/internal/backend"
	"github.com/shigurecafe/cafebot/internal/telegram"
	"github.com/shigurecafe/cafebot/pkg/log"
	"github.com/shigurecafe/cafebot/pkg/metrics"
	"github.com/shigurecafe/cafebot/pkg/safe"
)

// Outcome names the terminal branch an /audit invocation ended in.
type Outcome string

const (
	OutcomeNotPrivate         Outcome = "not_private"
	OutcomeMissingCode        Outcome = "missing_code"
	OutcomeInvalidCode        Outcome = "invalid_code"
	OutcomeBackendUnreachable Outcome = "backend_unreachable"
	OutcomeNotFound           Outcome = "not_found"
	OutcomeBackendFailed      Outcome = "backend_failed"
	OutcomeNotPending         Outcome = "not_pending"
	OutcomeExpired            Outcome = "expired"
	OutcomeNotConfigured      Outcome = "not_configured"
	OutcomeIssued             Outcome = "issued"
	OutcomeIssueFailed        Outcome = "issue_failed"
	OutcomeInternalError      Outcome = "internal_error"
)

// RegistrationFetcher looks up a registration and returns the raw backend
// response. Errors are transport failures only.
type RegistrationFetcher interface {
	FetchRegistration(ctx context.Context, code string) (*resty.Response, error)
}

// Request is one /audit invocation.
type Request struct {
	ChatType string
	Args     []string
	UserID   int64
}

// Result is the single reply an invocation produces.
type Result struct {
	Outcome  Outcome
	Text     string
	Markdown bool
	Grant    *InviteGrant
}

// Orchestrator runs the /audit decision pipeline. Every branch is terminal
// and maps to exactly one reply; nothing is retried.
type Orchestrator struct {
	fetcher RegistrationFetcher
	issuer  *InviteIssuer
}

func NewOrchestrator(fetcher RegistrationFetcher, issuer *InviteIssuer) *Orchestrator {
	return &Orchestrator{fetcher: fetcher, issuer: issuer}
}

// Handle never fails: unclassified errors and panics from any stage are
// mapped to the generic apology here and nowhere else.
func (o *Orchestrator) Handle(ctx context.Context, req Request) Result {
	var res Result
	err := safe.Call(func() error {
		var err error
		res, err = o.handle(ctx, req)
		return err
	})
	if err != nil {
		fields := []any{"user_id", req.UserID, "error", err}
		var pe *safe.PanicError
		if errors.As(err, &pe) {
			fields = append(fields, "stack", string(pe.Stack))
		}
		log.Errorw("unexpected error in audit handler", fields...)
		res = reply(OutcomeInternalError, msgUnexpected)
	}
	metrics.RecordAuditOutcome(string(res.Outcome))
	return res
}

func (o *Orchestrator) handle(ctx context.Context, req Request) (Result, error) {
	if req.ChatType != telegram.ChatTypePrivate {
		return markdown(OutcomeNotPrivate, msgPrivateOnly), nil
	}
	if len(req.Args) == 0 {
		return markdown(OutcomeMissingCode, msgUsage), nil
	}
	code, err := Canonical(req.Args[0])
	if err != nil {
		return reply(OutcomeInvalidCode, msgInvalidFormat), nil
	}

	resp, err := o.fetcher.FetchRegistration(ctx, code)
	if err != nil {
		log.Errorw("backend request error", "code", code, "error", err)
		return reply(OutcomeBackendUnreachable, msgBackendUnreachable), nil
	}
	switch resp.StatusCode() {
	case http.StatusOK:
	case http.StatusNotFound:
		return reply(OutcomeNotFound, msgNotFound), nil
	default:
		log.Errorw("backend returned unexpected status",
			"status", resp.StatusCode(),
			"body", resp.String(),
		)
		return reply(OutcomeBackendFailed, msgBackendFailed), nil
	}

	reg, err := backend.DecodeRegistration(resp)
	if err != nil {
		return Result{}, err
	}
	if reg.Status != backend.StatusPending {
		status := string(reg.Status)
		if status == "" {
			status = msgStatusUnknown
		}
		return reply(OutcomeNotPending, fmt.Sprintf(msgNotPending, status)), nil
	}
	if reg.IsExpired {
		return reply(OutcomeExpired, msgExpired), nil
	}

	if !o.issuer.Configured() {
		return reply(OutcomeNotConfigured, msgNotConfigured), nil
	}
	grant, err := o.issuer.Issue(ctx, reg.Username)
	if err != nil {
		log.Errorw("error creating invite link", "username", reg.Username, "error", err)
		return reply(OutcomeIssueFailed, msgIssueFailed), nil
	}
	metrics.RecordInviteIssued()
	log.Infow("invite link issued", "username", reg.Username, "expires_at", grant.ExpiresAt)

	res := reply(OutcomeIssued, fmt.Sprintf(msgIssued, reg.Username, int(InviteTTL.Minutes()), grant.Link))
	res.Grant = grant
	return res, nil
}

func reply(outcome Outcome, text string) Result {
	return Result{Outcome: outcome, Text: text}
}

func markdown(outcome Outcome, text string) Result {
	return Result{Outcome: outcome, Text: text, Markdown: true}
}

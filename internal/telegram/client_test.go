package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "123456:TEST-TOKEN"

type fakeAPI struct {
	t       *testing.T
	methods []string
	bodies  map[string]json.RawMessage
	replies map[string]string
}

func newFakeAPI(t *testing.T) (*fakeAPI, *Client) {
	api := &fakeAPI{t: t, bodies: map[string]json.RawMessage{}, replies: map[string]string{}}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	c := NewClient(testToken, Options{BaseURL: srv.URL, Timeout: 2 * time.Second})
	t.Cleanup(func() { _ = c.Close() })
	return api, c
}

func (a *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	prefix := "/bot" + testToken + "/"
	if !strings.HasPrefix(r.URL.Path, prefix) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"ok":false,"error_code":404,"description":"Not Found"}`))
		return
	}
	method := strings.TrimPrefix(r.URL.Path, prefix)
	a.methods = append(a.methods, method)

	var body json.RawMessage
	_ = json.NewDecoder(r.Body).Decode(&body)
	a.bodies[method] = body

	reply, ok := a.replies[method]
	if !ok {
		reply = `{"ok":true,"result":true}`
	}
	w.Header().Set("Content-Type", "application/json")
	if strings.Contains(reply, `"ok":false`) {
		w.WriteHeader(http.StatusBadRequest)
	}
	_, _ = w.Write([]byte(reply))
}

func TestGetMe(t *testing.T) {
	api, c := newFakeAPI(t)
	api.replies["getMe"] = `{"ok":true,"result":{"id":42,"is_bot":true,"first_name":"Cafe","username":"ShigureCafeBot"}}`

	me, err := c.GetMe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(42), me.ID)
	assert.Equal(t, "ShigureCafeBot", me.Username)
	assert.Equal(t, []string{"getMe"}, api.methods)
}

func TestGetUpdates(t *testing.T) {
	api, c := newFakeAPI(t)
	api.replies["getUpdates"] = `{"ok":true,"result":[
		{"update_id":10,"message":{"message_id":1,"chat":{"id":7,"type":"private"},"date":1,"text":"/start",
		 "entities":[{"type":"bot_command","offset":0,"length":6}]}},
		{"update_id":11}
	]}`

	updates, err := c.GetUpdates(context.Background(), GetUpdatesParams{Offset: 10, Timeout: 1, AllowedUpdates: []string{"message"}})
	require.NoError(t, err)
	require.Len(t, updates, 2)
	assert.Equal(t, int64(10), updates[0].UpdateID)
	require.NotNil(t, updates[0].Message)
	assert.Equal(t, "/start", updates[0].Message.Text)
	assert.Equal(t, ChatTypePrivate, updates[0].Message.Chat.Type)
	assert.Nil(t, updates[1].Message)

	var sent GetUpdatesParams
	require.NoError(t, json.Unmarshal(api.bodies["getUpdates"], &sent))
	assert.Equal(t, int64(10), sent.Offset)
	assert.Equal(t, []string{"message"}, sent.AllowedUpdates)
}

func TestSendMessage(t *testing.T) {
	api, c := newFakeAPI(t)
	api.replies["sendMessage"] = `{"ok":true,"result":{"message_id":5,"chat":{"id":7,"type":"private"},"date":1,"text":"hi"}}`

	msg, err := c.SendMessage(context.Background(), SendMessageParams{
		ChatID:          7,
		Text:            "hi",
		ParseMode:       ParseModeMarkdown,
		ReplyParameters: &ReplyParameters{MessageID: 3, AllowSendingWithoutReply: true},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), msg.MessageID)

	var sent map[string]any
	require.NoError(t, json.Unmarshal(api.bodies["sendMessage"], &sent))
	assert.Equal(t, float64(7), sent["chat_id"])
	assert.Equal(t, "Markdown", sent["parse_mode"])
	assert.Equal(t, float64(3), sent["reply_parameters"].(map[string]any)["message_id"])
}

func TestCreateChatInviteLink(t *testing.T) {
	api, c := newFakeAPI(t)
	api.replies["createChatInviteLink"] = `{"ok":true,"result":{"invite_link":"https://t.me/+abc","creator":{"id":42,"is_bot":true,"first_name":"Cafe"},"name":"Audit: alice","is_primary":false,"is_revoked":false,"expire_date":1700000600,"member_limit":1}}`

	link, err := c.CreateChatInviteLink(context.Background(), InviteLinkParams{
		ChatID:      "-1001234567890",
		Name:        "Audit: alice",
		ExpireDate:  1700000600,
		MemberLimit: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, "https://t.me/+abc", link.InviteLink)
	assert.Equal(t, 1, link.MemberLimit)

	var sent map[string]any
	require.NoError(t, json.Unmarshal(api.bodies["createChatInviteLink"], &sent))
	assert.Equal(t, "-1001234567890", sent["chat_id"])
	assert.Equal(t, "Audit: alice", sent["name"])
	assert.Equal(t, float64(1700000600), sent["expire_date"])
	assert.Equal(t, float64(1), sent["member_limit"])
}

func TestAPIError(t *testing.T) {
	api, c := newFakeAPI(t)
	api.replies["createChatInviteLink"] = `{"ok":false,"error_code":400,"description":"Bad Request: not enough rights to manage chat invite links"}`

	_, err := c.CreateChatInviteLink(context.Background(), InviteLinkParams{ChatID: "-100"})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.Code)
	assert.Equal(t, "createChatInviteLink", apiErr.Method)
	assert.Contains(t, err.Error(), "not enough rights")
}

func TestTransportErrorRedactsToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewClient(testToken, Options{BaseURL: srv.URL, Timeout: time.Second})
	_, err := c.GetMe(context.Background())
	require.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
	assert.NotContains(t, err.Error(), testToken)
	assert.Contains(t, err.Error(), "<token>")
}

func TestDecodeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer srv.Close()

	c := NewClient(testToken, Options{BaseURL: srv.URL, Timeout: time.Second})
	_, err := c.GetMe(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}

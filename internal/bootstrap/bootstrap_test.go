package bootstrap

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shigurecafe/cafebot/internal/audit"
	"github.com/shigurecafe/cafebot/internal/backend"
	"github.com/shigurecafe/cafebot/internal/bot"
	"github.com/shigurecafe/cafebot/internal/config"
	"github.com/shigurecafe/cafebot/internal/logship"
	"github.com/shigurecafe/cafebot/internal/telegram"
	"github.com/shigurecafe/cafebot/pkg/cron"
	"github.com/shigurecafe/cafebot/pkg/log"
	"github.com/shigurecafe/cafebot/pkg/metrics"
)

const (
	testToken   = "42:TEST"
	testGroupID = "-1001234567890"
	testCode    = "12345678-1234-1234-1234-1234567890ab"
)

// fakeTelegram serves the four Bot API methods the bot uses. The first
// getUpdates returns one /audit message; later calls idle briefly.
type fakeTelegram struct {
	mu      sync.Mutex
	served  atomic.Bool
	sent    []telegram.SendMessageParams
	invites []telegram.InviteLinkParams
}

func (f *fakeTelegram) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	method := strings.TrimPrefix(r.URL.Path, "/bot"+testToken+"/")
	w.Header().Set("Content-Type", "application/json")

	switch method {
	case "getMe":
		_, _ = w.Write([]byte(`{"ok":true,"result":{"id":42,"is_bot":true,"first_name":"Cafe","username":"cafe_bot"}}`))
	case "getUpdates":
		if f.served.CompareAndSwap(false, true) {
			_, _ = w.Write([]byte(`{"ok":true,"result":[{"update_id":1,"message":{"message_id":5,"from":{"id":7,"is_bot":false,"first_name":"Alice"},"chat":{"id":7,"type":"private"},"date":0,"text":"/audit@cafe_bot ` + testCode + `"}}]}`))
			return
		}
		select {
		case <-r.Context().Done():
		case <-time.After(50 * time.Millisecond):
		}
		_, _ = w.Write([]byte(`{"ok":true,"result":[]}`))
	case "sendMessage":
		var p telegram.SendMessageParams
		_ = json.NewDecoder(r.Body).Decode(&p)
		f.mu.Lock()
		f.sent = append(f.sent, p)
		f.mu.Unlock()
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":6,"chat":{"id":7,"type":"private"},"date":0}}`))
	case "createChatInviteLink":
		var p telegram.InviteLinkParams
		_ = json.NewDecoder(r.Body).Decode(&p)
		f.mu.Lock()
		f.invites = append(f.invites, p)
		f.mu.Unlock()
		_, _ = w.Write([]byte(`{"ok":true,"result":{"invite_link":"https://t.me/+abc","creator":{"id":42,"is_bot":true,"first_name":"Cafe"},"is_primary":false,"is_revoked":false}}`))
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"ok":false,"error_code":404,"description":"Not Found"}`))
	}
}

func (f *fakeTelegram) Sent() []telegram.SendMessageParams {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]telegram.SendMessageParams(nil), f.sent...)
}

func (f *fakeTelegram) Invites() []telegram.InviteLinkParams {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]telegram.InviteLinkParams(nil), f.invites...)
}

type fakeBackend struct {
	mu   sync.Mutex
	logs []backend.LogRecord
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/api/v1/registrations/"+testCode:
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"auditCode":"` + testCode + `","username":"alice","status":"PENDING","isExpired":false}`))
	case r.Method == http.MethodPost && r.URL.Path == "/api/v1/logs":
		var batch []backend.LogRecord
		_ = json.NewDecoder(r.Body).Decode(&batch)
		f.mu.Lock()
		f.logs = append(f.logs, batch...)
		f.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeBackend) Logs() []backend.LogRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]backend.LogRecord(nil), f.logs...)
}

func newTestApp(t *testing.T, tgURL, backendURL string) (*App, func()) {
	t.Helper()
	conf := &config.AppConfig{
		Bot: config.BotConfig{
			Token:        testToken,
			AuditGroupID: testGroupID,
			APIURL:       tgURL,
			PollTimeout:  1,
			Timeout:      2 * time.Second,
		},
		Backend: config.BackendConfig{URL: backendURL, Timeout: 2 * time.Second},
		Shipper: config.ShipperConfig{Enable: true, Interval: time.Second},
		Log:     *log.SetDefaults(),
	}
	logger, logCleanup, err := log.ProvideLogger(&conf.Log)
	require.NoError(t, err)

	tg, tgCleanup := ProvideTelegramClient(conf, config.ProvideTelegramOptions(conf))
	shared, sharedCleanup := backend.NewSharedClient()
	gw := backend.NewGateway(shared, config.ProvideBackendOptions(conf))
	orch := audit.NewOrchestrator(gw, ProvideInviteIssuer(tg, conf))
	router := bot.ProvideRouter(tg, bot.NewHandlers(orch))
	poller := ProvidePoller(tg, router, conf)
	buffer := logship.NewBuffer()
	shipper := ProvideShipper(buffer, gw, conf)
	scheduler, schedCleanup := cron.ProvideScheduler()
	server := metrics.NewMetricsServer(config.ProvideMetricsConfig(conf))

	app := NewApp(logger, conf, tg, router, poller, buffer, shipper, scheduler, server)
	return app, func() {
		schedCleanup()
		sharedCleanup()
		tgCleanup()
		logCleanup()
	}
}

func TestRun_AuditEndToEnd(t *testing.T) {
	tg := &fakeTelegram{}
	tgSrv := httptest.NewServer(tg)
	defer tgSrv.Close()
	be := &fakeBackend{}
	beSrv := httptest.NewServer(be)
	defer beSrv.Close()

	app, cleanup, err := Bootstrap("", func(string) (*App, func(), error) {
		a, c := newTestApp(t, tgSrv.URL, beSrv.URL)
		return a, c, nil
	})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- Run(app, cleanup) }()

	require.Eventually(t, func() bool { return len(tg.Sent()) == 1 }, 5*time.Second, 20*time.Millisecond)
	app.Shutdown()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after shutdown")
	}

	sent := tg.Sent()
	assert.Equal(t, int64(7), sent[0].ChatID)
	assert.Contains(t, sent[0].Text, "alice")
	assert.Contains(t, sent[0].Text, "https://t.me/+abc")

	invites := tg.Invites()
	require.Len(t, invites, 1)
	assert.Equal(t, testGroupID, invites[0].ChatID)
	assert.Equal(t, 1, invites[0].MemberLimit)
	assert.Equal(t, "Audit: alice", invites[0].Name)

	// the final flush on shutdown ships whatever was still buffered
	var issued bool
	for _, rec := range be.Logs() {
		assert.Equal(t, logship.SourceTag, rec.Source)
		if strings.HasPrefix(rec.Content, "invite link issued") {
			issued = true
		}
	}
	assert.True(t, issued, "issuance log should reach the backend")
}

func TestRun_TelegramUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	app, cleanup := newTestApp(t, srv.URL, "http://127.0.0.1:1")
	var cleaned atomic.Bool
	err := Run(app, func() {
		cleaned.Store(true)
		cleanup()
	})

	assert.Error(t, err)
	assert.True(t, cleaned.Load(), "cleanup runs even when startup fails")
}

package router_test

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"transcendent/backend/internal/clock"
	"transcendent/backend/internal/database/dbtest"
	"transcendent/backend/internal/handler"
	"transcendent/backend/internal/hub"
	"transcendent/backend/internal/lobby"
	"transcendent/backend/internal/matchmaking"
	"transcendent/backend/internal/router"
	"transcendent/backend/internal/session"
	"transcendent/backend/internal/user"
)

const expiry = 5 * time.Minute

var start = time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC)

type testEnv struct {
	router *gin.Engine
	clk    *clock.Fake
	hub    *hub.Hub
}

func setup(t *testing.T, opts handler.Options) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := dbtest.New(t)
	clk := clock.NewFake(start)
	log := zap.NewNop()

	users := user.NewStore(db, bcrypt.MinCost)
	for _, name := range []string{"alice", "bob"} {
		_, err := users.Create(context.Background(), name, name+"-pw")
		require.NoError(t, err)
	}

	sessions := session.NewStore(db, "test-secret", time.Hour, session.WithClock(clk.Now))
	lobbies := lobby.NewRegistry(db, expiry, 8, lobby.WithClock(clk.Now))
	events := hub.New(log)
	h := handler.New(users, sessions, lobbies, matchmaking.NewFinder(lobbies), events, log, opts)

	return &testEnv{
		router: router.New(router.Config{
			Handler:        h,
			Sessions:       sessions,
			Log:            log,
			RequestTimeout: 5 * time.Second,
		}),
		clk: clk,
		hub: events,
	}
}

// call sends values as the query string for GET and as a form body otherwise.
func (e *testEnv) call(t *testing.T, method, path string, values url.Values) (int, map[string]any) {
	t.Helper()

	var req *http.Request
	if method == http.MethodGet {
		req, _ = http.NewRequest(method, path+"?"+values.Encode(), nil)
	} else {
		req, _ = http.NewRequest(method, path, strings.NewReader(values.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)

	var body map[string]any
	if rr.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body), rr.Body.String())
	}
	return rr.Code, body
}

func (e *testEnv) login(t *testing.T, name string) string {
	t.Helper()
	code, body := e.call(t, http.MethodPost, "/login", url.Values{"username": {name}, "password": {name + "-pw"}})
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, true, body["success"])
	token, ok := body["access_code"].(string)
	require.True(t, ok)
	require.NotEmpty(t, token)
	return token
}

func (e *testEnv) host(t *testing.T, token, guid, mode string) string {
	t.Helper()
	code, body := e.call(t, http.MethodPost, "/server/host", url.Values{"auth": {token}, "guid": {guid}, "game_mode": {mode}})
	require.Equal(t, http.StatusOK, code, body)
	require.Equal(t, true, body["success"])
	return body["id"].(string)
}

func (e *testEnv) find(t *testing.T, token, mode string) []map[string]any {
	t.Helper()
	code, body := e.call(t, http.MethodGet, "/server/find", url.Values{"auth": {token}, "game_mode": {mode}})
	require.Equal(t, http.StatusOK, code, body)
	require.Equal(t, true, body["success"])

	raw := body["server-list"].([]any)
	require.EqualValues(t, len(raw), body["server-count"])
	servers := make([]map[string]any, 0, len(raw))
	for _, s := range raw {
		servers = append(servers, s.(map[string]any))
	}
	return servers
}

func TestPing(t *testing.T) {
	e := setup(t, handler.Options{})
	code, body := e.call(t, http.MethodGet, "/ping", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "pong", body["message"])
}

func TestLoginLogout(t *testing.T) {
	e := setup(t, handler.Options{})
	token := e.login(t, "alice")

	assert.Empty(t, e.find(t, token, "dm"))

	code, body := e.call(t, http.MethodPost, "/logout", url.Values{"auth": {token}})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["success"])

	code, _ = e.call(t, http.MethodGet, "/server/find", url.Values{"auth": {token}, "game_mode": {"dm"}})
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestLogout_TrailingSlash(t *testing.T) {
	e := setup(t, handler.Options{})
	token := e.login(t, "alice")

	code, body := e.call(t, http.MethodPost, "/logout/", url.Values{"auth": {token}})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["success"])

	code, _ = e.call(t, http.MethodGet, "/server/find", url.Values{"auth": {token}, "game_mode": {"dm"}})
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestLogin_BadCredentials(t *testing.T) {
	e := setup(t, handler.Options{})

	for _, form := range []url.Values{
		{"username": {"alice"}, "password": {"wrong"}},
		{"username": {"nobody"}, "password": {"pw"}},
		{},
	} {
		code, body := e.call(t, http.MethodPost, "/login", form)
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, false, body["success"])
		v, present := body["access_code"]
		assert.True(t, present)
		assert.Nil(t, v)
	}
}

func TestLogin_JSONBody(t *testing.T) {
	e := setup(t, handler.Options{})

	req, _ := http.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"username":"bob","password":"bob-pw"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"success":true`)
}

func TestLogin_EndsPreviousSession(t *testing.T) {
	e := setup(t, handler.Options{})
	first := e.login(t, "alice")
	second := e.login(t, "alice")
	require.NotEqual(t, first, second)

	code, _ := e.call(t, http.MethodGet, "/server/find", url.Values{"auth": {first}, "game_mode": {"dm"}})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Empty(t, e.find(t, second, "dm"))
}

func TestBearerToken(t *testing.T) {
	e := setup(t, handler.Options{})
	token := e.login(t, "alice")

	req, _ := http.NewRequest(http.MethodGet, "/server/find?game_mode=dm", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRequiresSession(t *testing.T) {
	e := setup(t, handler.Options{})

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/logout"},
		{http.MethodGet, "/server/find"},
		{http.MethodPost, "/server/host"},
		{http.MethodPost, "/server/renew"},
		{http.MethodPost, "/server/remove"},
		{http.MethodGet, "/server/migrate"},
		{http.MethodGet, "/server/watch"},
	} {
		code, body := e.call(t, tc.method, tc.path, url.Values{"auth": {"not-a-token"}, "game_mode": {"dm"}})
		assert.Equal(t, http.StatusUnauthorized, code, tc.path)
		assert.Equal(t, false, body["success"], tc.path)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	e := setup(t, handler.Options{})

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/login"},
		{http.MethodGet, "/logout"},
		{http.MethodPost, "/server/find"},
		{http.MethodGet, "/server/host"},
		{http.MethodGet, "/server/renew"},
		{http.MethodGet, "/server/remove"},
	} {
		code, body := e.call(t, tc.method, tc.path, nil)
		assert.Equal(t, http.StatusMethodNotAllowed, code, tc.path)
		assert.Equal(t, false, body["success"], tc.path)
	}
}

func TestHostThenFind(t *testing.T) {
	e := setup(t, handler.Options{})
	token := e.login(t, "alice")

	code, body := e.call(t, http.MethodPost, "/server/host", url.Values{
		"auth": {token}, "guid": {"guid-1"}, "game_mode": {"dm"}, "max_players": {"4"},
	})
	require.Equal(t, http.StatusOK, code)
	id := body["id"].(string)
	assert.Len(t, id, 32)

	servers := e.find(t, token, "dm")
	require.Len(t, servers, 1)
	assert.Equal(t, id, servers[0]["id"])
	assert.Equal(t, "guid-1", servers[0]["host-GUID"])
	assert.Equal(t, "dm", servers[0]["game-mode"])
	assert.EqualValues(t, 4, servers[0]["max-players"])

	assert.Empty(t, e.find(t, token, "ctf"))
	assert.Empty(t, e.find(t, token, "DM"))
}

func TestHost_DefaultMaxPlayers(t *testing.T) {
	e := setup(t, handler.Options{})
	token := e.login(t, "alice")
	e.host(t, token, "guid-1", "dm")

	servers := e.find(t, token, "dm")
	require.Len(t, servers, 1)
	assert.EqualValues(t, 8, servers[0]["max-players"])
}

func TestHost_InvalidParameters(t *testing.T) {
	e := setup(t, handler.Options{})
	token := e.login(t, "alice")

	for _, form := range []url.Values{
		{"auth": {token}, "game_mode": {"dm"}},
		{"auth": {token}, "guid": {"g"}},
		{"auth": {token}, "guid": {"g"}, "game_mode": {"dm"}, "max_players": {"many"}},
		{"auth": {token}, "guid": {"g"}, "game_mode": {"dm"}, "max_players": {"0"}},
	} {
		code, body := e.call(t, http.MethodPost, "/server/host", form)
		assert.Equal(t, http.StatusBadRequest, code, form)
		assert.Equal(t, false, body["success"])
		assert.NotEmpty(t, body["message"])
	}
	assert.Empty(t, e.find(t, token, "dm"))

	code, _ := e.call(t, http.MethodGet, "/server/find", url.Values{"auth": {token}})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestLobbyExpiry(t *testing.T) {
	e := setup(t, handler.Options{})
	token := e.login(t, "alice")
	id := e.host(t, token, "guid-1", "dm")

	e.clk.Advance(expiry)
	assert.Len(t, e.find(t, token, "dm"), 1)

	e.clk.Advance(time.Second)
	assert.Empty(t, e.find(t, token, "dm"))

	code, body := e.call(t, http.MethodPost, "/server/renew", url.Values{"auth": {token}, "id": {id}})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, body["success"])

	code, body = e.call(t, http.MethodGet, "/server/migrate", url.Values{"auth": {token}, "id": {id}, "guid": {"g2"}})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Lobby not found", body["message"])
}

func TestRenewExtendsLife(t *testing.T) {
	e := setup(t, handler.Options{})
	token := e.login(t, "alice")
	id := e.host(t, token, "guid-1", "dm")

	e.clk.Advance(4 * time.Minute)
	_, body := e.call(t, http.MethodPost, "/server/renew", url.Values{"auth": {token}, "id": {id}})
	assert.Equal(t, true, body["success"])

	e.clk.Advance(4 * time.Minute)
	assert.Len(t, e.find(t, token, "dm"), 1)
}

func TestOwnershipGate(t *testing.T) {
	e := setup(t, handler.Options{})
	alice := e.login(t, "alice")
	bob := e.login(t, "bob")
	id := e.host(t, alice, "guid-a", "dm")

	e.clk.Advance(4 * time.Minute)
	for _, path := range []string{"/server/renew", "/server/remove"} {
		code, body := e.call(t, http.MethodPost, path, url.Values{"auth": {bob}, "id": {id}})
		assert.Equal(t, http.StatusOK, code, path)
		assert.Equal(t, false, body["success"], path)
	}

	// Bob's renew must not have pushed the expiry.
	e.clk.Advance(90 * time.Second)
	assert.Empty(t, e.find(t, alice, "dm"))
}

func TestRemove(t *testing.T) {
	e := setup(t, handler.Options{})
	token := e.login(t, "alice")
	id := e.host(t, token, "guid-1", "dm")

	_, body := e.call(t, http.MethodPost, "/server/remove", url.Values{"auth": {token}, "id": {id}})
	assert.Equal(t, true, body["success"])
	assert.Empty(t, e.find(t, token, "dm"))

	_, body = e.call(t, http.MethodPost, "/server/remove", url.Values{"auth": {token}, "id": {id}})
	assert.Equal(t, false, body["success"])
}

func TestMigrate(t *testing.T) {
	e := setup(t, handler.Options{})
	alice := e.login(t, "alice")
	bob := e.login(t, "bob")
	id := e.host(t, alice, "guid-a", "dm")

	e.clk.Advance(4 * time.Minute)
	code, body := e.call(t, http.MethodPost, "/server/migrate", url.Values{"auth": {bob}, "id": {id}, "guid": {"guid-b"}})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["success"])

	servers := e.find(t, bob, "dm")
	require.Len(t, servers, 1)
	assert.Equal(t, "guid-b", servers[0]["host-GUID"])

	// Migration renewed the lobby and made bob its host.
	e.clk.Advance(4 * time.Minute)
	_, body = e.call(t, http.MethodPost, "/server/renew", url.Values{"auth": {bob}, "id": {id}})
	assert.Equal(t, true, body["success"])
	_, body = e.call(t, http.MethodPost, "/server/renew", url.Values{"auth": {alice}, "id": {id}})
	assert.Equal(t, false, body["success"])
}

func TestMigrate_Strict(t *testing.T) {
	e := setup(t, handler.Options{StrictMigration: true})
	alice := e.login(t, "alice")
	bob := e.login(t, "bob")
	id := e.host(t, alice, "guid-a", "dm")

	_, body := e.call(t, http.MethodGet, "/server/migrate", url.Values{"auth": {bob}, "id": {id}, "guid": {"guid-b"}})
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Lobby not found", body["message"])
	assert.Equal(t, "guid-a", e.find(t, alice, "dm")[0]["host-GUID"])

	_, body = e.call(t, http.MethodGet, "/server/migrate", url.Values{"auth": {alice}, "id": {id}, "guid": {"guid-a2"}})
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "guid-a2", e.find(t, alice, "dm")[0]["host-GUID"])
}

func TestMigrate_UnknownLobby(t *testing.T) {
	e := setup(t, handler.Options{})
	token := e.login(t, "alice")

	code, body := e.call(t, http.MethodGet, "/server/migrate", url.Values{
		"auth": {token}, "id": {"00000000000000000000000000000000"}, "guid": {"g"},
	})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, map[string]any{"success": false, "message": "Lobby not found"}, body)
}

func TestMalformedID(t *testing.T) {
	e := setup(t, handler.Options{})
	token := e.login(t, "alice")

	code, body := e.call(t, http.MethodPost, "/server/renew", url.Values{"auth": {token}, "id": {"xyz"}})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, false, body["success"])

	code, _ = e.call(t, http.MethodGet, "/server/migrate", url.Values{"auth": {token}, "id": {"xyz"}, "guid": {"g"}})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = e.call(t, http.MethodPost, "/server/remove", url.Values{"auth": {token}})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestMalformedID_Legacy(t *testing.T) {
	e := setup(t, handler.Options{LegacyErrorBodies: true})
	token := e.login(t, "alice")

	code, body := e.call(t, http.MethodPost, "/server/renew", url.Values{"auth": {token}, "id": {"xyz"}})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, body["success"])
	assert.NotEmpty(t, body["message"])
}

func TestWatch(t *testing.T) {
	e := setup(t, handler.Options{})
	token := e.login(t, "alice")

	srv := httptest.NewServer(e.router)
	defer srv.Close()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		srv.URL+"/server/watch?"+url.Values{"auth": {token}, "game_mode": {"dm"}}.Encode(), nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")
	require.Eventually(t, func() bool { return e.hub.Watchers("dm") == 1 }, time.Second, 10*time.Millisecond)

	e.host(t, token, "guid-1", "ctf")
	id := e.host(t, token, "guid-2", "dm")

	scanner := bufio.NewScanner(resp.Body)
	var event hub.Event
	for scanner.Scan() {
		line := scanner.Text()
		if data, ok := strings.CutPrefix(line, "data:"); ok {
			require.NoError(t, json.Unmarshal([]byte(data), &event))
			break
		}
	}
	require.NoError(t, scanner.Err())

	assert.Equal(t, hub.EventHosted, event.Type)
	payload := event.Payload.(map[string]any)
	assert.Equal(t, id, payload["id"])
	assert.Equal(t, "dm", payload["game-mode"])
}

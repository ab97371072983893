package websocket

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamasit07/reversi-online/backend/internal/domain"
	"github.com/iamasit07/reversi-online/backend/internal/msgcat"
	"github.com/iamasit07/reversi-online/backend/internal/repository/memory"
	"github.com/iamasit07/reversi-online/backend/internal/service/audit"
	"github.com/iamasit07/reversi-online/backend/internal/service/game"
	"github.com/iamasit07/reversi-online/backend/internal/service/session"
	"github.com/iamasit07/reversi-online/backend/pkg/auth"
)

type testServer struct {
	url      string
	store    *memory.Store
	recorder *audit.Recorder
	sessions *game.SessionManager
	conns    *ConnectionManager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memory.NewStore()
	recorder := audit.NewRecorder(store, 64, time.Second, nil)
	recorder.Start()
	t.Cleanup(recorder.Close)

	messages, err := msgcat.New("")
	require.NoError(t, err)

	sessions := game.NewSessionManager(recorder, nil)
	conns := NewConnectionManager(nil)
	authService := session.NewAuthService(store, auth.NewIssuer("test-secret", time.Hour), nil, time.Hour, nil)
	h := NewHandler(conns, sessions, authService, recorder, messages, nil, nil)

	srv := httptest.NewServer(http.HandlerFunc(h.HandleWebSocket))
	t.Cleanup(srv.Close)

	return &testServer{
		url:      "ws" + strings.TrimPrefix(srv.URL, "http"),
		store:    store,
		recorder: recorder,
		sessions: sessions,
		conns:    conns,
	}
}

func (ts *testServer) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(ts.url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, typ domain.MessageType, content any) {
	t.Helper()
	env, err := domain.NewEnvelope(typ, nil, content)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(env))
}

// expect reads until a message of type typ arrives, skipping membership
// broadcasts, and decodes its content into out.
func expect(t *testing.T, conn *websocket.Conn, typ domain.MessageType, out any) {
	t.Helper()
	for {
		conn.SetReadDeadline(time.Now().Add(3 * time.Second))
		var env domain.Envelope
		require.NoError(t, conn.ReadJSON(&env))
		if env.Type == domain.MsgMembers && typ != domain.MsgMembers {
			continue
		}
		require.Equal(t, typ, env.Type, "content: %s", string(env.Content))
		if out != nil {
			require.NoError(t, json.Unmarshal(env.Content, out))
		}
		return
	}
}

func expectError(t *testing.T, conn *websocket.Conn, code domain.ErrorCode) {
	t.Helper()
	var payload domain.ErrorPayload
	expect(t, conn, domain.MsgError, &payload)
	assert.Equal(t, code, payload.Code)
	assert.NotEmpty(t, payload.Message)
}

func expectClosed(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	for {
		conn.SetReadDeadline(time.Now().Add(3 * time.Second))
		if _, _, err := conn.ReadMessage(); err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				t.Fatal("connection stayed open")
			}
			return
		}
	}
}

func login(t *testing.T, conn *websocket.Conn, name string) domain.Profile {
	t.Helper()
	send(t, conn, domain.MsgProfile, domain.ProfileRequest{Name: name})
	var profile domain.Profile
	expect(t, conn, domain.MsgProfile, &profile)
	return profile
}

func TestFullGameFlow(t *testing.T) {
	ts := newTestServer(t)
	conn := ts.dial(t)

	profile := login(t, conn, "alec")
	assert.NotZero(t, profile.ID)
	assert.Equal(t, "alec", profile.Name)
	assert.NotEmpty(t, profile.Token)

	var info domain.GameInfo
	send(t, conn, domain.MsgInit, domain.GameConfig{BoardSize: 8})
	expect(t, conn, domain.MsgGameInfo, &info)
	assert.Len(t, info.LegalMoves, 4)
	assert.Equal(t, "BLACK", info.NextColor)

	send(t, conn, domain.MsgPlay, domain.MoveRequest{Row: 2, Col: 3})
	expect(t, conn, domain.MsgGameInfo, &info)
	assert.Equal(t, [2]int{4, 1}, info.Score)
	assert.Equal(t, "WHITE", info.NextColor)
	afterPlay := info

	send(t, conn, domain.MsgUndo, nil)
	expect(t, conn, domain.MsgGameInfo, &info)
	assert.Equal(t, [2]int{2, 2}, info.Score)

	send(t, conn, domain.MsgRedo, nil)
	expect(t, conn, domain.MsgGameInfo, &info)
	assert.Equal(t, afterPlay, info)

	var ack domain.ResetAck
	send(t, conn, domain.MsgReset, nil)
	expect(t, conn, domain.MsgReset, &ack)
	assert.Equal(t, int64(1), ack.Count)
	send(t, conn, domain.MsgReset, nil)
	expect(t, conn, domain.MsgReset, &ack)
	assert.Equal(t, int64(2), ack.Count)

	ts.recorder.Close()
	games := ts.store.GamesFor(profile.ID)
	require.Len(t, games, 1)
	turns := ts.store.Turns(games[0])
	require.Len(t, turns, 1)
	assert.Equal(t, 4, turns[0].ScoreBlack)
}

func TestMessagesBeforeProfileAreRejected(t *testing.T) {
	ts := newTestServer(t)
	conn := ts.dial(t)

	send(t, conn, domain.MsgPlay, domain.MoveRequest{Row: 2, Col: 3})
	expectError(t, conn, domain.CodeUnauthenticated)

	login(t, conn, "alec")
}

func TestErrorsKeepConnectionOpen(t *testing.T) {
	ts := newTestServer(t)
	conn := ts.dial(t)
	login(t, conn, "alec")

	send(t, conn, domain.MsgPlay, domain.MoveRequest{Row: 2, Col: 3})
	expectError(t, conn, domain.CodeSessionNotFound)

	send(t, conn, domain.MsgInit, domain.GameConfig{BoardSize: 20})
	expectError(t, conn, domain.CodeInvalidConfig)

	send(t, conn, domain.MsgInit, domain.GameConfig{BoardSize: 6})
	expect(t, conn, domain.MsgGameInfo, nil)

	send(t, conn, domain.MsgPlay, domain.MoveRequest{Row: 0, Col: 0})
	expectError(t, conn, domain.CodeIllegalMove)

	var info domain.GameInfo
	send(t, conn, domain.MsgUndo, nil)
	expect(t, conn, domain.MsgGameInfo, &info)
	assert.Equal(t, [2]int{2, 2}, info.Score)
}

func TestUnknownTypeClosesConnection(t *testing.T) {
	ts := newTestServer(t)
	conn := ts.dial(t)
	login(t, conn, "alec")

	send(t, conn, domain.MessageType("DANCE"), nil)
	expectError(t, conn, domain.CodeProtocol)
	expectClosed(t, conn)
}

func TestMalformedJSONClosesConnection(t *testing.T) {
	ts := newTestServer(t)
	conn := ts.dial(t)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	expectError(t, conn, domain.CodeProtocol)
	expectClosed(t, conn)
}

func TestNewConnectionEvictsOldButKeepsSession(t *testing.T) {
	ts := newTestServer(t)

	first := ts.dial(t)
	login(t, first, "alec")
	send(t, first, domain.MsgInit, domain.GameConfig{BoardSize: 8})
	expect(t, first, domain.MsgGameInfo, nil)
	send(t, first, domain.MsgPlay, domain.MoveRequest{Row: 2, Col: 3})
	expect(t, first, domain.MsgGameInfo, nil)

	second := ts.dial(t)
	login(t, second, "alec")
	expectClosed(t, first)

	var info domain.GameInfo
	send(t, second, domain.MsgUndo, nil)
	expect(t, second, domain.MsgGameInfo, &info)
	assert.Equal(t, [2]int{2, 2}, info.Score)
	assert.Equal(t, 1, ts.sessions.Count())
	assert.Equal(t, 1, ts.conns.Count())
}

func TestQuitTearsDownSession(t *testing.T) {
	ts := newTestServer(t)
	conn := ts.dial(t)
	login(t, conn, "alec")
	send(t, conn, domain.MsgInit, domain.GameConfig{BoardSize: 8})
	expect(t, conn, domain.MsgGameInfo, nil)

	send(t, conn, domain.MsgQuit, nil)
	expectClosed(t, conn)
	assert.Zero(t, ts.sessions.Count())
}

func TestMembersBroadcast(t *testing.T) {
	ts := newTestServer(t)

	alice := ts.dial(t)
	login(t, alice, "alice")

	bob := ts.dial(t)
	login(t, bob, "bob")

	// alice eventually sees both members
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		var members domain.Members
		expect(t, alice, domain.MsgMembers, &members)
		if len(members.Members) == 2 {
			assert.Equal(t, "alice", members.Members[0].Name)
			assert.Equal(t, "bob", members.Members[1].Name)
			return
		}
	}
	t.Fatal("no MEMBERS broadcast with both users")
}

func TestResumeWithToken(t *testing.T) {
	ts := newTestServer(t)

	conn := ts.dial(t)
	profile := login(t, conn, "alec")

	other := ts.dial(t)
	send(t, other, domain.MsgProfile, domain.ProfileRequest{Token: profile.Token})
	var resumed domain.Profile
	expect(t, other, domain.MsgProfile, &resumed)
	assert.Equal(t, profile.ID, resumed.ID)

	bad := ts.dial(t)
	send(t, bad, domain.MsgProfile, domain.ProfileRequest{Token: "forged"})
	expectError(t, bad, domain.CodeUnauthenticated)
}

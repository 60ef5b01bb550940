package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
)

// ---------- helpers ----------

// startTestServer spins up an httptest.Server without persistence and returns
// it plus the WebSocket URL base.
func startTestServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()

	hub := NewHub(DefaultConfig(), nil, nil)
	go hub.Run()

	mux := SetupRoutes(hub, "")
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	return srv, wsURL
}

// dialWS opens a named WebSocket connection to the test server.
func dialWS(t *testing.T, wsURL, name string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"?name="+name, nil)
	if err != nil {
		t.Fatalf("dial WS: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readMsg reads one JSON message and returns it as a map.
func readMsg(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read WS: %v", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("unmarshal %q: %v", raw, err)
	}
	return m
}

// readUntil skips messages until one of the wanted type arrives.
func readUntil(t *testing.T, conn *websocket.Conn, msgType string) map[string]interface{} {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		m := readMsg(t, conn)
		if m["type"] == msgType {
			return m
		}
	}
	t.Fatalf("never received %q", msgType)
	return nil
}

func sendMsg(t *testing.T, conn *websocket.Conn, msg interface{}) {
	t.Helper()
	raw, _ := json.Marshal(msg)
	if err := conn.WriteMessage(websocket.TextMessage, raw); err != nil {
		t.Fatalf("write WS: %v", err)
	}
}

// createRoom drives the create flow past welcome and returns the join code.
func createRoom(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	readUntil(t, conn, MsgWelcome)
	sendMsg(t, conn, map[string]string{"type": MsgCreateRoom})
	init := readUntil(t, conn, MsgInit)
	return init["roomId"].(string)
}

// ---------- tests ----------

func TestConnectRequiresName(t *testing.T) {
	srv, _ := startTestServer(t)

	resp, err := http.Get(srv.URL + "/ws")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("nameless connect should be rejected with 400, got %d", resp.StatusCode)
	}

	resp2, err := http.Get(srv.URL + "/ws?name=%20%20")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusBadRequest {
		t.Errorf("whitespace name should be rejected, got %d", resp2.StatusCode)
	}
}

func TestWelcomeOnConnect(t *testing.T) {
	_, wsURL := startTestServer(t)
	conn := dialWS(t, wsURL, "Alice")

	welcome := readMsg(t, conn)
	if welcome["type"] != MsgWelcome {
		t.Fatalf("expected welcome first, got %v", welcome["type"])
	}
	if welcome["yourName"] != "Alice" {
		t.Errorf("expected yourName Alice, got %v", welcome["yourName"])
	}
	if welcome["yourID"] == "" {
		t.Error("welcome should carry a session id")
	}
}

func TestCreateRoomFlow(t *testing.T) {
	_, wsURL := startTestServer(t)
	conn := dialWS(t, wsURL, "Alice")

	welcome := readUntil(t, conn, MsgWelcome)
	sendMsg(t, conn, map[string]string{"type": MsgCreateRoom})

	init := readUntil(t, conn, MsgInit)
	if init["selfId"] != welcome["yourID"] {
		t.Error("init selfId should match the welcome id")
	}
	code, _ := init["roomId"].(string)
	if len(code) != 6 {
		t.Errorf("expected 6-char room code, got %q", code)
	}
	mapInfo, ok := init["map"].(map[string]interface{})
	if !ok || mapInfo["width"].(float64) != 800 {
		t.Errorf("init should carry the map: %v", init["map"])
	}
	players := init["players"].([]interface{})
	if len(players) != 1 {
		t.Errorf("creator should be the only player, got %d", len(players))
	}

	// A second create on the same connection is rejected.
	sendMsg(t, conn, map[string]string{"type": MsgCreateRoom})
	errMsg := readUntil(t, conn, MsgError)
	if errMsg["message"] != "already in a room" {
		t.Errorf("unexpected error text: %v", errMsg["message"])
	}
}

func TestJoinRoomFlow(t *testing.T) {
	_, wsURL := startTestServer(t)
	conn1 := dialWS(t, wsURL, "Alice")
	code := createRoom(t, conn1)

	conn2 := dialWS(t, wsURL, "Bob")
	readUntil(t, conn2, MsgWelcome)
	sendMsg(t, conn2, map[string]string{"type": MsgJoinRoom, "roomId": code})

	init := readUntil(t, conn2, MsgInit)
	players := init["players"].([]interface{})
	if len(players) != 2 {
		t.Errorf("joiner should see both players, got %d", len(players))
	}

	notice := readUntil(t, conn1, MsgNewPlayer)
	player := notice["player"].(map[string]interface{})
	if player["name"] != "Bob" {
		t.Errorf("existing member should learn the joiner's name, got %v", player["name"])
	}

	// Lowercase code works too.
	conn3 := dialWS(t, wsURL, "Cara")
	readUntil(t, conn3, MsgWelcome)
	sendMsg(t, conn3, map[string]string{"type": MsgJoinRoom, "roomId": strings.ToLower(code)})
	readUntil(t, conn3, MsgInit)
}

func TestJoinUnknownRoom(t *testing.T) {
	_, wsURL := startTestServer(t)
	conn := dialWS(t, wsURL, "Alice")
	readUntil(t, conn, MsgWelcome)

	sendMsg(t, conn, map[string]string{"type": MsgJoinRoom, "roomId": "ZZZZZZ"})
	errMsg := readUntil(t, conn, MsgError)
	if errMsg["message"] != "room not found" {
		t.Errorf("unexpected error text: %v", errMsg["message"])
	}
}

func TestInputDrivesSnapshots(t *testing.T) {
	_, wsURL := startTestServer(t)
	conn := dialWS(t, wsURL, "Alice")
	createRoom(t, conn)

	sendMsg(t, conn, map[string]interface{}{
		"type":   MsgInput,
		"inputs": map[string]bool{"right": true},
	})

	first := readUntil(t, conn, MsgGameState)
	second := readUntil(t, conn, MsgGameState)
	if second["tick"].(float64) <= first["tick"].(float64) {
		t.Errorf("snapshot ticks must increase: %v then %v", first["tick"], second["tick"])
	}
	players := first["players"].([]interface{})
	if len(players) != 1 {
		t.Errorf("snapshot should carry the player, got %d", len(players))
	}
}

func TestPingPong(t *testing.T) {
	_, wsURL := startTestServer(t)
	conn := dialWS(t, wsURL, "Alice")
	readUntil(t, conn, MsgWelcome)

	sendMsg(t, conn, map[string]string{"type": MsgPing})
	readUntil(t, conn, MsgPong)
}

func TestDisconnectNotifiesRoom(t *testing.T) {
	_, wsURL := startTestServer(t)
	conn1 := dialWS(t, wsURL, "Alice")
	code := createRoom(t, conn1)

	conn2 := dialWS(t, wsURL, "Bob")
	readUntil(t, conn2, MsgWelcome)
	sendMsg(t, conn2, map[string]string{"type": MsgJoinRoom, "roomId": code})
	readUntil(t, conn2, MsgInit)
	readUntil(t, conn1, MsgNewPlayer)

	conn2.Close()
	readUntil(t, conn1, MsgPlayerLeft)
}

func TestBinarySnapshots(t *testing.T) {
	_, wsURL := startTestServer(t)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"?name=Alice&bin=1", nil)
	if err != nil {
		t.Fatalf("dial WS: %v", err)
	}
	defer conn.Close()

	// Control messages stay JSON even in binary mode.
	readUntil(t, conn, MsgWelcome)
	sendMsg(t, conn, map[string]string{"type": MsgCreateRoom})
	readUntil(t, conn, MsgInit)

	sendMsg(t, conn, map[string]interface{}{
		"type":   MsgInput,
		"inputs": map[string]bool{"down": true},
	})

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		msgType, raw, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read WS: %v", err)
		}
		if msgType != websocket.BinaryMessage {
			continue
		}
		var snap GameStateMsg
		if err := msgpack.Unmarshal(raw, &snap); err != nil {
			t.Fatalf("msgpack unmarshal: %v", err)
		}
		if snap.Type != MsgGameState || snap.Tick == 0 || len(snap.Players) != 1 {
			t.Fatalf("bad binary snapshot: %+v", snap)
		}
		return
	}
	t.Fatal("never received a binary snapshot")
}

func TestAccountsUnavailableWithoutDB(t *testing.T) {
	_, wsURL := startTestServer(t)
	conn := dialWS(t, wsURL, "Alice")
	readUntil(t, conn, MsgWelcome)

	sendMsg(t, conn, map[string]string{"type": MsgRegister, "username": "alice", "password": "secret"})
	errMsg := readUntil(t, conn, MsgError)
	if errMsg["message"] != "accounts unavailable" {
		t.Errorf("unexpected error text: %v", errMsg["message"])
	}
}

func TestHealthAndMetricsEndpoints(t *testing.T) {
	srv, wsURL := startTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("healthz should be 200, got %d", resp.StatusCode)
	}

	// Metrics for a missing room is a 404.
	resp, _ = http.Get(srv.URL + "/metrics?room=ZZZZZZ")
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown room metrics should 404, got %d", resp.StatusCode)
	}

	conn := dialWS(t, wsURL, "Alice")
	code := createRoom(t, conn)

	resp, err = http.Get(srv.URL + "/metrics?room=" + code)
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	defer resp.Body.Close()
	var payload map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode metrics: %v", err)
	}
	if payload["room"] != code || payload["players"].(float64) != 1 {
		t.Errorf("bad metrics payload: %v", payload)
	}
}

func TestQREndpoint(t *testing.T) {
	srv, wsURL := startTestServer(t)

	resp, _ := http.Get(srv.URL + "/qr?room=ZZZZZZ")
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown room qr should 404, got %d", resp.StatusCode)
	}

	conn := dialWS(t, wsURL, "Alice")
	code := createRoom(t, conn)

	resp, err := http.Get(srv.URL + "/qr?room=" + code)
	if err != nil {
		t.Fatalf("qr: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("qr should be 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("expected image/png, got %q", ct)
	}
}

package main

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	writeWait         = 10 * time.Second
	pongWait          = 60 * time.Second
	pingPeriod        = (pongWait * 9) / 10
	maxMessageSize    = 4096
	sendBufSize       = 256
	maxMessagesPerSec = 60
	maxNameLen        = 16
)

// Client is the per-connection session record: identity, display name and the
// current room handle all live here, never on shared state.
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	playerID   string
	name       string
	remoteAddr string
	room       *Room
	binary     bool // snapshots as msgpack instead of JSON

	msgCount   int
	msgResetAt time.Time

	// Account state; zero values mean guest.
	authPlayerID int64
	authUsername string
}

// NewClient creates a session for an upgraded connection.
func NewClient(hub *Hub, conn *websocket.Conn, remoteAddr, name string, binary bool) *Client {
	return &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, sendBufSize),
		playerID:   GenerateID(8),
		name:       name,
		remoteAddr: remoteAddr,
		binary:     binary,
	}
}

// ReadPump reads messages from the WebSocket connection
func (c *Client) ReadPump() {
	defer func() {
		c.hub.TrackDisconnect(c.remoteAddr)
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				Log.Warnf("ws error: %v", err)
			}
			break
		}

		// Rate limiting
		now := time.Now()
		if now.After(c.msgResetAt) {
			c.msgCount = 0
			c.msgResetAt = now.Add(time.Second)
		}
		c.msgCount++
		if c.msgCount > maxMessagesPerSec {
			Log.Warnf("rate limit exceeded for %s, disconnecting", c.remoteAddr)
			break
		}

		c.handleMessage(message)
	}
}

// WritePump writes messages to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			// 0xFF marker distinguishes binary frames queued by SendSnapshot
			var err error
			if len(message) > 0 && message[0] == 0xFF {
				err = c.conn.WriteMessage(websocket.BinaryMessage, message[1:])
			} else {
				err = c.conn.WriteMessage(websocket.TextMessage, message)
			}
			if err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendJSON sends a JSON message to the client
func (c *Client) SendJSON(msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		Log.Errorf("marshal error: %v", err)
		return
	}
	c.sendRaw(data)
}

// SendSnapshot sends a tick snapshot in the encoding this session negotiated.
func (c *Client) SendSnapshot(snap *GameStateMsg) {
	if !c.binary {
		c.SendJSON(snap)
		return
	}
	data, err := msgpack.Marshal(snap)
	if err != nil {
		Log.Errorf("msgpack marshal error: %v", err)
		return
	}
	msg := make([]byte, len(data)+1)
	msg[0] = 0xFF
	copy(msg[1:], data)
	c.sendRaw(msg)
}

func (c *Client) sendRaw(data []byte) {
	defer func() { recover() }()
	select {
	case c.send <- data:
	default:
		// Client too slow, drop message
	}
}

func (c *Client) sendError(text string) {
	c.SendJSON(ErrorMsg{Type: MsgError, Message: text})
}

// handleMessage routes one inbound message. Malformed payloads are logged
// and ignored; the connection stays open.
func (c *Client) handleMessage(raw []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		Log.Warnf("unmarshal error from %s: %v", c.remoteAddr, err)
		return
	}

	switch msg.Type {
	case MsgCreateRoom:
		c.handleCreateRoom()
	case MsgJoinRoom:
		c.handleJoinRoom(msg.RoomID)
	case MsgInput:
		c.handleInput(msg.Inputs)
	case MsgPing:
		c.SendJSON(PongMsg{Type: MsgPong})
	case MsgRegister:
		c.handleRegister(msg.Username, msg.Password)
	case MsgLogin:
		c.handleLogin(msg.Username, msg.Password)
	case MsgAuth:
		c.handleAuth(msg.Token)
	}
}

func (c *Client) handleCreateRoom() {
	if c.room != nil {
		c.sendError("already in a room")
		return
	}
	room := c.hub.rooms.CreateRoom()
	if room == nil {
		c.sendError("too many active rooms")
		return
	}
	if _, err := room.Join(c.playerID, c.name, c.authPlayerID, c); err != nil {
		c.sendError(err.Error())
		return
	}
	c.room = room
}

func (c *Client) handleJoinRoom(code string) {
	if c.room != nil {
		c.sendError("already in a room")
		return
	}
	if code == "" {
		c.sendError("room not found")
		return
	}
	room := c.hub.rooms.GetRoom(code)
	if room == nil {
		c.sendError("room not found")
		return
	}
	if _, err := room.Join(c.playerID, c.name, c.authPlayerID, c); err != nil {
		c.sendError(err.Error())
		return
	}
	c.room = room
}

func (c *Client) handleInput(axes *InputAxes) {
	if c.room == nil || axes == nil {
		return
	}
	c.room.HandleInput(c.playerID, *axes)
}

// leaveRoom detaches the session from its room, if any. Called on transport
// close and never from the room itself.
func (c *Client) leaveRoom() {
	if c.room != nil {
		c.room.Leave(c.playerID)
		c.room = nil
	}
}

func (c *Client) handleRegister(username, password string) {
	if c.hub.auth == nil {
		c.sendError("accounts unavailable")
		return
	}
	id, token, err := c.hub.auth.Register(username, password)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	c.authPlayerID = id
	c.authUsername = username
	c.SendJSON(AuthOKMsg{Type: MsgAuthOK, Token: token, Username: username, PlayerID: id})
}

func (c *Client) handleLogin(username, password string) {
	if c.hub.auth == nil {
		c.sendError("accounts unavailable")
		return
	}
	id, token, err := c.hub.auth.Login(username, password, c.remoteAddr)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	c.authPlayerID = id
	c.authUsername = username
	c.SendJSON(AuthOKMsg{Type: MsgAuthOK, Token: token, Username: username, PlayerID: id})
}

func (c *Client) handleAuth(token string) {
	if c.hub.auth == nil {
		c.sendError("accounts unavailable")
		return
	}
	id, username, err := c.hub.auth.ValidateToken(token)
	if err != nil {
		c.sendError("invalid token")
		return
	}
	c.authPlayerID = id
	c.authUsername = username
	c.SendJSON(AuthOKMsg{Type: MsgAuthOK, Token: token, Username: username, PlayerID: id})
}

package main

// Client -> Server message types
const (
	MsgCreateRoom = "create_room"
	MsgJoinRoom   = "join_room"
	MsgInput      = "input"
	MsgPing       = "ping"
	MsgRegister   = "register" // optional account creation
	MsgLogin      = "login"
	MsgAuth       = "auth" // resume with a token
)

// Server -> Client message types
const (
	MsgWelcome    = "welcome"
	MsgInit       = "INIT"
	MsgNewPlayer  = "NEW_PLAYER"
	MsgPlayerLeft = "PLAYER_LEFT"
	MsgGameState  = "GAME_STATE"
	MsgGameOver   = "GAME_OVER"
	MsgPong       = "pong"
	MsgError      = "error"
	MsgAuthOK     = "auth_ok"
)

// ClientMessage covers every inbound message; Type selects which fields matter.
type ClientMessage struct {
	Type     string     `json:"type"`
	RoomID   string     `json:"roomId,omitempty"`
	Inputs   *InputAxes `json:"inputs,omitempty"`
	Username string     `json:"username,omitempty"`
	Password string     `json:"password,omitempty"`
	Token    string     `json:"token,omitempty"`
}

// WelcomeMsg is sent once per connection after the name gate passes.
type WelcomeMsg struct {
	Type     string `json:"type"`
	YourID   string `json:"yourID"`
	YourName string `json:"yourName"`
}

// MapInfo is the immutable map blob sent in INIT.
type MapInfo struct {
	Width     float64    `json:"width"`
	Height    float64    `json:"height"`
	Obstacles []Obstacle `json:"obstacles"`
}

// PlayerInfo is the full join-time player description.
type PlayerInfo struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Score int     `json:"score"`
	Color string  `json:"color"`
}

// InitMsg is the full room snapshot a player receives on join.
type InitMsg struct {
	Type    string       `json:"type"`
	SelfID  string       `json:"selfId"`
	RoomID  string       `json:"roomId"`
	Map     MapInfo      `json:"map"`
	Players []PlayerInfo `json:"players"`
	Coin    *CoinState   `json:"coin"`
}

// NewPlayerMsg tells existing members about a joiner.
type NewPlayerMsg struct {
	Type   string     `json:"type"`
	Player PlayerInfo `json:"player"`
}

// PlayerLeftMsg tells remaining members about a departure.
type PlayerLeftMsg struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// PlayerState is one player's entry in a tick snapshot.
type PlayerState struct {
	ID    string `json:"id" msgpack:"id"`
	X     int    `json:"x" msgpack:"x"`
	Y     int    `json:"y" msgpack:"y"`
	Score int    `json:"score" msgpack:"score"`
}

// CoinState is the coin's wire representation.
type CoinState struct {
	ID string  `json:"id" msgpack:"id"`
	X  float64 `json:"x" msgpack:"x"`
	Y  float64 `json:"y" msgpack:"y"`
}

// GameStateMsg is the authoritative snapshot broadcast after a tick.
// Clients discard any snapshot whose tick is not newer than the last applied.
// Coin is deliberately not omitempty: null means "no coin right now".
type GameStateMsg struct {
	Type    string        `json:"type" msgpack:"type"`
	Tick    uint64        `json:"tick" msgpack:"tick"`
	Players []PlayerState `json:"players" msgpack:"players"`
	Coin    *CoinState    `json:"coin" msgpack:"coin"`
}

// GameOverMsg is the terminal room broadcast.
type GameOverMsg struct {
	Type       string `json:"type"`
	WinnerID   string `json:"winnerId"`
	WinnerName string `json:"winnerName"`
	Message    string `json:"message,omitempty"`
}

// PongMsg replies to a ping for round-trip measurement.
type PongMsg struct {
	Type string `json:"type"`
}

// ErrorMsg surfaces a rejected operation to the offending client only.
type ErrorMsg struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// AuthOKMsg confirms register/login/token resume.
type AuthOKMsg struct {
	Type     string `json:"type"`
	Token    string `json:"token"`
	Username string `json:"username"`
	PlayerID int64  `json:"playerId"`
}

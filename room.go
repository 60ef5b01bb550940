package main

import (
	"errors"
	"sync"
	"time"
)

// ErrRoomFull rejects joins beyond the configured player cap.
var ErrRoomFull = errors.New("room is full")

// ErrGameOver rejects joins to a room whose game already finished.
var ErrGameOver = errors.New("game already ended")

// ErrRoomClosed rejects joins to a room whose tick loop has been torn down.
var ErrRoomClosed = errors.New("room is closed")

// Broadcaster is the outbound half of a session as the room sees it.
type Broadcaster interface {
	SendJSON(msg interface{})
	// SendSnapshot lets the session pick its snapshot encoding (JSON or
	// binary msgpack) without the room knowing.
	SendSnapshot(snap *GameStateMsg)
}

// Room owns one map, one player set, one coin and one score table, and runs
// the authoritative simulation for them. All state is mutated under mu, by
// the tick loop and by the join/leave lifecycle; nothing else writes.
//
// Lifecycle: Active -> GameOver (terminal). Once a winner is declared the
// ticker stops for good and no further positions change.
type Room struct {
	mu sync.Mutex

	code    string
	cfg     Config
	gameMap *GameMap
	engine  *Engine

	players map[string]*Player
	order   []string // join order; keeps per-tick iteration deterministic
	clients map[string]Broadcaster
	spawns  []SpawnPoint // FIFO pool, points return on departure

	coin          *Coin
	respawnAtTick uint64 // 0 = no respawn scheduled

	tick    uint64
	active  bool
	stopped bool
	stop    chan struct{}

	metrics *RoomMetrics
	mirror  *Mirror
	onEmpty func(code string)
}

// NewRoom creates a room with a freshly generated map and an initial coin.
// Call Run to start the tick loop.
func NewRoom(code string, cfg Config, mirror *Mirror) *Room {
	m := GenerateMap(cfg.MaxPlayers, cfg.PlayerSize)
	r := &Room{
		code:    code,
		cfg:     cfg,
		gameMap: m,
		engine:  NewEngine(cfg, m),
		players: make(map[string]*Player),
		clients: make(map[string]Broadcaster),
		spawns:  append([]SpawnPoint(nil), m.SpawnPoints...),
		active:  true,
		stop:    make(chan struct{}),
		metrics: &RoomMetrics{},
		mirror:  mirror,
	}

	r.coin = placeCoin(cfg, m)
	if r.coin == nil {
		r.respawnAtTick = r.respawnTicks()
	}

	Log.Infof("room %s created with %d walls", code, len(m.Obstacles))
	return r
}

// Run drives the fixed-rate tick loop. One goroutine per room; ticks of the
// same room never overlap.
func (r *Room) Run() {
	ticker := time.NewTicker(r.cfg.TickInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			start := time.Now()
			r.update()
			r.metrics.AddTick(time.Since(start).Nanoseconds())
		case <-r.stop:
			return
		}
	}
}

// Stop halts the tick loop. Safe to call more than once.
func (r *Room) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopLocked()
}

func (r *Room) stopLocked() {
	if !r.stopped {
		r.stopped = true
		close(r.stop)
	}
}

// Code returns the join code.
func (r *Room) Code() string { return r.code }

// PlayerCount returns the number of players currently in the room.
func (r *Room) PlayerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players)
}

// Metrics exposes the room's counters for the monitoring endpoint.
func (r *Room) Metrics() *RoomMetrics { return r.metrics }

// Join adds a player, sends it the full room snapshot, and announces it to
// everyone else. authID is 0 for guests.
func (r *Room) Join(id, name string, authID int64, client Broadcaster) (*Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.active {
		return nil, ErrGameOver
	}
	// The last departure stops the loop before the registry drops the code;
	// a lookup that raced that window must not join a dead room.
	if r.stopped {
		return nil, ErrRoomClosed
	}
	if len(r.players) >= r.cfg.MaxPlayers {
		return nil, ErrRoomFull
	}

	var spawn SpawnPoint
	if len(r.spawns) > 0 {
		spawn = r.spawns[0]
		r.spawns = r.spawns[1:]
	} else {
		// Pool exhausted (rejoin churn); fall back to the default point.
		spawn = r.gameMap.SpawnPoints[0]
	}

	p := NewPlayer(id, name, spawn)
	p.AuthID = authID
	r.players[id] = p
	r.order = append(r.order, id)
	r.clients[id] = client

	infos := make([]PlayerInfo, 0, len(r.players))
	for _, pid := range r.order {
		infos = append(infos, r.players[pid].ToInfo())
	}
	client.SendJSON(InitMsg{
		Type:   MsgInit,
		SelfID: id,
		RoomID: r.code,
		Map: MapInfo{
			Width:     r.gameMap.Width,
			Height:    r.gameMap.Height,
			Obstacles: r.gameMap.Obstacles,
		},
		Players: infos,
		Coin:    r.coin.ToState(),
	})

	notice := NewPlayerMsg{Type: MsgNewPlayer, Player: p.ToInfo()}
	for pid, c := range r.clients {
		if pid != id {
			c.SendJSON(notice)
		}
	}

	r.mirror.Track(MirrorEvent{Type: MirPlayerJoin, RoomCode: r.code, PlayerID: id, Name: name})
	r.trackRoomStateLocked()

	Log.Infof("room %s: %s (%s) joined, %d players", r.code, name, id, len(r.players))
	return p, nil
}

// Leave removes a player, returns its spawn point to the pool, and notifies
// the rest. The last departure stops the tick loop and releases the room.
func (r *Room) Leave(id string) {
	r.mu.Lock()
	p, ok := r.players[id]
	if !ok {
		r.mu.Unlock()
		return
	}
	delete(r.players, id)
	delete(r.clients, id)
	for i, pid := range r.order {
		if pid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.spawns = append(r.spawns, p.Spawn)

	notice := PlayerLeftMsg{Type: MsgPlayerLeft, ID: id}
	for _, c := range r.clients {
		c.SendJSON(notice)
	}

	r.mirror.Track(MirrorEvent{Type: MirPlayerLeave, RoomCode: r.code, PlayerID: id})
	r.trackRoomStateLocked()

	empty := len(r.players) == 0
	if empty {
		r.stopLocked()
		r.mirror.Track(MirrorEvent{Type: MirRoomClosed, RoomCode: r.code})
	}
	Log.Infof("room %s: %s left, %d players", r.code, id, len(r.players))
	r.mu.Unlock()

	if empty && r.onEmpty != nil {
		r.onEmpty(r.code)
	}
}

// HandleInput overwrites a player's buffered axis state. Last writer wins;
// there is no queue, the next tick reads whatever is current.
func (r *Room) HandleInput(id string, axes InputAxes) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.players[id]; ok {
		p.Inputs = axes
		r.metrics.IncInputs()
	}
}

// update runs one simulation step.
func (r *Room) update() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.active {
		return
	}
	r.tick++

	changed := false

	if r.coin == nil && r.respawnAtTick != 0 && r.tick >= r.respawnAtTick {
		if c := placeCoin(r.cfg, r.gameMap); c != nil {
			r.coin = c
			r.respawnAtTick = 0
			changed = true
		} else {
			// No free spot this cycle; try again after another delay.
			r.respawnAtTick = r.tick + r.respawnTicks()
		}
	}

	if len(r.players) == 0 {
		return
	}

	players := make([]*Player, 0, len(r.players))
	for _, pid := range r.order {
		players = append(players, r.players[pid])
	}

	res := r.engine.Advance(players, r.coin)
	if res.Moved {
		changed = true
	}

	if res.CoinEater != nil {
		eater := res.CoinEater
		eater.Score++
		r.coin = nil
		changed = true
		r.metrics.IncCoins()

		if eater.Score >= r.cfg.WinningScore {
			r.gameOverLocked(eater)
			return
		}
		r.respawnAtTick = r.tick + r.respawnTicks()
	}

	if changed {
		r.broadcastSnapshotLocked()
	}
}

// gameOverLocked declares the winner, broadcasts the terminal message and
// stops the loop permanently. Caller holds mu.
func (r *Room) gameOverLocked(winner *Player) {
	r.active = false
	r.stopLocked()

	msg := GameOverMsg{
		Type:       MsgGameOver,
		WinnerID:   winner.ID,
		WinnerName: winner.Name,
		Message:    "Game Over! " + winner.Name + " wins!",
	}
	clients := r.clientsSnapshotLocked()
	r.deliver(func() {
		for _, c := range clients {
			c.SendJSON(msg)
		}
	})

	r.mirror.Track(MirrorEvent{
		Type: MirGameOver, RoomCode: r.code,
		PlayerID: winner.ID, Name: winner.Name, Count: winner.Score,
	})
	for _, p := range r.players {
		if p.AuthID != 0 {
			r.mirror.Track(MirrorEvent{Type: MirStats, AuthID: p.AuthID, Won: p.ID == winner.ID})
		}
	}

	Log.Infof("room %s: game over, winner %s (%s)", r.code, winner.Name, winner.ID)
}

// broadcastSnapshotLocked serializes the tick result once and hands it to
// every session. Caller holds mu.
func (r *Room) broadcastSnapshotLocked() {
	snap := &GameStateMsg{
		Type:    MsgGameState,
		Tick:    r.tick,
		Players: make([]PlayerState, 0, len(r.players)),
		Coin:    r.coin.ToState(),
	}
	for _, pid := range r.order {
		snap.Players = append(snap.Players, r.players[pid].ToState())
	}

	clients := r.clientsSnapshotLocked()
	r.deliver(func() {
		for _, c := range clients {
			c.SendSnapshot(snap)
		}
	})
	r.metrics.IncSnapshots()
}

func (r *Room) clientsSnapshotLocked() []Broadcaster {
	clients := make([]Broadcaster, 0, len(r.clients))
	for _, c := range r.clients {
		clients = append(clients, c)
	}
	return clients
}

// deliver applies the optional artificial broadcast delay. The delay is
// constant per room so snapshots never reorder relative to each other, and
// clients drop stale ticks anyway.
func (r *Room) deliver(send func()) {
	if r.cfg.BroadcastDelay > 0 {
		time.AfterFunc(r.cfg.BroadcastDelay, send)
		return
	}
	send()
}

func (r *Room) respawnTicks() uint64 {
	t := uint64(r.cfg.CoinRespawnDelay / r.cfg.TickInterval())
	if t == 0 {
		t = 1
	}
	return t
}

// trackRoomStateLocked mirrors the room's occupancy. Caller holds mu.
func (r *Room) trackRoomStateLocked() {
	status := "open"
	if len(r.players) >= r.cfg.MaxPlayers {
		status = "full"
	}
	if !r.active {
		status = "finished"
	}
	r.mirror.Track(MirrorEvent{
		Type: MirRoomState, RoomCode: r.code,
		Count: len(r.players), Max: r.cfg.MaxPlayers, Status: status,
	})
}

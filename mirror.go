package main

import (
	"sync"
	"time"
)

// Mirror event types
const (
	MirRoomState   = "room_state"
	MirRoomClosed  = "room_closed"
	MirPlayerJoin  = "player_join"
	MirPlayerLeave = "player_leave"
	MirUserSeen    = "user_seen"
	MirGameOver    = "game_over"
	MirStats       = "stats"
)

// MirrorEvent is one metadata change bound for the database.
type MirrorEvent struct {
	Type      string
	RoomCode  string
	PlayerID  string
	Name      string
	Count     int
	Max       int
	Status    string
	AuthID    int64
	Won       bool
	Timestamp time.Time
}

// Mirror batches room/session metadata into SQLite off the hot path. Events
// are fire-and-forget: a full queue drops them, a write error only logs. The
// simulation never blocks on the store.
type Mirror struct {
	db     *DB
	events chan MirrorEvent

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

const (
	mirrorQueueSize  = 1024
	mirrorBatchSize  = 50
	mirrorFlushEvery = 5 * time.Second
)

// NewMirror starts the writer goroutine. db must be non-nil.
func NewMirror(db *DB) *Mirror {
	m := &Mirror{
		db:     db,
		events: make(chan MirrorEvent, mirrorQueueSize),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go m.run()
	return m
}

// Track queues an event. Safe on a nil Mirror and never blocks; events are
// dropped when the queue is full.
func (m *Mirror) Track(evt MirrorEvent) {
	if m == nil {
		return
	}
	evt.Timestamp = time.Now()
	select {
	case m.events <- evt:
	default:
		Log.Debugf("mirror queue full, dropping %s event", evt.Type)
	}
}

// Stop flushes pending events and stops the writer.
func (m *Mirror) Stop() {
	if m == nil {
		return
	}
	m.stopOnce.Do(func() {
		close(m.stop)
	})
	<-m.done
}

func (m *Mirror) run() {
	defer close(m.done)

	ticker := time.NewTicker(mirrorFlushEvery)
	defer ticker.Stop()

	batch := make([]MirrorEvent, 0, mirrorBatchSize)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		for _, evt := range batch {
			if err := m.apply(evt); err != nil {
				Log.Warnf("mirror write failed (%s): %v", evt.Type, err)
			}
		}
		batch = batch[:0]
	}

	for {
		select {
		case evt := <-m.events:
			batch = append(batch, evt)
			if len(batch) >= mirrorBatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-m.stop:
			// Drain whatever is already queued, then flush once.
			for {
				select {
				case evt := <-m.events:
					batch = append(batch, evt)
				default:
					flush()
					return
				}
			}
		}
	}
}

func (m *Mirror) apply(evt MirrorEvent) error {
	switch evt.Type {
	case MirRoomState:
		return m.db.UpsertRoom(evt.RoomCode, evt.Count, evt.Max, evt.Status)
	case MirRoomClosed:
		return m.db.DeleteRoom(evt.RoomCode)
	case MirPlayerJoin:
		return m.db.AddRoomPlayer(evt.RoomCode, evt.PlayerID, evt.Name)
	case MirPlayerLeave:
		return m.db.RemoveRoomPlayer(evt.RoomCode, evt.PlayerID)
	case MirUserSeen:
		return m.db.MarkSessionSeen(evt.PlayerID, evt.Name)
	case MirGameOver:
		return m.db.RecordResult(evt.RoomCode, evt.PlayerID, evt.Name, evt.Count)
	case MirStats:
		return m.db.AddGameResult(evt.AuthID, evt.Won)
	}
	return nil
}

package main

import (
	"strings"
	"sync"
)

const (
	maxRooms     = 100
	roomCodeLen  = 3 // bytes of entropy; hex-encodes to a 6-char code
	codeAttempts = 10
)

// RoomManager maps short join codes to live rooms. Created once at server
// start; entries are inserted on creation and removed when the last player
// leaves, so a code can recur later but never names two live rooms at once.
type RoomManager struct {
	mu     sync.RWMutex
	rooms  map[string]*Room
	cfg    Config
	mirror *Mirror
}

// NewRoomManager creates an empty registry.
func NewRoomManager(cfg Config, mirror *Mirror) *RoomManager {
	return &RoomManager{
		rooms:  make(map[string]*Room),
		cfg:    cfg,
		mirror: mirror,
	}
}

// CreateRoom mints a fresh code, starts the room loop and registers it.
// Returns nil if the server is at its room limit.
func (rm *RoomManager) CreateRoom() *Room {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if len(rm.rooms) >= maxRooms {
		return nil
	}

	code := rm.mintCodeLocked()
	room := NewRoom(code, rm.cfg, rm.mirror)
	room.onEmpty = rm.remove
	rm.rooms[code] = room
	go room.Run()
	return room
}

// GetRoom looks up a live room by code; nil if absent.
func (rm *RoomManager) GetRoom(code string) *Room {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return rm.rooms[strings.ToUpper(code)]
}

// RoomCount returns the number of live rooms.
func (rm *RoomManager) RoomCount() int {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return len(rm.rooms)
}

func (rm *RoomManager) remove(code string) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	if room, ok := rm.rooms[code]; ok {
		room.Stop()
		delete(rm.rooms, code)
		Log.Infof("room %s released", code)
	}
}

// mintCodeLocked derives a human-enterable code from a random id, truncated
// and upper-cased. Collisions among live rooms are retried.
func (rm *RoomManager) mintCodeLocked() string {
	for i := 0; i < codeAttempts; i++ {
		code := strings.ToUpper(GenerateID(roomCodeLen))
		if _, taken := rm.rooms[code]; !taken {
			return code
		}
	}
	// Practically unreachable below the room limit; widen the code instead.
	return strings.ToUpper(GenerateID(roomCodeLen + 2))
}

package main

import (
	"strings"
	"testing"
)

func TestCreateAndGetRoom(t *testing.T) {
	rm := NewRoomManager(DefaultConfig(), nil)

	room := rm.CreateRoom()
	if room == nil {
		t.Fatal("create should succeed below the limit")
	}
	defer room.Stop()

	code := room.Code()
	if len(code) != 6 {
		t.Errorf("expected 6-char code, got %q", code)
	}
	if code != strings.ToUpper(code) {
		t.Errorf("code should be upper-cased: %q", code)
	}

	if rm.GetRoom(code) != room {
		t.Error("lookup by code should return the room")
	}
	// Codes are case-insensitive on lookup.
	if rm.GetRoom(strings.ToLower(code)) != room {
		t.Error("lookup should be case-insensitive")
	}
	if rm.GetRoom("NOPE99") != nil {
		t.Error("unknown code should return nil")
	}
	if rm.RoomCount() != 1 {
		t.Errorf("expected 1 room, got %d", rm.RoomCount())
	}
}

func TestRoomCodesUnique(t *testing.T) {
	rm := NewRoomManager(DefaultConfig(), nil)
	seen := make(map[string]bool)

	for i := 0; i < 20; i++ {
		room := rm.CreateRoom()
		if room == nil {
			t.Fatal("create failed below the limit")
		}
		defer room.Stop()
		if seen[room.Code()] {
			t.Fatalf("duplicate live code %q", room.Code())
		}
		seen[room.Code()] = true
	}
}

func TestLastLeaveRemovesRoom(t *testing.T) {
	rm := NewRoomManager(DefaultConfig(), nil)
	room := rm.CreateRoom()
	code := room.Code()

	if _, err := room.Join("p1", "Alice", 0, &mockBroadcaster{}); err != nil {
		t.Fatalf("join failed: %v", err)
	}
	room.Leave("p1")

	if rm.GetRoom(code) != nil {
		t.Error("empty room should be deregistered")
	}
	if rm.RoomCount() != 0 {
		t.Errorf("expected 0 rooms, got %d", rm.RoomCount())
	}
}

func TestRoomLimit(t *testing.T) {
	rm := NewRoomManager(DefaultConfig(), nil)
	for i := 0; i < maxRooms; i++ {
		room := rm.CreateRoom()
		if room == nil {
			t.Fatalf("create %d failed below the limit", i)
		}
		defer room.Stop()
	}
	if rm.CreateRoom() != nil {
		t.Error("create at the limit should return nil")
	}
}

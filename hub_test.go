package main

import "testing"

func TestHubConnLimits(t *testing.T) {
	hub := NewHub(DefaultConfig(), nil, nil)

	ip := "10.0.0.1"
	for i := 0; i < maxConnsPerIP; i++ {
		if !hub.CanAccept(ip) {
			t.Fatalf("connection %d should be accepted", i)
		}
		hub.TrackConnect(ip)
	}
	if hub.CanAccept(ip) {
		t.Error("per-IP limit should reject further connections")
	}
	if !hub.CanAccept("10.0.0.2") {
		t.Error("other IPs should still be accepted")
	}

	hub.TrackDisconnect(ip)
	if !hub.CanAccept(ip) {
		t.Error("a disconnect should free a slot")
	}
	if hub.TotalConns() != maxConnsPerIP-1 {
		t.Errorf("expected %d tracked conns, got %d", maxConnsPerIP-1, hub.TotalConns())
	}
}

func TestHubAuthRequiresDB(t *testing.T) {
	hub := NewHub(DefaultConfig(), nil, nil)
	if hub.auth != nil {
		t.Error("auth should be disabled without a database")
	}

	db := openTestDB(t)
	hub = NewHub(DefaultConfig(), db, nil)
	if hub.auth == nil {
		t.Error("auth should be enabled with a database")
	}
}

package main

import "sync/atomic"

// RoomMetrics tracks per-room counters for the /metrics endpoint. All fields
// are updated atomically so readers never touch the room lock.
type RoomMetrics struct {
	TickCount     int64
	InputsApplied int64
	SnapshotsSent int64
	CoinsEaten    int64
	TotalTickNs   int64
}

func (m *RoomMetrics) IncInputs()    { atomic.AddInt64(&m.InputsApplied, 1) }
func (m *RoomMetrics) IncSnapshots() { atomic.AddInt64(&m.SnapshotsSent, 1) }
func (m *RoomMetrics) IncCoins()     { atomic.AddInt64(&m.CoinsEaten, 1) }

func (m *RoomMetrics) AddTick(ns int64) {
	atomic.AddInt64(&m.TickCount, 1)
	atomic.AddInt64(&m.TotalTickNs, ns)
}

// Snapshot returns a read-only copy for HTTP output.
func (m *RoomMetrics) Snapshot() map[string]interface{} {
	ticks := atomic.LoadInt64(&m.TickCount)
	total := atomic.LoadInt64(&m.TotalTickNs)
	var avgMs float64
	if ticks > 0 {
		avgMs = float64(total) / float64(ticks) / 1e6
	}
	return map[string]interface{}{
		"tick_count":     ticks,
		"inputs_applied": atomic.LoadInt64(&m.InputsApplied),
		"snapshots_sent": atomic.LoadInt64(&m.SnapshotsSent),
		"coins_eaten":    atomic.LoadInt64(&m.CoinsEaten),
		"avg_tick_ms":    avgMs,
	}
}

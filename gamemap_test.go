package main

import "testing"

func TestGenerateMapInvariants(t *testing.T) {
	cfg := DefaultConfig()

	for run := 0; run < 20; run++ {
		m := GenerateMap(cfg.MaxPlayers, cfg.PlayerSize)

		if m.Width != 800 || m.Height != 600 {
			t.Fatalf("unexpected map size %vx%v", m.Width, m.Height)
		}
		if len(m.SpawnPoints) < cfg.MaxPlayers {
			t.Fatalf("expected at least %d spawn points, got %d", cfg.MaxPlayers, len(m.SpawnPoints))
		}

		for i, sp := range m.SpawnPoints {
			box := Rect{X: sp.X, Y: sp.Y, W: cfg.PlayerSize, H: cfg.PlayerSize}
			if !m.InBounds(box) {
				t.Fatalf("spawn %d out of bounds: (%v, %v)", i, sp.X, sp.Y)
			}
			if m.BlockedBy(box) {
				t.Fatalf("spawn %d inside obstacle: (%v, %v)", i, sp.X, sp.Y)
			}
		}

		minGap := cfg.PlayerSize * 1.5
		for i, o := range m.Obstacles {
			if o.X < minGap || o.X+o.W > m.Width-minGap ||
				o.Y < minGap || o.Y+o.H > m.Height-minGap {
				t.Fatalf("obstacle %d too close to the outer wall", i)
			}
			for j := i + 1; j < len(m.Obstacles); j++ {
				other := m.Obstacles[j]
				padded := Rect{
					X: other.X - minGap, Y: other.Y - minGap,
					W: other.W + 2*minGap, H: other.H + 2*minGap,
				}
				if o.rect().Overlaps(padded) {
					t.Fatalf("obstacles %d and %d leave a gap narrower than %v", i, j, minGap)
				}
			}
		}
	}
}

func TestGenerateMapDegenerateSpawnFill(t *testing.T) {
	// Even with an absurd spawn demand the pool comes back full.
	m := GenerateMap(500, 30)
	if len(m.SpawnPoints) < 500 {
		t.Fatalf("expected pool of 500, got %d", len(m.SpawnPoints))
	}
}

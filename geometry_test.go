package main

import "testing"

func TestRectOverlaps(t *testing.T) {
	a := Rect{X: 0, Y: 0, W: 10, H: 10}

	// Overlapping boxes
	if !a.Overlaps(Rect{X: 5, Y: 5, W: 10, H: 10}) {
		t.Error("boxes should overlap")
	}

	// Touching edges do not overlap
	if a.Overlaps(Rect{X: 10, Y: 0, W: 10, H: 10}) {
		t.Error("edge-touching boxes should not overlap")
	}
	if a.Overlaps(Rect{X: 0, Y: 10, W: 10, H: 10}) {
		t.Error("edge-touching boxes should not overlap")
	}

	// Fully separated
	if a.Overlaps(Rect{X: 20, Y: 20, W: 5, H: 5}) {
		t.Error("separated boxes should not overlap")
	}

	// Containment
	if !a.Overlaps(Rect{X: 2, Y: 2, W: 3, H: 3}) {
		t.Error("contained box should overlap")
	}

	// Symmetry
	b := Rect{X: 5, Y: 5, W: 10, H: 10}
	if a.Overlaps(b) != b.Overlaps(a) {
		t.Error("overlap should be symmetric")
	}
}

func TestMapBounds(t *testing.T) {
	m := &GameMap{Width: 800, Height: 600}

	if !m.InBounds(Rect{X: 0, Y: 0, W: 30, H: 30}) {
		t.Error("box at origin should be in bounds")
	}
	if !m.InBounds(Rect{X: 770, Y: 570, W: 30, H: 30}) {
		t.Error("box flush against far corner should be in bounds")
	}
	if m.InBounds(Rect{X: -1, Y: 0, W: 30, H: 30}) {
		t.Error("box past left edge should be out of bounds")
	}
	if m.InBounds(Rect{X: 771, Y: 0, W: 30, H: 30}) {
		t.Error("box past right edge should be out of bounds")
	}
	if m.InBounds(Rect{X: 0, Y: 571, W: 30, H: 30}) {
		t.Error("box past bottom edge should be out of bounds")
	}
}

func TestMapBlockedBy(t *testing.T) {
	m := &GameMap{
		Width:  800,
		Height: 600,
		Obstacles: []Obstacle{
			{X: 100, Y: 100, W: 50, H: 50},
		},
	}

	if !m.BlockedBy(Rect{X: 120, Y: 120, W: 30, H: 30}) {
		t.Error("box inside obstacle should be blocked")
	}
	if m.BlockedBy(Rect{X: 200, Y: 200, W: 30, H: 30}) {
		t.Error("box away from obstacle should not be blocked")
	}
	if m.BlockedBy(Rect{X: 150, Y: 100, W: 30, H: 30}) {
		t.Error("box touching obstacle edge should not be blocked")
	}
}

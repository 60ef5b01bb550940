package main

import "fmt"

// InputAxes is the logical state of the four movement axes. Last writer wins;
// the tick reads whatever the state is at that moment.
type InputAxes struct {
	Up    bool `json:"up"`
	Left  bool `json:"left"`
	Down  bool `json:"down"`
	Right bool `json:"right"`
}

// Displacement converts axis state into a per-tick movement vector.
// Opposite axes cancel.
func (a InputAxes) Displacement(speed float64) (dx, dy float64) {
	if a.Up {
		dy -= speed
	}
	if a.Down {
		dy += speed
	}
	if a.Left {
		dx -= speed
	}
	if a.Right {
		dx += speed
	}
	return dx, dy
}

// Player is the authoritative state of one connected player inside a room.
// Owned by exactly one room; mutated only under the room lock.
type Player struct {
	ID    string
	Name  string
	X, Y  float64
	Score int
	Color string

	Inputs InputAxes
	Spawn  SpawnPoint // returned to the pool on departure

	// AuthID links to an account row when the session logged in; 0 for guests.
	AuthID int64
}

// NewPlayer creates a player at its spawn point.
func NewPlayer(id, name string, spawn SpawnPoint) *Player {
	return &Player{
		ID:    id,
		Name:  name,
		X:     spawn.X,
		Y:     spawn.Y,
		Color: fmt.Sprintf("hsl(%d, 70%%, 50%%)", randInt(0, 359)),
		Spawn: spawn,
	}
}

// Box returns the player's bounding box for the given size.
func (p *Player) Box(size float64) Rect {
	return Rect{X: p.X, Y: p.Y, W: size, H: size}
}

// ToState converts to the per-tick snapshot entry (rounded int positions).
func (p *Player) ToState() PlayerState {
	return PlayerState{
		ID:    p.ID,
		X:     roundInt(p.X),
		Y:     roundInt(p.Y),
		Score: p.Score,
	}
}

// ToInfo converts to the full join-time description.
func (p *Player) ToInfo() PlayerInfo {
	return PlayerInfo{
		ID:    p.ID,
		Name:  p.Name,
		X:     p.X,
		Y:     p.Y,
		Score: p.Score,
		Color: p.Color,
	}
}

func roundInt(v float64) int {
	if v >= 0 {
		return int(v + 0.5)
	}
	return int(v - 0.5)
}

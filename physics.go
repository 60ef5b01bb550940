package main

// Engine advances entities by one tick. It is stateless across ticks apart
// from the positions it is handed, so the same code drives both the
// authoritative room loop and the client predictor. The movement rules are a
// server/client contract: X resolves before Y, always.
type Engine struct {
	cfg Config
	m   *GameMap
}

// NewEngine creates an engine for one map.
func NewEngine(cfg Config, m *GameMap) *Engine {
	return &Engine{cfg: cfg, m: m}
}

// TickResult reports what one call to Advance changed.
type TickResult struct {
	Moved     bool
	CoinEater *Player
}

// Advance applies each player's buffered input and checks coin pickup.
// Players are processed in slice order; the first box overlapping the coin
// is the eater, one eat per tick.
func (e *Engine) Advance(players []*Player, coin *Coin) TickResult {
	var res TickResult

	for _, p := range players {
		dx, dy := p.Inputs.Displacement(e.cfg.PlayerSpeed)
		if dx != 0 || dy != 0 {
			others := e.otherBoxes(players, p.ID)
			p.X, p.Y = e.ResolveMove(p.X, p.Y, p.Inputs, others)
			res.Moved = true
		}

		if coin != nil && res.CoinEater == nil {
			if p.Box(e.cfg.PlayerSize).Overlaps(coin.Box(e.cfg.CoinSize)) {
				res.CoinEater = p
			}
		}
	}

	return res
}

// ResolveMove computes the post-tick position for one entity given its input
// and the current boxes of every other player. Pure with respect to the
// engine: identical inputs yield identical outputs on server and client.
//
// Each axis resolves independently so a diagonal push against a wall still
// slides along it. A rejected axis applies a fixed recoil opposite the
// attempted direction; the recoil only checks bounds and obstacles (never
// other players) so two touching players cannot wedge each other in place.
// If the recoil spot is unsafe too, the axis is a no-op.
func (e *Engine) ResolveMove(x, y float64, inputs InputAxes, others []Rect) (float64, float64) {
	dx, dy := inputs.Displacement(e.cfg.PlayerSpeed)
	size := e.cfg.PlayerSize

	if dx != 0 {
		nx := x + dx
		candidate := Rect{X: nx, Y: y, W: size, H: size}
		if e.validPosition(candidate) && !overlapsAny(candidate, others) {
			x = nx
		} else {
			bounce := x - sign(dx)*e.cfg.RecoilDistance
			if e.validPosition(Rect{X: bounce, Y: y, W: size, H: size}) {
				x = bounce
			}
		}
	}

	if dy != 0 {
		ny := y + dy
		candidate := Rect{X: x, Y: ny, W: size, H: size}
		if e.validPosition(candidate) && !overlapsAny(candidate, others) {
			y = ny
		} else {
			bounce := y - sign(dy)*e.cfg.RecoilDistance
			if e.validPosition(Rect{X: x, Y: bounce, W: size, H: size}) {
				y = bounce
			}
		}
	}

	return x, y
}

// validPosition checks map bounds and obstacles only.
func (e *Engine) validPosition(r Rect) bool {
	return e.m.InBounds(r) && !e.m.BlockedBy(r)
}

func (e *Engine) otherBoxes(players []*Player, selfID string) []Rect {
	boxes := make([]Rect, 0, len(players)-1)
	for _, other := range players {
		if other.ID == selfID {
			continue
		}
		boxes = append(boxes, other.Box(e.cfg.PlayerSize))
	}
	return boxes
}

func overlapsAny(r Rect, boxes []Rect) bool {
	for _, b := range boxes {
		if r.Overlaps(b) {
			return true
		}
	}
	return false
}

package main

// Coin is the single roaming pickup of a room. The ID only exists so clients
// can key animations; it carries no meaning server-side.
type Coin struct {
	ID   string
	X, Y float64
}

// Box returns the coin's bounding box for the given size.
func (c *Coin) Box(size float64) Rect {
	return Rect{X: c.X, Y: c.Y, W: size, H: size}
}

// ToState converts to the wire representation.
func (c *Coin) ToState() *CoinState {
	if c == nil {
		return nil
	}
	return &CoinState{ID: c.ID, X: c.X, Y: c.Y}
}

// placeCoin tries to find a free spot by rejection sampling within the map
// bounds minus the margin. Returns nil when the attempt budget runs out;
// the caller simply skips this spawn cycle.
func placeCoin(cfg Config, m *GameMap) *Coin {
	margin := cfg.CoinSpawnMargin
	for attempt := 0; attempt < cfg.CoinSpawnAttempts; attempt++ {
		x := float64(randInt(int(margin), int(m.Width-margin-cfg.CoinSize)))
		y := float64(randInt(int(margin), int(m.Height-margin-cfg.CoinSize)))

		if m.BlockedBy(Rect{X: x, Y: y, W: cfg.CoinSize, H: cfg.CoinSize}) {
			continue
		}
		return &Coin{ID: GenerateID(4), X: x, Y: y}
	}
	return nil
}

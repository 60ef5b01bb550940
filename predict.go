package main

import "time"

// RemotePlayer is a non-local player as the predictor renders it: a displayed
// position chasing the latest authoritative target.
type RemotePlayer struct {
	ID      string
	X, Y    float64
	TargetX float64
	TargetY float64
	Score   int
}

// Predictor is the client side of the movement contract. It advances the
// local player through the same Engine the server runs, at the same tick
// rate, and reconciles against authoritative snapshots: exact or near-exact
// predictions are kept, small errors are pulled in gradually, and errors past
// the snap threshold are replaced outright. Remote players are interpolated
// toward their last known authoritative positions.
type Predictor struct {
	cfg    Config
	pcfg   PredictConfig
	engine *Engine

	selfID string
	inputs InputAxes
	x, y   float64

	lastTick uint64
	haveAuth bool
	authX    float64
	authY    float64

	acc time.Duration
	rtt time.Duration

	remotes map[string]*RemotePlayer
	coin    *CoinState
}

// NewPredictor creates a predictor for one joined room. The map must be the
// one received in INIT so obstacle resolution matches the server exactly.
func NewPredictor(cfg Config, pcfg PredictConfig, m *GameMap, selfID string, startX, startY float64) *Predictor {
	return &Predictor{
		cfg:     cfg,
		pcfg:    pcfg,
		engine:  NewEngine(cfg, m),
		selfID:  selfID,
		x:       startX,
		y:       startY,
		remotes: make(map[string]*RemotePlayer),
	}
}

// SetInputs replaces the held axis state used for future predicted ticks.
func (p *Predictor) SetInputs(axes InputAxes) {
	p.inputs = axes
}

// ObserveRTT folds a round-trip sample into the smoothed estimate used to
// scale the reconciliation tolerance.
func (p *Predictor) ObserveRTT(sample time.Duration) {
	if p.rtt == 0 {
		p.rtt = sample
		return
	}
	p.rtt = time.Duration(0.8*float64(p.rtt) + 0.2*float64(sample))
}

// RTT returns the smoothed round-trip estimate.
func (p *Predictor) RTT() time.Duration { return p.rtt }

// Position returns the current displayed position of the local player.
func (p *Predictor) Position() (float64, float64) { return p.x, p.y }

// Coin returns the last authoritative coin state (nil between respawns).
func (p *Predictor) Coin() *CoinState { return p.coin }

// LastAuthoritative returns the most recent server position for the local
// player, for debug overlays. ok is false before the first snapshot.
func (p *Predictor) LastAuthoritative() (x, y float64, ok bool) {
	return p.authX, p.authY, p.haveAuth
}

// Advance accumulates frame time and steps the local simulation in fixed
// ticks, mirroring the server cadence. Partial ticks carry over.
func (p *Predictor) Advance(elapsed time.Duration) {
	p.acc += elapsed
	interval := p.cfg.TickInterval()
	for p.acc >= interval {
		p.acc -= interval
		p.stepTick()
	}
}

func (p *Predictor) stepTick() {
	if !p.inputs.Up && !p.inputs.Down && !p.inputs.Left && !p.inputs.Right {
		return
	}
	// Collide against the last authoritative positions, not the smoothed
	// display positions; the server resolves against the former.
	others := make([]Rect, 0, len(p.remotes))
	for _, r := range p.remotes {
		others = append(others, Rect{X: r.TargetX, Y: r.TargetY, W: p.cfg.PlayerSize, H: p.cfg.PlayerSize})
	}
	p.x, p.y = p.engine.ResolveMove(p.x, p.y, p.inputs, others)
}

// ApplySnapshot reconciles against an authoritative tick. Snapshots that are
// not strictly newer than the last applied one are discarded; the return
// value reports whether the snapshot was applied.
func (p *Predictor) ApplySnapshot(snap *GameStateMsg) bool {
	if snap.Tick <= p.lastTick {
		return false
	}
	p.lastTick = snap.Tick
	p.coin = snap.Coin

	seen := make(map[string]bool, len(snap.Players))
	for _, ps := range snap.Players {
		seen[ps.ID] = true
		if ps.ID == p.selfID {
			p.reconcileSelf(float64(ps.X), float64(ps.Y))
			continue
		}
		r, ok := p.remotes[ps.ID]
		if !ok {
			r = &RemotePlayer{ID: ps.ID, X: float64(ps.X), Y: float64(ps.Y)}
			p.remotes[ps.ID] = r
		}
		r.TargetX = float64(ps.X)
		r.TargetY = float64(ps.Y)
		r.Score = ps.Score
	}
	for id := range p.remotes {
		if !seen[id] {
			delete(p.remotes, id)
		}
	}
	return true
}

// reconcileSelf corrects the local prediction against the server position.
// Within the latency-scaled tolerance the prediction is trusted untouched;
// between tolerance and the snap threshold the position is pulled toward the
// server by a small factor per snapshot; beyond the threshold the prediction
// is abandoned.
func (p *Predictor) reconcileSelf(authX, authY float64) {
	p.haveAuth = true
	p.authX, p.authY = authX, authY

	err := Distance(p.x, p.y, authX, authY)
	if err <= p.tolerance() {
		return
	}
	if err >= p.pcfg.SnapThreshold {
		p.x, p.y = authX, authY
		return
	}
	p.x += (authX - p.x) * p.pcfg.LocalBlend
	p.y += (authY - p.y) * p.pcfg.LocalBlend
}

// tolerance is the trusted error band: roughly the distance the player covers
// during one round trip, floored at ToleranceMin.
func (p *Predictor) tolerance() float64 {
	ticksInFlight := float64(p.rtt) / float64(p.cfg.TickInterval())
	t := p.cfg.PlayerSpeed * ticksInFlight * p.pcfg.ToleranceRTTScale
	if t < p.pcfg.ToleranceMin {
		t = p.pcfg.ToleranceMin
	}
	return t
}

// AddRemote registers a newly joined remote player at its spawn.
func (p *Predictor) AddRemote(id string, x, y float64) {
	p.remotes[id] = &RemotePlayer{ID: id, X: x, Y: y, TargetX: x, TargetY: y}
}

// RemoveRemote drops a departed player.
func (p *Predictor) RemoveRemote(id string) {
	delete(p.remotes, id)
}

// Remote returns a remote player's render state, nil if unknown.
func (p *Predictor) Remote(id string) *RemotePlayer {
	return p.remotes[id]
}

// InterpolateRemotes moves every remote player a fraction of the way toward
// its authoritative target. Called once per render frame.
func (p *Predictor) InterpolateRemotes() {
	for _, r := range p.remotes {
		r.X += (r.TargetX - r.X) * p.pcfg.RemoteBlend
		r.Y += (r.TargetY - r.Y) * p.pcfg.RemoteBlend
	}
}

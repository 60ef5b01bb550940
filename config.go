package main

import "time"

// Config holds the room simulation tunables. Movement constants must match
// the client prediction exactly, so both sides read from the same struct.
type Config struct {
	TickRate       int     // simulation ticks per second
	PlayerSpeed    float64 // pixels per tick
	RecoilDistance float64 // bounce applied opposite a blocked move
	PlayerSize     float64 // side of the square player box
	CoinSize       float64 // side of the square coin box

	WinningScore      int
	CoinRespawnDelay  time.Duration
	CoinSpawnMargin   float64 // kept clear of the map edges when placing coins
	CoinSpawnAttempts int

	MaxPlayers int

	// BroadcastDelay artificially delays snapshot delivery. Development aid
	// for testing reconciliation under latency; zero in production.
	BroadcastDelay time.Duration
}

// DefaultConfig returns the standard room settings.
func DefaultConfig() Config {
	return Config{
		TickRate:          30,
		PlayerSpeed:       5,
		RecoilDistance:    25,
		PlayerSize:        30,
		CoinSize:          15,
		WinningScore:      10,
		CoinRespawnDelay:  2 * time.Second,
		CoinSpawnMargin:   20,
		CoinSpawnAttempts: 50,
		MaxPlayers:        10,
	}
}

// TickInterval returns the duration of one simulation tick.
func (c Config) TickInterval() time.Duration {
	return time.Second / time.Duration(c.TickRate)
}

// PredictConfig holds the client-side reconciliation tunables. These are
// design parameters, not wire contracts; defaults follow the reference client.
type PredictConfig struct {
	// SnapThreshold is the prediction error beyond which the client discards
	// its prediction and adopts the authoritative position outright.
	SnapThreshold float64
	// LocalBlend is the exponential pull factor applied when the error sits
	// between the trust tolerance and the snap threshold.
	LocalBlend float64
	// RemoteBlend is the per-frame interpolation factor for remote players.
	RemoteBlend float64
	// ToleranceMin is the floor of the trust zone in pixels.
	ToleranceMin float64
	// ToleranceRTTScale widens the trust zone per tick of round-trip latency:
	// tolerance = max(ToleranceMin, speed * ticksInFlight * scale).
	ToleranceRTTScale float64
}

// DefaultPredictConfig returns reconciliation settings matching the
// reference client tuning.
func DefaultPredictConfig() PredictConfig {
	return PredictConfig{
		SnapThreshold:     50,
		LocalBlend:        0.1,
		RemoteBlend:       0.2,
		ToleranceMin:      1,
		ToleranceRTTScale: 1,
	}
}

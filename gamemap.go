package main

// GameMap is the static world a room plays on. Immutable after generation;
// a room owns exactly one for its lifetime.
type GameMap struct {
	Width     float64
	Height    float64
	Obstacles []Obstacle
	// SpawnPoints is the candidate pool handed to the room; the room manages
	// its own FIFO copy and falls back to SpawnPoints[0] on exhaustion.
	SpawnPoints []SpawnPoint
}

// Obstacle is a rectangular wall.
type Obstacle struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	W     float64 `json:"w"`
	H     float64 `json:"h"`
	Color string  `json:"color,omitempty"`
}

// SpawnPoint is a candidate player start position.
type SpawnPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (o Obstacle) rect() Rect {
	return Rect{X: o.X, Y: o.Y, W: o.W, H: o.H}
}

// BlockedBy returns true if the box overlaps any obstacle.
func (m *GameMap) BlockedBy(r Rect) bool {
	for _, obs := range m.Obstacles {
		if r.Overlaps(obs.rect()) {
			return true
		}
	}
	return false
}

// InBounds returns true if the box lies fully inside the map.
func (m *GameMap) InBounds(r Rect) bool {
	return r.X >= 0 && r.X+r.W <= m.Width && r.Y >= 0 && r.Y+r.H <= m.Height
}

// Map generation settings.
const (
	mapWidth       = 800.0
	mapHeight      = 600.0
	minObstacles   = 8
	maxObstacles   = 12
	minObstacleDim = 40
	maxObstacleDim = 150
	spawnMinDist   = 50.0 // spawn points keep this distance from each other
)

var obstacleColors = []string{"#e74c3c", "#8e44ad", "#3498db", "#e67e22", "#2ecc71", "#95a5a6"}

// GenerateMap produces a fresh map with random obstacles and at least
// numSpawns safe spawn points. Consumed once at room creation.
func GenerateMap(numSpawns int, playerSize float64) *GameMap {
	m := &GameMap{Width: mapWidth, Height: mapHeight}
	minGap := playerSize * 1.5 // gaps narrower than this could trap a player

	count := randInt(minObstacles, maxObstacles)
	attempts := 0
	maxAttempts := count * 50
	for len(m.Obstacles) < count && attempts < maxAttempts {
		attempts++

		w := float64(randInt(minObstacleDim, maxObstacleDim))
		h := float64(randInt(minObstacleDim, maxObstacleDim))
		x := float64(randInt(10, int(m.Width-w)-10))
		y := float64(randInt(10, int(m.Height-h)-10))

		// Keep a passable gap between the obstacle and the outer walls.
		if x < minGap || x+w > m.Width-minGap || y < minGap || y+h > m.Height-minGap {
			continue
		}

		candidate := Rect{X: x, Y: y, W: w, H: h}
		tooClose := false
		for _, other := range m.Obstacles {
			padded := Rect{
				X: other.X - minGap, Y: other.Y - minGap,
				W: other.W + 2*minGap, H: other.H + 2*minGap,
			}
			if candidate.Overlaps(padded) {
				tooClose = true
				break
			}
		}
		if tooClose {
			continue
		}

		m.Obstacles = append(m.Obstacles, Obstacle{
			X: x, Y: y, W: w, H: h,
			Color: obstacleColors[randInt(0, len(obstacleColors)-1)],
		})
	}

	attempts = 0
	for len(m.SpawnPoints) < numSpawns && attempts < 2000 {
		attempts++
		x := float64(randInt(20, int(m.Width)-50))
		y := float64(randInt(20, int(m.Height)-50))

		box := Rect{X: x, Y: y, W: playerSize, H: playerSize}
		if !m.InBounds(box) || m.BlockedBy(box) {
			continue
		}
		if !farFromOthers(x, y, m.SpawnPoints) {
			continue
		}
		m.SpawnPoints = append(m.SpawnPoints, SpawnPoint{X: x, Y: y})
	}

	// Degenerate maps still need a full pool; duplicates are acceptable.
	for len(m.SpawnPoints) < numSpawns {
		m.SpawnPoints = append(m.SpawnPoints, SpawnPoint{X: 50, Y: 50})
	}

	return m
}

func farFromOthers(x, y float64, points []SpawnPoint) bool {
	for _, p := range points {
		if Distance(x, y, p.X, p.Y) < spawnMinDist {
			return false
		}
	}
	return true
}

package main

// Rect is an axis-aligned bounding box.
type Rect struct {
	X, Y, W, H float64
}

// Overlaps checks if two boxes overlap (AABB test, exclusive edges).
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.X+o.W &&
		r.X+r.W > o.X &&
		r.Y < o.Y+o.H &&
		r.Y+r.H > o.Y
}

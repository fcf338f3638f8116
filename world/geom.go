package world

import "math"

// Vec2 is an integer map position
type Vec2 struct {
	X, Y int32
}

// V2 builds a Vec2
func V2(x, y int32) Vec2 {
	return Vec2{X: x, Y: y}
}

// Add returns v+o
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

// Sub returns v-o
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

// DistSq returns the squared euclidean distance, widened to avoid overflow
func DistSq(a, b Vec2) int64 {
	dx := int64(a.X) - int64(b.X)
	dy := int64(a.Y) - int64(b.Y)
	return dx*dx + dy*dy
}

// Within reports whether a and b are no further apart than r
func Within(a, b Vec2, r int32) bool {
	return DistSq(a, b) <= int64(r)*int64(r)
}

// StepToward moves from toward to by at most speed units
// Lands exactly on the target when it is within one step
func StepToward(from, to Vec2, speed int32) Vec2 {
	if speed <= 0 {
		return from
	}
	d := DistSq(from, to)
	if d <= int64(speed)*int64(speed) {
		return to
	}
	dist := int64(math.Sqrt(float64(d)))
	if dist == 0 {
		return to
	}
	dx := (int64(to.X) - int64(from.X)) * int64(speed) / dist
	dy := (int64(to.Y) - int64(from.Y)) * int64(speed) / dist
	// Integer truncation can stall a diagonal step at zero; nudge by one unit
	if dx == 0 && dy == 0 {
		dx = sign(int64(to.X) - int64(from.X))
		dy = sign(int64(to.Y) - int64(from.Y))
	}
	return Vec2{X: from.X + int32(dx), Y: from.Y + int32(dy)}
}

// Clamp keeps v inside [0,w) x [0,h)
func Clamp(v Vec2, w, h int32) Vec2 {
	v.X = min(max(v.X, 0), w-1)
	v.Y = min(max(v.Y, 0), h-1)
	return v
}

func sign(v int64) int64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

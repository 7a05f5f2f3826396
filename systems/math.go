package systems

import (
	"math"
	"math/rand"
)

// Vec2 is a 2D vector in bounds units.
type Vec2 struct {
	X, Y float64
}

// Add returns v+o.
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{v.X + o.X, v.Y + o.Y}
}

// Sub returns v-o.
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{v.X - o.X, v.Y - o.Y}
}

// Scale returns v*s.
func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{v.X * s, v.Y * s}
}

// Len returns the Euclidean length of v.
func (v Vec2) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

// Normalize returns v scaled to unit length. The zero vector stays zero.
func (v Vec2) Normalize() Vec2 {
	l := v.Len()
	if l == 0 || math.IsNaN(l) || math.IsInf(l, 0) {
		return Vec2{}
	}
	return Vec2{v.X / l, v.Y / l}
}

// Rect is an axis-aligned rectangle.
type Rect struct {
	X, Y, W, H float64
}

// Empty reports whether r has no area.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Contains reports whether p lies inside r (edges inclusive).
func (r Rect) Contains(p Vec2) bool {
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}

// Expand grows r by margin on every side.
func (r Rect) Expand(margin float64) Rect {
	return Rect{r.X - margin, r.Y - margin, r.W + 2*margin, r.H + 2*margin}
}

// randomPoint returns a uniform point inside r.
func (r Rect) randomPoint(rng *rand.Rand) Vec2 {
	return Vec2{r.X + rng.Float64()*r.W, r.Y + rng.Float64()*r.H}
}

// Range is a closed interval sampled uniformly.
type Range struct {
	Min, Max float64
}

// Sample returns a uniform value in [Min, Max]. Swapped bounds are tolerated.
func (r Range) Sample(rng *rand.Rand) float64 {
	lo, hi := r.Min, r.Max
	if lo > hi {
		lo, hi = hi, lo
	}
	if lo == hi {
		return lo
	}
	return lo + rng.Float64()*(hi-lo)
}

// zero reports whether r was left unset.
func (r Range) zero() bool {
	return r.Min == 0 && r.Max == 0
}

// clampFloat clamps v between minVal and maxVal. NaN maps to minVal.
func clampFloat(v, minVal, maxVal float64) float64 {
	if math.IsNaN(v) || v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

// clamp01 clamps v to the [0, 1] range.
func clamp01(v float64) float64 {
	return clampFloat(v, 0, 1)
}

// wrap returns v modulo size in [0, size).
func wrap(v, size float64) float64 {
	if size <= 0 {
		return 0
	}
	v = math.Mod(v, size)
	if v < 0 {
		v += size
	}
	return v
}

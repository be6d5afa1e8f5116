package vision

import (
	"math"

	"github.com/viterin/vek/vek32"
)

// Vector is a displacement in analysis pixels per frame.
type Vector struct {
	DX, DY float64
}

func (v Vector) Magnitude() float64 {
	return math.Hypot(v.DX, v.DY)
}

// Angle returns the direction of v in [0, 2π).
func (v Vector) Angle() float64 {
	a := math.Atan2(v.DY, v.DX)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}

// FlowParams sizes the block matcher.
type FlowParams struct {
	Block  int // tile edge in pixels
	Search int // maximum displacement tested in each axis
}

// BlockFlow estimates the motion from prev to cur by exhaustive block
// matching. Every Block×Block tile of cur is compared with prev shifted by up
// to Search pixels and the displacement with the lowest sum of absolute luma
// differences wins; on equal cost the shorter displacement is kept, so flat
// tiles report no motion. Tiles closer than Search to the border are skipped.
func BlockFlow(prev, cur *Planes, p FlowParams) []Vector {
	if prev == nil || cur == nil || prev.W != cur.W || prev.H != cur.H {
		return nil
	}
	b, s := p.Block, p.Search
	if b <= 0 {
		b = 8
	}
	if s < 0 {
		s = 0
	}
	diff := make([]float32, b)
	var out []Vector
	for by := s; by+b+s <= cur.H; by += b {
		for bx := s; bx+b+s <= cur.W; bx += b {
			best := sad(prev, cur, bx, by, 0, 0, b, diff)
			bdx, bdy := 0, 0
			for dy := -s; dy <= s; dy++ {
				for dx := -s; dx <= s; dx++ {
					if dx == 0 && dy == 0 {
						continue
					}
					d := sad(prev, cur, bx, by, dx, dy, b, diff)
					if d < best || (d == best && dx*dx+dy*dy < bdx*bdx+bdy*bdy) {
						best, bdx, bdy = d, dx, dy
					}
				}
			}
			out = append(out, Vector{DX: float64(bdx), DY: float64(bdy)})
		}
	}
	return out
}

// sad compares the tile of cur at (bx, by) with the tile of prev at
// (bx-dx, by-dy).
func sad(prev, cur *Planes, bx, by, dx, dy, b int, diff []float32) float32 {
	var total float32
	for r := 0; r < b; r++ {
		ci := (by+r)*cur.W + bx
		pi := (by+r-dy)*prev.W + bx - dx
		vek32.Sub_Into(diff, cur.Luma[ci:ci+b], prev.Luma[pi:pi+b])
		vek32.Abs_Inplace(diff)
		total += vek32.Sum(diff)
	}
	return total
}

// Summarize reduces a flow field to the mean magnitude and circular mean
// direction of the vectors at or above floor. ok is false when no vector
// passes the floor.
func Summarize(vs []Vector, floor float64) (magnitude, direction float64, ok bool) {
	var sum, sx, sy float64
	n := 0
	for _, v := range vs {
		m := v.Magnitude()
		if m == 0 || m < floor {
			continue
		}
		sum += m
		sx += v.DX / m
		sy += v.DY / m
		n++
	}
	if n == 0 {
		return 0, 0, false
	}
	direction = Vector{DX: sx, DY: sy}.Angle()
	return sum / float64(n), direction, true
}

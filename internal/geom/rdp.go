package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// SimplifyChain reduces a polyline with Ramer–Douglas–Peucker. chain is a
// sequence of indices into vertices (a closed loop keeps its repeated
// final vertex). When threeD is false the perpendicular distance is
// measured in the xy projection, matching planar input. Endpoints are
// always kept.
func SimplifyChain(vertices []r3.Vec, chain []uint32, epsilon float64, threeD bool) []uint32 {
	if len(chain) <= 2 {
		return append([]uint32(nil), chain...)
	}

	keep := make([]bool, len(chain))
	keep[0], keep[len(chain)-1] = true, true

	type span struct{ lo, hi int }
	stack := []span{{0, len(chain) - 1}}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if s.hi-s.lo < 2 {
			continue
		}
		a, b := vertices[chain[s.lo]], vertices[chain[s.hi]]
		maxDist, maxIdx := -1.0, -1
		for i := s.lo + 1; i < s.hi; i++ {
			d := segmentDistance(vertices[chain[i]], a, b, threeD)
			if d > maxDist {
				maxDist, maxIdx = d, i
			}
		}
		if maxDist > epsilon {
			keep[maxIdx] = true
			stack = append(stack, span{s.lo, maxIdx}, span{maxIdx, s.hi})
		}
	}

	out := make([]uint32, 0, len(chain))
	for i, k := range keep {
		if k {
			out = append(out, chain[i])
		}
	}
	return out
}

// segmentDistance is the distance from p to the segment ab, in the xy
// plane or in 3D.
func segmentDistance(p, a, b r3.Vec, threeD bool) float64 {
	if !threeD {
		p.Z, a.Z, b.Z = 0, 0, 0
	}
	ab := r3.Sub(b, a)
	ap := r3.Sub(p, a)
	den := r3.Dot(ab, ab)
	if den == 0 {
		return r3.Norm(ap)
	}
	t := r3.Dot(ap, ab) / den
	t = math.Max(0, math.Min(1, t))
	closest := r3.Add(a, r3.Scale(t, ab))
	return r3.Norm(r3.Sub(p, closest))
}

// Package geom holds the geometry utilities shared by the operations:
// bounding boxes, vertex deduplication, edge-chain reconstruction,
// Delaunay triangulation and its Voronoi dual, polyline simplification,
// convex hulls and a triangle height grid.
package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// BoundingBox returns the axis-aligned bounding box of points. An empty
// input yields an inverted box; callers that care must check with Valid.
func BoundingBox(points []r3.Vec) r3.Box {
	box := r3.Box{
		Min: r3.Vec{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)},
		Max: r3.Vec{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)},
	}
	for _, p := range points {
		box.Min.X = math.Min(box.Min.X, p.X)
		box.Min.Y = math.Min(box.Min.Y, p.Y)
		box.Min.Z = math.Min(box.Min.Z, p.Z)
		box.Max.X = math.Max(box.Max.X, p.X)
		box.Max.Y = math.Max(box.Max.Y, p.Y)
		box.Max.Z = math.Max(box.Max.Z, p.Z)
	}
	return box
}

// Valid reports whether box encloses at least one point.
func Valid(box r3.Box) bool {
	return box.Min.X <= box.Max.X && box.Min.Y <= box.Max.Y && box.Min.Z <= box.Max.Z
}

// Size returns the box extents per axis.
func Size(box r3.Box) r3.Vec {
	return r3.Sub(box.Max, box.Min)
}

// LongestAxis returns the largest extent of box.
func LongestAxis(box r3.Box) float64 {
	s := Size(box)
	return math.Max(s.X, math.Max(s.Y, s.Z))
}

// Pad grows the box by d in every direction.
func Pad(box r3.Box, d float64) r3.Box {
	p := r3.Vec{X: d, Y: d, Z: d}
	return r3.Box{Min: r3.Sub(box.Min, p), Max: r3.Add(box.Max, p)}
}

// Center returns the box midpoint.
func Center(box r3.Box) r3.Vec {
	return r3.Scale(0.5, r3.Add(box.Min, box.Max))
}

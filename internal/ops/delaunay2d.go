package ops

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chiselgeo/chisel/internal/boundary"
	"github.com/chiselgeo/chisel/internal/geom"
)

func init() { Register("delaunay_2d", delaunay2d{}) }

// delaunay2d triangulates the xy projection of a point cloud. A positive
// merge_distance welds near-coincident sites first, which keeps the
// triangulation stable for scanned input with duplicate points.
type delaunay2d struct{}

func (delaunay2d) Validate(cfg boundary.Config) error {
	if v, ok, err := cfg.Float("merge_distance"); err != nil {
		return err
	} else if ok && v < 0 {
		return boundary.Validationf("merge_distance", "merge_distance must not be negative, got %v", v)
	}
	return nil
}

func (delaunay2d) Execute(cfg boundary.Config, models []boundary.Model) (boundary.Result, error) {
	merge := 0.0
	if v, ok, _ := cfg.Float("merge_distance"); ok {
		merge = v
	}

	model, err := singleModel(models)
	if err != nil {
		return boundary.Result{}, err
	}
	sites := weldSites(model.Vertices, merge)
	tris, err := geom.Delaunay(sites)
	if err != nil {
		return boundary.Result{}, err
	}

	result := boundary.Result{
		Vertices: sites,
		Config: boundary.Config{
			boundary.MeshFormatKey: boundary.FormatTriangulated,
		},
	}
	for _, t := range tris {
		result.Indices = append(result.Indices, uint32(t.A), uint32(t.B), uint32(t.C))
	}
	return result, nil
}

// weldSites snaps xy positions to a grid of the merge distance and keeps
// the first vertex per cell. merge <= 0 only drops exact duplicates.
func weldSites(vertices []r3.Vec, merge float64) []r3.Vec {
	type cell [2]int64
	seen := make(map[cell]bool, len(vertices))
	out := make([]r3.Vec, 0, len(vertices))
	for _, v := range vertices {
		var key cell
		if merge > 0 {
			key = cell{int64(math.Round(v.X / merge)), int64(math.Round(v.Y / merge))}
		} else {
			key = cell{int64(math.Float64bits(v.X + 0)), int64(math.Float64bits(v.Y + 0))}
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	return out
}

package ops

import (
	"github.com/chiselgeo/chisel/internal/boundary"
	"github.com/chiselgeo/chisel/internal/geom"
)

func init() { Register("convex_hull_2d", hull2d{}) }

// hull2d projects the input vertices onto the xy plane and returns their
// convex hull as a closed edge loop.
type hull2d struct{}

func (hull2d) Validate(boundary.Config) error { return nil }

func (hull2d) Execute(cfg boundary.Config, models []boundary.Model) (boundary.Result, error) {
	model, err := singleModel(models)
	if err != nil {
		return boundary.Result{}, err
	}
	hull := geom.ConvexHull2D(model.Vertices)
	if len(hull) < 3 {
		return boundary.Result{}, boundary.Executionf("convex hull is degenerate, need at least 3 distinct xy positions")
	}

	result := boundary.Result{
		Config: boundary.Config{
			boundary.MeshFormatKey: boundary.FormatEdges,
		},
	}
	for _, i := range hull {
		result.PushVertex(model.Vertices[i])
	}
	n := uint32(len(hull))
	for i := uint32(0); i < n; i++ {
		result.Indices = append(result.Indices, i, (i+1)%n)
	}
	return result, nil
}

package ops

import (
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chiselgeo/chisel/internal/boundary"
	"github.com/chiselgeo/chisel/internal/geom"
)

func init() { Register("toolpath", toolpath{}) }

// toolpath drops a milling tool onto a triangulated surface along a
// serpentine row pattern and emits the contact heights as one ordered
// polyline. An optional second model clips the scanned region to a loop.
type toolpath struct{}

func (toolpath) Validate(cfg boundary.Config) error {
	diameter, err := cfg.MandatoryFloat("tool_diameter")
	if err != nil {
		return err
	}
	if diameter <= 0 {
		return boundary.Validationf("tool_diameter", "tool_diameter must be positive, got %v", diameter)
	}
	stepOver, err := cfg.MandatoryFloat("step_over")
	if err != nil {
		return err
	}
	if stepOver <= 0 {
		return boundary.Validationf("step_over", "step_over must be positive, got %v", stepOver)
	}
	if stepOver > diameter {
		return boundary.Validationf("step_over", "step_over %v exceeds tool_diameter %v", stepOver, diameter)
	}
	if strategy, ok := cfg.Get("strategy"); ok && strategy != "meander" {
		return boundary.Validationf("strategy", "unknown strategy %q", strategy)
	}
	if probe, ok := cfg.Get("probe"); ok && probe != "ball" && probe != "flat" {
		return boundary.Validationf("probe", "unknown probe %q", probe)
	}
	if _, _, err := cfg.Float("minimum_z"); err != nil {
		return err
	}
	return nil
}

func (toolpath) Execute(cfg boundary.Config, models []boundary.Model) (boundary.Result, error) {
	diameter, _ := cfg.MandatoryFloat("tool_diameter")
	stepOver, _ := cfg.MandatoryFloat("step_over")
	probe, _ := cfg.Get("probe")
	ball := probe != "flat"
	minZ := 0.0
	if v, ok, _ := cfg.Float("minimum_z"); ok {
		minZ = v
	}

	model, err := singleModel(models)
	if err != nil {
		return boundary.Result{}, err
	}
	if len(model.Indices) == 0 || len(model.Indices)%3 != 0 {
		return boundary.Result{}, boundary.Executionf("toolpath needs a triangulated model, got %d indices", len(model.Indices))
	}

	region := geom.BoundingBox(model.Vertices)
	var loopVerts []r3.Vec
	var loop []uint32
	if len(models) > 1 && len(models[1].Vertices) > 0 {
		loopVerts = models[1].Vertices
		loop, err = boundingLoop(&models[1])
		if err != nil {
			return boundary.Result{}, err
		}
		region = geom.BoundingBox(loopVerts)
	}

	radius := diameter / 2
	grid := geom.NewHeightGrid(model.Vertices, model.Indices, radius)

	size := geom.Size(region)
	cols := int(size.X/stepOver) + 1
	rowCount := int(size.Y/stepOver) + 1
	rows := make([][]r3.Vec, rowCount)

	var group errgroup.Group
	group.SetLimit(runtime.GOMAXPROCS(0))
	for i := range rows {
		row := i
		group.Go(func() error {
			y := region.Min.Y + float64(row)*stepOver
			pts := make([]r3.Vec, 0, cols)
			for j := 0; j < cols; j++ {
				x := region.Min.X + float64(j)*stepOver
				if loop != nil && !geom.PointInLoop(r3.Vec{X: x, Y: y}, loopVerts, loop) {
					continue
				}
				pts = append(pts, r3.Vec{X: x, Y: y, Z: grid.Drop(x, y, radius, ball, minZ)})
			}
			// Serpentine: odd rows run back so consecutive rows join at
			// the near end.
			if row%2 == 1 {
				for a, b := 0, len(pts)-1; a < b; a, b = a+1, b-1 {
					pts[a], pts[b] = pts[b], pts[a]
				}
			}
			rows[row] = pts
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return boundary.Result{}, err
	}

	result := boundary.Result{
		Config: boundary.Config{
			boundary.MeshFormatKey: boundary.FormatEdges,
		},
	}
	for _, pts := range rows {
		for _, p := range pts {
			idx := result.PushVertex(p)
			if idx > 0 {
				result.Indices = append(result.Indices, idx-1, idx)
			}
		}
	}
	if len(result.Vertices) == 0 {
		return boundary.Result{}, boundary.Executionf("toolpath produced no samples inside the region")
	}
	return result, nil
}

// boundingLoop extracts the single closed loop a clip model must carry.
func boundingLoop(model *boundary.Model) ([]uint32, error) {
	chains, err := geom.Chains(model.Indices)
	if err != nil {
		return nil, err
	}
	if len(chains) != 1 || !geom.IsLoop(chains[0]) {
		return nil, boundary.Executionf("clip model must be a single closed loop, got %d chains", len(chains))
	}
	return chains[0], nil
}

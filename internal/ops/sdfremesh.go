package ops

import (
	"strconv"

	"github.com/chiselgeo/chisel/internal/boundary"
	"gonum.org/v1/gonum/spatial/r3"
)

func init() { Register("sdf_remesh", sdfRemesh{}) }

// maxResolution bounds the sampling grid; beyond this the grid alone
// costs gigabytes.
const maxResolution = 512

// sdfRemesh converts an edge-list model into an implicit field (a union
// of capsules around the edges) and meshes its iso-surface with surface
// nets. The debug_chunks flag appends the sampling slab boxes as
// degenerate-triangle wireframes for inspection in the host.
type sdfRemesh struct{}

func (sdfRemesh) Validate(cfg boundary.Config) error {
	resolution, err := cfg.MandatoryInt("resolution")
	if err != nil {
		return err
	}
	if resolution <= 0 {
		return boundary.Validationf("resolution", "resolution must be positive")
	}
	if resolution > maxResolution {
		return boundary.Validationf("resolution", "resolution %d exceeds the maximum of %d", resolution, maxResolution)
	}
	radius, err := cfg.MandatoryFloat("radius")
	if err != nil {
		return err
	}
	if radius <= 0 {
		return boundary.Validationf("radius", "radius must be positive, got %v", radius)
	}
	if _, _, err := cfg.Float("iso_value"); err != nil {
		return err
	}
	if _, err := cfg.Bool("debug_chunks", false); err != nil {
		return err
	}
	return nil
}

func (sdfRemesh) Execute(cfg boundary.Config, models []boundary.Model) (boundary.Result, error) {
	resolution, _ := cfg.MandatoryInt("resolution")
	radius, _ := cfg.MandatoryFloat("radius")
	iso := 0.0
	if v, ok, _ := cfg.Float("iso_value"); ok {
		iso = v
	}
	debugChunks, _ := cfg.Bool("debug_chunks", false)

	model, err := singleModel(models)
	if err != nil {
		return boundary.Result{}, err
	}
	field, err := edgeField(model, radius)
	if err != nil {
		return boundary.Result{}, err
	}
	mesh, err := surfaceNets(field, resolution, iso)
	if err != nil {
		return boundary.Result{}, err
	}

	result := boundary.Result{
		Vertices: mesh.vertices,
		Indices:  mesh.tris,
		Config: boundary.Config{
			boundary.MeshFormatKey: boundary.FormatTriangulated,
		},
	}
	if debugChunks {
		result.Config["debug.chunks"] = strconv.Itoa(len(mesh.slabs))
		for _, slab := range mesh.slabs {
			appendBoxWireframe(&result, slab)
		}
	}
	return result, nil
}

// appendBoxWireframe adds the 12 edges of a box as degenerate triangles
// so they survive inside a triangulated result.
func appendBoxWireframe(result *boundary.Result, box r3.Box) {
	corners := [8][3]float64{
		{box.Min.X, box.Min.Y, box.Min.Z}, {box.Max.X, box.Min.Y, box.Min.Z},
		{box.Max.X, box.Max.Y, box.Min.Z}, {box.Min.X, box.Max.Y, box.Min.Z},
		{box.Min.X, box.Min.Y, box.Max.Z}, {box.Max.X, box.Min.Y, box.Max.Z},
		{box.Max.X, box.Max.Y, box.Max.Z}, {box.Min.X, box.Max.Y, box.Max.Z},
	}
	base := uint32(len(result.Vertices))
	for _, c := range corners {
		result.PushVertex(r3.Vec{X: c[0], Y: c[1], Z: c[2]})
	}
	edges := [12][2]uint32{
		{0, 1}, {1, 2}, {2, 3}, {3, 0},
		{4, 5}, {5, 6}, {6, 7}, {7, 4},
		{0, 4}, {1, 5}, {2, 6}, {3, 7},
	}
	for _, e := range edges {
		result.Indices = append(result.Indices, base+e[0], base+e[1], base+e[1])
	}
}

package geom

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestDelaunaySquare(t *testing.T) {
	points := []r3.Vec{
		{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1},
	}
	tris, err := Delaunay(points)
	if err != nil {
		t.Fatalf("Delaunay() error: %v", err)
	}
	if len(tris) != 2 {
		t.Fatalf("got %d triangles, want 2", len(tris))
	}
	for _, tri := range tris {
		if cross2(points[tri.A], points[tri.B], points[tri.C]) <= 0 {
			t.Errorf("triangle %v is not CCW", tri)
		}
	}
	// Both circumcenters sit at the square center.
	for _, tri := range tris {
		c := Circumcenter(points[tri.A], points[tri.B], points[tri.C])
		if math.Abs(c.X-0.5) > 1e-9 || math.Abs(c.Y-0.5) > 1e-9 {
			t.Errorf("circumcenter = %v, want (0.5,0.5)", c)
		}
	}
}

func TestDelaunayGridArea(t *testing.T) {
	// Triangulating a grid must tile its bounding box exactly.
	var points []r3.Vec
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			points = append(points, r3.Vec{X: float64(x), Y: float64(y)})
		}
	}
	tris, err := Delaunay(points)
	if err != nil {
		t.Fatalf("Delaunay() error: %v", err)
	}
	area := 0.0
	for _, tri := range tris {
		area += cross2(points[tri.A], points[tri.B], points[tri.C]) / 2
	}
	if math.Abs(area-9) > 1e-9 {
		t.Errorf("total area = %v, want 9", area)
	}
}

func TestDelaunayCollinear(t *testing.T) {
	points := []r3.Vec{{X: 0}, {X: 1}, {X: 2}, {X: 3}}
	if _, err := Delaunay(points); err == nil {
		t.Fatal("collinear input should fail")
	}
}

func TestConvexHull2D(t *testing.T) {
	points := []r3.Vec{
		{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 2}, {X: 0, Y: 2},
		{X: 1, Y: 1},   // interior
		{X: 1, Y: 0},   // collinear on an edge
		{X: 0, Y: 0},   // duplicate
		{X: 1, Y: 0.5}, // interior
	}
	hull := ConvexHull2D(points)
	if len(hull) != 4 {
		t.Fatalf("hull has %d vertices, want 4: %v", len(hull), hull)
	}
	want := map[int]bool{0: true, 1: true, 2: true, 3: true}
	for _, idx := range hull {
		if !want[idx] {
			t.Errorf("unexpected hull vertex %d", idx)
		}
	}
	// CCW orientation.
	area := 0.0
	for i := range hull {
		a := points[hull[i]]
		b := points[hull[(i+1)%len(hull)]]
		area += a.X*b.Y - b.X*a.Y
	}
	if area <= 0 {
		t.Errorf("hull signed area = %v, want positive (CCW)", area)
	}
}

func TestChainsOpenAndLoop(t *testing.T) {
	// One open chain 5-6-7 and one loop 0-1-2-3.
	indices := []uint32{1, 0, 2, 1, 3, 2, 0, 3, 5, 6, 6, 7}
	chains, err := Chains(indices)
	if err != nil {
		t.Fatalf("Chains() error: %v", err)
	}
	if len(chains) != 2 {
		t.Fatalf("got %d chains, want 2", len(chains))
	}
	open, loop := chains[0], chains[1]
	if IsLoop(open) {
		t.Errorf("chain %v should be open", open)
	}
	if got, want := len(open), 3; got != want {
		t.Errorf("open chain length = %d, want %d", got, want)
	}
	if open[0] != 5 {
		t.Errorf("open chain starts at %d, want 5", open[0])
	}
	if !IsLoop(loop) {
		t.Errorf("chain %v should be a loop", loop)
	}
	if got, want := len(loop), 5; got != want {
		t.Errorf("loop length = %d, want %d", got, want)
	}
	if loop[0] != 0 || loop[len(loop)-1] != 0 {
		t.Errorf("loop %v should start and end at 0", loop)
	}
}

func TestChainsRejectsBranch(t *testing.T) {
	indices := []uint32{0, 1, 0, 2, 0, 3}
	if _, err := Chains(indices); err == nil {
		t.Fatal("branching vertex should be rejected")
	}
}

func TestSimplifyChain(t *testing.T) {
	vertices := []r3.Vec{
		{X: 0, Y: 0},
		{X: 1, Y: 0.001},
		{X: 2, Y: 0},
		{X: 3, Y: 1},
	}
	chain := []uint32{0, 1, 2, 3}

	got := SimplifyChain(vertices, chain, 0.01, false)
	if len(got) != 3 || got[0] != 0 || got[1] != 2 || got[2] != 3 {
		t.Errorf("SimplifyChain() = %v, want [0 2 3]", got)
	}

	// Tight epsilon keeps everything.
	got = SimplifyChain(vertices, chain, 0.0001, false)
	if len(got) != 4 {
		t.Errorf("tight epsilon dropped vertices: %v", got)
	}
}

func TestPointInLoop(t *testing.T) {
	vertices := []r3.Vec{
		{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 2}, {X: 0, Y: 2},
	}
	loop := []uint32{0, 1, 2, 3, 0}
	if !PointInLoop(r3.Vec{X: 1, Y: 1}, vertices, loop) {
		t.Error("center should be inside")
	}
	if PointInLoop(r3.Vec{X: 3, Y: 1}, vertices, loop) {
		t.Error("outside point reported inside")
	}
}

func TestDeduplicator(t *testing.T) {
	d := NewDeduplicator(4)
	i0, err := d.Index(r3.Vec{X: 1, Y: 2, Z: 3})
	if err != nil {
		t.Fatal(err)
	}
	i1, _ := d.Index(r3.Vec{X: 4, Y: 5, Z: 6})
	i2, _ := d.Index(r3.Vec{X: 1, Y: 2, Z: 3})
	if i0 == i1 {
		t.Error("distinct vertices merged")
	}
	if i0 != i2 {
		t.Error("identical vertices not merged")
	}
	if len(d.Vertices) != 2 {
		t.Errorf("have %d vertices, want 2", len(d.Vertices))
	}
	if _, err := d.Index(r3.Vec{X: math.NaN()}); err == nil {
		t.Error("NaN vertex should be rejected")
	}
	// -0.0 and +0.0 must merge.
	ia, _ := d.Index(r3.Vec{})
	ib, _ := d.Index(r3.Vec{X: math.Copysign(0, -1)})
	if ia != ib {
		t.Error("-0.0 and +0.0 should merge")
	}
}

func TestHeightGridDrop(t *testing.T) {
	// Unit square at z=1 made of two triangles.
	verts := []r3.Vec{
		{X: 0, Y: 0, Z: 1}, {X: 1, Y: 0, Z: 1},
		{X: 1, Y: 1, Z: 1}, {X: 0, Y: 1, Z: 1},
	}
	tris := []uint32{0, 1, 2, 0, 2, 3}
	g := NewHeightGrid(verts, tris, 0.5)

	// Flat tool over the middle rests on the plane.
	if z := g.Drop(0.5, 0.5, 0.1, false, -10); math.Abs(z-1) > 1e-9 {
		t.Errorf("flat drop = %v, want 1", z)
	}
	// Ball tool over a flat plane also rests tip-on-plane.
	if z := g.Drop(0.5, 0.5, 0.1, true, -10); math.Abs(z-1) > 1e-9 {
		t.Errorf("ball drop = %v, want 1", z)
	}
	// Nothing under the tool: floor.
	if z := g.Drop(5, 5, 0.1, false, -10); z != -10 {
		t.Errorf("empty drop = %v, want floor", z)
	}
	// Ball tool overhanging the edge contacts the rim: the tip stays
	// above the floor but below the surface.
	z := g.Drop(1.05, 0.5, 0.1, true, -10)
	if z <= -10 || z > 1 {
		t.Errorf("edge drop = %v, want within (floor, 1]", z)
	}
}

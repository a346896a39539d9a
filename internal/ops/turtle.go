package ops

import (
	"math"

	"github.com/chiselgeo/chisel/internal/boundary"
	"gonum.org/v1/gonum/spatial/r3"
)

// heading carries the turtle's forward and up directions. The default
// turtle looks along +Y with +Z up.
type heading struct {
	forward r3.Vec
	up      r3.Vec
}

func defaultHeading() heading {
	return heading{forward: r3.Vec{Y: 1}, up: r3.Vec{Z: 1}}
}

// yaw rotates around the up axis.
func (h heading) yaw(angle float64) heading {
	rot := r3.NewRotation(angle, h.up)
	return heading{forward: r3.Unit(rot.Rotate(h.forward)), up: h.up}
}

// pitch rotates around the lateral axis.
func (h heading) pitch(angle float64) heading {
	axis := r3.Cross(h.forward, h.up)
	rot := r3.NewRotation(angle, axis)
	return heading{forward: r3.Unit(rot.Rotate(h.forward)), up: r3.Unit(rot.Rotate(h.up))}
}

// roll rotates around the forward axis.
func (h heading) roll(angle float64) heading {
	rot := r3.NewRotation(angle, h.forward)
	return heading{forward: h.forward, up: r3.Unit(rot.Rotate(h.up))}
}

type turtleState struct {
	heading  heading
	position r3.Vec
}

// turtle interprets an expanded grammar string into line segments.
type turtle struct {
	heading  heading
	position r3.Vec
	stack    []turtleState
	segments [][2]r3.Vec
}

func newTurtle() *turtle {
	return &turtle{heading: defaultHeading()}
}

// run walks the symbol string. Symbols without a turtle meaning are
// grammar-internal and ignored here.
func (t *turtle) run(symbols string, angle, step float64) error {
	for _, sym := range symbols {
		switch sym {
		case 'F', 'G':
			next := r3.Add(t.position, r3.Scale(step, t.heading.forward))
			t.segments = append(t.segments, [2]r3.Vec{t.position, next})
			t.position = next
		case 'f':
			t.position = r3.Add(t.position, r3.Scale(step, t.heading.forward))
		case '+':
			t.heading = t.heading.yaw(angle)
		case '-':
			t.heading = t.heading.yaw(-angle)
		case '&':
			t.heading = t.heading.pitch(angle)
		case '^':
			t.heading = t.heading.pitch(-angle)
		case '\\':
			t.heading = t.heading.roll(angle)
		case '/':
			t.heading = t.heading.roll(-angle)
		case '|':
			t.heading = t.heading.yaw(math.Pi)
		case '[':
			t.stack = append(t.stack, turtleState{heading: t.heading, position: t.position})
		case ']':
			if len(t.stack) == 0 {
				return boundary.Executionf("turtle pop with empty stack")
			}
			s := t.stack[len(t.stack)-1]
			t.stack = t.stack[:len(t.stack)-1]
			t.heading, t.position = s.heading, s.position
		}
	}
	return nil
}

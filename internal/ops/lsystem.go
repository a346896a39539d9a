package ops

import (
	"math"
	"math/rand"
	"strings"

	"github.com/chiselgeo/chisel/internal/boundary"
	"gonum.org/v1/gonum/spatial/r3"
)

func init() { Register("lsystem", lsystem{}) }

// maxSymbols caps grammar expansion so a hostile iteration depth cannot
// exhaust memory before the turtle even starts.
const maxSymbols = 1 << 22

// lsystem generates geometry from a string-rewriting grammar driven
// through a 3D turtle. Without a seed model the result is line chunks;
// with a seed model the seed passes through unchanged and one instance
// matrix per drawn segment places the motif.
type lsystem struct{}

func (lsystem) Validate(cfg boundary.Config) error {
	grammar, err := cfg.Mandatory("grammar")
	if err != nil {
		return err
	}
	if strings.TrimSpace(grammar) == "" {
		return boundary.Validationf("grammar", "grammar must not be empty")
	}
	rules, hasRules := cfg.Get("rules")
	if hasRules {
		if _, err := parseRules(rules); err != nil {
			return err
		}
	}
	iterations, _, err := cfg.Int("iterations")
	if err != nil {
		return err
	}
	if iterations < 0 || iterations > 16 {
		return boundary.Validationf("iterations", "iterations must be in [0,16], got %d", iterations)
	}
	if _, _, err := cfg.Float("angle"); err != nil {
		return err
	}
	step, hasStep, err := cfg.Float("step")
	if err != nil {
		return err
	}
	if hasStep && step <= 0 {
		return boundary.Validationf("step", "step must be positive, got %v", step)
	}
	_, hasSeed, err := cfg.Int("seed")
	if err != nil {
		return err
	}
	if hasRules && !hasSeed && strings.Contains(rules, "|") {
		return boundary.Validationf("rules", "stochastic alternatives require the seed parameter")
	}
	return nil
}

func (lsystem) Execute(cfg boundary.Config, models []boundary.Model) (boundary.Result, error) {
	grammar, _ := cfg.Mandatory("grammar")
	rules := map[rune][]string{}
	if raw, ok := cfg.Get("rules"); ok {
		rules, _ = parseRules(raw)
	}
	iterations, _, _ := cfg.Int("iterations")
	angle := 90.0
	if a, ok, _ := cfg.Float("angle"); ok {
		angle = a
	}
	step := 1.0
	if s, ok, _ := cfg.Float("step"); ok {
		step = s
	}
	var rng *rand.Rand
	if seed, ok, _ := cfg.Int("seed"); ok {
		rng = rand.New(rand.NewSource(int64(seed)))
	}

	symbols, err := expand(strings.TrimSpace(grammar), rules, iterations, rng)
	if err != nil {
		return boundary.Result{}, err
	}

	t := newTurtle()
	if err := t.run(symbols, angle*math.Pi/180, step); err != nil {
		return boundary.Result{}, err
	}
	if len(t.segments) == 0 {
		return boundary.Result{}, boundary.Executionf("grammar did not generate any geometry")
	}

	if len(models) > 0 && len(models[0].Vertices) > 0 {
		return instanceResult(&models[0], t.segments, step), nil
	}

	result := boundary.Result{
		Config: boundary.Config{boundary.MeshFormatKey: boundary.FormatChunks},
	}
	for _, seg := range t.segments {
		result.PushSegment(seg[0], seg[1])
	}
	return result, nil
}

// instanceResult passes the seed model through and emits one row-major
// 4×4 matrix per segment, mapping the motif's +Y onto the segment. A
// seed without indices is reported as points; any indexed seed is
// assumed to be a triangle list, the only indexed motif the host sends.
func instanceResult(seed *boundary.Model, segments [][2]r3.Vec, step float64) boundary.Result {
	format := boundary.FormatTriangulated
	if len(seed.Indices) == 0 {
		format = boundary.FormatPoints
	}
	result := boundary.Result{
		Vertices: append([]r3.Vec(nil), seed.Vertices...),
		Indices:  append([]uint32(nil), seed.Indices...),
		Matrices: make([]float32, 0, len(segments)*16),
		Config:   boundary.Config{boundary.MeshFormatKey: format},
	}
	for _, seg := range segments {
		dir := r3.Sub(seg[1], seg[0])
		length := r3.Norm(dir)
		forward := r3.Vec{Y: 1}
		if length > 0 {
			forward = r3.Scale(1/length, dir)
		}
		up := r3.Vec{Z: 1}
		if math.Abs(r3.Dot(forward, up)) > 1-1e-9 {
			up = r3.Vec{X: 1}
		}
		right := r3.Unit(r3.Cross(forward, up))
		up = r3.Unit(r3.Cross(right, forward))
		scale := 1.0
		if step > 0 {
			scale = length / step
		}
		if scale == 0 {
			scale = 1
		}

		// Row-major, columns are the transformed basis and translation.
		result.Matrices = append(result.Matrices,
			float32(right.X), float32(forward.X*scale), float32(up.X), float32(seg[0].X),
			float32(right.Y), float32(forward.Y*scale), float32(up.Y), float32(seg[0].Y),
			float32(right.Z), float32(forward.Z*scale), float32(up.Z), float32(seg[0].Z),
			0, 0, 0, 1,
		)
	}
	return result
}

// parseRules parses "X=F+F;Y=FX" into productions. Alternatives within a
// production are separated by "|" and selected by the seeded generator.
func parseRules(raw string) (map[rune][]string, error) {
	rules := make(map[rune][]string)
	for _, part := range strings.Split(raw, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		eq := strings.IndexByte(part, '=')
		if eq < 0 {
			return nil, boundary.Validationf("rules", "rule %q has no '='", part)
		}
		lhs := []rune(strings.TrimSpace(part[:eq]))
		if len(lhs) != 1 {
			return nil, boundary.Validationf("rules", "rule %q must rewrite a single symbol", part)
		}
		if _, dup := rules[lhs[0]]; dup {
			return nil, boundary.Validationf("rules", "duplicate rule for symbol %q", string(lhs))
		}
		var alts []string
		for _, alt := range strings.Split(part[eq+1:], "|") {
			alts = append(alts, strings.TrimSpace(alt))
		}
		rules[lhs[0]] = alts
	}
	return rules, nil
}

// expand rewrites the axiom for the requested number of iterations.
func expand(axiom string, rules map[rune][]string, iterations int, rng *rand.Rand) (string, error) {
	current := axiom
	for i := 0; i < iterations; i++ {
		var next strings.Builder
		next.Grow(len(current) * 2)
		for _, sym := range current {
			alts, ok := rules[sym]
			if !ok {
				next.WriteRune(sym)
				continue
			}
			if len(alts) == 1 || rng == nil {
				next.WriteString(alts[0])
			} else {
				next.WriteString(alts[rng.Intn(len(alts))])
			}
			if next.Len() > maxSymbols {
				return "", boundary.Executionf("grammar expansion exceeds %d symbols at iteration %d", maxSymbols, i+1)
			}
		}
		current = next.String()
	}
	return current, nil
}

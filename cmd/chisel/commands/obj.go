package commands

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// mesh is the flat OBJ content: 3 floats per vertex, index layout
// determined by the element type that produced it.
type mesh struct {
	vertices []float32
	indices  []uint32
}

// readOBJ loads the v/l/f elements of a Wavefront OBJ file. Faces are
// fan-triangulated, polylines become edge pairs. Texture and normal
// references after a slash are ignored.
func readOBJ(path string) (*mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading input mesh: %w", err)
	}
	defer f.Close()

	var m mesh
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return nil, fmt.Errorf("%s:%d: vertex needs 3 coordinates", path, lineNo)
			}
			for _, fv := range fields[1:4] {
				v, err := strconv.ParseFloat(fv, 32)
				if err != nil {
					return nil, fmt.Errorf("%s:%d: bad coordinate %q", path, lineNo, fv)
				}
				m.vertices = append(m.vertices, float32(v))
			}
		case "l":
			refs, err := m.resolveRefs(fields[1:], path, lineNo)
			if err != nil {
				return nil, err
			}
			for i := 0; i+1 < len(refs); i++ {
				m.indices = append(m.indices, refs[i], refs[i+1])
			}
		case "f":
			refs, err := m.resolveRefs(fields[1:], path, lineNo)
			if err != nil {
				return nil, err
			}
			if len(refs) < 3 {
				return nil, fmt.Errorf("%s:%d: face needs at least 3 vertices", path, lineNo)
			}
			for i := 1; i+1 < len(refs); i++ {
				m.indices = append(m.indices, refs[0], refs[i], refs[i+1])
			}
		case "p":
			refs, err := m.resolveRefs(fields[1:], path, lineNo)
			if err != nil {
				return nil, err
			}
			m.indices = append(m.indices, refs...)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return &m, nil
}

// resolveRefs parses 1-based OBJ vertex references, including negative
// (relative) ones and v/vt/vn forms.
func (m *mesh) resolveRefs(fields []string, path string, lineNo int) ([]uint32, error) {
	vertexCount := len(m.vertices) / 3
	refs := make([]uint32, 0, len(fields))
	for _, field := range fields {
		if slash := strings.IndexByte(field, '/'); slash >= 0 {
			field = field[:slash]
		}
		n, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: bad vertex reference %q", path, lineNo, field)
		}
		if n < 0 {
			n = vertexCount + n + 1
		}
		if n < 1 || n > vertexCount {
			return nil, fmt.Errorf("%s:%d: vertex reference %d out of range", path, lineNo, n)
		}
		refs = append(refs, uint32(n-1))
	}
	return refs, nil
}

// writeOBJ writes vertices plus elements chosen by the mesh format:
// triangle faces, edge lines or points.
func writeOBJ(path string, vertices []float32, indices []uint32, format string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("writing output mesh: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for i := 0; i+2 < len(vertices); i += 3 {
		fmt.Fprintf(w, "v %g %g %g\n", vertices[i], vertices[i+1], vertices[i+2])
	}
	switch format {
	case "triangulated":
		for i := 0; i+2 < len(indices); i += 3 {
			fmt.Fprintf(w, "f %d %d %d\n", indices[i]+1, indices[i+1]+1, indices[i+2]+1)
		}
	case "points":
		for _, idx := range indices {
			fmt.Fprintf(w, "p %d\n", idx+1)
		}
	default: // edges, chunks
		for i := 0; i+1 < len(indices); i += 2 {
			fmt.Fprintf(w, "l %d %d\n", indices[i]+1, indices[i+1]+1)
		}
	}
	return w.Flush()
}

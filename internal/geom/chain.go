package geom

import (
	"sort"

	"github.com/chiselgeo/chisel/internal/boundary"
)

// Chains reconstructs ordered polylines from an unordered edge list.
// indices pairs consecutive values into edges: [a,b,c,d] is a-b and c-d.
// Open chains come back as endpoint-to-endpoint walks; closed loops repeat
// their starting vertex at the end. A vertex with more than two neighbors
// is an error: the input is not a set of simple chains.
//
// The result is deterministic: chains start at their lowest endpoint (or
// lowest member for loops) and chains are ordered by starting vertex.
func Chains(indices []uint32) ([][]uint32, error) {
	if len(indices) == 0 {
		return nil, nil
	}
	if len(indices)%2 != 0 {
		return nil, boundary.Executionf("edge list length %d is odd", len(indices))
	}

	adjacency := make(map[uint32][]uint32)
	for i := 0; i < len(indices); i += 2 {
		a, b := indices[i], indices[i+1]
		if a == b {
			continue
		}
		adjacency[a] = append(adjacency[a], b)
		adjacency[b] = append(adjacency[b], a)
		if len(adjacency[a]) > 2 || len(adjacency[b]) > 2 {
			return nil, boundary.Executionf("vertex %d has more than two neighbors", max32(a, b))
		}
	}

	vertices := make([]uint32, 0, len(adjacency))
	for v := range adjacency {
		vertices = append(vertices, v)
	}
	sort.Slice(vertices, func(i, j int) bool { return vertices[i] < vertices[j] })

	visited := make(map[uint32]bool, len(adjacency))
	var chains [][]uint32

	walk := func(start uint32) []uint32 {
		chain := []uint32{start}
		visited[start] = true
		current := start
		for {
			var next uint32
			found := false
			for _, n := range adjacency[current] {
				if !visited[n] {
					if !found || n < next {
						next = n
						found = true
					}
				}
			}
			if !found {
				break
			}
			chain = append(chain, next)
			visited[next] = true
			current = next
		}
		return chain
	}

	// Open chains first: start from endpoints.
	for _, v := range vertices {
		if !visited[v] && len(adjacency[v]) == 1 {
			chains = append(chains, walk(v))
		}
	}
	// The rest are loops; close them by repeating the start.
	for _, v := range vertices {
		if !visited[v] {
			chain := walk(v)
			chain = append(chain, chain[0])
			chains = append(chains, chain)
		}
	}
	return chains, nil
}

// IsLoop reports whether a chain produced by Chains is closed.
func IsLoop(chain []uint32) bool {
	return len(chain) > 2 && chain[0] == chain[len(chain)-1]
}

func max32(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}

// Package boundary holds the in-process representation of everything that
// crosses the host ABI: the flat string-keyed config map, the decoded
// geometry models and the result structure handed back to the marshalling
// layer. Nothing in this package touches C memory; the cgo shim converts
// raw pointers into plain slices before anything here runs.
package boundary

import (
	"strconv"
)

// Reserved config keys. Everything else is operation-specific.
const (
	// CommandKey selects the operation to run.
	CommandKey = "command"

	// ErrorKey carries a diagnostic string on failure. The host detects
	// failure solely by the presence of this key.
	ErrorKey = "error"

	// MeshFormatKey describes how the indices of a result are to be
	// interpreted by the host.
	MeshFormatKey = "mesh.format"

	// Multi-model slicing keys, suffixed with the model number:
	// "first_vertex_model_1", "first_index_model_1", ...
	FirstVertexModelPrefix = "first_vertex_model_"
	FirstIndexModelPrefix  = "first_index_model_"
)

// Values for MeshFormatKey.
const (
	// FormatTriangulated: indices are a triangle list, 3 per face.
	FormatTriangulated = "triangulated"
	// FormatEdges: indices are an edge list, 2 per edge.
	FormatEdges = "edges"
	// FormatChunks: indices are independent line chunks, 2 per segment,
	// vertices not shared between segments.
	FormatChunks = "chunks"
	// FormatPoints: indices are individual points.
	FormatPoints = "points"
)

// Config is the flat string-keyed parameter map shared with the host.
// Keys are unique; numeric, boolean and enum parameters are string-encoded
// and parsed by the consuming operation. The input config is a read-only
// view: operations build a fresh Config for their output.
type Config map[string]string

// Get returns the value for key and whether it was present.
func (c Config) Get(key string) (string, bool) {
	v, ok := c[key]
	return v, ok
}

// Has reports whether key is present.
func (c Config) Has(key string) bool {
	_, ok := c[key]
	return ok
}

// Mandatory returns the value for key, or a validation error naming the key.
func (c Config) Mandatory(key string) (string, error) {
	v, ok := c[key]
	if !ok {
		return "", Validationf(key, "missing mandatory parameter %q", key)
	}
	return v, nil
}

// Float parses key as a float64. The second return reports presence; a
// present but malformed value is a validation error attributed to the key.
func (c Config) Float(key string) (float64, bool, error) {
	v, ok := c[key]
	if !ok {
		return 0, false, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, true, Validationf(key, "parameter %q is not a number: %q", key, v)
	}
	return f, true, nil
}

// MandatoryFloat parses key as a float64 or fails with a validation error.
func (c Config) MandatoryFloat(key string) (float64, error) {
	if _, ok := c[key]; !ok {
		return 0, Validationf(key, "missing mandatory parameter %q", key)
	}
	f, _, err := c.Float(key)
	return f, err
}

// Int parses key as an int. The second return reports presence.
func (c Config) Int(key string) (int, bool, error) {
	v, ok := c[key]
	if !ok {
		return 0, false, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, true, Validationf(key, "parameter %q is not an integer: %q", key, v)
	}
	return n, true, nil
}

// MandatoryInt parses key as an int or fails with a validation error.
func (c Config) MandatoryInt(key string) (int, error) {
	if _, ok := c[key]; !ok {
		return 0, Validationf(key, "missing mandatory parameter %q", key)
	}
	n, _, err := c.Int(key)
	return n, err
}

// Bool parses key as a boolean ("true"/"false", case as produced by the
// host glue). Absent keys return def.
func (c Config) Bool(key string, def bool) (bool, error) {
	v, ok := c[key]
	if !ok {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, Validationf(key, "parameter %q is not a boolean: %q", key, v)
	}
	return b, nil
}

// Clone returns a mutable copy. Used by the CLI when augmenting a job
// config, never by operations on the input view.
func (c Config) Clone() Config {
	out := make(Config, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

package main

import (
	"reflect"
	"strings"
	"testing"
)

func squareCall(command string) abiCall {
	return abiCall{
		vertices: []float32{
			0, 0, 0,
			1, 0, 0,
			1, 1, 0,
			0, 1, 0,
		},
		indices: []uint32{0, 1, 1, 2, 2, 3, 3, 0},
		matrices: []float32{
			1, 0, 0, 0,
			0, 1, 0, 0,
			0, 0, 1, 0,
			0, 0, 0, 1,
		},
		config: [][2]string{{"command", command}, {"tolerance", "0.01"}},
	}
}

func TestProcessGeometryRoundTrip(t *testing.T) {
	got := squareCall("centerline").invoke()
	if msg, ok := got.config["error"]; ok {
		t.Fatalf("unexpected error: %s", msg)
	}
	if len(got.vertices) == 0 || len(got.vertices)%3 != 0 {
		t.Fatalf("got %d vertex floats, want a nonzero multiple of 3", len(got.vertices))
	}
	if len(got.indices) == 0 || len(got.indices)%2 != 0 {
		t.Fatalf("got %d indices, want a nonzero edge list", len(got.indices))
	}
	vertexCount := uint32(len(got.vertices) / 3)
	for i, idx := range got.indices {
		if idx >= vertexCount {
			t.Fatalf("index %d at position %d references no vertex", idx, i)
		}
	}
	if got.config["mesh.format"] != "edges" {
		t.Errorf("mesh.format = %q, want %q", got.config["mesh.format"], "edges")
	}
	if !got.releasedClean {
		t.Error("free_process_result left pointers or counts in the struct")
	}
}

func TestProcessGeometryOutPointer(t *testing.T) {
	byValue := squareCall("centerline").invoke()
	call := squareCall("centerline")
	call.viaOutPointer = true
	intoOut := call.invoke()
	if !reflect.DeepEqual(byValue, intoOut) {
		t.Error("process_geometry_into and process_geometry disagree")
	}
}

func TestProcessGeometryErrorCarriesNoGeometry(t *testing.T) {
	got := squareCall("unknown_op").invoke()
	msg, ok := got.config["error"]
	if !ok || !strings.Contains(msg, "unknown_op") {
		t.Fatalf("error = %q, want the unknown command named", msg)
	}
	if got.geometryAllocated {
		t.Error("error result should carry null geometry arrays")
	}
	if len(got.vertices) != 0 || len(got.indices) != 0 || len(got.matrices) != 0 {
		t.Error("error result should carry zero counts")
	}
	if !got.releasedClean {
		t.Error("free_process_result left pointers or counts in the struct")
	}
}

func TestProcessGeometryNullVertexPointer(t *testing.T) {
	call := abiCall{
		nullVertexCount: 4,
		config:          [][2]string{{"command", "centerline"}, {"tolerance", "0.01"}},
	}
	got := call.invoke()
	msg, ok := got.config["error"]
	if !ok || !strings.Contains(msg, "null vertex pointer") {
		t.Fatalf("error = %q, want a null pointer decode failure", msg)
	}
	if got.geometryAllocated {
		t.Error("decode failure should carry null geometry arrays")
	}
}

func TestProcessGeometryDuplicateConfigKey(t *testing.T) {
	call := squareCall("centerline")
	call.config = append(call.config, [2]string{"tolerance", "0.5"})
	got := call.invoke()
	msg, ok := got.config["error"]
	if !ok || !strings.Contains(msg, "duplicate config key") {
		t.Fatalf("error = %q, want the duplicate key rejected", msg)
	}
}

func TestProcessGeometrySequentialRelease(t *testing.T) {
	var first abiResult
	for i := 0; i < 8; i++ {
		got := squareCall("centerline").invoke()
		if !got.releasedClean {
			t.Fatalf("call %d: result not fully released", i)
		}
		if i == 0 {
			first = got
			continue
		}
		if !reflect.DeepEqual(got, first) {
			t.Fatalf("call %d differs from the first", i)
		}
	}
}

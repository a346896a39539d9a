// libchisel builds the shared library the host loads over its C foreign
// function interface. Build with:
//
//	go build -buildmode=c-shared -o libchisel.so ./cmd/libchisel
//
// The exported surface is three functions: process_geometry (struct
// return), process_geometry_into (out-pointer variant for binders that
// cannot receive structs by value) and free_process_result. Every array
// and string in a returned ProcessResult is C-allocated and owned by the
// caller until handed back to free_process_result exactly once.
package main

/*
#include <stdlib.h>
#include "abi.h"
*/
import "C"

import (
	"sort"
	"unsafe"

	"github.com/chiselgeo/chisel"
	"github.com/chiselgeo/chisel/internal/boundary"
)

//export process_geometry
func process_geometry(
	vertices *C.Vector3, vertexCount C.size_t,
	indices *C.uint32_t, indexCount C.size_t,
	matrices *C.float, matrixCount C.size_t,
	config *C.StringMap,
) C.ProcessResult {
	result, err := decodeCall(vertices, vertexCount, indices, indexCount, matrices, matrixCount, config)
	if err != nil {
		result = chisel.Result{Config: boundary.Config{boundary.ErrorKey: err.Error()}}
	}
	return encodeResult(result)
}

//export process_geometry_into
func process_geometry_into(
	out *C.ProcessResult,
	vertices *C.Vector3, vertexCount C.size_t,
	indices *C.uint32_t, indexCount C.size_t,
	matrices *C.float, matrixCount C.size_t,
	config *C.StringMap,
) {
	if out == nil {
		return
	}
	*out = process_geometry(vertices, vertexCount, indices, indexCount, matrices, matrixCount, config)
}

//export free_process_result
func free_process_result(result *C.ProcessResult) {
	if result == nil {
		return
	}
	count := int(result._map.count)
	if result._map.keys != nil {
		for _, p := range unsafe.Slice(result._map.keys, count) {
			C.free(unsafe.Pointer(p))
		}
		C.free(unsafe.Pointer(result._map.keys))
	}
	if result._map.values != nil {
		for _, p := range unsafe.Slice(result._map.values, count) {
			C.free(unsafe.Pointer(p))
		}
		C.free(unsafe.Pointer(result._map.values))
	}
	C.free(unsafe.Pointer(result.geometry.vertices))
	C.free(unsafe.Pointer(result.geometry.indices))
	C.free(unsafe.Pointer(result.geometry.matrices))
	*result = C.ProcessResult{}
}

// decodeCall copies every input buffer out of C memory and runs the
// dispatcher. A null pointer with a nonzero count is a decode failure,
// not a crash.
func decodeCall(
	vertices *C.Vector3, vertexCount C.size_t,
	indices *C.uint32_t, indexCount C.size_t,
	matrices *C.float, matrixCount C.size_t,
	config *C.StringMap,
) (chisel.Result, error) {
	if vertices == nil && vertexCount > 0 {
		return chisel.Result{}, boundary.Decodef("null vertex pointer with count %d", uint64(vertexCount))
	}
	if indices == nil && indexCount > 0 {
		return chisel.Result{}, boundary.Decodef("null index pointer with count %d", uint64(indexCount))
	}
	if matrices == nil && matrixCount > 0 {
		return chisel.Result{}, boundary.Decodef("null matrix pointer with count %d", uint64(matrixCount))
	}

	goVertices := make([]float32, 0, int(vertexCount)*3)
	if vertexCount > 0 {
		for _, v := range unsafe.Slice(vertices, int(vertexCount)) {
			goVertices = append(goVertices, float32(v.x), float32(v.y), float32(v.z))
		}
	}
	var goIndices []uint32
	if indexCount > 0 {
		goIndices = make([]uint32, int(indexCount))
		for i, idx := range unsafe.Slice(indices, int(indexCount)) {
			goIndices[i] = uint32(idx)
		}
	}
	var goMatrices []float32
	if matrixCount > 0 {
		goMatrices = make([]float32, int(matrixCount))
		for i, f := range unsafe.Slice(matrices, int(matrixCount)) {
			goMatrices[i] = float32(f)
		}
	}
	cfg, err := decodeStringMap(config)
	if err != nil {
		return chisel.Result{}, err
	}
	return chisel.Process(goVertices, goIndices, goMatrices, cfg), nil
}

func decodeStringMap(config *C.StringMap) (chisel.Config, error) {
	cfg := chisel.Config{}
	if config == nil || config.count == 0 {
		return cfg, nil
	}
	count := int(config.count)
	if config.keys == nil || config.values == nil {
		return nil, boundary.Decodef("null config arrays with count %d", count)
	}
	keys := unsafe.Slice(config.keys, count)
	values := unsafe.Slice(config.values, count)
	for i := 0; i < count; i++ {
		if keys[i] == nil || values[i] == nil {
			return nil, boundary.Decodef("null config string at entry %d", i)
		}
		key := C.GoString(keys[i])
		if _, dup := cfg[key]; dup {
			return nil, boundary.Decodef("duplicate config key %q", key)
		}
		cfg[key] = C.GoString(values[i])
	}
	return cfg, nil
}

// encodeResult moves a dispatcher result into C-owned memory, sized
// exactly. The struct itself is the ownership record: pointer and count
// describe every allocation free_process_result has to walk.
func encodeResult(result chisel.Result) C.ProcessResult {
	var out C.ProcessResult

	flat := result.FlatVertices()
	if len(result.Vertices) > 0 {
		out.geometry.vertices = (*C.Vector3)(C.malloc(C.size_t(len(result.Vertices)) * C.sizeof_Vector3))
		dst := unsafe.Slice(out.geometry.vertices, len(result.Vertices))
		for i := range dst {
			dst[i] = C.Vector3{
				x: C.float(flat[i*3]),
				y: C.float(flat[i*3+1]),
				z: C.float(flat[i*3+2]),
			}
		}
		out.geometry.vertex_count = C.size_t(len(result.Vertices))
	}
	if len(result.Indices) > 0 {
		out.geometry.indices = (*C.uint32_t)(C.malloc(C.size_t(len(result.Indices)) * C.sizeof_uint32_t))
		dst := unsafe.Slice(out.geometry.indices, len(result.Indices))
		for i, idx := range result.Indices {
			dst[i] = C.uint32_t(idx)
		}
		out.geometry.index_count = C.size_t(len(result.Indices))
	}
	if len(result.Matrices) > 0 {
		out.geometry.matrices = (*C.float)(C.malloc(C.size_t(len(result.Matrices)) * C.sizeof_float))
		dst := unsafe.Slice(out.geometry.matrices, len(result.Matrices))
		for i, f := range result.Matrices {
			dst[i] = C.float(f)
		}
		out.geometry.matrix_count = C.size_t(len(result.Matrices))
	}

	if len(result.Config) > 0 {
		keys := make([]string, 0, len(result.Config))
		for k := range result.Config {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		out._map.keys = (**C.char)(C.malloc(C.size_t(len(keys)) * C.size_t(unsafe.Sizeof(uintptr(0)))))
		out._map.values = (**C.char)(C.malloc(C.size_t(len(keys)) * C.size_t(unsafe.Sizeof(uintptr(0)))))
		keyDst := unsafe.Slice(out._map.keys, len(keys))
		valueDst := unsafe.Slice(out._map.values, len(keys))
		for i, k := range keys {
			keyDst[i] = C.CString(k)
			valueDst[i] = C.CString(result.Config[k])
		}
		out._map.count = C.size_t(len(keys))
	}
	return out
}

func main() {}

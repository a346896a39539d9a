package main

/*
#include <stdlib.h>
#include "abi.h"
*/
import "C"

import "unsafe"

// abiCall drives the exported C surface the way a host binder would:
// inputs staged in C-allocated memory, the result copied out and handed
// back to free_process_result. Test files cannot use cgo, so the harness
// lives here.
type abiCall struct {
	vertices []float32   // 3 per vertex
	indices  []uint32
	matrices []float32   // 16 per model
	config   [][2]string // ordered pairs, duplicates staged as given

	// nullVertexCount passes a null vertex pointer with this count.
	nullVertexCount int
	// viaOutPointer routes through process_geometry_into instead of the
	// struct-return entry point.
	viaOutPointer bool
}

// abiResult is the Go copy of one ProcessResult, with the allocation
// state observed around free_process_result.
type abiResult struct {
	vertices []float32
	indices  []uint32
	matrices []float32
	config   map[string]string

	// geometryAllocated is true when any geometry array was non-null
	// before release.
	geometryAllocated bool
	// releasedClean is true when every pointer and count in the struct
	// was zeroed by free_process_result.
	releasedClean bool
}

func (c abiCall) invoke() abiResult {
	var frees []unsafe.Pointer
	defer func() {
		for _, p := range frees {
			C.free(p)
		}
	}()

	var vertPtr *C.Vector3
	var vertCount C.size_t
	switch {
	case c.nullVertexCount > 0:
		vertCount = C.size_t(c.nullVertexCount)
	case len(c.vertices) > 0:
		n := len(c.vertices) / 3
		vertPtr = (*C.Vector3)(C.malloc(C.size_t(n) * C.sizeof_Vector3))
		frees = append(frees, unsafe.Pointer(vertPtr))
		dst := unsafe.Slice(vertPtr, n)
		for i := range dst {
			dst[i] = C.Vector3{
				x: C.float(c.vertices[i*3]),
				y: C.float(c.vertices[i*3+1]),
				z: C.float(c.vertices[i*3+2]),
			}
		}
		vertCount = C.size_t(n)
	}

	var idxPtr *C.uint32_t
	var idxCount C.size_t
	if len(c.indices) > 0 {
		idxPtr = (*C.uint32_t)(C.malloc(C.size_t(len(c.indices)) * C.sizeof_uint32_t))
		frees = append(frees, unsafe.Pointer(idxPtr))
		dst := unsafe.Slice(idxPtr, len(c.indices))
		for i, idx := range c.indices {
			dst[i] = C.uint32_t(idx)
		}
		idxCount = C.size_t(len(c.indices))
	}

	var matPtr *C.float
	var matCount C.size_t
	if len(c.matrices) > 0 {
		matPtr = (*C.float)(C.malloc(C.size_t(len(c.matrices)) * C.sizeof_float))
		frees = append(frees, unsafe.Pointer(matPtr))
		dst := unsafe.Slice(matPtr, len(c.matrices))
		for i, f := range c.matrices {
			dst[i] = C.float(f)
		}
		matCount = C.size_t(len(c.matrices))
	}

	var cfg C.StringMap
	var cfgPtr *C.StringMap
	if len(c.config) > 0 {
		n := len(c.config)
		ptrSize := C.size_t(unsafe.Sizeof(uintptr(0)))
		cfg.keys = (**C.char)(C.malloc(C.size_t(n) * ptrSize))
		cfg.values = (**C.char)(C.malloc(C.size_t(n) * ptrSize))
		frees = append(frees, unsafe.Pointer(cfg.keys), unsafe.Pointer(cfg.values))
		keyDst := unsafe.Slice(cfg.keys, n)
		valueDst := unsafe.Slice(cfg.values, n)
		for i, pair := range c.config {
			keyDst[i] = C.CString(pair[0])
			valueDst[i] = C.CString(pair[1])
			frees = append(frees, unsafe.Pointer(keyDst[i]), unsafe.Pointer(valueDst[i]))
		}
		cfg.count = C.size_t(n)
		cfgPtr = &cfg
	}

	var res C.ProcessResult
	if c.viaOutPointer {
		process_geometry_into(&res, vertPtr, vertCount, idxPtr, idxCount, matPtr, matCount, cfgPtr)
	} else {
		res = process_geometry(vertPtr, vertCount, idxPtr, idxCount, matPtr, matCount, cfgPtr)
	}

	out := abiResult{config: map[string]string{}}
	out.geometryAllocated = res.geometry.vertices != nil ||
		res.geometry.indices != nil || res.geometry.matrices != nil
	if res.geometry.vertex_count > 0 {
		for _, v := range unsafe.Slice(res.geometry.vertices, int(res.geometry.vertex_count)) {
			out.vertices = append(out.vertices, float32(v.x), float32(v.y), float32(v.z))
		}
	}
	if res.geometry.index_count > 0 {
		for _, idx := range unsafe.Slice(res.geometry.indices, int(res.geometry.index_count)) {
			out.indices = append(out.indices, uint32(idx))
		}
	}
	if res.geometry.matrix_count > 0 {
		for _, f := range unsafe.Slice(res.geometry.matrices, int(res.geometry.matrix_count)) {
			out.matrices = append(out.matrices, float32(f))
		}
	}
	if res._map.count > 0 {
		keys := unsafe.Slice(res._map.keys, int(res._map.count))
		values := unsafe.Slice(res._map.values, int(res._map.count))
		for i := range keys {
			out.config[C.GoString(keys[i])] = C.GoString(values[i])
		}
	}

	free_process_result(&res)
	out.releasedClean = res.geometry.vertices == nil && res.geometry.vertex_count == 0 &&
		res.geometry.indices == nil && res.geometry.index_count == 0 &&
		res.geometry.matrices == nil && res.geometry.matrix_count == 0 &&
		res._map.keys == nil && res._map.values == nil && res._map.count == 0
	return out
}

// Package host drives a built libchisel shared library the same way a
// content-creation host would: through the C ABI, loaded at runtime.
// It exists for the probe subcommand of the CLI and for exercising the
// marshalling layer end to end without a host application.
package host

import (
	"fmt"
	"runtime"
	"sort"
	"unsafe"

	"github.com/ebitengine/purego"
)

// Output is the copied-out content of one ProcessResult. All slices are
// Go-owned; the C allocations are released before Call returns.
type Output struct {
	Vertices []float32
	Indices  []uint32
	Matrices []float32
	Config   map[string]string
}

// Err returns the diagnostic carried under the error key, or nil.
func (o *Output) Err() error {
	if msg, ok := o.Config["error"]; ok {
		return fmt.Errorf("libchisel: %s", msg)
	}
	return nil
}

// rawResult mirrors the C ProcessResult layout: GeometryOutput followed
// by StringMap, every field pointer-sized.
type rawResult struct {
	vertices    uintptr
	vertexCount uintptr
	indices     uintptr
	indexCount  uintptr
	matrices    uintptr
	matrixCount uintptr
	keys        uintptr
	values      uintptr
	count       uintptr
}

// rawStringMap mirrors the C StringMap layout.
type rawStringMap struct {
	keys   uintptr
	values uintptr
	count  uintptr
}

// Library is a loaded libchisel instance.
type Library struct {
	handle      uintptr
	processInto func(out, vertices, vertexCount, indices, indexCount, matrices, matrixCount, config uintptr)
	freeResult  func(result uintptr)
}

// Load opens the shared library at path and binds the boundary
// functions. The out-pointer variant is used because purego cannot
// receive structs by value on every platform.
func Load(path string) (*Library, error) {
	handle, err := openLibrary(path)
	if err != nil {
		return nil, fmt.Errorf("host: loading %s: %w", path, err)
	}
	lib := &Library{handle: handle}
	purego.RegisterLibFunc(&lib.processInto, handle, "process_geometry_into")
	purego.RegisterLibFunc(&lib.freeResult, handle, "free_process_result")
	return lib, nil
}

// Call marshals the buffers into the C layout, runs process_geometry_into
// and copies the result out of C memory. The C result is released before
// returning, so the Output owns everything it holds.
func (l *Library) Call(vertices []float32, indices []uint32, matrices []float32, cfg map[string]string) (Output, error) {
	if len(vertices)%3 != 0 {
		return Output{}, fmt.Errorf("host: vertex buffer length %d is not a multiple of 3", len(vertices))
	}

	keys := make([]string, 0, len(cfg))
	for k := range cfg {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	// Null-terminated key/value strings plus pointer arrays, all in Go
	// memory and kept alive across the call.
	keyBytes := make([][]byte, len(keys))
	valueBytes := make([][]byte, len(keys))
	keyPtrs := make([]uintptr, len(keys))
	valuePtrs := make([]uintptr, len(keys))
	for i, k := range keys {
		keyBytes[i] = append([]byte(k), 0)
		valueBytes[i] = append([]byte(cfg[k]), 0)
		keyPtrs[i] = uintptr(unsafe.Pointer(&keyBytes[i][0]))
		valuePtrs[i] = uintptr(unsafe.Pointer(&valueBytes[i][0]))
	}
	var sm rawStringMap
	if len(keys) > 0 {
		sm.keys = uintptr(unsafe.Pointer(&keyPtrs[0]))
		sm.values = uintptr(unsafe.Pointer(&valuePtrs[0]))
		sm.count = uintptr(len(keys))
	}

	var out rawResult
	l.processInto(
		uintptr(unsafe.Pointer(&out)),
		sliceAddr(vertices), uintptr(len(vertices)/3),
		sliceAddr(indices), uintptr(len(indices)),
		sliceAddr(matrices), uintptr(len(matrices)),
		uintptr(unsafe.Pointer(&sm)),
	)
	runtime.KeepAlive(vertices)
	runtime.KeepAlive(indices)
	runtime.KeepAlive(matrices)
	runtime.KeepAlive(keyBytes)
	runtime.KeepAlive(valueBytes)
	runtime.KeepAlive(keyPtrs)
	runtime.KeepAlive(valuePtrs)

	output := copyOut(&out)
	l.freeResult(uintptr(unsafe.Pointer(&out)))
	if err := output.Err(); err != nil {
		return output, err
	}
	return output, nil
}

func sliceAddr[T any](s []T) uintptr {
	if len(s) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&s[0]))
}

// copyOut clones every C array of a result into Go memory.
func copyOut(raw *rawResult) Output {
	out := Output{Config: make(map[string]string, raw.count)}
	if raw.vertices != 0 && raw.vertexCount > 0 {
		src := unsafe.Slice((*float32)(unsafe.Pointer(raw.vertices)), raw.vertexCount*3)
		out.Vertices = append([]float32(nil), src...)
	}
	if raw.indices != 0 && raw.indexCount > 0 {
		src := unsafe.Slice((*uint32)(unsafe.Pointer(raw.indices)), raw.indexCount)
		out.Indices = append([]uint32(nil), src...)
	}
	if raw.matrices != 0 && raw.matrixCount > 0 {
		src := unsafe.Slice((*float32)(unsafe.Pointer(raw.matrices)), raw.matrixCount)
		out.Matrices = append([]float32(nil), src...)
	}
	if raw.keys != 0 && raw.values != 0 && raw.count > 0 {
		keyPtrs := unsafe.Slice((*uintptr)(unsafe.Pointer(raw.keys)), raw.count)
		valuePtrs := unsafe.Slice((*uintptr)(unsafe.Pointer(raw.values)), raw.count)
		for i := range keyPtrs {
			out.Config[cString(keyPtrs[i])] = cString(valuePtrs[i])
		}
	}
	return out
}

// cString reads a null-terminated C string.
func cString(p uintptr) string {
	if p == 0 {
		return ""
	}
	var buf []byte
	for i := uintptr(0); ; i++ {
		b := *(*byte)(unsafe.Pointer(p + i))
		if b == 0 {
			return string(buf)
		}
		buf = append(buf, b)
	}
}

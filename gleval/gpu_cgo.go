//go:build !tinygo && cgo

package gleval

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/soypat/dfedit"
	"github.com/soypat/dfedit/glbuild"
	"github.com/soypat/geometry/ms2"
	"github.com/soypat/glgl/v4.6-core/glgl"
)

// ssboSet holds the storage buffers created for a single dispatch.
type ssboSet struct {
	ids []uint32
}

// upload creates a buffer of size bytes initialized from data, which may be nil,
// and binds it at binding.
func (s *ssboSet) upload(data unsafe.Pointer, size, binding int, usage uint32) (uint32, error) {
	var id uint32
	gl.GenBuffers(1, &id)
	if id == 0 {
		return 0, glErrOrMessage(fmt.Sprintf("zero SSBO id for binding %d", binding))
	}
	s.ids = append(s.ids, id)
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, id)
	gl.BufferData(gl.SHADER_STORAGE_BUFFER, size, data, usage)
	gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, uint32(binding), id)
	return id, nil
}

func (s *ssboSet) release() {
	if len(s.ids) == 0 {
		return
	}
	gl.DeleteBuffers(int32(len(s.ids)), &s.ids[0])
	if err := glgl.Err(); err != nil {
		dfedit.Logger().Warn("releasing SSBOs", "count", len(s.ids), "error", err)
	}
	s.ids = s.ids[:0]
}

// readSSBO copies len(dst) elements from the start of buffer id into dst.
func readSSBO[T any](dst []T, id uint32) error {
	var z T
	size := len(dst) * int(unsafe.Sizeof(z))
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, id)
	ptr := gl.MapBufferRange(gl.SHADER_STORAGE_BUFFER, 0, size, gl.MAP_READ_BIT)
	if ptr == nil {
		return glErrOrMessage("mapping SSBO for read")
	}
	copy(unsafe.Slice((*byte)(unsafe.Pointer(&dst[0])), size), unsafe.Slice((*byte)(ptr), size))
	if !gl.UnmapBuffer(gl.SHADER_STORAGE_BUFFER) {
		return glErrOrMessage("SSBO contents corrupted during read")
	}
	return nil
}

// computeEvaluate dispatches the bound tape program over pos. The tape objects are uploaded at
// their own bindings. The id buffer is always bound since the interpreter writes to it, but it
// is only read back when ids is non-nil.
func computeEvaluate(pos []ms2.Vec, dist []float32, ids []uint32, invocX int, objects []glbuild.ShaderObject) error {
	n := len(dist)
	switch {
	case n == 0:
		return errEmptyBuffers
	case len(pos) != n || (ids != nil && len(ids) != n):
		return errMismatchBufferLength
	case invocX < 1:
		return errors.New("zero or negative invocation size")
	}
	var set ssboSet
	defer set.release()
	for _, obj := range objects {
		if !obj.IsBindable() {
			continue
		}
		_, err := set.upload(obj.Data, obj.Size, obj.Binding, gl.STATIC_DRAW)
		if err != nil {
			return fmt.Errorf("uploading %s: %w", obj.NamePtr, err)
		}
	}
	_, err := set.upload(unsafe.Pointer(&pos[0]), n*int(unsafe.Sizeof(pos[0])), glbuild.BindingPositions, gl.STATIC_DRAW)
	if err != nil {
		return err
	}
	distID, err := set.upload(nil, n*int(unsafe.Sizeof(dist[0])), glbuild.BindingDistances, gl.DYNAMIC_READ)
	if err != nil {
		return err
	}
	idsID, err := set.upload(nil, n*int(unsafe.Sizeof(uint32(0))), glbuild.BindingIDs, gl.DYNAMIC_READ)
	if err != nil {
		return err
	}

	gl.DispatchCompute(uint32((n+invocX-1)/invocX), 1, 1)
	gl.MemoryBarrier(gl.SHADER_STORAGE_BARRIER_BIT)
	err = readSSBO(dist, distID)
	if err == nil && ids != nil {
		err = readSSBO(ids, idsID)
	}
	if err != nil {
		return err
	}
	return glgl.Err()
}

func glErrOrMessage(msg string) error {
	if err := glgl.Err(); err != nil {
		return fmt.Errorf("%s: %w", msg, err)
	}
	return errors.New(msg)
}

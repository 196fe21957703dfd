// Package glbuild generates compute shaders that interpret dfedit tapes on the GPU.
package glbuild

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"unsafe"

	"github.com/soypat/geometry/ms2"
)

const VersionStr = "#version 430\n"

var defaultComputeHeader = []byte("#shader compute\n" + VersionStr)

// ShaderObject is a handle to data or code needed to evaluate a tape on the GPU.
// It is either a Shader Storage Buffer Object (SSBO), a 1D array of structured data,
// or the GLSL source of a function called by the interpreter.
type ShaderObject struct {
	// NamePtr is the name of the buffer or function inside of the shader.
	NamePtr []byte
	// Element is the element type of a buffer.
	Element reflect.Type
	// Data points to the first element of a buffer.
	Data unsafe.Pointer
	// Size of the buffer in bytes.
	Size int
	// Binding is the buffer's binding point. It is -1 until assigned.
	Binding int

	readOnly   bool
	funcSource []byte
}

// glTypes maps Go element types to their std430 GLSL equivalent.
var glTypes = map[reflect.Type]string{
	reflect.TypeOf(float32(0)):   "float",
	reflect.TypeOf(uint32(0)):    "uint",
	reflect.TypeOf(int32(0)):     "int",
	reflect.TypeOf(ms2.Vec{}):    "vec2",
	reflect.TypeOf([2]ms2.Vec{}): "vec4",
	reflect.TypeOf([2]uint32{}):  "uvec2",
	reflect.TypeOf([2]int32{}):   "ivec2",
}

// MakeShaderFunction parses a GLSL function definition of the form
//
//	<type> <name>(<args>) { <body> }
func MakeShaderFunction(src []byte) (ShaderObject, error) {
	src = bytes.TrimSpace(src)
	open := bytes.IndexByte(src, '(')
	space := bytes.IndexByte(src, ' ')
	if open < 0 || space < 0 || space > open {
		return ShaderObject{}, errors.New("unable to parse function name")
	}
	name := bytes.TrimSpace(src[space:open])
	if len(name) == 0 {
		return ShaderObject{}, errors.New("empty function name")
	}
	return ShaderObject{NamePtr: name, funcSource: src, Binding: -1}, nil
}

// MakeShaderBufferReadOnly returns a read-only SSBO over data with an unassigned binding.
// data must stay alive and unmodified until the buffer is uploaded.
func MakeShaderBufferReadOnly[T any](name []byte, data []T) (ShaderObject, error) {
	if len(data) == 0 {
		return ShaderObject{}, errors.New("empty shader buffer data")
	}
	var z T
	obj := ShaderObject{
		NamePtr:  name,
		Element:  reflect.TypeOf(z),
		Data:     unsafe.Pointer(&data[0]),
		Size:     int(unsafe.Sizeof(z)) * len(data),
		readOnly: true,
	}
	if _, ok := glTypes[obj.Element]; !ok {
		return ShaderObject{}, fmt.Errorf("no GLSL type for %s buffer %q", obj.Element, name)
	}
	obj.Binding = -1
	return obj, nil
}

func (obj ShaderObject) IsFunction() bool { return len(obj.funcSource) > 0 }
func (obj ShaderObject) IsBindable() bool { return !obj.IsFunction() }

// Validate checks obj is a function or a buffer ready to be declared.
func (obj ShaderObject) Validate() error {
	switch {
	case len(obj.NamePtr) == 0:
		return errors.New("shader object zero-length name")
	case obj.IsFunction():
		return nil
	case obj.Data == nil:
		return fmt.Errorf("buffer %q has nil data", obj.NamePtr)
	case obj.Size <= 0:
		return fmt.Errorf("buffer %q has non-positive size %d", obj.NamePtr, obj.Size)
	case !obj.readOnly:
		return fmt.Errorf("buffer %q has no usage defined", obj.NamePtr)
	case obj.Binding < 0:
		return fmt.Errorf("buffer %q has no binding point", obj.NamePtr)
	}
	if _, ok := glTypes[obj.Element]; !ok {
		return fmt.Errorf("no GLSL type for buffer %q element %v", obj.NamePtr, obj.Element)
	}
	return nil
}

// Programmer generates tape interpreter shaders.
type Programmer struct {
	scratch       []byte
	computeHeader []byte
	// funcs maps function names to their source while writing a program.
	funcs  map[string][]byte
	invocX int
}

// NewDefaultProgrammer returns a Programmer suited for use with the glgl package on the local machine.
func NewDefaultProgrammer() *Programmer {
	return &Programmer{
		scratch:       make([]byte, 1024),
		computeHeader: defaultComputeHeader,
		funcs:         make(map[string][]byte),
		invocX:        32,
	}
}

// SetComputeInvocations sets the work group local sizes. Only one dimensional groups are supported.
func (p *Programmer) SetComputeInvocations(x, y, z int) {
	if y != 1 || z != 1 {
		panic("unsupported")
	} else if x < 1 {
		panic("zero or negative X invocation size")
	}
	p.invocX = x
}

// ComputeInvocations returns the work group local sizes in x, y and z.
func (p *Programmer) ComputeInvocations() (int, int, int) {
	return p.invocX, 1, 1
}

// appendFunctions appends the source of each function once. Functions sharing a
// name must share a body.
func (p *Programmer) appendFunctions(dst []byte, funcs []ShaderObject) ([]byte, error) {
	clear(p.funcs)
	for _, fn := range funcs {
		if !fn.IsFunction() {
			return dst, fmt.Errorf("shader object %q is not a function", fn.NamePtr)
		}
		prev, seen := p.funcs[string(fn.NamePtr)]
		if seen {
			if !bytes.Equal(prev, fn.funcSource) {
				return dst, fmt.Errorf("duplicate function name %q with different bodies", fn.NamePtr)
			}
			continue
		}
		p.funcs[string(fn.NamePtr)] = fn.funcSource
		dst = append(dst, '\n')
		dst = append(dst, fn.funcSource...)
		dst = append(dst, '\n')
	}
	return dst, nil
}

// AppendShaderBufferDecl appends the declaration of a buffer object:
//
//	layout(std430,binding=<Binding>) buffer <blockName> {
//		<type> <NamePtr>[];
//	} <instanceName>;
//
// instanceName may be empty.
func AppendShaderBufferDecl(dst []byte, blockName, instanceName string, obj ShaderObject) ([]byte, error) {
	if err := obj.Validate(); err != nil {
		return dst, err
	} else if obj.IsFunction() {
		return dst, fmt.Errorf("cannot declare function %q as buffer", obj.NamePtr)
	} else if blockName == "" {
		return dst, fmt.Errorf("buffer %q requires a block name", obj.NamePtr)
	}
	dst = append(dst, "layout(std430,binding="...)
	dst = strconv.AppendInt(dst, int64(obj.Binding), 10)
	dst = append(dst, ") buffer "...)
	dst = append(dst, blockName...)
	dst = append(dst, " {\n\t"...)
	dst = append(dst, glTypes[obj.Element]...)
	dst = append(dst, ' ')
	dst = append(dst, obj.NamePtr...)
	dst = append(dst, "[];\n}"...)
	if instanceName != "" {
		dst = append(dst, ' ')
		dst = append(dst, instanceName...)
	}
	dst = append(dst, ";\n"...)
	return dst, nil
}

// AppendDefineDecl appends a preprocessor definition of name as value.
func AppendDefineDecl(dst []byte, name, value string) []byte {
	dst = append(dst, "#define "...)
	dst = append(dst, name...)
	dst = append(dst, ' ')
	dst = append(dst, value...)
	return append(dst, '\n')
}

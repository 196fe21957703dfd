// Package glsllib holds the GLSL functions the tape interpreter shader calls.
// Functions referencing DF_* macros expect the definitions emitted by
// [glbuild.Programmer.WriteComputeTape].
package glsllib

import (
	_ "embed"

	"github.com/soypat/dfedit/glbuild"
)

var (
	//go:embed disk.glsl
	diskSrc []byte
	//go:embed torus.glsl
	torusSrc []byte
	//go:embed rect.glsl
	rectSrc []byte
	//go:embed cross.glsl
	crossSrc []byte
	//go:embed segment.glsl
	segmentSrc []byte
	//go:embed plane.glsl
	planeSrc []byte
	//go:embed ray.glsl
	raySrc []byte
	//go:embed shape.glsl
	shapeSrc []byte
	//go:embed operate.glsl
	operateSrc []byte
)

func mustFunc(src []byte) glbuild.ShaderObject {
	obj, err := glbuild.MakeShaderFunction(src)
	if err != nil {
		panic(err)
	}
	return obj
}

// Disk is the SDF of a disk centered at the origin:
//
//	float dfDisk(vec2 p, float r)
func Disk() glbuild.ShaderObject { return mustFunc(diskSrc) }

// Torus is the SDF of an annulus:
//
//	float dfTorus(vec2 p, vec2 radii)
func Torus() glbuild.ShaderObject { return mustFunc(torusSrc) }

// Rectangle is the SDF of a width by height box:
//
//	float dfRect(vec2 p, vec2 wh)
func Rectangle() glbuild.ShaderObject { return mustFunc(rectSrc) }

// Cross is the SDF of a plus sign given bar length and thickness:
//
//	float dfCross(vec2 p, vec2 lt)
func Cross() glbuild.ShaderObject { return mustFunc(crossSrc) }

// Segment is the distance to the line segment from ab.xy to ab.zw:
//
//	float dfSegment(vec2 p, vec4 ab)
func Segment() glbuild.ShaderObject { return mustFunc(segmentSrc) }

// Plane is the SDF of a half-plane through the origin:
//
//	float dfPlane(vec2 p, vec2 n)
func Plane() glbuild.ShaderObject { return mustFunc(planeSrc) }

// Ray is the distance to a ray starting at the origin:
//
//	float dfRay(vec2 p, vec2 dir)
func Ray() glbuild.ShaderObject { return mustFunc(raySrc) }

// Shape dispatches on a DF_* shape code. Unknown codes return +Inf.
//
//	float dfShape(uint kind, vec2 p, vec4 prm)
func Shape() glbuild.ShaderObject { return mustFunc(shapeSrc) }

// Operate combines two tagged distances with a DF_* operator code.
//
//	void dfOperate(uint op, float a, uint aid, float b, uint bid, out float d, out uint id)
func Operate() glbuild.ShaderObject { return mustFunc(operateSrc) }

// TapeInterpreter returns every function the tape interpreter needs in declaration order.
func TapeInterpreter() []glbuild.ShaderObject {
	return []glbuild.ShaderObject{
		Disk(), Torus(), Rectangle(), Cross(), Segment(), Plane(), Ray(),
		Shape(), Operate(),
	}
}

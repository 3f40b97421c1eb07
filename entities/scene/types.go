// Package scene defines the scene document — the authoritative in-memory
// description of every object, light, the camera and global settings — plus
// the command union that mutates it. Optional fields are pointers: nil means
// "not specified", and defaults are applied where the value is consumed.
package scene

import "github.com/chewxy/math32"

// Vec3 is a 3-component vector. Rotations are in radians.
type Vec3 struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
}

// V3 constructs a Vec3.
func V3(x, y, z float32) Vec3 { return Vec3{X: x, Y: y, Z: z} }

func (a Vec3) Add(b Vec3) Vec3 { return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }

func (a Vec3) Sub(b Vec3) Vec3 { return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }

func (a Vec3) Scale(s float32) Vec3 { return Vec3{a.X * s, a.Y * s, a.Z * s} }

func (a Vec3) Dot(b Vec3) float32 { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }

func (a Vec3) Cross(b Vec3) Vec3 {
	return Vec3{
		a.Y*b.Z - a.Z*b.Y,
		a.Z*b.X - a.X*b.Z,
		a.X*b.Y - a.Y*b.X,
	}
}

func (a Vec3) Length() float32 { return math32.Sqrt(a.Dot(a)) }

func (a Vec3) Normalized() Vec3 {
	l := a.Length()
	if l < 1e-8 {
		return Vec3{}
	}
	return a.Scale(1 / l)
}

// GeometryKind is the closed set of primitive shapes.
type GeometryKind string

const (
	GeometryBox          GeometryKind = "box"
	GeometrySphere       GeometryKind = "sphere"
	GeometryCylinder     GeometryKind = "cylinder"
	GeometryCone         GeometryKind = "cone"
	GeometryTorus        GeometryKind = "torus"
	GeometryTorusKnot    GeometryKind = "torusKnot"
	GeometryPlane        GeometryKind = "plane"
	GeometryCircle       GeometryKind = "circle"
	GeometryRing         GeometryKind = "ring"
	GeometryCapsule      GeometryKind = "capsule"
	GeometryTetrahedron  GeometryKind = "tetrahedron"
	GeometryOctahedron   GeometryKind = "octahedron"
	GeometryDodecahedron GeometryKind = "dodecahedron"
	GeometryIcosahedron  GeometryKind = "icosahedron"
)

// Geometry describes a primitive shape. Every parameter is optional; which
// ones apply depends on Type:
//
//	box:          width, height, depth (all 1)
//	sphere:       radius (0.5), widthSegments (24), heightSegments (16)
//	cylinder:     radiusTop (0.5), radiusBottom (0.5), height (1), radialSegments (24)
//	cone:         radius (0.5), height (1), radialSegments (24)
//	torus:        radius (0.5), tube (0.2), radialSegments (12), tubularSegments (32)
//	torusKnot:    radius (0.5), tube (0.15), tubularSegments (64), radialSegments (8), p (2), q (3)
//	plane:        width (1), height (1)
//	circle:       radius (0.5), segments (24)
//	ring:         innerRadius (0.25), outerRadius (0.5), segments (24)
//	capsule:      radius (0.25), length (0.5), capSegments (8), radialSegments (16)
//	tetrahedron, octahedron, dodecahedron, icosahedron: radius (0.5)
//
// An unrecognized Type renders as a unit box.
type Geometry struct {
	Type GeometryKind `json:"type"`

	Width  *float32 `json:"width,omitempty"`
	Height *float32 `json:"height,omitempty"`
	Depth  *float32 `json:"depth,omitempty"`

	Radius       *float32 `json:"radius,omitempty"`
	RadiusTop    *float32 `json:"radiusTop,omitempty"`
	RadiusBottom *float32 `json:"radiusBottom,omitempty"`
	Tube         *float32 `json:"tube,omitempty"`
	InnerRadius  *float32 `json:"innerRadius,omitempty"`
	OuterRadius  *float32 `json:"outerRadius,omitempty"`
	Length       *float32 `json:"length,omitempty"`

	WidthSegments   *int `json:"widthSegments,omitempty"`
	HeightSegments  *int `json:"heightSegments,omitempty"`
	RadialSegments  *int `json:"radialSegments,omitempty"`
	TubularSegments *int `json:"tubularSegments,omitempty"`
	Segments        *int `json:"segments,omitempty"`
	CapSegments     *int `json:"capSegments,omitempty"`
	P               *int `json:"p,omitempty"`
	Q               *int `json:"q,omitempty"`
}

// MaterialKind is the closed set of surface materials.
type MaterialKind string

const (
	MaterialStandard MaterialKind = "standard"
	MaterialBasic    MaterialKind = "basic"
	MaterialPhong    MaterialKind = "phong"
	MaterialLambert  MaterialKind = "lambert"
	MaterialToon     MaterialKind = "toon"
	MaterialShader   MaterialKind = "shader"
)

// Material describes a surface. Colors are "#rrggbb" hex strings.
// Defaults: color #888888, opacity 1, metalness 0.1, roughness 0.7,
// emissiveIntensity 0, wireframe false, flatShading false.
// An unrecognized Type renders as basic.
type Material struct {
	Type MaterialKind `json:"type"`

	Color             *string  `json:"color,omitempty"`
	Opacity           *float32 `json:"opacity,omitempty"`
	Metalness         *float32 `json:"metalness,omitempty"`
	Roughness         *float32 `json:"roughness,omitempty"`
	Emissive          *string  `json:"emissive,omitempty"`
	EmissiveIntensity *float32 `json:"emissiveIntensity,omitempty"`
	Wireframe         *bool    `json:"wireframe,omitempty"`
	FlatShading       *bool    `json:"flatShading,omitempty"`

	// Shader tunes the custom shader material; only meaningful when
	// Type is "shader".
	Shader *ShaderConfig `json:"shader,omitempty"`
}

// ShaderConfig tunes the animated two-color wave shader.
// Defaults: colorA #ff0080, colorB #0080ff, speed 1, frequency 3,
// amplitude 0.5.
type ShaderConfig struct {
	ColorA    *string  `json:"colorA,omitempty"`
	ColorB    *string  `json:"colorB,omitempty"`
	Speed     *float32 `json:"speed,omitempty"`
	Frequency *float32 `json:"frequency,omitempty"`
	Amplitude *float32 `json:"amplitude,omitempty"`
}

// AnimationKind is the closed set of animation procedures.
type AnimationKind string

const (
	AnimationNone   AnimationKind = "none"
	AnimationRotate AnimationKind = "rotate"
	AnimationBounce AnimationKind = "bounce"
	AnimationFloat  AnimationKind = "float"
	AnimationPulse  AnimationKind = "pulse"
	AnimationOrbit  AnimationKind = "orbit"
)

// Animation describes a per-object animation procedure.
// Defaults: speed 1, axis "y", amplitude 0.5, center origin, radius 2.
type Animation struct {
	Type      AnimationKind `json:"type"`
	Speed     *float32      `json:"speed,omitempty"`
	Axis      *string       `json:"axis,omitempty"`
	Amplitude *float32      `json:"amplitude,omitempty"`
	Center    *Vec3         `json:"center,omitempty"`
	Radius    *float32      `json:"radius,omitempty"`
}

// Active reports whether the animation requires per-frame work.
func (a *Animation) Active() bool {
	return a != nil && a.Type != "" && a.Type != AnimationNone
}

// Object is one renderable entity in the document, keyed by ID.
// Absent position/rotation default to 0,0,0; absent scale to 1,1,1;
// objects are visible and cast no shadows unless stated otherwise.
type Object struct {
	ID            string     `json:"id,omitempty"`
	Name          *string    `json:"name,omitempty"`
	Geometry      *Geometry  `json:"geometry,omitempty"`
	Material      *Material  `json:"material,omitempty"`
	Position      *Vec3      `json:"position,omitempty"`
	Rotation      *Vec3      `json:"rotation,omitempty"`
	Scale         *Vec3      `json:"scale,omitempty"`
	Animation     *Animation `json:"animation,omitempty"`
	Visible       *bool      `json:"visible,omitempty"`
	CastShadow    *bool      `json:"castShadow,omitempty"`
	ReceiveShadow *bool      `json:"receiveShadow,omitempty"`
}

// LightKind is the closed set of light types.
type LightKind string

const (
	LightAmbient     LightKind = "ambient"
	LightDirectional LightKind = "directional"
	LightPoint       LightKind = "point"
	LightSpot        LightKind = "spot"
	LightHemisphere  LightKind = "hemisphere"
)

// Light is one light source, keyed by ID. Defaults: color #ffffff,
// intensity 1. Spot lights additionally take angle (π/3), penumbra (0),
// decay (2) and distance (0 = unlimited); hemisphere takes groundColor
// (#444444). An unrecognized Type falls back to ambient.
type Light struct {
	ID   string    `json:"id,omitempty"`
	Type LightKind `json:"type,omitempty"`

	Color     *string  `json:"color,omitempty"`
	Intensity *float32 `json:"intensity,omitempty"`
	Position  *Vec3    `json:"position,omitempty"`
	Target    *Vec3    `json:"target,omitempty"`

	Angle       *float32 `json:"angle,omitempty"`
	Penumbra    *float32 `json:"penumbra,omitempty"`
	Decay       *float32 `json:"decay,omitempty"`
	Distance    *float32 `json:"distance,omitempty"`
	GroundColor *string  `json:"groundColor,omitempty"`
}

// AutoRotate orbits the camera around its look-at point when enabled.
type AutoRotate struct {
	Enabled bool     `json:"enabled"`
	Speed   *float32 `json:"speed,omitempty"`
}

// Camera is the single per-scene camera. Updates merge field-by-field.
type Camera struct {
	Position   *Vec3       `json:"position,omitempty"`
	LookAt     *Vec3       `json:"lookAt,omitempty"`
	Fov        *float32    `json:"fov,omitempty"`
	Near       *float32    `json:"near,omitempty"`
	Far        *float32    `json:"far,omitempty"`
	Zoom       *float32    `json:"zoom,omitempty"`
	AutoRotate *AutoRotate `json:"autoRotate,omitempty"`
}

// Fog is linear distance fog.
type Fog struct {
	Color string  `json:"color"`
	Near  float32 `json:"near"`
	Far   float32 `json:"far"`
}

// Config holds scene-global settings. Background is a "#rrggbb" color or
// the sentinel "transparent".
type Config struct {
	Background *string `json:"background,omitempty"`
	Fog        *Fog    `json:"fog,omitempty"`
}

// Document is the whole scene state. It is value-like: the dispatcher never
// mutates a Document in place, every command application yields a new
// snapshot (maps are copied on write, nested records are treated as
// immutable once stored).
type Document struct {
	Objects map[string]Object `json:"objects"`
	Lights  map[string]Light  `json:"lights"`
	Camera  Camera            `json:"camera"`
	Config  Config            `json:"config"`
}

// Helpers for reading optional fields with defaults.

// FloatOr returns *p, or def when p is nil.
func FloatOr(p *float32, def float32) float32 {
	if p == nil {
		return def
	}
	return *p
}

// IntOr returns *p, or def when p is nil.
func IntOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

// StringOr returns *p, or def when p is nil or empty.
func StringOr(p *string, def string) string {
	if p == nil || *p == "" {
		return def
	}
	return *p
}

// BoolOr returns *p, or def when p is nil.
func BoolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

// VecOr returns *p, or def when p is nil.
func VecOr(p *Vec3, def Vec3) Vec3 {
	if p == nil {
		return def
	}
	return *p
}

package stage

import (
	"image"

	"github.com/chewxy/math32"

	"scene-studio/entities/scene"
	"scene-studio/tools/render"
)

// SoftEngine is a pure-software render backend: geometry is triangulated on
// the CPU and snapshots are rasterized into images, so the server can
// preview scenes without a GPU. It implements Engine.
type SoftEngine struct{}

// NewSoftEngine returns a software engine.
func NewSoftEngine() *SoftEngine { return &SoftEngine{} }

type softGeometry struct {
	mesh render.Mesh
}

func (g *softGeometry) Dispose() { g.mesh = render.Mesh{} }

type shaderParams struct {
	colorA    render.Vec
	colorB    render.Vec
	speed     float32
	frequency float32
	amplitude float32
}

type softMaterial struct {
	color             render.Vec
	opacity           float32
	emissive          render.Vec
	emissiveIntensity float32
	unlit             bool
	shader            *shaderParams
}

func (m *softMaterial) Dispose() {}

type softLight struct {
	spec scene.Light
}

func (l *softLight) Update(spec scene.Light) { l.spec = spec }
func (l *softLight) Dispose()                {}

// CreateGeometry triangulates a primitive descriptor. Unset parameters take
// their documented defaults; an unrecognized kind yields a unit box.
func (e *SoftEngine) CreateGeometry(g scene.Geometry) (GeometryHandle, error) {
	return &softGeometry{mesh: BuildMesh(g)}, nil
}

// BuildMesh is the pure geometry factory keyed by the primitive enumeration.
func BuildMesh(g scene.Geometry) render.Mesh {
	f := scene.FloatOr
	i := scene.IntOr

	switch g.Type {
	case scene.GeometrySphere:
		return render.Sphere(f(g.Radius, 0.5), i(g.WidthSegments, 24), i(g.HeightSegments, 16))
	case scene.GeometryCylinder:
		return render.Cylinder(f(g.RadiusTop, 0.5), f(g.RadiusBottom, 0.5), f(g.Height, 1), i(g.RadialSegments, 24))
	case scene.GeometryCone:
		return render.Cylinder(0, f(g.Radius, 0.5), f(g.Height, 1), i(g.RadialSegments, 24))
	case scene.GeometryTorus:
		return render.Torus(f(g.Radius, 0.5), f(g.Tube, 0.2), i(g.RadialSegments, 12), i(g.TubularSegments, 32))
	case scene.GeometryTorusKnot:
		return render.TorusKnot(f(g.Radius, 0.5), f(g.Tube, 0.15),
			i(g.TubularSegments, 64), i(g.RadialSegments, 8), i(g.P, 2), i(g.Q, 3))
	case scene.GeometryPlane:
		return render.Plane(f(g.Width, 1), f(g.Height, 1))
	case scene.GeometryCircle:
		return render.Circle(f(g.Radius, 0.5), i(g.Segments, 24))
	case scene.GeometryRing:
		return render.Ring(f(g.InnerRadius, 0.25), f(g.OuterRadius, 0.5), i(g.Segments, 24))
	case scene.GeometryCapsule:
		return render.Capsule(f(g.Radius, 0.25), f(g.Length, 0.5), i(g.CapSegments, 8), i(g.RadialSegments, 16))
	case scene.GeometryTetrahedron:
		return render.Tetrahedron(f(g.Radius, 0.5))
	case scene.GeometryOctahedron:
		return render.Octahedron(f(g.Radius, 0.5))
	case scene.GeometryDodecahedron:
		return render.Dodecahedron(f(g.Radius, 0.5))
	case scene.GeometryIcosahedron:
		return render.Icosahedron(f(g.Radius, 0.5))
	case scene.GeometryBox:
		fallthrough
	default:
		return render.Box(f(g.Width, 1), f(g.Height, 1), f(g.Depth, 1))
	}
}

// CreateMaterial resolves a material descriptor. An unrecognized kind
// renders as basic.
func (e *SoftEngine) CreateMaterial(m scene.Material) (MaterialHandle, error) {
	mat := &softMaterial{
		color:             render.ParseHexColor(scene.StringOr(m.Color, "#888888")),
		opacity:           scene.FloatOr(m.Opacity, 1),
		emissiveIntensity: scene.FloatOr(m.EmissiveIntensity, 0),
	}
	if m.Emissive != nil {
		mat.emissive = render.ParseHexColor(*m.Emissive)
	}

	switch m.Type {
	case scene.MaterialStandard, scene.MaterialPhong, scene.MaterialLambert, scene.MaterialToon:
		// All lit kinds shade the same way in the software backend.
	case scene.MaterialShader:
		var sc scene.ShaderConfig
		if m.Shader != nil {
			sc = *m.Shader
		}
		mat.unlit = true
		mat.shader = &shaderParams{
			colorA:    render.ParseHexColor(scene.StringOr(sc.ColorA, "#ff0080")),
			colorB:    render.ParseHexColor(scene.StringOr(sc.ColorB, "#0080ff")),
			speed:     scene.FloatOr(sc.Speed, 1),
			frequency: scene.FloatOr(sc.Frequency, 3),
			amplitude: scene.FloatOr(sc.Amplitude, 0.5),
		}
	case scene.MaterialBasic:
		mat.unlit = true
	default:
		mat.unlit = true
	}
	return mat, nil
}

// CreateLight keeps the light spec; software lights are folded into the
// light rig at render time, so updates are plain field writes.
func (e *SoftEngine) CreateLight(l scene.Light) (LightHandle, error) {
	return &softLight{spec: l}, nil
}

// buildRig folds the live lights into rasterizer lighting terms. Point and
// spot lights are approximated as directional keys aimed from their
// position at their target (the origin when unset).
func buildRig(lights []scene.Light) render.LightRig {
	var rig render.LightRig
	for _, l := range lights {
		color := render.ParseHexColor(scene.StringOr(l.Color, "#ffffff"))
		intensity := scene.FloatOr(l.Intensity, 1)
		c := render.Vec{color[0] * intensity, color[1] * intensity, color[2] * intensity}

		switch l.Type {
		case scene.LightHemisphere:
			ground := render.ParseHexColor(scene.StringOr(l.GroundColor, "#444444"))
			rig.Sky = addVec(rig.Sky, c)
			rig.Ground = addVec(rig.Ground, render.Vec{
				ground[0] * intensity, ground[1] * intensity, ground[2] * intensity,
			})
		case scene.LightDirectional, scene.LightPoint, scene.LightSpot:
			pos := scene.VecOr(l.Position, scene.V3(5, 10, 5))
			target := scene.VecOr(l.Target, scene.V3(0, 0, 0))
			dir := pos.Sub(target).Normalized()
			rig.Dirs = append(rig.Dirs, render.Dir{
				Dir:   render.Vec{dir.X, dir.Y, dir.Z},
				Color: c,
			})
		case scene.LightAmbient:
			rig.Ambient = addVec(rig.Ambient, c)
		default:
			rig.Ambient = addVec(rig.Ambient, c)
		}
	}
	return rig
}

// Render rasterizes the live stage into an image of the given size,
// supersampled by the given factor.
func (e *SoftEngine) Render(st *Stage, size, supersample int) *image.NRGBA {
	if supersample < 1 {
		supersample = 1
	}
	px := size * supersample
	fb := render.NewFrameBuffer(px, px)

	if st.Background == "transparent" {
		fb.Fill(0, 0, 0, 0)
	} else {
		bg := render.ParseHexColor(st.Background)
		fb.Fill(u8(bg[0]), u8(bg[1]), u8(bg[2]), 255)
	}

	rig := buildRig(st.Lights())

	cam := st.Camera
	fovy := cam.Fov * math32.Pi / 180
	if cam.Zoom > 0 {
		fovy /= cam.Zoom
	}
	view := render.LookAt(
		render.Vec{cam.Position.X, cam.Position.Y, cam.Position.Z},
		render.Vec{cam.LookAt.X, cam.LookAt.Y, cam.LookAt.Z},
		render.Vec{0, 1, 0},
	)
	proj := render.Perspective(fovy, 1, cam.Near, cam.Far)

	var fogColor render.Vec
	if st.Fog != nil {
		fogColor = render.ParseHexColor(st.Fog.Color)
	}

	// Opaque entities first so translucent blending sees settled depth.
	ents := st.Entities()
	for pass := 0; pass < 2; pass++ {
		for _, ent := range ents {
			mat, ok := ent.Material.(*softMaterial)
			if !ok || !ent.Visible {
				continue
			}
			translucent := mat.opacity < 0.999
			if (pass == 0) == translucent {
				continue
			}
			e.drawEntity(fb, st, ent, mat, view, proj, &rig, fogColor)
		}
	}

	img := fb.Image()
	if supersample > 1 {
		img = render.Downsample(img, size)
	}
	return img
}

func (e *SoftEngine) drawEntity(
	fb *render.FrameBuffer,
	st *Stage,
	ent *Entity,
	mat *softMaterial,
	view, proj render.Mat4,
	rig *render.LightRig,
	fogColor render.Vec,
) {
	geom, ok := ent.Geometry.(*softGeometry)
	if !ok {
		return
	}

	model := render.TRS(
		render.Vec{ent.Position.X, ent.Position.Y, ent.Position.Z},
		render.Vec{ent.Rotation.X, ent.Rotation.Y, ent.Rotation.Z},
		render.Vec{ent.Scale.X, ent.Scale.Y, ent.Scale.Z},
	)

	for _, face := range geom.mesh.Faces {
		var world [3]render.Vec
		var screen [3]render.Vec
		var viewZ float32
		behind := false

		for k := 0; k < 3; k++ {
			w, _ := model.TransformPoint(geom.mesh.Positions[face[k]])
			world[k] = w
			vp, _ := view.TransformPoint(w)
			viewZ += -vp[2] / 3
			clip, cw := proj.TransformPoint(vp)
			if cw < 1e-4 {
				behind = true
				break
			}
			screen[k] = render.Vec{
				(clip[0]/cw + 1) / 2 * float32(fb.Width),
				(1 - clip[1]/cw) / 2 * float32(fb.Height),
				-clip[2] / cw,
			}
		}
		if behind {
			continue
		}

		normal := faceNormal(world)
		color := e.faceColor(mat, world, normal, rig, st.Time())

		// A degenerate range would divide by zero and poison the color
		// with NaN, so fog only applies when the range is real.
		if st.Fog != nil && st.Fog.Far > st.Fog.Near {
			f := (viewZ - st.Fog.Near) / (st.Fog.Far - st.Fog.Near)
			f = math32.Max(0, math32.Min(1, f))
			color[0] = color[0]*(1-f) + fogColor[0]*f
			color[1] = color[1]*(1-f) + fogColor[1]*f
			color[2] = color[2]*(1-f) + fogColor[2]*f
		}

		fb.Triangle(screen[0], screen[1], screen[2], color, mat.opacity)
	}
}

func (e *SoftEngine) faceColor(mat *softMaterial, world [3]render.Vec, normal render.Vec, rig *render.LightRig, now float32) render.Vec {
	base := mat.color
	if mat.shader != nil {
		// The wave shader blends its two colors along world y, scrolled
		// by the stage clock.
		sp := mat.shader
		cy := (world[0][1] + world[1][1] + world[2][1]) / 3
		wave := math32.Sin(cy*sp.frequency + now*sp.speed)
		mix := 0.5 + wave*sp.amplitude*0.5
		mix = math32.Max(0, math32.Min(1, mix))
		base = render.Vec{
			sp.colorA[0]*(1-mix) + sp.colorB[0]*mix,
			sp.colorA[1]*(1-mix) + sp.colorB[1]*mix,
			sp.colorA[2]*(1-mix) + sp.colorB[2]*mix,
		}
	}

	var out render.Vec
	if mat.unlit {
		out = base
	} else {
		shade := rig.Shade(normal)
		out = render.Vec{base[0] * shade[0], base[1] * shade[1], base[2] * shade[2]}
	}
	out[0] += mat.emissive[0] * mat.emissiveIntensity
	out[1] += mat.emissive[1] * mat.emissiveIntensity
	out[2] += mat.emissive[2] * mat.emissiveIntensity
	return out
}

func faceNormal(w [3]render.Vec) render.Vec {
	e1 := render.Vec{w[1][0] - w[0][0], w[1][1] - w[0][1], w[1][2] - w[0][2]}
	e2 := render.Vec{w[2][0] - w[0][0], w[2][1] - w[0][1], w[2][2] - w[0][2]}
	n := render.Vec{
		e1[1]*e2[2] - e1[2]*e2[1],
		e1[2]*e2[0] - e1[0]*e2[2],
		e1[0]*e2[1] - e1[1]*e2[0],
	}
	l := math32.Sqrt(n[0]*n[0] + n[1]*n[1] + n[2]*n[2])
	if l < 1e-8 {
		return render.Vec{0, 1, 0}
	}
	return render.Vec{n[0] / l, n[1] / l, n[2] / l}
}

func addVec(a, b render.Vec) render.Vec {
	return render.Vec{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

func u8(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}

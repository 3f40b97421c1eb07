// Package stage keeps a live set of renderable entities in sync with the
// scene document and advances their animations. The render engine behind it
// is abstracted as a small capability interface, so the same reconciler
// drives the software snapshot engine and the test fakes.
package stage

import "scene-studio/entities/scene"

// GeometryHandle is a live geometry resource. Dispose releases it; the
// reconciler never relies on garbage collection for engine resources.
type GeometryHandle interface {
	Dispose()
}

// MaterialHandle is a live material resource.
type MaterialHandle interface {
	Dispose()
}

// LightHandle is a live light resource. Lights carry only cheap scalar
// state, so updates mutate the handle in place instead of recreating it.
type LightHandle interface {
	Update(scene.Light)
	Dispose()
}

// Engine is the capability surface a render backend must provide. Factories
// resolve unset parameters to their documented defaults and fall back to
// the default variant (unit box / basic material / ambient light) for
// unrecognized kind tags rather than failing.
type Engine interface {
	CreateGeometry(g scene.Geometry) (GeometryHandle, error)
	CreateMaterial(m scene.Material) (MaterialHandle, error)
	CreateLight(l scene.Light) (LightHandle, error)
}

// Entity is one live object: a geometry/material resource pair bound to a
// scene object id, plus the transform state the engine draws with. The
// animation runner mutates Position/Rotation/Scale between syncs.
type Entity struct {
	ID       string
	Geometry GeometryHandle
	Material MaterialHandle

	Position scene.Vec3
	Rotation scene.Vec3
	Scale    scene.Vec3
	Visible  bool

	// spec is the object descriptor the resources were built from, kept
	// for explicit value comparison on the next sync.
	spec scene.Object
}

// Spec returns the object descriptor this entity was last built from.
func (e *Entity) Spec() scene.Object { return e.spec }

package stage

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/chewxy/math32"

	"scene-studio/entities/scene"
)

// Stage reconciles scene documents against live engine resources and runs
// the per-frame animation step. It has exactly one writer; Sync is called on
// document changes and Step on frame ticks, never concurrently.
type Stage struct {
	engine Engine
	errFn  func(error)

	entities map[string]*Entity
	lights   map[string]*liveLight
	clocks   map[string]*animClock

	Camera     CameraState
	Background string
	Fog        *scene.Fog

	camSpec scene.Camera // last applied camera record, for change detection
	time    float32      // total animated time, drives the shader material
}

type liveLight struct {
	handle LightHandle
	spec   scene.Light
}

// animClock is the per-entity animation record: an elapsed-time counter and
// the baseline transform the procedures offset from.
type animClock struct {
	elapsed   float32
	basePos   scene.Vec3
	baseScale scene.Vec3
}

// CameraState is the single persistent camera handle. Document camera
// updates are written directly onto it; there is no create/destroy cycle.
type CameraState struct {
	Position scene.Vec3
	LookAt   scene.Vec3
	Fov      float32
	Near     float32
	Far      float32
	Zoom     float32

	AutoRotate bool
	AutoSpeed  float32

	// Orbit parameters derived from the configured position relative to
	// the look-at point; fixed until the camera is reconfigured.
	orbitAngle  float32
	orbitRadius float32
	orbitHeight float32
}

// New creates a stage over the given engine. errFn receives resource
// creation failures (may be nil); the failed entity is skipped and
// reconciliation continues.
func New(engine Engine, errFn func(error)) *Stage {
	if errFn == nil {
		errFn = func(error) {}
	}
	return &Stage{
		engine:   engine,
		errFn:    errFn,
		entities: map[string]*Entity{},
		lights:   map[string]*liveLight{},
		clocks:   map[string]*animClock{},
		Camera: CameraState{
			Position: scene.V3(3, 4, 8),
			Fov:      50,
			Near:     0.1,
			Far:      200,
			Zoom:     1,
		},
		Background: "#0b0b12",
	}
}

// Entities returns the live entities sorted by id.
func (s *Stage) Entities() []*Entity {
	out := make([]*Entity, 0, len(s.entities))
	for _, e := range s.entities {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Lights returns the live light specs sorted by id.
func (s *Stage) Lights() []scene.Light {
	out := make([]scene.Light, 0, len(s.lights))
	for _, l := range s.lights {
		out = append(out, l.spec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Time returns total animated time, used by time-dependent materials.
func (s *Stage) Time() float32 { return s.time }

// Sync reconciles the live set against a document snapshot: removals before
// insertions and updates, objects before lights, then camera and global
// config as direct property writes.
func (s *Stage) Sync(doc scene.Document) {
	// Removals first. Replaced or removed resources are disposed
	// explicitly.
	for id, ent := range s.entities {
		if _, ok := doc.Objects[id]; !ok {
			ent.Geometry.Dispose()
			ent.Material.Dispose()
			delete(s.entities, id)
			delete(s.clocks, id)
		}
	}
	for id, l := range s.lights {
		if _, ok := doc.Lights[id]; !ok {
			l.handle.Dispose()
			delete(s.lights, id)
		}
	}

	for _, id := range sortedKeys(doc.Objects) {
		s.syncObject(id, doc.Objects[id])
	}
	for _, id := range sortedKeys(doc.Lights) {
		s.syncLight(id, doc.Lights[id])
	}

	s.applyCamera(doc.Camera)
	s.applyConfig(doc.Config)
}

func (s *Stage) syncObject(id string, obj scene.Object) {
	ent, live := s.entities[id]
	if live && reflect.DeepEqual(ent.spec, obj) {
		return
	}

	// Any change rebuilds geometry and material wholesale: the parameter
	// bags cannot be diffed cheaply, so correctness wins over efficiency.
	geom, mat, err := s.buildResources(obj)
	if err != nil {
		s.errFn(fmt.Errorf("object %q: %w", id, err))
		if live {
			ent.Geometry.Dispose()
			ent.Material.Dispose()
			delete(s.entities, id)
			delete(s.clocks, id)
		}
		return
	}

	if live {
		ent.Geometry.Dispose()
		ent.Material.Dispose()
		ent.Geometry = geom
		ent.Material = mat
	} else {
		ent = &Entity{ID: id, Geometry: geom, Material: mat}
		s.entities[id] = ent
	}

	ent.spec = obj
	ent.Position = scene.VecOr(obj.Position, scene.V3(0, 0, 0))
	ent.Rotation = scene.VecOr(obj.Rotation, scene.V3(0, 0, 0))
	ent.Scale = scene.VecOr(obj.Scale, scene.V3(1, 1, 1))
	ent.Visible = scene.BoolOr(obj.Visible, true)

	// Keep the animation clock in step with the document: a moved or
	// rescaled object becomes the new baseline so its animation continues
	// from there instead of snapping back.
	if clock, ok := s.clocks[id]; ok {
		if obj.Animation.Active() {
			clock.basePos = ent.Position
			clock.baseScale = ent.Scale
		} else {
			delete(s.clocks, id)
		}
	}
}

func (s *Stage) buildResources(obj scene.Object) (GeometryHandle, MaterialHandle, error) {
	var g scene.Geometry
	if obj.Geometry != nil {
		g = *obj.Geometry
	}
	geom, err := s.engine.CreateGeometry(g)
	if err != nil {
		return nil, nil, fmt.Errorf("create geometry: %w", err)
	}

	var m scene.Material
	if obj.Material != nil {
		m = *obj.Material
	}
	mat, err := s.engine.CreateMaterial(m)
	if err != nil {
		geom.Dispose()
		return nil, nil, fmt.Errorf("create material: %w", err)
	}
	return geom, mat, nil
}

func (s *Stage) syncLight(id string, light scene.Light) {
	if l, live := s.lights[id]; live {
		if !reflect.DeepEqual(l.spec, light) {
			l.handle.Update(light)
			l.spec = light
		}
		return
	}

	handle, err := s.engine.CreateLight(light)
	if err != nil {
		s.errFn(fmt.Errorf("light %q: create: %w", id, err))
		return
	}
	s.lights[id] = &liveLight{handle: handle, spec: light}
}

func (s *Stage) applyCamera(cam scene.Camera) {
	// Auto-rotation moves the live camera between syncs; only a changed
	// camera record in the document reconfigures it.
	if reflect.DeepEqual(s.camSpec, cam) {
		return
	}
	s.camSpec = cam

	c := &s.Camera
	pos := scene.VecOr(cam.Position, scene.V3(3, 4, 8))
	lookAt := scene.VecOr(cam.LookAt, scene.V3(0, 0, 0))

	c.Position = pos
	c.LookAt = lookAt
	c.Fov = scene.FloatOr(cam.Fov, 50)
	c.Near = scene.FloatOr(cam.Near, 0.1)
	c.Far = scene.FloatOr(cam.Far, 200)
	c.Zoom = scene.FloatOr(cam.Zoom, 1)

	c.AutoRotate = cam.AutoRotate != nil && cam.AutoRotate.Enabled
	if c.AutoRotate {
		c.AutoSpeed = scene.FloatOr(cam.AutoRotate.Speed, 1)
		// Derive the orbit circle once from the configured position
		// relative to the look-at point.
		offset := pos.Sub(lookAt)
		c.orbitRadius = math32.Sqrt(offset.X*offset.X + offset.Z*offset.Z)
		c.orbitHeight = offset.Y
		c.orbitAngle = math32.Atan2(offset.Z, offset.X)
	}
}

func (s *Stage) applyConfig(cfg scene.Config) {
	s.Background = scene.StringOr(cfg.Background, "#0b0b12")
	s.Fog = cfg.Fog
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

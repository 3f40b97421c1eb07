package scene

import "github.com/google/uuid"

// Apply dispatches one command against a document and returns the resulting
// snapshot. It is a total pure function: unknown actions, unknown ids and
// missing payloads leave the document unchanged, and it never panics or
// returns an error. The input document is not mutated.
func Apply(doc Document, cmd Command) Document {
	switch cmd.Action {
	case ActionAddObject:
		if cmd.Object == nil {
			return doc
		}
		obj := *cmd.Object
		if obj.ID == "" {
			obj.ID = uuid.NewString()
		}
		// Insert-or-replace wholesale; add never merges.
		doc.Objects = withObject(doc.Objects, obj)

	case ActionUpdateObject:
		id := cmd.TargetID()
		existing, ok := doc.Objects[id]
		if !ok || cmd.Object == nil {
			return doc
		}
		doc.Objects = withObject(doc.Objects, mergeObject(existing, *cmd.Object))

	case ActionRemoveObject:
		id := cmd.TargetID()
		if _, ok := doc.Objects[id]; !ok {
			return doc
		}
		doc.Objects = withoutKey(doc.Objects, id)

	case ActionAddLight:
		if cmd.Light == nil {
			return doc
		}
		light := *cmd.Light
		if light.ID == "" {
			light.ID = uuid.NewString()
		}
		doc.Lights = withLight(doc.Lights, light)

	case ActionUpdateLight:
		id := cmd.TargetID()
		existing, ok := doc.Lights[id]
		if !ok || cmd.Light == nil {
			return doc
		}
		doc.Lights = withLight(doc.Lights, mergeLight(existing, *cmd.Light))

	case ActionRemoveLight:
		id := cmd.TargetID()
		if _, ok := doc.Lights[id]; !ok {
			return doc
		}
		doc.Lights = withoutKey(doc.Lights, id)

	case ActionSetCamera:
		if cmd.Camera == nil {
			return doc
		}
		doc.Camera = mergeCamera(doc.Camera, *cmd.Camera)

	case ActionSetConfig:
		if cmd.Config == nil {
			return doc
		}
		doc.Config = mergeConfig(doc.Config, *cmd.Config)

	case ActionClearScene:
		// Objects emptied, lights reduced to the default ambient light;
		// camera and config keep their customizations.
		ambient := DefaultAmbientLight()
		doc.Objects = map[string]Object{}
		doc.Lights = map[string]Light{ambient.ID: ambient}

	case ActionResetScene:
		return DefaultDocument()
	}

	return doc
}

// mergeObject shallow-merges patch over base: each field present in the
// patch replaces the base field wholesale. Nested records (material,
// geometry, position, ...) are not deep-merged — a patch carrying
// {material:{color:...}} replaces the whole material.
func mergeObject(base, patch Object) Object {
	out := base
	if patch.Name != nil {
		out.Name = patch.Name
	}
	if patch.Geometry != nil {
		out.Geometry = patch.Geometry
	}
	if patch.Material != nil {
		out.Material = patch.Material
	}
	if patch.Position != nil {
		out.Position = patch.Position
	}
	if patch.Rotation != nil {
		out.Rotation = patch.Rotation
	}
	if patch.Scale != nil {
		out.Scale = patch.Scale
	}
	if patch.Animation != nil {
		out.Animation = patch.Animation
	}
	if patch.Visible != nil {
		out.Visible = patch.Visible
	}
	if patch.CastShadow != nil {
		out.CastShadow = patch.CastShadow
	}
	if patch.ReceiveShadow != nil {
		out.ReceiveShadow = patch.ReceiveShadow
	}
	return out
}

func mergeLight(base, patch Light) Light {
	out := base
	if patch.Type != "" {
		out.Type = patch.Type
	}
	if patch.Color != nil {
		out.Color = patch.Color
	}
	if patch.Intensity != nil {
		out.Intensity = patch.Intensity
	}
	if patch.Position != nil {
		out.Position = patch.Position
	}
	if patch.Target != nil {
		out.Target = patch.Target
	}
	if patch.Angle != nil {
		out.Angle = patch.Angle
	}
	if patch.Penumbra != nil {
		out.Penumbra = patch.Penumbra
	}
	if patch.Decay != nil {
		out.Decay = patch.Decay
	}
	if patch.Distance != nil {
		out.Distance = patch.Distance
	}
	if patch.GroundColor != nil {
		out.GroundColor = patch.GroundColor
	}
	return out
}

func mergeCamera(base, patch Camera) Camera {
	out := base
	if patch.Position != nil {
		out.Position = patch.Position
	}
	if patch.LookAt != nil {
		out.LookAt = patch.LookAt
	}
	if patch.Fov != nil {
		out.Fov = patch.Fov
	}
	if patch.Near != nil {
		out.Near = patch.Near
	}
	if patch.Far != nil {
		out.Far = patch.Far
	}
	if patch.Zoom != nil {
		out.Zoom = patch.Zoom
	}
	if patch.AutoRotate != nil {
		out.AutoRotate = patch.AutoRotate
	}
	return out
}

func mergeConfig(base, patch Config) Config {
	out := base
	if patch.Background != nil {
		out.Background = patch.Background
	}
	if patch.Fog != nil {
		out.Fog = patch.Fog
	}
	return out
}

func withObject(m map[string]Object, obj Object) map[string]Object {
	out := make(map[string]Object, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	out[obj.ID] = obj
	return out
}

func withLight(m map[string]Light, light Light) map[string]Light {
	out := make(map[string]Light, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	out[light.ID] = light
	return out
}

func withoutKey[V any](m map[string]V, id string) map[string]V {
	out := make(map[string]V, len(m))
	for k, v := range m {
		if k != id {
			out[k] = v
		}
	}
	return out
}

// Store owns the authoritative scene document for one session. It has a
// single writer (the session goroutine) and performs no locking; see the
// concurrency notes in the package docs. Subscribers are invoked
// synchronously after each applied batch.
type Store struct {
	doc  Document
	subs []func(Document)
}

// NewStore returns a store holding the initial snapshot.
func NewStore() *Store {
	return &Store{doc: DefaultDocument()}
}

// Document returns the current snapshot.
func (s *Store) Document() Document {
	return s.doc
}

// Subscribe registers fn to run after every applied command batch.
func (s *Store) Subscribe(fn func(Document)) {
	s.subs = append(s.subs, fn)
}

// Apply dispatches one command and notifies subscribers.
func (s *Store) Apply(cmd Command) {
	s.ApplyAll([]Command{cmd})
}

// ApplyAll dispatches a batch of commands, notifying subscribers once at
// the end. Batching commands extracted from one stream fragment keeps
// reconciliation work proportional to fragments, not commands.
func (s *Store) ApplyAll(cmds []Command) {
	if len(cmds) == 0 {
		return
	}
	for _, cmd := range cmds {
		s.doc = Apply(s.doc, cmd)
	}
	for _, fn := range s.subs {
		fn(s.doc)
	}
}

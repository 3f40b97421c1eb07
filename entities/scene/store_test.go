package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addSphere(id string) Command {
	return Command{
		Action: ActionAddObject,
		Object: &Object{
			ID:       id,
			Geometry: &Geometry{Type: GeometrySphere},
			Material: &Material{Type: MaterialStandard},
		},
	}
}

func TestAddThenUpdatePosition(t *testing.T) {
	doc := DefaultDocument()
	doc = Apply(doc, addSphere("a"))
	doc = Apply(doc, Command{
		Action: ActionUpdateObject,
		ID:     "a",
		Object: &Object{Position: ptrV(V3(2, 0, 0))},
	})

	obj, ok := doc.Objects["a"]
	require.True(t, ok)
	assert.Equal(t, GeometrySphere, obj.Geometry.Type)
	assert.Equal(t, MaterialStandard, obj.Material.Type)
	assert.Equal(t, V3(2, 0, 0), *obj.Position)
	assert.Nil(t, obj.Scale) // absent means default 1,1,1 downstream
}

func TestUpdateUnknownIDIsNoop(t *testing.T) {
	doc := DefaultDocument()
	before := doc.Objects

	doc = Apply(doc, Command{
		Action: ActionUpdateObject,
		ID:     "ghost",
		Object: &Object{Position: ptrV(V3(1, 2, 3))},
	})
	assert.Equal(t, before, doc.Objects)

	doc = Apply(doc, Command{Action: ActionRemoveObject, ID: "ghost"})
	assert.Equal(t, before, doc.Objects)

	doc = Apply(doc, Command{Action: ActionUpdateLight, ID: "ghost", Light: &Light{Intensity: ptrF(2)}})
	doc = Apply(doc, Command{Action: ActionRemoveLight, ID: "ghost"})
	assert.Equal(t, DefaultDocument().Lights, doc.Lights)
}

func TestAddReplacesWholesale(t *testing.T) {
	doc := DefaultDocument()
	doc = Apply(doc, addSphere("a"))
	doc = Apply(doc, Command{
		Action: ActionAddObject,
		Object: &Object{ID: "a", Geometry: &Geometry{Type: GeometryBox}},
	})

	obj := doc.Objects["a"]
	assert.Equal(t, GeometryBox, obj.Geometry.Type)
	assert.Nil(t, obj.Material, "add is last-write-wins, not a merge")
}

func TestUpdateReplacesNestedWholesale(t *testing.T) {
	doc := DefaultDocument()
	doc = Apply(doc, Command{
		Action: ActionAddObject,
		Object: &Object{
			ID: "a",
			Material: &Material{
				Type:      MaterialStandard,
				Color:     ptrS("#ff0000"),
				Roughness: ptrF(0.2),
			},
		},
	})
	doc = Apply(doc, Command{
		Action: ActionUpdateObject,
		ID:     "a",
		Object: &Object{Material: &Material{Color: ptrS("#ffffff")}},
	})

	mat := doc.Objects["a"].Material
	assert.Equal(t, "#ffffff", *mat.Color)
	assert.Nil(t, mat.Roughness, "nested material is replaced, not deep-merged")
	assert.Empty(t, mat.Type)
}

func TestCameraMergesAcrossUpdates(t *testing.T) {
	doc := DefaultDocument()
	prevPos := *doc.Camera.Position

	doc = Apply(doc, Command{Action: ActionSetCamera, Camera: &Camera{Fov: ptrF(50)}})
	doc = Apply(doc, Command{Action: ActionSetCamera, Camera: &Camera{Zoom: ptrF(2)}})

	assert.Equal(t, float32(50), *doc.Camera.Fov)
	assert.Equal(t, float32(2), *doc.Camera.Zoom)
	assert.Equal(t, prevPos, *doc.Camera.Position)
}

func TestConfigMerge(t *testing.T) {
	doc := DefaultDocument()
	doc = Apply(doc, Command{Action: ActionSetConfig, Config: &Config{Background: ptrS("transparent")}})
	doc = Apply(doc, Command{Action: ActionSetConfig, Config: &Config{Fog: &Fog{Color: "#0b0b12", Near: 5, Far: 40}}})

	assert.Equal(t, "transparent", *doc.Config.Background)
	require.NotNil(t, doc.Config.Fog)
	assert.Equal(t, float32(40), doc.Config.Fog.Far)
}

func TestClearScene(t *testing.T) {
	doc := DefaultDocument()
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		doc = Apply(doc, addSphere(id))
	}
	doc = Apply(doc, Command{Action: ActionAddLight, Light: &Light{ID: "sun", Type: LightDirectional}})
	doc = Apply(doc, Command{Action: ActionSetCamera, Camera: &Camera{Fov: ptrF(90)}})

	doc = Apply(doc, Command{Action: ActionClearScene})

	assert.Empty(t, doc.Objects)
	require.Len(t, doc.Lights, 1)
	assert.Equal(t, DefaultAmbientLight(), doc.Lights[DefaultAmbientID])
	assert.Equal(t, float32(90), *doc.Camera.Fov, "clearScene keeps camera customizations")
}

func TestResetSceneIdempotent(t *testing.T) {
	docs := []Document{
		DefaultDocument(),
		Apply(DefaultDocument(), addSphere("a")),
		Apply(Apply(DefaultDocument(), Command{Action: ActionClearScene}),
			Command{Action: ActionSetCamera, Camera: &Camera{Zoom: ptrF(3)}}),
	}
	for _, doc := range docs {
		assert.Equal(t, DefaultDocument(), Apply(doc, Command{Action: ActionResetScene}))
	}
}

func TestUnknownActionIgnored(t *testing.T) {
	doc := DefaultDocument()
	assert.Equal(t, doc, Apply(doc, Command{Action: "explodeScene"}))
	assert.Equal(t, doc, Apply(doc, Command{}))
}

func TestMissingPayloadIgnored(t *testing.T) {
	doc := DefaultDocument()
	assert.Equal(t, doc, Apply(doc, Command{Action: ActionAddObject}))
	assert.Equal(t, doc, Apply(doc, Command{Action: ActionSetCamera}))
	assert.Equal(t, doc, Apply(doc, Command{Action: ActionSetConfig}))
}

func TestAddObjectGeneratesID(t *testing.T) {
	doc := Apply(DefaultDocument(), Command{
		Action: ActionAddObject,
		Object: &Object{Geometry: &Geometry{Type: GeometryBox}},
	})
	require.Len(t, doc.Objects, 2) // backdrop + new
	for id, obj := range doc.Objects {
		assert.Equal(t, id, obj.ID)
		assert.NotEmpty(t, id)
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	doc := DefaultDocument()
	_ = Apply(doc, addSphere("a"))
	_, leaked := doc.Objects["a"]
	assert.False(t, leaked)
}

func TestLightUpdateMerges(t *testing.T) {
	doc := Apply(DefaultDocument(), Command{
		Action: ActionAddLight,
		Light:  &Light{ID: "spot", Type: LightSpot, Angle: ptrF(0.5)},
	})
	doc = Apply(doc, Command{
		Action: ActionUpdateLight,
		ID:     "spot",
		Light:  &Light{Intensity: ptrF(2)},
	})

	l := doc.Lights["spot"]
	assert.Equal(t, LightSpot, l.Type)
	assert.Equal(t, float32(0.5), *l.Angle)
	assert.Equal(t, float32(2), *l.Intensity)
}

func TestStoreBatchNotifiesOnce(t *testing.T) {
	st := NewStore()
	var calls int
	st.Subscribe(func(Document) { calls++ })

	st.ApplyAll([]Command{addSphere("a"), addSphere("b"), {Action: ActionClearScene}})
	assert.Equal(t, 1, calls)
	assert.Empty(t, st.Document().Objects)

	st.ApplyAll(nil)
	assert.Equal(t, 1, calls)
}

func TestParseCommand(t *testing.T) {
	cmd, ok := ParseCommand([]byte(`{"action":"updateObject","id":"a","object":{"position":{"x":2,"y":0,"z":0}}}`))
	require.True(t, ok)
	assert.Equal(t, ActionUpdateObject, cmd.Action)
	assert.Equal(t, "a", cmd.TargetID())
	assert.Equal(t, V3(2, 0, 0), *cmd.Object.Position)

	_, ok = ParseCommand([]byte(`{"note":"no action"}`))
	assert.False(t, ok)

	_, ok = ParseCommand([]byte(`{"action":{"bad":"type"}}`))
	assert.False(t, ok)
}

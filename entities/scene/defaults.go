package scene

import "github.com/chewxy/math32"

// Fixed ids present in the initial snapshot.
const (
	DefaultAmbientID  = "ambient"
	DefaultBackdropID = "backdrop"
)

func ptrF(v float32) *float32 { return &v }
func ptrB(v bool) *bool       { return &v }
func ptrS(v string) *string   { return &v }
func ptrV(v Vec3) *Vec3       { return &v }

// DefaultAmbientLight is the light every scene starts with and the one
// clearScene restores.
func DefaultAmbientLight() Light {
	return Light{
		ID:        DefaultAmbientID,
		Type:      LightAmbient,
		Color:     ptrS("#ffffff"),
		Intensity: ptrF(0.6),
	}
}

// DefaultBackdrop is the decorative ground plane of the initial snapshot.
func DefaultBackdrop() Object {
	return Object{
		ID:   DefaultBackdropID,
		Name: ptrS("Backdrop"),
		Geometry: &Geometry{
			Type:   GeometryPlane,
			Width:  ptrF(40),
			Height: ptrF(40),
		},
		Material: &Material{
			Type:      MaterialStandard,
			Color:     ptrS("#1a1a2e"),
			Roughness: ptrF(0.9),
		},
		Rotation:      ptrV(V3(-math32.Pi/2, 0, 0)),
		ReceiveShadow: ptrB(true),
	}
}

// DefaultCamera is the camera of the initial snapshot.
func DefaultCamera() Camera {
	return Camera{
		Position:   ptrV(V3(3, 4, 8)),
		LookAt:     ptrV(V3(0, 0, 0)),
		Fov:        ptrF(50),
		Near:       ptrF(0.1),
		Far:        ptrF(200),
		Zoom:       ptrF(1),
		AutoRotate: &AutoRotate{Enabled: false},
	}
}

// DefaultConfig is the global config of the initial snapshot.
func DefaultConfig() Config {
	return Config{Background: ptrS("#0b0b12")}
}

// DefaultDocument returns the fixed initial snapshot: the default ambient
// light, the backdrop plane, and default camera/config. resetScene restores
// exactly this document.
func DefaultDocument() Document {
	backdrop := DefaultBackdrop()
	ambient := DefaultAmbientLight()
	return Document{
		Objects: map[string]Object{backdrop.ID: backdrop},
		Lights:  map[string]Light{ambient.ID: ambient},
		Camera:  DefaultCamera(),
		Config:  DefaultConfig(),
	}
}

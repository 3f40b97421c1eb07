package stage

import (
	"github.com/chewxy/math32"

	"scene-studio/entities/scene"
)

// rotateRate is the base angular velocity of the rotate procedure in
// radians per second at speed 1.
const rotateRate = 1.0

// Step advances every animation clock by dt seconds and recomputes entity
// transforms. Apart from rotate, all procedures are pure functions of the
// absolute elapsed clock time, so skipping ticks (a backgrounded tab) does
// not change where entities end up. Rotate accumulates raw per-frame deltas
// and therefore visibly jumps after a long skipped interval; that asymmetry
// is carried over deliberately.
func (s *Stage) Step(dt float32) {
	s.time += dt

	for id, ent := range s.entities {
		anim := ent.spec.Animation
		if !anim.Active() {
			continue
		}

		clock, ok := s.clocks[id]
		if !ok {
			// First animated frame: snapshot the current transform as the
			// baseline the procedure offsets from.
			clock = &animClock{basePos: ent.Position, baseScale: ent.Scale}
			s.clocks[id] = clock
		}

		speed := scene.FloatOr(anim.Speed, 1)
		clock.elapsed += dt * speed
		t := clock.elapsed
		amp := scene.FloatOr(anim.Amplitude, 0.5)

		switch anim.Type {
		case scene.AnimationRotate:
			delta := dt * speed * rotateRate
			switch scene.StringOr(anim.Axis, "y") {
			case "x":
				ent.Rotation.X += delta
			case "z":
				ent.Rotation.Z += delta
			default:
				ent.Rotation.Y += delta
			}

		case scene.AnimationBounce:
			ent.Position.Y = clock.basePos.Y + math32.Abs(math32.Sin(2*t))*amp

		case scene.AnimationFloat:
			ent.Position.Y = clock.basePos.Y + math32.Sin(t)*amp

		case scene.AnimationPulse:
			f := 1 + math32.Sin(2*t)*amp
			ent.Scale = scene.V3(clock.baseScale.X*f, clock.baseScale.Y*f, clock.baseScale.Z*f)

		case scene.AnimationOrbit:
			center := scene.VecOr(anim.Center, scene.V3(0, 0, 0))
			radius := scene.FloatOr(anim.Radius, 2)
			ent.Position.X = center.X + math32.Cos(t)*radius
			ent.Position.Z = center.Z + math32.Sin(t)*radius
		}
	}

	s.stepCamera(dt)
}

// stepCamera advances the camera auto-rotation, independent of the
// per-object clocks: the camera rides the circle derived from its
// configured position and keeps aiming at the look-at point.
func (s *Stage) stepCamera(dt float32) {
	c := &s.Camera
	if !c.AutoRotate {
		return
	}
	c.orbitAngle += dt * c.AutoSpeed * 0.5
	c.Position = scene.V3(
		c.LookAt.X+math32.Cos(c.orbitAngle)*c.orbitRadius,
		c.LookAt.Y+c.orbitHeight,
		c.LookAt.Z+math32.Sin(c.orbitAngle)*c.orbitRadius,
	)
}

package render

import "github.com/chewxy/math32"

// FrameBuffer holds the render target as flat slices for cache locality.
type FrameBuffer struct {
	Width  int
	Height int
	Color  []uint8   // RGBA interleaved, len = W*H*4
	ZBuf   []float32 // depth per pixel, larger is closer, initialized to -inf
}

// NewFrameBuffer allocates a zeroed color buffer and a -inf z-buffer.
func NewFrameBuffer(w, h int) *FrameBuffer {
	n := w * h
	zbuf := make([]float32, n)
	for i := range zbuf {
		zbuf[i] = float32(math32.Inf(-1))
	}
	return &FrameBuffer{
		Width:  w,
		Height: h,
		Color:  make([]uint8, n*4),
		ZBuf:   zbuf,
	}
}

// Fill floods the color buffer with a background color. Alpha 0 leaves the
// buffer transparent.
func (fb *FrameBuffer) Fill(r, g, b, a uint8) {
	for i := 0; i < len(fb.Color); i += 4 {
		fb.Color[i] = r
		fb.Color[i+1] = g
		fb.Color[i+2] = b
		fb.Color[i+3] = a
	}
}

// LightRig holds the per-frame lighting terms the rasterizer shades with.
// Colors are 0..1 RGB.
type LightRig struct {
	Ambient Vec   // flat ambient contribution
	Sky     Vec   // hemisphere color from above
	Ground  Vec   // hemisphere color from below
	Dirs    []Dir // directional key lights
}

// Dir is one directional light: a normalized direction toward the light and
// its color premultiplied by intensity.
type Dir struct {
	Dir   Vec
	Color Vec
}

// Shade returns the combined light color for a face normal. Lambert terms
// use the absolute dot product so faces are lit double-sided.
func (r *LightRig) Shade(n Vec) Vec {
	up := (n[1] + 1) / 2
	out := Vec{
		r.Ambient[0] + r.Sky[0]*up + r.Ground[0]*(1-up),
		r.Ambient[1] + r.Sky[1]*up + r.Ground[1]*(1-up),
		r.Ambient[2] + r.Sky[2]*up + r.Ground[2]*(1-up),
	}
	for _, d := range r.Dirs {
		ndl := math32.Abs(dot(n, d.Dir))
		out[0] += ndl * d.Color[0]
		out[1] += ndl * d.Color[1]
		out[2] += ndl * d.Color[2]
	}
	return out
}

// Triangle rasterizes one screen-space triangle with a z-buffer. p0..p2 are
// screen coordinates with z = depth (larger closer); rgb is the already-shaded
// face color in 0..1; opacity below ~1 blends src-over without writing depth.
//
// Hot path: no allocation in the pixel loop.
func (fb *FrameBuffer) Triangle(p0, p1, p2 Vec, rgb Vec, opacity float32) {
	x0, y0, z0 := p0[0], p0[1], p0[2]
	x1, y1, z1 := p1[0], p1[1], p1[2]
	x2, y2, z2 := p2[0], p2[1], p2[2]

	minX := int(math32.Min(math32.Min(x0, x1), x2))
	maxX := int(math32.Max(math32.Max(x0, x1), x2)) + 1
	minY := int(math32.Min(math32.Min(y0, y1), y2))
	maxY := int(math32.Max(math32.Max(y0, y1), y2)) + 1

	if minX < 0 {
		minX = 0
	}
	if maxX > fb.Width-1 {
		maxX = fb.Width - 1
	}
	if minY < 0 {
		minY = 0
	}
	if maxY > fb.Height-1 {
		maxY = fb.Height - 1
	}
	if minX > maxX || minY > maxY {
		return
	}

	det := (y1-y2)*(x0-x2) + (x2-x1)*(y0-y2)
	if det > -1e-8 && det < 1e-8 {
		return
	}
	invDet := 1 / det

	dy12 := y1 - y2
	dx21 := x2 - x1
	dy20 := y2 - y0
	dx02 := x0 - x2

	cr := clamp255(rgb[0] * 255)
	cg := clamp255(rgb[1] * 255)
	cb := clamp255(rgb[2] * 255)
	opaque := opacity >= 0.999

	for sy := minY; sy <= maxY; sy++ {
		dsy := float32(sy) + 0.5 - y2
		rowOff := sy * fb.Width
		for sx := minX; sx <= maxX; sx++ {
			dsx := float32(sx) + 0.5 - x2
			w0 := (dy12*dsx + dx21*dsy) * invDet
			w1 := (dy20*dsx + dx02*dsy) * invDet
			w2 := 1 - w0 - w1

			if w0 < -0.001 || w1 < -0.001 || w2 < -0.001 {
				continue
			}

			z := w0*z0 + w1*z1 + w2*z2
			zIdx := rowOff + sx
			if z <= fb.ZBuf[zIdx] {
				continue
			}

			pxIdx := zIdx * 4
			if opaque {
				fb.ZBuf[zIdx] = z
				fb.Color[pxIdx] = cr
				fb.Color[pxIdx+1] = cg
				fb.Color[pxIdx+2] = cb
				fb.Color[pxIdx+3] = 255
			} else {
				// Translucent: blend over without claiming depth, so
				// geometry behind still draws.
				inv := 1 - opacity
				fb.Color[pxIdx] = clamp255(float32(cr)*opacity + float32(fb.Color[pxIdx])*inv)
				fb.Color[pxIdx+1] = clamp255(float32(cg)*opacity + float32(fb.Color[pxIdx+1])*inv)
				fb.Color[pxIdx+2] = clamp255(float32(cb)*opacity + float32(fb.Color[pxIdx+2])*inv)
				a := float32(fb.Color[pxIdx+3]) + opacity*255
				fb.Color[pxIdx+3] = clamp255(a)
			}
		}
	}
}

func clamp255(v float32) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}

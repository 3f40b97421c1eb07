package render

import "github.com/chewxy/math32"

// Mesh is an indexed triangle mesh. Faces are flat-shaded; no per-vertex
// normals are stored.
type Mesh struct {
	Positions []Vec
	Faces     [][3]int
}

// Box returns an axis-aligned box centered at the origin.
func Box(w, h, d float32) Mesh {
	x, y, z := w/2, h/2, d/2
	return Mesh{
		Positions: []Vec{
			{-x, -y, -z}, {x, -y, -z}, {x, y, -z}, {-x, y, -z},
			{-x, -y, z}, {x, -y, z}, {x, y, z}, {-x, y, z},
		},
		Faces: [][3]int{
			{0, 2, 1}, {0, 3, 2}, // back
			{4, 5, 6}, {4, 6, 7}, // front
			{0, 1, 5}, {0, 5, 4}, // bottom
			{3, 7, 6}, {3, 6, 2}, // top
			{0, 4, 7}, {0, 7, 3}, // left
			{1, 2, 6}, {1, 6, 5}, // right
		},
	}
}

// Sphere returns a latitude/longitude sphere.
func Sphere(radius float32, widthSegs, heightSegs int) Mesh {
	if widthSegs < 3 {
		widthSegs = 3
	}
	if heightSegs < 2 {
		heightSegs = 2
	}
	var m Mesh
	for iy := 0; iy <= heightSegs; iy++ {
		v := float32(iy) / float32(heightSegs)
		phi := v * math32.Pi
		for ix := 0; ix <= widthSegs; ix++ {
			u := float32(ix) / float32(widthSegs)
			theta := u * 2 * math32.Pi
			m.Positions = append(m.Positions, Vec{
				-radius * math32.Cos(theta) * math32.Sin(phi),
				radius * math32.Cos(phi),
				radius * math32.Sin(theta) * math32.Sin(phi),
			})
		}
	}
	stride := widthSegs + 1
	for iy := 0; iy < heightSegs; iy++ {
		for ix := 0; ix < widthSegs; ix++ {
			a := iy*stride + ix
			b := a + stride
			if iy != 0 {
				m.Faces = append(m.Faces, [3]int{a, b, a + 1})
			}
			if iy != heightSegs-1 {
				m.Faces = append(m.Faces, [3]int{a + 1, b, b + 1})
			}
		}
	}
	return m
}

// Cylinder returns a capped cylinder (or truncated cone) along the y axis.
// A zero radiusTop yields a cone.
func Cylinder(radiusTop, radiusBottom, height float32, radialSegs int) Mesh {
	if radialSegs < 3 {
		radialSegs = 3
	}
	var m Mesh
	top, bottom := height/2, -height/2

	for i := 0; i < radialSegs; i++ {
		theta := float32(i) / float32(radialSegs) * 2 * math32.Pi
		c, s := math32.Cos(theta), math32.Sin(theta)
		m.Positions = append(m.Positions,
			Vec{radiusTop * c, top, radiusTop * s},
			Vec{radiusBottom * c, bottom, radiusBottom * s},
		)
	}
	topCenter := len(m.Positions)
	m.Positions = append(m.Positions, Vec{0, top, 0}, Vec{0, bottom, 0})
	bottomCenter := topCenter + 1

	for i := 0; i < radialSegs; i++ {
		j := (i + 1) % radialSegs
		t0, b0 := 2*i, 2*i+1
		t1, b1 := 2*j, 2*j+1
		m.Faces = append(m.Faces,
			[3]int{t0, b0, t1},
			[3]int{t1, b0, b1},
			[3]int{topCenter, t1, t0},
			[3]int{bottomCenter, b0, b1},
		)
	}
	return m
}

// Torus returns a torus in the xy plane.
func Torus(radius, tube float32, radialSegs, tubularSegs int) Mesh {
	if radialSegs < 3 {
		radialSegs = 3
	}
	if tubularSegs < 3 {
		tubularSegs = 3
	}
	var m Mesh
	for j := 0; j <= radialSegs; j++ {
		v := float32(j) / float32(radialSegs) * 2 * math32.Pi
		for i := 0; i <= tubularSegs; i++ {
			u := float32(i) / float32(tubularSegs) * 2 * math32.Pi
			m.Positions = append(m.Positions, Vec{
				(radius + tube*math32.Cos(v)) * math32.Cos(u),
				(radius + tube*math32.Cos(v)) * math32.Sin(u),
				tube * math32.Sin(v),
			})
		}
	}
	stride := tubularSegs + 1
	for j := 1; j <= radialSegs; j++ {
		for i := 1; i <= tubularSegs; i++ {
			a := stride*j + i - 1
			b := stride*(j-1) + i - 1
			c := stride*(j-1) + i
			d := stride*j + i
			m.Faces = append(m.Faces, [3]int{a, b, d}, [3]int{b, c, d})
		}
	}
	return m
}

// TorusKnot returns a (p,q) torus knot.
func TorusKnot(radius, tube float32, tubularSegs, radialSegs, p, q int) Mesh {
	if tubularSegs < 3 {
		tubularSegs = 3
	}
	if radialSegs < 3 {
		radialSegs = 3
	}
	if p == 0 {
		p = 2
	}
	if q == 0 {
		q = 3
	}

	curve := func(u float32) Vec {
		cu, su := math32.Cos(u), math32.Sin(u)
		quOverP := float32(q) / float32(p) * u
		cs := math32.Cos(quOverP)
		return Vec{
			radius * (2 + cs) * 0.5 * cu,
			radius * (2 + cs) * 0.5 * su,
			radius * math32.Sin(quOverP) * 0.5,
		}
	}

	var m Mesh
	for i := 0; i <= tubularSegs; i++ {
		u := float32(i) / float32(tubularSegs) * float32(p) * 2 * math32.Pi
		p1 := curve(u)
		p2 := curve(u + 0.01)

		t := normalize(sub(p2, p1))
		n := normalize(add(p2, p1))
		b := normalize(cross(t, n))
		n = cross(b, t)

		for j := 0; j <= radialSegs; j++ {
			v := float32(j) / float32(radialSegs) * 2 * math32.Pi
			cx := -tube * math32.Cos(v)
			cy := tube * math32.Sin(v)
			m.Positions = append(m.Positions, Vec{
				p1[0] + cx*n[0] + cy*b[0],
				p1[1] + cx*n[1] + cy*b[1],
				p1[2] + cx*n[2] + cy*b[2],
			})
		}
	}
	stride := radialSegs + 1
	for i := 1; i <= tubularSegs; i++ {
		for j := 1; j <= radialSegs; j++ {
			a := stride*(i-1) + j - 1
			b := stride*i + j - 1
			c := stride*i + j
			d := stride*(i-1) + j
			m.Faces = append(m.Faces, [3]int{a, b, d}, [3]int{b, c, d})
		}
	}
	return m
}

// Plane returns a single quad in the xy plane.
func Plane(w, h float32) Mesh {
	x, y := w/2, h/2
	return Mesh{
		Positions: []Vec{{-x, -y, 0}, {x, -y, 0}, {x, y, 0}, {-x, y, 0}},
		Faces:     [][3]int{{0, 1, 2}, {0, 2, 3}},
	}
}

// Circle returns a fan-triangulated disc in the xy plane.
func Circle(radius float32, segments int) Mesh {
	if segments < 3 {
		segments = 3
	}
	m := Mesh{Positions: []Vec{{0, 0, 0}}}
	for i := 0; i < segments; i++ {
		theta := float32(i) / float32(segments) * 2 * math32.Pi
		m.Positions = append(m.Positions, Vec{radius * math32.Cos(theta), radius * math32.Sin(theta), 0})
	}
	for i := 1; i <= segments; i++ {
		j := i%segments + 1
		m.Faces = append(m.Faces, [3]int{0, i, j})
	}
	return m
}

// Ring returns a flat annulus in the xy plane.
func Ring(inner, outer float32, segments int) Mesh {
	if segments < 3 {
		segments = 3
	}
	var m Mesh
	for i := 0; i < segments; i++ {
		theta := float32(i) / float32(segments) * 2 * math32.Pi
		c, s := math32.Cos(theta), math32.Sin(theta)
		m.Positions = append(m.Positions, Vec{inner * c, inner * s, 0}, Vec{outer * c, outer * s, 0})
	}
	for i := 0; i < segments; i++ {
		j := (i + 1) % segments
		in0, out0 := 2*i, 2*i+1
		in1, out1 := 2*j, 2*j+1
		m.Faces = append(m.Faces, [3]int{in0, out0, out1}, [3]int{in0, out1, in1})
	}
	return m
}

// Capsule returns a cylinder with hemispherical caps along the y axis,
// built as a stretched lat/long sphere.
func Capsule(radius, length float32, capSegs, radialSegs int) Mesh {
	if radialSegs < 3 {
		radialSegs = 3
	}
	if capSegs < 1 {
		capSegs = 1
	}
	heightSegs := capSegs * 2
	m := Sphere(radius, radialSegs, heightSegs)
	half := length / 2
	for i, pos := range m.Positions {
		if pos[1] > 1e-6 {
			m.Positions[i][1] = pos[1] + half
		} else if pos[1] < -1e-6 {
			m.Positions[i][1] = pos[1] - half
		}
	}
	return m
}

// Polyhedron vertex/face tables, vertices normalized to the given radius.

func polyhedron(verts []Vec, faces [][3]int, radius float32) Mesh {
	m := Mesh{Positions: make([]Vec, len(verts)), Faces: faces}
	for i, v := range verts {
		n := normalize(v)
		m.Positions[i] = Vec{n[0] * radius, n[1] * radius, n[2] * radius}
	}
	return m
}

// Tetrahedron returns a regular tetrahedron.
func Tetrahedron(radius float32) Mesh {
	return polyhedron(
		[]Vec{{1, 1, 1}, {-1, -1, 1}, {-1, 1, -1}, {1, -1, -1}},
		[][3]int{{2, 1, 0}, {0, 3, 2}, {1, 3, 0}, {2, 3, 1}},
		radius,
	)
}

// Octahedron returns a regular octahedron.
func Octahedron(radius float32) Mesh {
	return polyhedron(
		[]Vec{{1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0}, {0, 0, 1}, {0, 0, -1}},
		[][3]int{
			{0, 2, 4}, {0, 4, 3}, {0, 3, 5}, {0, 5, 2},
			{1, 2, 5}, {1, 5, 3}, {1, 3, 4}, {1, 4, 2},
		},
		radius,
	)
}

// Icosahedron returns a regular icosahedron.
func Icosahedron(radius float32) Mesh {
	t := (1 + math32.Sqrt(5)) / 2
	return polyhedron(
		[]Vec{
			{-1, t, 0}, {1, t, 0}, {-1, -t, 0}, {1, -t, 0},
			{0, -1, t}, {0, 1, t}, {0, -1, -t}, {0, 1, -t},
			{t, 0, -1}, {t, 0, 1}, {-t, 0, -1}, {-t, 0, 1},
		},
		[][3]int{
			{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
			{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
			{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
			{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
		},
		radius,
	)
}

// Dodecahedron returns a regular dodecahedron.
func Dodecahedron(radius float32) Mesh {
	t := (1 + math32.Sqrt(5)) / 2
	r := 1 / t
	return polyhedron(
		[]Vec{
			{-1, -1, -1}, {-1, -1, 1}, {-1, 1, -1}, {-1, 1, 1},
			{1, -1, -1}, {1, -1, 1}, {1, 1, -1}, {1, 1, 1},
			{0, -r, -t}, {0, -r, t}, {0, r, -t}, {0, r, t},
			{-r, -t, 0}, {-r, t, 0}, {r, -t, 0}, {r, t, 0},
			{-t, 0, -r}, {t, 0, -r}, {-t, 0, r}, {t, 0, r},
		},
		[][3]int{
			{3, 11, 7}, {3, 7, 15}, {3, 15, 13},
			{7, 19, 17}, {7, 17, 6}, {7, 6, 15},
			{17, 4, 8}, {17, 8, 10}, {17, 10, 6},
			{8, 0, 16}, {8, 16, 2}, {8, 2, 10},
			{0, 12, 1}, {0, 1, 18}, {0, 18, 16},
			{6, 10, 2}, {6, 2, 13}, {6, 13, 15},
			{2, 16, 18}, {2, 18, 3}, {2, 3, 13},
			{18, 1, 9}, {18, 9, 11}, {18, 11, 3},
			{4, 14, 12}, {4, 12, 0}, {4, 0, 8},
			{11, 9, 5}, {11, 5, 19}, {11, 19, 7},
			{19, 5, 14}, {19, 14, 4}, {19, 4, 17},
			{1, 12, 14}, {1, 14, 5}, {1, 5, 9},
		},
		radius,
	)
}

func add(a, b Vec) Vec { return Vec{a[0] + b[0], a[1] + b[1], a[2] + b[2]} }

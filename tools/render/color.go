package render

import "strconv"

// ParseHexColor parses "#rrggbb" (or "#rgb") into 0..1 RGB components.
// Unparsable input yields mid-gray, the documented fallback color.
func ParseHexColor(s string) Vec {
	const fallback = 0.5
	if len(s) == 0 || s[0] != '#' {
		return Vec{fallback, fallback, fallback}
	}
	hex := s[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return Vec{fallback, fallback, fallback}
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Vec{fallback, fallback, fallback}
	}
	return Vec{
		float32(v>>16&0xff) / 255,
		float32(v>>8&0xff) / 255,
		float32(v&0xff) / 255,
	}
}

package colors

import (
	"fmt"
	"strconv"
	"strings"
)

// Color is an RGB color.
type Color struct {
	R, G, B uint8
}

// Hex encodes c the way the Target expects it: lowercase "#rrggbb".
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// DefaultPalette is the fixed set of project colors the Target accepts,
// in the order the Target lists them.
var DefaultPalette = []Color{
	mustParse("#0b83d9"), // blue
	mustParse("#9e5bd9"), // purple
	mustParse("#d94182"), // pink
	mustParse("#e36a00"), // orange
	mustParse("#bf7000"), // bronze
	mustParse("#2da608"), // green
	mustParse("#06a893"), // teal
	mustParse("#c9806b"), // peach
	mustParse("#465bb3"), // indigo
	mustParse("#990099"), // magenta
	mustParse("#c7af14"), // gold
	mustParse("#566614"), // olive
	mustParse("#d92b2b"), // red
	mustParse("#525266"), // grey
}

// ParseHex parses "#rrggbb", "rrggbb", "#rgb" or "rgb".
func ParseHex(s string) (Color, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return Color{}, fmt.Errorf("invalid hex color '%s'", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid hex color '%s': %w", s, err)
	}
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

func mustParse(s string) Color {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}

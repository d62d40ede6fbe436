package colors

// Mapper maps arbitrary colors onto a fixed palette.
type Mapper struct {
	Palette []Color
}

// NewMapper returns a Mapper over the Target's default palette.
func NewMapper() *Mapper {
	return &Mapper{Palette: DefaultPalette}
}

// ClosestColor returns the palette entry nearest to hex by Euclidean
// distance in RGB space. Ties go to the entry listed first. The boolean is
// false when hex cannot be parsed or the palette is empty.
func (m *Mapper) ClosestColor(hex string) (Color, bool) {
	c, err := ParseHex(hex)
	if err != nil || len(m.Palette) == 0 {
		return Color{}, false
	}

	best := m.Palette[0]
	bestDist := distance(c, best)
	for _, p := range m.Palette[1:] {
		if d := distance(c, p); d < bestDist {
			best, bestDist = p, d
		}
	}
	return best, true
}

// TargetColor is ClosestColor re-encoded for the Target, or "" for no color.
func (m *Mapper) TargetColor(hex string) string {
	c, ok := m.ClosestColor(hex)
	if !ok {
		return ""
	}
	return c.Hex()
}

// distance is the squared Euclidean distance, which orders the same as the
// true distance.
func distance(a, b Color) int {
	dr := int(a.R) - int(b.R)
	dg := int(a.G) - int(b.G)
	db := int(a.B) - int(b.B)
	return dr*dr + dg*dg + db*db
}

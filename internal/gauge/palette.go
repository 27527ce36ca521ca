package gauge

// Stop is one color stop of a ramp, offset in [0,1].
type Stop struct {
	Offset float64
	Hex    string
}

// Palette is the set of colors a renderer needs for one gauge type.
type Palette struct {
	Ramp   [3]Stop
	Track  string
	Needle string
	Text   string
	Muted  string
}

var palettes = map[Type]Palette{
	TypeFree: {
		Ramp: [3]Stop{
			{Offset: 0, Hex: "#f7768e"},
			{Offset: 0.5, Hex: "#e0af68"},
			{Offset: 1, Hex: "#9ece6a"},
		},
		Track:  "#2a2e42",
		Needle: "#c0caf5",
		Text:   "#c0caf5",
		Muted:  "#565f89",
	},
	TypePro: {
		Ramp: [3]Stop{
			{Offset: 0, Hex: "#7aa2f7"},
			{Offset: 0.5, Hex: "#bb9af7"},
			{Offset: 1, Hex: "#ff9e64"},
		},
		Track:  "#2a2e42",
		Needle: "#c0caf5",
		Text:   "#c0caf5",
		Muted:  "#565f89",
	},
}

// PaletteFor returns the palette of t; unknown types use the free palette.
func PaletteFor(t Type) Palette {
	if p, ok := palettes[t]; ok {
		return p
	}
	return palettes[TypeFree]
}

package styles

// defaultAnchorBase is the base tilde count for hidden anchor links.
const defaultAnchorBase = 3

// emergencyDefaults is the built-in second fallback tier. It mirrors the
// shape of the TOML file so both tiers resolve through the same lookup.
var emergencyDefaults = map[string]any{
	"layout": map[string]any{
		"anchor_base": int64(defaultAnchorBase),
	},
	"defaults": map[string]any{
		"component": map[string]any{
			"fill":   "#DAE8FC",
			"stroke": "#6C8EBF",
			"width":  1.0,
			"color":  "#000000",
		},
		"control": map[string]any{
			"fill":   "#D5E8D4",
			"stroke": "#82B366",
			"width":  1.0,
			"color":  "#000000",
		},
		"risk": map[string]any{
			"fill":   "#F8CECC",
			"stroke": "#B85450",
			"width":  1.0,
			"color":  "#000000",
		},
		"cluster": map[string]any{
			"fill":   "#F5F5F5",
			"stroke": "#999999",
			"width":  1.0,
			"dash":   "3 3",
		},
		"category": map[string]any{
			"fill":   "#FFFFFF",
			"stroke": "#666666",
			"width":  1.0,
		},
		"universal": map[string]any{
			"stroke": "#9673A6",
			"width":  2.0,
			"dash":   "5 5",
		},
	},
	"buckets": map[string]any{
		"0": map[string]any{"stroke": "#6C8EBF", "width": 1.0},
		"1": map[string]any{"stroke": "#82B366", "width": 1.0, "dash": "5 5"},
		"2": map[string]any{"stroke": "#D79B00", "width": 1.0, "dash": "2 2"},
		"3": map[string]any{"stroke": "#9673A6", "width": 1.0, "dash": "8 4"},
	},
}

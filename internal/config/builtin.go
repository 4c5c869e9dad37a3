package config

// BuiltinLayouts returns the layouts that are always available, whether or
// not the config file defines any.
func BuiltinLayouts() map[string]Layout {
	return map[string]Layout{
		"grid": {
			Mode:            LayoutModeAuto,
			FlexibleLastRow: true,
		},
		"columns": {
			Mode: LayoutModeHorizontal,
		},
		"rows": {
			Mode: LayoutModeVertical,
		},
		"quad": {
			Mode:      LayoutModeFixed,
			FixedGrid: FixedGrid{Rows: 2, Cols: 2},
		},
		"cascade": {
			Mode:          LayoutModeCascade,
			CascadeOffset: DefaultCascadeOffset,
		},
	}
}

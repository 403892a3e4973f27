package config

// Default values.
const (
	DefaultFont           = "gomono:11"
	DefaultBarHeight      = 20
	DefaultPadding        = 4
	DefaultSeparatorWidth = 1
)

// DefaultConfig returns the configuration used when no file is given. The
// colors are i3bar's.
func DefaultConfig() Config {
	return Config{
		Bar: BarConfig{
			Font:           DefaultFont,
			Height:         DefaultBarHeight,
			Position:       PositionTop,
			Padding:        DefaultPadding,
			SeparatorWidth: DefaultSeparatorWidth,
		},
		Colors: ColorConfig{
			Background:        "#000000",
			Statusline:        "#ffffff",
			Separator:         "#666666",
			FocusedWorkspace:  "#4c7899 #285577 #ffffff",
			ActiveWorkspace:   "#333333 #5f676a #ffffff",
			InactiveWorkspace: "#333333 #222222 #888888",
			UrgentWorkspace:   "#2f343a #900000 #ffffff",
		},
		Workspaces: []string{"1", "2", "3"},
	}
}

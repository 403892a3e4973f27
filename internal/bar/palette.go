package bar

import (
	"github.com/opd-ai/go-wmdraw/internal/config"
	"github.com/opd-ai/go-wmdraw/internal/drawutil"
)

type buttonColors struct {
	border, background, text drawutil.Color
}

type palette struct {
	background drawutil.Color
	statusline drawutil.Color
	separator  drawutil.Color

	focused, active, inactive, urgent buttonColors
}

// i3bar's colors, used for slots a spec leaves out or marks with "-".
var defaultButtons = map[string][3]string{
	"focused":  {"#4c7899", "#285577", "#ffffff"},
	"active":   {"#333333", "#5f676a", "#ffffff"},
	"inactive": {"#333333", "#222222", "#888888"},
	"urgent":   {"#2f343a", "#900000", "#ffffff"},
}

func newPalette(d *drawutil.Display, c config.ColorConfig) palette {
	return palette{
		background: d.HexToColor(c.Background),
		statusline: d.HexToColor(c.Statusline),
		separator:  d.HexToColor(c.Separator),
		focused:    parseButton(d, c.FocusedWorkspace, "focused"),
		active:     parseButton(d, c.ActiveWorkspace, "active"),
		inactive:   parseButton(d, c.InactiveWorkspace, "inactive"),
		urgent:     parseButton(d, c.UrgentWorkspace, "urgent"),
	}
}

// parseButton reads "border background text" over the defaults for kind.
func parseButton(d *drawutil.Display, spec, kind string) buttonColors {
	def := defaultButtons[kind]
	slots := []drawutil.Color{
		d.HexToColor(def[0]),
		d.HexToColor(def[1]),
		d.HexToColor(def[2]),
	}
	d.Colors.ParseColors(spec, slots)
	return buttonColors{border: slots[0], background: slots[1], text: slots[2]}
}

func (p *palette) workspaceColors(ws Workspace) buttonColors {
	switch {
	case ws.Urgent:
		return p.urgent
	case ws.Focused:
		return p.focused
	case ws.Visible:
		return p.active
	}
	return p.inactive
}

package bar

import (
	"github.com/opd-ai/go-wmdraw/internal/config"
	"github.com/opd-ai/go-wmdraw/internal/drawutil"
	"github.com/opd-ai/go-wmdraw/internal/text"
)

// Workspace buttons have a 1px border and a 1px gap between them.
const (
	buttonBorder = 1
	buttonGap    = 1
)

// drawWorkspaces draws the buttons from the left edge and returns the x
// coordinate where they end.
func (b *Bar) drawWorkspaces(workspaces []Workspace) int {
	pad := b.cfg.Bar.Padding
	th := b.measure.Height()
	x := 0
	for _, ws := range workspaces {
		label := text.New(ws.Name)
		tw := b.measure.Width(label)
		w := tw + 2*pad + 2*buttonBorder
		if x+w > b.width {
			break
		}
		c := b.palette.workspaceColors(ws)

		drawutil.Rectangle(&b.back, c.border, float64(x), 0, float64(w), float64(b.height))
		drawutil.Rectangle(&b.back, c.background,
			float64(x+buttonBorder), buttonBorder,
			float64(w-2*buttonBorder), float64(b.height-2*buttonBorder))
		drawutil.Text(label, &b.back, c.text, c.background,
			x+buttonBorder+pad, centered(b.height, th), tw)

		x += w + buttonGap
	}
	return x
}

// drawBlocks right-aligns blocks with separators between them. Blocks that
// would overlap the workspace buttons ending at left are dropped from the
// left.
func (b *Bar) drawBlocks(blocks []config.Block, left int) {
	if len(blocks) == 0 {
		return
	}
	pad := b.cfg.Bar.Padding
	sep := b.cfg.Bar.SeparatorWidth
	th := b.measure.Height()

	labels := make([]*text.String, len(blocks))
	widths := make([]int, len(blocks))
	for i, blk := range blocks {
		if blk.Markup {
			labels[i] = text.NewMarkup(blk.Text)
		} else {
			labels[i] = text.New(blk.Text)
		}
		widths[i] = b.measure.Width(labels[i])
	}

	// Walk from the right edge.
	x := b.width - pad
	for i := len(blocks) - 1; i >= 0; i-- {
		start := x - widths[i]
		if start < left+pad {
			break
		}
		fg, bg := b.palette.statusline, b.palette.background
		if blocks[i].Urgent {
			u := b.palette.urgent
			fg, bg = u.text, u.background
			drawutil.Rectangle(&b.back, bg, float64(start-pad), 0, float64(widths[i]+2*pad), float64(b.height))
		} else if blocks[i].Color != "" {
			fg = b.disp.HexToColor(blocks[i].Color)
		}
		drawutil.Text(labels[i], &b.back, fg, bg, start, centered(b.height, th), widths[i])

		x = start - pad
		if i > 0 && sep > 0 {
			sx := x - sep
			drawutil.Rectangle(&b.back, b.palette.separator,
				float64(sx), float64(b.height/4), float64(sep), float64(b.height-b.height/2))
			x = sx - pad
		}
	}
}

func centered(outer, inner int) int {
	return max((outer-inner)/2, 0)
}

// fixedMeasurer measures every glyph as one fixed cell.
type fixedMeasurer struct {
	advance, height int
}

func (m fixedMeasurer) Width(t *text.String) int { return t.Glyphs() * m.advance }
func (m fixedMeasurer) Height() int              { return m.height }

func measurerFor(tr drawutil.TextRenderer) TextMeasurer {
	if m, ok := tr.(TextMeasurer); ok {
		return m
	}
	return fixedMeasurer{advance: 7, height: 13}
}

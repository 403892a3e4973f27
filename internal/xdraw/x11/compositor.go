//go:build linux

package x11

import (
	"fmt"
	"os/exec"

	"github.com/jezek/xgb/xproto"

	"github.com/opd-ai/go-wmdraw/internal/xdraw"
)

// CompositorStatus is the result of compositor detection.
type CompositorStatus int

const (
	CompositorUnknown CompositorStatus = iota
	CompositorActive
	CompositorInactive
)

func (cs CompositorStatus) String() string {
	switch cs {
	case CompositorActive:
		return "active"
	case CompositorInactive:
		return "inactive"
	default:
		return "unknown"
	}
}

// knownCompositors are looked for when the selection check is inconclusive.
var knownCompositors = []string{"picom", "compton", "compiz", "xcompmgr", "mutter", "kwin_x11", "xfwm4", "marco"}

// DetectCompositor reports whether a compositing manager runs on the
// default screen. It checks the owner of the _NET_WM_CM_Sn selection and
// falls back to looking for well-known compositor processes.
func (c *Conn) DetectCompositor() CompositorStatus {
	if status := c.detectCompositorSelection(); status != CompositorUnknown {
		return status
	}
	for _, name := range knownCompositors {
		if exec.Command("pgrep", "-x", name).Run() == nil {
			return CompositorActive
		}
	}
	return CompositorInactive
}

func (c *Conn) detectCompositorSelection() CompositorStatus {
	name := fmt.Sprintf("_NET_WM_CM_S%d", c.X.DefaultScreen)
	atom, err := xproto.InternAtom(c.X, false, uint16(len(name)), name).Reply()
	if err != nil || atom == nil {
		return CompositorUnknown
	}
	owner, err := xproto.GetSelectionOwner(c.X, atom.Atom).Reply()
	if err != nil {
		return CompositorUnknown
	}
	if owner.Owner != xproto.WindowNone {
		return CompositorActive
	}
	return CompositorInactive
}

// ResolveVisual picks the visual for new surfaces: a 32-bit ARGB visual
// when transparency is wanted and a compositor can blend it, the root
// visual otherwise.
func (c *Conn) ResolveVisual(transparency bool) *xdraw.Visual {
	if !transparency {
		return c.visual
	}
	v, ok := c.ARGBVisual()
	if !ok {
		c.log.Warn("transparency requested but the screen has no 32-bit visual")
		return c.visual
	}
	if status := c.DetectCompositor(); status != CompositorActive {
		c.log.Warn("transparency requested but no compositor is running", "compositor", status.String())
		return c.visual
	}
	return v
}

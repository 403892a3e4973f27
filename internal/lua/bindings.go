package lua

import (
	"fmt"
	"sync"

	rt "github.com/arnodel/golua/runtime"

	"github.com/opd-ai/go-wmdraw/internal/drawutil"
	"github.com/opd-ai/go-wmdraw/internal/text"
)

// DrawBindings exposes drawing on one target surface to Lua:
//
//	draw_rectangle(color, x, y, w, h)
//	draw_clear(color)
//	draw_text(str, fg, bg, x, y [, max_width])
//	draw_copy(sx, sy, dx, dy, w, h)
//	r, g, b, a = parse_color(hex)
//	w, h = surface_size()
//
// Colors are hex strings; malformed ones fall back to grey.
type DrawBindings struct {
	runtime *Runtime
	disp    *drawutil.Display

	mu     sync.Mutex
	target *drawutil.Surface
}

// NewDrawBindings registers the drawing functions in runtime.
func NewDrawBindings(runtime *Runtime, disp *drawutil.Display) (*DrawBindings, error) {
	if runtime == nil {
		return nil, ErrNilRuntime
	}
	if disp == nil {
		return nil, fmt.Errorf("display cannot be nil")
	}
	db := &DrawBindings{runtime: runtime, disp: disp}
	db.registerFunctions()
	return db, nil
}

func (db *DrawBindings) registerFunctions() {
	db.runtime.SetGoFunction("draw_rectangle", db.rectangle, 5, false)
	db.runtime.SetGoFunction("draw_clear", db.clear, 1, false)
	db.runtime.SetGoFunction("draw_text", db.text, 5, true)
	db.runtime.SetGoFunction("draw_copy", db.copy, 6, false)
	db.runtime.SetGoFunction("parse_color", db.parseColor, 1, false)
	db.runtime.SetGoFunction("surface_size", db.surfaceSize, 0, false)
}

// Bind sets the surface drawing functions operate on. nil unbinds.
func (db *DrawBindings) Bind(s *drawutil.Surface) {
	db.mu.Lock()
	db.target = s
	db.mu.Unlock()
}

// Target returns the bound surface.
func (db *DrawBindings) Target() *drawutil.Surface {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.target
}

func (db *DrawBindings) targetOrError(fn string) (*drawutil.Surface, error) {
	s := db.Target()
	if s == nil {
		return nil, fmt.Errorf("%s: %w", fn, ErrNoTarget)
	}
	return s, nil
}

func getAllArgs(c *rt.GoCont) []rt.Value {
	return append(c.Args(), c.Etc()...)
}

func getFloatArg(args []rt.Value, idx int) (float64, error) {
	if idx >= len(args) {
		return 0, fmt.Errorf("argument %d out of range (have %d)", idx+1, len(args))
	}
	if f, ok := args[idx].TryFloat(); ok {
		return f, nil
	}
	if i, ok := args[idx].TryInt(); ok {
		return float64(i), nil
	}
	return 0, fmt.Errorf("argument %d is not a number", idx+1)
}

func getIntArg(args []rt.Value, idx int) (int, error) {
	if idx >= len(args) {
		return 0, fmt.Errorf("argument %d out of range (have %d)", idx+1, len(args))
	}
	if i, ok := args[idx].TryInt(); ok {
		return int(i), nil
	}
	if f, ok := args[idx].TryFloat(); ok {
		return int(f), nil
	}
	return 0, fmt.Errorf("argument %d is not an integer", idx+1)
}

func getStringArg(args []rt.Value, idx int) (string, error) {
	if idx >= len(args) {
		return "", fmt.Errorf("argument %d out of range (have %d)", idx+1, len(args))
	}
	if s, ok := args[idx].TryString(); ok {
		return s, nil
	}
	return "", fmt.Errorf("argument %d is not a string", idx+1)
}

func getFloatArgs(fn string, args []rt.Value, from, n int) ([]float64, error) {
	out := make([]float64, n)
	for i := range out {
		f, err := getFloatArg(args, from+i)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", fn, err)
		}
		out[i] = f
	}
	return out, nil
}

func (db *DrawBindings) color(fn string, args []rt.Value, idx int) (drawutil.Color, error) {
	s, err := getStringArg(args, idx)
	if err != nil {
		return drawutil.Color{}, fmt.Errorf("%s: %w", fn, err)
	}
	return db.disp.HexToColor(s), nil
}

// rectangle handles draw_rectangle(color, x, y, w, h).
func (db *DrawBindings) rectangle(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	s, err := db.targetOrError("draw_rectangle")
	if err != nil {
		return nil, err
	}
	args := getAllArgs(c)
	col, err := db.color("draw_rectangle", args, 0)
	if err != nil {
		return nil, err
	}
	v, err := getFloatArgs("draw_rectangle", args, 1, 4)
	if err != nil {
		return nil, err
	}
	drawutil.Rectangle(s, col, v[0], v[1], v[2], v[3])
	return c.Next(), nil
}

// clear handles draw_clear(color).
func (db *DrawBindings) clear(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	s, err := db.targetOrError("draw_clear")
	if err != nil {
		return nil, err
	}
	col, err := db.color("draw_clear", getAllArgs(c), 0)
	if err != nil {
		return nil, err
	}
	drawutil.ClearSurface(s, col)
	return c.Next(), nil
}

// text handles draw_text(str, fg, bg, x, y [, max_width]). max_width
// defaults to the space left on the surface.
func (db *DrawBindings) text(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	s, err := db.targetOrError("draw_text")
	if err != nil {
		return nil, err
	}
	args := getAllArgs(c)
	str, err := getStringArg(args, 0)
	if err != nil {
		return nil, fmt.Errorf("draw_text: %w", err)
	}
	fg, err := db.color("draw_text", args, 1)
	if err != nil {
		return nil, err
	}
	bg, err := db.color("draw_text", args, 2)
	if err != nil {
		return nil, err
	}
	x, err := getIntArg(args, 3)
	if err != nil {
		return nil, fmt.Errorf("draw_text: %w", err)
	}
	y, err := getIntArg(args, 4)
	if err != nil {
		return nil, fmt.Errorf("draw_text: %w", err)
	}
	maxWidth := s.Width - x
	if len(args) > 5 && args[5] != rt.NilValue {
		if maxWidth, err = getIntArg(args, 5); err != nil {
			return nil, fmt.Errorf("draw_text: %w", err)
		}
	}
	drawutil.Text(text.New(str), s, fg, bg, x, y, maxWidth)
	return c.Next(), nil
}

// copy handles draw_copy(sx, sy, dx, dy, w, h) within the target.
func (db *DrawBindings) copy(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	s, err := db.targetOrError("draw_copy")
	if err != nil {
		return nil, err
	}
	v, err := getFloatArgs("draw_copy", getAllArgs(c), 0, 6)
	if err != nil {
		return nil, err
	}
	drawutil.CopySurface(s, s, v[0], v[1], v[2], v[3], v[4], v[5])
	return c.Next(), nil
}

// parseColor handles parse_color(hex) and returns r, g, b, a in [0, 1].
func (db *DrawBindings) parseColor(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	col, err := db.color("parse_color", getAllArgs(c), 0)
	if err != nil {
		return nil, err
	}
	return c.PushingNext(t.Runtime,
		rt.FloatValue(col.Red),
		rt.FloatValue(col.Green),
		rt.FloatValue(col.Blue),
		rt.FloatValue(col.Alpha),
	), nil
}

// surfaceSize handles surface_size() and returns 0, 0 with no target.
func (db *DrawBindings) surfaceSize(t *rt.Thread, c *rt.GoCont) (rt.Cont, error) {
	w, h := 0, 0
	if s := db.Target(); s != nil {
		w, h = s.Width, s.Height
	}
	return c.PushingNext(t.Runtime, rt.IntValue(int64(w)), rt.IntValue(int64(h))), nil
}

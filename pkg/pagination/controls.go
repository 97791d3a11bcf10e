package pagination

import "strconv"

// Control is one interactive page button.
type Control struct {
	Page    int
	Current bool
	Label   string
}

// Controls is the render model for a pagination nav.
type Controls struct {
	Items []Control
	// Ellipsis is set when trailing pages exist but their count is unknown.
	Ellipsis bool
}

// BuildControls maps a computed window to page controls, selecting the one
// matching current.
func BuildControls(w Window, current int) Controls {
	c := Controls{Items: make([]Control, 0, len(w.Pages)), Ellipsis: w.LastPageUnknown && len(w.Pages) > 0}
	for _, p := range w.Pages {
		c.Items = append(c.Items, Control{
			Page:    p,
			Current: p == current,
			Label:   "Page " + strconv.Itoa(p),
		})
	}
	return c
}

// Empty reports whether there is nothing to render.
func (c Controls) Empty() bool { return len(c.Items) == 0 }

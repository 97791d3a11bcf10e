package pagination

import "fmt"

const (
	// DefaultRadius is the number of pages shown on each side of the current page.
	DefaultRadius = 10
	// MaxRadius bounds client supplied radii.
	MaxRadius = 50
)

// ErrRadiusOutOfRange is returned by CheckRadius.
var ErrRadiusOutOfRange = fmt.Errorf("radius must be between 0 and %d", MaxRadius)

// CheckRadius reports whether r may be used for a window request.
func CheckRadius(r int) error {
	if r < 0 || r > MaxRadius {
		return ErrRadiusOutOfRange
	}
	return nil
}

// Links is the navigable page metadata of a paged collection.
// Next and Last are nil when the backing collection does not report them;
// Last is only known when the total size of the collection is known.
type Links struct {
	Current int
	Next    *int
	Last    *int
}

// WindowRequest asks for the page numbers around Links.Current.
type WindowRequest struct {
	Links  Links
	Radius int
}

// Window is the ordered set of page numbers to render as controls.
type Window struct {
	Pages           []int `json:"pages"`
	LastPageUnknown bool  `json:"last_page_unknown"`
}

// NewWindowRequest returns a request using DefaultRadius.
func NewWindowRequest(links Links) WindowRequest {
	return WindowRequest{Links: links, Radius: DefaultRadius}
}

// LastKnownPage is Last when present, else Next, else 0 (nothing to render).
func (l Links) LastKnownPage() int {
	switch {
	case l.Last != nil:
		return *l.Last
	case l.Next != nil:
		return *l.Next
	default:
		return 0
	}
}

// ComputeWindow returns the first page, the last known page and every page
// within Radius of the current one, ascending and without duplicates.
// Out of range current pages are clamped by the window bounds.
func ComputeWindow(req WindowRequest) Window {
	w := Window{Pages: []int{}, LastPageUnknown: req.Links.Last == nil}
	last := req.Links.LastKnownPage()
	if last <= 0 {
		return w
	}
	radius := req.Radius
	if radius < 0 {
		radius = 0
	}
	current := req.Links.Current
	// bounds are compared before adding so extreme pages cannot overflow.
	start, end := 1, last
	if current > radius {
		start = current - radius
	}
	if current < last-radius {
		end = current + radius
	}

	// first and last are anchors; the window fills [start, end].
	w.Pages = append(w.Pages, 1)
	for p := max(start, 2); p <= end && p < last; p++ {
		w.Pages = append(w.Pages, p)
	}
	if last > 1 {
		w.Pages = append(w.Pages, last)
	}
	return w
}

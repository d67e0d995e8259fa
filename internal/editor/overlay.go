package editor

import (
	"fmt"

	"github.com/debemdeboas/inkwell/internal/content"
	"github.com/debemdeboas/inkwell/internal/model"
)

const (
	handleSize    = 12.0
	toolbarOffset = 50.0
)

// Edge identifies a resize handle by compass direction.
type Edge string

const (
	EdgeNW Edge = "nw"
	EdgeN  Edge = "n"
	EdgeNE Edge = "ne"
	EdgeE  Edge = "e"
	EdgeSE Edge = "se"
	EdgeS  Edge = "s"
	EdgeSW Edge = "sw"
	EdgeW  Edge = "w"
)

var Edges = []Edge{EdgeNW, EdgeN, EdgeNE, EdgeE, EdgeSE, EdgeS, EdgeSW, EdgeW}

func ParseEdge(s string) (Edge, error) {
	for _, e := range Edges {
		if string(e) == s {
			return e, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownEdge, s)
}

// widthDelta maps a horizontal pointer movement to a width change. Handles on
// the right grow the image when dragged right, handles on the left when
// dragged left, top and bottom handles leave the width alone.
func (e Edge) widthDelta(dx float64) float64 {
	switch e {
	case EdgeE, EdgeNE, EdgeSE:
		return dx
	case EdgeW, EdgeNW, EdgeSW:
		return -dx
	}
	return 0
}

type Action string

const (
	ActionSmall    Action = "small"
	ActionMedium   Action = "medium"
	ActionLarge    Action = "large"
	ActionFull     Action = "full"
	ActionLeft     Action = "left"
	ActionCenter   Action = "center"
	ActionRight    Action = "right"
	ActionDeselect Action = "deselect"
)

var toolbarActions = []Action{
	ActionSmall, ActionMedium, ActionLarge, ActionFull,
	ActionLeft, ActionCenter, ActionRight,
	ActionDeselect,
}

type Toolbar struct {
	ImageID model.ImageID `json:"imageId"`
	Top     float64       `json:"top"`
	Left    float64       `json:"left"`
	Actions []Action      `json:"actions"`
}

type Handle struct {
	Edge Edge         `json:"edge"`
	Rect content.Rect `json:"rect"`
}

// Overlay is the set of decorations drawn around the selected image.
type Overlay struct {
	ImageID model.ImageID `json:"imageId"`
	Bounds  content.Rect  `json:"bounds"`
	Toolbar *Toolbar      `json:"toolbar"`
	Handles []Handle      `json:"handles"`
}

func newOverlay(id model.ImageID, r content.Rect) *Overlay {
	o := &Overlay{
		ImageID: id,
		Bounds:  r,
		Toolbar: &Toolbar{
			ImageID: id,
			Top:     r.Top - toolbarOffset,
			Left:    r.Left,
			Actions: append([]Action(nil), toolbarActions...),
		},
	}

	midX := r.Left + r.Width/2
	midY := r.Top + r.Height/2
	centres := map[Edge][2]float64{
		EdgeNW: {r.Left, r.Top},
		EdgeN:  {midX, r.Top},
		EdgeNE: {r.Right(), r.Top},
		EdgeE:  {r.Right(), midY},
		EdgeSE: {r.Right(), r.Bottom()},
		EdgeS:  {midX, r.Bottom()},
		EdgeSW: {r.Left, r.Bottom()},
		EdgeW:  {r.Left, midY},
	}
	for _, e := range Edges {
		c := centres[e]
		o.Handles = append(o.Handles, Handle{
			Edge: e,
			Rect: content.Rect{
				Left:   c[0] - handleSize/2,
				Top:    c[1] - handleSize/2,
				Width:  handleSize,
				Height: handleSize,
			},
		})
	}
	return o
}

// Count is the number of decoration elements: the toolbar plus the handles.
func (o *Overlay) Count() int {
	if o == nil {
		return 0
	}
	n := len(o.Handles)
	if o.Toolbar != nil {
		n++
	}
	return n
}

func (o *Overlay) Handle(e Edge) (Handle, bool) {
	if o == nil {
		return Handle{}, false
	}
	for _, h := range o.Handles {
		if h.Edge == e {
			return h, true
		}
	}
	return Handle{}, false
}

func (o *Overlay) clone() *Overlay {
	if o == nil {
		return nil
	}
	c := *o
	if o.Toolbar != nil {
		tb := *o.Toolbar
		tb.Actions = append([]Action(nil), o.Toolbar.Actions...)
		c.Toolbar = &tb
	}
	c.Handles = append([]Handle(nil), o.Handles...)
	return &c
}

package content

import "github.com/debemdeboas/inkwell/internal/model"

type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (r Rect) Right() float64  { return r.Left + r.Width }
func (r Rect) Bottom() float64 { return r.Top + r.Height }

// Layout resolves the on-screen box of an image.
type Layout interface {
	Bounds(s *Surface, img *Image) (Rect, bool)
}

// FlowLayout is a headless approximation of the rendered surface: images are
// stacked in document order, Gap apart, inside a container Width wide whose
// top-left corner sits at (Left, Top). Floats hug their side, centered images
// are centred. Heights follow the natural aspect ratio.
type FlowLayout struct {
	Left  float64
	Top   float64
	Width float64
	Gap   float64
}

func NewFlowLayout(width float64) *FlowLayout {
	return &FlowLayout{Width: width, Gap: 15}
}

func (l *FlowLayout) Bounds(s *Surface, target *Image) (Rect, bool) {
	y := l.Top
	for _, img := range s.Images() {
		r := l.box(img, y)
		if img.Node() == target.Node() {
			return r, true
		}
		y = r.Bottom() + l.Gap
	}
	return Rect{}, false
}

// RenderedWidth is the width the image occupies once max-width is applied.
func (l *FlowLayout) RenderedWidth(img *Image) float64 {
	w := img.Width()
	if w.IsZero() {
		w = model.Px(DefaultImageWidth)
	}
	px := w.Px(l.Width)
	if l.Width > 0 && px > l.Width {
		px = l.Width
	}
	return px
}

func (l *FlowLayout) box(img *Image, top float64) Rect {
	w := l.RenderedWidth(img)
	nw, nh := img.NaturalSize()
	h := w * nh / nw

	left := l.Left
	switch img.Position() {
	case model.PositionRight:
		left = l.Left + l.Width - w
	case model.PositionCenter:
		left = l.Left + (l.Width-w)/2
	}
	return Rect{Left: left, Top: top, Width: w, Height: h}
}

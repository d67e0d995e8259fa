package content

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/debemdeboas/inkwell/internal/model"
)

const (
	SelectedClass = "selected-image"

	selectedBorder    = "2px solid #4285f4"
	selectedShadow    = "0 0 0 2px rgba(66, 133, 244, 0.25)"
	unselectedBorder  = "2px solid transparent"
	defaultAspectW    = 4.0
	defaultAspectH    = 3.0
	DefaultImageWidth = 400.0
)

// Image is a view over an <img> element that lives in a Surface.
type Image struct {
	node *html.Node
	id   model.ImageID
}

func (i *Image) ID() model.ImageID { return i.id }

func (i *Image) Node() *html.Node { return i.node }

func (i *Image) Src() string { return attr(i.node, "src") }

func (i *Image) Attr(key string) string { return attr(i.node, key) }

func (i *Image) SetAttr(key, val string) { setAttr(i.node, key, val) }

func (i *Image) Style() Style { return ParseStyle(attr(i.node, "style")) }

func (i *Image) setStyle(st Style) {
	if st.Len() == 0 {
		delAttr(i.node, "style")
		return
	}
	setAttr(i.node, "style", st.String())
}

func (i *Image) updateStyle(fn func(*Style)) {
	st := i.Style()
	fn(&st)
	i.setStyle(st)
}

// Width returns the declared width. A zero length means the width is not set.
func (i *Image) Width() model.Length {
	st := i.Style()
	if w := st.Get("width"); w != "" {
		if l, err := model.ParseLength(w); err == nil {
			return l
		}
	}
	if w := attr(i.node, "width"); w != "" {
		if l, err := model.ParseLength(w); err == nil {
			return l
		}
	}
	return model.Length{}
}

// SetWidth sets the width; the height is always derived from the aspect ratio.
func (i *Image) SetWidth(l model.Length) {
	delAttr(i.node, "width")
	delAttr(i.node, "height")
	i.updateStyle(func(st *Style) {
		st.Set("width", l.String())
		st.Set("height", "auto")
	})
}

func (i *Image) SizeLabel() string { return attr(i.node, "data-size") }

func (i *Image) SetSizeLabel(label string) {
	setAttr(i.node, "data-size", label)
	i.replaceClassPrefix("size-", "size-"+label)
}

// NaturalSize returns the intrinsic dimensions recorded at insertion, or a 4:3 default.
func (i *Image) NaturalSize() (w, h float64) {
	w, _ = strconv.ParseFloat(attr(i.node, "data-natural-width"), 64)
	h, _ = strconv.ParseFloat(attr(i.node, "data-natural-height"), 64)
	if w <= 0 || h <= 0 {
		return defaultAspectW, defaultAspectH
	}
	return w, h
}

func (i *Image) Position() model.Position {
	if p, err := model.ParsePosition(attr(i.node, "data-position")); err == nil {
		return p
	}
	st := i.Style()
	switch st.Get("float") {
	case "left":
		return model.PositionLeft
	case "right":
		return model.PositionRight
	}
	return model.PositionCenter
}

// ApplyPosition sets float and clear behaviour. Left and right float with text
// wrapping on the opposite side and clear their own side so that consecutive
// floats do not stack; center breaks the text flow as a block.
func (i *Image) ApplyPosition(p model.Position) {
	i.updateStyle(func(st *Style) {
		switch p {
		case model.PositionLeft:
			st.Set("float", "left")
			st.Set("margin", "0 15px 15px 0")
			st.Set("display", "inline-block")
			st.Set("clear", "left")
		case model.PositionRight:
			st.Set("float", "right")
			st.Set("margin", "0 0 15px 15px")
			st.Set("display", "inline-block")
			st.Set("clear", "right")
		default:
			st.Set("float", "none")
			st.Set("margin", "15px auto")
			st.Set("display", "block")
			st.Set("clear", "both")
		}
	})
	setAttr(i.node, "data-position", string(p))
	i.replaceClassPrefix("position-", "position-"+string(p))
}

func (i *Image) Selected() bool {
	return hasClass(i.node, SelectedClass)
}

func (i *Image) Mark() {
	addClass(i.node, SelectedClass)
	i.updateStyle(func(st *Style) {
		st.Set("border", selectedBorder)
		st.Set("box-shadow", selectedShadow)
	})
}

func (i *Image) Unmark() {
	removeClass(i.node, SelectedClass)
	i.updateStyle(func(st *Style) {
		st.Set("border", unselectedBorder)
		st.Del("box-shadow")
	})
}

func (i *Image) replaceClassPrefix(prefix, class string) {
	var kept []string
	for _, c := range strings.Fields(attr(i.node, "class")) {
		if !strings.HasPrefix(c, prefix) {
			kept = append(kept, c)
		}
	}
	kept = append(kept, class)
	setAttr(i.node, "class", strings.Join(kept, " "))
}

// ImageSpec describes an image to insert.
type ImageSpec struct {
	ID            model.ImageID
	Src           string
	Alt           string
	Width         model.Length
	Position      model.Position
	NaturalWidth  int
	NaturalHeight int
}

// InsertImage appends an image followed by a separating space and returns it.
func (s *Surface) InsertImage(spec ImageSpec) *Image {
	n := &html.Node{Type: html.ElementNode, Data: "img", DataAtom: atom.Img}
	setAttr(n, "id", spec.ID.ElementID())
	setAttr(n, "src", spec.Src)
	setAttr(n, "alt", spec.Alt)
	setAttr(n, "class", "editor-image")
	if spec.NaturalWidth > 0 && spec.NaturalHeight > 0 {
		setAttr(n, "data-natural-width", strconv.Itoa(spec.NaturalWidth))
		setAttr(n, "data-natural-height", strconv.Itoa(spec.NaturalHeight))
	}
	setAttr(n, "style", Style{decls: []declaration{
		{"cursor", "pointer"},
		{"border-radius", "8px"},
		{"max-width", "100%"},
		{"border", unselectedBorder},
	}}.String())

	s.root.AppendChild(n)
	s.root.AppendChild(&html.Node{Type: html.TextNode, Data: " "})

	img := &Image{node: n, id: spec.ID}
	width := spec.Width
	if width.IsZero() {
		width = model.Px(DefaultImageWidth)
	}
	img.SetWidth(width)
	img.SetSizeLabel(SizeLabel(width))

	position := spec.Position
	if position == "" {
		position = model.PositionCenter
	}
	img.ApplyPosition(position)

	contentLogger.Debug().Int64("image_id", int64(spec.ID)).Str("src", spec.Src).Msg("Image inserted")
	return img
}

// SizeLabel names a width after the preset it matches, or "custom".
func SizeLabel(l model.Length) string {
	for _, p := range []model.SizePreset{model.SizeSmall, model.SizeMedium, model.SizeLarge, model.SizeFull} {
		if p.Width() == l {
			return string(p)
		}
	}
	return "custom"
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func addClass(n *html.Node, class string) {
	if hasClass(n, class) {
		return
	}
	classes := strings.Fields(attr(n, "class"))
	setAttr(n, "class", strings.Join(append(classes, class), " "))
}

func removeClass(n *html.Node, class string) {
	var kept []string
	for _, c := range strings.Fields(attr(n, "class")) {
		if c != class {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		delAttr(n, "class")
		return
	}
	setAttr(n, "class", strings.Join(kept, " "))
}

// Package content holds the live, editable structure of a document body: a parsed
// HTML fragment with embedded images, a delegated event target and a headless layout.
package content

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/debemdeboas/inkwell/internal/model"
)

var contentLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	contentLogger = l
}

var ErrNotImage = errors.New("element is not an image")

// Surface is the editable root. The root node itself survives re-renders;
// everything below it is replaced by SetHTML.
type Surface struct {
	root   *html.Node
	events EventTarget
}

func NewSurface(fragment string) (*Surface, error) {
	s := &Surface{
		root: &html.Node{
			Type:     html.ElementNode,
			Data:     "div",
			DataAtom: atom.Div,
			Attr:     []html.Attribute{{Key: "contenteditable", Val: "true"}},
		},
	}
	if err := s.SetHTML(fragment); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Surface) Root() *html.Node { return s.root }

// SetHTML re-renders the surface from a serialized fragment. Every node below
// the root is recreated, so references to previous nodes go stale.
func (s *Surface) SetHTML(fragment string) error {
	context := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), context)
	if err != nil {
		return fmt.Errorf("parse content: %w", err)
	}

	for c := s.root.FirstChild; c != nil; {
		next := c.NextSibling
		s.root.RemoveChild(c)
		c = next
	}
	for _, n := range nodes {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
		s.root.AppendChild(n)
	}

	contentLogger.Debug().Int("nodes", len(nodes)).Msg("Surface rendered")
	return nil
}

// HTML serializes the live structure, selection marks included.
func (s *Surface) HTML() string {
	return renderChildren(s.root)
}

// Capture serializes the content the way it is persisted: selection marks are
// dropped so that a saved document never carries editing decorations.
func (s *Surface) Capture() string {
	clone := cloneNode(s.root)
	walk(clone, func(n *html.Node) bool {
		if isImage(n) {
			img := &Image{node: n}
			if img.Selected() {
				img.Unmark()
			}
		}
		return true
	})
	return renderChildren(clone)
}

func renderChildren(n *html.Node) string {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			contentLogger.Error().Err(err).Msg("Error rendering content node")
		}
	}
	return buf.String()
}

// Contains reports whether n is attached below the surface root.
func (s *Surface) Contains(n *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p == s.root {
			return true
		}
	}
	return false
}

func (s *Surface) ElementByID(id string) (*html.Node, bool) {
	if id == "" {
		return nil, false
	}
	var found *html.Node
	walk(s.root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && attr(n, "id") == id {
			found = n
			return false
		}
		return true
	})
	return found, found != nil
}

// Image resolves an image by its stable id. It fails when the id does not
// resolve to a live <img> element.
func (s *Surface) Image(id model.ImageID) (*Image, bool) {
	n, ok := s.ElementByID(id.ElementID())
	if !ok || !isImage(n) {
		return nil, false
	}
	return &Image{node: n, id: id}, true
}

// Images returns every conventionally named image in document order.
func (s *Surface) Images() []*Image {
	var images []*Image
	walk(s.root, func(n *html.Node) bool {
		if isImage(n) {
			if id, ok := model.ParseImageElementID(attr(n, "id")); ok {
				images = append(images, &Image{node: n, id: id})
			}
		}
		return true
	})
	return images
}

// ImageFromNode wraps n when it is a conventionally named image.
func ImageFromNode(n *html.Node) (*Image, error) {
	if n == nil || !isImage(n) {
		return nil, ErrNotImage
	}
	id, ok := model.ParseImageElementID(attr(n, "id"))
	if !ok {
		return nil, fmt.Errorf("%w: id %q does not follow the %s<n> convention", ErrNotImage, attr(n, "id"), model.ImageElementPrefix)
	}
	return &Image{node: n, id: id}, nil
}

// AddEventListener registers a listener at the surface root. The root is
// never re-rendered, so listeners keep firing for elements created later.
func (s *Surface) AddEventListener(typ EventType, fn Listener) (remove func()) {
	return s.events.AddEventListener(typ, fn)
}

func (s *Surface) ListenerCount(types ...EventType) int {
	return s.events.ListenerCount(types...)
}

// Dispatch delivers e to the root listeners as if it bubbled up from e.Target.
// Events whose target is no longer attached are dropped.
func (s *Surface) Dispatch(e *Event) *Event {
	if e.Target == nil {
		e.Target = s.root
	}
	if !s.Contains(e.Target) {
		contentLogger.Debug().Str("type", string(e.Type)).Msg("Dropping event for detached target")
		return e
	}
	s.events.Dispatch(e)
	return e
}

// DispatchAt dispatches an event targeting the element with the given id.
// An unknown id targets the root, like a click on empty space.
func (s *Surface) DispatchAt(typ EventType, elementID string, x, y float64) *Event {
	target, ok := s.ElementByID(elementID)
	if !ok {
		target = s.root
	}
	return s.Dispatch(&Event{Type: typ, Target: target, X: x, Y: y})
}

func walk(n *html.Node, fn func(*html.Node) bool) bool {
	if !fn(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, fn) {
			return false
		}
	}
	return true
}

func cloneNode(n *html.Node) *html.Node {
	c := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
		Attr:      append([]html.Attribute(nil), n.Attr...),
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.AppendChild(cloneNode(child))
	}
	return c
}

func isImage(n *html.Node) bool {
	return n.Type == html.ElementNode && n.DataAtom == atom.Img
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func delAttr(n *html.Node, key string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return
		}
	}
}

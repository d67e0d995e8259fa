// Package editor implements the interactive behaviour of images embedded in
// editable content: selection, the floating toolbar, resize handles and
// position changes, plus the editing sessions built on top of it.
package editor

import (
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/debemdeboas/inkwell/internal/content"
	"github.com/debemdeboas/inkwell/internal/model"
)

var editorLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	editorLogger = l
}

// DefaultMinWidth is the smallest width, in pixels, an image can be resized to.
const DefaultMinWidth = 50.0

type SelectionListener func(prev, next model.ImageID)

type drag struct {
	imageID    model.ImageID
	edge       Edge
	startX     float64
	startWidth float64
	removeMove func()
	removeUp   func()
}

// Manager owns the image interactions of one surface. Clicks are observed
// through a single listener at the surface root; a drag registers its move and
// release listeners on the window and removes them on release.
//
// Every change to an image's width or position is followed by a capture of
// the surface, which is handed to onCapture.
type Manager struct {
	mu       sync.Mutex
	surface  *content.Surface
	window   *content.Window
	layout   *content.FlowLayout
	minWidth float64

	selected model.ImageID
	overlay  *Overlay
	drag     *drag

	onCapture   func(snapshot string)
	listeners   []SelectionListener
	removeClick func()
}

func NewManager(surface *content.Surface, window *content.Window, layout *content.FlowLayout, minWidth float64, onCapture func(string)) *Manager {
	if minWidth <= 0 {
		minWidth = DefaultMinWidth
	}
	if onCapture == nil {
		onCapture = func(string) {}
	}
	m := &Manager{
		surface:   surface,
		window:    window,
		layout:    layout,
		minWidth:  minWidth,
		onCapture: onCapture,
	}
	m.removeClick = surface.AddEventListener(content.EventClick, m.handleClick)
	return m
}

func (m *Manager) handleClick(e *content.Event) {
	img, err := content.ImageFromNode(e.Target)
	if err != nil {
		return
	}
	e.PreventDefault()
	e.StopPropagation()
	m.SelectImage(img.ID())
}

// OnSelectionChange registers fn to be called after every selection change.
func (m *Manager) OnSelectionChange(fn SelectionListener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

func (m *Manager) notify(prev, next model.ImageID) {
	if prev == next {
		return
	}
	m.mu.Lock()
	listeners := append([]SelectionListener(nil), m.listeners...)
	m.mu.Unlock()

	for _, fn := range listeners {
		fn(prev, next)
	}
}

// SelectedImageID returns the selected image, if any.
func (m *Manager) SelectedImageID() (model.ImageID, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.selected, m.selected != 0
}

// Overlay returns a copy of the current decorations, nil when nothing is selected.
func (m *Manager) Overlay() *Overlay {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.overlay.clone()
}

func (m *Manager) DecorationCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.overlay.Count()
}

// SelectImage selects the image with the given id. A stale id is a no-op.
func (m *Manager) SelectImage(id model.ImageID) {
	m.mu.Lock()
	prev := m.selected
	if err := m.selectLocked(id); err != nil {
		m.mu.Unlock()
		editorLogger.Debug().Err(err).Int64("image_id", int64(id)).Msg("Ignoring selection")
		return
	}
	m.mu.Unlock()

	m.notify(prev, id)
}

func (m *Manager) selectLocked(id model.ImageID) error {
	img, ok := m.surface.Image(id)
	if !ok {
		return ErrStaleReference
	}

	m.clearLocked()

	img.Mark()
	m.selected = id
	m.decorateLocked(img)
	return nil
}

// DeselectImage clears the selection and every decoration.
func (m *Manager) DeselectImage() {
	m.mu.Lock()
	prev := m.selected
	m.clearLocked()
	m.mu.Unlock()

	m.notify(prev, 0)
}

// clearLocked removes all selection marks, not only the one of the selected
// image, so that no decoration survives a re-render.
func (m *Manager) clearLocked() {
	m.endDragLocked()
	for _, img := range m.surface.Images() {
		if img.Selected() {
			img.Unmark()
		}
	}
	m.selected = 0
	m.overlay = nil
}

func (m *Manager) decorateLocked(img *content.Image) {
	r, ok := m.layout.Bounds(m.surface, img)
	if !ok {
		m.overlay = nil
		return
	}
	m.overlay = newOverlay(img.ID(), r)
}

// redecorateLocked recomputes the decorations of the selected image, which
// move whenever any image above it changes size.
func (m *Manager) redecorateLocked() {
	if m.selected == 0 {
		return
	}
	img, ok := m.surface.Image(m.selected)
	if !ok {
		m.clearLocked()
		return
	}
	m.decorateLocked(img)
}

func (m *Manager) clamp(px float64) float64 {
	if px < m.minWidth {
		return m.minWidth
	}
	return px
}

func (m *Manager) setWidthLocked(img *content.Image, l model.Length) {
	if px := l.Px(m.layout.Width); px < m.minWidth {
		l = model.Px(m.minWidth)
	}
	img.SetWidth(l)
	img.SetSizeLabel(content.SizeLabel(l))
}

// ResizeImageTo applies a size preset. A stale id is a no-op.
func (m *Manager) ResizeImageTo(id model.ImageID, preset model.SizePreset) error {
	p, err := model.ParseSizePreset(string(preset))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPreset, err)
	}

	m.mu.Lock()
	img, ok := m.surface.Image(id)
	if !ok {
		m.mu.Unlock()
		editorLogger.Debug().Err(ErrStaleReference).Int64("image_id", int64(id)).Msg("Ignoring resize")
		return nil
	}
	m.setWidthLocked(img, p.Width())
	m.redecorateLocked()
	snapshot := m.surface.Capture()
	m.mu.Unlock()

	editorLogger.Debug().Int64("image_id", int64(id)).Str("preset", string(p)).Msg("Image resized")
	m.onCapture(snapshot)
	return nil
}

// PositionImageTo floats the image left or right, or centres it. A stale id
// is a no-op.
func (m *Manager) PositionImageTo(id model.ImageID, position model.Position) error {
	p, err := model.ParsePosition(string(position))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPosition, err)
	}

	m.mu.Lock()
	img, ok := m.surface.Image(id)
	if !ok {
		m.mu.Unlock()
		editorLogger.Debug().Err(ErrStaleReference).Int64("image_id", int64(id)).Msg("Ignoring position change")
		return nil
	}
	img.ApplyPosition(p)
	m.redecorateLocked()
	snapshot := m.surface.Capture()
	m.mu.Unlock()

	editorLogger.Debug().Int64("image_id", int64(id)).Str("position", string(p)).Msg("Image positioned")
	m.onCapture(snapshot)
	return nil
}

// Apply runs a toolbar action against the selected image.
func (m *Manager) Apply(action Action) error {
	if !slices.Contains(toolbarActions, action) {
		return fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	id, ok := m.SelectedImageID()
	if !ok {
		return nil
	}
	switch action {
	case ActionSmall, ActionMedium, ActionLarge, ActionFull:
		return m.ResizeImageTo(id, model.SizePreset(action))
	case ActionLeft, ActionCenter, ActionRight:
		return m.PositionImageTo(id, model.Position(action))
	case ActionDeselect:
		m.DeselectImage()
	}
	return nil
}

// PressHandle starts a drag-resize of the selected image from the given
// handle at pointer position x.
func (m *Manager) PressHandle(edge Edge, x float64) error {
	if _, err := ParseEdge(string(edge)); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.selected == 0 {
		return ErrNoDrag
	}
	img, ok := m.surface.Image(m.selected)
	if !ok {
		m.clearLocked()
		editorLogger.Debug().Err(ErrStaleReference).Msg("Ignoring handle press")
		return nil
	}

	m.endDragLocked()
	d := &drag{
		imageID:    m.selected,
		edge:       edge,
		startX:     x,
		startWidth: m.layout.RenderedWidth(img),
	}
	d.removeMove = m.window.AddEventListener(content.EventPointerMove, m.handlePointerMove)
	d.removeUp = m.window.AddEventListener(content.EventPointerUp, m.handlePointerUp)
	m.drag = d

	editorLogger.Debug().Int64("image_id", int64(d.imageID)).Str("edge", string(edge)).Float64("start_width", d.startWidth).Msg("Drag started")
	return nil
}

func (m *Manager) Dragging() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.drag != nil
}

func (m *Manager) handlePointerMove(e *content.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d := m.drag
	if d == nil {
		return
	}
	img, ok := m.surface.Image(d.imageID)
	if !ok {
		m.clearLocked()
		return
	}

	width := m.clamp(d.startWidth + d.edge.widthDelta(e.X-d.startX))
	img.SetWidth(model.Px(width))
	img.SetSizeLabel(content.SizeLabel(model.Px(width)))
	m.redecorateLocked()
}

func (m *Manager) handlePointerUp(e *content.Event) {
	m.mu.Lock()
	if m.drag == nil {
		m.mu.Unlock()
		return
	}
	id := m.drag.imageID
	m.endDragLocked()
	snapshot := m.surface.Capture()
	m.mu.Unlock()

	editorLogger.Debug().Int64("image_id", int64(id)).Msg("Drag finished")
	m.onCapture(snapshot)
}

func (m *Manager) endDragLocked() {
	if m.drag == nil {
		return
	}
	m.drag.removeMove()
	m.drag.removeUp()
	m.drag = nil
}

// InsertImage appends an image to the surface and captures the result.
func (m *Manager) InsertImage(spec content.ImageSpec) *content.Image {
	m.mu.Lock()
	img := m.surface.InsertImage(spec)
	m.redecorateLocked()
	snapshot := m.surface.Capture()
	m.mu.Unlock()

	m.onCapture(snapshot)
	return img
}

// Rerender replaces the surface content, as happens when unrelated state
// changes re-render the editor. The selection survives when its image does.
func (m *Manager) Rerender(fragment string) error {
	m.mu.Lock()
	prev := m.selected
	m.endDragLocked()
	m.overlay = nil
	if err := m.surface.SetHTML(fragment); err != nil {
		m.selected = 0
		m.mu.Unlock()
		m.notify(prev, 0)
		return err
	}

	next := model.ImageID(0)
	if prev != 0 {
		if err := m.selectLocked(prev); err == nil {
			next = prev
		} else {
			m.clearLocked()
		}
	}
	m.mu.Unlock()

	m.notify(prev, next)
	return nil
}

// Capture serializes the surface without selection marks.
func (m *Manager) Capture() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.surface.Capture()
}

// Close detaches every listener and clears the decorations.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.clearLocked()
	if m.removeClick != nil {
		m.removeClick()
		m.removeClick = nil
	}
	m.listeners = nil
}

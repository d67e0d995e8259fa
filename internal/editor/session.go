package editor

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/debemdeboas/inkwell/internal/content"
	"github.com/debemdeboas/inkwell/internal/model"
)

// SaveFunc receives the serialized content whenever the session saves.
type SaveFunc func(ctx context.Context, content string)

type Options struct {
	// Autosave persists every captured change. Without it content is only
	// handed to SaveFunc by Save.
	Autosave      bool
	SurfaceWidth  float64
	MinImageWidth float64
	// OnCapture sees every captured snapshot, saved or not.
	OnCapture func(content string)
}

func DefaultOptions() Options {
	return Options{
		Autosave:      true,
		SurfaceWidth:  800,
		MinImageWidth: DefaultMinWidth,
	}
}

// Session is one editing session over a single document body. It owns the
// surface, the window receiving drag events and the image manager.
type Session struct {
	id    string
	title string

	surface *content.Surface
	window  *content.Window
	manager *Manager
	ids     *model.IDSource

	onSave SaveFunc
	opts   Options

	// mu serializes input from the host; contentMu guards the last capture.
	mu        sync.Mutex
	closed    bool
	contentMu sync.RWMutex
	content   string
}

func NewSession(title, initialContent string, onSave SaveFunc, opts Options) (*Session, error) {
	surface, err := content.NewSurface(initialContent)
	if err != nil {
		return nil, err
	}
	if onSave == nil {
		onSave = func(context.Context, string) {}
	}
	if opts.SurfaceWidth <= 0 {
		opts.SurfaceWidth = DefaultOptions().SurfaceWidth
	}

	s := &Session{
		id:      uuid.New().String(),
		title:   title,
		surface: surface,
		window:  content.NewWindow(),
		ids:     model.NewIDSource(),
		onSave:  onSave,
		opts:    opts,
	}
	s.manager = NewManager(surface, s.window, content.NewFlowLayout(opts.SurfaceWidth), opts.MinImageWidth, s.captured)
	s.content = surface.Capture()
	return s, nil
}

func (s *Session) ID() string { return s.id }

func (s *Session) Title() string { return s.title }

func (s *Session) Manager() *Manager { return s.manager }

func (s *Session) Window() *content.Window { return s.window }

// Content is the last captured content.
func (s *Session) Content() string {
	s.contentMu.RLock()
	defer s.contentMu.RUnlock()
	return s.content
}

func (s *Session) SelectedImageID() (model.ImageID, bool) {
	return s.manager.SelectedImageID()
}

func (s *Session) captured(snapshot string) {
	s.contentMu.Lock()
	s.content = snapshot
	s.contentMu.Unlock()

	if s.opts.OnCapture != nil {
		s.opts.OnCapture(snapshot)
	}
	if s.opts.Autosave {
		s.onSave(context.Background(), snapshot)
	}
}

// Save captures the surface and hands the result to the save callback.
func (s *Session) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}

	snapshot := s.manager.Capture()
	s.contentMu.Lock()
	s.content = snapshot
	s.contentMu.Unlock()

	s.onSave(ctx, snapshot)
	return nil
}

// InsertImage adds an image to the end of the content. A zero id is replaced
// by a fresh one; an id already on the surface is rejected.
func (s *Session) InsertImage(ctx context.Context, spec content.ImageSpec) (model.ImageID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrSessionClosed
	}

	if spec.ID == 0 {
		spec.ID = s.ids.NextImageID()
	} else if _, taken := s.surface.Image(spec.ID); taken {
		return 0, fmt.Errorf("%w: %s", ErrDuplicateImage, spec.ID.ElementID())
	}
	img := s.manager.InsertImage(spec)
	return img.ID(), nil
}

// Click delivers a click on the element with the given id, or on empty
// content when no element matches.
func (s *Session) Click(elementID string) (*content.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSessionClosed
	}
	return s.surface.DispatchAt(content.EventClick, elementID, 0, 0), nil
}

func (s *Session) SelectImage(id model.ImageID) error {
	return s.locked(func() error {
		s.manager.SelectImage(id)
		return nil
	})
}

func (s *Session) DeselectImage() error {
	return s.locked(func() error {
		s.manager.DeselectImage()
		return nil
	})
}

func (s *Session) ResizeImageTo(id model.ImageID, preset model.SizePreset) error {
	return s.locked(func() error { return s.manager.ResizeImageTo(id, preset) })
}

func (s *Session) PositionImageTo(id model.ImageID, position model.Position) error {
	return s.locked(func() error { return s.manager.PositionImageTo(id, position) })
}

func (s *Session) Apply(action Action) error {
	return s.locked(func() error { return s.manager.Apply(action) })
}

func (s *Session) locked(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	return fn()
}

func (s *Session) PressHandle(edge Edge, x float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	return s.manager.PressHandle(edge, x)
}

func (s *Session) PointerMove(x, y float64) error {
	return s.dispatchWindow(content.EventPointerMove, x, y)
}

func (s *Session) PointerUp(x, y float64) error {
	return s.dispatchWindow(content.EventPointerUp, x, y)
}

func (s *Session) dispatchWindow(typ content.EventType, x, y float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.window.Dispatch(&content.Event{Type: typ, X: x, Y: y})
	return nil
}

// SetContent re-renders the surface with new content without saving it.
func (s *Session) SetContent(fragment string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if err := s.manager.Rerender(fragment); err != nil {
		return err
	}

	s.contentMu.Lock()
	s.content = s.manager.Capture()
	s.contentMu.Unlock()
	return nil
}

// Close tears the session down. Listeners registered by the session are
// removed and later input is rejected.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.manager.Close()
}

func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
